// Package registry provides the central "glue" for the node catalog.
//
// The Registry maps the type tags used in graph files (e.g., "Threshold")
// to the factories that create node instances. Node packages expose a
// Module whose Register method adds their factories.
//
// During application startup, the registry is populated and then validated
// so that every factory produces a node whose sockets and version tag are
// well formed, preventing a class of runtime errors when graphs load.
package registry
