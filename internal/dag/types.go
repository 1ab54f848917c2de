package dag

import "sync"

// Graph is a collection of nodes and their dependencies, representing a DAG.
// All operations on the graph are concurrency-safe.
type Graph[K comparable] struct {
	// mutex protects the nodes map during concurrent access.
	mutex sync.RWMutex
	// nodes stores all nodes in the graph, keyed by their unique ID.
	nodes map[K]*node[K]
	// order records node insertion order for deterministic traversal.
	order []K
}

// node represents a single vertex in the graph. It is un-exported to
// enforce interaction with the graph via the public API, not by direct
// struct manipulation.
type node[K comparable] struct {
	id K
	// deps counts edges to each predecessor. Several socket connections
	// between the same pair of nodes collapse to one edge with a count.
	deps map[K]int
	// dependents mirrors deps for successors.
	dependents map[K]int
}
