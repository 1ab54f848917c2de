// Package dag holds the dependency graph between node instances.
//
// An edge from A to B means B consumes a value that A produces, so A must
// update first. The graph stays acyclic: the executor checks WouldCycle
// before adding an edge, and TopologicalOrder reports any cycle it finds.
// Ties in the topological order are broken by node insertion order, which
// makes frame passes deterministic.
package dag
