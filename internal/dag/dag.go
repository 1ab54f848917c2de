package dag

import (
	"fmt"
	"slices"
)

// New creates and returns an initialized, empty Graph.
func New[K comparable]() *Graph[K] {
	return &Graph[K]{
		nodes: make(map[K]*node[K]),
	}
}

// AddNode adds a new node with the given ID to the graph. If a node with
// the same ID already exists, the function does nothing.
func (g *Graph[K]) AddNode(id K) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	if _, ok := g.nodes[id]; ok {
		return
	}

	g.nodes[id] = &node[K]{
		id:         id,
		deps:       make(map[K]int),
		dependents: make(map[K]int),
	}
	g.order = append(g.order, id)
}

// RemoveNode deletes a node and every edge touching it. It reports whether
// the node existed.
func (g *Graph[K]) RemoveNode(id K) bool {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	n, ok := g.nodes[id]
	if !ok {
		return false
	}
	for depID := range n.deps {
		delete(g.nodes[depID].dependents, id)
	}
	for depID := range n.dependents {
		delete(g.nodes[depID].deps, id)
	}
	delete(g.nodes, id)
	g.order = slices.DeleteFunc(g.order, func(k K) bool { return k == id })
	return true
}

// Has reports whether the node exists.
func (g *Graph[K]) Has(id K) bool {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	_, ok := g.nodes[id]
	return ok
}

// Len returns the number of nodes.
func (g *Graph[K]) Len() int {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	return len(g.nodes)
}

// AddEdge creates a directed edge from the `fromID` node to the `toID` node.
// This signifies that `toID` has a dependency on `fromID`. An error is returned
// if either node does not exist or if the edge would create a self-reference.
// Adding an existing edge again increments its multiplicity.
func (g *Graph[K]) AddEdge(fromID, toID K) error {
	if fromID == toID {
		return fmt.Errorf("self-referential edge not allowed: %v -> %v", fromID, fromID)
	}

	g.mutex.Lock()
	defer g.mutex.Unlock()

	fromNode, ok := g.nodes[fromID]
	if !ok {
		return fmt.Errorf("source node not found: %v", fromID)
	}

	toNode, ok := g.nodes[toID]
	if !ok {
		return fmt.Errorf("destination node not found: %v", toID)
	}

	toNode.deps[fromID]++
	fromNode.dependents[toID]++

	return nil
}

// RemoveEdge decrements the multiplicity of an edge and drops it when it
// reaches zero. It reports whether the edge existed.
func (g *Graph[K]) RemoveEdge(fromID, toID K) bool {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	fromNode, ok := g.nodes[fromID]
	if !ok {
		return false
	}
	toNode, ok := g.nodes[toID]
	if !ok || toNode.deps[fromID] == 0 {
		return false
	}

	toNode.deps[fromID]--
	fromNode.dependents[toID]--
	if toNode.deps[fromID] == 0 {
		delete(toNode.deps, fromID)
		delete(fromNode.dependents, toID)
	}
	return true
}

// Dependencies returns the IDs the given node depends on, in insertion order.
func (g *Graph[K]) Dependencies(id K) ([]K, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	n, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("node not found: %v", id)
	}
	return g.ordered(n.deps), nil
}

// Dependents returns the IDs that depend on the given node, in insertion order.
func (g *Graph[K]) Dependents(id K) ([]K, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	n, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("node not found: %v", id)
	}
	return g.ordered(n.dependents), nil
}

func (g *Graph[K]) ordered(set map[K]int) []K {
	out := make([]K, 0, len(set))
	for _, id := range g.order {
		if _, ok := set[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

// WouldCycle reports whether adding an edge from `fromID` to `toID` would
// close a cycle, that is, whether `fromID` is already reachable from `toID`.
func (g *Graph[K]) WouldCycle(fromID, toID K) bool {
	if fromID == toID {
		return true
	}

	g.mutex.RLock()
	defer g.mutex.RUnlock()

	start, ok := g.nodes[toID]
	if !ok {
		return false
	}
	seen := map[K]bool{toID: true}
	stack := []*node[K]{start}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for next := range n.dependents {
			if next == fromID {
				return true
			}
			if !seen[next] {
				seen[next] = true
				stack = append(stack, g.nodes[next])
			}
		}
	}
	return false
}

// DetectCycles checks the graph for any cycles. It returns a non-nil error
// if a cycle is found, indicating the first node involved in the detected cycle.
func (g *Graph[K]) DetectCycles() error {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	// Use classic depth-first search with three sets of nodes:
	// permanent: nodes that have been fully visited and are not part of a cycle.
	// temporary: nodes currently in the recursion stack for the current traversal.
	// unvisited: all other nodes.
	permanent := make(map[K]bool)
	temporary := make(map[K]bool)

	var visit func(n *node[K]) error
	visit = func(n *node[K]) error {
		if permanent[n.id] {
			return nil
		}
		if temporary[n.id] {
			return fmt.Errorf("cycle detected involving node '%v'", n.id)
		}

		temporary[n.id] = true

		for _, dependent := range g.ordered(n.dependents) {
			if err := visit(g.nodes[dependent]); err != nil {
				return err
			}
		}

		delete(temporary, n.id)
		permanent[n.id] = true

		return nil
	}

	for _, id := range g.order {
		if err := visit(g.nodes[id]); err != nil {
			return err
		}
	}

	return nil
}

// TopologicalOrder returns every node such that each node comes after all of
// its dependencies. Among nodes that are ready at the same time, the one
// inserted first comes first.
func (g *Graph[K]) TopologicalOrder() ([]K, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	remaining := make(map[K]int, len(g.nodes))
	for id, n := range g.nodes {
		remaining[id] = len(n.deps)
	}

	out := make([]K, 0, len(g.nodes))
	done := make(map[K]bool, len(g.nodes))
	for len(out) < len(g.nodes) {
		progressed := false
		for _, id := range g.order {
			if done[id] || remaining[id] > 0 {
				continue
			}
			done[id] = true
			out = append(out, id)
			for dependent := range g.nodes[id].dependents {
				remaining[dependent]--
			}
			progressed = true
			// Restart the scan so earlier-inserted nodes unlocked by this one
			// keep their priority.
			break
		}
		if !progressed {
			for _, id := range g.order {
				if !done[id] {
					return nil, fmt.Errorf("cycle detected involving node '%v'", id)
				}
			}
		}
	}
	return out, nil
}
