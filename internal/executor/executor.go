package executor

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/vk/nodegridgo/internal/connection"
	"github.com/vk/nodegridgo/internal/ctxlog"
	"github.com/vk/nodegridgo/internal/dag"
	"github.com/vk/nodegridgo/internal/frame"
	"github.com/vk/nodegridgo/internal/node"
	"github.com/vk/nodegridgo/internal/registry"
	"github.com/vk/nodegridgo/internal/setting"
	"github.com/vk/nodegridgo/internal/socket"
)

var (
	// ErrDuplicateNode is returned when a node id is already in use.
	ErrDuplicateNode = errors.New("node id already in use")
	// ErrUnknownNode is returned when a node id is not in the graph.
	ErrUnknownNode = errors.New("unknown node")
	// ErrCycle is returned when a connection would make the graph cyclic.
	ErrCycle = errors.New("connection would create a cycle")
)

// Observer receives the report of every completed frame.
type Observer interface {
	ObserveFrame(ctx context.Context, r *Report)
}

// Option configures an Executor.
type Option func(*Executor)

// WithObserver registers an observer for frame reports.
func WithObserver(o Observer) Option {
	return func(e *Executor) {
		e.observers = append(e.observers, o)
	}
}

type entry struct {
	key  socket.NodeKey
	node node.Node
}

// Executor manages a node graph and runs frames over it.
type Executor struct {
	registry  *registry.Registry
	cfg       node.Config
	fc        *frame.Context
	conns     *connection.Registry
	graph     *dag.Graph[socket.NodeKey]
	nodes     map[int]*entry
	order     []int
	frames    int
	observers []Observer
}

// New creates an empty graph whose nodes come from reg and share cfg.
func New(reg *registry.Registry, cfg node.Config, opts ...Option) *Executor {
	e := &Executor{
		registry: reg,
		cfg:      cfg,
		fc:       frame.New(),
		conns:    connection.New(),
		graph:    dag.New[socket.NodeKey](),
		nodes:    make(map[int]*entry),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Config returns the shared node configuration.
func (e *Executor) Config() node.Config { return e.cfg }

// Frame returns the executor's frame context.
func (e *Executor) Frame() *frame.Context { return e.fc }

// AddNode creates a node of type tag under id and declares its sockets.
// If the node fails to add itself it is closed and nothing is registered.
func (e *Executor) AddNode(ctx context.Context, tag string, id int, pos setting.Position) (node.Node, error) {
	if _, exists := e.nodes[id]; exists {
		return nil, fmt.Errorf("add %s node %d: %w", tag, id, ErrDuplicateNode)
	}
	if id < 0 {
		return nil, fmt.Errorf("add %s node %d: id must not be negative", tag, id)
	}
	n, err := e.registry.New(tag)
	if err != nil {
		return nil, err
	}

	key := socket.NodeKey{ID: id, Type: tag}
	logger := ctxlog.FromContext(ctx).With("node", key.String())
	if err := n.Add(ctx, e.fc, id, pos, e.cfg); err != nil {
		logger.Error("Node failed to add.", "error", err)
		n.Close(ctx)
		e.fc.ForgetNode(key)
		return nil, err
	}

	e.conns.Declare(n.Sockets()...)
	e.graph.AddNode(key)
	e.nodes[id] = &entry{key: key, node: n}
	e.order = append(e.order, id)
	logger.Debug("Node added.", "sockets", len(n.Sockets()))
	return n, nil
}

// RemoveNode closes a node and removes its sockets, connections, values and
// image.
func (e *Executor) RemoveNode(ctx context.Context, id int) error {
	ent, ok := e.nodes[id]
	if !ok {
		return fmt.Errorf("remove node %d: %w", id, ErrUnknownNode)
	}
	ent.node.Close(ctx)
	removed := e.conns.Forget(ent.key)
	e.graph.RemoveNode(ent.key)
	e.fc.ForgetNode(ent.key)
	delete(e.nodes, id)
	e.order = slices.DeleteFunc(e.order, func(x int) bool { return x == id })
	ctxlog.FromContext(ctx).Debug("Node removed.", "node", ent.key.String(), "connections", len(removed))
	return nil
}

// Connect establishes a connection after type-checking it and making sure
// it keeps the graph acyclic.
func (e *Executor) Connect(ctx context.Context, c connection.Connection) error {
	if err := e.conns.Typecheck(c); err != nil {
		return err
	}
	if e.graph.WouldCycle(c.From.Node(), c.To.Node()) {
		return fmt.Errorf("%s: %w", c, ErrCycle)
	}
	if err := e.conns.Connect(c); err != nil {
		return err
	}
	if err := e.graph.AddEdge(c.From.Node(), c.To.Node()); err != nil {
		e.conns.Disconnect(c)
		return fmt.Errorf("%s: %w", c, err)
	}
	ctxlog.FromContext(ctx).Debug("Connected.", "connection", c.String())
	return nil
}

// Disconnect removes a connection. It reports whether the connection existed.
func (e *Executor) Disconnect(ctx context.Context, c connection.Connection) bool {
	if !e.conns.Disconnect(c) {
		return false
	}
	e.graph.RemoveEdge(c.From.Node(), c.To.Node())
	ctxlog.FromContext(ctx).Debug("Disconnected.", "connection", c.String())
	return true
}

// Connections returns every connection in creation order.
func (e *Executor) Connections() []connection.Connection {
	return e.conns.All()
}

// Node returns the node with the given id.
func (e *Executor) Node(id int) (node.Node, bool) {
	ent, ok := e.nodes[id]
	if !ok {
		return nil, false
	}
	return ent.node, true
}

// Nodes returns every node in insertion order.
func (e *Executor) Nodes() []node.Node {
	out := make([]node.Node, 0, len(e.order))
	for _, id := range e.order {
		out = append(out, e.nodes[id].node)
	}
	return out
}

// Snapshot is one node's setting record together with its identity.
type Snapshot struct {
	Key    socket.NodeKey
	Record setting.Record
}

// Settings snapshots every node in insertion order.
func (e *Executor) Settings() []Snapshot {
	out := make([]Snapshot, 0, len(e.order))
	for _, id := range e.order {
		ent := e.nodes[id]
		out = append(out, Snapshot{Key: ent.key, Record: ent.node.Setting()})
	}
	return out
}

// ApplySettings restores snapshots onto the nodes they name. Snapshots for
// unknown nodes or mismatched types are reported together; the others are
// still applied.
func (e *Executor) ApplySettings(ctx context.Context, snaps []Snapshot) error {
	var errs []error
	for _, s := range snaps {
		ent, ok := e.nodes[s.Key.ID]
		if !ok || ent.key.Type != s.Key.Type {
			errs = append(errs, fmt.Errorf("settings for %s: %w", s.Key, ErrUnknownNode))
			continue
		}
		ent.node.SetSetting(ctx, s.Record)
	}
	return errors.Join(errs...)
}

// Close closes every node in reverse insertion order and empties the graph.
func (e *Executor) Close(ctx context.Context) {
	for i := len(e.order) - 1; i >= 0; i-- {
		ent := e.nodes[e.order[i]]
		ent.node.Close(ctx)
		e.conns.Forget(ent.key)
		e.graph.RemoveNode(ent.key)
		e.fc.ForgetNode(ent.key)
	}
	e.nodes = make(map[int]*entry)
	e.order = nil
}
