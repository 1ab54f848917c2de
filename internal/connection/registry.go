package connection

import (
	"errors"
	"fmt"

	"github.com/vk/nodegridgo/internal/socket"
)

var (
	// ErrUnknownSocket is returned when an endpoint was never declared.
	ErrUnknownSocket = errors.New("unknown socket")
	// ErrKindMismatch is returned when the endpoints carry different kinds.
	ErrKindMismatch = errors.New("socket kind mismatch")
	// ErrRoleMismatch is returned when roles are not Output/Static → Input.
	ErrRoleMismatch = errors.New("socket role mismatch")
	// ErrInputTaken is returned when the destination is already connected.
	ErrInputTaken = errors.New("input socket already connected")
	// ErrDuplicate is returned when the same connection is made twice.
	ErrDuplicate = errors.New("connection already exists")
)

// Connection is a directed edge from a source socket to a destination socket.
type Connection struct {
	From socket.ID
	To   socket.ID
}

// String renders the connection using canonical socket identifiers.
func (c Connection) String() string {
	return c.From.String() + " -> " + c.To.String()
}

// Registry stores declared sockets and the connections between them.
type Registry struct {
	sockets     map[socket.ID]socket.Decl
	connections []Connection
	incoming    map[socket.ID]Connection
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		sockets:  make(map[socket.ID]socket.Decl),
		incoming: make(map[socket.ID]Connection),
	}
}

// Declare registers sockets so they can take part in connections.
func (r *Registry) Declare(decls ...socket.Decl) {
	for _, d := range decls {
		r.sockets[d.ID] = d
	}
}

// Decl returns the declaration of a socket.
func (r *Registry) Decl(id socket.ID) (socket.Decl, bool) {
	d, ok := r.sockets[id]
	return d, ok
}

// Forget removes every socket of the node and every connection touching it.
// It returns the removed connections.
func (r *Registry) Forget(key socket.NodeKey) []Connection {
	for id := range r.sockets {
		if id.Node() == key {
			delete(r.sockets, id)
		}
	}

	var removed []Connection
	kept := r.connections[:0]
	for _, c := range r.connections {
		if c.From.Node() == key || c.To.Node() == key {
			removed = append(removed, c)
			delete(r.incoming, c.To)
			continue
		}
		kept = append(kept, c)
	}
	r.connections = kept
	return removed
}

// Typecheck validates a connection against the declared sockets.
func (r *Registry) Typecheck(c Connection) error {
	from, ok := r.sockets[c.From]
	if !ok {
		return fmt.Errorf("source %s: %w", c.From, ErrUnknownSocket)
	}
	to, ok := r.sockets[c.To]
	if !ok {
		return fmt.Errorf("destination %s: %w", c.To, ErrUnknownSocket)
	}
	if from.ID.Kind != to.ID.Kind {
		return fmt.Errorf("%s: %s cannot feed %s: %w", c, from.ID.Kind, to.ID.Kind, ErrKindMismatch)
	}
	if !from.ID.Role.IsSource() || to.ID.Role != socket.RoleInput {
		return fmt.Errorf("%s: %s cannot feed %s: %w", c, from.ID.Role, to.ID.Role, ErrRoleMismatch)
	}
	return nil
}

// Compatible reports whether Typecheck accepts the connection.
func (r *Registry) Compatible(c Connection) bool {
	return r.Typecheck(c) == nil
}

// Connect establishes a connection after validating it.
func (r *Registry) Connect(c Connection) error {
	if err := r.Typecheck(c); err != nil {
		return err
	}
	if existing, ok := r.incoming[c.To]; ok {
		if existing == c {
			return fmt.Errorf("%s: %w", c, ErrDuplicate)
		}
		return fmt.Errorf("%s: already fed by %s: %w", c.To, existing.From, ErrInputTaken)
	}
	r.connections = append(r.connections, c)
	r.incoming[c.To] = c
	return nil
}

// Disconnect removes a connection. It reports whether it existed.
func (r *Registry) Disconnect(c Connection) bool {
	for i, existing := range r.connections {
		if existing == c {
			r.connections = append(r.connections[:i], r.connections[i+1:]...)
			delete(r.incoming, c.To)
			return true
		}
	}
	return false
}

// Resolve returns, in creation order, the connections feeding the node's
// inputs.
func (r *Registry) Resolve(key socket.NodeKey) []Connection {
	var out []Connection
	for _, c := range r.connections {
		if c.To.Node() == key {
			out = append(out, c)
		}
	}
	return out
}

// All returns a copy of every connection in creation order.
func (r *Registry) All() []Connection {
	out := make([]Connection, len(r.connections))
	copy(out, r.connections)
	return out
}
