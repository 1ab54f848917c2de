package socket

import (
	"fmt"
)

// NodeKey identifies a node instance within a graph. It is also the key of
// the node's entry in the image store.
type NodeKey struct {
	ID   int
	Type string
}

// String returns the canonical `<id>:<type>` form.
func (k NodeKey) String() string {
	return fmt.Sprintf("%d:%s", k.ID, k.Type)
}

// Socket builds the ID of a socket on this node.
func (k NodeKey) Socket(kind Kind, role Role, index int) ID {
	return ID{NodeID: k.ID, NodeType: k.Type, Kind: kind, Role: role, Index: index}
}

// ID is the structured, comparable identifier of a socket.
type ID struct {
	NodeID   int
	NodeType string
	Kind     Kind
	Role     Role
	Index    int
}

// Node returns the key of the node that owns the socket.
func (id ID) Node() NodeKey {
	return NodeKey{ID: id.NodeID, Type: id.NodeType}
}

// String serializes the ID into its canonical form.
func (id ID) String() string {
	return fmt.Sprintf("%d:%s:%s:%s%02d", id.NodeID, id.NodeType, id.Kind, id.Role, id.Index)
}

// MarshalText implements encoding.TextMarshaler so IDs can be map keys in
// encoded documents.
func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *ID) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
