package intvalue

import (
	"github.com/vk/nodegridgo/internal/node"
	"github.com/vk/nodegridgo/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the IntValue node type.
func (m *Module) Register(r *registry.Registry) {
	r.Register(Tag, func() node.Node { return new(Node) })
}
