package print

import (
	"io"
	"os"

	"github.com/vk/nodegridgo/internal/node"
	"github.com/vk/nodegridgo/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct {
	// Out receives the printed lines. Nil means standard output.
	Out io.Writer
}

// Register registers the Print node type.
func (m *Module) Register(r *registry.Registry) {
	out := m.Out
	if out == nil {
		out = os.Stdout
	}
	r.Register(Tag, func() node.Node { return &Node{out: out} })
}
