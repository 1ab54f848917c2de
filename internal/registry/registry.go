package registry

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/vk/nodegridgo/internal/node"
)

// ErrUnknownType is returned when no factory is registered for a tag.
var ErrUnknownType = errors.New("unknown node type")

// Module is the interface that all node modules must implement to be registered.
type Module interface {
	Register(r *Registry)
}

// Registry holds the node factories of a single application instance.
type Registry struct {
	factories map[string]node.Factory
	order     []string
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{
		factories: make(map[string]node.Factory),
	}
}

// Load registers every module in order.
func (r *Registry) Load(modules ...Module) {
	for _, m := range modules {
		m.Register(r)
	}
}

// Register adds a node factory under its type tag.
func (r *Registry) Register(tag string, f node.Factory) {
	if _, exists := r.factories[tag]; exists {
		panic(fmt.Sprintf("node type '%s' already registered", tag))
	}
	slog.Debug("Registering node type.", "type", tag)
	r.factories[tag] = f
	r.order = append(r.order, tag)
}

// New creates a fresh node instance of the given type.
func (r *Registry) New(tag string) (node.Node, error) {
	f, ok := r.factories[tag]
	if !ok {
		return nil, fmt.Errorf("%w: '%s'", ErrUnknownType, tag)
	}
	return f(), nil
}

// Types returns the registered tags in registration order.
func (r *Registry) Types() []string {
	return slices.Clone(r.order)
}
