package registry

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/nodegridgo/internal/ctxlog"
	"github.com/vk/nodegridgo/internal/frame"
	"github.com/vk/nodegridgo/internal/node"
	"github.com/vk/nodegridgo/internal/setting"
)

// ValidateRegistry instantiates every registered type into a scratch frame
// and checks that it reports the tag it was registered under, carries a
// version tag, and declares only its own sockets with unique local names.
func (r *Registry) ValidateRegistry(ctx context.Context) error {
	var errs []error
	logger := ctxlog.FromContext(ctx)

	for _, tag := range r.order {
		n := r.factories[tag]()
		if err := validateNode(ctx, tag, n); err != nil {
			errs = append(errs, fmt.Errorf("node type '%s': %w", tag, err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed: %w", errors.Join(errs...))
	}
	logger.Debug("Registry validation passed.", "types", len(r.order))
	return nil
}

func validateNode(ctx context.Context, tag string, n node.Node) error {
	if n.Type() != tag {
		return fmt.Errorf("factory builds type '%s'", n.Type())
	}
	fc := frame.New()
	if err := n.Add(ctx, fc, 0, setting.Position{}, node.Config{}); err != nil {
		n.Close(ctx)
		return fmt.Errorf("add failed: %w", err)
	}
	defer n.Close(ctx)

	if n.Version() == "" {
		return errors.New("empty version tag")
	}

	names := make(map[string]bool)
	for _, d := range n.Sockets() {
		if d.ID.NodeType != tag {
			return fmt.Errorf("socket %s declared with foreign type", d.ID)
		}
		key := d.ID.Role.String() + "/" + d.Name
		if names[key] {
			return fmt.Errorf("socket name '%s' used twice for role %s", d.Name, d.ID.Role)
		}
		names[key] = true
	}
	return nil
}
