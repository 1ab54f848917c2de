package app

import (
	"context"
	"fmt"
	"io"

	"github.com/vk/nodegridgo/internal/ctxlog"
	"gopkg.in/yaml.v3"
)

// Settings loads the graph and writes every node's setting record to w as
// one YAML mapping keyed by node, in graph order.
func (a *App) Settings(ctx context.Context, w io.Writer) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	exec, err := a.loadGraph(ctx)
	if err != nil {
		return err
	}
	defer exec.Close(ctx)

	root := &yaml.Node{Kind: yaml.MappingNode}
	for _, s := range exec.Settings() {
		v, err := s.Record.MarshalYAML()
		if err != nil {
			return fmt.Errorf("encode settings of %s: %w", s.Key, err)
		}
		root.Content = append(root.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: s.Key.String()},
			v.(*yaml.Node),
		)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return enc.Close()
}
