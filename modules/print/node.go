// Package print provides the Print node, a sink that writes the scalar
// values reaching its inputs once per frame.
package print

import (
	"context"
	"fmt"
	"io"

	"github.com/vk/nodegridgo/internal/connection"
	"github.com/vk/nodegridgo/internal/ctxlog"
	"github.com/vk/nodegridgo/internal/frame"
	"github.com/vk/nodegridgo/internal/node"
	"github.com/vk/nodegridgo/internal/setting"
	"github.com/vk/nodegridgo/internal/socket"
	"github.com/zclconf/go-cty/cty"
)

const (
	// Tag is the node's type tag.
	Tag = "Print"
	// Version is written into the node's setting records.
	Version = "0.0.1"
)

// Node prints its connected INT and TIME_MS inputs, prefixed by its label.
// Unconnected inputs are not printed.
type Node struct {
	node.Base
	out io.Writer

	label  socket.ID
	value  socket.ID
	timing socket.ID
}

// Type returns the node's type tag.
func (n *Node) Type() string { return Tag }

// Add declares the label setting and the INT and TIME_MS inputs. The
// label defaults to the node key.
func (n *Node) Add(_ context.Context, fc *frame.Context, id int, pos setting.Position, cfg node.Config) error {
	key := socket.NodeKey{ID: id, Type: Tag}
	n.label = key.Socket(socket.KindText, socket.RoleStatic, 1)
	n.value = key.Socket(socket.KindInt, socket.RoleInput, 2)
	n.timing = key.Socket(socket.KindTime, socket.RoleInput, 3)
	err := n.Init(fc, key, Version, pos, cfg,
		socket.NewDecl(n.label, "label").WithDefault(cty.StringVal(key.String())).Persisted(),
		socket.NewDecl(n.value, "value"),
		socket.NewDecl(n.timing, "timing"),
	)
	if err != nil {
		return fmt.Errorf("add %s: %w", key, err)
	}
	return nil
}

// Update resolves the inputs and prints each connected one on its own line.
func (n *Node) Update(ctx context.Context, conns []connection.Connection, fc *frame.Context) (node.Result, error) {
	n.Resolve(ctx, conns, fc)

	connected := make(map[socket.ID]bool)
	for _, c := range conns {
		connected[c.To] = true
	}
	if !connected[n.value] && !connected[n.timing] {
		return node.Result{}, nil
	}

	label, err := fc.Values.String(n.label)
	if err != nil {
		return node.Result{}, err
	}
	ctxlog.FromContext(ctx).Debug("Printing input", "label", label)

	if connected[n.value] {
		if v, err := fc.Values.Int(n.value); err == nil {
			fmt.Fprintf(n.out, "      %s value = %d\n", label, v)
		}
	}
	if connected[n.timing] {
		if s, err := fc.Values.String(n.timing); err == nil {
			fmt.Fprintf(n.out, "      %s timing = %q\n", label, s)
		}
	}
	return node.Result{}, nil
}

// Close releases the display buffer.
func (n *Node) Close(context.Context) { n.Release() }
