// Package intvalue provides the IntValue node, a constant integer source.
package intvalue

import (
	"context"
	"fmt"

	"github.com/vk/nodegridgo/internal/connection"
	"github.com/vk/nodegridgo/internal/frame"
	"github.com/vk/nodegridgo/internal/node"
	"github.com/vk/nodegridgo/internal/setting"
	"github.com/vk/nodegridgo/internal/socket"
	"github.com/zclconf/go-cty/cty"
)

const (
	// Tag is the node's type tag.
	Tag = "IntValue"
	// Version is written into the node's setting records.
	Version = "0.0.1"
)

// Node holds a single persisted integer on its output socket. Downstream
// nodes read it through their connections.
type Node struct {
	node.Base
	value socket.ID
}

// Type returns the node's type tag.
func (n *Node) Type() string { return Tag }

// Add declares the persisted integer output, defaulting to 0.
func (n *Node) Add(_ context.Context, fc *frame.Context, id int, pos setting.Position, cfg node.Config) error {
	key := socket.NodeKey{ID: id, Type: Tag}
	n.value = key.Socket(socket.KindInt, socket.RoleOutput, 1)
	err := n.Init(fc, key, Version, pos, cfg,
		socket.NewDecl(n.value, "value").WithDefault(cty.NumberIntVal(0)).Persisted(),
	)
	if err != nil {
		return fmt.Errorf("add %s: %w", key, err)
	}
	return nil
}

// Update has nothing to compute; the value already sits in the store.
func (n *Node) Update(context.Context, []connection.Connection, *frame.Context) (node.Result, error) {
	return node.Result{}, nil
}

// Close releases the display buffer.
func (n *Node) Close(context.Context) { n.Release() }
