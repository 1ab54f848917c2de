// Package imagewrite provides the ImageWrite sink node, which saves the image
// it receives to a file. The format follows the file extension.
package imagewrite

import (
	"context"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
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
	Tag = "ImageWrite"
	// Version is written into the node's setting records.
	Version = "0.0.1"
)

// Node is the ImageWrite node.
type Node struct {
	node.Base

	input socket.ID
	path  socket.ID

	written     image.Image
	writtenPath string
}

// Type returns the node's type tag.
func (n *Node) Type() string { return Tag }

// Add declares the image input and the path setting.
func (n *Node) Add(_ context.Context, fc *frame.Context, id int, pos setting.Position, cfg node.Config) error {
	key := socket.NodeKey{ID: id, Type: Tag}
	n.input = key.Socket(socket.KindImage, socket.RoleInput, 1)
	n.path = key.Socket(socket.KindText, socket.RoleStatic, 2)
	err := n.Init(fc, key, Version, pos, cfg,
		socket.NewDecl(n.input, "image"),
		socket.NewDecl(n.path, "path").WithDefault(cty.StringVal("")).Persisted(),
	)
	if err != nil {
		return fmt.Errorf("add %s: %w", key, err)
	}
	return nil
}

// Update saves the upstream image when it or the path changed since the
// last write. It never produces an image of its own.
func (n *Node) Update(ctx context.Context, conns []connection.Connection, fc *frame.Context) (node.Result, error) {
	img, ok := n.Resolve(ctx, conns, fc)[n.input]
	if !ok {
		return node.Result{}, nil
	}
	path, err := fc.Values.String(n.path)
	if err != nil || path == "" {
		return node.Result{}, nil
	}
	if img == n.written && path == n.writtenPath {
		return node.Result{}, nil
	}

	if err := imaging.Save(img, path); err != nil {
		return node.Result{}, fmt.Errorf("save image: %w", err)
	}
	ctxlog.FromContext(ctx).Debug("Image written.", "node", n.Key().String(), "path", path)
	n.written = img
	n.writtenPath = path
	n.Refresh(img)
	return node.Result{}, nil
}

// Close forgets the last written image and releases the display buffer.
func (n *Node) Close(context.Context) {
	n.written = nil
	n.Release()
}
