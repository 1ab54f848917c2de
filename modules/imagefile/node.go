// Package imagefile provides the ImageFile source node, which emits the
// image stored at a path every frame.
package imagefile

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
	Tag = "ImageFile"
	// Version is written into the node's setting records.
	Version = "0.0.1"
)

// Node is the ImageFile node. The decoded image is cached until the path
// changes.
type Node struct {
	node.Base

	path   socket.ID
	output socket.ID

	loadedPath string
	img        image.Image
}

// Type returns the node's type tag.
func (n *Node) Type() string { return Tag }

// Add declares the path setting and the image output.
func (n *Node) Add(_ context.Context, fc *frame.Context, id int, pos setting.Position, cfg node.Config) error {
	key := socket.NodeKey{ID: id, Type: Tag}
	n.path = key.Socket(socket.KindText, socket.RoleStatic, 1)
	n.output = key.Socket(socket.KindImage, socket.RoleOutput, 2)

	err := n.Init(fc, key, Version, pos, cfg,
		socket.NewDecl(n.path, "path").WithDefault(cty.StringVal("")).Persisted(),
		socket.NewDecl(n.output, "image"),
	)
	if err != nil {
		return fmt.Errorf("add %s: %w", key, err)
	}
	return nil
}

// Update returns the image at the configured path, loading it when the path
// changed. An empty path produces no image.
func (n *Node) Update(ctx context.Context, _ []connection.Connection, fc *frame.Context) (node.Result, error) {
	path, err := fc.Values.String(n.path)
	if err != nil || path == "" {
		return node.Result{}, nil
	}

	if path != n.loadedPath {
		img, err := imaging.Open(path, imaging.AutoOrientation(true))
		if err != nil {
			return node.Result{}, fmt.Errorf("load image: %w", err)
		}
		ctxlog.FromContext(ctx).Debug("Image loaded.", "node", n.Key().String(), "path", path, "size", img.Bounds().Size().String())
		n.loadedPath = path
		n.img = img
		n.Refresh(img)
	}
	return node.Result{Image: n.img}, nil
}

// Close drops the cached image and the display buffer.
func (n *Node) Close(context.Context) {
	n.img = nil
	n.loadedPath = ""
	n.Release()
}
