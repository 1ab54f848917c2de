// Package threshold provides the Threshold node, which binarizes its input
// image with a selectable algorithm and cutoff.
package threshold

import (
	"context"
	"fmt"
	"time"

	"github.com/vk/nodegridgo/internal/connection"
	"github.com/vk/nodegridgo/internal/ctxlog"
	"github.com/vk/nodegridgo/internal/frame"
	"github.com/vk/nodegridgo/internal/node"
	"github.com/vk/nodegridgo/internal/setting"
	"github.com/vk/nodegridgo/internal/socket"
	algo "github.com/vk/nodegridgo/internal/threshold"
	"github.com/zclconf/go-cty/cty"
)

const (
	// Tag is the node's type tag.
	Tag = "Threshold"
	// Version is written into the node's setting records.
	Version = "0.0.1"

	defaultCutoff = 127
	minCutoff     = 0
	maxCutoff     = 255
)

// Node is the Threshold node.
type Node struct {
	node.Base

	input     socket.ID
	algorithm socket.ID
	cutoff    socket.ID
	output    socket.ID
	timing    socket.ID
}

// Type returns the node's type tag.
func (n *Node) Type() string { return Tag }

// Add declares the image input, the algorithm selector, the cutoff and the
// image output. The timing output only exists when the perf counter is on.
func (n *Node) Add(ctx context.Context, fc *frame.Context, id int, pos setting.Position, cfg node.Config) error {
	key := socket.NodeKey{ID: id, Type: Tag}
	n.input = key.Socket(socket.KindImage, socket.RoleInput, 1)
	n.algorithm = key.Socket(socket.KindText, socket.RoleStatic, 2)
	n.cutoff = key.Socket(socket.KindInt, socket.RoleInput, 3)
	n.output = key.Socket(socket.KindImage, socket.RoleOutput, 1)
	n.timing = key.Socket(socket.KindTime, socket.RoleOutput, 2)

	decls := []socket.Decl{
		socket.NewDecl(n.input, "image"),
		socket.NewDecl(n.algorithm, "type").
			WithDefault(cty.StringVal(algo.Types()[0].String())).
			Persisted(),
		socket.NewDecl(n.cutoff, "threshold").
			WithDefault(cty.NumberIntVal(defaultCutoff)).
			WithRange(minCutoff, maxCutoff).
			Persisted(),
		socket.NewDecl(n.output, "image"),
	}
	if cfg.UsePerfCounter {
		decls = append(decls, socket.NewDecl(n.timing, "elapsed"))
	}

	if err := n.Init(fc, key, Version, pos, cfg, decls...); err != nil {
		return fmt.Errorf("add %s: %w", key, err)
	}
	ctxlog.FromContext(ctx).Debug("Threshold node added.", "node", key.String(), "backend", algo.Backend)
	return nil
}

// Update thresholds the upstream image. Without an upstream image it does
// nothing and leaves the timing output as it was.
func (n *Node) Update(ctx context.Context, conns []connection.Connection, fc *frame.Context) (node.Result, error) {
	images := n.Resolve(ctx, conns, fc)
	img, ok := images[n.input]
	if !ok {
		return node.Result{}, nil
	}

	typ := n.algorithmType(ctx, fc)
	cutoff, err := fc.Values.Int(n.cutoff)
	if err != nil {
		return node.Result{}, fmt.Errorf("read cutoff: %w", err)
	}
	cutoff = socket.ClampInt(cutoff, minCutoff, maxCutoff)

	start := time.Now()
	out := algo.Apply(img, typ, uint8(cutoff))
	elapsed := time.Since(start)

	res := node.Result{Image: out, Elapsed: elapsed}
	if n.Config().UsePerfCounter {
		timing := node.FormatTiming(elapsed)
		fc.Values.Set(n.timing, cty.StringVal(timing))
		res.Aux = timing
	}
	n.Refresh(out)
	return res, nil
}

// algorithmType reads the selector, falling back to the first algorithm
// when the stored name is unknown.
func (n *Node) algorithmType(ctx context.Context, fc *frame.Context) algo.Type {
	name, err := fc.Values.String(n.algorithm)
	if err != nil {
		return algo.Types()[0]
	}
	typ, err := algo.ParseType(name)
	if err != nil {
		ctxlog.FromContext(ctx).Debug("Unknown threshold type, using default.", "node", n.Key().String(), "type", name)
		return algo.Types()[0]
	}
	return typ
}

// Close releases the display buffer.
func (n *Node) Close(context.Context) {
	n.Release()
}
