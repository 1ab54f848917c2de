// Package node defines the contract every processing node implements and a
// Base type that carries the socket plumbing shared by all node types.
//
// A node instance is created per graph node by a factory registered under
// its type tag. Add binds the instance to its node id; every later call acts
// on that id.
package node

import (
	"context"
	"image"
	"time"

	"github.com/vk/nodegridgo/internal/connection"
	"github.com/vk/nodegridgo/internal/frame"
	"github.com/vk/nodegridgo/internal/setting"
	"github.com/vk/nodegridgo/internal/socket"
)

// Config is the graph-wide configuration shared by all nodes.
type Config struct {
	// ProcessWidth and ProcessHeight size every node's display buffer.
	ProcessWidth  int
	ProcessHeight int
	// UsePerfCounter enables the TIME_MS timing output on nodes that have one.
	UsePerfCounter bool
}

// Result is what a node produced during one update.
type Result struct {
	// Image is the node's output image, or nil when it computed nothing.
	Image image.Image
	// Aux is an auxiliary output, e.g. the formatted timing string.
	Aux any
	// Elapsed is the time spent in the node's transformation.
	Elapsed time.Duration
}

// Node is a unit of computation in the processing graph.
type Node interface {
	// Type returns the node's type tag.
	Type() string
	// Version returns the version tag written into setting records.
	Version() string
	// Add declares the node's sockets and default configuration. It is
	// called exactly once per instance.
	Add(ctx context.Context, fc *frame.Context, id int, pos setting.Position, cfg Config) error
	// Sockets returns the sockets declared by Add.
	Sockets() []socket.Decl
	// Update consumes the resolved connections and produces the node's
	// outputs for the current frame. A node with no input image returns an
	// empty Result and no error.
	Update(ctx context.Context, conns []connection.Connection, fc *frame.Context) (Result, error)
	// Close releases the node's resources. It is safe after a failed Add and
	// safe to call twice.
	Close(ctx context.Context)
	// Setting snapshots the node's configuration.
	Setting() setting.Record
	// SetSetting restores a configuration snapshot.
	SetSetting(ctx context.Context, rec setting.Record)
}

// Displayer is implemented by nodes that keep a display buffer.
type Displayer interface {
	Display() *image.NRGBA
}

// Factory creates a fresh, unbound node instance.
type Factory func() Node
