package node

import (
	"context"
	"fmt"
	"image"
	"slices"
	"time"

	"github.com/disintegration/imaging"
	"github.com/vk/nodegridgo/internal/connection"
	"github.com/vk/nodegridgo/internal/ctxlog"
	"github.com/vk/nodegridgo/internal/frame"
	"github.com/vk/nodegridgo/internal/setting"
	"github.com/vk/nodegridgo/internal/socket"
	"github.com/zclconf/go-cty/cty"
)

// Base implements the parts of Node that do not depend on what the node
// computes. Node types embed it and call Init from their Add.
type Base struct {
	key     socket.NodeKey
	version string
	pos     setting.Position
	cfg     Config
	decls   []socket.Decl
	fc      *frame.Context
	display *image.NRGBA
}

// Init binds the node, declares its sockets, writes their defaults into the
// value store and allocates a zeroed display buffer.
func (b *Base) Init(fc *frame.Context, key socket.NodeKey, version string, pos setting.Position, cfg Config, decls ...socket.Decl) error {
	seen := make(map[socket.ID]bool, len(decls))
	for _, d := range decls {
		if d.ID.Node() != key {
			return fmt.Errorf("socket %s does not belong to node %s", d.ID, key)
		}
		if seen[d.ID] {
			return fmt.Errorf("socket %s declared twice", d.ID)
		}
		seen[d.ID] = true
	}

	b.key = key
	b.version = version
	b.pos = pos
	b.cfg = cfg
	b.decls = slices.Clone(decls)
	b.fc = fc

	for _, d := range decls {
		if d.Default == cty.NilVal {
			continue
		}
		v, err := d.Normalize(d.Default)
		if err != nil {
			return fmt.Errorf("default of %s: %w", d.ID, err)
		}
		fc.Values.Set(d.ID, v)
	}

	if cfg.ProcessWidth > 0 && cfg.ProcessHeight > 0 {
		b.display = image.NewNRGBA(image.Rect(0, 0, cfg.ProcessWidth, cfg.ProcessHeight))
	}
	return nil
}

// Key returns the node's key.
func (b *Base) Key() socket.NodeKey { return b.key }

// Version returns the node's version tag.
func (b *Base) Version() string { return b.version }

// Config returns the shared configuration the node was added with.
func (b *Base) Config() Config { return b.cfg }

// Position returns the node's canvas position.
func (b *Base) Position() setting.Position { return b.pos }

// Sockets returns the declared sockets in declaration order.
func (b *Base) Sockets() []socket.Decl { return slices.Clone(b.decls) }

// Decl looks up a declared socket.
func (b *Base) Decl(id socket.ID) (socket.Decl, bool) {
	for _, d := range b.decls {
		if d.ID == id {
			return d, true
		}
	}
	return socket.Decl{}, false
}

// Socket builds the id of one of the node's own sockets.
func (b *Base) Socket(kind socket.Kind, role socket.Role, index int) socket.ID {
	return b.key.Socket(kind, role, index)
}

// Resolve copies upstream scalar values into the node's input sockets,
// normalizing them to each socket's kind and bounds, and returns the
// latest upstream image for every connected IMAGE input. Connections that
// do not end at this node are ignored. An upstream socket that has no value
// yet leaves the input untouched.
func (b *Base) Resolve(ctx context.Context, conns []connection.Connection, fc *frame.Context) map[socket.ID]image.Image {
	logger := ctxlog.FromContext(ctx)
	images := make(map[socket.ID]image.Image)
	for _, c := range conns {
		if c.To.Node() != b.key {
			continue
		}
		if c.To.Kind == socket.KindImage {
			if img, ok := fc.Images.Get(c.From.Node()); ok {
				images[c.To] = img
			}
			continue
		}

		v, ok := fc.Values.Get(c.From)
		if !ok {
			continue
		}
		decl, ok := b.Decl(c.To)
		if !ok {
			logger.Debug("Connection to undeclared socket ignored.", "socket", c.To.String())
			continue
		}
		normalized, err := decl.Normalize(v)
		if err != nil {
			logger.Debug("Upstream value rejected.", "connection", c.String(), "error", err)
			continue
		}
		fc.Values.Set(c.To, normalized)
	}
	return images
}

// SetValue writes a value into one of the node's own sockets after
// normalizing it.
func (b *Base) SetValue(id socket.ID, v cty.Value) error {
	decl, ok := b.Decl(id)
	if !ok {
		return fmt.Errorf("node %s has no socket %s", b.key, id)
	}
	normalized, err := decl.Normalize(v)
	if err != nil {
		return err
	}
	b.fc.Values.Set(id, normalized)
	return nil
}

// Refresh copies a scaled version of img into the display buffer.
func (b *Base) Refresh(img image.Image) {
	if b.display == nil || img == nil {
		return
	}
	scaled := imaging.Resize(img, b.cfg.ProcessWidth, b.cfg.ProcessHeight, imaging.Linear)
	copy(b.display.Pix, scaled.Pix)
}

// Display returns the node's display buffer, or nil once released.
func (b *Base) Display() *image.NRGBA { return b.display }

// Release frees the display buffer. It is safe to call more than once.
func (b *Base) Release() {
	b.display = nil
}

// Setting snapshots the persisted sockets and the position.
func (b *Base) Setting() setting.Record {
	rec := setting.New(b.version, b.pos)
	if b.fc == nil {
		return rec
	}
	for _, d := range b.decls {
		if !d.Persist {
			continue
		}
		if v, ok := b.fc.Values.Get(d.ID); ok {
			rec.Values[d.ID] = v
		}
	}
	return rec
}

// SetSetting restores the position and the persisted sockets. Entries
// recorded under another node id of the same type are rebound to this node,
// so a record can be applied to a fresh instance. Missing or malformed
// entries fall back to the socket defaults.
func (b *Base) SetSetting(ctx context.Context, rec setting.Record) {
	if b.fc == nil {
		return
	}
	rebound := setting.New(rec.Version, rec.Pos)
	for id, v := range rec.Values {
		if id.NodeType != b.key.Type {
			continue
		}
		id.NodeID = b.key.ID
		rebound.Values[id] = v
	}

	b.pos = rec.Pos
	for id, v := range rebound.Resolve(ctx, b.version, b.decls) {
		b.fc.Values.Set(id, v)
	}
}

// FormatTiming renders an elapsed time as zero-padded milliseconds, e.g.
// "0003ms".
func FormatTiming(d time.Duration) string {
	return fmt.Sprintf("%04dms", d.Milliseconds())
}
