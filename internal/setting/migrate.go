package setting

import (
	"context"

	"github.com/vk/nodegridgo/internal/ctxlog"
	"github.com/vk/nodegridgo/internal/socket"
	"github.com/zclconf/go-cty/cty"
)

// Resolve maps a record onto the given socket declarations. For every
// persisted declaration it takes the record's value when present and
// convertible, otherwise the declaration's default. Values pass through
// Decl.Normalize, so numbers are truncated and clamped as the socket
// requires. Record entries for unknown sockets are ignored.
//
// A version tag different from current is accepted; the same policy
// applies, and the mismatch is logged at debug level.
func (r Record) Resolve(ctx context.Context, current string, decls []socket.Decl) map[socket.ID]cty.Value {
	logger := ctxlog.FromContext(ctx)
	if r.Version != current {
		logger.Debug("Migrating setting record.", "from", r.Version, "to", current)
	}

	out := make(map[socket.ID]cty.Value)
	for _, d := range decls {
		if !d.Persist {
			continue
		}
		if v, ok := r.Values[d.ID]; ok {
			normalized, err := d.Normalize(v)
			if err == nil {
				out[d.ID] = normalized
				continue
			}
			logger.Debug("Setting value rejected, using default.", "socket", d.ID.String(), "error", err)
		}
		if d.Default != cty.NilVal {
			if normalized, err := d.Normalize(d.Default); err == nil {
				out[d.ID] = normalized
			}
		}
	}
	return out
}
