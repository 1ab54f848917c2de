// Package setting defines the persisted configuration snapshot of a node.
//
// A Record holds the node type's version tag, the node's canvas position and
// one value per persisted socket. Its flat form, used by files and the
// settings command, is a single mapping:
//
//	ver: 0.0.1
//	pos: [120, 40]
//	"2:Threshold:TEXT:Static02": THRESH_BINARY
//	"2:Threshold:INT:Input03": 127
//
// Image sockets are never part of a record.
package setting

import (
	"fmt"
	"maps"
	"math/big"
	"slices"

	"github.com/vk/nodegridgo/internal/socket"
	"github.com/zclconf/go-cty/cty"
)

const (
	keyVersion  = "ver"
	keyPosition = "pos"
)

// Position is a node's location on the editor canvas.
type Position struct {
	X float64
	Y float64
}

// Record is a node's configuration snapshot.
type Record struct {
	Version string
	Pos     Position
	Values  map[socket.ID]cty.Value
}

// New returns an empty record for the given version and position.
func New(version string, pos Position) Record {
	return Record{Version: version, Pos: pos, Values: make(map[socket.ID]cty.Value)}
}

// Keys returns the record's socket ids in canonical string order.
func (r Record) Keys() []socket.ID {
	return slices.SortedFunc(maps.Keys(r.Values), func(a, b socket.ID) int {
		switch {
		case a.String() < b.String():
			return -1
		case a.String() > b.String():
			return 1
		}
		return 0
	})
}

// Flatten produces the flat mapping form of the record. Numbers holding a
// whole value become int64, other numbers float64.
func (r Record) Flatten() map[string]any {
	out := map[string]any{
		keyVersion:  r.Version,
		keyPosition: []float64{r.Pos.X, r.Pos.Y},
	}
	for id, v := range r.Values {
		if p, ok := primitive(v); ok {
			out[id.String()] = p
		}
	}
	return out
}

// FromFlat parses the flat mapping form. Keys that are not socket ids and
// values that are not primitives are skipped; a missing or malformed
// version or position is left at its zero value.
func FromFlat(flat map[string]any) Record {
	rec := Record{Values: make(map[socket.ID]cty.Value)}
	for k, raw := range flat {
		switch k {
		case keyVersion:
			if s, ok := raw.(string); ok {
				rec.Version = s
			}
		case keyPosition:
			if pos, err := parsePosition(raw); err == nil {
				rec.Pos = pos
			}
		default:
			id, err := socket.Parse(k)
			if err != nil {
				continue
			}
			if v, ok := fromPrimitive(raw); ok {
				rec.Values[id] = v
			}
		}
	}
	return rec
}

func primitive(v cty.Value) (any, bool) {
	if v == cty.NilVal || v.IsNull() || !v.IsKnown() {
		return nil, false
	}
	switch v.Type() {
	case cty.String:
		return v.AsString(), true
	case cty.Bool:
		return v.True(), true
	case cty.Number:
		bf := v.AsBigFloat()
		if bf.IsInt() {
			if i, acc := bf.Int64(); acc == big.Exact {
				return i, true
			}
		}
		f, _ := bf.Float64()
		return f, true
	}
	return nil, false
}

func fromPrimitive(raw any) (cty.Value, bool) {
	switch x := raw.(type) {
	case string:
		return cty.StringVal(x), true
	case bool:
		return cty.BoolVal(x), true
	case int:
		return cty.NumberIntVal(int64(x)), true
	case int64:
		return cty.NumberIntVal(x), true
	case uint64:
		return cty.NumberUIntVal(x), true
	case float64:
		return cty.NumberFloatVal(x), true
	}
	return cty.NilVal, false
}

func parsePosition(raw any) (Position, error) {
	var coords []float64
	switch x := raw.(type) {
	case []float64:
		coords = x
	case []any:
		for _, c := range x {
			v, ok := fromPrimitive(c)
			if !ok || v.Type() != cty.Number {
				return Position{}, fmt.Errorf("position coordinate %v is not a number", c)
			}
			f, _ := v.AsBigFloat().Float64()
			coords = append(coords, f)
		}
	default:
		return Position{}, fmt.Errorf("position must be a list, got %T", raw)
	}
	if len(coords) != 2 {
		return Position{}, fmt.Errorf("position must have 2 coordinates, got %d", len(coords))
	}
	return Position{X: coords[0], Y: coords[1]}, nil
}
