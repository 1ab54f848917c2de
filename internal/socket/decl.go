package socket

import (
	"fmt"
	"math"
	"math/big"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// Range bounds the numeric values a socket accepts.
type Range struct {
	Min float64
	Max float64
}

// Clamp limits f to the range.
func (r Range) Clamp(f float64) float64 {
	return math.Min(r.Max, math.Max(r.Min, f))
}

// Decl declares a socket on a node.
type Decl struct {
	ID ID
	// Name is the node-local name used in graph files, e.g. "threshold".
	Name string
	// Default is the initial value of a scalar socket. It is cty.NilVal for
	// image sockets.
	Default cty.Value
	// Bounds, when set, clamps every numeric value written to the socket.
	Bounds *Range
	// Persist marks sockets that belong in the node's setting record.
	Persist bool
}

// NewDecl declares a socket with no default, bounds or persistence.
func NewDecl(id ID, name string) Decl {
	return Decl{ID: id, Name: name, Default: cty.NilVal}
}

// WithDefault returns a copy of d with the given default value.
func (d Decl) WithDefault(v cty.Value) Decl {
	d.Default = v
	return d
}

// WithRange returns a copy of d clamped to [min, max].
func (d Decl) WithRange(min, max float64) Decl {
	d.Bounds = &Range{Min: min, Max: max}
	return d
}

// Persisted returns a copy of d that is part of the setting record.
func (d Decl) Persisted() Decl {
	d.Persist = d.ID.Kind.IsScalar()
	return d
}

// Normalize converts v to the socket's value type and applies the socket's
// clamping policy. INT sockets truncate toward zero before clamping.
func (d Decl) Normalize(v cty.Value) (cty.Value, error) {
	want := d.ID.Kind.CtyType()
	if want == cty.NilType {
		return cty.NilVal, fmt.Errorf("socket %s carries no scalar value", d.ID)
	}
	if v == cty.NilVal || v.IsNull() || !v.IsKnown() {
		return cty.NilVal, fmt.Errorf("socket %s: value is null or unknown", d.ID)
	}

	converted, err := convert.Convert(v, want)
	if err != nil {
		return cty.NilVal, fmt.Errorf("socket %s: %w", d.ID, err)
	}
	if want != cty.Number {
		return converted, nil
	}

	f, _ := converted.AsBigFloat().Float64()
	if math.IsNaN(f) {
		return cty.NilVal, fmt.Errorf("socket %s: value is NaN", d.ID)
	}
	if d.ID.Kind == KindInt {
		f = math.Trunc(f)
	}
	if d.Bounds != nil {
		f = d.Bounds.Clamp(f)
	}
	if d.ID.Kind == KindInt {
		// Int64 saturates out-of-range and infinite values.
		n, _ := new(big.Float).SetFloat64(f).Int64()
		return cty.NumberIntVal(n), nil
	}
	return cty.NumberFloatVal(f), nil
}

// ClampInt applies an integer clamp to x. It is the policy used for INT
// sockets with bounds and is exposed for nodes that read raw integers.
func ClampInt(x, min, max int) int {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}
