package setting

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/nodegridgo/internal/socket"
	"github.com/zclconf/go-cty/cty"
	"gopkg.in/yaml.v3"
)

var (
	key      = socket.NodeKey{ID: 2, Type: "Threshold"}
	typeID   = key.Socket(socket.KindText, socket.RoleStatic, 2)
	cutoffID = key.Socket(socket.KindInt, socket.RoleInput, 3)
	decls    = []socket.Decl{
		socket.NewDecl(key.Socket(socket.KindImage, socket.RoleInput, 1), "image"),
		socket.NewDecl(typeID, "type").WithDefault(cty.StringVal("THRESH_BINARY")).Persisted(),
		socket.NewDecl(cutoffID, "threshold").WithDefault(cty.NumberIntVal(127)).WithRange(0, 255).Persisted(),
	}
)

func TestRecord_Flatten(t *testing.T) {
	rec := New("0.0.1", Position{X: 120, Y: 40})
	rec.Values[typeID] = cty.StringVal("THRESH_OTSU")
	rec.Values[cutoffID] = cty.NumberIntVal(90)

	want := map[string]any{
		"ver":                       "0.0.1",
		"pos":                       []float64{120, 40},
		"2:Threshold:TEXT:Static02": "THRESH_OTSU",
		"2:Threshold:INT:Input03":   int64(90),
	}
	if diff := cmp.Diff(want, rec.Flatten()); diff != "" {
		t.Errorf("Flatten() mismatch (-want +got):\n%s", diff)
	}
}

func TestFromFlat(t *testing.T) {
	rec := FromFlat(map[string]any{
		"ver":                       "0.0.1",
		"pos":                       []any{10, 20.5},
		"2:Threshold:TEXT:Static02": "THRESH_TRUNC",
		"2:Threshold:INT:Input03":   200,
		"not a socket":              1,
		"2:Threshold:INT:Input04":   []any{1, 2},
	})

	assert.Equal(t, "0.0.1", rec.Version)
	assert.Equal(t, Position{X: 10, Y: 20.5}, rec.Pos)
	require.Len(t, rec.Values, 2)
	assert.True(t, rec.Values[typeID].RawEquals(cty.StringVal("THRESH_TRUNC")))
	assert.True(t, rec.Values[cutoffID].RawEquals(cty.NumberIntVal(200)))
}

func TestFromFlat_MalformedHeader(t *testing.T) {
	rec := FromFlat(map[string]any{"ver": 3, "pos": "here"})
	assert.Empty(t, rec.Version)
	assert.Equal(t, Position{}, rec.Pos)
	assert.Empty(t, rec.Values)
}

func TestRecord_YAMLRoundTrip(t *testing.T) {
	rec := New("0.0.1", Position{X: 120, Y: 40})
	rec.Values[typeID] = cty.StringVal("THRESH_TOZERO")
	rec.Values[cutoffID] = cty.NumberIntVal(33)

	out, err := yaml.Marshal(rec)
	require.NoError(t, err)
	assert.Equal(t, `ver: 0.0.1
pos: [120, 40]
2:Threshold:INT:Input03: 33
2:Threshold:TEXT:Static02: THRESH_TOZERO
`, string(out))

	var back Record
	require.NoError(t, yaml.Unmarshal(out, &back))
	assert.Equal(t, rec.Version, back.Version)
	assert.Equal(t, rec.Pos, back.Pos)
	assert.Equal(t, rec.Flatten(), back.Flatten())
}

func TestRecord_Resolve(t *testing.T) {
	ctx := context.Background()

	t.Run("current record is kept", func(t *testing.T) {
		rec := New("0.0.1", Position{})
		rec.Values[typeID] = cty.StringVal("THRESH_OTSU")
		rec.Values[cutoffID] = cty.NumberIntVal(10)

		got := rec.Resolve(ctx, "0.0.1", decls)
		assert.Len(t, got, 2)
		assert.True(t, got[typeID].RawEquals(cty.StringVal("THRESH_OTSU")))
		assert.True(t, got[cutoffID].RawEquals(cty.NumberIntVal(10)))
	})

	t.Run("missing fields fall back to defaults", func(t *testing.T) {
		rec := New("0.0.0", Position{})
		got := rec.Resolve(ctx, "0.0.1", decls)
		assert.True(t, got[typeID].RawEquals(cty.StringVal("THRESH_BINARY")))
		assert.True(t, got[cutoffID].RawEquals(cty.NumberIntVal(127)))
	})

	t.Run("values are converted and clamped", func(t *testing.T) {
		rec := New("0.0.1", Position{})
		rec.Values[cutoffID] = cty.StringVal("300")
		got := rec.Resolve(ctx, "0.0.1", decls)
		assert.True(t, got[cutoffID].RawEquals(cty.NumberIntVal(255)))
	})

	t.Run("unconvertible values fall back to defaults", func(t *testing.T) {
		rec := New("0.0.1", Position{})
		rec.Values[cutoffID] = cty.StringVal("high")
		got := rec.Resolve(ctx, "0.0.1", decls)
		assert.True(t, got[cutoffID].RawEquals(cty.NumberIntVal(127)))
	})
}
