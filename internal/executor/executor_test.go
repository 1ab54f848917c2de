package executor

import (
	"context"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/nodegridgo/internal/connection"
	"github.com/vk/nodegridgo/internal/frame"
	"github.com/vk/nodegridgo/internal/node"
	"github.com/vk/nodegridgo/internal/registry"
	"github.com/vk/nodegridgo/internal/setting"
	"github.com/vk/nodegridgo/internal/socket"
	"github.com/vk/nodegridgo/modules/threshold"
	"github.com/zclconf/go-cty/cty"
)

// sourceNode emits a fixed image, or fails when told to.
type sourceNode struct {
	node.Base
	img     image.Image
	fail    error
	updates *[]string
}

func (s *sourceNode) Type() string { return "Source" }

func (s *sourceNode) Add(_ context.Context, fc *frame.Context, id int, pos setting.Position, cfg node.Config) error {
	key := socket.NodeKey{ID: id, Type: "Source"}
	return s.Init(fc, key, "1.0.0", pos, cfg, socket.NewDecl(key.Socket(socket.KindImage, socket.RoleOutput, 1), "image"))
}

func (s *sourceNode) Update(context.Context, []connection.Connection, *frame.Context) (node.Result, error) {
	if s.updates != nil {
		*s.updates = append(*s.updates, s.Key().String())
	}
	if s.fail != nil {
		return node.Result{}, s.fail
	}
	return node.Result{Image: s.img}, nil
}

func (s *sourceNode) Close(context.Context) { s.Release() }

// brokenNode always fails to add.
type brokenNode struct {
	node.Base
	closed *bool
}

func (b *brokenNode) Type() string { return "Broken" }

func (b *brokenNode) Add(context.Context, *frame.Context, int, setting.Position, node.Config) error {
	return errors.New("no resources")
}

func (b *brokenNode) Update(context.Context, []connection.Connection, *frame.Context) (node.Result, error) {
	return node.Result{}, nil
}

func (b *brokenNode) Close(context.Context) { *b.closed = true }

type testModule struct {
	source func() *sourceNode
	closed *bool
}

func (m testModule) Register(r *registry.Registry) {
	r.Register("Source", func() node.Node { return m.source() })
	r.Register("Broken", func() node.Node { return &brokenNode{closed: m.closed} })
}

type recorder struct{ reports []*Report }

func (r *recorder) ObserveFrame(_ context.Context, rep *Report) { r.reports = append(r.reports, rep) }

func solid(w, h int, v uint8) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = v, v, v, 255
	}
	return img
}

type fixture struct {
	exec    *Executor
	updates []string
	closed  bool
	fail    error
	img     image.Image
}

func newFixture(t *testing.T, cfg node.Config, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{img: solid(10, 10, 200)}
	reg := registry.New()
	reg.Load(
		testModule{
			source: func() *sourceNode { return &sourceNode{img: f.img, fail: f.fail, updates: &f.updates} },
			closed: &f.closed,
		},
		&threshold.Module{},
	)
	f.exec = New(reg, cfg, opts...)
	return f
}

func imageOut(key socket.NodeKey) socket.ID {
	return key.Socket(socket.KindImage, socket.RoleOutput, 1)
}

func imageIn(key socket.NodeKey) socket.ID {
	return key.Socket(socket.KindImage, socket.RoleInput, 1)
}

func TestExecutor_AddNode(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, node.Config{})

	_, err := f.exec.AddNode(ctx, "Source", 0, setting.Position{})
	require.NoError(t, err)

	_, err = f.exec.AddNode(ctx, "Source", 0, setting.Position{})
	assert.ErrorIs(t, err, ErrDuplicateNode)

	_, err = f.exec.AddNode(ctx, "Missing", 1, setting.Position{})
	assert.ErrorIs(t, err, registry.ErrUnknownType)

	_, err = f.exec.AddNode(ctx, "Broken", 2, setting.Position{})
	assert.ErrorContains(t, err, "no resources")
	assert.True(t, f.closed, "failed add is closed")
	_, ok := f.exec.Node(2)
	assert.False(t, ok)

	_, err = f.exec.AddNode(ctx, "Source", -1, setting.Position{})
	assert.Error(t, err)

	assert.Len(t, f.exec.Nodes(), 1)
}

func TestExecutor_Connect(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, node.Config{})
	src := socket.NodeKey{ID: 0, Type: "Source"}
	a := socket.NodeKey{ID: 1, Type: threshold.Tag}
	b := socket.NodeKey{ID: 2, Type: threshold.Tag}
	for _, k := range []socket.NodeKey{src, a, b} {
		_, err := f.exec.AddNode(ctx, k.Type, k.ID, setting.Position{})
		require.NoError(t, err)
	}

	require.NoError(t, f.exec.Connect(ctx, connection.Connection{From: imageOut(src), To: imageIn(a)}))
	require.NoError(t, f.exec.Connect(ctx, connection.Connection{From: imageOut(a), To: imageIn(b)}))

	err := f.exec.Connect(ctx, connection.Connection{From: imageOut(src), To: imageIn(b)})
	assert.ErrorIs(t, err, connection.ErrInputTaken)

	err = f.exec.Connect(ctx, connection.Connection{From: imageOut(src), To: a.Socket(socket.KindInt, socket.RoleInput, 3)})
	assert.ErrorIs(t, err, connection.ErrKindMismatch)

	require.True(t, f.exec.Disconnect(ctx, connection.Connection{From: imageOut(src), To: imageIn(a)}))
	err = f.exec.Connect(ctx, connection.Connection{From: imageOut(b), To: imageIn(a)})
	assert.ErrorIs(t, err, ErrCycle)

	err = f.exec.Connect(ctx, connection.Connection{From: imageOut(a), To: imageIn(a)})
	assert.ErrorIs(t, err, ErrCycle)

	assert.Len(t, f.exec.Connections(), 1)
}

func TestExecutor_RunFrame(t *testing.T) {
	ctx := context.Background()
	rec := &recorder{}
	f := newFixture(t, node.Config{UsePerfCounter: true}, WithObserver(rec))
	src := socket.NodeKey{ID: 5, Type: "Source"}
	th := socket.NodeKey{ID: 1, Type: threshold.Tag}

	// Downstream node added first; the pass must still run the source first.
	_, err := f.exec.AddNode(ctx, th.Type, th.ID, setting.Position{})
	require.NoError(t, err)
	_, err = f.exec.AddNode(ctx, src.Type, src.ID, setting.Position{})
	require.NoError(t, err)
	require.NoError(t, f.exec.Connect(ctx, connection.Connection{From: imageOut(src), To: imageIn(th)}))

	report, err := f.exec.RunFrame(ctx)
	require.NoError(t, err)
	require.NoError(t, report.Err())
	require.Len(t, report.Nodes, 2)
	assert.Equal(t, src, report.Nodes[0].Key)
	assert.Equal(t, th, report.Nodes[1].Key)
	assert.True(t, report.Nodes[1].Produced)
	assert.Regexp(t, `^\d{4,}ms$`, report.Nodes[1].Timing)
	assert.Equal(t, 0, report.Frame)

	out, ok := f.exec.Frame().Images.Get(th)
	require.True(t, ok)
	assert.Equal(t, color.NRGBA{R: 255, G: 255, B: 255, A: 255}, out.(*image.NRGBA).NRGBAAt(0, 0))

	_, err = f.exec.RunFrame(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, f.exec.Frames())
	require.Len(t, rec.reports, 2)
	assert.Equal(t, 1, rec.reports[1].Frame)
}

func TestExecutor_UnconnectedNodeKeepsStoredImage(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, node.Config{})
	th := socket.NodeKey{ID: 3, Type: threshold.Tag}
	_, err := f.exec.AddNode(ctx, th.Type, th.ID, setting.Position{})
	require.NoError(t, err)

	previous := solid(2, 2, 9)
	f.exec.Frame().Images.Set(th, previous)

	report, err := f.exec.RunFrame(ctx)
	require.NoError(t, err)
	assert.False(t, report.Nodes[0].Produced)
	got, ok := f.exec.Frame().Images.Get(th)
	require.True(t, ok)
	assert.Same(t, previous, got)
}

func TestExecutor_FailingNodeDoesNotStopThePass(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, node.Config{})
	f.fail = errors.New("camera unplugged")
	src := socket.NodeKey{ID: 0, Type: "Source"}
	th := socket.NodeKey{ID: 1, Type: threshold.Tag}
	_, err := f.exec.AddNode(ctx, src.Type, src.ID, setting.Position{})
	require.NoError(t, err)
	_, err = f.exec.AddNode(ctx, th.Type, th.ID, setting.Position{})
	require.NoError(t, err)
	require.NoError(t, f.exec.Connect(ctx, connection.Connection{From: imageOut(src), To: imageIn(th)}))

	report, err := f.exec.RunFrame(ctx)
	require.NoError(t, err)
	require.Len(t, report.Nodes, 2)
	assert.ErrorContains(t, report.Nodes[0].Err, "camera unplugged")
	assert.NoError(t, report.Nodes[1].Err)
	assert.False(t, report.Nodes[1].Produced)
	assert.ErrorContains(t, report.Err(), "0:Source")
}

func TestExecutor_RunFrameCanceled(t *testing.T) {
	f := newFixture(t, node.Config{})
	_, err := f.exec.AddNode(context.Background(), "Source", 0, setting.Position{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	report, err := f.exec.RunFrame(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, report)
	assert.Empty(t, report.Nodes)
	assert.Empty(t, f.updates)
	assert.Zero(t, f.exec.Frames())
}

func TestExecutor_Settings(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, node.Config{})
	th := socket.NodeKey{ID: 1, Type: threshold.Tag}
	_, err := f.exec.AddNode(ctx, th.Type, th.ID, setting.Position{X: 3, Y: 4})
	require.NoError(t, err)
	cutoff := th.Socket(socket.KindInt, socket.RoleInput, 3)
	f.exec.Frame().Values.Set(cutoff, cty.NumberIntVal(77))

	snaps := f.exec.Settings()
	require.Len(t, snaps, 1)
	assert.Equal(t, th, snaps[0].Key)

	f.exec.Frame().Values.Set(cutoff, cty.NumberIntVal(1))
	require.NoError(t, f.exec.ApplySettings(ctx, snaps))
	v, err := f.exec.Frame().Values.Int(cutoff)
	require.NoError(t, err)
	assert.Equal(t, 77, v)

	err = f.exec.ApplySettings(ctx, []Snapshot{{Key: socket.NodeKey{ID: 9, Type: threshold.Tag}}})
	assert.ErrorIs(t, err, ErrUnknownNode)
}

func TestExecutor_RemoveNodeAndClose(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, node.Config{})
	src := socket.NodeKey{ID: 0, Type: "Source"}
	th := socket.NodeKey{ID: 1, Type: threshold.Tag}
	_, err := f.exec.AddNode(ctx, src.Type, src.ID, setting.Position{})
	require.NoError(t, err)
	_, err = f.exec.AddNode(ctx, th.Type, th.ID, setting.Position{})
	require.NoError(t, err)
	require.NoError(t, f.exec.Connect(ctx, connection.Connection{From: imageOut(src), To: imageIn(th)}))
	_, err = f.exec.RunFrame(ctx)
	require.NoError(t, err)

	require.NoError(t, f.exec.RemoveNode(ctx, src.ID))
	assert.ErrorIs(t, f.exec.RemoveNode(ctx, src.ID), ErrUnknownNode)
	assert.Empty(t, f.exec.Connections())
	_, ok := f.exec.Frame().Images.Get(src)
	assert.False(t, ok)

	// The id is free again.
	_, err = f.exec.AddNode(ctx, src.Type, src.ID, setting.Position{})
	require.NoError(t, err)

	f.exec.Close(ctx)
	assert.Empty(t, f.exec.Nodes())
	assert.Zero(t, f.exec.Frame().Values.Len())
	assert.Zero(t, f.exec.Frame().Images.Len())
}
