package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/nodegridgo/internal/connection"
	"github.com/vk/nodegridgo/internal/frame"
	"github.com/vk/nodegridgo/internal/node"
	"github.com/vk/nodegridgo/internal/setting"
	"github.com/vk/nodegridgo/internal/socket"
)

type stubNode struct {
	node.Base
	tag      string
	reported string
	dupName  bool
}

func (s *stubNode) Type() string { return s.reported }

func (s *stubNode) Add(ctx context.Context, fc *frame.Context, id int, pos setting.Position, cfg node.Config) error {
	key := socket.NodeKey{ID: id, Type: s.tag}
	decls := []socket.Decl{socket.NewDecl(key.Socket(socket.KindImage, socket.RoleOutput, 1), "image")}
	if s.dupName {
		decls = append(decls, socket.NewDecl(key.Socket(socket.KindInt, socket.RoleOutput, 2), "image"))
	}
	return s.Init(fc, key, "0.0.1", pos, cfg, decls...)
}

func (s *stubNode) Update(context.Context, []connection.Connection, *frame.Context) (node.Result, error) {
	return node.Result{}, nil
}

func (s *stubNode) Close(context.Context) { s.Release() }

type stubModule struct {
	tag    string
	mutate func(*stubNode)
}

func (m stubModule) Register(r *Registry) {
	r.Register(m.tag, func() node.Node {
		n := &stubNode{tag: m.tag, reported: m.tag}
		if m.mutate != nil {
			m.mutate(n)
		}
		return n
	})
}

func TestRegistry_NewAndTypes(t *testing.T) {
	r := New()
	r.Load(stubModule{tag: "B"}, stubModule{tag: "A"})

	assert.Equal(t, []string{"B", "A"}, r.Types())

	n, err := r.New("A")
	require.NoError(t, err)
	assert.Equal(t, "A", n.Type())

	_, err = r.New("Missing")
	assert.ErrorIs(t, err, ErrUnknownType)
}

func TestRegistry_DuplicatePanics(t *testing.T) {
	r := New()
	r.Load(stubModule{tag: "A"})
	assert.Panics(t, func() { r.Load(stubModule{tag: "A"}) })
}

func TestValidateRegistry(t *testing.T) {
	ctx := context.Background()

	t.Run("valid catalog passes", func(t *testing.T) {
		r := New()
		r.Load(stubModule{tag: "A"}, stubModule{tag: "B"})
		assert.NoError(t, r.ValidateRegistry(ctx))
	})

	t.Run("type mismatch is reported", func(t *testing.T) {
		r := New()
		r.Load(stubModule{tag: "A", mutate: func(n *stubNode) { n.reported = "Other" }})
		err := r.ValidateRegistry(ctx)
		assert.ErrorContains(t, err, "factory builds type 'Other'")
	})

	t.Run("duplicate socket names are reported", func(t *testing.T) {
		r := New()
		r.Load(stubModule{tag: "A", mutate: func(n *stubNode) { n.dupName = true }})
		err := r.ValidateRegistry(ctx)
		assert.ErrorContains(t, err, "used twice")
	})
}
