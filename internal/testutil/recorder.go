package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/vk/nodegridgo/internal/connection"
	"github.com/vk/nodegridgo/internal/frame"
	"github.com/vk/nodegridgo/internal/node"
	"github.com/vk/nodegridgo/internal/registry"
	"github.com/vk/nodegridgo/internal/setting"
	"github.com/vk/nodegridgo/internal/socket"
)

// RecorderTag is the node type registered by RecorderModule.
const RecorderTag = "Recorder"

// UpdateRecord describes one Recorder update.
type UpdateRecord struct {
	Node     string
	Start    time.Time
	End      time.Time
	HadInput bool
}

// RecorderModule registers a pass-through image node that records every
// update it receives, optionally sleeping to simulate work.
type RecorderModule struct {
	Sleep time.Duration

	mu      sync.Mutex
	updates []UpdateRecord
}

// Register implements the registry.Module interface.
func (m *RecorderModule) Register(r *registry.Registry) {
	r.Register(RecorderTag, func() node.Node { return &recorderNode{module: m} })
}

// Updates returns the recorded updates in order.
func (m *RecorderModule) Updates() []UpdateRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]UpdateRecord(nil), m.updates...)
}

// Order returns the node keys of the recorded updates in order.
func (m *RecorderModule) Order() []string {
	var out []string
	for _, u := range m.Updates() {
		out = append(out, u.Node)
	}
	return out
}

type recorderNode struct {
	node.Base
	module *RecorderModule
	in     socket.ID
}

func (n *recorderNode) Type() string { return RecorderTag }

func (n *recorderNode) Add(_ context.Context, fc *frame.Context, id int, pos setting.Position, cfg node.Config) error {
	key := socket.NodeKey{ID: id, Type: RecorderTag}
	n.in = key.Socket(socket.KindImage, socket.RoleInput, 1)
	err := n.Init(fc, key, "0.0.1", pos, cfg,
		socket.NewDecl(n.in, "image"),
		socket.NewDecl(key.Socket(socket.KindImage, socket.RoleOutput, 1), "image"),
	)
	if err != nil {
		return fmt.Errorf("add %s: %w", key, err)
	}
	return nil
}

func (n *recorderNode) Update(ctx context.Context, conns []connection.Connection, fc *frame.Context) (node.Result, error) {
	rec := UpdateRecord{Node: n.Key().String(), Start: time.Now()}
	img := n.Resolve(ctx, conns, fc)[n.in]
	rec.HadInput = img != nil
	if n.module.Sleep > 0 {
		time.Sleep(n.module.Sleep)
	}
	rec.End = time.Now()

	n.module.mu.Lock()
	n.module.updates = append(n.module.updates, rec)
	n.module.mu.Unlock()
	return node.Result{Image: img}, nil
}

func (n *recorderNode) Close(context.Context) { n.Release() }

// FailingModule registers a node type whose every update fails.
type FailingModule struct {
	Tag string
	Err error
}

// Register implements the registry.Module interface.
func (m *FailingModule) Register(r *registry.Registry) {
	r.Register(m.Tag, func() node.Node { return &failingNode{tag: m.Tag, err: m.Err} })
}

type failingNode struct {
	node.Base
	tag string
	err error
}

func (n *failingNode) Type() string { return n.tag }

func (n *failingNode) Add(_ context.Context, fc *frame.Context, id int, pos setting.Position, cfg node.Config) error {
	key := socket.NodeKey{ID: id, Type: n.tag}
	return n.Init(fc, key, "0.0.1", pos, cfg,
		socket.NewDecl(key.Socket(socket.KindImage, socket.RoleOutput, 1), "image"),
	)
}

func (n *failingNode) Update(context.Context, []connection.Connection, *frame.Context) (node.Result, error) {
	return node.Result{}, n.err
}

func (n *failingNode) Close(context.Context) { n.Release() }
