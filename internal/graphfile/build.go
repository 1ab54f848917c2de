package graphfile

import (
	"context"
	"fmt"

	"github.com/vk/nodegridgo/internal/connection"
	"github.com/vk/nodegridgo/internal/ctxlog"
	"github.com/vk/nodegridgo/internal/executor"
	"github.com/vk/nodegridgo/internal/node"
	"github.com/vk/nodegridgo/internal/setting"
	"github.com/zclconf/go-cty/cty"
)

// NodeConfig returns the shared node configuration of the document.
func (d *Document) NodeConfig() node.Config {
	return node.Config{
		ProcessWidth:   d.Process.Width,
		ProcessHeight:  d.Process.Height,
		UsePerfCounter: d.Process.UsePerfCounter,
	}
}

// Build instantiates the document's nodes in exec, restores their settings
// and connects their links. Unknown setting names and links the registry
// rejects are logged and skipped; the rejected links are returned. An
// unknown node type is an error.
func Build(ctx context.Context, doc *Document, exec *executor.Executor) ([]Link, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Build: Starting graph construction.")

	for _, n := range doc.Nodes {
		inst, err := exec.AddNode(ctx, n.Type, n.ID, n.Pos)
		if err != nil {
			return nil, fmt.Errorf("error building node %d: %w", n.ID, err)
		}
		inst.SetSetting(ctx, toRecord(ctx, n, inst))
	}
	logger.Debug("Build: Node creation complete.", "node_count", len(doc.Nodes))

	var rejected []Link
	for _, l := range doc.Links {
		c := connection.Connection{From: l.From, To: l.To}
		if err := exec.Connect(ctx, c); err != nil {
			logger.Warn("Link rejected.", "from", l.From.String(), "to", l.To.String(), "error", err)
			rejected = append(rejected, l)
		}
	}
	logger.Debug("Build: Node linking complete.", "link_count", len(doc.Links)-len(rejected), "rejected", len(rejected))
	return rejected, nil
}

func toRecord(ctx context.Context, n Node, inst node.Node) setting.Record {
	version := n.Version
	if version == "" {
		version = inst.Version()
	}
	rec := setting.New(version, n.Pos)

	known := make(map[string]bool)
	for _, d := range inst.Sockets() {
		if !d.Persist {
			continue
		}
		known[d.Name] = true
		if v, ok := n.Settings[d.Name]; ok {
			rec.Values[d.ID] = v
		}
	}
	for name := range n.Settings {
		if !known[name] {
			ctxlog.FromContext(ctx).Warn("Ignoring unknown setting.", "node", n.ID, "type", n.Type, "setting", name)
		}
	}
	return rec
}

// FromExecutor snapshots the executor's graph as a document.
func FromExecutor(exec *executor.Executor) *Document {
	cfg := exec.Config()
	doc := &Document{Process: Process{
		Width:          cfg.ProcessWidth,
		Height:         cfg.ProcessHeight,
		UsePerfCounter: cfg.UsePerfCounter,
	}}

	for _, snap := range exec.Settings() {
		inst, _ := exec.Node(snap.Key.ID)
		n := Node{
			Type:     snap.Key.Type,
			ID:       snap.Key.ID,
			Version:  snap.Record.Version,
			Pos:      snap.Record.Pos,
			Settings: make(map[string]cty.Value),
		}
		for _, d := range inst.Sockets() {
			if v, ok := snap.Record.Values[d.ID]; ok {
				n.Settings[d.Name] = v
			}
		}
		doc.Nodes = append(doc.Nodes, n)
	}

	for _, c := range exec.Connections() {
		doc.Links = append(doc.Links, Link{From: c.From, To: c.To})
	}
	return doc
}
