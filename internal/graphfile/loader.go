package graphfile

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/nodegridgo/internal/ctxlog"
	"github.com/vk/nodegridgo/internal/fsutil"
	"github.com/vk/nodegridgo/internal/setting"
	"github.com/vk/nodegridgo/internal/socket"
	"github.com/zclconf/go-cty/cty"
)

// Load parses every .hcl file in the given paths and merges them into one
// document. Directories are walked recursively; missing paths are skipped.
func Load(ctx context.Context, paths ...string) (*Document, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Graph loader started.", "path_count", len(paths))

	files, err := fsutil.CollectFiles(paths, ".hcl")
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .hcl graph files found in %v", paths)
	}
	logger.Debug("Discovered HCL files.", "count", len(files))

	doc := &Document{Process: Process{Width: DefaultWidth, Height: DefaultHeight}}
	parser := hclparse.NewParser()
	seenProcess := ""
	seenIDs := make(map[int]string)

	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		var root fileRoot
		diags = gohcl.DecodeBody(hclFile.Body, nil, &root)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}

		if root.Process != nil {
			if seenProcess != "" {
				return nil, fmt.Errorf("%s: process block already defined in %s", file, seenProcess)
			}
			seenProcess = file
			translateProcess(root.Process, &doc.Process)
		}

		for _, nb := range root.Nodes {
			if prev, ok := seenIDs[nb.ID]; ok {
				return nil, fmt.Errorf("%s: node id %d already used in %s", file, nb.ID, prev)
			}
			seenIDs[nb.ID] = file
			n, err := translateNode(nb)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", file, err)
			}
			doc.Nodes = append(doc.Nodes, n)
		}

		for _, lb := range root.Links {
			l, err := translateLink(lb)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", file, err)
			}
			doc.Links = append(doc.Links, l)
		}
	}

	logger.Debug("Graph loading complete.", "nodes", len(doc.Nodes), "links", len(doc.Links))
	return doc, nil
}

func translateProcess(b *processBlock, p *Process) {
	if b.Width != nil {
		p.Width = *b.Width
	}
	if b.Height != nil {
		p.Height = *b.Height
	}
	if b.UsePerfCounter != nil {
		p.UsePerfCounter = *b.UsePerfCounter
	}
}

func translateNode(b *nodeBlock) (Node, error) {
	n := Node{Type: b.Type, ID: b.ID, Version: b.Version, Settings: make(map[string]cty.Value)}
	if b.ID < 0 {
		return Node{}, fmt.Errorf("node %q: id must not be negative", b.Type)
	}
	switch len(b.Pos) {
	case 0:
	case 2:
		n.Pos = setting.Position{X: b.Pos[0], Y: b.Pos[1]}
	default:
		return Node{}, fmt.Errorf("node %d: pos must have 2 coordinates, got %d", b.ID, len(b.Pos))
	}

	s := b.Settings
	if s == cty.NilVal || s.IsNull() {
		return n, nil
	}
	if !s.Type().IsObjectType() && !s.Type().IsMapType() {
		return Node{}, fmt.Errorf("node %d: settings must be an object", b.ID)
	}
	for it := s.ElementIterator(); it.Next(); {
		k, v := it.Element()
		n.Settings[k.AsString()] = v
	}
	return n, nil
}

func translateLink(b *linkBlock) (Link, error) {
	from, err := socket.Parse(b.From)
	if err != nil {
		return Link{}, fmt.Errorf("link from: %w", err)
	}
	to, err := socket.Parse(b.To)
	if err != nil {
		return Link{}, fmt.Errorf("link to: %w", err)
	}
	return Link{From: from, To: to}, nil
}
