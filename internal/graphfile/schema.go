package graphfile

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/vk/nodegridgo/internal/setting"
	"github.com/vk/nodegridgo/internal/socket"
	"github.com/zclconf/go-cty/cty"
)

// Default processing resolution used when a graph has no process block.
const (
	DefaultWidth  = 320
	DefaultHeight = 240
)

// Document is a format-agnostic graph description.
type Document struct {
	Process Process
	Nodes   []Node
	Links   []Link
}

// Process is the graph-wide processing configuration.
type Process struct {
	Width          int
	Height         int
	UsePerfCounter bool
}

// Node is one node instance.
type Node struct {
	Type string
	ID   int
	// Version is the version tag of the settings. Empty means current.
	Version  string
	Pos      setting.Position
	Settings map[string]cty.Value
}

// Link connects two sockets.
type Link struct {
	From socket.ID
	To   socket.ID
}

// --- HCL decoding schema ---

// fileRoot is used to decode all possible top-level blocks from any file.
type fileRoot struct {
	Process *processBlock `hcl:"process,block"`
	Nodes   []*nodeBlock  `hcl:"node,block"`
	Links   []*linkBlock  `hcl:"link,block"`
	Remain  hcl.Body      `hcl:",remain"`
}

type processBlock struct {
	Width          *int  `hcl:"width,optional"`
	Height         *int  `hcl:"height,optional"`
	UsePerfCounter *bool `hcl:"use_perf_counter,optional"`
}

type nodeBlock struct {
	Type     string    `hcl:"type,label"`
	ID       int       `hcl:"id"`
	Version  string    `hcl:"version,optional"`
	Pos      []float64 `hcl:"pos,optional"`
	Settings cty.Value `hcl:"settings,optional"`
}

type linkBlock struct {
	From string `hcl:"from"`
	To   string `hcl:"to"`
}
