package telemetry

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/vk/nodegridgo/internal/executor"
)

// EventFrame is the socket.io event carrying a frame report.
const EventFrame = "frame"

// FramePayload is the wire form of an executor.Report.
type FramePayload struct {
	Frame      int           `json:"frame"`
	Started    time.Time     `json:"started"`
	DurationMS float64       `json:"duration_ms"`
	Nodes      []NodePayload `json:"nodes"`
}

// NodePayload is the wire form of an executor.NodeReport.
type NodePayload struct {
	Node      string  `json:"node"`
	ElapsedMS float64 `json:"elapsed_ms"`
	Timing    string  `json:"timing,omitempty"`
	Produced  bool    `json:"produced"`
	Error     string  `json:"error,omitempty"`
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// Encode converts a report to its wire form.
func Encode(r *executor.Report) FramePayload {
	p := FramePayload{
		Frame:      r.Frame,
		Started:    r.Started.UTC(),
		DurationMS: millis(r.Duration),
		Nodes:      make([]NodePayload, 0, len(r.Nodes)),
	}
	for _, n := range r.Nodes {
		np := NodePayload{
			Node:      n.Key.String(),
			ElapsedMS: millis(n.Elapsed),
			Timing:    n.Timing,
			Produced:  n.Produced,
		}
		if n.Err != nil {
			np.Error = n.Err.Error()
		}
		p.Nodes = append(p.Nodes, np)
	}
	return p
}

// Decode converts an event argument, as delivered by the socket.io client,
// back into a payload.
func Decode(data any) (FramePayload, error) {
	var p FramePayload
	raw, err := json.Marshal(data)
	if err != nil {
		return p, fmt.Errorf("re-encode frame event: %w", err)
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		return p, fmt.Errorf("decode frame event: %w", err)
	}
	return p, nil
}

// Summary renders a payload as one human-readable line.
func (p FramePayload) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "frame %d %.2fms", p.Frame, p.DurationMS)
	for _, n := range p.Nodes {
		b.WriteString(" | ")
		b.WriteString(n.Node)
		switch {
		case n.Error != "":
			fmt.Fprintf(&b, " error=%q", n.Error)
		case n.Timing != "":
			b.WriteString(" " + n.Timing)
		case !n.Produced:
			b.WriteString(" idle")
		}
	}
	return b.String()
}
