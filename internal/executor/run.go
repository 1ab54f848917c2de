package executor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vk/nodegridgo/internal/ctxlog"
	"github.com/vk/nodegridgo/internal/socket"
)

// NodeReport describes what one node did during a frame.
type NodeReport struct {
	Key socket.NodeKey
	// Elapsed is the time the node spent in its transformation.
	Elapsed time.Duration
	// Timing is the node's formatted timing output, if it produced one.
	Timing string
	// Produced reports whether the node wrote an image this frame.
	Produced bool
	Err      error
}

// Report describes one frame.
type Report struct {
	Frame    int
	Started  time.Time
	Duration time.Duration
	Nodes    []NodeReport
}

// Err joins the errors of every failed node, or returns nil.
func (r *Report) Err() error {
	var errs []error
	for _, n := range r.Nodes {
		if n.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", n.Key, n.Err))
		}
	}
	return errors.Join(errs...)
}

// RunFrame updates every node once in dependency order. Node failures are
// recorded in the report and do not stop the pass. The returned error is
// non-nil only when the pass could not run or the context ended; in the
// latter case the partial report is returned as well.
func (e *Executor) RunFrame(ctx context.Context) (*Report, error) {
	order, err := e.graph.TopologicalOrder()
	if err != nil {
		return nil, fmt.Errorf("error ordering graph: %w", err)
	}

	report := &Report{Frame: e.frames, Started: time.Now()}
	ctx = ctxlog.With(ctx, "frame", report.Frame)
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Starting frame.", "nodes", len(order))

	for _, key := range order {
		if err := ctx.Err(); err != nil {
			report.Duration = time.Since(report.Started)
			logger.Warn("Context canceled, abandoning frame.", "completed", len(report.Nodes))
			return report, err
		}
		ent := e.nodes[key.ID]
		nodeCtx := ctxlog.With(ctx, "node", key.String())

		res, err := ent.node.Update(nodeCtx, e.conns.Resolve(key), e.fc)
		nr := NodeReport{Key: key}
		if err != nil {
			ctxlog.FromContext(nodeCtx).Error("Node update failed.", "error", err)
			nr.Err = err
			report.Nodes = append(report.Nodes, nr)
			continue
		}

		nr.Elapsed = res.Elapsed
		if timing, ok := res.Aux.(string); ok {
			nr.Timing = timing
		}
		if res.Image != nil {
			e.fc.Images.Set(key, res.Image)
			nr.Produced = true
		}
		report.Nodes = append(report.Nodes, nr)
	}

	report.Duration = time.Since(report.Started)
	e.frames++
	logger.Debug("Frame completed.", "duration", report.Duration)

	for _, o := range e.observers {
		o.ObserveFrame(ctx, report)
	}
	return report, nil
}

// Frames returns the number of completed frames.
func (e *Executor) Frames() int { return e.frames }
