package telemetry

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/nodegridgo/internal/executor"
	"github.com/vk/nodegridgo/internal/socket"
)

func sampleReport() *executor.Report {
	return &executor.Report{
		Frame:    7,
		Started:  time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Duration: 2500 * time.Microsecond,
		Nodes: []executor.NodeReport{
			{Key: socket.NodeKey{ID: 0, Type: "ImageFile"}, Produced: true},
			{Key: socket.NodeKey{ID: 1, Type: "Threshold"}, Elapsed: 3 * time.Millisecond, Timing: "0003ms", Produced: true},
			{Key: socket.NodeKey{ID: 2, Type: "ImageWrite"}, Err: errors.New("disk full")},
			{Key: socket.NodeKey{ID: 3, Type: "Threshold"}},
		},
	}
}

func TestEncode(t *testing.T) {
	p := Encode(sampleReport())
	assert.Equal(t, 7, p.Frame)
	assert.InDelta(t, 2.5, p.DurationMS, 1e-9)
	require.Len(t, p.Nodes, 4)
	assert.Equal(t, NodePayload{Node: "1:Threshold", ElapsedMS: 3, Timing: "0003ms", Produced: true}, p.Nodes[1])
	assert.Equal(t, "disk full", p.Nodes[2].Error)
}

func TestDecode(t *testing.T) {
	want := Encode(sampleReport())

	// The client hands events over as generic JSON values.
	raw, err := json.Marshal(want)
	require.NoError(t, err)
	var generic map[string]any
	require.NoError(t, json.Unmarshal(raw, &generic))

	got, err := Decode(generic)
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Decode() mismatch (-want +got):\n%s", diff)
	}

	_, err = Decode("not a frame")
	assert.Error(t, err)
}

func TestSummary(t *testing.T) {
	got := Encode(sampleReport()).Summary()
	assert.Equal(t, `frame 7 2.50ms | 0:ImageFile | 1:Threshold 0003ms | 2:ImageWrite error="disk full" | 3:Threshold idle`, got)
}
