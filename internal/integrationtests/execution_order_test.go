package integrationtests

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/nodegridgo/internal/testutil"
)

func TestExecutionOrder_FollowsLinksNotDeclarations(t *testing.T) {
	// --- Arrange ---
	// Recorders are declared downstream-first; links define the real order.
	graphHCL := `
node "Recorder" {
  id = 3
}

node "Recorder" {
  id = 2
}

node "ImageFile" {
  id = 0
  settings = {
    path = "{{dir}}/in.png"
  }
}

link {
  from = "2:Recorder:IMAGE:Output01"
  to   = "3:Recorder:IMAGE:Input01"
}

link {
  from = "0:ImageFile:IMAGE:Output02"
  to   = "2:Recorder:IMAGE:Input01"
}
`
	rec := &testutil.RecorderModule{}

	// --- Act ---
	result := runWithInput(t, map[string]string{"graph/main.hcl": graphHCL}, testutil.Gradient(4, 4), 2, rec)

	// --- Assert ---
	require.NoError(t, result.Err)
	assert.Equal(t, []string{"2:Recorder", "3:Recorder", "2:Recorder", "3:Recorder"}, rec.Order())
	for _, u := range rec.Updates() {
		assert.True(t, u.HadInput, "%s should see the upstream image", u.Node)
	}
}

func TestExecutionOrder_FanOut(t *testing.T) {
	graphHCL := `
node "ImageFile" {
  id = 0
  settings = {
    path = "{{dir}}/in.png"
  }
}

node "Recorder" {
  id = 1
}

node "Recorder" {
  id = 2
}

link {
  from = "0:ImageFile:IMAGE:Output02"
  to   = "1:Recorder:IMAGE:Input01"
}

link {
  from = "0:ImageFile:IMAGE:Output02"
  to   = "2:Recorder:IMAGE:Input01"
}
`
	rec := &testutil.RecorderModule{}

	result := runWithInput(t, map[string]string{"graph/main.hcl": graphHCL}, testutil.Gradient(4, 4), 1, rec)

	require.NoError(t, result.Err)
	assert.Equal(t, []string{"1:Recorder", "2:Recorder"}, rec.Order())
	for _, u := range rec.Updates() {
		assert.True(t, u.HadInput)
	}
}

func TestExecutionOrder_UnconnectedNodesAreNoOps(t *testing.T) {
	graphHCL := `
node "Threshold" {
  id = 1
}

node "Recorder" {
  id = 2
}
`
	rec := &testutil.RecorderModule{}

	result := testutil.RunGraphTest(t, graphHCL, 3, rec)

	require.NoError(t, result.Err)
	require.Len(t, rec.Updates(), 3)
	for _, u := range rec.Updates() {
		assert.False(t, u.HadInput)
	}
	assert.NotContains(t, result.LogOutput, "Node update failed.")
}
