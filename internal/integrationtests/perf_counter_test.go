package integrationtests

import (
	"bytes"
	"image"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/nodegridgo/internal/app"
	"github.com/vk/nodegridgo/internal/registry"
	"github.com/vk/nodegridgo/internal/testutil"
	"github.com/vk/nodegridgo/modules/imagefile"
	"github.com/vk/nodegridgo/modules/intvalue"
	"github.com/vk/nodegridgo/modules/print"
	"github.com/vk/nodegridgo/modules/threshold"
)

const perfGraphHCL = `
process {
  use_perf_counter = true
}

node "ImageFile" {
  id = 0
  settings = {
    path = "{{dir}}/in.png"
  }
}

node "IntValue" {
  id = 1
  settings = {
    value = 64
  }
}

node "Threshold" {
  id = 2
}

node "Print" {
  id = 3
  settings = {
    label = "thr"
  }
}

link {
  from = "0:ImageFile:IMAGE:Output02"
  to   = "2:Threshold:IMAGE:Input01"
}

link {
  from = "1:IntValue:INT:Output01"
  to   = "2:Threshold:INT:Input03"
}

link {
  from = "2:Threshold:TIME_MS:Output02"
  to   = "3:Print:TIME_MS:Input03"
}

link {
  from = "1:IntValue:INT:Output01"
  to   = "3:Print:INT:Input02"
}
`

func TestPerfCounter_TimingReachesDownstream(t *testing.T) {
	// --- Arrange ---
	var out bytes.Buffer
	modules := []registry.Module{
		&imagefile.Module{},
		&intvalue.Module{},
		&threshold.Module{},
		&print.Module{Out: &out},
	}
	fx := testutil.Fixture{
		Files:  map[string]string{"graph/main.hcl": perfGraphHCL},
		Images: map[string]image.Image{"in.png": testutil.Gradient(32, 32)},
	}

	// --- Act ---
	result := testutil.RunIntegrationTest(t, fx, app.Config{Frames: 2}, modules...)

	// --- Assert ---
	require.NoError(t, result.Err)
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 4, "two lines per frame")
	assert.Equal(t, "thr value = 64", strings.TrimSpace(lines[0]))
	assert.Regexp(t, regexp.MustCompile(`^thr timing = "\d{4,}ms"$`), strings.TrimSpace(lines[1]))
}

func TestPerfCounter_DisabledSkipsTimingLink(t *testing.T) {
	// --- Arrange ---
	graphHCL := strings.Replace(perfGraphHCL, "use_perf_counter = true", "use_perf_counter = false", 1)
	var out bytes.Buffer
	modules := []registry.Module{
		&imagefile.Module{},
		&intvalue.Module{},
		&threshold.Module{},
		&print.Module{Out: &out},
	}
	fx := testutil.Fixture{
		Files:  map[string]string{"graph/main.hcl": graphHCL},
		Images: map[string]image.Image{"in.png": testutil.Gradient(8, 8)},
	}

	// --- Act ---
	result := testutil.RunIntegrationTest(t, fx, app.Config{Frames: 2}, modules...)

	// --- Assert ---
	require.NoError(t, result.Err)
	assert.Contains(t, result.LogOutput, "Link rejected.")
	assert.Contains(t, result.LogOutput, "unknown socket")
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2, "one line per frame, no timing")
	for _, line := range lines {
		assert.Equal(t, "thr value = 64", strings.TrimSpace(line))
	}
}
