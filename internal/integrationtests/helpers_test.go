package integrationtests

import (
	"image"
	"testing"

	"github.com/vk/nodegridgo/internal/app"
	"github.com/vk/nodegridgo/internal/registry"
	"github.com/vk/nodegridgo/internal/testutil"
)

// runWithInput runs a graph with in.png seeded in the harness directory.
func runWithInput(t *testing.T, files map[string]string, input image.Image, frames int, extra ...registry.Module) *testutil.HarnessResult {
	t.Helper()
	fx := testutil.Fixture{
		Files:  files,
		Images: map[string]image.Image{"in.png": input},
	}
	var modules []registry.Module
	if len(extra) > 0 {
		modules = append(app.CoreModules(), extra...)
	}
	return testutil.RunIntegrationTest(t, fx, app.Config{Frames: frames}, modules...)
}
