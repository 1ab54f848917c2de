// Package testutil holds shared helpers for integration tests: a harness
// that runs the app over graph files in a temporary directory, test node
// modules, and image fixtures.
package testutil

import (
	"context"
	"image"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/nodegridgo/internal/app"
	"github.com/vk/nodegridgo/internal/registry"
)

// DirPlaceholder is replaced by the harness's temporary directory in every
// file it writes, so graphs can reference sibling fixtures by path.
const DirPlaceholder = "{{dir}}"

// HarnessResult holds the outcomes of an integration test run.
type HarnessResult struct {
	LogOutput string
	Err       error
	App       *app.App
	Dir       string
}

// Fixture is the content of the harness directory. Keys are paths relative
// to it. Images are encoded by extension.
type Fixture struct {
	Files  map[string]string
	Images map[string]image.Image
}

// Path returns the absolute path of a file in the harness directory.
func (r *HarnessResult) Path(name string) string {
	return filepath.Join(r.Dir, name)
}

// RunIntegrationTest provides a standardized harness for running integration
// tests using a default background context.
func RunIntegrationTest(t *testing.T, fx Fixture, cfg app.Config, modules ...registry.Module) *HarnessResult {
	t.Helper()
	return RunIntegrationTestWithContext(context.Background(), t, fx, cfg, modules...)
}

// RunIntegrationTestWithContext writes the fixture under a temporary directory and
// runs the app over them. Without explicit GraphPaths the "graph"
// subdirectory is used. Modules default to the core set.
func RunIntegrationTestWithContext(ctx context.Context, t *testing.T, fx Fixture, cfg app.Config, modules ...registry.Module) *HarnessResult {
	t.Helper()

	tmpDir := t.TempDir()
	graphDir := filepath.Join(tmpDir, "graph")
	require.NoError(t, os.Mkdir(graphDir, 0o755))

	for name, content := range fx.Files {
		filePath := filepath.Join(tmpDir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(filePath), 0o755))
		content = strings.ReplaceAll(content, DirPlaceholder, filepath.ToSlash(tmpDir))
		require.NoError(t, os.WriteFile(filePath, []byte(content), 0o644))
	}
	for name, img := range fx.Images {
		filePath := filepath.Join(tmpDir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(filePath), 0o755))
		WriteImage(t, filePath, img)
	}

	if len(cfg.GraphPaths) == 0 {
		cfg.GraphPaths = []string{graphDir}
	}
	cfg.LogLevel = "debug"
	cfg.LogFormat = "text"

	result := &HarnessResult{Dir: tmpDir}
	logBuffer := &app.SafeBuffer{}
	defer func() {
		result.LogOutput = logBuffer.String()
		if os.Getenv("NODEGRID_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), result.LogOutput)
		}
	}()

	appConfig, err := app.NewConfig(cfg)
	if err != nil {
		result.Err = err
		return result
	}
	result.App, result.Err = app.NewApp(logBuffer, appConfig, modules...)
	if result.Err != nil {
		return result
	}
	result.Err = result.App.Run(ctx)
	return result
}

// RunGraphTest runs a single graph HCL string for the given number of
// frames with the core modules plus any extra modules.
func RunGraphTest(t *testing.T, graphHCL string, frames int, extra ...registry.Module) *HarnessResult {
	t.Helper()
	var modules []registry.Module
	if len(extra) > 0 {
		modules = append(modules, app.CoreModules()...)
		modules = append(modules, extra...)
	}
	fx := Fixture{Files: map[string]string{"graph/main.hcl": graphHCL}}
	return RunIntegrationTest(t, fx, app.Config{Frames: frames}, modules...)
}
