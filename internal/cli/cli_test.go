package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/thermogrid/pkg/cache"
	"github.com/matzehuels/thermogrid/pkg/dataset"
	"github.com/matzehuels/thermogrid/pkg/observability"
)

// isolate points every XDG directory at a fresh temp dir.
func isolate(t *testing.T) (cacheHome, configHome string) {
	t.Helper()
	cacheHome, configHome = t.TempDir(), t.TempDir()
	t.Setenv("XDG_CACHE_HOME", cacheHome)
	t.Setenv("XDG_CONFIG_HOME", configHome)
	t.Setenv(envRedisURL, "")
	return cacheHome, configHome
}

// datasetFile writes exploreDataset to a temp file and returns its path.
func datasetFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "temps.json")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, dataset.Encode(f, exploreDataset()))
	require.NoError(t, f.Close())
	return path
}

func runCLI(t *testing.T, args ...string) error {
	t.Helper()
	c := New(io.Discard, LogInfo)
	defer c.Close()
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	return root.ExecuteContext(context.Background())
}

func TestCacheClearCommand(t *testing.T) {
	cacheHome, _ := isolate(t)
	dir := filepath.Join(cacheHome, appName)

	fc, err := cache.NewFileCache(dir)
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, fc.Set(ctx, "dataset:a", []byte("a"), time.Hour))
	require.NoError(t, fc.Set(ctx, "artifact:b", []byte("b"), time.Hour))

	require.NoError(t, runCLI(t, "cache", "clear"))

	_, ok, err := fc.Get(ctx, "dataset:a")
	require.NoError(t, err)
	assert.False(t, ok)
	_, err = os.Stat(dir)
	assert.NoError(t, err, "root directory survives a clear")
}

func TestCacheClearCommandEmpty(t *testing.T) {
	isolate(t)
	assert.NoError(t, runCLI(t, "cache", "clear"))
}

func TestRenderCommandFromInput(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	input := datasetFile(t)

	out := filepath.Join(dir, "out", "chart")
	require.NoError(t, runCLI(t, "render", "--input", input, "-f", "svg,json", "-o", out))

	svg, err := os.ReadFile(out + ".svg")
	require.NoError(t, err)
	assert.Contains(t, string(svg), "<svg")

	exported, err := os.ReadFile(out + ".json")
	require.NoError(t, err)
	assert.Contains(t, string(exported), "\"marks\"")
}

func TestRenderCommandKeepsZeroTooltipY(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	input := datasetFile(t)

	out := filepath.Join(dir, "chart.svg")
	require.NoError(t, runCLI(t, "render", "--input", input, "--tooltip-y", "0", "-o", out))

	svg, err := os.ReadFile(out)
	require.NoError(t, err)
	// January cells sit at y=0, so their tooltip lands at the unshifted row.
	assert.Contains(t, string(svg), `data-ty="0.00"`)
	assert.NotContains(t, string(svg), `data-ty="16.00"`)
}

func TestRenderCommandTooltipFollowsUnit(t *testing.T) {
	isolate(t)
	out := filepath.Join(t.TempDir(), "chart.svg")
	require.NoError(t, runCLI(t, "render", "--input", datasetFile(t), "--unit", "K", "-o", out))

	svg, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(svg), "(Change: -0.50K)")
	assert.NotContains(t, string(svg), "°C)")
}

func TestRenderCommandRejectsBadFormat(t *testing.T) {
	isolate(t)
	err := runCLI(t, "render", "--input", "x.json", "-f", "gif")
	assert.Error(t, err)
}

func TestRenderCommandRejectsMultipleToStdout(t *testing.T) {
	isolate(t)
	err := runCLI(t, "render", "--input", "x.json", "-f", "svg,json", "-o", "-")
	assert.Error(t, err)
}

func TestConfigPathCommandIgnoresBrokenConfig(t *testing.T) {
	_, configHome := isolate(t)
	path := filepath.Join(configHome, appName, configFileName)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("not = [valid"), 0644))

	assert.NoError(t, runCLI(t, "config", "path"))
	assert.Error(t, runCLI(t, "cache", "path"), "other commands load the config")
}

func TestMetricsFileWritten(t *testing.T) {
	isolate(t)
	t.Cleanup(observability.Reset)
	metrics := filepath.Join(t.TempDir(), "thermogrid.prom")

	require.NoError(t, runCLI(t, "--metrics-file", metrics, "cache", "path"))

	_, err := os.Stat(metrics)
	assert.NoError(t, err)
}
