package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/cratepanel/internal/model"
	"github.com/piwi3910/cratepanel/internal/project"
)

const testJobYAML = `name: pallet crate
strategy: hybrid
panels:
  - label: Side
    width: 96
    height: 48
  - label: End
    width: 40
    height: 48
`

// execute runs the root command with args and returns stdout and the log.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, logs bytes.Buffer
	c := New(&logs, LogInfo)
	root := c.RootCommand()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), logs.String(), err
}

func writeTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestSetVersion(t *testing.T) {
	oldV, oldC, oldD := version, commit, date
	t.Cleanup(func() { SetVersion(oldV, oldC, oldD) })

	SetVersion("1.2.3", "abc123", "2026-01-01")
	out, _, err := execute(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "cratepanel 1.2.3")
	assert.Contains(t, out, "commit: abc123")
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		in      string
		w, h    float64
		wantErr bool
	}{
		{"48x96", 48, 96, false},
		{" 60X120 ", 60, 120, false},
		{"48.5x96.25", 48.5, 96.25, false},
		{"48", 0, 0, true},
		{"48x96x2", 0, 0, true},
		{"axb", 0, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			w, h, err := parseSize(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.w, w)
			assert.Equal(t, tt.h, h)
		})
	}
}

func TestLayoutJSONToStdout(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "config.toml")
	out, _, err := execute(t, "layout", "48", "96", "--label", "Side", "--strategy", "dimension", "--json", "-", "--config", cfg)
	require.NoError(t, err)

	var result model.LayoutResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, "Side", result.Input.Label)
	assert.Equal(t, 48.0, result.Input.Width)
	assert.Equal(t, model.StrategyDimension, result.Cleats.Strategy)
	assert.NotEmpty(t, result.Cleats.Edge)
}

func TestLayoutWritesFiles(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "config.toml")
	out, _, err := execute(t, "layout", "96", "48",
		"--config", cfg,
		"--dxf", filepath.Join(dir, "panel.dxf"),
		"--pdf", filepath.Join(dir, "panel.pdf"),
		"--labels", filepath.Join(dir, "labels.pdf"),
		"--gcode", filepath.Join(dir, "panel.nc"),
	)
	require.NoError(t, err)
	assert.Contains(t, out, "Sheets")
	assert.Contains(t, out, "Program")
	assert.Contains(t, out, "Intermediate at")
	assert.Contains(t, out, "24.875, 48.000, 71.125")

	for _, name := range []string{"panel.dxf", "panel.pdf", "labels.pdf", "panel.nc"} {
		info, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err, name)
		assert.Positive(t, info.Size(), name)
	}
}

func TestLayoutUnknownStrategyWarns(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "config.toml")
	out, logs, err := execute(t, "layout", "48", "96", "--strategy", "bogus", "--json", "-", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, logs, "unknown strategy")

	var result model.LayoutResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, model.StrategyPosition, result.Cleats.Strategy)
}

func TestLayoutInvalidDimension(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "config.toml")
	_, _, err := execute(t, "layout", "wide", "96", "--config", cfg)
	assert.ErrorContains(t, err, "invalid dimension")
}

func TestCompare(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "config.toml")

	out, _, err := execute(t, "compare", "48", "96", "--config", cfg)
	require.NoError(t, err)
	for _, s := range model.Strategies() {
		assert.Contains(t, out, s.String())
	}

	out, _, err = execute(t, "compare", "48", "96", "--json", "-", "--config", cfg)
	require.NoError(t, err)
	var comparisons []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &comparisons))
	assert.Len(t, comparisons, len(model.Strategies()))
}

func TestBatchFromJob(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "config.toml")
	job := writeTestFile(t, dir, "crate.yaml", testJobYAML)

	out, _, err := execute(t, "batch", job, "--json", "-", "--config", cfg)
	require.NoError(t, err)

	var result model.CrateResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, "pallet crate", result.Name)
	assert.NotEmpty(t, result.RunID)
	require.Len(t, result.Layouts, 2)
	assert.Equal(t, "Side", result.Layouts[0].Input.Label)
	assert.Equal(t, "End", result.Layouts[1].Input.Label)
	assert.Equal(t, model.StrategyHybrid, result.Layouts[0].Cleats.Strategy)
}

func TestBatchFlagOverridesJob(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "config.toml")
	job := writeTestFile(t, dir, "crate.yaml", testJobYAML)

	out, _, err := execute(t, "batch", job, "--strategy", "position", "-j", "1", "--json", "-", "--config", cfg)
	require.NoError(t, err)

	var result model.CrateResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	for _, lr := range result.Layouts {
		assert.Equal(t, model.StrategyPosition, lr.Cleats.Strategy)
	}
}

func TestBatchFromCSVWritesOutputs(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "config.toml")
	input := writeTestFile(t, dir, "panels.csv", "Label,Width,Height,Qty\nSide,96,48,2\nEnd,40,48,1\n")
	dxfDir := filepath.Join(dir, "dxf")
	ncDir := filepath.Join(dir, "nc")

	out, _, err := execute(t, "batch", input, "--config", cfg, "--dxf", dxfDir, "--gcode", ncDir)
	require.NoError(t, err)
	assert.Contains(t, out, "panels")
	assert.Contains(t, out, "Stock sheets")

	for _, name := range []string{"01-side-1.dxf", "02-side-2.dxf", "03-end.dxf"} {
		assert.FileExists(t, filepath.Join(dxfDir, name))
	}
	for _, name := range []string{"01-side-1.nc", "02-side-2.nc", "03-end.nc"} {
		assert.FileExists(t, filepath.Join(ncDir, name))
	}
}

func TestBatchNoPanels(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "config.toml")
	input := writeTestFile(t, dir, "empty.csv", "Label,Width,Height\n")

	_, _, err := execute(t, "batch", input, "--config", cfg)
	assert.ErrorContains(t, err, "no panels imported")
}

func TestBatchRemembersJob(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "config.toml")
	job := writeTestFile(t, dir, "crate.yaml", testJobYAML)

	// Without a config file nothing is written.
	_, _, err := execute(t, "batch", job, "--json", "-", "--config", cfg)
	require.NoError(t, err)
	assert.NoFileExists(t, cfg)

	_, _, err = execute(t, "config", "init", "--config", cfg)
	require.NoError(t, err)
	_, _, err = execute(t, "batch", job, "--json", "-", "--config", cfg)
	require.NoError(t, err)

	loaded, err := project.LoadAppConfig(cfg)
	require.NoError(t, err)
	abs, err := filepath.Abs(job)
	require.NoError(t, err)
	assert.Equal(t, []string{abs}, loaded.RecentJobs)
}

func TestConfigInit(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "nested", "config.toml")

	out, _, err := execute(t, "config", "init", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, cfg)
	assert.FileExists(t, cfg)

	_, _, err = execute(t, "config", "init", "--config", cfg)
	assert.ErrorContains(t, err, "already exists")

	_, _, err = execute(t, "config", "init", "--force", "--config", cfg)
	assert.NoError(t, err)
}

func TestConfigShow(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "config.toml")
	out, _, err := execute(t, "config", "show", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "Generic")
	assert.Contains(t, out, model.DefaultAppConfig().DefaultStrategy.String())
}

func TestConfigExportImport(t *testing.T) {
	src := t.TempDir()
	cfg := filepath.Join(src, "config.toml")
	custom := model.DefaultAppConfig()
	custom.DefaultStock = model.StockSheet{Width: 60, Height: 120}
	custom.DefaultGCodeProfile = "Grbl"
	require.NoError(t, project.SaveAppConfig(cfg, custom))

	backup := filepath.Join(src, "backup.json")
	_, _, err := execute(t, "config", "export", backup, "--config", cfg)
	require.NoError(t, err)
	assert.FileExists(t, backup)

	dst := filepath.Join(t.TempDir(), "config.toml")
	out, _, err := execute(t, "config", "import", backup, "--config", dst)
	require.NoError(t, err)
	assert.True(t, strings.Contains(out, "restored"))

	restored, err := project.LoadAppConfig(dst)
	require.NoError(t, err)
	assert.Equal(t, custom.DefaultStock, restored.DefaultStock)
	assert.Equal(t, "Grbl", restored.DefaultGCodeProfile)
	assert.FileExists(t, filepath.Join(filepath.Dir(dst), "profiles.json"))
}
