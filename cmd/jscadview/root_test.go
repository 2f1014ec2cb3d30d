package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/jscad-view/engine/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestConfigCommandPrintsDefaults(t *testing.T) {
	out, err := execute(t, "config")
	require.NoError(t, err)
	assert.Contains(t, out, "[window]")
	assert.Contains(t, out, "[renderer]")

	var cfg config.Config
	require.NoError(t, config.Decode(bytes.NewBufferString(out), &cfg))
	assert.Equal(t, config.Default().Window, cfg.Window)
}

func TestConfigCommandWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings", "config.toml")

	out, err := execute(t, "config", "--write", path)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote "+path)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.Default().Viewer.Watch, cfg.Viewer.Watch)
}

func TestRootRequiresPayload(t *testing.T) {
	_, err := execute(t, "--config", filepath.Join(t.TempDir(), "none.toml"))
	assert.Error(t, err)
}

func TestInvalidSettingsStopBeforeStart(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[window]\nwidth = -5\n"), 0o644))

	_, err := execute(t, "--config", path, filepath.Join(dir, "model.json"))
	require.Error(t, err)

	_, err = execute(t, "--config", filepath.Join(dir, "none.toml"), "--msaa", "3", filepath.Join(dir, "model.json"))
	require.Error(t, err)
	assert.ErrorContains(t, err, "invalid settings")
}

func TestFlagsOverrideSettings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[log]\nlevel = \"warn\"\n"), 0o644))

	cmd := newRootCommand()
	require.NoError(t, cmd.ParseFlags([]string{"--config", path, "--terminal", "--uncapped", "--log-level", "debug"}))

	f := &flags{}
	f.configPath, _ = cmd.Flags().GetString("config")
	f.terminal, _ = cmd.Flags().GetBool("terminal")
	f.uncapped, _ = cmd.Flags().GetBool("uncapped")
	f.logLevel, _ = cmd.Flags().GetString("log-level")
	f.watch, _ = cmd.Flags().GetBool("watch")

	cfg, err := loadConfig(cmd, f)
	require.NoError(t, err)
	assert.True(t, cfg.Window.Terminal)
	assert.Equal(t, config.PresentUncapped, cfg.Renderer.PresentMode)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, config.Default().Viewer.Watch, cfg.Viewer.Watch, "unset flags keep the file value")
}
