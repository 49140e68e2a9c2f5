package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseConfig(t *testing.T) {
	data := []byte(`
packages:
  root: vendor/zr
log:
  level: debug
color: never
heap:
  sweep_between_inputs: true
eval:
  max_depth: 500
`)
	cfg, err := ParseConfig(data, "zephyr.yaml")
	require.NoError(t, err)
	require.Equal(t, "vendor/zr", cfg.Packages.Root)
	require.Equal(t, slog.LevelDebug, cfg.LogLevel())
	require.Equal(t, ColorNever, cfg.Color)
	require.True(t, cfg.Heap.SweepBetweenInputs)
	require.Equal(t, 500, cfg.Eval.MaxDepth)
}

func TestDefaults(t *testing.T) {
	cfg, err := ParseConfig([]byte("{}"), "zephyr.yaml")
	require.NoError(t, err)
	require.Equal(t, ColorAuto, cfg.Color)
	require.Equal(t, slog.LevelInfo, cfg.LogLevel())
	require.Equal(t, DefaultMaxDepth, cfg.Eval.MaxDepth)
	require.False(t, cfg.Heap.SweepBetweenInputs)
}

func TestParseConfigErrors(t *testing.T) {
	testCases := []struct {
		name string
		data string
		want string
	}{
		{"bad_color", "color: purple", "color must be auto, always or never"},
		{"bad_level", "log:\n  level: chatty", "log.level"},
		{"negative_depth", "eval:\n  max_depth: -1", "must not be negative"},
		{"bad_yaml", "color: [", "parsing zephyr.yaml"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tc.data), "zephyr.yaml")
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadConfig(filepath.Join(dir, ConfigFileName))
	require.NoError(t, err)
	require.Equal(t, ColorAuto, cfg.Color)
	require.Equal(t, filepath.Join(dir, "packages"), cfg.PackageRoot())
}

func TestFindConfig(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, ConfigFileName), []byte("color: always\n"), 0o644))

	found, err := FindConfig(nested)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(root, ConfigFileName), found)

	cfg, err := LoadConfig(found)
	require.NoError(t, err)
	require.Equal(t, ColorAlways, cfg.Color)
	require.Equal(t, filepath.Join(root, "lib"), (&Config{Dir: root, Packages: PackagesConfig{Root: "lib"}}).PackageRoot())
}
