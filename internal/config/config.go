package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Color modes for terminal output.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// DefaultMaxDepth bounds nested evaluation when eval.max_depth is unset.
const DefaultMaxDepth = 10000

// Config represents the top-level zephyr.yaml configuration.
type Config struct {
	Packages PackagesConfig `yaml:"packages"`
	Log      LogConfig      `yaml:"log"`

	// Color is one of auto, always or never. Auto colors output only
	// when stdout is a terminal.
	Color string `yaml:"color,omitempty"`

	Heap HeapConfig `yaml:"heap"`
	Eval EvalConfig `yaml:"eval"`

	// Dir is the directory the configuration was loaded from.
	Dir string `yaml:"-"`
}

type PackagesConfig struct {
	// Root is the directory "pkg:" imports resolve under, relative to
	// the config file.
	Root string `yaml:"root,omitempty"`
}

type LogConfig struct {
	Level string `yaml:"level,omitempty"`
}

type HeapConfig struct {
	// SweepBetweenInputs runs a heap sweep after every REPL input.
	SweepBetweenInputs bool `yaml:"sweep_between_inputs,omitempty"`
}

type EvalConfig struct {
	MaxDepth int `yaml:"max_depth,omitempty"`
}

// Default returns the configuration used when no zephyr.yaml exists.
func Default() *Config {
	cfg := &Config{}
	cfg.setDefaults()
	return cfg
}

// LoadConfig reads and parses a zephyr.yaml file. A missing file yields
// the defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		cfg := Default()
		cfg.Dir = filepath.Dir(path)
		return cfg, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "reading config %s", path)
	}
	cfg, err := ParseConfig(data, path)
	if err != nil {
		return nil, err
	}
	cfg.Dir = filepath.Dir(path)
	return cfg, nil
}

// ParseConfig parses zephyr.yaml content from bytes.
// The path argument is used only for error messages.
func ParseConfig(data []byte, path string) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}
	if err := cfg.validate(path); err != nil {
		return nil, err
	}
	cfg.setDefaults()
	return &cfg, nil
}

// FindConfig searches for zephyr.yaml starting from dir and walking up
// to parent directories. It returns "" when none is found.
func FindConfig(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", errors.Wrap(err, "resolving directory")
	}
	for {
		candidate := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

func (c *Config) validate(path string) error {
	switch c.Color {
	case "", ColorAuto, ColorAlways, ColorNever:
	default:
		return errors.Errorf("%s: color must be auto, always or never, got %q", path, c.Color)
	}
	if c.Log.Level != "" {
		var level slog.Level
		if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
			return errors.Wrapf(err, "%s: log.level", path)
		}
	}
	if c.Eval.MaxDepth < 0 {
		return errors.Errorf("%s: eval.max_depth must not be negative", path)
	}
	return nil
}

func (c *Config) setDefaults() {
	if c.Color == "" {
		c.Color = ColorAuto
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Eval.MaxDepth == 0 {
		c.Eval.MaxDepth = DefaultMaxDepth
	}
}

// LogLevel converts log.level into a slog level. Validation has already
// rejected unknown names.
func (c *Config) LogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(c.Log.Level))); err != nil {
		return slog.LevelInfo
	}
	return level
}

// PackageRoot returns the absolute directory for "pkg:" imports.
func (c *Config) PackageRoot() string {
	root := c.Packages.Root
	if root == "" {
		root = "packages"
	}
	if filepath.IsAbs(root) {
		return root
	}
	return filepath.Join(c.Dir, root)
}
