// Command zephyr runs Zephyr scripts and hosts an interactive REPL.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"

	"github.com/funvibe/zephyr/internal/config"
	"github.com/funvibe/zephyr/internal/evaluator"
	"github.com/funvibe/zephyr/internal/modules"
)

// Version can be set at build time using: -ldflags "-X main.Version=v1.2.3"
var Version = "dev"

const usage = `Usage:
  zephyr run [flags] <file>   run a script
  zephyr repl [flags]         start an interactive session
  zephyr version              print the version
  zephyr <file>               same as run

Flags:
`

// app carries what every command needs. Tests swap the streams.
type app struct {
	stdout io.Writer
	stderr io.Writer
	// tty reports whether stdout is a terminal, for color: auto.
	tty bool

	verbose    bool
	configPath string
}

func main() {
	a := &app{
		stdout: os.Stdout,
		stderr: os.Stderr,
		tty:    isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()),
	}
	os.Exit(a.run(os.Args[1:]))
}

func (a *app) run(args []string) int {
	fs := pflag.NewFlagSet("zephyr", pflag.ContinueOnError)
	fs.SetOutput(a.stderr)
	fs.BoolVarP(&a.verbose, "verbose", "v", false, "log debug output to stderr")
	fs.StringVar(&a.configPath, "config", "", "path to zephyr.yaml (default: search upwards)")
	fs.Usage = func() {
		fmt.Fprint(a.stderr, usage)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}

	rest := fs.Args()
	if len(rest) == 0 {
		fs.Usage()
		return 2
	}
	switch rest[0] {
	case "version":
		fmt.Fprintf(a.stdout, "zephyr %s\n", Version)
		return 0
	case "repl":
		return a.repl()
	case "run":
		if len(rest) != 2 {
			fs.Usage()
			return 2
		}
		return a.runFile(rest[1])
	}
	if len(rest) == 1 && config.HasSourceExt(rest[0]) {
		return a.runFile(rest[0])
	}
	fmt.Fprintf(a.stderr, "zephyr: unknown command %q\n", rest[0])
	fs.Usage()
	return 2
}

// loadConfig finds zephyr.yaml for a script in dir, or uses --config.
func (a *app) loadConfig(dir string) (*config.Config, error) {
	path := a.configPath
	if path == "" {
		found, err := config.FindConfig(dir)
		if err != nil {
			return nil, err
		}
		if found == "" {
			cfg := config.Default()
			cfg.Dir = dir
			return cfg, nil
		}
		path = found
	}
	return config.LoadConfig(path)
}

func (a *app) logger(cfg *config.Config) *slog.Logger {
	level := cfg.LogLevel()
	if a.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: level}))
}

func (a *app) color(cfg *config.Config) bool {
	switch cfg.Color {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	}
	return a.tty
}

// newEvaluator builds an evaluator configured for scripts under dir.
func (a *app) newEvaluator(ctx context.Context, dir string) (*evaluator.Evaluator, *config.Config, error) {
	cfg, err := a.loadConfig(dir)
	if err != nil {
		return nil, nil, err
	}
	logger := a.logger(cfg)
	root := ""
	if cfg.Packages.Root != "" {
		root = cfg.PackageRoot()
		logger.Debug("package root", "dir", root)
	}
	e := evaluator.New(evaluator.Options{
		Context:  ctx,
		Out:      a.stdout,
		Logger:   logger,
		Resolver: modules.NewResolver(root),
		Color:    a.color(cfg),
		MaxDepth: cfg.Eval.MaxDepth,
	})
	return e, cfg, nil
}

func (a *app) runFile(path string) int {
	abs, err := filepath.Abs(path)
	if err != nil {
		fmt.Fprintf(a.stderr, "zephyr: %v\n", err)
		return 1
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	e, _, err := a.newEvaluator(ctx, filepath.Dir(abs))
	if err != nil {
		fmt.Fprintf(a.stderr, "zephyr: %v\n", err)
		return 1
	}
	defer func() {
		if err := e.Close(); err != nil {
			e.Logger().Warn("closing evaluator", "error", err)
		}
	}()

	if _, err := e.RunFile(abs); err != nil {
		fmt.Fprintf(a.stderr, "%v\n", err)
		return 1
	}
	return 0
}
