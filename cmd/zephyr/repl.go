package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/pkg/errors"

	"github.com/funvibe/zephyr/internal/config"
	"github.com/funvibe/zephyr/internal/evaluator"
	"github.com/funvibe/zephyr/internal/modules"
	"github.com/funvibe/zephyr/internal/token"
)

const (
	historyFile = ".zephyr_history"
	promptMain  = "> "
	promptCont  = "... "
	replHelp    = `REPL commands:
  :help           show this help
  :quit, :exit    leave the REPL
  :collect        sweep the heap now
Input continues on the next line while it is incomplete; an empty line
ends it.
`
)

// prompter is the part of liner the REPL uses.
type prompter interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
}

func (a *app) repl() int {
	wd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(a.stderr, "zephyr: %v\n", err)
		return 1
	}
	e, cfg, err := a.newEvaluator(context.Background(), wd)
	if err != nil {
		fmt.Fprintf(a.stderr, "zephyr: %v\n", err)
		return 1
	}
	defer e.Close()

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)
	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}

	fmt.Fprintf(a.stdout, "zephyr %s. Type :help for commands.\n", Version)
	s := newSession(e, wd, a.stdout, a.color(cfg), cfg.Heap.SweepBetweenInputs)
	s.loop(ln)

	if f, err := os.Create(histPath); err == nil {
		_, _ = ln.WriteHistory(f)
		_ = f.Close()
	}
	return 0
}

// session is one REPL run. Every input is evaluated in the same scope.
type session struct {
	e     *evaluator.Evaluator
	scope *evaluator.Scope
	out   io.Writer
	color bool
	sweep bool
}

func newSession(e *evaluator.Evaluator, dir string, out io.Writer, color, sweep bool) *session {
	return &session{
		e:     e,
		scope: e.NewModuleScope(filepath.Join(dir, "repl"+config.SourceFileExt)),
		out:   out,
		color: color,
		sweep: sweep,
	}
}

func (s *session) loop(p prompter) {
	for {
		src, ok := readInput(p)
		if !ok {
			fmt.Fprintln(s.out)
			return
		}
		switch strings.TrimSpace(src) {
		case "":
			continue
		case ":quit", ":exit":
			return
		case ":help":
			fmt.Fprint(s.out, replHelp)
			continue
		case ":collect":
			fmt.Fprintf(s.out, "freed %d\n", s.e.Collect())
			continue
		}
		p.AppendHistory(strings.ReplaceAll(src, "\n", " "))
		s.eval(src)
	}
}

func (s *session) eval(src string) {
	v, err := s.e.EvalIn(src, s.scope)
	if err != nil {
		fmt.Fprintln(s.out, err)
	} else if text, err := evaluator.Display(s.e.Heap(), v, s.color, false); err != nil {
		fmt.Fprintln(s.out, err)
	} else {
		fmt.Fprintln(s.out, text)
	}
	if s.sweep {
		freed := s.e.Collect()
		s.e.Logger().Debug("swept after input", "freed", freed)
	}
}

// readInput reads lines until they parse or fail for a reason other than
// running out of input. It reports false at end of input.
func readInput(p prompter) (string, bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := p.Prompt(prompt)
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", true
		}
		if err != nil {
			return "", false
		}
		if b.Len() > 0 {
			if strings.TrimSpace(line) == "" {
				return b.String(), true
			}
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if _, err := modules.ParseSource(src, ""); err != nil && incomplete(err) {
			continue
		}
		return src, true
	}
}

// incomplete reports whether a parse failed only because input ended.
func incomplete(err error) bool {
	diag, ok := modules.AsDiagnostic(err)
	return ok && diag.Token.Type == token.EOF
}
