package bridge

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Group runs background workers. Starting a worker never touches the
// channel: the count of started workers is kept here, and each worker
// reports ThreadDestroy from its own goroutine when it returns. The
// consumer may therefore start workers while the channel is full.
type Group struct {
	g       *errgroup.Group
	ctx     context.Context
	sender  *Sender
	logger  *slog.Logger
	started atomic.Int64
}

func NewGroup(ctx context.Context, sender *Sender, logger *slog.Logger) *Group {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	g, gctx := errgroup.WithContext(ctx)
	return &Group{g: g, ctx: gctx, sender: sender, logger: logger}
}

// Go starts fn on a new goroutine. The worker is counted before Go
// returns, so a drain that starts afterwards waits for it.
func (g *Group) Go(name string, fn func(ctx context.Context, s *Sender) error) error {
	if g.sender.b.Closed() {
		return errors.Wrapf(ErrClosed, "starting worker %s", name)
	}
	g.started.Add(1)
	g.logger.Debug("worker started", "worker", name)
	g.g.Go(func() error {
		defer func() {
			if err := g.sender.ThreadDestroy(); err != nil {
				g.logger.Warn("worker could not report exit", "worker", name, "error", err)
			}
			g.logger.Debug("worker finished", "worker", name)
		}()
		if err := fn(g.ctx, g.sender); err != nil {
			return errors.Wrapf(err, "worker %s", name)
		}
		return nil
	})
	return nil
}

// Started is the number of workers started so far. Every one of them
// sends exactly one ThreadDestroy.
func (g *Group) Started() int { return int(g.started.Load()) }

// Wait blocks until every worker has returned and reports the first error.
func (g *Group) Wait() error {
	return g.g.Wait()
}
