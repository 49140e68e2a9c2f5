package evaluator

import (
	"context"
	"runtime"

	"github.com/funvibe/zephyr/internal/bridge"
	"github.com/funvibe/zephyr/internal/token"
)

// Workers returns the group natives start background goroutines in. A
// new group is created after every completed drain.
func (e *Evaluator) Workers() *bridge.Group {
	if e.workers == nil {
		e.workers = bridge.NewGroup(e.ctx, e.bridge.Sender(), e.logger)
	}
	return e.workers
}

type queuedWorker struct {
	name string
	fn   func(ctx context.Context, s *bridge.Sender) error
}

// Spawn queues a background worker for a native. Queued workers start at
// the next drain step, once the running program or listener call has
// returned, so listeners it registers see every event.
func (e *Evaluator) Spawn(name string, fn func(ctx context.Context, s *bridge.Sender) error) {
	e.queued = append(e.queued, queuedWorker{name: name, fn: fn})
}

func (e *Evaluator) startQueued() error {
	queued := e.queued
	e.queued = nil
	for _, w := range queued {
		if err := e.Workers().Go(w.name, w.fn); err != nil {
			return newError(ChannelError, "%v", err)
		}
	}
	return nil
}

// Sender gives natives the producing end of the bridge.
func (e *Evaluator) Sender() *bridge.Sender { return e.bridge.Sender() }

// Listen registers fn as a listener and returns the handle workers use to
// reach it.
func (e *Evaluator) Listen(fn Value) bridge.Handle { return e.listeners.Register(fn) }

// Drain runs queued listener calls on the calling goroutine until no
// worker is outstanding and the bridge is empty.
func (e *Evaluator) Drain(ctx context.Context) error {
	msgs := e.bridge.Messages()
	for {
		if err := e.startQueued(); err != nil {
			return err
		}
		select {
		case msg := <-msgs:
			if err := e.handle(msg); err != nil {
				return err
			}
			continue
		default:
		}

		if e.running() == 0 && e.bridge.Pending() == 0 {
			var err error
			if e.workers != nil {
				err = e.workers.Wait()
				e.workers = nil
				e.outstanding = 0
			}
			e.logger.Debug("bridge drained", "listeners", e.listeners.Len())
			if err != nil {
				return newError(ChannelError, "%v", err)
			}
			return nil
		}

		runtime.Gosched()
		select {
		case msg := <-msgs:
			if err := e.handle(msg); err != nil {
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// running counts workers that have not reported ThreadDestroy yet.
// Queued workers and workers of the current group count from the moment
// they are handed over; threads announced with ThreadCreate count when
// the message arrives.
func (e *Evaluator) running() int {
	n := e.outstanding + len(e.queued)
	if e.workers != nil {
		n += e.workers.Started()
	}
	return n
}

func (e *Evaluator) handle(msg bridge.Message) error {
	switch msg.Kind {
	case bridge.ThreadCreate:
		e.outstanding++
	case bridge.ThreadDestroy:
		e.outstanding--
	case bridge.ThreadMessage:
		listener, ok := e.listeners.Get(msg.Job.Listener)
		if !ok {
			return newError(ChannelError, "no listener registered for %s", msg.Job.Listener)
		}
		args := make([]Value, len(msg.Job.Args))
		for i, a := range msg.Job.Args {
			args[i] = FromSnapshot(a)
		}
		if _, err := e.Call(listener, args, token.Location{}); err != nil {
			return err
		}
		e.sweepIfRequested()
	}
	return nil
}

// ToSnapshot converts v into a value that may cross goroutines. Only
// numbers, strings and null can.
func ToSnapshot(h *Heap, v Value) (bridge.Snapshot, error) {
	switch v := v.(type) {
	case *Number:
		return bridge.Number(v.Value), nil
	case *String:
		return bridge.String(v.Value), nil
	case *Null:
		return bridge.Null(), nil
	case *Reference:
		target, err := v.Deref(h)
		if err != nil {
			return bridge.Snapshot{}, err
		}
		return ToSnapshot(h, target)
	}
	return bridge.Snapshot{}, newError(ChannelError, "a %s cannot be sent to another thread", v.TypeName())
}

func FromSnapshot(s bridge.Snapshot) Value {
	switch s.Kind {
	case bridge.SnapshotNumber:
		return NewNumber(s.Number)
	case bridge.SnapshotString:
		return NewString(s.Text)
	}
	return NewNull()
}
