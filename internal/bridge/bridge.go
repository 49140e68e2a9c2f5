// Package bridge carries work from background goroutines back to the
// goroutine that owns the evaluator.
//
// Workers never touch interpreter state. They hold listener handles and
// send jobs whose arguments are snapshots: numbers, strings or null.
package bridge

import (
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ErrClosed is returned by Send after the bridge has been closed.
var ErrClosed = errors.New("bridge is closed")

// Kind distinguishes the three message types.
type Kind int

const (
	ThreadCreate Kind = iota
	ThreadDestroy
	ThreadMessage
)

func (k Kind) String() string {
	switch k {
	case ThreadCreate:
		return "ThreadCreate"
	case ThreadDestroy:
		return "ThreadDestroy"
	case ThreadMessage:
		return "ThreadMessage"
	}
	return "Unknown"
}

// Handle identifies a listener registered with the interpreter.
type Handle = uuid.UUID

// Job asks the interpreter to call Listener with Args.
type Job struct {
	Listener Handle
	Args     []Snapshot
}

type Message struct {
	Kind Kind
	Job  Job // set for ThreadMessage
}

// DefaultBuffer is the channel capacity used by New when none is given.
const DefaultBuffer = 256

// Bridge is a multi-producer channel drained by a single consumer.
// Messages sent before Close stay readable after it.
type Bridge struct {
	ch        chan Message
	done      chan struct{}
	closeOnce sync.Once
}

func New(buffer int) *Bridge {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Bridge{
		ch:   make(chan Message, buffer),
		done: make(chan struct{}),
	}
}

// Messages is the receiving end, read only by the evaluator goroutine.
func (b *Bridge) Messages() <-chan Message { return b.ch }

// Pending reports how many messages are queued.
func (b *Bridge) Pending() int { return len(b.ch) }

// Close makes further sends fail with ErrClosed.
func (b *Bridge) Close() {
	b.closeOnce.Do(func() { close(b.done) })
}

func (b *Bridge) Closed() bool {
	select {
	case <-b.done:
		return true
	default:
		return false
	}
}

// Sender returns a handle for producers.
func (b *Bridge) Sender() *Sender { return &Sender{b: b} }

// Sender is the producing side of a Bridge. It is safe for concurrent use.
type Sender struct {
	b *Bridge
}

func (s *Sender) Send(msg Message) error {
	if s.b.Closed() {
		return ErrClosed
	}
	select {
	case s.b.ch <- msg:
		return nil
	case <-s.b.done:
		return ErrClosed
	}
}

func (s *Sender) ThreadStart() error   { return s.Send(Message{Kind: ThreadCreate}) }
func (s *Sender) ThreadDestroy() error { return s.Send(Message{Kind: ThreadDestroy}) }

// Emit queues a call of listener with args.
func (s *Sender) Emit(listener Handle, args ...Snapshot) error {
	return s.Send(Message{Kind: ThreadMessage, Job: Job{Listener: listener, Args: args}})
}
