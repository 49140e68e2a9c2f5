package evaluator

import (
	"context"
	"io"
	"net"
	"time"

	"github.com/pkg/errors"

	"github.com/funvibe/zephyr/internal/bridge"
	"github.com/funvibe/zephyr/internal/config"
)

const dialTimeout = 10 * time.Second

func (c *NativeContext) emitter(i int, name string) (*EventEmitter, error) {
	v, err := c.value(i)
	if err != nil {
		return nil, err
	}
	em, ok := v.(*EventEmitter)
	if !ok {
		return nil, invalidArgs(name)
	}
	return em, nil
}

// builtinEventEmitter declares an emitter. Events are given as strings or
// as one array of strings.
func builtinEventEmitter(c *NativeContext) (Value, error) {
	args := c.Args
	if len(args) == 1 {
		v, err := c.Interp.unexport(args[0])
		if err != nil {
			return nil, err
		}
		if items, err := v.Iterate(c.Interp.heap); err == nil {
			args = items
		}
	}
	events := make([]string, 0, len(args))
	for _, a := range args {
		v, err := c.Interp.deref(a)
		if err != nil {
			return nil, err
		}
		s, ok := v.(*String)
		if !ok {
			return nil, invalidArgs(config.EventEmitterFuncName)
		}
		events = append(events, s.Value)
	}
	return NewEventEmitter(events...), nil
}

// builtinOn subscribes a function to an event. The function is kept alive
// by the listener registry.
func builtinOn(c *NativeContext) (Value, error) {
	em, err := c.emitter(0, config.OnFuncName)
	if err != nil {
		return nil, err
	}
	event, err := c.str(1, config.OnFuncName)
	if err != nil {
		return nil, err
	}
	fn, uerr := c.Interp.unexport(c.Arg(2))
	if uerr != nil {
		return nil, uerr
	}
	switch fn.(type) {
	case *Function, *NativeFunction:
	default:
		return nil, invalidArgs(config.OnFuncName)
	}
	if !em.Declares(event) {
		return nil, newError(UndefinedEventMessage, "event emitter does not have a %s event", event)
	}
	h := c.Interp.Listen(c.Arg(2))
	if err := em.AddListener(event, h); err != nil {
		c.Interp.listeners.Release(h)
		return nil, err
	}
	return NewNull(), nil
}

// builtinEmit calls the listeners of an event right away, in the order
// they were added.
func builtinEmit(c *NativeContext) (Value, error) {
	em, err := c.emitter(0, config.EmitFuncName)
	if err != nil {
		return nil, err
	}
	event, err := c.str(1, config.EmitFuncName)
	if err != nil {
		return nil, err
	}
	if !em.Declares(event) {
		return nil, newError(UndefinedEventMessage, "event emitter does not have a %s event", event)
	}
	var args []Value
	if len(c.Args) > 2 {
		args = c.Args[2:]
	}
	for _, h := range em.Listeners(event) {
		fn, ok := c.Interp.listeners.Get(h)
		if !ok {
			continue
		}
		if _, err := c.Interp.Call(fn, args, c.Location); err != nil {
			return nil, err
		}
	}
	return NewNull(), nil
}

// builtinTCPConnect dials addr and returns .{ send, close, event }. A
// worker emits receive for every chunk read and close when the
// connection ends. Reading starts at the next drain step; data that
// arrives earlier waits in the socket.
func builtinTCPConnect(c *NativeContext) (Value, error) {
	addr, err := c.str(0, config.TCPConnectFuncName)
	if err != nil {
		return nil, err
	}
	d := net.Dialer{Timeout: dialTimeout}
	conn, err := d.DialContext(c.Interp.ctx, "tcp", addr)
	if err != nil {
		return nil, newError(ChannelError, "cannot connect to %s: %v", addr, err)
	}

	em := NewEventEmitter(config.ReceiveEvent, config.CloseEvent)
	context.AfterFunc(c.Interp.ctx, func() { conn.Close() })
	c.Interp.Spawn("tcp "+addr, func(ctx context.Context, s *bridge.Sender) error {
		stop := context.AfterFunc(ctx, func() { conn.Close() })
		defer stop()
		defer conn.Close()
		buf := make([]byte, 4096)
		for {
			n, readErr := conn.Read(buf)
			if n > 0 {
				if err := em.EmitFrom(s, config.ReceiveEvent, bridge.String(string(buf[:n]))); err != nil {
					return err
				}
			}
			if readErr != nil {
				if err := em.EmitFrom(s, config.CloseEvent); err != nil {
					return err
				}
				if errors.Is(readErr, io.EOF) || errors.Is(readErr, net.ErrClosed) {
					return nil
				}
				return errors.Wrapf(readErr, "reading from %s", addr)
			}
		}
	})

	send := NewNative("send", func(c *NativeContext) (Value, error) {
		text, err := c.str(0, "send")
		if err != nil {
			return nil, err
		}
		if _, err := io.WriteString(conn, text); err != nil {
			return nil, newError(ChannelError, "cannot write to %s: %v", addr, err)
		}
		return NewNull(), nil
	})
	closeFn := NewNative("close", func(*NativeContext) (Value, error) {
		if err := conn.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			return nil, newError(ChannelError, "cannot close %s: %v", addr, err)
		}
		return NewNull(), nil
	})

	obj := NewObject()
	obj.Set("send", send)
	obj.Set("close", closeFn)
	obj.Set("event", em)
	return c.Interp.allocate(obj), nil
}

// builtinSleepEmit returns an emitter whose tick event fires count times
// (once by default), ms milliseconds apart, with the tick number. The
// timer starts at the next drain step.
func builtinSleepEmit(c *NativeContext) (Value, error) {
	ms, err := c.number(0, config.SleepEmitFuncName)
	if err != nil {
		return nil, err
	}
	count := 1.0
	if len(c.Args) > 1 {
		if count, err = c.number(1, config.SleepEmitFuncName); err != nil {
			return nil, err
		}
	}
	if ms < 0 || count < 0 {
		return nil, newError(RangeError, "sleep_emit needs a non-negative delay and count")
	}

	em := NewEventEmitter(config.TickEvent)
	delay := time.Duration(ms * float64(time.Millisecond))
	c.Interp.Spawn("sleep_emit", func(ctx context.Context, s *bridge.Sender) error {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		for i := 0; i < int(count); i++ {
			select {
			case <-ctx.Done():
				return nil
			case <-timer.C:
			}
			if err := em.EmitFrom(s, config.TickEvent, bridge.Number(float64(i))); err != nil {
				return err
			}
			timer.Reset(delay)
		}
		return nil
	})
	return em, nil
}
