package evaluator

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/funvibe/zephyr/internal/bridge"
)

func TestSleepEmit(t *testing.T) {
	e, out := newTestEvaluator(t)
	_, err := e.RunSource("let t = sleep_emit(20, 3)\non(t, \"tick\", func (i) { print(i) })", "")
	require.NoError(t, err)
	require.Equal(t, "0\n1\n2\n", out.String())
}

func TestSleepEmitWaitsForListeners(t *testing.T) {
	e, out := newTestEvaluator(t)
	src := `let t = sleep_emit(0, 3)
let i = 0
while i < 2000 {
	i = i + 1
}
on(t, "tick", func (n) { print(n) })`
	_, err := e.RunSource(src, "")
	require.NoError(t, err)
	require.Equal(t, "0\n1\n2\n", out.String())
}

func TestListenerStartsWorker(t *testing.T) {
	e, out := newTestEvaluator(t)
	src := `let t = sleep_emit(0)
on(t, "tick", func (i) {
	let u = sleep_emit(0, 2)
	on(u, "tick", func (j) { print("inner", j) })
})`
	_, err := e.RunSource(src, "")
	require.NoError(t, err)
	require.Equal(t, "inner 0\ninner 1\n", out.String())
}

func TestManyTicksWithLateEmitter(t *testing.T) {
	e, out := newTestEvaluator(t)
	src := `let n = 0
let count = func (i) {
	n = n + 1
	if n == 1001 {
		print("done")
	}
}
let t = sleep_emit(0, 1000)
on(t, "tick", count)
let i = 0
while i < 20000 {
	i = i + 1
}
let u = sleep_emit(0, 1)
on(u, "tick", count)`

	done := make(chan error, 1)
	go func() {
		_, err := e.RunSource(src, "")
		done <- err
	}()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("program did not finish")
	}
	require.Equal(t, "done\n", out.String())
}

func TestSleepEmitRejectsNegativeDelay(t *testing.T) {
	require.Equal(t, RangeError, runErr(t, "sleep_emit(-1)").Kind)
}

func TestListenerErrorStopsDrain(t *testing.T) {
	e, _ := newTestEvaluator(t)
	_, err := e.RunSource("let t = sleep_emit(20)\nt.on(\"tick\", func (i) { error_call(\"from listener\") })", "")
	var rerr *Error
	require.ErrorAs(t, err, &rerr)
	require.Equal(t, InvalidOperation, rerr.Kind)
	require.Equal(t, "from listener", rerr.Message)
}

func TestDrainUnknownListener(t *testing.T) {
	e, _ := newTestEvaluator(t)
	require.NoError(t, e.Sender().Emit(uuid.New(), bridge.Number(1)))

	err := e.Drain(context.Background())
	var rerr *Error
	require.ErrorAs(t, err, &rerr)
	require.Equal(t, ChannelError, rerr.Kind)
}

func TestDrainRunsListenersFromWorkers(t *testing.T) {
	e, _ := newTestEvaluator(t)
	var got []float64
	h := e.Listen(NewNative("collect", func(c *NativeContext) (Value, error) {
		n, err := c.number(0, "collect")
		if err != nil {
			return nil, err
		}
		got = append(got, n)
		return NewNull(), nil
	}))

	for i := 0; i < 3; i++ {
		i := i
		require.NoError(t, e.Workers().Go(fmt.Sprintf("w%d", i), func(ctx context.Context, s *bridge.Sender) error {
			return s.Emit(h, bridge.Number(float64(i)))
		}))
	}
	require.NoError(t, e.Drain(context.Background()))
	require.ElementsMatch(t, []float64{0, 1, 2}, got)
}

func TestWorkerStartsWhileChannelFull(t *testing.T) {
	e, _ := newTestEvaluator(t)
	got := 0
	h := e.Listen(NewNative("count", func(c *NativeContext) (Value, error) {
		got++
		return NewNull(), nil
	}))
	for i := 0; i < bridge.DefaultBuffer; i++ {
		require.NoError(t, e.Sender().Emit(h, bridge.Number(float64(i))))
	}

	started := make(chan error, 1)
	go func() {
		started <- e.Workers().Go("late", func(ctx context.Context, s *bridge.Sender) error {
			return s.Emit(h, bridge.Number(-1))
		})
	}()
	select {
	case err := <-started:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("starting a worker blocked on the full channel")
	}

	require.NoError(t, e.Drain(context.Background()))
	require.Equal(t, bridge.DefaultBuffer+1, got)
}

func TestDrainHonorsContext(t *testing.T) {
	e, _ := newTestEvaluator(t)
	require.NoError(t, e.Workers().Go("blocked", func(ctx context.Context, s *bridge.Sender) error {
		<-ctx.Done()
		return nil
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, e.Drain(ctx), context.DeadlineExceeded)
}

func TestToSnapshot(t *testing.T) {
	h := NewHeap()
	s, err := ToSnapshot(h, NewString("hi"))
	require.NoError(t, err)
	require.Equal(t, bridge.String("hi"), s)

	ref := NewReference(h.Allocate(NewArray(nil)))
	_, err = ToSnapshot(h, ref)
	require.Equal(t, ChannelError, asError(err).Kind)
	_, err = ToSnapshot(h, NewBoolean(true))
	require.Equal(t, ChannelError, asError(err).Kind)

	require.Equal(t, 2.5, FromSnapshot(bridge.Number(2.5)).(*Number).Value)
	require.IsType(t, &Null{}, FromSnapshot(bridge.Null()))
}

// startServer accepts one connection, answers the first line it reads
// with reply and hangs up.
func startServer(t *testing.T, reply string) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		if _, err := bufio.NewReader(conn).ReadString('\n'); err != nil {
			return
		}
		_, _ = conn.Write([]byte(reply))
	}()
	return ln.Addr().String()
}

func TestTCPConnect(t *testing.T) {
	addr := startServer(t, "pong")
	e, out := newTestEvaluator(t)
	src := fmt.Sprintf(`let c = tcp_connect(%q)
let got = ""
on(c.event, "receive", func (s) { got = got + s })
on(c.event, "close", func () { print("closed:", got) })
c.send("ping\n")`, addr)

	_, err := e.RunSource(src, "")
	require.NoError(t, err)
	require.Equal(t, "closed: pong\n", out.String())
}

func TestTCPConnectRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	rerr := runErr(t, fmt.Sprintf("tcp_connect(%q)", addr))
	require.Equal(t, ChannelError, rerr.Kind)
}
