package source

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"

	"github.com/jmylchreest/wayglance/internal/loop"
	"github.com/jmylchreest/wayglance/internal/signal"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeAdapter struct {
	name   string
	events []Message
	err    error
}

func (a *fakeAdapter) Name() string { return a.name }

func (a *fakeAdapter) Listen(ctx context.Context, out chan<- Message) error {
	for _, m := range a.events {
		if !Send(ctx, out, m, nil) {
			return nil
		}
	}
	return a.err
}

func intEvent(n int) Event {
	return Func(func(*lua.LState) (lua.LValue, error) {
		return lua.LNumber(n), nil
	})
}

func waitDone(t *testing.T, r *Running) {
	t.Helper()
	select {
	case <-r.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("adapter did not stop")
	}
}

func TestStart_DeliversInOrder(t *testing.T) {
	L := lua.NewState()
	defer L.Close()
	sched := loop.NewManual()
	bus := signal.NewBus()
	d := NewDispatcher(sched, bus, L, quietLogger())

	var events []Message
	for i := 1; i <= 50; i++ {
		events = append(events, Message{Kind: "tick", Event: intEvent(i)})
	}

	var got []lua.LValue
	bus.Subscribe("test::tick", func(p lua.LValue) { got = append(got, p) })

	r := Start(context.Background(), &fakeAdapter{name: "test", events: events}, d, 4)
	waitDone(t, r)
	assert.NoError(t, r.Err())

	assert.Empty(t, got, "nothing is emitted off the scheduler goroutine")
	sched.Drain()

	require.Len(t, got, 50)
	for i, p := range got {
		assert.Equal(t, lua.LNumber(i+1), p)
	}
}

func TestDispatcher_ConversionErrorGivesNilPayload(t *testing.T) {
	L := lua.NewState()
	defer L.Close()
	sched := loop.NewManual()
	bus := signal.NewBus()
	d := NewDispatcher(sched, bus, L, quietLogger())

	var got []lua.LValue
	bus.Subscribe("test::a", func(p lua.LValue) { got = append(got, p) })

	ch := make(chan Message, 3)
	ch <- Message{Kind: "a", Event: Func(func(*lua.LState) (lua.LValue, error) {
		return nil, errors.New("cannot convert")
	})}
	ch <- Message{Kind: "a"}
	ch <- Message{Kind: "a", Event: Bool(true)}
	close(ch)

	d.Run(context.Background(), "test", ch)
	sched.Drain()

	assert.Equal(t, []lua.LValue{lua.LNil, lua.LNil, lua.LTrue}, got)
}

func TestDispatcher_NamespacedSignals(t *testing.T) {
	L := lua.NewState()
	defer L.Close()
	sched := loop.NewManual()
	bus := signal.NewBus()
	d := NewDispatcher(sched, bus, L, quietLogger())

	var got []string
	bus.Subscribe("hyprland::fullscreen_changed", func(lua.LValue) { got = append(got, "hyprland") })
	bus.Subscribe("mpris::fullscreen_changed", func(lua.LValue) { got = append(got, "mpris") })

	ch := make(chan Message, 1)
	ch <- Message{Kind: "fullscreen_changed", Event: Bool(false)}
	close(ch)
	d.Run(context.Background(), "hyprland", ch)
	sched.Drain()

	assert.Equal(t, []string{"hyprland"}, got)
	assert.Equal(t, "mpris::metadata", SignalName("mpris", "metadata"))
}

func TestStart_AdapterErrorStopsAdapter(t *testing.T) {
	L := lua.NewState()
	defer L.Close()
	sched := loop.NewManual()
	bus := signal.NewBus()
	d := NewDispatcher(sched, bus, L, quietLogger())

	boom := errors.New("socket closed")
	count := 0
	bus.Subscribe("test::x", func(lua.LValue) { count++ })

	r := Start(context.Background(), &fakeAdapter{
		name:   "test",
		events: []Message{{Kind: "x"}},
		err:    boom,
	}, d, 0)
	waitDone(t, r)
	sched.Drain()

	assert.ErrorIs(t, r.Err(), boom)
	assert.Equal(t, "test", r.Name())
	assert.Equal(t, 1, count, "events sent before the failure are still delivered")
}

func TestSend_DropsWhenReceiverGone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := make(chan Message)
	ok := Send(ctx, out, Message{Kind: "x"}, quietLogger())
	assert.False(t, ok)
}

func TestStart_CancelStopsBlockedAdapter(t *testing.T) {
	L := lua.NewState()
	defer L.Close()
	d := NewDispatcher(loop.NewManual(), signal.NewBus(), L, quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	blocking := &blockingAdapter{}
	r := Start(ctx, blocking, d, 1)

	cancel()
	waitDone(t, r)
	assert.NoError(t, r.Err(), "errors after cancellation are not failures")
}

type blockingAdapter struct{}

func (blockingAdapter) Name() string { return "blocking" }

func (blockingAdapter) Listen(ctx context.Context, _ chan<- Message) error {
	<-ctx.Done()
	return ctx.Err()
}
