package dispatch

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/phinze/prospector/internal/event"
	"github.com/phinze/prospector/internal/sched"
	"github.com/phinze/prospector/internal/testutil"
)

func TestDispatchOrder(t *testing.T) {
	d := New(Options{})
	var got []string

	d.Subscribe(event.KindWPM, func(ev event.Event) { got = append(got, "first") })
	d.Subscribe(event.KindWPM, func(ev event.Event) { got = append(got, "second") })
	d.Subscribe(event.KindLayer, func(ev event.Event) { got = append(got, "layer") })

	d.Dispatch(event.WPMChanged{WPM: 10})

	if len(got) != 2 || got[0] != "first" || got[1] != "second" {
		t.Fatalf("got %v", got)
	}
}

func TestRunDeliversPostedEvents(t *testing.T) {
	d := New(Options{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var got []int
	done := make(chan struct{})
	d.Subscribe(event.KindLayer, func(ev event.Event) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, ev.(event.LayerChanged).Index)
		if len(got) == 3 {
			close(done)
		}
	})

	go d.Run(ctx)

	for i := range 3 {
		if !d.Post(event.LayerChanged{Index: i}) {
			t.Fatalf("Post(%d) rejected", i)
		}
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for events")
	}

	mu.Lock()
	defer mu.Unlock()
	for i, v := range got {
		if v != i {
			t.Fatalf("events out of order: %v", got)
		}
	}
}

func TestPostDropsWhenFull(t *testing.T) {
	logger, buf := testutil.NewBufferLogger(slog.LevelWarn)
	d := New(Options{QueueSize: 1, Logger: logger})

	if !d.Post(event.WPMChanged{WPM: 1}) {
		t.Fatal("first Post should succeed")
	}
	if d.Post(event.WPMChanged{WPM: 2}) {
		t.Fatal("second Post should be dropped")
	}
	if d.Dropped() != 1 {
		t.Fatalf("Dropped() = %d", d.Dropped())
	}
	if !strings.Contains(buf.String(), "event queue full") {
		t.Fatalf("missing warning: %q", buf.String())
	}
}

func TestListenerPanicRecovered(t *testing.T) {
	logger, buf := testutil.NewBufferLogger(slog.LevelError)
	d := New(Options{Logger: logger})
	after := false

	d.Subscribe(event.KindKey, func(event.Event) { panic("boom") })
	d.Subscribe(event.KindKey, func(event.Event) { after = true })

	d.Dispatch(event.KeyActivity{Pressed: true})

	if !after {
		t.Fatal("listener after panicking one did not run")
	}
	if !strings.Contains(buf.String(), "listener panic recovered") {
		t.Fatalf("missing panic log: %q", buf.String())
	}
}

func TestAfterFuncRunsOnLoop(t *testing.T) {
	manual := sched.NewManual()
	d := New(Options{Scheduler: manual})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ran := make(chan struct{})
	d.AfterFunc(time.Second, func() { close(ran) })
	go d.Run(ctx)

	manual.Advance(time.Second)

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("timer callback never ran on loop")
	}
}

func TestPostAfterStopRejected(t *testing.T) {
	d := New(Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d.Run(ctx)

	if d.Post(event.WPMChanged{}) {
		t.Fatal("Post after Run returned should be rejected")
	}
}
