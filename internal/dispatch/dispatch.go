// Package dispatch runs keyboard state events through a single event loop.
//
// Events may be posted from any goroutine (feed readers, device handlers),
// but listeners and timer callbacks always run one at a time on the loop
// goroutine, so the state they touch needs no locking of its own.
package dispatch

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/phinze/prospector/internal/event"
	"github.com/phinze/prospector/internal/sched"
)

// DefaultQueueSize bounds the number of events waiting for the loop.
const DefaultQueueSize = 64

// Listener handles one event on the loop goroutine.
type Listener = func(event.Event)

// Options configures a Dispatcher. Zero values use defaults.
type Options struct {
	QueueSize int
	Scheduler sched.Scheduler
	Logger    *slog.Logger
}

type item struct {
	ev event.Event
	fn func()
}

// Dispatcher delivers events to subscribers on a single goroutine.
type Dispatcher struct {
	mu   sync.RWMutex
	subs map[event.Kind][]Listener

	queue     chan item
	done      chan struct{}
	closeOnce sync.Once

	scheduler sched.Scheduler
	logger    *slog.Logger
	dropped   atomic.Uint64
}

// New creates a Dispatcher.
func New(opts Options) *Dispatcher {
	if opts.QueueSize <= 0 {
		opts.QueueSize = DefaultQueueSize
	}
	if opts.Scheduler == nil {
		opts.Scheduler = sched.Real{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Dispatcher{
		subs:      make(map[event.Kind][]Listener),
		queue:     make(chan item, opts.QueueSize),
		done:      make(chan struct{}),
		scheduler: opts.Scheduler,
		logger:    opts.Logger,
	}
}

// Subscribe registers fn for events of the given kind. Listeners for a kind
// run in registration order.
func (d *Dispatcher) Subscribe(kind event.Kind, fn Listener) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.subs[kind] = append(d.subs[kind], fn)
}

// Post queues ev for the loop without blocking. It returns false and drops
// the event if the queue is full or the loop has stopped.
func (d *Dispatcher) Post(ev event.Event) bool {
	select {
	case <-d.done:
		return false
	default:
	}

	select {
	case d.queue <- item{ev: ev}:
		return true
	default:
		n := d.dropped.Add(1)
		d.logger.Warn("event queue full, dropping event", "kind", ev.Kind(), "dropped", n)
		return false
	}
}

// Dropped returns how many events Post has discarded.
func (d *Dispatcher) Dropped() uint64 {
	return d.dropped.Load()
}

// Dispatch delivers ev synchronously on the caller's goroutine. It must not
// be called concurrently with Run.
func (d *Dispatcher) Dispatch(ev event.Event) {
	d.mu.RLock()
	listeners := d.subs[ev.Kind()]
	d.mu.RUnlock()

	for _, fn := range listeners {
		d.safeCall(string(ev.Kind()), func() { fn(ev) })
	}
}

// AfterFunc arms a one-shot timer whose callback runs on the loop goroutine.
func (d *Dispatcher) AfterFunc(delay time.Duration, f func()) sched.Timer {
	return d.scheduler.AfterFunc(delay, func() {
		select {
		case d.queue <- item{fn: f}:
		case <-d.done:
		}
	})
}

// Run processes queued events until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) error {
	defer d.close()

	for {
		select {
		case <-ctx.Done():
			return nil
		case it := <-d.queue:
			if it.fn != nil {
				d.safeCall("timer", it.fn)
				continue
			}
			d.Dispatch(it.ev)
		}
	}
}

func (d *Dispatcher) close() {
	d.closeOnce.Do(func() { close(d.done) })
}

// safeCall runs fn, logging and swallowing any panic so one faulty listener
// cannot stop the display.
func (d *Dispatcher) safeCall(what string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("listener panic recovered",
				"source", what, "panic", r, "stack", string(debug.Stack()))
		}
	}()
	fn()
}
