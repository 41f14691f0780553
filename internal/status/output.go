package status

import (
	"log/slog"
	"time"

	"github.com/phinze/prospector/internal/event"
	"github.com/phinze/prospector/internal/sched"
)

// DefaultProfileDisplayTimeout is how long the output widget stays expanded
// after a profile change.
const DefaultProfileDisplayTimeout = 3 * time.Second

// OutputState is what an output sink renders.
type OutputState struct {
	Transport        event.Transport
	Profile          int
	ProfileConnected bool
	ProfileOpen      bool
	// Expanded is true while the profile detail should be shown.
	Expanded bool
}

// OutputAggregator tracks the active transport and BLE profile. A profile
// change expands the widget for a fixed interval; on BLE the widget stays
// expanded.
type OutputAggregator struct {
	state   OutputState
	sinks   Broadcaster[OutputState]
	timeout time.Duration

	scheduler sched.Scheduler
	timer     sched.Timer
	// gen invalidates fires from timers that were cancelled after they had
	// already been queued.
	gen uint64

	logger *slog.Logger
}

// NewOutputAggregator creates an aggregator. scheduler must deliver callbacks
// on the same goroutine that calls the On* methods.
func NewOutputAggregator(scheduler sched.Scheduler, timeout time.Duration, logger *slog.Logger) *OutputAggregator {
	if timeout <= 0 {
		timeout = DefaultProfileDisplayTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &OutputAggregator{
		scheduler: scheduler,
		timeout:   timeout,
		logger:    logger,
	}
}

// Register adds a sink and pushes the current state to it.
func (a *OutputAggregator) Register(s Sink[OutputState]) {
	if s == nil {
		return
	}
	a.sinks.Register(s)
	s.Update(a.state)
}

// Init sets the starting transport and profile without arming the timer.
func (a *OutputAggregator) Init(t event.Transport, profile int) {
	a.state.Transport = t
	a.state.Profile = profile
	a.state.Expanded = t == event.TransportBLE
	a.sinks.Broadcast(a.state)
}

// OnTransportChanged handles an endpoint change. BLE pins the widget
// expanded; USB collapses it.
func (a *OutputAggregator) OnTransportChanged(t event.Transport) {
	a.cancel()
	a.state.Transport = t
	a.state.Expanded = t == event.TransportBLE
	a.sinks.Broadcast(a.state)
}

// OnProfileChanged handles a profile selection or status change.
func (a *OutputAggregator) OnProfileChanged(index int, connected, open bool) {
	a.state.Profile = index
	a.state.ProfileConnected = connected
	a.state.ProfileOpen = open
	a.state.Expanded = true
	a.sinks.Broadcast(a.state)

	if a.state.Transport == event.TransportBLE {
		a.cancel()
		return
	}
	a.reschedule()
}

func (a *OutputAggregator) cancel() {
	a.gen++
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
}

func (a *OutputAggregator) reschedule() {
	a.cancel()
	gen := a.gen
	a.timer = a.scheduler.AfterFunc(a.timeout, func() { a.expire(gen) })
}

func (a *OutputAggregator) expire(gen uint64) {
	if gen != a.gen {
		a.logger.Debug("stale profile timer ignored")
		return
	}
	a.timer = nil
	if a.state.Transport == event.TransportBLE {
		return
	}
	a.state.Expanded = false
	a.sinks.Broadcast(a.state)
}

// State returns the current output state.
func (a *OutputAggregator) State() OutputState {
	return a.state
}

// TimerArmed reports whether a collapse is pending.
func (a *OutputAggregator) TimerArmed() bool {
	return a.timer != nil
}
