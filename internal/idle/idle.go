// Package idle blanks the display after a period without key presses and
// wakes it on the next press.
package idle

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/phinze/prospector/internal/event"
	"github.com/phinze/prospector/internal/sched"
)

const (
	DefaultTimeout        = 30 * time.Second
	DefaultWakeBrightness = 80
)

// Power controls the display backlight and blanking.
type Power interface {
	SetBlanking(on bool) error
	SetBrightness(percent uint8) error
}

// Options configures an Idler.
type Options struct {
	Enabled        bool
	Timeout        time.Duration
	WakeBrightness uint8
	Logger         *slog.Logger
}

// Idler puts the display to sleep after Timeout of key inactivity.
type Idler struct {
	power     Power
	scheduler sched.Scheduler
	opts      Options
	logger    *slog.Logger

	sleeping atomic.Bool

	mu    sync.Mutex
	timer sched.Timer
}

// New creates an Idler. Zero option values use defaults.
func New(power Power, scheduler sched.Scheduler, opts Options) *Idler {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.WakeBrightness == 0 {
		opts.WakeBrightness = DefaultWakeBrightness
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if scheduler == nil {
		scheduler = sched.Real{}
	}
	return &Idler{
		power:     power,
		scheduler: scheduler,
		opts:      opts,
		logger:    opts.Logger,
	}
}

// Start arms the idle timer. It does nothing when idling is disabled.
func (i *Idler) Start() {
	if !i.opts.Enabled {
		return
	}
	i.reschedule()
}

// Stop cancels the idle timer.
func (i *Idler) Stop() {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.timer != nil {
		i.timer.Stop()
		i.timer = nil
	}
}

// OnKeyActivity wakes the display on a key press and restarts the idle
// interval. Releases are ignored.
func (i *Idler) OnKeyActivity(pressed bool) {
	if !i.opts.Enabled || !pressed {
		return
	}
	i.wake()
	i.reschedule()
}

// Handle adapts OnKeyActivity to the event bus.
func (i *Idler) Handle(ev event.Event) {
	if k, ok := ev.(event.KeyActivity); ok {
		i.OnKeyActivity(k.Pressed)
	}
}

// Sleeping reports whether the display is blanked.
func (i *Idler) Sleeping() bool {
	return i.sleeping.Load()
}

func (i *Idler) reschedule() {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.timer != nil {
		i.timer.Stop()
	}
	i.timer = i.scheduler.AfterFunc(i.opts.Timeout, i.sleep)
}

func (i *Idler) sleep() {
	if !i.sleeping.CompareAndSwap(false, true) {
		return
	}
	if err := i.power.SetBlanking(true); err != nil {
		i.logger.Warn("failed to blank display", "error", err)
	}
	if err := i.power.SetBrightness(0); err != nil {
		i.logger.Warn("failed to dim display", "error", err)
	}
	i.logger.Debug("display sleeping")
}

func (i *Idler) wake() {
	if !i.sleeping.CompareAndSwap(true, false) {
		return
	}
	if err := i.power.SetBlanking(false); err != nil {
		i.logger.Warn("failed to unblank display", "error", err)
	}
	if err := i.power.SetBrightness(i.opts.WakeBrightness); err != nil {
		i.logger.Warn("failed to restore brightness", "error", err)
	}
	i.logger.Debug("display awake")
}
