// Package sleep provides the display power module: a blank overlay shown
// while the display idles, and dial control of the backlight level.
package sleep

import (
	"context"
	"image"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/phinze/prospector/internal/event"
	"github.com/phinze/prospector/internal/module"
)

const (
	minLevel  = 5
	maxLevel  = 100
	levelStep = 5
)

// Backlight sets the device brightness.
type Backlight interface {
	SetBrightness(percent uint8) error
}

// Module blanks the display on request and restores the user's chosen
// backlight level on wake. It implements idle.Power.
type Module struct {
	module.BaseModule

	backlight Backlight
	post      func(event.Event) bool
	logger    *slog.Logger
	redraw    atomic.Pointer[func()]

	mu      sync.RWMutex
	blanked bool
	level   uint8
}

// New creates the module. post receives KeyActivity for presses made while
// the display is blanked, so the idler can wake it.
func New(backlight Backlight, level uint8, post func(event.Event) bool, logger *slog.Logger) *Module {
	if logger == nil {
		logger = slog.Default()
	}
	return &Module{
		BaseModule: module.NewBaseModule("sleep"),
		backlight:  backlight,
		post:       post,
		logger:     logger,
		level:      clampLevel(int(level)),
	}
}

func clampLevel(v int) uint8 {
	return uint8(max(minLevel, min(v, maxLevel)))
}

// Init applies the starting backlight level.
func (m *Module) Init(ctx context.Context, res module.Resources) error {
	if err := m.BaseModule.Init(ctx, res); err != nil {
		return err
	}
	if invalidate := res.Invalidate; invalidate != nil {
		m.redraw.Store(&invalidate)
	}
	return m.backlight.SetBrightness(m.Level())
}

// Level returns the backlight level used while awake.
func (m *Module) Level() uint8 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.level
}

// SetBlanking shows or hides the blank overlay.
func (m *Module) SetBlanking(on bool) error {
	m.mu.Lock()
	changed := m.blanked != on
	m.blanked = on
	m.mu.Unlock()
	if !changed {
		return nil
	}
	// The idler calls in from the event loop, which may race Init.
	if fn := m.redraw.Load(); fn != nil {
		(*fn)()
	}
	return nil
}

// SetBrightness turns the backlight off for zero and otherwise restores the
// dial-adjusted level.
func (m *Module) SetBrightness(percent uint8) error {
	if percent == 0 {
		return m.backlight.SetBrightness(0)
	}
	return m.backlight.SetBrightness(m.Level())
}

// IsOverlayActive implements module.OverlayProvider.
func (m *Module) IsOverlayActive() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.blanked
}

// RenderOverlayKeys clears every key.
func (m *Module) RenderOverlayKeys() map[module.KeyID]image.Image { return nil }

// RenderOverlayStrip blanks the strip.
func (m *Module) RenderOverlayStrip() image.Image { return nil }

// HandleOverlayKey forwards presses as key activity so the display wakes.
func (m *Module) HandleOverlayKey(id module.KeyID, ev module.KeyEvent) error {
	if m.post == nil {
		return nil
	}
	if !m.post(event.KeyActivity{Pressed: ev.Pressed}) {
		m.logger.Debug("wake event dropped", "key", id)
	}
	return nil
}

// HandleDial adjusts the backlight on rotation; a press counts as activity.
func (m *Module) HandleDial(id module.DialID, ev module.DialEvent) error {
	switch ev.Type {
	case module.DialRotate:
		m.mu.Lock()
		m.level = clampLevel(int(m.level) + int(ev.Delta)*levelStep)
		level, blanked := m.level, m.blanked
		m.mu.Unlock()
		m.logger.Debug("backlight level", "level", level)
		if blanked {
			return nil
		}
		return m.backlight.SetBrightness(level)
	case module.DialPress:
		if m.post != nil {
			m.post(event.KeyActivity{Pressed: true})
		}
	}
	return nil
}
