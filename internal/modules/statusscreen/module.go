// Package statusscreen draws keyboard status onto the touch strip and the
// modifier keys. Every layout renders the same session state; a long press
// on any modifier key switches to the next layout.
package statusscreen

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/phinze/prospector/internal/module"
	"github.com/phinze/prospector/internal/status"
)

// LongPress is the hold time that cycles layouts.
const LongPress = time.Second

// Options configures a Module.
type Options struct {
	// Layout is the starting layout name; empty means the first one.
	Layout string
	// ShowInactive draws inactive modifier slots dimmed instead of blank.
	ShowInactive bool
	Logger       *slog.Logger
}

// Module renders the status widgets.
type Module struct {
	module.BaseModule

	widgets      widgets
	redraw       atomic.Pointer[func()]
	showInactive bool
	logger       *slog.Logger

	mu        sync.RWMutex
	layoutIdx int
	faces     *faces
}

// New creates the module and attaches its widgets to session. Widgets are
// registered here, before the session receives events, so each starts with
// the aggregator's current value.
func New(session *status.Session, opts Options) (*Module, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	idx := 0
	if opts.Layout != "" {
		idx = layoutIndex(opts.Layout)
		if idx < 0 {
			return nil, fmt.Errorf("unknown layout %q", opts.Layout)
		}
	}

	m := &Module{
		BaseModule:   module.NewBaseModule("statusscreen"),
		showInactive: opts.ShowInactive,
		logger:       opts.Logger,
		layoutIdx:    idx,
	}
	m.widgets.setInvalidate(m.requestRedraw)
	m.widgets.register(session)
	return m, nil
}

// requestRedraw runs on the dispatcher goroutine, which may race Init.
func (m *Module) requestRedraw() {
	if fn := m.redraw.Load(); fn != nil {
		(*fn)()
	}
}

// Init loads the fonts.
func (m *Module) Init(ctx context.Context, res module.Resources) error {
	if err := m.BaseModule.Init(ctx, res); err != nil {
		return err
	}
	f, err := newFaces()
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.faces = f
	m.mu.Unlock()

	if invalidate := res.Invalidate; invalidate != nil {
		m.redraw.Store(&invalidate)
	}
	m.logger.Info("status screen ready", "layout", m.Layout().Name)
	return nil
}

// Layout returns the active layout.
func (m *Module) Layout() Layout {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return layouts[m.layoutIdx]
}

// NextLayout switches to the following layout, wrapping at the end.
func (m *Module) NextLayout() Layout {
	m.mu.Lock()
	m.layoutIdx = (m.layoutIdx + 1) % len(layouts)
	l := layouts[m.layoutIdx]
	m.mu.Unlock()
	m.logger.Info("layout changed", "layout", l.Name)
	m.requestRedraw()
	return l
}

func (m *Module) painter(bounds image.Rectangle) *painter {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.faces == nil {
		return nil
	}
	return &painter{
		img:          image.NewRGBA(bounds),
		layout:       layouts[m.layoutIdx],
		faces:        m.faces,
		showInactive: m.showInactive,
	}
}

// RenderStrip draws every region of the active layout.
func (m *Module) RenderStrip() image.Image {
	res := m.Resources()
	if !res.HasStrip() {
		return nil
	}
	p := m.painter(image.Rect(0, 0, res.StripRect.Dx(), res.StripRect.Dy()))
	if p == nil {
		return nil
	}
	fillRect(p.img, p.img.Bounds(), p.layout.Theme.Background)

	f := m.widgets.snapshot()
	for _, r := range p.layout.Regions {
		p.drawRegion(r, f)
	}
	return p.img
}

// keySize matches the Stream Deck Plus key image.
var keySize = image.Rect(0, 0, 120, 120)

// RenderKeys draws one modifier slot per owned key, in slot order.
func (m *Module) RenderKeys() map[module.KeyID]image.Image {
	keys := m.Resources().Keys
	if len(keys) == 0 {
		return nil
	}
	v := m.widgets.modifiers.get()
	out := make(map[module.KeyID]image.Image, len(keys))
	for i, k := range keys {
		p := m.painter(keySize)
		if p == nil {
			return nil
		}
		fillRect(p.img, keySize, p.layout.Theme.Panel)
		if i < len(v.Slots) && v.Mode != status.ModifiersDisabled {
			slot := v.Slots[i]
			if slot.Lit() {
				fillRect(p.img, keySize.Inset(4), p.layout.Theme.Background)
			}
			p.drawModifierSlot(keySize, slot, v.UseSymbols, p.faces.key)
		}
		out[k] = p.img
	}
	return out
}

// HandleKey cycles the layout when a key is released after a long press.
func (m *Module) HandleKey(id module.KeyID, ev module.KeyEvent) error {
	if ev.Pressed || ev.Duration < LongPress {
		return nil
	}
	m.NextLayout()
	return nil
}
