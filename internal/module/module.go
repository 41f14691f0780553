// Package module defines the interface for Stream Deck feature modules.
package module

import (
	"context"
	"image"
	"time"

	"github.com/phinze/prospector/internal/device"
)

// KeyID identifies a physical key on the Stream Deck.
type KeyID = device.KeyID

// DialID identifies a rotary dial on the Stream Deck Plus.
type DialID = device.DialID

const (
	Key1 = device.KEY_1
	Key2 = device.KEY_2
	Key3 = device.KEY_3
	Key4 = device.KEY_4
	Key5 = device.KEY_5
	Key6 = device.KEY_6
	Key7 = device.KEY_7
	Key8 = device.KEY_8
)

const (
	Dial1 = device.DIAL_1
	Dial2 = device.DIAL_2
	Dial3 = device.DIAL_3
	Dial4 = device.DIAL_4
)

// Module is a feature that owns a set of keys, dials and a strip region.
type Module interface {
	ID() string
	Init(ctx context.Context, res Resources) error
	Stop() error

	// RenderKeys returns images for the module's keys. Keys missing from
	// the map are left unchanged.
	RenderKeys() map[KeyID]image.Image

	// RenderStrip returns the module's strip region, or nil.
	RenderStrip() image.Image

	HandleKey(id KeyID, event KeyEvent) error
	HandleDial(id DialID, event DialEvent) error
}

// KeyEvent is a key press or release.
type KeyEvent struct {
	Pressed bool
	// Duration is how long the key was held; set on release.
	Duration time.Duration
}

// DialEventType distinguishes dial interactions.
type DialEventType int

const (
	DialRotate DialEventType = iota
	DialPress
	DialRelease
)

// DialEvent is a dial rotation or press.
type DialEvent struct {
	Type     DialEventType
	Delta    int8
	Duration time.Duration
}

// Resources defines the hardware resources allocated to a module.
type Resources struct {
	// Keys assigned to this module (may be empty).
	Keys []KeyID

	// StripRect is the region of the touch strip allocated to this module.
	// A zero rect means no strip region is allocated.
	StripRect image.Rectangle

	// Dials assigned to this module (may be empty).
	Dials []DialID

	// Invalidate asks the coordinator to re-render soon. Set by the
	// coordinator on registration; never nil inside Init.
	Invalidate func()
}

// HasKeys returns true if this module has any keys allocated.
func (r Resources) HasKeys() bool {
	return len(r.Keys) > 0
}

// HasStrip returns true if this module has a touch strip region allocated.
func (r Resources) HasStrip() bool {
	return !r.StripRect.Empty()
}

// OwnsKey returns true if the given key is allocated to this module.
func (r Resources) OwnsKey(key KeyID) bool {
	for _, k := range r.Keys {
		if k == key {
			return true
		}
	}
	return false
}

// BaseModule supplies no-op defaults for Module methods.
type BaseModule struct {
	id  string
	ctx context.Context
	res Resources
}

// NewBaseModule returns a BaseModule with the given id.
func NewBaseModule(id string) BaseModule {
	return BaseModule{id: id}
}

func (b *BaseModule) ID() string { return b.id }

// Init stores the context and resources.
func (b *BaseModule) Init(ctx context.Context, res Resources) error {
	b.ctx = ctx
	b.res = res
	if b.res.Invalidate == nil {
		b.res.Invalidate = func() {}
	}
	return nil
}

func (b *BaseModule) Stop() error { return nil }

// Context returns the context passed to Init.
func (b *BaseModule) Context() context.Context { return b.ctx }

// Resources returns the resources passed to Init.
func (b *BaseModule) Resources() Resources { return b.res }

// Invalidate requests a re-render. Safe to call before Init.
func (b *BaseModule) Invalidate() {
	if b.res.Invalidate != nil {
		b.res.Invalidate()
	}
}

func (b *BaseModule) RenderKeys() map[KeyID]image.Image { return nil }
func (b *BaseModule) RenderStrip() image.Image { return nil }
func (b *BaseModule) HandleKey(KeyID, KeyEvent) error { return nil }
func (b *BaseModule) HandleDial(DialID, DialEvent) error { return nil }
