// Package device defines the abstraction layer for Stream Deck hardware.
package device

import (
	"image"
	"time"
)

// Device is the interface that abstracts Stream Deck hardware.
// Both the real hardware adapter and the in-memory Fake implement it.
type Device interface {
	// Lifecycle
	Close() error

	// Device info
	GetModelName() string
	GetTouchStripSupported() bool
	GetKeyImageRectangle() (image.Rectangle, error)
	GetTouchStripImageRectangle() (image.Rectangle, error)

	// Display
	SetBrightness(perc byte) error
	SetKeyImage(key KeyID, img image.Image) error
	SetTouchStripImage(img image.Image) error
	ClearKey(key KeyID) error

	// Iteration
	ForEachKey(cb func(KeyID) error) error

	// Event handlers
	AddKeyHandler(key KeyID, fn KeyHandler) error
	AddDialRotateHandler(dial DialID, fn DialRotateHandler) error
	AddDialSwitchHandler(dial DialID, fn DialSwitchHandler) error

	// Event loop
	Listen(errCh chan error) error
}

// KeyID identifies a physical key on the Stream Deck.
type KeyID byte

// Key IDs for Stream Deck Plus (8 keys)
const (
	KEY_1 KeyID = iota + 1
	KEY_2
	KEY_3
	KEY_4
	KEY_5
	KEY_6
	KEY_7
	KEY_8
)

// DialID identifies a rotary dial on the Stream Deck Plus.
type DialID byte

// Dial IDs for Stream Deck Plus (4 dials)
const (
	DIAL_1 DialID = iota + 1
	DIAL_2
	DIAL_3
	DIAL_4
)

// Key represents a pressed key.
type Key interface {
	GetID() KeyID
	WaitForRelease() time.Duration
}

// Dial represents a pressed or rotated dial.
type Dial interface {
	GetID() DialID
	WaitForRelease() time.Duration
}

// Handler types use the local Device interface.
type (
	// KeyHandler is called when a key is pressed.
	KeyHandler func(d Device, k Key) error

	// DialSwitchHandler is called when a dial is pressed.
	DialSwitchHandler func(d Device, di Dial) error

	// DialRotateHandler is called when a dial is rotated.
	DialRotateHandler func(d Device, di Dial, delta int8) error
)
