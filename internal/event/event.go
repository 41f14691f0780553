// Package event defines the keyboard state notifications consumed by the
// status display, and their newline-delimited JSON wire form.
package event

import (
	"fmt"
	"strings"

	"github.com/phinze/prospector/internal/hid"
)

// Kind identifies an event type for subscription.
type Kind string

const (
	KindModifiers  Kind = "modifiers"
	KindCapsWord   Kind = "caps_word"
	KindBattery    Kind = "battery"
	KindConnection Kind = "connection"
	KindEndpoint   Kind = "endpoint"
	KindProfile    Kind = "profile"
	KindWPM        Kind = "wpm"
	KindLayer      Kind = "layer"
	KindKey        Kind = "key"
)

// Event is a typed keyboard state notification.
type Event interface {
	Kind() Kind
}

// Transport is the active output channel class.
type Transport int

const (
	TransportUSB Transport = iota
	TransportBLE
)

func (t Transport) String() string {
	switch t {
	case TransportBLE:
		return "ble"
	default:
		return "usb"
	}
}

// ParseTransport accepts "usb" and "ble" case-insensitively.
func ParseTransport(s string) (Transport, error) {
	switch strings.ToLower(s) {
	case "usb":
		return TransportUSB, nil
	case "ble":
		return TransportBLE, nil
	default:
		return TransportUSB, fmt.Errorf("unknown transport %q", s)
	}
}

// ModifiersChanged carries the complete current modifier flag set.
type ModifiersChanged struct {
	Flags hid.ModFlags
}

// CapsWordChanged reports caps-word activation.
type CapsWordChanged struct {
	Active bool
}

// BatteryChanged reports a peripheral battery level in percent.
type BatteryChanged struct {
	Slot  int
	Level int
}

// ConnectionChanged reports a split peripheral link change.
type ConnectionChanged struct {
	Slot      int
	Connected bool
}

// EndpointChanged reports the selected output transport.
type EndpointChanged struct {
	Transport Transport
}

// ProfileChanged reports the active BLE profile. Connected and Open
// describe that profile's link: open means no host is paired yet.
type ProfileChanged struct {
	Index     int
	Connected bool
	Open      bool
}

// WPMChanged carries a words-per-minute sample.
type WPMChanged struct {
	WPM int
}

// LayerChanged carries the highest active layer index.
type LayerChanged struct {
	Index int
}

// KeyActivity reports any key press or release on the keyboard.
type KeyActivity struct {
	Pressed bool
}

func (ModifiersChanged) Kind() Kind  { return KindModifiers }
func (CapsWordChanged) Kind() Kind   { return KindCapsWord }
func (BatteryChanged) Kind() Kind    { return KindBattery }
func (ConnectionChanged) Kind() Kind { return KindConnection }
func (EndpointChanged) Kind() Kind   { return KindEndpoint }
func (ProfileChanged) Kind() Kind    { return KindProfile }
func (WPMChanged) Kind() Kind        { return KindWPM }
func (LayerChanged) Kind() Kind      { return KindLayer }
func (KeyActivity) Kind() Kind       { return KindKey }
