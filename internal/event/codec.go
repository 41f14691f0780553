package event

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/phinze/prospector/internal/hid"
)

var ErrUnknownType = errors.New("unknown event type")

// wire is the JSON envelope. Fields not used by a type are omitted.
type wire struct {
	Type      Kind    `json:"type"`
	Mods      *uint8  `json:"mods,omitempty"`
	Active    *bool   `json:"active,omitempty"`
	Slot      *int    `json:"slot,omitempty"`
	Level     *int    `json:"level,omitempty"`
	Connected *bool   `json:"connected,omitempty"`
	Open      *bool   `json:"open,omitempty"`
	Transport *string `json:"transport,omitempty"`
	Index     *int    `json:"index,omitempty"`
	WPM       *int    `json:"wpm,omitempty"`
	Pressed   *bool   `json:"pressed,omitempty"`
}

func ptr[T any](v T) *T { return &v }

func deref[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}

// Decode parses one JSON event line.
func Decode(data []byte) (Event, error) {
	var w wire
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}

	switch w.Type {
	case KindModifiers:
		return ModifiersChanged{Flags: hid.ModFlags(deref(w.Mods))}, nil
	case KindCapsWord:
		return CapsWordChanged{Active: deref(w.Active)}, nil
	case KindBattery:
		if w.Level == nil {
			return nil, fmt.Errorf("decode %s event: missing level", w.Type)
		}
		return BatteryChanged{Slot: deref(w.Slot), Level: *w.Level}, nil
	case KindConnection:
		return ConnectionChanged{Slot: deref(w.Slot), Connected: deref(w.Connected)}, nil
	case KindEndpoint:
		tr, err := ParseTransport(deref(w.Transport))
		if err != nil {
			return nil, fmt.Errorf("decode %s event: %w", w.Type, err)
		}
		return EndpointChanged{Transport: tr}, nil
	case KindProfile:
		return ProfileChanged{
			Index:     deref(w.Index),
			Connected: deref(w.Connected),
			Open:      deref(w.Open),
		}, nil
	case KindWPM:
		return WPMChanged{WPM: deref(w.WPM)}, nil
	case KindLayer:
		return LayerChanged{Index: deref(w.Index)}, nil
	case KindKey:
		return KeyActivity{Pressed: deref(w.Pressed)}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, w.Type)
	}
}

// Encode renders an event in its wire form.
func Encode(ev Event) ([]byte, error) {
	w := wire{Type: ev.Kind()}
	switch e := ev.(type) {
	case ModifiersChanged:
		w.Mods = ptr(uint8(e.Flags))
	case CapsWordChanged:
		w.Active = ptr(e.Active)
	case BatteryChanged:
		w.Slot, w.Level = ptr(e.Slot), ptr(e.Level)
	case ConnectionChanged:
		w.Slot, w.Connected = ptr(e.Slot), ptr(e.Connected)
	case EndpointChanged:
		w.Transport = ptr(e.Transport.String())
	case ProfileChanged:
		w.Index, w.Connected, w.Open = ptr(e.Index), ptr(e.Connected), ptr(e.Open)
	case WPMChanged:
		w.WPM = ptr(e.WPM)
	case LayerChanged:
		w.Index = ptr(e.Index)
	case KeyActivity:
		w.Pressed = ptr(e.Pressed)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownType, ev)
	}
	return json.Marshal(w)
}
