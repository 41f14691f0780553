package event

import (
	"errors"
	"testing"

	"github.com/phinze/prospector/internal/hid"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		line string
		want Event
	}{
		{`{"type":"modifiers","mods":1}`, ModifiersChanged{Flags: hid.LCtrl}},
		{`{"type":"caps_word","active":true}`, CapsWordChanged{Active: true}},
		{`{"type":"battery","slot":1,"level":42}`, BatteryChanged{Slot: 1, Level: 42}},
		{`{"type":"connection","slot":0,"connected":true}`, ConnectionChanged{Slot: 0, Connected: true}},
		{`{"type":"endpoint","transport":"BLE"}`, EndpointChanged{Transport: TransportBLE}},
		{`{"type":"profile","index":2,"open":true}`, ProfileChanged{Index: 2, Open: true}},
		{`{"type":"wpm","wpm":87}`, WPMChanged{WPM: 87}},
		{`{"type":"layer","index":3}`, LayerChanged{Index: 3}},
		{`{"type":"key","pressed":true}`, KeyActivity{Pressed: true}},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := Decode([]byte(tt.line))
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if got != tt.want {
				t.Fatalf("Decode() = %#v, want %#v", got, tt.want)
			}
			if got.Kind() != tt.want.Kind() {
				t.Fatalf("Kind() = %s", got.Kind())
			}
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		unknown bool
	}{
		{name: "not json", line: `{nope`},
		{name: "unknown type", line: `{"type":"rgb"}`, unknown: true},
		{name: "battery without level", line: `{"type":"battery","slot":0}`},
		{name: "bad transport", line: `{"type":"endpoint","transport":"serial"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.line))
			if err == nil {
				t.Fatal("expected error")
			}
			if errors.Is(err, ErrUnknownType) != tt.unknown {
				t.Fatalf("errors.Is(ErrUnknownType) = %v for %v", !tt.unknown, err)
			}
		})
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	events := []Event{
		ModifiersChanged{Flags: hid.RShift | hid.LGUI},
		ProfileChanged{Index: 1, Connected: true},
		EndpointChanged{Transport: TransportBLE},
		BatteryChanged{Slot: 0, Level: 0},
	}
	for _, ev := range events {
		data, err := Encode(ev)
		if err != nil {
			t.Fatalf("Encode(%#v) error = %v", ev, err)
		}
		got, err := Decode(data)
		if err != nil {
			t.Fatalf("Decode(%s) error = %v", data, err)
		}
		if got != ev {
			t.Errorf("round trip %s = %#v, want %#v", data, got, ev)
		}
	}
}
