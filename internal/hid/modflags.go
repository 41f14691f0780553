// Package hid describes the HID keyboard modifier byte.
package hid

import (
	"strings"

	"github.com/phinze/prospector/internal/modorder"
)

// ModFlags is the first byte of a HID keyboard report: one bit per
// physical modifier key.
type ModFlags uint8

const (
	LCtrl  ModFlags = 0x01
	LShift ModFlags = 0x02
	LAlt   ModFlags = 0x04
	LGUI   ModFlags = 0x08
	RCtrl  ModFlags = 0x10
	RShift ModFlags = 0x20
	RAlt   ModFlags = 0x40
	RGUI   ModFlags = 0x80
)

var masks = [modorder.Count]ModFlags{
	modorder.GUI:   LGUI | RGUI,
	modorder.Alt:   LAlt | RAlt,
	modorder.Ctrl:  LCtrl | RCtrl,
	modorder.Shift: LShift | RShift,
}

// Mask returns the left|right bit pair for a modifier type.
func Mask(t modorder.Type) ModFlags {
	if !t.Valid() {
		return 0
	}
	return masks[t]
}

// Active reports whether either side of modifier t is held.
func (f ModFlags) Active(t modorder.Type) bool {
	return f&Mask(t) != 0
}

// ActiveSet returns the held state of all four modifiers, indexed by type.
func (f ModFlags) ActiveSet() [modorder.Count]bool {
	var out [modorder.Count]bool
	for t := range modorder.Count {
		out[t] = f.Active(modorder.Type(t))
	}
	return out
}

var names = []struct {
	flag ModFlags
	name string
}{
	{LCtrl, "LCTRL"}, {LShift, "LSHIFT"}, {LAlt, "LALT"}, {LGUI, "LGUI"},
	{RCtrl, "RCTRL"}, {RShift, "RSHIFT"}, {RAlt, "RALT"}, {RGUI, "RGUI"},
}

func (f ModFlags) String() string {
	if f == 0 {
		return "none"
	}
	var parts []string
	for _, n := range names {
		if f&n.flag != 0 {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}
