// Package modorder resolves the display order and presentation of the four
// keyboard modifiers (GUI, Alt, Ctrl, Shift).
//
// A Registry is built once at startup from a four-character order string
// such as "GACS" and an OS convention, and is read-only afterwards. Display
// code iterates positions 0..3 and asks the registry which modifier sits
// there and how to draw it.
package modorder

import (
	"errors"
	"fmt"
	"strings"
)

// Type identifies one of the four logical modifiers.
type Type int

const (
	GUI Type = iota
	Alt
	Ctrl
	Shift
)

// Count is the number of modifier types.
const Count = 4

// DefaultOrder is used whenever the configured order string is invalid.
const DefaultOrder = "GACS"

// String returns the modifier name.
func (t Type) String() string {
	switch t {
	case GUI:
		return "GUI"
	case Alt:
		return "ALT"
	case Ctrl:
		return "CTRL"
	case Shift:
		return "SHIFT"
	default:
		return fmt.Sprintf("Type(%d)", int(t))
	}
}

// Valid reports whether t is one of the four modifier types.
func (t Type) Valid() bool {
	return t >= GUI && t < Count
}

var (
	ErrOrderLength    = errors.New("modifier order must be exactly 4 characters")
	ErrOrderChar      = errors.New("modifier order contains an invalid character")
	ErrOrderDuplicate = errors.New("modifier order contains a duplicate modifier")
)

var defaultOrder = [Count]Type{GUI, Alt, Ctrl, Shift}

func charToType(ch byte) (Type, bool) {
	switch ch {
	case 'G', 'g':
		return GUI, true
	case 'A', 'a':
		return Alt, true
	case 'C', 'c':
		return Ctrl, true
	case 'S', 's':
		return Shift, true
	default:
		return 0, false
	}
}

// ParseOrder parses a four-character order string over {G,A,C,S}
// (case-insensitive), each appearing exactly once.
func ParseOrder(s string) ([Count]Type, error) {
	var order [Count]Type
	if len(s) != Count {
		return order, fmt.Errorf("%w: got %d", ErrOrderLength, len(s))
	}

	var seen [Count]bool
	for i := 0; i < Count; i++ {
		t, ok := charToType(s[i])
		if !ok {
			return order, fmt.Errorf("%w: %q at position %d", ErrOrderChar, s[i], i)
		}
		if seen[t] {
			return order, fmt.Errorf("%w: %s", ErrOrderDuplicate, t)
		}
		seen[t] = true
		order[i] = t
	}
	return order, nil
}

// FormatOrder renders an order back to its string form.
func FormatOrder(order [Count]Type) string {
	var b strings.Builder
	for _, t := range order {
		b.WriteByte(t.String()[0])
	}
	return b.String()
}
