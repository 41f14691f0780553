package modorder

import (
	"fmt"
	"log/slog"
	"strings"
)

// Convention selects the host OS presentation of modifiers.
type Convention int

const (
	Generic Convention = iota
	Mac
	Windows
)

// String returns the config spelling of the convention.
func (c Convention) String() string {
	switch c {
	case Mac:
		return "mac"
	case Windows:
		return "windows"
	default:
		return "generic"
	}
}

// ParseConvention accepts "generic", "mac"/"macos" and "windows"/"win".
// An empty string means Generic.
func ParseConvention(s string) (Convention, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "generic":
		return Generic, nil
	case "mac", "macos":
		return Mac, nil
	case "windows", "win":
		return Windows, nil
	default:
		return Generic, fmt.Errorf("unknown os convention %q", s)
	}
}

// Symbol-font glyphs per modifier type.
const (
	SymbolCommand     = "⌘"
	SymbolOption      = "⌥"
	SymbolControl     = "⌃"
	SymbolShift       = "⇧"
	SymbolShiftLocked = "⇪"
)

var symbols = [Count]string{SymbolCommand, SymbolOption, SymbolControl, SymbolShift}

var texts = map[Convention][Count]string{
	Generic: {"GUI", "ALT", "CTRL", "SHFT"},
	Mac:     {"CMD", "OPT", "CTRL", "SHFT"},
	Windows: {"WIN", "ALT", "CTRL", "SHFT"},
}

// Registry serves the resolved modifier order and presentation hints.
// It is immutable after New and safe for concurrent reads.
type Registry struct {
	order      [Count]Type
	convention Convention
	logger     *slog.Logger
}

// New resolves the modifier order from orderStr. An empty or invalid string
// falls back to DefaultOrder with a warning; New never fails.
func New(orderStr string, conv Convention, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Registry{
		order:      defaultOrder,
		convention: conv,
		logger:     logger,
	}

	order, err := ParseOrder(orderStr)
	if err != nil {
		logger.Warn("invalid modifier order, using default",
			"order", orderStr, "default", DefaultOrder, "error", err)
		return r
	}
	r.order = order
	return r
}

// Default returns a registry with the default order and generic convention.
func Default() *Registry {
	return &Registry{order: defaultOrder, logger: slog.Default()}
}

// Get returns the modifier shown at display position pos. Out-of-range
// positions return GUI.
func (r *Registry) Get(pos int) Type {
	if pos < 0 || pos >= Count {
		r.logger.Debug("modifier position out of range", "position", pos)
		return GUI
	}
	return r.order[pos]
}

// Position returns the display position of t, or -1 for an invalid type.
func (r *Registry) Position(t Type) int {
	for i, o := range r.order {
		if o == t {
			return i
		}
	}
	return -1
}

// Symbol returns the symbol-font glyph for the modifier at pos.
func (r *Registry) Symbol(pos int) string {
	return symbols[r.Get(pos)]
}

// Text returns the short text label for the modifier at pos under the
// configured OS convention.
func (r *Registry) Text(pos int) string {
	return texts[r.convention][r.Get(pos)]
}

// UsesSymbols reports whether modifiers render as glyphs rather than text.
func (r *Registry) UsesSymbols() bool {
	return r.convention == Mac
}

// IsWindows reports whether GUI renders as the four-squares icon.
func (r *Registry) IsWindows() bool {
	return r.convention == Windows
}

// Convention returns the configured OS convention.
func (r *Registry) Convention() Convention {
	return r.convention
}

// Order returns a copy of the resolved order.
func (r *Registry) Order() [Count]Type {
	return r.order
}

func (r *Registry) String() string {
	return FormatOrder(r.order) + "/" + r.convention.String()
}
