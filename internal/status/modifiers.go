package status

import (
	"log/slog"

	"github.com/phinze/prospector/internal/hid"
	"github.com/phinze/prospector/internal/modorder"
)

// SlotState is the visual state of one modifier slot.
type SlotState int

const (
	SlotInactive SlotState = iota
	SlotActive
	// SlotLocked marks the shift slot while caps word is active.
	SlotLocked
)

func (s SlotState) String() string {
	switch s {
	case SlotActive:
		return "active"
	case SlotLocked:
		return "locked"
	default:
		return "inactive"
	}
}

// ShiftState is the compound state of the shift slot.
type ShiftState int

const (
	ShiftLiveUp ShiftState = iota
	ShiftLiveDown
	ShiftCapsLocked
)

func (s ShiftState) String() string {
	switch s {
	case ShiftLiveDown:
		return "live-down"
	case ShiftCapsLocked:
		return "caps-locked"
	default:
		return "live-up"
	}
}

// CapsWordMode selects how the modifier panel treats caps word.
type CapsWordMode int

const (
	// CapsWordOverlay shows live modifiers; active caps word locks the shift slot.
	CapsWordOverlay CapsWordMode = iota
	// CapsWordAbsent shows live modifiers; the keyboard has no caps word and
	// caps-word events are ignored.
	CapsWordAbsent
	// CapsWordOnly hides live modifiers; the shift slot indicates caps word only.
	CapsWordOnly
	// ModifiersDisabled shows nothing.
	ModifiersDisabled
)

// CapsWordModeFor picks the mode from the two feature toggles.
func CapsWordModeFor(showModifiers, capsWord bool) CapsWordMode {
	switch {
	case showModifiers && capsWord:
		return CapsWordOverlay
	case showModifiers:
		return CapsWordAbsent
	case capsWord:
		return CapsWordOnly
	default:
		return ModifiersDisabled
	}
}

func (m CapsWordMode) String() string {
	switch m {
	case CapsWordAbsent:
		return "caps-word-absent"
	case CapsWordOnly:
		return "caps-word-only"
	case ModifiersDisabled:
		return "disabled"
	default:
		return "caps-word-overlay"
	}
}

// ModifierSnapshot is the live modifier state, indexed by modorder.Type.
type ModifierSnapshot struct {
	Active   [modorder.Count]bool
	CapsWord bool
}

// ModifierSlot is the render instruction for one display position.
type ModifierSlot struct {
	Position    int
	Type        modorder.Type
	Label       string
	Glyph       string
	State       SlotState
	Visible     bool
	WindowsIcon bool
}

// Lit reports whether the slot should be drawn highlighted.
func (s ModifierSlot) Lit() bool {
	return s.State != SlotInactive
}

// ModifierView is what a modifier sink renders.
type ModifierView struct {
	Slots      [modorder.Count]ModifierSlot
	UseSymbols bool
	Mode       CapsWordMode
}

// capsWordPolicy is the per-mode strategy. Modes without caps word never
// read Snapshot.CapsWord.
type capsWordPolicy interface {
	acceptsCapsWord() bool
	visible(t modorder.Type) bool
	slotState(t modorder.Type, snap ModifierSnapshot) SlotState
}

func liveState(active bool) SlotState {
	if active {
		return SlotActive
	}
	return SlotInactive
}

type overlayPolicy struct{}

func (overlayPolicy) acceptsCapsWord() bool { return true }
func (overlayPolicy) visible(modorder.Type) bool { return true }
func (overlayPolicy) slotState(t modorder.Type, s ModifierSnapshot) SlotState {
	if t == modorder.Shift && s.CapsWord {
		return SlotLocked
	}
	return liveState(s.Active[t])
}

type absentPolicy struct{}

func (absentPolicy) acceptsCapsWord() bool { return false }
func (absentPolicy) visible(modorder.Type) bool { return true }
func (absentPolicy) slotState(t modorder.Type, s ModifierSnapshot) SlotState {
	return liveState(s.Active[t])
}

type capsOnlyPolicy struct{}

func (capsOnlyPolicy) acceptsCapsWord() bool { return true }
func (capsOnlyPolicy) visible(t modorder.Type) bool { return t == modorder.Shift }
func (capsOnlyPolicy) slotState(t modorder.Type, s ModifierSnapshot) SlotState {
	if t == modorder.Shift && s.CapsWord {
		return SlotLocked
	}
	return SlotInactive
}

type disabledPolicy struct{}

func (disabledPolicy) acceptsCapsWord() bool { return false }
func (disabledPolicy) visible(modorder.Type) bool { return false }
func (disabledPolicy) slotState(modorder.Type, ModifierSnapshot) SlotState {
	return SlotInactive
}

func policyFor(mode CapsWordMode) capsWordPolicy {
	switch mode {
	case CapsWordAbsent:
		return absentPolicy{}
	case CapsWordOnly:
		return capsOnlyPolicy{}
	case ModifiersDisabled:
		return disabledPolicy{}
	default:
		return overlayPolicy{}
	}
}

// ModifierAggregator holds the live modifier and caps-word state and
// broadcasts a ModifierView to every sink when it changes.
type ModifierAggregator struct {
	registry *modorder.Registry
	mode     CapsWordMode
	policy   capsWordPolicy
	state    ModifierSnapshot
	sinks    Broadcaster[ModifierView]
	logger   *slog.Logger
}

// NewModifierAggregator creates an aggregator. A nil registry uses the
// default order.
func NewModifierAggregator(registry *modorder.Registry, mode CapsWordMode, logger *slog.Logger) *ModifierAggregator {
	if registry == nil {
		registry = modorder.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ModifierAggregator{
		registry: registry,
		mode:     mode,
		policy:   policyFor(mode),
		logger:   logger,
	}
}

// Register adds a sink and immediately renders the current state to it.
func (a *ModifierAggregator) Register(s Sink[ModifierView]) {
	if s == nil {
		return
	}
	a.sinks.Register(s)
	s.Update(a.View())
}

// OnModifierFlagsChanged replaces all four live modifier flags at once.
func (a *ModifierAggregator) OnModifierFlagsChanged(flags hid.ModFlags) {
	next := a.state
	next.Active = flags.ActiveSet()
	a.apply(next)
}

// OnCapsWordChanged updates caps word. It is ignored when the mode has no
// caps word.
func (a *ModifierAggregator) OnCapsWordChanged(active bool) {
	if !a.policy.acceptsCapsWord() {
		a.logger.Debug("caps word event ignored", "mode", a.mode)
		return
	}
	next := a.state
	next.CapsWord = active
	a.apply(next)
}

func (a *ModifierAggregator) apply(next ModifierSnapshot) {
	if next == a.state {
		return
	}
	a.state = next
	a.RefreshAllSinks()
}

// RefreshAllSinks re-renders the current state to every sink.
func (a *ModifierAggregator) RefreshAllSinks() {
	a.sinks.Broadcast(a.View())
}

// Snapshot returns the live state.
func (a *ModifierAggregator) Snapshot() ModifierSnapshot {
	return a.state
}

// ShiftState returns the shift slot's state machine position.
func (a *ModifierAggregator) ShiftState() ShiftState {
	if a.policy.acceptsCapsWord() && a.state.CapsWord {
		return ShiftCapsLocked
	}
	if a.state.Active[modorder.Shift] {
		return ShiftLiveDown
	}
	return ShiftLiveUp
}

// Mode returns the caps-word mode.
func (a *ModifierAggregator) Mode() CapsWordMode {
	return a.mode
}

// Sinks returns the number of registered sinks.
func (a *ModifierAggregator) Sinks() int {
	return a.sinks.Len()
}

// View resolves the current state against the registry into per-position
// render instructions.
func (a *ModifierAggregator) View() ModifierView {
	v := ModifierView{
		UseSymbols: a.registry.UsesSymbols(),
		Mode:       a.mode,
	}
	for pos := range modorder.Count {
		t := a.registry.Get(pos)
		slot := ModifierSlot{
			Position:    pos,
			Type:        t,
			Label:       a.registry.Text(pos),
			Glyph:       a.registry.Symbol(pos),
			State:       a.policy.slotState(t, a.state),
			Visible:     a.policy.visible(t),
			WindowsIcon: a.registry.IsWindows() && t == modorder.GUI,
		}
		if slot.State == SlotLocked {
			slot.Glyph = modorder.SymbolShiftLocked
		}
		v.Slots[pos] = slot
	}
	return v
}
