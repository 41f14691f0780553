package status

import (
	"log/slog"
	"strings"
	"testing"

	"github.com/phinze/prospector/internal/hid"
	"github.com/phinze/prospector/internal/modorder"
	"github.com/phinze/prospector/internal/testutil"
)

type recorder[T any] struct {
	got []T
}

func (r *recorder[T]) Update(v T) { r.got = append(r.got, v) }

func (r *recorder[T]) last() T { return r.got[len(r.got)-1] }

func litPositions(v ModifierView) []int {
	var out []int
	for _, s := range v.Slots {
		if s.Lit() {
			out = append(out, s.Position)
		}
	}
	return out
}

func TestRegisterPushesCurrentView(t *testing.T) {
	a := NewModifierAggregator(nil, CapsWordOverlay, nil)
	a.OnModifierFlagsChanged(hid.LShift)

	r := &recorder[ModifierView]{}
	a.Register(r)

	if len(r.got) != 1 {
		t.Fatalf("got %d updates on register, want 1", len(r.got))
	}
	if !r.last().Slots[3].Lit() {
		t.Fatal("shift slot not lit on initial push")
	}
}

func TestBroadcastOnlyOnChange(t *testing.T) {
	a := NewModifierAggregator(nil, CapsWordOverlay, nil)
	r := &recorder[ModifierView]{}
	a.Register(r)

	a.OnModifierFlagsChanged(hid.LCtrl)
	a.OnModifierFlagsChanged(hid.LCtrl)
	a.OnModifierFlagsChanged(hid.RCtrl)

	// register + one real change; same flags and left/right swap are no-ops
	if len(r.got) != 2 {
		t.Fatalf("got %d updates, want 2", len(r.got))
	}

	a.RefreshAllSinks()
	if len(r.got) != 3 {
		t.Fatalf("RefreshAllSinks did not broadcast")
	}
}

func TestRefreshAllSinksIsIdempotent(t *testing.T) {
	a := NewModifierAggregator(nil, CapsWordOverlay, nil)
	a.OnModifierFlagsChanged(hid.LGUI | hid.RAlt)
	a.OnCapsWordChanged(true)

	r := &recorder[ModifierView]{}
	a.Register(r)
	a.RefreshAllSinks()
	a.RefreshAllSinks()

	if len(r.got) != 3 {
		t.Fatalf("got %d updates, want 3", len(r.got))
	}
	first, second := r.got[1], r.got[2]
	if first != second {
		t.Fatalf("refreshes differ:\n%+v\n%+v", first, second)
	}
	if first.Slots[3].State != SlotLocked {
		t.Fatalf("shift slot = %v, want locked", first.Slots[3].State)
	}
}

func TestAllSinksReceiveSameView(t *testing.T) {
	a := NewModifierAggregator(nil, CapsWordOverlay, nil)
	r1 := &recorder[ModifierView]{}
	r2 := &recorder[ModifierView]{}
	a.Register(r1)
	a.Register(r2)

	a.OnModifierFlagsChanged(hid.LAlt | hid.RGUI)

	if r1.last() != r2.last() {
		t.Fatalf("sinks diverged: %+v vs %+v", r1.last(), r2.last())
	}
	if a.Sinks() != 2 {
		t.Fatalf("Sinks() = %d", a.Sinks())
	}
}

func TestCapsWordPrecedence(t *testing.T) {
	a := NewModifierAggregator(nil, CapsWordOverlay, nil)
	r := &recorder[ModifierView]{}
	a.Register(r)

	a.OnCapsWordChanged(true)
	if got := a.ShiftState(); got != ShiftCapsLocked {
		t.Fatalf("ShiftState() = %v", got)
	}
	shift := r.last().Slots[3]
	if shift.State != SlotLocked || shift.Glyph != modorder.SymbolShiftLocked {
		t.Fatalf("shift slot = %+v", shift)
	}

	// shift pressed and released while caps word stays active
	a.OnModifierFlagsChanged(hid.LShift)
	if r.last().Slots[3].State != SlotLocked {
		t.Fatal("live shift overrode caps word")
	}
	a.OnModifierFlagsChanged(0)
	if r.last().Slots[3].State != SlotLocked {
		t.Fatal("shift release cleared caps word indication")
	}

	a.OnCapsWordChanged(false)
	if a.ShiftState() != ShiftLiveUp || r.last().Slots[3].Lit() {
		t.Fatalf("caps word off: shift %v, slot %+v", a.ShiftState(), r.last().Slots[3])
	}
}

func TestCapsWordAbsentIgnoresEvents(t *testing.T) {
	logger, buf := testutil.NewBufferLogger(slog.LevelDebug)
	a := NewModifierAggregator(nil, CapsWordAbsent, logger)
	r := &recorder[ModifierView]{}
	a.Register(r)

	a.OnCapsWordChanged(true)

	if len(r.got) != 1 {
		t.Fatalf("caps word broadcast in absent mode")
	}
	if a.Snapshot().CapsWord {
		t.Fatal("caps word recorded in absent mode")
	}
	if !strings.Contains(buf.String(), "caps word event ignored") {
		t.Fatalf("missing debug log: %q", buf.String())
	}

	a.OnModifierFlagsChanged(hid.RShift)
	if a.ShiftState() != ShiftLiveDown {
		t.Fatalf("ShiftState() = %v", a.ShiftState())
	}
}

func TestCapsWordOnlyHidesLiveModifiers(t *testing.T) {
	a := NewModifierAggregator(nil, CapsWordOnly, nil)
	r := &recorder[ModifierView]{}
	a.Register(r)

	a.OnModifierFlagsChanged(hid.LCtrl | hid.LShift)
	for _, s := range r.last().Slots {
		if s.Lit() {
			t.Fatalf("slot %d lit from live modifiers", s.Position)
		}
		if s.Visible != (s.Type == modorder.Shift) {
			t.Fatalf("slot %d visible=%v", s.Position, s.Visible)
		}
	}

	a.OnCapsWordChanged(true)
	if r.last().Slots[3].State != SlotLocked {
		t.Fatal("caps word not indicated")
	}
}

func TestCapsWordModeFor(t *testing.T) {
	tests := []struct {
		show, caps bool
		want       CapsWordMode
	}{
		{true, true, CapsWordOverlay},
		{true, false, CapsWordAbsent},
		{false, true, CapsWordOnly},
		{false, false, ModifiersDisabled},
	}
	for _, tt := range tests {
		if got := CapsWordModeFor(tt.show, tt.caps); got != tt.want {
			t.Errorf("CapsWordModeFor(%v, %v) = %v, want %v", tt.show, tt.caps, got, tt.want)
		}
	}
}

func TestCustomOrderMapsFlagsToPositions(t *testing.T) {
	reg := modorder.New("SCGA", modorder.Mac, nil)
	a := NewModifierAggregator(reg, CapsWordOverlay, nil)
	r := &recorder[ModifierView]{}
	a.Register(r)

	a.OnModifierFlagsChanged(hid.LCtrl)

	v := r.last()
	if got := litPositions(v); len(got) != 1 || got[0] != 1 {
		t.Fatalf("lit positions = %v, want [1]", got)
	}
	if v.Slots[1].Type != modorder.Ctrl || v.Slots[1].Glyph != modorder.SymbolControl {
		t.Fatalf("slot 1 = %+v", v.Slots[1])
	}
	if !v.UseSymbols {
		t.Fatal("mac convention should use symbols")
	}
}

func TestWindowsIconOnGUISlot(t *testing.T) {
	reg := modorder.New("", modorder.Windows, nil)
	v := NewModifierAggregator(reg, CapsWordOverlay, nil).View()

	for _, s := range v.Slots {
		if s.WindowsIcon != (s.Type == modorder.GUI) {
			t.Fatalf("slot %+v WindowsIcon mismatch", s)
		}
	}
	if v.Slots[0].Label != "WIN" {
		t.Fatalf("GUI label = %q", v.Slots[0].Label)
	}
}
