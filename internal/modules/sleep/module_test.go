package sleep

import (
	"context"
	"testing"

	"github.com/phinze/prospector/internal/event"
	"github.com/phinze/prospector/internal/idle"
	"github.com/phinze/prospector/internal/module"
)

type fakeBacklight struct {
	levels []uint8
}

func (b *fakeBacklight) SetBrightness(p uint8) error {
	b.levels = append(b.levels, p)
	return nil
}

func (b *fakeBacklight) last() uint8 { return b.levels[len(b.levels)-1] }

var _ idle.Power = (*Module)(nil)
var _ module.OverlayProvider = (*Module)(nil)
var _ module.Module = (*Module)(nil)

func TestInitAppliesLevel(t *testing.T) {
	b := &fakeBacklight{}
	m := New(b, 70, nil, nil)
	if err := m.Init(context.Background(), module.Resources{}); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if b.last() != 70 {
		t.Fatalf("brightness = %d", b.last())
	}
}

func TestBlankingTogglesOverlay(t *testing.T) {
	invalidated := 0
	m := New(&fakeBacklight{}, 80, nil, nil)
	m.Init(context.Background(), module.Resources{Invalidate: func() { invalidated++ }})

	m.SetBlanking(true)
	m.SetBlanking(true)
	if !m.IsOverlayActive() || invalidated != 1 {
		t.Fatalf("active=%v invalidated=%d", m.IsOverlayActive(), invalidated)
	}
	m.SetBlanking(false)
	if m.IsOverlayActive() || invalidated != 2 {
		t.Fatalf("active=%v invalidated=%d", m.IsOverlayActive(), invalidated)
	}
}

func TestSetBrightnessRestoresLevel(t *testing.T) {
	b := &fakeBacklight{}
	m := New(b, 60, nil, nil)

	m.SetBrightness(0)
	if b.last() != 0 {
		t.Fatalf("sleep brightness = %d", b.last())
	}
	m.SetBrightness(80)
	if b.last() != 60 {
		t.Fatalf("wake brightness = %d, want dial level 60", b.last())
	}
}

func TestDialAdjustsLevel(t *testing.T) {
	b := &fakeBacklight{}
	m := New(b, 50, nil, nil)

	m.HandleDial(module.Dial1, module.DialEvent{Type: module.DialRotate, Delta: 2})
	if m.Level() != 60 || b.last() != 60 {
		t.Fatalf("level=%d brightness=%d", m.Level(), b.last())
	}
	m.HandleDial(module.Dial1, module.DialEvent{Type: module.DialRotate, Delta: -100})
	if m.Level() != minLevel {
		t.Fatalf("level=%d, want clamp to %d", m.Level(), minLevel)
	}

	m.SetBlanking(true)
	n := len(b.levels)
	m.HandleDial(module.Dial1, module.DialEvent{Type: module.DialRotate, Delta: 1})
	if len(b.levels) != n {
		t.Fatal("rotation while blanked lit the backlight")
	}
}

func TestOverlayKeyPostsActivity(t *testing.T) {
	var got []event.Event
	post := func(ev event.Event) bool { got = append(got, ev); return true }
	m := New(&fakeBacklight{}, 80, post, nil)

	m.HandleOverlayKey(module.Key3, module.KeyEvent{Pressed: true})
	m.HandleOverlayKey(module.Key3, module.KeyEvent{Pressed: false})

	if len(got) != 2 || got[0] != (event.KeyActivity{Pressed: true}) || got[1] != (event.KeyActivity{Pressed: false}) {
		t.Fatalf("posted %v", got)
	}
}
