package status

import (
	"testing"
	"time"

	"github.com/phinze/prospector/internal/event"
	"github.com/phinze/prospector/internal/sched"
)

func TestBatterySlotsIndependent(t *testing.T) {
	a := NewBatteryAggregator(3, nil)
	r := &recorder[[]PeripheralLink]{}
	a.Register(r)

	a.OnBatteryLevelChanged(1, 55)
	a.OnConnectionChanged(2, true)

	got := r.last()
	want := []PeripheralLink{{}, {Level: 55}, {Connected: true}}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("slot %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestBatteryIgnoresUnknownSlot(t *testing.T) {
	a := NewBatteryAggregator(2, nil)
	a.OnBatteryLevelChanged(0, 70)
	a.OnConnectionChanged(1, true)
	before := a.Links()

	r := &recorder[[]PeripheralLink]{}
	a.Register(r)

	a.OnBatteryLevelChanged(99, 50)
	a.OnBatteryLevelChanged(2, 50)
	a.OnBatteryLevelChanged(-1, 50)
	a.OnConnectionChanged(99, true)

	if len(r.got) != 1 {
		t.Fatalf("out-of-range slot caused %d broadcasts", len(r.got)-1)
	}
	after := a.Links()
	if len(after) != 2 {
		t.Fatalf("tracked %d slots, want 2", len(after))
	}
	for i := range before {
		if after[i] != before[i] {
			t.Fatalf("slot %d = %+v, want %+v", i, after[i], before[i])
		}
	}
}

func TestBatteryClampsLevel(t *testing.T) {
	a := NewBatteryAggregator(2, nil)
	a.OnBatteryLevelChanged(0, 150)
	a.OnBatteryLevelChanged(1, -5)

	links := a.Links()
	if links[0].Level != 100 || links[1].Level != 0 {
		t.Fatalf("links = %+v", links)
	}
}

func TestBatteryLinksIsCopy(t *testing.T) {
	a := NewBatteryAggregator(1, nil)
	links := a.Links()
	links[0].Level = 42
	if a.Links()[0].Level != 0 {
		t.Fatal("Links returned internal storage")
	}
}

func TestBatteryCountClamped(t *testing.T) {
	tests := []struct{ in, want int }{{0, 1}, {2, 2}, {9, MaxPeripherals}}
	for _, tt := range tests {
		if got := NewBatteryAggregator(tt.in, nil).Count(); got != tt.want {
			t.Errorf("count %d -> %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestOutputProfileTimeout(t *testing.T) {
	m := sched.NewManual()
	a := NewOutputAggregator(m, 3*time.Second, nil)
	r := &recorder[OutputState]{}
	a.Register(r)

	a.OnProfileChanged(1, true, false)
	if !a.State().Expanded || !a.TimerArmed() {
		t.Fatalf("state after profile change = %+v", a.State())
	}

	m.Advance(2 * time.Second)
	// a second change restarts the interval
	a.OnProfileChanged(2, true, false)
	m.Advance(2 * time.Second)
	if !a.State().Expanded {
		t.Fatal("collapsed before the rescheduled deadline")
	}

	before := len(r.got)
	m.Advance(time.Second)
	if a.State().Expanded {
		t.Fatal("still expanded after timeout")
	}
	if len(r.got) != before+1 {
		t.Fatalf("timer fired %d times", len(r.got)-before)
	}
	if m.Pending() != 0 {
		t.Fatalf("Pending() = %d", m.Pending())
	}
}

func TestOutputBLEStaysExpanded(t *testing.T) {
	m := sched.NewManual()
	a := NewOutputAggregator(m, 0, nil)

	a.OnProfileChanged(0, true, false)
	a.OnTransportChanged(event.TransportBLE)
	if a.TimerArmed() {
		t.Fatal("timer armed on BLE")
	}
	a.OnProfileChanged(1, false, true)
	m.Advance(10 * time.Second)

	s := a.State()
	if !s.Expanded || s.Profile != 1 || !s.ProfileOpen {
		t.Fatalf("state = %+v", s)
	}

	a.OnTransportChanged(event.TransportUSB)
	if a.State().Expanded {
		t.Fatal("USB should collapse")
	}
}

func TestOutputStaleFireIgnored(t *testing.T) {
	var fires []func()
	s := schedFunc(func(d time.Duration, f func()) sched.Timer {
		fires = append(fires, f)
		return stopNoop{}
	})
	a := NewOutputAggregator(s, time.Second, nil)

	a.OnProfileChanged(0, true, false)
	a.OnProfileChanged(1, true, false)

	// the first callback had already been queued when it was cancelled
	fires[0]()
	if !a.State().Expanded {
		t.Fatal("stale fire collapsed the widget")
	}
	fires[1]()
	if a.State().Expanded {
		t.Fatal("current fire did not collapse")
	}
}

type schedFunc func(time.Duration, func()) sched.Timer

func (f schedFunc) AfterFunc(d time.Duration, fn func()) sched.Timer { return f(d, fn) }

type stopNoop struct{}

func (stopNoop) Stop() bool { return false }

func TestWPMClampAndBars(t *testing.T) {
	a := NewWPMAggregator()
	r := &recorder[int]{}
	a.Register(r)

	a.OnWPMChanged(300)
	a.OnWPMChanged(300)
	if a.WPM() != MaxWPM || len(r.got) != 2 {
		t.Fatalf("wpm = %d, updates = %d", a.WPM(), len(r.got))
	}

	tests := []struct{ wpm, bars, want int }{
		{0, 10, 0}, {255, 10, 10}, {128, 10, 5}, {51, 5, 1},
	}
	for _, tt := range tests {
		if got := ActiveBars(tt.wpm, tt.bars); got != tt.want {
			t.Errorf("ActiveBars(%d, %d) = %d, want %d", tt.wpm, tt.bars, got, tt.want)
		}
	}
}

func TestLayerNames(t *testing.T) {
	a := NewLayerAggregator([]string{"Base", "", "Nav"})
	r := &recorder[LayerState]{}
	a.Register(r)

	a.OnLayerChanged(2)
	if got := r.last(); got.Name != "Nav" {
		t.Fatalf("layer 2 = %+v", got)
	}
	a.OnLayerChanged(1)
	if got := r.last(); got.Name != "Layer 1" {
		t.Fatalf("layer 1 = %+v", got)
	}
	a.OnLayerChanged(7)
	if got := r.last(); got.Name != "Layer 7" {
		t.Fatalf("layer 7 = %+v", got)
	}
}
