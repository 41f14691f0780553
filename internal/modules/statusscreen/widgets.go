package statusscreen

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/phinze/prospector/internal/event"
	"github.com/phinze/prospector/internal/status"
)

// latest is a sink that keeps the most recent value for the render
// goroutine and requests a redraw on every update.
type latest[T any] struct {
	mu         sync.RWMutex
	val        T
	invalidate func()
}

func (l *latest[T]) Update(v T) {
	l.mu.Lock()
	l.val = v
	l.mu.Unlock()
	if l.invalidate != nil {
		l.invalidate()
	}
}

func (l *latest[T]) get() T {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.val
}

// widgets holds one sink per state lane.
type widgets struct {
	modifiers latest[status.ModifierView]
	battery   latest[[]status.PeripheralLink]
	output    latest[status.OutputState]
	wpm       latest[int]
	layer     latest[status.LayerState]
}

func (w *widgets) setInvalidate(fn func()) {
	w.modifiers.invalidate = fn
	w.battery.invalidate = fn
	w.output.invalidate = fn
	w.wpm.invalidate = fn
	w.layer.invalidate = fn
}

// register attaches every widget to the session's aggregators.
func (w *widgets) register(s *status.Session) {
	s.Modifiers.Register(&w.modifiers)
	s.Battery.Register(&w.battery)
	s.Output.Register(&w.output)
	s.WPM.Register(&w.wpm)
	s.Layer.Register(&w.layer)
}

// frame is a consistent copy of every widget's value for one render.
type frame struct {
	mods   status.ModifierView
	links  []status.PeripheralLink
	output status.OutputState
	wpm    int
	layer  status.LayerState
}

func (w *widgets) snapshot() frame {
	return frame{
		mods:   w.modifiers.get(),
		links:  w.battery.get(),
		output: w.output.get(),
		wpm:    w.wpm.get(),
		layer:  w.layer.get(),
	}
}

// batteryText is one slot's label and whether it should be drawn muted.
type batteryText struct {
	Text  string
	Level int
	Muted bool
}

// batteryTexts applies a disconnected-slot policy to every slot.
func batteryTexts(links []status.PeripheralLink, policy Disconnected) []batteryText {
	if policy == DisconnectedHide && len(links) == 1 {
		l := links[0]
		if !l.Connected || l.Level == 0 {
			return nil
		}
	}

	out := make([]batteryText, 0, len(links))
	for _, l := range links {
		switch {
		case l.Connected:
			out = append(out, batteryText{Text: strconv.Itoa(l.Level), Level: l.Level})
		case policy == DisconnectedDash:
			out = append(out, batteryText{Text: "-"})
		case policy == DisconnectedDim:
			out = append(out, batteryText{Text: strconv.Itoa(l.Level), Level: l.Level, Muted: true})
		case policy == DisconnectedHide:
			// omitted
		}
	}
	return out
}

// batteryLabel joins slot labels the way the compact label widgets do.
func batteryLabel(links []status.PeripheralLink, policy Disconnected) string {
	texts := batteryTexts(links, policy)
	parts := make([]string, len(texts))
	for i, t := range texts {
		parts[i] = t.Text
	}
	return strings.Join(parts, "/")
}

// ProfileMark is how a profile slot is drawn.
type ProfileMark int

const (
	// MarkRing is a connected profile on another transport.
	MarkRing ProfileMark = iota
	// MarkFilled is the connected profile currently sending over BLE.
	MarkFilled
	// MarkSearching is an unconnected profile.
	MarkSearching
	// MarkOpen is an unconnected profile with no paired host.
	MarkOpen
)

func profileMark(o status.OutputState) ProfileMark {
	switch {
	case o.ProfileConnected && o.Transport == event.TransportBLE:
		return MarkFilled
	case o.ProfileConnected:
		return MarkRing
	case o.ProfileOpen:
		return MarkOpen
	default:
		return MarkSearching
	}
}

func transportLabel(t event.Transport) string {
	return strings.ToUpper(t.String())
}

func profileLabel(index int) string {
	return fmt.Sprintf("%d", index+1)
}
