package status

// MaxWPM is the largest representable words-per-minute value.
const MaxWPM = 255

// WPMAggregator tracks typing speed.
type WPMAggregator struct {
	wpm   int
	sinks Broadcaster[int]
}

// NewWPMAggregator returns an aggregator at zero.
func NewWPMAggregator() *WPMAggregator {
	return &WPMAggregator{}
}

// Register adds a sink and pushes the current value to it.
func (a *WPMAggregator) Register(s Sink[int]) {
	if s == nil {
		return
	}
	a.sinks.Register(s)
	s.Update(a.wpm)
}

// OnWPMChanged records a value clamped to 0..MaxWPM.
func (a *WPMAggregator) OnWPMChanged(wpm int) {
	wpm = max(0, min(wpm, MaxWPM))
	if wpm == a.wpm {
		return
	}
	a.wpm = wpm
	a.sinks.Broadcast(wpm)
}

// WPM returns the current value.
func (a *WPMAggregator) WPM() int {
	return a.wpm
}

// ActiveBars returns how many of bars meter segments a value lights.
func ActiveBars(wpm, bars int) int {
	wpm = max(0, min(wpm, MaxWPM))
	return wpm * bars / MaxWPM
}
