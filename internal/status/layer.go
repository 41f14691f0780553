package status

import "fmt"

// LayerState is what a layer sink renders.
type LayerState struct {
	Index int
	Name  string
}

// LayerAggregator tracks the highest active keymap layer.
type LayerAggregator struct {
	names []string
	state LayerState
	sinks Broadcaster[LayerState]
}

// NewLayerAggregator creates an aggregator. names[i] labels layer i; missing
// or empty names fall back to "Layer i".
func NewLayerAggregator(names []string) *LayerAggregator {
	a := &LayerAggregator{names: append([]string(nil), names...)}
	a.state = LayerState{Index: 0, Name: a.Name(0)}
	return a
}

// Register adds a sink and pushes the current state to it.
func (a *LayerAggregator) Register(s Sink[LayerState]) {
	if s == nil {
		return
	}
	a.sinks.Register(s)
	s.Update(a.state)
}

// OnLayerChanged records the active layer.
func (a *LayerAggregator) OnLayerChanged(index int) {
	if index < 0 {
		return
	}
	next := LayerState{Index: index, Name: a.Name(index)}
	if next == a.state {
		return
	}
	a.state = next
	a.sinks.Broadcast(next)
}

// Name returns the display label for a layer.
func (a *LayerAggregator) Name(index int) string {
	if index >= 0 && index < len(a.names) && a.names[index] != "" {
		return a.names[index]
	}
	return fmt.Sprintf("Layer %d", index)
}

// State returns the current layer.
func (a *LayerAggregator) State() LayerState {
	return a.state
}
