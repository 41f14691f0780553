// Package status aggregates keyboard state notifications into displayable
// values and fans each update out to every registered display sink.
//
// Each state category (modifiers, peripheral batteries, output, WPM, layer)
// is a separate lane with its own aggregator. Aggregators are not safe for
// concurrent use: they are driven from a single event loop (see
// internal/dispatch), which also delivers their timer callbacks.
package status

// Sink receives every update of one state lane.
type Sink[T any] interface {
	Update(T)
}

// SinkFunc adapts a function to a Sink.
type SinkFunc[T any] func(T)

// Update implements Sink.
func (f SinkFunc[T]) Update(v T) { f(v) }

// Broadcaster delivers a value to all registered sinks in registration
// order. Sinks live as long as the broadcaster; a display reconnect builds
// a new Session rather than unregistering widgets.
type Broadcaster[T any] struct {
	sinks []Sink[T]
}

// Register appends a sink.
func (b *Broadcaster[T]) Register(s Sink[T]) {
	if s == nil {
		return
	}
	b.sinks = append(b.sinks, s)
}

// Broadcast delivers v to every sink.
func (b *Broadcaster[T]) Broadcast(v T) {
	for _, s := range b.sinks {
		s.Update(v)
	}
}

// Len returns the number of registered sinks.
func (b *Broadcaster[T]) Len() int {
	return len(b.sinks)
}
