package status

import "log/slog"

// MaxPeripherals is the largest supported number of split peripherals.
const MaxPeripherals = 3

// PeripheralLink is the last known state of one peripheral slot.
type PeripheralLink struct {
	Level     int
	Connected bool
}

// BatteryAggregator tracks battery level and link state per peripheral slot.
type BatteryAggregator struct {
	links  []PeripheralLink
	sinks  Broadcaster[[]PeripheralLink]
	logger *slog.Logger
}

// NewBatteryAggregator creates an aggregator with count slots, clamped to
// 1..MaxPeripherals.
func NewBatteryAggregator(count int, logger *slog.Logger) *BatteryAggregator {
	count = max(1, min(count, MaxPeripherals))
	if logger == nil {
		logger = slog.Default()
	}
	return &BatteryAggregator{
		links:  make([]PeripheralLink, count),
		logger: logger,
	}
}

// Register adds a sink and pushes the current slots to it.
func (a *BatteryAggregator) Register(s Sink[[]PeripheralLink]) {
	if s == nil {
		return
	}
	a.sinks.Register(s)
	s.Update(a.Links())
}

// OnBatteryLevelChanged records a level for slot. Levels are clamped to
// 0..100; unknown slots are ignored.
func (a *BatteryAggregator) OnBatteryLevelChanged(slot, level int) {
	if !a.valid(slot) {
		a.logger.Debug("battery event for unknown slot", "slot", slot)
		return
	}
	level = max(0, min(level, 100))
	if a.links[slot].Level == level {
		return
	}
	a.links[slot].Level = level
	a.sinks.Broadcast(a.Links())
}

// OnConnectionChanged records the link state of slot.
func (a *BatteryAggregator) OnConnectionChanged(slot int, connected bool) {
	if !a.valid(slot) {
		a.logger.Debug("connection event for unknown slot", "slot", slot)
		return
	}
	if a.links[slot].Connected == connected {
		return
	}
	a.links[slot].Connected = connected
	a.sinks.Broadcast(a.Links())
}

func (a *BatteryAggregator) valid(slot int) bool {
	return slot >= 0 && slot < len(a.links)
}

// Links returns a copy of every slot.
func (a *BatteryAggregator) Links() []PeripheralLink {
	out := make([]PeripheralLink, len(a.links))
	copy(out, a.links)
	return out
}

// Count returns the number of slots.
func (a *BatteryAggregator) Count() int {
	return len(a.links)
}
