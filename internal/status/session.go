package status

import (
	"log/slog"
	"time"

	"github.com/phinze/prospector/internal/event"
	"github.com/phinze/prospector/internal/modorder"
	"github.com/phinze/prospector/internal/sched"
)

// SessionConfig configures a Session.
type SessionConfig struct {
	Registry              *modorder.Registry
	CapsWordMode          CapsWordMode
	PeripheralCount       int
	LayerNames            []string
	ProfileDisplayTimeout time.Duration
	// Transport and Profile seed the output lane before any event arrives.
	Transport event.Transport
	Profile   int
	// Scheduler must deliver callbacks on the goroutine that feeds the
	// session events, normally a dispatch.Dispatcher.
	Scheduler sched.Scheduler
	Logger    *slog.Logger
}

// Subscriber is the subset of dispatch.Dispatcher a Session binds to.
type Subscriber interface {
	Subscribe(kind event.Kind, fn func(event.Event))
}

// Session owns one aggregator per state lane for the lifetime of a display
// connection.
type Session struct {
	Modifiers *ModifierAggregator
	Battery   *BatteryAggregator
	Output    *OutputAggregator
	WPM       *WPMAggregator
	Layer     *LayerAggregator

	logger *slog.Logger
}

// NewSession builds every aggregator from cfg.
func NewSession(cfg SessionConfig) *Session {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	scheduler := cfg.Scheduler
	if scheduler == nil {
		scheduler = sched.Real{}
	}
	s := &Session{
		Modifiers: NewModifierAggregator(cfg.Registry, cfg.CapsWordMode, logger),
		Battery:   NewBatteryAggregator(cfg.PeripheralCount, logger),
		Output:    NewOutputAggregator(scheduler, cfg.ProfileDisplayTimeout, logger),
		WPM:       NewWPMAggregator(),
		Layer:     NewLayerAggregator(cfg.LayerNames),
		logger:    logger,
	}
	s.Output.Init(cfg.Transport, cfg.Profile)
	return s
}

// Subscribe routes every state event kind from bus to Handle.
func (s *Session) Subscribe(bus Subscriber) {
	for _, k := range []event.Kind{
		event.KindModifiers, event.KindCapsWord, event.KindBattery,
		event.KindConnection, event.KindEndpoint, event.KindProfile,
		event.KindWPM, event.KindLayer,
	} {
		bus.Subscribe(k, s.Handle)
	}
}

// Handle applies one event to the matching aggregator.
func (s *Session) Handle(ev event.Event) {
	switch e := ev.(type) {
	case event.ModifiersChanged:
		s.Modifiers.OnModifierFlagsChanged(e.Flags)
	case event.CapsWordChanged:
		s.Modifiers.OnCapsWordChanged(e.Active)
	case event.BatteryChanged:
		s.Battery.OnBatteryLevelChanged(e.Slot, e.Level)
	case event.ConnectionChanged:
		s.Battery.OnConnectionChanged(e.Slot, e.Connected)
	case event.EndpointChanged:
		s.Output.OnTransportChanged(e.Transport)
	case event.ProfileChanged:
		s.Output.OnProfileChanged(e.Index, e.Connected, e.Open)
	case event.WPMChanged:
		s.WPM.OnWPMChanged(e.WPM)
	case event.LayerChanged:
		s.Layer.OnLayerChanged(e.Index)
	default:
		s.logger.Debug("unhandled event", "kind", ev.Kind())
	}
}
