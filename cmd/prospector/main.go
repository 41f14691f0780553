// Command prospector shows split-keyboard status on a Stream Deck Plus.
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/phinze/prospector/internal/config"
	"github.com/phinze/prospector/internal/coordinator"
	"github.com/phinze/prospector/internal/device"
	"github.com/phinze/prospector/internal/dispatch"
	"github.com/phinze/prospector/internal/event"
	"github.com/phinze/prospector/internal/idle"
	"github.com/phinze/prospector/internal/modorder"
	"github.com/phinze/prospector/internal/module"
	"github.com/phinze/prospector/internal/modules/sleep"
	"github.com/phinze/prospector/internal/modules/statusscreen"
	"github.com/phinze/prospector/internal/status"
)

// devicePoll is how often to look for a Stream Deck while none is attached.
const devicePoll = 2 * time.Second

func main() {
	configPath := flag.String("config", config.DefaultPath(), "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	level, _ := cfg.SlogLevel()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	if err != nil {
		logger.Error("invalid configuration", "path", *configPath, "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("prospector failed", "error", err)
		os.Exit(1)
	}
}

// backlight forwards brightness changes to whichever coordinator currently
// owns the device. It is a no-op while no device is attached.
type backlight struct {
	mu    sync.Mutex
	coord *coordinator.Coordinator
}

func (b *backlight) set(c *coordinator.Coordinator) {
	b.mu.Lock()
	b.coord = c
	b.mu.Unlock()
}

func (b *backlight) SetBrightness(percent uint8) error {
	b.mu.Lock()
	c := b.coord
	b.mu.Unlock()
	if c == nil {
		return nil
	}
	return c.SetBrightness(percent)
}

// run wires the event loop, the status session and the display modules,
// then serves devices until ctx is done. Keyboard state survives device
// reconnects; only the coordinator is rebuilt.
func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	bus := dispatch.New(dispatch.Options{Logger: logger.With("component", "dispatch")})

	registry := modorder.New(cfg.ModifierOrder, cfg.Convention(), logger)
	session := status.NewSession(status.SessionConfig{
		Registry:              registry,
		CapsWordMode:          cfg.CapsWordMode(),
		PeripheralCount:       cfg.PeripheralCount,
		LayerNames:            cfg.LayerNames,
		ProfileDisplayTimeout: cfg.ProfileDisplayTimeout,
		Scheduler:             bus,
		Logger:                logger.With("component", "status"),
	})
	session.Subscribe(bus)

	screen, err := statusscreen.New(session, statusscreen.Options{
		Layout:       cfg.Layout,
		ShowInactive: cfg.ShowInactiveModifiers,
		Logger:       logger.With("module", "statusscreen"),
	})
	if err != nil {
		return fmt.Errorf("creating status screen: %w", err)
	}

	light := &backlight{}
	power := sleep.New(light, uint8(cfg.Display.Brightness), bus.Post, logger.With("module", "sleep"))

	idler := idle.New(power, bus, idle.Options{
		Enabled:        cfg.Display.SleepEnabled,
		Timeout:        cfg.Display.IdleTimeout,
		WakeBrightness: uint8(cfg.Display.Brightness),
		Logger:         logger.With("component", "idle"),
	})
	bus.Subscribe(event.KindKey, idler.Handle)

	go func() {
		if err := bus.Run(ctx); err != nil {
			logger.Error("event loop stopped", "error", err)
		}
	}()
	go runFeed(ctx, cfg.Feed, bus.Post, logger.With("component", "feed"))

	idler.Start()
	defer idler.Stop()

	logger.Info("prospector started",
		"layout", cfg.Layout,
		"modifier_order", registry.String(),
		"caps_word_mode", cfg.CapsWordMode(),
		"feed", cfg.Feed.Source,
	)

	wakeCh := systemWake(logger)
	for {
		dev := waitForDevice(ctx, logger)
		if dev == nil {
			return nil
		}

		runWithDevice(ctx, dev, light, wakeCh, logger, screen, power)

		select {
		case <-ctx.Done():
			logger.Info("exiting")
			return nil
		default:
			logger.Info("waiting for device reconnect")
		}
	}
}

// waitForDevice polls for a Stream Deck until one opens or ctx is done.
func waitForDevice(ctx context.Context, logger *slog.Logger) *device.StreamDeck {
	dev, err := device.OpenStreamDeck("")
	if err == nil {
		return dev
	}
	logger.Info("waiting for device", "error", err)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(devicePoll):
		}

		dev, err := device.OpenStreamDeck("")
		if err != nil {
			logger.Debug("device not available", "error", err)
			continue
		}
		logger.Info("device connected")
		return dev
	}
}

// runWithDevice drives one device until it disconnects, the system wakes,
// or ctx is done.
func runWithDevice(ctx context.Context, dev *device.StreamDeck, light *backlight, wakeCh <-chan struct{}, logger *slog.Logger, screen *statusscreen.Module, power *sleep.Module) {
	logger.Info("connected", "model", dev.GetModelName())
	dev.ForEachKey(func(key device.KeyID) error {
		return dev.ClearKey(key)
	})

	coord := coordinator.New(dev, coordinator.Options{Logger: logger.With("component", "coordinator")})
	coord.RegisterModule(screen, module.Resources{
		Keys:      []module.KeyID{module.Key1, module.Key2, module.Key3, module.Key4},
		StripRect: image.Rect(0, 0, 800, 100),
	})
	coord.RegisterModule(power, module.Resources{
		Dials: []module.DialID{module.Dial1},
	})
	light.set(coord)
	defer light.set(nil)

	runCtx, runCancel := context.WithCancel(ctx)
	defer runCancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- coord.Start(runCtx)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-errCh:
		if err != nil {
			logger.Warn("device disconnected", "error", err)
		}
	case <-wakeCh:
		logger.Info("reconnecting device after wake")
	}

	runCancel()

	done := make(chan struct{})
	go func() {
		coord.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		logger.Warn("cleanup timed out")
	}

	// Reopening before close completes races the USB handle.
	closeDone := make(chan struct{})
	go func() {
		dev.Close()
		close(closeDone)
	}()
	select {
	case <-ctx.Done():
		// Close may block indefinitely on shutdown.
		logger.Info("exiting")
		os.Exit(0)
	case <-closeDone:
	case <-time.After(3 * time.Second):
		logger.Warn("device close timed out")
	}
}
