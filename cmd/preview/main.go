// Command preview renders every layout for a scripted keyboard state into
// PNG files, without a Stream Deck attached.
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"

	"github.com/phinze/prospector/internal/config"
	"github.com/phinze/prospector/internal/dispatch"
	"github.com/phinze/prospector/internal/event"
	"github.com/phinze/prospector/internal/feed"
	"github.com/phinze/prospector/internal/modorder"
	"github.com/phinze/prospector/internal/module"
	"github.com/phinze/prospector/internal/modules/statusscreen"
	"github.com/phinze/prospector/internal/sched"
	"github.com/phinze/prospector/internal/status"
)

// defaultScript is a two-peripheral board on BLE profile 2 with Cmd and
// caps word held.
const defaultScript = `{"type":"connection","slot":0,"connected":true}
{"type":"battery","slot":0,"level":82}
{"type":"battery","slot":1,"level":37}
{"type":"endpoint","transport":"ble"}
{"type":"profile","index":1,"connected":true}
{"type":"modifiers","mods":8}
{"type":"caps_word","active":true}
{"type":"wpm","wpm":74}
{"type":"layer","index":2}
`

const keyCount = 4

func main() {
	var (
		configPath = flag.String("config", "", "config file for modifier order and layer names")
		script     = flag.String("events", "", "newline-delimited JSON events to replay (default: built-in script)")
		outDir     = flag.String("out", "preview", "output directory")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	if err := run(*configPath, *script, *outDir, logger); err != nil {
		logger.Error("preview failed", "error", err)
		os.Exit(1)
	}
}

func run(configPath, script, outDir string, logger *slog.Logger) error {
	cfg := config.Default()
	cfg.PeripheralCount = 2
	cfg.OSConvention = "mac"
	cfg.LayerNames = []string{"Base", "Nav", "Sym"}
	if configPath != "" {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			return err
		}
	}

	var events io.Reader = strings.NewReader(defaultScript)
	if script != "" {
		f, err := os.Open(script)
		if err != nil {
			return fmt.Errorf("opening events: %w", err)
		}
		defer f.Close()
		events = f
	}

	// Timers never fire, so the profile detail stays expanded.
	clock := sched.NewManual()
	bus := dispatch.New(dispatch.Options{Scheduler: clock, Logger: logger})
	session := status.NewSession(status.SessionConfig{
		Registry:        modorder.New(cfg.ModifierOrder, cfg.Convention(), logger),
		CapsWordMode:    cfg.CapsWordMode(),
		PeripheralCount: cfg.PeripheralCount,
		LayerNames:      cfg.LayerNames,
		Scheduler:       clock,
		Logger:          logger,
	})
	session.Subscribe(bus)

	screens := make([]*statusscreen.Module, 0, len(statusscreen.LayoutNames()))
	for _, name := range statusscreen.LayoutNames() {
		m, err := statusscreen.New(session, statusscreen.Options{
			Layout:       name,
			ShowInactive: cfg.ShowInactiveModifiers,
			Logger:       logger,
		})
		if err != nil {
			return err
		}
		res := module.Resources{
			Keys:      []module.KeyID{module.Key1, module.Key2, module.Key3, module.Key4},
			StripRect: image.Rect(0, 0, 800, 100),
		}
		if err := m.Init(context.Background(), res); err != nil {
			return err
		}
		screens = append(screens, m)
	}

	stats, err := feed.Read(context.Background(), events, func(ev event.Event) bool {
		bus.Dispatch(ev)
		return true
	}, logger)
	if err != nil {
		return fmt.Errorf("replaying events: %w", err)
	}
	logger.Info("replayed events", "posted", stats.Posted, "malformed", stats.Malformed)

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	for _, m := range screens {
		path := filepath.Join(outDir, m.Layout().Name+".png")
		if err := writePNG(path, compose(m)); err != nil {
			return err
		}
		logger.Info("wrote preview", "path", path)
	}
	return nil
}

// compose lays the modifier keys above the strip, the way they sit on the
// device.
func compose(m *statusscreen.Module) image.Image {
	const keySide, gap = 120, 40
	canvas := image.NewRGBA(image.Rect(0, 0, 800, keySide+gap+100))

	keys := m.RenderKeys()
	for i, id := range []module.KeyID{module.Key1, module.Key2, module.Key3, module.Key4} {
		img, ok := keys[id]
		if !ok {
			continue
		}
		x := gap + i*(800-2*gap)/keyCount
		draw.Draw(canvas, image.Rect(x, 0, x+keySide, keySide), img, image.Point{}, draw.Src)
	}
	if strip := m.RenderStrip(); strip != nil {
		draw.Draw(canvas, image.Rect(0, keySide+gap, 800, keySide+gap+100), strip, image.Point{}, draw.Src)
	}
	return canvas
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return f.Close()
}
