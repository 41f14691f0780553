package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/phinze/prospector/internal/modorder"
	"github.com/phinze/prospector/internal/modules/statusscreen"
	"github.com/phinze/prospector/internal/status"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ModifierOrder != "GACS" || cfg.Layout != "classic" {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
modifier_order: SCGA
os_convention: mac
layout: radii
peripheral_count: 2
caps_word: false
layer_names: [Base, Nav]
profile_display_timeout: 5s
display:
  brightness: 40
  idle_timeout: 1m
feed:
  source: serial
  serial:
    device: /dev/ttyACM0
log_level: debug
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.ModifierOrder != "SCGA" || cfg.Convention() != modorder.Mac {
		t.Fatalf("order/convention = %q/%v", cfg.ModifierOrder, cfg.Convention())
	}
	if cfg.PeripheralCount != 2 || len(cfg.LayerNames) != 2 {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.ProfileDisplayTimeout != 5*time.Second || cfg.Display.IdleTimeout != time.Minute {
		t.Fatalf("durations = %v, %v", cfg.ProfileDisplayTimeout, cfg.Display.IdleTimeout)
	}
	// unset nested fields keep their defaults
	if !cfg.Display.SleepEnabled || cfg.Feed.Serial.Baud != 115200 {
		t.Fatalf("defaults lost: %+v", cfg.Display)
	}
	if cfg.CapsWordMode() != status.CapsWordAbsent {
		t.Fatalf("CapsWordMode() = %v", cfg.CapsWordMode())
	}
	if lvl, _ := cfg.SlogLevel(); lvl != slog.LevelDebug {
		t.Fatalf("SlogLevel() = %v", lvl)
	}
}

func TestInvalidModifierOrderIsNotAnError(t *testing.T) {
	path := writeConfig(t, "modifier_order: GGGG\n")
	if _, err := Load(path); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
}

func TestValidateAcceptsEveryLayout(t *testing.T) {
	for _, name := range statusscreen.LayoutNames() {
		cfg := Default()
		cfg.Layout = name
		if err := cfg.Validate(); err != nil {
			t.Errorf("layout %q: Validate() = %v", name, err)
		}
	}
}

func TestValidateReportsEveryProblem(t *testing.T) {
	cfg := Default()
	cfg.Layout = "spiral"
	cfg.PeripheralCount = 5
	cfg.Display.Brightness = 120
	cfg.Feed.Source = "websocket"
	cfg.LogLevel = "chatty"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() = nil")
	}
	for _, want := range []string{"layout", "peripheral_count", "brightness", "feed.websocket.url", "log_level"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error missing %q: %v", want, err)
		}
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	path := writeConfig(t, "layout: [unterminated\n")
	cfg, err := Load(path)
	if err == nil {
		t.Fatal("expected parse error")
	}
	if cfg.Layout != "classic" {
		t.Fatalf("malformed load should return defaults, got %+v", cfg)
	}
}
