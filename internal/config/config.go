// Package config loads the prospector YAML configuration.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/phinze/prospector/internal/feed"
	"github.com/phinze/prospector/internal/idle"
	"github.com/phinze/prospector/internal/modorder"
	"github.com/phinze/prospector/internal/modules/statusscreen"
	"github.com/phinze/prospector/internal/status"
)

// Config is the daemon configuration.
type Config struct {
	// ModifierOrder is a four-letter permutation of G, A, C, S. Invalid
	// values are not rejected here; the registry falls back to GACS.
	ModifierOrder         string        `yaml:"modifier_order"`
	OSConvention          string        `yaml:"os_convention"`
	Layout                string        `yaml:"layout"`
	PeripheralCount       int           `yaml:"peripheral_count"`
	ShowModifiers         bool          `yaml:"show_modifiers"`
	ShowInactiveModifiers bool          `yaml:"show_inactive_modifiers"`
	CapsWord              bool          `yaml:"caps_word"`
	LayerNames            []string      `yaml:"layer_names"`
	ProfileDisplayTimeout time.Duration `yaml:"profile_display_timeout"`
	Display               Display       `yaml:"display"`
	Feed                  Feed          `yaml:"feed"`
	LogLevel              string        `yaml:"log_level"`
}

// Display configures the Stream Deck.
type Display struct {
	Brightness   int           `yaml:"brightness"`
	SleepEnabled bool          `yaml:"sleep_enabled"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
}

// Feed configures where keyboard events come from.
type Feed struct {
	Source    string    `yaml:"source"`
	Serial    Serial    `yaml:"serial"`
	Websocket Websocket `yaml:"websocket"`
}

// Serial configures the serial event source.
type Serial struct {
	Device string `yaml:"device"`
	Baud   int    `yaml:"baud"`
}

// Websocket configures the websocket event source.
type Websocket struct {
	URL string `yaml:"url"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		ModifierOrder:         modorder.DefaultOrder,
		OSConvention:          "generic",
		Layout:                "classic",
		PeripheralCount:       1,
		ShowModifiers:         true,
		ShowInactiveModifiers: true,
		CapsWord:              true,
		ProfileDisplayTimeout: status.DefaultProfileDisplayTimeout,
		Display: Display{
			Brightness:   idle.DefaultWakeBrightness,
			SleepEnabled: true,
			IdleTimeout:  idle.DefaultTimeout,
		},
		Feed: Feed{
			Source: string(feed.SourceStdin),
			Serial: Serial{Baud: feed.DefaultBaud},
		},
		LogLevel: "info",
	}
}

// DefaultPath returns ~/.config/prospector/config.yaml, or a path in the
// working directory if the home directory cannot be resolved.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "prospector.yaml"
	}
	return filepath.Join(home, ".config", "prospector", "config.yaml")
}

// Load reads path over the defaults. A missing or empty file yields the
// defaults. The result is validated.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, errors.New("config path required")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if len(raw) == 0 {
		return cfg, nil
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Default(), fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate reports every invalid field.
func (c Config) Validate() error {
	var errs []error

	if _, err := modorder.ParseConvention(c.OSConvention); err != nil {
		errs = append(errs, err)
	}
	if names := statusscreen.LayoutNames(); !slices.Contains(names, c.Layout) {
		errs = append(errs, fmt.Errorf("unknown layout %q (want one of %s)", c.Layout, strings.Join(names, ", ")))
	}
	if c.PeripheralCount < 1 || c.PeripheralCount > status.MaxPeripherals {
		errs = append(errs, fmt.Errorf("peripheral_count %d out of range 1..%d", c.PeripheralCount, status.MaxPeripherals))
	}
	if c.ProfileDisplayTimeout < 0 {
		errs = append(errs, fmt.Errorf("profile_display_timeout must not be negative"))
	}
	if c.Display.Brightness < 0 || c.Display.Brightness > 100 {
		errs = append(errs, fmt.Errorf("display.brightness %d out of range 0..100", c.Display.Brightness))
	}
	if c.Display.IdleTimeout < 0 {
		errs = append(errs, fmt.Errorf("display.idle_timeout must not be negative"))
	}

	src, err := feed.ParseSource(c.Feed.Source)
	if err != nil {
		errs = append(errs, err)
	}
	switch src {
	case feed.SourceSerial:
		if c.Feed.Serial.Device == "" {
			errs = append(errs, errors.New("feed.serial.device required for serial source"))
		}
	case feed.SourceWebsocket:
		if c.Feed.Websocket.URL == "" {
			errs = append(errs, errors.New("feed.websocket.url required for websocket source"))
		}
	}

	if _, err := c.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// SlogLevel parses LogLevel.
func (c Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log_level: %w", err)
	}
	return level, nil
}

// Convention returns the parsed OS convention, Generic if invalid.
func (c Config) Convention() modorder.Convention {
	conv, _ := modorder.ParseConvention(c.OSConvention)
	return conv
}

// CapsWordMode derives the modifier panel mode from the feature toggles.
func (c Config) CapsWordMode() status.CapsWordMode {
	return status.CapsWordModeFor(c.ShowModifiers, c.CapsWord)
}
