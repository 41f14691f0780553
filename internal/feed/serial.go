package feed

import (
	"fmt"
	"time"

	"github.com/tarm/serial"
)

// DefaultBaud is the baud rate used when none is configured.
const DefaultBaud = 115200

// SerialConfig describes the serial link to the keyboard bridge.
type SerialConfig struct {
	Device      string
	Baud        int
	ReadTimeout time.Duration
}

// OpenSerial opens the serial link. The returned port is an io.ReadCloser
// suitable for Read.
func OpenSerial(cfg SerialConfig) (*serial.Port, error) {
	if cfg.Device == "" {
		return nil, fmt.Errorf("serial device not configured")
	}
	if cfg.Baud <= 0 {
		cfg.Baud = DefaultBaud
	}
	port, err := serial.OpenPort(&serial.Config{
		Name:        cfg.Device,
		Baud:        cfg.Baud,
		ReadTimeout: cfg.ReadTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", cfg.Device, err)
	}
	return port, nil
}
