package device

import (
	"fmt"
	"image"
	"time"

	"rafaelmartins.com/p/streamdeck"
)

// StreamDeck adapts a rafaelmartins.com/p/streamdeck device to Device.
type StreamDeck struct {
	dev *streamdeck.Device
}

// OpenStreamDeck finds and opens a Stream Deck. An empty serial selects the
// first device.
func OpenStreamDeck(serial string) (*StreamDeck, error) {
	dev, err := streamdeck.GetDevice(serial)
	if err != nil {
		return nil, fmt.Errorf("finding stream deck: %w", err)
	}
	if err := dev.Open(); err != nil {
		return nil, fmt.Errorf("opening %s: %w", dev.GetModelName(), err)
	}
	return &StreamDeck{dev: dev}, nil
}

func toStreamdeckKey(k KeyID) streamdeck.KeyID {
	return streamdeck.KEY_1 + streamdeck.KeyID(k-KEY_1)
}

func fromStreamdeckKey(k streamdeck.KeyID) KeyID {
	return KEY_1 + KeyID(k-streamdeck.KEY_1)
}

func (s *StreamDeck) Close() error                 { return s.dev.Close() }
func (s *StreamDeck) GetModelName() string         { return s.dev.GetModelName() }
func (s *StreamDeck) GetTouchStripSupported() bool { return s.dev.GetTouchStripSupported() }
func (s *StreamDeck) SetBrightness(perc byte) error {
	return s.dev.SetBrightness(perc)
}

func (s *StreamDeck) GetKeyImageRectangle() (image.Rectangle, error) {
	return s.dev.GetKeyImageRectangle()
}

func (s *StreamDeck) GetTouchStripImageRectangle() (image.Rectangle, error) {
	return s.dev.GetTouchStripImageRectangle()
}

func (s *StreamDeck) SetKeyImage(key KeyID, img image.Image) error {
	return s.dev.SetKeyImage(toStreamdeckKey(key), img)
}

func (s *StreamDeck) SetTouchStripImage(img image.Image) error {
	return s.dev.SetTouchStripImage(img)
}

func (s *StreamDeck) ClearKey(key KeyID) error {
	return s.dev.ClearKey(toStreamdeckKey(key))
}

func (s *StreamDeck) ForEachKey(cb func(KeyID) error) error {
	return s.dev.ForEachKey(func(k streamdeck.KeyID) error {
		return cb(fromStreamdeckKey(k))
	})
}

type sdKey struct {
	id  KeyID
	key *streamdeck.Key
}

func (k sdKey) GetID() KeyID                  { return k.id }
func (k sdKey) WaitForRelease() time.Duration { return k.key.WaitForRelease() }

type sdDial struct {
	id   DialID
	dial *streamdeck.Dial
}

func (d sdDial) GetID() DialID                 { return d.id }
func (d sdDial) WaitForRelease() time.Duration { return d.dial.WaitForRelease() }

func (s *StreamDeck) AddKeyHandler(key KeyID, fn KeyHandler) error {
	return s.dev.AddKeyHandler(toStreamdeckKey(key), func(_ *streamdeck.Device, k *streamdeck.Key) error {
		return fn(s, sdKey{id: key, key: k})
	})
}

func (s *StreamDeck) AddDialRotateHandler(dial DialID, fn DialRotateHandler) error {
	return s.dev.AddDialRotateHandler(streamdeck.DialID(dial), func(_ *streamdeck.Device, di *streamdeck.Dial, delta int8) error {
		return fn(s, sdDial{id: dial, dial: di}, delta)
	})
}

func (s *StreamDeck) AddDialSwitchHandler(dial DialID, fn DialSwitchHandler) error {
	return s.dev.AddDialSwitchHandler(streamdeck.DialID(dial), func(_ *streamdeck.Device, di *streamdeck.Dial) error {
		return fn(s, sdDial{id: dial, dial: di})
	})
}

func (s *StreamDeck) Listen(errCh chan error) error {
	return s.dev.Listen(errCh)
}
