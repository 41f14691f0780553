package device

import (
	"errors"
	"image"
	"sync"
	"time"
)

// ErrNoHandler is returned by Fake.Press when no handler is registered.
var ErrNoHandler = errors.New("no handler registered")

// Fake is an in-memory Stream Deck Plus. It records everything drawn to it
// and lets callers trigger key and dial handlers directly.
type Fake struct {
	mu sync.Mutex

	keyRect   image.Rectangle
	stripRect image.Rectangle

	Brightness byte
	Keys       map[KeyID]image.Image
	Strip      image.Image
	StripDraws int
	Closed     bool

	keyHandlers    map[KeyID]KeyHandler
	rotateHandlers map[DialID]DialRotateHandler
	switchHandlers map[DialID]DialSwitchHandler

	stop chan struct{}
	once sync.Once
}

// NewFake returns a fake with Stream Deck Plus geometry.
func NewFake() *Fake {
	return &Fake{
		keyRect:        image.Rect(0, 0, 120, 120),
		stripRect:      image.Rect(0, 0, 800, 100),
		Keys:           make(map[KeyID]image.Image),
		keyHandlers:    make(map[KeyID]KeyHandler),
		rotateHandlers: make(map[DialID]DialRotateHandler),
		switchHandlers: make(map[DialID]DialSwitchHandler),
		stop:           make(chan struct{}),
	}
}

func (f *Fake) Close() error {
	f.mu.Lock()
	f.Closed = true
	f.mu.Unlock()
	f.once.Do(func() { close(f.stop) })
	return nil
}

func (f *Fake) GetModelName() string         { return "Stream Deck Plus (fake)" }
func (f *Fake) GetTouchStripSupported() bool { return true }

func (f *Fake) GetKeyImageRectangle() (image.Rectangle, error) {
	return f.keyRect, nil
}

func (f *Fake) GetTouchStripImageRectangle() (image.Rectangle, error) {
	return f.stripRect, nil
}

func (f *Fake) SetBrightness(perc byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Brightness = perc
	return nil
}

func (f *Fake) SetKeyImage(key KeyID, img image.Image) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Keys[key] = img
	return nil
}

func (f *Fake) SetTouchStripImage(img image.Image) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Strip = img
	f.StripDraws++
	return nil
}

func (f *Fake) ClearKey(key KeyID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.Keys, key)
	return nil
}

func (f *Fake) ForEachKey(cb func(KeyID) error) error {
	for k := KEY_1; k <= KEY_8; k++ {
		if err := cb(k); err != nil {
			return err
		}
	}
	return nil
}

func (f *Fake) AddKeyHandler(key KeyID, fn KeyHandler) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keyHandlers[key] = fn
	return nil
}

func (f *Fake) AddDialRotateHandler(dial DialID, fn DialRotateHandler) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rotateHandlers[dial] = fn
	return nil
}

func (f *Fake) AddDialSwitchHandler(dial DialID, fn DialSwitchHandler) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.switchHandlers[dial] = fn
	return nil
}

// Listen blocks until Close.
func (f *Fake) Listen(errCh chan error) error {
	<-f.stop
	return nil
}

type fakeInput struct {
	key  KeyID
	dial DialID
	held time.Duration
}

func (i fakeInput) GetID() KeyID                  { return i.key }
func (i fakeInput) WaitForRelease() time.Duration { return i.held }

type fakeDial struct{ fakeInput }

func (d fakeDial) GetID() DialID { return d.dial }

// Press runs the key handler for key as if it were held for held.
func (f *Fake) Press(key KeyID, held time.Duration) error {
	f.mu.Lock()
	fn := f.keyHandlers[key]
	f.mu.Unlock()
	if fn == nil {
		return ErrNoHandler
	}
	return fn(f, fakeInput{key: key, held: held})
}

// Rotate runs the rotate handler for dial.
func (f *Fake) Rotate(dial DialID, delta int8) error {
	f.mu.Lock()
	fn := f.rotateHandlers[dial]
	f.mu.Unlock()
	if fn == nil {
		return ErrNoHandler
	}
	return fn(f, fakeDial{fakeInput{dial: dial}}, delta)
}

// PressDial runs the switch handler for dial.
func (f *Fake) PressDial(dial DialID, held time.Duration) error {
	f.mu.Lock()
	fn := f.switchHandlers[dial]
	f.mu.Unlock()
	if fn == nil {
		return ErrNoHandler
	}
	return fn(f, fakeDial{fakeInput{dial: dial, held: held}})
}

// KeyImage returns the last image drawn to key.
func (f *Fake) KeyImage(key KeyID) image.Image {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Keys[key]
}

// StripImage returns the last strip image and the number of strip draws.
func (f *Fake) StripImage() (image.Image, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Strip, f.StripDraws
}

// CurrentBrightness returns the last brightness set.
func (f *Fake) CurrentBrightness() byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Brightness
}
