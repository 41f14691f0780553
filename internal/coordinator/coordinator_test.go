package coordinator

import (
	"context"
	"image"
	"image/color"
	"sync"
	"testing"
	"time"

	"github.com/phinze/prospector/internal/device"
	"github.com/phinze/prospector/internal/module"
)

type testModule struct {
	module.BaseModule

	mu          sync.Mutex
	keys        []module.KeyEvent
	dials       []module.DialEvent
	overlay     bool
	overlayKeys []module.KeyEvent
	fill        color.Color
}

func newTestModule(id string) *testModule {
	return &testModule{BaseModule: module.NewBaseModule(id), fill: color.White}
}

func (m *testModule) RenderKeys() map[module.KeyID]image.Image {
	out := make(map[module.KeyID]image.Image)
	for _, k := range m.Resources().Keys {
		img := image.NewRGBA(image.Rect(0, 0, 8, 8))
		img.Set(0, 0, m.fill)
		out[k] = img
	}
	return out
}

func (m *testModule) RenderStrip() image.Image {
	r := m.Resources().StripRect
	img := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	img.Set(0, 0, m.fill)
	return img
}

func (m *testModule) HandleKey(id module.KeyID, ev module.KeyEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys = append(m.keys, ev)
	return nil
}

func (m *testModule) HandleDial(id module.DialID, ev module.DialEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dials = append(m.dials, ev)
	return nil
}

type overlayModule struct {
	*testModule
}

func (m overlayModule) IsOverlayActive() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.overlay
}

func (m overlayModule) RenderOverlayKeys() map[module.KeyID]image.Image { return nil }
func (m overlayModule) RenderOverlayStrip() image.Image                 { return nil }

func (m overlayModule) HandleOverlayKey(id module.KeyID, ev module.KeyEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.overlayKeys = append(m.overlayKeys, ev)
	return nil
}

func startCoordinator(t *testing.T, c *Coordinator) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Start(ctx) }()
	t.Cleanup(func() {
		cancel()
		c.Stop()
		<-done
	})
}

func waitFor(t *testing.T, fn func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestRendersKeysAndStripRegions(t *testing.T) {
	dev := device.NewFake()
	c := New(dev, Options{RenderInterval: time.Hour})

	left := newTestModule("left")
	right := newTestModule("right")
	right.fill = color.Black
	c.RegisterModule(left, module.Resources{Keys: []module.KeyID{module.Key1}, StripRect: image.Rect(0, 0, 400, 100)})
	c.RegisterModule(right, module.Resources{StripRect: image.Rect(400, 0, 800, 100)})
	startCoordinator(t, c)

	waitFor(t, func() bool {
		_, n := dev.StripImage()
		return n > 0 && dev.KeyImage(module.Key1) != nil
	})

	strip, _ := dev.StripImage()
	if got := color.RGBAModel.Convert(strip.At(0, 0)); got != (color.RGBA{255, 255, 255, 255}) {
		t.Fatalf("left origin = %v", got)
	}
	if got := color.RGBAModel.Convert(strip.At(400, 0)); got != (color.RGBA{0, 0, 0, 255}) {
		t.Fatalf("right origin = %v", got)
	}
}

func TestInvalidateTriggersRender(t *testing.T) {
	dev := device.NewFake()
	c := New(dev, Options{RenderInterval: time.Hour})
	c.RegisterModule(newTestModule("m"), module.Resources{StripRect: image.Rect(0, 0, 800, 100)})
	startCoordinator(t, c)

	waitFor(t, func() bool { _, n := dev.StripImage(); return n == 1 })
	c.Invalidate()
	waitFor(t, func() bool { _, n := dev.StripImage(); return n >= 2 })
}

func TestKeyRoutedToOwner(t *testing.T) {
	dev := device.NewFake()
	c := New(dev, Options{RenderInterval: time.Hour})
	m := newTestModule("m")
	c.RegisterModule(m, module.Resources{Keys: []module.KeyID{module.Key2}, Dials: []module.DialID{module.Dial1}})
	startCoordinator(t, c)
	waitFor(t, func() bool { return dev.KeyImage(module.Key2) != nil })

	if err := dev.Press(module.Key2, 40*time.Millisecond); err != nil {
		t.Fatalf("Press: %v", err)
	}
	if err := dev.Press(module.Key5, 0); err != nil {
		t.Fatalf("Press unowned key: %v", err)
	}
	dev.Rotate(module.Dial1, -3)
	dev.PressDial(module.Dial1, 0)

	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.keys) != 2 || !m.keys[0].Pressed || m.keys[1].Duration != 40*time.Millisecond {
		t.Fatalf("key events = %+v", m.keys)
	}
	if len(m.dials) != 3 || m.dials[0].Delta != -3 || m.dials[2].Type != module.DialRelease {
		t.Fatalf("dial events = %+v", m.dials)
	}
}

func TestOverlayTakesKeysAndDisplay(t *testing.T) {
	dev := device.NewFake()
	c := New(dev, Options{RenderInterval: time.Hour})
	owner := newTestModule("owner")
	ov := overlayModule{newTestModule("overlay")}
	c.RegisterModule(owner, module.Resources{Keys: []module.KeyID{module.Key1}, StripRect: image.Rect(0, 0, 800, 100)})
	c.RegisterModule(ov, module.Resources{})
	startCoordinator(t, c)
	waitFor(t, func() bool { return dev.KeyImage(module.Key1) != nil })

	ov.mu.Lock()
	ov.overlay = true
	ov.mu.Unlock()
	c.Invalidate()
	waitFor(t, func() bool {
		strip, _ := dev.StripImage()
		_, _, _, a := strip.At(0, 0).RGBA()
		return dev.KeyImage(module.Key1) == nil && a == 0
	})

	dev.Press(module.Key1, 0)
	owner.mu.Lock()
	if len(owner.keys) != 0 {
		t.Fatalf("owner received %d events under overlay", len(owner.keys))
	}
	owner.mu.Unlock()
	ov.mu.Lock()
	if len(ov.overlayKeys) != 2 {
		t.Fatalf("overlay received %d events", len(ov.overlayKeys))
	}
	ov.overlay = false
	ov.mu.Unlock()

	c.Invalidate()
	waitFor(t, func() bool { return dev.KeyImage(module.Key1) != nil })
}

func TestSetBrightness(t *testing.T) {
	dev := device.NewFake()
	c := New(dev, Options{})
	if err := c.SetBrightness(42); err != nil {
		t.Fatalf("SetBrightness: %v", err)
	}
	if dev.CurrentBrightness() != 42 {
		t.Fatalf("brightness = %d", dev.CurrentBrightness())
	}
}
