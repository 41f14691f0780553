// Package coordinator manages module lifecycle and routes events to modules.
package coordinator

import (
	"context"
	"image"
	"image/draw"
	"log/slog"
	"sync"
	"time"

	"github.com/phinze/prospector/internal/device"
	"github.com/phinze/prospector/internal/module"
)

// DefaultRenderInterval is the periodic full re-render interval.
const DefaultRenderInterval = 500 * time.Millisecond

// Options configures a Coordinator.
type Options struct {
	RenderInterval time.Duration
	Logger         *slog.Logger
}

// Coordinator manages the lifecycle of modules and routes events to them.
type Coordinator struct {
	device  device.Device
	modules []module.Module

	// Resource tracking
	moduleResources map[module.Module]module.Resources

	// Ownership maps for event routing
	keyOwners  map[module.KeyID]module.Module
	dialOwners map[module.DialID]module.Module

	// Strip compositing
	stripRect image.Rectangle

	// devMu serialises writes to the device across the render loop and
	// brightness changes from other goroutines.
	devMu sync.Mutex

	invalidate chan struct{}
	interval   time.Duration
	logger     *slog.Logger

	// Lifecycle
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// State tracking
	mu sync.RWMutex
	// overlayShown tracks whether the last frame was an overlay, so the
	// first normal frame after it redraws every key.
	overlayShown bool
}

// New creates a new Coordinator for the given device.
func New(dev device.Device, opts Options) *Coordinator {
	if opts.RenderInterval <= 0 {
		opts.RenderInterval = DefaultRenderInterval
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Coordinator{
		device:          dev,
		modules:         make([]module.Module, 0),
		moduleResources: make(map[module.Module]module.Resources),
		keyOwners:       make(map[module.KeyID]module.Module),
		dialOwners:      make(map[module.DialID]module.Module),
		invalidate:      make(chan struct{}, 1),
		interval:        opts.RenderInterval,
		logger:          opts.Logger,
	}
}

// RegisterModule registers a module with its allocated resources.
// Must be called before Start.
func (c *Coordinator) RegisterModule(m module.Module, res module.Resources) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	res.Invalidate = c.Invalidate
	c.moduleResources[m] = res

	for _, key := range res.Keys {
		if prev, ok := c.keyOwners[key]; ok {
			c.logger.Warn("key reassigned", "key", key, "from", prev.ID(), "to", m.ID())
		}
		c.keyOwners[key] = m
	}
	for _, dial := range res.Dials {
		c.dialOwners[dial] = m
	}

	c.modules = append(c.modules, m)
	return nil
}

// Invalidate requests a render as soon as possible. It never blocks.
func (c *Coordinator) Invalidate() {
	select {
	case c.invalidate <- struct{}{}:
	default:
	}
}

// SetBrightness sets the device backlight.
func (c *Coordinator) SetBrightness(percent uint8) error {
	c.devMu.Lock()
	defer c.devMu.Unlock()
	return c.device.SetBrightness(percent)
}

// Start initializes all modules and runs the render loop until ctx is
// cancelled or the device listener fails.
func (c *Coordinator) Start(ctx context.Context) error {
	c.ctx, c.cancel = context.WithCancel(ctx)

	if c.device.GetTouchStripSupported() {
		rect, err := c.device.GetTouchStripImageRectangle()
		if err == nil {
			c.stripRect = rect
		}
	}

	for _, m := range c.modules {
		if err := m.Init(c.ctx, c.resourcesForModule(m)); err != nil {
			return err
		}
		c.logger.Debug("module initialized", "module", m.ID())
	}

	if err := c.setupEventHandlers(); err != nil {
		return err
	}

	// Not in WaitGroup: unblocked by device.Close().
	errChan := make(chan error, 1)
	go func() {
		if err := c.device.Listen(errChan); err != nil {
			select {
			case errChan <- err:
			default:
			}
		}
	}()

	c.wg.Add(1)
	go c.renderLoop()

	select {
	case <-c.ctx.Done():
		return nil
	case err := <-errChan:
		return err
	}
}

// Stop gracefully shuts down all modules.
func (c *Coordinator) Stop() error {
	if c.cancel != nil {
		c.cancel()
	}

	for _, m := range c.modules {
		if err := m.Stop(); err != nil {
			c.logger.Warn("module stop failed", "module", m.ID(), "error", err)
		}
	}

	c.wg.Wait()
	return nil
}

func (c *Coordinator) resourcesForModule(m module.Module) module.Resources {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.moduleResources[m]
}

// activeOverlay returns the first module with an active overlay.
func (c *Coordinator) activeOverlay() module.OverlayProvider {
	for _, m := range c.modules {
		if op, ok := m.(module.OverlayProvider); ok && op.IsOverlayActive() {
			return op
		}
	}
	return nil
}

// setupEventHandlers registers device handlers for every key and owned
// dial. Every key gets a handler so an active overlay can see presses on
// keys no module owns.
func (c *Coordinator) setupEventHandlers() error {
	err := c.device.ForEachKey(func(key module.KeyID) error {
		return c.device.AddKeyHandler(key, func(_ device.Device, k device.Key) error {
			if err := c.routeKey(key, module.KeyEvent{Pressed: true}); err != nil {
				return err
			}
			duration := k.WaitForRelease()
			return c.routeKey(key, module.KeyEvent{Pressed: false, Duration: duration})
		})
	})
	if err != nil {
		return err
	}

	for dialID, m := range c.dialOwners {
		dial, mod := dialID, m
		if err := c.device.AddDialRotateHandler(dial, func(_ device.Device, _ device.Dial, delta int8) error {
			return mod.HandleDial(dial, module.DialEvent{Type: module.DialRotate, Delta: delta})
		}); err != nil {
			return err
		}
		if err := c.device.AddDialSwitchHandler(dial, func(_ device.Device, di device.Dial) error {
			if err := mod.HandleDial(dial, module.DialEvent{Type: module.DialPress}); err != nil {
				return err
			}
			duration := di.WaitForRelease()
			return mod.HandleDial(dial, module.DialEvent{Type: module.DialRelease, Duration: duration})
		}); err != nil {
			return err
		}
	}
	return nil
}

// routeKey sends a key event to the active overlay if there is one, else
// to the key's owner.
func (c *Coordinator) routeKey(key module.KeyID, ev module.KeyEvent) error {
	if op := c.activeOverlay(); op != nil {
		err := op.HandleOverlayKey(key, ev)
		c.Invalidate()
		return err
	}
	c.mu.RLock()
	owner := c.keyOwners[key]
	c.mu.RUnlock()
	if owner == nil {
		return nil
	}
	return owner.HandleKey(key, ev)
}

// renderLoop renders on every tick and on every invalidation.
func (c *Coordinator) renderLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	c.render()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			c.render()
		case <-c.invalidate:
			c.render()
		}
	}
}

// render draws one frame.
func (c *Coordinator) render() {
	c.devMu.Lock()
	defer c.devMu.Unlock()

	if op := c.activeOverlay(); op != nil {
		c.renderOverlay(op)
		c.overlayShown = true
		return
	}
	if c.overlayShown {
		c.overlayShown = false
		c.clearKeys()
	}
	c.renderKeys()
	c.renderStrip()
}

func (c *Coordinator) clearKeys() {
	c.device.ForEachKey(func(key module.KeyID) error {
		return c.device.ClearKey(key)
	})
}

func (c *Coordinator) renderOverlay(op module.OverlayProvider) {
	keys := op.RenderOverlayKeys()
	c.device.ForEachKey(func(key module.KeyID) error {
		if img := keys[key]; img != nil {
			return c.device.SetKeyImage(key, img)
		}
		return c.device.ClearKey(key)
	})

	if c.stripRect.Empty() {
		return
	}
	strip := op.RenderOverlayStrip()
	if strip == nil {
		strip = image.NewRGBA(c.stripRect)
	}
	if err := c.device.SetTouchStripImage(strip); err != nil {
		c.logger.Debug("overlay strip update failed", "error", err)
	}
}

// renderKeys collects key images from all modules and applies them to the device.
func (c *Coordinator) renderKeys() {
	for _, m := range c.modules {
		for keyID, img := range m.RenderKeys() {
			if img == nil {
				continue
			}
			if err := c.device.SetKeyImage(keyID, img); err != nil {
				c.logger.Debug("key update failed", "key", keyID, "error", err)
			}
		}
	}
}

// renderStrip composites strip images from all modules at their allocated
// regions and applies the result to the device.
func (c *Coordinator) renderStrip() {
	if c.stripRect.Empty() {
		return
	}

	composite := image.NewRGBA(c.stripRect)
	drawn := false
	for _, m := range c.modules {
		res := c.resourcesForModule(m)
		if !res.HasStrip() {
			continue
		}
		stripImg := m.RenderStrip()
		if stripImg == nil {
			continue
		}
		draw.Draw(composite, res.StripRect, stripImg, stripImg.Bounds().Min, draw.Over)
		drawn = true
	}
	if !drawn {
		return
	}

	if err := c.device.SetTouchStripImage(composite); err != nil {
		c.logger.Debug("strip update failed", "error", err)
	}
}
