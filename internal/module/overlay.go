package module

import "image"

// OverlayProvider is implemented by modules that can take over the whole
// display, such as the sleep blanker.
type OverlayProvider interface {
	// IsOverlayActive returns true while the overlay owns the display.
	IsOverlayActive() bool

	// RenderOverlayKeys returns images for every key while the overlay is
	// active. Keys missing from the map are cleared.
	RenderOverlayKeys() map[KeyID]image.Image

	// RenderOverlayStrip returns the full touch strip image, or nil for a
	// blank strip.
	RenderOverlayStrip() image.Image

	// HandleOverlayKey receives every key event while the overlay is
	// active, whichever module owns the key.
	HandleOverlayKey(id KeyID, event KeyEvent) error
}
