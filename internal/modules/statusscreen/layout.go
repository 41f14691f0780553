package statusscreen

import (
	"fmt"
	"image/color"

	"golang.org/x/image/colornames"
)

// Widget names a strip widget.
type Widget int

const (
	WidgetModifiers Widget = iota
	WidgetBattery
	WidgetOutput
	WidgetWPM
	WidgetLayer
)

func (w Widget) String() string {
	switch w {
	case WidgetModifiers:
		return "modifiers"
	case WidgetBattery:
		return "battery"
	case WidgetOutput:
		return "output"
	case WidgetWPM:
		return "wpm"
	case WidgetLayer:
		return "layer"
	default:
		return "unknown"
	}
}

// BatteryStyle selects how peripheral batteries are drawn.
type BatteryStyle int

const (
	BatteryCircles BatteryStyle = iota
	BatteryBar
	BatteryLabel
)

// Disconnected selects what a battery slot shows while its peripheral is
// not connected.
type Disconnected int

const (
	// DisconnectedDash replaces the level with "-".
	DisconnectedDash Disconnected = iota
	// DisconnectedDim keeps the last known level in a muted color.
	DisconnectedDim
	// DisconnectedHide omits the slot; with a single peripheral the whole
	// label is hidden, as it is at level 0.
	DisconnectedHide
)

// Region places a widget on the strip, in pixels from the left edge.
type Region struct {
	Widget Widget
	X0, X1 int
}

// Theme holds a layout's colors.
type Theme struct {
	Background  color.RGBA
	Panel       color.RGBA
	Active      color.RGBA
	Inactive    color.RGBA
	Locked      color.RGBA
	Text        color.RGBA
	Muted       color.RGBA
	ArcTrack    color.RGBA
	ArcFill     color.RGBA
	USB         color.RGBA
	BLE         color.RGBA
	ProfileOpen color.RGBA
}

// Layout is a presentation policy: which widgets appear where, and how
// each draws the shared state.
type Layout struct {
	Name         string
	Regions      []Region
	Battery      BatteryStyle
	Disconnected Disconnected
	// TextModifiers draws text labels even when the OS convention uses
	// symbols.
	TextModifiers bool
	// CompactModifiers shrinks the modifier panel while the output widget
	// shows profile detail.
	CompactModifiers bool
	// WPMBars is the number of meter segments.
	WPMBars int
	Theme   Theme
}

var (
	black      = colornames.Black
	white      = colornames.White
	panelGray  = color.RGBA{28, 28, 30, 255}
	mutedGray  = color.RGBA{90, 90, 96, 255}
	dimGray    = color.RGBA{60, 60, 64, 255}
	yellow     = color.RGBA{255, 204, 0, 255}
	blueTheme  = Theme{black, panelGray, color.RGBA{64, 156, 255, 255}, dimGray, color.RGBA{255, 159, 10, 255}, white, mutedGray, dimGray, color.RGBA{64, 156, 255, 255}, color.RGBA{48, 209, 88, 255}, color.RGBA{64, 156, 255, 255}, yellow}
	greenTheme = Theme{black, panelGray, color.RGBA{48, 209, 88, 255}, dimGray, color.RGBA{255, 214, 10, 255}, white, mutedGray, dimGray, color.RGBA{48, 209, 88, 255}, color.RGBA{48, 209, 88, 255}, color.RGBA{10, 132, 255, 255}, yellow}
	amberTheme = Theme{black, color.RGBA{20, 16, 8, 255}, color.RGBA{255, 176, 0, 255}, color.RGBA{70, 52, 20, 255}, color.RGBA{255, 95, 31, 255}, color.RGBA{255, 214, 150, 255}, color.RGBA{120, 92, 50, 255}, color.RGBA{70, 52, 20, 255}, color.RGBA{255, 176, 0, 255}, color.RGBA{255, 176, 0, 255}, color.RGBA{255, 214, 150, 255}, yellow}
)

var layouts = []Layout{
	{
		Name: "classic",
		Regions: []Region{
			{WidgetLayer, 0, 200}, {WidgetModifiers, 200, 480},
			{WidgetOutput, 480, 640}, {WidgetBattery, 640, 800},
		},
		Battery:      BatteryBar,
		Disconnected: DisconnectedDash,
		Theme:        blueTheme,
	},
	{
		Name: "radii",
		Regions: []Region{
			{WidgetModifiers, 0, 280}, {WidgetBattery, 280, 520},
			{WidgetLayer, 520, 680}, {WidgetOutput, 680, 800},
		},
		Battery:      BatteryCircles,
		Disconnected: DisconnectedHide,
		Theme:        blueTheme,
	},
	{
		Name: "field",
		Regions: []Region{
			{WidgetLayer, 0, 240}, {WidgetModifiers, 240, 560}, {WidgetBattery, 560, 800},
		},
		Battery:       BatteryLabel,
		Disconnected:  DisconnectedDash,
		TextModifiers: true,
		Theme:         amberTheme,
	},
	{
		Name: "operator",
		Regions: []Region{
			{WidgetBattery, 0, 200}, {WidgetOutput, 200, 360},
			{WidgetModifiers, 360, 600}, {WidgetWPM, 600, 800},
		},
		Battery:      BatteryCircles,
		Disconnected: DisconnectedDim,
		WPMBars:      10,
		Theme:        greenTheme,
	},
	{
		Name:         "default",
		Regions:      []Region{{WidgetModifiers, 0, 600}, {WidgetLayer, 600, 800}},
		Battery:      BatteryLabel,
		Disconnected: DisconnectedDash,
		Theme:        blueTheme,
	},
	{
		Name: "rounded_grid",
		Regions: []Region{
			{WidgetModifiers, 0, 260}, {WidgetOutput, 260, 440},
			{WidgetBattery, 440, 640}, {WidgetLayer, 640, 800},
		},
		Battery:          BatteryCircles,
		Disconnected:     DisconnectedDim,
		CompactModifiers: true,
		Theme:            blueTheme,
	},
	{
		Name: "wind_map",
		Regions: []Region{
			{WidgetLayer, 0, 180}, {WidgetModifiers, 180, 440},
			{WidgetWPM, 440, 640}, {WidgetBattery, 640, 800},
		},
		Battery:      BatteryLabel,
		Disconnected: DisconnectedDash,
		WPMBars:      16,
		Theme:        amberTheme,
	},
}

// LayoutNames returns every layout name in cycling order.
func LayoutNames() []string {
	names := make([]string, len(layouts))
	for i, l := range layouts {
		names[i] = l.Name
	}
	return names
}

// LayoutByName looks up a layout.
func LayoutByName(name string) (Layout, error) {
	i := layoutIndex(name)
	if i < 0 {
		return Layout{}, fmt.Errorf("unknown layout %q", name)
	}
	return layouts[i], nil
}

func layoutIndex(name string) int {
	for i, l := range layouts {
		if l.Name == name {
			return i
		}
	}
	return -1
}

// Has reports whether the layout shows w.
func (l Layout) Has(w Widget) bool {
	for _, r := range l.Regions {
		if r.Widget == w {
			return true
		}
	}
	return false
}
