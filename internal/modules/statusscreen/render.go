package statusscreen

import (
	_ "embed"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"math"
	"strings"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/phinze/prospector/internal/modorder"
)

//go:embed icons/command.svg
var iconCommandSVG string

//go:embed icons/option.svg
var iconOptionSVG string

//go:embed icons/control.svg
var iconControlSVG string

//go:embed icons/shift.svg
var iconShiftSVG string

//go:embed icons/shift-locked.svg
var iconShiftLockedSVG string

//go:embed icons/windows.svg
var iconWindowsSVG string

//go:embed icons/usb.svg
var iconUSBSVG string

//go:embed icons/bluetooth.svg
var iconBluetoothSVG string

var modifierIcons = [modorder.Count]string{iconCommandSVG, iconOptionSVG, iconControlSVG, iconShiftSVG}

// faces holds the font faces shared by every layout.
type faces struct {
	large  font.Face
	medium font.Face
	small  font.Face
	key    font.Face
}

func newFaces() (*faces, error) {
	bold, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse bold font: %w", err)
	}
	medium, err := opentype.Parse(gomedium.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse medium font: %w", err)
	}

	f := &faces{}
	for _, fc := range []struct {
		dst  *font.Face
		font *opentype.Font
		size float64
	}{
		{&f.large, bold, 30},
		{&f.medium, medium, 20},
		{&f.small, medium, 14},
		{&f.key, bold, 26},
	} {
		face, err := opentype.NewFace(fc.font, &opentype.FaceOptions{
			Size:    fc.size,
			DPI:     72,
			Hinting: font.HintingFull,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create %.0fpt face: %w", fc.size, err)
		}
		*fc.dst = face
	}
	return f, nil
}

func fillRect(img *image.RGBA, r image.Rectangle, c color.Color) {
	draw.Draw(img, r, &image.Uniform{c}, image.Point{}, draw.Src)
}

func strokeRect(img *image.RGBA, r image.Rectangle, width int, c color.Color) {
	fillRect(img, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+width), c)
	fillRect(img, image.Rect(r.Min.X, r.Max.Y-width, r.Max.X, r.Max.Y), c)
	fillRect(img, image.Rect(r.Min.X, r.Min.Y, r.Min.X+width, r.Max.Y), c)
	fillRect(img, image.Rect(r.Max.X-width, r.Min.Y, r.Max.X, r.Max.Y), c)
}

// drawText draws text with its baseline at y, truncating to maxWidth.
func drawText(img *image.RGBA, text string, x, y int, face font.Face, col color.Color, maxWidth int) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(truncateText(text, face, maxWidth))
}

// drawTextCentered centers text horizontally in r and vertically around
// the face's cap height.
func drawTextCentered(img *image.RGBA, text string, r image.Rectangle, face font.Face, col color.Color) {
	text = truncateText(text, face, r.Dx())
	width := font.MeasureString(face, text).Ceil()
	m := face.Metrics()
	capHeight := (m.Ascent - m.Descent).Ceil()
	x := r.Min.X + (r.Dx()-width)/2
	y := r.Min.Y + (r.Dy()+capHeight)/2
	drawText(img, text, x, y, face, col, 0)
}

// truncateText truncates text to fit within maxWidth, adding ellipsis if needed.
func truncateText(text string, face font.Face, maxWidth int) string {
	if maxWidth <= 0 || font.MeasureString(face, text).Ceil() <= maxWidth {
		return text
	}
	const ellipsis = "..."
	runes := []rune(text)
	for i := len(runes); i > 0; i-- {
		t := string(runes[:i]) + ellipsis
		if font.MeasureString(face, t).Ceil() <= maxWidth {
			return t
		}
	}
	return ellipsis
}

// drawSVG rasterises an icon into r, replacing currentColor with col.
func drawSVG(img *image.RGBA, svg string, r image.Rectangle, col color.Color) {
	cr, cg, cb, _ := col.RGBA()
	svg = strings.ReplaceAll(svg, "currentColor", fmt.Sprintf("#%02x%02x%02x", cr>>8, cg>>8, cb>>8))

	icon, err := oksvg.ReadIconStream(strings.NewReader(svg))
	if err != nil {
		slog.Warn("failed to parse svg icon", "error", err)
		return
	}
	icon.SetTarget(float64(r.Min.X), float64(r.Min.Y), float64(r.Dx()), float64(r.Dy()))

	b := img.Bounds()
	scanner := rasterx.NewScannerGV(b.Dx(), b.Dy(), img, b)
	raster := rasterx.NewDasher(b.Dx(), b.Dy(), scanner)
	icon.Draw(raster, 1.0)
}

// squareIn returns the largest square centered in r, shrunk by pad.
func squareIn(r image.Rectangle, pad int) image.Rectangle {
	side := min(r.Dx(), r.Dy()) - 2*pad
	if side < 0 {
		side = 0
	}
	c := image.Pt(r.Min.X+r.Dx()/2, r.Min.Y+r.Dy()/2)
	return image.Rect(c.X-side/2, c.Y-side/2, c.X-side/2+side, c.Y-side/2+side)
}

func fp(x, y float64) fixed.Point26_6 {
	return fixed.Point26_6{X: fixed.Int26_6(x * 64), Y: fixed.Int26_6(y * 64)}
}

// drawArc strokes a circular arc from startDeg sweeping sweepDeg clockwise,
// with 0 degrees at twelve o'clock.
func drawArc(img *image.RGBA, cx, cy, radius, width, startDeg, sweepDeg float64, col color.Color) {
	if sweepDeg <= 0 {
		return
	}
	b := img.Bounds()
	scanner := rasterx.NewScannerGV(b.Dx(), b.Dy(), img, b)
	stroker := rasterx.NewStroker(b.Dx(), b.Dy(), scanner)
	stroker.SetStroke(fixed.Int26_6(width*64), fixed.Int26_6(4*64), rasterx.RoundCap, rasterx.RoundCap, rasterx.RoundGap, rasterx.ArcClip)
	stroker.SetColor(col)

	steps := max(8, int(sweepDeg/4))
	for i := 0; i <= steps; i++ {
		a := (startDeg + sweepDeg*float64(i)/float64(steps) - 90) * math.Pi / 180
		p := fp(cx+radius*math.Cos(a), cy+radius*math.Sin(a))
		if i == 0 {
			stroker.Start(p)
		} else {
			stroker.Line(p)
		}
	}
	stroker.Stop(false)
	stroker.Draw()
}

// fillCircle draws a solid disc.
func fillCircle(img *image.RGBA, cx, cy, radius float64, col color.Color) {
	b := img.Bounds()
	scanner := rasterx.NewScannerGV(b.Dx(), b.Dy(), img, b)
	filler := rasterx.NewFiller(b.Dx(), b.Dy(), scanner)
	filler.SetColor(col)
	rasterx.AddCircle(cx, cy, radius, filler)
	filler.Draw()
}
