package statusscreen

import (
	"image"
	"image/color"
	"strconv"

	"golang.org/x/image/font"

	"github.com/phinze/prospector/internal/event"
	"github.com/phinze/prospector/internal/modorder"
	"github.com/phinze/prospector/internal/status"
)

// painter draws one frame under one layout.
type painter struct {
	img          *image.RGBA
	layout       Layout
	faces        *faces
	showInactive bool
}

func (p *painter) drawRegion(r Region, f frame) {
	rect := image.Rect(r.X0, 0, r.X1, p.img.Bounds().Dy())
	switch r.Widget {
	case WidgetModifiers:
		p.drawModifiers(rect, f.mods, f.output.Expanded)
	case WidgetBattery:
		p.drawBattery(rect, f.links)
	case WidgetOutput:
		p.drawOutput(rect, f.output)
	case WidgetWPM:
		p.drawWPM(rect, f.wpm, f.layer)
	case WidgetLayer:
		p.drawLayer(rect, f.layer)
	}
}

func (p *painter) modifierColor(slot status.ModifierSlot) color.Color {
	switch slot.State {
	case status.SlotLocked:
		return p.layout.Theme.Locked
	case status.SlotActive:
		return p.layout.Theme.Active
	default:
		return p.layout.Theme.Inactive
	}
}

// drawModifierSlot draws one slot's glyph, icon or label into r. Hidden
// and suppressed inactive slots draw nothing.
func (p *painter) drawModifierSlot(r image.Rectangle, slot status.ModifierSlot, useSymbols bool, face font.Face) {
	if !slot.Visible || (!slot.Lit() && !p.showInactive) {
		return
	}
	col := p.modifierColor(slot)
	switch {
	case slot.State == status.SlotLocked:
		drawSVG(p.img, iconShiftLockedSVG, squareIn(r, r.Dy()/5), col)
	case slot.WindowsIcon:
		drawSVG(p.img, iconWindowsSVG, squareIn(r, r.Dy()/4), col)
	case useSymbols && !p.layout.TextModifiers:
		drawSVG(p.img, modifierIcons[slot.Type], squareIn(r, r.Dy()/5), col)
	default:
		drawTextCentered(p.img, slot.Label, r, face, col)
	}
}

func (p *painter) drawModifiers(r image.Rectangle, v status.ModifierView, outputExpanded bool) {
	if v.Mode == status.ModifiersDisabled {
		return
	}
	panel := r.Inset(6)
	if p.layout.CompactModifiers && outputExpanded {
		// leave room under the panel while profile detail is shown
		panel.Max.Y -= panel.Dy() / 6
	}
	fillRect(p.img, panel, p.layout.Theme.Panel)

	cell := panel.Dx() / modorder.Count
	for i, slot := range v.Slots {
		cr := image.Rect(panel.Min.X+i*cell, panel.Min.Y, panel.Min.X+(i+1)*cell, panel.Max.Y)
		p.drawModifierSlot(cr, slot, v.UseSymbols, p.faces.medium)
	}
}

func (p *painter) drawBattery(r image.Rectangle, links []status.PeripheralLink) {
	switch p.layout.Battery {
	case BatteryCircles:
		p.drawBatteryCircles(r, links)
	case BatteryBar:
		p.drawBatteryBars(r, links)
	default:
		drawTextCentered(p.img, batteryLabel(links, p.layout.Disconnected), r, p.faces.large, p.layout.Theme.Text)
	}
}

func (p *painter) drawBatteryCircles(r image.Rectangle, links []status.PeripheralLink) {
	texts := batteryTexts(links, p.layout.Disconnected)
	if len(texts) == 0 {
		return
	}
	cell := r.Dx() / len(texts)
	radius := float64(min(cell, r.Dy()))/2 - 10
	for i, t := range texts {
		cx := float64(r.Min.X + i*cell + cell/2)
		cy := float64(r.Min.Y + r.Dy()/2)
		drawArc(p.img, cx, cy, radius, 6, 0, 360, p.layout.Theme.ArcTrack)
		fill := p.layout.Theme.ArcFill
		textCol := p.layout.Theme.Text
		if t.Muted || t.Text == "-" {
			fill, textCol = p.layout.Theme.Inactive, p.layout.Theme.Muted
		}
		if t.Text != "-" {
			drawArc(p.img, cx, cy, radius, 6, 0, 360*float64(t.Level)/100, fill)
		}
		cellRect := image.Rect(int(cx-radius), int(cy-radius), int(cx+radius), int(cy+radius))
		drawTextCentered(p.img, t.Text, cellRect, p.faces.small, textCol)
	}
}

func (p *painter) drawBatteryBars(r image.Rectangle, links []status.PeripheralLink) {
	texts := batteryTexts(links, p.layout.Disconnected)
	if len(texts) == 0 {
		return
	}
	inner := r.Inset(10)
	row := inner.Dy() / len(texts)
	for i, t := range texts {
		bar := image.Rect(inner.Min.X, inner.Min.Y+i*row+row/4, inner.Min.X+inner.Dx()*2/3, inner.Min.Y+(i+1)*row-row/4)
		strokeRect(p.img, bar, 2, p.layout.Theme.ArcTrack)
		if t.Text != "-" {
			fillW := (bar.Dx() - 4) * t.Level / 100
			col := p.layout.Theme.ArcFill
			if t.Muted {
				col = p.layout.Theme.Inactive
			}
			fillRect(p.img, image.Rect(bar.Min.X+2, bar.Min.Y+2, bar.Min.X+2+fillW, bar.Max.Y-2), col)
		}
		label := image.Rect(bar.Max.X, bar.Min.Y, inner.Max.X, bar.Max.Y)
		drawTextCentered(p.img, t.Text, label, p.faces.small, p.layout.Theme.Text)
	}
}

func (p *painter) drawOutput(r image.Rectangle, o status.OutputState) {
	inner := r.Inset(8)
	top := image.Rect(inner.Min.X, inner.Min.Y, inner.Max.X, inner.Min.Y+inner.Dy()/2)
	if !o.Expanded {
		top.Max.Y = inner.Max.Y
	}

	half := top.Dx() / 2
	for i, t := range []event.Transport{event.TransportUSB, event.TransportBLE} {
		btn := image.Rect(top.Min.X+i*half+2, top.Min.Y+2, top.Min.X+(i+1)*half-2, top.Max.Y-2)
		col := p.layout.Theme.USB
		icon := iconUSBSVG
		if t == event.TransportBLE {
			col, icon = p.layout.Theme.BLE, iconBluetoothSVG
		}
		if o.Transport == t {
			fillRect(p.img, btn, col)
			if o.Expanded {
				drawTextCentered(p.img, transportLabel(t), btn, p.faces.small, black)
			} else {
				drawSVG(p.img, icon, squareIn(btn, 6), black)
			}
		} else {
			strokeRect(p.img, btn, 2, p.layout.Theme.Inactive)
			drawTextCentered(p.img, transportLabel(t), btn, p.faces.small, p.layout.Theme.Inactive)
		}
	}
	if !o.Expanded {
		return
	}

	bottom := image.Rect(inner.Min.X, top.Max.Y, inner.Max.X, inner.Max.Y)
	mark := image.Rect(bottom.Min.X, bottom.Min.Y, bottom.Min.X+bottom.Dy(), bottom.Max.Y)
	p.drawProfileMark(mark, o)
	label := image.Rect(mark.Max.X, bottom.Min.Y, bottom.Max.X, bottom.Max.Y)
	drawTextCentered(p.img, profileLabel(o.Profile), label, p.faces.medium, p.layout.Theme.Text)
}

func (p *painter) drawProfileMark(r image.Rectangle, o status.OutputState) {
	cx := float64(r.Min.X + r.Dx()/2)
	cy := float64(r.Min.Y + r.Dy()/2)
	radius := float64(r.Dy())/2 - 6
	switch profileMark(o) {
	case MarkFilled:
		fillCircle(p.img, cx, cy, radius, p.layout.Theme.BLE)
	case MarkRing:
		drawArc(p.img, cx, cy, radius, 3, 0, 360, p.layout.Theme.BLE)
	case MarkOpen:
		drawArc(p.img, cx, cy, radius, 3, 0, 270, p.layout.Theme.ProfileOpen)
	default:
		drawArc(p.img, cx, cy, radius, 3, 0, 270, p.layout.Theme.Muted)
	}
}

func (p *painter) drawWPM(r image.Rectangle, wpm int, layer status.LayerState) {
	bars := p.layout.WPMBars
	if bars <= 0 {
		bars = 10
	}
	inner := r.Inset(8)
	meter := image.Rect(inner.Min.X, inner.Min.Y, inner.Max.X, inner.Min.Y+inner.Dy()*3/5)
	active := status.ActiveBars(wpm, bars)
	w := meter.Dx() / bars
	for i := range bars {
		h := meter.Dy() * (i + 1) / bars
		bar := image.Rect(meter.Min.X+i*w+1, meter.Max.Y-h, meter.Min.X+(i+1)*w-1, meter.Max.Y)
		col := p.layout.Theme.Inactive
		if i < active {
			col = p.layout.Theme.Active
		}
		fillRect(p.img, bar, col)
	}

	text := image.Rect(inner.Min.X, meter.Max.Y, inner.Max.X, inner.Max.Y)
	half := text.Dx() / 2
	drawTextCentered(p.img, strconv.Itoa(wpm)+" WPM", image.Rect(text.Min.X, text.Min.Y, text.Min.X+half, text.Max.Y), p.faces.small, p.layout.Theme.Text)
	if !p.layout.Has(WidgetLayer) {
		drawTextCentered(p.img, layer.Name, image.Rect(text.Min.X+half, text.Min.Y, text.Max.X, text.Max.Y), p.faces.small, p.layout.Theme.Muted)
	}
}

func (p *painter) drawLayer(r image.Rectangle, l status.LayerState) {
	drawTextCentered(p.img, l.Name, r.Inset(8), p.faces.large, p.layout.Theme.Text)
}
