package main

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
	gui "github.com/gen2brain/raylib-go/raygui"

	"github.com/pthm-cable/nebula/orb"
	"github.com/pthm-cable/nebula/shapes"
)

const (
	panelX      = 12
	panelY      = 12
	panelWidth  = 270
	buttonW     = 125
	buttonH     = 26
	buttonGap   = 8
	sectionGap  = 14
	labelSize   = 14
	headingSize = 16
)

var panelStates = []orb.State{orb.Idle, orb.Listening, orb.Processing, orb.Speaking}

// panel is the raygui control overlay.
type panel struct {
	d *demo
}

func newPanel(d *demo) *panel {
	return &panel{d: d}
}

func (p *panel) draw() {
	d := p.d
	x := float32(panelX)
	y := float32(panelY)

	rl.DrawRectangle(panelX-6, panelY-6, panelWidth, 330, rl.Fade(rl.Black, 0.55))

	rl.DrawText("State", int32(x), int32(y), headingSize, rl.RayWhite)
	y += 22
	for i, s := range panelStates {
		bx := x + float32(i%2)*(buttonW+buttonGap)
		by := y + float32(i/2)*(buttonH+buttonGap)
		if gui.Button(rl.Rectangle{X: bx, Y: by, Width: buttonW, Height: buttonH}, marker(s == d.orb.State(), s.String())) {
			d.setState(s)
		}
	}
	y += 2*(buttonH+buttonGap) + sectionGap

	rl.DrawText("Shape override", int32(x), int32(y), headingSize, rl.RayWhite)
	y += 22
	for i, k := range shapes.Kinds {
		bx := x + float32(i%2)*(buttonW+buttonGap)
		by := y + float32(i/2)*(buttonH+buttonGap)
		if gui.Button(rl.Rectangle{X: bx, Y: by, Width: buttonW, Height: buttonH}, k.String()) {
			d.setShape(k)
		}
	}
	// Sixth slot clears the override.
	if gui.Button(rl.Rectangle{X: x + buttonW + buttonGap, Y: y + 2*(buttonH+buttonGap), Width: buttonW, Height: buttonH}, "auto") {
		d.clearShape()
	}
	y += 3*(buttonH+buttonGap) + sectionGap

	d.useVoice = gui.CheckBox(rl.Rectangle{X: x, Y: y, Width: 18, Height: 18}, "voice drives audio while speaking", d.useVoice)
	y += 28

	rl.DrawText("Audio level", int32(x), int32(y), labelSize, rl.LightGray)
	y += 18
	d.manualLevel = gui.SliderBar(rl.Rectangle{X: x, Y: y, Width: panelWidth - 70, Height: 18}, "", "", d.manualLevel, 0, 1)
	level := d.orb.Snapshot().AudioLevel
	rl.DrawText(fmt.Sprintf("%.2f", level), int32(x+panelWidth-62), int32(y+2), labelSize, rl.LightGray)

	rl.DrawFPS(int32(rl.GetScreenWidth())-90, 10)
}

func marker(active bool, label string) string {
	if active {
		return "> " + label
	}
	return label
}
