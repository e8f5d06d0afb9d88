package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// Slider limits for the lamp controls.
const (
	HeaterTempMin = 20
	HeaterTempMax = 200
	ThresholdMin  = 0.3
	ThresholdMax  = 3.0
)

// Controls is the user-adjustable lamp state the panel edits in place.
type Controls struct {
	Show       bool
	Animate    bool
	HeaterTemp float32
	Threshold  float32
}

// Clamp keeps slider values inside their limits.
func (c *Controls) Clamp() {
	c.HeaterTemp = clampf(c.HeaterTemp, HeaterTempMin, HeaterTempMax)
	c.Threshold = clampf(c.Threshold, ThresholdMin, ThresholdMax)
}

// ControlActions are one-shot button presses from a single frame.
type ControlActions struct {
	AddBlob      bool
	RemoveBlob   bool
	Reinitialize bool
	ResetCamera  bool
}

// Any reports whether any button was pressed.
func (a ControlActions) Any() bool {
	return a.AddBlob || a.RemoveBlob || a.Reinitialize || a.ResetCamera
}

// ControlPanel renders the left-side lamp controls and overlay legend.
type ControlPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	height   int32
}

// NewControlPanel creates a new control panel.
func NewControlPanel(x, y, width int32) *ControlPanel {
	return &ControlPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
		height:   320,
	}
}

// Bounds returns the screen rectangle the panel occupies.
func (c *ControlPanel) Bounds() rl.Rectangle {
	return rl.Rectangle{X: float32(c.x), Y: float32(c.y), Width: float32(c.width), Height: float32(c.height)}
}

// Contains reports whether a screen point lies on the panel. The app uses it
// to keep slider drags from orbiting the camera.
func (c *ControlPanel) Contains(px, py float32) bool {
	b := c.Bounds()
	return px >= b.X && px < b.X+b.Width && py >= b.Y && py < b.Y+b.Height
}

// Draw renders the panel, applies edits to state and returns button presses.
func (c *ControlPanel) Draw(state *Controls, overlays *OverlayRegistry) ControlActions {
	r := c.renderer
	padding := float32(r.Theme.Padding)
	x := float32(c.x) + padding
	y := float32(c.y) + padding
	w := float32(c.width) - padding*2

	r.DrawPanel(c.x, c.y, c.width, c.height)

	rl.DrawText("Lava Lamp", int32(x), int32(y), 16, rl.White)
	y += 24

	state.Show = gui.CheckBox(rl.Rectangle{X: x, Y: y, Width: 14, Height: 14}, "Show", state.Show)
	state.Animate = gui.CheckBox(rl.Rectangle{X: x + w/2, Y: y, Width: 14, Height: 14}, "Animate", state.Animate)
	y += 26

	rl.DrawText(fmt.Sprintf("Heater: %.0f", state.HeaterTemp), int32(x), int32(y), r.Theme.FontSize, r.Theme.LabelColor)
	y += 16
	state.HeaterTemp = gui.SliderBar(
		rl.Rectangle{X: x + 24, Y: y, Width: w - 56, Height: 16},
		fmt.Sprint(HeaterTempMin), fmt.Sprint(HeaterTempMax),
		state.HeaterTemp, HeaterTempMin, HeaterTempMax,
	)
	y += 26

	rl.DrawText(fmt.Sprintf("Threshold: %.2f", state.Threshold), int32(x), int32(y), r.Theme.FontSize, r.Theme.LabelColor)
	y += 16
	state.Threshold = gui.SliderBar(
		rl.Rectangle{X: x + 24, Y: y, Width: w - 56, Height: 16},
		"0.3", "3.0",
		state.Threshold, ThresholdMin, ThresholdMax,
	)
	y += 30

	state.Clamp()

	var actions ControlActions
	half := (w - padding) / 2
	actions.AddBlob = gui.Button(rl.Rectangle{X: x, Y: y, Width: half, Height: 26}, "Add Blob")
	actions.RemoveBlob = gui.Button(rl.Rectangle{X: x + half + padding, Y: y, Width: half, Height: 26}, "Remove Blob")
	y += 34
	actions.Reinitialize = gui.Button(rl.Rectangle{X: x, Y: y, Width: half, Height: 26}, "Reinitialize")
	actions.ResetCamera = gui.Button(rl.Rectangle{X: x + half + padding, Y: y, Width: half, Height: 26}, "Reset Camera")
	y += 40

	if overlays != nil {
		c.drawLegend(int32(x), int32(y), int32(w), overlays)
	}

	return actions
}

// drawLegend lists overlay toggles with their keys.
func (c *ControlPanel) drawLegend(x, y, width int32, overlays *OverlayRegistry) {
	r := c.renderer
	for _, category := range overlays.Categories() {
		rl.DrawText(categoryLabel(category), x, y, r.Theme.HeaderFontSize, r.Theme.SectionHeader)
		y += r.Theme.LineHeight

		for _, desc := range overlays.ByCategory(category) {
			enabled := overlays.IsEnabled(desc.ID)

			statusColor := rl.Color{R: 80, G: 80, B: 80, A: 255}
			nameColor := r.Theme.LabelColor
			if enabled {
				statusColor = rl.Color{R: 100, G: 200, B: 100, A: 255}
				nameColor = rl.White
			}
			rl.DrawRectangle(x, y+2, 8, 8, statusColor)
			rl.DrawText(desc.Name, x+14, y, r.Theme.FontSize, nameColor)

			if desc.KeyLabel != "" {
				keyText := fmt.Sprintf("[%s]", desc.KeyLabel)
				keyWidth := rl.MeasureText(keyText, r.Theme.FontSize)
				rl.DrawText(keyText, x+width-keyWidth, y, r.Theme.FontSize, rl.Color{R: 150, G: 150, B: 150, A: 255})
			}
			y += r.Theme.LineHeight
		}
		y += 4
	}
}

// categoryLabel returns a display label for a category.
func categoryLabel(cat string) string {
	switch cat {
	case "panels":
		return "Panels"
	case "debug":
		return "Debug"
	default:
		return cat
	}
}

func clampf(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
