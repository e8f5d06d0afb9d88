package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/lavalamp/ui"
)

// Radius of blobs added from the controls.
const addedBlobRadius = 0.5

// Update processes input for the next frame. The simulation itself is
// stepped by the renderer while drawing.
func (g *Game) Update() {
	g.handleResize()

	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}
	if rl.IsKeyPressed(rl.KeySpace) {
		g.controls.Animate = !g.controls.Animate
	}

	g.handleOverlayKeys()
	g.handleSelectionKeys()
	g.handleCameraInput()
}

// handleResize propagates window size changes to the camera and panels.
func (g *Game) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	if w == g.screenWidth && h == g.screenHeight {
		return
	}
	g.screenWidth = w
	g.screenHeight = h

	g.camera.Resize(w, h)
	g.perfPanel.SetPosition(int32(w)-290, 130)
	g.inspector.SetPosition(int32(w)-290, 130)
}

// handleOverlayKeys drains the key queue into overlay toggles.
func (g *Game) handleOverlayKeys() {
	for key := rl.GetKeyPressed(); key != 0; key = rl.GetKeyPressed() {
		g.overlays.HandleKeyPress(key)
	}
}

// handleSelectionKeys cycles the inspected blob.
func (g *Game) handleSelectionKeys() {
	n := g.lamp.BlobCount()
	if rl.IsKeyPressed(rl.KeyRightBracket) {
		g.selected++
	}
	if rl.IsKeyPressed(rl.KeyLeftBracket) {
		g.selected--
	}
	g.selected = wrapIndex(g.selected, n)
}

// handleCameraInput orbits on left drag and zooms on wheel. Drags that
// start on the control panel belong to the panel.
func (g *Game) handleCameraInput() {
	mouse := rl.GetMousePosition()
	overPanel := g.overlays.IsEnabled(ui.OverlayControls) && g.panel.Contains(mouse.X, mouse.Y)

	if rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
		g.dragging = !overPanel
	}
	if rl.IsMouseButtonReleased(rl.MouseButtonLeft) {
		g.dragging = false
	}
	if g.dragging && rl.IsMouseButtonDown(rl.MouseButtonLeft) {
		delta := rl.GetMouseDelta()
		g.camera.Orbit(delta.X, delta.Y)
	}

	if wheel := rl.GetMouseWheelMove(); wheel != 0 && !overPanel {
		g.camera.ZoomBy(wheel)
	}

	if rl.IsKeyPressed(rl.KeyHome) {
		g.camera.Reset()
	}
}

// applyActions carries out control panel button presses.
func (g *Game) applyActions(a ui.ControlActions) {
	if a.AddBlob {
		g.lamp.AddBlob(g.addedBlobPosition(), addedBlobRadius)
		g.selected = g.lamp.BlobCount() - 1
	}
	if a.RemoveBlob {
		g.lamp.RemoveBlob()
	}
	if a.Reinitialize {
		g.lamp.Initialize(g.cfg.Lamp.InitialBlobs)
	}
	if a.ResetCamera && g.camera != nil {
		g.camera.Reset()
	}
	g.selected = wrapIndex(g.selected, g.lamp.BlobCount())
}

// wrapIndex folds i into [0, n), or 0 when n is 0.
func wrapIndex(i, n int) int {
	if n <= 0 {
		return 0
	}
	i %= n
	if i < 0 {
		i += n
	}
	return i
}

// addedBlobPosition places new blobs on the axis just above the heater.
func (g *Game) addedBlobPosition() mgl32.Vec3 {
	return mgl32.Vec3{0, g.lamp.BaseHeight() + 1, 0}
}
