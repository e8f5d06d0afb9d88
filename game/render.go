package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/lavalamp/renderer"
	"github.com/pthm-cable/lavalamp/telemetry"
	"github.com/pthm-cable/lavalamp/ui"
)

var backgroundColor = rl.Color{R: 12, G: 10, B: 16, A: 255}

// Draw renders one frame: the lamp through the GL renderer, then raygui
// controls and readouts on top.
func (g *Game) Draw() {
	g.perfCollector.RecordFrame()
	g.perfCollector.StartTick()

	rl.BeginDrawing()
	rl.ClearBackground(backgroundColor)

	// The renderer talks to GL directly; anything raylib batched must land first
	rl.DrawRenderBatchActive()

	before := g.lamp.SimulationTime()
	g.renderer.RenderLavaLamp(g.resources, raylibWindow{}, g.frameParams())
	if g.lamp.SimulationTime() != before {
		g.tick++
	}

	g.perfCollector.StartPhase(telemetry.PhaseUI)
	actions := g.drawUI()

	rl.EndDrawing()

	g.applyActions(actions)

	g.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	g.flushTelemetry()

	g.perfCollector.EndTick()
}

// frameParams collects the per-frame renderer inputs.
func (g *Game) frameParams() renderer.FrameParams {
	return renderer.FrameParams{
		View:       g.camera.View(),
		Proj:       g.camera.Projection(),
		Animate:    g.controls.Animate,
		Show:       g.controls.Show,
		Threshold:  g.controls.Threshold,
		HeaterTemp: g.controls.HeaterTemp,
		Gravity:    g.lamp.Gravity(),
	}
}

// drawUI draws the enabled overlays and returns control panel presses.
func (g *Game) drawUI() ui.ControlActions {
	var actions ui.ControlActions

	if g.overlays.IsEnabled(ui.OverlayControls) {
		actions = g.panel.Draw(&g.controls, g.overlays)
	}

	if g.overlays.IsEnabled(ui.OverlayHUD) {
		g.hud.Draw(ui.HUDData{
			Title:         "Lava Lamp",
			BlobCount:     g.lamp.BlobCount(),
			RenderedBlobs: g.renderer.UploadedBlobs(),
			SimTime:       g.lamp.SimulationTime(),
			Merges:        g.lamp.MergeCount(),
			Splits:        g.lamp.SplitCount(),
			HeaterTemp:    g.controls.HeaterTemp,
			FPS:           rl.GetFPS(),
			Animate:       g.controls.Animate,
			ScreenWidth:   int32(g.screenWidth),
			ScreenHeight:  int32(g.screenHeight),
		})
	}

	if g.overlays.IsEnabled(ui.OverlayPerf) {
		stats := g.perfCollector.Stats()
		g.perfPanel.Draw(ui.PerfPanelData{
			PhaseTimes: stats.PhaseAvg,
			Total:      stats.AvgTickDuration,
			FPS:        stats.FPS,
		}, telemetry.PhaseOrder)
	}

	if g.overlays.IsEnabled(ui.OverlayInspector) {
		g.inspector.Draw(g.inspectorData())
	}

	g.hud.DrawControls(int32(g.screenWidth), int32(g.screenHeight),
		"Drag: orbit | Wheel: zoom | Space: animate | [ ]: select blob | Home: reset view")

	return actions
}

// inspectorData describes the selected blob.
func (g *Game) inspectorData() ui.InspectorData {
	d := ui.InspectorData{
		Index:      g.selected,
		Count:      g.lamp.BlobCount(),
		Ambient:    g.lamp.AmbientTemperature(),
		Heater:     g.lamp.HeaterTemperature(),
		BaseHeight: g.lamp.BaseHeight(),
		Height:     g.lamp.Height(),
	}
	if d.Count == 0 {
		return d
	}
	blobs := g.lamp.Blobs()
	d.Index = wrapIndex(g.selected, len(blobs))
	d.Blob = blobs[d.Index]
	d.Rendered = d.Index < g.cfg.Render.MaxBlobs
	return d
}
