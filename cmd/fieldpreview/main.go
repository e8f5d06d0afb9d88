// Density field preview tool - interactive slice through the lava lamp's
// metaball field with sliders.
//
// Usage: go run ./cmd/fieldpreview -config config.yaml
package main

import (
	"flag"
	"fmt"
	"image/color"
	"log"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/lavalamp/config"
	"github.com/pthm-cable/lavalamp/lamp"
)

const (
	windowWidth  = 900
	windowHeight = 720
	gridW        = 160
	gridH        = 320
	previewW     = 320
	previewH     = 640
	panelWidth   = windowWidth - previewW - 40
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	seed := flag.Int64("seed", 1, "RNG seed")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	rl.InitWindow(windowWidth, windowHeight, "Lava Lamp Field Preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(30)

	l := lamp.New(cfg, *seed)
	l.Initialize(cfg.Lamp.InitialBlobs)

	params := SliceParams{Threshold: l.Threshold()}
	heater := l.HeaterTemperature()

	grid := make([]float32, gridW*gridH)
	pixels := make([]color.RGBA, gridW*gridH)
	img := rl.GenImageColor(gridW, gridH, rl.Black)
	texture := rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	defer rl.UnloadTexture(texture)

	animating := false
	var peak float32

	for !rl.WindowShouldClose() {
		if animating {
			dt := rl.GetFrameTime()
			if dt > float32(cfg.Render.MaxDT) {
				dt = float32(cfg.Render.MaxDT)
			}
			l.SetHeaterTemperature(heater)
			l.SetThreshold(params.Threshold)
			l.Update(dt)
		}

		peak = sampleSlice(l, grid, gridW, gridH, params)
		for i, v := range grid {
			pixels[i] = densityColor(v, params.Threshold)
		}
		rl.UpdateTexture(texture, pixels)

		rl.BeginDrawing()
		rl.ClearBackground(rl.Color{R: 20, G: 20, B: 24, A: 255})

		rl.DrawTexturePro(
			texture,
			rl.Rectangle{X: 0, Y: 0, Width: gridW, Height: gridH},
			rl.Rectangle{X: 10, Y: 10, Width: previewW, Height: previewH},
			rl.Vector2{},
			0,
			rl.White,
		)
		rl.DrawRectangleLines(10, 10, previewW, previewH, rl.DarkGray)

		statsY := int32(previewH + 25)
		rl.DrawText(fmt.Sprintf("Peak: %.2f  Inside: %.1f%%", peak, insideFraction(grid, params.Threshold)*100), 15, statsY, 16, rl.LightGray)
		rl.DrawText(fmt.Sprintf("Time: %.1f  Blobs: %d  Merges: %d  Splits: %d",
			l.SimulationTime(), l.BlobCount(), l.MergeCount(), l.SplitCount()), 15, statsY+20, 16, rl.LightGray)

		panelX := float32(previewW + 30)
		panelY := float32(10)

		rl.DrawText("Field Slice", int32(panelX), int32(panelY), 20, rl.RayWhite)
		panelY += 35

		xMin, xMax, _, _ := sliceBounds(l)
		rl.DrawText("Slice depth (z)", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		params.Z = gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"", "",
			params.Z, xMin, xMax,
		)
		rl.DrawText(fmt.Sprintf("%.2f", params.Z), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.LightGray)
		panelY += 35

		rl.DrawText("Threshold (isosurface level)", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		params.Threshold = gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"", "",
			params.Threshold, 0.3, 3.0,
		)
		rl.DrawText(fmt.Sprintf("%.2f", params.Threshold), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.LightGray)
		panelY += 35

		rl.DrawText("Heater temperature", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		heater = gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"", "",
			heater, 20, 200,
		)
		rl.DrawText(fmt.Sprintf("%.0f", heater), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.LightGray)
		panelY += 45

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, toggleText(animating, "Stop", "Animate")) {
			animating = !animating
		}
		if gui.Button(rl.Rectangle{X: panelX + 130, Y: panelY, Width: 120, Height: 30}, "Reinitialize") {
			l.Initialize(cfg.Lamp.InitialBlobs)
		}
		panelY += 45

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, "Add Blob") {
			l.AddBlob(mgl32.Vec3{0, l.BaseHeight() + 1, 0}, 0.5)
		}
		if gui.Button(rl.Rectangle{X: panelX + 130, Y: panelY, Width: 120, Height: 30}, "Remove Blob") {
			l.RemoveBlob()
		}
		panelY += 55

		rl.DrawText("YAML Config:", int32(panelX), int32(panelY), 16, rl.RayWhite)
		panelY += 25
		yamlText := fmt.Sprintf("lamp:\n  heater_temp: %.1f\n  threshold: %.2f", heater, params.Threshold)
		rl.DrawText(yamlText, int32(panelX), int32(panelY), 14, rl.Gray)

		rl.DrawText("Press C to copy YAML to clipboard", int32(panelX), int32(windowHeight-30), 12, rl.DarkGray)
		if rl.IsKeyPressed(rl.KeyC) {
			rl.SetClipboardText(yamlText)
		}

		rl.EndDrawing()
	}
}

func toggleText(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}
