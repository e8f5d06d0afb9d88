// Shader debug tool - renders one lava lamp frame to a PNG file for inspection.
//
// Usage: go run ./cmd/shaderdebug -config config.yaml -settle 10 -out debug.png
package main

import (
	"flag"
	"fmt"
	"math"
	"os"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/lavalamp/camera"
	"github.com/pthm-cable/lavalamp/config"
	"github.com/pthm-cable/lavalamp/geometry"
	"github.com/pthm-cable/lavalamp/gpu"
	"github.com/pthm-cable/lavalamp/lamp"
	"github.com/pthm-cable/lavalamp/renderer"
)

// textureWindow reports the offscreen target size to the renderer.
type textureWindow struct{ w, h int }

func (t textureWindow) FramebufferSize() (int, int) { return t.w, t.h }

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	outPath := flag.String("out", "debug.png", "Output PNG path")
	width := flag.Int("width", 512, "Render width")
	height := flag.Int("height", 768, "Render height")
	seed := flag.Int64("seed", 1, "RNG seed")
	settle := flag.Float64("settle", 0, "Simulated seconds to run before rendering")
	yaw := flag.Float64("yaw", 0, "Extra camera yaw in degrees")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize raylib with hidden window
	rl.SetConfigFlags(rl.FlagWindowHidden)
	rl.InitWindow(int32(*width), int32(*height), "Shader Debug")
	defer rl.CloseWindow()

	if err := gpu.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load OpenGL: %v\n", err)
		os.Exit(1)
	}

	prog, err := gpu.LoadProgram(cfg.Render.VertexShader, cfg.Render.FragmentShader)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load shader: %v\n", err)
		os.Exit(1)
	}
	defer prog.Unload()

	l := lamp.New(cfg, *seed)
	l.Initialize(cfg.Lamp.InitialBlobs)
	const dt = float32(1.0 / 60.0)
	for t := 0.0; t < *settle; t += float64(dt) {
		l.Update(dt)
	}

	container := geometry.NewContainer(cfg.Container)
	metal := gpu.UploadMesh(container.MetalMesh())
	glass := gpu.UploadMesh(container.GlassMesh())
	quad := gpu.UploadMesh(geometry.FullscreenQuad())
	defer metal.Unload()
	defer glass.Unload()
	defer quad.Unload()
	res := &renderer.RenderResources{Program: prog, Metal: metal, Glass: glass, Quad: quad}

	cam := camera.New(float32(*width), float32(*height), cfg.Camera)
	cam.Yaw += float32(*yaw * math.Pi / 180)

	r := renderer.New(gpu.NewDevice(), l, renderer.ClockFunc(rl.GetTime), renderer.OptionsFromConfig(cfg))
	defer r.Release()

	target := rl.LoadRenderTexture(int32(*width), int32(*height))
	defer rl.UnloadRenderTexture(target)

	// Render the lamp into the texture; the renderer rebinds whatever
	// framebuffer is current when it finishes
	rl.BeginTextureMode(target)
	rl.ClearBackground(rl.Color{R: 12, G: 10, B: 16, A: 255})
	rl.DrawRenderBatchActive()
	r.RenderLavaLamp(res, textureWindow{w: *width, h: *height}, renderer.FrameParams{
		View:       cam.View(),
		Proj:       cam.Projection(),
		Show:       true,
		Threshold:  l.Threshold(),
		HeaterTemp: l.HeaterTemperature(),
		Gravity:    l.Gravity(),
	})
	rl.EndTextureMode()

	// Get image from texture and flip it (OpenGL convention)
	img := rl.LoadImageFromTexture(target.Texture)
	rl.ImageFlipVertical(img)

	success := rl.ExportImage(*img, *outPath)
	rl.UnloadImage(img)

	if success {
		fmt.Printf("Lamp rendered to: %s (%dx%d, %d blobs, %d drawn)\n",
			*outPath, *width, *height, l.BlobCount(), r.UploadedBlobs())
	} else {
		fmt.Fprintf(os.Stderr, "Failed to export image\n")
		os.Exit(1)
	}
}
