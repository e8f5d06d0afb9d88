package game

import (
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/lavalamp/camera"
	"github.com/pthm-cable/lavalamp/geometry"
	"github.com/pthm-cable/lavalamp/gpu"
	"github.com/pthm-cable/lavalamp/renderer"
	"github.com/pthm-cable/lavalamp/ui"
)

// raylibWindow reports the default framebuffer size in pixels.
type raylibWindow struct{}

func (raylibWindow) FramebufferSize() (int, int) {
	return int(rl.GetRenderWidth()), int(rl.GetRenderHeight())
}

// initGraphics creates the renderer, GPU resources, camera and UI.
// A shader that fails to load leaves the lamp hidden rather than aborting.
func (g *Game) initGraphics() {
	cfg := g.cfg

	g.device = gpu.NewDevice()

	opts := renderer.OptionsFromConfig(cfg)
	opts.Recorder = g.perfCollector
	g.renderer = renderer.New(g.device, g.lamp, renderer.ClockFunc(rl.GetTime), opts)

	g.resources = &renderer.RenderResources{}
	prog, err := gpu.LoadProgram(cfg.Render.VertexShader, cfg.Render.FragmentShader)
	if err != nil {
		slog.Warn("lava shader unavailable, lamp will not render", "error", err)
	} else {
		g.program = prog
		g.resources.Program = prog
	}

	container := geometry.NewContainer(cfg.Container)
	metal := gpu.UploadMesh(container.MetalMesh())
	glass := gpu.UploadMesh(container.GlassMesh())
	quad := gpu.UploadMesh(geometry.FullscreenQuad())
	g.meshes = []*gpu.Mesh{metal, glass, quad}
	g.resources.Metal = metal
	g.resources.Glass = glass
	g.resources.Quad = quad

	slog.Info("container uploaded",
		"metal_triangles", metal.TriangleCount(),
		"glass_triangles", glass.TriangleCount(),
	)

	g.screenWidth = float32(rl.GetScreenWidth())
	g.screenHeight = float32(rl.GetScreenHeight())
	g.camera = camera.New(g.screenWidth, g.screenHeight, cfg.Camera)

	g.panel = ui.NewControlPanel(10, 10, 240)
	g.hud = ui.NewHUD()
	g.perfPanel = ui.NewPerfPanel(int32(g.screenWidth)-290, 130)
	g.inspector = ui.NewInspector(int32(g.screenWidth)-290, 130, 280)
	g.overlays = ui.NewOverlayRegistry()
}
