// Package game wires the lamp simulation, renderer, UI and telemetry into
// a graphical or headless application.
package game

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/lavalamp/camera"
	"github.com/pthm-cable/lavalamp/config"
	"github.com/pthm-cable/lavalamp/gpu"
	"github.com/pthm-cable/lavalamp/lamp"
	"github.com/pthm-cable/lavalamp/renderer"
	"github.com/pthm-cable/lavalamp/telemetry"
	"github.com/pthm-cable/lavalamp/ui"
)

// DT is the fixed headless step in seconds.
const DT = 1.0 / 60.0

// Options configures a Game.
type Options struct {
	Config         *config.Config // nil = config.Cfg()
	Seed           int64
	LogStats       bool
	StatsWindowSec float64 // 0 = config
	SnapshotDir    string
	LoadSnapshot   string // Snapshot file to start from
	OutputDir      string
	Headless       bool
	StepsPerUpdate int

	// StatsCallback receives every flushed telemetry window.
	StatsCallback func(telemetry.WindowStats)
}

// Game holds the complete application state.
type Game struct {
	cfg     *config.Config
	lamp    *lamp.Lamp
	rngSeed int64

	tick           int32
	headless       bool
	stepsPerUpdate int

	// Rendering (graphical mode only)
	device    *gpu.Device
	renderer  *renderer.Renderer
	resources *renderer.RenderResources
	program   *gpu.Program
	meshes    []*gpu.Mesh
	camera    *camera.Camera

	// UI
	controls  ui.Controls
	panel     *ui.ControlPanel
	hud       *ui.HUD
	perfPanel *ui.PerfPanel
	inspector *ui.Inspector
	overlays  *ui.OverlayRegistry
	selected  int
	dragging  bool

	screenWidth, screenHeight float32

	// Telemetry
	collector        *telemetry.Collector
	perfCollector    *telemetry.PerfCollector
	bookmarkDetector *telemetry.BookmarkDetector
	outputManager    *telemetry.OutputManager
	logStats         bool
	snapshotDir      string
	statsCallback    func(telemetry.WindowStats)
}

// NewGameWithOptions creates a game. In graphical mode the window and GL
// context must already exist.
func NewGameWithOptions(opts Options) (*Game, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Cfg()
	}

	steps := opts.StepsPerUpdate
	if steps < 1 {
		steps = 1
	}

	g := &Game{
		cfg:            cfg,
		lamp:           lamp.New(cfg, opts.Seed),
		rngSeed:        opts.Seed,
		headless:       opts.Headless,
		stepsPerUpdate: steps,
		logStats:       opts.LogStats,
		snapshotDir:    opts.SnapshotDir,
		statsCallback:  opts.StatsCallback,
		screenWidth:    cfg.Derived.ScreenW32,
		screenHeight:   cfg.Derived.ScreenH32,
		controls: ui.Controls{
			Show:       true,
			Animate:    true,
			HeaterTemp: float32(cfg.Lamp.HeaterTemp),
			Threshold:  float32(cfg.Lamp.Threshold),
		},
	}
	g.lamp.Initialize(cfg.Lamp.InitialBlobs)

	if opts.LoadSnapshot != "" {
		if err := g.loadSnapshot(opts.LoadSnapshot); err != nil {
			return nil, err
		}
	}

	if err := g.initTelemetry(opts); err != nil {
		return nil, err
	}

	if !opts.Headless {
		g.initGraphics()
	}

	return g, nil
}

// initTelemetry sets up stats windows, perf timing and optional CSV output.
func (g *Game) initTelemetry(opts Options) error {
	cfg := g.cfg

	window := opts.StatsWindowSec
	if window <= 0 {
		window = cfg.Telemetry.StatsWindow
	}
	tickDT := float32(DT)
	if !opts.Headless && cfg.Screen.TargetFPS > 0 {
		tickDT = 1 / float32(cfg.Screen.TargetFPS)
	}

	g.collector = telemetry.NewCollector(window, tickDT, cfg.Render.MaxBlobs)
	g.perfCollector = telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow)
	g.bookmarkDetector = telemetry.NewBookmarkDetector(cfg.Telemetry.BookmarkHistory)

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return err
	}
	g.outputManager = om
	if err := om.WriteConfig(cfg); err != nil {
		om.Close()
		return fmt.Errorf("writing config snapshot: %w", err)
	}
	if g.snapshotDir == "" && om != nil {
		g.snapshotDir = om.SnapshotDir()
	}
	return nil
}

// loadSnapshot restores lamp state from a snapshot file.
func (g *Game) loadSnapshot(path string) error {
	snap, err := telemetry.LoadSnapshot(path)
	if err != nil {
		return err
	}
	if err := snap.Apply(g.lamp); err != nil {
		return fmt.Errorf("applying snapshot %s: %w", path, err)
	}
	g.tick = snap.Tick
	g.controls.HeaterTemp = snap.HeaterTemp
	g.controls.Threshold = snap.Threshold
	g.controls.Clamp()

	slog.Info("snapshot loaded", "path", path, "tick", snap.Tick, "blobs", len(snap.Blobs))
	return nil
}

// Lamp returns the simulation.
func (g *Game) Lamp() *lamp.Lamp {
	return g.lamp
}

// Tick returns the number of simulation steps taken.
func (g *Game) Tick() int32 {
	return g.tick
}

// Unload releases GPU resources and closes output files.
func (g *Game) Unload() {
	if g.renderer != nil {
		g.renderer.Release()
	}
	for _, m := range g.meshes {
		m.Unload()
	}
	if g.program != nil {
		g.program.Unload()
	}
	if err := g.outputManager.Close(); err != nil {
		slog.Error("failed to close output", "error", err)
	}
}
