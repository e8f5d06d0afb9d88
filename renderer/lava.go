package renderer

import (
	"log/slog"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/lavalamp/config"
)

// Phase names reported to a PhaseRecorder, in execution order.
const (
	PhaseSimulate       = "simulate"
	PhaseUniforms       = "uniforms"
	PhaseDepthPrepass   = "depth_prepass"
	PhaseRaymarch       = "raymarch"
	PhaseMetalComposite = "metal_composite"
	PhaseGlassComposite = "glass_composite"
	PhaseRestore        = "restore"
)

// Simulation is the blob state the renderer drives and reads.
// *lamp.Lamp implements it.
type Simulation interface {
	Update(dt float32)
	SetThreshold(t float32)
	SetHeaterTemperature(t float32)
	SetGravity(g float32)

	BlobCount() int
	BlobPositions() []mgl32.Vec4
	BlobRadii() []float32
	BlobBlobbiness() []float32
	BlobColors() []mgl32.Vec3

	Radius() float32
	TopRadius() float32
	Height() float32
	BaseHeight() float32
	SimulationTime() float32
}

// FrameParams are the per-frame inputs from the application.
type FrameParams struct {
	View, Proj mgl32.Mat4
	Animate    bool
	Show       bool
	Threshold  float32
	HeaterTemp float32
	Gravity    float32
}

// Options configure a Renderer.
type Options struct {
	MaxBlobs      int     // Capacity of the shader's blob arrays
	MaxDT         float32 // Ceiling on the simulation step per frame
	BackDepth     bool    // Render the back-face depth target
	RadiusPadding float32
	LightPos      mgl32.Vec3
	LightColor    mgl32.Vec3
	AmbientColor  mgl32.Vec3

	Logger   *slog.Logger
	Recorder PhaseRecorder
}

// OptionsFromConfig reads renderer options from the render section.
func OptionsFromConfig(cfg *config.Config) Options {
	rc := cfg.Render
	return Options{
		MaxBlobs:      rc.MaxBlobs,
		MaxDT:         cfg.Derived.MaxDT32,
		BackDepth:     rc.BackDepth,
		RadiusPadding: float32(rc.RadiusPadding),
		LightPos:      vec3(rc.LightPos),
		LightColor:    vec3(rc.LightColor),
		AmbientColor:  vec3(rc.AmbientColor),
	}
}

func vec3(v [3]float64) mgl32.Vec3 {
	return mgl32.Vec3{float32(v[0]), float32(v[1]), float32(v[2])}
}

// Renderer draws one lava lamp per frame.
type Renderer struct {
	dev     Device
	sim     Simulation
	clock   Clock
	targets *DepthTargets
	opts    Options
	logger  *slog.Logger

	lastTime    float64
	hasLastTime bool
	uploaded    int // Blobs uploaded in the last frame
}

// New creates a renderer for sim. No GPU objects are created until the
// first visible frame.
func New(dev Device, sim Simulation, clock Clock, opts Options) *Renderer {
	if opts.MaxBlobs < 1 {
		opts.MaxBlobs = 16
	}
	if opts.MaxDT <= 0 {
		opts.MaxDT = 0.05
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{
		dev:     dev,
		sim:     sim,
		clock:   clock,
		targets: NewDepthTargets(dev, logger),
		opts:    opts,
		logger:  logger,
	}
}

// Targets exposes the depth target cache.
func (r *Renderer) Targets() *DepthTargets { return r.targets }

// UploadedBlobs returns how many blobs the last visible frame sent to the shader.
func (r *Renderer) UploadedBlobs() int { return r.uploaded }

// SetRecorder replaces the phase recorder. nil disables recording.
func (r *Renderer) SetRecorder(rec PhaseRecorder) { r.opts.Recorder = rec }

func (r *Renderer) phase(name string) {
	if r.opts.Recorder != nil {
		r.opts.Recorder.StartPhase(name)
	}
}

// RenderLavaLamp runs the full pass sequence. When p.Show is false it
// returns without touching the device or the simulation. Pipeline state is
// restored to what the caller had bound.
func (r *Renderer) RenderLavaLamp(res *RenderResources, win Window, p FrameParams) {
	if !p.Show || res == nil || res.Program == nil {
		return
	}

	saved := r.dev.Snapshot()

	w, h := win.FramebufferSize()
	r.targets.Ensure(w, h)

	r.phase(PhaseSimulate)
	r.sim.SetThreshold(p.Threshold)
	r.sim.SetHeaterTemperature(p.HeaterTemp)
	r.sim.SetGravity(p.Gravity)
	r.step(p.Animate)

	r.phase(PhaseUniforms)
	prog := res.Program
	r.dev.UseProgram(prog.ID())
	r.uploadUniforms(prog, p, w, h)

	r.phase(PhaseDepthPrepass)
	r.depthPrepass(res, saved.Framebuffer)

	r.phase(PhaseRaymarch)
	r.raymarch(res)

	r.phase(PhaseMetalComposite)
	r.dev.SetDepthFunc(DepthLEqual)
	r.dev.SetDepthMask(false)
	prog.SetInt(UniformRenderMode, ModeMetal)
	draw(res.Metal)

	r.phase(PhaseGlassComposite)
	r.dev.SetBlend(true)
	r.dev.SetBlendFunc(BlendSrcAlpha, BlendOneMinusSrcAlpha)
	prog.SetInt(UniformRenderMode, ModeGlass)
	draw(res.Glass)

	r.phase(PhaseRestore)
	r.dev.Restore(saved)
}

// step advances the simulation by the clamped wall-clock delta. The first
// animated frame only records the time.
func (r *Renderer) step(animate bool) {
	if !animate {
		// Resume without a jump when animation is re-enabled
		r.hasLastTime = false
		return
	}
	now := r.clock.Now()
	if !r.hasLastTime {
		r.lastTime = now
		r.hasLastTime = true
		return
	}
	dt := float32(now - r.lastTime)
	r.lastTime = now
	if dt > r.opts.MaxDT {
		dt = r.opts.MaxDT
	}
	r.sim.Update(dt)
}

func (r *Renderer) uploadUniforms(prog Program, p FrameParams, w, h int) {
	uploadCamera(prog, p.View, p.Proj)

	prog.SetFloat(UniformTime, r.sim.SimulationTime())
	prog.SetVec2(UniformResolution, mgl32.Vec2{float32(w), float32(h)})

	radius := r.sim.Radius()
	prog.SetFloat(UniformLampRadius, radius)
	prog.SetFloat(UniformLampTopRadius, r.sim.TopRadius())
	prog.SetFloat(UniformLampHeight, r.sim.Height())
	prog.SetFloat(UniformLampBaseHeight, r.sim.BaseHeight())
	prog.SetFloat(UniformThreshold, p.Threshold)

	pad := r.opts.RadiusPadding
	prog.SetFloat(UniformRadiusPadding, float32(math.Max(float64(pad), float64(pad*radius)))+pad)

	prog.SetVec3(UniformLightPos, r.opts.LightPos)
	prog.SetVec3(UniformLightColor, r.opts.LightColor)
	prog.SetVec3(UniformAmbientColor, r.opts.AmbientColor)

	r.uploaded = uploadBlobs(prog, r.sim, r.opts.MaxBlobs)
}

// depthPrepass writes container depth into the front and back targets and
// the metal depth into the caller's framebuffer.
func (r *Renderer) depthPrepass(res *RenderResources, mainFB Handle) {
	dev := r.dev
	dev.SetColorMask(false)
	dev.SetDepthTest(true)
	dev.SetDepthMask(true)
	dev.SetDepthFunc(DepthLess)
	dev.SetBlend(false)
	res.Program.SetInt(UniformRenderMode, ModeMetal)

	if fb, _ := r.targets.Front(); fb != 0 {
		dev.BindFramebuffer(fb)
		dev.ClearDepth()
		dev.SetCull(true, FaceBack)
		draw(res.Metal)
		draw(res.Glass)
	}

	if fb, _ := r.targets.Back(); r.opts.BackDepth && fb != 0 {
		dev.BindFramebuffer(fb)
		dev.ClearDepth()
		dev.SetCull(true, FaceFront)
		draw(res.Metal)
		draw(res.Glass)
	}

	dev.BindFramebuffer(mainFB)
	dev.SetCull(false, FaceBack)
	draw(res.Metal)
}

// raymarch draws the fullscreen quad, sampling both depth targets.
func (r *Renderer) raymarch(res *RenderResources) {
	dev := r.dev
	prog := res.Program

	dev.SetColorMask(true)
	dev.SetDepthFunc(DepthLess)
	dev.SetDepthMask(true)

	_, front := r.targets.Front()
	_, back := r.targets.Back()
	dev.BindTexture(unitDepthFront, front)
	dev.BindTexture(unitDepthBack, back)
	prog.SetInt(UniformDepthFront, unitDepthFront)
	prog.SetInt(UniformDepthBack, unitDepthBack)
	useBack := int32(0)
	if r.opts.BackDepth {
		useBack = 1
	}
	prog.SetInt(UniformUseBackDepth, useBack)

	prog.SetInt(UniformRenderMode, ModeMetaball)
	prog.SetInt(UniformIsFullscreenQuad, 1)
	draw(res.Quad)
	prog.SetInt(UniformIsFullscreenQuad, 0)
}

func draw(m Mesh) {
	if m != nil {
		m.Draw()
	}
}

// Release frees the depth targets and fallback texture.
func (r *Renderer) Release() {
	r.targets.Release()
}
