package renderer

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/lavalamp/config"
	"github.com/pthm-cable/lavalamp/lamp"
)

// fakeDevice records every call and hands out increasing handles.
type fakeDevice struct {
	state   State
	calls   []string
	next    Handle
	live    map[Handle]bool
	failTex bool
	created int
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{
		next: 100,
		live: make(map[Handle]bool),
		state: State{
			DepthMask: true,
			DepthFunc: DepthLEqual,
			BlendSrc:  BlendOne,
			BlendDst:  BlendZero,
			ColorMask: [4]bool{true, true, false, true},
			Textures:  [2]Handle{7, 8},
			Program:   3,
			// Caller is drawing into an offscreen target
			Framebuffer: 42,
		},
	}
}

func (d *fakeDevice) record(format string, args ...any) {
	d.calls = append(d.calls, fmt.Sprintf(format, args...))
}

func (d *fakeDevice) alloc() Handle {
	d.next++
	d.live[d.next] = true
	d.created++
	return d.next
}

func (d *fakeDevice) Snapshot() State { d.record("snapshot"); return d.state }
func (d *fakeDevice) Restore(s State) { d.record("restore"); d.state = s }

func (d *fakeDevice) SetDepthTest(on bool) { d.record("depth_test %v", on); d.state.DepthTest = on }
func (d *fakeDevice) SetDepthMask(on bool) { d.record("depth_mask %v", on); d.state.DepthMask = on }
func (d *fakeDevice) SetDepthFunc(fn DepthFunc) {
	d.record("depth_func %#x", uint32(fn))
	d.state.DepthFunc = fn
}
func (d *fakeDevice) SetColorMask(on bool) {
	d.record("color_mask %v", on)
	d.state.ColorMask = [4]bool{on, on, on, on}
}
func (d *fakeDevice) SetBlend(on bool) { d.record("blend %v", on); d.state.Blend = on }
func (d *fakeDevice) SetBlendFunc(src, dst BlendFactor) {
	d.record("blend_func")
	d.state.BlendSrc, d.state.BlendDst = src, dst
}
func (d *fakeDevice) SetCull(on bool, face Face) {
	d.record("cull %v %#x", on, uint32(face))
	d.state.Cull, d.state.CullFace = on, face
}
func (d *fakeDevice) BindFramebuffer(fb Handle) { d.record("bind_fb %d", fb); d.state.Framebuffer = fb }
func (d *fakeDevice) ClearDepth()               { d.record("clear_depth") }
func (d *fakeDevice) BindTexture(unit int, tex Handle) {
	d.record("bind_tex %d %d", unit, tex)
	d.state.ActiveTexture = unit
	d.state.Textures[unit] = tex
}
func (d *fakeDevice) UseProgram(p Handle) { d.record("use_program %d", p); d.state.Program = p }

func (d *fakeDevice) CreateDepthTexture(w, h int) Handle {
	d.record("create_depth_tex %dx%d", w, h)
	if d.failTex {
		return 0
	}
	return d.alloc()
}
func (d *fakeDevice) CreateFarDepthTexture() Handle {
	d.record("create_far_tex")
	return d.alloc()
}
func (d *fakeDevice) CreateFramebuffer(depth Handle) Handle {
	d.record("create_fb %d", depth)
	return d.alloc()
}
func (d *fakeDevice) FramebufferComplete(fb Handle) bool { return d.live[fb] }
func (d *fakeDevice) DeleteFramebuffer(fb Handle)        { d.record("delete_fb %d", fb); delete(d.live, fb) }
func (d *fakeDevice) DeleteTexture(tex Handle)           { d.record("delete_tex %d", tex); delete(d.live, tex) }

// fakeProgram keeps the last value set for each uniform and the order of
// render modes.
type fakeProgram struct {
	ints    map[string]int32
	floats  map[string]float32
	arrays  map[string]int // Element count of the last array upload
	modes   []int32
	setCall int
}

func newFakeProgram() *fakeProgram {
	return &fakeProgram{
		ints:   make(map[string]int32),
		floats: make(map[string]float32),
		arrays: make(map[string]int),
	}
}

func (p *fakeProgram) ID() Handle { return 9 }
func (p *fakeProgram) SetInt(name string, v int32) {
	p.setCall++
	p.ints[name] = v
	if name == UniformRenderMode {
		p.modes = append(p.modes, v)
	}
}
func (p *fakeProgram) SetFloat(name string, v float32)       { p.setCall++; p.floats[name] = v }
func (p *fakeProgram) SetVec2(name string, v mgl32.Vec2)     { p.setCall++ }
func (p *fakeProgram) SetVec3(name string, v mgl32.Vec3)     { p.setCall++ }
func (p *fakeProgram) SetMat4(name string, m mgl32.Mat4)     { p.setCall++ }
func (p *fakeProgram) SetFloats(name string, v []float32)    { p.setCall++; p.arrays[name] = len(v) }
func (p *fakeProgram) SetVec3s(name string, v []mgl32.Vec3)  { p.setCall++; p.arrays[name] = len(v) }
func (p *fakeProgram) SetVec4s(name string, v []mgl32.Vec4)  { p.setCall++; p.arrays[name] = len(v) }

// fakeMesh logs its name into the device call list when drawn.
type fakeMesh struct {
	name string
	dev  *fakeDevice
}

func (m *fakeMesh) Draw() { m.dev.record("draw %s", m.name) }

type fixedWindow struct{ w, h int }

func (f fixedWindow) FramebufferSize() (int, int) { return f.w, f.h }

// countingSim wraps a lamp and counts updates.
type countingSim struct {
	*lamp.Lamp
	updates []float32
	sets    int
}

func (s *countingSim) Update(dt float32) {
	s.updates = append(s.updates, dt)
	s.Lamp.Update(dt)
}
func (s *countingSim) SetThreshold(t float32)         { s.sets++; s.Lamp.SetThreshold(t) }
func (s *countingSim) SetHeaterTemperature(t float32) { s.sets++; s.Lamp.SetHeaterTemperature(t) }
func (s *countingSim) SetGravity(g float32)           { s.sets++; s.Lamp.SetGravity(g) }

type phaseLog []string

func (p *phaseLog) StartPhase(name string) { *p = append(*p, name) }

type harness struct {
	dev   *fakeDevice
	prog  *fakeProgram
	sim   *countingSim
	res   *RenderResources
	r     *Renderer
	now   float64
	cfg   *config.Config
}

func newHarness(t *testing.T, blobs int) *harness {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	h := &harness{
		dev:  newFakeDevice(),
		prog: newFakeProgram(),
		cfg:  cfg,
	}
	h.sim = &countingSim{Lamp: lamp.New(cfg, 1)}
	h.sim.Lamp.Initialize(blobs)
	h.res = &RenderResources{
		Program: h.prog,
		Metal:   &fakeMesh{"metal", h.dev},
		Glass:   &fakeMesh{"glass", h.dev},
		Quad:    &fakeMesh{"quad", h.dev},
	}
	opts := OptionsFromConfig(cfg)
	opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	h.r = New(h.dev, h.sim, ClockFunc(func() float64 { return h.now }), opts)
	return h
}

func (h *harness) frame(show, animate bool) {
	h.r.RenderLavaLamp(h.res, fixedWindow{640, 480}, FrameParams{
		View:       mgl32.LookAtV(mgl32.Vec3{10, 8, 10}, mgl32.Vec3{0, 4.5, 0}, mgl32.Vec3{0, 1, 0}),
		Proj:       mgl32.Perspective(mgl32.DegToRad(45), 640.0/480.0, 0.1, 1000),
		Animate:    animate,
		Show:       show,
		Threshold:  1.2,
		HeaterTemp: 90,
		Gravity:    -9.8,
	})
}

func TestHiddenIsNoOp(t *testing.T) {
	h := newHarness(t, 5)
	before := h.sim.Blobs()

	h.now = 1
	h.frame(false, true)
	h.now = 2
	h.frame(false, true)

	if len(h.dev.calls) != 0 {
		t.Errorf("device calls while hidden: %v", h.dev.calls)
	}
	if h.prog.setCall != 0 {
		t.Errorf("%d uniform uploads while hidden", h.prog.setCall)
	}
	if len(h.sim.updates) != 0 || h.sim.sets != 0 {
		t.Errorf("simulation touched while hidden: %d updates, %d sets", len(h.sim.updates), h.sim.sets)
	}
	after := h.sim.Blobs()
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("blob %d changed while hidden", i)
		}
	}
}

func TestEnsureIsIdempotent(t *testing.T) {
	dev := newFakeDevice()
	d := NewDepthTargets(dev, slog.New(slog.NewTextHandler(io.Discard, nil)))

	d.Ensure(800, 600)
	frontFB, frontTex := d.Front()
	backFB, backTex := d.Back()
	created := dev.created

	d.Ensure(800, 600)

	if dev.created != created {
		t.Errorf("second Ensure allocated %d objects", dev.created-created)
	}
	if fb, tex := d.Front(); fb != frontFB || tex != frontTex {
		t.Error("front handles changed")
	}
	if fb, tex := d.Back(); fb != backFB || tex != backTex {
		t.Error("back handles changed")
	}

	d.Ensure(1024, 768)
	if fb, _ := d.Front(); fb == frontFB {
		t.Error("resize did not reallocate")
	}
	if dev.live[frontFB] || dev.live[frontTex] {
		t.Error("old targets not deleted on resize")
	}
	if w, h := d.Size(); w != 1024 || h != 768 {
		t.Errorf("size = %dx%d", w, h)
	}
}

func TestEnsureFallsBackOnZeroTexture(t *testing.T) {
	dev := newFakeDevice()
	dev.failTex = true
	d := NewDepthTargets(dev, slog.New(slog.NewTextHandler(io.Discard, nil)))

	d.Ensure(320, 200)

	fbF, texF := d.Front()
	fbB, texB := d.Back()
	if texF == 0 || texB == 0 {
		t.Fatalf("zero depth texture exposed: front=%d back=%d", texF, texB)
	}
	if texF != texB {
		t.Errorf("fallback not shared: %d vs %d", texF, texB)
	}
	if fbF != 0 || fbB != 0 {
		t.Errorf("framebuffers created without depth: %d %d", fbF, fbB)
	}

	d.Release()
	if dev.live[texF] {
		t.Error("fallback texture not released")
	}
}

func TestEnsureClampsToOnePixel(t *testing.T) {
	dev := newFakeDevice()
	d := NewDepthTargets(dev, slog.New(slog.NewTextHandler(io.Discard, nil)))
	d.Ensure(0, -5)
	if w, h := d.Size(); w != 1 || h != 1 {
		t.Errorf("size = %dx%d, want 1x1", w, h)
	}
}

func TestPassOrder(t *testing.T) {
	h := newHarness(t, 5)
	var phases phaseLog
	h.r.SetRecorder(&phases)

	h.frame(true, false)

	wantModes := []int32{ModeMetal, ModeMetaball, ModeMetal, ModeGlass}
	if len(h.prog.modes) != len(wantModes) {
		t.Fatalf("render modes = %v, want %v", h.prog.modes, wantModes)
	}
	for i := range wantModes {
		if h.prog.modes[i] != wantModes[i] {
			t.Fatalf("render modes = %v, want %v", h.prog.modes, wantModes)
		}
	}

	var draws []string
	for _, c := range h.dev.calls {
		if len(c) > 5 && c[:5] == "draw " {
			draws = append(draws, c[5:])
		}
	}
	wantDraws := []string{
		"metal", "glass", // front target
		"metal", "glass", // back target
		"metal", // main depth
		"quad",
		"metal", "glass",
	}
	if fmt.Sprint(draws) != fmt.Sprint(wantDraws) {
		t.Errorf("draws = %v, want %v", draws, wantDraws)
	}

	wantPhases := []string{
		PhaseSimulate, PhaseUniforms, PhaseDepthPrepass, PhaseRaymarch,
		PhaseMetalComposite, PhaseGlassComposite, PhaseRestore,
	}
	if fmt.Sprint([]string(phases)) != fmt.Sprint(wantPhases) {
		t.Errorf("phases = %v, want %v", phases, wantPhases)
	}

	if h.dev.calls[0] != "snapshot" || h.dev.calls[len(h.dev.calls)-1] != "restore" {
		t.Errorf("frame not bracketed by snapshot/restore: first=%q last=%q",
			h.dev.calls[0], h.dev.calls[len(h.dev.calls)-1])
	}
}

func TestMainDepthUsesCallerFramebuffer(t *testing.T) {
	h := newHarness(t, 2)
	h.frame(true, false)

	bound := false
	for _, c := range h.dev.calls {
		if c == "bind_fb 42" {
			bound = true
		}
	}
	if !bound {
		t.Errorf("caller framebuffer never rebound: %v", h.dev.calls)
	}
}

func TestBackDepthDisabled(t *testing.T) {
	h := newHarness(t, 2)
	h.r.opts.BackDepth = false
	h.frame(true, false)

	draws := 0
	for _, c := range h.dev.calls {
		if c == "draw glass" {
			draws++
		}
	}
	if draws != 2 {
		t.Errorf("glass drawn %d times, want 2 (front target + composite)", draws)
	}
	if h.prog.ints[UniformUseBackDepth] != 0 {
		t.Error("uUseBackDepth set with back depth disabled")
	}
}

func TestStateRestored(t *testing.T) {
	h := newHarness(t, 5)
	before := h.dev.state

	h.frame(true, true)

	if h.dev.state != before {
		t.Errorf("state not restored:\n got %+v\nwant %+v", h.dev.state, before)
	}
}

func TestUniformTruncation(t *testing.T) {
	tests := []struct {
		name     string
		blobs    int
		want     int
		uploaded int
	}{
		{"under cap", 5, 5, 5},
		{"at cap", 16, 16, 16},
		{"over cap", 20, 16, 16},
		{"empty uploads placeholder", 0, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, tt.blobs)
			h.frame(true, false)

			if got := h.prog.ints[UniformBlobCount]; int(got) != tt.want {
				t.Errorf("uBlobCount = %d, want %d", got, tt.want)
			}
			if h.r.UploadedBlobs() != tt.want {
				t.Errorf("UploadedBlobs = %d, want %d", h.r.UploadedBlobs(), tt.want)
			}
			for _, name := range []string{UniformBlobPositions, UniformBlobRadii, UniformBlobBlobbiness, UniformBlobColors} {
				if got, ok := h.prog.arrays[name]; !ok || got != tt.uploaded {
					t.Errorf("%s uploaded %d elements, want %d", name, got, tt.uploaded)
				}
			}
		})
	}
}

func TestDeltaTimeClamped(t *testing.T) {
	h := newHarness(t, 3)

	h.now = 10
	h.frame(true, true) // establishes the baseline
	h.now = 10.016
	h.frame(true, true)
	h.now = 12
	h.frame(true, true)

	if len(h.sim.updates) != 2 {
		t.Fatalf("updates = %v, want 2 entries", h.sim.updates)
	}
	if math.Abs(float64(h.sim.updates[0]-0.016)) > 1e-4 {
		t.Errorf("first dt = %v, want 0.016", h.sim.updates[0])
	}
	if h.sim.updates[1] != 0.05 {
		t.Errorf("second dt = %v, want clamp 0.05", h.sim.updates[1])
	}
}

func TestPausedFrameDoesNotStep(t *testing.T) {
	h := newHarness(t, 3)
	h.now = 1
	h.frame(true, false)
	h.now = 2
	h.frame(true, false)

	if len(h.sim.updates) != 0 {
		t.Errorf("paused frames stepped the simulation: %v", h.sim.updates)
	}
	if h.sim.Threshold() != 1.2 || h.sim.HeaterTemperature() != 90 || h.sim.Gravity() != -9.8 {
		t.Error("frame parameters not pushed into the simulation")
	}
}

func TestRelease(t *testing.T) {
	h := newHarness(t, 1)
	h.frame(true, false)
	h.r.Release()

	for handle, alive := range h.dev.live {
		if alive {
			t.Errorf("handle %d still live after Release", handle)
		}
	}
}
