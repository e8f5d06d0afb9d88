// Package renderer draws the lava lamp: a depth pre-pass over the container
// meshes, a fullscreen raymarch of the metaball field bounded by those
// depths, and a composite of the opaque metal and translucent glass.
//
// All GPU work goes through the Device, Program and Mesh interfaces so the
// pass protocol can be driven by a real GL backend or a recording fake.
package renderer

import "github.com/go-gl/mathgl/mgl32"

// Handle is an opaque GPU object name. Zero means "none".
type Handle uint32

// DepthFunc is a depth comparison. Values match the GL enums.
type DepthFunc uint32

const (
	DepthLess   DepthFunc = 0x0201
	DepthLEqual DepthFunc = 0x0203
)

// BlendFactor is a blend equation factor. Values match the GL enums.
type BlendFactor uint32

const (
	BlendZero             BlendFactor = 0
	BlendOne              BlendFactor = 1
	BlendSrcAlpha         BlendFactor = 0x0302
	BlendOneMinusSrcAlpha BlendFactor = 0x0303
)

// Face selects which polygon faces are culled. Values match the GL enums.
type Face uint32

const (
	FaceFront Face = 0x0404
	FaceBack  Face = 0x0405
)

// State is the subset of pipeline state the renderer touches. Snapshot and
// Restore round-trip it exactly, whatever the caller had bound.
type State struct {
	DepthTest bool
	DepthMask bool
	DepthFunc DepthFunc

	Blend    bool
	BlendSrc BlendFactor
	BlendDst BlendFactor

	ColorMask [4]bool

	Cull     bool
	CullFace Face

	ActiveTexture int
	Textures      [2]Handle // Bound on units 0 and 1

	Program     Handle
	Framebuffer Handle
}

// Device is the pipeline state and resource surface the renderer needs.
type Device interface {
	Snapshot() State
	Restore(State)

	SetDepthTest(enabled bool)
	SetDepthMask(write bool)
	SetDepthFunc(fn DepthFunc)
	SetColorMask(write bool)
	SetBlend(enabled bool)
	SetBlendFunc(src, dst BlendFactor)
	SetCull(enabled bool, face Face)

	BindFramebuffer(fb Handle)
	ClearDepth()
	BindTexture(unit int, tex Handle)
	UseProgram(prog Handle)

	// CreateDepthTexture allocates a w×h depth texture; 0 on failure.
	CreateDepthTexture(w, h int) Handle
	// CreateFarDepthTexture allocates a 1×1 depth texture cleared to the far plane.
	CreateFarDepthTexture() Handle
	// CreateFramebuffer creates a framebuffer with depth attached and no color.
	CreateFramebuffer(depth Handle) Handle
	FramebufferComplete(fb Handle) bool
	DeleteFramebuffer(fb Handle)
	DeleteTexture(tex Handle)
}

// Program is a linked shader program accepting uniforms by name. Unknown
// names are ignored.
type Program interface {
	ID() Handle
	SetInt(name string, v int32)
	SetFloat(name string, v float32)
	SetVec2(name string, v mgl32.Vec2)
	SetVec3(name string, v mgl32.Vec3)
	SetMat4(name string, m mgl32.Mat4)
	SetFloats(name string, v []float32)
	SetVec3s(name string, v []mgl32.Vec3)
	SetVec4s(name string, v []mgl32.Vec4)
}

// Mesh is an uploaded triangle mesh.
type Mesh interface {
	Draw()
}

// RenderResources are the shader and meshes the application owns and
// lends to each render call.
type RenderResources struct {
	Program Program
	Metal   Mesh
	Glass   Mesh
	Quad    Mesh
}

// Window reports the drawable size in pixels.
type Window interface {
	FramebufferSize() (w, h int)
}

// Clock returns monotonic seconds.
type Clock interface {
	Now() float64
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() float64

func (f ClockFunc) Now() float64 { return f() }

// PhaseRecorder receives the name of each render phase as it begins.
type PhaseRecorder interface {
	StartPhase(name string)
}
