// Package gpu implements the renderer interfaces on OpenGL 3.3 core.
//
// raylib owns the window and the GL context; gl.Init must be called after
// rl.InitWindow. Calls here bypass raylib's batcher, so callers flush it with
// rl.DrawRenderBatchActive before rendering through this package.
package gpu

import (
	"fmt"

	"github.com/go-gl/gl/v3.3-core/gl"

	"github.com/pthm-cable/lavalamp/renderer"
)

// Init loads the GL function pointers for the current context.
func Init() error {
	if err := gl.Init(); err != nil {
		return fmt.Errorf("initializing OpenGL: %w", err)
	}
	return nil
}

var (
	_ renderer.Device  = (*Device)(nil)
	_ renderer.Program = (*Program)(nil)
	_ renderer.Mesh    = (*Mesh)(nil)
)

// Device drives GL pipeline state directly.
type Device struct{}

// NewDevice returns a device for the current context.
func NewDevice() *Device {
	return &Device{}
}

func getInt(pname uint32) int32 {
	var v int32
	gl.GetIntegerv(pname, &v)
	return v
}

func setCap(capability uint32, on bool) {
	if on {
		gl.Enable(capability)
	} else {
		gl.Disable(capability)
	}
}

// Snapshot reads back the state the renderer modifies.
func (d *Device) Snapshot() renderer.State {
	var s renderer.State

	s.DepthTest = gl.IsEnabled(gl.DEPTH_TEST)
	gl.GetBooleanv(gl.DEPTH_WRITEMASK, &s.DepthMask)
	s.DepthFunc = renderer.DepthFunc(getInt(gl.DEPTH_FUNC))

	s.Blend = gl.IsEnabled(gl.BLEND)
	s.BlendSrc = renderer.BlendFactor(getInt(gl.BLEND_SRC_RGB))
	s.BlendDst = renderer.BlendFactor(getInt(gl.BLEND_DST_RGB))

	gl.GetBooleanv(gl.COLOR_WRITEMASK, &s.ColorMask[0])

	s.Cull = gl.IsEnabled(gl.CULL_FACE)
	s.CullFace = renderer.Face(getInt(gl.CULL_FACE_MODE))

	active := getInt(gl.ACTIVE_TEXTURE)
	s.ActiveTexture = int(uint32(active) - gl.TEXTURE0)
	for unit := range s.Textures {
		gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
		s.Textures[unit] = renderer.Handle(getInt(gl.TEXTURE_BINDING_2D))
	}
	gl.ActiveTexture(uint32(active))

	s.Program = renderer.Handle(getInt(gl.CURRENT_PROGRAM))
	s.Framebuffer = renderer.Handle(getInt(gl.FRAMEBUFFER_BINDING))
	return s
}

// Restore applies a snapshot.
func (d *Device) Restore(s renderer.State) {
	setCap(gl.DEPTH_TEST, s.DepthTest)
	gl.DepthMask(s.DepthMask)
	gl.DepthFunc(uint32(s.DepthFunc))

	setCap(gl.BLEND, s.Blend)
	gl.BlendFunc(uint32(s.BlendSrc), uint32(s.BlendDst))

	gl.ColorMask(s.ColorMask[0], s.ColorMask[1], s.ColorMask[2], s.ColorMask[3])

	setCap(gl.CULL_FACE, s.Cull)
	gl.CullFace(uint32(s.CullFace))

	for unit, tex := range s.Textures {
		gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
		gl.BindTexture(gl.TEXTURE_2D, uint32(tex))
	}
	gl.ActiveTexture(gl.TEXTURE0 + uint32(s.ActiveTexture))

	gl.UseProgram(uint32(s.Program))
	gl.BindFramebuffer(gl.FRAMEBUFFER, uint32(s.Framebuffer))
}

func (d *Device) SetDepthTest(on bool)               { setCap(gl.DEPTH_TEST, on) }
func (d *Device) SetDepthMask(write bool)            { gl.DepthMask(write) }
func (d *Device) SetDepthFunc(fn renderer.DepthFunc) { gl.DepthFunc(uint32(fn)) }
func (d *Device) SetColorMask(write bool)            { gl.ColorMask(write, write, write, write) }
func (d *Device) SetBlend(on bool)                   { setCap(gl.BLEND, on) }

func (d *Device) SetBlendFunc(src, dst renderer.BlendFactor) {
	gl.BlendFunc(uint32(src), uint32(dst))
}

func (d *Device) SetCull(on bool, face renderer.Face) {
	setCap(gl.CULL_FACE, on)
	if on {
		gl.CullFace(uint32(face))
	}
}

func (d *Device) BindFramebuffer(fb renderer.Handle) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, uint32(fb))
}

func (d *Device) ClearDepth() {
	gl.ClearDepth(1)
	gl.Clear(gl.DEPTH_BUFFER_BIT)
}

func (d *Device) BindTexture(unit int, tex renderer.Handle) {
	gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
	gl.BindTexture(gl.TEXTURE_2D, uint32(tex))
}

func (d *Device) UseProgram(prog renderer.Handle) {
	gl.UseProgram(uint32(prog))
}

// CreateDepthTexture allocates a 24-bit depth texture sampled with nearest filtering.
func (d *Device) CreateDepthTexture(w, h int) renderer.Handle {
	for gl.GetError() != gl.NO_ERROR {
	}

	var tex uint32
	gl.GenTextures(1, &tex)
	if tex == 0 {
		return 0
	}

	var prev int32
	gl.GetIntegerv(gl.TEXTURE_BINDING_2D, &prev)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.DEPTH_COMPONENT24, int32(w), int32(h), 0,
		gl.DEPTH_COMPONENT, gl.FLOAT, nil)
	setDepthSampling()
	gl.BindTexture(gl.TEXTURE_2D, uint32(prev))

	if gl.GetError() != gl.NO_ERROR {
		gl.DeleteTextures(1, &tex)
		return 0
	}
	return renderer.Handle(tex)
}

// CreateFarDepthTexture allocates a 1×1 depth texture holding 1.0.
func (d *Device) CreateFarDepthTexture() renderer.Handle {
	var tex uint32
	gl.GenTextures(1, &tex)
	if tex == 0 {
		return 0
	}

	far := []float32{1}
	var prev int32
	gl.GetIntegerv(gl.TEXTURE_BINDING_2D, &prev)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.DEPTH_COMPONENT24, 1, 1, 0,
		gl.DEPTH_COMPONENT, gl.FLOAT, gl.Ptr(far))
	setDepthSampling()
	gl.BindTexture(gl.TEXTURE_2D, uint32(prev))
	return renderer.Handle(tex)
}

func setDepthSampling() {
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_COMPARE_MODE, gl.NONE)
}

// CreateFramebuffer wraps a depth texture in a framebuffer with no color buffer.
func (d *Device) CreateFramebuffer(depth renderer.Handle) renderer.Handle {
	var fb uint32
	gl.GenFramebuffers(1, &fb)
	if fb == 0 {
		return 0
	}

	prev := getInt(gl.FRAMEBUFFER_BINDING)
	gl.BindFramebuffer(gl.FRAMEBUFFER, fb)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.TEXTURE_2D, uint32(depth), 0)
	gl.DrawBuffer(gl.NONE)
	gl.ReadBuffer(gl.NONE)
	gl.BindFramebuffer(gl.FRAMEBUFFER, uint32(prev))
	return renderer.Handle(fb)
}

func (d *Device) FramebufferComplete(fb renderer.Handle) bool {
	prev := getInt(gl.FRAMEBUFFER_BINDING)
	gl.BindFramebuffer(gl.FRAMEBUFFER, uint32(fb))
	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, uint32(prev))
	return status == gl.FRAMEBUFFER_COMPLETE
}

func (d *Device) DeleteFramebuffer(fb renderer.Handle) {
	id := uint32(fb)
	gl.DeleteFramebuffers(1, &id)
}

func (d *Device) DeleteTexture(tex renderer.Handle) {
	id := uint32(tex)
	gl.DeleteTextures(1, &id)
}
