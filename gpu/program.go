package gpu

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/lavalamp/renderer"
)

// Program is a raylib-compiled shader with a uniform location cache.
type Program struct {
	shader rl.Shader
	locs   map[string]int32
}

// LoadProgram compiles a vertex/fragment pair through raylib.
func LoadProgram(vsPath, fsPath string) (*Program, error) {
	shader := rl.LoadShader(vsPath, fsPath)
	if shader.ID == 0 {
		return nil, fmt.Errorf("loading shader %s / %s", vsPath, fsPath)
	}
	return &Program{shader: shader, locs: make(map[string]int32)}, nil
}

// ID returns the GL program name.
func (p *Program) ID() renderer.Handle {
	return renderer.Handle(p.shader.ID)
}

// location looks up and caches a uniform. Missing uniforms cache as -1,
// which GL ignores on upload.
func (p *Program) location(name string) int32 {
	if loc, ok := p.locs[name]; ok {
		return loc
	}
	loc := gl.GetUniformLocation(p.shader.ID, gl.Str(name+"\x00"))
	p.locs[name] = loc
	return loc
}

func (p *Program) SetInt(name string, v int32) {
	gl.Uniform1i(p.location(name), v)
}

func (p *Program) SetFloat(name string, v float32) {
	gl.Uniform1f(p.location(name), v)
}

func (p *Program) SetVec2(name string, v mgl32.Vec2) {
	gl.Uniform2f(p.location(name), v[0], v[1])
}

func (p *Program) SetVec3(name string, v mgl32.Vec3) {
	gl.Uniform3f(p.location(name), v[0], v[1], v[2])
}

func (p *Program) SetMat4(name string, m mgl32.Mat4) {
	gl.UniformMatrix4fv(p.location(name), 1, false, &m[0])
}

func (p *Program) SetFloats(name string, v []float32) {
	if len(v) == 0 {
		return
	}
	gl.Uniform1fv(p.location(name), int32(len(v)), &v[0])
}

func (p *Program) SetVec3s(name string, v []mgl32.Vec3) {
	if len(v) == 0 {
		return
	}
	gl.Uniform3fv(p.location(name), int32(len(v)), &v[0][0])
}

func (p *Program) SetVec4s(name string, v []mgl32.Vec4) {
	if len(v) == 0 {
		return
	}
	gl.Uniform4fv(p.location(name), int32(len(v)), &v[0][0])
}

// Unload releases the shader.
func (p *Program) Unload() {
	rl.UnloadShader(p.shader)
}
