package gpu

import (
	"github.com/go-gl/gl/v3.3-core/gl"

	"github.com/pthm-cable/lavalamp/geometry"
)

// Attribute locations; shaders/lava.vs declares the same layout.
const (
	attribPosition = 0
	attribNormal   = 1
	attribTexCoord = 2

	floatSize    = 4
	vertexFloats = 8
)

// Mesh is an indexed triangle mesh in a vertex array object.
type Mesh struct {
	vao, vbo, ebo uint32
	indexCount    int32
}

// UploadMesh copies mesh data to the GPU.
func UploadMesh(m geometry.MeshData) *Mesh {
	out := &Mesh{indexCount: int32(len(m.Indices))}
	if m.VertexCount() == 0 || len(m.Indices) == 0 {
		return out
	}

	vertices := m.Interleaved()

	var prevVAO int32
	gl.GetIntegerv(gl.VERTEX_ARRAY_BINDING, &prevVAO)

	gl.GenVertexArrays(1, &out.vao)
	gl.BindVertexArray(out.vao)

	gl.GenBuffers(1, &out.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, out.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*floatSize, gl.Ptr(vertices), gl.STATIC_DRAW)

	gl.GenBuffers(1, &out.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, out.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(m.Indices)*4, gl.Ptr(m.Indices), gl.STATIC_DRAW)

	stride := int32(vertexFloats * floatSize)
	gl.VertexAttribPointerWithOffset(attribPosition, 3, gl.FLOAT, false, stride, 0)
	gl.EnableVertexAttribArray(attribPosition)
	gl.VertexAttribPointerWithOffset(attribNormal, 3, gl.FLOAT, false, stride, 3*floatSize)
	gl.EnableVertexAttribArray(attribNormal)
	gl.VertexAttribPointerWithOffset(attribTexCoord, 2, gl.FLOAT, false, stride, 6*floatSize)
	gl.EnableVertexAttribArray(attribTexCoord)

	gl.BindVertexArray(uint32(prevVAO))
	return out
}

// Draw issues the indexed draw call.
func (m *Mesh) Draw() {
	if m.vao == 0 || m.indexCount == 0 {
		return
	}
	var prevVAO int32
	gl.GetIntegerv(gl.VERTEX_ARRAY_BINDING, &prevVAO)
	gl.BindVertexArray(m.vao)
	gl.DrawElements(gl.TRIANGLES, m.indexCount, gl.UNSIGNED_INT, nil)
	gl.BindVertexArray(uint32(prevVAO))
}

// TriangleCount returns the number of triangles drawn.
func (m *Mesh) TriangleCount() int {
	return int(m.indexCount / 3)
}

// Unload frees the buffers.
func (m *Mesh) Unload() {
	if m.vao == 0 {
		return
	}
	gl.DeleteBuffers(1, &m.ebo)
	gl.DeleteBuffers(1, &m.vbo)
	gl.DeleteVertexArrays(1, &m.vao)
	*m = Mesh{}
}
