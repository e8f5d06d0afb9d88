package geometry

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// MeshData is CPU-side indexed triangle geometry, counter-clockwise front faces.
type MeshData struct {
	Positions []mgl32.Vec3
	Normals   []mgl32.Vec3
	UVs       []mgl32.Vec2
	Indices   []uint32
}

// VertexCount returns the number of vertices.
func (m *MeshData) VertexCount() int {
	return len(m.Positions)
}

// TriangleCount returns the number of triangles.
func (m *MeshData) TriangleCount() int {
	return len(m.Indices) / 3
}

func (m *MeshData) pushVertex(pos, norm mgl32.Vec3, uv mgl32.Vec2) uint32 {
	m.Positions = append(m.Positions, pos)
	m.Normals = append(m.Normals, norm)
	m.UVs = append(m.UVs, uv)
	return uint32(len(m.Positions) - 1)
}

func (m *MeshData) pushTriangle(a, b, c uint32) {
	m.Indices = append(m.Indices, a, b, c)
}

// Append merges other into m, rebasing its indices.
func (m *MeshData) Append(other MeshData) {
	base := uint32(len(m.Positions))
	m.Positions = append(m.Positions, other.Positions...)
	m.Normals = append(m.Normals, other.Normals...)
	m.UVs = append(m.UVs, other.UVs...)
	for _, idx := range other.Indices {
		m.Indices = append(m.Indices, base+idx)
	}
}

// Interleaved packs position, normal and uv as 8 floats per vertex.
func (m *MeshData) Interleaved() []float32 {
	out := make([]float32, 0, len(m.Positions)*8)
	for i, p := range m.Positions {
		n := m.Normals[i]
		uv := m.UVs[i]
		out = append(out, p[0], p[1], p[2], n[0], n[1], n[2], uv[0], uv[1])
	}
	return out
}

func ringPoint(radius, y, angle float32) mgl32.Vec3 {
	s, c := math.Sincos(float64(angle))
	return mgl32.Vec3{radius * float32(c), y, radius * float32(s)}
}

// Revolve sweeps the profile around the Y axis with the given number of
// segments. Each ring repeats its first vertex so the seam can carry uv=1.
func Revolve(p Profile, segments int) MeshData {
	var m MeshData
	if len(p) < 2 || segments < 3 {
		return m
	}

	ringLen := uint32(segments + 1)
	for pi, pt := range p {
		slope := p.slopeAt(pi)
		v := float32(pi) / float32(len(p)-1)
		for i := 0; i <= segments; i++ {
			angle := 2 * math.Pi * float32(i) / float32(segments)
			pos := ringPoint(pt.Radius, pt.Height, angle)
			s, c := math.Sincos(float64(angle))
			norm := mgl32.Vec3{float32(c), -slope, float32(s)}.Normalize()
			m.pushVertex(pos, norm, mgl32.Vec2{float32(i) / float32(segments), v})
		}
	}

	for pi := 0; pi < len(p)-1; pi++ {
		ring := uint32(pi) * ringLen
		above := ring + ringLen
		for i := uint32(0); i < uint32(segments); i++ {
			curr, next := ring+i, ring+i+1
			currAbove, nextAbove := above+i, above+i+1
			m.pushTriangle(curr, currAbove, next)
			m.pushTriangle(next, currAbove, nextAbove)
		}
	}
	return m
}

// Disc builds a flat fan at height y. up selects the facing direction.
func Disc(y, radius float32, segments int, up bool) MeshData {
	var m MeshData
	if segments < 3 {
		return m
	}

	norm := mgl32.Vec3{0, -1, 0}
	if up {
		norm = mgl32.Vec3{0, 1, 0}
	}
	center := m.pushVertex(mgl32.Vec3{0, y, 0}, norm, mgl32.Vec2{0.5, 0.5})
	for i := 0; i <= segments; i++ {
		angle := 2 * math.Pi * float32(i) / float32(segments)
		s, c := math.Sincos(float64(angle))
		m.pushVertex(ringPoint(radius, y, angle), norm, mgl32.Vec2{0.5 + 0.5*float32(c), 0.5 + 0.5*float32(s)})
	}
	for i := uint32(1); i <= uint32(segments); i++ {
		if up {
			m.pushTriangle(center, i+1, i)
		} else {
			m.pushTriangle(center, i, i+1)
		}
	}
	return m
}

// Cone builds a downward-pointing cone from a ring at height y to an apex
// depth below it.
func Cone(y, radius, depth float32, segments int) MeshData {
	var m MeshData
	if segments < 3 {
		return m
	}

	slant := mgl32.Vec2{radius, depth}.Len()
	for i := 0; i <= segments; i++ {
		angle := 2 * math.Pi * float32(i) / float32(segments)
		s, c := math.Sincos(float64(angle))
		u := float32(i) / float32(segments)
		norm := mgl32.Vec3{float32(c) * depth / slant, -radius / slant, float32(s) * depth / slant}
		m.pushVertex(ringPoint(radius, y, angle), norm, mgl32.Vec2{u, 0})
		m.pushVertex(mgl32.Vec3{0, y - depth, 0}, mgl32.Vec3{0, -1, 0}, mgl32.Vec2{u, 1})
	}
	for i := uint32(0); i < uint32(segments); i++ {
		ring, apex := i*2, i*2+1
		m.pushTriangle(ring, (i+1)*2, apex)
	}
	return m
}

// FullscreenQuad returns a clip-space quad covering the viewport.
func FullscreenQuad() MeshData {
	var m MeshData
	norm := mgl32.Vec3{0, 0, 1}
	m.pushVertex(mgl32.Vec3{-1, -1, 0}, norm, mgl32.Vec2{0, 0})
	m.pushVertex(mgl32.Vec3{1, -1, 0}, norm, mgl32.Vec2{1, 0})
	m.pushVertex(mgl32.Vec3{1, 1, 0}, norm, mgl32.Vec2{1, 1})
	m.pushVertex(mgl32.Vec3{-1, 1, 0}, norm, mgl32.Vec2{0, 1})
	m.pushTriangle(0, 1, 2)
	m.pushTriangle(0, 2, 3)
	return m
}
