package lamp

import "github.com/go-gl/mathgl/mgl32"

// DefaultColor is the orange-red of a freshly added blob.
var DefaultColor = mgl32.Vec3{1.0, 0.3, 0.1}

// Blob is one wax mass. It renders as part of the shared isosurface.
type Blob struct {
	Position    mgl32.Vec3
	Velocity    mgl32.Vec3
	Radius      float32
	Temperature float32
	Blobbiness  float32 // Negative shape exponent
	Color       mgl32.Vec3

	// Spring-anchor motion state
	AnchorPoint    mgl32.Vec3
	AnchorStrength float32
	HeatPhase      float32 // [0,1): 0..0.5 rising, 0.5..1 falling
	CycleSpeed     float32
}

// NewBlob returns a blob at rest at pos.
func NewBlob(pos mgl32.Vec3, radius float32) Blob {
	return Blob{
		Position:       pos,
		Radius:         radius,
		Temperature:    25,
		Blobbiness:     -0.5,
		Color:          DefaultColor,
		AnchorPoint:    pos,
		AnchorStrength: 1,
		CycleSpeed:     1,
	}
}

// Volume returns the radius cubed. Merges and splits conserve it.
func (b *Blob) Volume() float32 {
	return b.Radius * b.Radius * b.Radius
}

// wrapPhase folds p into [0,1).
func wrapPhase(p float32) float32 {
	for p >= 1 {
		p--
	}
	for p < 0 {
		p++
	}
	// p++ on a tiny negative rounds up to exactly 1 in float32
	if p >= 1 {
		p = 0
	}
	return p
}

// phaseDistance is the shortest distance between two phases on the unit circle.
func phaseDistance(a, b float32) float32 {
	d := a - b
	if d < 0 {
		d = -d
	}
	if d > 0.5 {
		d = 1 - d
	}
	return d
}
