package lamp

import "github.com/go-gl/mathgl/mgl32"

// CPU evaluation of the metaball field the fragment shader raymarches.
// Used by tests and tools; the renderer never meshes it.

const (
	fieldMinDist   = 0.01
	gradientEps    = 1e-3
	bisectionSteps = 8
)

// Density returns Σ (r / max(|p-c|, 0.01))^4 over all blobs.
func (l *Lamp) Density(p mgl32.Vec3) float32 {
	var sum float32
	for i := range l.blobs {
		b := &l.blobs[i]
		d := p.Sub(b.Position).Len()
		if d < fieldMinDist {
			d = fieldMinDist
		}
		q := b.Radius / d
		q *= q
		sum += q * q
	}
	return sum
}

// Gradient returns the field gradient by central differences.
func (l *Lamp) Gradient(p mgl32.Vec3) mgl32.Vec3 {
	var g mgl32.Vec3
	for axis := 0; axis < 3; axis++ {
		hi, lo := p, p
		hi[axis] += gradientEps
		lo[axis] -= gradientEps
		g[axis] = (l.Density(hi) - l.Density(lo)) / (2 * gradientEps)
	}
	return g
}

// Inside reports whether p lies within the isosurface.
func (l *Lamp) Inside(p mgl32.Vec3) bool {
	return l.Density(p) >= l.threshold
}

// Raymarch steps from origin along dir between tNear and tFar and returns
// the distance of the first threshold crossing, refined by bisection.
// dir need not be normalized; t is measured in units of dir.
func (l *Lamp) Raymarch(origin, dir mgl32.Vec3, tNear, tFar float32, steps int) (float32, bool) {
	if steps <= 0 || tFar <= tNear || len(l.blobs) == 0 {
		return 0, false
	}

	at := func(t float32) mgl32.Vec3 { return origin.Add(dir.Mul(t)) }

	step := (tFar - tNear) / float32(steps)
	prev := tNear
	if l.Inside(at(prev)) {
		return prev, true
	}
	for i := 1; i <= steps; i++ {
		t := tNear + float32(i)*step
		if !l.Inside(at(t)) {
			prev = t
			continue
		}
		lo, hi := prev, t
		for k := 0; k < bisectionSteps; k++ {
			mid := (lo + hi) / 2
			if l.Inside(at(mid)) {
				hi = mid
			} else {
				lo = mid
			}
		}
		return hi, true
	}
	return 0, false
}
