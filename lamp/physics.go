package lamp

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	minSeparation  = 0.01 // Below this, repulsion picks a random direction
	minRadialDist  = 1e-6
	turbulenceRate = 0.2 // Noise time scale
)

// stepBlob advances blob i by dt: heat, phase, anchor, forces, integration
// and container constraints. Blobs with lower indices have already moved
// this frame, so repulsion sees their updated positions.
func (l *Lamp) stepBlob(i int, dt float32) {
	b := &l.blobs[i]

	l.updateTemperature(b, dt)
	tf := l.TempFactor(b.Temperature)
	l.advancePhase(b, tf, dt)
	b.AnchorPoint = l.anchorFor(b, i, tf)

	force := l.forceOn(i, tf)

	// Semi-implicit Euler: trapezoid on velocity for position
	newVel := b.Velocity.Add(force.Mul(dt))
	b.Position = b.Position.Add(b.Velocity.Add(newVel).Mul(0.5 * dt))
	b.Velocity = newVel

	l.constrain(b)
}

// updateTemperature relaxes toward the local target: heater at the plate,
// fading linearly to ambient over the heat zone.
func (l *Lamp) updateTemperature(b *Blob, dt float32) {
	heat := clamp01(1 - (b.Position.Y()-l.baseHeight)/l.phys.heatZone)
	target := l.ambientTemp + heat*(l.heaterTemp-l.ambientTemp)
	alpha := 1 - float32(math.Exp(float64(-l.phys.heatRelax*dt)))
	b.Temperature += (target - b.Temperature) * alpha
}

// advancePhase moves the heat phase. Hot blobs rise faster and sink slower.
func (l *Lamp) advancePhase(b *Blob, tf, dt float32) {
	speed := b.CycleSpeed * l.phys.cycleRate
	if b.HeatPhase < 0.5 {
		speed *= 0.5 + 1.5*tf
	} else {
		speed *= 2 - 1.5*tf
	}
	b.HeatPhase = wrapPhase(b.HeatPhase + speed*dt)
}

// anchorFor computes the target position for blob i.
func (l *Lamp) anchorFor(b *Blob, i int, tf float32) mgl32.Vec3 {
	cyclePos := 0.5 + 0.5*float32(math.Sin(2*math.Pi*float64(b.HeatPhase)))

	minH := l.baseHeight + b.Radius
	maxH := l.height - b.Radius - l.phys.topMargin
	if maxH < minH {
		maxH = minH
	}
	band := l.phys.heightBand * (maxH - minH)
	bias := tf * tf
	effMin := mix(minH, minH+band, bias)
	effMax := mix(maxH-band, maxH, bias)
	y := mix(effMin, effMax, cyclePos)

	angle := float64(l.simTime*l.phys.driftRate + b.HeatPhase*l.phys.driftPhaseScale)
	s, c := math.Sincos(angle)
	drift := l.phys.driftRadius * l.radius
	x := float32(c) * drift
	z := float32(s) * drift

	if l.phys.turbulence > 0 {
		t := l.simTime * turbulenceRate
		seed := float32(i) * 17.3
		amp := l.phys.turbulence * l.radius
		sc := l.phys.turbulenceScale
		x += amp * l.noise.Eval3(b.Position.X()*sc, b.Position.Y()*sc, t+seed)
		z += amp * l.noise.Eval3(b.Position.Z()*sc, b.Position.Y()*sc, t+seed+101)
	}

	return mgl32.Vec3{x, y, z}
}

// forceOn accumulates spring, damping and pairwise repulsion for blob i.
func (l *Lamp) forceOn(i int, tf float32) mgl32.Vec3 {
	b := &l.blobs[i]

	k := l.phys.spring * mix(2, 0.6, tf)
	force := b.AnchorPoint.Sub(b.Position).Mul(k)

	d := mix(1.5*l.phys.damping, 0.5*l.phys.damping, tf)
	force = force.Sub(b.Velocity.Mul(d))

	for j := range l.blobs {
		if j == i {
			continue
		}
		other := &l.blobs[j]
		sep := b.Position.Sub(other.Position)
		dist := sep.Len()
		rangeDist := (b.Radius + other.Radius) * l.phys.repulsionRange
		if dist >= rangeDist {
			continue
		}

		var dir mgl32.Vec3
		if dist < minSeparation {
			dir = l.randomDirection()
		} else {
			dir = sep.Mul(1 / dist)
		}
		mag := l.phys.repulsion * (1 - dist/rangeDist)
		force = force.Add(dir.Mul(mag * mag))
	}

	return force
}

// randomDirection returns a random unit vector, or +X if the draw is degenerate.
func (l *Lamp) randomDirection() mgl32.Vec3 {
	v := mgl32.Vec3{l.randomSigned(), l.randomSigned(), l.randomSigned()}
	n := v.Len()
	if n < 1e-3 {
		return mgl32.Vec3{1, 0, 0}
	}
	return v.Mul(1 / n)
}

// permittedRadius is the furthest a blob center of radius r may sit from
// the axis at height y.
func (l *Lamp) permittedRadius(y, r float32) float32 {
	p := l.wall.RadiusAt(y) - r - l.phys.wallThickness
	if p < 0 {
		return 0
	}
	return p
}

// constrain applies the soft wall and floor/ceiling constraints.
func (l *Lamp) constrain(b *Blob) {
	maxDist := l.permittedRadius(b.Position.Y(), b.Radius)
	radial := mgl32.Vec2{b.Position.X(), b.Position.Z()}
	dist := radial.Len()

	if dist > maxDist && dist > minRadialDist {
		n := radial.Mul(1 / dist)
		corr := (dist - maxDist) * l.phys.wallCorrection
		b.Position[0] -= n[0] * corr
		b.Position[2] -= n[1] * corr

		outward := b.Velocity.X()*n[0] + b.Velocity.Z()*n[1]
		if outward > 0 {
			b.Velocity[0] -= n[0] * outward * l.phys.wallDamping
			b.Velocity[2] -= n[1] * outward * l.phys.wallDamping
		}
	}

	minY := l.baseHeight + b.Radius
	maxY := l.height - b.Radius
	if y := b.Position.Y(); y < minY {
		b.Position[1] += (minY - y) * l.phys.floorCorrection
		if b.Velocity[1] < 0 {
			b.Velocity[1] *= -l.phys.floorBounce
		}
	} else if y > maxY {
		b.Position[1] -= (y - maxY) * l.phys.floorCorrection
		if b.Velocity[1] > 0 {
			b.Velocity[1] *= -l.phys.floorBounce
		}
	}
}

// clampInside hard-projects a blob onto the permitted disc at its height.
func (l *Lamp) clampInside(b *Blob) {
	maxDist := l.permittedRadius(b.Position.Y(), b.Radius)
	radial := mgl32.Vec2{b.Position.X(), b.Position.Z()}
	dist := radial.Len()
	if dist <= maxDist {
		return
	}
	if dist <= minRadialDist {
		b.Position[0], b.Position[2] = 0, 0
		return
	}
	scale := maxDist / dist
	b.Position[0] *= scale
	b.Position[2] *= scale
}
