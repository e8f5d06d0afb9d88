package lamp

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// MergeBlobsIfClose coalesces pairs of blobs that overlap heavily, move
// together, share temperature and phase, and would not form an oversized
// blob. The lower index survives; the higher one is removed.
func (l *Lamp) MergeBlobsIfClose() {
	for i := 0; i < len(l.blobs); i++ {
		for j := i + 1; j < len(l.blobs); {
			if !l.canMerge(&l.blobs[i], &l.blobs[j]) {
				j++
				continue
			}
			l.blobs[i] = mergedBlob(&l.blobs[i], &l.blobs[j], l.merge.velocityDamping)
			l.blobs = append(l.blobs[:j], l.blobs[j+1:]...)
			l.merges++
		}
	}
}

func (l *Lamp) canMerge(a, b *Blob) bool {
	m := &l.merge

	if a.Position.Sub(b.Position).Len() >= m.centerFactor*(a.Radius+b.Radius) {
		return false
	}
	if a.Velocity.Sub(b.Velocity).Len() >= m.maxRelSpeed {
		return false
	}
	if abs32(a.Temperature-b.Temperature) >= m.maxTempDiff {
		return false
	}
	if (a.Temperature+b.Temperature)/2 <= l.ambientTemp+m.warmMargin {
		return false
	}
	if phaseDistance(a.HeatPhase, b.HeatPhase) >= m.maxPhaseDiff {
		return false
	}
	if cbrt(a.Volume()+b.Volume()) >= m.maxRadius {
		return false
	}

	// Merges thin out in the middle of the column
	hf := l.heightFraction((a.Position.Y() + b.Position.Y()) / 2)
	if hf > m.midLow && hf < m.midHigh {
		return l.rng.Float32() < m.midProbability
	}
	return true
}

// mergedBlob combines a and b weighted by volume.
func mergedBlob(a, b *Blob, velocityDamping float32) Blob {
	va, vb := a.Volume(), b.Volume()
	total := va + vb
	wa, wb := va/total, vb/total

	lerp3 := func(x, y mgl32.Vec3) mgl32.Vec3 {
		return x.Mul(wa).Add(y.Mul(wb))
	}
	lerp := func(x, y float32) float32 {
		return x*wa + y*wb
	}

	return Blob{
		Position:       lerp3(a.Position, b.Position),
		Velocity:       lerp3(a.Velocity, b.Velocity).Mul(velocityDamping),
		Radius:         cbrt(total),
		Temperature:    lerp(a.Temperature, b.Temperature),
		Blobbiness:     lerp(a.Blobbiness, b.Blobbiness),
		Color:          lerp3(a.Color, b.Color),
		AnchorPoint:    lerp3(a.AnchorPoint, b.AnchorPoint),
		AnchorStrength: lerp(a.AnchorStrength, b.AnchorStrength),
		HeatPhase:      circularMean(a.HeatPhase, b.HeatPhase, wa, wb),
		CycleSpeed:     lerp(a.CycleSpeed, b.CycleSpeed),
	}
}

// circularMean averages two phases on the unit circle.
func circularMean(a, b, wa, wb float32) float32 {
	sa, ca := math.Sincos(2 * math.Pi * float64(a))
	sb, cb := math.Sincos(2 * math.Pi * float64(b))
	s := float64(wa)*sa + float64(wb)*sb
	c := float64(wa)*ca + float64(wb)*cb
	if math.Abs(s) < 1e-9 && math.Abs(c) < 1e-9 {
		return a
	}
	return wrapPhase(float32(math.Atan2(s, c) / (2 * math.Pi)))
}

// SplitLargeBlobs breaks oversized blobs in two. Only blobs present at the
// start of the call are considered; children are appended.
func (l *Lamp) SplitLargeBlobs() {
	n := len(l.blobs)
	for i := 0; i < n; i++ {
		if !l.shouldSplit(&l.blobs[i]) {
			continue
		}
		child := l.splitBlob(&l.blobs[i])
		l.blobs = append(l.blobs, child)
		l.splits++
	}
}

func (l *Lamp) shouldSplit(b *Blob) bool {
	s := &l.split
	if b.Radius <= s.maxRadius {
		return false
	}
	if l.heightFraction(b.Position.Y()) > s.coolingZone {
		return true
	}
	if b.Velocity.Len() > s.speedThreshold {
		return true
	}
	return l.TempFactor(b.Temperature) < s.coolFactor && b.Radius > s.coolRadius
}

// splitBlob shrinks parent in place and returns the child.
func (l *Lamp) splitBlob(parent *Blob) Blob {
	s := &l.split

	volume := parent.Volume()
	childVolume := volume * s.volumeFraction
	childR := cbrt(childVolume)
	parentR := cbrt(volume - childVolume)

	// Split across the direction of travel so the halves peel sideways
	dir := mgl32.Vec3{1, 0, 0}
	if perp := (mgl32.Vec3{-parent.Velocity.Z(), 0, parent.Velocity.X()}); perp.Len() > 1e-4 {
		dir = perp.Normalize()
	}
	sep := s.separation * (childR + parentR)

	child := *parent
	child.Radius = childR
	child.Position = parent.Position.Add(dir.Mul(sep))
	child.Velocity = parent.Velocity.Add(dir.Mul(s.kick))
	child.HeatPhase = wrapPhase(parent.HeatPhase + s.phaseOffset)
	child.CycleSpeed = parent.CycleSpeed + l.randomSigned()*s.cycleJitter
	if child.CycleSpeed < 0.1 {
		child.CycleSpeed = 0.1
	}

	parent.Radius = parentR
	parent.Position = parent.Position.Sub(dir.Mul(sep / 2))
	parent.Velocity = parent.Velocity.Sub(dir.Mul(s.kick))

	l.clampInside(parent)
	l.clampInside(&child)
	child.AnchorPoint = child.Position

	return child
}

func cbrt(v float32) float32 {
	return float32(math.Cbrt(float64(v)))
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
