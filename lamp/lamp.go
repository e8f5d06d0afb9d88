// Package lamp simulates the wax blobs of a lava lamp.
//
// Each blob is pulled by a spring toward a moving anchor whose height follows
// a heat-driven rise/fall cycle. Blobs repel each other, are held inside the
// tapered glass, and merge or split as they meet or stretch. The package owns
// no GPU resources; renderers read copies of the state through accessors.
package lamp

import (
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/ojrac/opensimplex-go"

	"github.com/pthm-cable/lavalamp/config"
	"github.com/pthm-cable/lavalamp/geometry"
)

// Lamp owns the blob collection and the physical constants of the container.
type Lamp struct {
	blobs []Blob

	// Geometry (must match the container meshes)
	radius     float32
	height     float32
	baseHeight float32
	wall       geometry.Profile

	// Thermal
	ambientTemp float32
	heaterTemp  float32

	gravity   float32 // Accepted for API compatibility; the spring model ignores it
	threshold float32

	minBlobRadius float32

	phys  physics
	merge mergeRules
	split splitRules

	simTime float32
	rng     *rand.Rand
	noise   opensimplex.Noise32

	merges uint64
	splits uint64
}

// physics mirrors config.PhysicsConfig as float32 for the hot loop.
type physics struct {
	spring, damping             float32
	repulsion, repulsionRange   float32
	heatZone, heatRelax         float32
	cycleRate                   float32
	topMargin, heightBand       float32
	driftRate, driftPhaseScale  float32
	driftRadius                 float32
	turbulence, turbulenceScale float32
	wallThickness               float32
	wallCorrection, wallDamping float32
	floorCorrection, floorBounce float32
}

type mergeRules struct {
	centerFactor    float32
	maxRelSpeed     float32
	maxTempDiff     float32
	warmMargin      float32
	maxPhaseDiff    float32
	midLow, midHigh float32
	midProbability  float32
	maxRadius       float32
	velocityDamping float32
}

type splitRules struct {
	maxRadius      float32
	coolingZone    float32
	speedThreshold float32
	coolFactor     float32
	coolRadius     float32
	volumeFraction float32
	separation     float32
	kick           float32
	phaseOffset    float32
	cycleJitter    float32
}

// New creates an empty lamp from config. seed drives every random choice,
// so a lamp stepped with the same dt sequence replays exactly.
func New(cfg *config.Config, seed int64) *Lamp {
	lc, pc, mc, sc := cfg.Lamp, cfg.Physics, cfg.Merge, cfg.Split

	return &Lamp{
		radius:        float32(lc.Radius),
		height:        float32(lc.Height),
		baseHeight:    float32(lc.BaseHeight),
		wall:          geometry.NewProfile(cfg.Container.Glass),
		ambientTemp:   float32(lc.AmbientTemp),
		heaterTemp:    float32(lc.HeaterTemp),
		gravity:       float32(lc.Gravity),
		threshold:     float32(lc.Threshold),
		minBlobRadius: float32(lc.MinBlobRadius),
		phys: physics{
			spring:          float32(pc.SpringConstant),
			damping:         float32(pc.DampingConstant),
			repulsion:       float32(pc.RepulsionStrength),
			repulsionRange:  float32(pc.RepulsionRange),
			heatZone:        float32(pc.HeatZoneHeight),
			heatRelax:       float32(pc.HeatRelaxRate),
			cycleRate:       float32(pc.CycleRate),
			topMargin:       float32(pc.TopMargin),
			heightBand:      float32(pc.HeightBiasBand),
			driftRate:       float32(pc.DriftRate),
			driftPhaseScale: float32(pc.DriftPhaseScale),
			driftRadius:     float32(pc.DriftRadius),
			turbulence:      float32(pc.Turbulence),
			turbulenceScale: float32(pc.TurbulenceScale),
			wallThickness:   float32(pc.WallThickness),
			wallCorrection:  float32(pc.WallCorrection),
			wallDamping:     float32(pc.WallRadialDamping),
			floorCorrection: float32(pc.FloorCorrection),
			floorBounce:     float32(pc.FloorRestitution),
		},
		merge: mergeRules{
			centerFactor:    float32(mc.CenterFactor),
			maxRelSpeed:     float32(mc.MaxRelativeSpeed),
			maxTempDiff:     float32(mc.MaxTempDiff),
			warmMargin:      float32(mc.WarmMargin),
			maxPhaseDiff:    float32(mc.MaxPhaseDiff),
			midLow:          float32(mc.MidBandLow),
			midHigh:         float32(mc.MidBandHigh),
			midProbability:  float32(mc.MidBandProbability),
			maxRadius:       float32(mc.MaxRadius),
			velocityDamping: float32(mc.VelocityDamping),
		},
		split: splitRules{
			maxRadius:      float32(sc.MaxRadius),
			coolingZone:    float32(sc.CoolingZone),
			speedThreshold: float32(sc.SpeedThreshold),
			coolFactor:     float32(sc.CoolFactor),
			coolRadius:     float32(sc.CoolRadius),
			volumeFraction: float32(sc.VolumeFraction),
			separation:     float32(sc.Separation),
			kick:           float32(sc.Kick),
			phaseOffset:    float32(sc.PhaseOffset),
			cycleJitter:    float32(sc.CycleJitter),
		},
		rng:   rand.New(rand.NewSource(seed)),
		noise: opensimplex.New32(seed),
	}
}

// randomSigned returns a uniform value in [-1, 1).
func (l *Lamp) randomSigned() float32 {
	return l.rng.Float32()*2 - 1
}

// maxBlobbiness keeps seeded blobs strictly negative.
const maxBlobbiness = -1e-3

// initialBlobbiness maps r in [-1, 1) onto (-0.3, maxBlobbiness].
func initialBlobbiness(r float32) float32 {
	return min(-0.15-r*0.15, maxBlobbiness)
}

// Initialize replaces the collection with n freshly seeded blobs spread
// around the axis at increasing heights with staggered phases.
func (l *Lamp) Initialize(n int) {
	l.blobs = l.blobs[:0]
	if n <= 0 {
		return
	}

	for i := 0; i < n; i++ {
		frac := float32(i) / float32(n)
		angle := 2 * math.Pi * float64(frac)
		radialDist := 0.3 + l.randomSigned()*0.2

		pos := mgl32.Vec3{
			float32(math.Cos(angle)) * radialDist * l.radius,
			l.baseHeight + 1 + frac*3,
			float32(math.Sin(angle)) * radialDist * l.radius,
		}
		radius := 0.5 + (l.randomSigned()+1)*0.15

		b := NewBlob(pos, radius)
		b.Temperature = l.ambientTemp + l.randomSigned()*10
		b.Blobbiness = initialBlobbiness(l.randomSigned())
		b.Color = mgl32.Vec3{
			clamp01(0.9 + l.randomSigned()*0.1),
			clamp01(0.3 + l.randomSigned()*0.2),
			clamp01(l.randomSigned() * 0.05),
		}
		b.HeatPhase = frac
		b.CycleSpeed = 0.8 + l.randomSigned()*0.4

		l.blobs = append(l.blobs, b)
	}
}

// Update advances the simulation by dt seconds. dt <= 0 is a no-op.
func (l *Lamp) Update(dt float32) {
	if dt <= 0 {
		return
	}
	l.simTime += dt

	for i := range l.blobs {
		l.stepBlob(i, dt)
	}

	// Merges may create blobs large enough to split this same frame
	l.MergeBlobsIfClose()
	l.SplitLargeBlobs()
}

// AddBlob appends a blob at rest at position. Radii below the configured
// minimum are raised to it.
func (l *Lamp) AddBlob(position mgl32.Vec3, radius float32) {
	if radius < l.minBlobRadius || !(radius > 0) {
		radius = l.minBlobRadius
	}
	b := NewBlob(position, radius)
	b.Temperature = l.ambientTemp
	l.blobs = append(l.blobs, b)
}

// RemoveBlob removes the most recently added blob. Empty lamps are left alone.
func (l *Lamp) RemoveBlob() {
	if len(l.blobs) > 0 {
		l.blobs = l.blobs[:len(l.blobs)-1]
	}
}

// Restore replaces the blob set and simulation clock with saved state.
// Merge and split counters restart from zero.
func (l *Lamp) Restore(blobs []Blob, simTime float32) {
	l.blobs = append(l.blobs[:0], blobs...)
	l.simTime = simTime
	l.merges, l.splits = 0, 0
}

// SetHeaterTemperature sets the temperature at the heater plate.
func (l *Lamp) SetHeaterTemperature(t float32) { l.heaterTemp = t }

// SetThreshold sets the isosurface threshold.
func (l *Lamp) SetThreshold(t float32) { l.threshold = t }

// SetGravity stores g. The spring-anchor model does not apply it.
func (l *Lamp) SetGravity(g float32) { l.gravity = g }

// BlobCount returns the number of blobs.
func (l *Lamp) BlobCount() int { return len(l.blobs) }

// Blobs returns a copy of the blob collection.
func (l *Lamp) Blobs() []Blob {
	out := make([]Blob, len(l.blobs))
	copy(out, l.blobs)
	return out
}

// BlobPositions returns centers as vec4 (w=1). An empty lamp yields a single vec4(0).
func (l *Lamp) BlobPositions() []mgl32.Vec4 {
	if len(l.blobs) == 0 {
		return []mgl32.Vec4{{}}
	}
	out := make([]mgl32.Vec4, len(l.blobs))
	for i := range l.blobs {
		out[i] = l.blobs[i].Position.Vec4(1)
	}
	return out
}

// BlobRadii returns radii. An empty lamp yields a single 0.
func (l *Lamp) BlobRadii() []float32 {
	if len(l.blobs) == 0 {
		return []float32{0}
	}
	out := make([]float32, len(l.blobs))
	for i := range l.blobs {
		out[i] = l.blobs[i].Radius
	}
	return out
}

// BlobBlobbiness returns shape exponents. An empty lamp yields a single 0.
func (l *Lamp) BlobBlobbiness() []float32 {
	if len(l.blobs) == 0 {
		return []float32{0}
	}
	out := make([]float32, len(l.blobs))
	for i := range l.blobs {
		out[i] = l.blobs[i].Blobbiness
	}
	return out
}

// EmptyColor is the placeholder color reported by an empty lamp.
var EmptyColor = mgl32.Vec3{1.0, 0.3, 0.0}

// BlobColors returns colors. An empty lamp yields a single EmptyColor.
func (l *Lamp) BlobColors() []mgl32.Vec3 {
	if len(l.blobs) == 0 {
		return []mgl32.Vec3{EmptyColor}
	}
	out := make([]mgl32.Vec3, len(l.blobs))
	for i := range l.blobs {
		out[i] = l.blobs[i].Color
	}
	return out
}

func (l *Lamp) Radius() float32             { return l.radius }
func (l *Lamp) Height() float32             { return l.height }
func (l *Lamp) BaseHeight() float32         { return l.baseHeight }
func (l *Lamp) TopRadius() float32          { return l.wall.RadiusAt(l.height) }
func (l *Lamp) Threshold() float32          { return l.threshold }
func (l *Lamp) Gravity() float32            { return l.gravity }
func (l *Lamp) HeaterTemperature() float32  { return l.heaterTemp }
func (l *Lamp) AmbientTemperature() float32 { return l.ambientTemp }

// SimulationTime returns the accumulated simulated seconds.
func (l *Lamp) SimulationTime() float32 { return l.simTime }

// MergeCount returns the number of merges since construction.
func (l *Lamp) MergeCount() uint64 { return l.merges }

// SplitCount returns the number of splits since construction.
func (l *Lamp) SplitCount() uint64 { return l.splits }

// TempFactor normalizes a temperature into [0,1] between ambient and heater.
func (l *Lamp) TempFactor(temp float32) float32 {
	span := l.heaterTemp - l.ambientTemp
	if span < 1 {
		span = 1
	}
	return clamp01((temp - l.ambientTemp) / span)
}

// heightFraction maps y to [0,1] over the glass column (unclamped).
func (l *Lamp) heightFraction(y float32) float32 {
	return (y - l.baseHeight) / (l.height - l.baseHeight)
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func mix(a, b, t float32) float32 {
	return a + (b-a)*t
}
