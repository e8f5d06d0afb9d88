package lamp

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/lavalamp/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("loading defaults: %v", err)
	}
	return cfg
}

func hasNaN(v mgl32.Vec3) bool {
	for _, c := range v {
		if math.IsNaN(float64(c)) || math.IsInf(float64(c), 0) {
			return true
		}
	}
	return false
}

func TestNewIsEmpty(t *testing.T) {
	l := New(testConfig(t), 1)
	if l.BlobCount() != 0 {
		t.Errorf("new lamp has %d blobs", l.BlobCount())
	}
	if l.Radius() != 1.8 || l.Height() != 10 || l.BaseHeight() != 1.7 {
		t.Errorf("geometry = %v/%v/%v", l.Radius(), l.Height(), l.BaseHeight())
	}
	if math.Abs(float64(l.TopRadius()-1.0)) > 1e-5 {
		t.Errorf("top radius = %v, want 1.0", l.TopRadius())
	}
}

func TestInitialize(t *testing.T) {
	tests := []struct {
		name string
		n    int
		want int
	}{
		{"five", 5, 5},
		{"zero", 0, 0},
		{"negative", -3, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := New(testConfig(t), 7)
			l.AddBlob(mgl32.Vec3{0, 3, 0}, 0.5)
			l.Initialize(tt.n)
			if l.BlobCount() != tt.want {
				t.Fatalf("count = %d, want %d", l.BlobCount(), tt.want)
			}
			for i, b := range l.Blobs() {
				if b.Radius < 0.5 || b.Radius > 0.8 {
					t.Errorf("blob %d radius %v out of [0.5, 0.8]", i, b.Radius)
				}
				if b.Blobbiness >= 0 {
					t.Errorf("blob %d blobbiness %v not negative", i, b.Blobbiness)
				}
				if b.HeatPhase < 0 || b.HeatPhase >= 1 {
					t.Errorf("blob %d phase %v out of range", i, b.HeatPhase)
				}
				if b.AnchorPoint != b.Position {
					t.Errorf("blob %d anchor %v != position %v", i, b.AnchorPoint, b.Position)
				}
				if b.Velocity != (mgl32.Vec3{}) {
					t.Errorf("blob %d not at rest", i)
				}
			}
		})
	}
}

func TestInitialBlobbinessNegative(t *testing.T) {
	tests := []struct {
		r    float32
		want float32
	}{
		{-1, maxBlobbiness},
		{0, -0.15},
		{0.999, -0.29985},
	}

	for _, tt := range tests {
		got := initialBlobbiness(tt.r)
		if got >= 0 {
			t.Errorf("initialBlobbiness(%v) = %v, want negative", tt.r, got)
		}
		if math.Abs(float64(got-tt.want)) > 1e-5 {
			t.Errorf("initialBlobbiness(%v) = %v, want %v", tt.r, got, tt.want)
		}
	}
}

func TestUpdateNonPositiveDtIsNoOp(t *testing.T) {
	l := New(testConfig(t), 3)
	l.Initialize(5)
	before := l.Blobs()

	l.Update(0)
	l.Update(-0.1)

	if l.SimulationTime() != 0 {
		t.Errorf("simulation time advanced to %v", l.SimulationTime())
	}
	after := l.Blobs()
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("blob %d changed", i)
		}
	}
}

func TestSimulationTimeAccumulates(t *testing.T) {
	l := New(testConfig(t), 3)
	l.Initialize(2)
	for i := 0; i < 10; i++ {
		l.Update(0.01)
	}
	if math.Abs(float64(l.SimulationTime()-0.1)) > 1e-5 {
		t.Errorf("simulation time = %v, want 0.1", l.SimulationTime())
	}
}

func TestScenarioTenSeconds(t *testing.T) {
	l := New(testConfig(t), 42)
	l.Initialize(5)

	for i := 0; i < 600; i++ {
		l.Update(0.016)
	}

	n := l.BlobCount()
	if n < 1 || n > 20 {
		t.Fatalf("blob count = %d, want in [1, 20]", n)
	}
	for i, b := range l.Blobs() {
		if !(b.Radius > 0) {
			t.Errorf("blob %d radius = %v", i, b.Radius)
		}
		if hasNaN(b.Position) || hasNaN(b.Velocity) {
			t.Errorf("blob %d has NaN state: %+v", i, b)
		}
	}
}

func TestPhaseWraps(t *testing.T) {
	l := New(testConfig(t), 11)
	l.Initialize(5)
	for i := 0; i < 3000; i++ {
		l.Update(0.05)
		for j, b := range l.Blobs() {
			if b.HeatPhase < 0 || b.HeatPhase >= 1 {
				t.Fatalf("step %d blob %d phase = %v", i, j, b.HeatPhase)
			}
		}
	}
}

func TestWrapPhase(t *testing.T) {
	tests := []struct {
		in, want float32
	}{
		{0, 0},
		{0.25, 0.25},
		{1, 0},
		{1.25, 0.25},
		{3.5, 0.5},
		{-0.25, 0.75},
		{-1e-9, 0},
	}
	for _, tt := range tests {
		got := wrapPhase(tt.in)
		if got < 0 || got >= 1 {
			t.Errorf("wrapPhase(%v) = %v, outside [0,1)", tt.in, got)
		}
		if math.Abs(float64(got-tt.want)) > 1e-6 {
			t.Errorf("wrapPhase(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestPhaseDistance(t *testing.T) {
	tests := []struct {
		a, b, want float32
	}{
		{0.1, 0.2, 0.1},
		{0.95, 0.05, 0.1},
		{0.0, 0.5, 0.5},
	}
	for _, tt := range tests {
		if got := phaseDistance(tt.a, tt.b); math.Abs(float64(got-tt.want)) > 1e-6 {
			t.Errorf("phaseDistance(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestBoundaryContainment(t *testing.T) {
	const slack = 0.3

	for _, seed := range []int64{1, 2, 3} {
		l := New(testConfig(t), seed)
		l.Initialize(8)
		for i := 0; i < 1000; i++ {
			l.Update(1.0 / 60)
		}
		for i, b := range l.Blobs() {
			radial := mgl32.Vec2{b.Position.X(), b.Position.Z()}.Len()
			limit := l.permittedRadius(b.Position.Y(), b.Radius)
			if radial > limit+slack {
				t.Errorf("seed %d blob %d radial %v exceeds permitted %v", seed, i, radial, limit)
			}
			if b.Position.Y() < l.BaseHeight()-slack || b.Position.Y() > l.Height()+slack {
				t.Errorf("seed %d blob %d height %v outside column", seed, i, b.Position.Y())
			}
		}
	}
}

func TestBlobAtAxisOnBaseDoesNotProduceNaN(t *testing.T) {
	l := New(testConfig(t), 5)
	l.AddBlob(mgl32.Vec3{0, l.BaseHeight(), 0}, 0.5)

	l.Update(0.016)

	b := l.Blobs()[0]
	if hasNaN(b.Position) || hasNaN(b.Velocity) {
		t.Fatalf("NaN after update: pos=%v vel=%v", b.Position, b.Velocity)
	}
}

func TestCoincidentBlobsRepelWithoutNaN(t *testing.T) {
	l := New(testConfig(t), 9)
	l.AddBlob(mgl32.Vec3{0, 4, 0}, 0.5)
	l.AddBlob(mgl32.Vec3{0, 4, 0}, 0.5)

	l.Update(0.016)

	for i, b := range l.Blobs() {
		if hasNaN(b.Position) || hasNaN(b.Velocity) {
			t.Fatalf("blob %d NaN: %+v", i, b)
		}
	}
}

func TestEmptyAccessorsReturnOneDefault(t *testing.T) {
	l := New(testConfig(t), 1)
	l.Initialize(3)
	for l.BlobCount() > 0 {
		l.RemoveBlob()
	}
	l.RemoveBlob() // no-op on empty

	pos := l.BlobPositions()
	if len(pos) != 1 || pos[0] != (mgl32.Vec4{}) {
		t.Errorf("positions = %v, want [vec4(0)]", pos)
	}
	if r := l.BlobRadii(); len(r) != 1 || r[0] != 0 {
		t.Errorf("radii = %v, want [0]", r)
	}
	if b := l.BlobBlobbiness(); len(b) != 1 || b[0] != 0 {
		t.Errorf("blobbiness = %v, want [0]", b)
	}
	if c := l.BlobColors(); len(c) != 1 || c[0] != EmptyColor {
		t.Errorf("colors = %v, want [%v]", c, EmptyColor)
	}
}

func TestAccessorsMatchBlobs(t *testing.T) {
	l := New(testConfig(t), 1)
	l.Initialize(4)

	pos := l.BlobPositions()
	radii := l.BlobRadii()
	blobs := l.Blobs()
	if len(pos) != 4 || len(radii) != 4 {
		t.Fatalf("accessor lengths %d/%d", len(pos), len(radii))
	}
	for i, b := range blobs {
		if pos[i].Vec3() != b.Position || pos[i].W() != 1 {
			t.Errorf("position %d = %v", i, pos[i])
		}
		if radii[i] != b.Radius {
			t.Errorf("radius %d = %v", i, radii[i])
		}
	}
}

func TestAddBlob(t *testing.T) {
	tests := []struct {
		name   string
		radius float32
		want   float32
	}{
		{"normal", 0.6, 0.6},
		{"tiny clamps", 0.001, 0.05},
		{"zero clamps", 0, 0.05},
		{"negative clamps", -1, 0.05},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := New(testConfig(t), 1)
			pos := mgl32.Vec3{0.2, 3, -0.1}
			l.AddBlob(pos, tt.radius)
			b := l.Blobs()[0]
			if math.Abs(float64(b.Radius-tt.want)) > 1e-6 {
				t.Errorf("radius = %v, want %v", b.Radius, tt.want)
			}
			if b.Temperature != l.AmbientTemperature() {
				t.Errorf("temperature = %v, want ambient", b.Temperature)
			}
			if b.Blobbiness != -0.5 || b.Color != DefaultColor || b.AnchorPoint != pos {
				t.Errorf("unexpected defaults: %+v", b)
			}
		})
	}
}

func TestRemoveBlobPopsLast(t *testing.T) {
	l := New(testConfig(t), 1)
	l.AddBlob(mgl32.Vec3{0, 3, 0}, 0.4)
	l.AddBlob(mgl32.Vec3{0, 5, 0}, 0.6)
	l.RemoveBlob()
	if l.BlobCount() != 1 || l.Blobs()[0].Radius != 0.4 {
		t.Errorf("remaining blobs = %+v", l.Blobs())
	}
}

func TestSettersAndGravityIgnored(t *testing.T) {
	a := New(testConfig(t), 21)
	b := New(testConfig(t), 21)
	a.Initialize(5)
	b.Initialize(5)

	b.SetGravity(-100)
	if b.Gravity() != -100 {
		t.Errorf("gravity = %v", b.Gravity())
	}
	for i := 0; i < 60; i++ {
		a.Update(0.016)
		b.Update(0.016)
	}
	ab, bb := a.Blobs(), b.Blobs()
	for i := range ab {
		if ab[i].Position != bb[i].Position {
			t.Fatalf("gravity changed blob %d: %v vs %v", i, ab[i].Position, bb[i].Position)
		}
	}

	a.SetHeaterTemperature(150)
	a.SetThreshold(2)
	if a.HeaterTemperature() != 150 || a.Threshold() != 2 {
		t.Errorf("setters not applied: %v %v", a.HeaterTemperature(), a.Threshold())
	}
}

func TestDeterministicForSeed(t *testing.T) {
	run := func() []Blob {
		l := New(testConfig(t), 99)
		l.Initialize(6)
		for i := 0; i < 300; i++ {
			l.Update(0.016)
		}
		return l.Blobs()
	}
	a, b := run(), run()
	if len(a) != len(b) {
		t.Fatalf("counts differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("blob %d differs", i)
		}
	}
}

func TestTemperatureRelaxesTowardHeater(t *testing.T) {
	l := New(testConfig(t), 1)
	l.AddBlob(mgl32.Vec3{0, l.BaseHeight() + 0.5, 0}, 0.5)

	l.updateTemperature(&l.blobs[0], 0.1)
	got := l.blobs[0].Temperature
	if got <= l.AmbientTemperature() || got > l.HeaterTemperature() {
		t.Errorf("temperature after relax = %v", got)
	}
}

func TestTempFactor(t *testing.T) {
	l := New(testConfig(t), 1)
	tests := []struct {
		temp, want float32
	}{
		{0, 0},
		{20, 0},
		{50, 0.5},
		{80, 1},
		{200, 1},
	}
	for _, tt := range tests {
		if got := l.TempFactor(tt.temp); math.Abs(float64(got-tt.want)) > 1e-6 {
			t.Errorf("TempFactor(%v) = %v, want %v", tt.temp, got, tt.want)
		}
	}

	l.SetHeaterTemperature(l.AmbientTemperature())
	if got := l.TempFactor(30); got > 1 || got < 0 {
		t.Errorf("degenerate span factor = %v", got)
	}
}
