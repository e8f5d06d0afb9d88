package ui

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/lavalamp/lamp"
)

func TestFieldRangeNormalize(t *testing.T) {
	tests := []struct {
		name string
		rng  FieldRange
		v    float32
		want float32
	}{
		{"inside", FieldRange{20, 80}, 50, 0.5},
		{"below", FieldRange{20, 80}, 0, 0},
		{"above", FieldRange{20, 80}, 100, 1},
		{"empty range", FieldRange{1, 1}, 1, 0},
		{"inverted range", FieldRange{2, 1}, 1.5, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rng.Normalize(tt.v); math.Abs(float64(got-tt.want)) > 1e-6 {
				t.Errorf("Normalize(%v) = %v, want %v", tt.v, got, tt.want)
			}
		})
	}
}

func TestToColor(t *testing.T) {
	c := ToColor([3]float32{1, 0.3, -0.2})
	if c.R != 255 || c.G != 77 || c.B != 0 || c.A != 255 {
		t.Errorf("ToColor = %+v, want {255 77 0 255}", c)
	}
}

func TestControlsClamp(t *testing.T) {
	tests := []struct {
		name          string
		in            Controls
		heater, thres float32
	}{
		{"inside", Controls{HeaterTemp: 80, Threshold: 1}, 80, 1},
		{"low", Controls{HeaterTemp: 0, Threshold: 0}, HeaterTempMin, ThresholdMin},
		{"high", Controls{HeaterTemp: 500, Threshold: 9}, HeaterTempMax, ThresholdMax},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := tt.in
			c.Clamp()
			if c.HeaterTemp != tt.heater || c.Threshold != tt.thres {
				t.Errorf("got heater %v threshold %v, want %v %v", c.HeaterTemp, c.Threshold, tt.heater, tt.thres)
			}
		})
	}
}

func TestControlPanelContains(t *testing.T) {
	p := NewControlPanel(10, 10, 240)

	if !p.Contains(20, 20) {
		t.Error("point inside panel not contained")
	}
	if p.Contains(400, 20) {
		t.Error("point right of panel contained")
	}
	if p.Contains(20, 10+p.Bounds().Height) {
		t.Error("bottom edge should be exclusive")
	}
}

func TestControlActionsAny(t *testing.T) {
	if (ControlActions{}).Any() {
		t.Error("no presses should report false")
	}
	if !(ControlActions{ResetCamera: true}).Any() {
		t.Error("reset camera press not reported")
	}
}

func TestHUDBlobLine(t *testing.T) {
	tests := []struct {
		blobs, rendered int
		want            string
	}{
		{5, 5, "Blobs: 5"},
		{20, 16, "Blobs: 20 (16 drawn)"},
	}
	for _, tt := range tests {
		d := HUDData{BlobCount: tt.blobs, RenderedBlobs: tt.rendered}
		if got := d.BlobLine(); got != tt.want {
			t.Errorf("BlobLine() = %q, want %q", got, tt.want)
		}
	}
}

func TestInspectorDataHeightFraction(t *testing.T) {
	d := InspectorData{
		Blob:       lamp.NewBlob(mgl32.Vec3{0, 5.85, 0}, 0.5),
		BaseHeight: 1.7,
		Height:     10,
	}
	if got := d.HeightFraction(); math.Abs(float64(got-0.5)) > 1e-5 {
		t.Errorf("height fraction = %v, want 0.5", got)
	}

	d.Height = d.BaseHeight
	if got := d.HeightFraction(); got != 0 {
		t.Errorf("degenerate column fraction = %v, want 0", got)
	}
}

func TestInspectorSectionsTemperatureRange(t *testing.T) {
	ins := NewInspector(0, 0, 260)
	data := InspectorData{Ambient: 20, Heater: 120}

	sections := ins.sections(data)
	temp := sections[1].Fields[0]
	if temp.ID != "temperature" {
		t.Fatalf("expected temperature field, got %s", temp.ID)
	}
	if temp.Range.Min != 20 || temp.Range.Max != 120 {
		t.Errorf("temperature range = %+v, want 20..120", temp.Range)
	}

	// The shared layout is left untouched
	if blobSections[1].Fields[0].Range != (FieldRange{}) {
		t.Error("sections() modified the shared layout")
	}
}

func TestSectionHeightSkipsHiddenFields(t *testing.T) {
	r := NewRenderer()
	shape := blobSections[2]

	shown := r.SectionHeight(shape, InspectorData{Rendered: false})
	hidden := r.SectionHeight(shape, InspectorData{Rendered: true})

	if shown-hidden != r.Theme.LineHeight {
		t.Errorf("over-capacity line should add one line: %d vs %d", shown, hidden)
	}
}
