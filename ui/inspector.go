package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/lavalamp/lamp"
)

// InspectorData is the selected blob plus the lamp context its readouts need.
type InspectorData struct {
	Index      int
	Count      int
	Blob       lamp.Blob
	Ambient    float32
	Heater     float32
	BaseHeight float32
	Height     float32
	Rendered   bool // Within the renderer's blob capacity
}

// HeightFraction is the blob's height within the glass column.
func (d InspectorData) HeightFraction() float32 {
	span := d.Height - d.BaseHeight
	if span <= 0 {
		return 0
	}
	return (d.Blob.Position.Y() - d.BaseHeight) / span
}

// Rising reports whether the blob is in the heating half of its cycle.
func (d InspectorData) Rising() bool {
	return d.Blob.HeatPhase < 0.5
}

func inspectorData(v any) InspectorData {
	d, _ := v.(InspectorData)
	return d
}

// blobSections describes the inspector layout.
var blobSections = []SectionDescriptor{
	{
		ID:    "motion",
		Title: "Motion",
		Fields: []FieldDescriptor{
			{
				ID: "position", Label: "Position", Widget: WidgetText,
				TextGetter: func(v any) string {
					p := inspectorData(v).Blob.Position
					return fmt.Sprintf("%.2f, %.2f, %.2f", p.X(), p.Y(), p.Z())
				},
			},
			{
				ID: "height", Label: "Height", Widget: WidgetBar, Range: DefaultRange(),
				Getter: func(v any) float32 { return inspectorData(v).HeightFraction() },
			},
			{
				ID: "speed", Label: "Speed", Widget: WidgetText, Format: "%.3f",
				Getter: func(v any) float32 { return inspectorData(v).Blob.Velocity.Len() },
			},
			{
				ID: "anchor", Label: "Anchor", Widget: WidgetText,
				TextGetter: func(v any) string {
					a := inspectorData(v).Blob.AnchorPoint
					return fmt.Sprintf("%.2f, %.2f, %.2f", a.X(), a.Y(), a.Z())
				},
			},
		},
	},
	{
		ID:    "thermal",
		Title: "Thermal",
		Fields: []FieldDescriptor{
			{
				ID: "temperature", Label: "Temp", Widget: WidgetBar, Color: rl.Color{R: 230, G: 90, B: 40, A: 255},
				Getter: func(v any) float32 { return inspectorData(v).Blob.Temperature },
			},
			{
				ID: "phase", Label: "Phase", Widget: WidgetBar, Range: DefaultRange(),
				Getter: func(v any) float32 { return inspectorData(v).Blob.HeatPhase },
			},
			{
				ID: "direction", Label: "Cycle", Widget: WidgetText,
				TextGetter: func(v any) string {
					if inspectorData(v).Rising() {
						return "rising"
					}
					return "falling"
				},
			},
			{
				ID: "cycle_speed", Label: "Cycle rate", Widget: WidgetText, Format: "%.2f",
				Getter: func(v any) float32 { return inspectorData(v).Blob.CycleSpeed },
			},
		},
	},
	{
		ID:    "shape",
		Title: "Shape",
		Fields: []FieldDescriptor{
			{
				ID: "radius", Label: "Radius", Widget: WidgetText, Format: "%.3f",
				Getter: func(v any) float32 { return inspectorData(v).Blob.Radius },
			},
			{
				ID: "blobbiness", Label: "Blobbiness", Widget: WidgetText, Format: "%.3f",
				Getter: func(v any) float32 { return inspectorData(v).Blob.Blobbiness },
			},
			{
				ID: "color", Label: "Color", Widget: WidgetColorSwatch,
				ColorGetter: func(v any) rl.Color { return ToColor(inspectorData(v).Blob.Color) },
			},
			{
				ID: "hidden", Label: "Render", Widget: WidgetText,
				Visible:    func(v any) bool { return !inspectorData(v).Rendered },
				TextGetter: func(any) string { return "over capacity" },
			},
		},
	},
}

// Inspector renders the selected blob's state.
type Inspector struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewInspector creates a new inspector panel.
func NewInspector(x, y, width int32) *Inspector {
	return &Inspector{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetPosition updates the inspector position.
func (ins *Inspector) SetPosition(x, y int32) {
	ins.x = x
	ins.y = y
}

// Draw renders the inspector panel for the given data.
func (ins *Inspector) Draw(data InspectorData) int32 {
	r := ins.renderer
	padding := r.Theme.Padding

	sections := ins.sections(data)

	panelHeight := padding*2 + r.Theme.LineHeight + 6
	for _, sd := range sections {
		panelHeight += r.SectionHeight(sd, data)
	}
	r.DrawPanel(ins.x, ins.y, ins.width, panelHeight)

	y := ins.y + padding
	contentWidth := ins.width - padding*2

	title := "No blobs"
	if data.Count > 0 {
		title = fmt.Sprintf("Blob %d of %d  [ / ]", data.Index+1, data.Count)
	}
	rl.DrawText(title, ins.x+padding, y, 16, rl.White)
	y += r.Theme.LineHeight + 6

	if data.Count == 0 {
		return y
	}
	for _, sd := range sections {
		y = r.DrawSection(ins.x+padding, y, sd, data, contentWidth)
	}
	return y
}

// sections returns the layout with the temperature bar spanning ambient to heater.
func (ins *Inspector) sections(data InspectorData) []SectionDescriptor {
	out := make([]SectionDescriptor, len(blobSections))
	copy(out, blobSections)

	thermal := out[1]
	thermal.Fields = append([]FieldDescriptor(nil), thermal.Fields...)
	thermal.Fields[0].Range = FieldRange{Min: data.Ambient, Max: data.Heater}
	out[1] = thermal
	return out
}
