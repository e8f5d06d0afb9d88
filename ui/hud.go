package ui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title         string
	BlobCount     int
	RenderedBlobs int
	SimTime       float32
	Merges        uint64
	Splits        uint64
	HeaterTemp    float32
	FPS           int32
	Animate       bool
	ScreenWidth   int32
	ScreenHeight  int32
}

// BlobLine formats the blob count, noting blobs beyond render capacity.
func (d HUDData) BlobLine() string {
	if d.BlobCount > d.RenderedBlobs {
		return fmt.Sprintf("Blobs: %d (%d drawn)", d.BlobCount, d.RenderedBlobs)
	}
	return fmt.Sprintf("Blobs: %d", d.BlobCount)
}

// HUD renders the main heads-up display in the top-right corner.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{
		renderer: NewRenderer(),
	}
}

// Draw renders the HUD.
func (h *HUD) Draw(data HUDData) {
	const width = 260
	x := data.ScreenWidth - width - 10

	rl.DrawText(data.Title, x, 10, 20, rl.White)

	rl.DrawText(
		fmt.Sprintf("%s | FPS: %d", data.BlobLine(), data.FPS),
		x, 35, 16, rl.LightGray,
	)

	rl.DrawText(
		fmt.Sprintf("Time: %.1fs | Heater: %.0f", data.SimTime, data.HeaterTemp),
		x, 55, 16, rl.LightGray,
	)

	rl.DrawText(
		fmt.Sprintf("Merges: %d | Splits: %d", data.Merges, data.Splits),
		x, 75, 16, rl.LightGray,
	)

	if !data.Animate {
		rl.DrawText("PAUSED", x, 95, 16, rl.Yellow)
	}
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenWidth, screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// PerfPanelData holds performance metrics for display.
type PerfPanelData struct {
	PhaseTimes map[string]time.Duration
	Total      time.Duration
	FPS        float64
}

// PerfPanel renders the per-pass frame timing panel.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y int32) *PerfPanel {
	return &PerfPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
	}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the performance panel. Phases are listed in the given order.
func (p *PerfPanel) Draw(data PerfPanelData, order []string) {
	x := p.x
	y := p.y

	p.renderer.DrawPanel(x-6, y-6, 280, int32(len(order))*14+50)

	rl.DrawText("Frame Timing", x, y, 16, rl.White)
	y += 20

	rl.DrawText(fmt.Sprintf("Total: %s | %.0f fps", data.Total.Round(time.Microsecond), data.FPS), x, y, 14, rl.Yellow)
	y += 16

	for _, name := range order {
		avg := data.PhaseTimes[name]
		pct := float64(0)
		if data.Total > 0 {
			pct = float64(avg) / float64(data.Total) * 100
		}

		color := rl.LightGray
		if pct > 40 {
			color = rl.Red
		} else if pct > 20 {
			color = rl.Orange
		}

		rl.DrawText(
			fmt.Sprintf("%-16s %8s %5.1f%%", name, avg.Round(time.Microsecond), pct),
			x, y, 12, color,
		)
		y += 14
	}
}
