package telemetry

import (
	"math"

	"github.com/pthm-cable/lavalamp/lamp"
)

// Collector turns lamp state into WindowStats at fixed simulated intervals.
type Collector struct {
	windowDurationSec   float64
	windowDurationTicks int32
	dt                  float32
	maxRendered         int

	// Current window tracking
	windowStartTick int32
	mergesAtStart   uint64
	splitsAtStart   uint64
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per tick (used for tick-to-time conversion)
// maxRendered: renderer blob capacity, reported alongside the true count
func NewCollector(windowDurationSec float64, dt float32, maxRendered int) *Collector {
	// Rounded: float32 dt makes e.g. 10s / (1/60) land just under 600
	ticksPerWindow := int32(math.Round(windowDurationSec / float64(dt)))
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}

	return &Collector{
		windowDurationSec:   windowDurationSec,
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
		maxRendered:         maxRendered,
	}
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// WindowDurationTicks returns the window length in ticks.
func (c *Collector) WindowDurationTicks() int32 {
	return c.windowDurationTicks
}

// Flush summarizes the lamp and starts the next window.
func (c *Collector) Flush(currentTick int32, l *lamp.Lamp) WindowStats {
	blobs := l.Blobs()
	n := len(blobs)

	radii := make([]float64, n)
	temps := make([]float64, n)
	heights := make([]float64, n)
	speeds := make([]float64, n)
	var volume float64
	rising := 0

	column := float64(l.Height() - l.BaseHeight())
	for i, b := range blobs {
		radii[i] = float64(b.Radius)
		temps[i] = float64(b.Temperature)
		heights[i] = float64(b.Position.Y()-l.BaseHeight()) / column
		speeds[i] = float64(b.Velocity.Len())
		volume += float64(b.Volume())
		if b.HeatPhase < 0.5 {
			rising++
		}
	}

	radius := ComputeDistribution(radii)
	temp := ComputeDistribution(temps)
	height := ComputeDistribution(heights)
	speed := ComputeDistribution(speeds)

	var risingFrac float64
	if n > 0 {
		risingFrac = float64(rising) / float64(n)
	}
	rendered := n
	if c.maxRendered > 0 && rendered > c.maxRendered {
		rendered = c.maxRendered
	}

	merges, splits := l.MergeCount(), l.SplitCount()

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(l.SimulationTime()),

		BlobCount:      n,
		RenderedBlobs:  rendered,
		RisingFraction: risingFrac,

		Merges: int(merges - c.mergesAtStart),
		Splits: int(splits - c.splitsAtStart),

		RadiusMean: radius.Mean,
		RadiusStd:  radius.Std,
		RadiusP10:  radius.P10,
		RadiusP50:  radius.P50,
		RadiusP90:  radius.P90,

		TempMean: temp.Mean,
		TempP10:  temp.P10,
		TempP50:  temp.P50,
		TempP90:  temp.P90,

		HeightMean: height.Mean,
		HeightP50:  height.P50,

		SpeedMean: speed.Mean,
		SpeedMax:  speed.Max,

		TotalVolume: volume,
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.mergesAtStart = merges
	c.splitsAtStart = splits

	return stats
}
