package main

import (
	"image/color"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/lavalamp/lamp"
)

// SliceParams selects the vertical plane sampled through the lamp.
type SliceParams struct {
	Z         float32 // Depth of the XY plane
	Threshold float32
}

// sliceBounds returns the world rectangle covered by the preview: the full
// glass width and column height.
func sliceBounds(l *lamp.Lamp) (xMin, xMax, yMin, yMax float32) {
	r := l.Radius()
	if top := l.TopRadius(); top > r {
		r = top
	}
	return -r, r, l.BaseHeight(), l.Height()
}

// sampleSlice fills grid (row 0 at the top of the lamp) with the density
// field on the plane z = p.Z, returning the peak value.
func sampleSlice(l *lamp.Lamp, grid []float32, w, h int, p SliceParams) float32 {
	xMin, xMax, yMin, yMax := sliceBounds(l)
	var peak float32
	for row := 0; row < h; row++ {
		y := yMax - (float32(row)+0.5)/float32(h)*(yMax-yMin)
		for col := 0; col < w; col++ {
			x := xMin + (float32(col)+0.5)/float32(w)*(xMax-xMin)
			v := l.Density(mgl32.Vec3{x, y, p.Z})
			grid[row*w+col] = v
			if v > peak {
				peak = v
			}
		}
	}
	return peak
}

// insideFraction is the share of samples at or above the threshold.
func insideFraction(grid []float32, threshold float32) float32 {
	if len(grid) == 0 {
		return 0
	}
	var n int
	for _, v := range grid {
		if v >= threshold {
			n++
		}
	}
	return float32(n) / float32(len(grid))
}

// densityColor maps a density sample to a color. Values inside the
// isosurface are wax orange, outside fades from black toward the threshold.
func densityColor(v, threshold float32) color.RGBA {
	if threshold <= 0 {
		threshold = 1
	}
	if v >= threshold {
		// Brighter toward the blob cores
		t := clamp01((v - threshold) / (threshold * 4))
		return color.RGBA{R: 255, G: uint8(90 + t*120), B: uint8(20 + t*60), A: 255}
	}
	t := clamp01(v / threshold)
	return color.RGBA{R: uint8(10 + t*90), G: uint8(12 + t*40), B: uint8(30 + t*90), A: 255}
}

func clamp01(x float32) float32 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
