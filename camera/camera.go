// Package camera provides an orbit camera around the lamp.
package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/lavalamp/config"
)

// Camera orbits a target point at a given distance.
// Pitch tilts around X, yaw turns around Y, both in radians.
type Camera struct {
	Pitch, Yaw float32
	Distance   float32
	Target     mgl32.Vec3

	// Projection
	Fov       float32 // Vertical field of view in degrees
	Near, Far float32

	// Viewport dimensions (screen size)
	ViewportW, ViewportH float32

	// Distance constraints
	MinDistance, MaxDistance float32

	home orbit
}

type orbit struct {
	pitch, yaw, distance float32
}

// New creates a camera at the configured home orbit.
func New(viewportW, viewportH float32, cfg config.CameraConfig) *Camera {
	c := &Camera{
		Pitch:       float32(cfg.Pitch),
		Yaw:         float32(cfg.Yaw),
		Distance:    float32(cfg.Distance),
		Target:      mgl32.Vec3{float32(cfg.Target[0]), float32(cfg.Target[1]), float32(cfg.Target[2])},
		Fov:         float32(cfg.Fov),
		Near:        float32(cfg.Near),
		Far:         float32(cfg.Far),
		ViewportW:   viewportW,
		ViewportH:   viewportH,
		MinDistance: float32(cfg.MinDistance),
		MaxDistance: float32(cfg.MaxDistance),
	}
	c.SetDistance(c.Distance)
	c.home = orbit{c.Pitch, c.Yaw, c.Distance}
	return c
}

// View returns the world-to-eye transform.
func (c *Camera) View() mgl32.Mat4 {
	return mgl32.Translate3D(0, 0, -c.Distance).
		Mul4(mgl32.HomogRotate3DX(c.Pitch)).
		Mul4(mgl32.HomogRotate3DY(c.Yaw)).
		Mul4(mgl32.Translate3D(-c.Target[0], -c.Target[1], -c.Target[2]))
}

// Projection returns the perspective projection for the current viewport.
func (c *Camera) Projection() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.Fov), c.Aspect(), c.Near, c.Far)
}

// Aspect returns width over height, 1 for a degenerate viewport.
func (c *Camera) Aspect() float32 {
	if c.ViewportH <= 0 || c.ViewportW <= 0 {
		return 1
	}
	return c.ViewportW / c.ViewportH
}

// Eye returns the camera position in world space.
func (c *Camera) Eye() mgl32.Vec3 {
	return c.View().Inv().Mul4x1(mgl32.Vec4{0, 0, 0, 1}).Vec3()
}

// Resize updates viewport dimensions.
func (c *Camera) Resize(viewportW, viewportH float32) {
	c.ViewportW = viewportW
	c.ViewportH = viewportH
}

// Orbit rotates by a mouse drag of (dx, dy) pixels. A drag across the full
// viewport height turns by π.
func (c *Camera) Orbit(dx, dy float32) {
	h := c.ViewportH
	if h <= 0 {
		h = 1
	}
	perPixel := float32(math.Pi) / h

	c.Pitch = clamp(c.Pitch+dy*perPixel, -math.Pi/2, math.Pi/2)
	c.Yaw = wrapAngle(c.Yaw + dx*perPixel)
}

// SetDistance sets the orbit distance, clamped to min/max.
func (c *Camera) SetDistance(d float32) {
	c.Distance = clamp(d, c.MinDistance, c.MaxDistance)
}

// ZoomBy applies scroll steps; positive steps move closer.
func (c *Camera) ZoomBy(steps float32) {
	c.SetDistance(c.Distance * float32(math.Pow(1.1, float64(-steps))))
}

// Reset returns the camera to the home orbit.
func (c *Camera) Reset() {
	c.Pitch = c.home.pitch
	c.Yaw = c.home.yaw
	c.Distance = c.home.distance
}

// wrapAngle folds a into [-π, π].
func wrapAngle(a float32) float32 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a < -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

// clamp restricts a value to a range.
func clamp(x, min, max float32) float32 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}
