package geometry

import "github.com/pthm-cable/lavalamp/config"

// Container describes the lamp body as profile curves.
type Container struct {
	Glass     Profile
	MetalBulb Profile
	MetalBase Profile
	TopCap    Profile
	ConeDepth float32
	Segments  int
}

// NewContainer builds a container description from config.
func NewContainer(cfg config.ContainerConfig) Container {
	segments := cfg.Segments
	if segments < 3 {
		segments = 64
	}
	return Container{
		Glass:     NewProfile(cfg.Glass),
		MetalBulb: NewProfile(cfg.MetalBulb),
		MetalBase: NewProfile(cfg.MetalBase),
		TopCap:    NewProfile(cfg.TopCap),
		ConeDepth: float32(cfg.BottomConeDepth),
		Segments:  segments,
	}
}

// GlassMesh returns the translucent tube holding the wax.
func (c Container) GlassMesh() MeshData {
	return Revolve(c.Glass, c.Segments)
}

// MetalMesh returns every opaque part: lower bulb, inverted cone under the
// glass, top cap with its lid, and the flared base with its floor.
func (c Container) MetalMesh() MeshData {
	var m MeshData

	m.Append(Revolve(c.MetalBulb, c.Segments))

	if len(c.MetalBulb) > 0 && c.ConeDepth > 0 {
		bottom := c.MetalBulb.Bottom()
		m.Append(Cone(bottom.Height, bottom.Radius, c.ConeDepth, c.Segments))
	}

	if len(c.TopCap) > 0 {
		m.Append(Revolve(c.TopCap, c.Segments))
		top := c.TopCap.Top()
		m.Append(Disc(top.Height, top.Radius, c.Segments, true))
	}

	if len(c.MetalBase) > 0 {
		m.Append(Revolve(c.MetalBase, c.Segments))
		floor := c.MetalBase.Bottom()
		m.Append(Disc(floor.Height, floor.Radius, c.Segments, false))
	}

	return m
}
