// Package geometry builds the lava lamp container meshes from profile curves.
//
// A profile is a list of (height, radius) samples revolved around the Y axis.
// The same glass profile drives both the rendered mesh and the simulation's
// wall constraint, so the two can only disagree if the config does.
package geometry

import (
	"sort"

	"github.com/pthm-cable/lavalamp/config"
)

// ProfilePoint is one sample of a surface of revolution.
type ProfilePoint struct {
	Height float32
	Radius float32
}

// Profile is a list of samples ordered by increasing height.
type Profile []ProfilePoint

// NewProfile converts config samples into a height-sorted profile.
func NewProfile(points []config.ProfilePointConfig) Profile {
	p := make(Profile, len(points))
	for i, pt := range points {
		p[i] = ProfilePoint{Height: float32(pt.Height), Radius: float32(pt.Radius)}
	}
	sort.SliceStable(p, func(i, j int) bool { return p[i].Height < p[j].Height })
	return p
}

// RadiusAt returns the linearly interpolated radius at height y.
// Heights outside the profile clamp to the end samples.
func (p Profile) RadiusAt(y float32) float32 {
	switch len(p) {
	case 0:
		return 0
	case 1:
		return p[0].Radius
	}

	if y <= p[0].Height {
		return p[0].Radius
	}
	last := p[len(p)-1]
	if y >= last.Height {
		return last.Radius
	}

	for i := 1; i < len(p); i++ {
		hi := p[i]
		if y > hi.Height {
			continue
		}
		lo := p[i-1]
		span := hi.Height - lo.Height
		if span <= 0 {
			return hi.Radius
		}
		t := (y - lo.Height) / span
		return lo.Radius + (hi.Radius-lo.Radius)*t
	}
	return last.Radius
}

// Bottom returns the lowest sample.
func (p Profile) Bottom() ProfilePoint {
	if len(p) == 0 {
		return ProfilePoint{}
	}
	return p[0]
}

// Top returns the highest sample.
func (p Profile) Top() ProfilePoint {
	if len(p) == 0 {
		return ProfilePoint{}
	}
	return p[len(p)-1]
}

// slopeAt returns dr/dy around sample i, averaging adjacent segments.
func (p Profile) slopeAt(i int) float32 {
	var sum float32
	var n int
	if i > 0 {
		if dy := p[i].Height - p[i-1].Height; dy > 0 {
			sum += (p[i].Radius - p[i-1].Radius) / dy
			n++
		}
	}
	if i < len(p)-1 {
		if dy := p[i+1].Height - p[i].Height; dy > 0 {
			sum += (p[i+1].Radius - p[i].Radius) / dy
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float32(n)
}
