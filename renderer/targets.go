package renderer

import "log/slog"

// depthTarget is a framebuffer with only a depth attachment.
type depthTarget struct {
	fb  Handle
	tex Handle
}

// DepthTargets caches the front and back depth targets at the current
// framebuffer size, plus a far-plane fallback texture used when a depth
// texture could not be created.
type DepthTargets struct {
	dev    Device
	logger *slog.Logger

	front, back depthTarget
	fallback    Handle
	w, h        int
	allocated   bool
}

// NewDepthTargets creates an empty cache. Nothing is allocated until Ensure.
func NewDepthTargets(dev Device, logger *slog.Logger) *DepthTargets {
	if logger == nil {
		logger = slog.Default()
	}
	return &DepthTargets{dev: dev, logger: logger}
}

// Ensure (re)allocates both targets when the size differs from the cached
// one. Repeated calls with the same size do nothing.
func (d *DepthTargets) Ensure(w, h int) {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	if d.allocated && w == d.w && h == d.h {
		return
	}

	d.releaseTargets()
	d.front = d.create("front", w, h)
	d.back = d.create("back", w, h)
	d.w, d.h = w, h
	d.allocated = true
}

func (d *DepthTargets) create(name string, w, h int) depthTarget {
	tex := d.dev.CreateDepthTexture(w, h)
	if tex == 0 {
		d.logger.Warn("depth texture unavailable, using far-plane fallback",
			"target", name, "width", w, "height", h)
		return depthTarget{tex: d.fallbackTexture()}
	}

	fb := d.dev.CreateFramebuffer(tex)
	if fb == 0 || !d.dev.FramebufferComplete(fb) {
		d.logger.Warn("depth framebuffer incomplete", "target", name, "width", w, "height", h)
	}
	return depthTarget{fb: fb, tex: tex}
}

func (d *DepthTargets) fallbackTexture() Handle {
	if d.fallback == 0 {
		d.fallback = d.dev.CreateFarDepthTexture()
	}
	return d.fallback
}

// Size returns the cached dimensions.
func (d *DepthTargets) Size() (int, int) { return d.w, d.h }

// Front returns the framebuffer and depth texture for front faces.
func (d *DepthTargets) Front() (fb, tex Handle) { return d.front.fb, d.front.tex }

// Back returns the framebuffer and depth texture for back faces.
func (d *DepthTargets) Back() (fb, tex Handle) { return d.back.fb, d.back.tex }

// releaseTargets frees the sized targets but keeps the fallback.
func (d *DepthTargets) releaseTargets() {
	for _, t := range []*depthTarget{&d.front, &d.back} {
		if t.fb != 0 {
			d.dev.DeleteFramebuffer(t.fb)
		}
		if t.tex != 0 && t.tex != d.fallback {
			d.dev.DeleteTexture(t.tex)
		}
		*t = depthTarget{}
	}
	d.allocated = false
}

// Release frees every GPU object the cache owns.
func (d *DepthTargets) Release() {
	d.releaseTargets()
	if d.fallback != 0 {
		d.dev.DeleteTexture(d.fallback)
		d.fallback = 0
	}
	d.w, d.h = 0, 0
}
