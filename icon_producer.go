package scaledbuf

import (
	"image"
	"reflect"
)

// IconLookup resolves a themed icon name to decoded pixels at (or near)
// the requested physical pixel size. Implementations typically front an
// icon-theme loader; returning (nil, error) moves resolution on to the
// next candidate. Install one on the registry with WithIconLookup.
type IconLookup func(name string, sizePx int, scale float64) (image.Image, error)

// iconPath records which resolution path produced the icon pixels.
type iconPath uint8

const (
	iconUnresolved iconPath = iota
	iconClient
	iconTheme
	iconFallback
)

// IconConfig describes the candidate sources for an application icon.
type IconConfig struct {
	// AppID is the application identifier, used for theme lookup when
	// IconName is empty.
	AppID string

	// IconName is the themed icon name to look up.
	IconName string

	// ClientBuffers are client-supplied icon images at various sizes.
	// Resolution picks the smallest one that covers the target size.
	ClientBuffers []image.Image

	// Fallback is rendered when neither a client buffer nor a theme
	// lookup yields pixels.
	Fallback *ImageSource

	// PreferTheme tries the theme lookup before client buffers. The
	// default order is client buffers first.
	PreferTheme bool
}

// IconContent is the producer state for an application icon. Resolution
// tries the configured candidates in priority order and remembers which
// source won; equality compares the candidate list and the chosen source
// identity, never final pixels.
type IconContent struct {
	cfg IconConfig

	resolved    image.Image
	resolvedVia iconPath
}

// NewIcon creates an icon producer from the given candidate sources.
func NewIcon(cfg IconConfig) *Producer {
	return &Producer{kind: KindIcon, icon: &IconContent{cfg: cfg}}
}

// Config returns the icon's candidate configuration.
func (c *IconContent) Config() IconConfig {
	return c.cfg
}

func (c *IconContent) equal(o *IconContent) bool {
	if c.cfg.AppID != o.cfg.AppID ||
		c.cfg.IconName != o.cfg.IconName ||
		c.cfg.PreferTheme != o.cfg.PreferTheme ||
		c.cfg.Fallback != o.cfg.Fallback ||
		len(c.cfg.ClientBuffers) != len(o.cfg.ClientBuffers) {
		return false
	}
	for i := range c.cfg.ClientBuffers {
		if !sameImage(c.cfg.ClientBuffers[i], o.cfg.ClientBuffers[i]) {
			return false
		}
	}
	// Once both sides have resolved, the chosen source must agree too:
	// the same config can resolve differently across theme reloads.
	if c.resolvedVia != iconUnresolved && o.resolvedVia != iconUnresolved {
		if c.resolvedVia != o.resolvedVia || !sameImage(c.resolved, o.resolved) {
			return false
		}
	}
	return true
}

// sameImage reports whether two images are the same instance. A direct
// interface comparison would panic when the dynamic type is not
// comparable (a value type holding a slice), so identity is decided via
// pointers: stdlib and gg images are pointer-typed. Non-pointer images
// of comparable types fall back to value equality; anything else has no
// establishable identity and compares unequal.
func sameImage(a, b image.Image) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Kind() == reflect.Pointer && vb.Kind() == reflect.Pointer {
		return va.Pointer() == vb.Pointer()
	}
	if va.Type().Comparable() && vb.Type().Comparable() {
		return a == b
	}
	return false
}

func (c *IconContent) render(r *Registry, logicalW, logicalH, scale float64) (*Buffer, error) {
	targetPx := physSize(max(logicalW, logicalH), scale)

	img, via := c.resolve(r, targetPx, scale)
	if img == nil {
		return nil, ErrNoIcon
	}
	c.resolved = img
	c.resolvedVia = via

	return FitAndScale(img, logicalW, logicalH, scale)
}

// resolve walks the candidate sources in priority order and returns the
// first that yields pixels.
func (c *IconContent) resolve(r *Registry, targetPx int, scale float64) (image.Image, iconPath) {
	client := func() (image.Image, iconPath) {
		return c.bestClientBuffer(targetPx), iconClient
	}
	theme := func() (image.Image, iconPath) {
		return c.themeLookup(r, targetPx, scale), iconTheme
	}

	order := []func() (image.Image, iconPath){client, theme}
	if c.cfg.PreferTheme {
		order = []func() (image.Image, iconPath){theme, client}
	}
	for _, next := range order {
		if img, via := next(); img != nil {
			return img, via
		}
	}
	if c.cfg.Fallback != nil {
		return c.cfg.Fallback.img, iconFallback
	}
	return nil, iconUnresolved
}

// bestClientBuffer picks the smallest client buffer that covers the
// target size, or the largest available when none does.
func (c *IconContent) bestClientBuffer(targetPx int) image.Image {
	var best image.Image
	bestSize := 0
	for _, img := range c.cfg.ClientBuffers {
		if img == nil {
			continue
		}
		b := img.Bounds()
		size := max(b.Dx(), b.Dy())
		if size <= 0 {
			continue
		}
		switch {
		case best == nil:
			best, bestSize = img, size
		case bestSize < targetPx:
			// Still undersized: any bigger candidate is an improvement.
			if size > bestSize {
				best, bestSize = img, size
			}
		case size >= targetPx && size < bestSize:
			best, bestSize = img, size
		}
	}
	return best
}

func (c *IconContent) themeLookup(r *Registry, targetPx int, scale float64) image.Image {
	if r == nil || r.iconLookup == nil {
		return nil
	}
	name := c.cfg.IconName
	if name == "" {
		name = c.cfg.AppID
	}
	if name == "" {
		return nil
	}
	img, err := r.iconLookup(name, targetPx, scale)
	if err != nil {
		Logger().Debug("scaledbuf: icon lookup failed", "name", name, "error", err)
		return nil
	}
	return img
}
