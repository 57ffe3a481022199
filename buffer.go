package scaledbuf

import (
	"image"
	"math"

	"github.com/gogpu/gg"
	xdraw "golang.org/x/image/draw"

	"github.com/gogpu/scaledbuf/internal/arena"
)

// Buffer is an immutable-after-construction rectangle of rendered pixels
// plus the logical (pre-scale) size it was rendered for. Buffers are the
// unit cached per element and shared across elements; their lifetime is
// managed by the owning Registry's reference-counted arena, so holding a
// *Buffer directly is only valid for the duration of the call that
// produced it.
//
// The pixel format is fixed: premultiplied 32-bit RGBA, 4 bytes per pixel.
type Buffer struct {
	logicalW float64
	logicalH float64
	scale    float64

	physW  int
	physH  int
	stride int

	pixmap *gg.Pixmap // owned storage
	view   []uint8    // borrowed view into an externally-owned surface
}

// BufferRef is a weak reference to a buffer in a registry's arena. Unlike
// a raw *Buffer, a BufferRef is safe to hold across content changes: once
// the buffer is freed, Get returns nil instead of a pointer into recycled
// storage. It does not keep the buffer alive.
type BufferRef struct {
	arena  *arena.Arena[Buffer]
	handle arena.Handle
}

// Get returns the referenced buffer, or nil once it has been freed.
func (r BufferRef) Get() *Buffer {
	if r.arena == nil {
		return nil
	}
	return r.arena.Get(r.handle)
}

// IsNil reports whether the reference never pointed at a buffer. A false
// IsNil does not imply the buffer is still live; use Get for that.
func (r BufferRef) IsNil() bool {
	return r.arena == nil || r.handle.IsNil()
}

// physSize converts a logical length to physical pixels at the given
// scale. The mapping is applied once, at buffer creation, and never
// recomputed.
func physSize(logical, scale float64) int {
	return int(math.Round(logical * scale))
}

// newRenderSurface allocates a buffer of round(logical x scale) physical
// pixels and returns a drawing context pre-scaled so that the caller draws
// in logical coordinates.
func newRenderSurface(logicalW, logicalH, scale float64) (*Buffer, *gg.Context, error) {
	pw := physSize(logicalW, scale)
	ph := physSize(logicalH, scale)
	if pw <= 0 || ph <= 0 {
		return nil, nil, ErrEmptySize
	}

	pm := gg.NewPixmap(pw, ph)
	dc := gg.NewContext(pw, ph, gg.WithPixmap(pm))
	dc.Scale(scale, scale)

	b := &Buffer{
		logicalW: logicalW,
		logicalH: logicalH,
		scale:    scale,
		physW:    pw,
		physH:    ph,
		stride:   pw * 4,
		pixmap:   pm,
	}
	return b, dc, nil
}

// FitAndScale produces a new buffer containing src centered and uniformly
// shrunk (never enlarged) to fit within targetW x targetH logical units at
// the given scale. The shrink factor is the minimum of target/source on
// each axis, capped at 1.0, so a small source is centered at its native
// size rather than upscaled.
func FitAndScale(src image.Image, targetW, targetH, scale float64) (*Buffer, error) {
	if src == nil {
		return nil, ErrNilSource
	}
	pw := physSize(targetW, scale)
	ph := physSize(targetH, scale)
	if pw <= 0 || ph <= 0 {
		return nil, ErrEmptySize
	}

	sb := src.Bounds()
	sw, sh := sb.Dx(), sb.Dy()
	if sw <= 0 || sh <= 0 {
		return nil, ErrNilSource
	}

	factor := math.Min(float64(pw)/float64(sw), float64(ph)/float64(sh))
	if factor > 1.0 {
		factor = 1.0
	}
	dw := int(math.Round(float64(sw) * factor))
	dh := int(math.Round(float64(sh) * factor))
	if dw < 1 {
		dw = 1
	}
	if dh < 1 {
		dh = 1
	}

	x0 := (pw - dw) / 2
	y0 := (ph - dh) / 2

	dst := image.NewRGBA(image.Rect(0, 0, pw, ph))
	xdraw.CatmullRom.Scale(dst, image.Rect(x0, y0, x0+dw, y0+dh), src, sb, xdraw.Over, nil)

	pm := gg.NewPixmap(pw, ph)
	copy(pm.Data(), dst.Pix)

	return &Buffer{
		logicalW: targetW,
		logicalH: targetH,
		scale:    scale,
		physW:    pw,
		physH:    ph,
		stride:   pw * 4,
		pixmap:   pm,
	}, nil
}

// BorrowBuffer adopts an externally-owned surface as a buffer without
// copying. The data slice must hold premultiplied RGBA pixels with the
// given row stride and must outlive the buffer; use CopyOut to detach
// from the external surface.
func BorrowBuffer(data []uint8, stride, physW, physH int, logicalW, logicalH, scale float64) *Buffer {
	return &Buffer{
		logicalW: logicalW,
		logicalH: logicalH,
		scale:    scale,
		physW:    physW,
		physH:    physH,
		stride:   stride,
		view:     data,
	}
}

// CopyOut returns an owned copy of a borrowed buffer. Calling it on an
// owned buffer returns the buffer unchanged.
func (b *Buffer) CopyOut() *Buffer {
	if b.view == nil {
		return b
	}
	pm := gg.NewPixmap(b.physW, b.physH)
	rowLen := b.physW * 4
	for y := 0; y < b.physH; y++ {
		copy(pm.Data()[y*rowLen:(y+1)*rowLen], b.view[y*b.stride:y*b.stride+rowLen])
	}
	out := *b
	out.view = nil
	out.pixmap = pm
	out.stride = rowLen
	return &out
}

// LogicalSize returns the pre-scale size the buffer was rendered for.
func (b *Buffer) LogicalSize() (w, h float64) {
	return b.logicalW, b.logicalH
}

// Scale returns the scale the buffer was rendered at.
func (b *Buffer) Scale() float64 {
	return b.scale
}

// Width returns the physical width in pixels.
func (b *Buffer) Width() int {
	return b.physW
}

// Height returns the physical height in pixels.
func (b *Buffer) Height() int {
	return b.physH
}

// Stride returns the row stride in bytes.
func (b *Buffer) Stride() int {
	return b.stride
}

// Borrowed reports whether the buffer is a view into an external surface.
func (b *Buffer) Borrowed() bool {
	return b.view != nil
}

// Data returns the raw premultiplied RGBA pixel data. The slice must be
// treated as read-only.
func (b *Buffer) Data() []uint8 {
	if b.view != nil {
		return b.view
	}
	return b.pixmap.Data()
}

// Image exposes the buffer contents as an image.Image for compositing and
// for tests.
func (b *Buffer) Image() image.Image {
	if b.view != nil {
		return &image.RGBA{
			Pix:    b.view,
			Stride: b.stride,
			Rect:   image.Rect(0, 0, b.physW, b.physH),
		}
	}
	return b.pixmap
}
