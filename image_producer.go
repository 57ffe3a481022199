package scaledbuf

import (
	"fmt"
	"image"

	"github.com/gogpu/gg"
)

// ImageSource is a shared handle to decoded source pixels. Two image
// producers refer to "the same image" exactly when they hold the same
// *ImageSource; pixel content is never compared.
type ImageSource struct {
	img image.Image
}

// NewImageSource wraps already-decoded pixels as a shareable source.
func NewImageSource(img image.Image) (*ImageSource, error) {
	if img == nil {
		return nil, ErrNilSource
	}
	return &ImageSource{img: img}, nil
}

// LoadImageSource decodes an image file (PNG, JPEG) into a shareable
// source using the gg decoder.
func LoadImageSource(path string) (*ImageSource, error) {
	buf, err := gg.LoadImage(path)
	if err != nil {
		return nil, fmt.Errorf("scaledbuf: load image source: %w", err)
	}
	return &ImageSource{img: imageBufToImage(buf)}, nil
}

// Bounds returns the pixel bounds of the source.
func (s *ImageSource) Bounds() image.Rectangle {
	return s.img.Bounds()
}

// imageBufToImage converts a decoded gg.ImageBuf into a standard
// image.RGBA for the x/image scaler.
func imageBufToImage(buf *gg.ImageBuf) image.Image {
	w, h := buf.Width(), buf.Height()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, a := buf.GetRGBA(x, y)
			i := img.PixOffset(x, y)
			img.Pix[i+0] = r
			img.Pix[i+1] = g
			img.Pix[i+2] = b
			img.Pix[i+3] = a
		}
	}
	return img
}

// Modifier is a post-render callback applied over a freshly rendered
// image buffer, e.g. a hover overlay or a desaturation pass. The context
// is pre-scaled to logical coordinates.
//
// Modifiers are compared by identity in producer equality, so implement
// Modifier on a pointer type and reuse the same value for content that
// should share buffers.
type Modifier interface {
	Modify(dc *gg.Context, scale float64)
}

// ImageContent is the producer state for a static image: a shared source
// plus an ordered list of post-render modifiers.
type ImageContent struct {
	src  *ImageSource
	mods []Modifier
}

// NewImage creates an image producer over a shared source. Modifiers are
// applied in order after every render.
func NewImage(src *ImageSource, mods ...Modifier) *Producer {
	return &Producer{kind: KindImage, img: &ImageContent{src: src, mods: mods}}
}

// Source returns the shared image source.
func (c *ImageContent) Source() *ImageSource {
	return c.src
}

// equal requires the same underlying source handle and an identical
// modifier list by identity. Two producers with different modifiers are
// never shared even over the same base image, because final pixels would
// differ.
func (c *ImageContent) equal(o *ImageContent) bool {
	if c.src != o.src || len(c.mods) != len(o.mods) {
		return false
	}
	for i := range c.mods {
		if c.mods[i] != o.mods[i] {
			return false
		}
	}
	return true
}

func (c *ImageContent) render(logicalW, logicalH, scale float64) (*Buffer, error) {
	if c.src == nil {
		return nil, ErrNilSource
	}
	buf, err := FitAndScale(c.src.img, logicalW, logicalH, scale)
	if err != nil {
		return nil, err
	}
	if len(c.mods) > 0 {
		dc := gg.NewContext(buf.Width(), buf.Height(), gg.WithPixmap(buf.pixmap))
		dc.Scale(scale, scale)
		for _, m := range c.mods {
			m.Modify(dc, scale)
		}
	}
	return buf, nil
}
