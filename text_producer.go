package scaledbuf

import (
	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
)

// Truncation selects how a text label that exceeds its maximum width is
// shortened.
type Truncation uint8

const (
	// TruncateEllipsis trims trailing runes and appends an ellipsis.
	TruncateEllipsis Truncation = iota

	// TruncateClip hard-clips overflowing glyphs at the buffer edge.
	TruncateClip
)

const ellipsis = "…"

// TextLabel is the producer state for a single-line text label: the
// string, font, color and layout parameters that fully determine its
// rendered appearance. Truncation policy and vertical centering are label
// parameters, not cache concerns.
type TextLabel struct {
	str      string
	font     *text.FontSource
	size     float64 // point size in logical units
	color    gg.RGBA
	maxWidth float64 // logical; 0 means unbounded
	height   float64 // fixed logical height; 0 means natural line height
	trunc    Truncation
}

// TextOption configures a text producer during creation.
type TextOption func(*TextLabel)

// WithColor sets the text color. Default is opaque white.
func WithColor(c gg.RGBA) TextOption {
	return func(t *TextLabel) { t.color = c }
}

// WithMaxWidth bounds the label's logical width. Text wider than this is
// truncated according to the truncation policy.
func WithMaxWidth(w float64) TextOption {
	return func(t *TextLabel) { t.maxWidth = w }
}

// WithHeight fixes the label's logical height. The text baseline is
// vertically centered within it. Zero means the font's line height.
func WithHeight(h float64) TextOption {
	return func(t *TextLabel) { t.height = h }
}

// WithTruncation sets the truncation policy. Default is TruncateEllipsis.
func WithTruncation(tr Truncation) TextOption {
	return func(t *TextLabel) { t.trunc = tr }
}

// NewText creates a text producer for the given font source and point
// size. Set the content with SetText, which also reports the label's
// required logical size for RequestUpdate.
func NewText(font *text.FontSource, size float64, opts ...TextOption) *Producer {
	t := &TextLabel{
		font:  font,
		size:  size,
		color: gg.RGBA{R: 1, G: 1, B: 1, A: 1},
	}
	for _, opt := range opts {
		opt(t)
	}
	return &Producer{kind: KindText, text: t}
}

// SetText replaces the label content and returns the recomputed required
// logical size, for forwarding to Element.RequestUpdate.
func (t *TextLabel) SetText(s string) (w, h float64) {
	t.str = s
	return t.NaturalSize()
}

// SetMaxWidth changes the width bound and returns the recomputed required
// logical size.
func (t *TextLabel) SetMaxWidth(maxWidth float64) (w, h float64) {
	t.maxWidth = maxWidth
	return t.NaturalSize()
}

// Text returns the current label content.
func (t *TextLabel) Text() string {
	return t.str
}

// NaturalSize returns the logical size the label needs: the measured text
// advance capped at the maximum width, by the fixed height if one is set
// or the font's line height otherwise.
func (t *TextLabel) NaturalSize() (w, h float64) {
	if t.font == nil {
		return 0, 0
	}
	face := t.font.Face(t.size)
	w, h = text.Measure(t.str, face)
	if t.maxWidth > 0 && w > t.maxWidth {
		w = t.maxWidth
	}
	if t.height > 0 {
		h = t.height
	}
	return w, h
}

// equal compares labels field by field. The font source is compared by
// pointer: the same *text.FontSource is the same backing font resource.
func (t *TextLabel) equal(o *TextLabel) bool {
	return t.str == o.str &&
		t.font == o.font &&
		t.size == o.size &&
		t.color == o.color &&
		t.maxWidth == o.maxWidth &&
		t.height == o.height &&
		t.trunc == o.trunc
}

func (t *TextLabel) render(logicalW, logicalH, scale float64) (*Buffer, error) {
	if t.font == nil {
		return nil, ErrNoFont
	}
	buf, dc, err := newRenderSurface(logicalW, logicalH, scale)
	if err != nil {
		return nil, err
	}

	// gg draws text in device pixels, bypassing the context matrix, so
	// the face is sized for the physical resolution and the baseline is
	// computed in physical coordinates.
	face := t.font.Face(t.size * scale)
	dc.SetFont(face)
	dc.SetRGBA(t.color.R, t.color.G, t.color.B, t.color.A)

	s := t.str
	if t.trunc == TruncateEllipsis {
		s = ellipsize(s, face, float64(buf.Width()))
	}

	m := face.Metrics()
	baseline := (float64(buf.Height())-(m.Ascent+m.Descent))/2 + m.Ascent
	dc.DrawString(s, 0, baseline)

	return buf, nil
}

// ellipsize trims trailing runes from s until it fits maxPx with an
// ellipsis appended. Text that already fits is returned unchanged; if not
// even the ellipsis fits, the result is empty.
func ellipsize(s string, face text.Face, maxPx float64) string {
	if face.Advance(s) <= maxPx {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		candidate := string(runes) + ellipsis
		if face.Advance(candidate) <= maxPx {
			return candidate
		}
	}
	return ""
}
