package scaledbuf

import "fmt"

// Kind identifies the content type a Producer renders.
type Kind uint8

// Producer kinds.
const (
	// KindText renders a single-line text label.
	KindText Kind = iota + 1

	// KindImage renders a static image with optional post-render modifiers.
	KindImage

	// KindIcon renders an application icon resolved from client buffers,
	// a themed name lookup, or a fallback.
	KindIcon
)

// String returns a string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindText:
		return "Text"
	case KindImage:
		return "Image"
	case KindIcon:
		return "Icon"
	default:
		return "Unknown"
	}
}

// Producer knows how to render one kind of visual content at a given scale
// and compare itself against another producer for structural equality.
//
// Producer is a tagged union over the three content kinds rather than an
// interface: dispatch happens in a single switch in render and Equal, and
// the kind-specific state stays inspectable through Text, Image and Icon.
type Producer struct {
	kind Kind
	text *TextLabel
	img  *ImageContent
	icon *IconContent
}

// Kind returns the content kind of the producer.
func (p *Producer) Kind() Kind {
	return p.kind
}

// Text returns the text state, or nil if the producer is not KindText.
func (p *Producer) Text() *TextLabel {
	return p.text
}

// Image returns the image state, or nil if the producer is not KindImage.
func (p *Producer) Image() *ImageContent {
	return p.img
}

// Icon returns the icon state, or nil if the producer is not KindIcon.
func (p *Producer) Icon() *IconContent {
	return p.icon
}

// Equal reports whether two producers are guaranteed to render visually
// identical output at any given scale. It is reflexive and symmetric.
// Value fields are compared field by field; pointer fields (font sources,
// image sources, modifiers) are compared by identity, since identity is
// what denotes "same backing resource".
func (p *Producer) Equal(o *Producer) bool {
	if p == nil || o == nil {
		return p == o
	}
	if p.kind != o.kind {
		return false
	}
	switch p.kind {
	case KindText:
		return p.text.equal(o.text)
	case KindImage:
		return p.img.equal(o.img)
	case KindIcon:
		return p.icon.equal(o.icon)
	default:
		return false
	}
}

// render produces a buffer of round(logical x scale) physical pixels.
// The registry is passed through for icon theme lookups.
func (p *Producer) render(r *Registry, logicalW, logicalH, scale float64) (*Buffer, error) {
	switch p.kind {
	case KindText:
		return p.text.render(logicalW, logicalH, scale)
	case KindImage:
		return p.img.render(logicalW, logicalH, scale)
	case KindIcon:
		return p.icon.render(r, logicalW, logicalH, scale)
	default:
		return nil, fmt.Errorf("scaledbuf: render of invalid producer kind %d", p.kind)
	}
}
