package scaledbuf

import "errors"

// Sentinel errors for scaledbuf.
var (
	// ErrEmptySize is returned when a render would produce a buffer with
	// zero or negative physical dimensions.
	ErrEmptySize = errors.New("scaledbuf: empty physical size")

	// ErrNilSource is returned when an image producer is constructed
	// without pixel data.
	ErrNilSource = errors.New("scaledbuf: nil image source")

	// ErrNoIcon is returned when icon resolution exhausts every candidate
	// (client buffers, name lookup, fallback) without finding pixels.
	ErrNoIcon = errors.New("scaledbuf: no icon source resolved")

	// ErrNoFont is returned when a text producer has no font source.
	ErrNoFont = errors.New("scaledbuf: no font source")
)
