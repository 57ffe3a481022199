// Package scaledbuf caches rendered pixel buffers per display scale for
// compositing window managers.
//
// # Overview
//
// A compositor redraws visual elements (window titles, icons, button
// images) whenever their content or display scale changes. Rendering is
// expensive, so scaledbuf keeps a small per-element cache of previously
// rendered buffers keyed by scale, and a process-wide registry that lets
// structurally identical elements (the same icon in two window
// decorations) share a single backing buffer instead of rendering twice.
//
// # Quick Start
//
//	import "github.com/gogpu/scaledbuf"
//
//	reg := scaledbuf.New()
//
//	src, _ := scaledbuf.LoadImageSource("icon.png")
//	el := reg.NewElement(scaledbuf.NewImage(src))
//	el.RequestUpdate(24, 24)
//
//	// Placement notifications drive the active scale.
//	el.EnterOutput(scaledbuf.Output{Name: "DP-1", Scale: 2.0})
//
//	buf := el.Buffer() // 48x48 physical pixels, rendered once
//
// # Architecture
//
// The library is organized into:
//   - Public API: Registry, Element, Producer (text, image, icon), Buffer
//   - Internal: arena (generational-handle buffer ownership)
//
// Rasterization itself is delegated to github.com/gogpu/gg: producers draw
// into a gg.Context sized in logical coordinates with the scale applied
// once at surface creation.
//
// # Concurrency
//
// The whole package is single-threaded by design. A compositor's redraw
// path runs on one event loop; every mutation here happens synchronously
// inside the call that triggered it, so there are no locks and no
// goroutines. Do not share a Registry between goroutines.
package scaledbuf

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 1

	// VersionPatch is the patch version
	VersionPatch = 0
)
