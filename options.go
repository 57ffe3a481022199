package scaledbuf

// Option configures a Registry during creation.
// Use functional options to customize Registry behavior.
//
// Example:
//
//	// Default configuration
//	reg := scaledbuf.New()
//
//	// Larger per-element cache, themed icon lookup
//	reg := scaledbuf.New(
//	    scaledbuf.WithCacheSize(4),
//	    scaledbuf.WithIconLookup(theme.Lookup),
//	)
type Option func(*Registry)

// WithCacheSize sets the per-element cache capacity. Values below one
// fall back to DefaultCacheSize.
func WithCacheSize(n int) Option {
	return func(r *Registry) {
		if n < 1 {
			n = DefaultCacheSize
		}
		r.cacheSize = n
	}
}

// WithIconLookup installs the themed icon resolver used by icon
// producers. Without one, icon resolution falls through name lookups to
// client buffers and the configured fallback.
func WithIconLookup(fn IconLookup) Option {
	return func(r *Registry) {
		r.iconLookup = fn
	}
}
