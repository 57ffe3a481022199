package scaledbuf

import "github.com/gogpu/scaledbuf/internal/arena"

// Registry is the process-wide collection of live elements and the owner
// of all buffer storage. A compositor creates one Registry for the
// session and threads it to element constructors; there is no package
// global, which keeps lifetime and tests explicit.
//
// Registry is not safe for concurrent use; see the package documentation.
type Registry struct {
	arena    *arena.Arena[Buffer]
	elements map[*Element]struct{}

	// epoch stamps cache entries at insertion. InvalidateSharing bumps
	// it, which silently retires every existing entry as a sharing
	// donor without touching the local caches.
	epoch uint64

	cacheSize  int
	iconLookup IconLookup

	stats Stats
}

// Stats are cumulative cache counters for diagnostics.
type Stats struct {
	// Hits counts local cache hits.
	Hits uint64
	// Misses counts local cache misses.
	Misses uint64
	// Shared counts buffers adopted from another element instead of
	// rendering.
	Shared uint64
	// Renders counts producer render calls, including failed ones.
	Renders uint64
	// RenderFailures counts failed render calls.
	RenderFailures uint64
	// Evictions counts cache entries evicted at capacity.
	Evictions uint64
	// Freed counts buffers destroyed after their last reference dropped.
	Freed uint64
	// Elements is the current number of live elements.
	Elements int
	// LiveBuffers is the current number of live buffers.
	LiveBuffers int
}

// New creates an empty registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		elements:  make(map[*Element]struct{}),
		epoch:     1,
		cacheSize: DefaultCacheSize,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.arena = arena.New[Buffer](func(b *Buffer) {
		r.stats.Freed++
		Logger().Debug("scaledbuf: buffer freed",
			"width", b.Width(), "height", b.Height(), "scale", b.Scale())
	})
	return r
}

// NewElement registers a new element for the given producer. The element
// participates in buffer sharing until Destroy. A nil producer is a
// programming error and panics.
func (r *Registry) NewElement(p *Producer) *Element {
	if p == nil {
		panic("scaledbuf: NewElement with nil producer")
	}
	e := &Element{
		reg:      r,
		producer: p,
		capacity: r.cacheSize,
	}
	r.elements[e] = struct{}{}
	return e
}

// remove drops a destroyed element from the registry.
func (r *Registry) remove(e *Element) {
	delete(r.elements, e)
}

// lookupShared scans the live elements for a donor whose producer equals
// the requester's and which holds a current-epoch cache entry at the
// requested scale. On success it returns the donor's buffer handle with a
// fresh reference acquired for the caller.
//
// The scan is O(number of live elements); that is bounded by the number
// of currently visible decorated elements, a small number in practice.
func (r *Registry) lookupShared(req *Element, scale float64) (arena.Handle, bool) {
	// Snapshot the set: producer equality is caller code in spirit and
	// element destruction mid-scan must not invalidate iteration.
	snapshot := make([]*Element, 0, len(r.elements))
	for el := range r.elements {
		snapshot = append(snapshot, el)
	}

	for _, other := range snapshot {
		if other == req || other.destroyed {
			continue
		}
		// Equal producers at different logical sizes render different
		// physical buffers; only exact geometry matches can share.
		if other.logicalW != req.logicalW || other.logicalH != req.logicalH {
			continue
		}
		if !other.producer.Equal(req.producer) {
			continue
		}
		for i := range other.entries {
			en := other.entries[i]
			if en.scale == scale && en.epoch == r.epoch {
				r.arena.Acquire(en.ref)
				return en.ref, true
			}
		}
	}
	return arena.Handle{}, false
}

// InvalidateSharing retires every existing cache entry as a sharing
// donor, so subsequent lookups render fresh instead of reusing
// stale-but-equal producers. Local caches are untouched: elements keep
// hitting their own buffers. Use after a global reconfiguration (e.g. a
// theme swap) makes previously-equal producers no longer agree in spirit.
func (r *Registry) InvalidateSharing() {
	r.epoch++
	Logger().Debug("scaledbuf: sharing invalidated", "epoch", r.epoch)
}

// Len returns the number of live elements.
func (r *Registry) Len() int {
	return len(r.elements)
}

// Stats returns current cache counters.
func (r *Registry) Stats() Stats {
	s := r.stats
	s.Elements = len(r.elements)
	s.LiveBuffers = r.arena.Live()
	return s
}

// ResetStats zeroes the cumulative counters.
func (r *Registry) ResetStats() {
	r.stats = Stats{}
}
