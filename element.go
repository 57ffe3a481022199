package scaledbuf

import "github.com/gogpu/scaledbuf/internal/arena"

// DefaultCacheSize is the default number of buffers cached per element.
// Two covers the dominant real-world case of an element transiently
// visible on two outputs of different scale, e.g. during a drag across
// monitors, without unbounded memory growth.
const DefaultCacheSize = 2

// elementState tracks where an element is in its render lifecycle.
type elementState uint8

const (
	// stateNoBuffer: nothing rendered yet (or every render failed).
	stateNoBuffer elementState = iota

	// stateCached: the visible buffer matches content and active scale.
	stateCached

	// stateStale: content or logical size changed since the last render.
	stateStale
)

// cacheEntry binds one rendered buffer to the scale it was rendered at.
// The entry owns one arena reference to the buffer. epoch records the
// registry sharing epoch at insertion; entries from older epochs are
// never offered as sharing donors.
type cacheEntry struct {
	scale float64
	ref   arena.Handle
	epoch uint64
}

// Element is one visual element's scaled-resource cache: a bounded,
// MRU-ordered set of previously rendered buffers keyed by scale, plus the
// element's logical size and currently active scale.
//
// Elements are created with Registry.NewElement and must be destroyed
// with Destroy when the element detaches from the rendering tree.
type Element struct {
	reg      *Registry
	producer *Producer

	logicalW float64
	logicalH float64
	scale    float64 // active scale; 0 until the first SetScale

	entries  []cacheEntry // most recently used first
	capacity int
	state    elementState

	// visible holds its own arena reference, so the last good frame
	// stays displayable while the cache is cleared or re-rendered.
	visible arena.Handle

	outputs map[string]float64

	rendering bool
	destroyed bool
}

// RequestUpdate marks the element dirty with a new logical size. Every
// cached buffer is dropped (the content they show no longer exists), but
// no rendering happens: rendering is deferred until the active scale is
// (re)confirmed through SetScale or an output notification. The visible
// buffer stays up until then.
func (e *Element) RequestUpdate(logicalW, logicalH float64) {
	e.checkAlive()
	e.logicalW = logicalW
	e.logicalH = logicalH
	e.releaseEntries()
	e.state = stateStale
}

// SetScale informs the element of its active scale. A repeated scale with
// a current buffer is a no-op; anything else walks the lookup chain:
// local cache, sharing registry, then a fresh render. A failed render is
// logged and leaves the element with no visible buffer until the next
// SetScale or RequestUpdate tries again.
func (e *Element) SetScale(scale float64) {
	e.checkAlive()
	if scale <= 0 {
		Logger().Warn("scaledbuf: ignoring invalid scale", "scale", scale)
		return
	}
	if scale == e.scale && e.state == stateCached {
		return
	}
	e.scale = scale
	e.update()
}

// update runs the lookup chain for the current scale.
func (e *Element) update() {
	scale := e.scale

	if i := e.findEntry(scale); i >= 0 {
		e.promote(i)
		e.setVisible(e.entries[0].ref)
		e.state = stateCached
		e.reg.stats.Hits++
		Logger().Debug("scaledbuf: cache hit", "kind", e.producer.Kind(), "scale", scale)
		return
	}
	e.reg.stats.Misses++

	if h, ok := e.reg.lookupShared(e, scale); ok {
		e.insert(scale, h)
		e.reg.stats.Shared++
		Logger().Debug("scaledbuf: shared buffer adopted", "kind", e.producer.Kind(), "scale", scale)
		return
	}

	e.rendering = true
	buf, err := e.producer.render(e.reg, e.logicalW, e.logicalH, scale)
	e.rendering = false
	e.reg.stats.Renders++
	if err != nil {
		e.reg.stats.RenderFailures++
		Logger().Warn("scaledbuf: render failed",
			"kind", e.producer.Kind(), "scale", scale, "error", err)
		e.clearVisible()
		if e.state == stateCached {
			e.state = stateStale
		}
		return
	}
	e.insert(scale, e.reg.arena.Alloc(*buf))
}

// insert stores a buffer handle as the most recently used cache entry,
// evicting from the least recently used end when the cache is full, and
// makes it the visible buffer. The entry takes over the handle's
// reference.
func (e *Element) insert(scale float64, h arena.Handle) {
	for len(e.entries) >= e.capacity {
		last := e.entries[len(e.entries)-1]
		e.reg.arena.Release(last.ref)
		e.entries = e.entries[:len(e.entries)-1]
		e.reg.stats.Evictions++
		Logger().Debug("scaledbuf: evicted cache entry", "scale", last.scale)
	}
	e.entries = append(e.entries, cacheEntry{})
	copy(e.entries[1:], e.entries)
	e.entries[0] = cacheEntry{scale: scale, ref: h, epoch: e.reg.epoch}

	e.setVisible(h)
	e.state = stateCached
}

// findEntry linear-scans the cache for an entry at the given scale.
// The cache holds at most capacity entries, so a scan beats any index.
func (e *Element) findEntry(scale float64) int {
	for i := range e.entries {
		if e.entries[i].scale == scale {
			return i
		}
	}
	return -1
}

// promote moves the entry at index i to the most recently used position.
func (e *Element) promote(i int) {
	if i == 0 {
		return
	}
	en := e.entries[i]
	copy(e.entries[1:i+1], e.entries[:i])
	e.entries[0] = en
}

// setVisible swaps the visible buffer, taking a fresh reference on the
// new handle before dropping the old one.
func (e *Element) setVisible(h arena.Handle) {
	if h == e.visible {
		return
	}
	if !h.IsNil() {
		e.reg.arena.Acquire(h)
	}
	if !e.visible.IsNil() {
		e.reg.arena.Release(e.visible)
	}
	e.visible = h
}

func (e *Element) clearVisible() {
	e.setVisible(arena.Handle{})
}

// releaseEntries drops every cache entry and its buffer reference.
func (e *Element) releaseEntries() {
	for _, en := range e.entries {
		e.reg.arena.Release(en.ref)
	}
	e.entries = e.entries[:0]
}

// Buffer returns the element's visible buffer, or nil while the element
// has none (never rendered, or the last render failed). The pointer is
// only valid until the element next changes content or scale; callers
// that hold on to the buffer across updates must use BufferRef instead.
func (e *Element) Buffer() *Buffer {
	return e.reg.arena.Get(e.visible)
}

// BufferRef returns a weak reference to the element's visible buffer.
// The reference resolves to nil once the buffer is replaced and freed,
// so it is safe to retain across RequestUpdate and SetScale.
func (e *Element) BufferRef() BufferRef {
	return BufferRef{arena: e.reg.arena, handle: e.visible}
}

// Scale returns the element's active scale, or 0 before the first
// SetScale.
func (e *Element) Scale() float64 {
	return e.scale
}

// LogicalSize returns the element's logical (pre-scale) size.
func (e *Element) LogicalSize() (w, h float64) {
	return e.logicalW, e.logicalH
}

// Producer returns the element's content producer.
func (e *Element) Producer() *Producer {
	return e.producer
}

// Destroy releases every cached buffer reference and removes the element
// from the sharing registry. Buffers shared with other elements survive;
// only the last releaser frees them. Destroy must be called exactly once,
// and never from within a render callback.
func (e *Element) Destroy() {
	if e.destroyed {
		panic("scaledbuf: element destroyed twice")
	}
	if e.rendering {
		panic("scaledbuf: element destroyed from within render")
	}
	e.destroyed = true
	e.releaseEntries()
	e.clearVisible()
	e.reg.remove(e)
}

// checkAlive panics on use after Destroy; that is a defect in the
// collaborator's cleanup ordering, not a recoverable condition.
func (e *Element) checkAlive() {
	if e.destroyed {
		panic("scaledbuf: use of destroyed element")
	}
}
