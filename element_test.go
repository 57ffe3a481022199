package scaledbuf

import "testing"

// newTestElement registers an image element with the given logical size.
func newTestElement(t *testing.T, reg *Registry, src *ImageSource, w, h float64) *Element {
	t.Helper()
	e := reg.NewElement(NewImage(src))
	e.RequestUpdate(w, h)
	return e
}

func mustSource(t *testing.T, w, h int) *ImageSource {
	t.Helper()
	src, err := NewImageSource(testImage(w, h))
	if err != nil {
		t.Fatalf("NewImageSource: %v", err)
	}
	return src
}

func TestSetScaleRenders(t *testing.T) {
	reg := New()
	e := newTestElement(t, reg, mustSource(t, 64, 64), 100, 20)

	if e.Buffer() != nil {
		t.Fatal("element has a buffer before any SetScale")
	}

	e.SetScale(1.5)

	buf := e.Buffer()
	if buf == nil {
		t.Fatal("no buffer after SetScale")
	}
	if buf.Width() != 150 || buf.Height() != 30 {
		t.Errorf("expected 150x30 physical pixels, got %dx%d", buf.Width(), buf.Height())
	}
	if got := reg.Stats().Renders; got != 1 {
		t.Errorf("expected 1 render, got %d", got)
	}
}

func TestSetScaleRepeatNoOp(t *testing.T) {
	reg := New()
	e := newTestElement(t, reg, mustSource(t, 64, 64), 40, 40)

	e.SetScale(2.0)
	e.SetScale(2.0)
	e.SetScale(2.0)

	if got := reg.Stats().Renders; got != 1 {
		t.Errorf("expected render called once, got %d", got)
	}
}

func TestScaleRoundTripHitsCache(t *testing.T) {
	// 1.0 -> 2.0 -> 1.0: the third request must be a local cache hit
	// returning the same buffer instance as the first.
	reg := New()
	e := newTestElement(t, reg, mustSource(t, 64, 64), 100, 20)

	e.SetScale(1.0)
	first := e.Buffer()
	e.SetScale(2.0)
	e.SetScale(1.0)

	if got := reg.Stats().Renders; got != 2 {
		t.Errorf("expected 2 renders, got %d", got)
	}
	if e.Buffer() != first {
		t.Error("third request did not return the first buffer instance")
	}
	if got := reg.Stats().Hits; got != 1 {
		t.Errorf("expected 1 cache hit, got %d", got)
	}
}

func TestLRUEviction(t *testing.T) {
	// Full 2-entry cache {s1 (oldest), s2}: inserting s3 evicts s1.
	reg := New()
	e := newTestElement(t, reg, mustSource(t, 64, 64), 40, 40)

	e.SetScale(1.0) // s1
	e.SetScale(2.0) // s2
	e.SetScale(3.0) // s3, evicts s1

	if got := reg.Stats().Evictions; got != 1 {
		t.Fatalf("expected 1 eviction, got %d", got)
	}

	// s2 and s3 remain cached.
	e.SetScale(2.0)
	e.SetScale(3.0)
	if got := reg.Stats().Renders; got != 3 {
		t.Errorf("expected s2/s3 to stay cached, renders = %d", got)
	}

	// s1 is gone and must render again.
	e.SetScale(1.0)
	if got := reg.Stats().Renders; got != 4 {
		t.Errorf("expected re-render of evicted scale, renders = %d", got)
	}
}

func TestLRUPromotionOnHit(t *testing.T) {
	// A hit on s1 promotes it, so inserting s3 evicts s2 instead.
	reg := New()
	e := newTestElement(t, reg, mustSource(t, 64, 64), 40, 40)

	e.SetScale(1.0) // s1
	e.SetScale(2.0) // s2
	e.SetScale(1.0) // hit, s1 now most recent
	e.SetScale(3.0) // evicts s2

	e.SetScale(1.0) // still cached
	if got := reg.Stats().Renders; got != 3 {
		t.Errorf("expected s1 to survive eviction after promotion, renders = %d", got)
	}
	e.SetScale(2.0) // evicted, renders again
	if got := reg.Stats().Renders; got != 4 {
		t.Errorf("expected s2 to have been evicted, renders = %d", got)
	}
}

func TestCacheBounded(t *testing.T) {
	reg := New()
	e := newTestElement(t, reg, mustSource(t, 64, 64), 40, 40)

	for _, s := range []float64{1.0, 1.25, 1.5, 1.75, 2.0} {
		e.SetScale(s)
		if len(e.entries) > e.capacity {
			t.Fatalf("cache holds %d entries, capacity %d", len(e.entries), e.capacity)
		}
	}
	// Never two entries at the same scale.
	e.SetScale(2.0)
	seen := map[float64]bool{}
	for _, en := range e.entries {
		if seen[en.scale] {
			t.Errorf("duplicate cache entry for scale %v", en.scale)
		}
		seen[en.scale] = true
	}
}

func TestWithCacheSize(t *testing.T) {
	reg := New(WithCacheSize(3))
	e := newTestElement(t, reg, mustSource(t, 64, 64), 40, 40)

	e.SetScale(1.0)
	e.SetScale(2.0)
	e.SetScale(3.0)
	if got := reg.Stats().Evictions; got != 0 {
		t.Errorf("expected no evictions with capacity 3, got %d", got)
	}
	e.SetScale(1.0)
	if got := reg.Stats().Renders; got != 3 {
		t.Errorf("expected all three scales cached, renders = %d", got)
	}
}

func TestRequestUpdateDropsCacheKeepsVisible(t *testing.T) {
	reg := New()
	e := newTestElement(t, reg, mustSource(t, 64, 64), 40, 40)

	e.SetScale(1.0)
	old := e.Buffer()
	if old == nil {
		t.Fatal("no buffer after SetScale")
	}

	e.RequestUpdate(50, 50)

	// No render yet; the previous frame stays visible.
	if e.Buffer() != old {
		t.Error("visible buffer changed before the scale was reconfirmed")
	}
	if got := reg.Stats().Renders; got != 1 {
		t.Errorf("RequestUpdate must not render, renders = %d", got)
	}

	// Reconfirming the scale renders at the new logical size; a repeat
	// of the old scale must not be served from the stale cache.
	e.SetScale(1.0)
	buf := e.Buffer()
	if buf == nil {
		t.Fatal("no buffer after reconfirming scale")
	}
	if buf.Width() != 50 || buf.Height() != 50 {
		t.Errorf("expected 50x50, got %dx%d", buf.Width(), buf.Height())
	}
	if got := reg.Stats().Renders; got != 2 {
		t.Errorf("expected a fresh render after RequestUpdate, renders = %d", got)
	}
}

func TestRenderFailureLeavesNoBuffer(t *testing.T) {
	reg := New()
	e := reg.NewElement(NewImage(nil)) // nil source: every render fails
	e.RequestUpdate(40, 40)

	e.SetScale(1.0)

	if e.Buffer() != nil {
		t.Error("expected no visible buffer after failed render")
	}
	s := reg.Stats()
	if s.RenderFailures != 1 {
		t.Errorf("expected 1 render failure, got %d", s.RenderFailures)
	}

	// The next SetScale naturally tries again.
	e.SetScale(1.0)
	if got := reg.Stats().Renders; got != 2 {
		t.Errorf("expected retry on next SetScale, renders = %d", got)
	}
}

func TestRenderFailureClearsPreviousBuffer(t *testing.T) {
	reg := New()
	src := mustSource(t, 64, 64)
	e := newTestElement(t, reg, src, 40, 40)

	e.SetScale(1.0)
	if e.Buffer() == nil {
		t.Fatal("no buffer after successful render")
	}

	// Shrink to a size that rounds to zero physical pixels: render fails.
	e.RequestUpdate(0.1, 0.1)
	e.SetScale(1.0)

	if e.Buffer() != nil {
		t.Error("visible buffer survived a failed render")
	}
}

func TestInvalidScaleIgnored(t *testing.T) {
	reg := New()
	e := newTestElement(t, reg, mustSource(t, 64, 64), 40, 40)

	e.SetScale(0)
	e.SetScale(-1.5)

	if got := reg.Stats().Renders; got != 0 {
		t.Errorf("invalid scales must not render, renders = %d", got)
	}
	if e.Scale() != 0 {
		t.Errorf("invalid scale was stored: %v", e.Scale())
	}
}

func TestDestroyReleasesBuffers(t *testing.T) {
	reg := New()
	e := newTestElement(t, reg, mustSource(t, 64, 64), 40, 40)

	e.SetScale(1.0)
	e.SetScale(2.0)
	if reg.Stats().LiveBuffers != 2 {
		t.Fatalf("expected 2 live buffers, got %d", reg.Stats().LiveBuffers)
	}

	e.Destroy()

	s := reg.Stats()
	if s.LiveBuffers != 0 {
		t.Errorf("expected 0 live buffers after destroy, got %d", s.LiveBuffers)
	}
	if s.Freed != 2 {
		t.Errorf("expected 2 buffers freed, got %d", s.Freed)
	}
	if s.Elements != 0 {
		t.Errorf("expected element removed from registry, got %d", s.Elements)
	}
}

func TestDoubleDestroyPanics(t *testing.T) {
	reg := New()
	e := newTestElement(t, reg, mustSource(t, 64, 64), 40, 40)
	e.Destroy()

	defer func() {
		if recover() == nil {
			t.Error("expected panic on double destroy")
		}
	}()
	e.Destroy()
}

func TestUseAfterDestroyPanics(t *testing.T) {
	reg := New()
	e := newTestElement(t, reg, mustSource(t, 64, 64), 40, 40)
	e.Destroy()

	defer func() {
		if recover() == nil {
			t.Error("expected panic on SetScale after destroy")
		}
	}()
	e.SetScale(1.0)
}

func TestBufferRefGoesDeadAfterContentChange(t *testing.T) {
	reg := New()
	e := newTestElement(t, reg, mustSource(t, 64, 64), 40, 40)
	e.SetScale(1.0)

	ref := e.BufferRef()
	if ref.IsNil() || ref.Get() == nil {
		t.Fatal("expected live reference to the visible buffer")
	}
	if ref.Get() != e.Buffer() {
		t.Error("reference does not resolve to the visible buffer")
	}

	// New content frees the old buffer; a retained reference must read
	// as dead rather than point into recycled storage.
	e.RequestUpdate(50, 50)
	e.SetScale(1.0)
	if ref.Get() != nil {
		t.Error("reference to a freed buffer still resolves")
	}
	if e.BufferRef().Get() != e.Buffer() {
		t.Error("fresh reference does not track the new buffer")
	}
	e.Destroy()
}

func TestBufferRefZeroValue(t *testing.T) {
	var ref BufferRef
	if !ref.IsNil() {
		t.Error("zero reference not nil")
	}
	if ref.Get() != nil {
		t.Error("zero reference resolves to a buffer")
	}
}

func TestBufferRefBeforeFirstRender(t *testing.T) {
	reg := New()
	e := newTestElement(t, reg, mustSource(t, 64, 64), 40, 40)
	if ref := e.BufferRef(); !ref.IsNil() || ref.Get() != nil {
		t.Error("expected nil reference before the first render")
	}
	e.Destroy()
}
