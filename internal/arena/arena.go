// Package arena provides generational-handle storage with explicit
// reference counts for scaledbuf.
//
// A Handle is a weak reference: Get returns nil once the slot it pointed
// at has been freed, so a stale handle can never dangle. Strong ownership
// is expressed through Acquire/Release; releasing the last reference runs
// the finalize hook exactly once and retires the slot.
//
// The arena is not safe for concurrent use. scaledbuf runs on a single
// compositor event loop, so all access is program-ordered.
package arena

import "fmt"

// Handle identifies a value stored in an Arena.
// The zero Handle is "null": Get returns nil and IsNil reports true.
type Handle struct {
	index uint32
	gen   uint32
}

// IsNil reports whether h is the null handle.
func (h Handle) IsNil() bool {
	return h.gen == 0
}

// String returns a debug representation of the handle.
func (h Handle) String() string {
	if h.IsNil() {
		return "arena.Handle(nil)"
	}
	return fmt.Sprintf("arena.Handle(%d@%d)", h.index, h.gen)
}

// slot holds one stored value. Slots are allocated individually so that
// pointers returned by Get stay valid while the slot is live, even when
// the arena grows.
type slot[T any] struct {
	value T
	gen   uint32
	refs  int
	live  bool
}

// Arena stores reference-counted values addressed by generational handles.
// A slot's generation is bumped every time it is freed, which invalidates
// all outstanding handles to it in O(1) with no back-pointer bookkeeping.
type Arena[T any] struct {
	slots    []*slot[T]
	free     []uint32
	live     int
	finalize func(*T)
}

// New creates an empty arena. The finalize hook, if non-nil, is invoked
// exactly once per value when its reference count drops to zero, before
// the slot is retired. The hook must not call back into the arena for the
// value being finalized.
func New[T any](finalize func(*T)) *Arena[T] {
	return &Arena[T]{finalize: finalize}
}

// Alloc stores v and returns a handle with a reference count of one.
func (a *Arena[T]) Alloc(v T) Handle {
	var idx uint32
	if n := len(a.free); n > 0 {
		idx = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		idx = uint32(len(a.slots))
		a.slots = append(a.slots, &slot[T]{})
	}
	s := a.slots[idx]
	s.gen++ // generations start at 1; zero is reserved for the null handle
	s.value = v
	s.refs = 1
	s.live = true
	a.live++
	return Handle{index: idx, gen: s.gen}
}

// Get dereferences a handle. It returns nil for the null handle and for
// handles whose slot has since been freed; it never returns a pointer to
// a retired value.
func (a *Arena[T]) Get(h Handle) *T {
	s := a.lookup(h)
	if s == nil {
		return nil
	}
	return &s.value
}

// Acquire increments the reference count of the value behind h.
// Acquiring a dead or null handle is a programming error and panics.
func (a *Arena[T]) Acquire(h Handle) {
	s := a.lookup(h)
	if s == nil {
		panic("arena: acquire of dead handle " + h.String())
	}
	s.refs++
}

// Release decrements the reference count of the value behind h. When the
// count reaches zero the finalize hook runs and the slot is retired, which
// invalidates every outstanding handle to it. Releasing a dead or null
// handle is a programming error and panics.
func (a *Arena[T]) Release(h Handle) {
	s := a.lookup(h)
	if s == nil {
		panic("arena: release of dead handle " + h.String())
	}
	s.refs--
	if s.refs > 0 {
		return
	}
	if a.finalize != nil {
		a.finalize(&s.value)
	}
	var zero T
	s.value = zero
	s.live = false
	a.live--
	a.free = append(a.free, h.index)
}

// RefCount returns the reference count of the value behind h, or zero if
// the handle is dead.
func (a *Arena[T]) RefCount(h Handle) int {
	s := a.lookup(h)
	if s == nil {
		return 0
	}
	return s.refs
}

// Live returns the number of values currently stored.
func (a *Arena[T]) Live() int {
	return a.live
}

// lookup resolves a handle to its slot, or nil if the handle is null,
// out of range, or stale.
func (a *Arena[T]) lookup(h Handle) *slot[T] {
	if h.IsNil() || int(h.index) >= len(a.slots) {
		return nil
	}
	s := a.slots[h.index]
	if !s.live || s.gen != h.gen {
		return nil
	}
	return s
}
