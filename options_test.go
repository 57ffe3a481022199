package scaledbuf

import (
	"image"
	"testing"
)

// TestNewDefault tests that New applies the default configuration.
func TestNewDefault(t *testing.T) {
	reg := New()
	if reg == nil {
		t.Fatal("New returned nil")
	}
	if reg.cacheSize != DefaultCacheSize {
		t.Errorf("cacheSize = %d, want %d", reg.cacheSize, DefaultCacheSize)
	}
	if reg.iconLookup != nil {
		t.Error("expected no icon lookup by default")
	}
}

// TestWithCacheSizeOption tests cache-size injection and its lower bound.
func TestWithCacheSizeOption(t *testing.T) {
	reg := New(WithCacheSize(4))
	if reg.cacheSize != 4 {
		t.Errorf("cacheSize = %d, want 4", reg.cacheSize)
	}
	e := reg.NewElement(NewImage(mustSource(t, 8, 8)))
	if e.capacity != 4 {
		t.Errorf("element capacity = %d, want 4", e.capacity)
	}

	// Nonsense values fall back to the default.
	reg = New(WithCacheSize(0))
	if reg.cacheSize != DefaultCacheSize {
		t.Errorf("cacheSize = %d, want default %d", reg.cacheSize, DefaultCacheSize)
	}
}

// TestWithIconLookupOption tests resolver injection.
func TestWithIconLookupOption(t *testing.T) {
	called := false
	reg := New(WithIconLookup(func(name string, sizePx int, scale float64) (image.Image, error) {
		called = true
		return testImage(32, 32), nil
	}))

	e := reg.NewElement(NewIcon(IconConfig{IconName: "folder"}))
	e.RequestUpdate(16, 16)
	e.SetScale(1.0)

	if !called {
		t.Error("injected icon lookup was never called")
	}
}
