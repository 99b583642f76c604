// ABOUTME: Tests for the render cache covering TTL-based expiry, cache hits, pruning, and concurrent access.
// ABOUTME: A counting fake renderer stands in for goldmark.
package render

import (
	"context"
	"crypto/sha256"
	"fmt"
	"html/template"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// fakeRenderer counts invocations and returns fixed output.
type fakeRenderer struct {
	callCount atomic.Int64
	output    template.HTML
	err       error
}

func (f *fakeRenderer) render(ctx context.Context, src string) (template.HTML, error) {
	f.callCount.Add(1)
	if f.err != nil {
		return "", f.err
	}
	return f.output, nil
}

func TestCacheReturnsCachedResult(t *testing.T) {
	renderer := &fakeRenderer{output: "<h1>hi</h1>"}
	cache := NewCache(renderer.render, 5*time.Minute)
	ctx := context.Background()

	html1, err := cache.Render(ctx, "# hi")
	if err != nil {
		t.Fatalf("first call failed: %v", err)
	}
	if html1 != "<h1>hi</h1>" {
		t.Errorf("expected <h1>hi</h1>, got %s", html1)
	}

	html2, err := cache.Render(ctx, "# hi")
	if err != nil {
		t.Fatalf("second call failed: %v", err)
	}
	if html2 != html1 {
		t.Errorf("expected cached result, got %s", html2)
	}
	if renderer.callCount.Load() != 1 {
		t.Errorf("expected 1 renderer call, got %d", renderer.callCount.Load())
	}
}

func TestCacheDifferentInputsDifferentEntries(t *testing.T) {
	renderer := &fakeRenderer{output: "out"}
	cache := NewCache(renderer.render, 5*time.Minute)
	ctx := context.Background()

	cache.Render(ctx, "# a")
	cache.Render(ctx, "# b")

	if renderer.callCount.Load() != 2 {
		t.Errorf("expected 2 renderer calls for different inputs, got %d", renderer.callCount.Load())
	}
	if cache.Len() != 2 {
		t.Errorf("expected 2 entries, got %d", cache.Len())
	}
}

func TestCacheTTLExpiry(t *testing.T) {
	renderer := &fakeRenderer{output: "out"}
	cache := NewCache(renderer.render, 50*time.Millisecond)
	ctx := context.Background()

	cache.Render(ctx, "text")
	time.Sleep(100 * time.Millisecond)
	cache.Render(ctx, "text")

	if renderer.callCount.Load() != 2 {
		t.Errorf("expected 2 calls after TTL expiry, got %d", renderer.callCount.Load())
	}
}

func TestCacheDoesNotCacheErrors(t *testing.T) {
	renderer := &fakeRenderer{err: fmt.Errorf("render failed")}
	cache := NewCache(renderer.render, 5*time.Minute)
	ctx := context.Background()

	if _, err := cache.Render(ctx, "text"); err == nil {
		t.Fatal("expected error, got nil")
	}

	renderer.err = nil
	renderer.output = "fixed"

	html, err := cache.Render(ctx, "text")
	if err != nil {
		t.Fatalf("expected success after fix, got: %v", err)
	}
	if html != "fixed" {
		t.Errorf("expected 'fixed', got %s", html)
	}
}

func TestCacheConcurrentAccess(t *testing.T) {
	renderer := &fakeRenderer{output: "concurrent"}
	cache := NewCache(renderer.render, 5*time.Minute)
	ctx := context.Background()

	// Warm the entry so concurrent readers only hit the cache.
	cache.Render(ctx, "same")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			html, err := cache.Render(ctx, "same")
			if err != nil || html != "concurrent" {
				t.Errorf("concurrent call = %q, %v", html, err)
			}
		}()
	}
	wg.Wait()

	if renderer.callCount.Load() != 1 {
		t.Errorf("expected 1 renderer call, got %d", renderer.callCount.Load())
	}
}

func TestCacheKeyIsSHA256(t *testing.T) {
	expected := fmt.Sprintf("%x", sha256.Sum256([]byte("# doc")))
	if key := cacheKey("# doc"); key != expected {
		t.Errorf("expected cache key %q, got %q", expected, key)
	}
}

func TestCachePruneAndClear(t *testing.T) {
	renderer := &fakeRenderer{output: "out"}
	cache := NewCache(renderer.render, 50*time.Millisecond)
	ctx := context.Background()

	cache.Render(ctx, "a")
	cache.Render(ctx, "b")
	time.Sleep(100 * time.Millisecond)
	cache.Render(ctx, "c")

	if removed := cache.Prune(); removed != 2 {
		t.Errorf("Prune removed %d, want 2", removed)
	}
	if cache.Len() != 1 {
		t.Errorf("expected 1 entry after prune, got %d", cache.Len())
	}

	cache.Clear()
	if cache.Len() != 0 {
		t.Errorf("expected 0 entries after clear, got %d", cache.Len())
	}
}
