package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	// Assembly hooks
	a := NoopAssemblyHooks{}
	a.OnFilterStart(ctx, "tree-1", 24)
	a.OnFilterComplete(ctx, "tree-1", 20, 19, nil)
	a.OnLayoutStart(ctx, "hierarchical", 20)
	a.OnLayoutComplete(ctx, "hierarchical", time.Second, nil)
	a.OnRenderStart(ctx, []string{"svg"})
	a.OnRenderComplete(ctx, []string{"svg"}, time.Second, nil)

	// Cache hooks
	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "snapshot")
	c.OnCacheMiss(ctx, "snapshot")
	c.OnCacheSet(ctx, "artifact", 1024)

	// HTTP hooks
	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "GET", "example.com", "/api/families/t1/export")
	h.OnResponse(ctx, "GET", "example.com", "/api/families/t1/export", 200, time.Second)
	h.OnError(ctx, "GET", "example.com", "/api/families/t1/export", nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	// Reset to known state
	Reset()

	// Verify defaults are noop
	if _, ok := Assembly().(NoopAssemblyHooks); !ok {
		t.Error("Assembly() should return NoopAssemblyHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	// Set custom hooks
	customAssembly := &testAssemblyHooks{}
	SetAssemblyHooks(customAssembly)
	if Assembly() != customAssembly {
		t.Error("SetAssemblyHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	// Reset and verify
	Reset()
	if _, ok := Assembly().(NoopAssemblyHooks); !ok {
		t.Error("Reset() should restore NoopAssemblyHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testAssemblyHooks{}
	SetAssemblyHooks(custom)

	// Setting nil should be ignored
	SetAssemblyHooks(nil)

	if Assembly() != custom {
		t.Error("SetAssemblyHooks(nil) should be ignored")
	}

	Reset()
}

// Test implementations
type testAssemblyHooks struct{ NoopAssemblyHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
