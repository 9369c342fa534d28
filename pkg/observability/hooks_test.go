package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	a := NoopAuditHooks{}
	a.OnAuditStart(ctx, "run-1", 3)
	a.OnPackageResolved(ctx, "left-pad", "outdated", time.Millisecond, nil)
	a.OnScanComplete(ctx, 12, 4, time.Second, nil)
	a.OnUpdate(ctx, "left-pad", "1.3.0", true, nil)
	a.OnAuditComplete(ctx, "run-1", 3, time.Second, nil)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "registry")
	c.OnCacheMiss(ctx, "registry")
	c.OnCacheSet(ctx, "registry", 6)

	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "GET", "registry.npmjs.org", "/left-pad")
	h.OnResponse(ctx, "GET", "registry.npmjs.org", "/left-pad", 200, time.Second)
	h.OnError(ctx, "GET", "registry.npmjs.org", "/left-pad", nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := Audit().(NoopAuditHooks); !ok {
		t.Error("Audit() should return NoopAuditHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	customAudit := &testAuditHooks{}
	SetAuditHooks(customAudit)
	if Audit() != customAudit {
		t.Error("SetAuditHooks should set custom hooks")
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

	Reset()
	if _, ok := Audit().(NoopAuditHooks); !ok {
		t.Error("Reset() should restore NoopAuditHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testAuditHooks{}
	SetAuditHooks(custom)
	SetAuditHooks(nil)

	if Audit() != custom {
		t.Error("SetAuditHooks(nil) should be ignored")
	}

	Reset()
}

type testAuditHooks struct{ NoopAuditHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
