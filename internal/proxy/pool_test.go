package proxy

import (
	"context"
	"net/http"
	"testing"
	"time"
)

func TestProxyPool(t *testing.T) {
	proxies := []string{"p1", "p2", "p3"}
	pool := NewProxyPool(proxies)

	// Test rotation
	for _, want := range []string{"p1", "p2", "p3", "p1"} {
		if p := pool.GetNext(); p != want {
			t.Errorf("Expected %s, got %s", want, p)
		}
	}

	// Index now points at p2
	pool.MarkFailed("p2")

	if p := pool.GetNext(); p != "p3" {
		t.Errorf("Expected p3 (skipping p2), got %s", p)
	}
	if p := pool.GetNext(); p != "p1" {
		t.Errorf("Expected p1, got %s", p)
	}
	if p := pool.GetNext(); p != "p3" {
		t.Errorf("Expected p3, got %s", p)
	}

	pool.MarkHealthy("p2")

	if p := pool.GetNext(); p != "p1" {
		t.Errorf("Expected p1, got %s", p)
	}
	if p := pool.GetNext(); p != "p2" {
		t.Errorf("Expected p2, got %s", p)
	}
}

func TestProxyPool_FailureExpires(t *testing.T) {
	now := time.Now()
	pool := NewProxyPool([]string{"p1", "p2"})
	pool.now = func() time.Time { return now }

	pool.MarkFailed("p1")
	if p := pool.GetNext(); p != "p2" {
		t.Errorf("Expected p2 while p1 cools down, got %s", p)
	}

	now = now.Add(FailureCooldown + time.Second)
	if p := pool.GetNext(); p != "p1" {
		t.Errorf("Expected p1 after cooldown, got %s", p)
	}
}

func TestProxyPool_AllFailed(t *testing.T) {
	pool := NewProxyPool([]string{"p1", "p2"})
	pool.MarkFailed("p1")
	pool.MarkFailed("p2")

	if p := pool.GetNext(); p == "" {
		t.Error("Expected a proxy even when all are failed")
	}
}

func TestProxyPool_Empty(t *testing.T) {
	pool := NewProxyPool([]string{"", ""})
	if pool.Len() != 0 {
		t.Errorf("Expected empty pool, got %d", pool.Len())
	}
	if p := pool.GetNext(); p != "" {
		t.Errorf("Expected no proxy, got %s", p)
	}

	var nilPool *ProxyPool
	if p := nilPool.GetNext(); p != "" {
		t.Errorf("Expected no proxy from nil pool, got %s", p)
	}
}

func TestFromRequest(t *testing.T) {
	ctx := WithProxy(context.Background(), "http://proxy.local:8080")
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, "http://example.com", nil)

	u, err := FromRequest(req)
	if err != nil {
		t.Fatalf("FromRequest failed: %v", err)
	}
	if u == nil || u.Host != "proxy.local:8080" {
		t.Errorf("Expected proxy.local:8080, got %v", u)
	}
}
