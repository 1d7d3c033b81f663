package provider

import (
	"context"
	"testing"
	"time"
)

func exerciseProvider(t *testing.T, p Provider) {
	t.Helper()
	ctx := context.Background()

	if _, ok, err := p.Get(ctx, "missing"); ok || err != nil {
		t.Fatalf("expected clean miss, got ok=%v err=%v", ok, err)
	}

	ok, err := p.Set(ctx, "a", []byte("one"), 3, 0)
	if err != nil || !ok {
		t.Fatalf("set: ok=%v err=%v", ok, err)
	}
	b, ok, err := p.Get(ctx, "a")
	if err != nil || !ok || string(b) != "one" {
		t.Fatalf("get: %q ok=%v err=%v", b, ok, err)
	}

	if err := p.Del(ctx, "a"); err != nil {
		t.Fatalf("del: %v", err)
	}
	if _, ok, _ := p.Get(ctx, "a"); ok {
		t.Error("expected miss after delete")
	}
	if err := p.Del(ctx, "a"); err != nil {
		t.Errorf("deleting a missing key should be a no-op, got %v", err)
	}

	_, _ = p.Set(ctx, "b", []byte("two"), 3, 0)
	if err := p.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, ok, _ := p.Get(ctx, "b"); ok {
		t.Error("expected miss after clear")
	}
}

func TestRistretto(t *testing.T) {
	p, err := NewRistretto(RistrettoConfig{NumCounters: 1000, MaxCost: 1 << 20, BufferItems: 64})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer p.Close(context.Background())
	exerciseProvider(t, p)
}

func TestRistretto_InvalidConfig(t *testing.T) {
	if _, err := NewRistretto(RistrettoConfig{}); err == nil {
		t.Error("expected invalid config to be rejected")
	}
}

func TestBigCache(t *testing.T) {
	p, err := NewBigCache(BigCacheConfig{LifeWindow: time.Hour})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer p.Close(context.Background())
	exerciseProvider(t, p)
}

func TestNew(t *testing.T) {
	p, err := New(Config{Backend: BackendRistretto, MaxCost: 1 << 20})
	if err != nil {
		t.Fatalf("ristretto: %v", err)
	}
	_ = p.Close(context.Background())

	if _, err := New(Config{Backend: BackendRedis}); err == nil {
		t.Error("expected redis without client to fail")
	}
	if _, err := New(Config{Backend: "etcd"}); err == nil {
		t.Error("expected unknown backend to fail")
	}
}
