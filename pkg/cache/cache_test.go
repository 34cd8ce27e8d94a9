package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

type payload struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

func TestMemoryCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache()
	defer mc.Close()

	if err := mc.Set(ctx, "p", payload{"a", 0.5}, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	var got payload
	if err := mc.Get(ctx, "p", &got); err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "a" || got.Score != 0.5 {
		t.Fatalf("got %+v", got)
	}

	_ = mc.Set(ctx, "s", "plain", 0)
	var s string
	if err := mc.Get(ctx, "s", &s); err != nil || s != "plain" {
		t.Fatalf("string get: %q %v", s, err)
	}

	if err := mc.Get(ctx, "missing", &got); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected miss, got %v", err)
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache()
	defer mc.Close()

	_ = mc.Set(ctx, "k", "v", time.Millisecond)
	time.Sleep(5 * time.Millisecond)

	var s string
	if err := mc.Get(ctx, "k", &s); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected expired miss, got %v (%q)", err, s)
	}
	if ok, _ := mc.Exists(ctx, "k"); ok {
		t.Fatalf("expired key should not exist")
	}
}

func TestMemoryCacheEvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache(WithMemoryMaxSize(2))
	defer mc.Close()

	_ = mc.Set(ctx, "a", "1", 0)
	time.Sleep(time.Millisecond)
	_ = mc.Set(ctx, "b", "2", 0)
	time.Sleep(time.Millisecond)

	var s string
	_ = mc.Get(ctx, "a", &s) // a is now the most recent
	time.Sleep(time.Millisecond)
	_ = mc.Set(ctx, "c", "3", 0)

	if mc.Len() != 2 {
		t.Fatalf("len = %d, want 2", mc.Len())
	}
	if ok, _ := mc.Exists(ctx, "b"); ok {
		t.Fatalf("b should have been evicted")
	}
	if ok, _ := mc.Exists(ctx, "a", "c"); !ok {
		t.Fatalf("a and c should remain")
	}
}

func TestMemoryCacheIncrement(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache()
	defer mc.Close()

	for want := int64(1); want <= 3; want++ {
		got, err := mc.Increment(ctx, "n")
		if err != nil || got != want {
			t.Fatalf("increment = %d, %v; want %d", got, err, want)
		}
	}
	_ = mc.Set(ctx, "word", "abc", 0)
	if _, err := mc.Increment(ctx, "word"); err == nil {
		t.Fatalf("increment of non-integer should fail")
	}
	if ok, _ := mc.Expire(ctx, "nope", time.Second); ok {
		t.Fatalf("expire on missing key should report false")
	}
}

func TestLayeredCacheFillsL1(t *testing.T) {
	ctx := context.Background()
	remote := NewMemoryCache()
	lc := NewLayeredCache(remote)
	defer lc.Close()

	_ = remote.Set(ctx, "k", payload{"remote", 1}, time.Minute)

	var got payload
	if err := lc.Get(ctx, "k", &got); err != nil || got.Name != "remote" {
		t.Fatalf("layered get: %+v %v", got, err)
	}

	// drop from remote; L1 still answers
	_ = remote.Delete(ctx, "k")
	got = payload{}
	if err := lc.Get(ctx, "k", &got); err != nil || got.Name != "remote" {
		t.Fatalf("L1 get: %+v %v", got, err)
	}

	_ = lc.Delete(ctx, "k")
	if err := lc.Get(ctx, "k", &got); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected miss after delete, got %v", err)
	}
}

func TestHashParts(t *testing.T) {
	if HashParts("ab", "c") == HashParts("a", "bc") {
		t.Fatalf("separator missing")
	}
	if HashParts([]string{"a b", "c"}) == HashParts([]string{"a", "b", "c"}) {
		t.Fatalf("elements with spaces collide with split elements")
	}
	if HashParts([]string{"a"}, []string{"b"}) == HashParts([]string{"a", "b"}, []string(nil)) {
		t.Fatalf("part boundaries collide")
	}
	if HashParts([]float64{1, 2}, 80) != HashParts([]float64{1, 2}, 80) {
		t.Fatalf("hash not stable")
	}
	if GenerateKey("glyph", "x") != "glyph:x" {
		t.Fatalf("GenerateKey")
	}
}

func TestNop(t *testing.T) {
	var c Service = Nop{}
	var s string
	if err := c.Get(context.Background(), "k", &s); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("nop get = %v", err)
	}
}
