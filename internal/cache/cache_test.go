package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisWithClient(client, "test:"), mr
}

func TestRedisGetSetDelete(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestRedis(t)

	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if !mr.Exists("test:k") {
		t.Fatalf("expected prefixed key in redis, got %v", mr.Keys())
	}
	val, ok, err := c.Get(ctx, "k")
	if err != nil || !ok || string(val) != "v" {
		t.Fatalf("unexpected get: %q %v %v", val, ok, err)
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if _, ok, _ := c.Get(ctx, "k"); ok {
		t.Fatalf("expected miss after delete")
	}
}

func TestRedisTTL(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestRedis(t)

	if err := c.Set(ctx, "short", []byte("v"), time.Second); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	mr.FastForward(2 * time.Second)
	if _, ok, _ := c.Get(ctx, "short"); ok {
		t.Fatalf("expected expired key")
	}
}

func TestMemoryCacheHonoursShortTTL(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(8, time.Hour)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	if err := c.Set(ctx, "a", []byte("1"), time.Minute); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if _, ok, _ := c.Get(ctx, "a"); !ok {
		t.Fatalf("expected hit before expiry")
	}
	now = now.Add(2 * time.Minute)
	if _, ok, _ := c.Get(ctx, "a"); ok {
		t.Fatalf("expected miss after expiry")
	}
	if c.Len() != 0 {
		t.Fatalf("expected expired entry removed, len=%d", c.Len())
	}
}

func TestMemoryCacheCopiesValue(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(8, time.Hour)
	buf := []byte("abc")
	_ = c.Set(ctx, "a", buf, 0)
	buf[0] = 'x'
	val, _, _ := c.Get(ctx, "a")
	if string(val) != "abc" {
		t.Fatalf("expected stored copy, got %q", val)
	}
}

func TestMemoryCacheBounded(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(2, time.Hour)
	_ = c.Set(ctx, "a", []byte("1"), 0)
	_ = c.Set(ctx, "b", []byte("2"), 0)
	_ = c.Set(ctx, "c", []byte("3"), 0)
	if c.Len() != 2 {
		t.Fatalf("expected size bound of 2, got %d", c.Len())
	}
	if _, ok, _ := c.Get(ctx, "a"); ok {
		t.Fatalf("expected oldest entry evicted")
	}
}

func TestMemoryCacheBoundsBytes(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryBounded(16, 10, time.Hour)
	_ = c.Set(ctx, "a", []byte("aaaa"), 0)
	_ = c.Set(ctx, "b", []byte("bbbb"), 0)
	if c.Bytes() != 8 {
		t.Fatalf("expected 8 bytes, got %d", c.Bytes())
	}
	_ = c.Set(ctx, "a", []byte("aa"), 0)
	if c.Bytes() != 6 {
		t.Fatalf("replacing a value must release the old bytes, got %d", c.Bytes())
	}
	_ = c.Set(ctx, "c", []byte("cccccc"), 0)
	if _, ok, _ := c.Get(ctx, "b"); ok {
		t.Fatalf("expected the oldest entry evicted to fit the limit")
	}
	if c.Bytes() > 10 || c.Len() != 2 {
		t.Fatalf("expected 2 entries within 10 bytes, got %d entries %d bytes", c.Len(), c.Bytes())
	}
	if err := c.Set(ctx, "d", make([]byte, 11), 0); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
	_ = c.Delete(ctx, "a")
	_ = c.Delete(ctx, "c")
	if c.Bytes() != 0 {
		t.Fatalf("expected every byte released, got %d", c.Bytes())
	}
}

func TestNewRedisFromURL(t *testing.T) {
	mr := miniredis.RunT(t)
	c, err := NewRedisFromURL("redis://" + mr.Addr() + "/0")
	if err != nil {
		t.Fatalf("NewRedisFromURL error: %v", err)
	}
	defer c.Close()
	if err := c.Set(context.Background(), "k", []byte("v"), 0); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if !mr.Exists(KeyPrefix + "k") {
		t.Fatalf("expected %q prefix, got %v", KeyPrefix, mr.Keys())
	}

	if _, err := NewRedisFromURL("://bad"); err == nil {
		t.Fatalf("expected parse error")
	}
}
