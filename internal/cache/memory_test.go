// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

func newTestMemoryCache(t *testing.T, opts MemoryCacheOptions) (*MemoryCache, *time.Time) {
	t.Helper()
	c := NewMemoryCache(opts)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	t.Cleanup(func() { _ = c.Close() })
	return c, &now
}

func TestMemoryCache_BasicOperations(t *testing.T) {
	c, _ := newTestMemoryCache(t, MemoryCacheOptions{DefaultTTL: time.Hour})
	ctx := context.Background()

	if err := c.Set(ctx, "key1", []byte("value1"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	val, err := c.Get(ctx, "key1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(val) != "value1" {
		t.Errorf("expected value1, got %s", string(val))
	}

	if has, _ := c.Has(ctx, "key1"); !has {
		t.Error("expected key1 to exist")
	}

	if err := c.Delete(ctx, "key1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := c.Get(ctx, "key1"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("expected ErrCacheMiss, got %v", err)
	}
}

func TestMemoryCache_ReturnsCopies(t *testing.T) {
	c, _ := newTestMemoryCache(t, MemoryCacheOptions{})
	ctx := context.Background()

	in := []byte("abc")
	_ = c.Set(ctx, "k", in, 0)
	in[0] = 'x'

	out, _ := c.Get(ctx, "k")
	out[1] = 'y'

	again, _ := c.Get(ctx, "k")
	if string(again) != "abc" {
		t.Errorf("stored value mutated: %q", again)
	}
}

func TestMemoryCache_Expiration(t *testing.T) {
	c, now := newTestMemoryCache(t, MemoryCacheOptions{DefaultTTL: time.Minute})
	ctx := context.Background()

	_ = c.Set(ctx, "short", []byte("v"), 10*time.Second)
	_ = c.Set(ctx, "default", []byte("v"), 0)

	*now = now.Add(30 * time.Second)
	if _, err := c.Get(ctx, "short"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("short entry should have expired, got %v", err)
	}
	if _, err := c.Get(ctx, "default"); err != nil {
		t.Errorf("default-TTL entry should still be present: %v", err)
	}

	*now = now.Add(time.Minute)
	if has, _ := c.Has(ctx, "default"); has {
		t.Error("default-TTL entry should have expired")
	}
}

func TestMemoryCache_DeleteByPrefix(t *testing.T) {
	c, _ := newTestMemoryCache(t, MemoryCacheOptions{})
	ctx := context.Background()

	_ = c.Set(ctx, PopularKey("news", 10), []byte("a"), 0)
	_ = c.Set(ctx, PopularKey("news", 5), []byte("b"), 0)
	_ = c.Set(ctx, PopularKey("video", 10), []byte("c"), 0)
	_ = c.Set(ctx, CategoriesKey(), []byte("d"), 0)

	if err := c.DeleteByPrefix(ctx, PopularKindPrefix("news")); err != nil {
		t.Fatalf("DeleteByPrefix failed: %v", err)
	}

	for key, want := range map[string]bool{
		PopularKey("news", 10):  false,
		PopularKey("news", 5):   false,
		PopularKey("video", 10): true,
		CategoriesKey():         true,
	} {
		if has, _ := c.Has(ctx, key); has != want {
			t.Errorf("Has(%q) = %v, want %v", key, has, want)
		}
	}
}

func TestMemoryCache_MaxSizeEvicts(t *testing.T) {
	c, _ := newTestMemoryCache(t, MemoryCacheOptions{MaxSize: 2})
	ctx := context.Background()

	_ = c.Set(ctx, "a", []byte("1"), time.Minute)
	_ = c.Set(ctx, "b", []byte("2"), time.Hour)
	_ = c.Set(ctx, "c", []byte("3"), time.Hour)

	if n := c.Stats().Items; n != 2 {
		t.Errorf("items = %d, want 2", n)
	}
	if has, _ := c.Has(ctx, "a"); has {
		t.Error("entry closest to expiry should be evicted")
	}
}

func TestMemoryCache_Stats(t *testing.T) {
	c, _ := newTestMemoryCache(t, MemoryCacheOptions{})
	ctx := context.Background()

	_ = c.Set(ctx, "k", []byte("1234"), 0)
	_, _ = c.Get(ctx, "k")
	_, _ = c.Get(ctx, "k")
	_, _ = c.Get(ctx, "missing")

	stats := c.Stats()
	if stats.Hits != 2 || stats.Misses != 1 || stats.Sets != 1 || stats.Items != 1 || stats.Size != 4 {
		t.Errorf("stats = %+v", stats)
	}

	c.ResetStats()
	if s := c.Stats(); s.Hits != 0 || s.Misses != 0 {
		t.Errorf("stats after reset = %+v", s)
	}

	_ = c.Clear(ctx)
	if s := c.Stats(); s.Items != 0 || s.Size != 0 {
		t.Errorf("stats after clear = %+v", s)
	}
}

func TestMemoryCache_Closed(t *testing.T) {
	c := NewMemoryCache(MemoryCacheOptions{CleanupInterval: time.Millisecond})
	_ = c.Close()
	_ = c.Close()

	ctx := context.Background()
	if _, err := c.Get(ctx, "k"); !errors.Is(err, ErrCacheClosed) {
		t.Errorf("Get after Close = %v", err)
	}
	if err := c.Set(ctx, "k", nil, 0); !errors.Is(err, ErrCacheClosed) {
		t.Errorf("Set after Close = %v", err)
	}
}

func TestMemoryCache_Concurrent(t *testing.T) {
	c := NewMemoryCache(MemoryCacheOptions{DefaultTTL: time.Hour})
	defer func() { _ = c.Close() }()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("key-%d", i%10)
			_ = c.Set(ctx, key, []byte("v"), 0)
			_, _ = c.Get(ctx, key)
			if i%7 == 0 {
				_ = c.DeleteByPrefix(ctx, "key-1")
			}
		}(i)
	}
	wg.Wait()
}
