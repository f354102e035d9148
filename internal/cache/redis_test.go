// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"
)

// skipIfNoRedis skips the test if Redis is not configured.
func skipIfNoRedis(t *testing.T) string {
	t.Helper()
	url := os.Getenv("SANGBAD_TEST_REDIS_URL")
	if url == "" {
		t.Skip("Skipping Redis tests: SANGBAD_TEST_REDIS_URL not set")
	}
	return url
}

func newTestRedis(t *testing.T, prefix string) *RedisCache {
	t.Helper()
	url := skipIfNoRedis(t)
	c, err := NewRedisCacheFromURL(url, prefix, time.Minute)
	if err != nil {
		t.Fatalf("failed to create Redis cache: %v", err)
	}
	_ = c.Clear(context.Background())
	t.Cleanup(func() {
		_ = c.Clear(context.Background())
		_ = c.Close()
	})
	return c
}

func TestRedisCache_Basic(t *testing.T) {
	c := newTestRedis(t, "test:")
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	got, err := c.Get(ctx, "k")
	if err != nil || string(got) != "v" {
		t.Fatalf("Get = %q, %v", got, err)
	}
	if ok, _ := c.Has(ctx, "k"); !ok {
		t.Error("Has returned false for existing key")
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := c.Get(ctx, "k"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Get after Delete = %v, want ErrCacheMiss", err)
	}
}

func TestRedisCache_TTL(t *testing.T) {
	c := newTestRedis(t, "ttl-test:")
	ctx := context.Background()

	_ = c.Set(ctx, "short", []byte("v"), 100*time.Millisecond)
	time.Sleep(250 * time.Millisecond)

	if _, err := c.Get(ctx, "short"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("expired key: err = %v, want ErrCacheMiss", err)
	}
}

func TestRedisCache_DeleteByPrefix(t *testing.T) {
	c := newTestRedis(t, "prefix-test:")
	ctx := context.Background()

	_ = c.Set(ctx, PopularKey("news", 10), []byte("a"), 0)
	_ = c.Set(ctx, PopularKey("news", 5), []byte("b"), 0)
	_ = c.Set(ctx, PopularKey("video", 10), []byte("c"), 0)

	if err := c.DeleteByPrefix(ctx, PopularKindPrefix("news")); err != nil {
		t.Fatalf("DeleteByPrefix failed: %v", err)
	}

	if ok, _ := c.Has(ctx, PopularKey("news", 10)); ok {
		t.Error("news key should be deleted")
	}
	if ok, _ := c.Has(ctx, PopularKey("video", 10)); !ok {
		t.Error("video key should remain")
	}
}

func TestRedisCache_Stats(t *testing.T) {
	c := newTestRedis(t, "stats-test:")
	ctx := context.Background()

	_ = c.Set(ctx, "k", []byte("v"), 0)
	_, _ = c.Get(ctx, "k")
	_, _ = c.Get(ctx, "missing")

	stats := c.Stats()
	if stats.Hits != 1 || stats.Misses != 1 || stats.Sets != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestRedisCache_Close(t *testing.T) {
	url := skipIfNoRedis(t)
	c, err := NewRedisCacheFromURL(url, "close-test:", time.Minute)
	if err != nil {
		t.Fatalf("failed to create Redis cache: %v", err)
	}

	if err := c.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if _, err := c.Get(context.Background(), "k"); !errors.Is(err, ErrCacheClosed) {
		t.Errorf("Get after Close = %v, want ErrCacheClosed", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("second Close = %v, want nil", err)
	}
}

func TestRedisCache_InvalidURL(t *testing.T) {
	if _, err := NewRedisCacheFromURL("invalid-url", "test:", time.Minute); err == nil {
		t.Error("expected error for invalid URL")
	}
	if _, err := NewRedisCacheFromURL("", "test:", time.Minute); err == nil {
		t.Error("expected error for empty URL")
	}
}
