package cache

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	// Get always returns miss
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit || data != nil {
		t.Error("NullCache.Get should always return a nil miss")
	}

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	if _, hit, _ = c.Get(ctx, "key"); hit {
		t.Error("NullCache should not store data")
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}

	if _, hit, _ := c.Get(ctx, "artifact:x"); hit {
		t.Fatal("empty cache should miss")
	}
	if err := c.Set(ctx, "artifact:x", []byte("png"), 0); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "artifact:x")
	if err != nil || !hit || string(data) != "png" {
		t.Errorf("Get = (%q, %v, %v), want (png, true, nil)", data, hit, err)
	}

	if err := c.Delete(ctx, "artifact:x"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "artifact:x"); hit {
		t.Error("Get after Delete should miss")
	}
	if err := c.Delete(ctx, "artifact:x"); err != nil {
		t.Errorf("Delete of missing key error: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())

	_ = c.Set(ctx, "k", []byte("v"), time.Nanosecond)
	time.Sleep(time.Millisecond)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("expired entry should miss")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())

	_ = c.Set(ctx, "k", []byte("v"), 0)
	if err := os.WriteFile(c.path("k"), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
		t.Errorf("corrupt entry Get = (hit %v, err %v), want plain miss", hit, err)
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	for i := range 5 {
		_ = c.Set(ctx, fmt.Sprintf("k%d", i), []byte("v"), 0)
	}

	n, err := c.Clear()
	if err != nil {
		t.Fatalf("Clear error: %v", err)
	}
	if n != 5 {
		t.Errorf("Clear() = %d, want 5", n)
	}
	if entries, _ := os.ReadDir(c.Dir()); len(entries) != 0 {
		t.Errorf("cache dir has %d entries after Clear", len(entries))
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	if h1 != Hash([]byte("hello")) {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("Different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()
	markup := Hash([]byte("<svg/>"))

	base := ArtifactKeyOpts{Format: "png", Width: 400, Height: 200, ScaleX: 2, ScaleY: 2}
	ak := k.ArtifactKey(markup, base)
	if !strings.HasPrefix(ak, "artifact:") {
		t.Errorf("ArtifactKey = %q, want artifact: prefix", ak)
	}
	if ak != k.ArtifactKey(markup, base) {
		t.Error("ArtifactKey should be deterministic")
	}

	variants := []ArtifactKeyOpts{
		{Format: "png", Width: 401, Height: 200, ScaleX: 2, ScaleY: 2},
		{Format: "png", Width: 400, Height: 200, ScaleX: 2, ScaleY: 2.5},
		{Format: "png", Width: 400, Height: 200, ScaleX: 2, ScaleY: 2, Strict: true},
	}
	for _, v := range variants {
		if k.ArtifactKey(markup, v) == ak {
			t.Errorf("ArtifactKey(%+v) collides with base options", v)
		}
	}
	if k.ArtifactKey(Hash([]byte("<svg></svg>")), base) == ak {
		t.Error("different markup should produce different keys")
	}

	if sk := k.SourceKey("dot", markup); !strings.HasPrefix(sk, "source:dot:") {
		t.Errorf("SourceKey = %q, want source:dot: prefix", sk)
	}
}

func TestScopedKeyer(t *testing.T) {
	scoped := NewScopedKeyer(NewDefaultKeyer(), "team:a:")
	key := scoped.ArtifactKey("abc", ArtifactKeyOpts{})
	if !strings.HasPrefix(key, "team:a:artifact:") {
		t.Errorf("ScopedKeyer ArtifactKey should be prefixed: %s", key)
	}

	// Should use DefaultKeyer when inner is nil
	nilInner := NewScopedKeyer(nil, "p:")
	if got := nilInner.SourceKey("dot", "abc"); got != "p:"+NewDefaultKeyer().SourceKey("dot", "abc") {
		t.Errorf("Unexpected key with nil inner: %s", got)
	}
}

func TestRedisClassify(t *testing.T) {
	if classify(nil) != nil {
		t.Error("classify(nil) should be nil")
	}
	if !errors.Is(classify(redis.Nil), ErrCacheMiss) {
		t.Error("redis.Nil should classify as a cache miss")
	}
	netErr := classify(&net.OpError{Op: "dial", Err: errors.New("connection refused")})
	if !IsRetryable(netErr) || !errors.Is(netErr, ErrNetwork) {
		t.Errorf("network error should be retryable ErrNetwork, got %v", netErr)
	}
	other := errors.New("WRONGTYPE")
	if classify(other) != other {
		t.Error("other errors should pass through")
	}
}

func TestRedisClearRequiresPrefix(t *testing.T) {
	c := NewRedisCacheFromClient(redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"}), "")
	defer c.Close()
	if _, err := c.Clear(context.Background()); err == nil {
		t.Error("Clear without prefix should refuse")
	}
}

func TestRetryableError(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should return nil")
	}

	err := Retryable(ErrNetwork)
	if !IsRetryable(err) {
		t.Error("IsRetryable should return true for wrapped error")
	}
	if err.Error() != ErrNetwork.Error() {
		t.Errorf("Error message should be preserved: %s", err.Error())
	}
	if IsRetryable(ErrCacheMiss) {
		t.Error("IsRetryable should return false for unwrapped error")
	}
}

func TestRetryWithBackoff(t *testing.T) {
	ctx := context.Background()
	RetryBaseDelay = time.Millisecond
	defer func() { RetryBaseDelay = 200 * time.Millisecond }()

	calls := 0
	if err := RetryWithBackoff(ctx, func() error { calls++; return nil }); err != nil || calls != 1 {
		t.Errorf("success: err=%v calls=%d, want nil and 1", err, calls)
	}

	// Non-retryable error stops immediately
	calls = 0
	err := RetryWithBackoff(ctx, func() error { calls++; return ErrCacheMiss })
	if err != ErrCacheMiss || calls != 1 {
		t.Errorf("non-retryable: err=%v calls=%d", err, calls)
	}

	// Retryable error triggers retries
	calls = 0
	err = RetryWithBackoff(ctx, func() error {
		calls++
		if calls < 2 {
			return Retryable(ErrNetwork)
		}
		return nil
	})
	if err != nil || calls != 2 {
		t.Errorf("retry: err=%v calls=%d, want nil and 2", err, calls)
	}

	// Attempts are bounded
	calls = 0
	err = RetryWithBackoff(ctx, func() error { calls++; return Retryable(ErrNetwork) })
	if !errors.Is(err, ErrNetwork) || calls != 3 {
		t.Errorf("exhausted: err=%v calls=%d, want ErrNetwork and 3", err, calls)
	}
}

func TestRetryWithBackoffContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RetryWithBackoff(ctx, func() error {
		return Retryable(ErrNetwork)
	})
	if err != context.Canceled {
		t.Errorf("Should return context error: %v", err)
	}
}
