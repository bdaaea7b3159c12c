package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/netview/pkg/observability"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil || hit || data != nil {
		t.Errorf("Get = %q, %v, %v; want miss", data, hit, err)
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if _, hit, err := c.Get(ctx, "missing"); hit || err != nil {
		t.Fatalf("Get(missing) hit=%v err=%v", hit, err)
	}

	if err := c.Set(ctx, "svg", []byte("<svg/>"), time.Hour); err != nil {
		t.Fatal(err)
	}
	data, hit, err := c.Get(ctx, "svg")
	if err != nil || !hit || string(data) != "<svg/>" {
		t.Fatalf("Get = %q, %v, %v", data, hit, err)
	}

	if err := c.Set(ctx, "stale", []byte("x"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(time.Millisecond)
	if _, hit, _ := c.Get(ctx, "stale"); hit {
		t.Error("expired entry should miss")
	}

	if err := c.Delete(ctx, "svg"); err != nil {
		t.Fatal(err)
	}
	if err := c.Delete(ctx, "svg"); err != nil {
		t.Errorf("second Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "svg"); hit {
		t.Error("deleted entry should miss")
	}
}

func TestFileCachePrune(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	_ = c.Set(ctx, "keep", []byte("1"), 0)
	_ = c.Set(ctx, "old", []byte("2"), time.Nanosecond)
	corrupt := c.path("corrupt")
	_ = os.MkdirAll(filepath.Dir(corrupt), 0o755)
	_ = os.WriteFile(corrupt, []byte("{"), 0o644)
	time.Sleep(time.Millisecond)

	removed, err := c.Prune(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if removed != 2 {
		t.Errorf("Prune removed %d, want 2", removed)
	}
	if _, hit, _ := c.Get(ctx, "keep"); !hit {
		t.Error("live entry should survive Prune")
	}

	if err := c.Clear(); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, "keep"); hit {
		t.Error("Clear should remove everything")
	}
	if _, err := os.Stat(c.Dir()); err != nil {
		t.Errorf("Clear should leave the root: %v", err)
	}
}

type countingHooks struct {
	observability.NoopCacheHooks
	hits, misses, sets, bytes int
}

func (h *countingHooks) OnCacheHit(context.Context, string)  { h.hits++ }
func (h *countingHooks) OnCacheMiss(context.Context, string) { h.misses++ }
func (h *countingHooks) OnCacheSet(_ context.Context, _ string, n int) {
	h.sets++
	h.bytes += n
}

func TestInstrument(t *testing.T) {
	hooks := &countingHooks{}
	observability.SetCacheHooks(hooks)
	defer observability.Reset()

	ctx := context.Background()
	fc, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	c := Instrument(fc, "snapshot")

	c.Get(ctx, "k")
	c.Set(ctx, "k", []byte("abc"), 0)
	c.Get(ctx, "k")

	if hooks.hits != 1 || hooks.misses != 1 || hooks.sets != 1 || hooks.bytes != 3 {
		t.Errorf("hooks = %+v", hooks)
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

	a, err := HashJSON(map[string]int{"x": 1})
	if err != nil {
		t.Fatal(err)
	}
	b, _ := HashJSON(map[string]int{"x": 2})
	if a == b {
		t.Error("HashJSON should depend on content")
	}
	if _, err := HashJSON(func() {}); err == nil {
		t.Error("HashJSON of a func should fail")
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	if got := k.NetworkKey("mongo", "pathways"); got != "network:mongo:pathways" {
		t.Errorf("NetworkKey = %s", got)
	}

	k1 := k.SnapshotKey("abc", SnapshotKeyOpts{Format: "svg", Engine: "neato"})
	k2 := k.SnapshotKey("abc", SnapshotKeyOpts{Format: "svg", Engine: "fdp"})
	k3 := k.SnapshotKey("abd", SnapshotKeyOpts{Format: "svg", Engine: "neato"})
	if k1 == k2 || k1 == k3 {
		t.Error("snapshot keys should depend on scene and options")
	}
	if !strings.HasPrefix(k1, "snapshot:") {
		t.Errorf("SnapshotKey = %s", k1)
	}
}

func TestScopedKeyer(t *testing.T) {
	scoped := NewScopedKeyer(NewDefaultKeyer(), "net:demo:")
	if got := scoped.NetworkKey("file", "a.json"); got != "net:demo:network:file:a.json" {
		t.Errorf("NetworkKey = %s", got)
	}
	if got := scoped.SnapshotKey("h", SnapshotKeyOpts{}); !strings.HasPrefix(got, "net:demo:snapshot:") {
		t.Errorf("SnapshotKey = %s", got)
	}

	nilInner := NewScopedKeyer(nil, "p:")
	if got := nilInner.NetworkKey("s", "n"); got != "p:network:s:n" {
		t.Errorf("nil inner NetworkKey = %s", got)
	}
}

var errTransient = errors.New("transient")

func TestRetryableError(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should return nil")
	}
	err := Retryable(errTransient)
	if !IsRetryable(err) {
		t.Error("IsRetryable should return true for wrapped error")
	}
	if !errors.Is(err, errTransient) || err.Error() != "transient" {
		t.Errorf("wrapped error = %v", err)
	}
	if IsRetryable(errTransient) {
		t.Error("IsRetryable should return false for unwrapped error")
	}
}

func TestRetryWithBackoff(t *testing.T) {
	RetryDelay = time.Millisecond
	defer func() { RetryDelay = time.Second }()
	ctx := context.Background()

	tests := []struct {
		name      string
		failures  int
		retryable bool
		wantCalls int
		wantErr   bool
	}{
		{"FirstTry", 0, true, 1, false},
		{"NonRetryable", 5, false, 1, true},
		{"RecoverAfterOne", 1, true, 2, false},
		{"GiveUp", 5, true, 3, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := RetryWithBackoff(ctx, func() error {
				calls++
				if calls <= tt.failures {
					if tt.retryable {
						return Retryable(errTransient)
					}
					return errTransient
				}
				return nil
			})
			if (err != nil) != tt.wantErr {
				t.Errorf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
		})
	}
}

func TestRetryWithBackoffContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RetryWithBackoff(ctx, func() error {
		return Retryable(errTransient)
	})
	if err != context.Canceled {
		t.Errorf("Should return context error: %v", err)
	}
}

func TestRetryReturnsCause(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 2, time.Millisecond, func() error {
		calls++
		return Retryable(errTransient)
	})
	if err != errTransient {
		t.Errorf("err = %#v, want the unwrapped cause", err)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}
