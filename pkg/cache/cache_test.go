package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/tagcloud/pkg/cloud"
	tcerrors "github.com/matzehuels/tagcloud/pkg/errors"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit || data != nil {
		t.Error("NullCache.Get should always miss")
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

// exerciseCache runs the behaviour every backend shares.
func exerciseCache(t *testing.T, c Cache) {
	t.Helper()
	ctx := context.Background()

	if _, hit, err := c.Get(ctx, "missing"); err != nil || hit {
		t.Fatalf("Get(missing) = hit %v, err %v", hit, err)
	}

	if err := c.Set(ctx, "k", []byte("v1"), time.Hour); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "k")
	if err != nil || !hit || string(data) != "v1" {
		t.Fatalf("Get(k) = %q, %v, %v", data, hit, err)
	}

	if err := c.Set(ctx, "k", []byte("v2"), 0); err != nil {
		t.Fatalf("overwrite error: %v", err)
	}
	if data, _, _ := c.Get(ctx, "k"); string(data) != "v2" {
		t.Errorf("after overwrite Get(k) = %q, want v2", data)
	}

	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("Get after Delete should miss")
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete of missing key error: %v", err)
	}
}

func TestMemoryCache(t *testing.T) {
	exerciseCache(t, NewMemoryCache())
}

func TestMemoryCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	_ = c.Set(ctx, "k", []byte("v"), time.Minute)
	if _, hit, _ := c.Get(ctx, "k"); !hit {
		t.Fatal("fresh entry should hit")
	}

	now = now.Add(2 * time.Minute)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("expired entry should miss")
	}
	if c.Len() != 0 {
		t.Errorf("expired entry should be dropped, Len() = %d", c.Len())
	}
}

func TestMemoryCacheCopies(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	in := []byte("abc")
	_ = c.Set(ctx, "k", in, 0)
	in[0] = 'x'

	out, _, _ := c.Get(ctx, "k")
	if string(out) != "abc" {
		t.Errorf("stored value changed through caller slice: %q", out)
	}
	out[1] = 'y'
	again, _, _ := c.Get(ctx, "k")
	if string(again) != "abc" {
		t.Errorf("stored value changed through returned slice: %q", again)
	}
}

func TestMemoryCacheConcurrent(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			key := string(rune('a' + i))
			for j := 0; j < 100; j++ {
				_ = c.Set(ctx, key, []byte{byte(j)}, time.Minute)
				_, _, _ = c.Get(ctx, key)
			}
		}()
	}
	wg.Wait()
	if c.Len() != 16 {
		t.Errorf("Len() = %d, want 16", c.Len())
	}
}

func TestFileCache(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	exerciseCache(t, c)
}

func TestFileCacheExpiredAndCorrupt(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if err := c.Set(ctx, "old", []byte("v"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(2 * time.Millisecond)
	if _, hit, _ := c.Get(ctx, "old"); hit {
		t.Error("expired entry should miss")
	}
	if _, err := os.Stat(c.path("old")); !os.IsNotExist(err) {
		t.Error("expired entry should be removed")
	}

	if err := os.MkdirAll(filepath.Dir(c.path("bad")), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(c.path("bad"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "bad"); hit || err != nil {
		t.Errorf("corrupt entry: hit %v err %v, want clean miss", hit, err)
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatal(err)
		}
	}

	n, err := Clear(ctx, c)
	if err != nil {
		t.Fatalf("Clear error: %v", err)
	}
	if n != 3 {
		t.Errorf("Clear removed %d, want 3", n)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("cache dir not empty after Clear: %d entries", len(entries))
	}
}

func TestFileCacheClearMissingDir(t *testing.T) {
	c := &FileCache{dir: filepath.Join(t.TempDir(), "gone")}
	if n, err := c.Clear(); err != nil || n != 0 {
		t.Errorf("Clear() = %d, %v; want 0, nil", n, err)
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
	base := LayoutKeyOpts{Radius: 300, Seed: 1, Fallback: "accept", Params: cloud.DefaultParams()}

	lk := k.LayoutKey("abc", base)
	if !strings.HasPrefix(lk, "layout:") || len(lk) != len("layout:")+64 {
		t.Errorf("LayoutKey = %q", lk)
	}
	if lk != k.LayoutKey("abc", base) {
		t.Error("LayoutKey should be deterministic")
	}

	variants := []LayoutKeyOpts{base, base, base, base}
	variants[0].Radius = 301
	variants[1].Seed = 2
	variants[2].Fallback = "least-overlap"
	variants[3].Params.Margin = 4
	for i, v := range variants {
		if k.LayoutKey("abc", v) == lk {
			t.Errorf("variant %d should change the layout key", i)
		}
	}
	if k.LayoutKey("abd", base) == lk {
		t.Error("tag hash should change the layout key")
	}

	ak1 := k.ArtifactKey("h", ArtifactKeyOpts{Format: "svg", Style: "bubble"})
	ak2 := k.ArtifactKey("h", ArtifactKeyOpts{Format: "png", Style: "bubble"})
	if !strings.HasPrefix(ak1, "artifact:") || ak1 == ak2 {
		t.Errorf("ArtifactKey %q / %q", ak1, ak2)
	}
}

func TestScopedKeyer(t *testing.T) {
	inner := NewDefaultKeyer()
	k := NewScopedKeyer(nil, "tenant:")
	opts := LayoutKeyOpts{Radius: 1}

	if got, want := k.LayoutKey("h", opts), "tenant:"+inner.LayoutKey("h", opts); got != want {
		t.Errorf("LayoutKey = %q, want %q", got, want)
	}
	aopts := ArtifactKeyOpts{Format: "svg"}
	if got, want := k.ArtifactKey("h", aopts), "tenant:"+inner.ArtifactKey("h", aopts); got != want {
		t.Errorf("ArtifactKey = %q, want %q", got, want)
	}
}

func TestRetryWithBackoff(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")

	t.Run("retries retryable errors", func(t *testing.T) {
		calls := 0
		err := RetryWithBackoffN(ctx, 3, time.Millisecond, func() error {
			calls++
			if calls < 3 {
				return Retryable(boom)
			}
			return nil
		})
		if err != nil || calls != 3 {
			t.Errorf("err = %v, calls = %d", err, calls)
		}
	})

	t.Run("gives up after attempts", func(t *testing.T) {
		calls := 0
		err := RetryWithBackoffN(ctx, 2, time.Millisecond, func() error {
			calls++
			return Retryable(boom)
		})
		if !errors.Is(err, boom) || calls != 2 {
			t.Errorf("err = %v, calls = %d", err, calls)
		}
	})

	t.Run("stops on permanent errors", func(t *testing.T) {
		calls := 0
		err := RetryWithBackoffN(ctx, 5, time.Millisecond, func() error {
			calls++
			return boom
		})
		if err != boom || calls != 1 {
			t.Errorf("err = %v, calls = %d", err, calls)
		}
	})

	t.Run("honours cancellation", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		err := RetryWithBackoffN(cctx, 3, time.Hour, func() error { return Retryable(boom) })
		if !errors.Is(err, context.Canceled) {
			t.Errorf("err = %v, want context.Canceled", err)
		}
	})
}

func TestRetryable(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should be nil")
	}
	wrapped := tcerrors.Wrap(tcerrors.ErrCodeCache, Retryable(errors.New("x")), "get")
	if !IsRetryable(wrapped) {
		t.Error("IsRetryable should see through *errors.Error")
	}
	if IsRetryable(errors.New("x")) {
		t.Error("plain errors are not retryable")
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name     string
		opts     Options
		wantType string
		wantCode tcerrors.Code
	}{
		{name: "none", opts: Options{Backend: BackendNone}, wantType: "*cache.NullCache"},
		{name: "memory", opts: Options{Backend: BackendMemory}, wantType: "*cache.MemoryCache"},
		{name: "file", opts: Options{Backend: BackendFile, Dir: t.TempDir()}, wantType: "*cache.FileCache"},
		{name: "default is file", opts: Options{Dir: t.TempDir()}, wantType: "*cache.FileCache"},
		{name: "redis without addr", opts: Options{Backend: BackendRedis}, wantCode: tcerrors.ErrCodeInvalidConfig},
		{name: "mongo without uri", opts: Options{Backend: BackendMongo}, wantCode: tcerrors.ErrCodeInvalidConfig},
		{name: "unknown", opts: Options{Backend: "etcd"}, wantCode: tcerrors.ErrCodeInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Open(ctx, tt.opts)
			if tt.wantCode != "" {
				if !tcerrors.Is(err, tt.wantCode) {
					t.Fatalf("Open() error = %v, want %s", err, tt.wantCode)
				}
				return
			}
			if err != nil {
				t.Fatalf("Open() error = %v", err)
			}
			defer c.Close()
			if got := typeName(c); got != tt.wantType {
				t.Errorf("Open() = %s, want %s", got, tt.wantType)
			}
		})
	}
}

func TestClearMemory(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	_ = c.Set(ctx, "a", nil, 0)
	_ = c.Set(ctx, "b", nil, 0)
	if n, err := Clear(ctx, c); err != nil || n != 2 {
		t.Errorf("Clear() = %d, %v", n, err)
	}
	if c.Len() != 0 {
		t.Error("memory cache should be empty")
	}
}
