package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/tagcloud/pkg/cache"
	"github.com/matzehuels/tagcloud/pkg/cloud"
	"github.com/matzehuels/tagcloud/pkg/errors"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultValidates(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
[layout]
radius = 250
seed = 7
fallback = "least-overlap"

[layout.params]
max_size = 2.2

[render]
formats = ["svg", "png"]
style = "plain"

[cache]
backend = "redis"
scope = "blog:"

[cache.redis]
addr = "redis:6379"
db = 3

[server]
addr = ":9090"
read_timeout = "5s"

[log]
level = "debug"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Layout.Radius != 250 || cfg.Layout.Seed != 7 {
		t.Errorf("layout = %+v", cfg.Layout)
	}
	if cfg.Layout.Fallback != string(cloud.FallbackLeastOverlap) {
		t.Errorf("fallback = %q", cfg.Layout.Fallback)
	}
	if cfg.Layout.Params.MaxSize != 2.2 {
		t.Errorf("max_size = %v, want 2.2", cfg.Layout.Params.MaxSize)
	}
	if cfg.Layout.Params.MinSize != cloud.DefaultParams().MinSize {
		t.Errorf("unset params should keep defaults, min_size = %v", cfg.Layout.Params.MinSize)
	}
	if diff := cmp.Diff([]string{"svg", "png"}, cfg.Render.Formats); diff != "" {
		t.Errorf("formats (-want +got):\n%s", diff)
	}
	if cfg.Server.ReadTimeout != 5*time.Second {
		t.Errorf("read_timeout = %v, want 5s", cfg.Server.ReadTimeout)
	}
	if cfg.Server.WriteTimeout != Default().Server.WriteTimeout {
		t.Errorf("write_timeout should keep default, got %v", cfg.Server.WriteTimeout)
	}

	lvl, err := cfg.LogLevel()
	if err != nil || lvl != log.DebugLevel {
		t.Errorf("LogLevel() = %v, %v", lvl, err)
	}

	co := cfg.CacheOptions()
	want := cache.RedisOptions{Addr: "redis:6379", DB: 3, PoolSize: 10, Prefix: "tagcloud:"}
	if diff := cmp.Diff(want, co.Redis); diff != "" {
		t.Errorf("redis options (-want +got):\n%s", diff)
	}
	if co.Backend != cache.BackendRedis {
		t.Errorf("backend = %q", co.Backend)
	}

	key := cfg.Keyer().LayoutKey("abc", cache.LayoutKeyOpts{Radius: 300, Seed: 1})
	if !strings.HasPrefix(key, "blog:") {
		t.Errorf("scoped key %q should start with blog:", key)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		code errors.Code
	}{
		{"bad toml", "[layout\nradius = 1", errors.ErrCodeInvalidConfig},
		{"unknown key", "[layout]\nradious = 300", errors.ErrCodeInvalidConfig},
		{"negative radius", "[layout]\nradius = -1", errors.ErrCodeInvalidConfig},
		{"bad style", "[render]\nstyle = \"neon\"", errors.ErrCodeInvalidConfig},
		{"bad backend", "[cache]\nbackend = \"memcached\"", errors.ErrCodeInvalidConfig},
		{"bad level", "[log]\nlevel = \"loud\"", errors.ErrCodeInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("explicit missing file: err = %v, want %s", err, errors.ErrCodeFileNotFound)
	}

	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("missing default file should be ignored: %v", err)
	}
	if cfg.Layout.Radius != Default().Layout.Radius {
		t.Errorf("radius = %v, want default", cfg.Layout.Radius)
	}
}

func TestDefaultPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	got, err := DefaultPath()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, "tagcloud", "config.toml"); got != want {
		t.Errorf("DefaultPath() = %q, want %q", got, want)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("TAGCLOUD_RADIUS", "180")
	t.Setenv("TAGCLOUD_SEED", "99")
	t.Setenv("TAGCLOUD_FORMATS", "svg, json")
	t.Setenv("TAGCLOUD_CACHE_BACKEND", "memory")
	t.Setenv("TAGCLOUD_REDIS_DB", "2")
	t.Setenv("TAGCLOUD_SERVER_ADDR", ":7000")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Layout.Radius != 180 || cfg.Layout.Seed != 99 {
		t.Errorf("layout = %+v", cfg.Layout)
	}
	if diff := cmp.Diff([]string{"svg", "json"}, cfg.Render.Formats); diff != "" {
		t.Errorf("formats (-want +got):\n%s", diff)
	}
	if cfg.Cache.Backend != cache.BackendMemory || cfg.Cache.Redis.DB != 2 {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if cfg.Server.Addr != ":7000" {
		t.Errorf("server addr = %q", cfg.Server.Addr)
	}
}

func TestEnvOverridesFileValues(t *testing.T) {
	path := writeConfig(t, "[layout]\nradius = 250\n")
	t.Setenv("TAGCLOUD_RADIUS", "400")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Layout.Radius != 400 {
		t.Errorf("radius = %v, env should win over file", cfg.Layout.Radius)
	}
}

func TestEnvBadNumber(t *testing.T) {
	env := map[string]string{"TAGCLOUD_SEED": "forty-two"}
	cfg := Default()
	err := cfg.applyEnv(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("err = %v, want %s", err, errors.ErrCodeInvalidConfig)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Layout.Radius = 222
	cfg.Cache.Scope = "site:"

	var buf bytes.Buffer
	if err := cfg.Encode(&buf); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	got := &Config{}
	if err := got.Decode(&buf); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if diff := cmp.Diff(cfg, got); diff != "" {
		t.Errorf("round trip (-want +got):\n%s", diff)
	}
}

func TestPipelineOptions(t *testing.T) {
	cfg := Default()
	cfg.Render.Padding = 0

	opts := cfg.PipelineOptions()
	if opts.Padding == nil || *opts.Padding != 0 {
		t.Errorf("zero padding should survive as an explicit value, got %v", opts.Padding)
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if *opts.Padding != 0 {
		t.Errorf("defaults overwrote explicit padding: %v", *opts.Padding)
	}
}
