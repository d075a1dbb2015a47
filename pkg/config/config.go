// Package config loads tagcloud configuration from a TOML file with
// environment-variable overrides.
//
// Precedence, lowest first: built-in defaults, the config file, TAGCLOUD_*
// environment variables, then command-line flags (applied by the CLI).
//
// The default file lives at $XDG_CONFIG_HOME/tagcloud/config.toml:
//
//	[layout]
//	radius = 300
//	seed = 42
//	fallback = "least-overlap"
//
//	[layout.params]
//	max_size = 1.8
//
//	[render]
//	formats = ["svg", "png"]
//	style = "plain"
//
//	[cache]
//	backend = "redis"
//
//	[cache.redis]
//	addr = "localhost:6379"
//
//	[server]
//	addr = ":8080"
//	read_timeout = "10s"
package config

import (
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/tagcloud/pkg/cache"
	"github.com/matzehuels/tagcloud/pkg/cloud"
	"github.com/matzehuels/tagcloud/pkg/errors"
	"github.com/matzehuels/tagcloud/pkg/pipeline"
)

const (
	appName  = "tagcloud"
	fileName = "config.toml"

	// EnvPrefix prefixes every environment override.
	EnvPrefix = "TAGCLOUD_"
)

// Config is the top-level configuration.
type Config struct {
	Layout LayoutConfig `toml:"layout"`
	Render RenderConfig `toml:"render"`
	Posts  PostsConfig  `toml:"posts"`
	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`
	Log    LogConfig    `toml:"log"`
}

// LayoutConfig holds layout engine settings.
type LayoutConfig struct {
	Radius   float64      `toml:"radius"`
	Seed     uint64       `toml:"seed"`
	Fallback string       `toml:"fallback"`
	Params   cloud.Params `toml:"params"`
}

// RenderConfig holds renderer settings.
type RenderConfig struct {
	Formats  []string `toml:"formats"`
	Style    string   `toml:"style"`
	Scale    float64  `toml:"scale"`
	Padding  float64  `toml:"padding"`
	Overlaps bool     `toml:"overlaps"`
	Animate  bool     `toml:"animate"`
}

// PostsConfig locates the Markdown posts.
type PostsConfig struct {
	Dir string `toml:"dir"`
}

// CacheConfig selects the cache backend.
type CacheConfig struct {
	Backend string `toml:"backend"`
	Dir     string `toml:"dir"`

	// Scope prefixes every cache key so several sites can share one
	// backend.
	Scope string `toml:"scope"`

	Redis RedisConfig `toml:"redis"`
	Mongo MongoConfig `toml:"mongo"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	PoolSize int    `toml:"pool_size"`
	Prefix   string `toml:"prefix"`
}

// MongoConfig holds MongoDB connection parameters.
type MongoConfig struct {
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr            string        `toml:"addr"`
	ReadTimeout     time.Duration `toml:"read_timeout"`
	WriteTimeout    time.Duration `toml:"write_timeout"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout"`
	MaxBodyBytes    int64         `toml:"max_body_bytes"`
}

// LogConfig controls the log level.
type LogConfig struct {
	Level string `toml:"level"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Layout: LayoutConfig{
			Radius:   pipeline.DefaultRadius,
			Seed:     pipeline.DefaultSeed,
			Fallback: string(cloud.FallbackAccept),
			Params:   cloud.DefaultParams(),
		},
		Render: RenderConfig{
			Formats: []string{"svg"},
			Style:   pipeline.DefaultStyle,
			Scale:   pipeline.DefaultScale,
			Padding: pipeline.DefaultPadding,
		},
		Posts: PostsConfig{
			Dir: "content/posts",
		},
		Cache: CacheConfig{
			Backend: cache.BackendFile,
			Redis: RedisConfig{
				Addr:     "localhost:6379",
				PoolSize: 10,
				Prefix:   "tagcloud:",
			},
			Mongo: MongoConfig{
				URI:        "mongodb://localhost:27017",
				Database:   "tagcloud",
				Collection: "cache",
			},
		},
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			MaxBodyBytes:    4 << 20,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/tagcloud/config.toml, falling back
// to the platform's user config directory.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, fileName), nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appName, fileName), nil
}

// Load builds the configuration from defaults, the file at path and the
// environment. An empty path reads the default file if it exists; an
// explicit path must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		if p, err := DefaultPath(); err == nil {
			path = p
		}
	}
	if path != "" {
		if err := cfg.decodeFile(path, explicit); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decodeFile(path string, mustExist bool) error {
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		if os.IsNotExist(err) {
			if mustExist {
				return errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
			}
			return nil
		}
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config file %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return errors.New(errors.ErrCodeInvalidConfig, "%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return nil
}

// Decode reads TOML from r on top of the current values.
func (c *Config) Decode(r io.Reader) error {
	if _, err := toml.NewDecoder(r).Decode(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config")
	}
	return nil
}

// Encode writes the configuration as TOML.
func (c *Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// Validate checks every section.
func (c *Config) Validate() error {
	opts := c.PipelineOptions()
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid layout or render settings")
	}
	switch c.Cache.Backend {
	case cache.BackendNone, cache.BackendMemory, cache.BackendFile, cache.BackendRedis, cache.BackendMongo:
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q (must be one of: none, memory, file, redis, mongo)", c.Cache.Backend)
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	if c.Server.MaxBodyBytes <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "server.max_body_bytes must be positive, got %d", c.Server.MaxBodyBytes)
	}
	return nil
}

// LogLevel parses Log.Level.
func (c *Config) LogLevel() (log.Level, error) {
	lvl, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel, errors.Wrap(errors.ErrCodeInvalidConfig, err, "log.level")
	}
	return lvl, nil
}

// PipelineOptions converts the layout and render sections.
func (c *Config) PipelineOptions() pipeline.Options {
	padding := c.Render.Padding
	return pipeline.Options{
		Radius:   c.Layout.Radius,
		Seed:     c.Layout.Seed,
		Fallback: c.Layout.Fallback,
		Params:   c.Layout.Params,
		Formats:  append([]string(nil), c.Render.Formats...),
		Style:    c.Render.Style,
		Scale:    c.Render.Scale,
		Padding:  &padding,
		Overlaps: c.Render.Overlaps,
		Animate:  c.Render.Animate,
	}
}

// CacheOptions converts the cache section.
func (c *Config) CacheOptions() cache.Options {
	return cache.Options{
		Backend: c.Cache.Backend,
		Dir:     c.Cache.Dir,
		Redis: cache.RedisOptions{
			Addr:     c.Cache.Redis.Addr,
			Password: c.Cache.Redis.Password,
			DB:       c.Cache.Redis.DB,
			PoolSize: c.Cache.Redis.PoolSize,
			Prefix:   c.Cache.Redis.Prefix,
		},
		Mongo: cache.MongoOptions{
			URI:        c.Cache.Mongo.URI,
			Database:   c.Cache.Mongo.Database,
			Collection: c.Cache.Mongo.Collection,
		},
	}
}

// Keyer returns the cache keyer, scoped when Cache.Scope is set.
func (c *Config) Keyer() cache.Keyer {
	if c.Cache.Scope == "" {
		return cache.NewDefaultKeyer()
	}
	return cache.NewScopedKeyer(cache.NewDefaultKeyer(), c.Cache.Scope)
}

// applyEnv reads TAGCLOUD_* variables through lookup.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	env := envReader{lookup: lookup}

	env.float("RADIUS", &c.Layout.Radius)
	env.uint("SEED", &c.Layout.Seed)
	env.str("FALLBACK", &c.Layout.Fallback)

	env.list("FORMATS", &c.Render.Formats)
	env.str("STYLE", &c.Render.Style)
	env.float("SCALE", &c.Render.Scale)
	env.bool("OVERLAPS", &c.Render.Overlaps)

	env.str("POSTS_DIR", &c.Posts.Dir)

	env.str("CACHE_BACKEND", &c.Cache.Backend)
	env.str("CACHE_DIR", &c.Cache.Dir)
	env.str("CACHE_SCOPE", &c.Cache.Scope)
	env.str("REDIS_ADDR", &c.Cache.Redis.Addr)
	env.str("REDIS_PASSWORD", &c.Cache.Redis.Password)
	env.int("REDIS_DB", &c.Cache.Redis.DB)
	env.str("MONGO_URI", &c.Cache.Mongo.URI)
	env.str("MONGO_DATABASE", &c.Cache.Mongo.Database)

	env.str("SERVER_ADDR", &c.Server.Addr)
	env.str("LOG_LEVEL", &c.Log.Level)

	return env.err
}

// envReader collects the first conversion error so callers can read a
// batch of variables and check once.
type envReader struct {
	lookup func(string) (string, bool)
	err    error
}

func (e *envReader) get(name string) (string, bool) {
	if e.err != nil {
		return "", false
	}
	v, ok := e.lookup(EnvPrefix + name)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func (e *envReader) fail(name, v string, err error) {
	e.err = errors.Wrap(errors.ErrCodeInvalidConfig, err, "%s%s=%q", EnvPrefix, name, v)
}

func (e *envReader) str(name string, dst *string) {
	if v, ok := e.get(name); ok {
		*dst = v
	}
}

func (e *envReader) list(name string, dst *[]string) {
	if v, ok := e.get(name); ok {
		var out []string
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		*dst = out
	}
}

func (e *envReader) float(name string, dst *float64) {
	if v, ok := e.get(name); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			e.fail(name, v, err)
			return
		}
		*dst = f
	}
}

func (e *envReader) int(name string, dst *int) {
	if v, ok := e.get(name); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			e.fail(name, v, err)
			return
		}
		*dst = n
	}
}

func (e *envReader) uint(name string, dst *uint64) {
	if v, ok := e.get(name); ok {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			e.fail(name, v, err)
			return
		}
		*dst = n
	}
}

func (e *envReader) bool(name string, dst *bool) {
	if v, ok := e.get(name); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			e.fail(name, v, err)
			return
		}
		*dst = b
	}
}
