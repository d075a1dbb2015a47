package cache

import (
	"context"

	tcerrors "github.com/matzehuels/tagcloud/pkg/errors"
)

// Backend names accepted by Open.
const (
	BackendNone   = "none"
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

// Options selects and configures a backend.
type Options struct {
	Backend string
	Dir     string // file
	Redis   RedisOptions
	Mongo   MongoOptions
}

// Clearer is implemented by backends that can drop all their entries.
type Clearer interface {
	Clear(ctx context.Context) (int, error)
}

// Open creates the configured backend. An empty backend means file.
func Open(ctx context.Context, opts Options) (Cache, error) {
	switch opts.Backend {
	case "", BackendFile:
		dir := opts.Dir
		if dir == "" {
			d, err := DefaultDir()
			if err != nil {
				return nil, tcerrors.Wrap(tcerrors.ErrCodeInvalidConfig, err, "resolve cache dir")
			}
			dir = d
		}
		fc, err := NewFileCache(dir)
		if err != nil {
			return nil, tcerrors.Wrap(tcerrors.ErrCodeCache, err, "create cache dir %s", dir)
		}
		return fc, nil
	case BackendNone:
		return NewNullCache(), nil
	case BackendMemory:
		return NewMemoryCache(), nil
	case BackendRedis:
		if opts.Redis.Addr == "" {
			return nil, tcerrors.New(tcerrors.ErrCodeInvalidConfig, "redis backend needs an address")
		}
		return NewRedisCache(ctx, opts.Redis)
	case BackendMongo:
		if opts.Mongo.URI == "" {
			return nil, tcerrors.New(tcerrors.ErrCodeInvalidConfig, "mongo backend needs a URI")
		}
		return NewMongoCache(ctx, opts.Mongo)
	}
	return nil, tcerrors.New(tcerrors.ErrCodeInvalidConfig, "unknown cache backend %q", opts.Backend)
}

// Clear empties c when the backend supports it.
func Clear(ctx context.Context, c Cache) (int, error) {
	switch cc := c.(type) {
	case *FileCache:
		return cc.Clear()
	case *MemoryCache:
		n := cc.Len()
		return n, cc.Close()
	case Clearer:
		return cc.Clear(ctx)
	case *NullCache:
		return 0, nil
	}
	return 0, tcerrors.New(tcerrors.ErrCodeUnsupported, "cache %T cannot be cleared", c)
}
