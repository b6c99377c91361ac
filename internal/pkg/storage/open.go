package storage

import "fmt"

const (
	BackendMemory = "memory"
	BackendPebble = "pebble"
	BackendRedis  = "redis"
)

// Options selects and configures a backend.
type Options struct {
	Backend   string
	PebbleDir string
	RedisAddr string
	Namespace string
}

func Open(opts Options) (Backend, error) {
	switch opts.Backend {
	case "", BackendMemory:
		return NewMemoryStore(), nil
	case BackendPebble:
		return NewPebbleStore(opts.PebbleDir)
	case BackendRedis:
		return NewRedisStore(opts.RedisAddr, opts.Namespace), nil
	default:
		return nil, fmt.Errorf("storage: unknown backend %q", opts.Backend)
	}
}
