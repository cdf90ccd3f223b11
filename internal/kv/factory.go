package kv

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Tiliavir/trivial-water-tracker/internal/config"
)

// Open builds the store selected by the storage section, wrapped in a
// read cache when the cache section enables it.
func Open(ctx context.Context, storage config.StorageConfig, cache config.CacheConfig, observer CacheObserver, logger zerolog.Logger) (Store, error) {
	var (
		store Store
		err   error
	)

	backend := strings.ToLower(strings.TrimSpace(storage.Backend))
	switch backend {
	case config.BackendFile, "":
		store, err = NewFileStore(storage.Dir)
		logger.Debug().Str("backend", config.BackendFile).Str("dir", storage.Dir).Msg("opened store")
	case config.BackendSQLite:
		store, err = NewSQLiteStore(ctx, storage.SQLitePath)
		logger.Debug().Str("backend", backend).Str("path", storage.SQLitePath).Msg("opened store")
	case config.BackendMemory:
		store = NewMemoryStore()
		logger.Debug().Str("backend", backend).Msg("opened store, nothing will be persisted")
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", storage.Backend)
	}
	if err != nil {
		return nil, err
	}

	if cache.Enabled && cache.SizeMB > 0 {
		logger.Debug().Int("sizeMB", cache.SizeMB).Msg("read cache enabled")
		return NewCachedStore(store, cache.SizeMB, observer), nil
	}
	return store, nil
}
