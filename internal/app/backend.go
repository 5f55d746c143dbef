// Package app wires configuration into concrete backends and providers for both binaries.
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/pickmyelective/electives/internal/config"
	"github.com/pickmyelective/electives/internal/db"
	dbRedis "github.com/pickmyelective/electives/internal/db/redis"
	dbValkey "github.com/pickmyelective/electives/internal/db/valkey"
	"github.com/pickmyelective/electives/internal/domain/search/filter"
	"github.com/pickmyelective/electives/internal/domain/vectorindex"
	"github.com/pickmyelective/electives/internal/repository/courseindex"
	"github.com/pickmyelective/electives/internal/repository/pgindex"
)

// Index is the full course index contract both backends satisfy.
type Index interface {
	EnsureCollection(ctx context.Context, spec vectorindex.Spec, recreate bool) error
	Upsert(ctx context.Context, collection string, entries []vectorindex.Entry) error
	Query(
		ctx context.Context, collection string,
		vector []float32, native filter.Expression, limit int,
	) ([]vectorindex.Hit, error)
	Describe(ctx context.Context, name string) (vectorindex.Collection, error)
	Swap(ctx context.Context, alias, target string) error
}

var (
	_ Index = (*courseindex.Repo)(nil)
	_ Index = (*pgindex.Repo)(nil)
)

// Backend is an opened index backend.
type Backend struct {
	Index  Index
	Pinger db.Pinger
	KV     db.KVStore // nil when the backend has no key-value side (pgvector)
	close  func()
}

// Close releases backend connections.
func (b *Backend) Close() {
	if b.close != nil {
		b.close()
	}
}

// OpenBackend connects to the configured index backend and waits until it answers.
func OpenBackend(ctx context.Context, cfg config.IndexConfig, logger *zap.Logger) (*Backend, error) {
	switch cfg.Backend {
	case config.BackendValkey, config.BackendRedis:
		store, err := openStore(cfg)
		if err != nil {
			return nil, fmt.Errorf("create %s store: %w", cfg.Backend, err)
		}
		if err := store.WaitForReady(ctx, time.Duration(cfg.ReadinessTimeout)*time.Second); err != nil {
			store.Close()
			return nil, fmt.Errorf("%s not ready: %w", cfg.Backend, err)
		}
		repo := courseindex.New(store, cfg.KeyPrefix).WithHNSW(courseindex.HNSWConfig{
			M:           cfg.HNSWM,
			EFConstruct: cfg.HNSWEFConstruct,
		})
		logger.Info("Connected to index backend",
			zap.String("backend", cfg.Backend), zap.Strings("addrs", cfg.Addrs))
		return &Backend{Index: repo, Pinger: store, KV: store, close: store.Close}, nil

	case config.BackendPgvector:
		ctx, cancel := context.WithTimeout(ctx, time.Duration(cfg.ReadinessTimeout)*time.Second)
		defer cancel()
		repo, err := pgindex.Open(ctx, cfg.DSN)
		if err != nil {
			return nil, err
		}
		logger.Info("Connected to index backend", zap.String("backend", cfg.Backend))
		return &Backend{Index: repo, Pinger: repo, close: repo.Close}, nil

	default:
		return nil, fmt.Errorf("unknown index backend %q", cfg.Backend)
	}
}

func openStore(cfg config.IndexConfig) (db.Store, error) {
	base, err := dbRedis.NewStore(dbRedis.Config{Addrs: cfg.Addrs, Password: cfg.Password})
	if err != nil {
		return nil, err
	}
	return dialect(cfg.Backend, base), nil
}

// dialect picks the FT dialect: valkey-search lacks bare "*" queries, SORTBY and aliases.
func dialect(backend string, base *dbRedis.Store) db.Store {
	if backend == config.BackendValkey {
		return dbValkey.New(base)
	}
	return base
}
