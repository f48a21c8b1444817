package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/claimsight/claimsight/internal/app"
	"github.com/claimsight/claimsight/internal/dataset"
	"github.com/claimsight/claimsight/internal/platform/cache"
	"github.com/claimsight/claimsight/internal/platform/db"
)

// backends holds the optional stores configured through the environment.
type backends struct {
	pool  *pgxpool.Pool
	redis *redis.Client
	cache *cache.Versioned
}

func openBackends(ctx context.Context, cfg *app.Config, logger *slog.Logger) (*backends, error) {
	b := &backends{}
	if cfg.PGDSN != "" {
		pool, err := db.Open(ctx, cfg.PGDSN)
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		b.pool = pool
	}
	if cfg.RedisAddr != "" {
		client, err := cache.Connect(ctx, cfg.RedisAddr)
		if err != nil {
			b.close(logger)
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		b.redis = client
		b.cache = cache.NewVersioned(client, cfg.CacheTTL)
	}
	return b, nil
}

func (b *backends) source() *dataset.PGSource {
	if b.pool == nil {
		return nil
	}
	return dataset.NewPGSource(b.pool)
}

func (b *backends) close(logger *slog.Logger) {
	if b.redis != nil {
		if err := b.redis.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}
	if b.pool != nil {
		b.pool.Close()
	}
}

// snapshotPublisher writes a document in one transaction and then bumps the
// shared cache so running servers reload.
type snapshotPublisher struct {
	pool  *pgxpool.Pool
	cache *cache.Versioned
}

func (p snapshotPublisher) Publish(ctx context.Context, name string, raw []byte) (*dataset.Store, error) {
	store, err := db.InTx(ctx, p.pool, func(tx pgx.Tx) (*dataset.Store, error) {
		src := dataset.NewPGSource(tx)
		if err := src.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		return src.Publish(ctx, name, raw)
	})
	if err != nil {
		return nil, err
	}
	if _, err := p.cache.SyncDataset(ctx, store.Checksum()); err != nil {
		return nil, fmt.Errorf("snapshot stored but cache bump failed: %w", err)
	}
	return store, nil
}
