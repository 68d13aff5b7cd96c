package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

func NewPool(ctx context.Context, databaseURL string, maxConns, minConns int32) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	cfg.MaxConns = maxConns
	cfg.MinConns = minConns

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// WatchPool calls report with the acquired and idle connection counts every
// interval until ctx is done.
func WatchPool(ctx context.Context, pool *pgxpool.Pool, interval time.Duration, report func(active, idle int32)) {
	watch(ctx, interval, func() (int32, int32) {
		st := pool.Stat()
		return st.AcquiredConns(), st.IdleConns()
	}, report)
}

func watch(ctx context.Context, interval time.Duration, stat func() (int32, int32), report func(active, idle int32)) {
	t := time.NewTicker(interval)
	defer t.Stop()
	report(stat())
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			report(stat())
		}
	}
}
