package store

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// defaultConnectTimeout bounds the initial database connection attempt so a
// slow or absent database cannot stall startup.
const defaultConnectTimeout = 10 * time.Second

// Connect opens the durable store at dsn, running migrations on success.
// When dsn is empty or the database cannot be reached within timeout, it
// degrades to a fresh [MemStore] and logs the downgrade; the returned value
// satisfies the same contract either way, so callers never branch on the
// backend.
func Connect(ctx context.Context, dsn string, timeout time.Duration) Store {
	if dsn == "" {
		slog.Info("no database configured, using in-memory store")
		return NewMemStore()
	}
	if timeout <= 0 {
		timeout = defaultConnectTimeout
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	pool, err := pgxpool.New(connectCtx, dsn)
	if err != nil {
		slog.Warn("database unavailable, degrading to in-memory store", "err", err)
		return NewMemStore()
	}

	pg := NewPostgresStore(pool)
	if err := pg.Ping(connectCtx); err != nil {
		pool.Close()
		slog.Warn("database unreachable, degrading to in-memory store", "err", err)
		return NewMemStore()
	}
	if err := pg.Migrate(connectCtx); err != nil {
		pool.Close()
		slog.Warn("database migration failed, degrading to in-memory store", "err", err)
		return NewMemStore()
	}

	slog.Info("connected to postgres store")
	return pg
}
