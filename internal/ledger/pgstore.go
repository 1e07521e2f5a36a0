package ledger

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/Temm4ancki/VK-to-TG-post/migrations"
)

// PGStore persists the processed set in a PostgreSQL table. Unlike the file
// store it appends new keys instead of rewriting the whole set; the Store
// contract is the same from the ledger's point of view.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore connects, pings and applies embedded migrations.
func NewPGStore(ctx context.Context, dsn string) (*PGStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()

		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	s := &PGStore{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()

		return nil, err
	}

	return s, nil
}

func (s *PGStore) migrate(ctx context.Context) error {
	goose.SetBaseFS(migrations.FS)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	db := stdlib.OpenDBFromPool(s.pool)
	defer func() {
		_ = db.Close() //nolint:errcheck // stdlib wrapper close does not close the pool
	}()

	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}

func (s *PGStore) Load(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT key FROM processed_posts`)
	if err != nil {
		return nil, fmt.Errorf("query processed keys: %w", err)
	}

	keys, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("collect processed keys: %w", err)
	}

	return keys, nil
}

func (s *PGStore) Persist(ctx context.Context, keys []string) error {
	batch := &pgx.Batch{}
	for _, k := range keys {
		batch.Queue(`INSERT INTO processed_posts (key) VALUES ($1) ON CONFLICT (key) DO NOTHING`, k)
	}

	if err := s.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert processed keys: %w", err)
	}

	return nil
}

// Ping reports store reachability for readiness checks.
func (s *PGStore) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping postgres: %w", err)
	}

	return nil
}

func (s *PGStore) Close() {
	s.pool.Close()
}
