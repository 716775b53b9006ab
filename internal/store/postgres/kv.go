package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// KVRepo is the durable key-value backend over a single `kv` table.
type KVRepo struct {
	pool *pgxpool.Pool
}

func NewKVRepo(pool *pgxpool.Pool) *KVRepo {
	return &KVRepo{pool: pool}
}

func (r *KVRepo) Get(ctx context.Context, key string) (string, bool, error) {
	var value string

	err := r.pool.QueryRow(ctx,
		`SELECT value FROM kv WHERE key = $1`,
		key,
	).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("kvRepo.Get: %w", err)
	}

	return value, true, nil
}

func (r *KVRepo) Set(ctx context.Context, key, value string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO kv (key, value, updated_at) VALUES ($1, $2, now())
		 ON CONFLICT (key) DO UPDATE SET value = $2, updated_at = now()`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("kvRepo.Set: %w", err)
	}

	return nil
}

func (r *KVRepo) Delete(ctx context.Context, key string) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM kv WHERE key = $1`,
		key,
	)
	if err != nil {
		return fmt.Errorf("kvRepo.Delete: %w", err)
	}

	return nil
}
