package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/printhart/printhart/internal/shared"
)

// WithTx executes a function within a transaction using the RepeatableRead
// isolation level. Begin and commit failures surface as ErrStoreUnavailable
// so callers can distinguish an unreachable store from a domain rejection.
func WithTx(ctx context.Context, pool *pgxpool.Pool, fn func(pgx.Tx) error) error {
	tx, err := pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return fmt.Errorf("platform/db: begin tx: %w: %v", shared.ErrStoreUnavailable, err)
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("platform/db: commit tx: %w: %v", shared.ErrStoreUnavailable, err)
	}

	return nil
}
