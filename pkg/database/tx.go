package database

import (
	"context"
	"fmt"
)

// TxRunner runs a function inside a database transaction. Services depend on
// this interface rather than on *DB so unit tests can substitute a pass-through.
type TxRunner interface {
	// WithTx begins a transaction, stores it in the context as the ambient
	// Querier, and commits if fn returns nil. Any error rolls everything back.
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

var _ TxRunner = (*DB)(nil)

// WithTx implements TxRunner on the connection pool.
func (db *DB) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback on defer is best-effort

	if err := fn(WithQuerier(ctx, tx)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
