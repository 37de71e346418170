package database

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the subset of pgx operations shared by pools and transactions.
// Repositories run against whatever Querier the context carries, so the same
// repository method works standalone or inside an ambient transaction.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type contextKey string

// querierKey is the context key for storing the ambient transaction.
const querierKey contextKey = "querier"

// WithQuerier stores a Querier (usually a pgx.Tx) in the context.
func WithQuerier(ctx context.Context, q Querier) context.Context {
	return context.WithValue(ctx, querierKey, q)
}

// QuerierFrom returns the ambient Querier from the context, falling back to
// the given pool when none is set.
func QuerierFrom(ctx context.Context, fallback Querier) Querier {
	if q, ok := ctx.Value(querierKey).(Querier); ok {
		return q
	}
	return fallback
}
