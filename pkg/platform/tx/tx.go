// Package tx carries a database transaction through context so that every
// store a unit of work touches joins the same transaction. Relationship
// creation writes the relationship and its audit entry this way; either both
// land or neither does.
package tx

import (
	"context"
	"database/sql"
)

type ctxKey struct{}

var txKey = ctxKey{}

// DB is the query surface the postgres stores run against. Both *sql.DB and
// *sql.Tx satisfy it.
type DB interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// WithTx attaches tx to the context. A nil tx leaves the context untouched.
func WithTx(ctx context.Context, tx *sql.Tx) context.Context {
	if tx == nil {
		return ctx
	}
	return context.WithValue(ctx, txKey, tx)
}

// From reports the transaction riding the context, if any.
func From(ctx context.Context) (*sql.Tx, bool) {
	tx, ok := ctx.Value(txKey).(*sql.Tx)
	return tx, ok
}

// Active resolves what a store should query against: the context's
// transaction when one is riding it, the bare connection otherwise.
func Active(ctx context.Context, db *sql.DB) DB {
	if tx, ok := From(ctx); ok {
		return tx
	}
	return db
}
