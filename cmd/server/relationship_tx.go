package main

import (
	"context"
	"database/sql"
	"time"

	dErrors "chamber/pkg/domain-errors"
	txcontext "chamber/pkg/platform/tx"
)

const defaultRelationshipTxTimeout = 5 * time.Second

// relationshipPostgresTx runs relationship creation and termination inside a
// real database transaction. The transaction rides the context, so every
// store touched by the callback joins the same unit of work.
type relationshipPostgresTx struct {
	db      *sql.DB
	timeout time.Duration
}

func newRelationshipPostgresTx(db *sql.DB) *relationshipPostgresTx {
	return &relationshipPostgresTx{db: db}
}

func (t *relationshipPostgresTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	timeout := t.timeout
	if timeout == 0 {
		timeout = defaultRelationshipTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(txcontext.WithTx(ctx, tx)); err != nil {
		return err
	}

	return tx.Commit()
}
