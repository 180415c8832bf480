// Package dbx bridges repositories and database/sql. DBTX lets the same
// repository code run against a plain connection or inside a transaction,
// and WithTx owns the begin/commit/rollback ceremony so services only state
// what must happen atomically.
package dbx

import (
	"context"
	"database/sql"
)

// DBTX is the query surface repositories depend on. Both *sql.DB and
// *sql.Tx provide it, so a repository never knows whether it is
// transactional; the caller decides by choosing what to bind it to.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// WithTx runs fn inside a transaction on db. The transaction commits when fn
// returns nil and rolls back when fn returns an error or panics; a panic is
// re-raised after the rollback.
//
//	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
//	    if err := repos.Spots(tx).Upsert(ctx, spot); err != nil {
//	        return err
//	    }
//	    return repos.Photos(tx).Insert(ctx, photo)
//	})
func WithTx(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn func(ctx context.Context, tx DBTX) error) error {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(ctx, tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
