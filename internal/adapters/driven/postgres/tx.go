package postgres

import (
	"context"
	"database/sql"

	"github.com/nexdoc-labs/nexdoc-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.TxManager = (*TxManager)(nil)

// TxManager implements driven.TxManager on a postgres connection pool.
// The opaque driven.Tx handle it hands out is a *sql.Tx; stores unwrap it
// in WithTx.
type TxManager struct {
	db *DB
}

// NewTxManager creates a new TxManager
func NewTxManager(db *DB) *TxManager {
	return &TxManager{db: db}
}

func (m *TxManager) InTx(ctx context.Context, fn func(tx driven.Tx) error) error {
	return m.db.Transaction(ctx, func(tx *sql.Tx) error {
		return fn(tx)
	})
}

// unwrap resolves the opaque handle to a querier, falling back to the pool
// when the store runs outside a unit of work
func unwrap(tx driven.Tx, db *DB) querier {
	if tx == nil {
		return db
	}
	if sqlTx, ok := tx.(*sql.Tx); ok {
		return sqlTx
	}
	return db
}
