package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

// TxManager runs repository closures inside database transactions. The
// multi-statement writes (lesson+progress creation, attempt recording,
// vocabulary entry+examples) all go through it.
type TxManager struct {
	db *sql.DB
}

// NewTxManager creates a transaction manager over the given connection pool
func NewTxManager(db *sql.DB) *TxManager {
	return &TxManager{db: db}
}

// WithTx begins a transaction, runs fn, and commits. Any error from fn rolls
// the transaction back and comes back to the caller unwrapped, so sentinel
// checks like errors.Is(err, domain.ErrLessonNotFound) still work.
func (tm *TxManager) WithTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := tm.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("tx err: %v, rb err: %v", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}
