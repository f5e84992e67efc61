package infrastructure

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// WithTransaction handles a database transaction and executes the given
// operation. The error return is named so the deferred commit's failure
// reaches the caller.
func WithTransaction(db *sql.DB, ctx context.Context, operation func(*sql.Tx) error) (err error) {
	tx, txErr := db.BeginTx(ctx, nil)
	if txErr != nil {
		return fmt.Errorf("failed to start transaction: %w", txErr)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p) // re-throw panic after Rollback
		} else if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				slog.Log(ctx, slog.LevelError, "rollback failed", "error", rbErr)
			}
		} else {
			err = tx.Commit()
		}
	}()

	err = operation(tx)
	return err
}
