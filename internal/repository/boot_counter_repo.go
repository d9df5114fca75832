package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type BootCounterSQLite struct {
	db *sql.DB
}

func NewBootCounterSQLite(db *sql.DB) *BootCounterSQLite {
	return &BootCounterSQLite{db: db}
}

var _ BootCounterRepo = (*BootCounterSQLite)(nil)

const (
	bootCounterRowID = 1

	upsertBootCounterSQL = `
		INSERT INTO boot_counter (id, count, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			count=excluded.count,
			updated_at=excluded.updated_at
	`

	selectBootCounterSQL = `SELECT count FROM boot_counter WHERE id=?`
)

// Load returns the persisted counter; a missing row is a first boot (0).
func (r *BootCounterSQLite) Load(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, selectBootCounterSQL, bootCounterRowID).Scan(&n)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("select boot counter: %w", err)
	}
	return n, nil
}

func (r *BootCounterSQLite) Save(ctx context.Context, count int) error {
	if count < 0 {
		return fmt.Errorf("boot counter must be >= 0, got %d", count)
	}
	if _, err := r.db.ExecContext(ctx, upsertBootCounterSQL, bootCounterRowID, count, time.Now().UTC()); err != nil {
		return fmt.Errorf("upsert boot counter: %w", err)
	}
	return nil
}

// FactoryReset deletes the credentials and zeroes the counter atomically.
func (r *BootCounterSQLite) FactoryReset(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin factory reset: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, deleteCredentialsSQL, credentialsRowID); err != nil {
		return fmt.Errorf("factory reset: delete credentials: %w", err)
	}
	if _, err := tx.ExecContext(ctx, upsertBootCounterSQL, bootCounterRowID, 0, time.Now().UTC()); err != nil {
		return fmt.Errorf("factory reset: zero boot counter: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit factory reset: %w", err)
	}
	return nil
}
