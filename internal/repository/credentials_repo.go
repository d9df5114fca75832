package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"datadog_lighthouse/internal/models"
)

type CredentialSQLite struct {
	db *sql.DB
}

func NewCredentialSQLite(db *sql.DB) *CredentialSQLite {
	return &CredentialSQLite{db: db}
}

var _ CredentialStore = (*CredentialSQLite)(nil)

const (
	credentialsRowID = 1

	upsertCredentialsSQL = `
		INSERT INTO credentials (id, network_id, secret, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			network_id=excluded.network_id,
			secret=excluded.secret,
			updated_at=excluded.updated_at
	`

	selectCredentialsSQL = `SELECT network_id, secret FROM credentials WHERE id=?`

	deleteCredentialsSQL = `DELETE FROM credentials WHERE id=?`
)

// Load fetches the credentials row (id=1).
func (r *CredentialSQLite) Load(ctx context.Context) (models.Credentials, bool, error) {
	var c models.Credentials
	err := r.db.QueryRowContext(ctx, selectCredentialsSQL, credentialsRowID).Scan(&c.NetworkID, &c.Secret)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Credentials{}, false, nil
		}
		return models.Credentials{}, false, fmt.Errorf("select credentials: %w", err)
	}
	return c, true, nil
}

// Save replaces the record with a single upsert, so readers see either the old
// or the new row and never a partial one.
func (r *CredentialSQLite) Save(ctx context.Context, c models.Credentials) error {
	_, err := r.db.ExecContext(ctx, upsertCredentialsSQL,
		credentialsRowID,
		c.NetworkID,
		c.Secret,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("upsert credentials: %w", err)
	}
	return nil
}

// Clear deletes the record; zero affected rows is fine.
func (r *CredentialSQLite) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, deleteCredentialsSQL, credentialsRowID); err != nil {
		return fmt.Errorf("delete credentials: %w", err)
	}
	return nil
}
