package repository

import (
	"context"
	"database/sql"
	"time"

	"datadog_lighthouse/internal/models"
)

// CredentialStore persists the single network identity record.
type CredentialStore interface {
	// Load returns ok=false when no record exists (never written or cleared).
	Load(ctx context.Context) (creds models.Credentials, ok bool, err error)
	Save(ctx context.Context, c models.Credentials) error
	// Clear deletes the record; clearing an absent record is not an error.
	Clear(ctx context.Context) error
}

// BootCounterRepo persists the consecutive failed boot counter.
type BootCounterRepo interface {
	// Load returns 0 when the counter was never written.
	Load(ctx context.Context) (int, error)
	Save(ctx context.Context, count int) error
	// FactoryReset deletes the credentials and zeroes the counter in one transaction.
	FactoryReset(ctx context.Context) error
}

// EventRepo is the bounded device event log.
type EventRepo interface {
	Append(ctx context.Context, e models.DeviceEvent) error
	// List returns matches oldest first; limit > 0 keeps only the newest limit.
	List(ctx context.Context, from, to time.Time, typ string, limit int) ([]models.DeviceEvent, error)
}

type Repository struct {
	Credentials CredentialStore
	BootCounter BootCounterRepo
	EventRepo   EventRepo
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		Credentials: NewCredentialSQLite(db),
		BootCounter: NewBootCounterSQLite(db),
		EventRepo:   NewEventSQLite(db),
	}
}
