package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"datadog_lighthouse/internal/models"

	"github.com/google/uuid"
)

// DefaultEventRetention is how many of the newest events Append keeps.
// At one poll every 30s this is roughly two days of history.
const DefaultEventRetention = 5000

type EventSQLite struct {
	db     *sql.DB
	retain int
}

func NewEventSQLite(db *sql.DB) *EventSQLite {
	return NewEventSQLiteRetaining(db, DefaultEventRetention)
}

// NewEventSQLiteRetaining keeps at most retain events, dropping the oldest on
// each Append. retain <= 0 disables pruning.
func NewEventSQLiteRetaining(db *sql.DB, retain int) *EventSQLite {
	return &EventSQLite{db: db, retain: retain}
}

var _ EventRepo = (*EventSQLite)(nil)

const insertEventSQL = `
		INSERT INTO device_events (id, occurred_at, type, message, meta)
		VALUES (?, ?, ?, ?, ?)
	`

const pruneEventsSQL = `
		DELETE FROM device_events WHERE id IN (
			SELECT id FROM device_events
			ORDER BY occurred_at DESC, rowid DESC
			LIMIT -1 OFFSET ?
		)
	`

// Append inserts a new event and drops the oldest rows past the retention.
// If EventID or OccurredAt are empty, they're set.
func (r *EventSQLite) Append(ctx context.Context, e models.DeviceEvent) error {
	if e.EventID == "" {
		e.EventID = uuid.NewString()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	} else {
		e.OccurredAt = e.OccurredAt.UTC()
	}

	var metaPtr *string
	if e.Metadata != nil {
		if b, err := json.Marshal(e.Metadata); err == nil {
			s := string(b)
			metaPtr = &s
		}
	}

	_, err := r.db.ExecContext(ctx, insertEventSQL,
		e.EventID,
		e.OccurredAt,
		strings.ToUpper(strings.TrimSpace(e.Type)),
		e.Description,
		metaPtr,
	)
	if err != nil {
		return fmt.Errorf("insert device event: %w", err)
	}

	if r.retain > 0 {
		if _, err := r.db.ExecContext(ctx, pruneEventsSQL, r.retain); err != nil {
			return fmt.Errorf("prune device events: %w", err)
		}
	}
	return nil
}

// List returns events filtered by [from, to] (inclusive) and/or type, ordered ASC.
// With limit > 0 only the newest limit matches are returned, still ASC.
func (r *EventSQLite) List(ctx context.Context, from, to time.Time, typ string, limit int) ([]models.DeviceEvent, error) {
	var (
		conds []string
		args  []any
	)

	if !from.IsZero() {
		conds = append(conds, "occurred_at >= ?")
		args = append(args, from.UTC())
	}
	if !to.IsZero() {
		conds = append(conds, "occurred_at <= ?")
		args = append(args, to.UTC())
	}
	if typ = strings.ToUpper(strings.TrimSpace(typ)); typ != "" {
		conds = append(conds, "type = ?")
		args = append(args, typ)
	}

	q := `SELECT id, occurred_at, type, message, meta FROM device_events`
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	if limit > 0 {
		q += " ORDER BY occurred_at DESC, rowid DESC LIMIT ?"
		args = append(args, limit)
	} else {
		q += " ORDER BY occurred_at ASC"
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query device events: %w", err)
	}
	defer rows.Close()

	out := make([]models.DeviceEvent, 0, 64)
	for rows.Next() {
		var ev models.DeviceEvent
		var metaStr sql.NullString
		if err := rows.Scan(&ev.EventID, &ev.OccurredAt, &ev.Type, &ev.Description, &metaStr); err != nil {
			return nil, fmt.Errorf("scan device event: %w", err)
		}
		ev.OccurredAt = ev.OccurredAt.UTC()

		if metaStr.Valid && metaStr.String != "" {
			var v any
			if err := json.Unmarshal([]byte(metaStr.String), &v); err == nil {
				ev.Metadata = v
			} else {
				ev.Metadata = metaStr.String // keep raw if malformed
			}
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if limit > 0 {
		slices.Reverse(out)
	}
	return out, nil
}
