package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"datadog_lighthouse/internal/logger"
	"datadog_lighthouse/internal/models"
	"datadog_lighthouse/internal/repository"

	"github.com/google/uuid"
)

// LogFilter narrows an event log query.
type LogFilter struct {
	From time.Time // inclusive; zero means no lower bound
	To   time.Time // inclusive; zero means no upper bound
	Type string    // "", "BOOT", "FACTORY_RESET", "STATE_CHANGE", "PROVISIONED", "POLL"
	// Limit keeps only the newest matches; <= 0 means DefaultLogLimit.
	Limit int
}

const (
	DefaultLogLimit = 200
	MaxLogLimit     = 1000
)

type EventLogService struct {
	eventRepo repository.EventRepo
}

func NewEventLogService(eventRepo repository.EventRepo) *EventLogService {
	return &EventLogService{eventRepo: eventRepo}
}

var (
	errInvalidTimeRange = errors.New("invalid time range: From must be <= To")
)

// normalizeToUTC returns t in UTC, preserving zero time values.
func normalizeToUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}

// normalizeEventType trims spaces and uppercases the event type filter.
func normalizeEventType(s string) string {
	return strings.TrimSpace(strings.ToUpper(s))
}

// normalizeAndValidateFilter prepares query parameters and validates the time range.
func normalizeAndValidateFilter(f LogFilter) (time.Time, time.Time, string, error) {
	from := normalizeToUTC(f.From)
	to := normalizeToUTC(f.To)

	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return time.Time{}, time.Time{}, "", errInvalidTimeRange
	}

	eventType := normalizeEventType(f.Type)
	return from, to, eventType, nil
}

// normalizeLimit clamps the page size to (0, MaxLogLimit].
func normalizeLimit(n int) int {
	switch {
	case n <= 0:
		return DefaultLogLimit
	case n > MaxLogLimit:
		return MaxLogLimit
	}
	return n
}

func (s *EventLogService) List(ctx context.Context, f LogFilter) ([]models.DeviceEvent, error) {
	from, to, typ, err := normalizeAndValidateFilter(f)
	if err != nil {
		return nil, err
	}
	return s.eventRepo.List(ctx, from, to, typ, normalizeLimit(f.Limit))
}

// appendEvent records a device event. A failed append is logged and never
// changes the caller's outcome.
func appendEvent(ctx context.Context, repo repository.EventRepo, log *logger.Logger, at time.Time, typ, desc string, meta map[string]any) {
	if repo == nil {
		return
	}
	err := repo.Append(ctx, models.DeviceEvent{
		EventID:     uuid.NewString(),
		OccurredAt:  at.UTC(),
		Type:        typ,
		Description: desc,
		Metadata:    meta,
	})
	if err != nil && log != nil {
		log.Debugw("event_append_failed", "type", typ, "error", err)
	}
}
