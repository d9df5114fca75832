package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"datadog_lighthouse/internal/apperrors"
	"datadog_lighthouse/internal/logger"
	"datadog_lighthouse/internal/metrics"
	"datadog_lighthouse/internal/models"
	"datadog_lighthouse/internal/repository"
)

// Monitor states that raise the overall level. Anything else counts as ok.
const (
	stateAlert = "alert"
	stateWarn  = "warn"
)

// Reduce folds monitor states into one status: any alert wins, then any warn,
// otherwise Ok. An empty set is Ok. Order does not matter.
func Reduce(monitors []models.Monitor) models.DeviceStatus {
	overall := models.StatusOk
	for _, m := range monitors {
		switch strings.ToLower(strings.TrimSpace(m.OverallState)) {
		case stateAlert:
			return models.StatusAlert
		case stateWarn:
			overall = models.StatusWarn
		}
	}
	return overall
}

type PollerService struct {
	source    Source
	status    *StatusCell
	eventRepo repository.EventRepo
	log       *logger.Logger

	mu       sync.RWMutex
	lastAt   time.Time
	monitors []models.Monitor
}

func NewPollerService(source Source, status *StatusCell, eventRepo repository.EventRepo, log *logger.Logger) *PollerService {
	return &PollerService{
		source:    source,
		status:    status,
		eventRepo: eventRepo,
		log:       log.Component("poller"),
	}
}

// Tick performs one query and publishes the result. Any failure, including a
// malformed body, publishes NoData. The source bounds its own round trip.
func (p *PollerService) Tick(ctx context.Context, now time.Time) models.DeviceStatus {
	if p.source == nil {
		return p.publish(ctx, now, models.StatusNoData, nil, apperrors.Transport("poll", fmt.Errorf("no health source configured")))
	}
	monitors, err := p.source.Fetch(ctx)
	if err != nil {
		return p.publish(ctx, now, models.StatusNoData, nil, err)
	}
	return p.publish(ctx, now, Reduce(monitors), monitors, nil)
}

// Last returns the time and monitor list of the most recent successful poll.
func (p *PollerService) Last() (time.Time, []models.Monitor) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastAt, append([]models.Monitor(nil), p.monitors...)
}

func (p *PollerService) publish(ctx context.Context, now time.Time, s models.DeviceStatus, monitors []models.Monitor, err error) models.DeviceStatus {
	p.status.Store(s)
	metrics.ObservePoll(s)

	meta := map[string]any{"result": s.String(), "monitors": len(monitors)}
	if err != nil {
		kind := "unknown"
		if k, ok := apperrors.KindOf(err); ok {
			kind = k.String()
		}
		meta["error"] = err.Error()
		p.log.Warnw("poll_failed", "kind", kind, "error", err)

		p.mu.Lock()
		p.monitors = nil
		p.mu.Unlock()
	} else {
		p.log.Debugw("poll", "status", s, "monitors", len(monitors))

		p.mu.Lock()
		p.lastAt = now.UTC()
		p.monitors = monitors
		p.mu.Unlock()
	}

	appendEvent(ctx, p.eventRepo, p.log, now, models.EventPoll, fmt.Sprintf("Poll result %s", s), meta)
	return s
}
