package service

import (
	"context"
	"time"

	"datadog_lighthouse/internal/apperrors"
	"datadog_lighthouse/internal/models"
	"datadog_lighthouse/internal/repository"
)

type MonitoringService struct {
	conn    Connectivity
	status  *StatusCell
	poller  Poller
	counter repository.BootCounterRepo
	frames  FrameSource
}

func NewMonitoringService(conn Connectivity, status *StatusCell, poller Poller, counter repository.BootCounterRepo, frames FrameSource) *MonitoringService {
	return &MonitoringService{conn: conn, status: status, poller: poller, counter: counter, frames: frames}
}

// GetState assembles the live snapshot. Times are UTC; zero times are omitted.
func (s *MonitoringService) GetState(ctx context.Context) (models.DeviceState, error) {
	st := s.status.Load()
	out := models.DeviceState{
		Status: st,
		Color:  ColorFor(st).Hex(),
	}
	if s.conn != nil {
		out.Connection = s.conn.Snapshot()
	}
	if s.poller != nil {
		at, monitors := s.poller.Last()
		out.LastPollAt = toUTC(at)
		out.Monitors = monitors
	}
	if s.counter != nil {
		n, err := s.counter.Load(ctx)
		if err != nil {
			return models.DeviceState{}, apperrors.Store("load boot counter", err)
		}
		out.BootCount = n
	}
	return out, nil
}

// GetFrame returns the last frame shown on the strip; ok is false before the first frame.
func (s *MonitoringService) GetFrame() (models.Frame, bool) {
	if s.frames == nil {
		return models.Frame{}, false
	}
	f, shown := s.frames.Latest()
	return f, shown > 0
}

// toUTC normalizes non-zero time to UTC, preserving zero values.
func toUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}
