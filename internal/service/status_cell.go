package service

import (
	"sync/atomic"

	"datadog_lighthouse/internal/metrics"
	"datadog_lighthouse/internal/models"
)

// StatusCell holds the process-wide DeviceStatus. The renderer reads it every
// tick, so it is a single atomic word rather than a lock.
type StatusCell struct {
	v atomic.Int32
}

func NewStatusCell() *StatusCell {
	return &StatusCell{}
}

func (c *StatusCell) Load() models.DeviceStatus {
	return models.DeviceStatus(c.v.Load())
}

func (c *StatusCell) Store(s models.DeviceStatus) {
	c.v.Store(int32(s))
	metrics.SetStatus(s)
}
