package handlers

import (
	"context"
	"sync"
	"time"

	"datadog_lighthouse/internal/models"
	"datadog_lighthouse/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockMonitoring struct {
	state   models.DeviceState
	err     error
	frame   models.Frame
	frameOK bool
}

func (m *mockMonitoring) GetState(ctx context.Context) (models.DeviceState, error) {
	return m.state, m.err
}

func (m *mockMonitoring) GetFrame() (models.Frame, bool) {
	return m.frame, m.frameOK
}

type mockEventLog struct {
	resp      []models.DeviceEvent
	err       error
	lastFrom  time.Time
	lastTo    time.Time
	lastType  string
	lastLimit int
}

func (m *mockEventLog) List(ctx context.Context, f service.LogFilter) ([]models.DeviceEvent, error) {
	m.lastFrom = f.From
	m.lastTo = f.To
	m.lastType = f.Type
	m.lastLimit = f.Limit
	return m.resp, m.err
}

type mockProvisioning struct {
	mu    sync.Mutex
	err   error
	last  models.Credentials
	calls int
}

func (m *mockProvisioning) Submit(ctx context.Context, c models.Credentials) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.last = c
	return m.err
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func newPortalRouter(s *service.Service, rps float64, burst int) *gin.Engine {
	h := NewHandler(s, nil)
	gin.SetMode(gin.TestMode)
	return h.InitPortalRoutes(rps, burst)
}
