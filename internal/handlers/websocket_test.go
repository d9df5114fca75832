package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"datadog_lighthouse/internal/models"
	"datadog_lighthouse/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// --- parseInterval unit tests ---

func TestParseInterval(t *testing.T) {
	h := NewHandler(&service.Service{}, nil)

	cases := []struct {
		name string
		u    string
		want time.Duration
	}{
		{"default_when_missing", "/ws", 100 * time.Millisecond},
		{"interval_string_valid", "/ws?interval=200ms", 200 * time.Millisecond},
		{"interval_ms_valid", "/ws?interval_ms=150", 150 * time.Millisecond},
		{"interval_too_large", "/ws?interval=20s", 100 * time.Millisecond},
		{"interval_too_small", "/ws?interval=1ms", 100 * time.Millisecond},
		{"interval_ms_too_large", "/ws?interval_ms=20000", 100 * time.Millisecond},
		{"interval_invalid_string", "/ws?interval=bogus", 100 * time.Millisecond},
		{"interval_ms_invalid", "/ws?interval_ms=NaN", 100 * time.Millisecond},
		{"both_present_interval_wins", "/ws?interval=2s&interval_ms=150", 2 * time.Second},
		{"both_present_invalid_interval_ms_used", "/ws?interval=bogus&interval_ms=250", 250 * time.Millisecond},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, tc.u, nil)
			c, _ := gin.CreateTestContext(w)
			c.Request = req
			got := h.parseInterval(c)
			if got != tc.want {
				t.Fatalf("got %v, want %v for %s", got, tc.want, tc.u)
			}
		})
	}
}

// --- websocket integration tests ---

func dialFrames(t *testing.T, s *service.Service, query string) *websocket.Conn {
	t.Helper()

	r := gin.New()
	h := NewHandler(s, nil)
	r.GET("/ws", h.wsConnect)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	u, _ := url.Parse(srv.URL)
	u.Scheme = "ws"
	u.Path = "/ws"
	u.RawQuery = query

	dialer := websocket.Dialer{HandshakeTimeout: 2 * time.Second}
	conn, _, err := dialer.Dial(u.String(), nil)
	if err != nil {
		t.Fatalf("dial error: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

type envelope struct {
	Type  string          `json:"type"`
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error"`
}

func TestWebSocket_FrameStream_InitialAndPeriodic(t *testing.T) {
	mon := &mockMonitoring{
		frame:   service.RenderFrame(models.StatusWarn, 5, 16),
		frameOK: true,
	}
	conn := dialFrames(t, &service.Service{Monitoring: mon}, "interval_ms=20")

	// Read initial frame
	_ = conn.SetReadDeadline(time.Now().Add(1 * time.Second))
	var env envelope
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("read initial: %v", err)
	}
	if env.Type != "frame" || len(env.Data) == 0 {
		t.Fatalf("bad envelope: %+v", env)
	}
	var f models.Frame
	if err := json.Unmarshal(env.Data, &f); err != nil {
		t.Fatalf("unmarshal frame: %v", err)
	}
	if f.Status != models.StatusWarn || f.Offset != 5 || len(f.Pixels) != 16 {
		t.Fatalf("unexpected frame: %+v", f)
	}
	if f.Pixels[5] != (models.Color{R: 255, G: 165, B: 0}) {
		t.Fatalf("head pixel=%v", f.Pixels[5])
	}

	// Read a subsequent tick
	_ = conn.SetReadDeadline(time.Now().Add(1 * time.Second))
	env = envelope{}
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("read second: %v", err)
	}
	if env.Type != "frame" {
		t.Fatalf("expected type=frame, got %+v", env)
	}
}

func TestWebSocket_WaitingBeforeFirstFrame(t *testing.T) {
	conn := dialFrames(t, &service.Service{Monitoring: &mockMonitoring{}}, "")

	_ = conn.SetReadDeadline(time.Now().Add(1 * time.Second))
	var env envelope
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("read: %v", err)
	}
	if env.Type != "waiting" || env.Error == "" || len(env.Data) != 0 {
		t.Fatalf("unexpected envelope: %+v", env)
	}
}
