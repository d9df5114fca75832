package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"datadog_lighthouse/internal/models"
	"datadog_lighthouse/internal/service"
)

func TestLogsHandler_ListAndValidation(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	events := []models.DeviceEvent{
		{EventID: "e1", OccurredAt: now, Type: models.EventBoot, Description: "Boot 1 of 3 before factory reset"},
		{EventID: "e2", OccurredAt: now.Add(1 * time.Second), Type: models.EventStateChange, Description: "IDLE -> CONNECTING"},
	}
	logs := &mockEventLog{resp: events}
	r := newTestRouter(&service.Service{EventLog: logs})

	// invalid 'from' → 400
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/logs/?from=notatime", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 invalid 'from', got %d", w.Code)
	}

	// Valid range and type (lowercase type should be normalized to upper in service call)
	w = httptest.NewRecorder()
	q := "/api/v1/logs/?from=" + now.Format(time.RFC3339) + "&to=" + now.Add(2*time.Second).Format(time.RFC3339) + "&type=state_change"
	req = httptest.NewRequest(http.MethodGet, q, nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("logs status=%d, body=%s", w.Code, w.Body.String())
	}
	var out struct {
		Count  int                  `json:"count"`
		Events []models.DeviceEvent `json:"events"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	if out.Count != 2 || len(out.Events) != 2 {
		t.Fatalf("unexpected response: %+v", out)
	}
	if logs.lastType != models.EventStateChange {
		t.Fatalf("expected lastType STATE_CHANGE, got %q", logs.lastType)
	}
	if !logs.lastFrom.Equal(now) {
		t.Fatalf("lastFrom=%v; want %v", logs.lastFrom, now)
	}
}

func TestLogsHandler_DateOnlyToIsEndOfDay(t *testing.T) {
	logs := &mockEventLog{}
	r := newTestRouter(&service.Service{EventLog: logs})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/logs/?from=2025-08-01&to=2025-08-01", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	wantTo := time.Date(2025, 8, 1, 23, 59, 59, 999999999, time.UTC)
	if !logs.lastTo.Equal(wantTo) {
		t.Fatalf("lastTo=%v; want %v", logs.lastTo, wantTo)
	}
}

func TestLogsHandler_RangeAndServiceErrors(t *testing.T) {
	logs := &mockEventLog{}
	r := newTestRouter(&service.Service{EventLog: logs})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/logs/?from=2025-08-02&to=2025-08-01", nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("from>to: status=%d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/logs/?to=yesterday", nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad to: status=%d", w.Code)
	}

	logs.err = errors.New("db down")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/logs/", nil))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("service error: status=%d", w.Code)
	}
}

func TestLogsHandler_PathWithoutTrailingSlash(t *testing.T) {
	logs := &mockEventLog{}
	r := newTestRouter(&service.Service{EventLog: logs})

	for _, path := range []string{"/api/v1/logs", "/api/v1/logs/"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path+"?type=poll", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("%s: status=%d; want 200", path, w.Code)
		}
	}
}

func TestLogsHandler_Limit(t *testing.T) {
	logs := &mockEventLog{}
	r := newTestRouter(&service.Service{EventLog: logs})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/logs?limit=50", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if logs.lastLimit != 50 {
		t.Fatalf("lastLimit=%d; want 50", logs.lastLimit)
	}

	// absent limit leaves the default to the service
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/logs", nil))
	if w.Code != http.StatusOK || logs.lastLimit != 0 {
		t.Fatalf("status=%d lastLimit=%d; want 200 and 0", w.Code, logs.lastLimit)
	}

	for _, bad := range []string{"0", "-3", "ten"} {
		w = httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/logs?limit="+bad, nil))
		if w.Code != http.StatusBadRequest {
			t.Fatalf("limit=%s: status=%d; want 400", bad, w.Code)
		}
	}
}

func TestParseQueryTime(t *testing.T) {
	cases := []struct {
		in   string
		want time.Time
	}{
		{"2025-08-27T15:04:05Z", time.Date(2025, 8, 27, 15, 4, 5, 0, time.UTC)},
		{"2025-08-27T18:04:05+03:00", time.Date(2025, 8, 27, 15, 4, 5, 0, time.UTC)},
		{"2025-08-27 15:04:05", time.Date(2025, 8, 27, 15, 4, 5, 0, time.UTC)},
		{"2025-08-27", time.Date(2025, 8, 27, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		got, err := parseQueryTime(tc.in)
		if err != nil || !got.Equal(tc.want) {
			t.Fatalf("parseQueryTime(%q)=%v,%v; want %v", tc.in, got, err, tc.want)
		}
	}
	if _, err := parseQueryTime("27/08/2025"); err == nil {
		t.Fatalf("expected error for unsupported layout")
	}
}
