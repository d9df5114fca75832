// Package health queries the remote monitor API that the strip summarizes.
package health

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"datadog_lighthouse/internal/apperrors"
	"datadog_lighthouse/internal/models"
)

const (
	// DefaultURL is the Datadog monitor listing endpoint.
	DefaultURL = "https://api.datadoghq.com/api/v1/monitor"

	// DefaultTimeout bounds one round trip.
	DefaultTimeout = 5 * time.Second

	// DefaultMaxBody bounds how much of the response is read.
	DefaultMaxBody int64 = 256 << 10

	headerAPIKey = "DD-API-KEY"
	headerAppKey = "DD-APPLICATION-KEY"
)

// ErrBodyTooLarge is returned when the response exceeds MaxBody.
var ErrBodyTooLarge = errors.New("response body exceeds limit")

// Client performs one authenticated GET per Fetch.
type Client struct {
	URL        string
	APIKey     string
	AppKey     string
	Timeout    time.Duration
	MaxBody    int64
	HTTPClient *http.Client
}

// NewClient builds a client with the default timeout and size bound.
func NewClient(url, apiKey, appKey string) *Client {
	if url == "" {
		url = DefaultURL
	}
	return &Client{
		URL:        url,
		APIKey:     apiKey,
		AppKey:     appKey,
		Timeout:    DefaultTimeout,
		MaxBody:    DefaultMaxBody,
		HTTPClient: &http.Client{},
	}
}

// monitorRecord mirrors the two fields we need; pointers detect missing keys.
type monitorRecord struct {
	Name         *string `json:"name"`
	OverallState *string `json:"overall_state"`
}

// Fetch returns the reported monitors. Network failures, timeouts and non-2xx
// replies are Transport errors; anything that is not a JSON array of
// {name, overall_state} string records is a Protocol error.
func (c *Client) Fetch(ctx context.Context) ([]models.Monitor, error) {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, http.NoBody)
	if err != nil {
		return nil, apperrors.Transport("build monitor request", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.APIKey != "" {
		req.Header.Set(headerAPIKey, c.APIKey)
	}
	if c.AppKey != "" {
		req.Header.Set(headerAppKey, c.AppKey)
	}

	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, apperrors.Transport("GET "+c.URL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apperrors.Transport("GET "+c.URL, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	body, err := readLimited(resp.Body, c.maxBody())
	if err != nil {
		if errors.Is(err, ErrBodyTooLarge) {
			return nil, apperrors.Protocol("read monitor response", err)
		}
		return nil, apperrors.Transport("read monitor response", err)
	}

	monitors, err := Decode(body)
	if err != nil {
		return nil, apperrors.Protocol("decode monitor response", err)
	}
	return monitors, nil
}

func (c *Client) maxBody() int64 {
	if c.MaxBody <= 0 {
		return DefaultMaxBody
	}
	return c.MaxBody
}

// readLimited reads at most limit bytes and fails if more are available.
func readLimited(r io.Reader, limit int64) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > limit {
		return nil, ErrBodyTooLarge
	}
	return body, nil
}

// Decode parses a monitor list strictly: top level must be an array and every
// element must carry string name and overall_state fields.
func Decode(body []byte) ([]models.Monitor, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, errors.New("expected a JSON array of monitors")
	}

	var records []monitorRecord
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("parse monitors: %w", err)
	}
	if dec.More() {
		return nil, errors.New("trailing data after monitor array")
	}

	out := make([]models.Monitor, 0, len(records))
	for i, rec := range records {
		if rec.Name == nil || rec.OverallState == nil {
			return nil, fmt.Errorf("monitor %d: missing name or overall_state", i)
		}
		out = append(out, models.Monitor{Name: *rec.Name, OverallState: *rec.OverallState})
	}
	return out, nil
}
