package service

import (
	"context"
	"sync"

	"datadog_lighthouse/internal/models"
)

// memCredStore is an in-memory repository.CredentialStore.
type memCredStore struct {
	mu       sync.Mutex
	creds    models.Credentials
	ok       bool
	loadErr  error
	saveErr  error
	clearErr error
	saves    int
	clears   int
}

func (s *memCredStore) Load(ctx context.Context) (models.Credentials, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return models.Credentials{}, false, s.loadErr
	}
	return s.creds, s.ok, nil
}

func (s *memCredStore) Save(ctx context.Context, c models.Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	if s.saveErr != nil {
		return s.saveErr
	}
	s.creds, s.ok = c, true
	return nil
}

func (s *memCredStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clears++
	if s.clearErr != nil {
		return s.clearErr
	}
	s.creds, s.ok = models.Credentials{}, false
	return nil
}

func (s *memCredStore) present() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ok
}

// memCounter is an in-memory repository.BootCounterRepo. FactoryReset also
// clears creds when set, like the SQLite transaction does.
type memCounter struct {
	mu       sync.Mutex
	count    int
	creds    *memCredStore
	loadErr  error
	saveErr  error
	resetErr error
	resets   int
}

func (c *memCounter) Load(ctx context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count, c.loadErr
}

func (c *memCounter) Save(ctx context.Context, n int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.saveErr != nil {
		return c.saveErr
	}
	c.count = n
	return nil
}

func (c *memCounter) FactoryReset(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resets++
	if c.resetErr != nil {
		return c.resetErr
	}
	if c.creds != nil {
		_ = c.creds.Clear(ctx)
	}
	c.count = 0
	return nil
}

func (c *memCounter) value() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

// fakeLink is a device.Link whose state the test flips.
type fakeLink struct {
	mu     sync.Mutex
	linked bool
	begun  []models.Credentials
}

func (l *fakeLink) Begin(c models.Credentials) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.begun = append(l.begun, c)
	return nil
}

func (l *fakeLink) Linked() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.linked
}

func (l *fakeLink) set(v bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.linked = v
}

// fakeSource is a Source returning canned results.
type fakeSource struct {
	mu       sync.Mutex
	monitors []models.Monitor
	err      error
	calls    int
}

func (s *fakeSource) Fetch(ctx context.Context) ([]models.Monitor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.monitors, s.err
}

func (s *fakeSource) set(m []models.Monitor, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.monitors, s.err = m, err
}

// fakePortal records Start/Stop calls.
type fakePortal struct {
	mu      sync.Mutex
	starts  int
	stops   int
	running bool
}

func (p *fakePortal) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.starts++
	p.running = true
	return nil
}

func (p *fakePortal) Stop(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stops++
	p.running = false
	return nil
}

func (p *fakePortal) isRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}
