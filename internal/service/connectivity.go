package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"datadog_lighthouse/internal/device"
	"datadog_lighthouse/internal/logger"
	"datadog_lighthouse/internal/metrics"
	"datadog_lighthouse/internal/models"
	"datadog_lighthouse/internal/repository"
)

const (
	DefaultConnectTimeout = 15 * time.Second
	DefaultConnectTick    = 100 * time.Millisecond
	DefaultPollInterval   = 30 * time.Second
)

// ConnectivityService drives Idle -> Connecting -> Connected | Failed -> Provisioning.
//
// It is Activity A: Step runs on one goroutine and is the only writer of the
// connection state, the credentials on timeout, the boot counter on success and,
// outside Connected, the device status. Inside Connected the poller writes the
// status instead. Timeouts are deadline comparisons made at each Step.
type ConnectivityService struct {
	creds     repository.CredentialStore
	guard     BootGuard
	eventRepo repository.EventRepo
	link      device.Link
	poller    Poller
	portal    Portal
	status    *StatusCell
	log       *logger.Logger

	timeout      time.Duration
	tick         time.Duration
	pollInterval time.Duration

	notify chan struct{}

	mu       sync.RWMutex
	state    models.ConnectionState
	nextPoll time.Time
}

func NewConnectivityService(
	creds repository.CredentialStore,
	guard BootGuard,
	eventRepo repository.EventRepo,
	link device.Link,
	poller Poller,
	portal Portal,
	status *StatusCell,
	opts Options,
	log *logger.Logger,
) *ConnectivityService {
	if portal == nil {
		portal = nopPortal{}
	}
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = DefaultConnectTimeout
	}
	if opts.ConnectTick <= 0 {
		opts.ConnectTick = DefaultConnectTick
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	return &ConnectivityService{
		creds:        creds,
		guard:        guard,
		eventRepo:    eventRepo,
		link:         link,
		poller:       poller,
		portal:       portal,
		status:       status,
		log:          log.Component("connectivity"),
		timeout:      opts.ConnectTimeout,
		tick:         opts.ConnectTick,
		pollInterval: opts.PollInterval,
		notify:       make(chan struct{}, 1),
		state:        models.ConnectionState{Phase: models.PhaseIdle},
	}
}

// Boot leaves Idle: Connecting when credentials are stored, Provisioning otherwise.
// An unreadable credential record counts as absent.
func (c *ConnectivityService) Boot(ctx context.Context, now time.Time) {
	if c.Snapshot().Phase != models.PhaseIdle {
		return
	}
	creds, ok := c.loadCredentials(ctx)
	if !ok {
		c.enterProvisioning(ctx, now, "no stored credentials")
		return
	}
	c.enterConnecting(ctx, now, creds)
}

// Step advances the state machine to now.
func (c *ConnectivityService) Step(ctx context.Context, now time.Time) {
	st := c.Snapshot()

	switch st.Phase {
	case models.PhaseProvisioning:
		if !c.takeNotification() {
			return
		}
		creds, ok := c.loadCredentials(ctx)
		if !ok {
			return
		}
		c.enterConnecting(ctx, now, creds)

	case models.PhaseConnecting:
		c.drainNotification()
		if c.link != nil && c.link.Linked() {
			c.enterConnected(ctx, now)
			return
		}
		if !now.Before(st.Deadline) {
			c.fail(ctx, now, st)
		}

	case models.PhaseConnected:
		c.drainNotification()
		c.mu.RLock()
		due := !now.Before(c.nextPoll)
		c.mu.RUnlock()
		if !due || c.poller == nil {
			return
		}
		c.mu.Lock()
		c.nextPoll = now.Add(c.pollInterval)
		c.mu.Unlock()
		c.poller.Tick(ctx, now)
	}
}

// Run steps the state machine every tick until ctx is canceled.
func (c *ConnectivityService) Run(ctx context.Context) {
	t := time.NewTicker(c.tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			c.Step(ctx, now)
		}
	}
}

// NotifyCredentials signals that new credentials were saved. It never blocks.
func (c *ConnectivityService) NotifyCredentials() {
	select {
	case c.notify <- struct{}{}:
	default:
	}
}

// Snapshot returns a copy of the current state.
func (c *ConnectivityService) Snapshot() models.ConnectionState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

func (c *ConnectivityService) enterConnecting(ctx context.Context, now time.Time, creds models.Credentials) {
	if c.link != nil {
		if err := c.link.Begin(creds); err != nil {
			// the deadline still applies
			c.log.Warnw("link_begin_failed", "network_id", creds.NetworkID, "error", err)
		}
	}
	c.transition(ctx, now, models.ConnectionState{
		Phase:     models.PhaseConnecting,
		NetworkID: creds.NetworkID,
		StartedAt: now.UTC(),
		Deadline:  now.Add(c.timeout).UTC(),
	}, "connection attempt started")
}

func (c *ConnectivityService) enterConnected(ctx context.Context, now time.Time) {
	st := c.Snapshot()
	if c.guard != nil {
		if err := c.guard.Reset(ctx); err != nil {
			c.log.Errorw("boot_counter_reset_failed", "error", err)
		}
	}
	if err := c.portal.Stop(ctx); err != nil {
		c.log.Warnw("portal_stop_failed", "error", err)
	}

	c.mu.Lock()
	c.nextPoll = now
	c.mu.Unlock()

	c.status.Store(models.StatusUnknown)
	c.transition(ctx, now, models.ConnectionState{
		Phase:     models.PhaseConnected,
		NetworkID: st.NetworkID,
	}, fmt.Sprintf("linked after %s", now.Sub(st.StartedAt).Round(time.Millisecond)))
}

// fail is the destructive fallback: the credentials that did not link are
// deleted and the user has to submit them again.
func (c *ConnectivityService) fail(ctx context.Context, now time.Time, st models.ConnectionState) {
	c.transition(ctx, now, models.ConnectionState{
		Phase:     models.PhaseFailed,
		NetworkID: st.NetworkID,
	}, fmt.Sprintf("no link within %s", c.timeout))

	if err := c.creds.Clear(ctx); err != nil {
		c.log.Errorw("credentials_clear_failed", "error", err)
	}
	c.enterProvisioning(ctx, now, "connection attempt timed out")
}

func (c *ConnectivityService) enterProvisioning(ctx context.Context, now time.Time, reason string) {
	if err := c.portal.Start(); err != nil {
		c.log.Errorw("portal_start_failed", "error", err)
	}
	c.drainNotification()
	c.status.Store(models.StatusProvisioning)
	c.transition(ctx, now, models.ConnectionState{Phase: models.PhaseProvisioning}, reason)
}

func (c *ConnectivityService) transition(ctx context.Context, now time.Time, next models.ConnectionState, reason string) {
	next.Since = now.UTC()

	c.mu.Lock()
	prev := c.state.Phase
	c.state = next
	c.mu.Unlock()

	metrics.ObserveTransition(next.Phase)
	c.log.Infow("state_transition", "from", prev, "to", next.Phase, "network_id", next.NetworkID, "reason", reason)
	appendEvent(ctx, c.eventRepo, c.log, now, models.EventStateChange,
		fmt.Sprintf("%s -> %s: %s", prev, next.Phase, reason),
		map[string]any{"from": string(prev), "to": string(next.Phase)})
}

func (c *ConnectivityService) loadCredentials(ctx context.Context) (models.Credentials, bool) {
	creds, ok, err := c.creds.Load(ctx)
	if err != nil {
		c.log.Warnw("credentials_unreadable", "error", err)
		return models.Credentials{}, false
	}
	return creds, ok
}

func (c *ConnectivityService) takeNotification() bool {
	select {
	case <-c.notify:
		return true
	default:
		return false
	}
}

func (c *ConnectivityService) drainNotification() {
	c.takeNotification()
}

type nopPortal struct{}

func (nopPortal) Start() error { return nil }

func (nopPortal) Stop(ctx context.Context) error { return nil }
