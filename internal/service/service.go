package service

import (
	"context"
	"time"

	"datadog_lighthouse/internal/device"
	"datadog_lighthouse/internal/logger"
	"datadog_lighthouse/internal/models"
	"datadog_lighthouse/internal/repository"
)

// BootGuard counts unconfirmed boots and forces a factory reset past a threshold.
type BootGuard interface {
	OnBoot(ctx context.Context) (BootAction, error)
	Reset(ctx context.Context) error
}

// Connectivity owns the connection state machine. Step is called from a single
// goroutine (Run); Snapshot and NotifyCredentials are safe from any goroutine.
type Connectivity interface {
	Boot(ctx context.Context, now time.Time)
	Step(ctx context.Context, now time.Time)
	Run(ctx context.Context)
	NotifyCredentials()
	Snapshot() models.ConnectionState
}

// Poller performs one health query and publishes the reduced status.
type Poller interface {
	Tick(ctx context.Context, now time.Time) models.DeviceStatus
	Last() (at time.Time, monitors []models.Monitor)
}

// Renderer animates the strip from the status cell.
type Renderer interface {
	Run(ctx context.Context)
	Step(now time.Time) (models.Frame, bool)
}

// Provisioning accepts credentials submitted through the portal.
type Provisioning interface {
	Submit(ctx context.Context, c models.Credentials) error
}

// Monitoring exposes read-only device state.
type Monitoring interface {
	GetState(ctx context.Context) (models.DeviceState, error)
	GetFrame() (models.Frame, bool)
}

// EventLog exposes append-only logs with filtering access.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]models.DeviceEvent, error)
}

// Source is the remote health collaborator.
type Source interface {
	Fetch(ctx context.Context) ([]models.Monitor, error)
}

// Portal is the provisioning server the state machine starts and stops.
type Portal interface {
	Start() error
	Stop(ctx context.Context) error
}

// FrameSource returns the last frame shown on the strip and the number of frames shown.
type FrameSource interface {
	Latest() (models.Frame, uint64)
}

// Options carries the timing and geometry knobs.
type Options struct {
	BootThreshold  int
	ConnectTimeout time.Duration
	ConnectTick    time.Duration
	PollInterval   time.Duration
	Pixels         int
	RenderTick     time.Duration
	FrameEvery     time.Duration
	Window         int
	DimScale       int
}

// DefaultOptions matches the shipped firmware.
func DefaultOptions() Options {
	return Options{
		BootThreshold:  DefaultBootThreshold,
		ConnectTimeout: DefaultConnectTimeout,
		ConnectTick:    DefaultConnectTick,
		PollInterval:   DefaultPollInterval,
		Pixels:         DefaultPixels,
		RenderTick:     DefaultRenderTick,
		FrameEvery:     DefaultFrameEvery,
		Window:         DefaultWindow,
		DimScale:       DefaultDim,
	}
}

// Deps are the collaborators that are not repositories.
type Deps struct {
	Link   device.Link
	Strip  device.Strip
	Frames FrameSource
	Source Source
	Portal Portal
}

// Service aggregates all sub-services.
type Service struct {
	BootGuard
	Provisioning
	Monitoring
	EventLog

	Connectivity Connectivity
	Poller       Poller
	Renderer     Renderer
	Status       *StatusCell
}

// NewService wires the repository layer and device collaborators into concrete services.
func NewService(repos *repository.Repository, deps Deps, opts Options, log *logger.Logger) *Service {
	status := NewStatusCell()

	guard := NewBootGuardService(repos.BootCounter, repos.EventRepo, opts.BootThreshold, log)
	poller := NewPollerService(deps.Source, status, repos.EventRepo, log)
	conn := NewConnectivityService(repos.Credentials, guard, repos.EventRepo, deps.Link, poller, deps.Portal, status, opts, log)

	return &Service{
		BootGuard:    guard,
		Provisioning: NewProvisioningService(repos.Credentials, repos.EventRepo, conn, log),
		Monitoring:   NewMonitoringService(conn, status, poller, repos.BootCounter, deps.Frames),
		EventLog:     NewEventLogService(repos.EventRepo),
		Connectivity: conn,
		Poller:       poller,
		Renderer:     NewRendererService(status, deps.Strip, opts, log),
		Status:       status,
	}
}
