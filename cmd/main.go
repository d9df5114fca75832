// Lighthouse shows the aggregate health of Datadog monitors on an LED strip
// and provisions its own network credentials when it has none.
//
// Usage:
//
//	lighthouse [run] [--config configs/config.yml]
//	lighthouse reset
//	lighthouse version
//
//	@title			Lighthouse device API
//	@version		1.0
//	@description	Read-only device state, LED frames and the event log of a Datadog status light.
//	@BasePath		/
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"datadog_lighthouse/internal/config"
	"datadog_lighthouse/internal/device"
	"datadog_lighthouse/internal/discovery"
	"datadog_lighthouse/internal/handlers"
	"datadog_lighthouse/internal/health"
	"datadog_lighthouse/internal/logger"
	"datadog_lighthouse/internal/repository"
	"datadog_lighthouse/internal/repository/db"
	"datadog_lighthouse/internal/server"
	"datadog_lighthouse/internal/service"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// runDevice boots the device and blocks until SIGINT or SIGTERM.
func runDevice(cfg *config.Config) error {
	log := logger.Get(cfg.Log.Level)

	sqlDB, err := openDB(cfg, log)
	if err != nil {
		return fmt.Errorf("init sqlite: %w", err)
	}
	defer func() {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	// wire dependencies
	repos := repository.NewRepository(sqlDB)

	memStrip := device.NewMemoryStrip()
	var strip device.Strip = memStrip
	if cfg.Strip.Console {
		strip = device.MultiStrip{memStrip, device.NewConsoleStrip(os.Stdout)}
	}

	client := health.NewClient(cfg.Poller.URL, cfg.Poller.APIKey, cfg.Poller.AppKey)
	client.Timeout = cfg.Poller.Timeout
	client.MaxBody = cfg.Poller.MaxBody

	var adv server.Advertiser
	if cfg.Portal.MDNS {
		adv = discovery.NewAdvertiser(discovery.DefaultInstance)
	}
	portal := server.NewPortal(cfg.Portal.Port, adv, log)

	services := service.NewService(repos, service.Deps{
		Link:   newLink(cfg),
		Strip:  strip,
		Frames: memStrip,
		Source: client,
		Portal: portal,
	}, serviceOptions(cfg), log)

	h := handlers.NewHandler(services, log)
	portal.SetHandler(h.InitPortalRoutes(cfg.Portal.RatePerSec, cfg.Portal.Burst))

	// context for the two device loops
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// the renderer starts first so the strip animates during boot
	go services.Renderer.Run(ctx)

	act, err := services.BootGuard.OnBoot(ctx)
	if err != nil {
		log.Errorw("boot guard", "err", err)
	}
	log.Infow("boot", "action", act.Kind, "count", act.Count)

	services.Connectivity.Boot(ctx, time.Now())
	go services.Connectivity.Run(ctx)

	srv := &server.Server{}
	runHTTPServer(srv, cfg.HTTP.Port, h, log)

	waitForShutdown(cancel, srv, portal, log)
	return nil
}

// resetDevice performs the same factory reset the boot-loop guard uses.
func resetDevice(cfg *config.Config) error {
	log := logger.Get(cfg.Log.Level)

	sqlDB, err := openDB(cfg, log)
	if err != nil {
		return fmt.Errorf("init sqlite: %w", err)
	}
	defer func() { _ = sqlDB.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := repository.NewRepository(sqlDB).BootCounter.FactoryReset(ctx); err != nil {
		return fmt.Errorf("factory reset: %w", err)
	}
	log.Infow("factory reset complete", "db", cfg.DB.Path)
	return nil
}

func serviceOptions(cfg *config.Config) service.Options {
	return service.Options{
		BootThreshold:  cfg.BootGuard.Threshold,
		ConnectTimeout: cfg.Connect.Timeout,
		ConnectTick:    cfg.Connect.Tick,
		PollInterval:   cfg.Poller.Interval,
		Pixels:         cfg.Strip.Pixels,
		RenderTick:     cfg.Renderer.Tick,
		FrameEvery:     cfg.Renderer.Frame,
		Window:         cfg.Renderer.Window,
		DimScale:       cfg.Renderer.Dim,
	}
}

func newLink(cfg *config.Config) device.Link {
	if cfg.Link.Mode == "sysfs" {
		return device.NewSysfsLink(cfg.Link.Interface)
	}
	return device.NewSimLink(cfg.Link.SimDelay, cfg.Link.SimReject)
}

// openDB initializes the SQLite database using configuration.
func openDB(cfg *config.Config, log *logger.Logger) (*sql.DB, error) {
	dbPath := cfg.DB.Path
	if dbPath == "" {
		log.Infow("db.path not set in config; using default file", "default", "lighthouse.db")
		dbPath = "lighthouse.db"
	}
	return db.InitDB(dbPath)
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if port == "" {
			port = "8080"
		}
		if err := srv.Run(port, handler.InitRoutes()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, portal *server.Portal, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down...")

	// stop the device loops
	cancel()

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := portal.Stop(ctx); err != nil {
		log.Errorw("portal forced to shutdown", "err", err)
	}
	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}
}
