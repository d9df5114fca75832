package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"

	"datadog_lighthouse/internal/logger"
)

// Advertiser announces the portal on the local network.
type Advertiser interface {
	Advertise(port string) error
	Withdraw()
}

// Portal is the provisioning server. Unlike Server it is started and stopped
// repeatedly by the connectivity state machine, so Start returns once the
// listener is bound and serving continues in the background.
type Portal struct {
	port    string
	handler http.Handler
	adv     Advertiser
	log     *logger.Logger

	mu   sync.Mutex
	srv  *http.Server
	addr net.Addr
	done chan struct{}
}

// NewPortal returns a stopped portal. adv may be nil.
func NewPortal(port string, adv Advertiser, log *logger.Logger) *Portal {
	return &Portal{port: port, adv: adv, log: log.Component("portal")}
}

// SetHandler installs the router. It must be called before the first Start.
func (p *Portal) SetHandler(h http.Handler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handler = h
}

// Start binds the portal port and begins serving. Starting a running portal is a no-op.
func (p *Portal) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.srv != nil {
		return nil
	}
	if p.handler == nil {
		return errors.New("portal: no handler installed")
	}

	ln, err := net.Listen("tcp", normalizeAddr(p.port))
	if err != nil {
		return fmt.Errorf("portal listen: %w", err)
	}
	srv := newHTTPServer(ln.Addr().String(), p.handler)
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			p.log.Errorw("portal_serve_failed", "error", err)
		}
	}()

	p.srv, p.addr, p.done = srv, ln.Addr(), done
	p.log.Infow("portal_started", "addr", ln.Addr().String())

	if p.adv != nil {
		port := strconv.Itoa(ln.Addr().(*net.TCPAddr).Port)
		if err := p.adv.Advertise(port); err != nil {
			// the portal stays reachable by address
			p.log.Warnw("portal_advertise_failed", "error", err)
		}
	}
	return nil
}

// Stop shuts the portal down and withdraws the advertisement. Stopping a
// stopped portal is a no-op.
func (p *Portal) Stop(ctx context.Context) error {
	p.mu.Lock()
	srv, done := p.srv, p.done
	p.srv, p.addr, p.done = nil, nil, nil
	p.mu.Unlock()

	if srv == nil {
		return nil
	}
	if p.adv != nil {
		p.adv.Withdraw()
	}
	err := srv.Shutdown(ctx)
	<-done
	p.log.Infow("portal_stopped")
	return err
}

// Addr returns the bound address while running, nil otherwise.
func (p *Portal) Addr() net.Addr {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.addr
}

// Running reports whether the portal is serving.
func (p *Portal) Running() bool {
	return p.Addr() != nil
}
