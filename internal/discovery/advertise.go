// Package discovery announces the provisioning portal on the local network so
// a phone on the same segment can find it without knowing the device address.
package discovery

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/grandcat/zeroconf"
)

const (
	// ServiceType is the mDNS service type the portal registers under.
	ServiceType = "_http._tcp"

	// ServiceDomain is the mDNS domain.
	ServiceDomain = "local."

	// DefaultInstance is the advertised instance name.
	DefaultInstance = "lighthouse-setup"
)

// registerFunc matches zeroconf.Register so tests can avoid real multicast.
type registerFunc func(instance, service, domain string, port int, text []string) (shutdowner, error)

type shutdowner interface {
	Shutdown()
}

// Advertiser registers and withdraws one mDNS record.
type Advertiser struct {
	Instance string
	register registerFunc

	mu     sync.Mutex
	server shutdowner
}

// NewAdvertiser returns an advertiser backed by zeroconf.
func NewAdvertiser(instance string) *Advertiser {
	if instance == "" {
		instance = DefaultInstance
	}
	return &Advertiser{
		Instance: instance,
		register: func(instance, service, domain string, port int, text []string) (shutdowner, error) {
			return zeroconf.Register(instance, service, domain, port, text, nil)
		},
	}
}

// Advertise publishes the portal port. Calling it while already advertising is a no-op.
func (a *Advertiser) Advertise(port string) error {
	p, err := strconv.Atoi(port)
	if err != nil || p <= 0 || p > 65535 {
		return fmt.Errorf("invalid portal port %q", port)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.server != nil {
		return nil
	}
	srv, err := a.register(a.Instance, ServiceType, ServiceDomain, p, []string{"path=/", "role=provisioning"})
	if err != nil {
		return fmt.Errorf("register mDNS service: %w", err)
	}
	a.server = srv
	return nil
}

// Withdraw stops advertising. Safe to call when not advertising.
func (a *Advertiser) Withdraw() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.server != nil {
		a.server.Shutdown()
		a.server = nil
	}
}
