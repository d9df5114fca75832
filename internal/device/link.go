// Package device holds the hardware-facing shims: the network link and the LED strip.
//
// The shipped implementations are simulated the same way the rest of the
// device is exercised in tests; SysfsLink reads a real interface state.
package device

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"datadog_lighthouse/internal/models"
)

// Link is the point-to-point network association with an access point.
type Link interface {
	// Begin starts an association attempt with c. It must not block.
	Begin(c models.Credentials) error
	// Linked reports whether the association is currently up.
	Linked() bool
}

// SimLink associates after Delay unless the network id is in Reject.
type SimLink struct {
	Delay  time.Duration
	Reject map[string]bool

	mu        sync.Mutex
	now       func() time.Time
	network   string
	startedAt time.Time
	active    bool
	dropped   bool
}

// NewSimLink returns a simulated link using the wall clock.
func NewSimLink(delay time.Duration, reject []string) *SimLink {
	r := make(map[string]bool, len(reject))
	for _, id := range reject {
		r[id] = true
	}
	return &SimLink{Delay: delay, Reject: r, now: time.Now}
}

// WithClock replaces the clock, for tests that drive time explicitly.
func (l *SimLink) WithClock(now func() time.Time) *SimLink {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.now = now
	return l
}

func (l *SimLink) Begin(c models.Credentials) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.network = c.NetworkID
	l.startedAt = l.now()
	l.active = true
	l.dropped = false
	return nil
}

func (l *SimLink) Linked() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.active || l.dropped || l.Reject[l.network] {
		return false
	}
	return l.now().Sub(l.startedAt) >= l.Delay
}

// Drop simulates the access point going away.
func (l *SimLink) Drop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.dropped = true
}

// Restore undoes Drop, as the host's own reconnect layer would.
func (l *SimLink) Restore() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.dropped = false
}

// SysfsLink reports the operstate of a host interface. Association itself is
// left to the host network manager.
type SysfsLink struct {
	Interface string
	Root      string // /sys/class/net on a real host
}

func NewSysfsLink(iface string) *SysfsLink {
	return &SysfsLink{Interface: iface, Root: "/sys/class/net"}
}

func (l *SysfsLink) Begin(c models.Credentials) error {
	if l.Interface == "" {
		return fmt.Errorf("sysfs link: no interface configured for %q", c.NetworkID)
	}
	return nil
}

func (l *SysfsLink) Linked() bool {
	b, err := os.ReadFile(filepath.Join(l.Root, l.Interface, "operstate"))
	if err != nil {
		return false
	}
	return strings.TrimSpace(string(b)) == "up"
}
