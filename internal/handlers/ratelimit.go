package handlers

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const (
	errRateLimited = "too many submissions, try again shortly"

	limiterIdleTTL    = 10 * time.Minute
	limiterMaxClients = 1024
)

// ipRateLimiter tracks per-client token buckets.
type ipRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rateLimitEntry
	rateVal  rate.Limit
	burst    int
}

type rateLimitEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newIPRateLimiter(rps float64, burst int) *ipRateLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &ipRateLimiter{
		limiters: make(map[string]*rateLimitEntry),
		rateVal:  rate.Limit(rps),
		burst:    burst,
	}
}

func (l *ipRateLimiter) allow(ip string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.limiters[ip]
	if !ok {
		if len(l.limiters) >= limiterMaxClients {
			l.cleanup(now)
		}
		e = &rateLimitEntry{limiter: rate.NewLimiter(l.rateVal, l.burst)}
		l.limiters[ip] = e
	}
	e.lastSeen = now

	return e.limiter.AllowN(now, 1)
}

// cleanup drops idle entries. Must be called with l.mu held.
func (l *ipRateLimiter) cleanup(now time.Time) {
	cutoff := now.Add(-limiterIdleTTL)
	for ip, e := range l.limiters {
		if e.lastSeen.Before(cutoff) {
			delete(l.limiters, ip)
		}
	}
}

// rateLimit rejects requests over the per-client budget with 429.
func (h *Handler) rateLimit(rps float64, burst int) gin.HandlerFunc {
	rl := newIPRateLimiter(rps, burst)
	return func(c *gin.Context) {
		if !rl.allow(c.ClientIP(), time.Now()) {
			if h.log != nil {
				h.log.Warnw("provision_rate_limited", "remote", c.ClientIP())
			}
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": errRateLimited})
			return
		}
		c.Next()
	}
}
