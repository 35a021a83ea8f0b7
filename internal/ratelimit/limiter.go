package ratelimit

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/shodhmemory/engine/pkg/config"
)

// Result is the outcome of a rate-limit check.
type Result struct {
	Allowed    bool
	RetryAfter time.Duration
	Remaining  float64
}

// Limiter enforces a global request rate plus a per-API-key rate, both
// token buckets, over the HTTP surface.
type Limiter struct {
	mu      sync.RWMutex
	enabled bool
	global  *Bucket
	byKey   map[string]*Bucket
	rps     float64
	burst   float64

	allowed  prometheus.Counter
	rejected prometheus.Counter
}

// NewLimiter builds a Limiter from cfg, registering its counters with
// reg (pass prometheus.DefaultRegisterer in production, a fresh
// registry in tests).
func NewLimiter(cfg config.RateLimitConfig, reg prometheus.Registerer) *Limiter {
	l := &Limiter{
		enabled: cfg.Enabled,
		global:  NewBucket(float64(cfg.BurstSize), cfg.RequestsPerSecond),
		byKey:   make(map[string]*Bucket),
		rps:     cfg.RequestsPerSecond,
		burst:   float64(cfg.BurstSize),
		allowed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shodhmemory_ratelimit_allowed_total",
			Help: "Requests allowed by the rate limiter.",
		}),
		rejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shodhmemory_ratelimit_rejected_total",
			Help: "Requests rejected by the rate limiter.",
		}),
	}
	if reg != nil {
		reg.MustRegister(l.allowed, l.rejected)
	}
	return l
}

// Allow checks whether a request identified by apiKey (or "" for
// anonymous callers sharing one bucket) may proceed.
func (l *Limiter) Allow(apiKey string) Result {
	if !l.enabled {
		return Result{Allowed: true}
	}

	if !l.global.TryConsume(1) {
		l.rejected.Inc()
		return Result{Allowed: false, RetryAfter: l.global.TimeToWait(1), Remaining: l.global.Tokens()}
	}

	bucket := l.bucketFor(apiKey)
	if !bucket.TryConsume(1) {
		l.rejected.Inc()
		return Result{Allowed: false, RetryAfter: bucket.TimeToWait(1), Remaining: bucket.Tokens()}
	}

	l.allowed.Inc()
	return Result{Allowed: true, Remaining: bucket.Tokens()}
}

func (l *Limiter) bucketFor(apiKey string) *Bucket {
	l.mu.RLock()
	b, ok := l.byKey[apiKey]
	l.mu.RUnlock()
	if ok {
		return b
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if b, ok := l.byKey[apiKey]; ok {
		return b
	}
	b = NewBucket(l.burst, l.rps)
	l.byKey[apiKey] = b
	return b
}
