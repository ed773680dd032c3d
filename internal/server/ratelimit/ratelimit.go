// Package ratelimit provides per-client request throttling using token buckets.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Info is the limit state reported alongside an Allow decision, in the
// shape response headers need.
type Info struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

// bucket pairs a token-bucket limiter with the shape it was built from so
// response headers can be derived without refetching config.
type bucket struct {
	lim      *rate.Limiter
	capacity int
	refill   float64 // tokens per second
	lastSeen time.Time
}

// Limiter manages one token bucket per client+endpoint+method combination.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	config  *Config

	cleanupTicker *time.Ticker
	cleanupStop   chan struct{}
}

// Config shapes the limiter: global default budget plus per-endpoint
// overrides and client allow/deny lists.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	Whitelist       map[string]bool
	Blacklist       map[string]bool
	EndpointConfigs []EndpointConfig
}

// NewLimiter builds a limiter. A nil config gets a permissive default
// budget with cleanup enabled.
func NewLimiter(config *Config) *Limiter {
	if config == nil {
		config = &Config{
			Enabled:         true,
			DefaultLimit:    1000,
			DefaultWindow:   time.Minute,
			CleanupInterval: 5 * time.Minute,
			Whitelist:       make(map[string]bool),
			Blacklist:       make(map[string]bool),
		}
	}

	l := &Limiter{
		buckets: make(map[string]*bucket),
		config:  config,
	}

	if config.Enabled && config.CleanupInterval > 0 {
		l.cleanupTicker = time.NewTicker(config.CleanupInterval)
		l.cleanupStop = make(chan struct{})
		go l.cleanupLoop()
	}

	return l
}

// Allow spends one token from the client's bucket for this endpoint and
// method, reporting the decision plus the Info the response headers carry.
func (l *Limiter) Allow(clientID string, endpoint string, method string) (bool, Info) {
	if !l.config.Enabled || l.config.Whitelist[clientID] {
		return true, Info{Allowed: true}
	}
	// Blacklisted clients get a bare denial, no budget headers.
	if l.config.Blacklist[clientID] {
		return false, Info{}
	}

	endpointConfig := MatchEndpoint(endpoint, method, l.config.EndpointConfigs)
	if endpointConfig == nil {
		endpointConfig = &EndpointConfig{
			Limit:  l.config.DefaultLimit,
			Window: l.config.DefaultWindow,
			Burst:  l.config.DefaultLimit,
		}
	}
	// Limit 0 marks an unmetered endpoint, the health check for one.
	if endpointConfig.Limit <= 0 {
		return true, Info{Allowed: true}
	}

	// One bucket per client+endpoint+method combination
	key := clientID + ":" + endpoint + ":" + method

	l.mu.Lock()
	defer l.mu.Unlock()

	b := l.buckets[key]
	if b == nil {
		capacity := endpointConfig.Burst
		if capacity <= 0 {
			capacity = endpointConfig.Limit
		}
		refill := float64(endpointConfig.Limit) / endpointConfig.Window.Seconds()
		b = &bucket{
			lim:      rate.NewLimiter(rate.Limit(refill), capacity),
			capacity: capacity,
			refill:   refill,
		}
		l.buckets[key] = b
	}
	b.lastSeen = time.Now()

	allowed := b.lim.Allow()
	return allowed, b.info(allowed, endpointConfig.Limit)
}

// info reports the bucket state after an Allow decision.
func (b *bucket) info(allowed bool, limit int) Info {
	tokens := b.lim.Tokens()
	if tokens < 0 {
		tokens = 0
	}

	info := Info{
		Allowed:   allowed,
		Limit:     limit,
		Remaining: int(tokens),
	}

	// ResetTime is when the bucket is full again
	now := time.Now()
	if tokens < float64(b.capacity) {
		secondsUntilFull := (float64(b.capacity) - tokens) / b.refill
		info.ResetTime = now.Add(time.Duration(secondsUntilFull * float64(time.Second)))
	} else {
		info.ResetTime = now
	}

	// A denied request waits for one whole token.
	if !allowed {
		wait := (1 - tokens) / b.refill
		if wait > 0 {
			info.RetryAfter = time.Duration(wait * float64(time.Second))
		}
	}

	return info
}

// cleanupLoop periodically removes old unused buckets to prevent memory leaks.
func (l *Limiter) cleanupLoop() {
	for {
		select {
		case <-l.cleanupTicker.C:
			l.removeIdleBuckets()
		case <-l.cleanupStop:
			return
		}
	}
}

// removeIdleBuckets drops buckets that have not been touched in over an hour.
func (l *Limiter) removeIdleBuckets() {
	cutoff := time.Now().Add(-1 * time.Hour)

	l.mu.Lock()
	defer l.mu.Unlock()

	for key, b := range l.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(l.buckets, key)
		}
	}
}

// Stop ends the cleanup goroutine. Safe to call once, at shutdown.
func (l *Limiter) Stop() {
	if l.cleanupTicker != nil {
		l.cleanupTicker.Stop()
	}
	if l.cleanupStop != nil {
		close(l.cleanupStop)
	}
}
