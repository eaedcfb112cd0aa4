package security

import (
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/pandeygaura/navins-redact/internal/config"
)

// RateLimiter applies per-client token bucket rate limiting. Document
// processing is expensive, so upload endpoints are throttled per client IP.
type RateLimiter struct {
	config  config.SecurityConfig
	clients map[string]*clientLimiter
	mu      sync.RWMutex
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a rate limiter from the security configuration.
func NewRateLimiter(cfg config.SecurityConfig) *RateLimiter {
	return &RateLimiter{
		config:  cfg,
		clients: make(map[string]*clientLimiter),
	}
}

// Allow reports whether a request from the given client IP may proceed.
func (r *RateLimiter) Allow(clientIP string) bool {
	if !r.config.RateLimit.Enabled {
		return true
	}

	return r.getClient(clientIP).limiter.Allow()
}

// getClient gets or creates the limiter for a client IP.
func (r *RateLimiter) getClient(clientIP string) *clientLimiter {
	r.mu.RLock()
	client, exists := r.clients[clientIP]
	r.mu.RUnlock()

	if exists {
		client.lastSeen = time.Now()
		return client
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Double-check after acquiring write lock
	if client, exists := r.clients[clientIP]; exists {
		client.lastSeen = time.Now()
		return client
	}

	client = &clientLimiter{
		limiter:  rate.NewLimiter(rate.Limit(r.config.RateLimit.RequestsPerSec), r.config.RateLimit.Burst),
		lastSeen: time.Now(),
	}

	r.clients[clientIP] = client
	return client
}

// CleanupOldClients removes limiters idle for over an hour.
func (r *RateLimiter) CleanupOldClients() {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := time.Now().Add(-time.Hour)
	for ip, client := range r.clients {
		if client.lastSeen.Before(cutoff) {
			delete(r.clients, ip)
		}
	}
}

// StartCleanupRoutine starts a background routine that prunes idle limiters.
func (r *RateLimiter) StartCleanupRoutine() {
	go func() {
		ticker := time.NewTicker(30 * time.Minute)
		defer ticker.Stop()

		for range ticker.C {
			r.CleanupOldClients()
		}
	}()
}
