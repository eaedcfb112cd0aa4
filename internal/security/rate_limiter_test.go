package security

import (
	"testing"
	"time"

	"github.com/pandeygaura/navins-redact/internal/config"
)

func limiterConfig(enabled bool, rps float64, burst int) config.SecurityConfig {
	var cfg config.SecurityConfig
	cfg.RateLimit.Enabled = enabled
	cfg.RateLimit.RequestsPerSec = rps
	cfg.RateLimit.Burst = burst
	return cfg
}

func TestRateLimiter(t *testing.T) {
	t.Run("DisabledAllowsEverything", func(t *testing.T) {
		limiter := NewRateLimiter(limiterConfig(false, 0, 0))
		for i := 0; i < 100; i++ {
			if !limiter.Allow("10.0.0.1") {
				t.Fatal("Disabled limiter rejected a request")
			}
		}
	})

	t.Run("BurstThenThrottle", func(t *testing.T) {
		limiter := NewRateLimiter(limiterConfig(true, 1, 3))

		for i := 0; i < 3; i++ {
			if !limiter.Allow("10.0.0.2") {
				t.Fatalf("Request %d rejected within burst", i)
			}
		}
		if limiter.Allow("10.0.0.2") {
			t.Error("Request beyond burst was allowed")
		}
	})

	t.Run("ClientsAreIndependent", func(t *testing.T) {
		limiter := NewRateLimiter(limiterConfig(true, 1, 1))

		if !limiter.Allow("10.0.0.3") {
			t.Fatal("First request rejected")
		}
		if limiter.Allow("10.0.0.3") {
			t.Error("Second request from same client allowed")
		}
		if !limiter.Allow("10.0.0.4") {
			t.Error("Request from a different client rejected")
		}
	})

	t.Run("CleanupRemovesIdleClients", func(t *testing.T) {
		limiter := NewRateLimiter(limiterConfig(true, 1, 1))
		limiter.Allow("10.0.0.5")

		limiter.mu.Lock()
		limiter.clients["10.0.0.5"].lastSeen = time.Now().Add(-2 * time.Hour)
		limiter.mu.Unlock()

		limiter.CleanupOldClients()

		limiter.mu.RLock()
		_, exists := limiter.clients["10.0.0.5"]
		limiter.mu.RUnlock()
		if exists {
			t.Error("Idle client limiter not pruned")
		}
	})
}
