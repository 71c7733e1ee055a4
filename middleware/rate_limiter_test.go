package middleware

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func TestAllow_EnforcesBurst(t *testing.T) {
	rl := NewRateLimiter(rate.Every(time.Hour), 3, time.Minute)

	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow("10.0.0.1"), "request %d within burst", i+1)
	}
	assert.False(t, rl.Allow("10.0.0.1"), "burst exhausted")
}

func TestAllow_TracksClientsSeparately(t *testing.T) {
	rl := NewRateLimiter(rate.Every(time.Hour), 1, time.Minute)

	assert.True(t, rl.Allow("10.0.0.1"))
	assert.False(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.2"), "a second client gets its own bucket")
}

func TestAllow_EvictsIdleClients(t *testing.T) {
	rl := NewRateLimiter(rate.Every(time.Hour), 1, 10*time.Millisecond)

	rl.Allow("10.0.0.1")
	rl.Allow("10.0.0.2")
	assert.Len(t, rl.visitors, 2)

	// Only one client comes back after the idle window; the other is
	// dropped on the next cleanup pass.
	time.Sleep(20 * time.Millisecond)
	rl.Allow("10.0.0.1")

	assert.Contains(t, rl.visitors, "10.0.0.1")
	assert.NotContains(t, rl.visitors, "10.0.0.2")
}
