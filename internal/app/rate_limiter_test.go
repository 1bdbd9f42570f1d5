package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_CountsFailuresInWindow(t *testing.T) {
	now := time.Unix(1000, 0)
	rl := NewRateLimiter(2, time.Minute)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.1"), "Allow alone records nothing")

	rl.Fail("10.0.0.1")
	assert.True(t, rl.Allow("10.0.0.1"))
	rl.Fail("10.0.0.1")
	assert.False(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.2"), "limits are per key")

	now = now.Add(61 * time.Second)
	assert.True(t, rl.Allow("10.0.0.1"))
}

func TestRateLimiter_DisabledAndNil(t *testing.T) {
	var nilLimiter *RateLimiter
	assert.True(t, nilLimiter.Allow("10.0.0.1"))
	nilLimiter.Fail("10.0.0.1")
	nilLimiter.Sweep()

	off := NewRateLimiter(0, time.Minute)
	for range 100 {
		off.Fail("10.0.0.1")
	}
	assert.True(t, off.Allow("10.0.0.1"))
}

func TestRateLimiter_Sweep(t *testing.T) {
	now := time.Unix(1000, 0)
	rl := NewRateLimiter(5, time.Minute)
	rl.now = func() time.Time { return now }

	rl.Fail("old")
	now = now.Add(30 * time.Second)
	rl.Fail("recent")
	now = now.Add(45 * time.Second)

	rl.Sweep()
	assert.NotContains(t, rl.history, "old")
	assert.Contains(t, rl.history, "recent")
}
