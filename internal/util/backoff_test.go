package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBackoffZeroForFirstAttempt(t *testing.T) {
	assert.Equal(t, time.Duration(0), Backoff(time.Second, 0))
	assert.Equal(t, time.Duration(0), Backoff(time.Second, -3))
}

func TestBackoffGrowsWithAttempts(t *testing.T) {
	base := 100 * time.Millisecond
	for attempt := 1; attempt <= 5; attempt++ {
		d := Backoff(base, attempt)
		expected := base * time.Duration(1<<uint(attempt))
		// jitter is bounded by ±25% of the exponential value
		assert.GreaterOrEqual(t, d, expected-expected/4, "attempt %d", attempt)
		assert.LessOrEqual(t, d, expected+expected/4, "attempt %d", attempt)
	}
}

func TestBackoffCapped(t *testing.T) {
	d := Backoff(time.Second, 30)
	assert.LessOrEqual(t, d, 30*time.Second+30*time.Second/4)
}
