package util

import (
	"math/rand"
	"time"
)

// Backoff returns exponential backoff with jitter for the given retry
// attempt. The base delay is doubled each attempt, capped at 30 seconds,
// with random jitter of up to ±25%.
func Backoff(base time.Duration, attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}
	if attempt > 30 {
		attempt = 30
	}
	backoff := base * time.Duration(1<<uint(attempt))
	if backoff > 30*time.Second {
		backoff = 30 * time.Second
	}
	jitter := time.Duration(rand.Int63n(int64(backoff)/2)) - backoff/4
	return backoff + jitter
}
