package queue

import (
	"math/rand"
	"time"
)

const (
	defaultMaxAttempts = 5

	backoffBase       = 30 * time.Second
	backoffMultiplier = 2
	backoffMax        = 30 * time.Minute
	backoffJitter     = 0.2
)

// RetryDelay returns the delay before the given retry attempt:
// base * multiplier^(attempt-1), capped, with up to ±20% jitter so
// bursts of failures spread out.
func RetryDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}

	delay := backoffBase
	for i := 1; i < attempt; i++ {
		delay *= backoffMultiplier
		if delay >= backoffMax {
			delay = backoffMax
			break
		}
	}

	jitter := 1 + backoffJitter*(2*rand.Float64()-1)
	delay = time.Duration(float64(delay) * jitter)
	if delay > backoffMax {
		delay = backoffMax
	}
	return delay
}
