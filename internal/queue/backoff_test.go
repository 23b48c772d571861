package queue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRetryDelay(t *testing.T) {
	t.Run("should grow exponentially within jitter bounds", func(t *testing.T) {
		expected := []time.Duration{
			30 * time.Second,
			60 * time.Second,
			120 * time.Second,
			240 * time.Second,
		}
		for attempt, base := range expected {
			got := RetryDelay(attempt + 1)
			lo := time.Duration(float64(base) * (1 - backoffJitter))
			hi := time.Duration(float64(base) * (1 + backoffJitter))
			assert.GreaterOrEqual(t, got, lo, "attempt %d", attempt+1)
			assert.LessOrEqual(t, got, hi, "attempt %d", attempt+1)
		}
	})

	t.Run("should cap at the maximum delay", func(t *testing.T) {
		got := RetryDelay(50)
		assert.LessOrEqual(t, got, backoffMax)
		assert.GreaterOrEqual(t, got, time.Duration(float64(backoffMax)*(1-backoffJitter)))
	})

	t.Run("should treat attempts below one as the first attempt", func(t *testing.T) {
		got := RetryDelay(0)
		assert.LessOrEqual(t, got, time.Duration(float64(backoffBase)*(1+backoffJitter)))
	})
}
