package infra

import "time"

const (
	baseReconnectDelay = 1 * time.Second
	maxReconnectDelay  = 5 * time.Second
)

// CalculateBackoff returns the delay scheduled before reconnect attempt n
// (1-based): 1s, 2s, 4s, then capped at 5s for any further attempt.
func CalculateBackoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if attempt > 32 {
		return maxReconnectDelay
	}
	delay := baseReconnectDelay << (attempt - 1)
	if delay > maxReconnectDelay || delay <= 0 {
		return maxReconnectDelay
	}
	return delay
}
