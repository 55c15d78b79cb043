// Package breaker implements a gateway failure budget shared across client
// instances through Redis. Server and network failures are counted in a
// fixed window; once the count reaches the open threshold, requests are
// refused until the window resets, and above the warning threshold they are
// slowed down.
package breaker

import (
	"time"
)

// Redis keys for breaker state storage.
const (
	RedisKeyFailures = "paynow:breaker:failures"
)

// Default thresholds.
const (
	// DefaultOpenThreshold refuses requests once this many failures fall in one window.
	DefaultOpenThreshold = 10

	// DefaultWarnThreshold throttles requests once this many failures fall in one window.
	DefaultWarnThreshold = 5
)

// State is the failure count of the current window.
type State struct {
	// Failures counted since the window opened.
	Failures int `json:"failures"`

	// ResetAt is when the window expires and the count drops to zero.
	ResetAt time.Time `json:"reset_at"`

	OpenThreshold int `json:"open_threshold"`
	WarnThreshold int `json:"warn_threshold"`
}

// IsOpen reports whether requests should be refused.
func (s *State) IsOpen() bool {
	return s.Failures >= s.OpenThreshold
}

// NeedsThrottling reports whether requests should be delayed.
func (s *State) NeedsThrottling() bool {
	return s.Failures >= s.WarnThreshold && !s.IsOpen()
}

// IsHealthy reports a failure count below both thresholds.
func (s *State) IsHealthy() bool {
	return s.Failures < s.WarnThreshold
}

// TimeUntilReset returns the duration until the window resets.
// Returns 0 if the reset time has already passed.
func (s *State) TimeUntilReset() time.Duration {
	d := time.Until(s.ResetAt)
	if d < 0 {
		return 0
	}
	return d
}
