package breaker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Prometheus metrics for the failure budget.
var (
	gatewayFailures = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "paynow_breaker_failures",
		Help: "Gateway failures counted in the current breaker window",
	})

	breakerBlocksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "paynow_breaker_blocks_total",
		Help: "Total number of requests refused while the breaker was open",
	})

	breakerThrottlesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "paynow_breaker_throttles_total",
		Help: "Total number of requests delayed above the warning threshold",
	})
)

// ErrOpen marks a request refused while the breaker is open.
var ErrOpen = errors.New("gateway failure budget exhausted")

// Config controls the breaker window and thresholds.
type Config struct {
	// Window is how long a failure counts against the budget.
	Window time.Duration

	OpenThreshold int
	WarnThreshold int

	// ThrottleDelay is the pause applied above the warning threshold.
	ThrottleDelay time.Duration
}

// DefaultConfig returns a 30 second window with the default thresholds.
func DefaultConfig() Config {
	return Config{
		Window:        30 * time.Second,
		OpenThreshold: DefaultOpenThreshold,
		WarnThreshold: DefaultWarnThreshold,
		ThrottleDelay: time.Second,
	}
}

// Breaker gates gateway requests on the shared failure count.
type Breaker struct {
	redis  *redis.Client
	config Config
	logger zerolog.Logger
}

// New creates a breaker storing its window in redisClient.
func New(redisClient *redis.Client, config Config, logger zerolog.Logger) *Breaker {
	def := DefaultConfig()
	if config.Window <= 0 {
		config.Window = def.Window
	}
	if config.OpenThreshold <= 0 {
		config.OpenThreshold = def.OpenThreshold
	}
	if config.WarnThreshold <= 0 || config.WarnThreshold > config.OpenThreshold {
		config.WarnThreshold = min(def.WarnThreshold, config.OpenThreshold)
	}
	if config.ThrottleDelay < 0 {
		config.ThrottleDelay = 0
	}
	return &Breaker{redis: redisClient, config: config, logger: logger}
}

// GetState reads the current window from Redis. An empty window is healthy.
func (b *Breaker) GetState(ctx context.Context) (*State, error) {
	pipe := b.redis.Pipeline()
	countCmd := pipe.Get(ctx, RedisKeyFailures)
	ttlCmd := pipe.PTTL(ctx, RedisKeyFailures)
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("get breaker state: %w", err)
	}

	state := &State{
		OpenThreshold: b.config.OpenThreshold,
		WarnThreshold: b.config.WarnThreshold,
		ResetAt:       time.Now(),
	}

	count, err := countCmd.Int()
	if errors.Is(err, redis.Nil) {
		return state, nil
	}
	if err != nil {
		return nil, fmt.Errorf("parse failure count: %w", err)
	}
	state.Failures = count

	if ttl := ttlCmd.Val(); ttl > 0 {
		state.ResetAt = state.ResetAt.Add(ttl)
	}
	return state, nil
}

// recordFailureScript increments the failure count and starts the window
// expiry in one step. A count left without a TTL gets one too.
var recordFailureScript = redis.NewScript(`
local n = redis.call('INCR', KEYS[1])
if redis.call('PTTL', KEYS[1]) < 0 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
return n
`)

// RecordFailure counts one server or network failure. The first failure of
// a window starts its expiry.
func (b *Breaker) RecordFailure(ctx context.Context) error {
	count, err := recordFailureScript.Run(ctx, b.redis, []string{RedisKeyFailures}, b.config.Window.Milliseconds()).Int64()
	if err != nil {
		return fmt.Errorf("record failure: %w", err)
	}

	gatewayFailures.Set(float64(count))

	switch {
	case int(count) == b.config.OpenThreshold:
		b.logger.Error().Int64("failures", count).Dur("window", b.config.Window).Msg("Gateway failure budget exhausted - requests will be refused")
	case int(count) == b.config.WarnThreshold:
		b.logger.Warn().Int64("failures", count).Msg("Gateway failures rising - requests will be throttled")
	}
	return nil
}

// RecordSuccess closes the breaker by clearing the window.
func (b *Breaker) RecordSuccess(ctx context.Context) error {
	n, err := b.redis.Del(ctx, RedisKeyFailures).Result()
	if err != nil {
		return fmt.Errorf("reset breaker: %w", err)
	}
	if n > 0 {
		gatewayFailures.Set(0)
		b.logger.Debug().Msg("Gateway recovered - breaker reset")
	}
	return nil
}

// Allow reports whether a request may be sent now. Above the warning
// threshold it first waits ThrottleDelay, or until ctx is done.
func (b *Breaker) Allow(ctx context.Context) (bool, error) {
	state, err := b.GetState(ctx)
	if err != nil {
		return false, err
	}

	if state.IsOpen() {
		b.logger.Error().
			Int("failures", state.Failures).
			Dur("wait_duration", state.TimeUntilReset()).
			Msg("Breaker open - refusing request")
		breakerBlocksTotal.Inc()
		return false, nil
	}

	if state.NeedsThrottling() && b.config.ThrottleDelay > 0 {
		b.logger.Warn().
			Int("failures", state.Failures).
			Msg("Breaker warning - throttling request")
		breakerThrottlesTotal.Inc()

		timer := time.NewTimer(b.config.ThrottleDelay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-timer.C:
		}
	}

	return true, nil
}
