package main

import (
	"fmt"
	"time"

	"github.com/Sternrassler/paynow-client/pkg/breaker"
	"github.com/Sternrassler/paynow-client/pkg/client"
	"github.com/Sternrassler/paynow-client/pkg/logging"
	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Config is the command configuration read from the environment.
// Command line flags override it.
type Config struct {
	APIURL    string        `env:"PAYNOW_API_URL" envDefault:"http://localhost:8080/api"`
	RedisURL  string        `env:"PAYNOW_REDIS_URL"`
	LogLevel  string        `env:"PAYNOW_LOG_LEVEL" envDefault:"info"`
	LogPretty bool          `env:"PAYNOW_LOG_PRETTY" envDefault:"false"`
	HTTPAddr  string        `env:"PAYNOW_HTTP_ADDR" envDefault:":8090"`
	Timeout   time.Duration `env:"PAYNOW_TIMEOUT" envDefault:"15s"`

	// BreakerWindow is how long a gateway failure counts; zero disables the
	// breaker. It needs Redis.
	BreakerWindow time.Duration `env:"PAYNOW_BREAKER_WINDOW" envDefault:"30s"`
}

// loadConfig reads an optional .env file, then the environment.
func loadConfig(dotenvPath string) (Config, error) {
	if dotenvPath != "" {
		// A missing file is fine; the environment may carry everything.
		_ = godotenv.Load(dotenvPath)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

// setupLogging configures the global logger from cfg.
func setupLogging(cfg Config) {
	lc := logging.DefaultConfig()
	lc.Level = logging.ParseLevel(cfg.LogLevel)
	lc.Pretty = cfg.LogPretty
	logging.Setup(lc)
}

// newRedis connects to PAYNOW_REDIS_URL. It returns nil when no URL is set.
func newRedis(cfg Config) (*redis.Client, error) {
	if cfg.RedisURL == "" {
		return nil, nil
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return redis.NewClient(opts), nil
}

// newClient builds the gateway client, with the response cache when Redis is configured.
func newClient(cfg Config, rdb *redis.Client) (*client.Client, error) {
	cc := client.DefaultConfig(cfg.APIURL)
	cc.UserAgent = "paynow-cli/" + Version
	if cfg.Timeout > 0 {
		cc.Timeout = cfg.Timeout
	}
	cc.Redis = rdb
	if rdb != nil && cfg.BreakerWindow > 0 {
		bc := breaker.DefaultConfig()
		bc.Window = cfg.BreakerWindow
		cc.Breaker = &bc
	}

	c, err := client.New(cc)
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}

	log.Debug().
		Str("api_url", cfg.APIURL).
		Bool("cache", rdb != nil).
		Dur("timeout", cc.Timeout).
		Msg("Gateway client ready")

	return c, nil
}
