// Command paynow lists, creates and exports PayNow payments, manages webhooks
// and serves the composed payment listing over HTTP.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/Sternrassler/paynow-client/pkg/client"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

var Version = "dev"

// app holds what the subcommands share once the root command has run.
type app struct {
	cfg    Config
	redis  *redis.Client
	client *client.Client
}

func (a *app) close() {
	if a.client != nil {
		a.client.Close()
	}
	if a.redis != nil {
		a.redis.Close()
	}
}

func main() {
	a := &app{}
	err := newRootCmd(a).Execute()
	a.close()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	var (
		envFile  string
		apiURL   string
		redisURL string
		logLevel string
		pretty   bool
	)

	rootCmd := &cobra.Command{
		Use:           "paynow",
		Short:         "PayNow payment gateway client",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(envFile)
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("api-url") {
				cfg.APIURL = apiURL
			}
			if flags.Changed("redis-url") {
				cfg.RedisURL = redisURL
			}
			if flags.Changed("log-level") {
				cfg.LogLevel = logLevel
			}
			if flags.Changed("pretty") {
				cfg.LogPretty = pretty
			}
			setupLogging(cfg)

			rdb, err := newRedis(cfg)
			if err != nil {
				return err
			}
			if rdb != nil {
				if err := rdb.Ping(context.Background()).Err(); err != nil {
					rdb.Close()
					return fmt.Errorf("connect to redis: %w", err)
				}
			}

			c, err := newClient(cfg, rdb)
			if err != nil {
				if rdb != nil {
					rdb.Close()
				}
				return err
			}

			a.cfg, a.redis, a.client = cfg, rdb, c
			return nil
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&envFile, "env-file", ".env", "Load environment variables from this file if it exists")
	pf.StringVar(&apiURL, "api-url", "", "Gateway base URL (env PAYNOW_API_URL)")
	pf.StringVar(&redisURL, "redis-url", "", "Redis URL for the response cache (env PAYNOW_REDIS_URL)")
	pf.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (env PAYNOW_LOG_LEVEL)")
	pf.BoolVar(&pretty, "pretty", false, "Human-readable logs (env PAYNOW_LOG_PRETTY)")

	rootCmd.AddCommand(paymentsCmd(a))
	rootCmd.AddCommand(webhooksCmd(a))
	rootCmd.AddCommand(serveCmd(a))

	return rootCmd
}
