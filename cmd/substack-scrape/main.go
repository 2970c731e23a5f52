// Command substack-scrape prints platform data as JSON.
//
// Environment:
//
//	REDIS_URL   Redis address or redis:// URL for the response cache (default: no cache)
//	LOG_LEVEL   debug, info, warn or error (default: warn)
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/Sternrassler/substack-client/pkg/cache"
	"github.com/Sternrassler/substack-client/pkg/client"
	"github.com/Sternrassler/substack-client/pkg/logging"
	"github.com/Sternrassler/substack-client/pkg/metrics"
	"github.com/Sternrassler/substack-client/pkg/newsletter"
	"github.com/Sternrassler/substack-client/pkg/user"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd(&app{}).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// app holds the flags and services shared by all subcommands.
type app struct {
	redisURL         string
	logLevel         string
	pretty           bool
	showMetrics      bool
	userAgent        string
	root             string
	newsletterFormat string

	logger      zerolog.Logger
	redis       *redis.Client
	newsletters *newsletter.Service
	users       *user.Service
}

// setup configures logging, the optional cache and the services.
func (a *app) setup(ctx context.Context) error {
	logging.Setup(logging.Config{
		Level:  logging.LogLevel(a.logLevel),
		Pretty: a.pretty,
		Output: os.Stderr,
	})
	a.logger = logging.NewLogger(logging.ComponentCLI)

	cfg := client.DefaultConfig()
	cfg.UserAgent = a.userAgent

	if a.redisURL != "" {
		rdb, err := newRedisClient(a.redisURL)
		if err != nil {
			return err
		}
		if err := rdb.Ping(ctx).Err(); err != nil {
			a.logger.Warn().Err(err).Str("redis", a.redisURL).Msg("Redis unavailable, running without cache")
			rdb.Close()
		} else {
			a.logger.Info().Str("redis", a.redisURL).Msg("Connected to Redis")
			a.redis = rdb
			cfg.Cache = cache.NewManager(rdb)
		}
	}

	c, err := client.New(cfg)
	if err != nil {
		return fmt.Errorf("create client: %w", err)
	}

	endpoints := client.Endpoints{Root: a.root, NewsletterFormat: a.newsletterFormat}
	a.newsletters = newsletter.NewService(c, endpoints)
	a.users = user.NewService(c, endpoints)
	return nil
}

func (a *app) teardown(cmd *cobra.Command) error {
	if a.redis != nil {
		a.redis.Close()
	}
	if a.showMetrics {
		return metrics.WriteSummary(cmd.ErrOrStderr(), metrics.Gatherer)
	}
	return nil
}

// newRedisClient accepts either a bare host:port or a redis:// URL.
func newRedisClient(addr string) (*redis.Client, error) {
	if strings.Contains(addr, "://") {
		opts, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("parse REDIS_URL: %w", err)
		}
		return redis.NewClient(opts), nil
	}
	return redis.NewClient(&redis.Options{Addr: addr}), nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
