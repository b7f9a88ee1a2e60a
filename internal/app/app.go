// Package app wires the configured components together for the server and
// the command line tool.
package app

import (
	"context"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"

	"github.com/dharmasatrya/ecoflyer/internal/aggregator"
	"github.com/dharmasatrya/ecoflyer/internal/airports"
	"github.com/dharmasatrya/ecoflyer/internal/cache"
	"github.com/dharmasatrya/ecoflyer/internal/config"
	"github.com/dharmasatrya/ecoflyer/internal/jobstore"
	"github.com/dharmasatrya/ecoflyer/internal/providers"
	"github.com/dharmasatrya/ecoflyer/internal/ratelimit"
)

type App struct {
	Config     config.Config
	Airports   *airports.Table
	Aggregator *aggregator.Aggregator
	Cache      cache.Cache
	Jobs       *jobstore.Store

	redis *redis.Client
}

// New loads the airport table, builds the upstream clients and, when
// enabled, connects to Redis for the cache and job store.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	table, err := airports.Load(cfg.AirportsFile, cfg.MaxAirportCodes)
	if err != nil {
		return nil, err
	}
	log.Printf("Loaded %d airports from %s", table.Len(), cfg.AirportsFile)

	limiter := ratelimit.NewUpstreamLimiter(ratelimit.Limit{
		RequestsPerSecond: cfg.RateLimitRPS,
		Burst:             cfg.RateLimitBurst,
	}, nil)

	clientConfig := func(baseURL, key string) providers.ClientConfig {
		return providers.ClientConfig{
			BaseURL: baseURL,
			APIKey:  key,
			Timeout: cfg.HTTPTimeout,
			Limiter: limiter,
		}
	}

	agg := aggregator.NewAggregator(
		table,
		providers.NewTequilaClient(clientConfig(cfg.TequilaURL, cfg.TequilaAPIKey), cfg.ResultLimit),
		providers.NewTIMClient(clientConfig(cfg.TIMURL, cfg.TIMAPIKey), cfg.CabinClass),
		providers.NewUnsplashClient(clientConfig(cfg.UnsplashURL, cfg.UnsplashAccessKey)),
		aggregator.Config{
			Timeout:               cfg.PipelineTimeout,
			OriginRadiusKm:        cfg.OriginRadiusKm,
			OptionsPerDestination: cfg.OptionsPerDestination,
			Currency:              cfg.Currency,
			ResultLimit:           cfg.ResultLimit,
		},
	)

	a := &App{
		Config:     cfg,
		Airports:   table,
		Aggregator: agg,
		Cache:      cache.NewNoOpCache(),
	}

	if !cfg.RedisEnabled() {
		log.Println("Redis disabled: no cache, no job store")
		return a, nil
	}

	client, err := cache.Connect(ctx, cache.RedisConfig{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Username: cfg.RedisUser,
		Password: cfg.RedisPass,
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to Redis at %s:%s: %w", cfg.RedisHost, cfg.RedisPort, err)
	}
	a.redis = client

	if cfg.CacheEnabled {
		a.Cache = cache.NewRedisCache(client, cfg.RedisTTL)
		log.Printf("Redis cache enabled (host: %s:%s, TTL: %v)", cfg.RedisHost, cfg.RedisPort, cfg.RedisTTL)
	}
	if cfg.JobsEnabled {
		a.Jobs = jobstore.New(client, cfg.JobsTTL)
		log.Println("Job store enabled")
	}
	return a, nil
}

func (a *App) Close() error {
	if a.redis == nil {
		return nil
	}
	return a.redis.Close()
}
