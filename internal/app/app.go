// Package app assembles the long-lived components shared by the server and
// the one-shot sync command.
package app

import (
	"context"
	"fmt"

	redis "github.com/redis/go-redis/v9"

	"github.com/rajasatyajit/StatusAggregator/config"
	"github.com/rajasatyajit/StatusAggregator/internal/aggregator"
	"github.com/rajasatyajit/StatusAggregator/internal/cache"
	"github.com/rajasatyajit/StatusAggregator/internal/catalog"
	"github.com/rajasatyajit/StatusAggregator/internal/classifier"
	"github.com/rajasatyajit/StatusAggregator/internal/database"
	"github.com/rajasatyajit/StatusAggregator/internal/feed"
	"github.com/rajasatyajit/StatusAggregator/internal/logger"
	"github.com/rajasatyajit/StatusAggregator/internal/notify"
	"github.com/rajasatyajit/StatusAggregator/internal/pipeline"
	"github.com/rajasatyajit/StatusAggregator/internal/ratelimit"
	"github.com/rajasatyajit/StatusAggregator/internal/store"
)

// App holds the wired components
type App struct {
	DB        *database.DB
	Store     store.Store
	Catalog   *catalog.Catalog
	Cache     cache.Cache
	Limiter   ratelimit.Limiter
	Resolver  *pipeline.Resolver
	Pipeline  *pipeline.Pipeline
	Publisher notify.EventPublisher

	redis *redis.Client
}

// New connects to the configured backends and builds the sync job and the
// render-path resolver. Optional backends (Postgres, Redis, NATS, email)
// fall back to in-process implementations when unset.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{}

	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	a.Catalog = cat
	logger.Info("Service catalog loaded", "services", cat.Len(), "with_source", len(cat.Sources()))

	db, err := database.New(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("initialize database: %w", err)
	}
	a.DB = db
	if cfg.Database.AutoMigrate {
		if err := db.Migrate(ctx); err != nil {
			a.Close(ctx)
			return nil, err
		}
	}
	a.Store = store.New(db)

	if cfg.Redis.URL != "" {
		client, err := cache.NewRedisClient(cfg.Redis)
		if err != nil {
			a.Close(ctx)
			return nil, fmt.Errorf("initialize redis: %w", err)
		}
		a.redis = client
		a.Limiter = ratelimit.NewRedisLimiter(client)
		logger.Info("Redis connected; using shared cache and rate limiter")
	} else {
		a.Limiter = ratelimit.NewMemoryLimiter()
		logger.Info("REDIS_URL not set; using in-memory cache and rate limiter")
	}
	a.Cache = cache.New(a.redis)

	fetcher := feed.NewFetcher(
		feed.WithTimeout(cfg.Pipeline.FetchTimeout),
		feed.WithRetries(cfg.Pipeline.RetryAttempts, cfg.Pipeline.RetryDelay),
		feed.WithUserAgent(cfg.Pipeline.UserAgent),
	)
	agg := aggregator.New(classifier.New(cfg.Pipeline.RecencyWindow))
	a.Resolver = pipeline.NewResolver(fetcher, agg, a.Cache, cfg.Cache.TTL)

	var notifier notify.Notifier = notify.LogNotifier{}
	if cfg.Notify.EmailURL != "" {
		notifier = notify.NewEmailNotifier(cfg.Notify.EmailURL, cfg.Notify.Timeout)
	} else {
		logger.Warn("NOTIFY_EMAIL_URL not set; notifications are logged only")
	}

	var opts []pipeline.Option
	if cfg.Notify.NATSURL != "" {
		pub, err := notify.NewNATSPublisher(cfg.Notify.NATSURL, cfg.Notify.NATSSubject)
		if err != nil {
			a.Close(ctx)
			return nil, fmt.Errorf("initialize nats: %w", err)
		}
		a.Publisher = pub
		opts = append(opts, pipeline.WithPublisher(pub))
	}

	a.Pipeline = pipeline.New(a.Store, cat, fetcher, agg, notifier, cfg.Pipeline, opts...)
	return a, nil
}

// Close releases every backend connection that was opened
func (a *App) Close(ctx context.Context) {
	if a.Publisher != nil {
		if err := a.Publisher.Close(); err != nil {
			logger.Warn("Failed to close event publisher", "error", err)
		}
	}
	if a.Cache != nil {
		if err := a.Cache.Close(); err != nil {
			logger.Warn("Failed to close cache", "error", err)
		}
	} else if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.DB != nil {
		a.DB.Close(ctx)
	}
}
