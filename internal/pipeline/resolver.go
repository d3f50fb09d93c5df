package pipeline

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/rajasatyajit/StatusAggregator/internal/aggregator"
	"github.com/rajasatyajit/StatusAggregator/internal/cache"
	apperrors "github.com/rajasatyajit/StatusAggregator/internal/errors"
	"github.com/rajasatyajit/StatusAggregator/internal/logger"
	"github.com/rajasatyajit/StatusAggregator/internal/metrics"
	"github.com/rajasatyajit/StatusAggregator/internal/models"
	"github.com/rajasatyajit/StatusAggregator/pkg/utils"
)

// SnapshotPrefix namespaces snapshot entries in the cache
const SnapshotPrefix = "snapshot:"

// Resolver serves live snapshots for the render path. Successful snapshots
// are cached for ttl and concurrent requests for the same source share one
// fetch. Failed fetches are not cached.
type Resolver struct {
	fetcher Fetcher
	agg     *aggregator.Aggregator
	cache   cache.Cache
	ttl     time.Duration
	group   singleflight.Group
	now     func() time.Time
}

func NewResolver(f Fetcher, agg *aggregator.Aggregator, c cache.Cache, ttl time.Duration) *Resolver {
	if c == nil {
		c = cache.NewMemoryCache()
	}
	return &Resolver{fetcher: f, agg: agg, cache: c, ttl: ttl, now: time.Now}
}

// Resolve returns the snapshot for svc. Services without a source and failed
// sources resolve to the unknown snapshot with a nil error. A caller whose
// ctx ends while waiting gets the unknown snapshot and ctx.Err(); the shared
// fetch keeps running for the other callers.
func (r *Resolver) Resolve(ctx context.Context, svc models.Service) (models.Snapshot, error) {
	src, err := NewSource(svc, r.fetcher, r.agg, r.now)
	if errors.Is(err, apperrors.ErrNoSource) {
		return aggregator.Unknown(r.now().UTC()), nil
	}
	if err != nil {
		return models.Snapshot{}, err
	}

	key := cacheKey(svc)
	var snap models.Snapshot
	found, err := r.cache.Get(ctx, key, &snap)
	if err != nil {
		logger.WithContext(ctx).Warn("Snapshot cache read failed", "service", svc.Slug, "error", err)
	}
	metrics.RecordCacheLookup(found)
	if found {
		return snap, nil
	}

	// The shared fetch must outlive any single caller; the fetcher bounds it.
	fctx := context.WithoutCancel(ctx)
	ch := r.group.DoChan(key, func() (any, error) {
		snap, err := observe(fctx, src)
		if err != nil {
			return snap, nil
		}
		if r.ttl > 0 {
			if err := r.cache.Set(fctx, key, snap, r.ttl); err != nil {
				logger.WithContext(fctx).Warn("Snapshot cache write failed", "service", svc.Slug, "error", err)
			}
		}
		return snap, nil
	})

	select {
	case res := <-ch:
		return res.Val.(models.Snapshot), nil
	case <-ctx.Done():
		return aggregator.Unknown(r.now().UTC()), ctx.Err()
	}
}

// Invalidate drops every cached snapshot
func (r *Resolver) Invalidate(ctx context.Context) error {
	return r.cache.DeletePrefix(ctx, SnapshotPrefix)
}

func cacheKey(svc models.Service) string {
	url := svc.FeedURL
	if svc.Kind == models.SourceJSON {
		url = svc.StatusAPIURL + "|" + svc.IncidentsAPIURL
	}
	return SnapshotPrefix + utils.HashString(url)
}
