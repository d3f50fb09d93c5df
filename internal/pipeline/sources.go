package pipeline

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rajasatyajit/StatusAggregator/internal/aggregator"
	apperrors "github.com/rajasatyajit/StatusAggregator/internal/errors"
	"github.com/rajasatyajit/StatusAggregator/internal/feed"
	"github.com/rajasatyajit/StatusAggregator/internal/logger"
	"github.com/rajasatyajit/StatusAggregator/internal/metrics"
	"github.com/rajasatyajit/StatusAggregator/internal/models"
)

// Fetcher retrieves a raw payload. *feed.Fetcher implements it.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Source produces the current snapshot of one service. On failure the
// returned snapshot is the unknown snapshot and err says why.
type Source interface {
	Service() models.Service
	Snapshot(ctx context.Context) (models.Snapshot, error)
}

// NewSource builds the source matching the service's kind
func NewSource(svc models.Service, f Fetcher, agg *aggregator.Aggregator, now func() time.Time) (Source, error) {
	if now == nil {
		now = time.Now
	}
	switch svc.Kind {
	case models.SourceRSS:
		return NewRSSSource(svc, f, agg, now), nil
	case models.SourceAtom:
		return NewAtomSource(svc, f, agg, now), nil
	case models.SourceJSON:
		return NewStatusAPISource(svc, f, agg, now), nil
	default:
		return nil, apperrors.ErrNoSource
	}
}

// FeedSource reads an RSS or Atom feed
type FeedSource struct {
	svc     models.Service
	fetcher Fetcher
	agg     *aggregator.Aggregator
	parse   func([]byte) ([]models.RawIncident, error)
	now     func() time.Time
}

func NewRSSSource(svc models.Service, f Fetcher, agg *aggregator.Aggregator, now func() time.Time) *FeedSource {
	return &FeedSource{svc: svc, fetcher: f, agg: agg, parse: feed.ParseRSS, now: now}
}

func NewAtomSource(svc models.Service, f Fetcher, agg *aggregator.Aggregator, now func() time.Time) *FeedSource {
	return &FeedSource{svc: svc, fetcher: f, agg: agg, parse: feed.ParseAtom, now: now}
}

func (s *FeedSource) Service() models.Service { return s.svc }

func (s *FeedSource) Snapshot(ctx context.Context) (models.Snapshot, error) {
	data, err := s.fetcher.Fetch(ctx, s.svc.FeedURL)
	if err != nil {
		return aggregator.Unknown(s.now().UTC()), err
	}
	records, err := s.parse(data)
	if err != nil {
		return aggregator.Unknown(s.now().UTC()), err
	}
	return s.agg.FromFeed(records, s.now().UTC()), nil
}

// StatusAPISource reads a Statuspage-style indicator plus its incident list.
// The indicator decides the status; a failed incident fetch only loses the
// history.
type StatusAPISource struct {
	svc     models.Service
	fetcher Fetcher
	agg     *aggregator.Aggregator
	now     func() time.Time
}

func NewStatusAPISource(svc models.Service, f Fetcher, agg *aggregator.Aggregator, now func() time.Time) *StatusAPISource {
	return &StatusAPISource{svc: svc, fetcher: f, agg: agg, now: now}
}

func (s *StatusAPISource) Service() models.Service { return s.svc }

func (s *StatusAPISource) Snapshot(ctx context.Context) (models.Snapshot, error) {
	var (
		indicator string
		records   []models.RawIncident
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		data, err := s.fetcher.Fetch(gctx, s.svc.StatusAPIURL)
		if err != nil {
			return err
		}
		indicator, err = feed.ParseIndicator(data)
		return err
	})
	if s.svc.IncidentsAPIURL != "" {
		g.Go(func() error {
			data, err := s.fetcher.Fetch(gctx, s.svc.IncidentsAPIURL)
			if err == nil {
				records, err = feed.ParseIncidents(data)
			}
			if err != nil {
				logger.WithContext(ctx).Warn("Incident history unavailable", "service", s.svc.Slug, "error", err)
				records = nil
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return aggregator.Unknown(s.now().UTC()), err
	}
	return s.agg.FromAPI(indicator, records, s.now().UTC()), nil
}

// observe runs src and records the fetch outcome
func observe(ctx context.Context, src Source) (models.Snapshot, error) {
	start := time.Now()
	snap, err := src.Snapshot(ctx)
	svc := src.Service()

	outcome := "success"
	if err != nil {
		outcome = "error"
		logger.WithContext(ctx).Warn("Status source failed",
			"service", svc.Slug,
			"kind", svc.Kind,
			"error", err,
		)
	}
	metrics.RecordFetch(svc.Slug, string(svc.Kind), outcome, time.Since(start))
	return snap, err
}

// liveIncidentAt is the time of the newest incident that is not dated in the
// future, the value persisted as last_incident.
func liveIncidentAt(snap models.Snapshot, now time.Time) *time.Time {
	for _, inc := range snap.Incidents {
		if !inc.CreatedAt.After(now) {
			t := inc.CreatedAt
			return &t
		}
	}
	return nil
}
