// Package pipeline fetches every catalog service, persists the resulting
// statuses and notifies on allow-listed transitions.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/rajasatyajit/StatusAggregator/config"
	"github.com/rajasatyajit/StatusAggregator/internal/aggregator"
	apperrors "github.com/rajasatyajit/StatusAggregator/internal/errors"
	"github.com/rajasatyajit/StatusAggregator/internal/logger"
	"github.com/rajasatyajit/StatusAggregator/internal/metrics"
	"github.com/rajasatyajit/StatusAggregator/internal/models"
	"github.com/rajasatyajit/StatusAggregator/internal/notify"
	"github.com/rajasatyajit/StatusAggregator/internal/store"
)

// Catalog is the subset of the service catalog the sync job reads
type Catalog interface {
	Sources() []models.Service
	Name(slug string) string
}

// Result summarizes one sync run
type Result struct {
	RunID           string                `json:"run_id"`
	TotalChanges    int                   `json:"total_changes"`
	PriorityChanges int                   `json:"priority_changes"`
	Changes         []models.StatusChange `json:"changes"`
	Failed          []string              `json:"failed,omitempty"` // slugs whose row could not be written
	Duration        time.Duration         `json:"duration_ns"`
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithPublisher also emits every change as an event
func WithPublisher(p notify.EventPublisher) Option {
	return func(pl *Pipeline) { pl.publisher = p }
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(pl *Pipeline) { pl.now = now }
}

// Pipeline runs the status sync job
type Pipeline struct {
	store     store.Store
	catalog   Catalog
	fetcher   Fetcher
	agg       *aggregator.Aggregator
	notifier  notify.Notifier
	publisher notify.EventPublisher
	limiter   *rate.Limiter
	sem       *semaphore.Weighted
	cfg       config.PipelineConfig
	now       func() time.Time
	running   atomic.Bool
}

// New creates a new pipeline instance
func New(st store.Store, cat Catalog, f Fetcher, agg *aggregator.Aggregator, n notify.Notifier, cfg config.PipelineConfig, opts ...Option) *Pipeline {
	if n == nil {
		n = notify.LogNotifier{}
	}
	if agg == nil {
		agg = aggregator.New(nil)
	}
	workers := cfg.WorkerCount
	if workers <= 0 {
		workers = 1
	}
	limit := rate.Limit(cfg.RateLimit)
	if cfg.RateLimit <= 0 {
		limit = rate.Inf
	}
	burst := int(cfg.RateLimit)
	if burst < 1 {
		burst = 1
	}

	p := &Pipeline{
		store:    st,
		catalog:  cat,
		fetcher:  f,
		agg:      agg,
		notifier: n,
		limiter:  rate.NewLimiter(limit, burst),
		sem:      semaphore.NewWeighted(int64(workers)),
		cfg:      cfg,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}

	logger.Info("Pipeline initialized",
		"services", len(cat.Sources()),
		"rate_limit", cfg.RateLimit,
		"workers", workers,
	)
	return p
}

// IsRunning reports whether a sync run is in progress
func (p *Pipeline) IsRunning() bool {
	return p.running.Load()
}

// RunOnce performs one sync run. It returns ErrSyncInProgress when another
// run holds the guard.
func (p *Pipeline) RunOnce(ctx context.Context) (Result, error) {
	if !p.running.CompareAndSwap(false, true) {
		return Result{}, apperrors.ErrSyncInProgress
	}
	defer p.running.Store(false)

	res := Result{RunID: uuid.NewString(), Changes: []models.StatusChange{}}
	ctx = logger.WithRunID(ctx, res.RunID)
	log := logger.WithContext(ctx)
	start := time.Now()

	previous := p.previousStatuses(ctx)
	services := p.catalog.Sources()
	log.Info("Starting status sync", "services", len(services))

	snapshots := p.fetchAll(ctx, services)
	if err := ctx.Err(); err != nil {
		metrics.RecordSyncRun("cancelled", time.Since(start))
		return res, apperrors.PipelineError{Source: "sync", Stage: "fetch", Err: err}
	}

	now := p.now().UTC()
	var failures apperrors.MultiError
	var priority []models.StatusChange

	for i, svc := range services {
		snap := snapshots[i]
		row := models.StatusRow{
			ServiceSlug:  svc.Slug,
			Status:       snap.Status,
			LastIncident: liveIncidentAt(snap, now),
			UpdatedAt:    now,
		}
		if err := p.store.UpsertStatus(ctx, row); err != nil {
			log.Error("Failed to persist status", "service", svc.Slug, "error", err)
			failures.Add(err)
			res.Failed = append(res.Failed, svc.Slug)
			continue
		}

		old, seen := previous[svc.Slug]
		if !seen || old == snap.Status {
			continue
		}
		change := models.StatusChange{
			ServiceSlug: svc.Slug,
			ServiceName: svc.Name,
			OldStatus:   old,
			NewStatus:   snap.Status,
		}
		res.Changes = append(res.Changes, change)
		metrics.RecordStatusChange(svc.Slug, string(old), string(snap.Status))
		if svc.Notify {
			priority = append(priority, change)
		}
	}

	res.TotalChanges = len(res.Changes)
	res.PriorityChanges = len(priority)

	p.publish(ctx, res.Changes)

	switch {
	case len(priority) > 0:
		log.Info("Status changes detected, including high-priority services",
			"changes", res.TotalChanges,
			"priority", res.PriorityChanges,
		)
		p.sendDigest(ctx, priority)
	case res.TotalChanges > 0:
		log.Info("Status changes detected, none are high-priority", "changes", res.TotalChanges)
	default:
		log.Info("No status changes detected")
	}

	res.Duration = time.Since(start)
	status := "success"
	if failures.HasErrors() {
		status = "partial"
		log.Warn("Sync completed with persistence failures", "failed", len(res.Failed), "error", failures)
	}
	metrics.RecordSyncRun(status, res.Duration)
	log.Info("Status sync finished", "duration_ms", res.Duration.Milliseconds())
	return res, nil
}

// Run executes RunOnce immediately and then on every tick until ctx is done
func (p *Pipeline) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("invalid sync interval %v", interval)
	}
	logger.Info("Starting sync scheduler", "interval", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := p.RunOnce(ctx); err != nil {
			if errors.Is(err, apperrors.ErrSyncInProgress) {
				logger.Warn("Skipping sync tick, previous run still in progress")
			} else if ctx.Err() == nil {
				logger.Error("Sync run failed", "error", err)
			}
		}

		select {
		case <-ctx.Done():
			logger.Info("Sync scheduler stopping")
			return nil
		case <-ticker.C:
		}
	}
}

func (p *Pipeline) previousStatuses(ctx context.Context) map[string]models.Status {
	prev := make(map[string]models.Status)
	rows, err := p.store.ListStatuses(ctx)
	if err != nil {
		// without a baseline no change can be detected, but rows still refresh
		logger.WithContext(ctx).Error("Failed to load current statuses", "error", err)
		return prev
	}
	for _, r := range rows {
		prev[r.ServiceSlug] = r.Status
	}
	return prev
}

// fetchAll fans out over services. The result is index-aligned with services.
func (p *Pipeline) fetchAll(ctx context.Context, services []models.Service) []models.Snapshot {
	out := make([]models.Snapshot, len(services))
	var wg sync.WaitGroup

	for i, svc := range services {
		i, svc := i, svc
		wg.Add(1)
		go func() {
			defer wg.Done()
			out[i] = p.fetchOne(ctx, svc)
		}()
	}
	wg.Wait()
	return out
}

func (p *Pipeline) fetchOne(ctx context.Context, svc models.Service) models.Snapshot {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return aggregator.Unknown(p.now().UTC())
	}
	defer p.sem.Release(1)

	if err := p.limiter.Wait(ctx); err != nil {
		return aggregator.Unknown(p.now().UTC())
	}

	src, err := NewSource(svc, p.fetcher, p.agg, p.now)
	if err != nil {
		return aggregator.Unknown(p.now().UTC())
	}
	snap, _ := observe(ctx, src)
	return snap
}

func (p *Pipeline) sendDigest(ctx context.Context, changes []models.StatusChange) {
	log := logger.WithContext(ctx)

	var roster []string
	rows, err := p.store.ListByStatus(ctx, models.StatusIncident, models.StatusOutage)
	if err != nil {
		log.Error("Failed to load incident roster", "error", err)
	}
	for _, r := range rows {
		roster = append(roster, p.catalog.Name(r.ServiceSlug))
	}

	subject, message := notify.BuildDigest(changes, roster)
	if err := p.notifier.Notify(ctx, subject, message); err != nil {
		log.Error("Failed to send notification", "subject", subject, "error", err)
		metrics.RecordNotification("email", "error")
		return
	}
	metrics.RecordNotification("email", "success")
	log.Info("Notification sent", "subject", subject)
}

func (p *Pipeline) publish(ctx context.Context, changes []models.StatusChange) {
	if p.publisher == nil {
		return
	}
	for _, c := range changes {
		if err := p.publisher.Publish(ctx, c); err != nil {
			logger.WithContext(ctx).Error("Failed to publish status change", "service", c.ServiceSlug, "error", err)
			metrics.RecordNotification("nats", "error")
			continue
		}
		metrics.RecordNotification("nats", "success")
	}
}
