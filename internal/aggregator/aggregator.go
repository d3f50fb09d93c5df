// Package aggregator packages parsed incident records into per-service
// status snapshots.
package aggregator

import (
	"sort"
	"time"

	"github.com/rajasatyajit/StatusAggregator/internal/classifier"
	"github.com/rajasatyajit/StatusAggregator/internal/feed"
	"github.com/rajasatyajit/StatusAggregator/internal/models"
)

// Aggregator builds snapshots from raw records
type Aggregator struct {
	classifier *classifier.Classifier
}

// New creates an aggregator backed by c
func New(c *classifier.Classifier) *Aggregator {
	if c == nil {
		c = classifier.New(0)
	}
	return &Aggregator{classifier: c}
}

// FromFeed builds the snapshot for an RSS or Atom source. Items dated after
// now stay in the history but never drive the live status.
func (a *Aggregator) FromFeed(records []models.RawIncident, now time.Time) models.Snapshot {
	incidents := make([]models.Incident, 0, len(records))
	for _, r := range records {
		incidents = append(incidents, a.canonical(r, false))
	}
	SortNewestFirst(incidents)

	snap := newSnapshot(incidents, now)

	var live *models.Incident
	for i := range incidents {
		if !incidents[i].CreatedAt.After(now) {
			live = &incidents[i]
			break
		}
	}
	snap.Status = a.classifier.ClassifyFeed(live, now)
	return snap
}

// FromAPI builds the snapshot for a status API source. The provider's
// indicator is trusted as-is; incidents are display history only.
func (a *Aggregator) FromAPI(indicator string, records []models.RawIncident, now time.Time) models.Snapshot {
	incidents := make([]models.Incident, 0, len(records))
	for _, r := range records {
		incidents = append(incidents, a.canonical(r, true))
	}
	SortNewestFirst(incidents)

	snap := newSnapshot(incidents, now)
	snap.Status = a.classifier.NormalizeIndicator(indicator)
	return snap
}

// Unknown is the snapshot reported when a source could not be read
func Unknown(now time.Time) models.Snapshot {
	return models.Snapshot{
		Status:    models.StatusUnknown,
		Incidents: []models.Incident{},
		FetchedAt: now,
	}
}

// SortNewestFirst orders incidents by creation time, newest first. Equal
// timestamps keep their input order.
func SortNewestFirst(incidents []models.Incident) {
	sort.SliceStable(incidents, func(i, j int) bool {
		return incidents[i].CreatedAt.After(incidents[j].CreatedAt)
	})
}

func newSnapshot(incidents []models.Incident, now time.Time) models.Snapshot {
	snap := models.Snapshot{Incidents: incidents, FetchedAt: now}
	if len(incidents) > 0 {
		last := incidents[0]
		snap.LastIncident = &last
	}
	return snap
}

func (a *Aggregator) canonical(r models.RawIncident, provider bool) models.Incident {
	description := feed.StripHTML(r.RawBody)
	text := r.Title + " " + description

	lifecycle := a.classifier.Lifecycle(text)
	if provider {
		lifecycle = a.classifier.ProviderLifecycle(r.State, text)
	}

	updated := r.Updated
	if updated.IsZero() {
		updated = r.Timestamp
	}
	components := r.Components
	if components == nil {
		components = []string{}
	}

	return models.Incident{
		Title:           r.Title,
		Description:     description,
		HTMLDescription: r.RawBody,
		Status:          lifecycle,
		CreatedAt:       r.Timestamp,
		UpdatedAt:       updated,
		Components:      components,
	}
}
