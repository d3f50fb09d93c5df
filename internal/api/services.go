package api

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/rajasatyajit/StatusAggregator/internal/errors"
	"github.com/rajasatyajit/StatusAggregator/internal/logger"
	"github.com/rajasatyajit/StatusAggregator/internal/models"
)

// ServiceSummary is one row of the service directory
type ServiceSummary struct {
	Slug          string            `json:"slug"`
	Name          string            `json:"name"`
	Kind          models.SourceKind `json:"kind"`
	Tags          []string          `json:"tags"`
	StatusPageURL string            `json:"status_page_url,omitempty"`
	Status        models.Status     `json:"status"`
	Display       models.Display    `json:"display"`
	LastIncident  *time.Time        `json:"last_incident,omitempty"`
	UpdatedAt     *time.Time        `json:"updated_at,omitempty"`
}

// ServiceDetail is the live view of a single service
type ServiceDetail struct {
	models.Service
	Snapshot models.Snapshot   `json:"snapshot"`
	Display  models.Display    `json:"display"`
	Stored   *models.StatusRow `json:"stored,omitempty"`
}

type serviceQuery struct {
	q        string
	tag      string
	statuses map[models.Status]bool
	sort     string
	desc     bool
}

func parseServiceQuery(r *http.Request) (serviceQuery, error) {
	v := r.URL.Query()
	sq := serviceQuery{
		q:    v.Get("q"),
		tag:  v.Get("tag"),
		sort: strings.ToLower(v.Get("sort")),
	}

	switch sq.sort {
	case "":
		sq.sort = "name"
	case "name", "status", "updated":
	default:
		return sq, fmt.Errorf("%w: sort %q", apperrors.ErrInvalidInput, sq.sort)
	}

	switch strings.ToLower(v.Get("order")) {
	case "", "asc":
	case "desc":
		sq.desc = true
	default:
		return sq, fmt.Errorf("%w: order %q", apperrors.ErrInvalidInput, v.Get("order"))
	}

	for _, raw := range v["status"] {
		for _, part := range strings.Split(raw, ",") {
			part = strings.ToLower(strings.TrimSpace(part))
			if part == "" {
				continue
			}
			st := models.Status(part)
			if !st.Valid() {
				return sq, fmt.Errorf("%w: status %q", apperrors.ErrInvalidInput, part)
			}
			if sq.statuses == nil {
				sq.statuses = make(map[models.Status]bool)
			}
			sq.statuses[st] = true
		}
	}
	return sq, nil
}

// listServicesHandler handles GET /v1/services
func (h *Handler) listServicesHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sq, err := parseServiceQuery(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	rows, err := h.store.ListStatuses(ctx)
	if err != nil {
		logger.WithContext(ctx).Error("Failed to list statuses", "error", err)
		h.writeError(w, r, err)
		return
	}
	bySlug := make(map[string]models.StatusRow, len(rows))
	for _, row := range rows {
		bySlug[row.ServiceSlug] = row
	}

	services := h.catalog.Filter(sq.q, sq.tag)
	data := make([]ServiceSummary, 0, len(services))
	for _, svc := range services {
		s := ServiceSummary{
			Slug:          svc.Slug,
			Name:          svc.Name,
			Kind:          svc.Kind,
			Tags:          svc.Tags,
			StatusPageURL: svc.StatusPageURL,
			Status:        models.StatusUnknown,
		}
		if row, ok := bySlug[svc.Slug]; ok {
			s.Status = row.Status
			s.LastIncident = row.LastIncident
			updated := row.UpdatedAt
			s.UpdatedAt = &updated
		}
		if sq.statuses != nil && !sq.statuses[s.Status] {
			continue
		}
		s.Display = s.Status.Display()
		data = append(data, s)
	}
	sortSummaries(data, sq.sort, sq.desc)

	response := map[string]interface{}{
		"data":      data,
		"count":     len(data),
		"tags":      h.catalog.Tags(),
		"timestamp": time.Now().UTC(),
	}

	w.Header().Set("Cache-Control", "public, max-age=60")
	h.writeJSONResponse(w, http.StatusOK, response)
}

// sortSummaries orders by key. Status and updated ties fall back to name ascending.
func sortSummaries(data []ServiceSummary, key string, desc bool) {
	byName := func(a, b ServiceSummary) bool {
		return strings.ToLower(a.Name) < strings.ToLower(b.Name)
	}
	sort.SliceStable(data, func(i, j int) bool {
		a, b := data[i], data[j]
		if desc {
			a, b = b, a
		}
		switch key {
		case "status":
			if a.Status.Severity() != b.Status.Severity() {
				return a.Status.Severity() < b.Status.Severity()
			}
		case "updated":
			at, bt := updatedOrZero(a), updatedOrZero(b)
			if !at.Equal(bt) {
				return at.Before(bt)
			}
		default:
			return byName(a, b)
		}
		return byName(data[i], data[j])
	})
}

func updatedOrZero(s ServiceSummary) time.Time {
	if s.UpdatedAt == nil {
		return time.Time{}
	}
	return *s.UpdatedAt
}

// getServiceHandler handles GET /v1/services/{slug}
func (h *Handler) getServiceHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	slug := strings.ToLower(chi.URLParam(r, "slug"))

	svc, ok := h.catalog.Get(slug)
	if !ok {
		h.writeError(w, r, fmt.Errorf("service %q: %w", slug, apperrors.ErrNotFound))
		return
	}

	snap, err := h.resolver.Resolve(ctx, svc)
	if err != nil {
		logger.WithContext(ctx).Warn("Failed to resolve snapshot", "service", slug, "error", err)
	}

	stored, err := h.store.GetStatus(ctx, slug)
	if err != nil {
		logger.WithContext(ctx).Warn("Failed to read stored status", "service", slug, "error", err)
		stored = nil
	}

	detail := ServiceDetail{
		Service:  svc,
		Snapshot: snap,
		Display:  snap.Status.Display(),
		Stored:   stored,
	}

	w.Header().Set("Cache-Control", "public, max-age=60")
	h.writeJSONResponse(w, http.StatusOK, detail)
}

// listStatusesHandler handles GET /v1/statuses
func (h *Handler) listStatusesHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rows, err := h.store.ListStatuses(ctx)
	if err != nil {
		logger.WithContext(ctx).Error("Failed to list statuses", "error", err)
		h.writeError(w, r, err)
		return
	}

	response := map[string]interface{}{
		"data":      rows,
		"count":     len(rows),
		"timestamp": time.Now().UTC(),
	}
	h.writeJSONResponse(w, http.StatusOK, response)
}

// statusDisplayHandler handles GET /v1/status-display
func (h *Handler) statusDisplayHandler(w http.ResponseWriter, r *http.Request) {
	lookup := make(map[models.Status]models.Display, len(models.AllStatuses))
	for _, st := range models.AllStatuses {
		lookup[st] = st.Display()
	}

	w.Header().Set("Cache-Control", "public, max-age=3600")
	h.writeJSONResponse(w, http.StatusOK, lookup)
}
