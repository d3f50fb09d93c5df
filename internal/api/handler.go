package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/rajasatyajit/StatusAggregator/internal/catalog"
	"github.com/rajasatyajit/StatusAggregator/internal/logger"
	middlewares "github.com/rajasatyajit/StatusAggregator/internal/middleware"
	"github.com/rajasatyajit/StatusAggregator/internal/models"
	"github.com/rajasatyajit/StatusAggregator/internal/pipeline"
	"github.com/rajasatyajit/StatusAggregator/internal/store"
)

// SnapshotResolver produces the live, cached snapshot of a service
type SnapshotResolver interface {
	Resolve(ctx context.Context, svc models.Service) (models.Snapshot, error)
	Invalidate(ctx context.Context) error
}

// Syncer runs one status sync
type Syncer interface {
	RunOnce(ctx context.Context) (pipeline.Result, error)
}

// BuildInfo identifies the running binary
type BuildInfo struct {
	Version   string
	BuildTime string
	GitCommit string
}

// Handler handles HTTP requests for the API
type Handler struct {
	store       store.Store
	catalog     *catalog.Catalog
	resolver    SnapshotResolver
	syncer      Syncer
	build       BuildInfo
	startTime   time.Time
	adminSecret string
	syncTimeout time.Duration
}

// NewHandler creates a new API handler
func NewHandler(st store.Store, cat *catalog.Catalog, resolver SnapshotResolver, syncer Syncer, adminSecret string, build BuildInfo) *Handler {
	return &Handler{
		store:       st,
		catalog:     cat,
		resolver:    resolver,
		syncer:      syncer,
		build:       build,
		startTime:   time.Now(),
		adminSecret: adminSecret,
		syncTimeout: 2 * time.Minute,
	}
}

// RegisterRoutes registers all API routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/v1", func(r chi.Router) {
		// Health check endpoints
		r.Get("/health", h.healthHandler)
		r.Get("/health/ready", h.readinessHandler)
		r.Get("/health/live", h.livenessHandler)

		r.Get("/services", h.listServicesHandler)
		r.Get("/services/{slug}", h.getServiceHandler)
		r.Get("/statuses", h.listStatusesHandler)
		r.Get("/status-display", h.statusDisplayHandler)

		r.Get("/version", h.versionHandler)

		r.Route("/admin", func(r chi.Router) {
			r.Use(middlewares.AdminSecret(h.adminSecret))
			r.Post("/sync", h.syncHandler)
		})
	})

	// Root health check
	r.Get("/health", h.healthHandler)
}

// healthHandler provides basic health check
func (h *Handler) healthHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
		"version":   h.build.Version,
	}

	h.writeJSONResponse(w, http.StatusOK, response)
}

// readinessHandler checks if the application is ready to serve traffic
func (h *Handler) readinessHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	checks := map[string]string{
		"store":   "ok",
		"catalog": "ok",
	}

	statusCode := http.StatusOK

	if err := h.store.Health(ctx); err != nil {
		checks["store"] = "error: " + err.Error()
		statusCode = http.StatusServiceUnavailable
	}
	if h.catalog == nil || h.catalog.Len() == 0 {
		checks["catalog"] = "error: no services loaded"
		statusCode = http.StatusServiceUnavailable
	}

	status := "ready"
	if statusCode != http.StatusOK {
		status = "not ready"
	}
	response := map[string]interface{}{
		"status":    status,
		"timestamp": time.Now().UTC(),
		"checks":    checks,
	}

	h.writeJSONResponse(w, statusCode, response)
}

// livenessHandler checks if the application is alive
func (h *Handler) livenessHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "alive",
		"timestamp": time.Now().UTC(),
		"uptime":    time.Since(h.startTime).String(),
	}

	h.writeJSONResponse(w, http.StatusOK, response)
}

// versionHandler returns version information
func (h *Handler) versionHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"version":    h.build.Version,
		"build_time": h.build.BuildTime,
		"git_commit": h.build.GitCommit,
	}

	h.writeJSONResponse(w, http.StatusOK, response)
}

// writeJSONResponse writes a JSON response
func (h *Handler) writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Warn("Failed to encode response", "error", err)
	}
}

// writeErrorResponse writes a standardized error response
func (h *Handler) writeErrorResponse(w http.ResponseWriter, r *http.Request, statusCode int, message string) {
	requestID := chimw.GetReqID(r.Context())
	if requestID == "" {
		requestID = r.Header.Get("X-Request-ID")
	}
	response := ErrorResponse{
		Error:     http.StatusText(statusCode),
		Message:   message,
		Timestamp: time.Now().UTC(),
		RequestID: requestID,
	}

	h.writeJSONResponse(w, statusCode, response)
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error     string    `json:"error"`
	Message   string    `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id,omitempty"`
}
