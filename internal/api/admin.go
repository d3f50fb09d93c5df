package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	apperrors "github.com/rajasatyajit/StatusAggregator/internal/errors"
	"github.com/rajasatyajit/StatusAggregator/internal/logger"
)

// syncHandler handles POST /v1/admin/sync. The run is detached from the
// request so a dropped client does not abort it mid-way.
func (h *Handler) syncHandler(w http.ResponseWriter, r *http.Request) {
	log := logger.WithContext(r.Context())
	if h.syncer == nil {
		h.writeError(w, r, fmt.Errorf("sync: %w", apperrors.ErrServiceUnavailable))
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), h.syncTimeout)
	defer cancel()

	res, err := h.syncer.RunOnce(ctx)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrSyncInProgress):
		case errors.Is(err, context.DeadlineExceeded):
			log.Error("Manual sync timed out", "error", err)
			err = fmt.Errorf("sync: %w after %s", apperrors.ErrTimeout, h.syncTimeout)
		default:
			log.Error("Manual sync failed", "error", err)
		}
		h.writeError(w, r, err)
		return
	}

	if h.resolver != nil {
		if err := h.resolver.Invalidate(ctx); err != nil {
			log.Warn("Failed to invalidate snapshot cache", "error", err)
		}
	}

	log.Info("Manual sync completed", "run_id", res.RunID, "changes", res.TotalChanges)
	h.writeJSONResponse(w, http.StatusOK, res)
}
