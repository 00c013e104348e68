package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/outplay/internal/activity"
)

type ActivityHandler struct {
	activities ActivityLister
	logger     *slog.Logger
}

func NewActivityHandler(activities ActivityLister, logger *slog.Logger) *ActivityHandler {
	return &ActivityHandler{activities: activities, logger: logger}
}

// List serves the catalog with display defaults applied. An optional
// ?category= narrows it; "All" means no filter.
func (h *ActivityHandler) List(w http.ResponseWriter, r *http.Request) {
	category := activity.NormalizeCategory(r.URL.Query().Get("category"))

	activities, err := h.activities.List(r.Context(), category)
	if err != nil {
		h.logger.Error("list activities", "error", err, "category", category)
		writeError(w, http.StatusInternalServerError, "Failed to load activities")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"activities": activity.PresentAll(activities)})
}
