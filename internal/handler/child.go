package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/outplay/internal/model"
)

type ChildHandler struct {
	children ChildReader
	logger   *slog.Logger
}

func NewChildHandler(children ChildReader, logger *slog.Logger) *ChildHandler {
	return &ChildHandler{children: children, logger: logger}
}

func (h *ChildHandler) GetPoints(w http.ResponseWriter, r *http.Request) {
	id, ok := parseChildID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid child id")
		return
	}

	child, err := h.children.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("get child points", "error", err, "child_id", id)
		writeError(w, http.StatusInternalServerError, "Failed to load child points")
		return
	}
	if child == nil {
		writeError(w, http.StatusNotFound, "Child not found")
		return
	}

	writeJSON(w, http.StatusOK, child)
}

// List is the leaderboard: highest total first.
func (h *ChildHandler) List(w http.ResponseWriter, r *http.Request) {
	children, err := h.children.List(r.Context())
	if err != nil {
		h.logger.Error("list children", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load children")
		return
	}
	if children == nil {
		children = []model.Child{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"children": children})
}
