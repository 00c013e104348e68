package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/outplay/internal/model"
	"github.com/dukerupert/outplay/internal/store"
	"github.com/dukerupert/outplay/internal/websocket"
)

const (
	DefaultDurationMinutes = 20
	DefaultPointsEarned    = 10

	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100

	maxBodyBytes = 1 << 20
)

type CompletionHandler struct {
	completions CompletionRecorder
	children    ChildReader
	hub         Broadcaster
	logger      *slog.Logger
	now         func() time.Time
}

func NewCompletionHandler(completions CompletionRecorder, children ChildReader, hub Broadcaster, logger *slog.Logger) *CompletionHandler {
	return &CompletionHandler{completions: completions, children: children, hub: hub, logger: logger, now: time.Now}
}

func (h *CompletionHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

type completionRequest struct {
	ActivityID      any `json:"activityId"`
	DurationMinutes any `json:"durationMinutes"`
	PointsEarned    any `json:"pointsEarned"`
}

type completionResponse struct {
	Completion struct {
		ID          int64     `json:"completion_id"`
		CompletedAt time.Time `json:"completed_at"`
	} `json:"completion"`
	Child model.Child `json:"child"`
}

// Create records a finished activity for the child in the path and adds
// its points to the child's total. Input is validated in order (child id,
// activity id, duration, points) before any storage access.
func (h *CompletionHandler) Create(w http.ResponseWriter, r *http.Request) {
	childID, ok := parseChildID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid child id")
		return
	}

	req, err := decodeCompletionRequest(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	activityID, ok := intValue(req.ActivityID)
	if !ok || activityID <= 0 {
		writeError(w, http.StatusBadRequest, "Invalid activity id")
		return
	}

	duration := int64(DefaultDurationMinutes)
	if req.DurationMinutes != nil {
		duration, ok = intValue(req.DurationMinutes)
		if !ok || duration <= 0 {
			writeError(w, http.StatusBadRequest, "Invalid duration")
			return
		}
	}

	points := int64(DefaultPointsEarned)
	if req.PointsEarned != nil {
		points, ok = intValue(req.PointsEarned)
		if !ok || points < 0 {
			writeError(w, http.StatusBadRequest, "Invalid points")
			return
		}
	}

	rec, err := h.completions.Record(r.Context(), store.RecordParams{
		ChildID:         childID,
		ActivityID:      activityID,
		DurationMinutes: int(duration),
		PointsEarned:    int(points),
	})
	switch {
	case errors.Is(err, store.ErrChildNotFound):
		writeError(w, http.StatusNotFound, "Child not found")
		return
	case errors.Is(err, store.ErrActivityNotFound):
		writeError(w, http.StatusNotFound, "Activity not found")
		return
	case err != nil:
		h.logger.Error("record completion", "error", err, "child_id", childID, "activity_id", activityID)
		writeError(w, http.StatusInternalServerError, "Failed to save completion")
		return
	}

	h.logger.Info("completion recorded",
		"completion_id", rec.Completion.ID,
		"child_id", rec.Child.ID,
		"activity_id", activityID,
		"points_earned", points,
		"total_points", rec.Child.TotalPoints,
	)

	h.broadcast(websocket.NewMessage("completion", "recorded", rec.Completion.ID, map[string]any{
		"child_id":      rec.Child.ID,
		"total_points":  rec.Child.TotalPoints,
		"points_earned": rec.Completion.PointsEarned,
	}))

	var resp completionResponse
	resp.Completion.ID = rec.Completion.ID
	resp.Completion.CompletedAt = rec.Completion.CompletedAt
	resp.Child = rec.Child
	writeJSON(w, http.StatusCreated, resp)
}

// decodeCompletionRequest reads the body as a JSON object. An empty body
// is the same as {}.
func decodeCompletionRequest(w http.ResponseWriter, r *http.Request) (completionRequest, error) {
	var req completionRequest

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return req, err
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return req, nil
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		return req, err
	}
	if dec.More() {
		return req, errors.New("trailing data after JSON object")
	}
	return req, nil
}

// ListByChild returns a child's most recent completions. ?limit= defaults
// to 20 and is capped at 100.
func (h *CompletionHandler) ListByChild(w http.ResponseWriter, r *http.Request) {
	childID, ok := parseChildID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid child id")
		return
	}

	limit := int64(DefaultHistoryLimit)
	if s := r.URL.Query().Get("limit"); s != "" {
		limit, ok = parseIntString(s)
		if !ok || limit <= 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = min(limit, MaxHistoryLimit)
	}

	child, err := h.children.GetByID(r.Context(), childID)
	if err != nil {
		h.logger.Error("get child", "error", err, "child_id", childID)
		writeError(w, http.StatusInternalServerError, "Failed to load completions")
		return
	}
	if child == nil {
		writeError(w, http.StatusNotFound, "Child not found")
		return
	}

	completions, err := h.completions.ListByChild(r.Context(), childID, int(limit))
	if err != nil {
		h.logger.Error("list completions", "error", err, "child_id", childID)
		writeError(w, http.StatusInternalServerError, "Failed to load completions")
		return
	}
	if completions == nil {
		completions = []model.Completion{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"completions": completions})
}

// Summary reports today's and this week's outdoor minutes, the completion
// count and the current day streak for a child, in server local time.
func (h *CompletionHandler) Summary(w http.ResponseWriter, r *http.Request) {
	childID, ok := parseChildID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid child id")
		return
	}

	child, err := h.children.GetByID(r.Context(), childID)
	if err != nil {
		h.logger.Error("get child", "error", err, "child_id", childID)
		writeError(w, http.StatusInternalServerError, "Failed to load summary")
		return
	}
	if child == nil {
		writeError(w, http.StatusNotFound, "Child not found")
		return
	}

	summary, err := h.completions.Summary(r.Context(), childID, h.now())
	if err != nil {
		h.logger.Error("summarize completions", "error", err, "child_id", childID)
		writeError(w, http.StatusInternalServerError, "Failed to load summary")
		return
	}

	writeJSON(w, http.StatusOK, summary)
}
