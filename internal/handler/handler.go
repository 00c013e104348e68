package handler

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dukerupert/outplay/internal/model"
	"github.com/dukerupert/outplay/internal/store"
	"github.com/dukerupert/outplay/internal/websocket"
)

// ActivityLister reads the activity catalog.
type ActivityLister interface {
	List(ctx context.Context, category string) ([]model.Activity, error)
}

// ChildReader reads children and their point totals.
type ChildReader interface {
	GetByID(ctx context.Context, id int64) (*model.Child, error)
	List(ctx context.Context) ([]model.Child, error)
}

// CompletionRecorder stores completions and reads a child's history.
type CompletionRecorder interface {
	Record(ctx context.Context, p store.RecordParams) (*store.Recorded, error)
	ListByChild(ctx context.Context, childID int64, limit int) ([]model.Completion, error)
	Summary(ctx context.Context, childID int64, now time.Time) (*model.ChildSummary, error)
}

// Broadcaster pushes change notifications to connected clients.
type Broadcaster interface {
	Broadcast(msg websocket.Message)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// parseChildID reads the {childId} path value as a positive integer.
func parseChildID(r *http.Request) (int64, bool) {
	n, ok := parseIntString(r.PathValue("childId"))
	if !ok || n <= 0 {
		return 0, false
	}
	return n, true
}

// parseIntString accepts decimal integers and integral decimals such as
// "25.0". Values outside the int32 range are rejected.
func parseIntString(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, inRange(n)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return floatToInt(f)
}

// intValue converts a JSON value decoded with UseNumber into an integer.
// Booleans, objects and arrays are never integers.
func intValue(v any) (int64, bool) {
	switch v := v.(type) {
	case json.Number:
		return parseIntString(v.String())
	case string:
		return parseIntString(v)
	default:
		return 0, false
	}
}

func floatToInt(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0, false
	}
	return int64(f), true
}

func inRange(n int64) bool {
	return n <= math.MaxInt32 && n >= math.MinInt32
}
