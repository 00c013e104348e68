package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dukerupert/outplay/internal/model"
	"github.com/dukerupert/outplay/internal/store"
	"github.com/dukerupert/outplay/internal/testutil"
	"github.com/dukerupert/outplay/internal/weather"
)

type activitiesResponse struct {
	Activities []model.ActivityView `json:"activities"`
}

func TestListActivities(t *testing.T) {
	db := testutil.OpenTestDB(t)
	mux := routes(store.NewActivityStore(db), store.NewChildStore(db), store.NewCompletionStore(db), nil)

	bareID := testutil.InsertActivity(t, db, "Puddle Jumping", nil, nil, nil, nil)

	rec := do(t, mux, "GET", "/api/activities", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp activitiesResponse
	decodeBody(t, rec, &resp)

	if len(resp.Activities) != 7 {
		t.Fatalf("activities = %d, want 7", len(resp.Activities))
	}
	first := resp.Activities[0]
	if first.ID != 1 || first.Name != "Nature Scavenger Hunt" || first.DurationMinutes != 30 || first.Points != 40 {
		t.Errorf("first = %+v", first)
	}

	bare := resp.Activities[6]
	if bare.ID != bareID {
		t.Fatalf("last id = %d, want %d", bare.ID, bareID)
	}
	if bare.Description != nil || bare.Category != nil {
		t.Errorf("nullable fields = %v, %v; want nil", bare.Description, bare.Category)
	}
	if bare.DurationMinutes != 20 || bare.Points != 20 {
		t.Errorf("defaults = %d min, %d pts; want 20, 20", bare.DurationMinutes, bare.Points)
	}
}

func TestListActivitiesCategory(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{"", ""},
		{"?category=All", ""},
		{"?category=all", ""},
		{"?category=Active", "Active"},
		{"?category=%20Chill%20", "Chill"},
	}
	for _, tt := range tests {
		f := &fakeStore{}
		rec := do(t, fakeRoutes(f, nil), "GET", "/api/activities"+tt.query, "")
		if rec.Code != http.StatusOK {
			t.Errorf("%q: status = %d", tt.query, rec.Code)
		}
		if f.lastCategory != tt.want {
			t.Errorf("%q: category = %q, want %q", tt.query, f.lastCategory, tt.want)
		}
		if rec.Body.String() != "{\"activities\":[]}\n" {
			t.Errorf("%q: body = %q", tt.query, rec.Body.String())
		}
	}
}

func TestListActivitiesFilterRealStore(t *testing.T) {
	db := testutil.OpenTestDB(t)
	mux := routes(store.NewActivityStore(db), store.NewChildStore(db), store.NewCompletionStore(db), nil)

	rec := do(t, mux, "GET", "/api/activities?category=explore", "")
	var resp activitiesResponse
	decodeBody(t, rec, &resp)
	if len(resp.Activities) != 2 || resp.Activities[0].ID != 1 || resp.Activities[1].ID != 6 {
		t.Errorf("explore activities = %+v, want ids 1 and 6", resp.Activities)
	}
}

func TestListActivitiesError(t *testing.T) {
	f := &fakeStore{err: errors.New("no such table")}
	rec := do(t, fakeRoutes(f, nil), "GET", "/api/activities", "")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if got := errorOf(t, rec); got != "Failed to load activities" {
		t.Errorf("error = %q", got)
	}
}

type fixedConditions weather.Conditions

func (c fixedConditions) Conditions(ctx context.Context) weather.Conditions {
	return weather.Conditions(c)
}

func TestConditions(t *testing.T) {
	h := NewConditionsHandler(fixedConditions{Configured: true, Available: true, Temperature: 70, Unit: "F", Verdict: weather.VerdictGreat})
	rec := httptest.NewRecorder()
	h.Get(rec, httptest.NewRequest("GET", "/api/conditions", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var got weather.Conditions
	decodeBody(t, rec, &got)
	if got.Verdict != weather.VerdictGreat || got.Temperature != 70 {
		t.Errorf("conditions = %+v", got)
	}
}
