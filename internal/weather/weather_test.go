package weather

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		code int
		want string
	}{
		{0, "Clear sky"},
		{1, "Mainly clear"},
		{2, "Partly cloudy"},
		{3, "Overcast"},
		{45, "Foggy"},
		{48, "Foggy"},
		{51, "Light drizzle"},
		{63, "Moderate rain"},
		{75, "Heavy snow"},
		{95, "Thunderstorm"},
		{99, "Thunderstorm with hail"},
		{999, "Unknown"},
	}

	for _, tt := range tests {
		if got := Describe(tt.code); got != tt.want {
			t.Errorf("Describe(%d) = %q, want %q", tt.code, got, tt.want)
		}
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		code int
		temp float64
		unit string
		want Verdict
	}{
		{"sunny and mild", 0, 72, "fahrenheit", VerdictGreat},
		{"overcast edge of range", 3, 60, "fahrenheit", VerdictGreat},
		{"sunny but cool", 1, 50, "fahrenheit", VerdictOK},
		{"light drizzle", 51, 70, "fahrenheit", VerdictOK},
		{"thunderstorm", 95, 75, "fahrenheit", VerdictStayInside},
		{"heavy rain", 65, 70, "fahrenheit", VerdictStayInside},
		{"freezing", 0, 20, "fahrenheit", VerdictStayInside},
		{"heat", 0, 100, "fahrenheit", VerdictStayInside},
		{"celsius mild", 0, 22, "celsius", VerdictGreat},
		{"celsius freezing", 0, -5, "celsius", VerdictStayInside},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.code, tt.temp, tt.unit); got != tt.want {
				t.Errorf("Classify(%d, %v, %s) = %q, want %q", tt.code, tt.temp, tt.unit, got, tt.want)
			}
		})
	}
}

func TestParseAPIResponse(t *testing.T) {
	payload := `{
		"current": {
			"temperature_2m": 72.5,
			"weather_code": 2
		},
		"daily": {
			"temperature_2m_max": [78.0],
			"temperature_2m_min": [55.0],
			"weather_code": [2]
		}
	}`

	var resp apiResponse
	if err := json.Unmarshal([]byte(payload), &resp); err != nil {
		t.Fatalf("failed to parse API response: %v", err)
	}

	if resp.Current.Temperature != 72.5 {
		t.Errorf("current temp = %v, want 72.5", resp.Current.Temperature)
	}
	if resp.Current.WeatherCode != 2 {
		t.Errorf("current weather code = %d, want 2", resp.Current.WeatherCode)
	}
	if len(resp.Daily.TempMax) != 1 || resp.Daily.TempMax[0] != 78.0 {
		t.Errorf("daily temp max = %v, want [78.0]", resp.Daily.TempMax)
	}
}

func newForecastServer(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if got := r.URL.Query().Get("latitude"); got != "47.6" {
			t.Errorf("latitude = %q, want 47.6", got)
		}
		if got := r.URL.Query().Get("temperature_unit"); got != "fahrenheit" {
			t.Errorf("temperature_unit = %q, want fahrenheit", got)
		}
		w.Write([]byte(`{
			"current": {"temperature_2m": 72.0, "weather_code": 1},
			"daily": {"temperature_2m_max": [78.0], "temperature_2m_min": [58.0], "weather_code": [1]}
		}`))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestConditionsFetchAndCache(t *testing.T) {
	var hits atomic.Int32
	server := newForecastServer(t, &hits)

	svc := NewService(Config{Latitude: "47.6", Longitude: "-122.3"}, testLogger())
	svc.baseURL = server.URL

	now := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	c := svc.Conditions(context.Background())
	if !c.Available || !c.Configured {
		t.Fatalf("conditions = %+v, want available", c)
	}
	if c.Temperature != 72.0 || c.High != 78.0 || c.Low != 58.0 {
		t.Errorf("temps = %v/%v/%v", c.Temperature, c.High, c.Low)
	}
	if c.Unit != "F" {
		t.Errorf("unit = %q, want F", c.Unit)
	}
	if c.Description != "Mainly clear" {
		t.Errorf("description = %q", c.Description)
	}
	if c.Verdict != VerdictGreat {
		t.Errorf("verdict = %q, want great", c.Verdict)
	}
	if c.FetchedAt == nil || !c.FetchedAt.Equal(now) {
		t.Errorf("fetched_at = %v, want %v", c.FetchedAt, now)
	}

	now = now.Add(10 * time.Minute)
	svc.Conditions(context.Background())
	if hits.Load() != 1 {
		t.Errorf("hits = %d, want 1 (cached)", hits.Load())
	}

	now = now.Add(cacheTTL)
	svc.Conditions(context.Background())
	if hits.Load() != 2 {
		t.Errorf("hits = %d, want 2 after expiry", hits.Load())
	}
}

func TestConditionsStaleOnError(t *testing.T) {
	svc := NewService(Config{Latitude: "47.6", Longitude: "-122.3"}, testLogger())

	// Point at a bad URL so fetches fail when cache expires.
	svc.baseURL = "http://127.0.0.1:1"
	fetched := time.Now()
	svc.mu.Lock()
	svc.cached = Conditions{
		Configured:  true,
		Available:   true,
		Temperature: 70.0,
		Unit:        "F",
		Description: "Clear sky",
		Verdict:     VerdictGreat,
		FetchedAt:   &fetched,
	}
	svc.lastFetch = time.Now().Add(-cacheTTL - time.Minute)
	svc.mu.Unlock()

	c := svc.Conditions(context.Background())
	if !c.Available || c.Temperature != 70.0 {
		t.Errorf("conditions = %+v, want stale data on fetch error", c)
	}
}

func TestConditionsUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	svc := NewService(Config{Latitude: "47.6", Longitude: "-122.3", TemperatureUnit: "celsius"}, testLogger())
	svc.baseURL = server.URL

	c := svc.Conditions(context.Background())
	if c.Available {
		t.Error("expected unavailable conditions")
	}
	if !c.Configured {
		t.Error("expected configured")
	}
	if c.Unit != "C" {
		t.Errorf("unit = %q, want C", c.Unit)
	}
}

func TestConditionsNotConfigured(t *testing.T) {
	svc := NewService(Config{}, testLogger())
	svc.baseURL = "http://127.0.0.1:1"

	if svc.Configured() {
		t.Error("expected service to be unconfigured")
	}
	c := svc.Conditions(context.Background())
	if c.Configured {
		t.Error("expected weather to not be configured with empty config")
	}
	if c.Available {
		t.Error("expected weather to not be available with empty config")
	}
}

func TestConditionsConcurrentWithConfigured(t *testing.T) {
	var hits atomic.Int32
	server := newForecastServer(t, &hits)

	svc := NewService(Config{Latitude: "47.6", Longitude: "-122.3"}, testLogger())
	svc.baseURL = server.URL

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if c := svc.Conditions(context.Background()); !c.Configured {
				t.Error("expected configured conditions")
			}
		}()
		go func() {
			defer wg.Done()
			if !svc.Configured() {
				t.Error("expected configured service")
			}
		}()
	}
	wg.Wait()

	if hits.Load() != 1 {
		t.Errorf("hits = %d, want 1", hits.Load())
	}
}
