package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"
)

const cacheTTL = 30 * time.Minute

const defaultBaseURL = "https://api.open-meteo.com/v1/forecast"

// Config holds the location the conditions are reported for.
type Config struct {
	Latitude        string
	Longitude       string
	TemperatureUnit string // "fahrenheit" or "celsius"
}

// Verdict is a one-word answer to "should the kids play outside?".
type Verdict string

const (
	VerdictGreat      Verdict = "great"
	VerdictOK         Verdict = "ok"
	VerdictStayInside Verdict = "stay_inside"
)

// Conditions is the current outdoor forecast plus a play verdict.
type Conditions struct {
	Configured  bool       `json:"configured"`
	Available   bool       `json:"available"`
	Temperature float64    `json:"temperature"`
	High        float64    `json:"high"`
	Low         float64    `json:"low"`
	Unit        string     `json:"unit"`
	WeatherCode int        `json:"weather_code"`
	Description string     `json:"description,omitempty"`
	Verdict     Verdict    `json:"verdict,omitempty"`
	FetchedAt   *time.Time `json:"fetched_at,omitempty"`
}

// Service fetches conditions from Open-Meteo and caches them.
type Service struct {
	config     Config
	configured bool
	client     *http.Client
	baseURL    string
	logger     *slog.Logger
	now        func() time.Time
	mu         sync.RWMutex
	cached     Conditions
	lastFetch  time.Time
}

// NewService creates a weather service. Without a latitude and longitude
// the service is unconfigured and never makes network calls.
func NewService(cfg Config, logger *slog.Logger) *Service {
	if cfg.TemperatureUnit == "" {
		cfg.TemperatureUnit = "fahrenheit"
	}
	configured := cfg.Latitude != "" && cfg.Longitude != ""
	return &Service{
		config:     cfg,
		configured: configured,
		client:     &http.Client{Timeout: 10 * time.Second},
		baseURL:    defaultBaseURL,
		logger:     logger,
		now:        time.Now,
		cached: Conditions{
			Unit:       unitSymbol(cfg.TemperatureUnit),
			Configured: configured,
		},
	}
}

// Configured reports whether a location is set.
func (s *Service) Configured() bool {
	return s.configured
}

// Conditions returns the current conditions, fetching when the cache is
// older than 30 minutes. A failed fetch returns the last good data.
func (s *Service) Conditions(ctx context.Context) Conditions {
	if !s.configured {
		return Conditions{Unit: unitSymbol(s.config.TemperatureUnit)}
	}

	s.mu.RLock()
	if s.fresh() {
		data := s.cached
		s.mu.RUnlock()
		return data
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	// Double-check after acquiring write lock.
	if s.fresh() {
		return s.cached
	}

	data, err := s.fetch(ctx)
	if err != nil {
		s.logger.Warn("weather fetch failed, serving cached conditions", "error", err, "available", s.cached.Available)
		return s.cached
	}

	s.cached = data
	s.lastFetch = s.now()
	return s.cached
}

func (s *Service) fresh() bool {
	return s.cached.Available && s.now().Sub(s.lastFetch) < cacheTTL
}

type apiResponse struct {
	Current struct {
		Temperature float64 `json:"temperature_2m"`
		WeatherCode int     `json:"weather_code"`
	} `json:"current"`
	Daily struct {
		TempMax     []float64 `json:"temperature_2m_max"`
		TempMin     []float64 `json:"temperature_2m_min"`
		WeatherCode []int     `json:"weather_code"`
	} `json:"daily"`
}

func (s *Service) fetch(ctx context.Context) (Conditions, error) {
	q := url.Values{}
	q.Set("latitude", s.config.Latitude)
	q.Set("longitude", s.config.Longitude)
	q.Set("current", "temperature_2m,weather_code")
	q.Set("daily", "temperature_2m_max,temperature_2m_min,weather_code")
	q.Set("timezone", "auto")
	q.Set("forecast_days", "1")
	q.Set("temperature_unit", s.config.TemperatureUnit)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return Conditions{}, fmt.Errorf("build weather request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return Conditions{}, fmt.Errorf("weather API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Conditions{}, fmt.Errorf("weather API returned status %d", resp.StatusCode)
	}

	var apiResp apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return Conditions{}, fmt.Errorf("decode weather response: %w", err)
	}

	fetchedAt := s.now().UTC()
	data := Conditions{
		Configured:  true,
		Available:   true,
		Temperature: apiResp.Current.Temperature,
		Unit:        unitSymbol(s.config.TemperatureUnit),
		WeatherCode: apiResp.Current.WeatherCode,
		Description: Describe(apiResp.Current.WeatherCode),
		Verdict:     Classify(apiResp.Current.WeatherCode, apiResp.Current.Temperature, s.config.TemperatureUnit),
		FetchedAt:   &fetchedAt,
	}
	if len(apiResp.Daily.TempMax) > 0 {
		data.High = apiResp.Daily.TempMax[0]
	}
	if len(apiResp.Daily.TempMin) > 0 {
		data.Low = apiResp.Daily.TempMin[0]
	}
	return data, nil
}

func unitSymbol(unit string) string {
	if unit == "celsius" {
		return "C"
	}
	return "F"
}

// Classify turns a WMO code and temperature into a play verdict.
// Storms, heavy or freezing precipitation, and temperatures below freezing
// or above 95°F keep kids inside. Clear to overcast skies between 60°F and
// 85°F are great.
func Classify(code int, temp float64, unit string) Verdict {
	f := temp
	if unit == "celsius" {
		f = temp*9/5 + 32
	}

	switch code {
	case 56, 57, 65, 66, 67, 75, 82, 86, 95, 96, 99:
		return VerdictStayInside
	}
	if f < 32 || f > 95 {
		return VerdictStayInside
	}
	if code <= 3 && f >= 60 && f <= 85 {
		return VerdictGreat
	}
	return VerdictOK
}

// Describe maps a WMO weather code to a human-readable description.
func Describe(code int) string {
	switch code {
	case 0:
		return "Clear sky"
	case 1:
		return "Mainly clear"
	case 2:
		return "Partly cloudy"
	case 3:
		return "Overcast"
	case 45, 48:
		return "Foggy"
	case 51:
		return "Light drizzle"
	case 53:
		return "Moderate drizzle"
	case 55:
		return "Dense drizzle"
	case 56, 57:
		return "Freezing drizzle"
	case 61:
		return "Slight rain"
	case 63:
		return "Moderate rain"
	case 65:
		return "Heavy rain"
	case 66, 67:
		return "Freezing rain"
	case 71:
		return "Slight snow"
	case 73:
		return "Moderate snow"
	case 75:
		return "Heavy snow"
	case 77:
		return "Snow grains"
	case 80:
		return "Slight showers"
	case 81:
		return "Moderate showers"
	case 82:
		return "Violent showers"
	case 85:
		return "Slight snow showers"
	case 86:
		return "Heavy snow showers"
	case 95:
		return "Thunderstorm"
	case 96, 99:
		return "Thunderstorm with hail"
	default:
		return "Unknown"
	}
}
