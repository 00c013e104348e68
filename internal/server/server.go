package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/outplay/internal/config"
	"github.com/dukerupert/outplay/internal/database"
	"github.com/dukerupert/outplay/internal/handler"
	"github.com/dukerupert/outplay/internal/middleware"
	"github.com/dukerupert/outplay/internal/store"
	"github.com/dukerupert/outplay/internal/weather"
	ws "github.com/dukerupert/outplay/internal/websocket"
)

const rateLimitWindow = time.Minute

type Server struct {
	db          *database.DB
	cfg         config.ServerConfig
	hub         *ws.Hub
	childStore  *store.ChildStore
	activityH   *handler.ActivityHandler
	childH      *handler.ChildHandler
	completionH *handler.CompletionHandler
	conditionsH *handler.ConditionsHandler
	rateLimiter *middleware.RateLimiter
	logger      *slog.Logger
}

func New(db *database.DB, cfg config.ServerConfig, weatherSvc *weather.Service, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	activityStore := store.NewActivityStore(db)
	childStore := store.NewChildStore(db)
	completionStore := store.NewCompletionStore(db)

	// A zero limit disables rate limiting.
	var rl *middleware.RateLimiter
	if cfg.CompletionRateLimit > 0 {
		rl = middleware.NewRateLimiter(cfg.CompletionRateLimit, rateLimitWindow)
	}

	return &Server{
		db:          db,
		cfg:         cfg,
		hub:         hub,
		childStore:  childStore,
		activityH:   handler.NewActivityHandler(activityStore, logger.With("component", "activity")),
		childH:      handler.NewChildHandler(childStore, logger.With("component", "child")),
		completionH: handler.NewCompletionHandler(completionStore, childStore, hub, logger.With("component", "completion")),
		conditionsH: handler.NewConditionsHandler(weatherSvc),
		rateLimiter: rl,
		logger:      logger,
	}
}

// Hub returns the websocket hub completions are broadcast on.
func (s *Server) Hub() *ws.Hub {
	return s.hub
}

// RateLimiter returns the completion rate limiter, or nil when disabled.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) ChildStore() *store.ChildStore {
	return s.childStore
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Websocket connections outlive the request timeout.
	outerMux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub, s.cfg.CORSOrigins, s.logger.With("component", "websocket")))

	apiMux := http.NewServeMux()
	s.registerAPIRoutes(apiMux)
	outerMux.Handle("/", middleware.Timeout(s.cfg.RequestTimeout)(apiMux))

	var h http.Handler = outerMux
	h = middleware.CORS(s.cfg.CORSOrigins)(h)
	h = middleware.RequestLogger(s.logger.With("component", "http"))(h)
	return middleware.RequestID(h)
}

func (s *Server) registerAPIRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/health", s.healthHandler)

	mux.HandleFunc("GET /api/activities", s.activityH.List)
	mux.HandleFunc("GET /api/conditions", s.conditionsH.Get)

	mux.HandleFunc("GET /api/children", s.childH.List)
	mux.HandleFunc("GET /api/children/{childId}/points", s.childH.GetPoints)
	mux.HandleFunc("GET /api/children/{childId}/completions", s.completionH.ListByChild)
	mux.HandleFunc("GET /api/children/{childId}/summary", s.completionH.Summary)
	mux.HandleFunc("POST /api/children/{childId}/completions", s.rateLimitedHandler(s.completionH.Create))
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	return middleware.RateLimit(s.rateLimiter, middleware.ClientIP(s.cfg.TrustedProxy))(h).ServeHTTP
}
