package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dukerupert/outplay/internal/config"
	"github.com/dukerupert/outplay/internal/database"
	"github.com/dukerupert/outplay/internal/logging"
	"github.com/dukerupert/outplay/internal/maintenance"
	"github.com/dukerupert/outplay/internal/server"
	"github.com/dukerupert/outplay/internal/weather"
)

func main() {
	configPath := flag.String("config", "", "path to outplay.yaml (default: search . and ./config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := logging.Setup(cfg.Log.Level, cfg.Log.Format)

	db, err := database.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		logger.Error("failed to open database", "error", err, "driver", cfg.Database.Driver)
		os.Exit(1)
	}
	defer db.Close()
	if cfg.Database.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	}

	weatherSvc := weather.NewService(weather.Config{
		Latitude:        cfg.Weather.Latitude,
		Longitude:       cfg.Weather.Longitude,
		TemperatureUnit: cfg.Weather.TemperatureUnit,
	}, logger.With("component", "weather"))

	srv := server.New(db, cfg.Server, weatherSvc, logger)

	// A nil *RateLimiter must not become a non-nil Cleaner.
	var cleaner maintenance.Cleaner
	if rl := srv.RateLimiter(); rl != nil {
		cleaner = rl
	}
	sched, err := maintenance.New(cleaner, srv.ChildStore(), logger.With("component", "maintenance"))
	if err != nil {
		logger.Error("failed to create scheduler", "error", err)
		os.Exit(1)
	}
	sched.Start()

	httpServer := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.Server.RequestTimeout + 5*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.Info("outplay starting",
			"addr", httpServer.Addr,
			"driver", db.Driver(),
			"weather", weatherSvc.Configured(),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	srv.Hub().Close()
	sched.Stop(ctx)
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}
