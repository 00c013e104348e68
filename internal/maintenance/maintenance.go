package maintenance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/dukerupert/outplay/internal/model"
)

const (
	CleanupSpec     = "@every 10m"
	LeaderboardSpec = "@every 1h"

	jobTimeout = 30 * time.Second
)

// Cleaner drops expired rate-limit windows.
type Cleaner interface {
	Cleanup() int
}

// ChildLister lists children for the periodic standings log.
type ChildLister interface {
	List(ctx context.Context) ([]model.Child, error)
}

// Scheduler runs periodic housekeeping on a cron.
type Scheduler struct {
	cron     *cron.Cron
	limiter  Cleaner
	children ChildLister
	logger   *slog.Logger
}

// New builds a scheduler. A nil limiter skips the cleanup job.
func New(limiter Cleaner, children ChildLister, logger *slog.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron:     cron.New(cron.WithLocation(time.UTC)),
		limiter:  limiter,
		children: children,
		logger:   logger,
	}

	if limiter != nil {
		if _, err := s.cron.AddFunc(CleanupSpec, s.CleanupRateLimits); err != nil {
			return nil, fmt.Errorf("add cleanup job: %w", err)
		}
	}
	if _, err := s.cron.AddFunc(LeaderboardSpec, s.LogLeaderboard); err != nil {
		return nil, fmt.Errorf("add leaderboard job: %w", err)
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("maintenance scheduler started", "jobs", len(s.cron.Entries()))
}

// Stop halts the cron and waits for running jobs, up to ctx.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.logger.Warn("maintenance jobs still running at shutdown")
	}
}

func (s *Scheduler) CleanupRateLimits() {
	if n := s.limiter.Cleanup(); n > 0 {
		s.logger.Info("cleaned up rate limit windows", "count", n)
	}
}

// LogLeaderboard logs the child count and the current leader.
func (s *Scheduler) LogLeaderboard() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	children, err := s.children.List(ctx)
	if err != nil {
		s.logger.Error("leaderboard snapshot", "error", err)
		return
	}
	if len(children) == 0 {
		s.logger.Info("leaderboard", "children", 0)
		return
	}

	total := 0
	for _, c := range children {
		total += c.TotalPoints
	}
	leader := children[0]
	s.logger.Info("leaderboard",
		"children", len(children),
		"total_points", total,
		"leader", leader.FirstName,
		"leader_points", leader.TotalPoints,
	)
}
