package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/headless-pm/progress-tracker/internal/database"
	"github.com/robfig/cron/v3"
)

// Sweeper periodically recomputes every project so that an aggregate left stale
// by an interrupted cascade is eventually repaired.
type Sweeper struct {
	db       *database.Database
	projects *ProjectService
	schedule string
	timeout  time.Duration
	cron     *cron.Cron
	jobID    cron.EntryID
	log      *slog.Logger
}

// NewSweeper builds a sweeper for a six-field cron schedule (seconds first).
func NewSweeper(db *database.Database, projects *ProjectService, schedule string, loc *time.Location) *Sweeper {
	if loc == nil {
		loc = time.Local
	}
	return &Sweeper{
		db:       db,
		projects: projects,
		schedule: schedule,
		timeout:  5 * time.Minute,
		cron:     cron.New(cron.WithSeconds(), cron.WithLocation(loc)),
		log:      logger("Sweeper"),
	}
}

// Start registers the job and starts the scheduler. An empty schedule leaves
// the sweeper disabled.
func (s *Sweeper) Start() error {
	if s.schedule == "" {
		s.log.Info("sweep:disabled")
		return nil
	}

	var err error
	s.jobID, err = s.cron.AddFunc(s.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		if _, err := s.RunOnce(ctx); err != nil {
			s.log.Error("sweep:failed", "err", err)
		}
	})
	if err != nil {
		return fmt.Errorf("error scheduling sweep %q: %w", s.schedule, err)
	}

	s.cron.Start()
	s.log.Info("sweep:scheduled", "schedule", s.schedule)
	return nil
}

// Stop halts the scheduler and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info("sweep:stopped")
}

// RunOnce recomputes every project and returns how many were refreshed. A
// project that fails is logged and the sweep moves on.
func (s *Sweeper) RunOnce(ctx context.Context) (int, error) {
	ids, err := s.db.ListProjectIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list projects: %w", err)
	}

	start := time.Now()
	refreshed := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return refreshed, err
		}
		if _, err := s.projects.Recompute(ctx, id, "sweep"); err != nil {
			s.log.Warn("sweep:project-failed", "projectID", id, "err", err)
			continue
		}
		refreshed++
	}

	s.log.Info("sweep:done", "projects", len(ids), "refreshed", refreshed, "duration", time.Since(start))
	return refreshed, nil
}
