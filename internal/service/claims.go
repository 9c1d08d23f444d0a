package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/headless-pm/progress-tracker/internal/database"
	"github.com/headless-pm/progress-tracker/internal/models"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	unknownTask    = "Unknown Task"
	unknownSubtask = "Unknown Subtask"
	unknownProject = "Unknown Project"
)

// ClaimService hands out daily subtask claims so that no subtask has two
// claimants on the same date.
type ClaimService struct {
	db       *database.Database
	clock    clock
	attempts int
	log      *slog.Logger

	// beforeWrite runs between the availability check and the write. Tests
	// use it to interleave a competing writer.
	beforeWrite func(attempt int)
}

func NewClaimService(db *database.Database, clk clock, attempts int) *ClaimService {
	return &ClaimService{db: db, clock: clk, attempts: attempts, log: logger("ClaimService")}
}

type SubtaskRef struct {
	TaskID       uint `json:"task_id" validate:"required"`
	SubtaskIndex int  `json:"subtask_index" validate:"gte=0"`
}

func (r SubtaskRef) Key() string {
	return models.ClaimKey(r.TaskID, r.SubtaskIndex)
}

type ClaimRequest struct {
	UserID   uint         `json:"user_id" validate:"required"`
	Date     string       `json:"date" validate:"required,day"`
	Subtasks []SubtaskRef `json:"subtasks" validate:"required,min=1,dive"`
}

type ClaimResult struct {
	Report *models.DailyTaskReport `json:"report"`
	// Accepted lists keys written by this request.
	Accepted []string `json:"accepted"`
	// AlreadyHeld lists keys the caller had claimed before this request.
	AlreadyHeld []string `json:"already_held"`
	// Rejected lists keys another user holds.
	Rejected []string `json:"rejected"`
}

// ReconcileClaims accepts whichever requested subtasks nobody else holds on the
// date and merges them into the caller's report for that date. If every
// requested subtask is taken it fails with an *AllClaimedError and writes
// nothing.
//
// Availability is checked before the write, and the unique slot index rejects
// a write that lost a race in between; the whole pass is then retried so the
// winner's claim shows up as rejected.
func (s *ClaimService) ReconcileClaims(ctx context.Context, req ClaimRequest) (*ClaimResult, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	timer := prometheus.NewTimer(reconcileDuration)
	defer timer.ObserveDuration()

	refs := dedupeRefs(req.Subtasks)
	s.log.Info("reconcile-claims:start", "userID", req.UserID, "date", req.Date, "requested", len(refs))

	for attempt := 1; ; attempt++ {
		res, err := s.reconcileOnce(ctx, req.UserID, req.Date, refs, attempt)
		if !errors.Is(err, ErrClaimConflict) {
			return res, err
		}
		claimConflicts.Inc()
		s.log.Warn("reconcile-claims:conflict", "userID", req.UserID, "date", req.Date, "attempt", attempt)
		if attempt >= s.attempts {
			return nil, err
		}
	}
}

func (s *ClaimService) reconcileOnce(ctx context.Context, userID uint, date string, refs []SubtaskRef, attempt int) (*ClaimResult, error) {
	taskIDs := distinctTaskIDs(refs)

	tasks, err := s.db.GetTasks(ctx, taskIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load tasks: %w", err)
	}

	held, err := s.db.OtherUsersClaims(ctx, date, taskIDs, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load claims for %s: %w", date, err)
	}
	taken := make(map[string]struct{}, len(held))
	for _, c := range held {
		taken[c.Key()] = struct{}{}
	}

	res := &ClaimResult{}
	var free []models.Claim
	for _, ref := range refs {
		if _, ok := taken[ref.Key()]; ok {
			res.Rejected = append(res.Rejected, ref.Key())
			continue
		}
		free = append(free, newClaim(ref, tasks))
	}

	if len(free) == 0 {
		claimsRejected.Add(float64(len(res.Rejected)))
		s.log.Info("reconcile-claims:all-claimed", "userID", userID, "date", date, "rejected", res.Rejected)
		return nil, &AllClaimedError{Rejected: res.Rejected}
	}

	if s.beforeWrite != nil {
		s.beforeWrite(attempt)
	}

	err = s.db.Transaction(ctx, func(tx *database.Database) error {
		report, err := tx.GetReportForDay(ctx, userID, date)
		if database.IsNotFound(err) {
			report = &models.DailyTaskReport{UserID: userID, Date: date, Claims: free}
			if err := tx.CreateReport(ctx, report); err != nil {
				return err
			}
			res.Report = report
			res.Accepted = claimKeys(free)
			return nil
		}
		if err != nil {
			return err
		}

		existing := make(map[string]struct{}, len(report.Claims))
		for _, c := range report.Claims {
			existing[c.Key()] = struct{}{}
		}
		var fresh []models.Claim
		for _, c := range free {
			if _, ok := existing[c.Key()]; ok {
				res.AlreadyHeld = append(res.AlreadyHeld, c.Key())
				continue
			}
			fresh = append(fresh, c)
		}

		res.Report = report
		if len(fresh) == 0 {
			return nil
		}
		if err := tx.AppendClaims(ctx, report, fresh, s.clock.Now()); err != nil {
			return err
		}
		res.Accepted = claimKeys(fresh)
		return nil
	})
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, fmt.Errorf("%w: %v", ErrClaimConflict, err)
		}
		return nil, fmt.Errorf("failed to save claims: %w", err)
	}

	claimsAccepted.Add(float64(len(res.Accepted)))
	claimsRejected.Add(float64(len(res.Rejected)))
	s.log.Info("reconcile-claims:success",
		"userID", userID,
		"date", date,
		"reportID", res.Report.ID,
		"accepted", len(res.Accepted),
		"alreadyHeld", len(res.AlreadyHeld),
		"rejected", len(res.Rejected),
	)
	return res, nil
}

// ClaimedSubtasks lists the subtask indexes of a task anyone has claimed on
// date, or today when date is empty.
func (s *ClaimService) ClaimedSubtasks(ctx context.Context, taskID uint, date string) ([]int, error) {
	if date == "" {
		date = s.clock.Today()
	}
	if err := validate.Var(date, "day"); err != nil {
		return nil, validationError("date %q is not YYYY-MM-DD", date)
	}

	claims, err := s.db.ClaimsForTask(ctx, taskID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load claims of task %d: %w", taskID, err)
	}

	seen := make(map[int]struct{}, len(claims))
	indexes := make([]int, 0, len(claims))
	for _, c := range claims {
		if _, ok := seen[c.SubtaskIndex]; ok {
			continue
		}
		seen[c.SubtaskIndex] = struct{}{}
		indexes = append(indexes, c.SubtaskIndex)
	}
	sort.Ints(indexes)
	return indexes, nil
}

// ReportForDay returns the user's report for date, or today when date is empty.
func (s *ClaimService) ReportForDay(ctx context.Context, userID uint, date string) (*models.DailyTaskReport, error) {
	if date == "" {
		date = s.clock.Today()
	}
	report, err := s.db.GetReportForDay(ctx, userID, date)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, fmt.Errorf("report of user %d for %s: %w", userID, date, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load report: %w", err)
	}
	return report, nil
}

// Today is the calendar date claims default to.
func (s *ClaimService) Today() string {
	return s.clock.Today()
}

func newClaim(ref SubtaskRef, tasks map[uint]models.Task) models.Claim {
	c := models.Claim{
		TaskID:       ref.TaskID,
		SubtaskIndex: ref.SubtaskIndex,
		TaskTitle:    unknownTask,
		SubtaskTitle: unknownSubtask,
		ProjectTitle: unknownProject,
		Status:       models.WorkStatusPending,
	}
	task, ok := tasks[ref.TaskID]
	if !ok {
		return c
	}
	c.TaskTitle = task.Title
	if ref.SubtaskIndex < len(task.Subtasks) {
		c.SubtaskTitle = task.Subtasks[ref.SubtaskIndex].Title
	}
	if task.Project != nil {
		c.ProjectTitle = task.Project.Title
	}
	return c
}

func dedupeRefs(refs []SubtaskRef) []SubtaskRef {
	seen := make(map[string]struct{}, len(refs))
	out := make([]SubtaskRef, 0, len(refs))
	for _, r := range refs {
		if _, ok := seen[r.Key()]; ok {
			continue
		}
		seen[r.Key()] = struct{}{}
		out = append(out, r)
	}
	return out
}

func distinctTaskIDs(refs []SubtaskRef) []uint {
	seen := make(map[uint]struct{}, len(refs))
	ids := make([]uint, 0, len(refs))
	for _, r := range refs {
		if _, ok := seen[r.TaskID]; ok {
			continue
		}
		seen[r.TaskID] = struct{}{}
		ids = append(ids, r.TaskID)
	}
	return ids
}

func claimKeys(claims []models.Claim) []string {
	keys := make([]string, len(claims))
	for i, c := range claims {
		keys[i] = c.Key()
	}
	return keys
}
