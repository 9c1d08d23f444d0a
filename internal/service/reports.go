package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/headless-pm/progress-tracker/internal/database"
	"github.com/headless-pm/progress-tracker/internal/models"
	"github.com/headless-pm/progress-tracker/internal/status"
)

// ReportService applies end-of-day updates to a report and cascades the result
// into the claimed tasks and their projects.
type ReportService struct {
	db       *database.Database
	clock    clock
	projects *ProjectService
	log      *slog.Logger
}

func NewReportService(db *database.Database, clk clock, projects *ProjectService) *ReportService {
	return &ReportService{db: db, clock: clk, projects: projects, log: logger("ReportService")}
}

// ClaimUpdate changes one claim; nil fields are left as they are.
type ClaimUpdate struct {
	TaskID       uint               `json:"task_id" validate:"required"`
	SubtaskIndex int                `json:"subtask_index" validate:"gte=0"`
	Status       *models.WorkStatus `json:"status"`
	Remarks      *string            `json:"remarks"`
	TimeSpent    *float64           `json:"time_spent" validate:"omitempty,gte=0"`
}

type submitRequest struct {
	Updates []ClaimUpdate `validate:"required,min=1,dive"`
}

// SubmitReport applies updates to the report's claims and persists them, then
// rederives the status of every touched task from all of that day's claims and
// the status of each task's project. The cascade is best effort: a task that
// cannot be loaded or saved is logged and skipped.
func (s *ReportService) SubmitReport(ctx context.Context, actor Actor, reportID uint, updates []ClaimUpdate) (*models.DailyTaskReport, error) {
	if err := validateStruct(submitRequest{Updates: updates}); err != nil {
		return nil, err
	}
	for _, u := range updates {
		if u.Status != nil && !u.Status.Valid() {
			return nil, validationError("unknown claim status %q", *u.Status)
		}
	}

	report, err := s.db.GetReport(ctx, reportID)
	if err != nil {
		return nil, lookupError("report", reportID, err)
	}
	if report.UserID != actor.ID && !actor.CanManage() {
		return nil, fmt.Errorf("report %d belongs to another user: %w", reportID, ErrForbidden)
	}
	s.log.Info("submit-report:start", "reportID", reportID, "userID", report.UserID, "updates", len(updates))

	index := make(map[string]int, len(report.Claims))
	for i, c := range report.Claims {
		index[c.Key()] = i
	}

	var touched []uint
	seen := make(map[uint]struct{})
	for _, u := range updates {
		key := models.ClaimKey(u.TaskID, u.SubtaskIndex)
		i, ok := index[key]
		if !ok {
			s.log.Warn("submit-report:unclaimed-update", "reportID", reportID, "key", key)
			continue
		}
		applyClaimUpdate(&report.Claims[i], u)
		if _, dup := seen[u.TaskID]; !dup {
			seen[u.TaskID] = struct{}{}
			touched = append(touched, u.TaskID)
		}
	}

	now := s.clock.Now()
	report.Submitted = true
	report.SubmittedAt = &now
	if err := s.db.SaveReport(ctx, report); err != nil {
		s.log.Error("submit-report:save-failed", "reportID", reportID, "err", err)
		return nil, fmt.Errorf("failed to save report %d: %w", reportID, err)
	}

	for _, taskID := range touched {
		s.cascadeTask(ctx, taskID, report.Date)
	}

	s.log.Info("submit-report:success", "reportID", reportID, "tasks", len(touched))
	return report, nil
}

func applyClaimUpdate(c *models.Claim, u ClaimUpdate) {
	if u.Status != nil {
		c.Status = *u.Status
	}
	if u.Remarks != nil {
		c.Remarks = *u.Remarks
	}
	if u.TimeSpent != nil {
		c.TimeSpent = *u.TimeSpent
	}
}

// cascadeTask rederives one task from every claim on it for date and then
// refreshes its project.
func (s *ReportService) cascadeTask(ctx context.Context, taskID uint, date string) {
	task, err := s.db.GetTask(ctx, taskID)
	if err != nil {
		s.log.Error("submit-report:task-skipped", "taskID", taskID, "err", err)
		cascadeSkipped.WithLabelValues("task").Inc()
		return
	}

	claims, err := s.db.ClaimsForTask(ctx, taskID, date)
	if err != nil {
		s.log.Error("submit-report:task-skipped", "taskID", taskID, "err", err)
		cascadeSkipped.WithLabelValues("task").Inc()
		return
	}

	statuses := status.SubtaskStatuses(task.Subtasks, claims)
	for i, st := range statuses {
		task.Subtasks[i].Completed = st == models.WorkStatusCompleted
	}
	previous := task.Status
	task.Status = status.CategoricalReducer{}.Reduce(statuses)

	if err := s.db.SaveTask(ctx, task); err != nil {
		s.log.Error("submit-report:task-skipped", "taskID", taskID, "err", err)
		cascadeSkipped.WithLabelValues("task").Inc()
		return
	}
	s.log.Debug("submit-report:task-updated", "taskID", taskID, "from", previous, "to", task.Status)

	if task.ProjectID == nil {
		return
	}
	if _, err := s.projects.Recompute(ctx, *task.ProjectID, "cascade"); err != nil {
		s.log.Error("submit-report:project-skipped", "taskID", taskID, "projectID", *task.ProjectID, "err", err)
		cascadeSkipped.WithLabelValues("project").Inc()
	}
}
