package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/headless-pm/progress-tracker/internal/database"
	"github.com/headless-pm/progress-tracker/internal/models"
	"github.com/headless-pm/progress-tracker/internal/status"
)

type ProjectService struct {
	db     *database.Database
	clock  clock
	notify *NotificationService
	log    *slog.Logger
}

func NewProjectService(db *database.Database, clk clock, notify *NotificationService) *ProjectService {
	return &ProjectService{db: db, clock: clk, notify: notify, log: logger("ProjectService")}
}

type CreateProjectInput struct {
	Title       string     `json:"title" validate:"required"`
	Description string     `json:"description"`
	Budget      float64    `json:"budget" validate:"gte=0"`
	ClientID    *uint      `json:"client_id"`
	ManagerID   *uint      `json:"manager_id"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
}

// UpdateProjectInput is a partial update; nil fields are left alone. Status
// only accepts the OnHold override or a value that lifts it, since every other
// status is derived from the tasks.
type UpdateProjectInput struct {
	Title       *string               `json:"title" validate:"omitempty,min=1"`
	Description *string               `json:"description"`
	Budget      *float64              `json:"budget" validate:"omitempty,gte=0"`
	Status      *models.ProjectStatus `json:"status"`
	ManagerID   *uint                 `json:"manager_id"`
	EndDate     *time.Time            `json:"end_date"`
}

type TaskInput struct {
	Title       string            `json:"title" validate:"required"`
	Description string            `json:"description"`
	AssigneeID  *uint             `json:"assignee_id"`
	Status      models.TaskStatus `json:"status"`
	LoggedHours float64           `json:"logged_hours" validate:"gte=0"`
	DueDate     *time.Time        `json:"due_date"`
}

type UpdateTaskInput struct {
	Title       *string            `json:"title" validate:"omitempty,min=1"`
	Description *string            `json:"description"`
	AssigneeID  *uint              `json:"assignee_id"`
	Status      *models.TaskStatus `json:"status"`
	LoggedHours *float64           `json:"logged_hours" validate:"omitempty,gte=0"`
	DueDate     *time.Time         `json:"due_date"`
}

func (s *ProjectService) CreateProject(ctx context.Context, in CreateProjectInput) (*models.Project, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	s.log.Info("create-project:start", "title", in.Title)

	project := &models.Project{
		Title:       in.Title,
		Description: in.Description,
		Budget:      in.Budget,
		ClientID:    in.ClientID,
		ManagerID:   in.ManagerID,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		Status:      models.ProjectStatusNotStarted,
		Health:      models.ProjectHealthOnTrack,
	}
	if err := s.db.CreateProject(ctx, project); err != nil {
		s.log.Error("create-project:db-insert-failed", "err", err)
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	s.log.Info("create-project:success", "projectID", project.ID)
	return project, nil
}

func (s *ProjectService) GetProject(ctx context.Context, id uint) (*models.Project, error) {
	project, err := s.db.GetProject(ctx, id)
	if err != nil {
		return nil, lookupError("project", id, err)
	}
	return project, nil
}

func (s *ProjectService) ListProjects(ctx context.Context, st *models.ProjectStatus) ([]models.Project, error) {
	if st != nil && !st.Valid() {
		return nil, validationError("unknown project status %q", *st)
	}
	return s.db.ListProjects(ctx, st)
}

func (s *ProjectService) UpdateProject(ctx context.Context, id uint, in UpdateProjectInput) (*models.Project, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if in.Status != nil && !in.Status.Valid() {
		return nil, validationError("unknown project status %q", *in.Status)
	}

	project, err := s.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		project.Title = *in.Title
	}
	if in.Description != nil {
		project.Description = *in.Description
	}
	if in.Budget != nil {
		project.Budget = *in.Budget
	}
	if in.ManagerID != nil {
		project.ManagerID = in.ManagerID
	}
	if in.EndDate != nil {
		project.EndDate = in.EndDate
	}
	before := project.Status
	if in.Status != nil {
		switch {
		case *in.Status == models.ProjectStatusOnHold:
			project.Status = models.ProjectStatusOnHold
		case project.Status == models.ProjectStatusOnHold:
			// Lifting the hold; the recompute below settles the real status.
			project.Status = *in.Status
		}
	}

	if err := s.recomputeFrom(ctx, project, before, "mutation"); err != nil {
		return nil, err
	}
	s.log.Info("update-project:success", "projectID", id, "status", project.Status)
	return project, nil
}

func (s *ProjectService) DeleteProject(ctx context.Context, id uint) error {
	if err := s.db.DeleteProject(ctx, id); err != nil {
		return lookupError("project", id, err)
	}
	s.log.Info("delete-project:success", "projectID", id)
	return nil
}

// AddTask appends a task to the project and returns the refreshed project.
func (s *ProjectService) AddTask(ctx context.Context, projectID uint, in TaskInput) (*models.Project, *models.ProjectTask, error) {
	if err := validateStruct(in); err != nil {
		return nil, nil, err
	}
	if in.Status == "" {
		in.Status = models.TaskStatusToDo
	}
	if !in.Status.Valid() {
		return nil, nil, validationError("unknown task status %q", in.Status)
	}

	project, err := s.GetProject(ctx, projectID)
	if err != nil {
		return nil, nil, err
	}

	task := &models.ProjectTask{
		ProjectID:   projectID,
		Title:       in.Title,
		Description: in.Description,
		AssigneeID:  in.AssigneeID,
		Status:      in.Status,
		LoggedHours: in.LoggedHours,
		DueDate:     in.DueDate,
	}
	status.StampCompletion(task, s.clock.Now())
	if err := s.db.CreateProjectTask(ctx, task); err != nil {
		return nil, nil, fmt.Errorf("failed to create task: %w", err)
	}

	if err := s.recompute(ctx, project, "mutation"); err != nil {
		return nil, nil, err
	}
	s.log.Info("add-task:success", "projectID", projectID, "taskID", task.ID)
	return project, task, nil
}

func (s *ProjectService) UpdateTask(ctx context.Context, projectID, taskID uint, in UpdateTaskInput) (*models.Project, *models.ProjectTask, error) {
	if err := validateStruct(in); err != nil {
		return nil, nil, err
	}
	if in.Status != nil && !in.Status.Valid() {
		return nil, nil, validationError("unknown task status %q", *in.Status)
	}

	project, err := s.GetProject(ctx, projectID)
	if err != nil {
		return nil, nil, err
	}
	task, err := s.db.GetProjectTask(ctx, projectID, taskID)
	if err != nil {
		return nil, nil, lookupError("task", taskID, err)
	}

	if in.Title != nil {
		task.Title = *in.Title
	}
	if in.Description != nil {
		task.Description = *in.Description
	}
	if in.AssigneeID != nil {
		task.AssigneeID = in.AssigneeID
	}
	if in.Status != nil {
		task.Status = *in.Status
	}
	if in.LoggedHours != nil {
		task.LoggedHours = *in.LoggedHours
	}
	if in.DueDate != nil {
		task.DueDate = in.DueDate
	}
	status.StampCompletion(task, s.clock.Now())

	if err := s.db.SaveProjectTask(ctx, task); err != nil {
		return nil, nil, fmt.Errorf("failed to update task %d: %w", taskID, err)
	}
	if err := s.recompute(ctx, project, "mutation"); err != nil {
		return nil, nil, err
	}
	return project, task, nil
}

func (s *ProjectService) RemoveTask(ctx context.Context, projectID, taskID uint) (*models.Project, error) {
	project, err := s.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := s.db.DeleteProjectTask(ctx, projectID, taskID); err != nil {
		return nil, lookupError("task", taskID, err)
	}
	if err := s.recompute(ctx, project, "mutation"); err != nil {
		return nil, err
	}
	s.log.Info("remove-task:success", "projectID", projectID, "taskID", taskID)
	return project, nil
}

// LogHours adds worked hours to a task.
func (s *ProjectService) LogHours(ctx context.Context, projectID, taskID uint, hours float64) (*models.Project, *models.ProjectTask, error) {
	if hours <= 0 {
		return nil, nil, validationError("hours must be positive, got %v", hours)
	}

	project, err := s.GetProject(ctx, projectID)
	if err != nil {
		return nil, nil, err
	}
	task, err := s.db.GetProjectTask(ctx, projectID, taskID)
	if err != nil {
		return nil, nil, lookupError("task", taskID, err)
	}

	task.LoggedHours += hours
	if err := s.db.SaveProjectTask(ctx, task); err != nil {
		return nil, nil, fmt.Errorf("failed to log hours on task %d: %w", taskID, err)
	}
	if err := s.recompute(ctx, project, "mutation"); err != nil {
		return nil, nil, err
	}
	return project, task, nil
}

func (s *ProjectService) AddTaskComment(ctx context.Context, projectID, taskID uint, authorID uint, content string) (*models.TaskComment, error) {
	if content == "" {
		return nil, validationError("comment content is required")
	}
	if _, err := s.db.GetProjectTask(ctx, projectID, taskID); err != nil {
		return nil, lookupError("task", taskID, err)
	}
	comment := &models.TaskComment{ProjectTaskID: taskID, AuthorID: authorID, Content: content}
	if err := s.db.AddTaskComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to add comment: %w", err)
	}
	return comment, nil
}

func (s *ProjectService) AddMilestone(ctx context.Context, projectID uint, title string, due *time.Time) (*models.Milestone, error) {
	if title == "" {
		return nil, validationError("milestone title is required")
	}
	if _, err := s.GetProject(ctx, projectID); err != nil {
		return nil, err
	}
	m := &models.Milestone{ProjectID: projectID, Title: title, DueDate: due}
	if err := s.db.AddMilestone(ctx, m); err != nil {
		return nil, fmt.Errorf("failed to add milestone: %w", err)
	}
	return m, nil
}

func (s *ProjectService) AddComment(ctx context.Context, projectID, authorID uint, content string) (*models.Comment, error) {
	if content == "" {
		return nil, validationError("comment content is required")
	}
	if _, err := s.GetProject(ctx, projectID); err != nil {
		return nil, err
	}
	comment := &models.Comment{ProjectID: projectID, AuthorID: authorID, Content: content}
	if err := s.db.AddComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to add comment: %w", err)
	}
	return comment, nil
}

// AddFile records metadata for a file stored outside this service.
func (s *ProjectService) AddFile(ctx context.Context, projectID uint, file models.ProjectFile) (*models.ProjectFile, error) {
	if file.Filename == "" {
		return nil, validationError("filename is required")
	}
	if _, err := s.GetProject(ctx, projectID); err != nil {
		return nil, err
	}
	file.ID = 0
	file.ProjectID = projectID
	if err := s.db.AddFile(ctx, &file); err != nil {
		return nil, fmt.Errorf("failed to add file: %w", err)
	}
	return &file, nil
}

type ProjectStats struct {
	ProjectID      uint                   `json:"project_id"`
	Progress       int                    `json:"progress"`
	TasksByStatus  []database.StatusCount `json:"tasks_by_status"`
	OverdueTasks   int64                  `json:"overdue_tasks"`
	LoggedHours    float64                `json:"logged_hours"`
	BudgetConsumed float64                `json:"budget"`
}

func (s *ProjectService) Stats(ctx context.Context, projectID uint) (*ProjectStats, error) {
	project, err := s.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	counts, overdue, err := s.db.ProjectTaskStats(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to count tasks: %w", err)
	}
	return &ProjectStats{
		ProjectID:      projectID,
		Progress:       project.Progress,
		TasksByStatus:  counts,
		OverdueTasks:   overdue,
		LoggedHours:    project.TotalLoggedHours,
		BudgetConsumed: project.Budget,
	}, nil
}

// Recompute reloads a project and rederives its aggregate from its tasks.
func (s *ProjectService) Recompute(ctx context.Context, projectID uint, trigger string) (*models.Project, error) {
	project, err := s.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := s.recompute(ctx, project, trigger); err != nil {
		return nil, err
	}
	return project, nil
}

// recompute rederives and persists the project's aggregate fields. A project
// with embedded tasks is driven by them; one without is driven by its
// standalone tasks through the three-way rule, which carries no percentage.
func (s *ProjectService) recompute(ctx context.Context, project *models.Project, trigger string) error {
	return s.recomputeFrom(ctx, project, project.Status, trigger)
}

// recomputeFrom is recompute with the status the project had before the
// caller touched it, so a manual status change does not mask entering Completed.
func (s *ProjectService) recomputeFrom(ctx context.Context, project *models.Project, previous models.ProjectStatus, trigger string) error {
	now := s.clock.Now()

	tasks, err := s.db.ListProjectTasks(ctx, project.ID)
	if err != nil {
		return fmt.Errorf("failed to load tasks of project %d: %w", project.ID, err)
	}
	for i := range tasks {
		if status.StampCompletion(&tasks[i], now) {
			if err := s.db.SaveProjectTask(ctx, &tasks[i]); err != nil {
				return fmt.Errorf("failed to stamp completion on task %d: %w", tasks[i].ID, err)
			}
		}
	}

	agg := status.RecomputeProject(project.Status, tasks)

	if len(tasks) == 0 && project.Status != models.ProjectStatusOnHold {
		standalone, err := s.db.ListTasks(ctx, &project.ID, nil)
		if err != nil {
			return fmt.Errorf("failed to load standalone tasks of project %d: %w", project.ID, err)
		}
		if len(standalone) > 0 {
			agg.Status = status.DeriveProjectStatus(standalone)
		}
	}

	agg.Apply(project)
	entered := markProjectCompletion(project, previous, now)
	if err := s.db.SaveProject(ctx, project); err != nil {
		return fmt.Errorf("failed to save project %d: %w", project.ID, err)
	}
	project.Tasks = tasks
	projectRecomputes.WithLabelValues(trigger).Inc()

	if entered {
		msg := fmt.Sprintf("Project %q is completed", project.Title)
		if err := s.notify.Notify(ctx, 0, msg); err != nil {
			s.log.Warn("recompute:notify-failed", "projectID", project.ID, "err", err)
		}
	}
	return nil
}

// markProjectCompletion stamps CompletedAt when a project enters Completed and
// clears it when it leaves. It reports whether the project just entered.
func markProjectCompletion(p *models.Project, previous models.ProjectStatus, now time.Time) bool {
	if p.Status != models.ProjectStatusCompleted {
		p.CompletedAt = nil
		return false
	}
	if p.CompletedAt == nil {
		p.CompletedAt = &now
	}
	return previous != models.ProjectStatusCompleted
}
