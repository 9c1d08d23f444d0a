package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/headless-pm/progress-tracker/internal/database"
	"github.com/headless-pm/progress-tracker/internal/models"
	"github.com/headless-pm/progress-tracker/internal/status"
)

// TaskService manages standalone tasks, whose status follows their subtasks.
type TaskService struct {
	db       *database.Database
	projects *ProjectService
	log      *slog.Logger
}

func NewTaskService(db *database.Database, projects *ProjectService) *TaskService {
	return &TaskService{db: db, projects: projects, log: logger("TaskService")}
}

type CreateTaskInput struct {
	ProjectID   *uint    `json:"project_id"`
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description"`
	Subtasks    []string `json:"subtasks" validate:"dive,required"`
}

func (s *TaskService) CreateTask(ctx context.Context, in CreateTaskInput) (*models.Task, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if in.ProjectID != nil {
		if _, err := s.projects.GetProject(ctx, *in.ProjectID); err != nil {
			return nil, err
		}
	}

	task := &models.Task{
		ProjectID:   in.ProjectID,
		Title:       in.Title,
		Description: in.Description,
	}
	for i, title := range in.Subtasks {
		task.Subtasks = append(task.Subtasks, models.Subtask{Position: i, Title: title})
	}
	task.Status = status.DeriveTaskStatus(task.Subtasks)

	if err := s.db.CreateTask(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	s.log.Info("create-task:success", "taskID", task.ID, "subtasks", len(task.Subtasks))

	s.cascade(ctx, task)
	return task, nil
}

func (s *TaskService) GetTask(ctx context.Context, id uint) (*models.Task, error) {
	task, err := s.db.GetTask(ctx, id)
	if err != nil {
		return nil, lookupError("task", id, err)
	}
	return task, nil
}

func (s *TaskService) ListTasks(ctx context.Context, projectID *uint, st *models.WorkStatus) ([]models.Task, error) {
	if st != nil && !st.Valid() {
		return nil, validationError("unknown task status %q", *st)
	}
	return s.db.ListTasks(ctx, projectID, st)
}

// SetSubtaskCompleted flips one subtask, rederives the task's status and
// cascades into the owning project.
func (s *TaskService) SetSubtaskCompleted(ctx context.Context, taskID uint, index int, completed bool) (*models.Task, error) {
	task, err := s.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(task.Subtasks) {
		return nil, fmt.Errorf("subtask %d of task %d: %w", index, taskID, ErrNotFound)
	}

	task.Subtasks[index].Completed = completed
	task.Status = status.DeriveTaskStatus(task.Subtasks)
	if err := s.db.SaveTask(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to save task %d: %w", taskID, err)
	}
	s.log.Info("toggle-subtask:success", "taskID", taskID, "index", index, "completed", completed, "status", task.Status)

	s.cascade(ctx, task)
	return task, nil
}

// cascade refreshes the owning project; a failure is logged, not returned,
// since the task write already happened.
func (s *TaskService) cascade(ctx context.Context, task *models.Task) {
	if task.ProjectID == nil {
		return
	}
	if _, err := s.projects.Recompute(ctx, *task.ProjectID, "cascade"); err != nil {
		s.log.Error("cascade:project-failed", "taskID", task.ID, "projectID", *task.ProjectID, "err", err)
		cascadeSkipped.WithLabelValues("project").Inc()
	}
}
