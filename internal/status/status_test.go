package status

import (
	"testing"
	"time"

	"github.com/headless-pm/progress-tracker/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func task(s models.TaskStatus, hours float64) models.ProjectTask {
	return models.ProjectTask{Status: s, LoggedHours: hours}
}

func TestRecomputeProject(t *testing.T) {
	tests := []struct {
		name     string
		current  models.ProjectStatus
		tasks    []models.ProjectTask
		status   models.ProjectStatus
		progress int
		hours    float64
	}{
		{
			name:    "no tasks",
			current: models.ProjectStatusInProgress,
			status:  models.ProjectStatusNotStarted,
		},
		{
			name:    "two of three completed",
			current: models.ProjectStatusNotStarted,
			tasks: []models.ProjectTask{
				task(models.TaskStatusCompleted, 5),
				task(models.TaskStatusCompleted, 3),
				task(models.TaskStatusInProgress, 2),
			},
			status:   models.ProjectStatusInProgress,
			progress: 67,
			hours:    10,
		},
		{
			name:    "only on hold tasks",
			current: models.ProjectStatusNotStarted,
			tasks: []models.ProjectTask{
				task(models.TaskStatusOnHold, 1),
				task(models.TaskStatusOnHold, 0),
			},
			status: models.ProjectStatusNotStarted,
			hours:  1,
		},
		{
			name:    "completed ignoring on hold",
			current: models.ProjectStatusInProgress,
			tasks: []models.ProjectTask{
				task(models.TaskStatusCompleted, 4),
				task(models.TaskStatusOnHold, 1.5),
			},
			status:   models.ProjectStatusCompleted,
			progress: 100,
			hours:    5.5,
		},
		{
			name:    "in progress without completions",
			current: models.ProjectStatusNotStarted,
			tasks: []models.ProjectTask{
				task(models.TaskStatusToDo, 0),
				task(models.TaskStatusInProgress, 0.5),
			},
			status: models.ProjectStatusInProgress,
			hours:  0.5,
		},
		{
			name:    "all todo",
			current: models.ProjectStatusCompleted,
			tasks: []models.ProjectTask{
				task(models.TaskStatusToDo, 0),
			},
			status: models.ProjectStatusNotStarted,
		},
		{
			name:    "on hold project keeps status",
			current: models.ProjectStatusOnHold,
			tasks: []models.ProjectTask{
				task(models.TaskStatusCompleted, 2),
				task(models.TaskStatusToDo, 1),
			},
			status:   models.ProjectStatusOnHold,
			progress: 50,
			hours:    3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agg := RecomputeProject(tt.current, tt.tasks)
			assert.Equal(t, tt.status, agg.Status)
			assert.Equal(t, tt.progress, agg.Progress)
			assert.InDelta(t, tt.hours, agg.TotalLoggedHours, 1e-9)
		})
	}
}

func TestRecomputeProjectIdempotent(t *testing.T) {
	tasks := []models.ProjectTask{
		task(models.TaskStatusCompleted, 1),
		task(models.TaskStatusToDo, 2),
		task(models.TaskStatusOnHold, 3),
	}

	first := RecomputeProject(models.ProjectStatusNotStarted, tasks)
	second := RecomputeProject(first.Status, tasks)
	assert.Equal(t, first, second)
}

func TestAggregateApply(t *testing.T) {
	p := &models.Project{Status: models.ProjectStatusNotStarted}
	Aggregate{Status: models.ProjectStatusInProgress, Progress: 40, TotalLoggedHours: 7}.Apply(p)

	assert.Equal(t, models.ProjectStatusInProgress, p.Status)
	assert.Equal(t, 40, p.Progress)
	assert.Equal(t, 7.0, p.TotalLoggedHours)
	assert.Equal(t, models.ProjectHealthOnTrack, p.Health)
}

func TestStampCompletion(t *testing.T) {
	first := time.Date(2024, 7, 28, 10, 0, 0, 0, time.UTC)
	later := first.Add(time.Hour)

	tk := &models.ProjectTask{Status: models.TaskStatusInProgress}
	assert.False(t, StampCompletion(tk, first))
	assert.Nil(t, tk.CompletedAt)

	tk.Status = models.TaskStatusCompleted
	assert.True(t, StampCompletion(tk, first))
	require.NotNil(t, tk.CompletedAt)

	assert.False(t, StampCompletion(tk, later))
	assert.Equal(t, first, *tk.CompletedAt)
}

func TestCategoricalReducer(t *testing.T) {
	r := CategoricalReducer{}
	c, p, ip := models.WorkStatusCompleted, models.WorkStatusPending, models.WorkStatusInProgress

	assert.Equal(t, p, r.Reduce(nil))
	assert.Equal(t, c, r.Reduce([]models.WorkStatus{c, c}))
	assert.Equal(t, p, r.Reduce([]models.WorkStatus{p, p}))
	assert.Equal(t, ip, r.Reduce([]models.WorkStatus{c, p}))
	assert.Equal(t, ip, r.Reduce([]models.WorkStatus{ip}))
}

func TestDeriveTaskStatus(t *testing.T) {
	assert.Equal(t, models.WorkStatusPending, DeriveTaskStatus([]models.Subtask{{}, {}}))
	assert.Equal(t, models.WorkStatusInProgress, DeriveTaskStatus([]models.Subtask{{Completed: true}, {}}))
	assert.Equal(t, models.WorkStatusCompleted, DeriveTaskStatus([]models.Subtask{{Completed: true}}))
}

func TestDeriveProjectStatus(t *testing.T) {
	done := models.Task{Status: models.WorkStatusCompleted}
	waiting := models.Task{Status: models.WorkStatusPending}

	assert.Equal(t, models.ProjectStatusCompleted, DeriveProjectStatus([]models.Task{done, done}))
	assert.Equal(t, models.ProjectStatusNotStarted, DeriveProjectStatus([]models.Task{waiting}))
	assert.Equal(t, models.ProjectStatusInProgress, DeriveProjectStatus([]models.Task{done, waiting}))
	assert.Equal(t, models.ProjectStatusNotStarted, DeriveProjectStatus(nil))
}

func TestSubtaskStatuses(t *testing.T) {
	subtasks := []models.Subtask{{Completed: true}, {}, {}, {}, {Completed: true}}
	claims := []models.Claim{
		{SubtaskIndex: 1, Status: models.WorkStatusInProgress},
		{SubtaskIndex: 2, Status: models.WorkStatusCompleted},
		{SubtaskIndex: 2, Status: models.WorkStatusPending},
		{SubtaskIndex: 0, Status: models.WorkStatusInProgress},
		{SubtaskIndex: 9, Status: models.WorkStatusCompleted},
	}

	got := SubtaskStatuses(subtasks, claims)
	assert.Equal(t, []models.WorkStatus{
		// the day's claim overrides an earlier completion
		models.WorkStatusInProgress,
		models.WorkStatusInProgress,
		models.WorkStatusCompleted,
		models.WorkStatusPending,
		// unclaimed subtasks keep their flag
		models.WorkStatusCompleted,
	}, got)
}
