package service

import (
	"context"
	"testing"

	"github.com/headless-pm/progress-tracker/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddTasksAggregatesProject(t *testing.T) {
	svc, _ := setupServices(t)
	ctx := context.Background()
	project := createProject(t, svc, "Website")

	inputs := []TaskInput{
		{Title: "Design", Status: models.TaskStatusCompleted, LoggedHours: 4},
		{Title: "Build", Status: models.TaskStatusCompleted, LoggedHours: 3},
		{Title: "Launch", Status: models.TaskStatusInProgress, LoggedHours: 3},
	}
	var got *models.Project
	for _, in := range inputs {
		p, task, err := svc.Projects.AddTask(ctx, project.ID, in)
		require.NoError(t, err)
		if in.Status == models.TaskStatusCompleted {
			require.NotNil(t, task.CompletedAt)
			assert.True(t, task.CompletedAt.Equal(testNow))
		}
		got = p
	}

	assert.Equal(t, 67, got.Progress)
	assert.Equal(t, models.ProjectStatusInProgress, got.Status)
	assert.InDelta(t, 10.0, got.TotalLoggedHours, 1e-9)
	assert.Equal(t, models.ProjectHealthOnTrack, got.Health)
	assert.Len(t, got.Tasks, 3)

	stored, err := svc.Projects.GetProject(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, 67, stored.Progress)
	assert.Equal(t, models.ProjectStatusInProgress, stored.Status)
}

func TestAllTasksOnHold(t *testing.T) {
	svc, _ := setupServices(t)
	ctx := context.Background()
	project := createProject(t, svc, "Paused work")

	for _, title := range []string{"A", "B"} {
		_, _, err := svc.Projects.AddTask(ctx, project.ID, TaskInput{Title: title, Status: models.TaskStatusOnHold})
		require.NoError(t, err)
	}

	stored, err := svc.Projects.GetProject(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.Progress)
	assert.Equal(t, models.ProjectStatusNotStarted, stored.Status)
}

func TestProjectCompletionStampsAndNotifies(t *testing.T) {
	svc, _ := setupServices(t)
	ctx := context.Background()
	project := createProject(t, svc, "Release")

	_, task, err := svc.Projects.AddTask(ctx, project.ID, TaskInput{Title: "Ship"})
	require.NoError(t, err)
	assert.Nil(t, task.CompletedAt)

	p, task, err := svc.Projects.UpdateTask(ctx, project.ID, task.ID, UpdateTaskInput{Status: ptr(models.TaskStatusCompleted)})
	require.NoError(t, err)
	assert.Equal(t, models.ProjectStatusCompleted, p.Status)
	assert.Equal(t, 100, p.Progress)
	require.NotNil(t, p.CompletedAt)
	require.NotNil(t, task.CompletedAt)

	notes, err := svc.Notifications.List(ctx, 42, 0)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, uint(0), notes[0].UserID)
	assert.Contains(t, notes[0].Message, "Release")

	// Reopening leaves the task stamp alone but clears the project's.
	p, task, err = svc.Projects.UpdateTask(ctx, project.ID, task.ID, UpdateTaskInput{Status: ptr(models.TaskStatusInProgress)})
	require.NoError(t, err)
	assert.Equal(t, models.ProjectStatusInProgress, p.Status)
	assert.Nil(t, p.CompletedAt)
	assert.NotNil(t, task.CompletedAt)
}

func TestOnHoldOverride(t *testing.T) {
	svc, _ := setupServices(t)
	ctx := context.Background()
	project := createProject(t, svc, "Frozen")

	p, err := svc.Projects.UpdateProject(ctx, project.ID, UpdateProjectInput{Status: ptr(models.ProjectStatusOnHold)})
	require.NoError(t, err)
	assert.Equal(t, models.ProjectStatusOnHold, p.Status)

	p, _, err = svc.Projects.AddTask(ctx, project.ID, TaskInput{Title: "Done anyway", Status: models.TaskStatusCompleted, LoggedHours: 2})
	require.NoError(t, err)
	assert.Equal(t, models.ProjectStatusOnHold, p.Status)
	assert.Equal(t, 100, p.Progress)
	assert.InDelta(t, 2.0, p.TotalLoggedHours, 1e-9)

	// A derived status cannot be forced while the hold is not in place.
	p, err = svc.Projects.UpdateProject(ctx, project.ID, UpdateProjectInput{Status: ptr(models.ProjectStatusInProgress)})
	require.NoError(t, err)
	assert.Equal(t, models.ProjectStatusCompleted, p.Status)

	p, err = svc.Projects.UpdateProject(ctx, project.ID, UpdateProjectInput{Status: ptr(models.ProjectStatusNotStarted)})
	require.NoError(t, err)
	assert.Equal(t, models.ProjectStatusCompleted, p.Status)

	notes, err := svc.Notifications.List(ctx, 1, 0)
	require.NoError(t, err)
	assert.Len(t, notes, 1)
}

func TestLiftingHoldIntoCompletedNotifies(t *testing.T) {
	svc, _ := setupServices(t)
	ctx := context.Background()
	project := createProject(t, svc, "Parked")

	_, err := svc.Projects.UpdateProject(ctx, project.ID, UpdateProjectInput{Status: ptr(models.ProjectStatusOnHold)})
	require.NoError(t, err)
	_, _, err = svc.Projects.AddTask(ctx, project.ID, TaskInput{Title: "Finished", Status: models.TaskStatusCompleted})
	require.NoError(t, err)

	p, err := svc.Projects.UpdateProject(ctx, project.ID, UpdateProjectInput{Status: ptr(models.ProjectStatusCompleted)})
	require.NoError(t, err)
	assert.Equal(t, models.ProjectStatusCompleted, p.Status)
	require.NotNil(t, p.CompletedAt)

	notes, err := svc.Notifications.List(ctx, 1, 0)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Contains(t, notes[0].Message, "Parked")
}

func TestLogHours(t *testing.T) {
	svc, _ := setupServices(t)
	ctx := context.Background()
	project := createProject(t, svc, "Hours")
	_, task, err := svc.Projects.AddTask(ctx, project.ID, TaskInput{Title: "Work", LoggedHours: 1.5})
	require.NoError(t, err)

	_, _, err = svc.Projects.LogHours(ctx, project.ID, task.ID, 0)
	assert.ErrorIs(t, err, ErrValidation)

	p, task, err := svc.Projects.LogHours(ctx, project.ID, task.ID, 2)
	require.NoError(t, err)
	assert.InDelta(t, 3.5, task.LoggedHours, 1e-9)
	assert.InDelta(t, 3.5, p.TotalLoggedHours, 1e-9)

	_, _, err = svc.Projects.LogHours(ctx, project.ID, 999, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRemoveTaskRecomputes(t *testing.T) {
	svc, _ := setupServices(t)
	ctx := context.Background()
	project := createProject(t, svc, "Shrinking")

	_, _, err := svc.Projects.AddTask(ctx, project.ID, TaskInput{Title: "Done", Status: models.TaskStatusCompleted})
	require.NoError(t, err)
	_, open, err := svc.Projects.AddTask(ctx, project.ID, TaskInput{Title: "Open"})
	require.NoError(t, err)

	p, err := svc.Projects.RemoveTask(ctx, project.ID, open.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ProjectStatusCompleted, p.Status)
	assert.Equal(t, 100, p.Progress)

	_, err = svc.Projects.RemoveTask(ctx, project.ID, open.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProjectValidationAndLookup(t *testing.T) {
	svc, _ := setupServices(t)
	ctx := context.Background()

	_, err := svc.Projects.CreateProject(ctx, CreateProjectInput{})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Projects.GetProject(ctx, 12345)
	assert.ErrorIs(t, err, ErrNotFound)

	project := createProject(t, svc, "Checked")
	_, _, err = svc.Projects.AddTask(ctx, project.ID, TaskInput{Title: "Bad", Status: "Sideways"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Projects.AddMilestone(ctx, project.ID, "", nil)
	assert.ErrorIs(t, err, ErrValidation)

	require.NoError(t, svc.Projects.DeleteProject(ctx, project.ID))
	assert.ErrorIs(t, svc.Projects.DeleteProject(ctx, project.ID), ErrNotFound)
}

func TestProjectAttachments(t *testing.T) {
	svc, _ := setupServices(t)
	ctx := context.Background()
	project := createProject(t, svc, "Docs")

	_, err := svc.Projects.AddMilestone(ctx, project.ID, "Beta", nil)
	require.NoError(t, err)
	_, err = svc.Projects.AddComment(ctx, project.ID, 3, "Looks good")
	require.NoError(t, err)
	_, err = svc.Projects.AddFile(ctx, project.ID, models.ProjectFile{Filename: "brief.pdf", Size: 1024})
	require.NoError(t, err)
	_, task, err := svc.Projects.AddTask(ctx, project.ID, TaskInput{Title: "Write"})
	require.NoError(t, err)
	_, err = svc.Projects.AddTaskComment(ctx, project.ID, task.ID, 3, "Started")
	require.NoError(t, err)

	loaded, err := svc.Projects.GetProject(ctx, project.ID)
	require.NoError(t, err)
	assert.Len(t, loaded.Milestones, 1)
	assert.Len(t, loaded.Comments, 1)
	assert.Len(t, loaded.Files, 1)
	require.Len(t, loaded.Tasks, 1)
	assert.Len(t, loaded.Tasks[0].Comments, 1)

	stats, err := svc.Projects.Stats(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Progress)
	assert.Equal(t, int64(0), stats.OverdueTasks)
}
