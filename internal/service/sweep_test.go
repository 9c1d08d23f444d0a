package service

import (
	"context"
	"testing"
	"time"

	"github.com/headless-pm/progress-tracker/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweepRepairsStaleProject(t *testing.T) {
	svc, db := setupServices(t)
	ctx := context.Background()
	project := createProject(t, svc, "Stale")

	// Written behind the service's back, as if a cascade died halfway.
	require.NoError(t, db.CreateProjectTask(ctx, &models.ProjectTask{
		ProjectID: project.ID, Title: "Done", Status: models.TaskStatusCompleted, LoggedHours: 5,
	}))
	stale, err := svc.Projects.GetProject(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ProjectStatusNotStarted, stale.Status)

	sweeper := NewSweeper(db, svc.Projects, "", time.UTC)
	n, err := sweeper.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	fixed, err := svc.Projects.GetProject(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ProjectStatusCompleted, fixed.Status)
	assert.Equal(t, 100, fixed.Progress)
	assert.InDelta(t, 5.0, fixed.TotalLoggedHours, 1e-9)
	require.Len(t, fixed.Tasks, 1)
	assert.NotNil(t, fixed.Tasks[0].CompletedAt)
}

func TestSweeperSchedule(t *testing.T) {
	svc, db := setupServices(t)

	disabled := NewSweeper(db, svc.Projects, "", nil)
	require.NoError(t, disabled.Start())
	disabled.Stop()

	bad := NewSweeper(db, svc.Projects, "every tuesday", nil)
	assert.Error(t, bad.Start())

	nightly := NewSweeper(db, svc.Projects, "0 0 2 * * *", time.UTC)
	require.NoError(t, nightly.Start())
	nightly.Stop()
}
