package service

import (
	"context"
	"testing"
	"time"

	"github.com/headless-pm/progress-tracker/internal/database"
	"github.com/headless-pm/progress-tracker/internal/models"
	"github.com/stretchr/testify/require"
	gormlogger "gorm.io/gorm/logger"
)

const testDay = "2024-05-06"

var testNow = time.Date(2024, 5, 6, 9, 30, 0, 0, time.UTC)

func setupServices(t *testing.T) (*Services, *database.Database) {
	db, err := database.NewDatabase(t.TempDir(), gormlogger.Silent)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	svc := New(db, Options{
		Now:           func() time.Time { return testNow },
		Location:      time.UTC,
		ClaimAttempts: 3,
	})
	return svc, db
}

func employee(id uint) Actor {
	return Actor{ID: id, Role: models.UserRoleEmployee}
}

func manager(id uint) Actor {
	return Actor{ID: id, Role: models.UserRoleManager}
}

func createProject(t *testing.T, svc *Services, title string) *models.Project {
	project, err := svc.Projects.CreateProject(context.Background(), CreateProjectInput{Title: title})
	require.NoError(t, err)
	return project
}

func createLegacyTask(t *testing.T, svc *Services, projectID *uint, subtasks ...string) *models.Task {
	task, err := svc.Tasks.CreateTask(context.Background(), CreateTaskInput{
		ProjectID: projectID,
		Title:     "Onboarding",
		Subtasks:  subtasks,
	})
	require.NoError(t, err)
	return task
}

func ptr[T any](v T) *T {
	return &v
}
