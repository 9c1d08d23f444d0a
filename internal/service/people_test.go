package service

import (
	"context"
	"testing"

	"github.com/headless-pm/progress-tracker/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsers(t *testing.T) {
	svc, _ := setupServices(t)
	ctx := context.Background()

	user, err := svc.Users.CreateUser(ctx, CreateUserInput{Name: "Ada", Email: "ada@example.com", Role: models.UserRoleEmployee})
	require.NoError(t, err)
	assert.True(t, user.IsActive)

	_, err = svc.Users.CreateUser(ctx, CreateUserInput{Name: "Ada again", Email: "ada@example.com", Role: models.UserRoleEmployee})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Users.CreateUser(ctx, CreateUserInput{Name: "Bob", Email: "bob@example.com", Role: "overlord"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Users.CreateUser(ctx, CreateUserInput{Name: "Cy", Email: "not-an-email", Role: models.UserRoleClient})
	assert.ErrorIs(t, err, ErrValidation)

	got, err := svc.Users.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", got.Name)

	_, err = svc.Users.GetUser(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)

	employees, err := svc.Users.ListUsers(ctx, ptr(models.UserRoleEmployee))
	require.NoError(t, err)
	assert.Len(t, employees, 1)
}

func TestLeaveReview(t *testing.T) {
	svc, _ := setupServices(t)
	ctx := context.Background()

	req, err := svc.Leave.Request(ctx, employee(1), LeaveInput{FromDate: "2024-06-01", ToDate: "2024-06-03", Reason: "trip"})
	require.NoError(t, err)
	assert.Equal(t, models.LeaveStatusPending, req.Status)

	_, err = svc.Leave.Request(ctx, employee(1), LeaveInput{FromDate: "2024-06-05", ToDate: "2024-06-01"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Leave.Review(ctx, employee(1), req.ID, models.LeaveStatusApproved)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Leave.Review(ctx, manager(7), req.ID, models.LeaveStatusPending)
	assert.ErrorIs(t, err, ErrValidation)

	reviewed, err := svc.Leave.Review(ctx, manager(7), req.ID, models.LeaveStatusApproved)
	require.NoError(t, err)
	assert.Equal(t, models.LeaveStatusApproved, reviewed.Status)
	require.NotNil(t, reviewed.ReviewedBy)
	assert.Equal(t, uint(7), *reviewed.ReviewedBy)

	_, err = svc.Leave.Review(ctx, manager(7), req.ID, models.LeaveStatusRejected)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Leave.Review(ctx, manager(7), 555, models.LeaveStatusRejected)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Leave.Request(ctx, employee(2), LeaveInput{FromDate: "2024-07-01", ToDate: "2024-07-01"})
	require.NoError(t, err)

	own, err := svc.Leave.List(ctx, employee(2), nil)
	require.NoError(t, err)
	assert.Len(t, own, 1)

	all, err := svc.Leave.List(ctx, manager(7), nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	pending, err := svc.Leave.List(ctx, manager(7), ptr(models.LeaveStatusPending))
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestStandupResubmission(t *testing.T) {
	svc, _ := setupServices(t)
	ctx := context.Background()

	_, err := svc.Standups.Submit(ctx, employee(1), StandupInput{Yesterday: "setup", Today: "claims"})
	require.NoError(t, err)
	_, err = svc.Standups.Submit(ctx, employee(1), StandupInput{Yesterday: "setup", Today: "claims and reports", Blockers: "none"})
	require.NoError(t, err)
	_, err = svc.Standups.Submit(ctx, employee(2), StandupInput{Date: testDay, Today: "reviews"})
	require.NoError(t, err)

	_, err = svc.Standups.Submit(ctx, employee(1), StandupInput{})
	assert.ErrorIs(t, err, ErrValidation)

	standups, err := svc.Standups.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, standups, 2)
	for _, s := range standups {
		if s.UserID == 1 {
			assert.Equal(t, "claims and reports", s.Today)
			assert.Equal(t, "none", s.Blockers)
		}
	}
}

func TestNotificationsMarkAllRead(t *testing.T) {
	svc, _ := setupServices(t)
	ctx := context.Background()

	require.NoError(t, svc.Notifications.Notify(ctx, 1, "for one"))
	require.NoError(t, svc.Notifications.Notify(ctx, 2, "for two"))
	require.NoError(t, svc.Notifications.Notify(ctx, 0, "for all"))

	notes, err := svc.Notifications.List(ctx, 1, 0)
	require.NoError(t, err)
	assert.Len(t, notes, 2)

	n, err := svc.Notifications.MarkAllRead(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	notes, err = svc.Notifications.List(ctx, 1, 0)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	for _, note := range notes {
		assert.True(t, note.Read, note.Message)
	}

	// The broadcast stays unread for user two.
	notes, err = svc.Notifications.List(ctx, 2, 0)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	for _, note := range notes {
		assert.False(t, note.Read, note.Message)
	}

	n, err = svc.Notifications.MarkAllRead(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = svc.Notifications.MarkAllRead(ctx, 1)
	require.NoError(t, err)
	assert.Zero(t, n)
}
