package service

import (
	"time"

	"github.com/headless-pm/progress-tracker/internal/database"
	"github.com/headless-pm/progress-tracker/internal/models"
)

// Actor is the authenticated caller of a service operation.
type Actor struct {
	ID   uint
	Role models.UserRole
}

func (a Actor) CanManage() bool {
	return a.Role.CanManage()
}

type Options struct {
	// Now is the clock; defaults to time.Now.
	Now func() time.Time
	// Location decides which calendar day "today" is; defaults to time.Local.
	Location *time.Location
	// ClaimAttempts bounds how often a claim write is retried after losing a
	// race on the slot index; values below 1 mean 1.
	ClaimAttempts int
}

type clock struct {
	now func() time.Time
	loc *time.Location
}

func (c clock) Now() time.Time {
	return c.now()
}

func (c clock) Today() string {
	return c.now().In(c.loc).Format(models.DateLayout)
}

// Services bundles every domain service over one database.
type Services struct {
	Projects      *ProjectService
	Tasks         *TaskService
	Claims        *ClaimService
	Reports       *ReportService
	Notifications *NotificationService
	Users         *UserService
	Leave         *LeaveService
	Standups      *StandupService
}

func New(db *database.Database, opts Options) *Services {
	clk := clock{now: opts.Now, loc: opts.Location}
	if clk.now == nil {
		clk.now = time.Now
	}
	if clk.loc == nil {
		clk.loc = time.Local
	}
	attempts := opts.ClaimAttempts
	if attempts < 1 {
		attempts = 1
	}

	notifications := NewNotificationService(db)
	projects := NewProjectService(db, clk, notifications)

	return &Services{
		Projects:      projects,
		Tasks:         NewTaskService(db, projects),
		Claims:        NewClaimService(db, clk, attempts),
		Reports:       NewReportService(db, clk, projects),
		Notifications: notifications,
		Users:         NewUserService(db),
		Leave:         NewLeaveService(db, clk),
		Standups:      NewStandupService(db, clk),
	}
}
