package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/headless-pm/progress-tracker/internal/database"
	"github.com/headless-pm/progress-tracker/internal/models"
)

type UserService struct {
	db *database.Database
}

func NewUserService(db *database.Database) *UserService {
	return &UserService{db: db}
}

type CreateUserInput struct {
	Name  string          `json:"name" validate:"required"`
	Email string          `json:"email" validate:"required,email"`
	Role  models.UserRole `json:"role" validate:"required"`
}

func (s *UserService) CreateUser(ctx context.Context, in CreateUserInput) (*models.User, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if !in.Role.Valid() {
		return nil, validationError("unknown role %q", in.Role)
	}
	user := &models.User{Name: in.Name, Email: in.Email, Role: in.Role, IsActive: true}
	if err := s.db.CreateUser(ctx, user); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, validationError("email %s is already registered", in.Email)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

func (s *UserService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.db.GetUserByID(ctx, id)
	if err != nil {
		return nil, lookupError("user", id, err)
	}
	return user, nil
}

func (s *UserService) ListUsers(ctx context.Context, role *models.UserRole) ([]models.User, error) {
	return s.db.ListUsers(ctx, role)
}

type LeaveService struct {
	db    *database.Database
	clock clock
	log   *slog.Logger
}

func NewLeaveService(db *database.Database, clk clock) *LeaveService {
	return &LeaveService{db: db, clock: clk, log: logger("LeaveService")}
}

type LeaveInput struct {
	FromDate string `json:"from_date" validate:"required,day"`
	ToDate   string `json:"to_date" validate:"required,day"`
	Reason   string `json:"reason"`
}

func (s *LeaveService) Request(ctx context.Context, actor Actor, in LeaveInput) (*models.LeaveRequest, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	// YYYY-MM-DD orders lexically.
	if in.ToDate < in.FromDate {
		return nil, validationError("to_date %s is before from_date %s", in.ToDate, in.FromDate)
	}
	req := &models.LeaveRequest{
		UserID:   actor.ID,
		FromDate: in.FromDate,
		ToDate:   in.ToDate,
		Reason:   in.Reason,
		Status:   models.LeaveStatusPending,
	}
	if err := s.db.CreateLeaveRequest(ctx, req); err != nil {
		return nil, fmt.Errorf("failed to create leave request: %w", err)
	}
	s.log.Info("leave-request:created", "requestID", req.ID, "userID", actor.ID)
	return req, nil
}

// List returns the caller's requests, or everyone's for managers.
func (s *LeaveService) List(ctx context.Context, actor Actor, st *models.LeaveStatus) ([]models.LeaveRequest, error) {
	var userID *uint
	if !actor.CanManage() {
		userID = &actor.ID
	}
	return s.db.ListLeaveRequests(ctx, userID, st)
}

// Review approves or rejects a pending request.
func (s *LeaveService) Review(ctx context.Context, actor Actor, id uint, decision models.LeaveStatus) (*models.LeaveRequest, error) {
	if !actor.CanManage() {
		return nil, fmt.Errorf("reviewing leave: %w", ErrForbidden)
	}
	if decision != models.LeaveStatusApproved && decision != models.LeaveStatusRejected {
		return nil, validationError("decision must be approved or rejected, got %q", decision)
	}

	req, err := s.db.GetLeaveRequest(ctx, id)
	if err != nil {
		return nil, lookupError("leave request", id, err)
	}
	if req.Status != models.LeaveStatusPending {
		return nil, validationError("leave request %d is already %s", id, req.Status)
	}

	now := s.clock.Now()
	req.Status = decision
	req.ReviewedBy = &actor.ID
	req.ReviewedAt = &now
	if err := s.db.SaveLeaveRequest(ctx, req); err != nil {
		return nil, fmt.Errorf("failed to save leave request %d: %w", id, err)
	}
	s.log.Info("leave-request:reviewed", "requestID", id, "decision", decision, "reviewer", actor.ID)
	return req, nil
}

type StandupService struct {
	db    *database.Database
	clock clock
}

func NewStandupService(db *database.Database, clk clock) *StandupService {
	return &StandupService{db: db, clock: clk}
}

type StandupInput struct {
	Date      string `json:"date" validate:"omitempty,day"`
	Yesterday string `json:"yesterday"`
	Today     string `json:"today" validate:"required"`
	Blockers  string `json:"blockers"`
}

// Submit stores the caller's standup for the date, replacing an earlier one.
func (s *StandupService) Submit(ctx context.Context, actor Actor, in StandupInput) (*models.DailyStandup, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if in.Date == "" {
		in.Date = s.clock.Today()
	}
	standup := &models.DailyStandup{
		UserID:    actor.ID,
		Date:      in.Date,
		Yesterday: in.Yesterday,
		Today:     in.Today,
		Blockers:  in.Blockers,
	}
	if err := s.db.UpsertStandup(ctx, standup); err != nil {
		return nil, fmt.Errorf("failed to save standup: %w", err)
	}
	return standup, nil
}

func (s *StandupService) List(ctx context.Context, date string) ([]models.DailyStandup, error) {
	if date == "" {
		date = s.clock.Today()
	}
	return s.db.ListStandups(ctx, date)
}
