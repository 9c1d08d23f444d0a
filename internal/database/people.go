package database

import (
	"context"

	"github.com/headless-pm/progress-tracker/internal/models"
	"gorm.io/gorm/clause"
)

func (db *Database) CreateLeaveRequest(ctx context.Context, req *models.LeaveRequest) error {
	return db.WithContext(ctx).Create(req).Error
}

func (db *Database) GetLeaveRequest(ctx context.Context, id uint) (*models.LeaveRequest, error) {
	var req models.LeaveRequest
	if err := db.WithContext(ctx).First(&req, id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

// ListLeaveRequests lists requests for one user, or for everyone when userID is nil.
func (db *Database) ListLeaveRequests(ctx context.Context, userID *uint, status *models.LeaveStatus) ([]models.LeaveRequest, error) {
	var reqs []models.LeaveRequest
	query := db.WithContext(ctx)
	if userID != nil {
		query = query.Where("user_id = ?", *userID)
	}
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	err := query.Order("created_at DESC, id DESC").Find(&reqs).Error
	return reqs, err
}

func (db *Database) SaveLeaveRequest(ctx context.Context, req *models.LeaveRequest) error {
	return db.WithContext(ctx).Save(req).Error
}

// UpsertStandup stores the standup for (user, date), replacing an earlier one.
func (db *Database) UpsertStandup(ctx context.Context, standup *models.DailyStandup) error {
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"yesterday", "today", "blockers", "updated_at"}),
	}).Create(standup).Error
}

func (db *Database) ListStandups(ctx context.Context, date string) ([]models.DailyStandup, error) {
	var standups []models.DailyStandup
	err := db.WithContext(ctx).Where("date = ?", date).Order("user_id").Find(&standups).Error
	return standups, err
}
