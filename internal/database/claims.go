package database

import (
	"context"
	"time"

	"github.com/headless-pm/progress-tracker/internal/models"
	"gorm.io/gorm/clause"
)

// OtherUsersClaims returns every claim on date for the given tasks held by
// someone other than userID.
func (db *Database) OtherUsersClaims(ctx context.Context, date string, taskIDs []uint, userID uint) ([]models.Claim, error) {
	var claims []models.Claim
	if len(taskIDs) == 0 {
		return claims, nil
	}
	err := db.WithContext(ctx).
		Where("date = ? AND task_id IN ? AND user_id <> ?", date, taskIDs, userID).
		Find(&claims).Error
	return claims, err
}

// ClaimsForTask returns all claims on a task for one date, from any user.
func (db *Database) ClaimsForTask(ctx context.Context, taskID uint, date string) ([]models.Claim, error) {
	var claims []models.Claim
	err := db.WithContext(ctx).
		Where("task_id = ? AND date = ?", taskID, date).
		Order("subtask_index").
		Find(&claims).Error
	return claims, err
}

func (db *Database) GetReport(ctx context.Context, id uint) (*models.DailyTaskReport, error) {
	var report models.DailyTaskReport
	err := db.WithContext(ctx).Preload("Claims", orderByID).First(&report, id).Error
	if err != nil {
		return nil, err
	}
	return &report, nil
}

func (db *Database) GetReportForDay(ctx context.Context, userID uint, date string) (*models.DailyTaskReport, error) {
	var report models.DailyTaskReport
	err := db.WithContext(ctx).
		Where("user_id = ? AND date = ?", userID, date).
		Preload("Claims", orderByID).
		First(&report).Error
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// CreateReport inserts a report and its claims. A claim that collides with
// another user's claim for the same slot fails the whole insert.
func (db *Database) CreateReport(ctx context.Context, report *models.DailyTaskReport) error {
	return db.Transaction(ctx, func(tx *Database) error {
		if err := tx.Omit(clause.Associations).Create(report).Error; err != nil {
			return err
		}
		if len(report.Claims) == 0 {
			return nil
		}
		for i := range report.Claims {
			report.Claims[i].ReportID = report.ID
			report.Claims[i].UserID = report.UserID
			report.Claims[i].Date = report.Date
		}
		return tx.Create(&report.Claims).Error
	})
}

// AppendClaims adds claims to an existing report and stamps its updated_at with now.
func (db *Database) AppendClaims(ctx context.Context, report *models.DailyTaskReport, claims []models.Claim, now time.Time) error {
	for i := range claims {
		claims[i].ReportID = report.ID
		claims[i].UserID = report.UserID
		claims[i].Date = report.Date
	}
	if err := db.WithContext(ctx).Create(&claims).Error; err != nil {
		return err
	}
	report.Claims = append(report.Claims, claims...)
	report.UpdatedAt = now
	return db.WithContext(ctx).Model(&models.DailyTaskReport{}).
		Where("id = ?", report.ID).
		Update("updated_at", now).Error
}

// SaveReport writes the report row and each claim it carries.
func (db *Database) SaveReport(ctx context.Context, report *models.DailyTaskReport) error {
	return db.Transaction(ctx, func(tx *Database) error {
		if err := tx.Omit(clause.Associations).Save(report).Error; err != nil {
			return err
		}
		for i := range report.Claims {
			if err := tx.Save(&report.Claims[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
