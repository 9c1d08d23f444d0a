package service

import (
	"context"
	"fmt"

	"github.com/headless-pm/progress-tracker/internal/database"
	"github.com/headless-pm/progress-tracker/internal/models"
)

type NotificationService struct {
	db *database.Database
}

func NewNotificationService(db *database.Database) *NotificationService {
	return &NotificationService{db: db}
}

// Notify appends a notification; userID 0 addresses every user.
func (s *NotificationService) Notify(ctx context.Context, userID uint, message string) error {
	n := &models.Notification{UserID: userID, Message: message}
	if err := s.db.CreateNotification(ctx, n); err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

func (s *NotificationService) List(ctx context.Context, userID uint, limit int) ([]models.Notification, error) {
	return s.db.ListNotifications(ctx, userID, limit)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	return s.db.MarkAllNotificationsRead(ctx, userID)
}
