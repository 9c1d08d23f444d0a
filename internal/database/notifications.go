package database

import (
	"context"

	"github.com/headless-pm/progress-tracker/internal/models"
	"gorm.io/gorm/clause"
)

func (db *Database) CreateNotification(ctx context.Context, notification *models.Notification) error {
	return db.WithContext(ctx).Create(notification).Error
}

// ListNotifications returns the user's own and broadcast notifications, newest
// first. Broadcasts carry the user's own read state.
func (db *Database) ListNotifications(ctx context.Context, userID uint, limit int) ([]models.Notification, error) {
	var notifications []models.Notification
	query := db.WithContext(ctx).
		Where("user_id = ? OR user_id = 0", userID).
		Order("created_at DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&notifications).Error; err != nil {
		return nil, err
	}

	var broadcastIDs []uint
	for _, n := range notifications {
		if n.UserID == 0 {
			broadcastIDs = append(broadcastIDs, n.ID)
		}
	}
	if len(broadcastIDs) == 0 {
		return notifications, nil
	}

	var readIDs []uint
	err := db.WithContext(ctx).Model(&models.NotificationReceipt{}).
		Where("user_id = ? AND notification_id IN ?", userID, broadcastIDs).
		Pluck("notification_id", &readIDs).Error
	if err != nil {
		return nil, err
	}
	read := make(map[uint]struct{}, len(readIDs))
	for _, id := range readIDs {
		read[id] = struct{}{}
	}
	for i := range notifications {
		if notifications[i].UserID != 0 {
			continue
		}
		_, ok := read[notifications[i].ID]
		notifications[i].Read = ok
	}
	return notifications, nil
}

// MarkAllNotificationsRead marks the user's own notifications read and records a
// receipt for every broadcast the user had not read yet. It returns how many
// notifications changed state for this user.
func (db *Database) MarkAllNotificationsRead(ctx context.Context, userID uint) (int64, error) {
	var marked int64
	err := db.Transaction(ctx, func(tx *Database) error {
		result := tx.WithContext(ctx).Model(&models.Notification{}).
			Where("user_id = ? AND read = ?", userID, false).
			Update("read", true)
		if result.Error != nil {
			return result.Error
		}
		marked = result.RowsAffected

		var unread []uint
		err := tx.WithContext(ctx).Model(&models.Notification{}).
			Where("user_id = 0 AND id NOT IN (SELECT notification_id FROM notification_receipts WHERE user_id = ?)", userID).
			Pluck("id", &unread).Error
		if err != nil {
			return err
		}
		if len(unread) == 0 {
			return nil
		}
		receipts := make([]models.NotificationReceipt, len(unread))
		for i, id := range unread {
			receipts[i] = models.NotificationReceipt{NotificationID: id, UserID: userID}
		}
		result = tx.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&receipts)
		if result.Error != nil {
			return result.Error
		}
		marked += result.RowsAffected
		return nil
	})
	return marked, err
}
