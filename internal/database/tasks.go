package database

import (
	"context"

	"github.com/headless-pm/progress-tracker/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func orderByPosition(tx *gorm.DB) *gorm.DB {
	return tx.Order("position ASC")
}

// CreateTask inserts a standalone task together with its subtasks.
func (db *Database) CreateTask(ctx context.Context, task *models.Task) error {
	return db.WithContext(ctx).Create(task).Error
}

// GetTask loads a task with its subtasks ordered by position, so a subtask's
// slice index equals its claim index.
func (db *Database) GetTask(ctx context.Context, id uint) (*models.Task, error) {
	var task models.Task
	err := db.WithContext(ctx).
		Preload("Subtasks", orderByPosition).
		Preload("Project").
		First(&task, id).Error
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// GetTasks loads the given tasks keyed by id; missing ids are simply absent.
func (db *Database) GetTasks(ctx context.Context, ids []uint) (map[uint]models.Task, error) {
	out := make(map[uint]models.Task, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var tasks []models.Task
	err := db.WithContext(ctx).
		Preload("Subtasks", orderByPosition).
		Preload("Project").
		Where("id IN ?", ids).
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	for _, t := range tasks {
		out[t.ID] = t
	}
	return out, nil
}

func (db *Database) ListTasks(ctx context.Context, projectID *uint, status *models.WorkStatus) ([]models.Task, error) {
	var tasks []models.Task
	query := db.WithContext(ctx)

	if projectID != nil {
		query = query.Where("project_id = ?", *projectID)
	}
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	err := query.Preload("Subtasks", orderByPosition).Order("id").Find(&tasks).Error
	return tasks, err
}

// SaveTask writes the task row and each of its subtasks.
func (db *Database) SaveTask(ctx context.Context, task *models.Task) error {
	return db.Transaction(ctx, func(tx *Database) error {
		if err := tx.Omit(clause.Associations).Save(task).Error; err != nil {
			return err
		}
		for i := range task.Subtasks {
			task.Subtasks[i].TaskID = task.ID
			if err := tx.Save(&task.Subtasks[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
