package database

import (
	"context"
	"time"

	"github.com/headless-pm/progress-tracker/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func orderByID(tx *gorm.DB) *gorm.DB {
	return tx.Order("id ASC")
}

func (db *Database) CreateProject(ctx context.Context, project *models.Project) error {
	return db.WithContext(ctx).Create(project).Error
}

// GetProject loads a project with its tasks in insertion order and its
// milestones, comments and files.
func (db *Database) GetProject(ctx context.Context, id uint) (*models.Project, error) {
	var project models.Project
	err := db.WithContext(ctx).
		Preload("Tasks", orderByID).
		Preload("Tasks.Comments", orderByID).
		Preload("Milestones", orderByID).
		Preload("Comments", orderByID).
		Preload("Files", orderByID).
		First(&project, id).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (db *Database) ListProjects(ctx context.Context, status *models.ProjectStatus) ([]models.Project, error) {
	var projects []models.Project
	query := db.WithContext(ctx)
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	err := query.Preload("Tasks", orderByID).Order("id").Find(&projects).Error
	return projects, err
}

func (db *Database) ListProjectIDs(ctx context.Context) ([]uint, error) {
	var ids []uint
	err := db.WithContext(ctx).Model(&models.Project{}).Order("id").Pluck("id", &ids).Error
	return ids, err
}

// SaveProject writes the project row only; child collections have their own
// write paths.
func (db *Database) SaveProject(ctx context.Context, project *models.Project) error {
	return db.WithContext(ctx).Omit(clause.Associations).Save(project).Error
}

func (db *Database) DeleteProject(ctx context.Context, id uint) error {
	return db.Transaction(ctx, func(tx *Database) error {
		if err := tx.Where("project_task_id IN (SELECT id FROM project_tasks WHERE project_id = ?)", id).
			Delete(&models.TaskComment{}).Error; err != nil {
			return err
		}
		for _, child := range []interface{}{
			&models.ProjectTask{},
			&models.Milestone{},
			&models.Comment{},
			&models.ProjectFile{},
		} {
			if err := tx.Where("project_id = ?", id).Delete(child).Error; err != nil {
				return err
			}
		}

		// Standalone tasks survive the project; they just lose the link.
		if err := tx.Model(&models.Task{}).Where("project_id = ?", id).
			Update("project_id", nil).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.Project{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (db *Database) CreateProjectTask(ctx context.Context, task *models.ProjectTask) error {
	return db.WithContext(ctx).Create(task).Error
}

func (db *Database) GetProjectTask(ctx context.Context, projectID, taskID uint) (*models.ProjectTask, error) {
	var task models.ProjectTask
	err := db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Preload("Comments", orderByID).
		First(&task, taskID).Error
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (db *Database) ListProjectTasks(ctx context.Context, projectID uint) ([]models.ProjectTask, error) {
	var tasks []models.ProjectTask
	err := db.WithContext(ctx).Where("project_id = ?", projectID).Order("id").Find(&tasks).Error
	return tasks, err
}

func (db *Database) SaveProjectTask(ctx context.Context, task *models.ProjectTask) error {
	return db.WithContext(ctx).Omit(clause.Associations).Save(task).Error
}

func (db *Database) DeleteProjectTask(ctx context.Context, projectID, taskID uint) error {
	return db.Transaction(ctx, func(tx *Database) error {
		result := tx.Where("project_id = ?", projectID).Delete(&models.ProjectTask{}, taskID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Where("project_task_id = ?", taskID).Delete(&models.TaskComment{}).Error
	})
}

func (db *Database) AddTaskComment(ctx context.Context, comment *models.TaskComment) error {
	return db.WithContext(ctx).Create(comment).Error
}

func (db *Database) AddMilestone(ctx context.Context, milestone *models.Milestone) error {
	return db.WithContext(ctx).Create(milestone).Error
}

func (db *Database) AddComment(ctx context.Context, comment *models.Comment) error {
	return db.WithContext(ctx).Create(comment).Error
}

func (db *Database) AddFile(ctx context.Context, file *models.ProjectFile) error {
	return db.WithContext(ctx).Create(file).Error
}

// StatusCount is one row of a group-by-status count.
type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

// ProjectTaskStats counts a project's tasks per status and totals overdue ones.
func (db *Database) ProjectTaskStats(ctx context.Context, projectID uint) ([]StatusCount, int64, error) {
	var counts []StatusCount
	err := db.WithContext(ctx).Model(&models.ProjectTask{}).
		Select("status, COUNT(*) as count").
		Where("project_id = ?", projectID).
		Group("status").
		Order("status").
		Scan(&counts).Error
	if err != nil {
		return nil, 0, err
	}

	var overdue int64
	err = db.WithContext(ctx).Model(&models.ProjectTask{}).
		Where("project_id = ? AND due_date < ? AND status != ?", projectID, time.Now(), models.TaskStatusCompleted).
		Count(&overdue).Error
	return counts, overdue, err
}
