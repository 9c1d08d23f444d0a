package database

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/headless-pm/progress-tracker/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Database struct {
	*gorm.DB
}

// NewDatabase opens (creating if needed) the sqlite store under dataDir and
// migrates every table.
func NewDatabase(dataDir string, logLevel logger.LogLevel) (*Database, error) {
	dbPath := filepath.Join(dataDir, "db", "tracker.db")

	dbDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(dbPath+"?_busy_timeout=5000"), &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// sqlite allows a single writer; one connection keeps writers queued in
	// process instead of failing with SQLITE_BUSY.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get SQL DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.ProjectTask{},
		&models.TaskComment{},
		&models.Milestone{},
		&models.Comment{},
		&models.ProjectFile{},
		&models.Task{},
		&models.Subtask{},
		&models.DailyTaskReport{},
		&models.Claim{},
		&models.Notification{},
		&models.NotificationReceipt{},
		&models.LeaveRequest{},
		&models.DailyStandup{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Database{DB: db}, nil
}

// Transaction runs fn inside a single database transaction. fn must only use
// the Database it is handed.
func (db *Database) Transaction(ctx context.Context, fn func(tx *Database) error) error {
	return db.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Database{DB: tx})
	})
}

func (db *Database) Close() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// IsNotFound reports whether err means the requested row does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsUniqueViolation reports whether err came from a unique index rejecting a write.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// User management functions
func (db *Database) CreateUser(ctx context.Context, user *models.User) error {
	return db.WithContext(ctx).Create(user).Error
}

func (db *Database) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (db *Database) ListUsers(ctx context.Context, role *models.UserRole) ([]models.User, error) {
	var users []models.User
	query := db.WithContext(ctx)
	if role != nil {
		query = query.Where("role = ?", *role)
	}
	if err := query.Order("id").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}
