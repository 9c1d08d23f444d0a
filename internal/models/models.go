package models

import (
	"time"
)

type ProjectStatus string

const (
	ProjectStatusNotStarted ProjectStatus = "NotStarted"
	ProjectStatusInProgress ProjectStatus = "InProgress"
	ProjectStatusCompleted  ProjectStatus = "Completed"
	ProjectStatusOnHold     ProjectStatus = "OnHold"
)

func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectStatusNotStarted, ProjectStatusInProgress, ProjectStatusCompleted, ProjectStatusOnHold:
		return true
	}
	return false
}

type ProjectHealth string

// Health is never computed from budget usage; every project reports OnTrack.
const ProjectHealthOnTrack ProjectHealth = "OnTrack"

// TaskStatus is the status of a task embedded in a project.
type TaskStatus string

const (
	TaskStatusToDo       TaskStatus = "ToDo"
	TaskStatusInProgress TaskStatus = "InProgress"
	TaskStatusCompleted  TaskStatus = "Completed"
	TaskStatusOnHold     TaskStatus = "OnHold"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusToDo, TaskStatusInProgress, TaskStatusCompleted, TaskStatusOnHold:
		return true
	}
	return false
}

// WorkStatus is the three-state status shared by legacy tasks, subtasks and claims.
type WorkStatus string

const (
	WorkStatusPending    WorkStatus = "pending"
	WorkStatusInProgress WorkStatus = "in progress"
	WorkStatusCompleted  WorkStatus = "completed"
)

func (s WorkStatus) Valid() bool {
	switch s {
	case WorkStatusPending, WorkStatusInProgress, WorkStatusCompleted:
		return true
	}
	return false
}

type Project struct {
	ID               uint          `json:"id" gorm:"primaryKey"`
	Title            string        `json:"title" gorm:"not null"`
	Description      string        `json:"description"`
	ClientID         *uint         `json:"client_id"`
	ManagerID        *uint         `json:"manager_id"`
	Status           ProjectStatus `json:"status" gorm:"default:'NotStarted'"`
	Health           ProjectHealth `json:"health" gorm:"default:'OnTrack'"`
	Progress         int           `json:"progress" gorm:"default:0"`
	Budget           float64       `json:"budget"`
	TotalLoggedHours float64       `json:"total_logged_hours" gorm:"default:0"`
	StartDate        *time.Time    `json:"start_date"`
	EndDate          *time.Time    `json:"end_date"`
	CompletedAt      *time.Time    `json:"completed_at,omitempty"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
	Tasks            []ProjectTask `json:"tasks" gorm:"foreignKey:ProjectID"`
	Milestones       []Milestone   `json:"milestones,omitempty" gorm:"foreignKey:ProjectID"`
	Comments         []Comment     `json:"comments,omitempty" gorm:"foreignKey:ProjectID"`
	Files            []ProjectFile `json:"files,omitempty" gorm:"foreignKey:ProjectID"`
}

// ProjectTask is a task owned by a single project. Its status and hours feed the
// project's progress, status and logged-hours aggregate.
type ProjectTask struct {
	ID          uint          `json:"id" gorm:"primaryKey"`
	ProjectID   uint          `json:"project_id" gorm:"not null;index"`
	Title       string        `json:"title" gorm:"not null"`
	Description string        `json:"description"`
	AssigneeID  *uint         `json:"assignee_id"`
	Status      TaskStatus    `json:"status" gorm:"default:'ToDo'"`
	LoggedHours float64       `json:"logged_hours" gorm:"default:0"`
	DueDate     *time.Time    `json:"due_date,omitempty"`
	CompletedAt *time.Time    `json:"completed_at,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
	Comments    []TaskComment `json:"comments,omitempty" gorm:"foreignKey:ProjectTaskID"`
}

type TaskComment struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	ProjectTaskID uint      `json:"project_task_id" gorm:"not null;index"`
	AuthorID      uint      `json:"author_id"`
	Content       string    `json:"content" gorm:"not null"`
	CreatedAt     time.Time `json:"created_at"`
}

type Milestone struct {
	ID        uint       `json:"id" gorm:"primaryKey"`
	ProjectID uint       `json:"project_id" gorm:"not null;index"`
	Title     string     `json:"title" gorm:"not null"`
	DueDate   *time.Time `json:"due_date,omitempty"`
	Reached   bool       `json:"reached"`
	CreatedAt time.Time  `json:"created_at"`
}

type Comment struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	ProjectID uint      `json:"project_id" gorm:"not null;index"`
	AuthorID  uint      `json:"author_id"`
	Content   string    `json:"content" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
}

// ProjectFile records metadata for a file attached to a project. The bytes live
// elsewhere.
type ProjectFile struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	ProjectID  uint      `json:"project_id" gorm:"not null;index"`
	Filename   string    `json:"filename" gorm:"not null"`
	URL        string    `json:"url"`
	Size       int64     `json:"size"`
	MimeType   string    `json:"mime_type"`
	UploadedBy uint      `json:"uploaded_by"`
	CreatedAt  time.Time `json:"created_at"`
}

// Task is the standalone task whose status is derived from its subtasks. Daily
// claims reference a Task and one of its subtasks by index.
type Task struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	ProjectID   *uint      `json:"project_id" gorm:"index"`
	Title       string     `json:"title" gorm:"not null"`
	Description string     `json:"description"`
	Status      WorkStatus `json:"status" gorm:"default:'pending'"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Project     *Project   `json:"project,omitempty" gorm:"foreignKey:ProjectID"`
	Subtasks    []Subtask  `json:"subtasks" gorm:"foreignKey:TaskID"`
}

type Subtask struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	TaskID    uint   `json:"task_id" gorm:"not null;uniqueIndex:idx_subtask_position"`
	Position  int    `json:"position" gorm:"not null;uniqueIndex:idx_subtask_position"`
	Title     string `json:"title" gorm:"not null"`
	Completed bool   `json:"completed"`
}

// Notification is addressed to one user, or to every user when UserID is 0.
// Read is stored on the row for addressed notifications; for broadcasts it is
// filled per reader from NotificationReceipt.
type Notification struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"index"`
	Message   string    `json:"message" gorm:"not null"`
	Read      bool      `json:"read" gorm:"default:false"`
	CreatedAt time.Time `json:"created_at"`
}

// NotificationReceipt records that one user has read a broadcast notification.
type NotificationReceipt struct {
	NotificationID uint      `gorm:"primaryKey"`
	UserID         uint      `gorm:"primaryKey"`
	CreatedAt      time.Time
}
