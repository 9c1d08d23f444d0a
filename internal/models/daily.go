package models

import (
	"fmt"
	"time"
)

// DateLayout is the calendar-date format used for daily reports, claims and standups.
const DateLayout = "2006-01-02"

// DailyTaskReport is one employee's claimed work for one calendar date.
type DailyTaskReport struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	UserID      uint       `json:"user_id" gorm:"not null;uniqueIndex:idx_report_user_date"`
	Date        string     `json:"date" gorm:"not null;uniqueIndex:idx_report_user_date"`
	Submitted   bool       `json:"submitted"`
	SubmittedAt *time.Time `json:"submitted_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Claims      []Claim    `json:"claims" gorm:"foreignKey:ReportID"`
}

// Claim assigns one subtask to one employee for one date. The unique index on
// (date, task_id, subtask_index) is what keeps a subtask from having two claimants.
type Claim struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	ReportID     uint       `json:"report_id" gorm:"not null;index"`
	UserID       uint       `json:"user_id" gorm:"not null"`
	Date         string     `json:"date" gorm:"not null;uniqueIndex:idx_claim_slot"`
	TaskID       uint       `json:"task_id" gorm:"not null;uniqueIndex:idx_claim_slot"`
	SubtaskIndex int        `json:"subtask_index" gorm:"not null;uniqueIndex:idx_claim_slot"`
	TaskTitle    string     `json:"task_title"`
	SubtaskTitle string     `json:"subtask_title"`
	ProjectTitle string     `json:"project_title"`
	Status       WorkStatus `json:"status" gorm:"default:'pending'"`
	Remarks      string     `json:"remarks"`
	TimeSpent    float64    `json:"time_spent"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (c Claim) Key() string {
	return ClaimKey(c.TaskID, c.SubtaskIndex)
}

// ClaimKey renders the "<taskId>-<subtaskIndex>" key clients use to identify a claim.
func ClaimKey(taskID uint, subtaskIndex int) string {
	return fmt.Sprintf("%d-%d", taskID, subtaskIndex)
}

type LeaveStatus string

const (
	LeaveStatusPending  LeaveStatus = "pending"
	LeaveStatusApproved LeaveStatus = "approved"
	LeaveStatusRejected LeaveStatus = "rejected"
)

type LeaveRequest struct {
	ID         uint        `json:"id" gorm:"primaryKey"`
	UserID     uint        `json:"user_id" gorm:"not null;index"`
	FromDate   string      `json:"from_date" gorm:"not null"`
	ToDate     string      `json:"to_date" gorm:"not null"`
	Reason     string      `json:"reason"`
	Status     LeaveStatus `json:"status" gorm:"default:'pending'"`
	ReviewedBy *uint       `json:"reviewed_by,omitempty"`
	ReviewedAt *time.Time  `json:"reviewed_at,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

type DailyStandup struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_standup_user_date"`
	Date      string    `json:"date" gorm:"not null;uniqueIndex:idx_standup_user_date"`
	Yesterday string    `json:"yesterday"`
	Today     string    `json:"today"`
	Blockers  string    `json:"blockers"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
