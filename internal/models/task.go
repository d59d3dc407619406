package models

import (
	"time"

	"gorm.io/gorm"
)

type TaskStatus string

const (
	TaskStatusOpen       TaskStatus = "OPEN"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusBlocked    TaskStatus = "BLOCKED"
	TaskStatusDone       TaskStatus = "DONE"
	TaskStatusCancelled  TaskStatus = "CANCELLED"
)

// Valid reports whether s is one of the five task statuses.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusOpen, TaskStatusInProgress, TaskStatusBlocked, TaskStatusDone, TaskStatusCancelled:
		return true
	}
	return false
}

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "LOW"
	TaskPriorityMedium TaskPriority = "MEDIUM"
	TaskPriorityHigh   TaskPriority = "HIGH"
)

// Valid reports whether p is a known priority.
func (p TaskPriority) Valid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
		return true
	}
	return false
}

type Task struct {
	ID           uint64         `gorm:"primarykey" json:"id"`
	WorkspaceID  uint64         `gorm:"not null;index" json:"workspace_id"`
	Title        string         `gorm:"not null" json:"title"`
	Description  string         `gorm:"type:text" json:"description"`
	Objectives   string         `gorm:"type:text" json:"objectives"`
	Priority     TaskPriority   `gorm:"type:varchar(10);not null;default:'MEDIUM'" json:"priority"`
	Status       TaskStatus     `gorm:"type:varchar(20);not null;default:'OPEN';index" json:"status"`
	StartDate    time.Time      `gorm:"not null" json:"start_date"`
	EndDate      *time.Time     `json:"end_date"`
	DueAt        *time.Time     `json:"due_at"`
	AssignedTo   uint64         `gorm:"not null;index" json:"assigned_to"`
	AssignedBy   uint64         `gorm:"not null" json:"assigned_by"`
	AssignedRole Role           `gorm:"type:varchar(20);not null" json:"assigned_role"`
	CreatedBy    uint64         `gorm:"not null;index" json:"created_by"`
	CreatedRole  Role           `gorm:"type:varchar(20);not null" json:"created_role"`
	CreatedAt    time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Assignee   User            `gorm:"foreignKey:AssignedTo" json:"assignee,omitempty"`
	Creator    User            `gorm:"foreignKey:CreatedBy" json:"creator,omitempty"`
	Workspace  Workspace       `gorm:"foreignKey:WorkspaceID" json:"workspace,omitempty"`
	Submission *TaskSubmission `gorm:"foreignKey:TaskID" json:"submission,omitempty"`
}

// IsOverdue reports whether the task has a deadline in the past and is not done.
func (t *Task) IsOverdue(now time.Time) bool {
	return t.DueAt != nil && t.DueAt.Before(now) && t.Status != TaskStatusDone
}
