package models

import "time"

type SubmissionStatus string

const (
	SubmissionStatusPendingReview SubmissionStatus = "pending_review"
	SubmissionStatusApproved      SubmissionStatus = "approved"
	SubmissionStatusRejected      SubmissionStatus = "rejected"
)

// IsTerminal reports whether the submission has been reviewed.
func (s SubmissionStatus) IsTerminal() bool {
	return s == SubmissionStatusApproved || s == SubmissionStatusRejected
}

// ReviewDecision is the outcome a reviewer may choose.
type ReviewDecision = SubmissionStatus

// TaskSubmission is the single work product attached to a task.
type TaskSubmission struct {
	ID            uint64           `gorm:"primarykey" json:"id"`
	TaskID        uint64           `gorm:"not null;uniqueIndex" json:"task_id"`
	UserID        uint64           `gorm:"not null;index" json:"user_id"`
	Report        string           `gorm:"type:text;not null" json:"report"`
	FileURL       string           `gorm:"type:varchar(2048)" json:"file_url,omitempty"`
	SubmittedAt   time.Time        `gorm:"not null;index" json:"submitted_at"`
	Status        SubmissionStatus `gorm:"type:varchar(20);not null;default:'pending_review';index" json:"status"`
	BasePoints    int              `gorm:"not null;default:0" json:"base_points"`
	QualityPoints int              `gorm:"not null;default:0" json:"quality_points"`
	BonusPoints   int              `gorm:"not null;default:0" json:"bonus_points"`
	Remarks       string           `gorm:"type:text" json:"remarks,omitempty"`
	ReviewedBy    *uint64          `json:"reviewed_by,omitempty"`
	ReviewedAt    *time.Time       `json:"reviewed_at,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`

	// Relations
	Task *Task `gorm:"foreignKey:TaskID" json:"task,omitempty"`
	User User  `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// TotalPoints is always derived, never stored.
func (s *TaskSubmission) TotalPoints() int {
	return s.BasePoints + s.QualityPoints + s.BonusPoints
}
