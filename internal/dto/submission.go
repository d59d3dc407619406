package dto

import (
	"time"

	"github.com/yukikurage/hr-task-review-api/internal/models"
	"github.com/yukikurage/hr-task-review-api/internal/services"
)

// SubmissionDTO represents a task submission in API responses
type SubmissionDTO struct {
	ID            uint64                  `json:"id"`
	TaskID        uint64                  `json:"task_id"`
	UserID        uint64                  `json:"user_id"`
	Report        string                  `json:"report"`
	FileURL       string                  `json:"file_url,omitempty"`
	SubmittedAt   time.Time               `json:"submitted_at"`
	Status        models.SubmissionStatus `json:"status"`
	BasePoints    int                     `json:"base_points"`
	QualityPoints int                     `json:"quality_points"`
	BonusPoints   int                     `json:"bonus_points"`
	TotalPoints   int                     `json:"total_points"`
	Remarks       string                  `json:"remarks,omitempty"`
	ReviewedBy    *uint64                 `json:"reviewed_by"`
	ReviewedAt    *time.Time              `json:"reviewed_at"`
}

// SubmissionDetailDTO is a submission with its escalation state
type SubmissionDetailDTO struct {
	SubmissionDTO
	Task       *TaskSummaryDTO          `json:"task,omitempty"`
	Escalation services.EscalationState `json:"escalation"`
}

// TaskSummaryDTO is the task context shown alongside a submission
type TaskSummaryDTO struct {
	ID         uint64            `json:"id"`
	Title      string            `json:"title"`
	Status     models.TaskStatus `json:"status"`
	DueAt      *time.Time        `json:"due_at"`
	AssignedTo uint64            `json:"assigned_to"`
}

// ReviewQueueResponse lists pending submissions, oldest first
type ReviewQueueResponse struct {
	Submissions []SubmissionDetailDTO `json:"submissions"`
	Total       int                   `json:"total"`
	Escalated   int                   `json:"escalated"`
}

func ToSubmissionDTO(sub models.TaskSubmission) SubmissionDTO {
	return SubmissionDTO{
		ID:            sub.ID,
		TaskID:        sub.TaskID,
		UserID:        sub.UserID,
		Report:        sub.Report,
		FileURL:       sub.FileURL,
		SubmittedAt:   sub.SubmittedAt,
		Status:        sub.Status,
		BasePoints:    sub.BasePoints,
		QualityPoints: sub.QualityPoints,
		BonusPoints:   sub.BonusPoints,
		TotalPoints:   sub.TotalPoints(),
		Remarks:       sub.Remarks,
		ReviewedBy:    sub.ReviewedBy,
		ReviewedAt:    sub.ReviewedAt,
	}
}

func ToSubmissionDetailDTO(sub models.TaskSubmission, escalation services.EscalationState) SubmissionDetailDTO {
	dto := SubmissionDetailDTO{
		SubmissionDTO: ToSubmissionDTO(sub),
		Escalation:    escalation,
	}
	if sub.Task != nil {
		dto.Task = &TaskSummaryDTO{
			ID:         sub.Task.ID,
			Title:      sub.Task.Title,
			Status:     sub.Task.Status,
			DueAt:      sub.Task.DueAt,
			AssignedTo: sub.Task.AssignedTo,
		}
	}
	return dto
}

// ToReviewQueueResponse converts queue items and counts the escalated ones
func ToReviewQueueResponse(items []services.ReviewQueueItem) ReviewQueueResponse {
	resp := ReviewQueueResponse{
		Submissions: make([]SubmissionDetailDTO, len(items)),
		Total:       len(items),
	}
	for i, item := range items {
		resp.Submissions[i] = ToSubmissionDetailDTO(item.Submission, item.Escalation)
		if item.Escalation.NeedsEscalation {
			resp.Escalated++
		}
	}
	return resp
}
