package services

import (
	"time"

	"github.com/yukikurage/hr-task-review-api/internal/constants"
	"github.com/yukikurage/hr-task-review-api/internal/models"
)

// EscalationState is the computed-on-read review urgency of a submission.
type EscalationState struct {
	SubmissionID         uint64 `json:"submission_id"`
	HoursSinceSubmission int    `json:"hours_since_submission"`
	NeedsEscalation      bool   `json:"needs_escalation"`
}

// EvaluateEscalation flags a submission that has been pending for more than
// the escalation threshold at now. Hours are whole hours, rounded down.
func EvaluateEscalation(sub *models.TaskSubmission, now time.Time) EscalationState {
	elapsed := now.Sub(sub.SubmittedAt)
	if elapsed < 0 {
		elapsed = 0
	}

	return EscalationState{
		SubmissionID:         sub.ID,
		HoursSinceSubmission: int(elapsed / time.Hour),
		NeedsEscalation:      sub.Status == models.SubmissionStatusPendingReview && elapsed > constants.EscalationThreshold,
	}
}
