package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yukikurage/hr-task-review-api/internal/clock"
	"github.com/yukikurage/hr-task-review-api/internal/constants"
	"github.com/yukikurage/hr-task-review-api/internal/events"
	"github.com/yukikurage/hr-task-review-api/internal/models"
	"github.com/yukikurage/hr-task-review-api/internal/repository"
)

var (
	ErrAlreadyReviewed    = newError(ErrInvalidState, "submission already reviewed")
	ErrReviewerNotFound   = newError(ErrNotFound, "reviewer is not a member of this workspace")
	ErrNotReviewer        = newError(ErrForbidden, "only admins and managers can review submissions")
	ErrOutsideReviewScope = newError(ErrForbidden, "submission is outside your review scope")
	ErrInvalidDecision    = newError(ErrInvalidArgument, "decision must be approved or rejected")
	ErrQualityOutOfRange  = newError(ErrInvalidArgument, fmt.Sprintf("quality points must be between 0 and %d", constants.MaxQualityPoints))
	ErrBonusOutOfRange    = newError(ErrInvalidArgument, fmt.Sprintf("bonus points must be between 0 and %d", constants.MaxBonusPoints))
)

// ReviewService applies review decisions and scoring
type ReviewService struct {
	submissionRepo repository.SubmissionRepository
	identity       *IdentityService
	clock          clock.Clock
	emitter
}

// NewReviewService creates a new ReviewService
func NewReviewService(
	submissionRepo repository.SubmissionRepository,
	identity *IdentityService,
	publisher events.Publisher,
	clk clock.Clock,
	logger logrus.FieldLogger,
) *ReviewService {
	return &ReviewService{
		submissionRepo: submissionRepo,
		identity:       identity,
		clock:          clk,
		emitter:        newEmitter(publisher, clk, logger),
	}
}

// ReviewInput represents a reviewer's decision on a submission
type ReviewInput struct {
	WorkspaceID   uint64
	SubmissionID  uint64
	ReviewerID    uint64
	Decision      models.ReviewDecision
	QualityPoints *int
	BonusPoints   *int
	Remarks       string
}

// ReviewQueueItem is a pending submission awaiting the reviewer.
type ReviewQueueItem struct {
	Submission models.TaskSubmission
	Escalation EscalationState
}

// ComputeBasePoints awards the on-time points when the task has a deadline
// and the work was submitted at or before it.
func ComputeBasePoints(dueAt *time.Time, submittedAt time.Time) int {
	if dueAt != nil && !submittedAt.After(*dueAt) {
		return constants.OnTimeBasePoints
	}
	return 0
}

func pointsOrZero(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

// Review approves or rejects a pending submission. Base points are always
// derived from the submission and deadline times; approval completes the task.
func (s *ReviewService) Review(ctx context.Context, input ReviewInput) (*models.TaskSubmission, error) {
	submission, err := findSubmission(s.submissionRepo, input.WorkspaceID, input.SubmissionID)
	if err != nil {
		return nil, err
	}
	if submission.Status != models.SubmissionStatusPendingReview {
		return nil, ErrAlreadyReviewed
	}

	reviewer, err := s.identity.ResolveUser(input.WorkspaceID, input.ReviewerID)
	if err != nil {
		if errors.Is(err, ErrMemberNotFound) {
			return nil, ErrReviewerNotFound
		}
		return nil, err
	}
	if !reviewer.Role.CanReview() {
		return nil, ErrNotReviewer
	}
	assignee, err := s.identity.ResolveUser(input.WorkspaceID, submission.Task.AssignedTo)
	if err != nil && !errors.Is(err, ErrMemberNotFound) {
		return nil, err
	}
	if !CanReviewSubmission(*reviewer, assignee) {
		return nil, ErrOutsideReviewScope
	}

	if input.Decision != models.SubmissionStatusApproved && input.Decision != models.SubmissionStatusRejected {
		return nil, ErrInvalidDecision
	}
	quality := pointsOrZero(input.QualityPoints)
	if quality < 0 || quality > constants.MaxQualityPoints {
		return nil, ErrQualityOutOfRange
	}
	bonus := pointsOrZero(input.BonusPoints)
	if bonus < 0 || bonus > constants.MaxBonusPoints {
		return nil, ErrBonusOutOfRange
	}

	now := s.clock.Now()
	reviewerID := reviewer.UserID
	submission.Status = input.Decision
	submission.BasePoints = ComputeBasePoints(submission.Task.DueAt, submission.SubmittedAt)
	submission.QualityPoints = quality
	submission.BonusPoints = bonus
	submission.Remarks = strings.TrimSpace(input.Remarks)
	submission.ReviewedBy = &reviewerID
	submission.ReviewedAt = &now

	var taskStatus *models.TaskStatus
	if input.Decision == models.SubmissionStatusApproved {
		done, err := submission.Task.Status.Transition(models.TaskEventApprove)
		if err != nil {
			return nil, newError(ErrInvalidState, fmt.Sprintf("cannot approve work for a %s task", submission.Task.Status))
		}
		taskStatus = &done
	}

	if err := s.submissionRepo.ApplyReview(submission, taskStatus); err != nil {
		if errors.Is(err, repository.ErrSubmissionAlreadyReviewed) {
			return nil, ErrAlreadyReviewed
		}
		return nil, fmt.Errorf("failed to apply review: %w", err)
	}
	if taskStatus != nil {
		submission.Task.Status = *taskStatus
	}

	s.emit(ctx, events.TypeSubmissionReviewed, input.WorkspaceID, reviewerID, map[string]any{
		"submission_id": submission.ID,
		"task_id":       submission.TaskID,
		"user_id":       submission.UserID,
		"decision":      submission.Status,
		"total_points":  submission.TotalPoints(),
	})

	return submission, nil
}

// visiblePending returns the pending submissions the reviewer may act on,
// oldest first.
func (s *ReviewService) visiblePending(reviewer *Identity) ([]models.TaskSubmission, error) {
	pending, err := s.submissionRepo.ListPending(reviewer.WorkspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending submissions: %w", err)
	}
	members, err := s.identity.Members(reviewer.WorkspaceID)
	if err != nil {
		return nil, err
	}
	return VisibleSubmissions(pending, *reviewer, members), nil
}

// ReviewQueue lists the pending submissions visible to the reviewer with
// their escalation state
func (s *ReviewService) ReviewQueue(workspaceID, reviewerID uint64) ([]ReviewQueueItem, error) {
	reviewer, err := s.identity.ResolveUser(workspaceID, reviewerID)
	if err != nil {
		return nil, err
	}
	if !reviewer.Role.CanReview() {
		return nil, ErrNotReviewer
	}

	visible, err := s.visiblePending(reviewer)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	items := make([]ReviewQueueItem, len(visible))
	for i := range visible {
		items[i] = ReviewQueueItem{
			Submission: visible[i],
			Escalation: EvaluateEscalation(&visible[i], now),
		}
	}
	return items, nil
}

// ScanEscalations evaluates every pending submission in the workspace once
// and publishes an event for each that needs escalation. It is meant to be
// driven by an external scheduler.
func (s *ReviewService) ScanEscalations(ctx context.Context, workspaceID uint64) ([]EscalationState, error) {
	pending, err := s.submissionRepo.ListPending(workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending submissions: %w", err)
	}

	now := s.clock.Now()
	escalated := make([]EscalationState, 0)
	publishFailed := 0
	for i := range pending {
		state := EvaluateEscalation(&pending[i], now)
		if !state.NeedsEscalation {
			continue
		}
		escalated = append(escalated, state)

		err := s.emit(ctx, events.TypeReviewEscalated, workspaceID, 0, map[string]any{
			"submission_id":          state.SubmissionID,
			"task_id":                pending[i].TaskID,
			"assigned_to":            pending[i].Task.AssignedTo,
			"hours_since_submission": state.HoursSinceSubmission,
		})
		if err != nil {
			publishFailed++
		}
	}

	entry := s.logger.WithFields(logrus.Fields{
		"workspace_id":   workspaceID,
		"pending":        len(pending),
		"escalated":      len(escalated),
		"publish_failed": publishFailed,
	})
	if publishFailed > 0 {
		entry.Warn("escalation scan completed with undelivered events")
	} else {
		entry.Info("escalation scan completed")
	}

	return escalated, nil
}
