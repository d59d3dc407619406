package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/yukikurage/hr-task-review-api/internal/clock"
	"github.com/yukikurage/hr-task-review-api/internal/events"
	"github.com/yukikurage/hr-task-review-api/internal/models"
	"github.com/yukikurage/hr-task-review-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrSubmissionNotFound = newError(ErrNotFound, "submission not found")
	ErrReportRequired     = newError(ErrInvalidArgument, "report is required")
	ErrAlreadySubmitted   = newError(ErrInvalidState, "Task already submitted")
)

// SubmissionService owns the one-submission-per-task workflow
type SubmissionService struct {
	taskRepo       repository.TaskRepository
	submissionRepo repository.SubmissionRepository
	identity       *IdentityService
	clock          clock.Clock
	emitter
}

// NewSubmissionService creates a new SubmissionService
func NewSubmissionService(
	taskRepo repository.TaskRepository,
	submissionRepo repository.SubmissionRepository,
	identity *IdentityService,
	publisher events.Publisher,
	clk clock.Clock,
	logger logrus.FieldLogger,
) *SubmissionService {
	return &SubmissionService{
		taskRepo:       taskRepo,
		submissionRepo: submissionRepo,
		identity:       identity,
		clock:          clk,
		emitter:        newEmitter(publisher, clk, logger),
	}
}

// SubmitInput represents a work submission against a task
type SubmitInput struct {
	WorkspaceID uint64
	TaskID      uint64
	UserID      uint64
	Report      string
	FileURL     string
}

// SubmissionView is a submission with its escalation state at read time.
type SubmissionView struct {
	Submission models.TaskSubmission
	Escalation EscalationState
}

// Submit records the assignee's single submission and moves an OPEN task to
// IN_PROGRESS in the same transaction.
func (s *SubmissionService) Submit(ctx context.Context, input SubmitInput) (*models.TaskSubmission, error) {
	task, err := s.taskRepo.FindByID(input.TaskID, "Submission")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	if task.WorkspaceID != input.WorkspaceID || task.AssignedTo != input.UserID {
		return nil, ErrTaskNotFound
	}

	report := strings.TrimSpace(input.Report)
	if report == "" {
		return nil, ErrReportRequired
	}

	if task.Submission != nil {
		return nil, ErrAlreadySubmitted
	}

	next, err := task.Status.Transition(models.TaskEventSubmit)
	if err != nil {
		return nil, newError(ErrInvalidState, fmt.Sprintf("cannot submit work for a %s task", task.Status))
	}

	submission := &models.TaskSubmission{
		TaskID:      task.ID,
		UserID:      input.UserID,
		Report:      report,
		FileURL:     strings.TrimSpace(input.FileURL),
		SubmittedAt: s.clock.Now(),
		Status:      models.SubmissionStatusPendingReview,
	}

	if err := s.submissionRepo.CreateAndAdvanceTask(submission, next); err != nil {
		if errors.Is(err, repository.ErrDuplicateSubmission) {
			return nil, ErrAlreadySubmitted
		}
		return nil, fmt.Errorf("failed to create submission: %w", err)
	}

	s.emit(ctx, events.TypeSubmissionCreated, input.WorkspaceID, input.UserID, map[string]any{
		"task_id":       task.ID,
		"submission_id": submission.ID,
		"title":         task.Title,
	})

	return submission, nil
}

// loadVisible returns a submission the caller may see: their own, or one a
// reviewer with authority over the assignee may act on. Anything else is
// reported as not found.
func (s *SubmissionService) loadVisible(workspaceID, submissionID, callerID uint64) (*models.TaskSubmission, error) {
	caller, err := s.identity.ResolveUser(workspaceID, callerID)
	if err != nil {
		return nil, err
	}

	submission, err := findSubmission(s.submissionRepo, workspaceID, submissionID)
	if err != nil {
		return nil, err
	}
	if submission.UserID == caller.UserID {
		return submission, nil
	}

	assignee, err := s.identity.ResolveUser(workspaceID, submission.Task.AssignedTo)
	if err != nil && !errors.Is(err, ErrMemberNotFound) {
		return nil, err
	}
	if !CanReviewSubmission(*caller, assignee) {
		return nil, ErrSubmissionNotFound
	}
	return submission, nil
}

// GetSubmission returns a visible submission with its escalation state
func (s *SubmissionService) GetSubmission(workspaceID, submissionID, callerID uint64) (*SubmissionView, error) {
	submission, err := s.loadVisible(workspaceID, submissionID, callerID)
	if err != nil {
		return nil, err
	}

	return &SubmissionView{
		Submission: *submission,
		Escalation: EvaluateEscalation(submission, s.clock.Now()),
	}, nil
}

// GetSubmissionEscalation reports how long a submission has waited and
// whether it needs escalation
func (s *SubmissionService) GetSubmissionEscalation(workspaceID, submissionID, callerID uint64) (*EscalationState, error) {
	submission, err := s.loadVisible(workspaceID, submissionID, callerID)
	if err != nil {
		return nil, err
	}

	state := EvaluateEscalation(submission, s.clock.Now())
	return &state, nil
}

// findSubmission loads a submission with its task and hides other workspaces.
func findSubmission(repo repository.SubmissionRepository, workspaceID, submissionID uint64) (*models.TaskSubmission, error) {
	submission, err := repo.FindByID(submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("failed to find submission: %w", err)
	}
	if submission.Task == nil || submission.Task.WorkspaceID != workspaceID {
		return nil, ErrSubmissionNotFound
	}
	return submission, nil
}
