package services

import (
	"fmt"
	"sort"
	"time"

	"github.com/yukikurage/hr-task-review-api/internal/clock"
	"github.com/yukikurage/hr-task-review-api/internal/constants"
	"github.com/yukikurage/hr-task-review-api/internal/models"
	"github.com/yukikurage/hr-task-review-api/internal/repository"
)

type NotificationType string

const (
	NotificationPendingReview      NotificationType = "pending_review"
	NotificationEscalation         NotificationType = "escalation"
	NotificationSubmissionReviewed NotificationType = "submission_reviewed"
)

type NotificationPriority string

const (
	PriorityHigh   NotificationPriority = "high"
	PriorityMedium NotificationPriority = "medium"
	PriorityLow    NotificationPriority = "low"
)

func (p NotificationPriority) rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

// Notification is a feed record. Delivery is handled elsewhere.
type Notification struct {
	ID        string               `json:"id"`
	Type      NotificationType     `json:"type"`
	Title     string               `json:"title"`
	Message   string               `json:"message"`
	Priority  NotificationPriority `json:"priority"`
	CreatedAt time.Time            `json:"created_at"`
	Payload   map[string]any       `json:"payload"`
}

// NotificationService builds per-caller notification feeds
type NotificationService struct {
	submissionRepo repository.SubmissionRepository
	identity       *IdentityService
	reviews        *ReviewService
	clock          clock.Clock
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(
	submissionRepo repository.SubmissionRepository,
	identity *IdentityService,
	reviews *ReviewService,
	clk clock.Clock,
) *NotificationService {
	return &NotificationService{
		submissionRepo: submissionRepo,
		identity:       identity,
		reviews:        reviews,
		clock:          clk,
	}
}

// NotificationsFor returns the caller's feed: review work for reviewers, and
// results of the caller's own recent submissions for everyone.
func (s *NotificationService) NotificationsFor(workspaceID, userID uint64) ([]Notification, error) {
	caller, err := s.identity.ResolveUser(workspaceID, userID)
	if err != nil {
		return nil, err
	}

	var pending []models.TaskSubmission
	if caller.Role.CanReview() {
		pending, err = s.reviews.visiblePending(caller)
		if err != nil {
			return nil, err
		}
	}

	reviewed, err := s.submissionRepo.ListRecentReviewed(workspaceID, userID, constants.RecentReviewedNotificationLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviewed submissions: %w", err)
	}

	return BuildNotifications(pending, reviewed, s.clock.Now()), nil
}

func taskTitle(sub *models.TaskSubmission) string {
	if sub.Task != nil {
		return sub.Task.Title
	}
	return fmt.Sprintf("task #%d", sub.TaskID)
}

// BuildNotifications merges review work and review results into one feed,
// sorted by priority and then newest first. pending must already be filtered
// to what the caller may see.
func BuildNotifications(pending, reviewed []models.TaskSubmission, now time.Time) []Notification {
	feed := make([]Notification, 0, len(pending)+len(reviewed))

	for i := range pending {
		sub := &pending[i]
		title := taskTitle(sub)
		payload := map[string]any{
			"submission_id": sub.ID,
			"task_id":       sub.TaskID,
			"user_id":       sub.UserID,
		}

		feed = append(feed, Notification{
			ID:        fmt.Sprintf("pending_review_%d", sub.ID),
			Type:      NotificationPendingReview,
			Title:     "Submission awaiting review",
			Message:   fmt.Sprintf("%q was submitted and is waiting for your review", title),
			Priority:  PriorityMedium,
			CreatedAt: sub.SubmittedAt,
			Payload:   payload,
		})

		state := EvaluateEscalation(sub, now)
		if state.NeedsEscalation {
			feed = append(feed, Notification{
				ID:        fmt.Sprintf("escalation_%d", sub.ID),
				Type:      NotificationEscalation,
				Title:     "Review overdue",
				Message:   fmt.Sprintf("%q has been waiting %d hours for review", title, state.HoursSinceSubmission),
				Priority:  PriorityHigh,
				CreatedAt: sub.SubmittedAt.Add(constants.EscalationThreshold),
				Payload: map[string]any{
					"submission_id":          sub.ID,
					"task_id":                sub.TaskID,
					"user_id":                sub.UserID,
					"hours_since_submission": state.HoursSinceSubmission,
				},
			})
		}
	}

	for i := range reviewed {
		sub := &reviewed[i]
		if !sub.Status.IsTerminal() {
			continue
		}

		priority := PriorityLow
		title := "Submission approved"
		message := fmt.Sprintf("Your submission for %q was approved with %d points", taskTitle(sub), sub.TotalPoints())
		if sub.Status == models.SubmissionStatusRejected {
			priority = PriorityMedium
			title = "Submission rejected"
			message = fmt.Sprintf("Your submission for %q was rejected", taskTitle(sub))
		}

		createdAt := sub.SubmittedAt
		if sub.ReviewedAt != nil {
			createdAt = *sub.ReviewedAt
		}

		feed = append(feed, Notification{
			ID:        fmt.Sprintf("submission_reviewed_%d", sub.ID),
			Type:      NotificationSubmissionReviewed,
			Title:     title,
			Message:   message,
			Priority:  priority,
			CreatedAt: createdAt,
			Payload: map[string]any{
				"submission_id": sub.ID,
				"task_id":       sub.TaskID,
				"status":        sub.Status,
				"total_points":  sub.TotalPoints(),
				"remarks":       sub.Remarks,
			},
		})
	}

	sort.SliceStable(feed, func(i, j int) bool {
		ri, rj := feed[i].Priority.rank(), feed[j].Priority.rank()
		if ri != rj {
			return ri > rj
		}
		if !feed[i].CreatedAt.Equal(feed[j].CreatedAt) {
			return feed[i].CreatedAt.After(feed[j].CreatedAt)
		}
		return feed[i].ID < feed[j].ID
	})

	return feed
}
