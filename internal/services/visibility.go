package services

import (
	"sort"

	"github.com/yukikurage/hr-task-review-api/internal/models"
)

// VisibleSubmissions filters pending submissions down to those the reviewer
// may act on, oldest first. members holds the workspace's identities; a
// submission whose assignee is not a member is never visible.
func VisibleSubmissions(pending []models.TaskSubmission, reviewer Identity, members map[uint64]Identity) []models.TaskSubmission {
	visible := make([]models.TaskSubmission, 0, len(pending))
	if !reviewer.Role.CanReview() {
		return visible
	}

	for _, sub := range pending {
		if sub.Status != models.SubmissionStatusPendingReview || sub.Task == nil {
			continue
		}
		if sub.Task.WorkspaceID != reviewer.WorkspaceID {
			continue
		}
		assignee, ok := members[sub.Task.AssignedTo]
		if !ok {
			continue
		}
		if reviewer.Role == models.RoleManager && !assignee.ReportsTo(reviewer.UserID) {
			continue
		}
		visible = append(visible, sub)
	}

	sort.SliceStable(visible, func(i, j int) bool {
		if visible[i].SubmittedAt.Equal(visible[j].SubmittedAt) {
			return visible[i].ID < visible[j].ID
		}
		return visible[i].SubmittedAt.Before(visible[j].SubmittedAt)
	})
	return visible
}

// CanReviewSubmission applies the review visibility rule to one submission.
func CanReviewSubmission(reviewer Identity, assignee *Identity) bool {
	if assignee == nil || assignee.WorkspaceID != reviewer.WorkspaceID {
		return false
	}
	switch reviewer.Role {
	case models.RoleAdmin:
		return true
	case models.RoleManager:
		return assignee.ReportsTo(reviewer.UserID)
	}
	return false
}

// TaskScopeFor returns the users whose tasks identity may see: nil for
// admins, self plus direct reports for managers, self for employees.
func TaskScopeFor(identity Identity, reports []uint64) []uint64 {
	switch identity.Role {
	case models.RoleAdmin:
		return nil
	case models.RoleManager:
		scope := make([]uint64, 0, len(reports)+1)
		scope = append(scope, identity.UserID)
		return append(scope, reports...)
	default:
		return []uint64{identity.UserID}
	}
}

func inScope(scope []uint64, userIDs ...uint64) bool {
	if scope == nil {
		return true
	}
	for _, id := range scope {
		for _, u := range userIDs {
			if id == u {
				return true
			}
		}
	}
	return false
}
