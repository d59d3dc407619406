package repository

import (
	"errors"
	"time"

	"github.com/yukikurage/hr-task-review-api/internal/models"
)

var (
	// ErrDuplicateSubmission is returned when a task already has a submission row.
	ErrDuplicateSubmission = errors.New("submission repository: task already submitted")
	// ErrSubmissionAlreadyReviewed is returned when the conditional review update
	// matched no pending row.
	ErrSubmissionAlreadyReviewed = errors.New("submission repository: submission already reviewed")
)

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(task *models.Task) error

	// FindByID finds a task by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Task, error)

	// List retrieves tasks with filtering and pagination
	List(filter TaskFilter) ([]models.Task, int64, error)

	// Update updates a task's own columns
	Update(task *models.Task) error

	// UpdateStatus sets only the status column
	UpdateStatus(id uint64, status models.TaskStatus) error

	// Delete removes the task's submission and then soft deletes the task
	Delete(id uint64) error

	// CountByStatus returns task counts per status in a workspace
	CountByStatus(workspaceID uint64) (map[models.TaskStatus]int64, error)

	// CountOverdue counts tasks past their due time that are not done
	CountOverdue(workspaceID uint64, now time.Time) (int64, error)

	// ListForPerformance loads tasks created at or after since with their submissions
	ListForPerformance(workspaceID uint64, since time.Time, assigneeIDs []uint64) ([]models.Task, error)
}

// TaskView narrows a listing to the caller's relationship with the task.
type TaskView string

const (
	TaskViewAll      TaskView = "all"
	TaskViewAssigned TaskView = "assigned"
	TaskViewCreated  TaskView = "created"
)

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	WorkspaceID  uint64
	Search       string
	Status       *models.TaskStatus
	Priority     *models.TaskPriority
	AssigneeID   *uint64
	CreatorID    *uint64
	AssignedRole *models.Role

	// View is applied relative to ViewerID.
	View     TaskView
	ViewerID uint64

	// ScopeUserIDs restricts results to tasks assigned to or created by one of
	// these users. Nil means unrestricted.
	ScopeUserIDs []uint64

	Page     int
	PageSize int
}

// SubmissionRepository defines the interface for submission data access
type SubmissionRepository interface {
	// CreateAndAdvanceTask inserts the submission and moves the task to
	// nextStatus in one transaction
	CreateAndAdvanceTask(submission *models.TaskSubmission, nextStatus models.TaskStatus) error

	// ApplyReview records a review on a pending submission and optionally sets
	// the task status in one transaction
	ApplyReview(submission *models.TaskSubmission, taskStatus *models.TaskStatus) error

	// FindByID finds a submission with its task preloaded
	FindByID(id uint64) (*models.TaskSubmission, error)

	// ListPending lists pending submissions in a workspace with their tasks
	ListPending(workspaceID uint64) ([]models.TaskSubmission, error)

	// ListRecentReviewed lists a user's reviewed submissions, newest submission first
	ListRecentReviewed(workspaceID, userID uint64, limit int) ([]models.TaskSubmission, error)
}

// WorkspaceRepository defines the interface for workspace data access
type WorkspaceRepository interface {
	// CreateWithMember creates a workspace and its first member atomically
	CreateWithMember(workspace *models.Workspace, member *models.WorkspaceMember) error

	// FindByID finds a workspace by ID
	FindByID(id uint64) (*models.Workspace, error)

	// FindByInviteCode finds a workspace by invite code
	FindByInviteCode(code string) (*models.Workspace, error)

	// Update updates a workspace
	Update(workspace *models.Workspace) error

	// AddMember adds a member to a workspace
	AddMember(member *models.WorkspaceMember) error

	// UpdateMember saves a member's role and manager
	UpdateMember(member *models.WorkspaceMember) error

	// RemoveMember removes a member and clears manager links pointing at them
	RemoveMember(workspaceID, userID uint64) error

	// FindMember finds a specific workspace member
	FindMember(workspaceID, userID uint64) (*models.WorkspaceMember, error)

	// ListMembersByUserID lists all workspaces a user is a member of
	ListMembersByUserID(userID uint64) ([]models.WorkspaceMember, error)

	// ListMembers lists all members of a workspace
	ListMembers(workspaceID uint64) ([]models.WorkspaceMember, error)

	// ListDirectReports lists the user IDs whose manager is managerID
	ListDirectReports(workspaceID, managerID uint64) ([]uint64, error)
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// CreateWithPersonalWorkspace creates a user, their personal workspace,
	// and corresponding membership within a single transaction.
	CreateWithPersonalWorkspace(user *models.User, workspace *models.Workspace, member *models.WorkspaceMember) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByUsername finds a user by username
	FindByUsername(username string) (*models.User, error)
}
