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
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound            = newError(ErrNotFound, "task not found")
	ErrAssigneeNotFound        = newError(ErrNotFound, "assignee is not a member of this workspace")
	ErrCreatorNotFound         = newError(ErrNotFound, "creator is not a member of this workspace")
	ErrEmployeeAssignment      = newError(ErrForbidden, "employees can only assign tasks to other employees")
	ErrNotTaskOwner            = newError(ErrForbidden, "only the task creator or an admin can perform this action")
	ErrStatsForbidden          = newError(ErrForbidden, "only admins and managers can view task statistics")
	ErrInvalidTaskStatus       = newError(ErrInvalidArgument, "status must be one of OPEN, IN_PROGRESS, BLOCKED, DONE, CANCELLED")
	ErrInvalidPriority         = newError(ErrInvalidArgument, "priority must be one of LOW, MEDIUM, HIGH")
	ErrInvalidRoleFilter       = newError(ErrInvalidArgument, "role must be one of ADMIN, MANAGER, EMPLOYEE")
	ErrInvalidView             = newError(ErrInvalidArgument, "view must be one of assigned, created, all")
	ErrTitleEmpty              = newError(ErrInvalidArgument, "title cannot be empty")
	ErrEndBeforeStart          = newError(ErrInvalidArgument, "end date must not be before start date")
	ErrDoneRequiresApproval    = newError(ErrInvalidState, "tasks are completed by approving their submission")
	ErrReassignAfterSubmission = newError(ErrInvalidState, "cannot reassign a task that already has a submission")
	ErrDraftTextRequired       = newError(ErrInvalidArgument, "text is required")
	ErrAIServiceNotConfigured  = errors.New("AI service is not configured")
	ErrAINoTasksGenerated      = errors.New("AI did not generate any tasks")
	ErrAINoValidTasks          = errors.New("no valid tasks could be created from AI output")
)

// TaskService handles task business logic
type TaskService struct {
	taskRepo repository.TaskRepository
	identity *IdentityService
	drafter  TaskDrafter
	clock    clock.Clock
	emitter
}

// NewTaskService creates a new TaskService. drafter may be nil when AI
// drafting is not configured.
func NewTaskService(
	taskRepo repository.TaskRepository,
	identity *IdentityService,
	drafter TaskDrafter,
	publisher events.Publisher,
	clk clock.Clock,
	logger logrus.FieldLogger,
) *TaskService {
	return &TaskService{
		taskRepo: taskRepo,
		identity: identity,
		drafter:  drafter,
		clock:    clk,
		emitter:  newEmitter(publisher, clk, logger),
	}
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	WorkspaceID uint64              `json:"-"`
	CreatorID   uint64              `json:"-"`
	Title       string              `json:"title" validate:"required,max=255"`
	Description string              `json:"description"`
	Objectives  string              `json:"objectives"`
	Priority    models.TaskPriority `json:"priority" validate:"omitempty,oneof=LOW MEDIUM HIGH"`
	StartDate   time.Time           `json:"start_date" validate:"required"`
	EndDate     *time.Time          `json:"end_date"`
	DueAt       *time.Time          `json:"due_at"`
	AssignedTo  uint64              `json:"assigned_to" validate:"required"`
}

// UpdateTaskInput carries only the fields to change. Status is not updatable here.
type UpdateTaskInput struct {
	Title        *string
	Description  *string
	Objectives   *string
	Priority     *models.TaskPriority
	StartDate    *time.Time
	EndDate      *time.Time
	ClearEndDate bool
	DueAt        *time.Time
	ClearDueAt   bool
	AssignedTo   *uint64
}

// ListTasksInput represents filters for listing tasks
type ListTasksInput struct {
	WorkspaceID  uint64
	CallerID     uint64
	Search       string
	Status       *models.TaskStatus
	Priority     *models.TaskPriority
	AssigneeID   *uint64
	CreatorID    *uint64
	AssignedRole *models.Role
	View         repository.TaskView
	Page         int
	PageSize     int
}

// DecoratedTask is a task with its read-time derived values.
type DecoratedTask struct {
	models.Task
	IsOverdue   bool
	TotalPoints *int
}

// TaskStats summarises a workspace's tasks.
type TaskStats struct {
	Total    int64                       `json:"total"`
	ByStatus map[models.TaskStatus]int64 `json:"by_status"`
	Overdue  int64                       `json:"overdue"`
}

func (s *TaskService) decorate(task models.Task, now time.Time) DecoratedTask {
	item := DecoratedTask{Task: task, IsOverdue: task.IsOverdue(now)}
	if task.Submission != nil {
		total := task.Submission.TotalPoints()
		item.TotalPoints = &total
	}
	return item
}

func (s *TaskService) resolve(workspaceID, userID uint64, notFound error) (*Identity, error) {
	identity, err := s.identity.ResolveUser(workspaceID, userID)
	if errors.Is(err, ErrMemberNotFound) {
		return nil, notFound
	}
	return identity, err
}

// findTask loads a task and hides tasks from other workspaces.
func (s *TaskService) findTask(workspaceID, taskID uint64, preload ...string) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID, preload...)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	if task.WorkspaceID != workspaceID {
		return nil, ErrTaskNotFound
	}
	return task, nil
}

// visibleTask loads a task and hides it unless caller may see it.
func (s *TaskService) visibleTask(caller *Identity, taskID uint64, preload ...string) (*models.Task, error) {
	task, err := s.findTask(caller.WorkspaceID, taskID, preload...)
	if err != nil {
		return nil, err
	}
	scope, err := s.identity.Scope(caller)
	if err != nil {
		return nil, err
	}
	if !inScope(scope, task.AssignedTo, task.CreatedBy) {
		return nil, ErrTaskNotFound
	}
	return task, nil
}

// CreateTask validates and creates a task in the OPEN state
func (s *TaskService) CreateTask(ctx context.Context, input CreateTaskInput) (*models.Task, error) {
	input.Title = strings.TrimSpace(input.Title)
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if input.EndDate != nil && input.EndDate.Before(input.StartDate) {
		return nil, ErrEndBeforeStart
	}
	if input.Priority == "" {
		input.Priority = models.TaskPriorityMedium
	}

	creator, err := s.resolve(input.WorkspaceID, input.CreatorID, ErrCreatorNotFound)
	if err != nil {
		return nil, err
	}
	assignee, err := s.resolve(input.WorkspaceID, input.AssignedTo, ErrAssigneeNotFound)
	if err != nil {
		return nil, err
	}
	if creator.Role == models.RoleEmployee && assignee.Role != models.RoleEmployee {
		return nil, ErrEmployeeAssignment
	}

	now := s.clock.Now()
	task := &models.Task{
		WorkspaceID:  input.WorkspaceID,
		Title:        input.Title,
		Description:  input.Description,
		Objectives:   input.Objectives,
		Priority:     input.Priority,
		Status:       models.TaskStatusOpen,
		StartDate:    input.StartDate,
		EndDate:      input.EndDate,
		DueAt:        input.DueAt,
		AssignedTo:   assignee.UserID,
		AssignedBy:   creator.UserID,
		AssignedRole: assignee.Role,
		CreatedBy:    creator.UserID,
		CreatedRole:  creator.Role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.emit(ctx, events.TypeTaskCreated, task.WorkspaceID, creator.UserID, map[string]any{
		"task_id":     task.ID,
		"assigned_to": task.AssignedTo,
		"title":       task.Title,
	})

	return s.taskRepo.FindByID(task.ID, "Assignee", "Creator")
}

// UpdateTask applies the provided fields to an existing task
func (s *TaskService) UpdateTask(ctx context.Context, workspaceID, taskID, actorID uint64, input UpdateTaskInput) (*models.Task, error) {
	actor, err := s.identity.ResolveUser(workspaceID, actorID)
	if err != nil {
		return nil, err
	}

	task, err := s.findTask(workspaceID, taskID, "Submission")
	if err != nil {
		return nil, err
	}
	if task.CreatedBy != actor.UserID && actor.Role != models.RoleAdmin {
		return nil, ErrNotTaskOwner
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, ErrTitleEmpty
		}
		task.Title = title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Objectives != nil {
		task.Objectives = *input.Objectives
	}
	if input.Priority != nil {
		if !input.Priority.Valid() {
			return nil, ErrInvalidPriority
		}
		task.Priority = *input.Priority
	}
	if input.StartDate != nil {
		task.StartDate = *input.StartDate
	}
	if input.ClearEndDate {
		task.EndDate = nil
	} else if input.EndDate != nil {
		task.EndDate = input.EndDate
	}
	if input.ClearDueAt {
		task.DueAt = nil
	} else if input.DueAt != nil {
		task.DueAt = input.DueAt
	}
	if task.EndDate != nil && task.EndDate.Before(task.StartDate) {
		return nil, ErrEndBeforeStart
	}

	if input.AssignedTo != nil && *input.AssignedTo != task.AssignedTo {
		if task.Submission != nil {
			return nil, ErrReassignAfterSubmission
		}
		assignee, err := s.resolve(workspaceID, *input.AssignedTo, ErrAssigneeNotFound)
		if err != nil {
			return nil, err
		}
		if actor.Role == models.RoleEmployee && assignee.Role != models.RoleEmployee {
			return nil, ErrEmployeeAssignment
		}
		task.AssignedTo = assignee.UserID
		task.AssignedBy = actor.UserID
		task.AssignedRole = assignee.Role
	}

	task.UpdatedAt = s.clock.Now()
	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	s.emit(ctx, events.TypeTaskUpdated, workspaceID, actor.UserID, map[string]any{
		"task_id":     task.ID,
		"assigned_to": task.AssignedTo,
	})

	return s.taskRepo.FindByID(task.ID, "Assignee", "Creator", "Submission")
}

// SetStatus moves a task to newStatus through the transition table. A
// request for the current status is a no-op.
func (s *TaskService) SetStatus(ctx context.Context, workspaceID, taskID, actorID uint64, newStatus models.TaskStatus) (*models.Task, error) {
	if !newStatus.Valid() {
		return nil, ErrInvalidTaskStatus
	}

	actor, err := s.identity.ResolveUser(workspaceID, actorID)
	if err != nil {
		return nil, err
	}
	task, err := s.visibleTask(actor, taskID)
	if err != nil {
		return nil, err
	}

	if task.Status == newStatus {
		return task, nil
	}

	event, ok := models.ManualEventFor(newStatus)
	if !ok {
		return nil, ErrDoneRequiresApproval
	}
	next, err := task.Status.Transition(event)
	if err != nil {
		return nil, newError(ErrInvalidState, fmt.Sprintf("cannot change status from %s to %s", task.Status, newStatus))
	}

	if err := s.taskRepo.UpdateStatus(task.ID, next); err != nil {
		return nil, fmt.Errorf("failed to update status: %w", err)
	}

	previous := task.Status
	task.Status = next

	s.emit(ctx, events.TypeTaskStatusChanged, workspaceID, actor.UserID, map[string]any{
		"task_id": task.ID,
		"from":    previous,
		"to":      next,
	})

	return task, nil
}

// DeleteTask deletes a task and its submission
func (s *TaskService) DeleteTask(ctx context.Context, workspaceID, taskID, actorID uint64) error {
	actor, err := s.identity.ResolveUser(workspaceID, actorID)
	if err != nil {
		return err
	}

	task, err := s.findTask(workspaceID, taskID)
	if err != nil {
		return err
	}
	if task.CreatedBy != actor.UserID && actor.Role != models.RoleAdmin {
		return ErrNotTaskOwner
	}

	if err := s.taskRepo.Delete(task.ID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	s.emit(ctx, events.TypeTaskDeleted, workspaceID, actor.UserID, map[string]any{
		"task_id": task.ID,
	})

	return nil
}

// ListTasks returns the tasks visible to the caller that match the filters
func (s *TaskService) ListTasks(input ListTasksInput) ([]DecoratedTask, int64, error) {
	if input.Status != nil && !input.Status.Valid() {
		return nil, 0, ErrInvalidTaskStatus
	}
	if input.Priority != nil && !input.Priority.Valid() {
		return nil, 0, ErrInvalidPriority
	}
	if input.AssignedRole != nil && !input.AssignedRole.Valid() {
		return nil, 0, ErrInvalidRoleFilter
	}
	switch input.View {
	case "", repository.TaskViewAll, repository.TaskViewAssigned, repository.TaskViewCreated:
	default:
		return nil, 0, ErrInvalidView
	}

	caller, err := s.identity.ResolveUser(input.WorkspaceID, input.CallerID)
	if err != nil {
		return nil, 0, err
	}
	scope, err := s.identity.Scope(caller)
	if err != nil {
		return nil, 0, err
	}

	tasks, total, err := s.taskRepo.List(repository.TaskFilter{
		WorkspaceID:  input.WorkspaceID,
		Search:       input.Search,
		Status:       input.Status,
		Priority:     input.Priority,
		AssigneeID:   input.AssigneeID,
		CreatorID:    input.CreatorID,
		AssignedRole: input.AssignedRole,
		View:         input.View,
		ViewerID:     caller.UserID,
		ScopeUserIDs: scope,
		Page:         input.Page,
		PageSize:     input.PageSize,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}

	now := s.clock.Now()
	items := make([]DecoratedTask, len(tasks))
	for i, task := range tasks {
		items[i] = s.decorate(task, now)
	}

	return items, total, nil
}

// GetTask returns a single task if the caller may see it
func (s *TaskService) GetTask(workspaceID, taskID, callerID uint64) (*DecoratedTask, error) {
	caller, err := s.identity.ResolveUser(workspaceID, callerID)
	if err != nil {
		return nil, err
	}

	task, err := s.visibleTask(caller, taskID, "Assignee", "Creator", "Submission")
	if err != nil {
		return nil, err
	}

	item := s.decorate(*task, s.clock.Now())
	return &item, nil
}

// TaskStats counts tasks by status and overdue tasks
func (s *TaskService) TaskStats(workspaceID, callerID uint64) (*TaskStats, error) {
	caller, err := s.identity.ResolveUser(workspaceID, callerID)
	if err != nil {
		return nil, err
	}
	if !caller.Role.CanReview() {
		return nil, ErrStatsForbidden
	}

	counts, err := s.taskRepo.CountByStatus(workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to count tasks: %w", err)
	}
	overdue, err := s.taskRepo.CountOverdue(workspaceID, s.clock.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to count overdue tasks: %w", err)
	}

	stats := &TaskStats{
		ByStatus: make(map[models.TaskStatus]int64, 5),
		Overdue:  overdue,
	}
	for _, status := range []models.TaskStatus{
		models.TaskStatusOpen,
		models.TaskStatusInProgress,
		models.TaskStatusBlocked,
		models.TaskStatusDone,
		models.TaskStatusCancelled,
	} {
		stats.ByStatus[status] = counts[status]
		stats.Total += counts[status]
	}

	return stats, nil
}

// DraftTasks uses AI to suggest tasks from free text
func (s *TaskService) DraftTasks(ctx context.Context, text string) ([]TaskDraft, error) {
	if s.drafter == nil {
		return nil, ErrAIServiceNotConfigured
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrDraftTextRequired
	}

	now := s.clock.Now()
	drafts, err := s.drafter.DraftTasksFromText(ctx, text, now)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tasks: %w", err)
	}

	if len(drafts) == 0 {
		return nil, ErrAINoTasksGenerated
	}
	if len(drafts) > constants.MaxAIGeneratedTasks {
		drafts = drafts[:constants.MaxAIGeneratedTasks]
	}

	valid := make([]TaskDraft, 0, len(drafts))
	cutoff := now.Add(-24 * time.Hour)
	for _, draft := range drafts {
		draft.Title = strings.TrimSpace(draft.Title)
		if draft.Title == "" {
			continue
		}
		if !draft.Priority.Valid() {
			draft.Priority = models.TaskPriorityMedium
		}
		if draft.DueAt != nil && draft.DueAt.Before(cutoff) {
			draft.DueAt = nil
		}
		valid = append(valid, draft)
	}

	if len(valid) == 0 {
		return nil, ErrAINoValidTasks
	}

	return valid, nil
}
