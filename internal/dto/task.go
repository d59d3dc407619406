package dto

import (
	"time"

	"github.com/yukikurage/hr-task-review-api/internal/models"
	"github.com/yukikurage/hr-task-review-api/internal/services"
	"github.com/yukikurage/hr-task-review-api/internal/utils"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
}

// TaskDTO represents a task in API responses. is_overdue and total_points
// are computed when the task is read.
type TaskDTO struct {
	ID           uint64              `json:"id"`
	WorkspaceID  uint64              `json:"workspace_id"`
	Title        string              `json:"title"`
	Description  string              `json:"description"`
	Objectives   string              `json:"objectives"`
	Priority     models.TaskPriority `json:"priority"`
	Status       models.TaskStatus   `json:"status"`
	StartDate    time.Time           `json:"start_date"`
	EndDate      *time.Time          `json:"end_date"`
	DueAt        *time.Time          `json:"due_at"`
	AssignedTo   uint64              `json:"assigned_to"`
	AssignedBy   uint64              `json:"assigned_by"`
	AssignedRole models.Role         `json:"assigned_role"`
	CreatedBy    uint64              `json:"created_by"`
	CreatedRole  models.Role         `json:"created_role"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
	IsOverdue    bool                `json:"is_overdue"`
	TotalPoints  *int                `json:"total_points"`
	Assignee     *UserDTO            `json:"assignee,omitempty"`
	Creator      *UserDTO            `json:"creator,omitempty"`
	Submission   *SubmissionDTO      `json:"submission,omitempty"`
}

// TaskListResponse represents a paginated list of tasks
type TaskListResponse struct {
	Tasks      []TaskDTO `json:"tasks"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	TotalCount int64     `json:"total_count"`
	TotalPages int       `json:"total_pages"`
}

// TaskDraftListResponse wraps AI task suggestions
type TaskDraftListResponse struct {
	Tasks []services.TaskDraft `json:"tasks"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:       user.ID,
		Username: user.Username,
	}
}

// ToTaskDTO converts a task without read-time decoration; used for write responses
func ToTaskDTO(task models.Task) TaskDTO {
	dto := TaskDTO{
		ID:           task.ID,
		WorkspaceID:  task.WorkspaceID,
		Title:        task.Title,
		Description:  task.Description,
		Objectives:   task.Objectives,
		Priority:     task.Priority,
		Status:       task.Status,
		StartDate:    task.StartDate,
		EndDate:      task.EndDate,
		DueAt:        task.DueAt,
		AssignedTo:   task.AssignedTo,
		AssignedBy:   task.AssignedBy,
		AssignedRole: task.AssignedRole,
		CreatedBy:    task.CreatedBy,
		CreatedRole:  task.CreatedRole,
		CreatedAt:    task.CreatedAt,
		UpdatedAt:    task.UpdatedAt,
	}

	// Include relations if preloaded
	if task.Assignee.ID != 0 {
		assignee := ToUserDTO(task.Assignee)
		dto.Assignee = &assignee
	}
	if task.Creator.ID != 0 {
		creator := ToUserDTO(task.Creator)
		dto.Creator = &creator
	}
	if task.Submission != nil {
		sub := ToSubmissionDTO(*task.Submission)
		dto.Submission = &sub
	}

	return dto
}

// ToDecoratedTaskDTO converts a task read through the service
func ToDecoratedTaskDTO(task services.DecoratedTask) TaskDTO {
	dto := ToTaskDTO(task.Task)
	dto.IsOverdue = task.IsOverdue
	dto.TotalPoints = task.TotalPoints
	return dto
}

// ToTaskListResponse converts a page of tasks to TaskListResponse
func ToTaskListResponse(tasks []services.DecoratedTask, page utils.PageRequest, totalCount int64) TaskListResponse {
	items := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		items[i] = ToDecoratedTaskDTO(task)
	}

	return TaskListResponse{
		Tasks:      items,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalCount: totalCount,
		TotalPages: page.TotalPages(totalCount),
	}
}
