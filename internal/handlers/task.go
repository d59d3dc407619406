package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/hr-task-review-api/internal/dto"
	apierrors "github.com/yukikurage/hr-task-review-api/internal/errors"
	"github.com/yukikurage/hr-task-review-api/internal/models"
	"github.com/yukikurage/hr-task-review-api/internal/repository"
	"github.com/yukikurage/hr-task-review-api/internal/services"
	"github.com/yukikurage/hr-task-review-api/internal/utils"
)

type TaskHandler struct {
	taskService *services.TaskService
}

func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

func optionalUintQuery(c *gin.Context, key string) (*uint64, bool) {
	raw := c.Query(key)
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid "+key)
		return nil, false
	}
	return &v, true
}

func optionalQuery[T ~string](c *gin.Context, key string) *T {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	v := T(raw)
	return &v
}

// ListTasks returns the workspace tasks visible to the caller.
// Supports search, status, priority, assignee_id, creator_id, role and view filters.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	caller, ok := callerIdentity(c)
	if !ok {
		return
	}

	assigneeID, ok := optionalUintQuery(c, "assignee_id")
	if !ok {
		return
	}
	creatorID, ok := optionalUintQuery(c, "creator_id")
	if !ok {
		return
	}

	page := utils.GetPageRequest(c)

	tasks, total, err := h.taskService.ListTasks(services.ListTasksInput{
		WorkspaceID:  caller.WorkspaceID,
		CallerID:     caller.UserID,
		Search:       c.Query("search"),
		Status:       optionalQuery[models.TaskStatus](c, "status"),
		Priority:     optionalQuery[models.TaskPriority](c, "priority"),
		AssigneeID:   assigneeID,
		CreatorID:    creatorID,
		AssignedRole: optionalQuery[models.Role](c, "role"),
		View:         repository.TaskView(c.Query("view")),
		Page:         page.Page,
		PageSize:     page.PageSize,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskListResponse(tasks, page, total))
}

// GetTask returns a specific task by ID
func (h *TaskHandler) GetTask(c *gin.Context) {
	caller, ok := callerIdentity(c)
	if !ok {
		return
	}
	taskID, ok := parseIDParam(c, "task_id")
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(caller.WorkspaceID, taskID, caller.UserID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToDecoratedTaskDTO(*task))
}

// CreateTask creates a new task in the OPEN state
func (h *TaskHandler) CreateTask(c *gin.Context) {
	caller, ok := callerIdentity(c)
	if !ok {
		return
	}

	var input services.CreateTaskInput
	if err := c.ShouldBindJSON(&input); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}
	input.WorkspaceID = caller.WorkspaceID
	input.CreatorID = caller.UserID

	task, err := h.taskService.CreateTask(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// UpdateTask applies a partial update. Sending null for end_date or due_at
// clears it; status is changed through UpdateStatus only.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	caller, ok := callerIdentity(c)
	if !ok {
		return
	}
	taskID, ok := parseIDParam(c, "task_id")
	if !ok {
		return
	}

	type UpdateTaskRequest struct {
		Title       *string              `json:"title"`
		Description *string              `json:"description"`
		Objectives  *string              `json:"objectives"`
		Priority    *models.TaskPriority `json:"priority"`
		StartDate   *time.Time           `json:"start_date"`
		EndDate     *time.Time           `json:"end_date"`
		DueAt       *time.Time           `json:"due_at"`
		AssignedTo  *uint64              `json:"assigned_to"`
	}

	body, err := c.GetRawData()
	if err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	// Parse raw JSON as well to detect which nullable fields were sent
	var req UpdateTaskRequest
	var rawReq map[string]json.RawMessage
	if err := json.Unmarshal(body, &req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}
	if err := json.Unmarshal(body, &rawReq); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}
	if _, ok := rawReq["status"]; ok {
		apierrors.BadRequest(c, "Status cannot be changed here; use the status endpoint")
		return
	}

	input := services.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Objectives:  req.Objectives,
		Priority:    req.Priority,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		DueAt:       req.DueAt,
		AssignedTo:  req.AssignedTo,
	}
	if raw, ok := rawReq["end_date"]; ok && string(raw) == "null" {
		input.ClearEndDate = true
	}
	if raw, ok := rawReq["due_at"]; ok && string(raw) == "null" {
		input.ClearDueAt = true
	}

	task, err := h.taskService.UpdateTask(c.Request.Context(), caller.WorkspaceID, taskID, caller.UserID, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// UpdateStatus moves a task through the transition table
func (h *TaskHandler) UpdateStatus(c *gin.Context) {
	caller, ok := callerIdentity(c)
	if !ok {
		return
	}
	taskID, ok := parseIDParam(c, "task_id")
	if !ok {
		return
	}

	type UpdateStatusRequest struct {
		Status models.TaskStatus `json:"status" binding:"required"`
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.SetStatus(c.Request.Context(), caller.WorkspaceID, taskID, caller.UserID, req.Status)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// DeleteTask deletes a task and its submission
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	caller, ok := callerIdentity(c)
	if !ok {
		return
	}
	taskID, ok := parseIDParam(c, "task_id")
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(c.Request.Context(), caller.WorkspaceID, taskID, caller.UserID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Task deleted successfully",
	})
}

// TaskStats returns counts by status plus overdue tasks
func (h *TaskHandler) TaskStats(c *gin.Context) {
	caller, ok := callerIdentity(c)
	if !ok {
		return
	}

	stats, err := h.taskService.TaskStats(caller.WorkspaceID, caller.UserID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// DraftTasks generates task suggestions from text using AI. Nothing is saved.
func (h *TaskHandler) DraftTasks(c *gin.Context) {
	type DraftTasksRequest struct {
		Text string `json:"text" binding:"required"`
	}

	var req DraftTasksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	drafts, err := h.taskService.DraftTasks(c.Request.Context(), req.Text)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.TaskDraftListResponse{Tasks: drafts})
}
