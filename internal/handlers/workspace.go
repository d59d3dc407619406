package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/hr-task-review-api/internal/dto"
	apierrors "github.com/yukikurage/hr-task-review-api/internal/errors"
	"github.com/yukikurage/hr-task-review-api/internal/middleware"
	"github.com/yukikurage/hr-task-review-api/internal/models"
	"github.com/yukikurage/hr-task-review-api/internal/services"
)

// WorkspaceHandler serves workspace and membership endpoints.
type WorkspaceHandler struct {
	workspaceService *services.WorkspaceService
}

func NewWorkspaceHandler(workspaceService *services.WorkspaceService) *WorkspaceHandler {
	return &WorkspaceHandler{
		workspaceService: workspaceService,
	}
}

// CreateWorkspace creates a new workspace with the caller as admin
func (h *WorkspaceHandler) CreateWorkspace(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type CreateWorkspaceRequest struct {
		Name string `json:"name" binding:"required,max=255"`
	}

	var req CreateWorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	workspace, err := h.workspaceService.CreateWorkspace(req.Name, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToWorkspaceDTO(*workspace, true))
}

// ListWorkspaces returns the workspaces the caller belongs to
func (h *WorkspaceHandler) ListWorkspaces(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	memberships, err := h.workspaceService.ListWorkspacesForUser(userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	workspaces := make([]dto.WorkspaceWithRoleDTO, len(memberships))
	for i, member := range memberships {
		workspaces[i] = dto.ToWorkspaceWithRoleDTO(member)
	}

	c.JSON(http.StatusOK, gin.H{
		"workspaces": workspaces,
	})
}

// JoinWorkspace joins a workspace by invite code as an employee
func (h *WorkspaceHandler) JoinWorkspace(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type JoinWorkspaceRequest struct {
		InviteCode string `json:"invite_code" binding:"required"`
	}

	var req JoinWorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	workspace, err := h.workspaceService.JoinWorkspaceByInvite(userID, req.InviteCode)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Successfully joined workspace",
		"workspace": dto.ToWorkspaceDTO(*workspace, false),
	})
}

// GetWorkspace returns workspace details with members
func (h *WorkspaceHandler) GetWorkspace(c *gin.Context) {
	caller, ok := callerIdentity(c)
	if !ok {
		return
	}

	workspace, members, err := h.workspaceService.GetWorkspaceWithMembers(caller.WorkspaceID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToWorkspaceDetailDTO(*workspace, members, caller.Role))
}

// UpdateMember changes a member's role or reporting line (admin only)
func (h *WorkspaceHandler) UpdateMember(c *gin.Context) {
	caller, ok := callerIdentity(c)
	if !ok {
		return
	}
	targetID, ok := parseIDParam(c, "user_id")
	if !ok {
		return
	}

	type UpdateMemberRequest struct {
		Role         *models.Role `json:"role"`
		ManagerID    *uint64      `json:"manager_id"`
		ClearManager bool         `json:"clear_manager"`
	}

	var req UpdateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	member, err := h.workspaceService.UpdateMember(caller.WorkspaceID, caller.UserID, targetID, services.UpdateMemberInput{
		Role:         req.Role,
		ManagerID:    req.ManagerID,
		ClearManager: req.ClearManager,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"workspace_id": member.WorkspaceID,
		"user_id":      member.UserID,
		"role":         member.Role,
		"manager_id":   member.ManagerID,
	})
}

// RegenerateInviteCode issues a new invite code (admin only)
func (h *WorkspaceHandler) RegenerateInviteCode(c *gin.Context) {
	caller, ok := callerIdentity(c)
	if !ok {
		return
	}

	workspace, err := h.workspaceService.RegenerateInviteCode(caller.WorkspaceID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"invite_code": workspace.InviteCode,
	})
}

// RemoveMember removes a member from the workspace (admin only)
func (h *WorkspaceHandler) RemoveMember(c *gin.Context) {
	caller, ok := callerIdentity(c)
	if !ok {
		return
	}
	targetID, ok := parseIDParam(c, "user_id")
	if !ok {
		return
	}

	if err := h.workspaceService.RemoveMember(caller.WorkspaceID, caller.UserID, targetID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Member removed successfully",
	})
}
