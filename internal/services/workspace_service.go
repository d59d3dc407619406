package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/hr-task-review-api/internal/clock"
	"github.com/yukikurage/hr-task-review-api/internal/models"
	"github.com/yukikurage/hr-task-review-api/internal/repository"
	"github.com/yukikurage/hr-task-review-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrWorkspaceNotFound          = newError(ErrNotFound, "workspace not found")
	ErrInvalidWorkspaceName       = newError(ErrInvalidArgument, "workspace name cannot be empty")
	ErrInvalidInviteCode          = newError(ErrNotFound, "invalid invite code")
	ErrAlreadyWorkspaceMember     = newError(ErrInvalidState, "user is already a member of this workspace")
	ErrCannotRemoveYourself       = newError(ErrInvalidState, "cannot remove yourself from the workspace")
	ErrCannotChangeOwnRole        = newError(ErrInvalidState, "cannot change your own role")
	ErrInvalidRole                = newError(ErrInvalidArgument, "role must be one of ADMIN, MANAGER, EMPLOYEE")
	ErrManagerNotFound            = newError(ErrNotFound, "manager is not a member of this workspace")
	ErrInvalidManager             = newError(ErrInvalidArgument, "manager must be an admin or manager other than the member")
	ErrInviteCodeGenerationFailed = errors.New("failed to generate invite code")
)

// WorkspaceService provides business logic for workspace membership.
type WorkspaceService struct {
	workspaceRepo repository.WorkspaceRepository
	clock         clock.Clock
}

// NewWorkspaceService creates a new WorkspaceService.
func NewWorkspaceService(workspaceRepo repository.WorkspaceRepository, clk clock.Clock) *WorkspaceService {
	return &WorkspaceService{
		workspaceRepo: workspaceRepo,
		clock:         clk,
	}
}

// CreateWorkspace creates a workspace with the creator as its admin.
func (s *WorkspaceService) CreateWorkspace(name string, ownerID uint64) (*models.Workspace, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidWorkspaceName
	}

	inviteCode, err := utils.GenerateInviteCode()
	if err != nil {
		return nil, ErrInviteCodeGenerationFailed
	}

	workspace := &models.Workspace{
		Name:       name,
		InviteCode: inviteCode,
	}
	member := &models.WorkspaceMember{
		UserID:   ownerID,
		Role:     models.RoleAdmin,
		JoinedAt: s.clock.Now(),
	}

	if err := s.workspaceRepo.CreateWithMember(workspace, member); err != nil {
		return nil, fmt.Errorf("failed to create workspace: %w", err)
	}

	return workspace, nil
}

// ListWorkspacesForUser returns the memberships of a user with workspaces loaded.
func (s *WorkspaceService) ListWorkspacesForUser(userID uint64) ([]models.WorkspaceMember, error) {
	memberships, err := s.workspaceRepo.ListMembersByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list workspaces: %w", err)
	}
	return memberships, nil
}

// GetWorkspaceWithMembers returns a workspace and all of its members.
func (s *WorkspaceService) GetWorkspaceWithMembers(workspaceID uint64) (*models.Workspace, []models.WorkspaceMember, error) {
	workspace, err := s.workspaceRepo.FindByID(workspaceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrWorkspaceNotFound
		}
		return nil, nil, fmt.Errorf("failed to find workspace: %w", err)
	}

	members, err := s.workspaceRepo.ListMembers(workspaceID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list workspace members: %w", err)
	}

	return workspace, members, nil
}

// JoinWorkspaceByInvite adds a user to a workspace as an employee.
func (s *WorkspaceService) JoinWorkspaceByInvite(userID uint64, inviteCode string) (*models.Workspace, error) {
	workspace, err := s.workspaceRepo.FindByInviteCode(strings.TrimSpace(inviteCode))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidInviteCode
		}
		return nil, fmt.Errorf("failed to find workspace by invite code: %w", err)
	}

	if _, err := s.workspaceRepo.FindMember(workspace.ID, userID); err == nil {
		return nil, ErrAlreadyWorkspaceMember
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to verify membership: %w", err)
	}

	member := &models.WorkspaceMember{
		WorkspaceID: workspace.ID,
		UserID:      userID,
		Role:        models.RoleEmployee,
		JoinedAt:    s.clock.Now(),
	}

	if err := s.workspaceRepo.AddMember(member); err != nil {
		return nil, fmt.Errorf("failed to add member to workspace: %w", err)
	}

	return workspace, nil
}

// UpdateMemberInput changes a member's role and reporting line.
type UpdateMemberInput struct {
	Role         *models.Role
	ManagerID    *uint64
	ClearManager bool
}

// UpdateMember changes a member's role or manager. The manager must be an
// admin or manager in the same workspace.
func (s *WorkspaceService) UpdateMember(workspaceID, actorID, targetID uint64, input UpdateMemberInput) (*models.WorkspaceMember, error) {
	member, err := s.findMember(workspaceID, targetID)
	if err != nil {
		return nil, err
	}

	if input.Role != nil {
		if !input.Role.Valid() {
			return nil, ErrInvalidRole
		}
		if targetID == actorID && *input.Role != member.Role {
			return nil, ErrCannotChangeOwnRole
		}
		member.Role = *input.Role
	}

	if input.ClearManager {
		member.ManagerID = nil
	} else if input.ManagerID != nil {
		if *input.ManagerID == targetID {
			return nil, ErrInvalidManager
		}
		manager, err := s.workspaceRepo.FindMember(workspaceID, *input.ManagerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrManagerNotFound
			}
			return nil, fmt.Errorf("failed to find manager: %w", err)
		}
		if !manager.Role.CanReview() {
			return nil, ErrInvalidManager
		}
		managerID := manager.UserID
		member.ManagerID = &managerID
	}

	if err := s.workspaceRepo.UpdateMember(member); err != nil {
		return nil, fmt.Errorf("failed to update member: %w", err)
	}

	return member, nil
}

// RegenerateInviteCode generates a new invite code for the workspace.
func (s *WorkspaceService) RegenerateInviteCode(workspaceID uint64) (*models.Workspace, error) {
	workspace, err := s.workspaceRepo.FindByID(workspaceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkspaceNotFound
		}
		return nil, fmt.Errorf("failed to find workspace: %w", err)
	}

	code, err := utils.GenerateInviteCode()
	if err != nil {
		return nil, ErrInviteCodeGenerationFailed
	}

	workspace.InviteCode = code
	if err := s.workspaceRepo.Update(workspace); err != nil {
		return nil, fmt.Errorf("failed to update invite code: %w", err)
	}

	return workspace, nil
}

// RemoveMember removes a member from the workspace.
func (s *WorkspaceService) RemoveMember(workspaceID, actorID, targetID uint64) error {
	if targetID == actorID {
		return ErrCannotRemoveYourself
	}

	if _, err := s.findMember(workspaceID, targetID); err != nil {
		return err
	}

	if err := s.workspaceRepo.RemoveMember(workspaceID, targetID); err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}

	return nil
}

func (s *WorkspaceService) findMember(workspaceID, userID uint64) (*models.WorkspaceMember, error) {
	member, err := s.workspaceRepo.FindMember(workspaceID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to find workspace member: %w", err)
	}
	return member, nil
}
