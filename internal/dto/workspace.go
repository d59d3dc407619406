package dto

import (
	"time"

	"github.com/yukikurage/hr-task-review-api/internal/models"
)

// WorkspaceDTO represents a workspace in API responses
type WorkspaceDTO struct {
	ID         uint64 `json:"id"`
	Name       string `json:"name"`
	InviteCode string `json:"invite_code,omitempty"`
}

// WorkspaceWithRoleDTO represents a workspace with the caller's role
type WorkspaceWithRoleDTO struct {
	WorkspaceDTO
	Role models.Role `json:"role"`
}

// MemberDTO represents a workspace member
type MemberDTO struct {
	User      UserDTO     `json:"user"`
	Role      models.Role `json:"role"`
	ManagerID *uint64     `json:"manager_id"`
	JoinedAt  time.Time   `json:"joined_at"`
}

// WorkspaceDetailDTO represents a workspace with its members. The invite
// code is only shown to admins.
type WorkspaceDetailDTO struct {
	WorkspaceDTO
	Members  []MemberDTO `json:"members"`
	YourRole models.Role `json:"your_role"`
}

// ToWorkspaceDTO converts a Workspace model to WorkspaceDTO
func ToWorkspaceDTO(ws models.Workspace, includeInviteCode bool) WorkspaceDTO {
	dto := WorkspaceDTO{
		ID:   ws.ID,
		Name: ws.Name,
	}
	if includeInviteCode {
		dto.InviteCode = ws.InviteCode
	}
	return dto
}

func ToWorkspaceWithRoleDTO(member models.WorkspaceMember) WorkspaceWithRoleDTO {
	return WorkspaceWithRoleDTO{
		WorkspaceDTO: ToWorkspaceDTO(member.Workspace, member.Role == models.RoleAdmin),
		Role:         member.Role,
	}
}

func ToMemberDTO(member models.WorkspaceMember) MemberDTO {
	return MemberDTO{
		User:      ToUserDTO(member.User),
		Role:      member.Role,
		ManagerID: member.ManagerID,
		JoinedAt:  member.JoinedAt,
	}
}

// ToWorkspaceDetailDTO converts a workspace and its members to WorkspaceDetailDTO
func ToWorkspaceDetailDTO(ws models.Workspace, members []models.WorkspaceMember, yourRole models.Role) WorkspaceDetailDTO {
	memberDTOs := make([]MemberDTO, len(members))
	for i, member := range members {
		memberDTOs[i] = ToMemberDTO(member)
	}

	return WorkspaceDetailDTO{
		WorkspaceDTO: ToWorkspaceDTO(ws, yourRole == models.RoleAdmin),
		Members:      memberDTOs,
		YourRole:     yourRole,
	}
}
