package services

import (
	"errors"
	"fmt"

	"github.com/yukikurage/hr-task-review-api/internal/models"
	"github.com/yukikurage/hr-task-review-api/internal/repository"
	"gorm.io/gorm"
)

var ErrMemberNotFound = newError(ErrNotFound, "user is not a member of this workspace")

// Identity is a user's role and reporting line inside one workspace.
type Identity struct {
	UserID      uint64
	WorkspaceID uint64
	Role        models.Role
	ManagerID   *uint64
}

// ReportsTo reports whether managerID is this identity's direct manager.
func (i Identity) ReportsTo(managerID uint64) bool {
	return i.ManagerID != nil && *i.ManagerID == managerID
}

func identityFromMember(m models.WorkspaceMember) Identity {
	return Identity{
		UserID:      m.UserID,
		WorkspaceID: m.WorkspaceID,
		Role:        m.Role,
		ManagerID:   m.ManagerID,
	}
}

// IdentityService resolves identities from membership records. Nothing is
// cached: authorization decisions always see the current role.
type IdentityService struct {
	workspaceRepo repository.WorkspaceRepository
}

// NewIdentityService creates a new IdentityService.
func NewIdentityService(workspaceRepo repository.WorkspaceRepository) *IdentityService {
	return &IdentityService{workspaceRepo: workspaceRepo}
}

// ResolveUser returns the user's identity in the workspace.
func (s *IdentityService) ResolveUser(workspaceID, userID uint64) (*Identity, error) {
	member, err := s.workspaceRepo.FindMember(workspaceID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to resolve user: %w", err)
	}

	identity := identityFromMember(*member)
	return &identity, nil
}

// DirectReports returns the IDs of users whose manager is managerID.
func (s *IdentityService) DirectReports(workspaceID, managerID uint64) ([]uint64, error) {
	ids, err := s.workspaceRepo.ListDirectReports(workspaceID, managerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list direct reports: %w", err)
	}
	return ids, nil
}

// Members returns every identity in the workspace keyed by user ID.
func (s *IdentityService) Members(workspaceID uint64) (map[uint64]Identity, error) {
	members, err := s.workspaceRepo.ListMembers(workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}

	byID := make(map[uint64]Identity, len(members))
	for _, m := range members {
		byID[m.UserID] = identityFromMember(m)
	}
	return byID, nil
}

// Scope returns the user IDs whose tasks the identity may see, or nil when
// unrestricted.
func (s *IdentityService) Scope(identity *Identity) ([]uint64, error) {
	var reports []uint64
	if identity.Role == models.RoleManager {
		var err error
		reports, err = s.DirectReports(identity.WorkspaceID, identity.UserID)
		if err != nil {
			return nil, err
		}
	}
	return TaskScopeFor(*identity, reports), nil
}
