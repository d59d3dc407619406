package models

import "time"

type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleManager  Role = "MANAGER"
	RoleEmployee Role = "EMPLOYEE"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleEmployee:
		return true
	}
	return false
}

// CanReview reports whether r may act on the review queue.
func (r Role) CanReview() bool {
	return r == RoleAdmin || r == RoleManager
}

// WorkspaceMember is a user's identity inside one workspace: their role and
// the manager they report to.
type WorkspaceMember struct {
	WorkspaceID uint64    `gorm:"primarykey" json:"workspace_id"`
	UserID      uint64    `gorm:"primarykey" json:"user_id"`
	Role        Role      `gorm:"type:varchar(20);not null" json:"role"`
	ManagerID   *uint64   `gorm:"index" json:"manager_id"`
	JoinedAt    time.Time `json:"joined_at"`

	// Relations
	Workspace Workspace `gorm:"foreignKey:WorkspaceID" json:"workspace,omitempty"`
	User      User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
