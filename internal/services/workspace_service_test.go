package services

import (
	"github.com/yukikurage/hr-task-review-api/internal/models"
)

func (s *ServiceTestSuite) TestSignup_CreatesPersonalWorkspace() {
	user, err := s.auth.Signup(SignupInput{Username: "  newhire ", Password: "password123"})
	s.Require().NoError(err)
	s.Equal("newhire", user.Username)
	s.NotEqual("password123", user.PasswordHash)

	memberships, err := s.workspaces.ListWorkspacesForUser(user.ID)
	s.Require().NoError(err)
	s.Require().Len(memberships, 1)
	s.Equal(models.RoleAdmin, memberships[0].Role)
	s.Equal("newhire's workspace", memberships[0].Workspace.Name)

	_, err = s.auth.Signup(SignupInput{Username: "newhire", Password: "password123"})
	s.ErrorIs(err, ErrUsernameTaken)

	_, err = s.auth.Signup(SignupInput{Username: "short", Password: "abc"})
	s.ErrorIs(err, ErrPasswordTooShort)
}

func (s *ServiceTestSuite) TestLogin() {
	_, err := s.auth.Signup(SignupInput{Username: "login-user", Password: "password123"})
	s.Require().NoError(err)

	user, err := s.auth.Login(LoginInput{Username: "login-user", Password: "password123"})
	s.Require().NoError(err)
	s.Equal("login-user", user.Username)

	_, err = s.auth.Login(LoginInput{Username: "login-user", Password: "wrong-password"})
	s.ErrorIs(err, ErrInvalidCredentials)

	_, err = s.auth.Login(LoginInput{Username: "nobody", Password: "password123"})
	s.ErrorIs(err, ErrInvalidCredentials)
}

func (s *ServiceTestSuite) TestCreateWorkspace() {
	ws, err := s.workspaces.CreateWorkspace("  People Ops ", s.employee1.ID)
	s.Require().NoError(err)
	s.Equal("People Ops", ws.Name)
	s.Regexp(`^[A-Z2-9]{4}-[A-Z2-9]{4}$`, ws.InviteCode)

	identity, err := s.identity.ResolveUser(ws.ID, s.employee1.ID)
	s.Require().NoError(err)
	s.Equal(models.RoleAdmin, identity.Role)

	_, err = s.workspaces.CreateWorkspace("   ", s.employee1.ID)
	s.ErrorIs(err, ErrInvalidWorkspaceName)
}

func (s *ServiceTestSuite) TestJoinWorkspaceByInvite() {
	newcomer := s.createUser("newcomer")

	ws, err := s.workspaces.JoinWorkspaceByInvite(newcomer.ID, s.workspace.InviteCode)
	s.Require().NoError(err)
	s.Equal(s.workspace.ID, ws.ID)

	identity, err := s.identity.ResolveUser(s.workspace.ID, newcomer.ID)
	s.Require().NoError(err)
	s.Equal(models.RoleEmployee, identity.Role)
	s.Nil(identity.ManagerID)

	_, err = s.workspaces.JoinWorkspaceByInvite(newcomer.ID, s.workspace.InviteCode)
	s.ErrorIs(err, ErrAlreadyWorkspaceMember)

	_, err = s.workspaces.JoinWorkspaceByInvite(newcomer.ID, "NOPE0000")
	s.ErrorIs(err, ErrInvalidInviteCode)
}

func (s *ServiceTestSuite) TestUpdateMember_ReportingLine() {
	managerB := s.managerB.ID
	member, err := s.workspaces.UpdateMember(s.workspace.ID, s.admin.ID, s.employee1.ID, UpdateMemberInput{ManagerID: &managerB})
	s.Require().NoError(err)
	s.Equal(managerB, *member.ManagerID)

	reports, err := s.identity.DirectReports(s.workspace.ID, s.managerB.ID)
	s.Require().NoError(err)
	s.ElementsMatch([]uint64{s.employee1.ID, s.employee2.ID}, reports)

	member, err = s.workspaces.UpdateMember(s.workspace.ID, s.admin.ID, s.employee1.ID, UpdateMemberInput{ClearManager: true})
	s.Require().NoError(err)
	s.Nil(member.ManagerID)

	employee2 := s.employee2.ID
	_, err = s.workspaces.UpdateMember(s.workspace.ID, s.admin.ID, s.employee1.ID, UpdateMemberInput{ManagerID: &employee2})
	s.ErrorIs(err, ErrInvalidManager)

	self := s.employee1.ID
	_, err = s.workspaces.UpdateMember(s.workspace.ID, s.admin.ID, s.employee1.ID, UpdateMemberInput{ManagerID: &self})
	s.ErrorIs(err, ErrInvalidManager)

	stranger := uint64(9999)
	_, err = s.workspaces.UpdateMember(s.workspace.ID, s.admin.ID, s.employee1.ID, UpdateMemberInput{ManagerID: &stranger})
	s.ErrorIs(err, ErrManagerNotFound)
}

func (s *ServiceTestSuite) TestUpdateMember_Role() {
	manager := models.RoleManager
	member, err := s.workspaces.UpdateMember(s.workspace.ID, s.admin.ID, s.employee2.ID, UpdateMemberInput{Role: &manager})
	s.Require().NoError(err)
	s.Equal(models.RoleManager, member.Role)

	employee := models.RoleEmployee
	_, err = s.workspaces.UpdateMember(s.workspace.ID, s.admin.ID, s.admin.ID, UpdateMemberInput{Role: &employee})
	s.ErrorIs(err, ErrCannotChangeOwnRole)

	bogus := models.Role("OWNER")
	_, err = s.workspaces.UpdateMember(s.workspace.ID, s.admin.ID, s.employee2.ID, UpdateMemberInput{Role: &bogus})
	s.ErrorIs(err, ErrInvalidRole)

	_, err = s.workspaces.UpdateMember(s.workspace.ID, s.admin.ID, 9999, UpdateMemberInput{Role: &manager})
	s.ErrorIs(err, ErrMemberNotFound)
}

func (s *ServiceTestSuite) TestRemoveMember_DetachesReports() {
	s.Require().NoError(s.workspaces.RemoveMember(s.workspace.ID, s.admin.ID, s.managerA.ID))

	_, err := s.identity.ResolveUser(s.workspace.ID, s.managerA.ID)
	s.ErrorIs(err, ErrMemberNotFound)

	orphan, err := s.identity.ResolveUser(s.workspace.ID, s.employee1.ID)
	s.Require().NoError(err)
	s.Nil(orphan.ManagerID)

	s.ErrorIs(s.workspaces.RemoveMember(s.workspace.ID, s.admin.ID, s.admin.ID), ErrCannotRemoveYourself)
	s.ErrorIs(s.workspaces.RemoveMember(s.workspace.ID, s.admin.ID, s.managerA.ID), ErrMemberNotFound)
}

func (s *ServiceTestSuite) TestRegenerateInviteCode() {
	before := s.workspace.InviteCode
	ws, err := s.workspaces.RegenerateInviteCode(s.workspace.ID)
	s.Require().NoError(err)
	s.NotEqual(before, ws.InviteCode)

	_, err = s.workspaces.RegenerateInviteCode(9999)
	s.ErrorIs(err, ErrWorkspaceNotFound)
}
