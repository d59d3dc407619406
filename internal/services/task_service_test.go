package services

import (
	"errors"
	"time"

	"github.com/yukikurage/hr-task-review-api/internal/events"
	"github.com/yukikurage/hr-task-review-api/internal/models"
	"github.com/yukikurage/hr-task-review-api/internal/repository"
)

func (s *ServiceTestSuite) TestCreateTask_SnapshotsRoles() {
	task := s.createTask(s.managerA, s.employee1, nil)

	s.Equal(models.TaskStatusOpen, task.Status)
	s.Equal(models.TaskPriorityMedium, task.Priority)
	s.Equal(models.RoleEmployee, task.AssignedRole)
	s.Equal(models.RoleManager, task.CreatedRole)
	s.Equal(s.managerA.ID, task.AssignedBy)
	s.Equal(s.employee1.Username, task.Assignee.Username)
	s.Contains(s.publisher.types(), events.TypeTaskCreated)

	// Promoting the assignee later does not rewrite the snapshot.
	role := models.RoleManager
	_, err := s.workspaces.UpdateMember(s.workspace.ID, s.admin.ID, s.employee1.ID, UpdateMemberInput{Role: &role})
	s.Require().NoError(err)
	s.Equal(models.RoleEmployee, s.reloadTask(task.ID).AssignedRole)
}

func (s *ServiceTestSuite) TestCreateTask_EmployeeCannotAssignUpward() {
	for _, assignee := range []uint64{s.managerA.ID, s.admin.ID} {
		_, err := s.tasks.CreateTask(s.ctx, CreateTaskInput{
			WorkspaceID: s.workspace.ID,
			CreatorID:   s.employee1.ID,
			Title:       "Escalate this",
			StartDate:   s.clock.Now(),
			AssignedTo:  assignee,
		})
		s.ErrorIs(err, ErrForbidden)
		s.ErrorIs(err, ErrEmployeeAssignment)
	}

	task := s.createTask(s.employee1, s.employee2, nil)
	s.Equal(models.RoleEmployee, task.CreatedRole)
}

func (s *ServiceTestSuite) TestCreateTask_Validation() {
	_, err := s.tasks.CreateTask(s.ctx, CreateTaskInput{
		WorkspaceID: s.workspace.ID,
		CreatorID:   s.managerA.ID,
		Title:       "   ",
		Priority:    "URGENT",
	})
	s.Require().ErrorIs(err, ErrInvalidArgument)
	details := Details(err)
	s.Contains(details, "title")
	s.Contains(details, "start_date")
	s.Contains(details, "assigned_to")
	s.Contains(details, "priority")

	start := s.clock.Now()
	_, err = s.tasks.CreateTask(s.ctx, CreateTaskInput{
		WorkspaceID: s.workspace.ID,
		CreatorID:   s.managerA.ID,
		Title:       "Backwards",
		StartDate:   start,
		EndDate:     timePtr(start.Add(-time.Hour)),
		AssignedTo:  s.employee1.ID,
	})
	s.ErrorIs(err, ErrEndBeforeStart)
}

func (s *ServiceTestSuite) TestCreateTask_UnknownParticipants() {
	outsider := s.createUser("outsider")

	_, err := s.tasks.CreateTask(s.ctx, CreateTaskInput{
		WorkspaceID: s.workspace.ID,
		CreatorID:   s.managerA.ID,
		Title:       "Orphan",
		StartDate:   s.clock.Now(),
		AssignedTo:  outsider.ID,
	})
	s.ErrorIs(err, ErrAssigneeNotFound)

	_, err = s.tasks.CreateTask(s.ctx, CreateTaskInput{
		WorkspaceID: s.workspace.ID,
		CreatorID:   outsider.ID,
		Title:       "Orphan",
		StartDate:   s.clock.Now(),
		AssignedTo:  s.employee1.ID,
	})
	s.ErrorIs(err, ErrCreatorNotFound)
}

func (s *ServiceTestSuite) TestUpdateTask_PartialFields() {
	task := s.createTask(s.managerA, s.employee1, nil)

	title := "Renamed"
	priority := models.TaskPriorityHigh
	due := s.clock.Now().Add(24 * time.Hour)
	updated, err := s.tasks.UpdateTask(s.ctx, s.workspace.ID, task.ID, s.managerA.ID, UpdateTaskInput{
		Title:    &title,
		Priority: &priority,
		DueAt:    &due,
	})
	s.Require().NoError(err)
	s.Equal("Renamed", updated.Title)
	s.Equal(models.TaskPriorityHigh, updated.Priority)
	s.Require().NotNil(updated.DueAt)
	s.Equal(models.TaskStatusOpen, updated.Status)

	_, err = s.tasks.UpdateTask(s.ctx, s.workspace.ID, task.ID, s.employee1.ID, UpdateTaskInput{Title: &title})
	s.ErrorIs(err, ErrNotTaskOwner)

	_, err = s.tasks.UpdateTask(s.ctx, s.workspace.ID, 9999, s.managerA.ID, UpdateTaskInput{Title: &title})
	s.ErrorIs(err, ErrTaskNotFound)
}

func (s *ServiceTestSuite) TestUpdateTask_Reassignment() {
	task := s.createTask(s.managerA, s.employee1, nil)

	assignee := s.managerB.ID
	updated, err := s.tasks.UpdateTask(s.ctx, s.workspace.ID, task.ID, s.admin.ID, UpdateTaskInput{AssignedTo: &assignee})
	s.Require().NoError(err)
	s.Equal(s.managerB.ID, updated.AssignedTo)
	s.Equal(models.RoleManager, updated.AssignedRole)
	s.Equal(s.admin.ID, updated.AssignedBy)

	other := s.createTask(s.managerA, s.employee1, nil)
	s.submit(other)
	back := s.employee2.ID
	_, err = s.tasks.UpdateTask(s.ctx, s.workspace.ID, other.ID, s.managerA.ID, UpdateTaskInput{AssignedTo: &back})
	s.ErrorIs(err, ErrReassignAfterSubmission)
}

func (s *ServiceTestSuite) TestSetStatus_TransitionTable() {
	task := s.createTask(s.managerA, s.employee1, nil)

	updated, err := s.tasks.SetStatus(s.ctx, s.workspace.ID, task.ID, s.employee1.ID, models.TaskStatusBlocked)
	s.Require().NoError(err)
	s.Equal(models.TaskStatusBlocked, updated.Status)
	s.Contains(s.publisher.types(), events.TypeTaskStatusChanged)

	_, err = s.tasks.SetStatus(s.ctx, s.workspace.ID, task.ID, s.employee1.ID, models.TaskStatusOpen)
	s.ErrorIs(err, ErrInvalidState)

	_, err = s.tasks.SetStatus(s.ctx, s.workspace.ID, task.ID, s.employee1.ID, models.TaskStatusDone)
	s.ErrorIs(err, ErrDoneRequiresApproval)

	same, err := s.tasks.SetStatus(s.ctx, s.workspace.ID, task.ID, s.employee1.ID, models.TaskStatusBlocked)
	s.Require().NoError(err)
	s.Equal(models.TaskStatusBlocked, same.Status)

	_, err = s.tasks.SetStatus(s.ctx, s.workspace.ID, task.ID, s.employee1.ID, "ARCHIVED")
	s.ErrorIs(err, ErrInvalidTaskStatus)

	_, err = s.tasks.SetStatus(s.ctx, s.workspace.ID, 4242, s.employee1.ID, models.TaskStatusCancelled)
	s.ErrorIs(err, ErrTaskNotFound)

	// employee2 neither created nor owns the task.
	_, err = s.tasks.SetStatus(s.ctx, s.workspace.ID, task.ID, s.employee2.ID, models.TaskStatusCancelled)
	s.ErrorIs(err, ErrTaskNotFound)
}

func (s *ServiceTestSuite) TestDeleteTask_RemovesSubmission() {
	task := s.createTask(s.managerA, s.employee1, nil)
	sub := s.submit(task)

	s.ErrorIs(s.tasks.DeleteTask(s.ctx, s.workspace.ID, task.ID, s.employee1.ID), ErrNotTaskOwner)
	s.Require().NoError(s.tasks.DeleteTask(s.ctx, s.workspace.ID, task.ID, s.admin.ID))

	var count int64
	s.Require().NoError(s.db.Model(&models.TaskSubmission{}).Where("id = ?", sub.ID).Count(&count).Error)
	s.Zero(count)
	s.ErrorIs(s.tasks.DeleteTask(s.ctx, s.workspace.ID, task.ID, s.admin.ID), ErrTaskNotFound)
}

func (s *ServiceTestSuite) TestListTasks_ScopedAndDecorated() {
	past := s.clock.Now().Add(-time.Hour)
	overdue := s.createTask(s.managerA, s.employee1, &past)
	s.createTask(s.managerB, s.employee2, nil)
	reviewed := s.createTask(s.managerA, s.employee1, nil)
	sub := s.submit(reviewed)
	_, err := s.review(sub, s.managerA, models.SubmissionStatusApproved, intPtr(6), nil)
	s.Require().NoError(err)

	items, total, err := s.tasks.ListTasks(ListTasksInput{WorkspaceID: s.workspace.ID, CallerID: s.admin.ID})
	s.Require().NoError(err)
	s.Equal(int64(3), total)
	s.Len(items, 3)

	items, total, err = s.tasks.ListTasks(ListTasksInput{WorkspaceID: s.workspace.ID, CallerID: s.managerA.ID})
	s.Require().NoError(err)
	s.Equal(int64(2), total)
	for _, item := range items {
		switch item.ID {
		case overdue.ID:
			s.True(item.IsOverdue)
			s.Nil(item.TotalPoints)
		case reviewed.ID:
			s.False(item.IsOverdue)
			s.Require().NotNil(item.TotalPoints)
			s.Equal(6, *item.TotalPoints)
		default:
			s.Failf("unexpected task", "task %d is outside manager A's scope", item.ID)
		}
	}

	_, total, err = s.tasks.ListTasks(ListTasksInput{WorkspaceID: s.workspace.ID, CallerID: s.employee2.ID})
	s.Require().NoError(err)
	s.Equal(int64(1), total)

	status := models.TaskStatusDone
	_, total, err = s.tasks.ListTasks(ListTasksInput{WorkspaceID: s.workspace.ID, CallerID: s.admin.ID, Status: &status})
	s.Require().NoError(err)
	s.Equal(int64(1), total)

	_, total, err = s.tasks.ListTasks(ListTasksInput{WorkspaceID: s.workspace.ID, CallerID: s.managerA.ID, View: repository.TaskViewAssigned})
	s.Require().NoError(err)
	s.Zero(total)

	_, _, err = s.tasks.ListTasks(ListTasksInput{WorkspaceID: s.workspace.ID, CallerID: s.admin.ID, View: "mine"})
	s.ErrorIs(err, ErrInvalidView)
}

func (s *ServiceTestSuite) TestGetTask_HiddenOutsideScope() {
	task := s.createTask(s.managerB, s.employee2, nil)

	_, err := s.tasks.GetTask(s.workspace.ID, task.ID, s.managerA.ID)
	s.ErrorIs(err, ErrTaskNotFound)

	item, err := s.tasks.GetTask(s.workspace.ID, task.ID, s.managerB.ID)
	s.Require().NoError(err)
	s.Equal(task.ID, item.ID)
}

func (s *ServiceTestSuite) TestTaskStats() {
	past := s.clock.Now().Add(-time.Hour)
	s.createTask(s.managerA, s.employee1, &past)
	blocked := s.createTask(s.managerA, s.employee1, nil)
	_, err := s.tasks.SetStatus(s.ctx, s.workspace.ID, blocked.ID, s.managerA.ID, models.TaskStatusBlocked)
	s.Require().NoError(err)

	stats, err := s.tasks.TaskStats(s.workspace.ID, s.managerA.ID)
	s.Require().NoError(err)
	s.Equal(int64(2), stats.Total)
	s.Equal(int64(1), stats.ByStatus[models.TaskStatusOpen])
	s.Equal(int64(1), stats.ByStatus[models.TaskStatusBlocked])
	s.Equal(int64(0), stats.ByStatus[models.TaskStatusDone])
	s.Equal(int64(1), stats.Overdue)

	_, err = s.tasks.TaskStats(s.workspace.ID, s.employee1.ID)
	s.ErrorIs(err, ErrForbidden)
}

func (s *ServiceTestSuite) TestDraftTasks() {
	due := s.clock.Now().Add(48 * time.Hour)
	stale := s.clock.Now().Add(-72 * time.Hour)
	s.drafter.drafts = []TaskDraft{
		{Title: "Collect timesheets", Priority: models.TaskPriorityHigh, DueAt: &due},
		{Title: "  "},
		{Title: "Archive old files", Priority: "whenever", DueAt: &stale},
	}

	drafts, err := s.tasks.DraftTasks(s.ctx, "please collect timesheets and archive old files")
	s.Require().NoError(err)
	s.Require().Len(drafts, 2)
	s.Equal(models.TaskPriorityHigh, drafts[0].Priority)
	s.Equal(models.TaskPriorityMedium, drafts[1].Priority)
	s.Nil(drafts[1].DueAt)

	_, err = s.tasks.DraftTasks(s.ctx, " ")
	s.ErrorIs(err, ErrDraftTextRequired)

	s.drafter.drafts = nil
	_, err = s.tasks.DraftTasks(s.ctx, "nothing here")
	s.ErrorIs(err, ErrAINoTasksGenerated)

	s.drafter.err = errors.New("upstream down")
	_, err = s.tasks.DraftTasks(s.ctx, "anything")
	s.Error(err)

	unconfigured := NewTaskService(nil, s.identity, nil, nil, s.clock, nil)
	_, err = unconfigured.DraftTasks(s.ctx, "anything")
	s.ErrorIs(err, ErrAIServiceNotConfigured)
}

func (s *ServiceTestSuite) TestPublishFailureDoesNotFailOperation() {
	s.publisher.err = events.ErrBufferFull

	task := s.createTask(s.managerA, s.employee1, nil)
	sub := s.submit(task)
	_, err := s.review(sub, s.managerA, models.SubmissionStatusApproved, nil, nil)
	s.Require().NoError(err)
	s.Equal(models.TaskStatusDone, s.reloadTask(task.ID).Status)
}
