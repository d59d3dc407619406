package services

import (
	"context"
	"sync"
	"time"

	"github.com/yukikurage/hr-task-review-api/internal/events"
	"github.com/yukikurage/hr-task-review-api/internal/logging"
	"github.com/yukikurage/hr-task-review-api/internal/models"
	"github.com/yukikurage/hr-task-review-api/internal/repository"
)

func (s *ServiceTestSuite) TestSubmit_AdvancesOpenTask() {
	task := s.createTask(s.managerA, s.employee1, nil)

	sub := s.submit(task)
	s.Equal(models.SubmissionStatusPendingReview, sub.Status)
	s.Zero(sub.BasePoints)
	s.Zero(sub.TotalPoints())
	s.Equal(s.clock.Now(), sub.SubmittedAt)
	s.Equal(models.TaskStatusInProgress, s.reloadTask(task.ID).Status)
	s.Contains(s.publisher.types(), events.TypeSubmissionCreated)
}

func (s *ServiceTestSuite) TestSubmit_Guards() {
	task := s.createTask(s.managerA, s.employee1, nil)

	_, err := s.submissions.Submit(s.ctx, SubmitInput{WorkspaceID: s.workspace.ID, TaskID: task.ID, UserID: s.employee2.ID, Report: "not mine"})
	s.ErrorIs(err, ErrTaskNotFound)

	_, err = s.submissions.Submit(s.ctx, SubmitInput{WorkspaceID: s.workspace.ID, TaskID: task.ID, UserID: s.employee1.ID, Report: "  "})
	s.ErrorIs(err, ErrReportRequired)

	_, err = s.tasks.SetStatus(s.ctx, s.workspace.ID, task.ID, s.managerA.ID, models.TaskStatusCancelled)
	s.Require().NoError(err)
	_, err = s.submissions.Submit(s.ctx, SubmitInput{WorkspaceID: s.workspace.ID, TaskID: task.ID, UserID: s.employee1.ID, Report: "late"})
	s.ErrorIs(err, ErrInvalidState)
}

func (s *ServiceTestSuite) TestSubmit_SecondSubmissionRejected() {
	task := s.createTask(s.managerA, s.employee1, nil)
	s.submit(task)

	_, err := s.submissions.Submit(s.ctx, SubmitInput{WorkspaceID: s.workspace.ID, TaskID: task.ID, UserID: s.employee1.ID, Report: "again"})
	s.ErrorIs(err, ErrAlreadySubmitted)
	s.ErrorIs(err, ErrInvalidState)
	s.Equal("Task already submitted", err.Error())
}

func (s *ServiceTestSuite) TestSubmit_ConcurrentSubmitsOneWins() {
	task := s.createTask(s.managerA, s.employee1, nil)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.submissions.Submit(s.ctx, SubmitInput{
				WorkspaceID: s.workspace.ID,
				TaskID:      task.ID,
				UserID:      s.employee1.ID,
				Report:      "racing",
			})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		s.ErrorIs(err, ErrAlreadySubmitted)
	}
	s.Equal(1, succeeded)

	var count int64
	s.Require().NoError(s.db.Model(&models.TaskSubmission{}).Where("task_id = ?", task.ID).Count(&count).Error)
	s.Equal(int64(1), count)
}

func (s *ServiceTestSuite) TestReview_OnTimeApprovalCompletesTask() {
	due := time.Date(2025, 6, 20, 18, 0, 0, 0, time.UTC)
	task := s.createTask(s.managerA, s.employee1, &due)

	s.clock.Set(time.Date(2025, 6, 20, 17, 0, 0, 0, time.UTC))
	sub := s.submit(task)

	s.clock.Advance(2 * time.Hour)
	reviewed, err := s.review(sub, s.managerA, models.SubmissionStatusApproved, nil, nil)
	s.Require().NoError(err)
	s.Equal(5, reviewed.BasePoints)
	s.Equal(5, reviewed.TotalPoints())
	s.Equal(models.SubmissionStatusApproved, reviewed.Status)
	s.Require().NotNil(reviewed.ReviewedBy)
	s.Equal(s.managerA.ID, *reviewed.ReviewedBy)
	s.Equal(models.TaskStatusDone, s.reloadTask(task.ID).Status)
	s.Contains(s.publisher.types(), events.TypeSubmissionReviewed)
}

func (s *ServiceTestSuite) TestReview_LateApprovalScoresQualityAndBonusOnly() {
	due := time.Date(2025, 6, 20, 18, 0, 0, 0, time.UTC)
	task := s.createTask(s.managerA, s.employee1, &due)

	s.clock.Set(time.Date(2025, 6, 21, 9, 0, 0, 0, time.UTC))
	sub := s.submit(task)

	reviewed, err := s.review(sub, s.managerA, models.SubmissionStatusApproved, intPtr(8), intPtr(2))
	s.Require().NoError(err)
	s.Equal(0, reviewed.BasePoints)
	s.Equal(10, reviewed.TotalPoints())
}

func (s *ServiceTestSuite) TestReview_NoDeadlineMeansNoBasePoints() {
	task := s.createTask(s.managerA, s.employee1, nil)
	sub := s.submit(task)

	reviewed, err := s.review(sub, s.admin, models.SubmissionStatusApproved, intPtr(3), nil)
	s.Require().NoError(err)
	s.Equal(0, reviewed.BasePoints)
	s.Equal(3, reviewed.TotalPoints())
}

func (s *ServiceTestSuite) TestReview_RejectionLeavesTaskUnchanged() {
	task := s.createTask(s.managerA, s.employee1, nil)
	sub := s.submit(task)

	reviewed, err := s.review(sub, s.managerA, models.SubmissionStatusRejected, nil, nil)
	s.Require().NoError(err)
	s.Equal(models.SubmissionStatusRejected, reviewed.Status)
	s.Equal(models.TaskStatusInProgress, s.reloadTask(task.ID).Status)
}

func (s *ServiceTestSuite) TestReview_TerminalOnceReviewed() {
	task := s.createTask(s.managerA, s.employee1, nil)
	sub := s.submit(task)

	_, err := s.review(sub, s.managerA, models.SubmissionStatusRejected, nil, nil)
	s.Require().NoError(err)

	for _, decision := range []models.ReviewDecision{models.SubmissionStatusApproved, models.SubmissionStatusRejected} {
		_, err = s.review(sub, s.admin, decision, nil, nil)
		s.ErrorIs(err, ErrAlreadyReviewed)
	}
}

func (s *ServiceTestSuite) TestReview_Authorization() {
	task := s.createTask(s.managerA, s.employee1, nil)
	sub := s.submit(task)

	_, err := s.review(sub, s.employee2, models.SubmissionStatusApproved, nil, nil)
	s.ErrorIs(err, ErrNotReviewer)

	_, err = s.review(sub, s.managerB, models.SubmissionStatusApproved, nil, nil)
	s.ErrorIs(err, ErrForbidden)

	outsider := s.createUser("outsider")
	_, err = s.review(sub, outsider, models.SubmissionStatusApproved, nil, nil)
	s.ErrorIs(err, ErrReviewerNotFound)

	_, err = s.reviews.Review(s.ctx, ReviewInput{WorkspaceID: s.workspace.ID, SubmissionID: 777, ReviewerID: s.admin.ID, Decision: models.SubmissionStatusApproved})
	s.ErrorIs(err, ErrSubmissionNotFound)
}

func (s *ServiceTestSuite) TestReview_ArgumentValidation() {
	task := s.createTask(s.managerA, s.employee1, nil)
	sub := s.submit(task)

	_, err := s.review(sub, s.managerA, "maybe", nil, nil)
	s.ErrorIs(err, ErrInvalidDecision)

	_, err = s.review(sub, s.managerA, models.SubmissionStatusApproved, intPtr(11), nil)
	s.ErrorIs(err, ErrQualityOutOfRange)

	_, err = s.review(sub, s.managerA, models.SubmissionStatusApproved, nil, intPtr(6))
	s.ErrorIs(err, ErrBonusOutOfRange)

	_, err = s.review(sub, s.managerA, models.SubmissionStatusApproved, intPtr(-1), nil)
	s.ErrorIs(err, ErrInvalidArgument)

	// Nothing was written by the failed attempts.
	reviewed, err := s.review(sub, s.managerA, models.SubmissionStatusApproved, intPtr(10), intPtr(5))
	s.Require().NoError(err)
	s.Equal(15, reviewed.TotalPoints())
}

func (s *ServiceTestSuite) TestReviewQueue_ManagerSeesOnlyDirectReports() {
	s.clock.Set(time.Date(2025, 6, 18, 9, 0, 0, 0, time.UTC))
	older := s.submit(s.createTask(s.managerA, s.employee1, nil))
	s.clock.Advance(time.Hour)
	other := s.submit(s.createTask(s.managerB, s.employee2, nil))
	s.clock.Advance(time.Hour)
	newer := s.submit(s.createTask(s.admin, s.employee1, nil))
	s.clock.Set(time.Date(2025, 6, 20, 12, 0, 0, 0, time.UTC))

	queue, err := s.reviews.ReviewQueue(s.workspace.ID, s.managerA.ID)
	s.Require().NoError(err)
	s.Require().Len(queue, 2)
	s.Equal(older.ID, queue[0].Submission.ID)
	s.Equal(newer.ID, queue[1].Submission.ID)
	for _, item := range queue {
		s.NotEqual(other.ID, item.Submission.ID)
		s.Equal(s.managerA.ID, *s.mustResolve(item.Submission.Task.AssignedTo).ManagerID)
	}
	s.True(queue[0].Escalation.NeedsEscalation)
	s.Equal(51, queue[0].Escalation.HoursSinceSubmission)

	all, err := s.reviews.ReviewQueue(s.workspace.ID, s.admin.ID)
	s.Require().NoError(err)
	s.Len(all, 3)

	_, err = s.reviews.ReviewQueue(s.workspace.ID, s.employee1.ID)
	s.ErrorIs(err, ErrForbidden)
}

func (s *ServiceTestSuite) mustResolve(userID uint64) *Identity {
	identity, err := s.identity.ResolveUser(s.workspace.ID, userID)
	s.Require().NoError(err)
	return identity
}

func (s *ServiceTestSuite) TestReviewQueue_UsesCurrentReportingLine() {
	sub := s.submit(s.createTask(s.managerA, s.employee1, nil))

	managerB := s.managerB.ID
	_, err := s.workspaces.UpdateMember(s.workspace.ID, s.admin.ID, s.employee1.ID, UpdateMemberInput{ManagerID: &managerB})
	s.Require().NoError(err)

	queue, err := s.reviews.ReviewQueue(s.workspace.ID, s.managerA.ID)
	s.Require().NoError(err)
	s.Empty(queue)

	_, err = s.review(sub, s.managerA, models.SubmissionStatusApproved, nil, nil)
	s.ErrorIs(err, ErrOutsideReviewScope)
}

func (s *ServiceTestSuite) TestSubmissionEscalation() {
	task := s.createTask(s.managerA, s.employee1, nil)
	sub := s.submit(task)

	s.clock.Advance(50 * time.Hour)
	state, err := s.submissions.GetSubmissionEscalation(s.workspace.ID, sub.ID, s.managerA.ID)
	s.Require().NoError(err)
	s.Equal(50, state.HoursSinceSubmission)
	s.True(state.NeedsEscalation)

	state, err = s.submissions.GetSubmissionEscalation(s.workspace.ID, sub.ID, s.employee1.ID)
	s.Require().NoError(err)
	s.True(state.NeedsEscalation)

	_, err = s.submissions.GetSubmissionEscalation(s.workspace.ID, sub.ID, s.managerB.ID)
	s.ErrorIs(err, ErrSubmissionNotFound)

	_, err = s.submissions.GetSubmissionEscalation(s.workspace.ID, 31337, s.admin.ID)
	s.ErrorIs(err, ErrSubmissionNotFound)

	view, err := s.submissions.GetSubmission(s.workspace.ID, sub.ID, s.admin.ID)
	s.Require().NoError(err)
	s.Equal(sub.ID, view.Submission.ID)
	s.True(view.Escalation.NeedsEscalation)
}

func (s *ServiceTestSuite) TestScanEscalations() {
	stale := s.submit(s.createTask(s.managerA, s.employee1, nil))
	s.clock.Advance(30 * time.Hour)
	s.submit(s.createTask(s.managerB, s.employee2, nil))
	s.clock.Advance(20 * time.Hour)

	escalated, err := s.reviews.ScanEscalations(s.ctx, s.workspace.ID)
	s.Require().NoError(err)
	s.Require().Len(escalated, 1)
	s.Equal(stale.ID, escalated[0].SubmissionID)
	s.Contains(s.publisher.types(), events.TypeReviewEscalated)
}

func (s *ServiceTestSuite) TestScanEscalations_DeliversMoreThanBusBuffer() {
	bus := events.NewBus(2, logging.Discard())
	delivered := make(map[uint64]bool)
	bus.Subscribe(events.TypeReviewEscalated, func(_ context.Context, e *events.Event) error {
		delivered[e.Payload["submission_id"].(uint64)] = true
		return nil
	})
	reviews := NewReviewService(repository.NewSubmissionRepository(s.db), s.identity, bus.Inline(), s.clock, logging.Discard())

	for i := 0; i < 3; i++ {
		s.submit(s.createTask(s.managerA, s.employee1, nil))
	}
	s.clock.Advance(49 * time.Hour)

	escalated, err := reviews.ScanEscalations(s.ctx, s.workspace.ID)
	s.Require().NoError(err)
	s.Require().Len(escalated, 3)
	s.Len(delivered, 3)
	for _, state := range escalated {
		s.True(delivered[state.SubmissionID])
	}
}

func (s *ServiceTestSuite) TestEventsStampedWithServiceClock() {
	createdAt := s.clock.Now()
	task := s.createTask(s.managerA, s.employee1, nil)
	s.clock.Advance(90 * time.Minute)
	s.submit(task)

	s.Require().Len(s.publisher.events, 2)
	s.Equal(createdAt, s.publisher.events[0].Timestamp)
	s.Equal(s.clock.Now(), s.publisher.events[1].Timestamp)
}
