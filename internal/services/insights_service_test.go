package services

import (
	"time"

	"github.com/yukikurage/hr-task-review-api/internal/models"
)

func (s *ServiceTestSuite) TestNotificationsFor_ReviewerAndSubmitter() {
	pending := s.submit(s.createTask(s.managerA, s.employee1, nil))
	reviewed := s.submit(s.createTask(s.managerA, s.employee1, nil))
	s.clock.Advance(time.Hour)
	_, err := s.review(reviewed, s.managerA, models.SubmissionStatusApproved, intPtr(4), nil)
	s.Require().NoError(err)
	s.clock.Advance(49 * time.Hour)

	feed, err := s.notifications.NotificationsFor(s.workspace.ID, s.managerA.ID)
	s.Require().NoError(err)
	s.Require().Len(feed, 2)
	s.Equal(NotificationEscalation, feed[0].Type)
	s.Equal(NotificationPendingReview, feed[1].Type)
	s.Equal(pending.ID, feed[1].Payload["submission_id"])

	feed, err = s.notifications.NotificationsFor(s.workspace.ID, s.managerB.ID)
	s.Require().NoError(err)
	s.Empty(feed)

	feed, err = s.notifications.NotificationsFor(s.workspace.ID, s.employee1.ID)
	s.Require().NoError(err)
	s.Require().Len(feed, 1)
	s.Equal(NotificationSubmissionReviewed, feed[0].Type)
	s.Equal(PriorityLow, feed[0].Priority)
}

func (s *ServiceTestSuite) TestNotificationsFor_CapsReviewedResults() {
	for i := 0; i < 12; i++ {
		sub := s.submit(s.createTask(s.managerA, s.employee1, nil))
		_, err := s.review(sub, s.managerA, models.SubmissionStatusRejected, nil, nil)
		s.Require().NoError(err)
		s.clock.Advance(time.Minute)
	}

	feed, err := s.notifications.NotificationsFor(s.workspace.ID, s.employee1.ID)
	s.Require().NoError(err)
	s.Len(feed, 10)
}

func (s *ServiceTestSuite) TestPerformanceFor_Scoping() {
	due := s.clock.Now().Add(time.Hour)
	onTime := s.submit(s.createTask(s.managerA, s.employee1, &due))
	_, err := s.review(onTime, s.managerA, models.SubmissionStatusApproved, intPtr(9), intPtr(1))
	s.Require().NoError(err)
	s.createTask(s.managerB, s.employee2, nil)

	report, err := s.performance.PerformanceFor(s.workspace.ID, s.admin.ID, nil, PeriodAll)
	s.Require().NoError(err)
	s.Require().Len(report.Users, 2)
	s.Equal(s.employee1.ID, report.Users[0].UserID)
	s.Equal(15, report.Users[0].TotalPointsEarned)
	s.Equal(100.0, report.Users[0].OnTimeRate)

	report, err = s.performance.PerformanceFor(s.workspace.ID, s.managerA.ID, nil, PeriodWeek)
	s.Require().NoError(err)
	s.Require().Len(report.Users, 1)
	s.Equal(s.employee1.ID, report.Users[0].UserID)

	employee2 := s.employee2.ID
	_, err = s.performance.PerformanceFor(s.workspace.ID, s.managerA.ID, &employee2, PeriodMonth)
	s.ErrorIs(err, ErrForbidden)

	report, err = s.performance.PerformanceFor(s.workspace.ID, s.employee2.ID, nil, PeriodQuarter)
	s.Require().NoError(err)
	s.Require().Len(report.Users, 1)
	s.Equal(s.employee2.ID, report.Users[0].UserID)

	_, err = s.performance.PerformanceFor(s.workspace.ID, s.admin.ID, nil, "decade")
	s.ErrorIs(err, ErrInvalidPeriod)
}

func (s *ServiceTestSuite) TestPerformanceFor_PeriodExcludesOlderTasks() {
	s.clock.Set(time.Date(2025, 5, 30, 9, 0, 0, 0, time.UTC))
	s.createTask(s.managerA, s.employee1, nil)
	s.clock.Set(time.Date(2025, 6, 20, 12, 0, 0, 0, time.UTC))
	s.createTask(s.managerA, s.employee1, nil)

	month, err := s.performance.PerformanceFor(s.workspace.ID, s.admin.ID, nil, PeriodMonth)
	s.Require().NoError(err)
	s.Require().Len(month.Users, 1)
	s.Equal(1, month.Users[0].TotalTasks)

	quarter, err := s.performance.PerformanceFor(s.workspace.ID, s.admin.ID, nil, PeriodQuarter)
	s.Require().NoError(err)
	s.Equal(2, quarter.Users[0].TotalTasks)
}
