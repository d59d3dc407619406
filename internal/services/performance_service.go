package services

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/yukikurage/hr-task-review-api/internal/clock"
	"github.com/yukikurage/hr-task-review-api/internal/constants"
	"github.com/yukikurage/hr-task-review-api/internal/models"
	"github.com/yukikurage/hr-task-review-api/internal/repository"
)

type Period string

const (
	PeriodWeek    Period = "week"
	PeriodMonth   Period = "month"
	PeriodQuarter Period = "quarter"
	PeriodAll     Period = "all"
)

var (
	ErrInvalidPeriod        = newError(ErrInvalidArgument, "period must be one of week, month, quarter, all")
	ErrPerformanceForbidden = newError(ErrForbidden, "you can only view performance for yourself or your direct reports")
)

// UserPerformance is one assignee's rollup over a period.
type UserPerformance struct {
	UserID              uint64  `json:"user_id"`
	TotalTasks          int     `json:"total_tasks"`
	CompletedTasks      int     `json:"completed_tasks"`
	PendingTasks        int     `json:"pending_tasks"`
	OverdueTasks        int     `json:"overdue_tasks"`
	TotalPointsEarned   int     `json:"total_points_earned"`
	TotalBonusPoints    int     `json:"total_bonus_points"`
	OnTimeSubmissions   int     `json:"on_time_submissions"`
	LateSubmissions     int     `json:"late_submissions"`
	TotalPossiblePoints int     `json:"total_possible_points"`
	AverageQualityScore float64 `json:"average_quality_score"`
	CompletionRate      float64 `json:"completion_rate"`
	PointsEfficiency    float64 `json:"points_efficiency"`
	OnTimeRate          float64 `json:"on_time_rate"`

	qualitySum   int
	qualityCount int
}

// PerformanceSummary is the workspace-wide rollup.
type PerformanceSummary struct {
	TotalUsers              int     `json:"total_users"`
	TotalTasks              int     `json:"total_tasks"`
	CompletedTasks          int     `json:"completed_tasks"`
	TotalPointsEarned       int     `json:"total_points_earned"`
	TotalPossiblePoints     int     `json:"total_possible_points"`
	AverageCompletionRate   float64 `json:"average_completion_rate"`
	AveragePointsEfficiency float64 `json:"average_points_efficiency"`
}

// PerformanceReport is the result of a performance query.
type PerformanceReport struct {
	Period  Period             `json:"period"`
	Since   time.Time          `json:"since"`
	Users   []UserPerformance  `json:"users"`
	Summary PerformanceSummary `json:"summary"`
}

// PerformanceService aggregates task and submission data per user
type PerformanceService struct {
	taskRepo repository.TaskRepository
	identity *IdentityService
	clock    clock.Clock
}

// NewPerformanceService creates a new PerformanceService
func NewPerformanceService(taskRepo repository.TaskRepository, identity *IdentityService, clk clock.Clock) *PerformanceService {
	return &PerformanceService{
		taskRepo: taskRepo,
		identity: identity,
		clock:    clk,
	}
}

// PeriodStart resolves the inclusive start of period relative to now.
func PeriodStart(period Period, now time.Time) (time.Time, error) {
	switch period {
	case PeriodWeek:
		return now.AddDate(0, 0, -7), nil
	case PeriodMonth:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()), nil
	case PeriodQuarter:
		firstMonth := time.Month((int(now.Month())-1)/3*3 + 1)
		return time.Date(now.Year(), firstMonth, 1, 0, 0, 0, 0, now.Location()), nil
	case PeriodAll:
		return time.Unix(0, 0).UTC(), nil
	}
	return time.Time{}, ErrInvalidPeriod
}

// PerformanceFor reports performance for the users the caller may see,
// optionally narrowed to one user.
func (s *PerformanceService) PerformanceFor(workspaceID, callerID uint64, userID *uint64, period Period) (*PerformanceReport, error) {
	now := s.clock.Now()
	since, err := PeriodStart(period, now)
	if err != nil {
		return nil, err
	}

	caller, err := s.identity.ResolveUser(workspaceID, callerID)
	if err != nil {
		return nil, err
	}
	scope, err := s.identity.Scope(caller)
	if err != nil {
		return nil, err
	}

	assignees := scope
	if userID != nil {
		if _, err := s.identity.ResolveUser(workspaceID, *userID); err != nil {
			if errors.Is(err, ErrMemberNotFound) {
				return nil, ErrMemberNotFound
			}
			return nil, err
		}
		if !inScope(scope, *userID) {
			return nil, ErrPerformanceForbidden
		}
		assignees = []uint64{*userID}
	}

	tasks, err := s.taskRepo.ListForPerformance(workspaceID, since, assignees)
	if err != nil {
		return nil, fmt.Errorf("failed to load tasks: %w", err)
	}

	report := AggregatePerformance(tasks, now)
	report.Period = period
	report.Since = since
	return &report, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func percent(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return round2(float64(num) / float64(den) * 100)
}

// AggregatePerformance rolls tasks up per assignee. Users are ordered by
// points earned, highest first, ties broken by user ID.
func AggregatePerformance(tasks []models.Task, now time.Time) PerformanceReport {
	byUser := make(map[uint64]*UserPerformance)

	for i := range tasks {
		task := &tasks[i]
		perf, ok := byUser[task.AssignedTo]
		if !ok {
			perf = &UserPerformance{UserID: task.AssignedTo}
			byUser[task.AssignedTo] = perf
		}

		perf.TotalTasks++
		perf.TotalPossiblePoints += constants.PossiblePointsPerTask
		switch task.Status {
		case models.TaskStatusDone:
			perf.CompletedTasks++
		case models.TaskStatusOpen:
			perf.PendingTasks++
		}
		if task.IsOverdue(now) {
			perf.OverdueTasks++
		}

		sub := task.Submission
		if sub == nil {
			continue
		}
		perf.TotalPointsEarned += sub.TotalPoints()
		perf.TotalBonusPoints += sub.BonusPoints
		if sub.QualityPoints > 0 {
			perf.qualitySum += sub.QualityPoints
			perf.qualityCount++
		}
		if task.DueAt != nil {
			if sub.SubmittedAt.After(*task.DueAt) {
				perf.LateSubmissions++
			} else {
				perf.OnTimeSubmissions++
			}
		}
	}

	report := PerformanceReport{Users: make([]UserPerformance, 0, len(byUser))}
	var completionSum, efficiencySum float64

	for _, perf := range byUser {
		perf.CompletionRate = percent(perf.CompletedTasks, perf.TotalTasks)
		perf.PointsEfficiency = percent(perf.TotalPointsEarned, perf.TotalPossiblePoints)
		perf.OnTimeRate = percent(perf.OnTimeSubmissions, perf.OnTimeSubmissions+perf.LateSubmissions)
		if perf.qualityCount > 0 {
			perf.AverageQualityScore = round2(float64(perf.qualitySum) / float64(perf.qualityCount))
		}

		report.Summary.TotalTasks += perf.TotalTasks
		report.Summary.CompletedTasks += perf.CompletedTasks
		report.Summary.TotalPointsEarned += perf.TotalPointsEarned
		report.Summary.TotalPossiblePoints += perf.TotalPossiblePoints
		completionSum += perf.CompletionRate
		efficiencySum += perf.PointsEfficiency

		report.Users = append(report.Users, *perf)
	}

	report.Summary.TotalUsers = len(report.Users)
	if n := len(report.Users); n > 0 {
		report.Summary.AverageCompletionRate = round2(completionSum / float64(n))
		report.Summary.AveragePointsEfficiency = round2(efficiencySum / float64(n))
	}

	sort.Slice(report.Users, func(i, j int) bool {
		if report.Users[i].TotalPointsEarned != report.Users[j].TotalPointsEarned {
			return report.Users[i].TotalPointsEarned > report.Users[j].TotalPointsEarned
		}
		return report.Users[i].UserID < report.Users[j].UserID
	})

	return report
}
