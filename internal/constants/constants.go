package constants

import "time"

// Session and context keys
const (
	SessionCookieName  = "hr_task_session"
	ContextKeyUserID   = "user_id"
	ContextKeyIdentity = "identity"
)

// Authentication
const (
	MinPasswordLength = 8
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// AI drafting
const (
	MaxAIGeneratedTasks = 20
)

// Review scoring. The quality and bonus ceilings are enforced at review time and
// also define the possible points used for efficiency reporting.
const (
	OnTimeBasePoints      = 5
	MaxQualityPoints      = 10
	MaxBonusPoints        = 5
	PossiblePointsPerTask = OnTimeBasePoints + MaxQualityPoints + MaxBonusPoints
)

// EscalationThreshold is how long a submission may wait in pending_review
// before it is flagged. Not configurable per workspace.
const EscalationThreshold = 48 * time.Hour

// RecentReviewedNotificationLimit caps submission_reviewed notifications per caller.
const RecentReviewedNotificationLimit = 10
