package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/hr-task-review-api/internal/dto"
	"github.com/yukikurage/hr-task-review-api/internal/services"
)

// InsightsHandler serves notifications and performance reports.
type InsightsHandler struct {
	notificationService *services.NotificationService
	performanceService  *services.PerformanceService
}

func NewInsightsHandler(notificationService *services.NotificationService, performanceService *services.PerformanceService) *InsightsHandler {
	return &InsightsHandler{
		notificationService: notificationService,
		performanceService:  performanceService,
	}
}

// Notifications returns the caller's feed, highest priority first
func (h *InsightsHandler) Notifications(c *gin.Context) {
	caller, ok := callerIdentity(c)
	if !ok {
		return
	}

	feed, err := h.notificationService.NotificationsFor(caller.WorkspaceID, caller.UserID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToNotificationListResponse(feed))
}

// Performance reports per-user performance. period defaults to month;
// user_id narrows the report to one visible user.
func (h *InsightsHandler) Performance(c *gin.Context) {
	caller, ok := callerIdentity(c)
	if !ok {
		return
	}

	userID, ok := optionalUintQuery(c, "user_id")
	if !ok {
		return
	}
	period := services.Period(c.DefaultQuery("period", string(services.PeriodMonth)))

	report, err := h.performanceService.PerformanceFor(caller.WorkspaceID, caller.UserID, userID, period)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}
