package dto

import "github.com/yukikurage/hr-task-review-api/internal/services"

// NotificationListResponse is the caller's notification feed
type NotificationListResponse struct {
	Notifications []services.Notification `json:"notifications"`
	Total         int                     `json:"total"`
	HighPriority  int                     `json:"high_priority"`
}

func ToNotificationListResponse(feed []services.Notification) NotificationListResponse {
	resp := NotificationListResponse{
		Notifications: feed,
		Total:         len(feed),
	}
	if resp.Notifications == nil {
		resp.Notifications = []services.Notification{}
	}
	for _, n := range feed {
		if n.Priority == services.PriorityHigh {
			resp.HighPriority++
		}
	}
	return resp
}
