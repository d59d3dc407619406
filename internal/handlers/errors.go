package handlers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/hr-task-review-api/internal/errors"
	"github.com/yukikurage/hr-task-review-api/internal/middleware"
	"github.com/yukikurage/hr-task-review-api/internal/services"
)

// respondServiceError maps a service error kind to its HTTP response.
// Unclassified errors are attached to the context for the request logger
// and reported as a generic 500.
func respondServiceError(c *gin.Context, err error) {
	var svcErr *services.Error
	message := ""
	if errors.As(err, &svcErr) {
		message = svcErr.Message
	}

	switch {
	case errors.Is(err, services.ErrAIServiceNotConfigured):
		apierrors.ServiceUnavailable(c, "AI service is not configured. Please set OPENAI_API_KEY environment variable.")
	case errors.Is(err, services.ErrNotFound):
		apierrors.NotFound(c, message)
	case errors.Is(err, services.ErrInvalidArgument):
		if details := services.Details(err); len(details) > 0 {
			apierrors.BadRequestWithDetails(c, message, details)
		} else {
			apierrors.BadRequest(c, message)
		}
	case errors.Is(err, services.ErrInvalidState):
		apierrors.InvalidState(c, message)
	case errors.Is(err, services.ErrForbidden):
		apierrors.Forbidden(c, message)
	default:
		_ = c.Error(err)
		apierrors.InternalError(c, "")
	}
}

// parseIDParam reads a numeric path parameter, answering 400 when it is malformed.
func parseIDParam(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid "+name)
		return 0, false
	}
	return id, true
}

// callerIdentity returns the identity set by RequireWorkspaceMember.
func callerIdentity(c *gin.Context) (services.Identity, bool) {
	caller, ok := middleware.GetIdentity(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return services.Identity{}, false
	}
	return caller, true
}
