package middleware

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/hr-task-review-api/internal/constants"
	apierrors "github.com/yukikurage/hr-task-review-api/internal/errors"
	"github.com/yukikurage/hr-task-review-api/internal/models"
	"github.com/yukikurage/hr-task-review-api/internal/services"
)

// RequireWorkspaceMember resolves the caller's identity in the workspace named
// by the :workspace_id parameter. The identity is looked up on every request
// so role and manager changes apply immediately.
func RequireWorkspaceMember(identity *services.IdentityService) gin.HandlerFunc {
	return func(c *gin.Context) {
		workspaceID, err := strconv.ParseUint(c.Param("workspace_id"), 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid workspace ID")
			c.Abort()
			return
		}

		userID, exists := GetUserID(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		caller, err := identity.ResolveUser(workspaceID, userID)
		if err != nil {
			// Return 404 instead of 403 to avoid leaking workspace existence
			if errors.Is(err, services.ErrMemberNotFound) {
				apierrors.NotFound(c, "Workspace not found")
			} else {
				apierrors.InternalError(c, "")
			}
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyIdentity, *caller)
		c.Next()
	}
}

// RequireRole allows the request through only for the given roles.
// Must run after RequireWorkspaceMember.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := GetIdentity(c)
		if !ok {
			apierrors.Forbidden(c, "Workspace access required")
			c.Abort()
			return
		}

		for _, role := range roles {
			if caller.Role == role {
				c.Next()
				return
			}
		}

		apierrors.Forbidden(c, "Your role does not allow this action")
		c.Abort()
	}
}

// GetIdentity retrieves the caller's workspace identity from context
func GetIdentity(c *gin.Context) (services.Identity, bool) {
	v, exists := c.Get(constants.ContextKeyIdentity)
	if !exists {
		return services.Identity{}, false
	}
	identity, ok := v.(services.Identity)
	return identity, ok
}
