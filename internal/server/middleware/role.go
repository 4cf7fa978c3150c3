package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/FormaKit/Backend/internal/apperr"
	userdomain "github.com/FormaKit/Backend/internal/user/domain"
)

// RoleGuard authorizes by role membership against a caller-configured
// allow-list. It must run after AuthGuard; a request without an attached
// identity is rejected as unauthenticated, not as forbidden.
func RoleGuard(allowed ...userdomain.Role) gin.HandlerFunc {
	names := make([]string, len(allowed))
	for i, r := range allowed {
		names[i] = string(r)
	}
	return func(c *gin.Context) {
		id, ok := GetIdentity(c)
		if !ok {
			reject(c, "no_identity", apperr.Auth("authentication required"))
			return
		}
		if id.Role == "" {
			reject(c, "no_role", apperr.Auth("role claim missing"))
			return
		}
		for _, r := range allowed {
			if id.Role == r {
				c.Next()
				return
			}
		}
		reject(c, "role_denied", apperr.Permission(
			fmt.Sprintf("requires one of roles: %v", names),
			map[string]any{"allowed_roles": names},
		))
	}
}
