package middleware

import (
	"github.com/gin-gonic/gin"

	userdomain "github.com/FormaKit/Backend/internal/user/domain"
)

// identityKey is the gin context key the auth guard stores the caller
// identity under.
const identityKey = "auth.identity"

// Identity is the request-scoped identity attached by the auth guard. It is
// derived from verified token claims plus live session state and is valid
// only for the lifetime of the request.
type Identity struct {
	UserID    string
	Email     string
	Role      userdomain.Role
	SessionID string
}

// SetIdentity attaches the identity to the request context.
func SetIdentity(c *gin.Context, id Identity) {
	c.Set(identityKey, id)
}

// GetIdentity returns the identity attached by the auth guard, and false when
// the request did not pass it.
func GetIdentity(c *gin.Context) (Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return Identity{}, false
	}
	id, ok := v.(Identity)
	return id, ok
}
