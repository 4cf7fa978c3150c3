package middleware

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/FormaKit/Backend/internal/apperr"
	"github.com/FormaKit/Backend/internal/metrics"
	"github.com/FormaKit/Backend/internal/security"
	sessiondomain "github.com/FormaKit/Backend/internal/session/domain"
	userdomain "github.com/FormaKit/Backend/internal/user/domain"
)

// SessionReader is the session access the auth guard needs.
type SessionReader interface {
	ListByUser(ctx context.Context, userID string) ([]*sessiondomain.Session, error)
	UpdateLastActive(ctx context.Context, id string, at time.Time) error
	EndSession(ctx context.Context, id string) error
}

// lastActiveTimeout bounds the background last-active touch so it cannot
// outlive the process shutdown grace period.
const lastActiveTimeout = 5 * time.Second

// AuthGuard authenticates the request: it extracts the bearer token, verifies
// its signature and expiration, validates the claimed session against live
// store state, and attaches the caller identity to the context. The token
// alone is never authoritative; the session must still exist, be the user's
// current one, match the presented token, and be unexpired.
func AuthGuard(tokens *security.TokenCodec, sessions SessionReader, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			reject(c, "no_header", apperr.Auth("no authorization header"))
			return
		}
		parts := strings.Fields(header)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			reject(c, "bad_format", apperr.Auth("invalid authorization header format"))
			return
		}
		token := parts[1]

		claims, err := tokens.Verify(token)
		if err != nil {
			reject(c, "bad_token", apperr.Auth(err.Error()))
			return
		}

		list, err := sessions.ListByUser(c.Request.Context(), claims.UserID)
		if err != nil {
			logger.Error("auth guard: session lookup failed",
				zap.String("user_id", claims.UserID), zap.Error(err))
			reject(c, "store_error", apperr.Auth("authorization failed"))
			return
		}
		var session *sessiondomain.Session
		for _, s := range list {
			if s.ID == claims.SessionID {
				session = s
				break
			}
		}
		if session == nil {
			reject(c, "session_not_found", apperr.Auth("session not found"))
			return
		}
		if !session.IsCurrent {
			reject(c, "session_superseded", apperr.Auth("session no longer active"))
			return
		}
		if session.SessionToken != token {
			reject(c, "token_mismatch", apperr.Auth("invalid session token"))
			return
		}
		if time.Now().After(session.ExpireAt) {
			// Lazy cleanup; the rejection stands even if the delete fails.
			if err := sessions.EndSession(c.Request.Context(), session.ID); err != nil {
				logger.Warn("auth guard: expired session cleanup failed",
					zap.String("session_id", session.ID), zap.Error(err))
			}
			reject(c, "session_expired", apperr.Auth("session expired"))
			return
		}

		// Touch last_active_at off the request path; a failed touch never
		// fails the request.
		go func(sessionID string) {
			ctx, cancel := context.WithTimeout(context.Background(), lastActiveTimeout)
			defer cancel()
			if err := sessions.UpdateLastActive(ctx, sessionID, time.Now().UTC()); err != nil {
				logger.Debug("auth guard: last-active update failed",
					zap.String("session_id", sessionID), zap.Error(err))
			}
		}(session.ID)

		SetIdentity(c, Identity{
			UserID:    claims.UserID,
			Email:     claims.Email,
			Role:      userdomain.Role(claims.Role),
			SessionID: claims.SessionID,
		})
		c.Next()
	}
}

func reject(c *gin.Context, reason string, err error) {
	metrics.GuardRejections.WithLabelValues(reason).Inc()
	abort(c, err)
}
