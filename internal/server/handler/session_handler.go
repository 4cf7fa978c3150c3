package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/FormaKit/Backend/internal/apperr"
	"github.com/FormaKit/Backend/internal/server/middleware"
	"github.com/FormaKit/Backend/internal/server/respond"
	sessiondomain "github.com/FormaKit/Backend/internal/session/domain"
	sessionrepo "github.com/FormaKit/Backend/internal/session/repository"
)

// SessionHandler serves the guarded session-management endpoints.
type SessionHandler struct {
	logger   *zap.Logger
	sessions sessionrepo.Repository
}

// NewSessionHandler returns a SessionHandler.
func NewSessionHandler(logger *zap.Logger, sessions sessionrepo.Repository) *SessionHandler {
	return &SessionHandler{logger: logger.Named("session_handler"), sessions: sessions}
}

// List handles GET /auth/sessions: the caller's sessions, most recently
// active first.
func (h *SessionHandler) List(c *gin.Context) {
	id, ok := middleware.GetIdentity(c)
	if !ok {
		fail(c, apperr.Auth("authentication required"))
		return
	}
	list, err := h.sessions.ListByUser(c.Request.Context(), id.UserID)
	if err != nil {
		fail(c, err)
		return
	}
	out := make([]sessiondomain.Public, len(list))
	for i, s := range list {
		out[i] = s.Public()
	}
	respond.OKMeta(c, http.StatusOK, gin.H{"sessions": out}, gin.H{"total": len(out)})
}

type logoutRequest struct {
	SessionID string `json:"session_id"`
}

// Logout handles POST /auth/logout: ends one session of the caller.
func (h *SessionHandler) Logout(c *gin.Context) {
	id, ok := middleware.GetIdentity(c)
	if !ok {
		fail(c, apperr.Auth("authentication required"))
		return
	}
	var req logoutRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.SessionID == "" {
		fail(c, apperr.Validation("session_id is required"))
		return
	}
	session, err := h.sessions.GetByID(c.Request.Context(), req.SessionID)
	if err != nil {
		fail(c, err)
		return
	}
	if session != nil && session.UserID != id.UserID {
		fail(c, apperr.Permission("cannot end another user's session"))
		return
	}
	if err := h.sessions.EndSession(c.Request.Context(), req.SessionID); err != nil {
		fail(c, err)
		return
	}
	h.logger.Info("session ended",
		zap.String("user_id", id.UserID), zap.String("session_id", req.SessionID))
	respond.NoContent(c)
}

// LogoutAll handles POST /auth/logout-all: ends every session of the caller.
func (h *SessionHandler) LogoutAll(c *gin.Context) {
	id, ok := middleware.GetIdentity(c)
	if !ok {
		fail(c, apperr.Auth("authentication required"))
		return
	}
	n, err := h.sessions.EndAllSessions(c.Request.Context(), id.UserID)
	if err != nil {
		fail(c, err)
		return
	}
	h.logger.Info("all sessions ended",
		zap.String("user_id", id.UserID), zap.Int64("count", n))
	respond.NoContent(c)
}

type logoutOthersRequest struct {
	CurrentSessionID string `json:"current_session_id"`
}

// LogoutOthers handles POST /auth/logout-others: ends every session of the
// caller except the one named.
func (h *SessionHandler) LogoutOthers(c *gin.Context) {
	id, ok := middleware.GetIdentity(c)
	if !ok {
		fail(c, apperr.Auth("authentication required"))
		return
	}
	var req logoutOthersRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.CurrentSessionID == "" {
		fail(c, apperr.Validation("current_session_id is required"))
		return
	}
	n, err := h.sessions.EndOtherSessions(c.Request.Context(), id.UserID, req.CurrentSessionID)
	if err != nil {
		fail(c, err)
		return
	}
	h.logger.Info("other sessions ended",
		zap.String("user_id", id.UserID), zap.Int64("count", n))
	respond.NoContent(c)
}
