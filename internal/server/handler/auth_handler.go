package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/FormaKit/Backend/internal/apperr"
	"github.com/FormaKit/Backend/internal/auth"
	"github.com/FormaKit/Backend/internal/metrics"
	"github.com/FormaKit/Backend/internal/ratelimit"
	"github.com/FormaKit/Backend/internal/server/middleware"
	"github.com/FormaKit/Backend/internal/server/respond"
)

// AuthHandler serves the public authentication endpoints: register and login.
type AuthHandler struct {
	logger      *zap.Logger
	auth        *auth.Service
	limiter     *ratelimit.Limiter // nil disables login throttling
	loginLimit  int
	loginWindow time.Duration
}

// NewAuthHandler returns an AuthHandler. limiter may be nil.
func NewAuthHandler(logger *zap.Logger, svc *auth.Service, limiter *ratelimit.Limiter, loginLimit int, loginWindow time.Duration) *AuthHandler {
	return &AuthHandler{
		logger:      logger.Named("auth_handler"),
		auth:        svc,
		limiter:     limiter,
		loginLimit:  loginLimit,
		loginWindow: loginWindow,
	}
}

type registerRequest struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	Username     string `json:"username"`
	CompanyID    string `json:"company_id"`
	DepartmentID string `json:"department_id"`
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperr.Validation("Invalid request payload"))
		return
	}
	user, err := h.auth.Register(c.Request.Context(), auth.RegisterInput{
		Email:        req.Email,
		Password:     req.Password,
		Username:     req.Username,
		CompanyID:    req.CompanyID,
		DepartmentID: req.DepartmentID,
	})
	if err != nil {
		fail(c, err)
		return
	}
	metrics.Registrations.Inc()
	h.logger.Info("user registered", zap.String("user_id", user.ID))
	respond.OK(c, http.StatusCreated, gin.H{"user": user.Public()})
}

type loginRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	DeviceName string `json:"device_name"`
	Location   string `json:"location"`
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	if !h.limiter.Allow(c.Request.Context(), "login:"+c.ClientIP(), h.loginLimit, h.loginWindow) {
		fail(c, &apperr.Error{
			Message: "too many login attempts, try again later",
			Code:    "RATE_LIMITED",
			Status:  http.StatusTooManyRequests,
		})
		return
	}
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperr.Validation("Invalid request payload"))
		return
	}
	result, err := h.auth.Login(c.Request.Context(), req.Email, req.Password, auth.SessionMetadata{
		DeviceName: req.DeviceName,
		UserAgent:  c.Request.UserAgent(),
		IPAddress:  c.ClientIP(),
		Location:   req.Location,
	})
	if err != nil {
		metrics.Logins.WithLabelValues("failure").Inc()
		fail(c, err)
		return
	}
	metrics.Logins.WithLabelValues("success").Inc()
	h.logger.Info("user logged in",
		zap.String("user_id", result.User.ID),
		zap.String("session_id", result.Session.ID),
	)
	respond.OK(c, http.StatusOK, gin.H{
		"user": gin.H{
			"id":    result.User.ID,
			"email": result.User.Email,
			"role":  result.User.Role,
		},
		"session": gin.H{
			"id":            result.Session.ID,
			"expire_at":     result.Session.ExpireAt,
			"session_token": result.Token,
		},
	})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// ChangePassword handles POST /auth/change-password (guarded).
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	id, ok := middleware.GetIdentity(c)
	if !ok {
		fail(c, apperr.Auth("authentication required"))
		return
	}
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperr.Validation("Invalid request payload"))
		return
	}
	if err := h.auth.ChangePassword(c.Request.Context(), id.UserID, req.CurrentPassword, req.NewPassword); err != nil {
		fail(c, err)
		return
	}
	h.logger.Info("password changed", zap.String("user_id", id.UserID))
	respond.NoContent(c)
}

// Me handles GET /auth/me (guarded).
func (h *AuthHandler) Me(c *gin.Context) {
	id, ok := middleware.GetIdentity(c)
	if !ok {
		fail(c, apperr.Auth("authentication required"))
		return
	}
	respond.OK(c, http.StatusOK, gin.H{
		"id":         id.UserID,
		"email":      id.Email,
		"role":       id.Role,
		"session_id": id.SessionID,
	})
}

// fail records err for the error boundary and stops the handler.
func fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
