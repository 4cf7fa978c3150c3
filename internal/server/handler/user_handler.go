package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/FormaKit/Backend/internal/server/respond"
	userdomain "github.com/FormaKit/Backend/internal/user/domain"
	userrepo "github.com/FormaKit/Backend/internal/user/repository"
)

const defaultPageSize = 50

// UserHandler serves the admin user-management endpoints.
type UserHandler struct {
	logger *zap.Logger
	users  userrepo.Repository
}

// NewUserHandler returns a UserHandler.
func NewUserHandler(logger *zap.Logger, users userrepo.Repository) *UserHandler {
	return &UserHandler{logger: logger.Named("user_handler"), users: users}
}

// List handles GET /users (admin only): users newest first with limit/offset
// paging.
func (h *UserHandler) List(c *gin.Context) {
	limit := intQuery(c, "limit", defaultPageSize)
	offset := intQuery(c, "offset", 0)
	list, err := h.users.List(c.Request.Context(), limit, offset)
	if err != nil {
		fail(c, err)
		return
	}
	total, err := h.users.Count(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	out := make([]userdomain.Public, len(list))
	for i, u := range list {
		out[i] = u.Public()
	}
	respond.OKMeta(c, http.StatusOK, gin.H{"users": out}, gin.H{
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

func intQuery(c *gin.Context, name string, fallback int) int {
	v := c.Query(name)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
