// Package server wires the HTTP surface: middleware chain, guards, and
// routes.
package server

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/FormaKit/Backend/internal/auth"
	"github.com/FormaKit/Backend/internal/ratelimit"
	"github.com/FormaKit/Backend/internal/security"
	"github.com/FormaKit/Backend/internal/server/handler"
	"github.com/FormaKit/Backend/internal/server/middleware"
	"github.com/FormaKit/Backend/internal/server/respond"
	sessionrepo "github.com/FormaKit/Backend/internal/session/repository"
	userdomain "github.com/FormaKit/Backend/internal/user/domain"
	userrepo "github.com/FormaKit/Backend/internal/user/repository"
)

// Deps are the constructed dependencies the router needs. Everything is
// built once at startup and passed down; there are no process-wide
// singletons besides the metrics registry.
type Deps struct {
	Logger      *zap.Logger
	Auth        *auth.Service
	Sessions    sessionrepo.Repository
	Users       userrepo.Repository
	Tokens      *security.TokenCodec
	Limiter     *ratelimit.Limiter // nil disables login throttling
	DB          *sql.DB            // nil skips the readiness ping
	Env         string
	LoginLimit  int
	LoginWindow time.Duration
}

// NewRouter builds the gin engine: recovery → request log → error boundary,
// then public auth routes, guarded session routes, and the admin surface.
func NewRouter(d Deps) *gin.Engine {
	if d.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(
		middleware.Recovery(d.Logger),
		middleware.RequestLogger(d.Logger),
		middleware.ErrorBoundary(d.Logger),
	)

	r.GET("/healthz", healthz(d.DB))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authHandler := handler.NewAuthHandler(d.Logger, d.Auth, d.Limiter, d.LoginLimit, d.LoginWindow)
	sessionHandler := handler.NewSessionHandler(d.Logger, d.Sessions)
	userHandler := handler.NewUserHandler(d.Logger, d.Users)

	authRoutes := r.Group("/auth")
	authRoutes.POST("/register", authHandler.Register)
	authRoutes.POST("/login", authHandler.Login)

	guarded := authRoutes.Group("", middleware.AuthGuard(d.Tokens, d.Sessions, d.Logger))
	guarded.GET("/me", authHandler.Me)
	guarded.GET("/sessions", sessionHandler.List)
	guarded.POST("/logout", sessionHandler.Logout)
	guarded.POST("/logout-all", sessionHandler.LogoutAll)
	guarded.POST("/logout-others", sessionHandler.LogoutOthers)
	guarded.POST("/change-password", authHandler.ChangePassword)

	admin := r.Group("/users",
		middleware.AuthGuard(d.Tokens, d.Sessions, d.Logger),
		middleware.RoleGuard(userdomain.RoleAdmin),
	)
	admin.GET("", userHandler.List)

	return r
}

func healthz(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db != nil {
			if err := db.PingContext(c.Request.Context()); err != nil {
				respond.Error(c, http.StatusServiceUnavailable, respond.ErrorBody{
					Message: "database unreachable",
					Code:    "UNHEALTHY",
				})
				return
			}
		}
		respond.OK(c, http.StatusOK, gin.H{"status": "ok"})
	}
}
