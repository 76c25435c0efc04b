package routes

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/pcavaco/gatehouse/internal/app/domain/admin"
	"github.com/pcavaco/gatehouse/internal/app/domain/auth"
	"github.com/pcavaco/gatehouse/internal/app/domain/home"
	"github.com/pcavaco/gatehouse/internal/app/middleware"
	"github.com/pcavaco/gatehouse/internal/pkg/config"
)

// AppHandlers groups the request handlers wired into the router.
type AppHandlers struct {
	Home  *home.HomeHandlers
	Auth  *auth.AuthHandlers
	Admin *admin.AdminHandlers
}

// Setup builds repositories, services and handlers on top of the shared pool
// and registers every route. The pool and config are injected; nothing here
// is package-global state.
func Setup(r *gin.Engine, dbPool *pgxpool.Pool, cfg *config.Config, log *zap.Logger) {
	slogLog := slog.Default()

	authRepo := auth.NewPostgresAuthRepo(dbPool, slogLog)
	sessionRepo := auth.NewPostgresSessionRepo(dbPool, slogLog)
	authService := auth.NewAuthService(authRepo, sessionRepo, cfg, slogLog)

	adminRepo := admin.NewPostgresAdminRepo(dbPool, slogLog)
	adminService := admin.NewAdminService(adminRepo, slogLog)

	handlers := &AppHandlers{
		Home:  home.NewHomeHandlers(slogLog),
		Auth:  auth.NewAuthHandlers(authService, cfg, slogLog),
		Admin: admin.NewAdminHandlers(adminService, slogLog),
	}

	setupRouter(r, handlers, authService, dbPool, cfg)
}

func setupRouter(r *gin.Engine, h *AppHandlers, sessions middleware.SessionReader, dbPool *pgxpool.Pool, cfg *config.Config) {
	// Every request resolves its session cookie once; gates below decide
	// what an anonymous request may reach.
	r.Use(middleware.SessionMiddleware(sessions, cfg.Session.CookieName))

	r.GET("/", h.Home.ShowHomePage)
	r.GET("/signup", h.Auth.ShowSignupPage)
	r.POST("/signupSubmit", h.Auth.SignupSubmit)
	r.GET("/login", h.Auth.ShowLoginPage)
	r.POST("/loginSubmit", h.Auth.LoginSubmit)
	r.GET("/logout", h.Auth.Logout)

	members := r.Group("/members")
	members.Use(middleware.RequireSession("/"))
	{
		members.GET("", h.Home.ShowMembersPage)
	}

	adminGroup := r.Group("/admin")
	adminGroup.Use(middleware.RequireAdmin())
	{
		adminGroup.GET("", h.Admin.ShowAdminPage)
		adminGroup.POST("/promote", h.Admin.Promote)
		adminGroup.POST("/demote", h.Admin.Demote)
	}

	r.GET("/health", func(c *gin.Context) {
		if err := dbPool.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "down"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.NoRoute(h.Home.NotFoundHandler)
}
