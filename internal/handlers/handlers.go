package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"citypulse/api/internal/config"
	"citypulse/api/internal/middleware"
	"citypulse/api/internal/models"
	"citypulse/api/internal/repository"
	"citypulse/api/internal/service"
	"citypulse/api/internal/storage"
)

type HandlerSet struct {
	log    zerolog.Logger
	cfg    *config.AppConfig
	auth   *service.AuthService
	issues *service.IssueService
	users  middleware.UserLoader
	db     *pgxpool.Pool
	cache  *redis.Client
}

func NewHandlerSet(log zerolog.Logger, db *pgxpool.Pool, cache *redis.Client, store *storage.ObjectStore, cfg *config.AppConfig) HandlerSet {
	userRepo := repository.NewUserRepository(db)
	issueRepo := repository.NewIssueRepository(db)
	auth := service.NewAuthService(userRepo, store, cfg, log)
	issues := service.NewIssueService(issueRepo, store, cfg, log)

	return HandlerSet{
		log:    log,
		cfg:    cfg,
		auth:   auth,
		issues: issues,
		users:  userRepo,
		db:     db,
		cache:  cache,
	}
}

func (h HandlerSet) Register(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	v1 := router.Group("/v1")

	limited := middleware.RateLimit(h.cfg.RateLimit, h.cache)

	auth := v1.Group("/auth")
	auth.POST("/register", h.RegisterUser)
	auth.POST("/login", limited, h.Login)
	auth.POST("/refresh", limited, h.Refresh)

	protected := v1.Group("/auth")
	protected.Use(middleware.Auth(h.cfg, h.users))
	protected.GET("/me", h.Me)
	protected.POST("/logout", h.Logout)

	issues := v1.Group("/issues")
	issues.Use(middleware.Auth(h.cfg, h.users))
	issues.POST("", h.CreateIssue)
	issues.GET("", h.ListIssues)
	issues.GET("/:id", h.GetIssue)
	issues.PATCH("/:id/status",
		middleware.RequireRoles(models.UserRoleOperator, models.UserRoleAdmin),
		h.UpdateIssueStatus,
	)
}
