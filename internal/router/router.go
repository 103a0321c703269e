package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/escalando-ong/cms-api/internal/handler"
	"github.com/escalando-ong/cms-api/internal/middleware"
	"github.com/escalando-ong/cms-api/internal/service"
	"github.com/escalando-ong/cms-api/pkg/config"
	"github.com/escalando-ong/cms-api/pkg/logger"
	corsmiddleware "github.com/escalando-ong/cms-api/pkg/middleware/cors"
	reqidmiddleware "github.com/escalando-ong/cms-api/pkg/middleware/requestid"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// Dependencies carries everything the HTTP surface needs.
type Dependencies struct {
	Config  *config.Config
	Logger  *zap.Logger
	DB      *sqlx.DB
	Metrics *service.MetricsService

	Auth         *service.AuthService
	News         *service.NewsService
	Events       *service.EventService
	Testimonials *service.TestimonialService
	Users        *service.UserService
	Audit        *service.AuditService
}

// New builds the gin engine with all routes mounted. Reads are public;
// mutations require a valid token and the admin surfaces require the ADMIN
// role.
func New(deps Dependencies) *gin.Engine {
	if deps.Config.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(deps.Logger))
	r.Use(corsmiddleware.New(deps.Config.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(deps.Metrics))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if deps.DB != nil {
			if err := deps.DB.Ping(); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "database unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))

	if deps.Config.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	authHandler := handler.NewAuthHandler(deps.Auth)
	newsHandler := handler.NewNewsHandler(deps.News)
	eventHandler := handler.NewEventHandler(deps.Events)
	testimonialHandler := handler.NewTestimonialHandler(deps.Testimonials)
	userHandler := handler.NewUserHandler(deps.Users)
	auditHandler := handler.NewAuditHandler(deps.Audit)

	api := r.Group(deps.Config.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/forgot-password", authHandler.ForgotPassword)
	auth.POST("/reset-password", authHandler.ResetPassword)

	api.GET("/news", newsHandler.List)
	api.GET("/news/:id", newsHandler.Get)
	api.GET("/events", eventHandler.List)
	api.GET("/events/:id", eventHandler.Get)
	api.GET("/testimonials", testimonialHandler.List)
	api.GET("/testimonials/:id", testimonialHandler.Get)

	authed := api.Group("")
	authed.Use(middleware.Authenticate(deps.Auth))

	authed.POST("/news", newsHandler.Create)
	authed.PUT("/news/:id", newsHandler.Update)
	authed.DELETE("/news/:id", newsHandler.Delete)

	authed.POST("/events", eventHandler.Create)
	authed.PUT("/events/:id", eventHandler.Update)
	authed.DELETE("/events/:id", eventHandler.Delete)

	authed.POST("/testimonials", testimonialHandler.Create)
	authed.PUT("/testimonials/:id", testimonialHandler.Update)
	authed.DELETE("/testimonials/:id", testimonialHandler.Delete)

	admin := authed.Group("")
	admin.Use(middleware.RequireRoles("ADMIN"))

	admin.GET("/users", userHandler.List)
	admin.GET("/users/:id", userHandler.Get)
	admin.POST("/users", userHandler.Create)
	admin.PUT("/users/:id", userHandler.Update)
	admin.DELETE("/users/:id", userHandler.Delete)

	admin.GET("/audit", auditHandler.List)
	admin.GET("/audit/export", auditHandler.Export)

	return r
}
