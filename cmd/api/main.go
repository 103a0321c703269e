package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	_ "github.com/escalando-ong/cms-api/api/swagger"
	"github.com/escalando-ong/cms-api/internal/mail"
	"github.com/escalando-ong/cms-api/internal/repository"
	"github.com/escalando-ong/cms-api/internal/router"
	"github.com/escalando-ong/cms-api/internal/service"
	"github.com/escalando-ong/cms-api/internal/translate"
	"github.com/escalando-ong/cms-api/pkg/cache"
	"github.com/escalando-ong/cms-api/pkg/config"
	"github.com/escalando-ong/cms-api/pkg/database"
	"github.com/escalando-ong/cms-api/pkg/logger"
)

// @title Escalando CMS API
// @version 1.0.0
// @description Bilingual content backend for escalando.org
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	metrics := service.NewMetricsService()
	validate := validator.New()

	var cacheRepo service.CacheRepository
	if cfg.Cache.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		} else {
			defer redisClient.Close()
			cacheRepo = repository.NewRedisCache(redisClient)
		}
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Cache.TTL, logr, cfg.Cache.Enabled && cacheRepo != nil)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mailer := mail.NewMailer(cfg.Mail, logr)
	mailer.Start(ctx)
	defer mailer.Stop()

	newsRepo := repository.NewNewsRepository(db)
	eventRepo := repository.NewEventRepository(db)
	testimonialRepo := repository.NewTestimonialRepository(db)
	userRepo := repository.NewUserRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	translator := translate.NewDeepLClient(cfg.DeepL.APIKey, cfg.DeepL.BaseURL)
	syncEngine := service.NewSyncEngine(translator)

	auditSvc := service.NewAuditService(auditRepo, logr)
	authSvc := service.NewAuthService(userRepo, mailer, auditSvc, cfg.JWT, validate, logr)
	newsSvc := service.NewNewsService(newsRepo, syncEngine, auditSvc, cacheSvc, metrics, validate, logr)
	eventSvc := service.NewEventService(eventRepo, syncEngine, auditSvc, cacheSvc, metrics, validate, logr)
	testimonialSvc := service.NewTestimonialService(testimonialRepo, auditSvc, validate, logr)
	userSvc := service.NewUserService(userRepo, auditSvc, validate, logr)

	engine := router.New(router.Dependencies{
		Config:       cfg,
		Logger:       logr,
		DB:           db,
		Metrics:      metrics,
		Auth:         authSvc,
		News:         newsSvc,
		Events:       eventSvc,
		Testimonials: testimonialSvc,
		Users:        userSvc,
		Audit:        auditSvc,
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down", zap.String("reason", "signal"))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
