package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/exam-allocation-api/api/swagger"
	"github.com/noah-isme/exam-allocation-api/internal/handler"
	"github.com/noah-isme/exam-allocation-api/internal/middleware"
	"github.com/noah-isme/exam-allocation-api/internal/models"
	"github.com/noah-isme/exam-allocation-api/internal/repository"
	"github.com/noah-isme/exam-allocation-api/internal/service"
	"github.com/noah-isme/exam-allocation-api/pkg/cache"
	"github.com/noah-isme/exam-allocation-api/pkg/config"
	"github.com/noah-isme/exam-allocation-api/pkg/database"
	"github.com/noah-isme/exam-allocation-api/pkg/jobs"
	"github.com/noah-isme/exam-allocation-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/exam-allocation-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/exam-allocation-api/pkg/middleware/requestid"
)

// @title Exam Allocation API
// @version 1.0.0
// @description Exam timetable generation, hall seating and invigilator assignment.
// @BasePath /api/v1
// @schemes http
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close()
	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			logr.Fatal("failed to migrate database", zap.Error(err))
		}
	}

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, proposals stay in memory", zap.Error(err))
	}

	app := buildApp(cfg, db, redisClient, logr)
	app.queue.Start(ctx)
	defer app.queue.Stop()
	defer app.cache.Close() //nolint:errcheck

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           app.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	logr.Info("server stopped")
}

type application struct {
	router *gin.Engine
	queue  *jobs.Queue
	cache  *repository.CacheRepository
}

func buildApp(cfg *config.Config, db *sqlx.DB, redisClient *redis.Client, logr *zap.Logger) *application {
	validate := validator.New()
	metrics := service.NewMetricsService()

	subjectRepo := repository.NewExamSubjectRepository(db)
	studentRepo := repository.NewExamStudentRepository(db)
	hallRepo := repository.NewHallRepository(db)
	invigilatorRepo := repository.NewInvigilatorRepository(db)
	cycleRepo := repository.NewExamCycleRepository(db)
	examRepo := repository.NewScheduledExamRepository(db)
	seatingRepo := repository.NewSeatingRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, "exam-allocation:", logr)

	var proposals *repository.CacheRepository
	if cfg.Scheduler.CacheProposals && redisClient != nil {
		proposals = cacheRepo
	}

	pools := service.NewSubjectPoolService(subjectRepo, logr)
	scheduleSvc := service.NewExamScheduleService(
		pools,
		service.NewExamScheduler(logr),
		cycleRepo,
		examRepo,
		db,
		proposalCacheOrNil(proposals),
		validate,
		metrics,
		logr,
		service.ExamScheduleConfig{
			ProposalTTL: cfg.Scheduler.ProposalTTL,
			WeekendMode: service.ParseWeekendMode(cfg.Scheduler.WeekendMode),
		},
	)

	seatingSvc := service.NewSeatingService(
		cycleRepo,
		examRepo,
		studentRepo,
		hallRepo,
		invigilatorRepo,
		seatingRepo,
		db,
		validate,
		metrics,
		logr,
		service.SeatingConfig{Seed: cfg.Seating.Seed, Async: cfg.Seating.Async},
	)
	worker := service.NewSeatingWorker(seatingSvc, logr)
	queue := jobs.NewQueue("seating", worker.Handle, jobs.QueueConfig{
		Workers:    cfg.Seating.WorkerConcurrency,
		MaxRetries: cfg.Seating.WorkerRetries,
		RetryDelay: cfg.Seating.RetryDelay,
		Logger:     logr,
	})
	seatingSvc.UseDispatcher(queue)

	checks := map[string]handler.Pinger{"postgres": db}
	if redisClient != nil {
		checks["redis"] = cache.Checker{Client: redisClient}
	}

	router := newRouter(cfg, logr, metrics, routes{
		tokens:   service.NewTokenService(cfg.JWT.Secret),
		metrics:  handler.NewMetricsHandler(metrics, checks),
		schedule: handler.NewExamScheduleHandler(scheduleSvc),
		seating:  handler.NewSeatingHandler(seatingSvc),
	})
	return &application{router: router, queue: queue, cache: cacheRepo}
}

// proposalCacheOrNil keeps a nil *CacheRepository from becoming a non-nil interface.
func proposalCacheOrNil(repo *repository.CacheRepository) interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
} {
	if repo == nil {
		return nil
	}
	return repo
}

type routes struct {
	tokens   middleware.TokenValidator
	metrics  *handler.MetricsHandler
	schedule *handler.ExamScheduleHandler
	seating  *handler.SeatingHandler
}

func newRouter(cfg *config.Config, logr *zap.Logger, metrics *service.MetricsService, h routes) *gin.Engine {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics, "/metrics"))

	r.GET("/health", h.metrics.Health)
	r.GET("/ready", h.metrics.Ready)
	r.GET("/metrics", h.metrics.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix, middleware.JWT(h.tokens))
	readers := middleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin, models.RoleTeacher)
	writers := middleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin)

	if cfg.Scheduler.Enabled {
		schedules := api.Group("/exam-schedules", writers)
		schedules.POST("/generate", h.schedule.Generate)
		schedules.POST("/override", h.schedule.Override)
		schedules.POST("/save", h.schedule.Save)
	}

	cycles := api.Group("/exam-cycles")
	cycles.GET("", readers, h.schedule.ListCycles)
	cycles.GET("/:id/exams", readers, h.schedule.Exams)
	cycles.GET("/:id/violations", readers, h.schedule.Violations)
	cycles.POST("/:id/finalize", writers, h.schedule.Finalize)
	cycles.POST("/:id/seating", writers, h.seating.AllocateCycle)
	cycles.DELETE("/:id", writers, h.schedule.Delete)

	api.POST("/seating/preview", writers, h.seating.Preview)
	api.GET("/seating", readers, h.seating.Slot)

	return r
}
