package app

import (
	"database/sql"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"github.com/sengwoong/lecture-server/internal/checkin"
	"github.com/sengwoong/lecture-server/internal/course"
	"github.com/sengwoong/lecture-server/internal/leave"
	"github.com/sengwoong/lecture-server/internal/messaging/kafka"
	"github.com/sengwoong/lecture-server/internal/middleware"
	"github.com/sengwoong/lecture-server/internal/rbac"
	"github.com/sengwoong/lecture-server/internal/record"
	"github.com/sengwoong/lecture-server/internal/schedule"
)

func registerModules(
	router *gin.Engine,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
) error {
	// --- Repositories ---
	courseRepo := course.NewRepository(gormDB)
	scheduleRepo := schedule.NewRepository(gormDB)
	recordRepo := record.NewRepository(gormDB)
	leaveRepo := leave.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)

	// --- RBAC Core ---
	rbacService, err := rbac.NewService()
	if err != nil {
		return err
	}

	// --- Services ---
	courseService := course.NewService(db, courseRepo)
	scheduleService := schedule.NewService(db, scheduleRepo, courseRepo)
	recordService := record.NewService(db, recordRepo, scheduleService)

	tokens := checkin.NewTokenManager(os.Getenv("JWT_SECRET"), checkin.TokenTTL)
	codes := checkin.NewCodeStore(rdb, checkin.TokenTTL)
	checkinService := checkin.NewService(
		db,
		recordRepo,
		courseRepo,
		scheduleService,
		tokens,
		codes,
		courseRepo,
		outboxRepo,
	)

	uploadDir := os.Getenv("UPLOAD_DIR")
	if uploadDir == "" {
		uploadDir = "uploads"
	}
	blobStore := leave.NewDiskBlobStore(uploadDir)
	leaveService := leave.NewService(db, leaveRepo, recordRepo, blobStore, outboxRepo)

	// --- Handlers ---
	courseHandler := course.NewHandler(courseService)
	scheduleHandler := schedule.NewHandler(scheduleService)
	recordHandler := record.NewHandler(recordService)
	checkinHandler := checkin.NewHandler(checkinService)
	leaveHandler := leave.NewHandler(leaveService)

	// --- Global middleware ---
	router.Use(middleware.RequestID())
	router.Use(middleware.ContextLogger(zap.L()))
	router.Use(middleware.HTTPMetrics())
	router.Use(middleware.RateLimitByIP(rate.Limit(20), 40))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	api.Use(middleware.RateLimitByUser(rate.Limit(10), 20))
	{
		course.RegisterRoutes(api, courseHandler, rbacService)
		schedule.RegisterRoutes(api, scheduleHandler, rbacService)
		record.RegisterRoutes(api, recordHandler, rbacService)
		checkin.RegisterRoutes(api, checkinHandler, rbacService, middleware.Idempotency(rdb))
		leave.RegisterRoutes(api, leaveHandler, rbacService)
	}

	return nil
}
