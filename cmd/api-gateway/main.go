package main

import (
	"context"
	"fmt"
	"log"
	"net/http/pprof"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/acme/timetable-scheduler/api/swagger"
	internalhandler "github.com/acme/timetable-scheduler/internal/handler"
	internalmiddleware "github.com/acme/timetable-scheduler/internal/middleware"
	"github.com/acme/timetable-scheduler/internal/repository"
	"github.com/acme/timetable-scheduler/internal/scheduler"
	"github.com/acme/timetable-scheduler/internal/service"
	"github.com/acme/timetable-scheduler/pkg/cache"
	"github.com/acme/timetable-scheduler/pkg/config"
	"github.com/acme/timetable-scheduler/pkg/database"
	"github.com/acme/timetable-scheduler/pkg/export"
	"github.com/acme/timetable-scheduler/pkg/jobs"
	"github.com/acme/timetable-scheduler/pkg/logger"
	corsmiddleware "github.com/acme/timetable-scheduler/pkg/middleware/cors"
	reqidmiddleware "github.com/acme/timetable-scheduler/pkg/middleware/requestid"
	"github.com/acme/timetable-scheduler/pkg/storage"
)

// @title Timetable Generator API
// @version 0.1.0
// @description Constraint-based weekly timetable generator for academic departments
// @BasePath /
// @schemes http

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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	metricsSvc := service.NewMetricsService()
	metricsHandler := internalhandler.NewMetricsHandler(metricsSvc)

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to initialise database", "error", err)
	}
	defer db.Close()

	var snapshotCache *repository.CacheRepository
	if client, err := cache.NewRedis(cfg.Redis); err != nil {
		logr.Sugar().Warnw("snapshot cache disabled, falling back to direct reads", "error", err)
	} else {
		defer client.Close() //nolint:errcheck
		snapshotCache = repository.NewCacheRepository(client, logr)
	}

	departmentRepo := repository.NewDepartmentRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	teacherSubjectRepo := repository.NewTeacherSubjectRepository(db)
	semesterScheduleRepo := repository.NewSemesterScheduleRepository(db)
	semesterSlotRepo := repository.NewSemesterScheduleSlotRepository(db)
	timetableStore := repository.NewTimetableStore(db, semesterScheduleRepo, semesterSlotRepo)

	snapshotRepo := repository.NewSnapshotRepository(departmentRepo, subjectRepo, teacherRepo, roomRepo, teacherSubjectRepo)

	var schedulerRepo scheduler.Repository
	if snapshotCache != nil {
		cacheSvc := service.NewCacheService(snapshotCache, metricsSvc, cfg.Scheduler.SnapshotCacheTTL, logr, true)
		schedulerRepo = repository.NewCachedSnapshotRepository(snapshotRepo, cacheSvc, cfg.Scheduler.SnapshotCacheTTL)
	} else {
		schedulerRepo = snapshotRepo
	}

	generatorSvc := service.NewScheduleGeneratorService(
		schedulerRepo,
		timetableStore,
		nil,
		semesterScheduleRepo,
		semesterSlotRepo,
		nil,
		logr,
	)
	schedulerHandler := internalhandler.NewScheduleGeneratorHandler(generatorSvc)

	queueCtx, cancelQueue := context.WithCancel(context.Background())
	var asyncGenerator *service.AsyncScheduleGenerator
	generateQueue := jobs.NewQueue("timetable-generate", func(ctx context.Context, job jobs.Job) error {
		return asyncGenerator.Handle(ctx, job)
	}, jobs.QueueConfig{
		Workers:    cfg.Scheduler.QueueWorkers,
		BufferSize: cfg.Scheduler.QueueBufferSize,
		MaxRetries: cfg.Scheduler.QueueMaxRetries,
		RetryDelay: cfg.Scheduler.QueueRetryDelay,
		Logger:     logr,
	})
	asyncGenerator = service.NewAsyncScheduleGenerator(generatorSvc, generateQueue, logr)
	generateQueue.Start(queueCtx)
	defer func() {
		cancelQueue()
		generateQueue.Stop()
	}()
	asyncHandler := internalhandler.NewScheduleGeneratorAsyncHandler(asyncGenerator)

	fileStore, err := storage.NewLocalStorage(cfg.Export.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init export storage", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Export.SignedURLSecret, cfg.Export.SignedURLTTL)
	exportSvc := service.NewExportService(
		fileStore,
		signer,
		service.ExportConfig{APIPrefix: cfg.APIPrefix, ResultTTL: cfg.Export.SignedURLTTL},
		logr,
		export.NewCSVExporter(),
		export.NewPDFExporter(),
	)
	timetableExportSvc := service.NewTimetableExportService(semesterScheduleRepo, semesterSlotRepo, schedulerRepo, exportSvc)
	exportHandler := internalhandler.NewTimetableExportHandler(timetableExportSvc, exportSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
		registerPprof(r)
	}

	api := r.Group(cfg.APIPrefix)

	api.POST("/timetables/generate", schedulerHandler.Generate)

	schedulesGroup := api.Group("/semester-schedules")
	schedulesGroup.POST("/generate-async", asyncHandler.GenerateAsync)
	schedulesGroup.GET("", schedulerHandler.List)
	schedulesGroup.GET("/:id/slots", schedulerHandler.Slots)
	schedulesGroup.DELETE("/:id", schedulerHandler.Delete)
	schedulesGroup.POST("/:id/export", exportHandler.Export)

	api.GET("/timetables/export/:token", exportHandler.Download)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

func registerPprof(r *gin.Engine) {
	group := r.Group("/debug/pprof")
	group.GET("/", gin.WrapF(pprof.Index))
	group.GET("/cmdline", gin.WrapF(pprof.Cmdline))
	group.GET("/profile", gin.WrapF(pprof.Profile))
	group.POST("/symbol", gin.WrapF(pprof.Symbol))
	group.GET("/symbol", gin.WrapF(pprof.Symbol))
	group.GET("/trace", gin.WrapF(pprof.Trace))
	group.GET("/allocs", gin.WrapH(pprof.Handler("allocs")))
	group.GET("/block", gin.WrapH(pprof.Handler("block")))
	group.GET("/goroutine", gin.WrapH(pprof.Handler("goroutine")))
	group.GET("/heap", gin.WrapH(pprof.Handler("heap")))
	group.GET("/mutex", gin.WrapH(pprof.Handler("mutex")))
	group.GET("/threadcreate", gin.WrapH(pprof.Handler("threadcreate")))
}
