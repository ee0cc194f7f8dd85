package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/isehome/unicorn-sub003/internal/config"
	"github.com/isehome/unicorn-sub003/internal/middleware"
	"github.com/isehome/unicorn-sub003/internal/ops/entity"
	"github.com/isehome/unicorn-sub003/internal/ops/handler"
	"github.com/isehome/unicorn-sub003/internal/ops/repository"
	"github.com/isehome/unicorn-sub003/internal/ops/service"
	"github.com/isehome/unicorn-sub003/internal/ops/storage"
	"github.com/joho/godotenv"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// 加载 .env 文件
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化日志
	zapLogger, err := initLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting unicorn ops service",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
	)

	// 初始化数据库
	db, err := initDatabase(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}

	if err := migrate(db); err != nil {
		zapLogger.Warn("Database migration warning", zap.Error(err))
	}

	// 初始化Redis
	rdb := initRedis(cfg.Redis)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		zapLogger.Warn("Redis unavailable, progress cache disabled", zap.Error(err))
	}

	// 初始化MinIO
	var photoStore *storage.PhotoStore
	if cfg.MinIO.Endpoint != "" {
		minioClient, err := minio.New(cfg.MinIO.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.MinIO.AccessKey, cfg.MinIO.SecretKey, ""),
			Secure: cfg.MinIO.UseSSL,
		})
		if err != nil {
			zapLogger.Fatal("Failed to init minio client", zap.Error(err))
		}
		photoStore = storage.NewPhotoStore(minioClient, cfg.MinIO.Bucket)
	}

	// 仓库与服务
	repos := repository.NewRepositories(db)
	statusSvc := service.NewStatusService(repos)
	invalidator := service.NewRedisInvalidator(rdb, zapLogger)
	mutationSvc := service.NewMutationService(repos, statusSvc, invalidator, zapLogger)
	progressSvc := service.NewProgressService(statusSvc, rdb, zapLogger)
	exportSvc := service.NewExportService(statusSvc)
	handlers := handler.NewHandlers(statusSvc, mutationSvc, progressSvc, exportSvc, repos, photoStore)

	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 创建路由
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(zapLogger))
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())

	registerRoutes(router, handlers, cfg)

	// 创建HTTP服务器
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// 启动服务器
	go func() {
		zapLogger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exited")
}

func initLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config

	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	switch cfg.Level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}

	return zapCfg.Build()
}

func initDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	db, err := gorm.Open(postgres.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	return db, nil
}

func initRedis(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&entity.Project{},
		&entity.Room{},
		&entity.EquipmentItem{},
		&entity.PurchaseOrder{},
		&entity.POLineItem{},
		&entity.WireDrop{},
		&entity.WireDropStage{},
		&entity.EquipmentWireDropLink{},
		&entity.WarehouseStock{},
		&entity.InventoryReceipt{},
		&entity.ActivityLog{},
		&entity.ReceivingPhoto{},
	); err != nil {
		return err
	}

	// AutoMigrate不建复合部分索引，手动补
	db.Exec("CREATE INDEX IF NOT EXISTS idx_stages_drop_type ON wire_drop_stages(wire_drop_id, stage_type)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_line_items_equipment ON po_line_items(equipment_item_id)")

	return nil
}

func registerRoutes(r *gin.Engine, h *handler.Handlers, cfg *config.Config) {
	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    Version,
			"build_time": BuildTime,
		})
	})

	// API v1
	v1 := r.Group("/api/v1")
	v1.Use(middleware.JWTAuth(cfg.JWT.Secret))
	{
		// 设备状态（唯一读取入口）
		v1.GET("/equipment/:id/status", h.Equipment.GetStatus)
		v1.GET("/equipment/:id/activity", h.Equipment.ListActivity)
		v1.GET("/equipment/:id/photos", h.Equipment.ListPhotos)
		v1.POST("/equipment/:id/photos", h.Equipment.UploadPhoto)

		// 变更操作
		v1.PUT("/line-items/:id/receive", h.Equipment.ReceiveLineItem)
		v1.POST("/equipment/:id/receive-inventory", h.Equipment.ReceiveInventory)
		v1.PUT("/equipment/:id/delivered", h.Equipment.SetDelivered)
		v1.PUT("/equipment/:id/installed", h.Equipment.SetInstalled)
		v1.PUT("/equipment/:id/room", h.Equipment.ReassignRoom)

		// 项目级读取
		v1.GET("/projects/:id/equipment", h.Project.ListEquipment)
		v1.GET("/projects/:id/progress", h.Project.GetProgress)
		v1.GET("/projects/:id/purchase-orders", h.Project.ListPurchaseOrders)
		v1.GET("/projects/:id/wire-drops", h.Project.ListWireDrops)
		v1.GET("/projects/:id/rooms", h.Project.ListRooms)

		// 导出（响应体大，单独开gzip）
		export := v1.Group("")
		export.Use(gzip.Gzip(gzip.DefaultCompression))
		export.GET("/projects/:id/equipment/export", h.Project.ExportEquipment)
	}
}
