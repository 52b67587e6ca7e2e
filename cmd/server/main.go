package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"gradcheck/backend/config"
	"gradcheck/backend/internal/api/handler"
	"gradcheck/backend/internal/api/router"
	"gradcheck/backend/internal/ocr"
	"gradcheck/backend/internal/repository"
	"gradcheck/backend/internal/service"
	"gradcheck/backend/internal/worker"
	"gradcheck/backend/pkg/database"
	"gradcheck/backend/pkg/jwt"
	applogger "gradcheck/backend/pkg/logger"
	"gradcheck/backend/pkg/redis"
)

// queuePollTimeout Redis 队列单次阻塞出队的等待时长
const queuePollTimeout = 5 * time.Second

func main() {
	// 0. .env（可选）
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "读取 .env 失败: %v\n", err)
	}

	// 1. 加载配置
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
		zap.Int("workers", cfg.Worker.Concurrency),
	)

	// 3. 连接数据库并迁移
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("获取底层 sql.DB 失败", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("数据库迁移失败", zap.Error(err))
	}

	// 4. 连接 Redis（可选：失败时降级为进程内队列，无黑名单与限流）
	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb, err = redis.NewClient(&cfg.Redis, logger)
		if err != nil {
			logger.Warn("Redis 连接失败，降级运行", zap.Error(err))
			rdb = nil
		}
	}

	var queue worker.Queue
	if rdb != nil {
		queue = worker.NewRedisQueue(rdb, cfg.Worker.QueueKey, queuePollTimeout)
	} else {
		queue = worker.NewMemoryQueue(cfg.Worker.QueueSize)
	}

	// 5. 依赖注入: Repository → Service → Handler
	jwtMgr := jwt.NewManager(&cfg.Auth)
	recognizer := ocr.NewTesseractRecognizer(ocr.TesseractConfig{
		Languages:      cfg.OCR.Languages,
		TessdataPrefix: cfg.OCR.TessdataPrefix,
	})
	repo := repository.NewRepository(db)
	svc := service.NewService(cfg, repo, jwtMgr, rdb, recognizer, queue, logger)
	h := handler.NewHandler(svc)

	// 6. 后台识别 worker
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	pool := worker.NewPool(queue, svc.Transcript.Process, cfg.Worker, logger)
	poolDone := make(chan error, 1)
	go func() { poolDone <- pool.Run(workerCtx) }()

	// 7. 启动 HTTP 服务器
	engine := router.Setup(cfg, h, jwtMgr, rdb, logger)
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  60 * time.Second, // 多页上传
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 8. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	// 停止 worker：进行中的任务因 ctx 取消被标记为 ERROR，可由用户重试
	stopWorkers()
	select {
	case err := <-poolDone:
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("worker 退出异常", zap.Error(err))
		}
	case <-ctx.Done():
		logger.Warn("等待 worker 退出超时")
	}

	if sqlDB != nil {
		sqlDB.Close()
	}
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("服务器已关闭")
}
