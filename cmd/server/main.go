package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"mailadmin/backend/internal/capability"
	"mailadmin/backend/internal/config"
	"mailadmin/backend/internal/health"
	"mailadmin/backend/internal/logger"
	"mailadmin/backend/internal/monitoring"
	"mailadmin/backend/internal/service"
	"mailadmin/backend/internal/storage"
	"mailadmin/backend/internal/storage/object"
	redisstore "mailadmin/backend/internal/storage/redis"
	sqlstore "mailadmin/backend/internal/storage/sql"
	httptransport "mailadmin/backend/internal/transport/http"
)

// main 启动投递引擎管理读取层的 HTTP 服务。
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	// 设置 Gin 模式（基于开发环境标志）
	if !cfg.Log.Development {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// 初始化日志系统
	log := logger.NewFromApp(cfg.Log.Level, cfg.Log.Development, cfg.Log.LogFile)
	defer log.Sync() //nolint:errcheck

	log.Info("starting mailadmin server",
		zap.String("log_level", cfg.Log.Level),
		zap.Bool("development", cfg.Log.Development),
		zap.String("database_type", cfg.Database.Type),
		zap.String("raw_store_backend", cfg.RawStore.Backend),
	)

	// 连接引擎数据库（只读访问）
	store, err := sqlstore.NewStore(
		cfg.Database.Type,
		cfg.Database.DSN,
		cfg.Database.MaxOpenConns,
		cfg.Database.MaxIdleConns,
		cfg.Database.ConnMaxLifetime,
		log,
	)
	if err != nil {
		panic(fmt.Sprintf("failed to connect to engine database: %v", err))
	}
	defer store.Close()

	// 根据配置选择原始报文分区后端
	var locator storage.RawBodyLocator = store
	if cfg.RawStore.Backend == "s3" {
		s3Locator, err := object.NewLocator(object.Config{
			Endpoint:  cfg.RawStore.Endpoint,
			Region:    cfg.RawStore.Region,
			Bucket:    cfg.RawStore.Bucket,
			AccessKey: cfg.RawStore.AccessKey,
			SecretKey: cfg.RawStore.SecretKey,
		}, log)
		if err != nil {
			panic(fmt.Sprintf("failed to initialize object storage locator: %v", err))
		}
		locator = s3Locator
		log.Info("using object storage for raw message partitions",
			zap.String("bucket", cfg.RawStore.Bucket),
		)
	} else {
		log.Info("using engine database for raw message partitions")
	}

	// 模式能力探测缓存（进程生命周期内有效，可手动刷新）
	capCache := capability.NewCache(store)

	// 初始化服务层
	messageService := service.NewMessageService(store, locator, log)
	statsService := service.NewStatsService(store, capCache, log)

	// Redis 统计快照缓存（可选）
	var statsCache *redisstore.Cache
	if cfg.Redis.Address != "" {
		statsCache, err = redisstore.NewCache(cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.TTL)
		if err != nil {
			log.Warn("failed to connect to redis, continuing without stats cache", zap.Error(err))
			statsCache = nil
		} else {
			statsService.SetCache(statsCache)
			defer statsCache.Close()
			log.Info("redis stats cache enabled",
				zap.String("address", cfg.Redis.Address),
				zap.Duration("ttl", cfg.Redis.TTL),
			)
		}
	}

	// 初始化监控系统
	// 注意：promauto 已经自动注册了指标
	metrics := monitoring.NewMetrics()

	// 初始化健康检查
	var redisPinger health.RedisPinger
	if statsCache != nil {
		redisPinger = statsCache
	}
	healthChecker := health.NewHealthChecker(store, redisPinger, log)

	// 创建 HTTP 服务器
	httpAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	router := httptransport.NewRouter(httptransport.RouterDependencies{
		Config:          cfg,
		MessageService:  messageService,
		StatsService:    statsService,
		CapabilityCache: capCache,
		Metrics:         metrics,
		HealthChecker:   healthChecker,
		Logger:          log,
	})

	httpServer := &http.Server{
		Addr:              httpAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// 信号处理
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(ctx)

	// HTTP 服务器 goroutine
	group.Go(func() error {
		log.Info("starting HTTP server", zap.String("address", httpAddr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", zap.Error(err))
			return err
		}
		return nil
	})

	// 优雅关闭 goroutine
	group.Go(func() error {
		<-groupCtx.Done()
		log.Info("shutdown signal received, stopping HTTP server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error("HTTP server shutdown error", zap.Error(err))
			return err
		}
		return nil
	})

	if err := group.Wait(); err != nil {
		log.Error("server exited with error", zap.Error(err))
	}
	log.Info("mailadmin server stopped")
}
