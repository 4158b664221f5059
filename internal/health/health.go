package health

import (
	"context"
	"net/http"
	"time"

	"github.com/heptiolabs/healthcheck"
	"go.uber.org/zap"
)

// Pinger 可被健康检查探测的依赖。
type Pinger interface {
	Health() error
}

// RedisPinger Redis 连接探测接口。
type RedisPinger interface {
	Health(ctx context.Context) error
}

// HealthChecker 健康检查器。
type HealthChecker struct {
	health healthcheck.Handler
	logger *zap.Logger
}

// NewHealthChecker 创建健康检查器。
//
// store 必填；redis 可为 nil（缓存未启用的部署）。
func NewHealthChecker(store Pinger, redis RedisPinger, logger *zap.Logger) *HealthChecker {
	hc := &HealthChecker{
		health: healthcheck.NewHandler(),
		logger: logger,
	}

	// 引擎数据库可达性决定就绪状态
	hc.health.AddReadinessCheck("database", func() error {
		return store.Health()
	})

	if redis != nil {
		hc.health.AddReadinessCheck("redis", func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return redis.Health(ctx)
		})
	}

	return hc
}

// LiveHandler 存活检查处理器。
func (hc *HealthChecker) LiveHandler() http.Handler {
	return http.HandlerFunc(hc.health.LiveEndpoint)
}

// ReadyHandler 就绪检查处理器。
func (hc *HealthChecker) ReadyHandler() http.Handler {
	return http.HandlerFunc(hc.health.ReadyEndpoint)
}
