package httptransport

import (
	"time"

	gincors "github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mailadmin/backend/internal/capability"
	"mailadmin/backend/internal/config"
	"mailadmin/backend/internal/health"
	"mailadmin/backend/internal/middleware"
	"mailadmin/backend/internal/monitoring"
	"mailadmin/backend/internal/service"
)

// RouterDependencies 路由器依赖项。
type RouterDependencies struct {
	Config          *config.Config
	MessageService  *service.MessageService
	StatsService    *service.StatsService
	CapabilityCache *capability.Cache
	Metrics         *monitoring.Metrics
	HealthChecker   *health.HealthChecker
	Logger          *zap.Logger
}

// NewRouter 创建并返回 Gin 路由实例。
//
// 认证由外层网关中间件在请求到达本服务前完成，这里不做
// 任何鉴权逻辑。
func NewRouter(deps RouterDependencies) *gin.Engine {
	router := gin.New()

	mm := middleware.NewMonitoringMiddleware(deps.Metrics, deps.Logger)
	router.Use(mm.PanicRecovery())
	router.Use(mm.HTTPMetrics())

	rateLimiter := middleware.NewRateLimiter(
		deps.Config.RateLimit.RPS,
		deps.Config.RateLimit.Burst,
		deps.Metrics,
	)

	// CORS 配置
	corsConfig := gincors.Config{
		AllowOrigins:     deps.Config.CORS.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	// 允许所有来源时需清空凭证支持
	for _, origin := range corsConfig.AllowOrigins {
		if origin == "*" {
			corsConfig.AllowCredentials = false
			break
		}
	}
	router.Use(gincors.New(corsConfig))

	messageHandler := NewMessageHandler(deps.MessageService, deps.Logger)
	statsHandler := NewStatsHandler(deps.StatsService, deps.CapabilityCache, deps.Logger)

	// 健康检查与指标
	router.GET("/healthz", gin.WrapH(deps.HealthChecker.LiveHandler()))
	router.GET("/readyz", gin.WrapH(deps.HealthChecker.ReadyHandler()))
	router.GET("/metrics", gin.WrapH(deps.Metrics.HTTPHandler()))

	v1 := router.Group("/api/v1")
	v1.Use(rateLimiter.Handler())
	{
		inboxes := v1.Group("/inboxes")
		{
			inboxes.GET("/:address/messages", messageHandler.List)
			inboxes.GET("/:address/messages/:id", messageHandler.Get)
		}

		stats := v1.Group("/stats")
		{
			stats.GET("/overview", statsHandler.Overview)
			stats.GET("/mailboxes", statsHandler.Mailboxes)
		}

		schema := v1.Group("/schema")
		{
			schema.GET("", statsHandler.Schema)
			schema.POST("/refresh", statsHandler.RefreshSchema)
		}
	}

	return router
}
