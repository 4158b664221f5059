package middleware

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"mailadmin/backend/internal/monitoring"
)

// RateLimiter 按客户端 IP 的请求限流器。
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      rate.Limit
	burst    int
	metrics  *monitoring.Metrics
}

// NewRateLimiter 创建限流器。
func NewRateLimiter(rps float64, burst int, metrics *monitoring.Metrics) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		rps:      rate.Limit(rps),
		burst:    burst,
		metrics:  metrics,
	}
}

// limiterFor 获取或创建指定 IP 的限流器。
func (r *RateLimiter) limiterFor(ip string) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()

	limiter, ok := r.limiters[ip]
	if !ok {
		limiter = rate.NewLimiter(r.rps, r.burst)
		r.limiters[ip] = limiter
	}
	return limiter
}

// Handler 限流中间件。
func (r *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !r.limiterFor(ip).Allow() {
			if r.metrics != nil {
				r.metrics.RecordRateLimitBlock(ip)
			}
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"ok": false,
				"error": gin.H{
					"code":    "RATE_LIMITED",
					"message": "请求过于频繁，请稍后重试",
				},
			})
			return
		}
		c.Next()
	}
}
