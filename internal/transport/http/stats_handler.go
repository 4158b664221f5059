package httptransport

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mailadmin/backend/internal/capability"
	"mailadmin/backend/internal/service"
)

// StatsHandler 聚合统计与 schema 能力接口。
type StatsHandler struct {
	stats *service.StatsService
	caps  *capability.Cache
	log   *zap.Logger
}

// NewStatsHandler 创建统计处理器。
func NewStatsHandler(stats *service.StatsService, caps *capability.Cache, log *zap.Logger) *StatsHandler {
	return &StatsHandler{stats: stats, caps: caps, log: log}
}

// Overview 三个滚动窗口的方向计数。
// GET /api/v1/stats/overview
func (h *StatsHandler) Overview(c *gin.Context) {
	stats, err := h.stats.Overview(c.Request.Context())
	if err != nil {
		RespondError(c, h.log, err)
		return
	}
	Success(c, stats)
}

// Mailboxes 每个邮箱的聚合统计。
// GET /api/v1/stats/mailboxes
func (h *StatsHandler) Mailboxes(c *gin.Context) {
	stats, err := h.stats.Mailboxes(c.Request.Context())
	if err != nil {
		RespondError(c, h.log, err)
		return
	}
	Success(c, gin.H{
		"mailboxes": stats,
		"count":     len(stats),
	})
}

// Schema 当前缓存的 schema 能力描述符。
// GET /api/v1/schema
func (h *StatsHandler) Schema(c *gin.Context) {
	caps, err := h.caps.GetOrCompute(c.Request.Context())
	if err != nil {
		RespondError(c, h.log, err)
		return
	}
	Success(c, caps)
}

// RefreshSchema 人工触发能力重新探测。
// POST /api/v1/schema/refresh
//
// 唯一的非 GET 路由，但对引擎存储仍然只读。
func (h *StatsHandler) RefreshSchema(c *gin.Context) {
	caps, err := h.caps.Refresh(c.Request.Context())
	if err != nil {
		RespondError(c, h.log, err)
		return
	}

	h.log.Info("schema capabilities refreshed",
		zap.String("status_column", string(caps.StatusColumn)),
		zap.String("address_column", caps.AddressColumn),
	)
	Success(c, caps)
}
