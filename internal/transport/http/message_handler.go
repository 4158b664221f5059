package httptransport

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mailadmin/backend/internal/service"
)

// MessageHandler 邮件读取接口。
type MessageHandler struct {
	messages *service.MessageService
	log      *zap.Logger
}

// NewMessageHandler 创建邮件处理器。
func NewMessageHandler(messages *service.MessageService, log *zap.Logger) *MessageHandler {
	return &MessageHandler{messages: messages, log: log}
}

// List 列出邮箱下的邮件元数据。
// GET /api/v1/inboxes/:address/messages?limit=50
func (h *MessageHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))

	messages, err := h.messages.List(c.Request.Context(), c.Param("address"), limit)
	if err != nil {
		RespondError(c, h.log, err)
		return
	}

	Success(c, gin.H{
		"messages": messages,
		"count":    len(messages),
	})
}

// Get 获取组装后的完整邮件。
// GET /api/v1/inboxes/:address/messages/:id
//
// htmlBody 原样返回，未经任何净化。渲染前的 sanitize 是
// 展示层的强制职责。
func (h *MessageHandler) Get(c *gin.Context) {
	view, err := h.messages.Get(c.Request.Context(), c.Param("address"), c.Param("id"))
	if err != nil {
		RespondError(c, h.log, err)
		return
	}

	Success(c, view)
}
