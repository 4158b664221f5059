package httptransport

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mailadmin/backend/internal/service"
	"mailadmin/backend/internal/storage"
)

// 通用错误消息
const (
	MsgInvalidInbox     = "邮箱地址格式无效"
	MsgInvalidMessageID = "邮件ID格式无效"
	MsgMessageNotFound  = "邮件不存在"
	MsgRawBodyNotFound  = "原始报文不存在"
	MsgDBQueryFailed    = "数据库查询失败，请稍后重试"
)

// RespondError 把业务/存储错误映射为响应包络。
//
// 未识别的错误一律按存储传输失败处理：本层不重试，
// 是否重试由调用方决定。
func RespondError(c *gin.Context, log *zap.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInbox):
		Fail(c, http.StatusBadRequest, CodeInvalidInbox, MsgInvalidInbox)
	case errors.Is(err, service.ErrInvalidMessageID):
		Fail(c, http.StatusBadRequest, CodeInvalidMessageID, MsgInvalidMessageID)
	case errors.Is(err, storage.ErrMessageNotFound):
		Fail(c, http.StatusNotFound, CodeMessageNotFound, MsgMessageNotFound)
	case errors.Is(err, storage.ErrRawBodyNotFound):
		Fail(c, http.StatusNotFound, CodeNotFound, MsgRawBodyNotFound)
	default:
		log.Error("store query failed",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		Fail(c, http.StatusInternalServerError, CodeDBQueryFailed, MsgDBQueryFailed)
	}
}
