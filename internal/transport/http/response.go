package httptransport

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response 统一响应包络。
type Response struct {
	OK    bool        `json:"ok"`
	Data  interface{} `json:"data,omitempty"`
	Error *ErrorBody  `json:"error,omitempty"`
}

// ErrorBody 错误载荷。
type ErrorBody struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// 本层对外暴露的错误码。
const (
	CodeInvalidInbox     = "INVALID_INBOX"
	CodeInvalidMessageID = "INVALID_MESSAGE_ID"
	CodeMessageNotFound  = "MESSAGE_NOT_FOUND"
	CodeNotFound         = "NOT_FOUND"
	CodeDBQueryFailed    = "DB_QUERY_FAILED"
)

// Success 成功响应（200）。
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		OK:   true,
		Data: data,
	})
}

// Fail 错误响应。
func Fail(c *gin.Context, httpStatus int, code, message string) {
	c.JSON(httpStatus, Response{
		OK: false,
		Error: &ErrorBody{
			Code:    code,
			Message: message,
		},
	})
}

// FailWithDetails 带补充信息的错误响应。
func FailWithDetails(c *gin.Context, httpStatus int, code, message string, details interface{}) {
	c.JSON(httpStatus, Response{
		OK: false,
		Error: &ErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}
