package response

import (
	"net/http"

	"social-system/internal/errs"

	"github.com/gin-gonic/gin"
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`            // 状态码：0表示成功，其他表示错误
	Kind    string      `json:"kind,omitempty"`  // 错误类别（NotFound/InvalidState/Conflict/AccessDenied/InvalidArgument）
	Message string      `json:"message"`         // 响应消息
	Data    interface{} `json:"data"`            // 响应数据
	Error   string      `json:"error,omitempty"` // 错误详情（仅在开发环境显示）
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// SuccessWithMessage 带自定义消息的成功响应
func SuccessWithMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: message,
		Data:    data,
	})
}

// Error 错误响应
func Error(c *gin.Context, code int, message string) {
	c.JSON(http.StatusOK, Response{
		Code:    code,
		Message: message,
	})
}

// FromError 根据业务错误类别生成错误响应
// 异步流水线内部的失败不会走到这里：它们只在内部重试和记录日志
func FromError(c *gin.Context, err error) {
	kind := errs.KindOf(err)
	resp := Response{
		Code:    codeOf(kind),
		Kind:    kind.String(),
		Message: err.Error(),
	}

	// 在开发环境下显示错误详情
	if gin.Mode() == gin.DebugMode {
		resp.Error = err.Error()
	}

	c.JSON(http.StatusOK, resp)
}

// codeOf 错误类别到业务状态码的映射
func codeOf(kind errs.Kind) int {
	switch kind {
	case errs.KindInvalidArgument:
		return 400
	case errs.KindAccessDenied:
		return 403
	case errs.KindNotFound:
		return 404
	case errs.KindConflict:
		return 409
	case errs.KindInvalidState:
		return 422
	default:
		return 500
	}
}

// BadRequest 400错误
func BadRequest(c *gin.Context, message string) {
	Error(c, 400, message)
}

// Unauthorized 401错误
func Unauthorized(c *gin.Context, message string) {
	Error(c, 401, message)
}

// Forbidden 403错误
func Forbidden(c *gin.Context, message string) {
	Error(c, 403, message)
}

// NotFound 404错误
func NotFound(c *gin.Context, message string) {
	Error(c, 404, message)
}

// InternalError 500错误
func InternalError(c *gin.Context, message string) {
	Error(c, 500, message)
}
