package shared

import (
	"github.com/dujiao-next/marketcore/internal/http/response"
	"github.com/dujiao-next/marketcore/internal/i18n"
	"github.com/dujiao-next/marketcore/internal/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLog 提供携带 request_id 的日志实例。
func RequestLog(c *gin.Context) *zap.SugaredLogger {
	if c == nil {
		return logger.S()
	}
	if requestID, ok := c.Get("request_id"); ok {
		if id, ok := requestID.(string); ok && id != "" {
			return logger.SW("request_id", id)
		}
	}
	return logger.S()
}

// RespondError 按请求语言翻译 key 并输出错误信封。
func RespondError(c *gin.Context, code int, key string, err error) {
	respondAppError(c, newAppError(c, code, key, err), nil)
}

// RespondErrorWithData 同 RespondError，data 附带结构化明细。
func RespondErrorWithData(c *gin.Context, code int, key string, data gin.H) {
	respondAppError(c, newAppError(c, code, key, nil), data)
}

func newAppError(c *gin.Context, code int, key string, err error) *response.AppError {
	return response.NewAppError(code, key, i18n.T(i18n.ResolveLocale(c), key), err)
}

func respondAppError(c *gin.Context, appErr *response.AppError, data gin.H) {
	logAppError(c, appErr)
	if data != nil {
		response.ErrorWithData(c, appErr.Code, appErr.Message, data)
		return
	}
	response.Error(c, appErr.Code, appErr.Message)
}

// logAppError 服务端错误记 error，带原始错误的客户端错误记 warn
func logAppError(c *gin.Context, appErr *response.AppError) {
	if appErr.Err == nil && !appErr.IsServerError() {
		return
	}
	fields := []interface{}{
		"code", appErr.Code,
		"key", appErr.Key,
		"error", appErr.Err,
	}
	if c != nil && c.Request != nil {
		fields = append(fields, "method", c.Request.Method, "path", c.FullPath())
	}
	if appErr.IsServerError() {
		RequestLog(c).Errorw("handler_error", fields...)
		return
	}
	RequestLog(c).Warnw("handler_error", fields...)
}
