package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/golang-member-core/internal/logger"
	"github.com/golang-member-core/internal/response"
	"go.uber.org/zap"
)

// Recovery 异常恢复中间件
// 支付回调等纯文本接口也走统一 JSON 兜底，支付宝会把非 success 应答视为失败并重发
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Logger.Error("请求处理发生 panic",
					zap.Any("error", err),
					zap.String("path", c.Request.URL.Path),
					zap.String("method", c.Request.Method),
					zap.String("request_id", c.GetString("request_id")),
				)

				response.Fail(c, http.StatusInternalServerError, "服务器内部错误")
				c.Abort()
			}
		}()
		c.Next()
	}
}
