package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/golang-member-core/config"
	"github.com/golang-member-core/internal/response"
)

// Auth JWT 认证中间件
// 解析成功后向上下文写入 user_id(int64) 和 user_type(int)
func Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Fail(c, http.StatusUnauthorized, "未提供认证令牌")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Fail(c, http.StatusUnauthorized, "认证令牌格式错误")
			c.Abort()
			return
		}

		token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("不支持的签名算法: %v", token.Header["alg"])
			}
			return []byte(config.Cfg.JWT.Secret), nil
		})
		if err != nil || !token.Valid {
			response.Fail(c, http.StatusUnauthorized, "认证令牌无效")
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			response.Fail(c, http.StatusUnauthorized, "认证令牌无效")
			c.Abort()
			return
		}

		// JSON 数值统一按 float64 解出，再转成业务类型
		userID, ok := claims["user_id"].(float64)
		if !ok || userID <= 0 {
			response.Fail(c, http.StatusUnauthorized, "认证令牌缺少用户信息")
			c.Abort()
			return
		}
		c.Set("user_id", int64(userID))

		if userType, ok := claims["user_type"].(float64); ok {
			c.Set("user_type", int(userType))
		}

		c.Next()
	}
}
