package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/golang-member-core/internal/models"
	"github.com/golang-member-core/internal/response"
	"github.com/golang-member-core/internal/service"
)

// currentUserID 读取认证中间件写入的用户ID
func currentUserID(ctx *gin.Context) int64 {
	if v, exists := ctx.Get("user_id"); exists {
		if id, ok := v.(int64); ok {
			return id
		}
	}
	return 0
}

// currentIsAdmin 当前用户是否管理员
func currentIsAdmin(ctx *gin.Context) bool {
	if v, exists := ctx.Get("user_type"); exists {
		if t, ok := v.(int); ok {
			return t == models.UserTypeAdmin
		}
	}
	return false
}

// failBiz 统一输出业务错误
// 业务错误走 HTTP 200 + 业务码，非业务错误按系统繁忙兜底
func failBiz(ctx *gin.Context, err error) {
	var biz *service.BizError
	if errors.As(err, &biz) {
		response.FailWithCode(ctx, biz.Code, biz.Message)
		return
	}
	response.Fail(ctx, http.StatusInternalServerError, service.ErrSystemBusy.Message)
}
