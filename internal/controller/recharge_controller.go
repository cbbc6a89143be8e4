package controller

import (
	"fmt"
	"html"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-member-core/internal/logger"
	"github.com/golang-member-core/internal/models"
	"github.com/golang-member-core/internal/response"
	"github.com/golang-member-core/internal/service"
	"go.uber.org/zap"
)

// RechargeController 支付宝充值控制器
type RechargeController struct {
	rechargeService *service.RechargeService
	notifyService   *service.NotifyService
}

// NewRechargeController 创建充值控制器
func NewRechargeController(rechargeService *service.RechargeService, notifyService *service.NotifyService) *RechargeController {
	return &RechargeController{
		rechargeService: rechargeService,
		notifyService:   notifyService,
	}
}

// Create 创建支付宝充值订单
// @Summary 创建支付宝充值订单
// @Tags 充值
// @Accept json
// @Produce json
// @Param request body service.CreateRechargeRequest true "充值信息"
// @Success 200 {object} response.Response{data=service.CreateRechargeResult}
// @Router /api/v1/recharge/alipay [post]
func (c *RechargeController) Create(ctx *gin.Context) {
	var req service.CreateRechargeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.Fail(ctx, http.StatusBadRequest, "参数错误: "+err.Error())
		return
	}

	userID := currentUserID(ctx)
	result, err := c.rechargeService.CreateAlipayOrder(ctx.Request.Context(), userID, &req)
	if err != nil {
		failBiz(ctx, err)
		return
	}

	response.Success(ctx, result)
}

// Notify 支付宝异步通知
// 应答体必须是字面量 success / failure，支付宝按应答决定是否重发
// @Summary 支付宝异步通知
// @Tags 充值
// @Accept application/x-www-form-urlencoded
// @Produce text/plain
// @Success 200 {string} string "success"
// @Router /api/v1/recharge/alipay/notify [post]
func (c *RechargeController) Notify(ctx *gin.Context) {
	params := collectNotifyParams(ctx)
	if len(params) == 0 {
		ctx.String(http.StatusOK, "failure")
		return
	}

	if _, err := c.notifyService.HandleNotify(ctx.Request.Context(), params); err != nil {
		ctx.String(http.StatusOK, "failure")
		return
	}

	ctx.String(http.StatusOK, "success")
}

// Return 支付宝同步回跳
// 只向用户展示订单状态，入账一律以异步通知为准
// @Summary 支付宝同步回跳
// @Tags 充值
// @Produce html
// @Router /api/v1/recharge/alipay/return [get]
func (c *RechargeController) Return(ctx *gin.Context) {
	params := collectNotifyParams(ctx)
	order, err := c.notifyService.QueryReturnOrder(ctx.Request.Context(), params)
	if err != nil {
		logger.Logger.Warn("支付宝回跳参数校验失败", zap.Error(err))
		ctx.Data(http.StatusOK, "text/html; charset=utf-8",
			[]byte(returnPage("支付结果确认中", "未能确认本次支付，请稍后在订单列表中查看。")))
		return
	}

	title := "支付处理中"
	detail := fmt.Sprintf("订单 %s 正在处理中，支付结果以异步通知为准。", order.OrderNo)
	if order.Status == models.OrderStatusPaid {
		title = "支付成功"
		detail = fmt.Sprintf("订单 %s 已支付，金额 %s 元。", order.OrderNo, order.Amount.StringFixed(2))
	}
	ctx.Data(http.StatusOK, "text/html; charset=utf-8", []byte(returnPage(title, detail)))
}

// collectNotifyParams 合并 Form 和 Query 参数
// 支付宝通知是 POST Form，回跳是 GET Query，统一收敛为单值 map
func collectNotifyParams(ctx *gin.Context) map[string]string {
	params := make(map[string]string)

	if ctx.Request.Method == http.MethodPost {
		contentType := ctx.GetHeader("Content-Type")
		if strings.Contains(contentType, "application/x-www-form-urlencoded") ||
			strings.Contains(contentType, "multipart/form-data") {
			if err := ctx.Request.ParseForm(); err == nil {
				for k, vs := range ctx.Request.PostForm {
					if len(vs) > 0 {
						params[k] = vs[0]
					}
				}
			}
		}
	}
	for k, vs := range ctx.Request.URL.Query() {
		if _, exists := params[k]; !exists && len(vs) > 0 {
			params[k] = vs[0]
		}
	}
	return params
}

// returnPage 回跳结果页
func returnPage(title, detail string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="zh-CN">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>%s</title>
<style>
body { font-family: -apple-system, "PingFang SC", sans-serif; text-align: center; padding-top: 80px; color: #333; }
h1 { font-size: 22px; }
p { color: #666; }
</style>
</head>
<body>
<h1>%s</h1>
<p>%s</p>
</body>
</html>`, html.EscapeString(title), html.EscapeString(title), html.EscapeString(detail))
}
