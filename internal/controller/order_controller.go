package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/golang-member-core/internal/catalog"
	"github.com/golang-member-core/internal/response"
	"github.com/golang-member-core/internal/service"
)

// OrderController 订单控制器
type OrderController struct {
	orderService *service.OrderService
	catalog      catalog.Catalog
}

// NewOrderController 创建订单控制器
func NewOrderController(orderService *service.OrderService, cat catalog.Catalog) *OrderController {
	return &OrderController{
		orderService: orderService,
		catalog:      cat,
	}
}

// productView 对外的产品视图
type productView struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Price       string `json:"price"`
	Description string `json:"description"`
	Duration    int    `json:"duration,omitempty"`
	Points      int    `json:"points,omitempty"`
}

// Products 产品列表
// @Summary 可购买产品列表
// @Tags 订单
// @Produce json
// @Router /api/v1/products [get]
func (c *OrderController) Products(ctx *gin.Context) {
	products := c.catalog.List()
	views := make([]productView, 0, len(products))
	for _, p := range products {
		views = append(views, productView{
			ID:          p.ID,
			Name:        p.Name,
			Type:        p.Type,
			Price:       p.Price.StringFixed(2),
			Description: p.Description,
			Duration:    p.Duration,
			Points:      p.Points,
		})
	}
	response.Success(ctx, views)
}

// createOrderRequest 创建订单请求
type createOrderRequest struct {
	ProductID int `json:"product_id" binding:"required"`
}

// Create 创建订单
// @Summary 创建订单（余额或支付宝支付前的下单入口）
// @Tags 订单
// @Accept json
// @Produce json
// @Param request body createOrderRequest true "订单信息"
// @Router /api/v1/orders [post]
func (c *OrderController) Create(ctx *gin.Context) {
	var req createOrderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.Fail(ctx, http.StatusBadRequest, "参数错误: "+err.Error())
		return
	}

	order, err := c.orderService.CreateOrder(ctx.Request.Context(), currentUserID(ctx), req.ProductID)
	if err != nil {
		failBiz(ctx, err)
		return
	}
	response.Success(ctx, order)
}

// List 订单列表
// @Summary 订单列表
// @Tags 订单
// @Produce json
// @Param page query int false "页码"
// @Param size query int false "每页数量"
// @Param status query int false "订单状态"
// @Router /api/v1/orders [get]
func (c *OrderController) List(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(ctx.DefaultQuery("size", "20"))
	status, _ := strconv.Atoi(ctx.DefaultQuery("status", "0"))

	q := &service.ListOrdersQuery{
		Page:   page,
		Size:   size,
		Status: status,
		UserID: currentUserID(ctx),
	}
	// 管理员可以查看全部用户的订单
	if currentIsAdmin(ctx) && ctx.Query("all") == "1" {
		q.UserID = 0
	}

	orders, total, err := c.orderService.ListOrders(ctx.Request.Context(), q)
	if err != nil {
		failBiz(ctx, err)
		return
	}

	response.Paginated(ctx, orders, total, q.Page, q.Size)
}

// Get 订单详情
// @Summary 订单详情
// @Tags 订单
// @Produce json
// @Param id path int true "订单ID"
// @Router /api/v1/orders/{id} [get]
func (c *OrderController) Get(ctx *gin.Context) {
	orderID, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		response.Fail(ctx, http.StatusBadRequest, "订单ID无效")
		return
	}

	order, err := c.orderService.GetOrder(ctx.Request.Context(), orderID, currentUserID(ctx), currentIsAdmin(ctx))
	if err != nil {
		failBiz(ctx, err)
		return
	}
	response.Success(ctx, order)
}

// Cancel 取消订单
// @Summary 取消待支付订单
// @Tags 订单
// @Produce json
// @Param id path int true "订单ID"
// @Router /api/v1/orders/{id}/cancel [post]
func (c *OrderController) Cancel(ctx *gin.Context) {
	orderID, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		response.Fail(ctx, http.StatusBadRequest, "订单ID无效")
		return
	}

	if err := c.orderService.CancelOrder(ctx.Request.Context(), orderID, currentUserID(ctx), currentIsAdmin(ctx)); err != nil {
		failBiz(ctx, err)
		return
	}
	response.SuccessWithMessage(ctx, "订单已取消", nil)
}

// PayWithBalance 余额支付
// @Summary 余额支付订单
// @Tags 订单
// @Produce json
// @Param id path int true "订单ID"
// @Router /api/v1/orders/{id}/pay [post]
func (c *OrderController) PayWithBalance(ctx *gin.Context) {
	orderID, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		response.Fail(ctx, http.StatusBadRequest, "订单ID无效")
		return
	}

	if err := c.orderService.PayWithBalance(ctx.Request.Context(), orderID, currentUserID(ctx)); err != nil {
		failBiz(ctx, err)
		return
	}
	response.SuccessWithMessage(ctx, "支付成功", nil)
}

// Stats 订单统计（管理端）
// @Summary 订单统计
// @Tags 订单
// @Produce json
// @Router /api/v1/admin/orders/stats [get]
func (c *OrderController) Stats(ctx *gin.Context) {
	if !currentIsAdmin(ctx) {
		failBiz(ctx, service.ErrPermissionDenied)
		return
	}

	stats, err := c.orderService.Stats(ctx.Request.Context())
	if err != nil {
		failBiz(ctx, err)
		return
	}
	response.Success(ctx, stats)
}
