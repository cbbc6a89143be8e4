package router

import (
	"github.com/gin-gonic/gin"
	"github.com/golang-member-core/config"
	"github.com/golang-member-core/internal/catalog"
	"github.com/golang-member-core/internal/controller"
	"github.com/golang-member-core/internal/middleware"
	"github.com/golang-member-core/internal/service"
)

// Services 路由依赖的业务服务
// 由 main 统一装配后注入，路由层不感知支付宝密钥等构造细节
type Services struct {
	Recharge *service.RechargeService
	Notify   *service.NotifyService
	Order    *service.OrderService
	Member   *service.MemberService
	Catalog  catalog.Catalog
}

// SetupRouter 设置路由
func SetupRouter(svcs *Services) *gin.Engine {
	// 设置运行模式
	gin.SetMode(config.Cfg.App.Mode)

	r := gin.New()

	// 全局中间件
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.Metrics())

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": config.Cfg.App.Name,
			"version": config.Cfg.App.Version,
		})
	})

	// Prometheus 指标
	r.GET("/metrics", middleware.PrometheusHandler())

	rechargeController := controller.NewRechargeController(svcs.Recharge, svcs.Notify)
	orderController := controller.NewOrderController(svcs.Order, svcs.Catalog)
	memberController := controller.NewMemberController(svcs.Member)

	// API 路由组
	api := r.Group("/api/v1")
	{
		// 产品列表无需登录
		api.GET("/products", orderController.Products)

		// 支付宝回调入口，支付宝服务端直接访问，不走认证
		recharge := api.Group("/recharge/alipay")
		{
			recharge.POST("/notify", rechargeController.Notify)
			recharge.GET("/return", rechargeController.Return)
		}

		// 需要登录的接口
		authed := api.Group("")
		authed.Use(middleware.Auth())
		{
			authed.POST("/recharge/alipay", rechargeController.Create)

			orders := authed.Group("/orders")
			{
				orders.POST("", orderController.Create)
				orders.GET("", orderController.List)
				orders.GET("/:id", orderController.Get)
				orders.POST("/:id/cancel", orderController.Cancel)
				orders.POST("/:id/pay", orderController.PayWithBalance)
			}

			member := authed.Group("/member")
			{
				member.GET("/profile", memberController.Profile)
				member.GET("/points/transactions", memberController.PointTransactions)
			}

			// 管理端
			authed.GET("/admin/orders/stats", orderController.Stats)
		}
	}

	return r
}
