package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-member-core/config"
	"github.com/golang-member-core/internal/alipay"
	"github.com/golang-member-core/internal/catalog"
	"github.com/golang-member-core/internal/database"
	"github.com/golang-member-core/internal/logger"
	"github.com/golang-member-core/internal/mq"
	"github.com/golang-member-core/internal/router"
	"github.com/golang-member-core/internal/service"
	"go.uber.org/zap"
)

func main() {
	// 加载配置
	// 优先级: 命令行参数 > 环境变量 APP_ENV > 默认 dev
	configPath := ""
	if len(os.Args) > 1 {
		arg := os.Args[1]
		switch arg {
		case "prod", "production":
			configPath = "config/config.prod.yaml"
		case "test", "testing":
			configPath = "config/config.test.yaml"
		case "dev", "development":
			configPath = "config/config.yaml"
		default:
			if arg[0] != '-' {
				configPath = arg
			}
		}
	}

	if err := config.Load(configPath); err != nil {
		panic(fmt.Sprintf("加载配置失败: %v", err))
	}

	// 初始化日志
	if err := logger.InitLogger(); err != nil {
		panic(fmt.Sprintf("初始化日志失败: %v", err))
	}
	defer logger.Sync()

	// 初始化数据库
	if err := database.InitMySQL(); err != nil {
		logger.Logger.Fatal("初始化数据库失败", zap.Error(err))
	}
	defer database.CloseMySQL()

	if err := database.Migrate(); err != nil {
		logger.Logger.Fatal("数据库迁移失败", zap.Error(err))
	}

	// 初始化 Redis（非必须，失败时降级运行）
	if err := database.InitRedis(); err != nil {
		logger.Logger.Warn("初始化 Redis 失败", zap.Error(err))
	}
	defer database.CloseRedis()

	// 初始化 RocketMQ 生产者（可选）
	mqClient := mq.NewRocketMQClient()
	defer func() {
		if err := mqClient.Close(); err != nil {
			logger.Logger.Error("关闭 RocketMQ 生产者失败", zap.Error(err))
		}
	}()

	// 装配支付宝客户端与业务服务
	// 支付宝未配置时下单服务降级为"未配置"应答，其余接口正常工作
	productCatalog := catalog.Default()
	ledgerService := service.NewLedgerService(productCatalog)

	var gateway service.PayGateway
	var notifyService *service.NotifyService
	if config.Cfg.Alipay.IsConfigured() {
		alipayClient, err := alipay.NewClient(&config.Cfg.Alipay)
		if err != nil {
			logger.Logger.Fatal("初始化支付宝客户端失败", zap.Error(err))
		}
		gateway = alipayClient
		verifier := alipay.NewVerifierFromKey(alipayClient.PublicKey())
		notifyService = service.NewNotifyService(verifier, config.Cfg.Alipay.AppID, ledgerService, mqClient)
		logger.Logger.Info("支付宝支付已启用", zap.String("app_id", config.Cfg.Alipay.AppID))
	} else {
		notifyService = service.NewNotifyService(alipay.NewVerifierFromKey(nil), "", ledgerService, mqClient)
		logger.Logger.Warn("支付宝支付未配置，下单接口将返回未配置错误")
	}

	svcs := &router.Services{
		Recharge: service.NewRechargeService(gateway, productCatalog),
		Notify:   notifyService,
		Order:    service.NewOrderService(productCatalog, ledgerService),
		Member:   service.NewMemberService(),
		Catalog:  productCatalog,
	}

	// 设置路由
	r := router.SetupRouter(svcs)

	// 创建 HTTP 服务器
	srv := &http.Server{
		Addr:           fmt.Sprintf(":%d", config.Cfg.App.Port),
		Handler:        r,
		ReadTimeout:    config.Cfg.App.ReadTimeout,
		WriteTimeout:   config.Cfg.App.WriteTimeout,
		MaxHeaderBytes: 1 << 20, // 1MB
	}

	// 启动服务器（在 goroutine 中）
	go func() {
		logger.Logger.Info("服务器启动",
			zap.String("address", srv.Addr),
			zap.String("mode", config.Cfg.App.Mode),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Logger.Fatal("服务器启动失败", zap.Error(err))
		}
	}()

	// 等待中断信号以优雅地关闭服务器
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info("正在关闭服务器...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Logger.Fatal("服务器强制关闭", zap.Error(err))
	}

	logger.Logger.Info("服务器已关闭")
}
