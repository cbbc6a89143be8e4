package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	rocketmq "github.com/apache/rocketmq-clients/golang/v5"
	"github.com/apache/rocketmq-clients/golang/v5/credentials"
	"github.com/golang-member-core/config"
	"github.com/golang-member-core/internal/logger"
	"go.uber.org/zap"
)

func init() {
	// 关掉 SDK 自带的文件日志，统一走控制台
	os.Setenv("mq.consoleAppender.enabled", "true")
	if os.Getenv("rocketmq.client.logLevel") == "" {
		os.Setenv("rocketmq.client.logLevel", "WARN")
	}
	rocketmq.ResetLogger()
}

// RocketMQClient RocketMQ 生产者封装
// 订单支付成功事件的可选发布通道；未启用或启动失败时降级为空操作
type RocketMQClient struct {
	producer rocketmq.Producer
	topic    string
	enabled  bool
}

// NewRocketMQClient 创建 RocketMQ 生产者
// 配置未启用或连接失败时返回禁用状态的客户端而不是错误，
// 事件发布是旁路能力，不能影响支付主流程
func NewRocketMQClient() *RocketMQClient {
	cfg := config.Cfg

	if cfg == nil || !cfg.RocketMQ.Enabled {
		return &RocketMQClient{enabled: false}
	}

	if cfg.RocketMQ.LogLevel != "" && os.Getenv("rocketmq.client.logLevel") != cfg.RocketMQ.LogLevel {
		os.Setenv("rocketmq.client.logLevel", cfg.RocketMQ.LogLevel)
		rocketmq.ResetLogger()
	}

	topic := cfg.RocketMQ.Topic
	if topic == "" {
		topic = "member-order-paid"
	}

	// SDK 要求 Credentials 不能为 nil，未配置 ACL 时传空值
	producerConfig := &rocketmq.Config{
		Endpoint: cfg.RocketMQ.Endpoint,
		Credentials: &credentials.SessionCredentials{
			AccessKey:    cfg.RocketMQ.AccessKey,
			AccessSecret: cfg.RocketMQ.SecretKey,
		},
	}

	var producer rocketmq.Producer
	var err error
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("创建 RocketMQ 生产者时发生 panic: %v", r)
			}
		}()
		producer, err = rocketmq.NewProducer(producerConfig, rocketmq.WithTopics(topic))
	}()
	if err != nil {
		logger.Logger.Warn("创建 RocketMQ 生产者失败，事件发布已禁用",
			zap.String("endpoint", cfg.RocketMQ.Endpoint),
			zap.Error(err))
		return &RocketMQClient{enabled: false}
	}

	// 启动加超时控制，避免长时间阻塞应用启动
	startErr := func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		done := make(chan error, 1)
		go func() {
			done <- producer.Start()
		}()

		select {
		case err := <-done:
			return err
		case <-ctx.Done():
			return fmt.Errorf("启动 RocketMQ 生产者超时: %w", ctx.Err())
		}
	}()
	if startErr != nil {
		logger.Logger.Warn("启动 RocketMQ 生产者失败，事件发布已禁用",
			zap.String("endpoint", cfg.RocketMQ.Endpoint),
			zap.String("topic", topic),
			zap.Error(startErr))
		_ = producer.GracefulStop()
		return &RocketMQClient{enabled: false}
	}

	logger.Logger.Info("RocketMQ 生产者启动成功",
		zap.String("endpoint", cfg.RocketMQ.Endpoint),
		zap.String("topic", topic))

	return &RocketMQClient{
		producer: producer,
		topic:    topic,
		enabled:  true,
	}
}

// IsEnabled 是否启用
func (c *RocketMQClient) IsEnabled() bool {
	return c != nil && c.enabled
}

// PublishOrderPaid 发布订单支付成功事件
func (c *RocketMQClient) PublishOrderPaid(ctx context.Context, msg *OrderPaidMessage) error {
	if !c.IsEnabled() {
		return nil
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("序列化消息失败: %w", err)
	}

	message := &rocketmq.Message{
		Topic: c.topic,
		Body:  body,
	}
	message.SetTag("paid")
	message.SetKeys(msg.OrderNo)

	if _, err := c.producer.Send(ctx, message); err != nil {
		return fmt.Errorf("发送消息失败: %w", err)
	}

	return nil
}

// Close 关闭生产者
func (c *RocketMQClient) Close() error {
	if !c.IsEnabled() || c.producer == nil {
		return nil
	}
	return c.producer.GracefulStop()
}
