package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// 支付宝异步通知处理结果
	alipayNotifyTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alipay_notify_total",
			Help: "支付宝异步通知处理结果计数",
		},
		[]string{"result", "reason"},
	)

	// 支付宝订单创建结果
	alipayOrderCreateTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alipay_order_create_total",
			Help: "支付宝充值订单创建结果计数",
		},
		[]string{"result"},
	)

	// 积分入账总量
	pointsCreditedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "points_credited_total",
			Help: "通过支付入账的积分总量",
		},
	)
)
