package service

import (
	"context"
	"errors"
	"strings"

	"github.com/golang-member-core/internal/alipay"
	"github.com/golang-member-core/internal/catalog"
	"github.com/golang-member-core/internal/database"
	"github.com/golang-member-core/internal/logger"
	"github.com/golang-member-core/internal/models"
	"github.com/golang-member-core/internal/utils"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PayGateway 支付网关
// 只暴露下单需要的两个动作，测试时可替换为桩实现
type PayGateway interface {
	TradeWapPay(subject, outTradeNo, totalAmount string) (string, error)
	TradePagePay(subject, outTradeNo, totalAmount string) (string, error)
}

// CreateRechargeRequest 创建充值订单请求
type CreateRechargeRequest struct {
	ProductID int `json:"product_id" binding:"required"`
	// Amount 客户端展示的金额，传了就必须和产品配置完全一致，防止价格篡改
	Amount *decimal.Decimal `json:"amount"`
	// ClientType wap(默认) / pc
	ClientType string `json:"client_type"`
}

// CreateRechargeResult 创建充值订单结果
type CreateRechargeResult struct {
	OrderID      int64  `json:"order_id"`
	OrderNo      string `json:"order_no"`
	Amount       string `json:"amount"`
	PayURL       string `json:"pay_url"`
	AlipayScheme string `json:"alipay_scheme"`
}

// RechargeService 支付宝充值下单服务
type RechargeService struct {
	gateway PayGateway
	catalog catalog.Catalog
}

// NewRechargeService 创建充值服务
// gateway 传 nil 表示支付宝未配置，下单接口统一返回未配置错误
func NewRechargeService(gateway PayGateway, cat catalog.Catalog) *RechargeService {
	return &RechargeService{gateway: gateway, catalog: cat}
}

// CreateAlipayOrder 创建支付宝充值订单
// 先落本地待支付订单再调网关；网关失败时订单保留为待支付，
// 用户可重新发起支付或等待订单取消
func (s *RechargeService) CreateAlipayOrder(ctx context.Context, userID int64, req *CreateRechargeRequest) (*CreateRechargeResult, error) {
	if s.gateway == nil {
		alipayOrderCreateTotal.WithLabelValues("not_configured").Inc()
		return nil, ErrPayNotConfigured
	}

	product, ok := s.catalog.Get(req.ProductID)
	if !ok {
		alipayOrderCreateTotal.WithLabelValues("product_not_found").Inc()
		return nil, ErrProductNotFound
	}
	if product.Type != models.ProductTypePoints && product.Type != models.ProductTypeSubscription {
		alipayOrderCreateTotal.WithLabelValues("product_not_payable").Inc()
		return nil, ErrProductNotPayable
	}

	// 金额以服务端产品配置为准，客户端传入值只做一致性校验
	if req.Amount != nil && !req.Amount.Equal(product.Price) {
		alipayOrderCreateTotal.WithLabelValues("amount_mismatch").Inc()
		logger.Logger.Warn("充值金额与产品配置不一致",
			zap.Int64("user_id", userID),
			zap.Int("product_id", product.ID),
			zap.String("request_amount", req.Amount.String()),
			zap.String("product_price", product.Price.String()))
		return nil, ErrAmountMismatch
	}

	order := &models.Order{
		OrderNo:       utils.GenerateOrderNo(),
		UserID:        userID,
		ProductID:     product.ID,
		ProductType:   product.Type,
		Amount:        product.Price,
		Quantity:      1,
		Status:        models.OrderStatusPending,
		PaymentMethod: "alipay",
		Description:   product.Name,
	}
	if err := database.DB.WithContext(ctx).Create(order).Error; err != nil {
		if isDuplicateKeyError(err) {
			alipayOrderCreateTotal.WithLabelValues("order_no_conflict").Inc()
			return nil, ErrOrderNoConflict
		}
		alipayOrderCreateTotal.WithLabelValues("db_error").Inc()
		logger.Logger.Error("创建充值订单失败",
			zap.Int64("user_id", userID),
			zap.Error(err))
		return nil, ErrCreateFailed
	}

	amount := product.Price.StringFixed(2)
	var payURL string
	var err error
	if req.ClientType == "pc" {
		payURL, err = s.gateway.TradePagePay(product.Name, order.OrderNo, amount)
	} else {
		payURL, err = s.gateway.TradeWapPay(product.Name, order.OrderNo, amount)
	}
	if err != nil {
		// 订单保留为待支付，不回滚；支付链接可以重试生成
		alipayOrderCreateTotal.WithLabelValues("gateway_failed").Inc()
		logger.Logger.Error("生成支付宝支付链接失败",
			zap.String("order_no", order.OrderNo),
			zap.Error(err))
		return nil, ErrGatewayFailed
	}

	alipayOrderCreateTotal.WithLabelValues("success").Inc()
	logger.Logger.Info("创建支付宝充值订单成功",
		zap.Int64("user_id", userID),
		zap.String("order_no", order.OrderNo),
		zap.String("amount", amount))

	return &CreateRechargeResult{
		OrderID:      order.ID,
		OrderNo:      order.OrderNo,
		Amount:       amount,
		PayURL:       payURL,
		AlipayScheme: alipay.BuildSchemeURL(payURL),
	}, nil
}

// isDuplicateKeyError 判断是否唯一索引冲突
func isDuplicateKeyError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// MySQL 1062 / SQLite UNIQUE constraint 的字符串兜底
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
