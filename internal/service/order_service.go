package service

import (
	"context"
	"errors"
	"time"

	"github.com/golang-member-core/internal/catalog"
	"github.com/golang-member-core/internal/database"
	"github.com/golang-member-core/internal/logger"
	"github.com/golang-member-core/internal/models"
	"github.com/golang-member-core/internal/utils"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// OrderService 订单查询与生命周期服务
type OrderService struct {
	catalog catalog.Catalog
	ledger  *LedgerService
}

// NewOrderService 创建订单服务
func NewOrderService(cat catalog.Catalog, ledger *LedgerService) *OrderService {
	return &OrderService{catalog: cat, ledger: ledger}
}

// CreateOrder 创建待支付订单
// 点数、时长和会员套餐都可下单，支付走余额或支付宝
func (s *OrderService) CreateOrder(ctx context.Context, userID int64, productID int) (*models.Order, error) {
	product, ok := s.catalog.Get(productID)
	if !ok {
		return nil, ErrProductNotFound
	}
	switch product.Type {
	case models.ProductTypePoints, models.ProductTypeSubscription, models.ProductTypeMember:
	default:
		return nil, ErrProductNotPayable
	}

	order := &models.Order{
		OrderNo:     utils.GenerateOrderNo(),
		UserID:      userID,
		ProductID:   product.ID,
		ProductType: product.Type,
		Amount:      product.Price,
		Quantity:    1,
		Status:      models.OrderStatusPending,
		Description: product.Name,
	}
	if err := database.DB.WithContext(ctx).Create(order).Error; err != nil {
		if isDuplicateKeyError(err) {
			return nil, ErrOrderNoConflict
		}
		logger.Logger.Error("创建订单失败",
			zap.Int64("user_id", userID),
			zap.Error(err))
		return nil, ErrCreateFailed
	}

	logger.Logger.Info("创建订单成功",
		zap.Int64("user_id", userID),
		zap.String("order_no", order.OrderNo),
		zap.String("product_type", product.Type))
	return order, nil
}

// ListOrdersQuery 订单列表查询条件
type ListOrdersQuery struct {
	Page   int
	Size   int
	Status int // 0 表示不过滤
	// UserID 为 0 时查询全部用户（仅管理员）
	UserID int64
}

// ListOrders 分页查询订单
func (s *OrderService) ListOrders(ctx context.Context, q *ListOrdersQuery) ([]models.Order, int64, error) {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.Size <= 0 || q.Size > 100 {
		q.Size = 20
	}

	db := database.DB.WithContext(ctx).Model(&models.Order{})
	if q.UserID > 0 {
		db = db.Where("user_id = ?", q.UserID)
	}
	if q.Status > 0 {
		db = db.Where("status = ?", q.Status)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	if err := db.Order("created_at DESC").
		Offset((q.Page - 1) * q.Size).
		Limit(q.Size).
		Find(&orders).Error; err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

// GetOrder 查询订单详情
// 普通用户只能查自己的订单，管理员不受限
func (s *OrderService) GetOrder(ctx context.Context, orderID int64, userID int64, isAdmin bool) (*models.Order, error) {
	var order models.Order
	if err := database.DB.WithContext(ctx).First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if !isAdmin && order.UserID != userID {
		return nil, ErrPermissionDenied
	}
	return &order, nil
}

// GetOrderByOrderNo 根据订单号查询订单
func (s *OrderService) GetOrderByOrderNo(ctx context.Context, orderNo string) (*models.Order, error) {
	var order models.Order
	if err := database.DB.WithContext(ctx).Where("order_no = ?", orderNo).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

// CancelOrder 取消订单
// 只有待支付订单可以取消；状态前置条件写进 UPDATE，避免和支付回调竞争
func (s *OrderService) CancelOrder(ctx context.Context, orderID int64, userID int64, isAdmin bool) error {
	order, err := s.GetOrder(ctx, orderID, userID, isAdmin)
	if err != nil {
		return err
	}
	if !order.CanCancel() {
		return ErrOrderStateInvalid
	}

	res := database.DB.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND status = ?", order.ID, models.OrderStatusPending).
		Update("status", models.OrderStatusCancelled)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		// 状态已被支付回调抢先变更
		return ErrOrderStateInvalid
	}

	logger.Logger.Info("订单已取消",
		zap.Int64("order_id", order.ID),
		zap.String("order_no", order.OrderNo))
	return nil
}

// PayWithBalance 余额支付订单
// 扣余额、入账产品效果、标记已支付在同一事务内完成
func (s *OrderService) PayWithBalance(ctx context.Context, orderID int64, userID int64) error {
	now := time.Now()

	return database.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := lockForUpdate(tx).
			First(&order, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}
		if order.UserID != userID {
			return ErrPermissionDenied
		}
		if !order.CanPay() {
			return ErrOrderStateInvalid
		}

		var member models.Member
		if err := lockForUpdate(tx).
			Where("user_id = ?", userID).
			First(&member).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrMemberNotFound
			}
			return err
		}

		if err := s.ledger.DeductBalance(tx, &member, order.Amount); err != nil {
			return err
		}
		if err := s.ledger.ApplyPaymentEffect(tx, &order, &member, now); err != nil {
			return err
		}

		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", order.ID, models.OrderStatusPending).
			Updates(map[string]interface{}{
				"status":         models.OrderStatusPaid,
				"payment_method": "balance",
				"payment_time":   now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrOrderStateInvalid
		}

		logger.Logger.Info("余额支付成功",
			zap.Int64("order_id", order.ID),
			zap.String("order_no", order.OrderNo),
			zap.String("amount", order.Amount.StringFixed(2)))
		return nil
	})
}

// OrderStats 订单统计结果
type OrderStats struct {
	TotalOrders     int64           `json:"total_orders"`
	PendingOrders   int64           `json:"pending_orders"`
	PaidOrders      int64           `json:"paid_orders"`
	CancelledOrders int64           `json:"cancelled_orders"`
	PaidAmount      decimal.Decimal `json:"paid_amount"`
}

// Stats 订单统计（管理端）
func (s *OrderService) Stats(ctx context.Context) (*OrderStats, error) {
	stats := &OrderStats{}
	db := database.DB.WithContext(ctx).Model(&models.Order{})

	if err := db.Count(&stats.TotalOrders).Error; err != nil {
		return nil, err
	}

	type statusCount struct {
		Status int
		Cnt    int64
	}
	var counts []statusCount
	if err := database.DB.WithContext(ctx).Model(&models.Order{}).
		Select("status, COUNT(*) AS cnt").
		Group("status").
		Scan(&counts).Error; err != nil {
		return nil, err
	}
	for _, c := range counts {
		switch c.Status {
		case models.OrderStatusPending:
			stats.PendingOrders = c.Cnt
		case models.OrderStatusPaid:
			stats.PaidOrders = c.Cnt
		case models.OrderStatusCancelled:
			stats.CancelledOrders = c.Cnt
		}
	}

	var paidAmount decimal.NullDecimal
	if err := database.DB.WithContext(ctx).Model(&models.Order{}).
		Where("status = ?", models.OrderStatusPaid).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&paidAmount).Error; err != nil {
		return nil, err
	}
	if paidAmount.Valid {
		stats.PaidAmount = paidAmount.Decimal
	}

	return stats, nil
}
