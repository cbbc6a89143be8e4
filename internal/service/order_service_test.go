package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/golang-member-core/internal/catalog"
	"github.com/golang-member-core/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOrderService() *OrderService {
	cat := catalog.Default()
	return NewOrderService(cat, NewLedgerService(cat))
}

// TestOrderService_ListOrders_Scoped 测试订单列表按用户隔离
func TestOrderService_ListOrders_Scoped(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestOrderService()

	seedUserWithMember(t, db, 1, &models.Member{})
	seedUserWithMember(t, db, 2, &models.Member{})
	for i := 0; i < 3; i++ {
		seedPendingOrder(t, db, fmt.Sprintf("ORDA%d", i), 1, 5, models.ProductTypePoints, "5.00")
	}
	seedPendingOrder(t, db, "ORDB0", 2, 5, models.ProductTypePoints, "5.00")

	orders, total, err := svc.ListOrders(context.Background(), &ListOrdersQuery{UserID: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, orders, 3)

	// UserID 为 0 查询全部（管理员）
	_, total, err = svc.ListOrders(context.Background(), &ListOrdersQuery{})
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
}

// TestOrderService_GetOrder_PermissionDenied 测试越权访问订单
func TestOrderService_GetOrder_PermissionDenied(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestOrderService()

	seedUserWithMember(t, db, 1, &models.Member{})
	order := seedPendingOrder(t, db, "ORDC1", 1, 5, models.ProductTypePoints, "5.00")

	_, err := svc.GetOrder(context.Background(), order.ID, 2, false)
	assert.Equal(t, ErrPermissionDenied, err)

	// 管理员不受限
	got, err := svc.GetOrder(context.Background(), order.ID, 2, true)
	require.NoError(t, err)
	assert.Equal(t, "ORDC1", got.OrderNo)
}

// TestOrderService_CancelOrder 测试取消订单
func TestOrderService_CancelOrder(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestOrderService()

	seedUserWithMember(t, db, 1, &models.Member{})
	order := seedPendingOrder(t, db, "ORDC2", 1, 5, models.ProductTypePoints, "5.00")

	require.NoError(t, svc.CancelOrder(context.Background(), order.ID, 1, false))

	var got models.Order
	require.NoError(t, db.First(&got, order.ID).Error)
	assert.Equal(t, models.OrderStatusCancelled, got.Status)

	// 已取消的订单不能再次取消
	assert.Equal(t, ErrOrderStateInvalid, svc.CancelOrder(context.Background(), order.ID, 1, false))
}

// TestOrderService_PayWithBalance 测试余额支付
func TestOrderService_PayWithBalance(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestOrderService()

	seedUserWithMember(t, db, 1, &models.Member{
		MemberLevel: models.MemberLevelFree,
		Balance:     decimal.NewFromFloat(100.00),
	})
	order := seedPendingOrder(t, db, "ORDP1", 1, 5, models.ProductTypePoints, "5.00")

	require.NoError(t, svc.PayWithBalance(context.Background(), order.ID, 1))

	var got models.Order
	require.NoError(t, db.First(&got, order.ID).Error)
	assert.Equal(t, models.OrderStatusPaid, got.Status)
	assert.Equal(t, "balance", got.PaymentMethod)

	var member models.Member
	require.NoError(t, db.Where("user_id = ?", int64(1)).First(&member).Error)
	assert.True(t, member.Balance.Equal(decimal.NewFromFloat(95.00)))
	assert.Equal(t, 10, member.Points)

	var txCount int64
	require.NoError(t, db.Model(&models.PointTransaction{}).Count(&txCount).Error)
	assert.Equal(t, int64(1), txCount)
}

// TestOrderService_CreateOrder 测试下单入口
func TestOrderService_CreateOrder(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestOrderService()

	seedUserWithMember(t, db, 1, &models.Member{})

	// 会员套餐可以下单
	order, err := svc.CreateOrder(context.Background(), 1, 1)
	require.NoError(t, err)
	assert.Equal(t, models.ProductTypeMember, order.ProductType)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.True(t, order.Amount.Equal(decimal.NewFromFloat(99.00)))

	_, err = svc.CreateOrder(context.Background(), 1, 404)
	assert.Equal(t, ErrProductNotFound, err)
}

// TestOrderService_PayWithBalance_MemberPackage 测试余额购买会员套餐
// 套餐同时顺延会员时长并入账赠送点数
func TestOrderService_PayWithBalance_MemberPackage(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestOrderService()

	seedUserWithMember(t, db, 1, &models.Member{
		MemberLevel: models.MemberLevelFree,
		Balance:     decimal.NewFromFloat(200.00),
	})

	// 产品 1：基础会员，99.00 元 / 30 天 / 赠 1000 点
	order, err := svc.CreateOrder(context.Background(), 1, 1)
	require.NoError(t, err)
	require.NoError(t, svc.PayWithBalance(context.Background(), order.ID, 1))

	var member models.Member
	require.NoError(t, db.Where("user_id = ?", int64(1)).First(&member).Error)
	assert.True(t, member.Balance.Equal(decimal.NewFromFloat(101.00)))
	assert.Equal(t, 1000, member.Points)
	assert.GreaterOrEqual(t, member.MemberLevel, models.MemberLevelPaid)
	require.NotNil(t, member.ExpiredAt)
	assert.WithinDuration(t, time.Now().AddDate(0, 0, 30), *member.ExpiredAt, time.Hour)

	var txCount int64
	require.NoError(t, db.Model(&models.PointTransaction{}).Count(&txCount).Error)
	assert.Equal(t, int64(1), txCount)
}

// TestOrderService_PayWithBalance_Insufficient 测试余额不足
func TestOrderService_PayWithBalance_Insufficient(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestOrderService()

	seedUserWithMember(t, db, 1, &models.Member{
		MemberLevel: models.MemberLevelFree,
		Balance:     decimal.NewFromFloat(1.00),
	})
	order := seedPendingOrder(t, db, "ORDP2", 1, 5, models.ProductTypePoints, "5.00")

	err := svc.PayWithBalance(context.Background(), order.ID, 1)
	assert.Equal(t, ErrBalanceNotEnough, err)

	// 失败时订单和余额都不变
	var got models.Order
	require.NoError(t, db.First(&got, order.ID).Error)
	assert.Equal(t, models.OrderStatusPending, got.Status)

	var member models.Member
	require.NoError(t, db.Where("user_id = ?", int64(1)).First(&member).Error)
	assert.True(t, member.Balance.Equal(decimal.NewFromFloat(1.00)))
}

// TestOrderService_Stats 测试订单统计
func TestOrderService_Stats(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestOrderService()

	seedUserWithMember(t, db, 1, &models.Member{Balance: decimal.NewFromFloat(100.00)})
	seedPendingOrder(t, db, "ORDS1", 1, 5, models.ProductTypePoints, "5.00")
	paid := seedPendingOrder(t, db, "ORDS2", 1, 5, models.ProductTypePoints, "5.00")
	require.NoError(t, svc.PayWithBalance(context.Background(), paid.ID, 1))

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalOrders)
	assert.Equal(t, int64(1), stats.PendingOrders)
	assert.Equal(t, int64(1), stats.PaidOrders)
	assert.True(t, stats.PaidAmount.Equal(decimal.NewFromFloat(5.00)))
}
