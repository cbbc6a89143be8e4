package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-member-core/internal/catalog"
	"github.com/golang-member-core/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAppID = "2021000000000001"

func newTestNotifyService(t *testing.T, signer *testSigner) *NotifyService {
	t.Helper()
	ledger := NewLedgerService(catalog.Default())
	return NewNotifyService(signer.verifier, testAppID, ledger, nil)
}

// notifyParams 构造一组签名合法的回调参数
func notifyParams(t *testing.T, signer *testSigner, orderNo, amount, tradeStatus string) map[string]string {
	params := map[string]string{
		"app_id":       testAppID,
		"out_trade_no": orderNo,
		"trade_no":     "2026083122001400000000000001",
		"total_amount": amount,
		"trade_status": tradeStatus,
		"notify_type":  "trade_status_sync",
		"charset":      "utf-8",
	}
	return signer.Sign(t, params)
}

// TestNotifyService_HandleNotify_PointsCredited 测试点数产品支付成功入账
func TestNotifyService_HandleNotify_PointsCredited(t *testing.T) {
	db := setupTestDB(t)
	signer := newTestSigner(t)
	svc := newTestNotifyService(t, signer)

	seedUserWithMember(t, db, 1, &models.Member{MemberLevel: models.MemberLevelFree, Points: 0})
	seedPendingOrder(t, db, "ORD20260831120000000001", 1, 5, models.ProductTypePoints, "5.00")

	params := notifyParams(t, signer, "ORD20260831120000000001", "5.00", "TRADE_SUCCESS")
	result, err := svc.HandleNotify(context.Background(), params)

	require.NoError(t, err)
	assert.True(t, result.PaidNow)

	var order models.Order
	require.NoError(t, db.Where("order_no = ?", "ORD20260831120000000001").First(&order).Error)
	assert.Equal(t, models.OrderStatusPaid, order.Status)
	assert.NotNil(t, order.PaymentTime)
	assert.Equal(t, "alipay", order.PaymentMethod)

	var member models.Member
	require.NoError(t, db.Where("user_id = ?", int64(1)).First(&member).Error)
	assert.Equal(t, 10, member.Points)

	var txCount int64
	require.NoError(t, db.Model(&models.PointTransaction{}).Where("user_id = ?", int64(1)).Count(&txCount).Error)
	assert.Equal(t, int64(1), txCount)

	var tx models.PointTransaction
	require.NoError(t, db.Where("user_id = ?", int64(1)).First(&tx).Error)
	assert.Equal(t, models.PointTxTypeRecharge, tx.Type)
	assert.Equal(t, 10, tx.Points)
	assert.Equal(t, 10, tx.BalanceAfter)
	assert.Contains(t, tx.Description, "ORD20260831120000000001")
}

// TestNotifyService_HandleNotify_DuplicateIsNoop 测试重复通知幂等
func TestNotifyService_HandleNotify_DuplicateIsNoop(t *testing.T) {
	db := setupTestDB(t)
	signer := newTestSigner(t)
	svc := newTestNotifyService(t, signer)

	seedUserWithMember(t, db, 1, &models.Member{MemberLevel: models.MemberLevelFree})
	seedPendingOrder(t, db, "ORD1", 1, 5, models.ProductTypePoints, "5.00")

	params := notifyParams(t, signer, "ORD1", "5.00", "TRADE_SUCCESS")

	first, err := svc.HandleNotify(context.Background(), params)
	require.NoError(t, err)
	assert.True(t, first.PaidNow)

	// 原样重放同一条通知，必须按成功应答且零变更
	second, err := svc.HandleNotify(context.Background(), params)
	require.NoError(t, err)
	assert.False(t, second.PaidNow)

	var member models.Member
	require.NoError(t, db.Where("user_id = ?", int64(1)).First(&member).Error)
	assert.Equal(t, 10, member.Points)

	var txCount int64
	require.NoError(t, db.Model(&models.PointTransaction{}).Count(&txCount).Error)
	assert.Equal(t, int64(1), txCount)
}

// TestNotifyService_HandleNotify_SubscriptionExtended 测试时长套餐顺延
func TestNotifyService_HandleNotify_SubscriptionExtended(t *testing.T) {
	db := setupTestDB(t)
	signer := newTestSigner(t)
	svc := newTestNotifyService(t, signer)

	// 会员已过期，时长应从当前时间起算
	expired := time.Now().AddDate(0, 0, -10)
	seedUserWithMember(t, db, 1, &models.Member{MemberLevel: models.MemberLevelFree, ExpiredAt: &expired})
	seedPendingOrder(t, db, "ORD2", 1, 6, models.ProductTypeSubscription, "15.00")

	params := notifyParams(t, signer, "ORD2", "15.00", "TRADE_FINISHED")
	result, err := svc.HandleNotify(context.Background(), params)
	require.NoError(t, err)
	assert.True(t, result.PaidNow)

	var member models.Member
	require.NoError(t, db.Where("user_id = ?", int64(1)).First(&member).Error)
	require.NotNil(t, member.ExpiredAt)
	assert.GreaterOrEqual(t, member.MemberLevel, models.MemberLevelPaid)

	expected := time.Now().AddDate(0, 0, 15)
	assert.WithinDuration(t, expected, *member.ExpiredAt, time.Hour)

	// 时长套餐不产生积分流水
	var txCount int64
	require.NoError(t, db.Model(&models.PointTransaction{}).Count(&txCount).Error)
	assert.Equal(t, int64(0), txCount)
}

// TestNotifyService_HandleNotify_AmountTampered 测试金额被篡改的通知
func TestNotifyService_HandleNotify_AmountTampered(t *testing.T) {
	db := setupTestDB(t)
	signer := newTestSigner(t)
	svc := newTestNotifyService(t, signer)

	seedUserWithMember(t, db, 1, &models.Member{MemberLevel: models.MemberLevelFree})
	seedPendingOrder(t, db, "ORD3", 1, 5, models.ProductTypePoints, "9.99")

	// 签名合法但通知金额与订单金额不符
	params := notifyParams(t, signer, "ORD3", "0.01", "TRADE_SUCCESS")
	_, err := svc.HandleNotify(context.Background(), params)
	require.Error(t, err)

	var order models.Order
	require.NoError(t, db.Where("order_no = ?", "ORD3").First(&order).Error)
	assert.Equal(t, models.OrderStatusPending, order.Status)

	var member models.Member
	require.NoError(t, db.Where("user_id = ?", int64(1)).First(&member).Error)
	assert.Equal(t, 0, member.Points)
}

// TestNotifyService_HandleNotify_InvalidSignature 测试签名非法
func TestNotifyService_HandleNotify_InvalidSignature(t *testing.T) {
	db := setupTestDB(t)
	signer := newTestSigner(t)
	svc := newTestNotifyService(t, signer)

	seedUserWithMember(t, db, 1, &models.Member{MemberLevel: models.MemberLevelFree})
	seedPendingOrder(t, db, "ORD4", 1, 5, models.ProductTypePoints, "5.00")

	// 签名后篡改参数
	params := notifyParams(t, signer, "ORD4", "5.00", "TRADE_SUCCESS")
	params["total_amount"] = "500.00"

	_, err := svc.HandleNotify(context.Background(), params)
	require.Error(t, err)

	var order models.Order
	require.NoError(t, db.Where("order_no = ?", "ORD4").First(&order).Error)
	assert.Equal(t, models.OrderStatusPending, order.Status)
}

// TestNotifyService_HandleNotify_AppIDMismatch 测试 app_id 不匹配
func TestNotifyService_HandleNotify_AppIDMismatch(t *testing.T) {
	db := setupTestDB(t)
	signer := newTestSigner(t)
	svc := newTestNotifyService(t, signer)

	seedUserWithMember(t, db, 1, &models.Member{MemberLevel: models.MemberLevelFree})
	seedPendingOrder(t, db, "ORD5", 1, 5, models.ProductTypePoints, "5.00")

	params := map[string]string{
		"app_id":       "9999000000000009",
		"out_trade_no": "ORD5",
		"total_amount": "5.00",
		"trade_status": "TRADE_SUCCESS",
	}
	signer.Sign(t, params)

	_, err := svc.HandleNotify(context.Background(), params)
	require.Error(t, err)
}

// TestNotifyService_HandleNotify_AppIDAbsent 测试通知缺少 app_id 字段
// 网关重试的合法通知可能不带 app_id，缺省时跳过该门，不能永久拒绝入账
func TestNotifyService_HandleNotify_AppIDAbsent(t *testing.T) {
	db := setupTestDB(t)
	signer := newTestSigner(t)
	svc := newTestNotifyService(t, signer)

	seedUserWithMember(t, db, 1, &models.Member{MemberLevel: models.MemberLevelFree})
	seedPendingOrder(t, db, "ORD9", 1, 5, models.ProductTypePoints, "5.00")

	params := signer.Sign(t, map[string]string{
		"out_trade_no": "ORD9",
		"total_amount": "5.00",
		"trade_status": "TRADE_SUCCESS",
	})

	result, err := svc.HandleNotify(context.Background(), params)
	require.NoError(t, err)
	assert.True(t, result.PaidNow)

	var order models.Order
	require.NoError(t, db.Where("order_no = ?", "ORD9").First(&order).Error)
	assert.Equal(t, models.OrderStatusPaid, order.Status)

	var member models.Member
	require.NoError(t, db.Where("user_id = ?", int64(1)).First(&member).Error)
	assert.Equal(t, 10, member.Points)
}

// TestNotifyService_MarkPaid_RequiresPendingRow 测试已支付状态前置条件
// 内存中的订单快照是待支付、数据库行已被并发通知改为已支付时，
// 更新必须零行命中并按重复通知处理，不能二次入账
func TestNotifyService_MarkPaid_RequiresPendingRow(t *testing.T) {
	db := setupTestDB(t)
	signer := newTestSigner(t)
	svc := newTestNotifyService(t, signer)

	seedUserWithMember(t, db, 1, &models.Member{MemberLevel: models.MemberLevelFree})
	order := seedPendingOrder(t, db, "ORD10", 1, 5, models.ProductTypePoints, "5.00")

	// 模拟并发通知抢先提交：行状态已是已支付，快照仍是待支付
	require.NoError(t, db.Model(&models.Order{}).
		Where("id = ?", order.ID).
		Update("status", models.OrderStatusPaid).Error)

	err := svc.markPaid(db, order, time.Now())
	assert.ErrorIs(t, err, errAlreadyPaid)

	// 待支付行正常命中
	fresh := seedPendingOrder(t, db, "ORD11", 1, 5, models.ProductTypePoints, "5.00")
	require.NoError(t, svc.markPaid(db, fresh, time.Now()))

	var got models.Order
	require.NoError(t, db.First(&got, fresh.ID).Error)
	assert.Equal(t, models.OrderStatusPaid, got.Status)
	assert.NotNil(t, got.PaymentTime)
}

// TestMarkerAmountMatches 测试去重标记的金额复核
func TestMarkerAmountMatches(t *testing.T) {
	amount := decimal.NewFromFloat(5.00)

	assert.True(t, markerAmountMatches("5.00", amount))
	assert.True(t, markerAmountMatches("5", amount))
	// 金额不一致或标记损坏时必须回落到事务路径
	assert.False(t, markerAmountMatches("0.01", amount))
	assert.False(t, markerAmountMatches("", amount))
	assert.False(t, markerAmountMatches("not-a-number", amount))
}

// TestNotifyService_HandleNotify_NonFinalTradeStatus 测试非终态交易状态
func TestNotifyService_HandleNotify_NonFinalTradeStatus(t *testing.T) {
	db := setupTestDB(t)
	signer := newTestSigner(t)
	svc := newTestNotifyService(t, signer)

	seedUserWithMember(t, db, 1, &models.Member{MemberLevel: models.MemberLevelFree})
	seedPendingOrder(t, db, "ORD6", 1, 5, models.ProductTypePoints, "5.00")

	params := notifyParams(t, signer, "ORD6", "5.00", "WAIT_BUYER_PAY")
	_, err := svc.HandleNotify(context.Background(), params)
	require.Error(t, err)

	var order models.Order
	require.NoError(t, db.Where("order_no = ?", "ORD6").First(&order).Error)
	assert.Equal(t, models.OrderStatusPending, order.Status)
}

// TestNotifyService_HandleNotify_OrderNotFound 测试订单不存在
func TestNotifyService_HandleNotify_OrderNotFound(t *testing.T) {
	setupTestDB(t)
	signer := newTestSigner(t)
	svc := newTestNotifyService(t, signer)

	params := notifyParams(t, signer, "ORD_MISSING", "5.00", "TRADE_SUCCESS")
	_, err := svc.HandleNotify(context.Background(), params)
	require.Error(t, err)
}

// TestNotifyService_HandleNotify_MemberMissing 测试会员记录缺失
// 订单存在但会员不存在属于数据完整性故障，必须按失败应答等待人工介入
func TestNotifyService_HandleNotify_MemberMissing(t *testing.T) {
	db := setupTestDB(t)
	signer := newTestSigner(t)
	svc := newTestNotifyService(t, signer)

	seedUserWithMember(t, db, 1, nil)
	seedPendingOrder(t, db, "ORD7", 1, 5, models.ProductTypePoints, "5.00")

	params := notifyParams(t, signer, "ORD7", "5.00", "TRADE_SUCCESS")
	_, err := svc.HandleNotify(context.Background(), params)
	require.Error(t, err)

	var order models.Order
	require.NoError(t, db.Where("order_no = ?", "ORD7").First(&order).Error)
	assert.Equal(t, models.OrderStatusPending, order.Status)
}

// TestNotifyService_QueryReturnOrder 测试同步回跳查询
func TestNotifyService_QueryReturnOrder(t *testing.T) {
	db := setupTestDB(t)
	signer := newTestSigner(t)
	svc := newTestNotifyService(t, signer)

	seedUserWithMember(t, db, 1, &models.Member{MemberLevel: models.MemberLevelFree})
	seedPendingOrder(t, db, "ORD8", 1, 5, models.ProductTypePoints, "5.00")

	params := signer.Sign(t, map[string]string{
		"app_id":       testAppID,
		"out_trade_no": "ORD8",
		"total_amount": "5.00",
	})
	order, err := svc.QueryReturnOrder(context.Background(), params)
	require.NoError(t, err)
	assert.Equal(t, "ORD8", order.OrderNo)
	// 回跳是只读查询，订单仍是待支付
	assert.Equal(t, models.OrderStatusPending, order.Status)
}
