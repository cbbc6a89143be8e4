package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-member-core/internal/alipay"
	"github.com/golang-member-core/internal/database"
	"github.com/golang-member-core/internal/logger"
	"github.com/golang-member-core/internal/models"
	"github.com/golang-member-core/internal/mq"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// errAlreadyPaid 重复通知哨兵错误
// 订单已是已支付状态时用它回滚事务，调用方按成功应答
var errAlreadyPaid = errors.New("订单已支付")

// notifyFault 通知处理失败原因
// reason 同时用于日志和指标标签
type notifyFault struct {
	reason string
	err    error
}

func (f *notifyFault) Error() string {
	if f.err != nil {
		return fmt.Sprintf("%s: %v", f.reason, f.err)
	}
	return f.reason
}

func (f *notifyFault) Unwrap() error {
	return f.err
}

func fault(reason string, err error) *notifyFault {
	return &notifyFault{reason: reason, err: err}
}

// NotifyResult 异步通知处理结果
type NotifyResult struct {
	OrderNo string
	// PaidNow 本次通知是否实际完成了入账（重复通知为 false）
	PaidNow bool
}

// NotifyService 支付宝异步通知处理服务
type NotifyService struct {
	verifier *alipay.Verifier
	appID    string
	ledger   *LedgerService
	mqClient *mq.RocketMQClient
}

// NewNotifyService 创建通知处理服务
func NewNotifyService(verifier *alipay.Verifier, appID string, ledger *LedgerService, mqClient *mq.RocketMQClient) *NotifyService {
	return &NotifyService{
		verifier: verifier,
		appID:    appID,
		ledger:   ledger,
		mqClient: mqClient,
	}
}

// HandleNotify 处理支付宝异步通知
// 返回 error 非空时应答 failure，支付宝会按退避策略重发；
// 返回成功时应答 success，无论本次是首次入账还是重复通知
func (s *NotifyService) HandleNotify(ctx context.Context, params map[string]string) (*NotifyResult, error) {
	result, err := s.handle(ctx, params)
	if err != nil {
		reason := "internal"
		var f *notifyFault
		if errors.As(err, &f) {
			reason = f.reason
		}
		alipayNotifyTotal.WithLabelValues("failure", reason).Inc()
		logger.Logger.Error("支付宝异步通知处理失败",
			zap.String("out_trade_no", params["out_trade_no"]),
			zap.String("trade_no", params["trade_no"]),
			zap.String("reason", reason),
			zap.Error(err))
		return nil, err
	}

	if result.PaidNow {
		alipayNotifyTotal.WithLabelValues("success", "paid").Inc()
		logger.Logger.Info("支付宝支付成功，订单已入账",
			zap.String("order_no", result.OrderNo),
			zap.String("trade_no", params["trade_no"]))
	} else {
		alipayNotifyTotal.WithLabelValues("success", "duplicate").Inc()
		logger.Logger.Info("支付宝重复通知，订单已处理过",
			zap.String("order_no", result.OrderNo))
	}
	return result, nil
}

func (s *NotifyService) handle(ctx context.Context, params map[string]string) (*NotifyResult, error) {
	// 1. 验签，签名不过直接拒绝，不读任何业务字段
	if !s.verifier.Verify(params) {
		return nil, fault("sign_invalid", nil)
	}

	// 2. 通知带了 app_id 且本应用配置了 app_id 时，两者必须一致；
	// 任一方为空则跳过该门，不能把合法通知挡在门外
	if appID := params["app_id"]; appID != "" && s.appID != "" && appID != s.appID {
		return nil, fault("app_id_mismatch", fmt.Errorf("app_id=%s", appID))
	}

	orderNo := params["out_trade_no"]
	if orderNo == "" {
		return nil, fault("order_no_missing", nil)
	}

	notifyAmount, err := decimal.NewFromString(params["total_amount"])
	if err != nil {
		return nil, fault("amount_invalid", err)
	}

	tradeStatus := params["trade_status"]

	// 已处理标记的快速路径：验签通过且金额与入账金额一致的重复通知不用再进数据库；
	// 金额不一致或 Redis 不可用时落回事务路径，行锁和 CAS 仍是最终防线
	doneKey := "alipay:notify:done:" + orderNo
	if database.RDB != nil {
		if stored, err := database.RDB.Get(ctx, doneKey).Result(); err == nil &&
			markerAmountMatches(stored, notifyAmount) {
			return &NotifyResult{OrderNo: orderNo, PaidNow: false}, nil
		}
	}

	result := &NotifyResult{OrderNo: orderNo}
	now := time.Now()
	var paidOrder models.Order

	txErr := database.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 3. 按订单号取订单并加行锁，同一订单的并发通知在此串行化
		var order models.Order
		if err := lockForUpdate(tx).
			Where("order_no = ?", orderNo).
			First(&order).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fault("order_not_found", nil)
			}
			return fault("order_query_failed", err)
		}

		// 4. 金额精确比对，防止篡改金额的假通知
		if !notifyAmount.Equal(order.Amount) {
			return fault("amount_mismatch",
				fmt.Errorf("notify=%s order=%s", notifyAmount.String(), order.Amount.String()))
		}

		// 5. 幂等：已支付订单直接回滚，按成功应答
		if order.Status == models.OrderStatusPaid {
			return errAlreadyPaid
		}
		if order.Status != models.OrderStatusPending {
			return fault("order_state_invalid", fmt.Errorf("status=%d", order.Status))
		}

		// 6. 只有终态成功才入账，WAIT_BUYER_PAY 等中间态按失败应答等待重发
		if tradeStatus != "TRADE_SUCCESS" && tradeStatus != "TRADE_FINISHED" {
			return fault("trade_status_not_success", fmt.Errorf("trade_status=%s", tradeStatus))
		}

		// 7. 会员信息缺失属于数据完整性故障，不能静默吞掉
		var member models.Member
		if err := tx.Where("user_id = ?", order.UserID).First(&member).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fault("member_not_found", fmt.Errorf("user_id=%d", order.UserID))
			}
			return fault("member_query_failed", err)
		}

		// 8. 产品效果入账（积分或会员时长）
		if err := s.ledger.ApplyPaymentEffect(tx, &order, &member, now); err != nil {
			return fault("apply_effect_failed", err)
		}

		// 9. CAS 标记已支付，行锁之外再加一道状态前置条件
		if err := s.markPaid(tx, &order, now); err != nil {
			return err
		}

		result.PaidNow = true
		result.OrderNo = order.OrderNo
		paidOrder = order
		return nil
	})

	if txErr != nil {
		// 重复通知：事务已回滚、零变更，对支付宝仍是成功
		if errors.Is(txErr, errAlreadyPaid) {
			result.PaidNow = false
			return result, nil
		}
		var f *notifyFault
		if errors.As(txErr, &f) {
			return nil, txErr
		}
		return nil, fault("tx_failed", txErr)
	}

	// 提交之后再写去重标记和发布事件，失败不影响对支付宝的应答
	// 标记值记录入账金额，快速路径用它复核重放通知的金额
	if result.PaidNow {
		if database.RDB != nil {
			database.RDB.Set(ctx, doneKey, paidOrder.Amount.StringFixed(2), 24*time.Hour)
		}
		s.publishPaid(ctx, &paidOrder, now)
	}
	return result, nil
}

// markerAmountMatches 已处理标记中的金额是否与本次通知一致
// 标记损坏或金额不一致时一律回落到事务路径
func markerAmountMatches(stored string, amount decimal.Decimal) bool {
	v, err := decimal.NewFromString(stored)
	if err != nil {
		return false
	}
	return v.Equal(amount)
}

// markPaid 带状态前置条件地将订单置为已支付
// 数据库行已不是待支付时返回 errAlreadyPaid，调用方按重复通知处理
func (s *NotifyService) markPaid(tx *gorm.DB, order *models.Order, now time.Time) error {
	res := tx.Model(&models.Order{}).
		Where("id = ? AND status = ?", order.ID, models.OrderStatusPending).
		Updates(map[string]interface{}{
			"status":         models.OrderStatusPaid,
			"payment_method": "alipay",
			"payment_time":   now,
		})
	if res.Error != nil {
		return fault("mark_paid_failed", res.Error)
	}
	if res.RowsAffected == 0 {
		return errAlreadyPaid
	}
	return nil
}

// publishPaid 发布支付成功事件
// 发布失败只记日志，不影响对支付宝的应答
func (s *NotifyService) publishPaid(ctx context.Context, order *models.Order, paidAt time.Time) {
	if !s.mqClient.IsEnabled() {
		return
	}
	msg := &mq.OrderPaidMessage{
		OrderNo:       order.OrderNo,
		UserID:        order.UserID,
		ProductID:     order.ProductID,
		ProductType:   order.ProductType,
		Amount:        order.Amount.StringFixed(2),
		PaymentMethod: "alipay",
		PaymentTime:   paidAt.Format("2006-01-02 15:04:05"),
	}
	if err := s.mqClient.PublishOrderPaid(ctx, msg); err != nil {
		logger.Logger.Warn("发布订单支付事件失败",
			zap.String("order_no", order.OrderNo),
			zap.Error(err))
	}
}

// QueryReturnOrder 同步回跳页面的只读订单查询
// 回跳不做任何入账，仅向用户展示当前订单状态
func (s *NotifyService) QueryReturnOrder(ctx context.Context, params map[string]string) (*models.Order, error) {
	if !s.verifier.Verify(params) {
		return nil, fault("sign_invalid", nil)
	}
	orderNo := params["out_trade_no"]
	if orderNo == "" {
		return nil, fault("order_no_missing", nil)
	}

	var order models.Order
	if err := database.DB.WithContext(ctx).Where("order_no = ?", orderNo).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}
