package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-member-core/internal/catalog"
	"github.com/golang-member-core/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ErrProductConfig 产品配置错误（类型未知、定义缺失或配置值非法）
var ErrProductConfig = errors.New("产品配置不正确")

// LedgerService 积分/会员账本服务
// 会员积分、余额、到期时间和订单支付状态的唯一写入口；
// 所有变更都通过调用方传入的事务对象执行，保证和订单状态流转一起提交或回滚
type LedgerService struct {
	catalog catalog.Catalog
}

// NewLedgerService 创建账本服务
func NewLedgerService(cat catalog.Catalog) *LedgerService {
	return &LedgerService{catalog: cat}
}

// ApplyPaymentEffect 对已确认支付的订单施加产品效果
// points: 入账产品配置的点数并追加一条充值流水
// subscription: 顺延会员到期时间并提升会员等级，不产生积分流水
// member: 会员套餐，顺延会员时长并入账套餐附带的点数
// 其他类型或配置非法: 返回 ErrProductConfig，调用方整体回滚
func (s *LedgerService) ApplyPaymentEffect(tx *gorm.DB, order *models.Order, member *models.Member, now time.Time) error {
	switch order.ProductType {
	case models.ProductTypePoints:
		return s.creditOrderPoints(tx, order, member)
	case models.ProductTypeSubscription:
		return s.extendOrderMembership(tx, order, member, now)
	case models.ProductTypeMember:
		return s.applyMemberPackage(tx, order, member, now)
	default:
		return fmt.Errorf("%w: 不支持的产品类型 %s", ErrProductConfig, order.ProductType)
	}
}

// applyMemberPackage 会员套餐入账
// 套餐同时携带会员时长和赠送点数，点数入账落一条流水
func (s *LedgerService) applyMemberPackage(tx *gorm.DB, order *models.Order, member *models.Member, now time.Time) error {
	product, ok := s.catalog.Lookup(order.ProductID, models.ProductTypeMember)
	if !ok {
		return fmt.Errorf("%w: 会员套餐不存在 product_id=%d", ErrProductConfig, order.ProductID)
	}
	if product.Duration <= 0 {
		return fmt.Errorf("%w: 套餐时长配置非法 product_id=%d duration=%d", ErrProductConfig, product.ID, product.Duration)
	}

	expiredAt := member.ExtendMembership(product.Duration, now)
	updates := map[string]interface{}{
		"expired_at":   expiredAt,
		"member_level": member.MemberLevel,
	}

	if product.Points > 0 {
		updates["points"] = member.AddPoints(product.Points)
	}
	if err := tx.Model(&models.Member{}).
		Where("id = ?", member.ID).
		Updates(updates).Error; err != nil {
		return fmt.Errorf("更新会员套餐失败: %w", err)
	}

	if product.Points > 0 {
		transaction := &models.PointTransaction{
			UserID:       member.UserID,
			Type:         models.PointTxTypeRecharge,
			Points:       product.Points,
			BalanceAfter: member.Points,
			Amount:       order.Amount,
			Description:  fmt.Sprintf("会员套餐赠送：%s", order.OrderNo),
			RelatedID:    order.ID,
			RelatedType:  "order",
		}
		if err := tx.Create(transaction).Error; err != nil {
			return fmt.Errorf("创建积分流水失败: %w", err)
		}
		pointsCreditedTotal.Add(float64(product.Points))
	}

	return nil
}

// creditOrderPoints 点数产品入账
func (s *LedgerService) creditOrderPoints(tx *gorm.DB, order *models.Order, member *models.Member) error {
	product, ok := s.catalog.Lookup(order.ProductID, models.ProductTypePoints)
	if !ok {
		return fmt.Errorf("%w: 点数产品不存在 product_id=%d", ErrProductConfig, order.ProductID)
	}
	if product.Points <= 0 {
		return fmt.Errorf("%w: 点数配置非法 product_id=%d points=%d", ErrProductConfig, product.ID, product.Points)
	}

	balanceAfter := member.AddPoints(product.Points)
	if err := tx.Model(&models.Member{}).
		Where("id = ?", member.ID).
		Update("points", balanceAfter).Error; err != nil {
		return fmt.Errorf("更新会员积分失败: %w", err)
	}

	transaction := &models.PointTransaction{
		UserID:       member.UserID,
		Type:         models.PointTxTypeRecharge,
		Points:       product.Points,
		BalanceAfter: balanceAfter,
		Amount:       order.Amount,
		Description:  fmt.Sprintf("支付宝充值：%s", order.OrderNo),
		RelatedID:    order.ID,
		RelatedType:  "alipay",
	}
	if err := tx.Create(transaction).Error; err != nil {
		return fmt.Errorf("创建积分流水失败: %w", err)
	}

	pointsCreditedTotal.Add(float64(product.Points))
	return nil
}

// extendOrderMembership 时长套餐入账
func (s *LedgerService) extendOrderMembership(tx *gorm.DB, order *models.Order, member *models.Member, now time.Time) error {
	product, ok := s.catalog.Lookup(order.ProductID, models.ProductTypeSubscription)
	if !ok {
		return fmt.Errorf("%w: 时长产品不存在 product_id=%d", ErrProductConfig, order.ProductID)
	}
	if product.Duration <= 0 {
		return fmt.Errorf("%w: 时长配置非法 product_id=%d duration=%d", ErrProductConfig, product.ID, product.Duration)
	}

	expiredAt := member.ExtendMembership(product.Duration, now)
	if err := tx.Model(&models.Member{}).
		Where("id = ?", member.ID).
		Updates(map[string]interface{}{
			"expired_at":   expiredAt,
			"member_level": member.MemberLevel,
		}).Error; err != nil {
		return fmt.Errorf("更新会员时长失败: %w", err)
	}

	return nil
}

// DeductBalance 扣减会员余额并落积分流水外的支付动作
// 余额不足时不产生任何写入
func (s *LedgerService) DeductBalance(tx *gorm.DB, member *models.Member, amount decimal.Decimal) error {
	ok, balanceAfter := member.DeductBalance(amount)
	if !ok {
		return ErrBalanceNotEnough
	}
	if err := tx.Model(&models.Member{}).
		Where("id = ?", member.ID).
		Update("balance", balanceAfter).Error; err != nil {
		return fmt.Errorf("更新会员余额失败: %w", err)
	}
	return nil
}

// CreditPointsForOrder 余额支付点数产品时的积分入账
func (s *LedgerService) CreditPointsForOrder(tx *gorm.DB, order *models.Order, member *models.Member) error {
	product, ok := s.catalog.Lookup(order.ProductID, models.ProductTypePoints)
	if !ok {
		return fmt.Errorf("%w: 点数产品不存在 product_id=%d", ErrProductConfig, order.ProductID)
	}
	if product.Points <= 0 {
		return fmt.Errorf("%w: 点数配置非法 product_id=%d", ErrProductConfig, product.ID)
	}

	balanceAfter := member.AddPoints(product.Points)
	if err := tx.Model(&models.Member{}).
		Where("id = ?", member.ID).
		Update("points", balanceAfter).Error; err != nil {
		return fmt.Errorf("更新会员积分失败: %w", err)
	}

	transaction := &models.PointTransaction{
		UserID:       member.UserID,
		Type:         models.PointTxTypeRecharge,
		Points:       product.Points,
		BalanceAfter: balanceAfter,
		Amount:       order.Amount,
		Description:  fmt.Sprintf("订单支付：%s", order.OrderNo),
		RelatedID:    order.ID,
		RelatedType:  "order",
	}
	if err := tx.Create(transaction).Error; err != nil {
		return fmt.Errorf("创建积分流水失败: %w", err)
	}

	return nil
}
