package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PointTransaction 点数交易记录模型
// 只追加的流水表，任何积分变动都要落一条记录，不允许更新和删除
type PointTransaction struct {
	ID           int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID       int64           `gorm:"index;not null;comment:关联用户" json:"user_id"`
	Type         int             `gorm:"not null;comment:交易类型: 1充值 2消费 3退款" json:"type"`
	Points       int             `gorm:"not null;comment:交易点数" json:"points"`
	BalanceAfter int             `gorm:"not null;comment:交易后积分余额" json:"balance_after"`
	Amount       decimal.Decimal `gorm:"type:decimal(10,2);comment:金额（充值时）" json:"amount"`
	Description  string          `gorm:"type:text;comment:交易描述" json:"description,omitempty"`
	RelatedID    int64           `gorm:"comment:关联ID（订单ID等）" json:"related_id,omitempty"`
	RelatedType  string          `gorm:"type:varchar(50);comment:关联类型" json:"related_type,omitempty"`
	CreatedAt    time.Time       `gorm:"index" json:"created_at"`
}

// TableName 指定表名
func (PointTransaction) TableName() string {
	return "point_transactions"
}

// 交易类型常量
const (
	PointTxTypeRecharge    = 1 // 充值
	PointTxTypeConsumption = 2 // 消费
	PointTxTypeRefund      = 3 // 退款
)

// TypeText 交易类型文本
func (t *PointTransaction) TypeText() string {
	switch t.Type {
	case PointTxTypeRecharge:
		return "充值"
	case PointTxTypeConsumption:
		return "消费"
	case PointTxTypeRefund:
		return "退款"
	default:
		return "未知类型"
	}
}
