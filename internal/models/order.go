package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order 订单模型
type Order struct {
	ID            int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderNo       string          `gorm:"uniqueIndex;type:varchar(32);not null;comment:订单号" json:"order_no"`
	UserID        int64           `gorm:"index;not null;comment:关联用户" json:"user_id"`
	ProductID     int             `gorm:"comment:产品ID" json:"product_id"`
	ProductType   string          `gorm:"type:varchar(20);not null;comment:产品类型: points, subscription, member, service" json:"product_type"`
	Amount        decimal.Decimal `gorm:"type:decimal(10,2);not null;comment:订单金额" json:"amount"`
	Quantity      int             `gorm:"default:1;not null;comment:数量" json:"quantity"`
	Status        int             `gorm:"index;default:1;not null;comment:状态: 1待支付 2已支付 3已取消 4已退款" json:"status"`
	PaymentMethod string          `gorm:"type:varchar(20);comment:支付方式" json:"payment_method,omitempty"`
	PaymentTime   *time.Time      `gorm:"comment:支付时间" json:"payment_time,omitempty"`
	Description   string          `gorm:"type:text;comment:订单描述" json:"description,omitempty"`
	CreatedAt     time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`

	// 关联关系
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}

// 订单状态常量
// 状态只允许单向流转: 待支付->已支付 / 待支付->已取消 / 已支付->已退款
const (
	OrderStatusPending   = 1 // 待支付
	OrderStatusPaid      = 2 // 已支付
	OrderStatusCancelled = 3 // 已取消
	OrderStatusRefunded  = 4 // 已退款
)

// 产品类型常量
const (
	ProductTypePoints       = "points"       // 点数充值
	ProductTypeSubscription = "subscription" // 时长套餐
	ProductTypeMember       = "member"       // 会员套餐
	ProductTypeService      = "service"      // 增值服务
)

// StatusText 状态文本
func (o *Order) StatusText() string {
	switch o.Status {
	case OrderStatusPending:
		return "待支付"
	case OrderStatusPaid:
		return "已支付"
	case OrderStatusCancelled:
		return "已取消"
	case OrderStatusRefunded:
		return "已退款"
	default:
		return "未知状态"
	}
}

// IsPaid 是否已支付
func (o *Order) IsPaid() bool {
	return o.Status == OrderStatusPaid
}

// CanPay 是否可以支付
func (o *Order) CanPay() bool {
	return o.Status == OrderStatusPending
}

// CanCancel 是否可以取消
func (o *Order) CanCancel() bool {
	return o.Status == OrderStatusPending
}

// CanRefund 是否可以退款
func (o *Order) CanRefund() bool {
	return o.Status == OrderStatusPaid
}
