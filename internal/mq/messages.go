package mq

// OrderPaidMessage 订单支付成功消息
// 对账提交后发布，供下游（统计、通知、运营系统）消费
type OrderPaidMessage struct {
	OrderNo       string `json:"order_no"`
	UserID        int64  `json:"user_id"`
	ProductID     int    `json:"product_id"`
	ProductType   string `json:"product_type"`
	Amount        string `json:"amount"`         // 精确小数字符串
	PaymentMethod string `json:"payment_method"`
	PaymentTime   string `json:"payment_time"` // 格式：2006-01-02 15:04:05
}
