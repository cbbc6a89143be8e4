package service

// BizError 业务处理错误
type BizError struct {
	Code    int
	Message string
}

func (e *BizError) Error() string {
	return e.Message
}

// 业务错误码定义
const (
	ErrCodePayNotConfigured  = 6101
	ErrCodeProductNotFound   = 6102
	ErrCodeProductNotPayable = 6103
	ErrCodeAmountMismatch    = 6104
	ErrCodeOrderNoConflict   = 6105
	ErrCodeGatewayFailed     = 6106
	ErrCodeCreateFailed      = 6107
	ErrCodeOrderNotFound     = 6201
	ErrCodePermissionDenied  = 6202
	ErrCodeOrderStateInvalid = 6203
	ErrCodeBalanceNotEnough  = 6204
	ErrCodeMemberNotFound    = 6205
	ErrCodeSystemBusy        = 9999
)

// 错误消息定义
var (
	ErrPayNotConfigured  = &BizError{Code: ErrCodePayNotConfigured, Message: "支付宝支付未配置，请联系管理员"}
	ErrProductNotFound   = &BizError{Code: ErrCodeProductNotFound, Message: "产品不存在"}
	ErrProductNotPayable = &BizError{Code: ErrCodeProductNotPayable, Message: "暂不支持该产品类型通过支付宝充值"}
	ErrAmountMismatch    = &BizError{Code: ErrCodeAmountMismatch, Message: "金额与产品配置不一致"}
	ErrOrderNoConflict   = &BizError{Code: ErrCodeOrderNoConflict, Message: "订单号冲突，请重试"}
	ErrGatewayFailed     = &BizError{Code: ErrCodeGatewayFailed, Message: "创建支付宝支付链接失败"}
	ErrCreateFailed      = &BizError{Code: ErrCodeCreateFailed, Message: "创建订单失败"}
	ErrOrderNotFound     = &BizError{Code: ErrCodeOrderNotFound, Message: "订单不存在"}
	ErrPermissionDenied  = &BizError{Code: ErrCodePermissionDenied, Message: "权限不足"}
	ErrOrderStateInvalid = &BizError{Code: ErrCodeOrderStateInvalid, Message: "订单状态不允许该操作"}
	ErrBalanceNotEnough  = &BizError{Code: ErrCodeBalanceNotEnough, Message: "余额不足"}
	ErrMemberNotFound    = &BizError{Code: ErrCodeMemberNotFound, Message: "会员信息不存在"}
	ErrSystemBusy        = &BizError{Code: ErrCodeSystemBusy, Message: "系统繁忙，请稍后重试"}
)

// NewBizError 创建业务错误
func NewBizError(code int, message string) *BizError {
	return &BizError{Code: code, Message: message}
}
