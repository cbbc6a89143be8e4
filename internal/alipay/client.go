package alipay

import (
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/golang-member-core/config"
)

// Client 支付宝客户端
// 由应用启动时显式构造并注入订单创建服务，不使用进程级单例
type Client struct {
	AppID           string
	Gateway         string
	NotifyURL       string
	ReturnURL       string
	SignType        string
	appPrivateKey   *rsa.PrivateKey
	alipayPublicKey *rsa.PublicKey
	HTTPClient      *http.Client
}

// NewClient 根据配置创建支付宝客户端
// 密钥从配置指定的文件路径加载，加载失败返回错误而不是延迟到请求时崩溃
func NewClient(cfg *config.AlipayConfig) (*Client, error) {
	if !cfg.IsConfigured() {
		return nil, fmt.Errorf("支付宝配置不完整")
	}

	privateKey, err := LoadPrivateKey(cfg.PrivateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("加载应用私钥失败: %w", err)
	}

	publicKey, err := LoadPublicKey(cfg.AlipayPublicKeyPath)
	if err != nil {
		return nil, fmt.Errorf("加载支付宝公钥失败: %w", err)
	}

	gateway := cfg.Gateway
	if gateway == "" {
		gateway = "https://openapi.alipay.com/gateway.do"
	}

	return &Client{
		AppID:           cfg.AppID,
		Gateway:         gateway,
		NotifyURL:       cfg.NotifyURL,
		ReturnURL:       cfg.ReturnURL,
		SignType:        "RSA2",
		appPrivateKey:   privateKey,
		alipayPublicKey: publicKey,
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}, nil
}

// PublicKey 返回支付宝公钥（供验签器使用）
func (c *Client) PublicKey() *rsa.PublicKey {
	return c.alipayPublicKey
}

// TradeWapPay 手机网站支付，返回带签名的跳转地址
func (c *Client) TradeWapPay(subject, outTradeNo, totalAmount string) (string, error) {
	return c.pagePay("alipay.trade.wap.pay", "QUICK_WAP_WAY", subject, outTradeNo, totalAmount)
}

// TradePagePay 电脑网站支付，返回带签名的跳转地址
func (c *Client) TradePagePay(subject, outTradeNo, totalAmount string) (string, error) {
	return c.pagePay("alipay.trade.page.pay", "FAST_INSTANT_TRADE_PAY", subject, outTradeNo, totalAmount)
}

// pagePay 构建网页支付跳转地址
func (c *Client) pagePay(method, productCode, subject, outTradeNo, totalAmount string) (string, error) {
	bizContent := map[string]string{
		"subject":      subject,
		"out_trade_no": outTradeNo,
		"total_amount": totalAmount,
		"product_code": productCode,
	}

	bizContentJSON, err := json.Marshal(bizContent)
	if err != nil {
		return "", fmt.Errorf("序列化 biz_content 失败: %w", err)
	}

	params := map[string]string{
		"app_id":      c.AppID,
		"method":      method,
		"format":      "JSON",
		"charset":     "utf-8",
		"sign_type":   c.SignType,
		"timestamp":   time.Now().Format("2006-01-02 15:04:05"),
		"version":     "1.0",
		"notify_url":  c.NotifyURL,
		"return_url":  c.ReturnURL,
		"biz_content": string(bizContentJSON),
	}

	sign, err := signParams(params, c.appPrivateKey)
	if err != nil {
		return "", fmt.Errorf("生成签名失败: %w", err)
	}
	params["sign"] = sign

	return c.Gateway + "?" + buildQueryString(params), nil
}

// BuildSchemeURL 构建支付宝 App 唤起链接
func BuildSchemeURL(payURL string) string {
	return "alipays://platformapi/startapp?appId=20000067&url=" + url.QueryEscape(payURL)
}

// buildQueryString 构建查询字符串
func buildQueryString(params map[string]string) string {
	values := url.Values{}
	for k, v := range params {
		if v != "" {
			values.Set(k, v)
		}
	}
	return values.Encode()
}
