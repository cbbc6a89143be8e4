package alipay

import (
	"crypto"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"strings"

	"github.com/golang-member-core/internal/logger"
	"go.uber.org/zap"
)

// Verifier 支付宝回调验签器
// 纯函数式组件：不访问网络、不产生副作用，验签结果只用布尔值表达，
// 所有失败路径打日志但绝不向调用方抛错
type Verifier struct {
	publicKey *rsa.PublicKey
}

// NewVerifier 从公钥文件创建验签器
func NewVerifier(publicKeyPath string) (*Verifier, error) {
	publicKey, err := LoadPublicKey(publicKeyPath)
	if err != nil {
		return nil, err
	}
	return &Verifier{publicKey: publicKey}, nil
}

// NewVerifierFromKey 从已解析的公钥创建验签器
func NewVerifierFromKey(publicKey *rsa.PublicKey) *Verifier {
	return &Verifier{publicKey: publicKey}
}

// Verify 验证支付宝回调签名（RSA2 / SHA-256）
// 入参是完整的回调参数集（包含 sign 和 sign_type）
func (v *Verifier) Verify(params map[string]string) bool {
	if v == nil || v.publicKey == nil {
		logger.Logger.Error("验签失败", zap.String("reason", "public_key_missing"))
		return false
	}

	sign, ok := params["sign"]
	if !ok || sign == "" {
		logger.Logger.Warn("验签失败", zap.String("reason", "sign_missing"))
		return false
	}

	content := BuildSignContent(params)
	if content == "" {
		logger.Logger.Warn("验签失败", zap.String("reason", "empty_content"))
		return false
	}

	signature, err := decodeSign(sign)
	if err != nil {
		logger.Logger.Warn("验签失败",
			zap.String("reason", "sign_decode_failed"),
			zap.Error(err))
		return false
	}

	hashed := sha256.Sum256([]byte(content))
	if err := rsa.VerifyPKCS1v15(v.publicKey, crypto.SHA256, hashed[:], signature); err != nil {
		logger.Logger.Warn("验签失败",
			zap.String("reason", "signature_mismatch"),
			zap.Error(err))
		return false
	}

	return true
}

// decodeSign 解码 Base64 签名
// 表单传输会把 + 还原成空格、丢掉尾部 =，解码前先修复
func decodeSign(sign string) ([]byte, error) {
	s := strings.TrimSpace(sign)
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, "\n", "")
	s = strings.ReplaceAll(s, "\t", "")
	s = strings.ReplaceAll(s, " ", "+")
	if m := len(s) % 4; m != 0 {
		s += strings.Repeat("=", 4-m)
	}
	return base64.StdEncoding.DecodeString(s)
}
