package alipay

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"sort"
	"strings"
)

// BuildSignContent 构建待签名字符串
// 剔除 sign/sign_type 和空值字段，按 key 字节序排序后以 key=value&... 拼接
func BuildSignContent(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k, v := range params {
		if k == "sign" || k == "sign_type" || v == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var content strings.Builder
	for i, k := range keys {
		if i > 0 {
			content.WriteString("&")
		}
		content.WriteString(k)
		content.WriteString("=")
		content.WriteString(params[k])
	}
	return content.String()
}

// signParams 生成 RSA2 签名
func signParams(params map[string]string, privateKey *rsa.PrivateKey) (string, error) {
	content := BuildSignContent(params)
	if content == "" {
		return "", fmt.Errorf("待签名字符串为空")
	}

	hashed := sha256.Sum256([]byte(content))
	signature, err := rsa.SignPKCS1v15(rand.Reader, privateKey, crypto.SHA256, hashed[:])
	if err != nil {
		return "", fmt.Errorf("签名失败: %w", err)
	}

	return base64.StdEncoding.EncodeToString(signature), nil
}
