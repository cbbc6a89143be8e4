package alipay

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pkcs1PrivatePEM(key *rsa.PrivateKey) string {
	return string(pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	}))
}

func pkcs8PrivatePEM(t *testing.T, key *rsa.PrivateKey) string {
	t.Helper()
	der, err := x509.MarshalPKCS8PrivateKey(key)
	require.NoError(t, err)
	return string(pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}))
}

func pkixPublicPEM(t *testing.T, key *rsa.PublicKey) string {
	t.Helper()
	der, err := x509.MarshalPKIXPublicKey(key)
	require.NoError(t, err)
	return string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}))
}

// TestParsePrivateKey_Formats 测试多种私钥格式的解析
func TestParsePrivateKey_Formats(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	// 标准 PKCS1 PEM
	parsed, err := ParsePrivateKey(pkcs1PrivatePEM(key))
	require.NoError(t, err)
	assert.Equal(t, key.N, parsed.N)

	// PKCS8 PEM
	parsed, err = ParsePrivateKey(pkcs8PrivatePEM(t, key))
	require.NoError(t, err)
	assert.Equal(t, key.N, parsed.N)

	// 支付宝后台常见的裸 Base64（无 PEM 头、无换行）
	bare := base64.StdEncoding.EncodeToString(x509.MarshalPKCS1PrivateKey(key))
	parsed, err = ParsePrivateKey(bare)
	require.NoError(t, err)
	assert.Equal(t, key.N, parsed.N)
}

// TestParsePublicKey_Formats 测试多种公钥格式的解析
func TestParsePublicKey_Formats(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	parsed, err := ParsePublicKey(pkixPublicPEM(t, &key.PublicKey))
	require.NoError(t, err)
	assert.Equal(t, key.PublicKey.N, parsed.N)

	// 裸 Base64
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	parsed, err = ParsePublicKey(base64.StdEncoding.EncodeToString(der))
	require.NoError(t, err)
	assert.Equal(t, key.PublicKey.N, parsed.N)
}

// TestParseKey_Invalid 测试非法密钥串
func TestParseKey_Invalid(t *testing.T) {
	_, err := ParsePrivateKey("")
	assert.Error(t, err)

	_, err = ParsePrivateKey("not-a-key")
	assert.Error(t, err)

	_, err = ParsePublicKey("")
	assert.Error(t, err)
}

// TestLoadKeysFromFile 测试从文件加载密钥
func TestLoadKeysFromFile(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	dir := t.TempDir()
	privatePath := filepath.Join(dir, "app_private.pem")
	publicPath := filepath.Join(dir, "alipay_public.pem")
	require.NoError(t, os.WriteFile(privatePath, []byte(pkcs1PrivatePEM(key)), 0600))
	require.NoError(t, os.WriteFile(publicPath, []byte(pkixPublicPEM(t, &key.PublicKey)), 0600))

	privateKey, err := LoadPrivateKey(privatePath)
	require.NoError(t, err)
	assert.Equal(t, key.N, privateKey.N)

	publicKey, err := LoadPublicKey(publicPath)
	require.NoError(t, err)
	assert.Equal(t, key.PublicKey.N, publicKey.N)

	_, err = LoadPrivateKey(filepath.Join(dir, "missing.pem"))
	assert.Error(t, err)
}
