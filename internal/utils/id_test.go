package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestGenerateOrderNo 测试订单号格式
func TestGenerateOrderNo(t *testing.T) {
	orderNo := GenerateOrderNo()

	// 前缀(3) + 秒级时间戳(14) + 随机数字(6)
	assert.True(t, strings.HasPrefix(orderNo, "ORD"))
	assert.Len(t, orderNo, 23)

	for _, c := range orderNo[3:] {
		assert.True(t, c >= '0' && c <= '9', "unexpected char %q in %s", c, orderNo)
	}
}

// TestGenerateOrderNo_Distinct 测试连续生成的离散性
func TestGenerateOrderNo_Distinct(t *testing.T) {
	seen := make(map[string]bool)
	dup := 0
	for i := 0; i < 100; i++ {
		no := GenerateOrderNo()
		if seen[no] {
			dup++
		}
		seen[no] = true
	}
	// 同一秒内 6 位随机数撞号概率极低；真正的唯一性由数据库唯一索引兜底
	assert.LessOrEqual(t, dup, 1)
}
