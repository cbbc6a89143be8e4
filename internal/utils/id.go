package utils

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/golang-member-core/config"
)

// GenerateOrderNo 生成订单号
// 前缀 + 秒级时间戳 + 6位随机数字；唯一性最终由订单表的唯一索引保证，
// 撞号时按可重试的创建失败处理
func GenerateOrderNo() string {
	prefix := "ORD"
	if config.Cfg != nil && config.Cfg.Payment.OrderPrefix != "" {
		prefix = config.Cfg.Payment.OrderPrefix
	}
	timestamp := time.Now().Format("20060102150405")
	random := 100000 + rand.Intn(900000)
	return fmt.Sprintf("%s%s%06d", prefix, timestamp, random)
}
