package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Member 会员模型
// 积分、余额、会员时长的唯一载体，每个用户一条记录
type Member struct {
	ID          int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      int64           `gorm:"uniqueIndex;not null;comment:关联用户" json:"user_id"`
	MemberLevel int             `gorm:"default:1;not null;comment:会员等级" json:"member_level"`
	Points      int             `gorm:"default:0;not null;comment:积分点数" json:"points"`
	Balance     decimal.Decimal `gorm:"type:decimal(10,2);default:0.00;not null;comment:余额" json:"balance"`
	ExpiredAt   *time.Time      `gorm:"comment:会员到期时间" json:"expired_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// TableName 指定表名
func (Member) TableName() string {
	return "members"
}

// 会员等级常量
const (
	MemberLevelFree = 1 // 免费会员
	MemberLevelPaid = 2 // 付费会员（首个付费档位）
)

// IsExpired 会员是否已过期
func (m *Member) IsExpired() bool {
	if m.ExpiredAt == nil {
		return false
	}
	return time.Now().After(*m.ExpiredAt)
}

// IsValidMember 是否为有效付费会员
func (m *Member) IsValidMember() bool {
	return m.MemberLevel > MemberLevelFree && !m.IsExpired()
}

// AddPoints 增加积分，返回增加后的余额
func (m *Member) AddPoints(points int) int {
	m.Points += points
	return m.Points
}

// DeductPoints 扣除积分，余额不足时不扣除
func (m *Member) DeductPoints(points int) (bool, int) {
	if m.Points < points {
		return false, m.Points
	}
	m.Points -= points
	return true, m.Points
}

// AddBalance 增加余额，返回增加后的余额
func (m *Member) AddBalance(amount decimal.Decimal) decimal.Decimal {
	m.Balance = m.Balance.Add(amount)
	return m.Balance
}

// DeductBalance 扣除余额，余额不足时不扣除
func (m *Member) DeductBalance(amount decimal.Decimal) (bool, decimal.Decimal) {
	if m.Balance.LessThan(amount) {
		return false, m.Balance
	}
	m.Balance = m.Balance.Sub(amount)
	return true, m.Balance
}

// ExtendMembership 延长会员时长
// 未过期时在原到期时间上顺延，已过期或从未开通时从当前时间起算
func (m *Member) ExtendMembership(days int, now time.Time) time.Time {
	base := now
	if m.ExpiredAt != nil && m.ExpiredAt.After(now) {
		base = *m.ExpiredAt
	}
	expiredAt := base.AddDate(0, 0, days)
	m.ExpiredAt = &expiredAt
	if m.MemberLevel < MemberLevelPaid {
		m.MemberLevel = MemberLevelPaid
	}
	return expiredAt
}
