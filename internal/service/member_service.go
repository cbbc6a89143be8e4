package service

import (
	"context"
	"errors"

	"github.com/golang-member-core/internal/database"
	"github.com/golang-member-core/internal/models"
	"gorm.io/gorm"
)

// MemberService 会员信息查询服务
type MemberService struct{}

// NewMemberService 创建会员服务
func NewMemberService() *MemberService {
	return &MemberService{}
}

// MemberProfile 会员概要
type MemberProfile struct {
	UserID      int64   `json:"user_id"`
	MemberLevel int     `json:"member_level"`
	Points      int     `json:"points"`
	Balance     string  `json:"balance"`
	ExpiredAt   *string `json:"expired_at"`
	IsValid     bool    `json:"is_valid"`
}

// GetProfile 查询会员概要
func (s *MemberService) GetProfile(ctx context.Context, userID int64) (*MemberProfile, error) {
	var member models.Member
	if err := database.DB.WithContext(ctx).Where("user_id = ?", userID).First(&member).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}

	profile := &MemberProfile{
		UserID:      member.UserID,
		MemberLevel: member.MemberLevel,
		Points:      member.Points,
		Balance:     member.Balance.StringFixed(2),
		IsValid:     member.IsValidMember(),
	}
	if member.ExpiredAt != nil {
		formatted := member.ExpiredAt.Format("2006-01-02 15:04:05")
		profile.ExpiredAt = &formatted
	}
	return profile, nil
}

// ListPointTransactions 分页查询积分流水
func (s *MemberService) ListPointTransactions(ctx context.Context, userID int64, page, size int) ([]models.PointTransaction, int64, error) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}

	db := database.DB.WithContext(ctx).Model(&models.PointTransaction{}).
		Where("user_id = ?", userID)

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var transactions []models.PointTransaction
	if err := db.Order("id DESC").
		Offset((page - 1) * size).
		Limit(size).
		Find(&transactions).Error; err != nil {
		return nil, 0, err
	}

	return transactions, total, nil
}
