package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-member-core/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMemberService_GetProfile 测试会员概要查询
func TestMemberService_GetProfile(t *testing.T) {
	db := setupTestDB(t)
	svc := NewMemberService()

	expiredAt := time.Now().AddDate(0, 0, 30)
	seedUserWithMember(t, db, 1, &models.Member{
		MemberLevel: models.MemberLevelPaid,
		Points:      42,
		Balance:     decimal.NewFromFloat(9.50),
		ExpiredAt:   &expiredAt,
	})

	profile, err := svc.GetProfile(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 42, profile.Points)
	assert.Equal(t, "9.50", profile.Balance)
	assert.True(t, profile.IsValid)
	require.NotNil(t, profile.ExpiredAt)
}

// TestMemberService_GetProfile_NotFound 测试会员不存在
func TestMemberService_GetProfile_NotFound(t *testing.T) {
	setupTestDB(t)
	svc := NewMemberService()

	_, err := svc.GetProfile(context.Background(), 99)
	assert.Equal(t, ErrMemberNotFound, err)
}

// TestMemberService_ListPointTransactions 测试积分流水分页
func TestMemberService_ListPointTransactions(t *testing.T) {
	db := setupTestDB(t)
	svc := NewMemberService()

	seedUserWithMember(t, db, 1, &models.Member{})
	for i := 0; i < 5; i++ {
		tx := &models.PointTransaction{
			UserID:       1,
			Type:         models.PointTxTypeRecharge,
			Points:       10,
			BalanceAfter: (i + 1) * 10,
			Amount:       decimal.NewFromFloat(5.00),
			Description:  "测试流水",
		}
		require.NoError(t, db.Create(tx).Error)
	}

	transactions, total, err := svc.ListPointTransactions(context.Background(), 1, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.Len(t, transactions, 3)
	// 按时间倒序，第一条是最新的流水
	assert.Equal(t, 50, transactions[0].BalanceAfter)
}
