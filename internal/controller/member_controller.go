package controller

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/golang-member-core/internal/response"
	"github.com/golang-member-core/internal/service"
)

// MemberController 会员控制器
type MemberController struct {
	memberService *service.MemberService
}

// NewMemberController 创建会员控制器
func NewMemberController(memberService *service.MemberService) *MemberController {
	return &MemberController{memberService: memberService}
}

// Profile 会员概要
// @Summary 当前用户会员概要
// @Tags 会员
// @Produce json
// @Router /api/v1/member/profile [get]
func (c *MemberController) Profile(ctx *gin.Context) {
	profile, err := c.memberService.GetProfile(ctx.Request.Context(), currentUserID(ctx))
	if err != nil {
		failBiz(ctx, err)
		return
	}
	response.Success(ctx, profile)
}

// PointTransactions 积分流水
// @Summary 当前用户积分流水
// @Tags 会员
// @Produce json
// @Param page query int false "页码"
// @Param size query int false "每页数量"
// @Router /api/v1/member/points/transactions [get]
func (c *MemberController) PointTransactions(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(ctx.DefaultQuery("size", "20"))

	transactions, total, err := c.memberService.ListPointTransactions(ctx.Request.Context(), currentUserID(ctx), page, size)
	if err != nil {
		failBiz(ctx, err)
		return
	}
	response.Paginated(ctx, transactions, total, page, size)
}
