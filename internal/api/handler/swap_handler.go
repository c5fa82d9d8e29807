package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"shift-swap/backend/internal/dto"
	"shift-swap/backend/internal/service"
	"shift-swap/backend/pkg/response"
)

// SwapHandler 换班请求与意向模块 HTTP 处理器
type SwapHandler struct {
	swapSvc    service.SwapService
	cleanupSvc service.CleanupService
}

// NewSwapHandler 创建 SwapHandler
func NewSwapHandler(swapSvc service.SwapService, cleanupSvc service.CleanupService) *SwapHandler {
	return &SwapHandler{swapSvc: swapSvc, cleanupSvc: cleanupSvc}
}

// CreateSwapRequest 挂出换班请求
// POST /api/v1/swap-requests
func (h *SwapHandler) CreateSwapRequest(c *gin.Context) {
	var req dto.CreateSwapRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.swapSvc.CreateRequest(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleSwapError(c, err)
		return
	}

	response.Created(c, result)
}

// ListSwapRequests 浏览他人的激活换班请求
// GET /api/v1/swap-requests
func (h *SwapHandler) ListSwapRequests(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	// 读路径惰性触发过期清理；清理失败不影响查询
	_, _ = h.cleanupSvc.SweepIfDue(c.Request.Context())

	result, err := h.swapSvc.ListBrowsable(c.Request.Context(), userID)
	if err != nil {
		h.handleSwapError(c, err)
		return
	}

	response.OK(c, gin.H{"list": result})
}

// ListMySwapRequests 本人的激活换班请求（含意向明细）
// GET /api/v1/swap-requests/mine
func (h *SwapHandler) ListMySwapRequests(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	_, _ = h.cleanupSvc.SweepIfDue(c.Request.Context())

	result, err := h.swapSvc.ListMine(c.Request.Context(), userID)
	if err != nil {
		h.handleSwapError(c, err)
		return
	}

	response.OK(c, gin.H{"list": result})
}

// DeleteSwapRequest 删除本人换班请求（级联停用意向）
// DELETE /api/v1/swap-requests/:id
func (h *SwapHandler) DeleteSwapRequest(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "请求ID不能为空")
		return
	}

	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.swapSvc.DeleteRequest(c.Request.Context(), id, userID); err != nil {
		h.handleSwapError(c, err)
		return
	}

	response.OK(c, nil)
}

// ExpressInterest 对他人换班请求表达意向
// POST /api/v1/interests
func (h *SwapHandler) ExpressInterest(c *gin.Context) {
	var req dto.ExpressInterestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.swapSvc.ExpressInterest(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleSwapError(c, err)
		return
	}

	response.Created(c, result)
}

// WithdrawInterest 撤回本人对指定请求的意向
// DELETE /api/v1/interests?swap_request_id=xxx
func (h *SwapHandler) WithdrawInterest(c *gin.Context) {
	var req dto.WithdrawInterestRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "swap_request_id 不能为空")
		return
	}

	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	count, err := h.swapSvc.WithdrawInterest(c.Request.Context(), req.SwapRequestID, userID)
	if err != nil {
		h.handleSwapError(c, err)
		return
	}

	response.OK(c, gin.H{"withdrawn": count})
}

// Cleanup 手动触发过期清理
// POST /api/v1/cleanup
func (h *SwapHandler) Cleanup(c *gin.Context) {
	if _, ok := MustGetUserID(c); !ok {
		return
	}

	result, err := h.cleanupSvc.SweepNow(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// handleSwapError 统一处理换班模块业务错误
func (h *SwapHandler) handleSwapError(c *gin.Context, err error) {
	var eligErr *service.EligibilityError

	switch {
	case errors.Is(err, service.ErrSwapRequestNotFound):
		response.NotFound(c, 22001, "换班请求不存在或已失效")
	case errors.Is(err, service.ErrSwapShiftNotFound):
		response.NotFound(c, 22002, "持有班次不存在")
	case errors.Is(err, service.ErrSwapRequestExists):
		response.Conflict(c, 22003, "该班次已存在激活的换班请求")
	case errors.Is(err, service.ErrWantDatesRequired):
		response.BadRequest(c, 22004, "指定日期换班必须给出至少一个期望日期")
	case errors.Is(err, service.ErrWantDateOutOfWindow):
		response.BadRequest(c, 22005, "期望日期必须在允许窗口内")
	case errors.Is(err, service.ErrTimeValueRequired):
		response.BadRequest(c, 22006, "该时间规则必须给出时间值")
	case errors.Is(err, service.ErrTimeValueInvalid):
		response.BadRequest(c, 22007, "时间值必须是营业时间内 15 分钟网格上的 HH:MM")
	case errors.Is(err, service.ErrInterestSelf):
		response.Forbidden(c, 23001, "不能对自己的换班请求表达意向")
	case errors.Is(err, service.ErrOfferedShiftNotFound):
		response.NotFound(c, 23002, "提供的班次不存在")
	case errors.Is(err, service.ErrInterestExists):
		response.Conflict(c, 23003, "已对该换班请求表达过意向")
	case errors.Is(err, service.ErrInterestNotFound):
		response.NotFound(c, 23004, "没有可撤回的激活意向")
	case errors.As(err, &eligErr):
		// 资格校验失败：422 + 具体不满足的规则
		response.UnprocessableEntity(c, 23005, eligErr.Error())
	default:
		response.InternalError(c)
	}
}
