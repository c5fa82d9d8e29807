package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"shift-swap/backend/internal/dto"
	"shift-swap/backend/internal/service"
	"shift-swap/backend/pkg/response"
)

// ShiftHandler 班次模块 HTTP 处理器
type ShiftHandler struct {
	shiftSvc   service.ShiftService
	cleanupSvc service.CleanupService
}

// NewShiftHandler 创建 ShiftHandler
func NewShiftHandler(shiftSvc service.ShiftService, cleanupSvc service.CleanupService) *ShiftHandler {
	return &ShiftHandler{shiftSvc: shiftSvc, cleanupSvc: cleanupSvc}
}

// CreateShift 录入班次
// POST /api/v1/shifts
func (h *ShiftHandler) CreateShift(c *gin.Context) {
	var req dto.CreateShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	shift, err := h.shiftSvc.Create(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleShiftError(c, err)
		return
	}

	response.Created(c, shift)
}

// ListShifts 本人班次列表
// GET /api/v1/shifts
func (h *ShiftHandler) ListShifts(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	// 读路径惰性触发过期清理；清理失败不影响查询
	_, _ = h.cleanupSvc.SweepIfDue(c.Request.Context())

	shifts, err := h.shiftSvc.ListMine(c.Request.Context(), userID)
	if err != nil {
		h.handleShiftError(c, err)
		return
	}

	response.OK(c, gin.H{"list": shifts})
}

// DeleteShift 删除本人班次
// DELETE /api/v1/shifts/:id
func (h *ShiftHandler) DeleteShift(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "班次ID不能为空")
		return
	}

	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.shiftSvc.Delete(c.Request.Context(), id, userID); err != nil {
		h.handleShiftError(c, err)
		return
	}

	response.OK(c, nil)
}

// ListEligibleShifts 预筛本人可用于某换班请求的班次
// GET /api/v1/swap-requests/:id/eligible-shifts
func (h *ShiftHandler) ListEligibleShifts(c *gin.Context) {
	requestID := c.Param("id")
	if requestID == "" {
		response.BadRequest(c, 10001, "请求ID不能为空")
		return
	}

	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	shifts, err := h.shiftSvc.ListEligibleForRequest(c.Request.Context(), requestID, userID)
	if err != nil {
		h.handleShiftError(c, err)
		return
	}

	response.OK(c, gin.H{"list": shifts})
}

// handleShiftError 统一处理班次模块业务错误
func (h *ShiftHandler) handleShiftError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrShiftInvalidDate):
		response.BadRequest(c, 21001, "班次日期必须在允许窗口内")
	case errors.Is(err, service.ErrShiftInvalidTimeSlot):
		response.BadRequest(c, 21002, "班次时间必须落在营业时间的 15 分钟网格上")
	case errors.Is(err, service.ErrShiftInvalidDuration):
		response.BadRequest(c, 21003, "班次时长不在允许的取值范围内")
	case errors.Is(err, service.ErrShiftNotFound):
		response.NotFound(c, 21004, "班次不存在")
	case errors.Is(err, service.ErrShiftHasActiveRequest):
		response.Conflict(c, 21005, "班次存在激活的换班请求，请先删除该请求")
	case errors.Is(err, service.ErrSwapRequestNotFound):
		response.NotFound(c, 22001, "换班请求不存在或已失效")
	case errors.Is(err, service.ErrInterestSelf):
		response.Forbidden(c, 23001, "不能对自己的换班请求操作")
	default:
		response.InternalError(c)
	}
}
