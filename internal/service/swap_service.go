package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"shift-swap/backend/internal/dto"
	"shift-swap/backend/internal/model"
	"shift-swap/backend/internal/repository"
	"shift-swap/backend/internal/rule"
	pkgerrors "shift-swap/backend/pkg/errors"
)

// ── 换班模块业务错误 ──

var (
	ErrSwapShiftNotFound    = errors.New("持有班次不存在或不属于当前用户")
	ErrSwapRequestNotFound  = errors.New("换班请求不存在或已失效")
	ErrSwapRequestExists    = errors.New("该班次已存在激活的换班请求")
	ErrWantDatesRequired    = errors.New("指定日期换班必须给出至少一个期望日期")
	ErrWantDateOutOfWindow  = errors.New("期望日期必须在允许窗口内（不早于今天，不晚于一个月后）")
	ErrTimeValueRequired    = errors.New("该时间规则必须给出时间值")
	ErrTimeValueInvalid     = errors.New("时间值必须是营业时间内 15 分钟网格上的 HH:MM")
	ErrOfferedShiftNotFound = errors.New("提供的班次不存在或不属于当前用户")
	ErrInterestSelf         = errors.New("不能对自己的换班请求表达意向")
	ErrInterestExists       = errors.New("已对该换班请求表达过意向")
	ErrInterestNotFound     = errors.New("没有可撤回的激活意向")
)

// EligibilityError 资格校验失败，携带规则引擎给出的具体原因
type EligibilityError struct {
	Violation rule.Violation
}

func (e *EligibilityError) Error() string {
	return e.Violation.Message()
}

// SwapService 换班请求与意向的生命周期管理
type SwapService interface {
	// CreateRequest 为本人持有的班次挂出换班请求
	CreateRequest(ctx context.Context, req *dto.CreateSwapRequestRequest, userID string) (*dto.SwapRequestResponse, error)
	// DeleteRequest 软删除本人的换班请求，并在同一事务内级联停用全部意向
	DeleteRequest(ctx context.Context, requestID, userID string) error
	// ListBrowsable 浏览他人的激活请求，附带意向计数与"我是否已表态"标注
	ListBrowsable(ctx context.Context, userID string) ([]dto.BrowseSwapRequestResponse, error)
	// ListMine 本人激活请求，含各条激活意向的完整明细
	ListMine(ctx context.Context, userID string) ([]dto.MySwapRequestResponse, error)
	// ExpressInterest 用本人的一个班次对他人请求表达意向；须先通过资格规则引擎
	ExpressInterest(ctx context.Context, req *dto.ExpressInterestRequest, userID string) (*dto.InterestResponse, error)
	// WithdrawInterest 撤回本人对指定请求的激活意向（软删除），返回撤回条数
	WithdrawInterest(ctx context.Context, requestID, userID string) (int64, error)
}

type swapService struct {
	repo   *repository.Repository
	policy *rule.Policy
	logger *zap.Logger
	now    func() time.Time
}

// NewSwapService 创建 SwapService 实例
func NewSwapService(repo *repository.Repository, policy *rule.Policy, logger *zap.Logger) SwapService {
	return &swapService{repo: repo, policy: policy, logger: logger, now: time.Now}
}

// ────────────────────── CreateRequest ──────────────────────

func (s *swapService) CreateRequest(ctx context.Context, req *dto.CreateSwapRequestRequest, userID string) (*dto.SwapRequestResponse, error) {
	// 1. 持有班次必须属于本人
	if _, err := s.repo.Shift.GetByOwner(ctx, req.HaveShiftID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSwapShiftNotFound
		}
		s.logger.Error("查询班次失败", zap.String("shift_id", req.HaveShiftID), zap.Error(err))
		return nil, err
	}

	// 2. 判别字段组合校验与归一化：
	//    DATE_LIST 必须带非空日期列表，SAME_DAY 忽略传入的列表；
	//    时间规则非 ANY 必须带网格上的时间值，ANY 忽略传入的值。
	//    入库数据不存在非法组合。
	var wantDates model.StringArray
	if req.WantType == model.WantTypeDateList {
		if len(req.WantDates) == 0 {
			return nil, ErrWantDatesRequired
		}
		for _, d := range req.WantDates {
			if !s.policy.WithinAllowedWindow(d, s.now()) {
				return nil, ErrWantDateOutOfWindow
			}
		}
		wantDates = model.StringArray(req.WantDates)
	}

	var timeValue string
	if req.TimeRule != model.TimeRuleAny {
		if req.TimeValue == "" {
			return nil, ErrTimeValueRequired
		}
		if !s.policy.ValidTimeOfDay(req.TimeValue) {
			return nil, ErrTimeValueInvalid
		}
		timeValue = req.TimeValue
	}

	// 3. 一班次一激活请求；此处先查一次给出友好错误，
	//    并发竞争最终由存储层部分唯一索引兜底
	if _, err := s.repo.SwapRequest.GetActiveByShiftID(ctx, req.HaveShiftID); err == nil {
		return nil, ErrSwapRequestExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询换班请求失败", zap.Error(err))
		return nil, err
	}

	swapReq := &model.SwapRequest{
		HaveShiftID:     req.HaveShiftID,
		RequesterUserID: userID,
		WantType:        req.WantType,
		WantDates:       wantDates,
		TimeRule:        req.TimeRule,
		TimeValue:       timeValue,
		Note:            req.Note,
		IsActive:        true,
	}

	if err := s.repo.SwapRequest.Create(ctx, swapReq); err != nil {
		if errors.Is(err, pkgerrors.ErrUniqueViolation) {
			return nil, ErrSwapRequestExists
		}
		s.logger.Error("创建换班请求失败", zap.Error(err))
		return nil, err
	}

	return &dto.SwapRequestResponse{
		ID:          swapReq.SwapRequestID,
		HaveShiftID: swapReq.HaveShiftID,
		WantType:    swapReq.WantType,
		WantDates:   swapReq.WantDates,
		TimeRule:    swapReq.TimeRule,
		TimeValue:   swapReq.TimeValue,
		Note:        swapReq.Note,
		CreatedAt:   swapReq.CreatedAt.Format(time.RFC3339),
	}, nil
}

// ────────────────────── DeleteRequest ──────────────────────

func (s *swapService) DeleteRequest(ctx context.Context, requestID, userID string) error {
	req, err := s.repo.SwapRequest.GetActiveByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSwapRequestNotFound
		}
		s.logger.Error("查询换班请求失败", zap.String("swap_request_id", requestID), zap.Error(err))
		return err
	}
	// 非本人的请求按不存在处理，不暴露他人请求的存在性
	if req.RequesterUserID != userID {
		return ErrSwapRequestNotFound
	}

	// 请求与其全部意向在同一事务内停用
	if err := s.repo.SwapRequest.DeactivateWithInterests(ctx, requestID); err != nil {
		s.logger.Error("停用换班请求失败", zap.String("swap_request_id", requestID), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── ListBrowsable ──────────────────────

func (s *swapService) ListBrowsable(ctx context.Context, userID string) ([]dto.BrowseSwapRequestResponse, error) {
	reqs, err := s.repo.SwapRequest.ListActiveForBrowsing(ctx, userID)
	if err != nil {
		s.logger.Error("查询换班请求列表失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.BrowseSwapRequestResponse, 0, len(reqs))
	for i := range reqs {
		req := &reqs[i]

		row := dto.BrowseSwapRequestResponse{
			ID:            req.SwapRequestID,
			WantType:      req.WantType,
			WantDates:     req.WantDates,
			TimeRule:      req.TimeRule,
			TimeValue:     req.TimeValue,
			Note:          req.Note,
			CreatedAt:     req.CreatedAt.Format(time.RFC3339),
			InterestCount: len(req.Interests),
		}
		if req.Requester != nil {
			row.Requester = dto.RequesterResponse{
				FullName: req.Requester.FullName,
				Email:    req.Requester.Email,
			}
		}
		if req.HaveShift != nil {
			row.HaveShift = toShiftResponse(req.HaveShift)
		}
		// 仅标注"我"的表态；其他意向人的身份不进入浏览列表
		for j := range req.Interests {
			if req.Interests[j].InterestedUserID == userID {
				row.HasMyInterest = true
				row.MyInterestID = req.Interests[j].InterestID
				break
			}
		}

		result = append(result, row)
	}
	return result, nil
}

// ────────────────────── ListMine ──────────────────────

func (s *swapService) ListMine(ctx context.Context, userID string) ([]dto.MySwapRequestResponse, error) {
	reqs, err := s.repo.SwapRequest.ListActiveByRequester(ctx, userID)
	if err != nil {
		s.logger.Error("查询本人换班请求失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.MySwapRequestResponse, 0, len(reqs))
	for i := range reqs {
		req := &reqs[i]

		row := dto.MySwapRequestResponse{
			ID:        req.SwapRequestID,
			WantType:  req.WantType,
			WantDates: req.WantDates,
			TimeRule:  req.TimeRule,
			TimeValue: req.TimeValue,
			Note:      req.Note,
			CreatedAt: req.CreatedAt.Format(time.RFC3339),
			Interests: make([]dto.InterestDetailResponse, 0, len(req.Interests)),
		}
		if req.HaveShift != nil {
			row.HaveShift = toShiftResponse(req.HaveShift)
		}
		for j := range req.Interests {
			in := &req.Interests[j]
			detail := dto.InterestDetailResponse{
				ID:        in.InterestID,
				CreatedAt: in.CreatedAt.Format(time.RFC3339),
			}
			if in.InterestedUser != nil {
				detail.InterestedUser = toUserResponse(in.InterestedUser)
			}
			if in.OfferedShift != nil {
				detail.OfferedShift = toShiftResponse(in.OfferedShift)
			}
			row.Interests = append(row.Interests, detail)
		}

		result = append(result, row)
	}
	return result, nil
}

// ────────────────────── ExpressInterest ──────────────────────

func (s *swapService) ExpressInterest(ctx context.Context, req *dto.ExpressInterestRequest, userID string) (*dto.InterestResponse, error) {
	// 1. 请求必须存在且激活
	swapReq, err := s.repo.SwapRequest.GetActiveByID(ctx, req.SwapRequestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSwapRequestNotFound
		}
		s.logger.Error("查询换班请求失败", zap.String("swap_request_id", req.SwapRequestID), zap.Error(err))
		return nil, err
	}

	// 2. 提供的班次必须属于本人
	offered, err := s.repo.Shift.GetByOwner(ctx, req.OfferedShiftID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOfferedShiftNotFound
		}
		s.logger.Error("查询班次失败", zap.String("shift_id", req.OfferedShiftID), zap.Error(err))
		return nil, err
	}

	// 3. 禁止对自己的请求表态
	if swapReq.RequesterUserID == userID {
		return nil, ErrInterestSelf
	}

	// 4. 资格规则引擎：与浏览页预筛共用同一函数
	if v := rule.Eligible(swapReq, swapReq.HaveShift, offered); v != rule.ViolationNone {
		return nil, &EligibilityError{Violation: v}
	}

	// 5. 入库；同一用户重复表态由存储层部分唯一索引拒绝
	interest := &model.Interest{
		SwapRequestID:    req.SwapRequestID,
		InterestedUserID: userID,
		OfferedShiftID:   req.OfferedShiftID,
		IsActive:         true,
	}
	if err := s.repo.Interest.Create(ctx, interest); err != nil {
		if errors.Is(err, pkgerrors.ErrUniqueViolation) {
			return nil, ErrInterestExists
		}
		s.logger.Error("创建意向失败", zap.Error(err))
		return nil, err
	}

	return &dto.InterestResponse{
		ID:             interest.InterestID,
		SwapRequestID:  interest.SwapRequestID,
		OfferedShiftID: interest.OfferedShiftID,
		CreatedAt:      interest.CreatedAt.Format(time.RFC3339),
	}, nil
}

// ────────────────────── WithdrawInterest ──────────────────────

func (s *swapService) WithdrawInterest(ctx context.Context, requestID, userID string) (int64, error) {
	count, err := s.repo.Interest.DeactivateByRequestAndUser(ctx, requestID, userID)
	if err != nil {
		s.logger.Error("撤回意向失败", zap.String("swap_request_id", requestID), zap.Error(err))
		return 0, err
	}
	if count == 0 {
		return 0, ErrInterestNotFound
	}
	return count, nil
}
