package service

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"gorm.io/gorm"

	"shift-swap/backend/config"
	"shift-swap/backend/internal/model"
	"shift-swap/backend/internal/repository"
	"shift-swap/backend/internal/rule"
	pkgerrors "shift-swap/backend/pkg/errors"
)

// ── 测试辅助 ──

// testNow 固定参考时刻：2026-03-10 12:00 (Asia/Singapore)
// 依赖"现在"的测试统一注入此值，日期字面量据此推算。
var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, mustLoadTestLocation())

func mustLoadTestLocation() *time.Location {
	loc, err := time.LoadLocation("Asia/Singapore")
	if err != nil {
		panic(err)
	}
	return loc
}

// newTestPolicy 构造与默认配置一致的窗口策略
func newTestPolicy(t *testing.T) *rule.Policy {
	t.Helper()
	policy, err := rule.NewPolicy(&config.SwapConfig{
		Timezone:        "Asia/Singapore",
		MaxAheadMonths:  1,
		EarliestStart:   "08:00",
		LatestEnd:       "23:00",
		SlotStepMinutes: 15,
		AllowedHours:    []int{4, 9},
	})
	if err != nil {
		t.Fatalf("构造窗口策略失败: %v", err)
	}
	return policy
}

// seedShift 直接写入一条班次种子数据
func seedShift(st *mockStore, id, userID, date, start, end string, hours int) *model.Shift {
	shift := &model.Shift{
		ShiftID:       id,
		UserID:        userID,
		Date:          date,
		Start:         start,
		End:           end,
		DurationHours: hours,
	}
	shift.CreatedAt = testNow
	st.shifts[id] = shift
	return shift
}

// ── 共享内存存储 ──
//
// 各 Mock Repository 共用同一组 map，以便模拟真实存储的关联预载
// 与部分唯一索引（激活记录冲突 → pkg/errors.ErrUniqueViolation）。

type mockStore struct {
	users     map[string]*model.User
	shifts    map[string]*model.Shift
	requests  map[string]*model.SwapRequest
	interests map[string]*model.Interest
	seq       int
}

func newMockStore() *mockStore {
	return &mockStore{
		users:     make(map[string]*model.User),
		shifts:    make(map[string]*model.Shift),
		requests:  make(map[string]*model.SwapRequest),
		interests: make(map[string]*model.Interest),
	}
}

func (st *mockStore) nextID(prefix string) string {
	st.seq++
	return fmt.Sprintf("%s-%d", prefix, st.seq)
}

// newMockRepository 构造全 Mock 的 Repository 聚合
func newMockRepository(st *mockStore) *repository.Repository {
	return &repository.Repository{
		User:        &mockUserRepo{st: st},
		Shift:       &mockShiftRepo{st: st},
		SwapRequest: &mockSwapRequestRepo{st: st},
		Interest:    &mockInterestRepo{st: st},
		Cleanup:     &mockCleanupRepo{st: st},
	}
}

// ── Mock UserRepository ──

type mockUserRepo struct {
	st *mockStore
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	for _, u := range m.st.users {
		if u.Email == user.Email {
			return pkgerrors.ErrUniqueViolation
		}
	}
	if user.UserID == "" {
		user.UserID = m.st.nextID("user")
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	m.st.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.st.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.st.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// ── Mock ShiftRepository ──

type mockShiftRepo struct {
	st *mockStore
}

func (m *mockShiftRepo) Create(_ context.Context, shift *model.Shift) error {
	if shift.ShiftID == "" {
		shift.ShiftID = m.st.nextID("shift")
	}
	if shift.CreatedAt.IsZero() {
		shift.CreatedAt = time.Now()
	}
	m.st.shifts[shift.ShiftID] = shift
	return nil
}

func (m *mockShiftRepo) GetByID(_ context.Context, id string) (*model.Shift, error) {
	if s, ok := m.st.shifts[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockShiftRepo) GetByOwner(_ context.Context, id, userID string) (*model.Shift, error) {
	if s, ok := m.st.shifts[id]; ok && s.UserID == userID {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockShiftRepo) ListByUser(_ context.Context, userID string) ([]model.Shift, error) {
	var result []model.Shift
	for _, s := range m.st.shifts {
		if s.UserID != userID {
			continue
		}
		row := *s
		row.SwapRequests = nil
		for _, req := range m.st.requests {
			if req.HaveShiftID == s.ShiftID && req.IsActive {
				row.SwapRequests = append(row.SwapRequests, *req)
			}
		}
		result = append(result, row)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Date != result[j].Date {
			return result[i].Date < result[j].Date
		}
		return result[i].Start < result[j].Start
	})
	return result, nil
}

func (m *mockShiftRepo) Delete(_ context.Context, id string) error {
	delete(m.st.shifts, id)
	return nil
}

// ── Mock SwapRequestRepository ──

type mockSwapRequestRepo struct {
	st *mockStore
}

func (m *mockSwapRequestRepo) Create(_ context.Context, req *model.SwapRequest) error {
	// 部分唯一索引：一班次至多一条激活请求
	if req.IsActive {
		for _, r := range m.st.requests {
			if r.HaveShiftID == req.HaveShiftID && r.IsActive {
				return pkgerrors.ErrUniqueViolation
			}
		}
	}
	if req.SwapRequestID == "" {
		req.SwapRequestID = m.st.nextID("req")
	}
	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Now()
	}
	m.st.requests[req.SwapRequestID] = req
	return nil
}

func (m *mockSwapRequestRepo) GetActiveByID(_ context.Context, id string) (*model.SwapRequest, error) {
	req, ok := m.st.requests[id]
	if !ok || !req.IsActive {
		return nil, gorm.ErrRecordNotFound
	}
	row := *req
	if have, ok := m.st.shifts[req.HaveShiftID]; ok {
		row.HaveShift = have
	}
	return &row, nil
}

func (m *mockSwapRequestRepo) GetActiveByShiftID(_ context.Context, shiftID string) (*model.SwapRequest, error) {
	for _, req := range m.st.requests {
		if req.HaveShiftID == shiftID && req.IsActive {
			return req, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSwapRequestRepo) ListActiveForBrowsing(_ context.Context, userID string) ([]model.SwapRequest, error) {
	var result []model.SwapRequest
	for _, req := range m.st.requests {
		if !req.IsActive || req.RequesterUserID == userID {
			continue
		}
		row := *req
		if have, ok := m.st.shifts[req.HaveShiftID]; ok {
			row.HaveShift = have
		}
		if requester, ok := m.st.users[req.RequesterUserID]; ok {
			row.Requester = requester
		}
		row.Interests = m.activeInterests(req.SwapRequestID, false)
		result = append(result, row)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (m *mockSwapRequestRepo) ListActiveByRequester(_ context.Context, userID string) ([]model.SwapRequest, error) {
	var result []model.SwapRequest
	for _, req := range m.st.requests {
		if !req.IsActive || req.RequesterUserID != userID {
			continue
		}
		row := *req
		if have, ok := m.st.shifts[req.HaveShiftID]; ok {
			row.HaveShift = have
		}
		row.Interests = m.activeInterests(req.SwapRequestID, true)
		result = append(result, row)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (m *mockSwapRequestRepo) DeactivateWithInterests(_ context.Context, requestID string) error {
	req, ok := m.st.requests[requestID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	req.IsActive = false
	for _, in := range m.st.interests {
		if in.SwapRequestID == requestID {
			in.IsActive = false
		}
	}
	return nil
}

// activeInterests 取请求下的激活意向；full=true 时附带意向人与提供班次
func (m *mockSwapRequestRepo) activeInterests(requestID string, full bool) []model.Interest {
	var result []model.Interest
	for _, in := range m.st.interests {
		if in.SwapRequestID != requestID || !in.IsActive {
			continue
		}
		row := *in
		if full {
			if u, ok := m.st.users[in.InterestedUserID]; ok {
				row.InterestedUser = u
			}
			if s, ok := m.st.shifts[in.OfferedShiftID]; ok {
				row.OfferedShift = s
			}
		}
		result = append(result, row)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result
}

// ── Mock InterestRepository ──

type mockInterestRepo struct {
	st *mockStore
}

func (m *mockInterestRepo) Create(_ context.Context, interest *model.Interest) error {
	// 部分唯一索引：同一 (请求, 用户) 至多一条激活意向
	if interest.IsActive {
		for _, in := range m.st.interests {
			if in.SwapRequestID == interest.SwapRequestID &&
				in.InterestedUserID == interest.InterestedUserID && in.IsActive {
				return pkgerrors.ErrUniqueViolation
			}
		}
	}
	if interest.InterestID == "" {
		interest.InterestID = m.st.nextID("interest")
	}
	if interest.CreatedAt.IsZero() {
		interest.CreatedAt = time.Now()
	}
	m.st.interests[interest.InterestID] = interest
	return nil
}

func (m *mockInterestRepo) DeactivateByRequestAndUser(_ context.Context, requestID, userID string) (int64, error) {
	var count int64
	for _, in := range m.st.interests {
		if in.SwapRequestID == requestID && in.InterestedUserID == userID && in.IsActive {
			in.IsActive = false
			count++
		}
	}
	return count, nil
}

// ── Mock CleanupRepository ──

type mockCleanupRepo struct {
	st *mockStore
}

func (m *mockCleanupRepo) SweepExpired(_ context.Context, before string) (*repository.SweepResult, error) {
	result := &repository.SweepResult{}

	expired := make(map[string]bool)
	for id, s := range m.st.shifts {
		if s.Date < before {
			expired[id] = true
		}
	}

	for _, req := range m.st.requests {
		if req.IsActive && expired[req.HaveShiftID] {
			req.IsActive = false
			result.RequestsDeactivated++
		}
	}
	for _, in := range m.st.interests {
		if !in.IsActive {
			continue
		}
		req, ok := m.st.requests[in.SwapRequestID]
		if ok && expired[req.HaveShiftID] {
			in.IsActive = false
			result.InterestsDeactivated++
		}
	}
	for id := range expired {
		delete(m.st.shifts, id)
		result.ShiftsDeleted++
	}

	return result, nil
}
