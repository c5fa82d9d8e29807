package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"shift-swap/backend/internal/dto"
	"shift-swap/backend/internal/rule"
	"shift-swap/backend/internal/service"
	"shift-swap/backend/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock AuthService ──

type mockAuthService struct {
	loginResult      *dto.TokenResponse
	loginErr         error
	refreshResult    *dto.TokenResponse
	refreshErr       error
	logoutErr        error
	getCurrentResult *dto.UserResponse
	getCurrentErr    error
}

func (m *mockAuthService) Login(_ context.Context, _ *dto.LoginRequest) (*dto.TokenResponse, error) {
	return m.loginResult, m.loginErr
}
func (m *mockAuthService) RefreshToken(_ context.Context, _ string) (*dto.TokenResponse, error) {
	return m.refreshResult, m.refreshErr
}
func (m *mockAuthService) Logout(_ context.Context, _ string, _ time.Time) error {
	return m.logoutErr
}
func (m *mockAuthService) GetCurrentUser(_ context.Context, _ string) (*dto.UserResponse, error) {
	return m.getCurrentResult, m.getCurrentErr
}

// ── Mock ShiftService ──

type mockShiftService struct {
	createResult   *dto.ShiftResponse
	createErr      error
	listResult     []dto.ShiftResponse
	listErr        error
	deleteErr      error
	eligibleResult []dto.ShiftResponse
	eligibleErr    error
}

func (m *mockShiftService) Create(_ context.Context, _ *dto.CreateShiftRequest, _ string) (*dto.ShiftResponse, error) {
	return m.createResult, m.createErr
}
func (m *mockShiftService) ListMine(_ context.Context, _ string) ([]dto.ShiftResponse, error) {
	return m.listResult, m.listErr
}
func (m *mockShiftService) Delete(_ context.Context, _, _ string) error {
	return m.deleteErr
}
func (m *mockShiftService) ListEligibleForRequest(_ context.Context, _, _ string) ([]dto.ShiftResponse, error) {
	return m.eligibleResult, m.eligibleErr
}

// ── Mock SwapService ──

type mockSwapService struct {
	createResult   *dto.SwapRequestResponse
	createErr      error
	deleteErr      error
	browseResult   []dto.BrowseSwapRequestResponse
	browseErr      error
	mineResult     []dto.MySwapRequestResponse
	mineErr        error
	interestResult *dto.InterestResponse
	interestErr    error
	withdrawCount  int64
	withdrawErr    error
}

func (m *mockSwapService) CreateRequest(_ context.Context, _ *dto.CreateSwapRequestRequest, _ string) (*dto.SwapRequestResponse, error) {
	return m.createResult, m.createErr
}
func (m *mockSwapService) DeleteRequest(_ context.Context, _, _ string) error {
	return m.deleteErr
}
func (m *mockSwapService) ListBrowsable(_ context.Context, _ string) ([]dto.BrowseSwapRequestResponse, error) {
	return m.browseResult, m.browseErr
}
func (m *mockSwapService) ListMine(_ context.Context, _ string) ([]dto.MySwapRequestResponse, error) {
	return m.mineResult, m.mineErr
}
func (m *mockSwapService) ExpressInterest(_ context.Context, _ *dto.ExpressInterestRequest, _ string) (*dto.InterestResponse, error) {
	return m.interestResult, m.interestErr
}
func (m *mockSwapService) WithdrawInterest(_ context.Context, _, _ string) (int64, error) {
	return m.withdrawCount, m.withdrawErr
}

// ── Mock CleanupService ──

type mockCleanupService struct {
	sweepResult *dto.CleanupResponse
	sweepErr    error
	ifDueCalled bool
}

func (m *mockCleanupService) SweepNow(_ context.Context) (*dto.CleanupResponse, error) {
	return m.sweepResult, m.sweepErr
}
func (m *mockCleanupService) SweepIfDue(_ context.Context) (*dto.CleanupResponse, error) {
	m.ifDueCalled = true
	return nil, nil
}

// ── Mock ExportService ──

type mockExportService struct {
	buf      *bytes.Buffer
	filename string
	err      error
}

func (m *mockExportService) ExportShifts(_ context.Context, _ string) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}
func (m *mockExportService) ExportShiftsICS(_ context.Context, _ string) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}

// ═══════════════════════════════════════════════════════════
// Test Helpers
// ═══════════════════════════════════════════════════════════

const (
	testUUID  = "11111111-1111-1111-1111-111111111111"
	testUUID2 = "22222222-2222-2222-2222-222222222222"
)

func setAuth(c *gin.Context) {
	c.Set("user_id", "test-user-id")
	c.Set("token_jti", "test-jti")
	c.Set("token_exp", time.Now().Add(15*time.Minute))
}

func authWrap(h gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		setAuth(c)
		h(c)
	}
}

func jsonBody(v interface{}) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func doRequest(r *gin.Engine, method, path string, body io.Reader) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	r.ServeHTTP(w, req)
	return w
}

func parseResponse(w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

// ═══════════════════════════════════════════════════════════
// AuthHandler Tests
// ═══════════════════════════════════════════════════════════

func TestAuthHandler_Login_Success(t *testing.T) {
	mock := &mockAuthService{
		loginResult: &dto.TokenResponse{
			AccessToken:  "test-access-token",
			RefreshToken: "test-refresh-token",
			ExpiresIn:    900,
		},
	}
	h := NewAuthHandler(mock)

	r := gin.New()
	r.POST("/auth/login", h.Login)
	w := doRequest(r, "POST", "/auth/login", jsonBody(dto.LoginRequest{
		Email: "a@example.com", FullName: "张三", Passcode: "team-secret",
	}))

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 0 {
		t.Errorf("expected code 0, got %d", resp.Code)
	}
}

func TestAuthHandler_Login_BadJSON(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	r := gin.New()
	r.POST("/auth/login", h.Login)
	w := doRequest(r, "POST", "/auth/login", bytes.NewReader([]byte("invalid json")))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestAuthHandler_Login_WrongPasscode(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{loginErr: service.ErrInvalidPasscode})

	r := gin.New()
	r.POST("/auth/login", h.Login)
	w := doRequest(r, "POST", "/auth/login", jsonBody(dto.LoginRequest{
		Email: "a@example.com", FullName: "张三", Passcode: "wrong",
	}))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 11001 {
		t.Errorf("expected error code 11001, got %d", resp.Code)
	}
}

func TestAuthHandler_GetCurrentUser_Unauthenticated(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	r := gin.New()
	r.GET("/auth/me", h.GetCurrentUser)
	w := doRequest(r, "GET", "/auth/me", nil)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 10002 {
		t.Errorf("expected error code 10002, got %d", resp.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// ShiftHandler Tests
// ═══════════════════════════════════════════════════════════

func TestShiftHandler_CreateShift_Success(t *testing.T) {
	mock := &mockShiftService{
		createResult: &dto.ShiftResponse{ID: testUUID, Date: "2026-03-11", Start: "09:00", End: "13:00", DurationHours: 4},
	}
	h := NewShiftHandler(mock, &mockCleanupService{})

	r := gin.New()
	r.POST("/shifts", authWrap(h.CreateShift))
	w := doRequest(r, "POST", "/shifts", jsonBody(dto.CreateShiftRequest{
		Date: "2026-03-11", Start: "09:00", End: "13:00", DurationHours: 4,
	}))

	if w.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", w.Code)
	}
}

func TestShiftHandler_CreateShift_InvalidDate(t *testing.T) {
	mock := &mockShiftService{createErr: service.ErrShiftInvalidDate}
	h := NewShiftHandler(mock, &mockCleanupService{})

	r := gin.New()
	r.POST("/shifts", authWrap(h.CreateShift))
	w := doRequest(r, "POST", "/shifts", jsonBody(dto.CreateShiftRequest{
		Date: "2020-01-01", Start: "09:00", End: "13:00", DurationHours: 4,
	}))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 21001 {
		t.Errorf("expected error code 21001, got %d", resp.Code)
	}
}

func TestShiftHandler_ListShifts_TriggersSweep(t *testing.T) {
	cleanup := &mockCleanupService{}
	h := NewShiftHandler(&mockShiftService{listResult: []dto.ShiftResponse{}}, cleanup)

	r := gin.New()
	r.GET("/shifts", authWrap(h.ListShifts))
	w := doRequest(r, "GET", "/shifts", nil)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if !cleanup.ifDueCalled {
		t.Error("expected list read to trigger SweepIfDue")
	}
}

func TestShiftHandler_DeleteShift_HasActiveRequest(t *testing.T) {
	mock := &mockShiftService{deleteErr: service.ErrShiftHasActiveRequest}
	h := NewShiftHandler(mock, &mockCleanupService{})

	r := gin.New()
	r.DELETE("/shifts/:id", authWrap(h.DeleteShift))
	w := doRequest(r, "DELETE", "/shifts/"+testUUID, nil)

	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 21005 {
		t.Errorf("expected error code 21005, got %d", resp.Code)
	}
}

func TestShiftHandler_ListEligibleShifts_SelfRequest(t *testing.T) {
	mock := &mockShiftService{eligibleErr: service.ErrInterestSelf}
	h := NewShiftHandler(mock, &mockCleanupService{})

	r := gin.New()
	r.GET("/swap-requests/:id/eligible-shifts", authWrap(h.ListEligibleShifts))
	w := doRequest(r, "GET", "/swap-requests/"+testUUID+"/eligible-shifts", nil)

	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 23001 {
		t.Errorf("expected error code 23001, got %d", resp.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// SwapHandler Tests
// ═══════════════════════════════════════════════════════════

func TestSwapHandler_CreateSwapRequest_Success(t *testing.T) {
	mock := &mockSwapService{
		createResult: &dto.SwapRequestResponse{ID: testUUID2, HaveShiftID: testUUID},
	}
	h := NewSwapHandler(mock, &mockCleanupService{})

	r := gin.New()
	r.POST("/swap-requests", authWrap(h.CreateSwapRequest))
	w := doRequest(r, "POST", "/swap-requests", jsonBody(dto.CreateSwapRequestRequest{
		HaveShiftID: testUUID, WantType: "SAME_DAY", TimeRule: "ANY",
	}))

	if w.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", w.Code)
	}
}

func TestSwapHandler_CreateSwapRequest_InvalidWantType(t *testing.T) {
	h := NewSwapHandler(&mockSwapService{}, &mockCleanupService{})

	r := gin.New()
	r.POST("/swap-requests", authWrap(h.CreateSwapRequest))
	w := doRequest(r, "POST", "/swap-requests", jsonBody(map[string]string{
		"have_shift_id": testUUID, "want_type": "WHENEVER", "time_rule": "ANY",
	}))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 10001 {
		t.Errorf("expected error code 10001, got %d", resp.Code)
	}
}

func TestSwapHandler_CreateSwapRequest_Duplicate(t *testing.T) {
	mock := &mockSwapService{createErr: service.ErrSwapRequestExists}
	h := NewSwapHandler(mock, &mockCleanupService{})

	r := gin.New()
	r.POST("/swap-requests", authWrap(h.CreateSwapRequest))
	w := doRequest(r, "POST", "/swap-requests", jsonBody(dto.CreateSwapRequestRequest{
		HaveShiftID: testUUID, WantType: "SAME_DAY", TimeRule: "ANY",
	}))

	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 22003 {
		t.Errorf("expected error code 22003, got %d", resp.Code)
	}
}

func TestSwapHandler_DeleteSwapRequest_NotFound(t *testing.T) {
	mock := &mockSwapService{deleteErr: service.ErrSwapRequestNotFound}
	h := NewSwapHandler(mock, &mockCleanupService{})

	r := gin.New()
	r.DELETE("/swap-requests/:id", authWrap(h.DeleteSwapRequest))
	w := doRequest(r, "DELETE", "/swap-requests/"+testUUID, nil)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 22001 {
		t.Errorf("expected error code 22001, got %d", resp.Code)
	}
}

func TestSwapHandler_ListSwapRequests_TriggersSweep(t *testing.T) {
	cleanup := &mockCleanupService{}
	h := NewSwapHandler(&mockSwapService{browseResult: []dto.BrowseSwapRequestResponse{}}, cleanup)

	r := gin.New()
	r.GET("/swap-requests", authWrap(h.ListSwapRequests))
	w := doRequest(r, "GET", "/swap-requests", nil)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if !cleanup.ifDueCalled {
		t.Error("expected browse read to trigger SweepIfDue")
	}
}

func TestSwapHandler_ExpressInterest_Ineligible(t *testing.T) {
	mock := &mockSwapService{
		interestErr: &service.EligibilityError{Violation: rule.ViolationDurationMismatch},
	}
	h := NewSwapHandler(mock, &mockCleanupService{})

	r := gin.New()
	r.POST("/interests", authWrap(h.ExpressInterest))
	w := doRequest(r, "POST", "/interests", jsonBody(dto.ExpressInterestRequest{
		SwapRequestID: testUUID, OfferedShiftID: testUUID2,
	}))

	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 23005 {
		t.Errorf("expected error code 23005, got %d", resp.Code)
	}
	if resp.Message != rule.ViolationDurationMismatch.Message() {
		t.Errorf("expected violation message, got %s", resp.Message)
	}
}

func TestSwapHandler_ExpressInterest_Self(t *testing.T) {
	mock := &mockSwapService{interestErr: service.ErrInterestSelf}
	h := NewSwapHandler(mock, &mockCleanupService{})

	r := gin.New()
	r.POST("/interests", authWrap(h.ExpressInterest))
	w := doRequest(r, "POST", "/interests", jsonBody(dto.ExpressInterestRequest{
		SwapRequestID: testUUID, OfferedShiftID: testUUID2,
	}))

	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
}

func TestSwapHandler_WithdrawInterest_Success(t *testing.T) {
	mock := &mockSwapService{withdrawCount: 1}
	h := NewSwapHandler(mock, &mockCleanupService{})

	r := gin.New()
	r.DELETE("/interests", authWrap(h.WithdrawInterest))
	w := doRequest(r, "DELETE", "/interests?swap_request_id="+testUUID, nil)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestSwapHandler_WithdrawInterest_MissingParam(t *testing.T) {
	h := NewSwapHandler(&mockSwapService{}, &mockCleanupService{})

	r := gin.New()
	r.DELETE("/interests", authWrap(h.WithdrawInterest))
	w := doRequest(r, "DELETE", "/interests", nil)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestSwapHandler_Cleanup_Success(t *testing.T) {
	cleanup := &mockCleanupService{
		sweepResult: &dto.CleanupResponse{RequestsDeactivated: 2, InterestsDeactivated: 3, ShiftsDeleted: 5},
	}
	h := NewSwapHandler(&mockSwapService{}, cleanup)

	r := gin.New()
	r.POST("/cleanup", authWrap(h.Cleanup))
	w := doRequest(r, "POST", "/cleanup", nil)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 0 {
		t.Errorf("expected code 0, got %d", resp.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// ExportHandler Tests
// ═══════════════════════════════════════════════════════════

func TestExportHandler_ExportShifts_Success(t *testing.T) {
	mock := &mockExportService{
		buf:      bytes.NewBufferString("excel-bytes"),
		filename: "shifts_2026-03-10.xlsx",
	}
	h := NewExportHandler(mock)

	r := gin.New()
	r.GET("/export/shifts", authWrap(h.ExportShifts))
	w := doRequest(r, "GET", "/export/shifts", nil)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	disposition := w.Header().Get("Content-Disposition")
	if disposition == "" {
		t.Error("expected Content-Disposition header")
	}
}

func TestExportHandler_ExportShifts_NoShifts(t *testing.T) {
	h := NewExportHandler(&mockExportService{err: service.ErrExportNoShifts})

	r := gin.New()
	r.GET("/export/shifts", authWrap(h.ExportShifts))
	w := doRequest(r, "GET", "/export/shifts", nil)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 24001 {
		t.Errorf("expected error code 24001, got %d", resp.Code)
	}
}
