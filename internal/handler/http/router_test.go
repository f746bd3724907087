package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/config"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/audit"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/metrics"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/repository/memory"
	attendanceService "github.com/cmlabs-hris/hris-timekeeping-go/internal/service/attendance"
	auditService "github.com/cmlabs-hris/hris-timekeeping-go/internal/service/audit"
	compoffService "github.com/cmlabs-hris/hris-timekeeping-go/internal/service/compoff"
	employeeService "github.com/cmlabs-hris/hris-timekeeping-go/internal/service/employee"
	leaveService "github.com/cmlabs-hris/hris-timekeeping-go/internal/service/leave"
	overtimeService "github.com/cmlabs-hris/hris-timekeeping-go/internal/service/overtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const handlerTestSecret = "test-secret-key-for-jwt"

type testServer struct {
	router http.Handler
	jwt    *jwt.JWTService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := memory.NewStore()
	m := metrics.New()

	employees := memory.NewEmployeeRepository(store)
	attendances := memory.NewAttendanceRepository(store)
	tracking := memory.NewCompOffTrackingRepository(store)
	compOffRequests := memory.NewCompOffRequestRepository(store)
	leaveRequests := memory.NewLeaveRequestRepository(store)
	overtimeRequests := memory.NewOvertimeRequestRepository(store)

	auditSvc := auditService.NewAuditService(memory.NewAuditLogRepository(store), m)
	ledger := compoffService.NewLedger(store, tracking, memory.NewCompOffDetailRepository(store), m, 3)

	handlers := Handlers{
		Attendance: NewAttendanceHandler(attendanceService.NewAttendanceService(
			store, attendances, employees, auditSvc, m, attendanceService.DefaultPolicy())),
		Leave: NewLeaveHandler(leaveService.NewLeaveService(
			store, leaveRequests, employees, ledger, auditSvc, m)),
		Overtime: NewOvertimeHandler(overtimeService.NewOvertimeService(
			store, overtimeRequests, attendances, employees, auditSvc, m)),
		CompOff: NewCompOffHandler(compoffService.NewCompOffService(
			store, ledger, compOffRequests, employees, auditSvc, m)),
		Audit: NewAuditHandler(auditSvc),
		Employee: NewEmployeeHandler(employeeService.NewEmployeeService(store, employees, employeeService.Referrers{
			Attendance:       attendances,
			CompOffTracking:  tracking,
			CompOffRequests:  compOffRequests,
			LeaveRequests:    leaveRequests,
			OvertimeRequests: overtimeRequests,
		}, auditSvc)),
	}

	jwtSvc := jwt.NewJWTService(handlerTestSecret, time.Hour)
	app := config.AppConfig{Env: "test", CORSOrigins: []string{"http://localhost:3000"}}
	return &testServer{
		router: NewRouter(app, jwtSvc, m.Handler(), handlers),
		jwt:    jwtSvc,
	}
}

func (s *testServer) token(t *testing.T, userID string, role jwt.Role) string {
	t.Helper()
	token, _, err := s.jwt.GenerateAccessToken(userID, role)
	require.NoError(t, err)
	return token
}

type apiResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code string `json:"code"`
	} `json:"error"`
	Meta *struct {
		Page       int   `json:"page"`
		Limit      int   `json:"limit"`
		TotalItems int64 `json:"total_items"`
		TotalPages int   `json:"total_pages"`
	} `json:"meta"`
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (int, apiResponse) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "router-test")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var resp apiResponse
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return rec.Code, resp
}

func dataField(t *testing.T, resp apiResponse, field string) any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(resp.Data, &m))
	return m[field]
}

func TestRouterRequiresToken(t *testing.T) {
	s := newTestServer(t)

	code, resp := s.do(t, http.MethodGet, "/api/v1/employees/abc", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.False(t, resp.Success)
}

func TestRouterCompOffLeaveFlow(t *testing.T) {
	s := newTestServer(t)
	manager := s.token(t, "mgr-1", jwt.RoleManager)
	today := time.Now().Format("2006-01-02")

	code, resp := s.do(t, http.MethodPost, "/api/v1/employees", manager, map[string]any{"full_name": "Rina"})
	require.Equal(t, http.StatusCreated, code)
	employeeID := dataField(t, resp, "id").(string)
	employee := s.token(t, employeeID, jwt.RoleEmployee)

	// employees cannot credit their own balance
	code, _ = s.do(t, http.MethodPost, "/api/v1/comp-off/earn", employee, map[string]any{
		"employee_id": employeeID, "days": 2, "earned_date": today,
	})
	assert.Equal(t, http.StatusForbidden, code)

	code, resp = s.do(t, http.MethodPost, "/api/v1/comp-off/earn", manager, map[string]any{
		"employee_id": employeeID, "days": 2, "earned_date": today, "note": "weekend release",
	})
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "2", dataField(t, resp, "available_days"))

	code, resp = s.do(t, http.MethodPost, "/api/v1/leave-requests", employee, map[string]any{
		"start_date":    today,
		"end_date":      today,
		"leave_type":    "comp_off",
		"duration_type": "full_day",
		"reason":        "family",
	})
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "pending", dataField(t, resp, "status"))
	assert.Equal(t, employeeID, dataField(t, resp, "employee_id"))
	requestID := dataField(t, resp, "id").(string)

	code, _ = s.do(t, http.MethodPost, "/api/v1/leave-requests/"+requestID+"/review", employee,
		map[string]any{"decision": "approved"})
	assert.Equal(t, http.StatusForbidden, code)

	code, resp = s.do(t, http.MethodPost, "/api/v1/leave-requests/"+requestID+"/review", manager,
		map[string]any{"decision": "approved"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "approved", dataField(t, resp, "status"))

	code, resp = s.do(t, http.MethodPost, "/api/v1/leave-requests/"+requestID+"/review", manager,
		map[string]any{"decision": "rejected"})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "CONFLICT", resp.Error.Code)

	code, resp = s.do(t, http.MethodGet, "/api/v1/comp-off/employees/"+employeeID+"/balance", employee, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "1", dataField(t, resp, "available_days"))

	stranger := s.token(t, "someone-else", jwt.RoleEmployee)
	code, _ = s.do(t, http.MethodGet, "/api/v1/comp-off/employees/"+employeeID+"/balance", stranger, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = s.do(t, http.MethodDelete, "/api/v1/employees/"+employeeID, manager, nil)
	assert.Equal(t, http.StatusConflict, code)

	code, resp = s.do(t, http.MethodGet, "/api/v1/audit-logs?action="+audit.ActionReviewLeave, manager, nil)
	require.Equal(t, http.StatusOK, code)
	var entries []audit.EntryResponse
	require.NoError(t, json.Unmarshal(resp.Data, &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, audit.StatusFailed, entries[0].Status)
	assert.Equal(t, audit.StatusSuccess, entries[1].Status)
	require.NotNil(t, entries[1].IPAddress)
	assert.Equal(t, "192.0.2.1", *entries[1].IPAddress)
	require.NotNil(t, entries[1].UserAgent)
	assert.Equal(t, "router-test", *entries[1].UserAgent)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(2), resp.Meta.TotalItems)
	assert.Equal(t, 1, resp.Meta.Page)
	assert.Equal(t, 1, resp.Meta.TotalPages)
}

func TestRouterAuditPagination(t *testing.T) {
	s := newTestServer(t)
	manager := s.token(t, "mgr-1", jwt.RoleManager)
	for _, name := range []string{"Ani", "Bayu", "Citra"} {
		code, _ := s.do(t, http.MethodPost, "/api/v1/employees", manager, map[string]any{"full_name": name})
		require.Equal(t, http.StatusCreated, code)
	}

	code, resp := s.do(t, http.MethodGet, "/api/v1/audit-logs?action="+audit.ActionCreateEmployee+"&limit=2&offset=2", manager, nil)
	require.Equal(t, http.StatusOK, code)
	var entries []audit.EntryResponse
	require.NoError(t, json.Unmarshal(resp.Data, &entries))
	assert.Len(t, entries, 1)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, 2, resp.Meta.Page)
	assert.Equal(t, 2, resp.Meta.Limit)
	assert.Equal(t, int64(3), resp.Meta.TotalItems)
	assert.Equal(t, 2, resp.Meta.TotalPages)
}

func TestRouterCompOffExpiryRejectsFutureDates(t *testing.T) {
	s := newTestServer(t)
	manager := s.token(t, "mgr-1", jwt.RoleManager)
	today := time.Now().Format("2006-01-02")

	code, resp := s.do(t, http.MethodPost, "/api/v1/employees", manager, map[string]any{"full_name": "Dewi"})
	require.Equal(t, http.StatusCreated, code)
	employeeID := dataField(t, resp, "id").(string)

	code, _ = s.do(t, http.MethodPost, "/api/v1/comp-off/earn", manager, map[string]any{
		"employee_id": employeeID, "days": 2, "earned_date": today,
	})
	require.Equal(t, http.StatusCreated, code)

	code, resp = s.do(t, http.MethodPost, "/api/v1/comp-off/expire", manager, map[string]any{
		"employee_id": employeeID, "month": time.Now().Format("2006-01"), "as_of": "2099-01-01",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)

	code, _ = s.do(t, http.MethodPost, "/api/v1/comp-off/sweep?as_of=2099-01-01", manager, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, code)

	code, resp = s.do(t, http.MethodGet, "/api/v1/comp-off/employees/"+employeeID+"/balance", manager, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "2", dataField(t, resp, "available_days"))
	assert.Equal(t, "0", dataField(t, resp, "expired_days"))
}

func TestRouterAttendanceCheckOut(t *testing.T) {
	s := newTestServer(t)
	manager := s.token(t, "mgr-1", jwt.RoleManager)

	code, resp := s.do(t, http.MethodPost, "/api/v1/employees", manager, map[string]any{"full_name": "Budi"})
	require.Equal(t, http.StatusCreated, code)
	employeeID := dataField(t, resp, "id").(string)
	employee := s.token(t, employeeID, jwt.RoleEmployee)

	code, resp = s.do(t, http.MethodPost, "/api/v1/attendance/check-out", employee, map[string]any{
		"date":     "2026-03-02",
		"in_time":  "08:00",
		"out_time": "25:00",
		"status":   "on_time",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "BAD_REQUEST", resp.Error.Code)

	code, _ = s.do(t, http.MethodPost, "/api/v1/attendance/corrections", employee, map[string]any{"records": []any{}})
	assert.Equal(t, http.StatusForbidden, code)
}

func TestRouterAuditQueryValidation(t *testing.T) {
	s := newTestServer(t)
	manager := s.token(t, "mgr-1", jwt.RoleManager)

	code, resp := s.do(t, http.MethodGet, "/api/v1/audit-logs?limit=100000", manager, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)

	code, _ = s.do(t, http.MethodGet, "/api/v1/audit-logs?limit=abc", manager, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
}

func TestRouterExposesMetrics(t *testing.T) {
	s := newTestServer(t)
	manager := s.token(t, "mgr-1", jwt.RoleManager)
	s.do(t, http.MethodPost, "/api/v1/employees", manager, map[string]any{"full_name": "Sari"})

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "timekeeping_audit_writes_total"))
}
