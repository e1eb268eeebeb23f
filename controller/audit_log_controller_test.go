// controller/audit_log_controller_test.go
package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tb_errors "github.com/tracebit-io/tracebit/errors"
	"github.com/tracebit-io/tracebit/logging"
	"github.com/tracebit-io/tracebit/model"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	logging.InitLogger()
	os.Exit(m.Run())
}

type fakeAuditService struct {
	submitErr error
	submitted []model.AuditLogRequest

	logs map[uint64]*model.AuditLog

	searchLogs []model.AuditLog
	pagination model.Pagination
	searchErr  error
	lastQuery  model.AuditLogSearch
}

func (f *fakeAuditService) Submit(_ context.Context, req model.AuditLogRequest) error {
	if f.submitErr != nil {
		return f.submitErr
	}
	f.submitted = append(f.submitted, req)
	return nil
}

func (f *fakeAuditService) GetByID(_ context.Context, id uint64) (*model.AuditLog, error) {
	if log, ok := f.logs[id]; ok {
		return log, nil
	}
	return nil, tb_errors.ErrAuditLogNotFound
}

func (f *fakeAuditService) Search(_ context.Context, q model.AuditLogSearch) ([]model.AuditLog, model.Pagination, error) {
	f.lastQuery = q
	if f.searchErr != nil {
		return nil, model.Pagination{}, f.searchErr
	}
	return f.searchLogs, f.pagination, nil
}

func auditRouter(svc *fakeAuditService) *gin.Engine {
	r := gin.New()
	api := r.Group("/api/v1")
	NewAuditLogController(svc).RegisterRoutes(api)
	return r
}

func submitBody() []byte {
	body, _ := json.Marshal(model.AuditLogRequest{
		UserID: "user_7",
		Action: "LOGIN",
		Target: "dashboard",
		Meta: model.MetaDataRequest{
			IP:     "93.184.216.34",
			Device: "Chrome on macOS",
		},
	})
	return body
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) model.APIResponse {
	t.Helper()
	var resp model.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestSubmitAuditLogAccepted(t *testing.T) {
	svc := &fakeAuditService{}
	r := auditRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/logs", bytes.NewReader(submitBody()))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusAccepted, w.Code)
	resp := decodeEnvelope(t, w)
	assert.False(t, resp.Error)
	require.Len(t, svc.submitted, 1)
	assert.Equal(t, "user_7", svc.submitted[0].UserID)
}

func TestSubmitAuditLogRejectsMalformedJSON(t *testing.T) {
	r := auditRouter(&fakeAuditService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/logs", bytes.NewReader([]byte("{not json")))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.True(t, decodeEnvelope(t, w).Error)
}

func TestSubmitAuditLogRejectsMissingFields(t *testing.T) {
	r := auditRouter(&fakeAuditService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/logs", bytes.NewReader([]byte(`{"userId":"user_7"}`)))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubmitAuditLogValidationErrorCarriesFields(t *testing.T) {
	svc := &fakeAuditService{
		submitErr: tb_errors.FieldError("meta.ip", "private or local IPs are not allowed"),
	}
	r := auditRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/logs", bytes.NewReader(submitBody()))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "meta.ip")
}

func TestGetAuditLogByID(t *testing.T) {
	svc := &fakeAuditService{logs: map[uint64]*model.AuditLog{
		42: {ID: 42, UserID: "user_7", Action: "LOGIN", CreatedAt: time.Now().UTC()},
	}}
	r := auditRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/logs/42", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeEnvelope(t, w)
	assert.False(t, resp.Error)
	assert.Contains(t, w.Body.String(), "user_7")
}

func TestGetAuditLogByIDNotFound(t *testing.T) {
	r := auditRouter(&fakeAuditService{logs: map[uint64]*model.AuditLog{}})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/logs/9999", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetAuditLogByIDRejectsBadID(t *testing.T) {
	r := auditRouter(&fakeAuditService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/logs/abc", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchAuditLogsPassesQuery(t *testing.T) {
	svc := &fakeAuditService{
		searchLogs: []model.AuditLog{{ID: 1, UserID: "user_7", Action: "LOGIN"}},
		pagination: model.Pagination{Page: 1, Size: 10, TotalElements: 11, TotalPages: 2, Last: true},
	}
	r := auditRouter(svc)

	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/logs?userId=user_7&action=LOGIN&from=2026-03-01T00:00:00Z&page=1&size=10", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user_7", svc.lastQuery.UserID)
	assert.Equal(t, "LOGIN", svc.lastQuery.Action)
	assert.Equal(t, 1, svc.lastQuery.Page)
	assert.Equal(t, 10, svc.lastQuery.Size)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), svc.lastQuery.From)
	assert.Contains(t, w.Body.String(), "totalElements")
}

func TestSearchAuditLogsRejectsBadPagination(t *testing.T) {
	r := auditRouter(&fakeAuditService{})

	for _, query := range []string{"page=-1", "size=0", "size=101", "page=abc"} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/logs?"+query, nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code, "query %q", query)
	}
}

func TestSearchAuditLogsRejectsBadTimestamp(t *testing.T) {
	r := auditRouter(&fakeAuditService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/logs?from=yesterday", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
