package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/chamada-api/internal/dto"
	"github.com/noah-isme/chamada-api/internal/middleware"
	"github.com/noah-isme/chamada-api/internal/models"
	appErrors "github.com/noah-isme/chamada-api/pkg/errors"
)

type responseEnvelope struct {
	Data       json.RawMessage        `json:"data"`
	Meta       map[string]interface{} `json:"meta"`
	Pagination map[string]interface{} `json:"pagination"`
	Error      struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) responseEnvelope {
	t.Helper()
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope
}

func newTestContext(method, target string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	c.Request = req
	middleware.WithResponseMeta()(c)
	return c, rec
}

type fakeDashboardSrv struct {
	stats   *dto.DashboardStats
	hit     bool
	err     error
	lastRef models.Date
}

func (f *fakeDashboardSrv) Stats(_ context.Context, ref models.Date) (*dto.DashboardStats, bool, error) {
	f.lastRef = ref
	return f.stats, f.hit, f.err
}

func TestDashboardHandlerStatsDefaultsToToday(t *testing.T) {
	srv := &fakeDashboardSrv{stats: &dto.DashboardStats{TotalActiveStudents: 42}, hit: true}
	handler := NewDashboardHandler(srv)

	c, rec := newTestContext(http.MethodGet, "/dashboard/stats", nil)
	handler.Stats(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, srv.lastRef.IsZero())
	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, true, envelope.Meta["cache_hit"])
	var data map[string]interface{}
	require.NoError(t, json.Unmarshal(envelope.Data, &data))
	assert.EqualValues(t, 42, data["totalAlunosAtivos"])
}

func TestDashboardHandlerStatsParsesDate(t *testing.T) {
	srv := &fakeDashboardSrv{stats: &dto.DashboardStats{}}
	handler := NewDashboardHandler(srv)

	c, rec := newTestContext(http.MethodGet, "/dashboard/stats?date=2024-10-18", nil)
	handler.Stats(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2024-10-18", srv.lastRef.String())
	assert.Equal(t, false, decodeEnvelope(t, rec).Meta["cache_hit"])
}

func TestDashboardHandlerStatsInvalidDate(t *testing.T) {
	handler := NewDashboardHandler(&fakeDashboardSrv{})

	c, rec := newTestContext(http.MethodGet, "/dashboard/stats?date=18/10/2024", nil)
	handler.Stats(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDashboardHandlerStatsUnavailable(t *testing.T) {
	err := appErrors.Wrap(errors.New("db down"), appErrors.ErrDashboardUnavailable.Code, appErrors.ErrDashboardUnavailable.Status, "could not load dashboard")
	handler := NewDashboardHandler(&fakeDashboardSrv{err: err})

	c, rec := newTestContext(http.MethodGet, "/dashboard/stats", nil)
	handler.Stats(c)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, "DASHBOARD_UNAVAILABLE", envelope.Error.Code)
	assert.Equal(t, "could not load dashboard", envelope.Error.Message)
}
