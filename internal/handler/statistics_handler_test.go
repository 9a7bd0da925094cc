package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/chamada-api/internal/dto"
	"github.com/noah-isme/chamada-api/internal/models"
)

type fakeStatisticsSrv struct {
	classes   []dto.ClassAttendanceStats
	report    *dto.AbsenteeReport
	alerts    []dto.WeeklyRiskAlert
	hit       bool
	err       error
	lastMin   int
	lastRef   models.Date
	riskCalls int
	minCalls  int
}

func (f *fakeStatisticsSrv) ClassStats(context.Context) ([]dto.ClassAttendanceStats, bool, error) {
	return f.classes, f.hit, f.err
}

func (f *fakeStatisticsSrv) Absentees(_ context.Context, minAbsences int) (*dto.AbsenteeReport, bool, error) {
	f.minCalls++
	f.lastMin = minAbsences
	return f.report, f.hit, f.err
}

func (f *fakeStatisticsSrv) WeeklyRisk(_ context.Context, ref models.Date) ([]dto.WeeklyRiskAlert, bool, error) {
	f.riskCalls++
	f.lastRef = ref
	return f.alerts, f.hit, f.err
}

func TestStatisticsHandlerClasses(t *testing.T) {
	srv := &fakeStatisticsSrv{
		classes: []dto.ClassAttendanceStats{{ClassID: "c1", ClassName: "1º A", TotalRecords: 10, PresentRate: 80}},
		hit:     true,
	}
	handler := NewStatisticsHandler(srv)

	c, rec := newTestContext(http.MethodGet, "/statistics/classes", nil)
	handler.Classes(c)

	require.Equal(t, http.StatusOK, rec.Code)
	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, true, envelope.Meta["cache_hit"])
	var rows []map[string]interface{}
	require.NoError(t, json.Unmarshal(envelope.Data, &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "1º A", rows[0]["nome"])
	assert.EqualValues(t, 80, rows[0]["taxa_presenca"])
}

func TestStatisticsHandlerAbsenteesPassesMinimum(t *testing.T) {
	srv := &fakeStatisticsSrv{report: &dto.AbsenteeReport{MinAbsences: 5}}
	handler := NewStatisticsHandler(srv)

	c, rec := newTestContext(http.MethodGet, "/statistics/absentees?minFaltas=5", nil)
	handler.Absentees(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, srv.lastMin)
}

func TestStatisticsHandlerAbsenteesRejectsNegative(t *testing.T) {
	srv := &fakeStatisticsSrv{}
	handler := NewStatisticsHandler(srv)

	c, rec := newTestContext(http.MethodGet, "/statistics/absentees?minFaltas=-1", nil)
	handler.Absentees(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStatisticsHandlerAbsenteesRejectsNonNumeric(t *testing.T) {
	srv := &fakeStatisticsSrv{report: &dto.AbsenteeReport{}}
	handler := NewStatisticsHandler(srv)

	c, rec := newTestContext(http.MethodGet, "/statistics/absentees?minFaltas=abc", nil)
	handler.Absentees(c)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, "VALIDATION_ERROR", envelope.Error.Code)
	assert.Zero(t, srv.minCalls)
}

func TestStatisticsHandlerWeeklyRisk(t *testing.T) {
	srv := &fakeStatisticsSrv{alerts: []dto.WeeklyRiskAlert{{StudentID: "s1", RecentAbsences: 5, Level: dto.RiskLevelCritical}}}
	handler := NewStatisticsHandler(srv)

	c, rec := newTestContext(http.MethodGet, "/statistics/weekly-risk?date=2024-10-18", nil)
	handler.WeeklyRisk(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2024-10-18", srv.lastRef.String())
	var alerts []map[string]interface{}
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &alerts))
	assert.Equal(t, "critico", alerts[0]["nivel"])
}

func TestStatisticsHandlerWeeklyRiskInvalidDate(t *testing.T) {
	srv := &fakeStatisticsSrv{}
	handler := NewStatisticsHandler(srv)

	c, rec := newTestContext(http.MethodGet, "/statistics/weekly-risk?date=ontem", nil)
	handler.WeeklyRisk(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, srv.riskCalls)
}
