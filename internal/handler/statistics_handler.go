package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/chamada-api/internal/dto"
	"github.com/noah-isme/chamada-api/internal/models"
	appErrors "github.com/noah-isme/chamada-api/pkg/errors"
	"github.com/noah-isme/chamada-api/pkg/response"
)

type statisticsService interface {
	ClassStats(ctx context.Context) ([]dto.ClassAttendanceStats, bool, error)
	Absentees(ctx context.Context, minAbsences int) (*dto.AbsenteeReport, bool, error)
	WeeklyRisk(ctx context.Context, ref models.Date) ([]dto.WeeklyRiskAlert, bool, error)
}

// StatisticsHandler exposes the per-class and per-student attendance statistics.
type StatisticsHandler struct {
	service statisticsService
}

// NewStatisticsHandler constructs the handler.
func NewStatisticsHandler(service statisticsService) *StatisticsHandler {
	return &StatisticsHandler{service: service}
}

// Classes godoc
// @Summary Attendance statistics per class
// @Tags Statistics
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /statistics/classes [get]
func (h *StatisticsHandler) Classes(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	rows, cacheHit, err := h.service.ClassStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil, respondMeta(c, cacheHit))
}

// Absentees godoc
// @Summary Students with repeated absences
// @Tags Statistics
// @Produce json
// @Param minFaltas query int false "Minimum absences. Defaults to the configured threshold"
// @Success 200 {object} response.Envelope
// @Router /statistics/absentees [get]
func (h *StatisticsHandler) Absentees(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	minAbsences, err := parseIntParam(c, "minFaltas", 0)
	if err != nil {
		response.Error(c, err)
		return
	}
	if minAbsences < 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "minFaltas must not be negative"))
		return
	}
	report, cacheHit, err := h.service.Absentees(c.Request.Context(), minAbsences)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil, respondMeta(c, cacheHit))
}

// WeeklyRisk godoc
// @Summary Students at risk over the last business days
// @Tags Statistics
// @Produce json
// @Param date query string false "Reference date (YYYY-MM-DD). Defaults to today"
// @Success 200 {object} response.Envelope
// @Router /statistics/weekly-risk [get]
func (h *StatisticsHandler) WeeklyRisk(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	ref, err := parseDateParam(c.Query("date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	var day models.Date
	if ref != nil {
		day = *ref
	}
	alerts, cacheHit, err := h.service.WeeklyRisk(c.Request.Context(), day)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, alerts, nil, respondMeta(c, cacheHit))
}
