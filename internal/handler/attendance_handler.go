package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/chamada-api/internal/dto"
	"github.com/noah-isme/chamada-api/internal/models"
	"github.com/noah-isme/chamada-api/internal/service"
	appErrors "github.com/noah-isme/chamada-api/pkg/errors"
	"github.com/noah-isme/chamada-api/pkg/response"
)

type attendanceService interface {
	List(ctx context.Context, req service.AttendanceListRequest) ([]models.AttendanceRecord, *models.Pagination, error)
	RollCall(ctx context.Context, query dto.RollCallQuery) ([]models.AttendanceRecord, error)
	Record(ctx context.Context, req dto.RecordAttendanceRequest, actor *models.JWTClaims) (*models.Attendance, error)
	RecordRollCall(ctx context.Context, req dto.RollCallRequest, actor *models.JWTClaims) (*dto.RollCallResult, error)
	UpdateStatus(ctx context.Context, id string, req dto.UpdateAttendanceRequest, actor *models.JWTClaims) (*models.Attendance, error)
	Justify(ctx context.Context, id string, req dto.JustifyAbsenceRequest, actor *models.JWTClaims) (*models.Attendance, error)
	Delete(ctx context.Context, id string, actor *models.JWTClaims) error
}

// AttendanceHandler exposes roll-call recording and lookup endpoints.
type AttendanceHandler struct {
	service attendanceService
}

// NewAttendanceHandler constructs the handler.
func NewAttendanceHandler(service attendanceService) *AttendanceHandler {
	return &AttendanceHandler{service: service}
}

// List godoc
// @Summary List attendance records
// @Tags Attendance
// @Produce json
// @Param turmaId query string false "Class ID"
// @Param alunoId query string false "Student ID"
// @Param from query string false "From date (YYYY-MM-DD)"
// @Param to query string false "To date (YYYY-MM-DD)"
// @Param presente query bool false "Filter by presence"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Param sort query string false "Sort order by date (asc/desc)"
// @Success 200 {object} response.Envelope
// @Router /attendance [get]
func (h *AttendanceHandler) List(c *gin.Context) {
	req := service.AttendanceListRequest{
		ClassID:   strings.TrimSpace(c.Query("turmaId")),
		StudentID: strings.TrimSpace(c.Query("alunoId")),
		Page:      parseQueryInt(c, "page", 1),
		PageSize:  parseQueryInt(c, "pageSize", 50),
		SortOrder: c.Query("sort"),
	}
	var err error
	if req.From, err = parseDateParam(c.Query("from")); err != nil {
		response.Error(c, err)
		return
	}
	if req.To, err = parseDateParam(c.Query("to")); err != nil {
		response.Error(c, err)
		return
	}
	if req.Present, err = parseBoolParam(c.Query("presente"), "presente"); err != nil {
		response.Error(c, err)
		return
	}

	rows, pagination, err := h.service.List(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, pagination)
}

// RollCall godoc
// @Summary Roll call of a class for a date
// @Tags Attendance
// @Produce json
// @Param turmaId query string true "Class ID"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /attendance/roll-call [get]
func (h *AttendanceHandler) RollCall(c *gin.Context) {
	classID := strings.TrimSpace(c.Query("turmaId"))
	if classID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "turmaId is required"))
		return
	}
	date, err := parseDateParam(c.Query("date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if date == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "date is required"))
		return
	}

	rows, err := h.service.RollCall(c.Request.Context(), dto.RollCallQuery{ClassID: classID, Date: *date})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, rows)
}

// Record godoc
// @Summary Record one attendance entry
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body dto.RecordAttendanceRequest true "Attendance payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /attendance [post]
func (h *AttendanceHandler) Record(c *gin.Context) {
	var req dto.RecordAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	claims := claimsFromContext(c)
	record, err := h.service.Record(c.Request.Context(), req, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, record)
}

// RecordRollCall godoc
// @Summary Record a whole class roll call
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body dto.RollCallRequest true "Roll call payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /attendance/roll-call [post]
func (h *AttendanceHandler) RecordRollCall(c *gin.Context) {
	var req dto.RollCallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	claims := claimsFromContext(c)
	result, err := h.service.RecordRollCall(c.Request.Context(), req, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// UpdateStatus godoc
// @Summary Change the status of an attendance record
// @Tags Attendance
// @Accept json
// @Produce json
// @Param id path string true "Attendance ID"
// @Param payload body dto.UpdateAttendanceRequest true "Status payload"
// @Success 200 {object} response.Envelope
// @Router /attendance/{id} [patch]
func (h *AttendanceHandler) UpdateStatus(c *gin.Context) {
	var req dto.UpdateAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	claims := claimsFromContext(c)
	record, err := h.service.UpdateStatus(c.Request.Context(), c.Param("id"), req, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, record)
}

// Justify godoc
// @Summary Justify an absence
// @Tags Attendance
// @Accept json
// @Produce json
// @Param id path string true "Attendance ID"
// @Param payload body dto.JustifyAbsenceRequest true "Justification payload"
// @Success 200 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /attendance/{id}/justification [post]
func (h *AttendanceHandler) Justify(c *gin.Context) {
	var req dto.JustifyAbsenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	claims := claimsFromContext(c)
	record, err := h.service.Justify(c.Request.Context(), c.Param("id"), req, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, record)
}

// Delete godoc
// @Summary Delete an attendance record
// @Tags Attendance
// @Param id path string true "Attendance ID"
// @Success 204
// @Router /attendance/{id} [delete]
func (h *AttendanceHandler) Delete(c *gin.Context) {
	claims := claimsFromContext(c)
	if err := h.service.Delete(c.Request.Context(), c.Param("id"), claims); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
