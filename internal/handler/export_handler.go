package handler

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/chamada-api/internal/dto"
	appErrors "github.com/noah-isme/chamada-api/pkg/errors"
	"github.com/noah-isme/chamada-api/pkg/response"
)

type exportService interface {
	ClassReport(ctx context.Context, req dto.ClassExportRequest) (*dto.ExportResult, error)
	Open(token string) (*os.File, string, error)
}

// ExportHandler serves class report exports.
type ExportHandler struct {
	service exportService
}

// NewExportHandler constructs the handler.
func NewExportHandler(service exportService) *ExportHandler {
	return &ExportHandler{service: service}
}

// ClassReport godoc
// @Summary Export the monthly absence report of a class
// @Tags Exports
// @Produce json
// @Param id path string true "Class ID"
// @Param format query string false "csv or pdf (default csv)"
// @Param year query int false "Restrict to a calendar year"
// @Success 201 {object} response.Envelope
// @Router /exports/classes/{id} [post]
func (h *ExportHandler) ClassReport(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "export service not configured"))
		return
	}
	year := parseQueryInt(c, "year", 0)
	if year < 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "year must be positive"))
		return
	}
	result, err := h.service.ClassReport(c.Request.Context(), dto.ClassExportRequest{
		ClassID: c.Param("id"),
		Format:  dto.ExportFormat(strings.TrimSpace(c.Query("format"))),
		Year:    year,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Download godoc
// @Summary Download an export via signed token
// @Tags Exports
// @Produce octet-stream
// @Param token path string true "Signed token"
// @Success 200 {file} binary
// @Failure 403 {object} response.Envelope
// @Router /exports/download/{token} [get]
func (h *ExportHandler) Download(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "export service not configured"))
		return
	}
	token := strings.TrimSpace(c.Param("token"))
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}
	file, name, err := h.service.Open(token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close() //nolint:errcheck

	info, err := file.Stat()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read export"))
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", name))
	c.Header("Cache-Control", "no-store")
	c.DataFromReader(http.StatusOK, info.Size(), contentType(name), file, nil)
}

func contentType(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return "application/pdf"
	case ".csv":
		return "text/csv; charset=utf-8"
	default:
		return "application/octet-stream"
	}
}
