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

type certificateService interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.Certificate, error)
	Create(ctx context.Context, studentID string, req dto.CreateCertificateRequest, actor *models.JWTClaims) (*models.Certificate, error)
	Update(ctx context.Context, id string, req dto.UpdateCertificateRequest, actor *models.JWTClaims) (*models.Certificate, error)
}

// CertificateHandler manages student atestados.
type CertificateHandler struct {
	service certificateService
}

// NewCertificateHandler constructs the handler.
func NewCertificateHandler(service certificateService) *CertificateHandler {
	return &CertificateHandler{service: service}
}

// List godoc
// @Summary List a student's certificates
// @Tags Certificates
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{id}/certificates [get]
func (h *CertificateHandler) List(c *gin.Context) {
	rows, err := h.service.ListByStudent(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, rows)
}

// Create godoc
// @Summary Register a certificate for a student
// @Tags Certificates
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param payload body dto.CreateCertificateRequest true "Certificate payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /students/{id}/certificates [post]
func (h *CertificateHandler) Create(c *gin.Context) {
	var req dto.CreateCertificateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	claims := claimsFromContext(c)
	certificate, err := h.service.Create(c.Request.Context(), c.Param("id"), req, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, certificate)
}

// Update godoc
// @Summary Edit a certificate or change its status
// @Tags Certificates
// @Accept json
// @Produce json
// @Param id path string true "Certificate ID"
// @Param payload body dto.UpdateCertificateRequest true "Fields to change"
// @Success 200 {object} response.Envelope
// @Router /certificates/{id} [patch]
func (h *CertificateHandler) Update(c *gin.Context) {
	var req dto.UpdateCertificateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	claims := claimsFromContext(c)
	certificate, err := h.service.Update(c.Request.Context(), c.Param("id"), req, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, certificate)
}
