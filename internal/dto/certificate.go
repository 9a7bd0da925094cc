package dto

import "github.com/noah-isme/chamada-api/internal/models"

// CreateCertificateRequest registers an atestado for a student. New certificates
// start as pendente.
type CreateCertificateRequest struct {
	StartDate   models.Date `json:"data_inicio" validate:"required"`
	EndDate     models.Date `json:"data_fim" validate:"required"`
	Description string      `json:"descricao" validate:"required,max=500"`
}

// UpdateCertificateRequest edits an atestado. Omitted fields keep their value.
type UpdateCertificateRequest struct {
	StartDate   *models.Date `json:"data_inicio"`
	EndDate     *models.Date `json:"data_fim"`
	Description *string      `json:"descricao" validate:"omitempty,max=500"`
	Status      *string      `json:"status" validate:"omitempty,certificate_status"`
}
