package models

import "time"

// Certificate review states.
const (
	CertificateStatusPending  = "pendente"
	CertificateStatusApproved = "aprovado"
	CertificateStatusRejected = "rejeitado"
)

// Certificate is a medical certificate (atestado) covering a date range.
type Certificate struct {
	ID          string    `db:"id" json:"id"`
	StudentID   string    `db:"aluno_id" json:"aluno_id"`
	StartDate   Date      `db:"data_inicio" json:"data_inicio"`
	EndDate     Date      `db:"data_fim" json:"data_fim"`
	Description string    `db:"descricao" json:"descricao"`
	Status      string    `db:"status" json:"status"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
