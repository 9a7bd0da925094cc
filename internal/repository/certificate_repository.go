package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/chamada-api/internal/models"
)

// CertificateRepository persists atestados.
type CertificateRepository struct {
	db *sqlx.DB
}

// NewCertificateRepository constructs a CertificateRepository.
func NewCertificateRepository(db *sqlx.DB) *CertificateRepository {
	return &CertificateRepository{db: db}
}

const certificateColumns = `c.id, c.aluno_id, c.data_inicio, c.data_fim, c.descricao, COALESCE(c.status, '') AS status, c.created_at`

// ListByStudent returns one student's certificates, newest first.
func (r *CertificateRepository) ListByStudent(ctx context.Context, studentID string) ([]models.Certificate, error) {
	query := fmt.Sprintf(`SELECT %s FROM atestados c WHERE c.aluno_id = $1 ORDER BY c.created_at DESC, c.id ASC`, certificateColumns)
	certificates := make([]models.Certificate, 0)
	if err := r.db.SelectContext(ctx, &certificates, query, studentID); err != nil {
		return nil, fmt.Errorf("list student certificates: %w", err)
	}
	return certificates, nil
}

// FindByID fetches a certificate. Missing rows surface as sql.ErrNoRows.
func (r *CertificateRepository) FindByID(ctx context.Context, id string) (*models.Certificate, error) {
	query := fmt.Sprintf(`SELECT %s FROM atestados c WHERE c.id = $1`, certificateColumns)
	var certificate models.Certificate
	if err := r.db.GetContext(ctx, &certificate, query, id); err != nil {
		return nil, err
	}
	return &certificate, nil
}

// Create inserts a certificate, assigning its ID when empty.
func (r *CertificateRepository) Create(ctx context.Context, certificate *models.Certificate) error {
	if certificate.ID == "" {
		certificate.ID = uuid.NewString()
	}
	const query = `INSERT INTO atestados (id, aluno_id, data_inicio, data_fim, descricao, status, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := r.db.ExecContext(ctx, query, certificate.ID, certificate.StudentID, certificate.StartDate, certificate.EndDate, certificate.Description, certificate.Status, certificate.CreatedAt); err != nil {
		return fmt.Errorf("create certificate: %w", err)
	}
	return nil
}

// Update overwrites the editable columns. Unknown IDs surface as sql.ErrNoRows.
func (r *CertificateRepository) Update(ctx context.Context, certificate *models.Certificate) error {
	const query = `UPDATE atestados SET data_inicio = $2, data_fim = $3, descricao = $4, status = $5 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, certificate.ID, certificate.StartDate, certificate.EndDate, certificate.Description, certificate.Status)
	if err != nil {
		return fmt.Errorf("update certificate: %w", err)
	}
	return expectAffected(res)
}

// ListByStudents returns the certificates of the given students ordered by start date.
func (r *CertificateRepository) ListByStudents(ctx context.Context, studentIDs []string) ([]models.Certificate, error) {
	certificates := make([]models.Certificate, 0)
	if len(studentIDs) == 0 {
		return certificates, nil
	}
	const query = `SELECT c.id, c.aluno_id, c.data_inicio, c.data_fim, c.descricao, COALESCE(c.status, '') AS status
FROM atestados c
WHERE c.aluno_id = ANY($1)
ORDER BY c.data_inicio ASC, c.id ASC`
	if err := r.db.SelectContext(ctx, &certificates, query, pq.Array(studentIDs)); err != nil {
		return nil, fmt.Errorf("list certificates: %w", err)
	}
	return certificates, nil
}
