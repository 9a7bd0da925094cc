package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/chamada-api/internal/models"
)

var certificateRowColumns = []string{"id", "aluno_id", "data_inicio", "data_fim", "descricao", "status", "created_at"}

func TestCertificateRepositoryListByStudent(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewCertificateRepository(db)

	start := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("FROM atestados c WHERE c.aluno_id = $1 ORDER BY c.created_at DESC, c.id ASC")).
		WithArgs("s1").
		WillReturnRows(sqlmock.NewRows(certificateRowColumns).
			AddRow("c2", "s1", start.AddDate(0, 1, 0), start.AddDate(0, 1, 1), "Consulta", "pendente", time.Now()).
			AddRow("c1", "s1", start, start.AddDate(0, 0, 2), "Gripe", "aprovado", time.Now().Add(-time.Hour)))

	certs, err := repo.ListByStudent(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, certs, 2)
	assert.Equal(t, "c2", certs[0].ID)
	assert.Equal(t, models.NewDate(2024, time.April, 4), certs[0].StartDate)
	assert.Equal(t, models.CertificateStatusApproved, certs[1].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCertificateRepositoryCreateAssignsID(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewCertificateRepository(db)

	created := time.Date(2024, 10, 18, 9, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO atestados (id, aluno_id, data_inicio, data_fim, descricao, status, created_at)")).
		WithArgs(sqlmock.AnyArg(), "s1", "2024-10-14", "2024-10-16", "Gripe", "pendente", created).
		WillReturnResult(sqlmock.NewResult(0, 1))

	cert := &models.Certificate{
		StudentID:   "s1",
		StartDate:   models.NewDate(2024, time.October, 14),
		EndDate:     models.NewDate(2024, time.October, 16),
		Description: "Gripe",
		Status:      models.CertificateStatusPending,
		CreatedAt:   created,
	}
	require.NoError(t, repo.Create(context.Background(), cert))
	assert.NotEmpty(t, cert.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCertificateRepositoryUpdate(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewCertificateRepository(db)

	query := regexp.QuoteMeta("UPDATE atestados SET data_inicio = $2, data_fim = $3, descricao = $4, status = $5 WHERE id = $1")
	mock.ExpectExec(query).
		WithArgs("c1", "2024-10-14", "2024-10-18", "Gripe forte", "aprovado").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(query).
		WithArgs("missing", "2024-10-14", "2024-10-18", "Gripe forte", "aprovado").
		WillReturnResult(sqlmock.NewResult(0, 0))

	cert := &models.Certificate{
		ID:          "c1",
		StartDate:   models.NewDate(2024, time.October, 14),
		EndDate:     models.NewDate(2024, time.October, 18),
		Description: "Gripe forte",
		Status:      models.CertificateStatusApproved,
	}
	require.NoError(t, repo.Update(context.Background(), cert))

	cert.ID = "missing"
	assert.ErrorIs(t, repo.Update(context.Background(), cert), sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCertificateRepositoryFindByIDMissing(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewCertificateRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM atestados c WHERE c.id = $1")).
		WithArgs("nope").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "nope")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
