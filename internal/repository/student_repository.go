package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/chamada-api/internal/models"
)

const studentColumns = `a.id, a.nome, a.matricula, COALESCE(a.turma_id::text, '') AS turma_id, a.created_at`

// StudentRepository reads the alunos roster.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// List returns the roster ordered by name, optionally narrowed to one class.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}
	if filter.ClassID != "" {
		conditions = append(conditions, fmt.Sprintf("a.turma_id = $%d", len(args)+1))
		args = append(args, filter.ClassID)
	}

	query := fmt.Sprintf(`SELECT %s FROM alunos a WHERE %s ORDER BY a.nome ASC, a.id ASC`, studentColumns, strings.Join(conditions, " AND "))
	students := make([]models.Student, 0)
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return students, nil
}

// FindByID fetches a single student. Missing rows surface as sql.ErrNoRows.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	query := fmt.Sprintf(`SELECT %s FROM alunos a WHERE a.id = $1`, studentColumns)
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		return nil, err
	}
	return &student, nil
}

// ClassMembers returns which of the given student IDs currently belong to the class.
func (r *StudentRepository) ClassMembers(ctx context.Context, classID string, studentIDs []string) (map[string]struct{}, error) {
	members := make(map[string]struct{}, len(studentIDs))
	if len(studentIDs) == 0 {
		return members, nil
	}
	const query = `SELECT a.id FROM alunos a WHERE a.turma_id = $1 AND a.id = ANY($2)`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, classID, pq.Array(studentIDs)); err != nil {
		return nil, fmt.Errorf("class members: %w", err)
	}
	for _, id := range ids {
		members[id] = struct{}{}
	}
	return members, nil
}
