package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/chamada-api/internal/models"
)

// ClassRepository reads turmas.
type ClassRepository struct {
	db *sqlx.DB
}

// NewClassRepository constructs a ClassRepository.
func NewClassRepository(db *sqlx.DB) *ClassRepository {
	return &ClassRepository{db: db}
}

// List returns every class ordered by name. The order is the enumeration order
// used for rankings and per-class statistics.
func (r *ClassRepository) List(ctx context.Context) ([]models.Class, error) {
	const query = `SELECT t.id, t.nome, t.numero_sala, t.created_at FROM turmas t ORDER BY t.nome ASC, t.id ASC`
	classes := make([]models.Class, 0)
	if err := r.db.SelectContext(ctx, &classes, query); err != nil {
		return nil, fmt.Errorf("list classes: %w", err)
	}
	return classes, nil
}

// FindByID fetches a class. Missing rows surface as sql.ErrNoRows.
func (r *ClassRepository) FindByID(ctx context.Context, id string) (*models.Class, error) {
	const query = `SELECT t.id, t.nome, t.numero_sala, t.created_at FROM turmas t WHERE t.id = $1`
	var class models.Class
	if err := r.db.GetContext(ctx, &class, query, id); err != nil {
		return nil, err
	}
	return &class, nil
}
