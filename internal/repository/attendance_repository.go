package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/chamada-api/internal/models"
)

// ErrDuplicateAttendance is returned when a student already has a roll call for the class and date.
var ErrDuplicateAttendance = errors.New("attendance already recorded")

const attendanceRecordColumns = `p.id, p.aluno_id, p.turma_id, p.data_chamada, p.presente, COALESCE(p.falta_justificada, false) AS falta_justificada,
        j.motivo, p.created_at, a.nome AS aluno_nome, a.matricula, t.nome AS turma_nome`

const attendanceRecordJoins = `FROM presencas p
JOIN alunos a ON a.id = p.aluno_id
LEFT JOIN turmas t ON t.id = p.turma_id
LEFT JOIN justificativas_faltas j ON j.presenca_id = p.id`

// AttendanceRepository persists presencas and their justificativas_faltas.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs the repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// Snapshot returns the raw rows the statistics engine aggregates.
func (r *AttendanceRepository) Snapshot(ctx context.Context, scope models.AttendanceScope) ([]models.Attendance, error) {
	where := []string{"1=1"}
	args := []interface{}{}
	if scope.ClassID != "" {
		where = append(where, fmt.Sprintf("p.turma_id = $%d", len(args)+1))
		args = append(args, scope.ClassID)
	}
	if scope.From != nil {
		where = append(where, fmt.Sprintf("p.data_chamada >= $%d", len(args)+1))
		args = append(args, *scope.From)
	}
	if scope.To != nil {
		where = append(where, fmt.Sprintf("p.data_chamada <= $%d", len(args)+1))
		args = append(args, *scope.To)
	}

	query := fmt.Sprintf(`SELECT p.id, p.aluno_id, p.turma_id, p.data_chamada, p.presente, COALESCE(p.falta_justificada, false) AS falta_justificada, p.created_at
FROM presencas p
WHERE %s
ORDER BY p.data_chamada ASC, p.id ASC`, strings.Join(where, " AND "))

	records := make([]models.Attendance, 0)
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("attendance snapshot: %w", err)
	}
	return records, nil
}

// List returns attendance rows with student and class labels.
func (r *AttendanceRepository) List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, int, error) {
	where := []string{"1=1"}
	args := []interface{}{}
	if filter.ClassID != "" {
		where = append(where, fmt.Sprintf("p.turma_id = $%d", len(args)+1))
		args = append(args, filter.ClassID)
	}
	if filter.StudentID != "" {
		where = append(where, fmt.Sprintf("p.aluno_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.Present != nil {
		where = append(where, fmt.Sprintf("p.presente = $%d", len(args)+1))
		args = append(args, *filter.Present)
	}
	if filter.DateFrom != nil {
		where = append(where, fmt.Sprintf("p.data_chamada >= $%d", len(args)+1))
		args = append(args, *filter.DateFrom)
	}
	if filter.DateTo != nil {
		where = append(where, fmt.Sprintf("p.data_chamada <= $%d", len(args)+1))
		args = append(args, *filter.DateTo)
	}
	whereClause := strings.Join(where, " AND ")

	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT %s
%s
WHERE %s
ORDER BY p.data_chamada %s, a.nome ASC
LIMIT %d OFFSET %d`, attendanceRecordColumns, attendanceRecordJoins, whereClause, order, size, offset)

	rows := make([]models.AttendanceRecord, 0)
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list attendance: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM presencas p WHERE %s", whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count attendance: %w", err)
	}
	return rows, total, nil
}

// RollCall returns the roll call of a class on a date, ordered by student name.
func (r *AttendanceRepository) RollCall(ctx context.Context, classID string, date models.Date) ([]models.AttendanceRecord, error) {
	query := fmt.Sprintf(`SELECT %s
%s
WHERE p.turma_id = $1 AND p.data_chamada = $2
ORDER BY a.nome ASC`, attendanceRecordColumns, attendanceRecordJoins)
	rows := make([]models.AttendanceRecord, 0)
	if err := r.db.SelectContext(ctx, &rows, query, classID, date); err != nil {
		return nil, fmt.Errorf("roll call: %w", err)
	}
	return rows, nil
}

// FindByID fetches a record with its justification. Missing rows surface as sql.ErrNoRows.
func (r *AttendanceRepository) FindByID(ctx context.Context, id string) (*models.Attendance, error) {
	const query = `SELECT p.id, p.aluno_id, p.turma_id, p.data_chamada, p.presente, COALESCE(p.falta_justificada, false) AS falta_justificada, j.motivo, p.created_at
FROM presencas p
LEFT JOIN justificativas_faltas j ON j.presenca_id = p.id
WHERE p.id = $1`
	var record models.Attendance
	if err := r.db.GetContext(ctx, &record, query, id); err != nil {
		return nil, err
	}
	return &record, nil
}

// Create stores one record and its justification, failing with ErrDuplicateAttendance on conflicts.
func (r *AttendanceRepository) Create(ctx context.Context, record *models.Attendance) error {
	if _, err := r.BulkInsert(ctx, []*models.Attendance{record}, true); err != nil {
		return err
	}
	return nil
}

// BulkInsert stores a roll call in one transaction. In atomic mode the first
// duplicate aborts everything; otherwise duplicates are skipped and returned.
func (r *AttendanceRepository) BulkInsert(ctx context.Context, records []*models.Attendance, atomic bool) ([]*models.Attendance, error) {
	if len(records) == 0 {
		return nil, nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin attendance insert: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	const insert = `INSERT INTO presencas (id, aluno_id, turma_id, data_chamada, presente, falta_justificada, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (aluno_id, turma_id, data_chamada) DO NOTHING RETURNING id`

	conflicts := make([]*models.Attendance, 0)
	now := time.Now().UTC()
	for _, rec := range records {
		if rec.ID == "" {
			rec.ID = uuid.NewString()
		}
		if rec.CreatedAt.IsZero() {
			rec.CreatedAt = now
		}
		if rec.Present {
			rec.Excused = false
			rec.Reason = nil
		}
		var insertedID string
		if err := tx.QueryRowxContext(ctx, insert, rec.ID, rec.StudentID, rec.ClassID, rec.Date, rec.Present, rec.Excused, rec.CreatedAt).Scan(&insertedID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				if atomic {
					return nil, fmt.Errorf("student %s on %s: %w", rec.StudentID, rec.Date, ErrDuplicateAttendance)
				}
				conflicts = append(conflicts, rec)
				continue
			}
			return nil, fmt.Errorf("insert attendance: %w", err)
		}
		if rec.Reason != nil {
			if err := insertJustification(ctx, tx, rec.ID, *rec.Reason, now); err != nil {
				return nil, err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit attendance insert: %w", err)
	}
	committed = true
	return conflicts, nil
}

// UpdateStatus rewrites the presence flags and replaces any justification.
func (r *AttendanceRepository) UpdateStatus(ctx context.Context, id string, present, excused bool, reason *string) error {
	return r.withTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, `UPDATE presencas SET presente = $2, falta_justificada = $3 WHERE id = $1`, id, present, excused)
		if err != nil {
			return fmt.Errorf("update attendance: %w", err)
		}
		if err := expectAffected(res); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM justificativas_faltas WHERE presenca_id = $1`, id); err != nil {
			return fmt.Errorf("clear justification: %w", err)
		}
		if reason != nil && !present {
			return insertJustification(ctx, tx, id, *reason, time.Now().UTC())
		}
		return nil
	})
}

// Justify marks an absence as justified and stores the reason. Present records are
// left untouched and reported as sql.ErrNoRows.
func (r *AttendanceRepository) Justify(ctx context.Context, id, reason string) error {
	return r.withTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, `UPDATE presencas SET falta_justificada = true WHERE id = $1 AND presente = false`, id)
		if err != nil {
			return fmt.Errorf("justify attendance: %w", err)
		}
		if err := expectAffected(res); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM justificativas_faltas WHERE presenca_id = $1`, id); err != nil {
			return fmt.Errorf("clear justification: %w", err)
		}
		return insertJustification(ctx, tx, id, reason, time.Now().UTC())
	})
}

// Delete removes a record together with its justification.
func (r *AttendanceRepository) Delete(ctx context.Context, id string) error {
	return r.withTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM justificativas_faltas WHERE presenca_id = $1`, id); err != nil {
			return fmt.Errorf("delete justification: %w", err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM presencas WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("delete attendance: %w", err)
		}
		return expectAffected(res)
	})
}

func (r *AttendanceRepository) withTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin attendance tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit attendance tx: %w", err)
	}
	return nil
}

func insertJustification(ctx context.Context, tx *sqlx.Tx, attendanceID, reason string, at time.Time) error {
	const query = `INSERT INTO justificativas_faltas (id, presenca_id, motivo, created_at) VALUES ($1, $2, $3, $4)`
	if _, err := tx.ExecContext(ctx, query, uuid.NewString(), attendanceID, reason, at); err != nil {
		return fmt.Errorf("insert justification: %w", err)
	}
	return nil
}

func expectAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
