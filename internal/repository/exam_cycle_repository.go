package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"

	"github.com/noah-isme/exam-allocation-api/internal/models"
)

// ExamCycleRepository persists committed exam timetables.
type ExamCycleRepository struct {
	db *sqlx.DB
}

// NewExamCycleRepository constructs repository.
func NewExamCycleRepository(db *sqlx.DB) *ExamCycleRepository {
	return &ExamCycleRepository{db: db}
}

func (r *ExamCycleRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

const examCycleColumns = `id, name, category, year, parity, policy, start_date, end_date, status, meta, created_at, updated_at`

// Create inserts a new cycle in PENDING status unless another status is set.
func (r *ExamCycleRepository) Create(ctx context.Context, exec sqlx.ExtContext, cycle *models.ExamCycle) error {
	if cycle == nil {
		return fmt.Errorf("exam cycle payload is nil")
	}
	if cycle.ID == "" {
		cycle.ID = uuid.NewString()
	}
	if cycle.Status == "" {
		cycle.Status = models.ExamCycleStatusPending
	}
	if len(cycle.Meta) == 0 {
		cycle.Meta = types.JSONText(`{}`)
	}
	now := time.Now().UTC()
	if cycle.CreatedAt.IsZero() {
		cycle.CreatedAt = now
	}
	cycle.UpdatedAt = now

	const query = `
INSERT INTO exam_cycles (id, name, category, year, parity, policy, start_date, end_date, status, meta, created_at, updated_at)
VALUES (:id, :name, :category, :year, :parity, :policy, :start_date, :end_date, :status, :meta, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, cycle); err != nil {
		return fmt.Errorf("insert exam cycle: %w", err)
	}
	return nil
}

// List returns cycles matching the filter, newest first.
func (r *ExamCycleRepository) List(ctx context.Context, filter models.ExamCycleFilter) ([]models.ExamCycle, error) {
	var (
		conditions []string
		args       []interface{}
	)
	if filter.Category != "" {
		args = append(args, filter.Category)
		conditions = append(conditions, fmt.Sprintf("category = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Year > 0 {
		args = append(args, filter.Year)
		conditions = append(conditions, fmt.Sprintf("year = $%d", len(args)))
	}

	query := "SELECT " + examCycleColumns + " FROM exam_cycles WHERE 1=1"
	if len(conditions) > 0 {
		query += " AND " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC"

	var cycles []models.ExamCycle
	if err := r.db.SelectContext(ctx, &cycles, query, args...); err != nil {
		return nil, fmt.Errorf("list exam cycles: %w", err)
	}
	return cycles, nil
}

// FindByID loads a cycle by its identifier.
func (r *ExamCycleRepository) FindByID(ctx context.Context, id string) (*models.ExamCycle, error) {
	query := "SELECT " + examCycleColumns + " FROM exam_cycles WHERE id = $1"
	var cycle models.ExamCycle
	if err := r.db.GetContext(ctx, &cycle, query, id); err != nil {
		return nil, err
	}
	return &cycle, nil
}

// UpdateStatus moves a cycle to status.
func (r *ExamCycleRepository) UpdateStatus(ctx context.Context, exec sqlx.ExtContext, id string, status models.ExamCycleStatus) error {
	const query = `UPDATE exam_cycles SET status = $1, updated_at = $2 WHERE id = $3`
	result, err := r.exec(exec).ExecContext(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update exam cycle status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("exam cycle status rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a cycle together with its exams and violations.
func (r *ExamCycleRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM exam_cycles WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete exam cycle: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("exam cycle rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
