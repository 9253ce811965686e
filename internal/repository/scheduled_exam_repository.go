package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/exam-allocation-api/internal/models"
)

// ScheduledExamRepository stores the exams and violations of a cycle.
type ScheduledExamRepository struct {
	db *sqlx.DB
}

// NewScheduledExamRepository builds repository.
func NewScheduledExamRepository(db *sqlx.DB) *ScheduledExamRepository {
	return &ScheduledExamRepository{db: db}
}

func (r *ScheduledExamRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// InsertBatch stores the exams of a cycle.
func (r *ScheduledExamRepository) InsertBatch(ctx context.Context, exec sqlx.ExtContext, cycleID string, exams []models.ScheduledExam) error {
	if len(exams) == 0 {
		return nil
	}
	target := r.exec(exec)

	const query = `
INSERT INTO scheduled_exams (id, cycle_id, subject_id, subject_code, subject_name, department, exam_date, session, weight, parity, track, student_count)
VALUES (:id, :cycle_id, :subject_id, :subject_code, :subject_name, :department, :exam_date, :session, :weight, :parity, :track, :student_count)`

	for i := range exams {
		exam := &exams[i]
		if exam.ID == "" {
			exam.ID = uuid.NewString()
		}
		exam.CycleID = cycleID
		if _, err := sqlx.NamedExecContext(ctx, target, query, exam); err != nil {
			return fmt.Errorf("insert scheduled exam %s: %w", exam.SubjectCode, err)
		}
	}
	return nil
}

// ListByCycle returns a cycle's exams in slot order.
func (r *ScheduledExamRepository) ListByCycle(ctx context.Context, cycleID string) ([]models.ScheduledExam, error) {
	const query = `SELECT id, cycle_id, subject_id, subject_code, subject_name, department, exam_date, session, weight, parity, track, student_count
FROM scheduled_exams WHERE cycle_id = $1 ORDER BY exam_date ASC, session DESC, department ASC, subject_code ASC`
	var exams []models.ScheduledExam
	if err := r.db.SelectContext(ctx, &exams, query, cycleID); err != nil {
		return nil, fmt.Errorf("list scheduled exams: %w", err)
	}
	return exams, nil
}

// InsertViolations stores the soft failures recorded for a cycle.
func (r *ScheduledExamRepository) InsertViolations(ctx context.Context, exec sqlx.ExtContext, cycleID string, violations []models.ScheduleViolation) error {
	if len(violations) == 0 {
		return nil
	}
	target := r.exec(exec)

	const query = `
INSERT INTO schedule_violations (id, cycle_id, subject_id, subject_code, department, kind, severity, description)
VALUES (:id, :cycle_id, :subject_id, :subject_code, :department, :kind, :severity, :description)`

	for i := range violations {
		v := &violations[i]
		if v.ID == "" {
			v.ID = uuid.NewString()
		}
		v.CycleID = cycleID
		if _, err := sqlx.NamedExecContext(ctx, target, query, v); err != nil {
			return fmt.Errorf("insert schedule violation: %w", err)
		}
	}
	return nil
}

// ListViolations returns the violations recorded for a cycle.
func (r *ScheduledExamRepository) ListViolations(ctx context.Context, cycleID string) ([]models.ScheduleViolation, error) {
	const query = `SELECT id, cycle_id, subject_id, subject_code, department, kind, severity, description
FROM schedule_violations WHERE cycle_id = $1 ORDER BY severity DESC, subject_code ASC`
	var violations []models.ScheduleViolation
	if err := r.db.SelectContext(ctx, &violations, query, cycleID); err != nil {
		return nil, fmt.Errorf("list schedule violations: %w", err)
	}
	return violations, nil
}
