package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/exam-allocation-api/internal/models"
)

// SeatingRepository persists per-slot seating and invigilation.
type SeatingRepository struct {
	db *sqlx.DB
}

// NewSeatingRepository builds repository.
func NewSeatingRepository(db *sqlx.DB) *SeatingRepository {
	return &SeatingRepository{db: db}
}

func (r *SeatingRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// ReplaceForSlot drops any previous seating of the slot and stores the new one.
// Callers pass a transaction so the swap is atomic.
func (r *SeatingRepository) ReplaceForSlot(ctx context.Context, exec sqlx.ExtContext, slot models.ExamSlot, seats []models.SeatAssignment, invigilators []models.InvigilatorAssignment) error {
	target := r.exec(exec)

	if _, err := target.ExecContext(ctx, `DELETE FROM seat_assignments WHERE exam_date = $1 AND session = $2`, slot.Date, slot.Session); err != nil {
		return fmt.Errorf("clear seat assignments: %w", err)
	}
	if _, err := target.ExecContext(ctx, `DELETE FROM invigilator_assignments WHERE exam_date = $1 AND session = $2`, slot.Date, slot.Session); err != nil {
		return fmt.Errorf("clear invigilator assignments: %w", err)
	}

	now := time.Now().UTC()
	const seatQuery = `
INSERT INTO seat_assignments (id, exam_date, session, hall_id, hall_name, bench, side, seat_number, student_id, register_number, student_name, department, created_at)
VALUES (:id, :exam_date, :session, :hall_id, :hall_name, :bench, :side, :seat_number, :student_id, :register_number, :student_name, :department, :created_at)`
	for i := range seats {
		seat := &seats[i]
		if seat.ID == "" {
			seat.ID = uuid.NewString()
		}
		seat.ExamDate, seat.Session, seat.CreatedAt = slot.Date, slot.Session, now
		if _, err := sqlx.NamedExecContext(ctx, target, seatQuery, seat); err != nil {
			return fmt.Errorf("insert seat assignment: %w", err)
		}
	}

	const invigilatorQuery = `
INSERT INTO invigilator_assignments (id, exam_date, session, hall_id, hall_name, teacher, pending, created_at)
VALUES (:id, :exam_date, :session, :hall_id, :hall_name, :teacher, :pending, :created_at)`
	for i := range invigilators {
		inv := &invigilators[i]
		if inv.ID == "" {
			inv.ID = uuid.NewString()
		}
		inv.ExamDate, inv.Session, inv.CreatedAt = slot.Date, slot.Session, now
		if _, err := sqlx.NamedExecContext(ctx, target, invigilatorQuery, inv); err != nil {
			return fmt.Errorf("insert invigilator assignment: %w", err)
		}
	}
	return nil
}

// ListBySlot returns the stored seating of a slot.
func (r *SeatingRepository) ListBySlot(ctx context.Context, slot models.ExamSlot) (*models.SlotSeating, error) {
	const seatQuery = `SELECT id, exam_date, session, hall_id, hall_name, bench, side, seat_number, student_id, register_number, student_name, department, created_at
FROM seat_assignments WHERE exam_date = $1 AND session = $2 ORDER BY hall_name ASC, seat_number ASC`
	const invigilatorQuery = `SELECT id, exam_date, session, hall_id, hall_name, teacher, pending, created_at
FROM invigilator_assignments WHERE exam_date = $1 AND session = $2 ORDER BY hall_name ASC`

	result := &models.SlotSeating{Slot: slot}
	if err := r.db.SelectContext(ctx, &result.Assignments, seatQuery, slot.Date, slot.Session); err != nil {
		return nil, fmt.Errorf("list seat assignments: %w", err)
	}
	if err := r.db.SelectContext(ctx, &result.Invigilators, invigilatorQuery, slot.Date, slot.Session); err != nil {
		return nil, fmt.Errorf("list invigilator assignments: %w", err)
	}
	return result, nil
}
