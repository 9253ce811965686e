package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/exam-allocation-api/internal/models"
)

func TestSeatingRepositoryReplaceForSlot(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSeatingRepository(db)

	date := time.Date(2025, 12, 16, 0, 0, 0, 0, time.UTC)
	slot := models.ExamSlot{Date: date, Session: models.SessionAfternoon}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM seat_assignments WHERE exam_date = $1 AND session = $2")).
		WithArgs(date, "AN").
		WillReturnResult(sqlmock.NewResult(0, 12))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM invigilator_assignments WHERE exam_date = $1 AND session = $2")).
		WithArgs(date, "AN").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO seat_assignments")).
		WithArgs(sqlmock.AnyArg(), date, "AN", "h1", "A101", 1, "", 1, "st1", "21CS001", "Asha", "CSE", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO invigilator_assignments")).
		WithArgs(sqlmock.AnyArg(), date, "AN", "h1", "A101", "Kavya", false, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	tx, err := db.BeginTxx(context.Background(), nil)
	require.NoError(t, err)
	err = repo.ReplaceForSlot(context.Background(), tx, slot,
		[]models.SeatAssignment{{HallID: "h1", HallName: "A101", Bench: 1, SeatNumber: 1, StudentID: "st1", RegisterNumber: "21CS001", StudentName: "Asha", Department: "CSE"}},
		[]models.InvigilatorAssignment{{HallID: "h1", HallName: "A101", Teacher: "Kavya"}},
	)
	require.NoError(t, err)
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeatingRepositoryListBySlot(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSeatingRepository(db)

	date := time.Date(2025, 12, 16, 0, 0, 0, 0, time.UTC)
	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM seat_assignments WHERE exam_date = $1 AND session = $2 ORDER BY hall_name ASC, seat_number ASC")).
		WithArgs(date, "FN").
		WillReturnRows(sqlmock.NewRows([]string{"id", "exam_date", "session", "hall_id", "hall_name", "bench", "side", "seat_number", "student_id", "register_number", "student_name", "department", "created_at"}).
			AddRow("a1", date, "FN", "h1", "A101", 1, "LEFT", 1, "st1", "21CS001", "Asha", "CSE", now))
	mock.ExpectQuery(regexp.QuoteMeta("FROM invigilator_assignments WHERE exam_date = $1 AND session = $2 ORDER BY hall_name ASC")).
		WithArgs(date, "FN").
		WillReturnRows(sqlmock.NewRows([]string{"id", "exam_date", "session", "hall_id", "hall_name", "teacher", "pending", "created_at"}).
			AddRow("i1", date, "FN", "h1", "A101", "To be assigned", true, now))

	seating, err := repo.ListBySlot(context.Background(), models.ExamSlot{Date: date, Session: models.SessionForenoon})
	require.NoError(t, err)
	require.Len(t, seating.Assignments, 1)
	assert.Equal(t, models.BenchSideLeft, seating.Assignments[0].Side)
	require.Len(t, seating.Invigilators, 1)
	assert.True(t, seating.Invigilators[0].Pending)
	assert.NoError(t, mock.ExpectationsWereMet())
}
