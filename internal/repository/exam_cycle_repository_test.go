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

	"github.com/noah-isme/exam-allocation-api/internal/models"
)

func TestExamCycleRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewExamCycleRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO exam_cycles")).
		WithArgs(sqlmock.AnyArg(), "Nov 2025", "SEMESTER", 3, "ODD", "GAP_CONSTRAINED", sqlmock.AnyArg(), sqlmock.AnyArg(), "PENDING", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	cycle := &models.ExamCycle{
		Name:      "Nov 2025",
		Category:  models.CategorySemester,
		Year:      3,
		Parity:    models.ParityOdd,
		Policy:    models.PolicyGapConstrained,
		StartDate: time.Date(2025, 11, 3, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 11, 21, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, repo.Create(context.Background(), nil, cycle))
	assert.NotEmpty(t, cycle.ID)
	assert.Equal(t, models.ExamCycleStatusPending, cycle.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExamCycleRepositoryListWithFilter(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewExamCycleRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "name", "category", "year", "parity", "policy", "start_date", "end_date", "status", "meta", "created_at", "updated_at"}).
		AddRow("c1", "Nov 2025", "INTERNAL", 2, "EVEN", "FIXED_SLOT", now, now, "PENDING", []byte(`{}`), now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM exam_cycles WHERE 1=1 AND category = $1 AND status = $2 ORDER BY created_at DESC")).
		WithArgs("INTERNAL", "PENDING").
		WillReturnRows(rows)

	cycles, err := repo.List(context.Background(), models.ExamCycleFilter{Category: models.CategoryInternal, Status: models.ExamCycleStatusPending})
	require.NoError(t, err)
	require.Len(t, cycles, 1)
	assert.Equal(t, models.PolicyFixedSlot, cycles[0].Policy)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExamCycleRepositoryUpdateStatusNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewExamCycleRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE exam_cycles SET status = $1, updated_at = $2 WHERE id = $3")).
		WithArgs("COMPLETED", sqlmock.AnyArg(), "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateStatus(context.Background(), nil, "missing", models.ExamCycleStatusCompleted)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExamCycleRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewExamCycleRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM exam_cycles WHERE id = $1")).
		WithArgs("c1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), "c1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduledExamRepositoryInsertBatch(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduledExamRepository(db)

	date := time.Date(2025, 12, 16, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO scheduled_exams")).
		WithArgs(sqlmock.AnyArg(), "cycle-1", "s1", "CS301", "Compilers", "CSE", date, "FN", "HEAVY", "ODD", "REGULAR", 58).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO schedule_violations")).
		WithArgs(sqlmock.AnyArg(), "cycle-1", "s1", "CS301", "CSE", "GAP_CONSTRAINT", "MEDIUM", "too close").
		WillReturnResult(sqlmock.NewResult(1, 1))

	exams := []models.ScheduledExam{{
		SubjectID: "s1", SubjectCode: "CS301", SubjectName: "Compilers", Department: "CSE",
		ExamDate: date, Session: models.SessionForenoon, Weight: models.WeightHeavy,
		Parity: models.ParityOdd, Track: models.TrackRegular, StudentCount: 58,
	}}
	require.NoError(t, repo.InsertBatch(context.Background(), nil, "cycle-1", exams))
	assert.Equal(t, "cycle-1", exams[0].CycleID)

	violations := []models.ScheduleViolation{{
		SubjectID: "s1", SubjectCode: "CS301", Department: "CSE",
		Kind: models.ViolationGapConstraint, Severity: models.SeverityMedium, Description: "too close",
	}}
	require.NoError(t, repo.InsertViolations(context.Background(), nil, "cycle-1", violations))
	assert.NoError(t, mock.ExpectationsWereMet())
}
