package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExamStudentRepositoryListRoster(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewExamStudentRepository(db)

	rows := sqlmock.NewRows([]string{"id", "register_number", "name", "department"}).
		AddRow("st1", "21CS001", "Asha", "CSE").
		AddRow("st2", "21EC004", "Vikram", "ECE")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT DISTINCT st.id, st.register_number, st.name, st.department FROM students st")).
		WithArgs(pq.Array([]string{"s1"}), pq.Array([]string{})).
		WillReturnRows(rows)

	roster, err := repo.ListRoster(context.Background(), []string{"s1"}, nil)
	require.NoError(t, err)
	assert.Len(t, roster, 2)
	assert.Equal(t, "21EC004", roster[1].RegisterNumber)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExamStudentRepositoryListRosterEmptyInput(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewExamStudentRepository(db)

	roster, err := repo.ListRoster(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Empty(t, roster)
	assert.NoError(t, mock.ExpectationsWereMet())
}
