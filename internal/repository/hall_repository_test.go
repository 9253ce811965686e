package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHallRepositoryListActive(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewHallRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, capacity, columns, active FROM halls WHERE active = TRUE AND capacity > 0 ORDER BY capacity ASC, name ASC")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "capacity", "columns", "active"}).
			AddRow("h1", "A101", 24, 4, true).
			AddRow("h2", "B201", 30, 5, true))

	halls, err := repo.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, halls, 2)
	assert.Equal(t, 24, halls[0].Capacity)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvigilatorRepositoryListActive(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewInvigilatorRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, department, active FROM invigilators WHERE active = TRUE ORDER BY name ASC")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "department", "active"}).AddRow("t1", "Kavya", "CSE", true))

	list, err := repo.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Kavya", list[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}
