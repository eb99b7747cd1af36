package repository

import (
	"context"
	"database/sql"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func TestStudentRepositoryUnassign(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec("DELETE FROM project_students").
		WithArgs("project-1", "student-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Unassign(context.Background(), "project-1", "student-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryUnassignMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec("DELETE FROM project_students").
		WithArgs("project-1", "student-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Unassign(context.Background(), "project-1", "student-1")
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryCountByProject(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM project_students").
		WithArgs("project-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	count, err := repo.CountByProject(context.Background(), "project-1")
	require.NoError(t, err)
	require.Equal(t, 7, count)
	require.NoError(t, mock.ExpectationsWereMet())
}
