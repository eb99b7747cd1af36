package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"github.com/clubselect/clubselect-api/internal/models"
)

func TestSubmissionRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSubmissionRepository(db)

	mock.ExpectExec("INSERT INTO submissions").
		WillReturnResult(sqlmock.NewResult(1, 1))

	submission := &models.Submission{StudentID: "student-1", ProjectID: "project-1"}
	require.NoError(t, repo.Create(context.Background(), submission))
	require.NotEmpty(t, submission.ID)
	require.False(t, submission.SubmittedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmissionRepositoryCreateDuplicate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSubmissionRepository(db)

	mock.ExpectExec("INSERT INTO submissions").
		WillReturnError(&pq.Error{Code: "23505"})

	err := repo.Create(context.Background(), &models.Submission{StudentID: "student-1", ProjectID: "project-1"})
	require.ErrorIs(t, err, ErrDuplicate)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmissionRepositoryListByProject(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSubmissionRepository(db)

	rows := sqlmock.NewRows([]string{"id", "student_id", "project_id", "submitted_at", "student_name", "student_token"}).
		AddRow("sub-1", "student-1", "project-1", time.Now(), "Alice", "abcdef123456")
	mock.ExpectQuery("SELECT sub.id, sub.student_id, sub.project_id, sub.submitted_at").
		WithArgs("project-1").
		WillReturnRows(rows)

	submissions, err := repo.ListByProject(context.Background(), "project-1")
	require.NoError(t, err)
	require.Len(t, submissions, 1)
	require.Equal(t, "abcdef123456", submissions[0].StudentToken)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmissionRepositoryDeleteByProject(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSubmissionRepository(db)

	mock.ExpectExec("DELETE FROM submissions").
		WithArgs("project-1").
		WillReturnResult(sqlmock.NewResult(0, 3))

	deleted, err := repo.DeleteByProject(context.Background(), "project-1")
	require.NoError(t, err)
	require.Equal(t, int64(3), deleted)
	require.NoError(t, mock.ExpectationsWereMet())
}
