package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clubselect/clubselect-api/internal/middleware"
	"github.com/clubselect/clubselect-api/internal/models"
	"github.com/clubselect/clubselect-api/internal/repository"
	"github.com/clubselect/clubselect-api/internal/service"
)

type enrollRepoStub struct {
	exists    bool
	createErr error
}

func (s *enrollRepoStub) Exists(ctx context.Context, studentID, courseID string) (bool, error) {
	return s.exists, nil
}

func (s *enrollRepoStub) FindByStudentAndCourse(ctx context.Context, studentID, courseID string) (*models.Enrollment, error) {
	if !s.exists {
		return nil, sql.ErrNoRows
	}
	return &models.Enrollment{ID: "enrollment-1", StudentID: studentID, CourseID: courseID, Status: models.EnrollmentStatusConfirmed}, nil
}

func (s *enrollRepoStub) CreateConfirmedWithCapacity(ctx context.Context, enrollment *models.Enrollment) error {
	return s.createErr
}

func (s *enrollRepoStub) Delete(ctx context.Context, studentID, courseID string) error {
	return nil
}

type courseReaderStub struct{}

func (courseReaderStub) FindByID(ctx context.Context, id string) (*models.Course, error) {
	if id != "course-1" {
		return nil, sql.ErrNoRows
	}
	return &models.Course{ID: "course-1", ProjectID: "project-1"}, nil
}

type studentReaderStub struct{}

func (studentReaderStub) FindByID(ctx context.Context, id string) (*models.Student, error) {
	return &models.Student{ID: id, Token: "abcdef123456"}, nil
}

func (studentReaderStub) IsAssigned(ctx context.Context, studentID, projectID string) (bool, error) {
	return true, nil
}

func newStudentHandlerFixture(enrollments *enrollRepoStub) *StudentHandler {
	svc := service.NewEnrollmentService(enrollments, courseReaderStub{}, studentReaderStub{}, nil, nil)
	return NewStudentHandler(nil, svc, nil, nil)
}

func performEnroll(t *testing.T, h *StudentHandler, body string, claims *models.JWTClaims) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(http.MethodPost, "/student/enrollments", bytes.NewBufferString(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	if claims != nil {
		c.Set(middleware.ContextUserKey, claims)
	}
	h.Enroll(c)
	return w
}

func studentClaims() *models.JWTClaims {
	return &models.JWTClaims{SubjectID: "student-1", Role: models.RoleStudent, StudentToken: "abcdef123456"}
}

func TestStudentHandlerEnrollCreated(t *testing.T) {
	h := newStudentHandlerFixture(&enrollRepoStub{})

	w := performEnroll(t, h, `{"course_id":"course-1"}`, studentClaims())
	require.Equal(t, http.StatusCreated, w.Code)
}

func TestStudentHandlerEnrollWithoutClaims(t *testing.T) {
	h := newStudentHandlerFixture(&enrollRepoStub{})

	w := performEnroll(t, h, `{"course_id":"course-1"}`, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestStudentHandlerEnrollDuplicateConflicts(t *testing.T) {
	h := newStudentHandlerFixture(&enrollRepoStub{exists: true})

	w := performEnroll(t, h, `{"course_id":"course-1"}`, studentClaims())
	require.Equal(t, http.StatusConflict, w.Code)

	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "CONFLICT", envelope.Error.Code)
}

func TestStudentHandlerEnrollFullCourse(t *testing.T) {
	h := newStudentHandlerFixture(&enrollRepoStub{createErr: repository.ErrCourseFull})

	w := performEnroll(t, h, `{"course_id":"course-1"}`, studentClaims())
	require.Equal(t, http.StatusConflict, w.Code)

	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "CAPACITY_EXCEEDED", envelope.Error.Code)
}

func TestStudentHandlerEnrollUnknownCourse(t *testing.T) {
	h := newStudentHandlerFixture(&enrollRepoStub{})

	w := performEnroll(t, h, `{"course_id":"missing"}`, studentClaims())
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestStudentHandlerEnrollMalformedBody(t *testing.T) {
	h := newStudentHandlerFixture(&enrollRepoStub{})

	w := performEnroll(t, h, `{`, studentClaims())
	require.Equal(t, http.StatusBadRequest, w.Code)
}
