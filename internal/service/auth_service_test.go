package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/clubselect/clubselect-api/internal/dto"
	"github.com/clubselect/clubselect-api/internal/models"
	appErrors "github.com/clubselect/clubselect-api/pkg/errors"
	"github.com/clubselect/clubselect-api/pkg/token"
)

type mockAdminRepo struct {
	admins map[string]*models.Admin
}

func (m *mockAdminRepo) FindByUsername(ctx context.Context, username string) (*models.Admin, error) {
	for _, a := range m.admins {
		if a.Username == username {
			return a, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockAdminRepo) FindByID(ctx context.Context, id string) (*models.Admin, error) {
	if a, ok := m.admins[id]; ok {
		return a, nil
	}
	return nil, sql.ErrNoRows
}

type mockTokenStudentRepo struct {
	byToken map[string]*models.Student
}

func (m *mockTokenStudentRepo) FindByToken(ctx context.Context, tok string) (*models.Student, error) {
	if s, ok := m.byToken[tok]; ok {
		return s, nil
	}
	return nil, sql.ErrNoRows
}

type mockProjectLister struct {
	projects []models.Project
}

func (m *mockProjectLister) ListForStudent(ctx context.Context, studentID string) ([]models.Project, error) {
	return m.projects, nil
}

func newAuthFixture(students *mockTokenStudentRepo) *AuthService {
	hash, _ := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	admins := &mockAdminRepo{admins: map[string]*models.Admin{
		"admin-1": {ID: "admin-1", Username: "principal", PasswordHash: string(hash)},
	}}
	if students == nil {
		students = &mockTokenStudentRepo{byToken: map[string]*models.Student{}}
	}
	projects := &mockProjectLister{projects: []models.Project{{ID: "project-1", Name: "Spring Clubs"}}}
	cfg := AuthConfig{Secret: "test-secret", Issuer: "clubselect-api", Expiration: time.Hour}
	return NewAuthService(admins, students, projects, nil, nil, cfg)
}

func TestLoginIssuesAdminToken(t *testing.T) {
	svc := newAuthFixture(nil)

	resp, err := svc.Login(context.Background(), models.LoginRequest{Username: "principal", Password: "hunter2"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)

	claims, err := svc.ParseToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, claims.Role)
	assert.Equal(t, "admin-1", claims.SubjectID)
}

func TestLoginWrongPassword(t *testing.T) {
	svc := newAuthFixture(nil)

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "principal", Password: "wrong"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestLoginUnknownUsername(t *testing.T) {
	svc := newAuthFixture(nil)

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "nobody", Password: "hunter2"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestValidateStudentIdentifierResolvesToken(t *testing.T) {
	tok := token.Resolve("  Alice@Example.COM ")
	students := &mockTokenStudentRepo{byToken: map[string]*models.Student{
		tok: {ID: "student-1", Token: tok},
	}}
	svc := newAuthFixture(students)

	// A differently cased and padded identifier resolves to the same
	// roster row.
	resp, err := svc.ValidateStudentIdentifier(context.Background(), dto.ValidateTokenRequest{Identifier: "alice@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "student-1", resp.Student.ID)
	assert.Equal(t, tok, resp.Student.Token)
	require.Len(t, resp.Projects, 1)

	claims, err := svc.ParseToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, claims.Role)
	assert.Equal(t, tok, claims.StudentToken)
}

func TestValidateStudentIdentifierUnknown(t *testing.T) {
	svc := newAuthFixture(nil)

	_, err := svc.ValidateStudentIdentifier(context.Background(), dto.ValidateTokenRequest{Identifier: "stranger"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	svc := newAuthFixture(nil)

	_, err := svc.ParseToken("not.a.jwt")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}
