package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clubselect/clubselect-api/internal/dto"
	"github.com/clubselect/clubselect-api/internal/models"
	appErrors "github.com/clubselect/clubselect-api/pkg/errors"
	"github.com/clubselect/clubselect-api/pkg/token"
)

type mockAdminProjectRepo struct {
	projects map[string]*models.Project
}

func (m *mockAdminProjectRepo) FindByID(ctx context.Context, id string) (*models.Project, error) {
	if p, ok := m.projects[id]; ok {
		return p, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAdminProjectRepo) List(ctx context.Context) ([]models.Project, error) {
	out := make([]models.Project, 0, len(m.projects))
	for _, p := range m.projects {
		out = append(out, *p)
	}
	return out, nil
}

func (m *mockAdminProjectRepo) Create(ctx context.Context, project *models.Project) error {
	m.projects[project.ID] = project
	return nil
}

func (m *mockAdminProjectRepo) Update(ctx context.Context, project *models.Project) error {
	m.projects[project.ID] = project
	return nil
}

func (m *mockAdminProjectRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.projects[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.projects, id)
	return nil
}

type mockRosterRepo struct {
	byToken  map[string]*models.Student
	assigned map[string]bool
}

func (m *mockRosterRepo) UpsertByToken(ctx context.Context, tok, name string) (*models.Student, error) {
	if s, ok := m.byToken[tok]; ok {
		return s, nil
	}
	s := &models.Student{ID: uuid.NewString(), Token: tok, Name: &name}
	m.byToken[tok] = s
	return s, nil
}

func (m *mockRosterRepo) IsAssigned(ctx context.Context, studentID, projectID string) (bool, error) {
	return m.assigned[studentID+"/"+projectID], nil
}

func (m *mockRosterRepo) Assign(ctx context.Context, projectID, studentID string) error {
	m.assigned[studentID+"/"+projectID] = true
	return nil
}

func (m *mockRosterRepo) Unassign(ctx context.Context, projectID, studentID string) error {
	key := studentID + "/" + projectID
	if !m.assigned[key] {
		return sql.ErrNoRows
	}
	delete(m.assigned, key)
	return nil
}

func (m *mockRosterRepo) ListByProject(ctx context.Context, projectID string) ([]models.Student, error) {
	var out []models.Student
	for _, s := range m.byToken {
		if m.assigned[s.ID+"/"+projectID] {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (m *mockRosterRepo) CountByProject(ctx context.Context, projectID string) (int, error) {
	count := 0
	for key, ok := range m.assigned {
		if ok && strings.HasSuffix(key, "/"+projectID) {
			count++
		}
	}
	return count, nil
}

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)
	return parsed
}

func newAdminProjectFixture() (*AdminProjectService, *mockAdminProjectRepo, *mockRosterRepo) {
	projects := &mockAdminProjectRepo{projects: map[string]*models.Project{
		"project-1": {ID: "project-1", Name: "Spring Clubs", Timezone: "UTC"},
	}}
	roster := &mockRosterRepo{byToken: map[string]*models.Student{}, assigned: map[string]bool{}}
	return NewAdminProjectService(projects, roster, nil, nil), projects, roster
}

func TestCreateProjectRejectsUnknownTimezone(t *testing.T) {
	svc, _, _ := newAdminProjectFixture()

	_, err := svc.Create(context.Background(), dto.ProjectRequest{Name: "Clubs", Timezone: "Mars/Olympus"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestCreateProjectDefaultsTimezone(t *testing.T) {
	svc, repo, _ := newAdminProjectFixture()

	project, err := svc.Create(context.Background(), dto.ProjectRequest{Name: "Clubs"})
	require.NoError(t, err)
	assert.Equal(t, "UTC", project.Timezone)
	assert.Contains(t, repo.projects, project.ID)
}

func TestCreateProjectRejectsInvertedWindow(t *testing.T) {
	svc, _, _ := newAdminProjectFixture()
	start := mustTime(t, "2026-03-20T00:00:00Z")
	end := mustTime(t, "2026-03-10T00:00:00Z")

	_, err := svc.Create(context.Background(), dto.ProjectRequest{Name: "Clubs", SubmissionStart: &start, SubmissionEnd: &end})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestBulkAddStudentsDerivesTokens(t *testing.T) {
	svc, _, roster := newAdminProjectFixture()

	resp, err := svc.BulkAddStudents(context.Background(), "project-1", dto.BulkStudentsRequest{
		Identifiers: []string{"Alice@Example.com", "bob@example.com"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.AddedCount)
	require.Len(t, resp.Students, 2)

	// The import derives the same token the validation endpoint will
	// derive later, so a student can sign in right after the import.
	assert.Equal(t, token.Resolve("alice@example.com"), resp.Students[0].Token)
	assert.Contains(t, roster.byToken, token.Resolve("BOB@EXAMPLE.COM"))
}

func TestBulkAddStudentsIsIdempotent(t *testing.T) {
	svc, _, _ := newAdminProjectFixture()
	req := dto.BulkStudentsRequest{Identifiers: []string{"alice@example.com"}}

	first, err := svc.BulkAddStudents(context.Background(), "project-1", req)
	require.NoError(t, err)
	assert.Equal(t, 1, first.AddedCount)

	second, err := svc.BulkAddStudents(context.Background(), "project-1", req)
	require.NoError(t, err)
	assert.Equal(t, 0, second.AddedCount)
	assert.Len(t, second.Students, 1)
}

func TestBulkAddStudentsSkipsDuplicateIdentifiers(t *testing.T) {
	svc, _, _ := newAdminProjectFixture()

	resp, err := svc.BulkAddStudents(context.Background(), "project-1", dto.BulkStudentsRequest{
		Identifiers: []string{"alice@example.com", " ALICE@example.com ", ""},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.AddedCount)
	assert.Len(t, resp.Students, 1)
}

func TestProjectDetailIncludesRosterCount(t *testing.T) {
	svc, _, _ := newAdminProjectFixture()

	_, err := svc.BulkAddStudents(context.Background(), "project-1", dto.BulkStudentsRequest{
		Identifiers: []string{"alice@example.com", "bob@example.com"},
	})
	require.NoError(t, err)

	detail, err := svc.Detail(context.Background(), "project-1")
	require.NoError(t, err)
	assert.Equal(t, "Spring Clubs", detail.Name)
	assert.Equal(t, 2, detail.StudentCount)
}

func TestRemoveStudentNotAssigned(t *testing.T) {
	svc, _, _ := newAdminProjectFixture()

	err := svc.RemoveStudent(context.Background(), "project-1", "student-x")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
