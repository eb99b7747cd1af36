package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clubselect/clubselect-api/internal/models"
	appErrors "github.com/clubselect/clubselect-api/pkg/errors"
)

type mockViewProjectRepo struct {
	projects map[string]*models.Project
	assigned map[string]bool
}

func (m *mockViewProjectRepo) FindForStudent(ctx context.Context, projectID, studentID string) (*models.Project, error) {
	p, ok := m.projects[projectID]
	if !ok || !m.assigned[studentID+"/"+projectID] {
		return nil, sql.ErrNoRows
	}
	return p, nil
}

func (m *mockViewProjectRepo) ListForStudent(ctx context.Context, studentID string) ([]models.Project, error) {
	var out []models.Project
	for _, p := range m.projects {
		if m.assigned[studentID+"/"+p.ID] {
			out = append(out, *p)
		}
	}
	return out, nil
}

type mockViewStudentRepo struct {
	students map[string]*models.Student
}

func (m *mockViewStudentRepo) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if s, ok := m.students[id]; ok {
		return s, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockViewStudentRepo) FindByToken(ctx context.Context, tok string) (*models.Student, error) {
	for _, s := range m.students {
		if s.Token == tok {
			return s, nil
		}
	}
	return nil, sql.ErrNoRows
}

type mockViewCourseRepo struct {
	courses     map[string][]models.Course
	tags        map[string][]models.Tag
	occurrences map[string][]models.OccurrenceDetail
}

func (m *mockViewCourseRepo) ListByProject(ctx context.Context, projectID string) ([]models.Course, error) {
	return m.courses[projectID], nil
}

func (m *mockViewCourseRepo) ListTagsByCourse(ctx context.Context, courseID string) ([]models.Tag, error) {
	return m.tags[courseID], nil
}

func (m *mockViewCourseRepo) ListOccurrences(ctx context.Context, courseID string) ([]models.OccurrenceDetail, error) {
	return m.occurrences[courseID], nil
}

type mockViewTagRepo struct{}

func (m *mockViewTagRepo) ListByProject(ctx context.Context, projectID string) ([]models.Tag, error) {
	return nil, nil
}

type mockViewSectionRepo struct{}

func (m *mockViewSectionRepo) ListByProject(ctx context.Context, projectID string) ([]models.TimeSection, error) {
	return nil, nil
}

type mockViewEnrollmentRepo struct {
	enrolled map[string][]string
}

func (m *mockViewEnrollmentRepo) ListConfirmedCourseIDs(ctx context.Context, studentID, projectID string) ([]string, error) {
	return m.enrolled[studentID+"/"+projectID], nil
}

func (m *mockViewEnrollmentRepo) HasConfirmedInProject(ctx context.Context, studentID, projectID string) (bool, error) {
	return len(m.enrolled[studentID+"/"+projectID]) > 0, nil
}

type mockViewSubmissionRepo struct {
	submissions map[string]*models.Submission
}

func (m *mockViewSubmissionRepo) FindByStudentAndProject(ctx context.Context, studentID, projectID string) (*models.Submission, error) {
	if s, ok := m.submissions[studentID+"/"+projectID]; ok {
		return s, nil
	}
	return nil, sql.ErrNoRows
}

type mockCache struct {
	entries map[string][]byte
	sets    int
}

func (m *mockCache) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *mockCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if m.entries == nil {
		m.entries = make(map[string][]byte)
	}
	m.entries[key] = raw
	m.sets++
	return nil
}

type mockLookupRecorder struct {
	hits   int
	misses int
}

func (m *mockLookupRecorder) RecordCacheLookup(hit bool) {
	if hit {
		m.hits++
		return
	}
	m.misses++
}

type projectViewFixture struct {
	svc         *ProjectService
	submissions *mockViewSubmissionRepo
	enrollments *mockViewEnrollmentRepo
	cache       *mockCache
	lookups     *mockLookupRecorder
}

func newProjectViewFixture(cacheEnabled bool) *projectViewFixture {
	projects := &mockViewProjectRepo{
		projects: map[string]*models.Project{
			"project-1": {ID: "project-1", Name: "Spring Clubs", Timezone: "UTC"},
		},
		assigned: map[string]bool{"student-1/project-1": true},
	}
	students := &mockViewStudentRepo{students: map[string]*models.Student{
		"student-1": {ID: "student-1", Token: "abcdef123456"},
	}}
	courses := &mockViewCourseRepo{
		courses: map[string][]models.Course{
			"project-1": {{ID: "course-1", ProjectID: "project-1", Name: "Chess"}},
		},
		tags:        map[string][]models.Tag{},
		occurrences: map[string][]models.OccurrenceDetail{},
	}
	enrollments := &mockViewEnrollmentRepo{enrolled: map[string][]string{}}
	submissions := &mockViewSubmissionRepo{submissions: map[string]*models.Submission{}}
	cache := &mockCache{entries: map[string][]byte{}}
	lookups := &mockLookupRecorder{}

	svc := NewProjectService(projects, students, courses, &mockViewTagRepo{}, &mockViewSectionRepo{},
		enrollments, submissions, cache, EmbedCacheConfig{Enabled: cacheEnabled, TTL: 30 * time.Second}, lookups, nil)
	return &projectViewFixture{svc: svc, submissions: submissions, enrollments: enrollments, cache: cache, lookups: lookups}
}

func TestGetDetailMarksEnrolledCourses(t *testing.T) {
	f := newProjectViewFixture(false)
	f.enrollments.enrolled["student-1/project-1"] = []string{"course-1"}

	detail, err := f.svc.GetDetail(context.Background(), "student-1", "project-1")
	require.NoError(t, err)
	require.Len(t, detail.Courses, 1)
	assert.True(t, detail.Courses[0].IsEnrolled)
	assert.Equal(t, models.ProjectStatusOpen, detail.Status)
	assert.Equal(t, "Open for enrollment", detail.StatusMessage)
}

func TestGetDetailNotAssigned(t *testing.T) {
	f := newProjectViewFixture(false)

	_, err := f.svc.GetDetail(context.Background(), "student-2", "project-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestDetailAndEmbedAgreeOnStatus(t *testing.T) {
	f := newProjectViewFixture(false)
	submittedAt := time.Date(2026, 3, 18, 14, 30, 0, 0, time.UTC)
	f.submissions.submissions["student-1/project-1"] = &models.Submission{
		ID: "sub-1", StudentID: "student-1", ProjectID: "project-1", SubmittedAt: submittedAt,
	}

	detail, err := f.svc.GetDetail(context.Background(), "student-1", "project-1")
	require.NoError(t, err)

	embed, err := f.svc.EmbedStatus(context.Background(), "abcdef123456", "project-1")
	require.NoError(t, err)

	assert.Equal(t, detail.Status, embed.Status)
	assert.Equal(t, detail.StatusMessage, embed.StatusMessage)
	assert.Equal(t, "Submitted on Mar 18, 2026 2:30 PM", embed.StatusMessage)
	assert.True(t, embed.HasSubmitted)
}

func TestEmbedStatusUsesCache(t *testing.T) {
	f := newProjectViewFixture(true)

	first, err := f.svc.EmbedStatus(context.Background(), "abcdef123456", "project-1")
	require.NoError(t, err)
	assert.Equal(t, 1, f.cache.sets)
	assert.Equal(t, 1, f.lookups.misses)

	// A submission written behind the cache's back is not visible: only
	// the submit flow invalidates, everything else waits out the TTL.
	f.submissions.submissions["student-1/project-1"] = &models.Submission{
		ID: "sub-1", StudentID: "student-1", ProjectID: "project-1", SubmittedAt: time.Now().UTC(),
	}

	second, err := f.svc.EmbedStatus(context.Background(), "abcdef123456", "project-1")
	require.NoError(t, err)
	assert.Equal(t, first.StatusMessage, second.StatusMessage)
	assert.False(t, second.HasSubmitted)
	assert.Equal(t, 1, f.cache.sets)
	assert.Equal(t, 1, f.lookups.hits)
}

func TestEmbedStatusDefaultsToFirstAssignedProject(t *testing.T) {
	f := newProjectViewFixture(false)

	payload, err := f.svc.EmbedStatus(context.Background(), "abcdef123456", "")
	require.NoError(t, err)
	assert.Equal(t, "project-1", payload.Project.ID)
}

func TestEmbedStatusNoProjectForUnknownToken(t *testing.T) {
	f := newProjectViewFixture(false)

	_, err := f.svc.EmbedStatus(context.Background(), "000000000000", "")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestEmbedStatusUnknownToken(t *testing.T) {
	f := newProjectViewFixture(false)

	_, err := f.svc.EmbedStatus(context.Background(), "000000000000", "project-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestListForStudentSummaries(t *testing.T) {
	f := newProjectViewFixture(false)
	f.enrollments.enrolled["student-1/project-1"] = []string{"course-1"}

	resp, err := f.svc.ListForStudent(context.Background(), "student-1")
	require.NoError(t, err)
	require.Len(t, resp.Projects, 1)
	assert.True(t, resp.Projects[0].HasEnrollment)
	assert.False(t, resp.Projects[0].HasSubmitted)
}
