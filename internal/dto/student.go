package dto

import (
	"time"

	"github.com/clubselect/clubselect-api/internal/models"
)

// ValidateTokenRequest carries the plain identifier a student types in.
type ValidateTokenRequest struct {
	Identifier string `json:"identifier" validate:"required"`
}

// StudentInfo is the student identity echoed back to clients. Token is
// the opaque hashed token, never the plain identifier.
type StudentInfo struct {
	ID    string  `json:"id"`
	Name  *string `json:"name,omitempty"`
	Token string  `json:"token,omitempty"`
}

// ProjectBrief is the minimal project reference.
type ProjectBrief struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

// ValidateTokenResponse returns the student session.
type ValidateTokenResponse struct {
	Token    string         `json:"token"`
	Student  StudentInfo    `json:"student"`
	Projects []ProjectBrief `json:"projects"`
}

// ProjectSummary is a project as listed on the student dashboard.
type ProjectSummary struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Description     *string    `json:"description,omitempty"`
	Timezone        string     `json:"timezone"`
	SubmissionStart *time.Time `json:"submission_start,omitempty"`
	SubmissionEnd   *time.Time `json:"submission_end,omitempty"`
	HasEnrollment   bool       `json:"has_enrollment"`
	HasSubmitted    bool       `json:"has_submitted"`
}

// StudentProjectsResponse lists a student's assigned projects.
type StudentProjectsResponse struct {
	Student  StudentInfo      `json:"student"`
	Projects []ProjectSummary `json:"projects"`
}

// CourseView is a course as seen by a student inside a project.
type CourseView struct {
	ID          string                    `json:"id"`
	Name        string                    `json:"name"`
	Description *string                   `json:"description,omitempty"`
	Capacity    *int                      `json:"capacity,omitempty"`
	Occurrences []models.OccurrenceDetail `json:"occurrences"`
	Tags        []models.Tag              `json:"tags"`
	IsEnrolled  bool                      `json:"is_enrolled"`
}

// ProjectDetail is the full student view of a project, including the
// derived window status.
type ProjectDetail struct {
	ID              string               `json:"id"`
	Name            string               `json:"name"`
	Description     *string              `json:"description,omitempty"`
	Timezone        string               `json:"timezone"`
	SubmissionStart *time.Time           `json:"submission_start,omitempty"`
	SubmissionEnd   *time.Time           `json:"submission_end,omitempty"`
	TimeSections    []models.TimeSection `json:"time_sections"`
	Tags            []models.Tag         `json:"tags"`
	Courses         []CourseView         `json:"courses"`
	HasSubmitted    bool                 `json:"has_submitted"`
	SubmittedAt     *time.Time           `json:"submitted_at,omitempty"`
	Status          models.ProjectStatus `json:"status"`
	StatusMessage   string               `json:"status_message"`
}

// EnrollRequest selects a course to enroll in.
type EnrollRequest struct {
	CourseID string `json:"course_id" validate:"required"`
}

// EnrollmentView is the created enrollment echoed to the student.
type EnrollmentView struct {
	EnrollmentID string                  `json:"enrollment_id"`
	CourseID     string                  `json:"course_id"`
	Status       models.EnrollmentStatus `json:"status"`
	CreatedAt    time.Time               `json:"created_at"`
}

// SubmissionView is the created submission echoed to the student.
type SubmissionView struct {
	SubmissionID string    `json:"submission_id"`
	SubmittedAt  time.Time `json:"submitted_at"`
}

// EmbedStatus is the status-widget payload.
type EmbedStatus struct {
	Project       ProjectBrief         `json:"project"`
	HasSubmitted  bool                 `json:"has_submitted"`
	SubmittedAt   *time.Time           `json:"submitted_at,omitempty"`
	Status        models.ProjectStatus `json:"status"`
	StatusMessage string               `json:"status_message"`
}
