package dto

import (
	"time"

	"github.com/clubselect/clubselect-api/internal/models"
)

// ProjectRequest creates or updates a project.
type ProjectRequest struct {
	Name            string     `json:"name" validate:"required"`
	Description     *string    `json:"description,omitempty"`
	Timezone        string     `json:"timezone,omitempty"`
	SubmissionStart *time.Time `json:"submission_start,omitempty"`
	SubmissionEnd   *time.Time `json:"submission_end,omitempty"`
}

// AdminProjectDetail is a project with its roster size.
type AdminProjectDetail struct {
	models.Project
	StudentCount int `json:"student_count"`
}

// BulkStudentsRequest adds a roster of identifiers to a project.
type BulkStudentsRequest struct {
	Identifiers []string `json:"identifiers" validate:"required,min=1"`
}

// RosterEntry is a roster row with the derived token.
type RosterEntry struct {
	ID    string  `json:"id"`
	Token string  `json:"token"`
	Name  *string `json:"name,omitempty"`
}

// BulkStudentsResponse reports the import outcome.
type BulkStudentsResponse struct {
	AddedCount int           `json:"added_count"`
	Students   []RosterEntry `json:"students"`
}

// TagRequest creates or updates a tag.
type TagRequest struct {
	Name        string  `json:"name" validate:"required"`
	Color       *string `json:"color,omitempty"`
	MinRequired int     `json:"min_required" validate:"gte=0"`
	MaxAllowed  *int    `json:"max_allowed,omitempty" validate:"omitempty,gte=0"`
}

// OccurrenceRequest schedules a course meeting.
type OccurrenceRequest struct {
	DayOfWeek int    `json:"day_of_week" validate:"gte=0,lte=6"`
	SectionID string `json:"section_id" validate:"required"`
}

// CourseRequest creates or updates a course.
type CourseRequest struct {
	Name        string              `json:"name" validate:"required"`
	Description *string             `json:"description,omitempty"`
	Capacity    *int                `json:"capacity,omitempty" validate:"omitempty,gte=1"`
	TagIDs      []string            `json:"tag_ids,omitempty"`
	Occurrences []OccurrenceRequest `json:"occurrences" validate:"required,min=1,dive"`
}

// SectionRequest creates or updates a time section. Times use HH:mm.
type SectionRequest struct {
	Label     string `json:"label" validate:"required"`
	StartTime string `json:"start_time" validate:"required,len=5"`
	EndTime   string `json:"end_time" validate:"required,len=5"`
	Order     *int   `json:"order,omitempty" validate:"omitempty,gte=0"`
}

// SettingRequest updates a site setting.
type SettingRequest struct {
	Value string `json:"value" validate:"required"`
}

// ExportSubmissionsRequest selects an export format.
type ExportSubmissionsRequest struct {
	Format string `json:"format" validate:"omitempty,oneof=csv pdf"`
}

// ExportFile is a rendered download.
type ExportFile struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Content     []byte `json:"-"`
}
