package models

import "time"

// Course belongs to exactly one project. Capacity is optional; nil means
// unlimited seats.
type Course struct {
	ID          string    `db:"id" json:"id"`
	ProjectID   string    `db:"project_id" json:"project_id"`
	Name        string    `db:"name" json:"name"`
	Description *string   `db:"description" json:"description,omitempty"`
	Capacity    *int      `db:"capacity" json:"capacity,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Occurrence is a scheduled meeting of a course: a weekday plus a time
// section reference.
type Occurrence struct {
	ID        string `db:"id" json:"id"`
	CourseID  string `db:"course_id" json:"course_id"`
	DayOfWeek int    `db:"day_of_week" json:"day_of_week"`
	SectionID string `db:"section_id" json:"section_id"`
}

// OccurrenceDetail enriches Occurrence with its section.
type OccurrenceDetail struct {
	Occurrence
	SectionLabel string `db:"section_label" json:"section_label"`
	StartTime    string `db:"start_time" json:"start_time"`
	EndTime      string `db:"end_time" json:"end_time"`
}
