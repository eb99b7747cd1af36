package models

// Tag is a per-project selection constraint. A student's confirmed
// enrollments in courses carrying the tag must land within
// [MinRequired, MaxAllowed]; a nil MaxAllowed is unbounded.
type Tag struct {
	ID          string  `db:"id" json:"id"`
	ProjectID   string  `db:"project_id" json:"project_id"`
	Name        string  `db:"name" json:"name"`
	Color       *string `db:"color" json:"color,omitempty"`
	MinRequired int     `db:"min_required" json:"min_required"`
	MaxAllowed  *int    `db:"max_allowed" json:"max_allowed,omitempty"`
}
