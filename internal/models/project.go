package models

import "time"

// ProjectStatus is the submission-window state shown to students.
type ProjectStatus string

// Window states. A submitted project is reported as open on the wire;
// HasSubmitted distinguishes it for display.
const (
	ProjectStatusWaiting ProjectStatus = "waiting"
	ProjectStatusOpen    ProjectStatus = "open"
	ProjectStatusClosed  ProjectStatus = "closed"
)

// Project is an enrollment campaign. The submission window bounds are
// optional; a missing bound leaves that side unbounded.
type Project struct {
	ID              string     `db:"id" json:"id"`
	Name            string     `db:"name" json:"name"`
	Description     *string    `db:"description" json:"description,omitempty"`
	Timezone        string     `db:"timezone" json:"timezone"`
	SubmissionStart *time.Time `db:"submission_start" json:"submission_start,omitempty"`
	SubmissionEnd   *time.Time `db:"submission_end" json:"submission_end,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}
