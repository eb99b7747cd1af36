package models

import "time"

// Submission marks a student's selections for a project as final. It is
// create-once: no update or delete path exists for students, and its
// existence is the single source of truth for "has submitted". The
// (student_id, project_id) pair is unique.
type Submission struct {
	ID          string    `db:"id" json:"id"`
	StudentID   string    `db:"student_id" json:"student_id"`
	ProjectID   string    `db:"project_id" json:"project_id"`
	SubmittedAt time.Time `db:"submitted_at" json:"submitted_at"`
}

// SubmissionDetail enriches Submission with student info for admin
// exports.
type SubmissionDetail struct {
	Submission
	StudentName  *string `db:"student_name" json:"student_name,omitempty"`
	StudentToken string  `db:"student_token" json:"student_token"`
}
