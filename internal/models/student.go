package models

import "time"

// Student is identified by its opaque token rather than an account. The
// token is derived deterministically from a real-world identifier, so
// re-importing the same roster is idempotent.
type Student struct {
	ID        string    `db:"id" json:"id"`
	Token     string    `db:"token" json:"token"`
	Name      *string   `db:"name" json:"name,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
