package models

import "time"

// Group is a competing team, identified by a unique name. The name is stored
// with the casing of the first submitter and matched case-insensitively.
type Group struct {
	ID        int       `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	Submissions []Submission `json:"submissions,omitempty" db:"-"`
}
