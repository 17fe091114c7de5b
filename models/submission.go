package models

import "time"

// Submission is one scored attempt by a group. Rows are append-only: the
// service never updates or deletes them, and a group cannot be removed while
// submissions reference it.
type Submission struct {
	ID               int       `json:"id" db:"id"`
	GroupID          int       `json:"group_id" db:"group_id"`
	RightPredictions int       `json:"right_predictions" db:"right_predictions"`
	WrongPredictions int       `json:"wrong_predictions" db:"wrong_predictions"`
	CCE              float64   `json:"cce" db:"cce"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`

	Group *Group `json:"group,omitempty" db:"-"`
}
