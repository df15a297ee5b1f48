package model

import "time"

type Frequency string

const (
	FrequencyOnce   Frequency = "ONCE"
	FrequencyDaily  Frequency = "DAILY"
	FrequencyWeekly Frequency = "WEEKLY"
)

// Valid reports whether f is one of the known frequencies.
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyOnce, FrequencyDaily, FrequencyWeekly:
		return true
	}
	return false
}

// Assignment schedules a chore for a person under a recurrence rule.
// The chore and person references are not enforced by the schema; reads
// filter out assignments whose references no longer resolve.
type Assignment struct {
	ID              int64      `json:"id"`
	ChoreID         int64      `json:"chore_id"`
	PersonID        int64      `json:"person_id"`
	Frequency       Frequency  `json:"frequency"`
	DueDate         *string    `json:"due_date,omitempty"` // YYYY-MM-DD
	LastCompletedAt *time.Time `json:"last_completed_at,omitempty"`
	IsActive        bool       `json:"is_active"`
	CreatedAt       time.Time  `json:"created_at"`
}
