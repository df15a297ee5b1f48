package model

import "time"

// Chore is a reusable task definition, independent of any person.
type Chore struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Points      int       `json:"points"`
	Icon        string    `json:"icon"`
	CreatedAt   time.Time `json:"created_at"`
}
