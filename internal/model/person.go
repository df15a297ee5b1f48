package model

import "time"

type Person struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Balance    int       `json:"balance"`
	Color      string    `json:"color"`
	AvatarSeed string    `json:"avatar_seed"`
	HasPIN     bool      `json:"has_pin"`
	CreatedAt  time.Time `json:"created_at"`
}
