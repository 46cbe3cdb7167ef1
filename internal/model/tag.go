package model

import "time"

// Tag represents an article tag
type Tag struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// TagCreate represents data for creating a new tag
type TagCreate struct {
	Name string `json:"name" binding:"required"`
}
