package model

import (
	"time"
)

// Article represents a wiki article row
type Article struct {
	ID        string    `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	Slug      string    `json:"slug" db:"slug"`
	Content   string    `json:"content" db:"content"`
	ImageURL  *string   `json:"image_url,omitempty" db:"image_url"`
	Published bool      `json:"published" db:"published"`
	AuthorID  string    `json:"author_id" db:"author_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ShapedArticle is the denormalized projection served to readers:
// the article joined with its author display name and tag names.
// Validation tags mirror the listing schema; failures are logged, not fatal.
type ShapedArticle struct {
	ID        string    `json:"id" validate:"required,min=10"`
	Title     string    `json:"title" validate:"required"`
	CreatedAt time.Time `json:"created_at" validate:"required"`
	Content   string    `json:"content" validate:"required"`
	Author    string    `json:"author" validate:"required,min=2"`
	ImageURL  *string   `json:"image_url,omitempty"`
	AuthorID  string    `json:"author_id,omitempty"`
	Tags      []string  `json:"tags"`
}

// ArticleCreate represents the payload for creating an article.
// AuthorID, slug and published are server-assigned; any client-supplied
// values for them are ignored.
type ArticleCreate struct {
	Title    string   `json:"title" binding:"required,min=5"`
	Content  string   `json:"content" binding:"required,min=10"`
	ImageURL *string  `json:"image_url,omitempty"`
	Tags     []string `json:"tags,omitempty"`
}

// ArticleUpdate represents the payload for updating an existing article
type ArticleUpdate struct {
	Title    string   `json:"title" binding:"required,min=5"`
	Content  string   `json:"content" binding:"required,min=10"`
	ImageURL *string  `json:"image_url,omitempty"`
	Tags     []string `json:"tags,omitempty"`
}

// MutationResult is the structured outcome of a create/update/delete action.
// Either Success/Message/Article are set, or Error carries a short
// human-readable failure string. Raw store errors never appear here.
type MutationResult struct {
	Success bool     `json:"success"`
	Message string   `json:"message,omitempty"`
	Article *Article `json:"article,omitempty"`
	Error   string   `json:"error,omitempty"`
}
