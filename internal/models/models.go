package models

import (
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when no record matches the given id.
	ErrNotFound = errors.New("record not found")
	// ErrNotPersisted is returned when the store rejects a write.
	ErrNotPersisted = errors.New("record not persisted")
)

// Post represents a blog post
type Post struct {
	ID        int       `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Comment represents a comment attached to a post
type Comment struct {
	ID        int       `json:"id"`
	PostID    int       `json:"post_id"`
	Author    string    `json:"author"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// fillable is the allow-list of post fields that may be set through
// mass assignment. Anything else submitted with a form is dropped
// before it reaches SQL.
var fillable = map[string]bool{
	"title": true,
	"body":  true,
}

// FilterFillable returns a copy of fields restricted to the fillable
// allow-list. Unknown keys are silently ignored.
func FilterFillable(fields map[string]string) map[string]string {
	out := make(map[string]string, len(fillable))
	for k, v := range fields {
		if fillable[k] {
			out[k] = v
		}
	}
	return out
}
