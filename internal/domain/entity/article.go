// Package entity defines the core domain entities and validation logic for the application.
// It contains the fundamental business objects such as Article and User, along with
// their validation rules and domain-specific errors.
package entity

import "time"

// Article represents a wiki page in the system. Pages are created either
// through the content-management surface or by the automated newsletter
// import pipeline, and are addressed externally by their slug.
type Article struct {
	ID          int64
	Slug        string
	Title       string
	Body        string
	Summary     string
	Category    string
	AuthorID    int64
	PublishedAt time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// User represents a wiki account. Imported pages are attributed to a
// configured system author.
type User struct {
	ID          int64
	Username    string
	DisplayName string
	IsAdmin     bool
	CreatedAt   time.Time
}
