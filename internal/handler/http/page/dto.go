// Package page provides HTTP handlers for public wiki page endpoints:
// fetching a page by slug, listing pages, and relevance search.
package page

import "time"

// DTO represents the JSON structure for a wiki page.
type DTO struct {
	ID          int64     `json:"id"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Body        string    `json:"body,omitempty"`
	Summary     string    `json:"summary"`
	Category    string    `json:"category"`
	PublishedAt time.Time `json:"published_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// SearchResultDTO is one ranked search hit.
type SearchResultDTO struct {
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Summary     string    `json:"summary"`
	Category    string    `json:"category"`
	PublishedAt time.Time `json:"published_at"`
	Relevance   int       `json:"relevance"`
}
