package entity

import (
	"strings"

	"github.com/google/uuid"
)

// maxSlugLen bounds slugs so they stay usable as URL path segments and fit
// the pages.slug column.
const maxSlugLen = 100

// NormalizeSlug derives a URL-safe identifier from a page title.
// The input is lower-cased, every maximal run of characters outside [a-z0-9]
// collapses to a single '-', leading and trailing '-' are stripped, and the
// result is truncated to 100 characters.
//
// The function is total: any input produces some string, possibly empty.
// Callers that need a non-empty slug should use SlugOrFallback.
func NormalizeSlug(title string) string {
	lower := strings.ToLower(title)

	var b strings.Builder
	b.Grow(len(lower))
	pendingDash := false
	for _, r := range lower {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
		} else {
			pendingDash = true
		}
	}

	slug := b.String()
	if len(slug) > maxSlugLen {
		slug = strings.Trim(slug[:maxSlugLen], "-")
	}
	return slug
}

// SlugOrFallback returns the normalized slug for the title, or a generated
// identifier when normalization strips the title down to nothing (titles
// consisting only of punctuation or non-latin characters).
func SlugOrFallback(title string) string {
	if slug := NormalizeSlug(title); slug != "" {
		return slug
	}
	return "page-" + uuid.New().String()
}
