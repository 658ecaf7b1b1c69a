package page

import (
	"net/http"

	"pixels-dojo/internal/domain/entity"
	"pixels-dojo/internal/handler/http/respond"
	"pixels-dojo/internal/repository"
)

type ListHandler struct{ Repo repository.ArticleRepository }

// ServeHTTP lists pages newest first, optionally filtered by category. The
// body is omitted from list responses, clients fetch full pages by slug.
func (h ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var (
		articles []*entity.Article
		err      error
	)
	if category := r.URL.Query().Get("category"); category != "" {
		articles, err = h.Repo.ListByCategory(r.Context(), category)
	} else {
		articles, err = h.Repo.List(r.Context())
	}
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	out := make([]DTO, 0, len(articles))
	for _, a := range articles {
		out = append(out, DTO{
			ID:          a.ID,
			Slug:        a.Slug,
			Title:       a.Title,
			Summary:     a.Summary,
			Category:    a.Category,
			PublishedAt: a.PublishedAt,
			UpdatedAt:   a.UpdatedAt,
		})
	}
	respond.JSON(w, http.StatusOK, out)
}
