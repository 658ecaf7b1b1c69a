package page

import (
	"errors"
	"net/http"

	"pixels-dojo/internal/handler/http/respond"
	"pixels-dojo/internal/repository"
)

type GetHandler struct{ Repo repository.ArticleRepository }

func (h GetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	if slug == "" {
		respond.SafeError(w, http.StatusBadRequest, errors.New("slug path param required"))
		return
	}

	article, err := h.Repo.GetBySlug(r.Context(), slug)
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	if article == nil {
		respond.SafeError(w, http.StatusNotFound, errors.New("page not found"))
		return
	}

	respond.JSON(w, http.StatusOK, DTO{
		ID:          article.ID,
		Slug:        article.Slug,
		Title:       article.Title,
		Body:        article.Body,
		Summary:     article.Summary,
		Category:    article.Category,
		PublishedAt: article.PublishedAt,
		UpdatedAt:   article.UpdatedAt,
	})
}
