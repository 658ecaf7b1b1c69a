package page

import (
	"errors"
	"net/http"
	"strconv"

	"pixels-dojo/internal/handler/http/respond"
	"pixels-dojo/internal/usecase/search"
)

const maxSearchLimit = 20

type SearchHandler struct{ Svc *search.Service }

func (h SearchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		respond.SafeError(w, http.StatusBadRequest, errors.New("q query param required"))
		return
	}

	limit := 5
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed <= 0 || parsed > maxSearchLimit {
			respond.SafeError(w, http.StatusBadRequest,
				errors.New("invalid limit: must be between 1 and 20"))
			return
		}
		limit = parsed
	}

	results, err := h.Svc.Search(r.Context(), query, "api", limit)
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	out := make([]SearchResultDTO, 0, len(results))
	for _, res := range results {
		out = append(out, SearchResultDTO{
			Slug:        res.Slug,
			Title:       res.Title,
			Summary:     res.Summary,
			Category:    res.Category,
			PublishedAt: res.PublishedAt,
			Relevance:   res.Relevance,
		})
	}
	respond.JSON(w, http.StatusOK, out)
}
