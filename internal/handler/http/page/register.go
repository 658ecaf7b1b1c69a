package page

import (
	"net/http"

	"pixels-dojo/internal/repository"
	"pixels-dojo/internal/usecase/search"
)

// Register wires the public page routes onto the mux. All page reads are
// public; write operations only exist on the admin import surface.
func Register(mux *http.ServeMux, repo repository.ArticleRepository, searchSvc *search.Service) {
	mux.Handle("GET /api/pages", ListHandler{Repo: repo})
	mux.Handle("GET /api/pages/search", SearchHandler{Svc: searchSvc})
	mux.Handle("GET /api/pages/{slug}", GetHandler{Repo: repo})
}
