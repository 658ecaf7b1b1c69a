package admin

import (
	"errors"
	"log/slog"
	"net/http"

	"pixels-dojo/internal/handler/http/auth"
	"pixels-dojo/internal/handler/http/respond"
	"pixels-dojo/internal/usecase/importer"
)

type RefreshHandler struct {
	Svc    *importer.Service
	Logger *slog.Logger
}

// ServeHTTP re-imports the whole feed, rewriting pages that already exist.
// Used after sanitizer or formatting changes to bring stored pages up to
// date. A run already in progress comes back as 409.
func (h RefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Svc.Refresh(r.Context())
	if err != nil {
		if errors.Is(err, importer.ErrAlreadyRunning) {
			respond.SafeError(w, http.StatusConflict, err)
			return
		}
		h.Logger.Error("refresh failed",
			slog.String("user", auth.UserFromContext(r.Context())),
			slog.Any("error", err))
		renderResult(w, http.StatusBadGateway, resultView{Error: "refresh failed: source feed unavailable"})
		return
	}

	h.Logger.Info("refresh finished",
		slog.String("user", auth.UserFromContext(r.Context())),
		slog.Int("imported", stats.Imported),
		slog.Int("updated", stats.Updated),
		slog.Int("errored", stats.Errored))
	renderResult(w, http.StatusOK, resultView{Stats: stats})
}
