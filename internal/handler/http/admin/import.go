// Package admin provides the admin-only HTTP surface: the manual import
// trigger with its HTML result page.
package admin

import (
	"errors"
	"html/template"
	"log/slog"
	"net/http"

	"pixels-dojo/internal/handler/http/auth"
	"pixels-dojo/internal/handler/http/respond"
	"pixels-dojo/internal/usecase/importer"
)

var resultTemplate = template.Must(template.New("import-result").Parse(`<!DOCTYPE html>
<html>
<head><title>Import Result</title></head>
<body>
{{if .Error}}
  <h1>Import failed</h1>
  <p>{{.Error}}</p>
{{else}}
  <h1>Import complete</h1>
  <ul>
    <li>Found: {{.Stats.Found}}</li>
    <li>Imported: {{.Stats.Imported}}</li>
    <li>Updated: {{.Stats.Updated}}</li>
    <li>Skipped: {{.Stats.Skipped}}</li>
    <li>Errored: {{.Stats.Errored}}</li>
    <li>Duration: {{.Stats.Duration}}</li>
  </ul>
{{end}}
<p><a href="/admin">Back</a></p>
</body>
</html>
`))

type resultView struct {
	Stats *importer.Stats
	Error string
}

type ImportHandler struct {
	Svc    *importer.Service
	Logger *slog.Logger
}

// ServeHTTP triggers a manual import run and renders an HTML result page
// with the run's counters. A run already in progress comes back as 409.
func (h ImportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Svc.Run(r.Context(), importer.TriggerManual)
	if err != nil {
		if errors.Is(err, importer.ErrAlreadyRunning) {
			respond.SafeError(w, http.StatusConflict, err)
			return
		}
		h.Logger.Error("manual import failed",
			slog.String("user", auth.UserFromContext(r.Context())),
			slog.Any("error", err))
		renderResult(w, http.StatusBadGateway, resultView{Error: "import failed: source feed unavailable"})
		return
	}

	h.Logger.Info("manual import finished",
		slog.String("user", auth.UserFromContext(r.Context())),
		slog.Int("imported", stats.Imported),
		slog.Int("skipped", stats.Skipped),
		slog.Int("errored", stats.Errored))
	renderResult(w, http.StatusOK, resultView{Stats: stats})
}

func renderResult(w http.ResponseWriter, code int, view resultView) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	if err := resultTemplate.Execute(w, view); err != nil {
		slog.Default().Error("failed to render import result", slog.Any("error", err))
	}
}

// Register wires the admin routes onto the mux behind JWT authorization.
func Register(mux *http.ServeMux, svc *importer.Service, logger *slog.Logger) {
	mux.Handle("POST /admin/import", auth.Authz(ImportHandler{Svc: svc, Logger: logger}))
	mux.Handle("POST /admin/refresh", auth.Authz(RefreshHandler{Svc: svc, Logger: logger}))
}
