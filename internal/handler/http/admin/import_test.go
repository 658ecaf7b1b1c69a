package admin_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"pixels-dojo/internal/domain/entity"
	"pixels-dojo/internal/handler/http/admin"
	"pixels-dojo/internal/infra/feed"
	"pixels-dojo/internal/infra/sanitize"
	"pixels-dojo/internal/repository"
	"pixels-dojo/internal/usecase/importer"
)

type stubParser struct {
	entries []feed.Entry
	err     error
}

func (s *stubParser) Parse(context.Context, string) ([]feed.Entry, error) {
	return s.entries, s.err
}

type stubRepo struct {
	repository.ArticleRepository

	createErr map[string]error
}

func (s stubRepo) ExistsBySlug(context.Context, string) (bool, error) { return false, nil }
func (s stubRepo) Create(_ context.Context, a *entity.Article) error  { return s.createErr[a.Slug] }
func (s stubRepo) UpdateBySlug(context.Context, *entity.Article) error {
	return nil
}
func (s stubRepo) CountArticles(context.Context) (int64, error) { return 1, nil }

func newMux(t *testing.T, parser feed.Parser) *http.ServeMux {
	t.Helper()
	return newMuxWithRepo(t, parser, stubRepo{})
}

func newMuxWithRepo(t *testing.T, parser feed.Parser, repo repository.ArticleRepository) *http.ServeMux {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := importer.NewService(
		parser,
		repo,
		sanitize.New("Dojo Newsletter", "https://news.example.com", sanitize.Options{}),
		nil,
		importer.Config{FeedURL: "https://news.example.com/feed", Category: "amas", SystemAuthorID: 1},
		logger,
	)
	mux := http.NewServeMux()
	admin.Register(mux, svc, logger)
	return mux
}

func adminToken(t *testing.T) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "admin@dojo",
		"role": "admin",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatal(err)
	}
	return signed
}

func trigger(mux *http.ServeMux, token string) *httptest.ResponseRecorder {
	return triggerPath(mux, token, "/admin/import")
}

func triggerPath(mux *http.ServeMux, token, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestImportHandler_RendersCounts(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	published := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	mux := newMux(t, &stubParser{entries: []feed.Entry{
		{Title: "AMA One", URL: "https://news.example.com/p/1", PublishedAt: &published},
	}})

	rec := trigger(mux, adminToken(t))
	if rec.Code != http.StatusOK {
		t.Fatalf("code=%d body=%s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Imported: 1") || !strings.Contains(body, "Skipped: 0") {
		t.Errorf("body = %q", body)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestImportHandler_FetchFailureRendersError(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	mux := newMux(t, &stubParser{err: errors.New("upstream 503")})
	rec := trigger(mux, adminToken(t))
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("code=%d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Import failed") {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestImportHandler_RequiresAuth(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	mux := newMux(t, &stubParser{})
	if rec := trigger(mux, ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("code=%d, want 401", rec.Code)
	}
}

func TestRefreshHandler_RendersUpdateCounts(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	published := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	repo := stubRepo{createErr: map[string]error{"ama-one": entity.ErrDuplicateSlug}}
	mux := newMuxWithRepo(t, &stubParser{entries: []feed.Entry{
		{Title: "AMA One", URL: "https://news.example.com/p/1", PublishedAt: &published},
		{Title: "AMA Two", URL: "https://news.example.com/p/2", PublishedAt: &published},
	}}, repo)

	rec := triggerPath(mux, adminToken(t), "/admin/refresh")
	if rec.Code != http.StatusOK {
		t.Fatalf("code=%d body=%s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Updated: 1") || !strings.Contains(body, "Imported: 1") {
		t.Errorf("body = %q", body)
	}
}

func TestRefreshHandler_RequiresAuth(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	mux := newMux(t, &stubParser{})
	if rec := triggerPath(mux, "", "/admin/refresh"); rec.Code != http.StatusUnauthorized {
		t.Fatalf("code=%d, want 401", rec.Code)
	}
}
