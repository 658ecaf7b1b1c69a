package notifier

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"pixels-dojo/internal/domain/entity"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testArticle() *entity.Article {
	return &entity.Article{
		Slug:        "ama-recap-pets",
		Title:       "AMA Recap: Pets",
		Summary:     "Everything about pets.",
		PublishedAt: time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
	}
}

func TestAnnouncePage_SendsEmbed(t *testing.T) {
	t.Parallel()

	var got webhookPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("Content-Type = %q", r.Header.Get("Content-Type"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	d := NewDiscord(DiscordConfig{
		WebhookURL:  srv.URL,
		WikiBaseURL: "https://dojo.example.com/",
	}, testLogger())

	if err := d.AnnouncePage(context.Background(), testArticle()); err != nil {
		t.Fatalf("AnnouncePage err=%v", err)
	}
	if len(got.Embeds) != 1 {
		t.Fatalf("embeds = %+v", got.Embeds)
	}
	e := got.Embeds[0]
	if e.Title != "AMA Recap: Pets" {
		t.Errorf("Title = %q", e.Title)
	}
	if e.URL != "https://dojo.example.com/wiki/ama-recap-pets" {
		t.Errorf("URL = %q", e.URL)
	}
	if e.Timestamp != "2026-01-15T00:00:00Z" {
		t.Errorf("Timestamp = %q", e.Timestamp)
	}
}

func TestAnnouncePage_RetriesOnceAfter429(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"message":"rate limited","retry_after":0.01}`))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	d := NewDiscord(DiscordConfig{WebhookURL: srv.URL, WikiBaseURL: "https://dojo.example.com"}, testLogger())
	if err := d.AnnouncePage(context.Background(), testArticle()); err != nil {
		t.Fatalf("AnnouncePage err=%v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("calls = %d, want 2", calls.Load())
	}
}

func TestAnnouncePage_ClientErrorFailsImmediately(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "unknown webhook", http.StatusNotFound)
	}))
	defer srv.Close()

	d := NewDiscord(DiscordConfig{WebhookURL: srv.URL, WikiBaseURL: "https://dojo.example.com"}, testLogger())
	if err := d.AnnouncePage(context.Background(), testArticle()); err == nil {
		t.Fatal("expected error for 404")
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want no retry on 404", calls.Load())
	}
}

func TestRetryAfter(t *testing.T) {
	t.Parallel()

	resp := &http.Response{Header: http.Header{"Retry-After": []string{"7"}}}
	if got := retryAfter(resp, nil); got != 7*time.Second {
		t.Errorf("header fallback = %v", got)
	}
	if got := retryAfter(resp, []byte(`{"retry_after":2.5}`)); got != 2500*time.Millisecond {
		t.Errorf("json body = %v", got)
	}
	if got := retryAfter(&http.Response{Header: http.Header{}}, nil); got != 5*time.Second {
		t.Errorf("default = %v", got)
	}
}
