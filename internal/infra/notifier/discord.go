// Package notifier announces newly imported wiki pages to external channels.
// Implementations handle rate limiting and transient failures internally;
// callers treat announcement errors as non-fatal.
package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"pixels-dojo/internal/domain/entity"
)

const (
	maxEmbedTitleLen = 256
	maxEmbedDescLen  = 4096

	// Discord webhooks allow 30 requests per minute.
	webhookRequestsPerSecond = 0.5
	webhookBurst             = 3

	// Pixels green (#7CB342)
	embedColor = 8172354
)

// DiscordConfig configures the webhook announcer.
type DiscordConfig struct {
	// WebhookURL is the Discord webhook URL, including its token.
	WebhookURL string
	// WikiBaseURL is the public base URL pages are linked under,
	// e.g. https://dojo.example.com.
	WikiBaseURL string
	// Timeout bounds each webhook request.
	Timeout time.Duration
}

// Discord posts an embed to a Discord webhook for every new page.
type Discord struct {
	cfg         DiscordConfig
	httpClient  *http.Client
	rateLimiter *RateLimiter
	logger      *slog.Logger
}

func NewDiscord(cfg DiscordConfig, logger *slog.Logger) *Discord {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Discord{
		cfg:         cfg,
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		rateLimiter: NewRateLimiter(webhookRequestsPerSecond, webhookBurst),
		logger:      logger,
	}
}

type webhookPayload struct {
	Embeds []embed `json:"embeds"`
}

type embed struct {
	Title       string      `json:"title"`
	Description string      `json:"description"`
	URL         string      `json:"url"`
	Color       int         `json:"color"`
	Footer      embedFooter `json:"footer"`
	Timestamp   string      `json:"timestamp"`
}

type embedFooter struct {
	Text string `json:"text"`
}

type discordError struct {
	Message    string  `json:"message"`
	RetryAfter float64 `json:"retry_after"`
}

// AnnouncePage posts a new-page embed, honoring the webhook rate limit. A
// 429 is retried once after the advertised backoff; other client errors fail
// immediately.
func (d *Discord) AnnouncePage(ctx context.Context, article *entity.Article) error {
	if err := d.rateLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	err := d.send(ctx, article)
	var rateErr *rateLimitedError
	if !asRateLimited(err, &rateErr) {
		return err
	}

	d.logger.Warn("webhook rate limited, backing off",
		slog.String("slug", article.Slug),
		slog.Duration("retry_after", rateErr.retryAfter))
	select {
	case <-time.After(rateErr.retryAfter):
	case <-ctx.Done():
		return fmt.Errorf("canceled during webhook backoff: %w", ctx.Err())
	}
	return d.send(ctx, article)
}

func (d *Discord) send(ctx context.Context, article *entity.Article) error {
	payload := webhookPayload{Embeds: []embed{{
		Title:       truncate(article.Title, maxEmbedTitleLen),
		Description: truncate(article.Summary, maxEmbedDescLen),
		URL:         d.pageURL(article.Slug),
		Color:       embedColor,
		Footer:      embedFooter{Text: "Pixels Dojo Wiki"},
		Timestamp:   article.PublishedAt.Format(time.RFC3339),
	}}}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.cfg.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute webhook request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusTooManyRequests:
		return &rateLimitedError{retryAfter: retryAfter(resp, respBody)}
	default:
		return fmt.Errorf("webhook returned %d: %s", resp.StatusCode, string(respBody))
	}
}

func (d *Discord) pageURL(slug string) string {
	return strings.TrimRight(d.cfg.WikiBaseURL, "/") + "/wiki/" + slug
}

type rateLimitedError struct {
	retryAfter time.Duration
}

func (e *rateLimitedError) Error() string {
	return fmt.Sprintf("webhook rate limit exceeded (retry after %v)", e.retryAfter)
}

func asRateLimited(err error, target **rateLimitedError) bool {
	if err == nil {
		return false
	}
	re, ok := err.(*rateLimitedError)
	if ok {
		*target = re
	}
	return ok
}

// retryAfter reads the backoff from the JSON body, then the Retry-After
// header, defaulting to 5 seconds.
func retryAfter(resp *http.Response, body []byte) time.Duration {
	var derr discordError
	if err := json.Unmarshal(body, &derr); err == nil && derr.RetryAfter > 0 {
		return time.Duration(derr.RetryAfter * float64(time.Second))
	}
	if header := resp.Header.Get("Retry-After"); header != "" {
		if seconds, err := strconv.Atoi(header); err == nil && seconds > 0 {
			return time.Duration(seconds) * time.Second
		}
	}
	return 5 * time.Second
}

func truncate(text string, maxLen int) string {
	if len(text) <= maxLen {
		return text
	}
	return text[:maxLen-3] + "..."
}
