package feed

import (
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	// maxBodySize limits fetched documents to prevent memory exhaustion.
	maxBodySize = 10 * 1024 * 1024 // 10MB

	defaultFetchTimeout = 30 * time.Second
)

// NewHTTPClient creates the HTTP client used for all feed fetches.
// A bounded timeout turns a hung upstream into a fetch failure for that run.
func NewHTTPClient() *http.Client {
	return &http.Client{
		Timeout: defaultFetchTimeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
	}
}

// get issues one GET with the browser-like user agent and returns the body
// limited to maxBodySize. Any network or non-200 outcome is a hard error for
// the caller's pipeline run.
func get(client *http.Client, req *http.Request) (io.ReadCloser, error) {
	req.Header.Set("User-Agent", browserUserAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("unexpected status: %s", resp.Status)
	}

	return &limitedBody{Reader: io.LimitReader(resp.Body, maxBodySize), body: resp.Body}, nil
}

type limitedBody struct {
	io.Reader
	body io.Closer
}

func (l *limitedBody) Close() error { return l.body.Close() }
