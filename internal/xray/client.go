// Package xray talks to the Xray Cloud REST API: authentication and bulk
// test import.
package xray

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus"

	"github.com/fjglira/xraysync/internal/document"
	"github.com/fjglira/xraysync/internal/domain"
)

// maxMessageLen bounds the response text kept in error messages.
const maxMessageLen = 500

// Options configures a Client.
type Options struct {
	Token    string
	Endpoint string
	Timeout  time.Duration // per request; zero disables the timeout
	Policy   RetryPolicy
	Parallel bool
	Workers  int
	Log      *logrus.Logger
}

// Client uploads test documents to the bulk import endpoint. The token and
// endpoint are fixed for the lifetime of the client.
type Client struct {
	token    string
	endpoint string
	timeout  time.Duration
	policy   RetryPolicy
	parallel bool
	workers  int
	log      *logrus.Logger

	session    *http.Client
	newSession func() *http.Client
	sleep      func(ctx context.Context, d time.Duration) error
	now        func() time.Time
}

// NewClient creates a Client from opts.
func NewClient(opts Options) *Client {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.Log == nil {
		opts.Log = logrus.StandardLogger()
	}
	if opts.Policy == (RetryPolicy{}) {
		opts.Policy = DefaultRetryPolicy()
	}
	c := &Client{
		token:    opts.Token,
		endpoint: opts.Endpoint,
		timeout:  opts.Timeout,
		policy:   opts.Policy,
		parallel: opts.Parallel,
		workers:  opts.Workers,
		log:      opts.Log,
		sleep:    sleepContext,
		now:      time.Now,
	}
	c.newSession = c.defaultSession
	c.session = c.newSession()
	return c
}

// defaultSession returns an HTTP client with its own connection pool.
func (c *Client) defaultSession() *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	return &http.Client{Timeout: c.timeout, Transport: transport}
}

// Close releases the idle connections of the sequential session.
func (c *Client) Close() {
	c.session.CloseIdleConnections()
}

// Upload sends the document at path in a single request.
func (c *Client) Upload(ctx context.Context, path string) error {
	return c.upload(ctx, c.session, path)
}

func (c *Client) upload(ctx context.Context, session *http.Client, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return domain.NewError(domain.PhaseIO, path, "document not found", err)
	}
	if info.IsDir() {
		return domain.NewError(domain.PhaseIO, path, "document is a directory", nil)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return domain.NewError(domain.PhaseIO, path, "failed to read document", err)
	}
	payload, err := document.Compact(raw)
	if err != nil {
		return domain.NewErrorWithSuggestion(domain.PhaseParse, path,
			"document is not valid JSON",
			"regenerate it from the source file",
			err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return domain.NewError(domain.PhaseUpload, path, "failed to create request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	c.log.Debugf("POST %s (%d bytes) for %s", c.endpoint, len(payload), path)
	resp, err := session.Do(req)
	if err != nil {
		return domain.NewError(domain.PhaseUpload, path, "request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.NewError(domain.PhaseUpload, path, "failed to read response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return domain.NewError(domain.PhaseUpload, path, "import rejected", newHTTPError(resp, body))
	}

	c.log.Debugf("Import accepted for %s: %s", path, truncate(strings.TrimSpace(string(body)), maxMessageLen))
	return nil
}

// newHTTPError captures the status, message and retry hint of a failed response.
func newHTTPError(resp *http.Response, body []byte) *domain.HTTPError {
	herr := &domain.HTTPError{
		Status:  resp.StatusCode,
		Message: extractMessage(body),
		Body:    body,
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(resp.Header.Get("Retry-After"))); err == nil && secs > 0 {
		herr.RetryAfter = time.Duration(secs) * time.Second
	}
	return herr
}

// extractMessage prefers the "error" or "message" field of a JSON body and
// falls back to the raw text.
func extractMessage(body []byte) string {
	var obj map[string]any
	if err := json.Unmarshal(body, &obj); err == nil {
		for _, key := range []string{"error", "message"} {
			switch v := obj[key].(type) {
			case string:
				if v != "" {
					return truncate(v, maxMessageLen)
				}
			case map[string]any:
				if msg, ok := v["message"].(string); ok && msg != "" {
					return truncate(msg, maxMessageLen)
				}
			}
		}
	}
	return truncate(strings.TrimSpace(string(body)), maxMessageLen)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// String describes the client for logs.
func (c *Client) String() string {
	mode := "sequential"
	if c.parallel {
		mode = fmt.Sprintf("parallel x%d", c.workers)
	}
	return fmt.Sprintf("xray client %s (%s)", c.endpoint, mode)
}
