// Package gscript posts approved leave requests to the document-generation web app.
package gscript

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cmlabs-hris/eleave-backend-go/internal/domain/document"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"
)

const (
	DefaultTimeout = 30 * time.Second
	// SignatureHeader carries the hex HMAC-SHA256 of the request body when a signing secret is set.
	SignatureHeader = "X-Eleave-Signature"

	maxResponseBody = 1 << 20
)

type Config struct {
	URL           string
	Timeout       time.Duration
	RatePerSecond float64
	Burst         int
	SigningSecret string
	// OAuth enables client-credentials auth when ClientID is set.
	OAuth clientcredentials.Config
}

// HTTPError is returned for a non-2xx answer.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("document webhook returned %d: %s", e.StatusCode, e.Body)
}

type Client struct {
	url        string
	httpClient *http.Client
	limiter    *rate.Limiter
	signer     *Signer
}

var _ document.Notifier = (*Client)(nil)

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	httpClient := &http.Client{}
	if cfg.OAuth.ClientID != "" {
		tokenCtx := context.WithValue(context.Background(), oauth2.HTTPClient, &http.Client{Timeout: timeout})
		httpClient = cfg.OAuth.Client(tokenCtx)
	}
	httpClient.Timeout = timeout

	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	c := &Client{
		url:        strings.TrimSpace(cfg.URL),
		httpClient: httpClient,
		limiter:    rate.NewLimiter(limit, burst),
	}
	if cfg.SigningSecret != "" {
		c.signer = NewSigner(cfg.SigningSecret)
	}
	return c
}

type webhookResponse struct {
	Success     *bool  `json:"success"`
	URL         string `json:"url"`
	DocumentURL string `json:"document_url"`
	Message     string `json:"message"`
}

// Notify implements document.Notifier.
func (c *Client) Notify(ctx context.Context, payload document.WebhookPayload) (document.WebhookResult, error) {
	if c.url == "" {
		return document.WebhookResult{}, document.ErrWebhookNotConfigured
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return document.WebhookResult{}, fmt.Errorf("document webhook rate limit: %w", err)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return document.WebhookResult{}, fmt.Errorf("encode webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return document.WebhookResult{}, fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.signer != nil {
		req.Header.Set(SignatureHeader, c.signer.Sign(body))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return document.WebhookResult{}, fmt.Errorf("call document webhook: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return document.WebhookResult{}, fmt.Errorf("read webhook response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return document.WebhookResult{}, &HTTPError{StatusCode: resp.StatusCode, Body: truncate(string(raw), 200)}
	}

	return parseResult(raw)
}

// parseResult accepts an empty or non-JSON body as a success without a document URL.
func parseResult(raw []byte) (document.WebhookResult, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return document.WebhookResult{Success: true}, nil
	}

	var wr webhookResponse
	if err := json.Unmarshal(raw, &wr); err != nil {
		slog.Debug("document webhook answered with non-JSON body", "body", truncate(string(raw), 200))
		return document.WebhookResult{Success: true}, nil
	}

	result := document.WebhookResult{
		Success:     wr.Success == nil || *wr.Success,
		DocumentURL: wr.URL,
		Message:     wr.Message,
	}
	if result.DocumentURL == "" {
		result.DocumentURL = wr.DocumentURL
	}
	if !result.Success {
		return result, fmt.Errorf("%w: %s", document.ErrWebhookRejected, wr.Message)
	}
	return result, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
