package bot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	pkgerrors "github.com/angelmondragon/vineinventory-viewer/pkg/errors"
)

const (
	defaultTimeout              = 10 * time.Second
	linkReadyPath               = "/api/viewer/link-ready"
	responseBodyReadLimit int64 = 512
)

var errBaseURLRequired = errors.New("bot base url is required")

// Client delivers viewer callbacks to the bot service.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout overrides the total time allowed for one callback.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

func NewClient(baseURL string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, errBaseURLRequired
	}
	client := &Client{
		baseURL:    trimmed,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

// LinkReady is the payload the bot expects once a viewer page exists.
type LinkReady struct {
	TelegramID    int64   `json:"telegram_id"`
	ViewerURL     string  `json:"viewer_url"`
	CorrelationID *string `json:"correlation_id"`
}

// NotifyLinkReady posts the viewer URL back to the bot.
func (c *Client) NotifyLinkReady(ctx context.Context, payload LinkReady) error {
	if c == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "bot client not configured")
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal link-ready payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+linkReadyPath, bytes.NewReader(body))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build link-ready request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute link-ready request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "link-ready request failed")
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, responseBodyReadLimit))
	return nil
}
