package processor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	pkgerrors "github.com/angelmondragon/vineinventory-viewer/pkg/errors"
	"github.com/angelmondragon/vineinventory-viewer/pkg/logger"
	"github.com/angelmondragon/vineinventory-viewer/pkg/retry"
	"github.com/angelmondragon/vineinventory-viewer/pkg/types"
)

const (
	defaultTimeout              = 30 * time.Second
	viewerDataPath              = "/api/viewer/data"
	responseBodyReadLimit int64 = 512
)

var (
	errBaseURLRequired = errors.New("processor base url is required")
	errNotReady        = errors.New("processor data not ready")
)

// Client fetches prepared viewer snapshots from the processor service.
type Client struct {
	httpClient *http.Client
	baseURL    string
	policy     retry.Policy
	logg       *logger.Logger
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

// WithRetryPolicy overrides the polling policy used while data is not ready.
func WithRetryPolicy(policy retry.Policy) Option {
	return func(c *Client) {
		c.policy = policy
	}
}

func WithLogger(logg *logger.Logger) Option {
	return func(c *Client) {
		c.logg = logg
	}
}

// NewClient builds a processor client rooted at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, errBaseURLRequired
	}

	client := &Client{
		baseURL:    trimmed,
		httpClient: &http.Client{Timeout: defaultTimeout},
		policy:     retry.DefaultPolicy(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

// FetchSnapshot asks the processor for the viewer data of telegramID. A 404
// means the processor has not finished preparing it, so the call is retried
// under the configured policy.
func (c *Client) FetchSnapshot(ctx context.Context, telegramID int64, businessName string) (*types.Snapshot, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "processor client not configured")
	}

	endpoint := c.buildURL(telegramID, businessName)
	var snapshot *types.Snapshot
	err := retry.Do(ctx, c.policy, func(ctx context.Context, attempt int) error {
		c.logAttempt(ctx, attempt, endpoint)
		result, err := c.fetchOnce(ctx, endpoint)
		if err != nil {
			return err
		}
		snapshot = result
		return nil
	})
	if err != nil {
		if errors.Is(err, errNotReady) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "processor data not available").
				WithDetails(map[string]any{"attempts": c.policy.Attempts})
		}
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "processor request failed")
	}
	return snapshot, nil
}

func (c *Client) fetchOnce(ctx context.Context, endpoint string) (*types.Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build processor request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, retry.Retryable(fmt.Errorf("execute processor request: %w", err))
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, responseBodyReadLimit))
		return nil, retry.Retryable(errNotReady)
	default:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "processor request failed")
	}

	var snapshot types.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snapshot); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode processor response")
	}
	fillFacets(&snapshot)
	return &snapshot, nil
}

func (c *Client) buildURL(telegramID int64, businessName string) string {
	q := url.Values{}
	q.Set("telegram_id", strconv.FormatInt(telegramID, 10))
	if name := strings.TrimSpace(businessName); name != "" {
		q.Set("business_name", name)
	}
	return c.baseURL + viewerDataPath + "?" + q.Encode()
}

func (c *Client) logAttempt(ctx context.Context, attempt int, endpoint string) {
	if c.logg == nil {
		return
	}
	ctx = c.logg.WithFields(ctx, map[string]any{
		"attempt":      attempt,
		"max_attempts": c.policy.Attempts,
		"url":          endpoint,
	})
	c.logg.Info(ctx, "processor.fetch")
}

func fillFacets(s *types.Snapshot) {
	if s.Rows == nil {
		s.Rows = []types.SnapshotRow{}
	}
	if s.Facets.Type == nil {
		s.Facets.Type = map[string]int{}
	}
	if s.Facets.Vintage == nil {
		s.Facets.Vintage = map[string]int{}
	}
	if s.Facets.Winery == nil {
		s.Facets.Winery = map[string]int{}
	}
	if s.Facets.Supplier == nil {
		s.Facets.Supplier = map[string]int{}
	}
}
