package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/five82/quoter/internal/quote"
)

// Client talks to the remote quote endpoint.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	log       *zap.Logger
}

const (
	// DefaultBaseURL is the public placeholder API quoter syncs against.
	DefaultBaseURL   = "https://jsonplaceholder.typicode.com"
	defaultUserAgent = "quoter/0.1"
	requestTimeout   = 5 * time.Second
	postsPath        = "/posts"
	pushUserID       = 1
)

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// NewClient builds a Client for baseURL. A bare host:port gets an http scheme.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: requestTimeout,
		},
		userAgent: defaultUserAgent,
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the normalized endpoint root.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// FetchRecords retrieves at most limit records from the remote collection.
func (c *Client) FetchRecords(ctx context.Context, limit int) ([]Record, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	values := url.Values{}
	if limit > 0 {
		values.Set("_limit", strconv.Itoa(limit))
	}
	rel := &url.URL{Path: postsPath, RawQuery: values.Encode()}
	var records []Record
	if err := c.doURL(ctx, http.MethodGet, rel, nil, &records); err != nil {
		return nil, err
	}
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// PushQuote posts q to the remote collection and returns the created record.
func (c *Client) PushQuote(ctx context.Context, q quote.Quote) (Record, error) {
	if c == nil {
		return Record{}, fmt.Errorf("client is nil")
	}
	payload := pushPayload{
		Title:    q.Text,
		Body:     q.Category,
		UserID:   pushUserID,
		Text:     q.Text,
		Category: q.Category,
	}
	var created Record
	if err := c.doURL(ctx, http.MethodPost, &url.URL{Path: postsPath}, payload, &created); err != nil {
		return Record{}, err
	}
	return created, nil
}

// Ping checks that the endpoint answers at all.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	rel := &url.URL{Path: postsPath, RawQuery: "_limit=1"}
	return c.doURL(ctx, http.MethodHead, rel, nil, nil)
}

func (c *Client) doURL(ctx context.Context, method string, rel *url.URL, body, dest any) error {
	// Keep any path prefix of the base URL, e.g. http://host/api.
	ref := *rel
	ref.Path = c.baseURL.Path + rel.Path
	reqURL := c.baseURL.ResolveReference(&ref)

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json; charset=UTF-8")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	c.log.Debug("remote request",
		zap.String("method", method),
		zap.String("path", rel.Path),
		zap.String("request_id", requestID),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode >= 400 {
		return fmt.Errorf("api %s returned status %d", rel.String(), resp.StatusCode)
	}
	if dest == nil {
		return nil
	}
	decoder := json.NewDecoder(resp.Body)
	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = DefaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse remote url %q: %w", raw, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse remote url %q: missing host", raw)
	}
	u.Path = strings.TrimSuffix(u.Path, "/")
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
