// Package supabase talks to the Supabase REST and Storage APIs.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	commonhttp "maritime-intake/internal/common/http"

	"github.com/tidwall/gjson"
)

const (
	maxResponseBytes  = 8 << 20
	maxErrorBodyBytes = 32 << 10
)

var ErrNotConfigured = errors.New("SUPABASE_NOT_CONFIGURED")

// APIError is returned for any response with status >= 400.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("supabase API error %d: %s", e.StatusCode, e.Message)
}

// IsConflict reports whether err is a 409 from Supabase, which PostgREST
// returns for unique constraint violations.
func IsConflict(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusConflict
}

type Config struct {
	URL        string
	ServiceKey string
	Timeout    time.Duration
}

type Client struct {
	baseURL    string
	serviceKey string
	http       *commonhttp.Client
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.URL == "" || cfg.ServiceKey == "" {
		return nil, ErrNotConfigured
	}
	parsed, err := url.Parse(cfg.URL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("%w: invalid url %q", ErrNotConfigured, cfg.URL)
	}
	if parsed.User != nil {
		return nil, fmt.Errorf("%w: url must not include user info", ErrNotConfigured)
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		serviceKey: cfg.ServiceKey,
		http:       commonhttp.NewClient(timeout),
	}, nil
}

// WithHTTPClient swaps the transport, used by tests against httptest servers.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	clone := *c
	clone.http = commonhttp.NewClientWith(hc)
	return &clone
}

// Insert posts one row to /rest/v1/{table} and returns the representation.
func (c *Client) Insert(ctx context.Context, table string, row interface{}) ([]byte, error) {
	body, err := json.Marshal(row)
	if err != nil {
		return nil, fmt.Errorf("marshal body: %w", err)
	}

	endpoint := fmt.Sprintf("%s/rest/v1/%s", c.baseURL, url.PathEscape(table))
	return c.do(ctx, http.MethodPost, endpoint, "application/json", bytes.NewReader(body), map[string]string{
		"Prefer": "return=representation",
	})
}

// Upload stores content at bucket/objectPath. Existing objects are never overwritten.
func (c *Client) Upload(ctx context.Context, bucket, objectPath, contentType string, content []byte) error {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	endpoint := fmt.Sprintf("%s/storage/v1/object/%s/%s", c.baseURL, url.PathEscape(bucket), escapePath(objectPath))
	_, err := c.do(ctx, http.MethodPost, endpoint, contentType, bytes.NewReader(content), map[string]string{
		"x-upsert":      "false",
		"cache-control": "3600",
	})
	return err
}

// SignedURL creates a time-limited download URL for an object.
func (c *Client) SignedURL(ctx context.Context, bucket, objectPath string, expiresIn time.Duration) (string, error) {
	body, err := json.Marshal(map[string]int64{"expiresIn": int64(expiresIn.Seconds())})
	if err != nil {
		return "", fmt.Errorf("marshal body: %w", err)
	}

	endpoint := fmt.Sprintf("%s/storage/v1/object/sign/%s/%s", c.baseURL, url.PathEscape(bucket), escapePath(objectPath))
	resp, err := c.do(ctx, http.MethodPost, endpoint, "application/json", bytes.NewReader(body), nil)
	if err != nil {
		return "", err
	}

	signed := gjson.GetBytes(resp, "signedURL")
	if !signed.Exists() {
		signed = gjson.GetBytes(resp, "signedUrl")
	}
	if !signed.Exists() || signed.String() == "" {
		return "", fmt.Errorf("sign response missing signedURL: %s", truncate(string(resp), 200))
	}

	ref := signed.String()
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref, nil
	}
	return c.baseURL + "/storage/v1" + ref, nil
}

// PublicURL is the unauthenticated URL of an object in a public bucket.
func (c *Client) PublicURL(bucket, objectPath string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", c.baseURL, url.PathEscape(bucket), escapePath(objectPath))
}

func (c *Client) do(ctx context.Context, method, endpoint, contentType string, body io.Reader, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequest(method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", contentType)
	req.Header.Set("apikey", c.serviceKey)
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.DoWithContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		respBody, truncated, readErr := commonhttp.ReadAllWithLimit(resp.Body, maxErrorBodyBytes)
		if readErr != nil {
			return nil, fmt.Errorf("read error response: %w", readErr)
		}
		msg := strings.TrimSpace(string(respBody))
		if truncated {
			msg += "...(truncated)"
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	respBody, err := commonhttp.ReadAllStrict(resp.Body, maxResponseBytes)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return respBody, nil
}

func escapePath(p string) string {
	segments := strings.Split(strings.Trim(p, "/"), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
