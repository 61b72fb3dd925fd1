package opensubtitles

import (
	"bytes"
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultBaseURL     = "https://api.opensubtitles.com/api/v1"
	defaultUserAgent   = "subsync v1.0"
	defaultHTTPTimeout = 45 * time.Second

	// maxPayloadBytes caps a downloaded subtitle body.
	maxPayloadBytes = 16 << 20
)

var errNilClient = errors.New("opensubtitles: client is nil")

// Config describes the OpenSubtitles client configuration.
type Config struct {
	APIKey     string
	UserAgent  string
	BaseURL    string
	HTTPClient *http.Client
}

// Client wraps the OpenSubtitles REST API.
type Client struct {
	apiKey    string
	userAgent string
	baseURL   *url.URL
	http      *http.Client
}

// New validates cfg and fills in the public endpoint, a default user agent
// and a client with a 45s timeout where cfg leaves them empty.
func New(cfg Config) (*Client, error) {
	c := &Client{
		apiKey:    strings.TrimSpace(cfg.APIKey),
		userAgent: cmp.Or(strings.TrimSpace(cfg.UserAgent), defaultUserAgent),
		http:      cfg.HTTPClient,
	}
	if c.apiKey == "" {
		return nil, errors.New("opensubtitles: api key is required")
	}
	base, err := url.Parse(cmp.Or(strings.TrimSpace(cfg.BaseURL), defaultBaseURL))
	if err != nil {
		return nil, fmt.Errorf("opensubtitles: parse base url: %w", err)
	}
	c.baseURL = base
	if c.http == nil {
		c.http = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return c, nil
}

// HTTPError reports a non-success response from the API or the download host.
type HTTPError struct {
	Op         string
	Status     string
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("opensubtitles: %s failed (%s): %s", e.Op, e.Status, e.Body)
}

func newHTTPError(op string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return &HTTPError{Op: op, Status: resp.Status, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
}

// call sends an authenticated API request. in, when non-nil, is sent as the
// JSON body; the JSON response is decoded into out.
func (c *Client) call(ctx context.Context, op, method string, endpoint *url.URL, in, out any) error {
	var body io.Reader
	if in != nil {
		encoded, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("opensubtitles: encode %s request: %w", op, err)
		}
		body = bytes.NewReader(encoded)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), body)
	if err != nil {
		return fmt.Errorf("opensubtitles: build %s request: %w", op, err)
	}
	req.Header.Set("Api-Key", c.apiKey)
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("opensubtitles: %s request failed: %w", op, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return newHTTPError(op, resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("opensubtitles: decode %s response: %w", op, err)
	}
	return nil
}

// fetch downloads a temporary file link. The link host is not the API, so
// only the user agent is sent.
func (c *Client) fetch(ctx context.Context, link *url.URL) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("opensubtitles: build link request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("opensubtitles: fetch subtitle payload: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, newHTTPError("subtitle download", resp)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPayloadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("opensubtitles: read subtitle data: %w", err)
	}
	if len(data) > maxPayloadBytes {
		return nil, fmt.Errorf("opensubtitles: subtitle payload exceeds %d bytes", maxPayloadBytes)
	}
	return data, nil
}
