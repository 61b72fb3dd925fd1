package subdl

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
)

const (
	defaultBaseURL         = "https://api.subdl.com/api/v1"
	defaultDownloadBaseURL = "https://dl.subdl.com"
	defaultHTTPTimeout     = 45 * time.Second
	subsPerPage            = 30
	// download host rejects non-browser agents
	browserUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	maxArchiveBytes  = 32 << 20
)

// ErrForeignURL is returned for download paths that would leave the
// configured download host.
var ErrForeignURL = errors.New("subdl: download path leaves the download host")

// Config describes the SubDL client configuration.
type Config struct {
	APIKey          string
	BaseURL         string
	DownloadBaseURL string
	HTTPClient      *http.Client
}

// Client wraps the SubDL search API and download host.
type Client struct {
	apiKey       string
	baseURL      *url.URL
	downloadBase *url.URL
	http         *http.Client
}

// New creates a Client from the supplied configuration.
func New(cfg Config) (*Client, error) {
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		base = defaultBaseURL
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("subdl: parse base url: %w", err)
	}
	dl := strings.TrimSpace(cfg.DownloadBaseURL)
	if dl == "" {
		dl = defaultDownloadBaseURL
	}
	downloadBase, err := url.Parse(dl)
	if err != nil {
		return nil, fmt.Errorf("subdl: parse download base url: %w", err)
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &Client{
		apiKey:       strings.TrimSpace(cfg.APIKey),
		baseURL:      baseURL,
		downloadBase: downloadBase,
		http:         client,
	}, nil
}

// SearchRequest describes SubDL search filters.
type SearchRequest struct {
	FilmName  string
	IMDBID    string
	Languages []string
	Year      int
	Season    int
	Episode   int
}

// Subtitle is a SubDL search hit.
type Subtitle struct {
	ReleaseName     string `json:"release_name"`
	Name            string `json:"name"`
	Language        string `json:"language"`
	Lang            string `json:"lang"`
	Author          string `json:"author"`
	URL             string `json:"url"`
	Season          int    `json:"season"`
	Episode         int    `json:"episode"`
	HearingImpaired bool   `json:"hi"`
}

// APIError is returned when SubDL answers with status=false.
type APIError struct {
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return "subdl: request rejected"
	}
	return "subdl: " + e.Message
}

// HTTPError reports a non-success HTTP response.
type HTTPError struct {
	Op         string
	Status     string
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("subdl: %s failed (%s): %s", e.Op, e.Status, e.Body)
}

func newHTTPError(op string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return &HTTPError{Op: op, Status: resp.Status, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
}

// Search queries SubDL. Episode searches use type=tv and the film name;
// movie searches prefer the IMDB id and fall back to the film name.
func (c *Client) Search(ctx context.Context, req SearchRequest) ([]Subtitle, error) {
	if c == nil {
		return nil, errors.New("subdl: client is nil")
	}
	params := url.Values{}
	params.Set("api_key", c.apiKey)
	params.Set("subs_per_page", strconv.Itoa(subsPerPage))
	if len(req.Languages) > 0 {
		params.Set("languages", strings.ToUpper(strings.Join(req.Languages, ",")))
	}
	if req.Season > 0 && req.Episode > 0 {
		params.Set("type", "tv")
		params.Set("film_name", req.FilmName)
		params.Set("season_number", strconv.Itoa(req.Season))
		params.Set("episode_number", strconv.Itoa(req.Episode))
	} else {
		params.Set("type", "movie")
		if imdb := strings.TrimSpace(req.IMDBID); imdb != "" {
			if !strings.HasPrefix(imdb, "tt") {
				imdb = "tt" + imdb
			}
			params.Set("imdb_id", imdb)
		} else if name := strings.TrimSpace(req.FilmName); name != "" {
			params.Set("film_name", name)
		}
	}
	if req.Year > 0 {
		params.Set("year", strconv.Itoa(req.Year))
	}

	endpoint := c.baseURL.JoinPath("subtitles")
	endpoint.RawQuery = params.Encode()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("subdl: build search request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("subdl: search request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, newHTTPError("search", resp)
	}

	var payload searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("subdl: decode search response: %w", err)
	}
	if !payload.Status {
		return nil, &APIError{Message: payload.Message}
	}
	out := make([]Subtitle, 0, len(payload.Subtitles))
	for _, sub := range payload.Subtitles {
		if strings.TrimSpace(sub.URL) == "" {
			continue
		}
		out = append(out, sub)
	}
	return out, nil
}

// DownloadURL resolves a SubDL path against the download host. Paths that
// carry their own scheme or host, or resolve off the download host, fail with
// ErrForeignURL.
func (c *Client) DownloadURL(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", errors.New("subdl: empty download path")
	}
	ref, err := url.Parse(path)
	if err != nil {
		return "", fmt.Errorf("subdl: parse download path: %w", err)
	}
	if ref.Scheme != "" || ref.Host != "" || ref.User != nil {
		return "", fmt.Errorf("%w: %q", ErrForeignURL, path)
	}
	resolved := c.downloadBase.ResolveReference(ref)
	if resolved.Scheme != c.downloadBase.Scheme || resolved.Host != c.downloadBase.Host {
		return "", fmt.Errorf("%w: %q", ErrForeignURL, path)
	}
	return resolved.String(), nil
}

// downloadPath reduces a URL from a search response to its path on the
// download host.
func (c *Client) downloadPath(raw string) string {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() || u.Host != c.downloadBase.Host {
		return raw
	}
	return u.RequestURI()
}

// Fetch downloads the raw payload behind path.
func (c *Client) Fetch(ctx context.Context, path string) ([]byte, string, error) {
	if c == nil {
		return nil, "", errors.New("subdl: client is nil")
	}
	target, err := c.DownloadURL(path)
	if err != nil {
		return nil, "", err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, "", fmt.Errorf("subdl: build download request: %w", err)
	}
	httpReq.Header.Set("User-Agent", browserUserAgent)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, "", fmt.Errorf("subdl: download request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, "", newHTTPError("download", resp)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxArchiveBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("subdl: read download: %w", err)
	}
	if len(data) > maxArchiveBytes {
		return nil, "", fmt.Errorf("subdl: download exceeds %d bytes", maxArchiveBytes)
	}
	return data, resp.Header.Get("Content-Type"), nil
}

type searchResponse struct {
	Status    bool       `json:"status"`
	Message   string     `json:"message"`
	Subtitles []Subtitle `json:"subtitles"`
}
