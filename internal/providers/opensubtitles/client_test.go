package opensubtitles

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"subsync/internal/language"
)

type searchEntry = struct {
	ID         string           `json:"id"`
	Attributes searchAttributes `json:"attributes"`
}

func TestSearchBuildsQueryAndParsesResponse(t *testing.T) {
	var captured *http.Request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = r
		if r.URL.Path == "/subtitles" {
			resp := map[string]any{
				"data": []map[string]any{
					{
						"id": "1",
						"attributes": map[string]any{
							"language":         "en",
							"release":          "WEBRip",
							"download_count":   120,
							"hearing_impaired": false,
							"hd":               true,
							"feature_details": map[string]any{
								"feature_type": "Episode",
								"title":        "Example Show",
								"year":         2024,
							},
							"files": []map[string]any{
								{"file_id": 555, "file_name": "example.s01e02.srt"},
							},
						},
					},
					{
						"id": "2",
						"attributes": map[string]any{
							"language":       "th",
							"download_count": 80,
							"files": []map[string]any{
								{"file_id": 777},
							},
						},
					},
				},
				"meta": map[string]any{"total_count": 2},
			}
			_ = json.NewEncoder(w).Encode(resp)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client, err := New(Config{
		APIKey:    "abc",
		UserAgent: "subsync/test",
		BaseURL:   server.URL,
	})
	if err != nil {
		t.Fatalf("New client failed: %v", err)
	}

	resp, err := client.Search(context.Background(), SearchRequest{
		Query:     "Example Show",
		IMDBID:    "tt7654321",
		Languages: []string{"en", "th"},
		Season:    1,
		Episode:   2,
		Year:      2024,
	})
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if len(resp.Subtitles) != 2 {
		t.Fatalf("expected 2 subtitles, got %d", len(resp.Subtitles))
	}
	first := resp.Subtitles[0]
	if first.FileID != 555 || first.Language != "en" || first.FileName != "example.s01e02.srt" {
		t.Fatalf("unexpected first subtitle: %+v", first)
	}
	if resp.Total != 2 {
		t.Fatalf("expected total 2, got %d", resp.Total)
	}

	if captured == nil {
		t.Fatal("expected request to be captured")
	}
	if got := captured.Header.Get("Api-Key"); got != "abc" {
		t.Fatalf("expected api key header, got %q", got)
	}
	if got := captured.Header.Get("User-Agent"); got != "subsync/test" {
		t.Fatalf("expected user agent header, got %q", got)
	}

	values, _ := url.ParseQuery(captured.URL.RawQuery)
	expect := map[string]string{
		"query":          "Example Show",
		"imdb_id":        "7654321",
		"languages":      "en,th",
		"season_number":  "1",
		"episode_number": "2",
		"year":           "2024",
		"type":           "episode",
	}
	for key, want := range expect {
		if got := values.Get(key); got != want {
			t.Fatalf("expected query param %s=%s, got %s", key, want, got)
		}
	}
	if values.Get("order_by") != "download_count" || values.Get("order_direction") != "desc" {
		t.Fatalf("expected ordering params to be set, got %v", values)
	}
}

func TestSearchMovieTypeFromIMDB(t *testing.T) {
	var query url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		_ = json.NewEncoder(w).Encode(searchResponse{})
	}))
	defer server.Close()

	client, err := New(Config{APIKey: "k", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := client.Search(context.Background(), SearchRequest{IMDBID: "tt1375666"}); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if query.Get("type") != "movie" {
		t.Fatalf("expected type=movie, got %q", query.Get("type"))
	}
	if query.Has("season_number") || query.Has("year") {
		t.Fatalf("unexpected params in %v", query)
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "missing api key", cfg: Config{}, wantErr: true},
		{name: "empty api key", cfg: Config{APIKey: "   "}, wantErr: true},
		{name: "valid minimal config", cfg: Config{APIKey: "test-key"}},
		{
			name: "valid full config",
			cfg: Config{
				APIKey:    "test-key",
				UserAgent: "TestAgent/1.0",
				BaseURL:   "https://custom.api.example.com",
			},
		},
		{name: "invalid base url", cfg: Config{APIKey: "test-key", BaseURL: "://invalid"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := New(tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if client == nil {
				t.Error("expected client, got nil")
			}
		})
	}
}

func TestNewDefaults(t *testing.T) {
	client, err := New(Config{APIKey: "test-key"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if client.userAgent != defaultUserAgent {
		t.Errorf("userAgent = %q, want %q", client.userAgent, defaultUserAgent)
	}
	if client.baseURL.String() != defaultBaseURL {
		t.Errorf("baseURL = %q, want %q", client.baseURL.String(), defaultBaseURL)
	}
}

func TestSanitizeIMDBID(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"   ", ""},
		{"tt0123456", "0123456"},
		{"0123456", "0123456"},
		{"  tt0123456  ", "0123456"},
		{"invalid", ""},
		{"tt", ""},
		{"ttabc", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := SanitizeIMDBID(tt.input); got != tt.want {
				t.Errorf("SanitizeIMDBID(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSearchNilClient(t *testing.T) {
	var client *Client
	if _, err := client.Search(context.Background(), SearchRequest{}); err == nil {
		t.Error("expected error for nil client")
	}
}

func TestSearchHandlesHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte("invalid api key"))
	}))
	defer server.Close()

	client, err := New(Config{APIKey: "test-key", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = client.Search(context.Background(), SearchRequest{Query: "x"})
	if err == nil {
		t.Fatal("expected error for 401 response")
	}
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected HTTPError with 401, got %v", err)
	}
	if !strings.Contains(err.Error(), "invalid api key") {
		t.Errorf("error should include response body: %v", err)
	}
}

func TestSearchSkipsUnusableEntries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		resp := searchResponse{
			Data: []searchEntry{
				{ID: "no-lang", Attributes: searchAttributes{Files: []searchFile{{FileID: 100}}}},
				{ID: "no-file", Attributes: searchAttributes{Language: "en"}},
				{ID: "zero-file", Attributes: searchAttributes{Language: "en", Files: []searchFile{{FileID: 0}}}},
				{ID: "usable", Attributes: searchAttributes{Language: "en", Files: []searchFile{{FileID: 200}}}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client, err := New(Config{APIKey: "test-key", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	result, err := client.Search(context.Background(), SearchRequest{Query: "x"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(result.Subtitles) != 1 || result.Subtitles[0].ID != "usable" {
		t.Fatalf("expected only the usable entry, got %+v", result.Subtitles)
	}
}

func TestSearchDetectsAITranslated(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := searchResponse{
			Data: []searchEntry{
				{ID: "ai", Attributes: searchAttributes{Language: "en", AITranslated: true, Files: []searchFile{{FileID: 1}}}},
				{ID: "machine", Attributes: searchAttributes{Language: "en", MachineTranslated: true, Files: []searchFile{{FileID: 2}}}},
				{ID: "human", Attributes: searchAttributes{Language: "en", Files: []searchFile{{FileID: 3}}}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client, err := New(Config{APIKey: "test-key", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	result, err := client.Search(context.Background(), SearchRequest{Query: "x"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	got := []bool{result.Subtitles[0].AITranslated, result.Subtitles[1].AITranslated, result.Subtitles[2].AITranslated}
	if diff := cmp.Diff([]bool{true, true, false}, got); diff != "" {
		t.Fatalf("AI translated flags mismatch (-want +got):\n%s", diff)
	}
}

func TestDownloadInvalidInput(t *testing.T) {
	var nilClient *Client
	if _, err := nilClient.Download(context.Background(), 123); err == nil {
		t.Error("expected error for nil client")
	}

	client, err := New(Config{APIKey: "test-key"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for _, id := range []int64{0, -1} {
		if _, err := client.Download(context.Background(), id); err == nil {
			t.Errorf("expected error for file ID %d", id)
		}
	}
}

func TestDownloadFetchesSubtitleData(t *testing.T) {
	var negotiationBody string
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/download":
			body, _ := io.ReadAll(r.Body)
			negotiationBody = string(body)
			resp := map[string]any{
				"link":      server.URL + "/payload",
				"file_name": "movie.en.srt",
				"language":  "en",
			}
			_ = json.NewEncoder(w).Encode(resp)
		case "/payload":
			w.Write([]byte("1\n00:00:00,000 --> 00:00:01,000\nHello\n"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client, err := New(Config{APIKey: "abc", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("New client failed: %v", err)
	}

	result, err := client.Download(context.Background(), 42)
	if err != nil {
		t.Fatalf("Download returned error: %v", err)
	}
	if !strings.Contains(negotiationBody, `"file_id":42`) || !strings.Contains(negotiationBody, `"sub_format":"srt"`) {
		t.Fatalf("unexpected negotiation body %q", negotiationBody)
	}
	if !strings.Contains(string(result.Data), "Hello") {
		t.Fatalf("unexpected subtitle data %q", result.Data)
	}
	if result.FileName != "movie.en.srt" || result.Language != "en" {
		t.Fatalf("unexpected metadata %+v", result)
	}
}

func TestDownloadMissingLink(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"remaining": 0})
	}))
	defer server.Close()

	client, err := New(Config{APIKey: "abc", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := client.Download(context.Background(), 1); err == nil || !strings.Contains(err.Error(), "missing link") {
		t.Fatalf("expected missing link error, got %v", err)
	}
}

func TestLanguages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/infos/languages" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]string{
				{"language_code": "en", "language_name": "English"},
				{"language_code": "pt-BR", "language_name": "Portuguese (BR)"},
				{"language_code": "th"},
				{"language_code": ""},
			},
		})
	}))
	defer server.Close()

	client, err := New(Config{APIKey: "abc", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got, err := client.Languages(context.Background())
	if err != nil {
		t.Fatalf("Languages: %v", err)
	}
	want := []language.Option{
		{Code: "en", Name: "English"},
		{Code: "pt-BR", Name: "Portuguese (BR)"},
		{Code: "th", Name: "Thai"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("languages mismatch (-want +got):\n%s", diff)
	}
}
