package opensubtitles

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"subsync/internal/providers"
	"subsync/internal/services"
)

func newTestProvider(t *testing.T, handler http.Handler, cache *Cache) *Provider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := New(Config{APIKey: "k", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	p := NewProvider(client, cache, []string{"en"}, nil)
	p.throttle.minInterval = 0
	p.throttle.initial = time.Millisecond
	return p
}

func TestProviderSearchNormalisesResults(t *testing.T) {
	var languages string
	p := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		languages = r.URL.Query().Get("languages")
		_ = json.NewEncoder(w).Encode(searchResponse{Data: []searchEntry{
			{ID: "9", Attributes: searchAttributes{
				Language:       "en",
				DownloadCount:  10,
				FeatureDetails: featureDetails{Title: "Inception", Year: 2010},
				Files:          []searchFile{{FileID: 31, FileName: "inception.srt"}},
			}},
		}})
	}), nil)

	results, err := p.Search(context.Background(), providers.Query{Text: "Inception"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if languages != "en" {
		t.Fatalf("expected default languages, got %q", languages)
	}
	if len(results) != 1 {
		t.Fatalf("expected one result, got %d", len(results))
	}
	r := results[0]
	if r.Ref.String() != "opensubtitles:31" || r.Release != "inception.srt" || r.Title != "Inception" {
		t.Fatalf("unexpected result: %+v", r)
	}
	if r.OpenSubtitles == nil || r.SubDL != nil {
		t.Fatalf("expected OpenSubtitles variant only: %+v", r)
	}
}

func TestProviderRetriesRateLimit(t *testing.T) {
	var calls atomic.Int32
	p := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_ = json.NewEncoder(w).Encode(searchResponse{})
	}), nil)

	if _, err := p.Search(context.Background(), providers.Query{Text: "x"}); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if calls.Load() != 3 {
		t.Fatalf("expected 3 calls, got %d", calls.Load())
	}
}

func TestProviderDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	p := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}), nil)

	_, err := p.Download(context.Background(), providers.Ref{Provider: providers.KindOpenSubtitles, FileID: 5})
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected a single call, got %d", calls.Load())
	}
}

func TestProviderDownloadUsesCache(t *testing.T) {
	cache, err := NewCache(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("NewCache: %v", err)
	}
	var negotiations atomic.Int32
	var server *httptest.Server
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/download":
			negotiations.Add(1)
			_ = json.NewEncoder(w).Encode(map[string]string{"link": "/file", "file_name": "a.srt", "language": "en"})
		case "/file":
			w.Write([]byte("1\n00:00:01,000 --> 00:00:02,000\nHi\n"))
		}
	})
	server = httptest.NewServer(handler)
	defer server.Close()
	client, err := New(Config{APIKey: "k", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	p := NewProvider(client, cache, nil, nil)
	p.throttle.minInterval = 0

	ref := providers.Ref{Provider: providers.KindOpenSubtitles, FileID: 77}
	for range 2 {
		payload, err := p.Download(context.Background(), ref)
		if err != nil {
			t.Fatalf("Download: %v", err)
		}
		if payload.FileName != "a.srt" || len(payload.Data) == 0 {
			t.Fatalf("unexpected payload %+v", payload)
		}
	}
	if negotiations.Load() != 1 {
		t.Fatalf("expected second download to hit cache, got %d negotiations", negotiations.Load())
	}
}

func TestProviderDownloadRejectsForeignRef(t *testing.T) {
	p := NewProvider(nil, nil, nil, nil)
	_, err := p.Download(context.Background(), providers.Ref{Provider: providers.KindSubDL, Path: "/x"})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestIsRetriable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"429", &HTTPError{StatusCode: 429}, true},
		{"503", &HTTPError{StatusCode: 503}, true},
		{"401", &HTTPError{StatusCode: 401}, false},
		{"deadline", context.DeadlineExceeded, true},
		{"canceled", context.Canceled, false},
		{"reset", errors.New("read: connection reset by peer"), true},
		{"other", errors.New("decode failure"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetriable(tt.err); got != tt.want {
				t.Fatalf("IsRetriable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestBackoffCapped(t *testing.T) {
	if got := backoffFor(1, InitialBackoff); got != InitialBackoff {
		t.Fatalf("first backoff = %v", got)
	}
	if got := backoffFor(MaxRateRetries+10, InitialBackoff); got != MaxBackoff {
		t.Fatalf("backoff not capped: %v", got)
	}
}

func TestSleepWithContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := SleepWithContext(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
}
