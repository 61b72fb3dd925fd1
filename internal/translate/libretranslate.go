package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"subsync/internal/language"
	"subsync/internal/logging"
	"subsync/internal/services"
)

const (
	defaultLibreTranslateTimeout = 60 * time.Second
	defaultConcurrency           = 4
)

// LibreTranslateConfig configures the LibreTranslate engine.
type LibreTranslateConfig struct {
	BaseURL     string
	APIKey      string
	Concurrency int
	HTTPClient  *http.Client
}

// LibreTranslate talks to a LibreTranslate server, one request per text.
type LibreTranslate struct {
	baseURL     *url.URL
	apiKey      string
	concurrency int
	http        *http.Client
	logger      *slog.Logger
}

// NewLibreTranslate validates cfg and returns the engine.
func NewLibreTranslate(cfg LibreTranslateConfig, logger *slog.Logger) (*LibreTranslate, error) {
	raw := strings.TrimSpace(cfg.BaseURL)
	if raw == "" {
		return nil, services.Wrap(services.ErrConfiguration, "libretranslate", "init", "libretranslate url is required", nil)
	}
	base, err := url.Parse(raw)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, services.Wrap(services.ErrConfiguration, "libretranslate", "init", fmt.Sprintf("invalid url %q", raw), err)
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultLibreTranslateTimeout}
	}
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &LibreTranslate{
		baseURL:     base,
		apiKey:      strings.TrimSpace(cfg.APIKey),
		concurrency: concurrency,
		http:        client,
		logger:      logging.NewComponentLogger(logger, "libretranslate"),
	}, nil
}

func (l *LibreTranslate) Name() string { return "libretranslate" }

type libreRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	Format string `json:"format"`
	APIKey string `json:"api_key,omitempty"`
}

type libreResponse struct {
	TranslatedText string `json:"translatedText"`
	Error          string `json:"error"`
}

// Translate issues one request per text with bounded concurrency. Empty texts
// are passed through without a request.
func (l *LibreTranslate) Translate(ctx context.Context, texts []string, source, target string) ([]string, error) {
	out := make([]string, len(texts))
	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(l.concurrency)
	for i, text := range texts {
		if strings.TrimSpace(text) == "" {
			out[i] = text
			continue
		}
		group.Go(func() error {
			translated, err := l.translateOne(gctx, text, normalizeLang(source), normalizeLang(target))
			if err != nil {
				return err
			}
			out[i] = translated
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (l *LibreTranslate) translateOne(ctx context.Context, text, source, target string) (string, error) {
	body, err := json.Marshal(libreRequest{Q: text, Source: source, Target: target, Format: "text", APIKey: l.apiKey})
	if err != nil {
		return "", fmt.Errorf("libretranslate: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.baseURL.JoinPath("translate").String(), bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("libretranslate: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := l.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", services.Wrap(services.ErrUpstream, "libretranslate", "translate", "request failed", err)
	}
	defer resp.Body.Close()

	var payload libreResponse
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode >= 400 {
		_ = json.Unmarshal(data, &payload)
		msg := payload.Error
		if msg == "" {
			msg = strings.TrimSpace(string(data))
		}
		marker := services.ErrUpstream
		if resp.StatusCode == http.StatusBadRequest {
			marker = services.ErrValidation
		}
		return "", services.Wrap(marker, "libretranslate", "translate", fmt.Sprintf("%s: %s", resp.Status, msg), nil)
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return "", services.Wrap(services.ErrUpstream, "libretranslate", "translate", "decode response", err)
	}
	return payload.TranslatedText, nil
}

// Languages lists the server's supported languages.
func (l *LibreTranslate) Languages(ctx context.Context) ([]language.Option, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.baseURL.JoinPath("languages").String(), nil)
	if err != nil {
		return nil, fmt.Errorf("libretranslate: build languages request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := l.http.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrUpstream, "libretranslate", "languages", "request failed", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, services.Wrap(services.ErrUpstream, "libretranslate", "languages", resp.Status, nil)
	}
	var entries []struct {
		Code string `json:"code"`
		Name string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, services.Wrap(services.ErrUpstream, "libretranslate", "languages", "decode response", err)
	}
	out := make([]language.Option, 0, len(entries))
	for _, entry := range entries {
		if entry.Code == "" {
			continue
		}
		name := entry.Name
		if name == "" {
			name = language.DisplayName(entry.Code)
		}
		out = append(out, language.Option{Code: entry.Code, Name: name})
	}
	return out, nil
}
