package subdl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"subsync/internal/language"
	"subsync/internal/logging"
	"subsync/internal/providers"
	"subsync/internal/services"
)

// Provider adapts Client to the provider-neutral interface.
type Provider struct {
	client *Client
	logger *slog.Logger
}

// NewProvider wraps client.
func NewProvider(client *Client, logger *slog.Logger) *Provider {
	return &Provider{client: client, logger: logging.NewComponentLogger(logger, "subdl")}
}

func (p *Provider) Kind() providers.Kind { return providers.KindSubDL }

// Search queries SubDL. The free-text query doubles as the film name.
func (p *Provider) Search(ctx context.Context, query providers.Query) ([]providers.Result, error) {
	subs, err := p.client.Search(ctx, SearchRequest{
		FilmName:  strings.TrimSpace(query.Text),
		IMDBID:    query.IMDBID,
		Languages: language.NormalizeList(query.Languages),
		Year:      query.Year,
		Season:    query.Season,
		Episode:   query.Episode,
	})
	if err != nil {
		return nil, classify("search", err)
	}
	results := make([]providers.Result, 0, len(subs))
	for _, sub := range subs {
		result, ok := p.toResult(sub)
		if !ok {
			p.logger.DebugContext(ctx, "subdl result skipped", logging.String("url", sub.URL))
			continue
		}
		results = append(results, result)
	}
	p.logger.DebugContext(ctx, "subdl search complete", logging.Int("results", len(results)))
	return results, nil
}

func (p *Provider) toResult(sub Subtitle) (providers.Result, bool) {
	release := strings.TrimSpace(sub.ReleaseName)
	if release == "" {
		release = strings.TrimSpace(sub.Name)
	}
	lang := language.FromName(sub.Language)
	if lang == "" {
		lang = language.ToISO2(sub.Lang)
	}
	if lang == "" {
		lang = strings.ToLower(strings.TrimSpace(sub.Lang))
	}
	ref, err := providers.ParseRef(string(providers.KindSubDL) + ":" + p.client.downloadPath(sub.URL))
	if err != nil {
		return providers.Result{}, false
	}
	downloadURL, err := p.client.DownloadURL(ref.Path)
	if err != nil {
		return providers.Result{}, false
	}
	return providers.Result{
		Provider:        providers.KindSubDL,
		Ref:             ref,
		Release:         release,
		Language:        lang,
		HearingImpaired: sub.HearingImpaired,
		SubDL: &providers.SubDLDetail{
			Path:        ref.Path,
			DownloadURL: downloadURL,
			Author:      sub.Author,
			Season:      sub.Season,
			Episode:     sub.Episode,
		},
	}, true
}

// Download fetches the archive behind ref and extracts its subtitle.
func (p *Provider) Download(ctx context.Context, ref providers.Ref) (providers.Payload, error) {
	if ref.Provider != providers.KindSubDL || strings.TrimSpace(ref.Path) == "" {
		return providers.Payload{}, services.Wrap(services.ErrValidation, "subdl", "download", fmt.Sprintf("invalid reference %q", ref.String()), nil)
	}
	data, contentType, err := p.client.Fetch(ctx, ref.Path)
	if err != nil {
		return providers.Payload{}, classify("download", err)
	}
	body, name, err := Extract(data, contentType, ref.Path)
	if err != nil {
		return providers.Payload{}, services.Wrap(services.ErrUpstream, "subdl", "extract", "", err)
	}
	p.logger.DebugContext(ctx, "subdl download extracted",
		logging.String("path", ref.Path),
		logging.String("file", name),
		logging.Int("bytes", len(body)),
	)
	return providers.Payload{Data: body, FileName: name}, nil
}

func classify(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if errors.Is(err, ErrForeignURL) {
		return services.Wrap(services.ErrValidation, "subdl", op, "", err)
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusNotFound {
		return services.Wrap(services.ErrNotFound, "subdl", op, "", err)
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return services.Wrap(services.ErrUpstream, "subdl", op, apiErr.Message, err)
	}
	return services.Wrap(services.ErrUpstream, "subdl", op, "", err)
}
