package opensubtitles

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"subsync/internal/language"
	"subsync/internal/logging"
	"subsync/internal/providers"
	"subsync/internal/services"
)

// lowQuotaThreshold is the remaining daily download count that triggers a warning.
const lowQuotaThreshold = 5

// Provider adapts Client to the provider-neutral interface, adding request
// throttling and the download cache.
type Provider struct {
	client    *Client
	cache     *Cache
	languages []string
	throttle  *throttle
	logger    *slog.Logger
}

// NewProvider wraps client. cache may be nil to disable caching; languages is
// used when a query names none.
func NewProvider(client *Client, cache *Cache, languages []string, logger *slog.Logger) *Provider {
	logger = logging.NewComponentLogger(logger, "opensubtitles")
	return &Provider{
		client:    client,
		cache:     cache,
		languages: append([]string(nil), languages...),
		throttle:  newThrottle(logger),
		logger:    logger,
	}
}

func (p *Provider) Kind() providers.Kind { return providers.KindOpenSubtitles }

// Search runs the query and normalises each candidate into a Result.
func (p *Provider) Search(ctx context.Context, query providers.Query) ([]providers.Result, error) {
	langs := language.NormalizeList(query.Languages)
	if len(langs) == 0 {
		langs = p.languages
	}
	req := SearchRequest{
		IMDBID:    query.IMDBID,
		Query:     query.Text,
		Languages: langs,
		Season:    query.Season,
		Episode:   query.Episode,
		Year:      query.Year,
	}
	var resp SearchResponse
	err := p.throttle.invoke(ctx, func() error {
		var callErr error
		resp, callErr = p.client.Search(ctx, req)
		return callErr
	})
	if err != nil {
		return nil, classify("search", err)
	}

	results := make([]providers.Result, 0, len(resp.Subtitles))
	for _, sub := range resp.Subtitles {
		release := sub.Release
		if release == "" {
			release = sub.FileName
		}
		results = append(results, providers.Result{
			Provider:        providers.KindOpenSubtitles,
			Ref:             providers.Ref{Provider: providers.KindOpenSubtitles, FileID: sub.FileID},
			Release:         release,
			Language:        sub.Language,
			HearingImpaired: sub.HearingImpaired,
			Downloads:       sub.Downloads,
			Title:           sub.FeatureTitle,
			Year:            sub.FeatureYear,
			OpenSubtitles: &providers.OpenSubtitlesDetail{
				SubtitleID:   sub.ID,
				FileID:       sub.FileID,
				FeatureType:  sub.FeatureType,
				HD:           sub.HD,
				AITranslated: sub.AITranslated,
			},
		})
	}
	return results, nil
}

// Download returns the cached payload for ref when present, otherwise fetches
// it and stores it in the cache.
func (p *Provider) Download(ctx context.Context, ref providers.Ref) (providers.Payload, error) {
	if ref.Provider != providers.KindOpenSubtitles || ref.FileID <= 0 {
		return providers.Payload{}, services.Wrap(services.ErrValidation, "opensubtitles", "download", fmt.Sprintf("invalid reference %q", ref.String()), nil)
	}
	if p.cache != nil {
		cached, ok, err := p.cache.Load(ctx, ref.FileID)
		switch {
		case err != nil:
			logging.WarnWithContext(logging.WithContext(ctx, p.logger), "opensubtitles cache load failed; continuing with network fetch", "opensubtitles_cache_load_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check cache_dir permissions"),
			)
		case ok:
			p.logger.DebugContext(ctx, "opensubtitles cache hit", slog.Int64("file_id", ref.FileID))
			return toPayload(cached.DownloadResult(), ref.FileID), nil
		}
	}

	var result DownloadResult
	err := p.throttle.invoke(ctx, func() error {
		var callErr error
		result, callErr = p.client.Download(ctx, ref.FileID)
		return callErr
	})
	if err != nil {
		return providers.Payload{}, classify("download", err)
	}

	if result.Remaining > 0 && result.Remaining <= lowQuotaThreshold {
		logging.WarnWithContext(logging.WithContext(ctx, p.logger), "opensubtitles download quota nearly exhausted", "opensubtitles_quota_low",
			slog.Int("remaining", result.Remaining),
			slog.String("reset_time", result.ResetTime),
			logging.String(logging.FieldImpact, "downloads fail once the daily quota is used"),
		)
	}

	if p.cache != nil && len(result.Data) > 0 {
		entry := CacheEntry{
			FileID:      ref.FileID,
			Language:    result.Language,
			FileName:    result.FileName,
			DownloadURL: result.DownloadURL,
		}
		if _, err := p.cache.Store(ctx, entry, result.Data); err != nil {
			logging.WarnWithContext(logging.WithContext(ctx, p.logger), "opensubtitles cache store failed; subtitles will re-download next time", "opensubtitles_cache_store_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check cache_dir permissions"),
			)
		}
	}
	return toPayload(result, ref.FileID), nil
}

// Languages lists the languages OpenSubtitles can search.
func (p *Provider) Languages(ctx context.Context) ([]language.Option, error) {
	var out []language.Option
	err := p.throttle.invoke(ctx, func() error {
		var callErr error
		out, callErr = p.client.Languages(ctx)
		return callErr
	})
	if err != nil {
		return nil, classify("languages", err)
	}
	return out, nil
}

func toPayload(result DownloadResult, fileID int64) providers.Payload {
	name := result.FileName
	if name == "" {
		name = strconv.FormatInt(fileID, 10) + ".srt"
	}
	return providers.Payload{Data: result.Data, FileName: name, Language: result.Language}
}

func classify(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusNotFound {
		return services.Wrap(services.ErrNotFound, "opensubtitles", op, "", err)
	}
	return services.Wrap(services.ErrUpstream, "opensubtitles", op, "", err)
}
