package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"subsync/internal/api"
	"subsync/internal/config"
	"subsync/internal/language"
	"subsync/internal/logging"
	"subsync/internal/providers"
	"subsync/internal/providers/opensubtitles"
	"subsync/internal/providers/subdl"
	"subsync/internal/translate"
)

// Components holds the wired runtime services.
type Components struct {
	Registry      *providers.Registry
	OpenSubtitles *opensubtitles.Provider
	Translator    *translate.Service
	Memory        *translate.Memory
	Catalog       *language.Catalog
}

// ComponentOptions selects optional parts.
type ComponentOptions struct {
	// SkipTranslator leaves Translator nil, for commands that never translate.
	SkipTranslator bool
}

// BuildComponents wires providers, translation and the language catalog from
// cfg. Providers without an API key are skipped with a warning.
func BuildComponents(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts ComponentOptions) (*Components, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	comps := &Components{}

	var registered []providers.Provider
	if cfg.OpenSubtitles.Enabled {
		switch {
		case cfg.OpenSubtitles.APIKey == "":
			logging.WarnWithContext(logger, "opensubtitles disabled: no api key", "provider_skipped",
				logging.String(logging.FieldProvider, string(providers.KindOpenSubtitles)),
				logging.String(logging.FieldErrorHint, "set opensubtitles.api_key or OPENSUBTITLES_API_KEY"),
				logging.String(logging.FieldImpact, "opensubtitles results are unavailable"),
			)
		default:
			client, err := opensubtitles.New(opensubtitles.Config{
				APIKey:    cfg.OpenSubtitles.APIKey,
				UserAgent: cfg.OpenSubtitles.UserAgent,
				BaseURL:   cfg.OpenSubtitles.BaseURL,
			})
			if err != nil {
				return nil, fmt.Errorf("opensubtitles client: %w", err)
			}
			cache, err := opensubtitles.NewCache(cfg.OpenSubtitlesCacheDir(), logger)
			if err != nil {
				logging.WarnWithContext(logger, "opensubtitles cache unavailable", "opensubtitles_cache_unavailable",
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "check cache_dir permissions"),
					logging.String(logging.FieldImpact, "downloads are not cached"),
				)
				cache = nil
			}
			comps.OpenSubtitles = opensubtitles.NewProvider(client, cache, cfg.OpenSubtitles.Languages, logger)
			registered = append(registered, comps.OpenSubtitles)
		}
	}
	if cfg.SubDL.Enabled {
		switch {
		case cfg.SubDL.APIKey == "":
			logging.WarnWithContext(logger, "subdl disabled: no api key", "provider_skipped",
				logging.String(logging.FieldProvider, string(providers.KindSubDL)),
				logging.String(logging.FieldErrorHint, "set subdl.api_key or SUBDL_API_KEY"),
				logging.String(logging.FieldImpact, "subdl results are unavailable"),
			)
		default:
			client, err := subdl.New(subdl.Config{
				APIKey:          cfg.SubDL.APIKey,
				BaseURL:         cfg.SubDL.BaseURL,
				DownloadBaseURL: cfg.SubDL.DownloadBaseURL,
			})
			if err != nil {
				return nil, fmt.Errorf("subdl client: %w", err)
			}
			registered = append(registered, subdl.NewProvider(client, logger))
		}
	}
	comps.Registry = providers.NewRegistry(logger, registered...)

	catalog, err := language.NewCatalog(cfg.Paths.LanguagesFile, cfg.OpenSubtitles.Languages, logging.NewComponentLogger(logger, "language"))
	if err != nil {
		return nil, fmt.Errorf("language catalog: %w", err)
	}
	comps.Catalog = catalog

	if opts.SkipTranslator {
		return comps, nil
	}
	engine, err := translate.NewEngine(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("translation engine: %w", err)
	}
	if cfg.Translate.MemoryEnabled {
		memory, err := translate.OpenMemory(ctx, cfg.TranslationMemoryPath())
		if err != nil {
			logging.WarnWithContext(logger, "translation memory unavailable", "translation_memory_unavailable",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check data_dir permissions"),
				logging.String(logging.FieldImpact, "every translation hits the engine"),
			)
		} else {
			comps.Memory = memory
		}
	}
	comps.Translator = translate.NewService(engine, comps.Memory, logger)
	return comps, nil
}

// LanguageSource returns the OpenSubtitles provider as a language lister, or
// nil when it is not configured.
func (c *Components) LanguageSource() api.LanguageLister {
	if c.OpenSubtitles == nil {
		return nil
	}
	return c.OpenSubtitles
}

// Close releases the translation memory.
func (c *Components) Close() error {
	if c == nil {
		return nil
	}
	return c.Memory.Close()
}
