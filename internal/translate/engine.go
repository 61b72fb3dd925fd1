package translate

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"subsync/internal/config"
	"subsync/internal/language"
	"subsync/internal/services"
)

// Engine translates plain strings. Implementations return exactly one output
// per input, in order.
type Engine interface {
	Name() string
	Translate(ctx context.Context, texts []string, source, target string) ([]string, error)
	Languages(ctx context.Context) ([]language.Option, error)
}

// NewEngine builds the engine selected by cfg.Translate.Engine.
func NewEngine(ctx context.Context, cfg *config.Config, logger *slog.Logger) (Engine, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "translate", "new engine", "config is nil", nil)
	}
	switch strings.ToLower(cfg.Translate.Engine) {
	case "libretranslate":
		return NewLibreTranslate(LibreTranslateConfig{
			BaseURL:     cfg.Translate.LibreTranslateURL,
			APIKey:      cfg.Translate.LibreTranslateAPIKey,
			Concurrency: cfg.Translate.Concurrency,
		}, logger)
	case "gemini":
		return NewGemini(ctx, GeminiConfig{
			APIKey: cfg.Translate.GeminiAPIKey,
			Model:  cfg.Translate.GeminiModel,
		}, logger)
	default:
		return nil, services.Wrap(services.ErrConfiguration, "translate", "new engine", fmt.Sprintf("unsupported engine %q", cfg.Translate.Engine), nil)
	}
}

func normalizeLang(code string) string {
	code = strings.TrimSpace(code)
	if code == "" || strings.EqualFold(code, "auto") {
		return "auto"
	}
	if iso := language.ToISO2(code); iso != "" {
		return iso
	}
	return strings.ToLower(code)
}
