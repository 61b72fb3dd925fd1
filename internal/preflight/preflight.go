package preflight

import (
	"context"
	"strings"

	"subsync/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name    string
	Passed  bool
	Skipped bool
	Detail  string
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Data directory", cfg.Paths.DataDir),
		CheckDirectoryAccess("Cache directory", cfg.Paths.CacheDir),
	}
	if cfg.Paths.LogDir != "" {
		results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	}
	if cfg.Paths.LanguagesFile != "" {
		results = append(results, CheckLanguagesFile(cfg.Paths.LanguagesFile))
	}

	if cfg.OpenSubtitles.Enabled {
		results = append(results, CheckOpenSubtitles(ctx, cfg.OpenSubtitles.BaseURL, cfg.OpenSubtitles.APIKey, cfg.OpenSubtitles.UserAgent))
	} else {
		results = append(results, Result{Name: "OpenSubtitles", Skipped: true, Detail: "Disabled"})
	}
	if cfg.SubDL.Enabled {
		results = append(results, CheckSubDL(cfg.SubDL.APIKey))
	} else {
		results = append(results, Result{Name: "SubDL", Skipped: true, Detail: "Disabled"})
	}

	switch strings.ToLower(cfg.Translate.Engine) {
	case "libretranslate":
		results = append(results, CheckLibreTranslate(ctx, cfg.Translate.LibreTranslateURL))
	case "gemini":
		results = append(results, CheckGemini(cfg.Translate.GeminiAPIKey, cfg.Translate.GeminiModel))
	}
	return results
}

// Failed reports whether any non-skipped check failed.
func Failed(results []Result) bool {
	for _, r := range results {
		if !r.Passed && !r.Skipped {
			return true
		}
	}
	return false
}
