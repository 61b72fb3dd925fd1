package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeServer()
	c.normalizeOpenSubtitles()
	c.normalizeSubDL()
	c.normalizeTranslate()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.CacheDir) == "" {
		c.Paths.CacheDir = defaultCacheDir()
	}
	if c.Paths.CacheDir, err = expandPath(c.Paths.CacheDir); err != nil {
		return fmt.Errorf("paths.cache_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if c.Paths.LanguagesFile, err = expandPath(strings.TrimSpace(c.Paths.LanguagesFile)); err != nil {
		return fmt.Errorf("paths.languages_file: %w", err)
	}
	return nil
}

func (c *Config) normalizeServer() {
	c.Server.Bind = strings.TrimSpace(c.Server.Bind)
	if c.Server.Bind == "" {
		c.Server.Bind = defaultBind
	}
	c.Server.Token = strings.TrimSpace(c.Server.Token)
	if c.Server.Token == "" {
		if value, ok := os.LookupEnv("SUBSYNC_API_TOKEN"); ok {
			c.Server.Token = strings.TrimSpace(value)
		}
	}
	origins := make([]string, 0, len(c.Server.CORSOrigins))
	for _, origin := range c.Server.CORSOrigins {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	c.Server.CORSOrigins = origins
	if c.Server.RequestTimeoutSeconds == 0 {
		c.Server.RequestTimeoutSeconds = defaultRequestTimeoutSeconds
	}
}

func (c *Config) normalizeOpenSubtitles() {
	c.OpenSubtitles.APIKey = envFallback(c.OpenSubtitles.APIKey, "OPENSUBTITLES_API_KEY")
	c.OpenSubtitles.UserAgent = strings.TrimSpace(c.OpenSubtitles.UserAgent)
	if c.OpenSubtitles.UserAgent == "" {
		c.OpenSubtitles.UserAgent = defaultOpenSubtitlesUserAgent
	}
	c.OpenSubtitles.BaseURL = strings.TrimRight(strings.TrimSpace(c.OpenSubtitles.BaseURL), "/")
	if c.OpenSubtitles.BaseURL == "" {
		c.OpenSubtitles.BaseURL = defaultOpenSubtitlesBaseURL
	}
	langs := make([]string, 0, len(c.OpenSubtitles.Languages))
	seen := make(map[string]struct{}, len(c.OpenSubtitles.Languages))
	for _, lang := range c.OpenSubtitles.Languages {
		normalized := strings.ToLower(strings.TrimSpace(lang))
		if normalized == "" {
			continue
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		langs = append(langs, normalized)
	}
	if len(langs) == 0 {
		langs = []string{defaultOpenSubtitlesLanguageEN}
	}
	c.OpenSubtitles.Languages = langs
}

func (c *Config) normalizeSubDL() {
	c.SubDL.APIKey = envFallback(c.SubDL.APIKey, "SUBDL_API_KEY")
	c.SubDL.BaseURL = strings.TrimRight(strings.TrimSpace(c.SubDL.BaseURL), "/")
	if c.SubDL.BaseURL == "" {
		c.SubDL.BaseURL = defaultSubDLBaseURL
	}
	c.SubDL.DownloadBaseURL = strings.TrimRight(strings.TrimSpace(c.SubDL.DownloadBaseURL), "/")
	if c.SubDL.DownloadBaseURL == "" {
		c.SubDL.DownloadBaseURL = defaultSubDLDownloadBaseURL
	}
}

func (c *Config) normalizeTranslate() {
	c.Translate.Engine = strings.ToLower(strings.TrimSpace(c.Translate.Engine))
	if c.Translate.Engine == "" {
		c.Translate.Engine = defaultTranslateEngine
	}
	c.Translate.LibreTranslateURL = strings.TrimRight(envFallback(c.Translate.LibreTranslateURL, "LIBRETRANSLATE_URL"), "/")
	if c.Translate.LibreTranslateURL == "" {
		c.Translate.LibreTranslateURL = defaultLibreTranslateURL
	}
	c.Translate.LibreTranslateAPIKey = envFallback(c.Translate.LibreTranslateAPIKey, "LIBRETRANSLATE_API_KEY")
	c.Translate.GeminiAPIKey = envFallback(c.Translate.GeminiAPIKey, "GEMINI_API_KEY")
	c.Translate.GeminiModel = strings.TrimSpace(c.Translate.GeminiModel)
	if c.Translate.GeminiModel == "" {
		c.Translate.GeminiModel = defaultGeminiModel
	}
	if c.Translate.Concurrency == 0 {
		c.Translate.Concurrency = defaultTranslateConcurrency
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

// envFallback returns the trimmed value, or the named environment variable when
// the value is empty or still the sample placeholder.
func envFallback(value, env string) string {
	value = strings.TrimSpace(value)
	if isPlaceholder(value) {
		value = ""
	}
	if value != "" {
		return value
	}
	if fromEnv, ok := os.LookupEnv(env); ok {
		return strings.TrimSpace(fromEnv)
	}
	return ""
}

// isPlaceholder matches the "your_..._here" values shipped in the sample file.
func isPlaceholder(value string) bool {
	return strings.HasPrefix(value, "your_") && strings.HasSuffix(value, "_here")
}
