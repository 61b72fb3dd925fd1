package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"subsync/internal/fileutil"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains on-disk locations used by the service.
type Paths struct {
	DataDir       string `toml:"data_dir"`
	CacheDir      string `toml:"cache_dir"`
	LogDir        string `toml:"log_dir"`
	LanguagesFile string `toml:"languages_file"`
}

// Server contains HTTP API settings.
type Server struct {
	Bind                  string   `toml:"bind"`
	Token                 string   `toml:"token"`
	CORSOrigins           []string `toml:"cors_origins"`
	RequestTimeoutSeconds int      `toml:"request_timeout_seconds"`
}

// OpenSubtitles contains configuration for the OpenSubtitles REST API.
type OpenSubtitles struct {
	Enabled   bool     `toml:"enabled"`
	APIKey    string   `toml:"api_key"`
	UserAgent string   `toml:"user_agent"`
	BaseURL   string   `toml:"base_url"`
	Languages []string `toml:"languages"`
}

// SubDL contains configuration for the SubDL API.
type SubDL struct {
	Enabled         bool   `toml:"enabled"`
	APIKey          string `toml:"api_key"`
	BaseURL         string `toml:"base_url"`
	DownloadBaseURL string `toml:"download_base_url"`
}

// Translate contains translation engine settings.
type Translate struct {
	Engine               string `toml:"engine"`
	LibreTranslateURL    string `toml:"libretranslate_url"`
	LibreTranslateAPIKey string `toml:"libretranslate_api_key"`
	GeminiAPIKey         string `toml:"gemini_api_key"`
	GeminiModel          string `toml:"gemini_model"`
	Concurrency          int    `toml:"concurrency"`
	MemoryEnabled        bool   `toml:"memory_enabled"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for subsync.
//
// Configuration sections by subsystem:
//   - Paths: data, cache and log directories plus the language catalog file
//   - Server: HTTP bind address, bearer token, CORS and request timeout
//   - OpenSubtitles: search/download credentials
//   - SubDL: search/download credentials
//   - Translate: engine selection and translation memory
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	Server        Server        `toml:"server"`
	OpenSubtitles OpenSubtitles `toml:"opensubtitles"`
	SubDL         SubDL         `toml:"subdl"`
	Translate     Translate     `toml:"translate"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("subsync.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the data, cache, and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.CacheDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// OpenSubtitlesCacheDir is where downloaded OpenSubtitles payloads are cached.
func (c *Config) OpenSubtitlesCacheDir() string {
	return filepath.Join(c.Paths.CacheDir, "opensubtitles")
}

// TranslationMemoryPath is the SQLite database backing the translation memory.
func (c *Config) TranslationMemoryPath() string {
	return filepath.Join(c.Paths.DataDir, "translations.db")
}

// LockPath is the single-instance lock file used by the HTTP server.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.DataDir, "subsync.lock")
}

// RequestTimeout returns the per-request deadline applied by the HTTP API.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Server.RequestTimeoutSeconds) * time.Second
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

func defaultCacheDir() string {
	if base, ok := os.LookupEnv("XDG_CACHE_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "subsync")
	}
	return "~/.cache/subsync"
}

// Sample returns the annotated sample configuration.
func Sample() string {
	return sampleConfig
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if err := fileutil.WriteAtomic(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
