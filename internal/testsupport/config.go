package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"subsync/internal/config"
)

// credentialEnv lists the variables config.Load falls back to. NewConfig clears
// them so a developer's shell cannot leak keys into tests.
var credentialEnv = []string{
	"OPENSUBTITLES_API_KEY",
	"SUBDL_API_KEY",
	"LIBRETRANSLATE_URL",
	"LIBRETRANSLATE_API_KEY",
	"GEMINI_API_KEY",
	"SUBSYNC_API_TOKEN",
}

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique, existing temp directories
// per test. Providers stay enabled without keys, so they are skipped unless an
// option points them at a fake server.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	if tt, ok := t.(*testing.T); ok {
		for _, key := range credentialEnv {
			tt.Setenv(key, "")
		}
	}

	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.CacheDir = filepath.Join(base, "cache")
	cfgVal.Paths.LogDir = ""
	cfgVal.Server.Bind = "127.0.0.1:0"
	for _, dir := range []string{cfgVal.Paths.DataDir, cfgVal.Paths.CacheDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithOpenSubtitles points the OpenSubtitles client at baseURL using key.
func WithOpenSubtitles(baseURL, key string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.OpenSubtitles.Enabled = true
		b.cfg.OpenSubtitles.BaseURL = baseURL
		b.cfg.OpenSubtitles.APIKey = key
	}
}

// WithSubDL points the SubDL client at baseURL for both search and download.
func WithSubDL(baseURL, key string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.SubDL.Enabled = true
		b.cfg.SubDL.BaseURL = baseURL
		b.cfg.SubDL.DownloadBaseURL = baseURL
		b.cfg.SubDL.APIKey = key
	}
}

// WithoutProviders disables every subtitle provider.
func WithoutProviders() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.OpenSubtitles.Enabled = false
		b.cfg.SubDL.Enabled = false
	}
}

// WithLibreTranslate selects the LibreTranslate engine at baseURL.
func WithLibreTranslate(baseURL string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Translate.Engine = "libretranslate"
		b.cfg.Translate.LibreTranslateURL = baseURL
	}
}

// WithoutMemory disables the translation memory database.
func WithoutMemory() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Translate.MemoryEnabled = false
	}
}

// WithConfig applies an arbitrary mutation.
func WithConfig(fn func(*config.Config)) ConfigOption {
	return func(b *configBuilder) {
		fn(b.cfg)
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}

// WriteConfigFile encodes cfg as TOML next to its directories and returns the
// path, for code that loads configuration from disk.
func WriteConfigFile(t testing.TB, cfg *config.Config) string {
	t.Helper()

	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	path := filepath.Join(BaseDir(cfg), "config.toml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}
