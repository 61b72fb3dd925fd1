package config

const (
	defaultConfigPath              = "~/.config/subsync/config.toml"
	defaultDataDir                 = "~/.local/share/subsync"
	defaultLogDir                  = "~/.local/share/subsync/logs"
	defaultBind                    = "127.0.0.1:5000"
	defaultRequestTimeoutSeconds   = 60
	defaultOpenSubtitlesBaseURL    = "https://api.opensubtitles.com/api/v1"
	defaultOpenSubtitlesUserAgent  = "subsync v1.0"
	defaultSubDLBaseURL            = "https://api.subdl.com/api/v1"
	defaultSubDLDownloadBaseURL    = "https://dl.subdl.com"
	defaultTranslateEngine         = "libretranslate"
	defaultLibreTranslateURL       = "http://localhost:5001"
	defaultGeminiModel             = "gemini-2.5-flash"
	defaultTranslateConcurrency    = 4
	defaultLogFormat               = "console"
	defaultLogLevel                = "info"
	maxTranslateConcurrency        = 32
	engineLibreTranslate           = "libretranslate"
	engineGemini                   = "gemini"
	defaultOpenSubtitlesLanguageEN = "en"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:  defaultDataDir,
			CacheDir: defaultCacheDir(),
			LogDir:   defaultLogDir,
		},
		Server: Server{
			Bind:                  defaultBind,
			CORSOrigins:           []string{"*"},
			RequestTimeoutSeconds: defaultRequestTimeoutSeconds,
		},
		OpenSubtitles: OpenSubtitles{
			Enabled:   true,
			UserAgent: defaultOpenSubtitlesUserAgent,
			BaseURL:   defaultOpenSubtitlesBaseURL,
			Languages: []string{defaultOpenSubtitlesLanguageEN},
		},
		SubDL: SubDL{
			Enabled:         true,
			BaseURL:         defaultSubDLBaseURL,
			DownloadBaseURL: defaultSubDLDownloadBaseURL,
		},
		Translate: Translate{
			Engine:            defaultTranslateEngine,
			LibreTranslateURL: defaultLibreTranslateURL,
			GeminiModel:       defaultGeminiModel,
			Concurrency:       defaultTranslateConcurrency,
			MemoryEnabled:     true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
