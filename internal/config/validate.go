package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateProviders(); err != nil {
		return err
	}
	if err := c.validateTranslate(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if _, _, err := net.SplitHostPort(c.Server.Bind); err != nil {
		return fmt.Errorf("server.bind must be host:port: %w", err)
	}
	if c.Server.RequestTimeoutSeconds <= 0 {
		return errors.New("server.request_timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateProviders() error {
	if c.OpenSubtitles.Enabled {
		if strings.TrimSpace(c.OpenSubtitles.UserAgent) == "" {
			return errors.New("opensubtitles.user_agent must be set when opensubtitles.enabled is true")
		}
		if err := validateURL("opensubtitles.base_url", c.OpenSubtitles.BaseURL); err != nil {
			return err
		}
	}
	if c.SubDL.Enabled {
		if err := validateURL("subdl.base_url", c.SubDL.BaseURL); err != nil {
			return err
		}
		if err := validateURL("subdl.download_base_url", c.SubDL.DownloadBaseURL); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateTranslate() error {
	switch c.Translate.Engine {
	case engineLibreTranslate:
		if err := validateURL("translate.libretranslate_url", c.Translate.LibreTranslateURL); err != nil {
			return err
		}
	case engineGemini:
		if strings.TrimSpace(c.Translate.GeminiAPIKey) == "" {
			return errors.New("translate.gemini_api_key must be set when translate.engine is gemini (or set GEMINI_API_KEY)")
		}
	default:
		return fmt.Errorf("translate.engine: unsupported value %q (want libretranslate or gemini)", c.Translate.Engine)
	}
	if c.Translate.Concurrency <= 0 || c.Translate.Concurrency > maxTranslateConcurrency {
		return fmt.Errorf("translate.concurrency must be between 1 and %d", maxTranslateConcurrency)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
}

func validateURL(key, value string) error {
	parsed, err := url.Parse(strings.TrimSpace(value))
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("%s must be an absolute URL, got %q", key, value)
	}
	return nil
}

// MissingCredentials lists the keys of enabled providers that have no API key.
// Those providers are skipped at startup rather than failing validation.
func (c *Config) MissingCredentials() []string {
	var missing []string
	if c.OpenSubtitles.Enabled && c.OpenSubtitles.APIKey == "" {
		missing = append(missing, "opensubtitles.api_key")
	}
	if c.SubDL.Enabled && c.SubDL.APIKey == "" {
		missing = append(missing, "subdl.api_key")
	}
	return missing
}
