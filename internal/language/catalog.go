package language

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// CatalogData is the on-disk catalog layout.
type CatalogData struct {
	// Search lists the ISO codes queried when a request names none.
	Search []string `yaml:"search"`
	// Translation lists the target languages offered when the engine
	// cannot be asked.
	Translation []Option `yaml:"translation"`
}

// Catalog serves the current language defaults. Reads are lock-free; Reload
// and Watch replace the snapshot atomically.
type Catalog struct {
	path    string
	current atomic.Pointer[CatalogData]
	logger  *slog.Logger
}

// NewCatalog builds a catalog from path, or from the built-in table when path
// is empty. fallbackSearch seeds Search when the file omits it.
func NewCatalog(path string, fallbackSearch []string, logger *slog.Logger) (*Catalog, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	c := &Catalog{path: path, logger: logger}
	builtin := &CatalogData{Search: NormalizeList(fallbackSearch), Translation: Options()}
	if len(builtin.Search) == 0 {
		builtin.Search = []string{"en"}
	}
	c.current.Store(builtin)
	if path == "" {
		return c, nil
	}
	if err := c.Reload(); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Warn("language catalog missing; using built-in table", slog.String("path", path))
			return c, nil
		}
		return nil, err
	}
	return c, nil
}

// Snapshot returns the active catalog. Callers must not mutate it.
func (c *Catalog) Snapshot() *CatalogData {
	return c.current.Load()
}

// SearchLanguages returns the default search languages.
func (c *Catalog) SearchLanguages() []string {
	return append([]string(nil), c.current.Load().Search...)
}

// TranslationOptions returns the fallback translation languages.
func (c *Catalog) TranslationOptions() []Option {
	return append([]Option(nil), c.current.Load().Translation...)
}

// Reload re-reads the catalog file. On error the previous snapshot stays active.
func (c *Catalog) Reload() error {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return fmt.Errorf("read language catalog: %w", err)
	}
	var parsed CatalogData
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("parse language catalog %s: %w", c.path, err)
	}
	prev := c.current.Load()
	parsed.Search = NormalizeList(parsed.Search)
	if len(parsed.Search) == 0 {
		parsed.Search = prev.Search
	}
	translation := make([]Option, 0, len(parsed.Translation))
	for _, opt := range parsed.Translation {
		code := ToISO2(opt.Code)
		if code == "" {
			code = opt.Code
		}
		if code == "" {
			continue
		}
		name := opt.Name
		if name == "" {
			name = DisplayName(code)
		}
		translation = append(translation, Option{Code: code, Name: name})
	}
	if len(translation) == 0 {
		translation = prev.Translation
	}
	parsed.Translation = translation
	c.current.Store(&parsed)
	return nil
}

// Watch reloads the catalog whenever its file changes until ctx is done. The
// parent directory is watched so editors that replace the file are handled.
func (c *Catalog) Watch(ctx context.Context) error {
	if c.path == "" {
		<-ctx.Done()
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(c.path)); err != nil {
		return fmt.Errorf("add watch path: %w", err)
	}

	target := filepath.Clean(c.path)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return errors.New("watcher events channel closed")
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if err := c.Reload(); err != nil {
				c.logger.Warn("language catalog reload failed",
					slog.String("path", c.path),
					slog.Any("error", err),
					slog.String("impact", "previous language defaults remain active"),
				)
				continue
			}
			c.logger.Info("language catalog reloaded", slog.String("path", c.path))
		case err, ok := <-watcher.Errors:
			if !ok {
				return errors.New("watcher errors channel closed")
			}
			c.logger.Warn("language catalog watcher error", slog.Any("error", err))
		}
	}
}
