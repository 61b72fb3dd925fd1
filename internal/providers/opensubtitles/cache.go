package opensubtitles

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"subsync/internal/fileutil"
)

const lockRetryDelay = 50 * time.Millisecond

// CacheEntry captures metadata about a cached OpenSubtitles download.
type CacheEntry struct {
	FileID      int64     `json:"file_id"`
	Language    string    `json:"language"`
	FileName    string    `json:"file_name"`
	DownloadURL string    `json:"download_url"`
	StoredAt    time.Time `json:"stored_at"`
}

// CacheResult represents a cache hit including the subtitle payload.
type CacheResult struct {
	Entry CacheEntry
	Data  []byte
	Path  string
}

// DownloadResult converts a cached payload into a DownloadResult structure.
func (r CacheResult) DownloadResult() DownloadResult {
	return DownloadResult{
		Data:        append([]byte(nil), r.Data...),
		FileName:    r.Entry.FileName,
		Language:    r.Entry.Language,
		DownloadURL: r.Entry.DownloadURL,
	}
}

// Cache persists OpenSubtitles payloads locally to avoid spending the daily
// download quota twice. The mutex guards the single flock handle; the lock
// file serialises processes sharing the directory.
type Cache struct {
	dir    string
	mu     sync.Mutex
	lock   *flock.Flock
	logger *slog.Logger
}

// NewCache initialises a cache rooted at dir.
func NewCache(dir string, logger *slog.Logger) (*Cache, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("cache directory is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &Cache{dir: dir, lock: flock.New(filepath.Join(dir, ".lock")), logger: logger}, nil
}

// Dir exposes the backing directory for inspection.
func (c *Cache) Dir() string {
	if c == nil {
		return ""
	}
	return c.dir
}

// Load returns the cached payload for fileID when present.
func (c *Cache) Load(ctx context.Context, fileID int64) (CacheResult, bool, error) {
	if c == nil {
		return CacheResult{}, false, errors.New("cache unavailable")
	}
	if fileID <= 0 {
		return CacheResult{}, false, errors.New("invalid file id")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	locked, err := c.lock.TryRLockContext(ctx, lockRetryDelay)
	if err != nil {
		return CacheResult{}, false, fmt.Errorf("acquire cache read lock: %w", err)
	}
	if locked {
		defer c.lock.Unlock()
	}

	dataPath := c.dataPath(fileID)
	data, err := os.ReadFile(dataPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return CacheResult{}, false, nil
		}
		return CacheResult{}, false, fmt.Errorf("read cache data: %w", err)
	}
	metaBytes, err := os.ReadFile(c.metaPath(fileID))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			// a payload without metadata is treated as a miss
			return CacheResult{}, false, nil
		}
		return CacheResult{}, false, fmt.Errorf("read cache metadata: %w", err)
	}
	var entry CacheEntry
	if err := json.Unmarshal(metaBytes, &entry); err != nil {
		return CacheResult{}, false, fmt.Errorf("decode cache metadata: %w", err)
	}
	if entry.FileID == 0 {
		entry.FileID = fileID
	}
	return CacheResult{
		Entry: entry,
		Data:  data,
		Path:  dataPath,
	}, true, nil
}

// Store writes the supplied payload into the cache and returns the data path.
func (c *Cache) Store(ctx context.Context, entry CacheEntry, data []byte) (string, error) {
	if c == nil {
		return "", errors.New("cache unavailable")
	}
	if entry.FileID <= 0 {
		return "", errors.New("invalid file id")
	}
	entry.Language = strings.TrimSpace(entry.Language)
	entry.FileName = strings.TrimSpace(entry.FileName)
	entry.DownloadURL = strings.TrimSpace(entry.DownloadURL)
	entry.StoredAt = time.Now().UTC()

	c.mu.Lock()
	defer c.mu.Unlock()
	locked, err := c.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return "", fmt.Errorf("acquire cache lock: %w", err)
	}
	if locked {
		defer c.lock.Unlock()
	}

	dataPath := c.dataPath(entry.FileID)
	if err := fileutil.WriteAtomic(dataPath, data, 0o644); err != nil {
		return "", err
	}
	metaBytes, err := json.Marshal(entry)
	if err != nil {
		return "", fmt.Errorf("encode metadata: %w", err)
	}
	if err := fileutil.WriteAtomic(c.metaPath(entry.FileID), metaBytes, 0o644); err != nil {
		return "", err
	}
	if c.logger != nil {
		c.logger.DebugContext(ctx, "opensubtitles cache stored",
			slog.Int64("file_id", entry.FileID),
			slog.String("path", dataPath),
			slog.String("language", entry.Language),
		)
	}
	return dataPath, nil
}

func (c *Cache) dataPath(fileID int64) string {
	return filepath.Join(c.dir, fmt.Sprintf("%d.srt", fileID))
}

func (c *Cache) metaPath(fileID int64) string {
	return filepath.Join(c.dir, fmt.Sprintf("%d.json", fileID))
}
