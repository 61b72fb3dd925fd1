package translate

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"embed"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Memory stores previous translations keyed by engine, language pair and a
// hash of the source text.
type Memory struct {
	db   *sql.DB
	path string
}

// OpenMemory opens or creates the translation memory at path.
func OpenMemory(ctx context.Context, path string) (*Memory, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create translation memory dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	mem := &Memory{db: db, path: path}
	if err := mem.applyMigrations(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return mem, nil
}

// Path returns the database file location.
func (m *Memory) Path() string { return m.path }

// Close closes the underlying database connection.
func (m *Memory) Close() error {
	if m == nil || m.db == nil {
		return nil
	}
	return m.db.Close()
}

// Lookup returns stored translations for texts, keyed by source text.
func (m *Memory) Lookup(ctx context.Context, engine, source, target string, texts []string) (map[string]string, error) {
	found := make(map[string]string)
	if m == nil || len(texts) == 0 {
		return found, nil
	}
	stmt, err := m.db.PrepareContext(ctx, `SELECT translated_text FROM translations
        WHERE engine = ? AND source_lang = ? AND target_lang = ? AND text_hash = ?`)
	if err != nil {
		return nil, fmt.Errorf("prepare lookup: %w", err)
	}
	defer stmt.Close()

	for _, text := range texts {
		if _, seen := found[text]; seen {
			continue
		}
		var translated string
		err := stmt.QueryRowContext(ctx, engine, source, target, hashText(text)).Scan(&translated)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			continue
		case err != nil:
			return nil, fmt.Errorf("lookup translation: %w", err)
		}
		found[text] = translated
	}
	return found, nil
}

// Store records translations, replacing any earlier entry for the same text.
func (m *Memory) Store(ctx context.Context, engine, source, target string, pairs map[string]string) error {
	if m == nil || len(pairs) == 0 {
		return nil
	}
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin store tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO translations (
            engine, source_lang, target_lang, text_hash, source_text, translated_text, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare store: %w", err)
	}
	defer stmt.Close()

	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	for text, translated := range pairs {
		if _, err := stmt.ExecContext(ctx, engine, source, target, hashText(text), text, translated, timestamp); err != nil {
			return fmt.Errorf("store translation: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit translations: %w", err)
	}
	return nil
}

// Count returns the number of stored translations.
func (m *Memory) Count(ctx context.Context) (int, error) {
	var count int
	if err := m.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM translations").Scan(&count); err != nil {
		return 0, fmt.Errorf("count translations: %w", err)
	}
	return count, nil
}

func hashText(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

type migration struct {
	version string
	sql     string
}

func loadMigrations() ([]migration, error) {
	entries, err := migrationFS.ReadDir("migrations")
	if err != nil {
		return nil, fmt.Errorf("read migrations dir: %w", err)
	}
	versions := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		versions = append(versions, entry.Name())
	}
	sort.Strings(versions)

	migrations := make([]migration, 0, len(versions))
	for _, name := range versions {
		data, err := migrationFS.ReadFile("migrations/" + name)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", name, err)
		}
		migrations = append(migrations, migration{version: strings.TrimSuffix(name, ".sql"), sql: string(data)})
	}
	return migrations, nil
}

func (m *Memory) applyMigrations(ctx context.Context) error {
	migrations, err := loadMigrations()
	if err != nil {
		return err
	}

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, "CREATE TABLE IF NOT EXISTS schema_migrations (version TEXT PRIMARY KEY)"); err != nil {
		return fmt.Errorf("ensure schema_migrations: %w", err)
	}
	for _, mig := range migrations {
		var count int
		if err := tx.QueryRowContext(ctx, "SELECT COUNT(1) FROM schema_migrations WHERE version = ?", mig.version).Scan(&count); err != nil {
			return fmt.Errorf("scan migration version: %w", err)
		}
		if count > 0 {
			continue
		}
		if _, err := tx.ExecContext(ctx, mig.sql); err != nil {
			return fmt.Errorf("apply migration %s: %w", mig.version, err)
		}
		if _, err := tx.ExecContext(ctx, "INSERT INTO schema_migrations (version) VALUES (?)", mig.version); err != nil {
			return fmt.Errorf("record migration %s: %w", mig.version, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migrations: %w", err)
	}
	return nil
}
