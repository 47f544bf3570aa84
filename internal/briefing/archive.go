// ABOUTME: SQLite archive of briefing documents using modernc.org/sqlite
// ABOUTME: Upserts one row per date with automatic schema creation

package briefing

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotArchived is returned when no archived briefing exists for a date.
var ErrNotArchived = errors.New("briefing not archived")

// Archive persists loaded briefing documents so past days stay
// browsable after their source files rotate away.
type Archive struct {
	db     *sql.DB
	logger *slog.Logger
}

// ArchiveEntry is one row of the archive listing.
type ArchiveEntry struct {
	Date       string `json:"date"`
	ArchivedAt string `json:"archived_at"`
}

// NewArchive opens (or creates) the archive database at the given path.
// Parent directories are created if needed.
func NewArchive(path string) (*Archive, error) {
	logger := slog.Default().With("component", "archive")

	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating archive directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening archive database: %w", err)
	}

	// Enable WAL mode for better concurrent performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	a := &Archive{db: db, logger: logger}
	if err := a.createSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return a, nil
}

func (a *Archive) createSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS briefings (
		date        TEXT PRIMARY KEY,
		document    TEXT NOT NULL,
		archived_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_briefings_archived_at ON briefings(archived_at);
	`
	if _, err := a.db.Exec(schema); err != nil {
		return fmt.Errorf("creating archive schema: %w", err)
	}
	return nil
}

// Put upserts the document under its date.
func (a *Archive) Put(ctx context.Context, doc *Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding briefing: %w", err)
	}

	_, err = a.db.ExecContext(ctx, `
		INSERT INTO briefings (date, document, archived_at) VALUES (?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET document = excluded.document, archived_at = excluded.archived_at`,
		doc.Date, string(data), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("upserting briefing: %w", err)
	}
	return nil
}

// Get returns the archived document for a date, or ErrNotArchived.
func (a *Archive) Get(ctx context.Context, date string) (*Document, error) {
	var data string
	err := a.db.QueryRowContext(ctx, `SELECT document FROM briefings WHERE date = ?`, date).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotArchived
	}
	if err != nil {
		return nil, fmt.Errorf("querying briefing: %w", err)
	}

	var doc Document
	if err := json.Unmarshal([]byte(data), &doc); err != nil {
		return nil, fmt.Errorf("decoding archived briefing: %w", err)
	}
	return &doc, nil
}

// List returns the most recently archived dates, newest first.
func (a *Archive) List(ctx context.Context, limit int) ([]ArchiveEntry, error) {
	if limit < 1 {
		limit = 30
	}

	rows, err := a.db.QueryContext(ctx,
		`SELECT date, archived_at FROM briefings ORDER BY date DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing briefings: %w", err)
	}
	defer rows.Close()

	var entries []ArchiveEntry
	for rows.Next() {
		var e ArchiveEntry
		if err := rows.Scan(&e.Date, &e.ArchivedAt); err != nil {
			return nil, fmt.Errorf("scanning briefing row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close closes the underlying database.
func (a *Archive) Close() error {
	return a.db.Close()
}
