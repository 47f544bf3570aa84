// ABOUTME: Baseline data provider for the day's briefing document
// ABOUTME: Loads per-day JSON, renders markdown notes, archives loaded days

// Package briefing loads the pre-generated daily briefing document that
// every dashboard read starts from. The document is ground truth for
// all fields except the override-able boolean flags, which the
// reconciler layers on top.
package briefing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/yuin/goldmark"

	"github.com/dayboard/dayboard/internal/config"
)

// Document is one day's briefing.
type Document struct {
	Date    string         `json:"date"`
	Weather Weather        `json:"weather"`
	News    []NewsItem     `json:"news,omitempty"`
	Notes   []NoteSection  `json:"notes,omitempty"`
	School  School         `json:"school"`
	Extra   map[string]any `json:"extra,omitempty"`
}

// Weather carries the free-text weather sentence plus the high/low
// extracted from it at load time.
type Weather struct {
	Summary string `json:"summary"`
	High    int    `json:"high,omitempty"`
	Low     int    `json:"low,omitempty"`
}

// NewsItem is one headline in the briefing.
type NewsItem struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Source  string `json:"source,omitempty"`
	Snippet string `json:"snippet,omitempty"`
}

// NoteSection is a markdown note block. HTML is rendered server-side at
// load time so the client never parses markdown.
type NoteSection struct {
	Heading  string `json:"heading"`
	Markdown string `json:"markdown"`
	HTML     string `json:"html,omitempty"`
}

// School is the school-tracker portion of the briefing.
type School struct {
	Deadlines []SchoolDeadline `json:"deadlines"`
}

// SchoolDeadline is the baseline record a deadline override applies to.
type SchoolDeadline struct {
	Course      string `json:"course,omitempty"`
	Description string `json:"description"`
	DueDate     string `json:"due_date"`
	Done        bool   `json:"done"`
}

// Provider loads briefing documents from the data directory, falling
// back to the durable source document when the per-day file is absent.
type Provider struct {
	cfg     config.StorageConfig
	archive *Archive
	logger  *slog.Logger
}

// NewProvider creates a briefing provider. The archive may be nil, in
// which case loaded days are simply not archived.
func NewProvider(cfg config.StorageConfig, archive *Archive, logger *slog.Logger) *Provider {
	return &Provider{
		cfg:     cfg,
		archive: archive,
		logger:  logger.With("component", "briefing"),
	}
}

// Load returns the briefing document for the given day. The per-day
// file briefing-YYYY-MM-DD.json is preferred; when it does not exist
// the durable source document is tried. Markdown note sections are
// rendered and the weather high/low extracted before return, and the
// document is archived best-effort.
func (p *Provider) Load(ctx context.Context, day time.Time) (*Document, error) {
	date := day.Format("2006-01-02")

	paths := []string{filepath.Join(p.cfg.DataDir, "briefing-"+date+".json")}
	if p.cfg.SourcePath != "" {
		paths = append(paths, p.cfg.SourcePath)
	}

	var lastErr error
	for _, path := range paths {
		doc, err := readDocument(path)
		if err != nil {
			lastErr = err
			continue
		}
		if doc.Date == "" {
			doc.Date = date
		}
		p.enrich(doc)

		if p.archive != nil {
			if err := p.archive.Put(ctx, doc); err != nil {
				p.logger.Warn("archiving briefing failed", "date", doc.Date, "error", err)
			}
		}
		return doc, nil
	}

	return nil, fmt.Errorf("loading briefing for %s: %w", date, lastErr)
}

// LoadArchived returns a previously archived day, bypassing the data
// directory entirely.
func (p *Provider) LoadArchived(ctx context.Context, date string) (*Document, error) {
	if p.archive == nil {
		return nil, ErrNotArchived
	}
	return p.archive.Get(ctx, date)
}

func readDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading briefing document: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing briefing document: %w", err)
	}
	return &doc, nil
}

// enrich fills derived fields: rendered note HTML and weather high/low.
func (p *Provider) enrich(doc *Document) {
	high, low, ok := ParseHighLow(doc.Weather.Summary)
	if ok {
		doc.Weather.High = high
		doc.Weather.Low = low
	}

	for i := range doc.Notes {
		var buf bytes.Buffer
		if err := goldmark.Convert([]byte(doc.Notes[i].Markdown), &buf); err != nil {
			p.logger.Warn("rendering note section failed", "heading", doc.Notes[i].Heading, "error", err)
			continue
		}
		doc.Notes[i].HTML = buf.String()
	}
}
