package cache

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"curator/internal/media"
)

// Conventional document names, one per analysis category.
const (
	opticalTextDocument   = "ocr.json"
	transcriptionDocument = "transcription.json"
	summaryDocument       = "summaries.json"
)

// Stores bundles the three category stores sharing one cache directory.
type Stores struct {
	Dir           string
	OpticalText   *Store[string]
	Transcription *Store[media.Transcription]
	Summary       *Store[string]
}

// Open creates the cache directory if needed and opens all category stores.
// Backing documents are created lazily on first Set.
func Open(dir string, logger *slog.Logger) (*Stores, error) {
	if dir == "" {
		return nil, fmt.Errorf("cache directory not configured")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory %q: %w", dir, err)
	}

	return &Stores{
		Dir:           dir,
		OpticalText:   newStore[string](dir, media.CategoryOpticalText, opticalTextDocument, logger),
		Transcription: newStore[media.Transcription](dir, media.CategoryTranscription, transcriptionDocument, logger),
		Summary:       newStore[string](dir, media.CategorySummary, summaryDocument, logger),
	}, nil
}

// Status describes one store for CLI presentation.
type Status struct {
	Category media.Category
	Path     string
	Entries  int
}

// Statuses reloads each store under its lock and reports entry counts.
func (s *Stores) Statuses(ctx context.Context) ([]Status, error) {
	if _, err := s.OpticalText.Snapshot(ctx); err != nil {
		return nil, err
	}
	if _, err := s.Transcription.Snapshot(ctx); err != nil {
		return nil, err
	}
	if _, err := s.Summary.Snapshot(ctx); err != nil {
		return nil, err
	}
	return []Status{
		{Category: s.OpticalText.Category(), Path: s.OpticalText.Path(), Entries: s.OpticalText.Count()},
		{Category: s.Transcription.Category(), Path: s.Transcription.Path(), Entries: s.Transcription.Count()},
		{Category: s.Summary.Category(), Path: s.Summary.Path(), Entries: s.Summary.Count()},
	}, nil
}

// Clear removes the backing document for one category, or for every category
// when the argument is empty.
func (s *Stores) Clear(ctx context.Context, category media.Category) error {
	switch category {
	case media.CategoryOpticalText:
		return s.OpticalText.Clear(ctx)
	case media.CategoryTranscription:
		return s.Transcription.Clear(ctx)
	case media.CategorySummary:
		return s.Summary.Clear(ctx)
	case "":
		if err := s.OpticalText.Clear(ctx); err != nil {
			return err
		}
		if err := s.Transcription.Clear(ctx); err != nil {
			return err
		}
		return s.Summary.Clear(ctx)
	default:
		return fmt.Errorf("unknown category %q", category)
	}
}
