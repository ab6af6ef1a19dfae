package pool

import (
	"context"
	"errors"

	"curator/internal/media"
)

// OpticalTextReader recognizes text in an image file. Implementations are
// opaque, possibly slow, and possibly resource-intensive.
type OpticalTextReader interface {
	RecognizeText(ctx context.Context, path string) (string, error)
}

// Transcriber transcribes an audio or video file.
type Transcriber interface {
	Transcribe(ctx context.Context, path string) (media.Transcription, error)
}

// Summarizer generates a summary for a fully materialized prompt.
type Summarizer interface {
	Summarize(ctx context.Context, prompt string) (string, error)
}

// PromptBuilder materializes the exact prompt text for a summary unit. The
// returned string is fingerprinted byte-for-byte, so everything that
// influences the eventual request must be part of it.
type PromptBuilder interface {
	BuildPrompt(ctx context.Context, path string) (string, error)
}

// Resources bundles the private collaborators one worker owns. None of them
// may be shared across workers.
type Resources struct {
	OCR         OpticalTextReader
	Transcriber Transcriber
	Summarizer  Summarizer
	Prompter    PromptBuilder

	// CloseFunc releases worker-private handles when the pool drains.
	CloseFunc func()
}

// Close releases the resource bundle.
func (r *Resources) Close() {
	if r != nil && r.CloseFunc != nil {
		r.CloseFunc()
	}
}

func (r *Resources) validateFor(category media.Category) error {
	switch category {
	case media.CategoryOpticalText:
		if r.OCR == nil {
			return errors.New("no optical text reader configured")
		}
	case media.CategoryTranscription:
		if r.Transcriber == nil {
			return errors.New("no transcriber configured")
		}
	case media.CategorySummary:
		if r.Summarizer == nil {
			return errors.New("no summarizer configured")
		}
		if r.Prompter == nil {
			return errors.New("no prompt builder configured")
		}
	}
	return nil
}

// ResourceFactory builds one worker's private resource bundle. It is invoked
// exactly once per worker, before the worker pulls its first unit; the
// one-time cost is amortized across every unit the worker handles.
type ResourceFactory func(ctx context.Context, workerID int) (*Resources, error)
