package media

import (
	"fmt"
	"strings"
)

// Category identifies one kind of expensive analysis and therefore one cache
// store. The string values are stable; they appear in logs and CLI output.
type Category string

const (
	// CategoryOpticalText is text recognition over an image file.
	CategoryOpticalText Category = "optical-text"
	// CategoryTranscription is audio transcription over a video or audio file.
	CategoryTranscription Category = "transcription"
	// CategorySummary is LLM summarization over a materialized prompt.
	CategorySummary Category = "summary"
)

// Categories lists every known category in presentation order.
func Categories() []Category {
	return []Category{CategoryOpticalText, CategoryTranscription, CategorySummary}
}

// ParseCategory converts user input into a Category.
func ParseCategory(value string) (Category, error) {
	switch Category(strings.ToLower(strings.TrimSpace(value))) {
	case CategoryOpticalText:
		return CategoryOpticalText, nil
	case CategoryTranscription:
		return CategoryTranscription, nil
	case CategorySummary:
		return CategorySummary, nil
	default:
		return "", fmt.Errorf("unknown category %q", value)
	}
}

// Unit is one file-category pair submitted for cache-or-compute processing.
// Units are created by the orchestrator and consumed by exactly one worker.
type Unit struct {
	Path     string
	Category Category
}

// Transcription is the structured value cached for transcription units.
type Transcription struct {
	AudioTranscription string `json:"audio_transcription"`
	OCRText            string `json:"ocr_text"`
	Language           string `json:"language"`
	Segments           int    `json:"segments"`
}

// Result is the tagged variant a worker produces for one unit. Exactly one of
// the value fields is meaningful, selected by Category.
type Result struct {
	Category      Category
	OpticalText   string
	Transcription Transcription
	Summary       string
}

// OpticalTextResult wraps an extracted string as a Result.
func OpticalTextResult(text string) Result {
	return Result{Category: CategoryOpticalText, OpticalText: text}
}

// TranscriptionResult wraps a transcription record as a Result.
func TranscriptionResult(value Transcription) Result {
	return Result{Category: CategoryTranscription, Transcription: value}
}

// SummaryResult wraps a generated summary as a Result.
func SummaryResult(text string) Result {
	return Result{Category: CategorySummary, Summary: text}
}

// Text returns the primary textual payload for display purposes.
func (r Result) Text() string {
	switch r.Category {
	case CategoryOpticalText:
		return r.OpticalText
	case CategoryTranscription:
		return r.Transcription.AudioTranscription
	case CategorySummary:
		return r.Summary
	default:
		return ""
	}
}
