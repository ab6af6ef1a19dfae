package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"curator/internal/media"
	"curator/internal/pool"
)

// promptTextLimit caps how much extracted text a summary prompt carries.
const promptTextLimit = 1000

// promptTable materializes summary prompts from the extraction phase's
// results. It backs the pool's PromptBuilder for chained summary units; the
// fingerprint of the exact prompt text is the summary cache key, so any
// change to the templates below invalidates prior entries.
type promptTable struct {
	mu      sync.RWMutex
	prompts map[string]string
}

func newPromptTable() *promptTable {
	return &promptTable{prompts: make(map[string]string)}
}

func (p *promptTable) set(path, prompt string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.prompts[path] = prompt
}

// BuildPrompt returns the prompt prepared for path during extraction.
func (p *promptTable) BuildPrompt(ctx context.Context, path string) (string, error) {
	p.mu.RLock()
	prompt, ok := p.prompts[path]
	p.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("no prompt prepared for %s", path)
	}
	return prompt, nil
}

// summaryPromptFor builds the summary prompt for one successful extraction
// outcome. The second return is false when the extraction yielded no text
// worth summarizing.
func summaryPromptFor(outcome pool.Outcome) (string, bool) {
	name := filepath.Base(outcome.Unit.Path)
	switch outcome.Unit.Category {
	case media.CategoryOpticalText:
		text := strings.TrimSpace(outcome.Value.OpticalText)
		if text == "" {
			return "", false
		}
		return imageSummaryPrompt(name, text), true
	case media.CategoryTranscription:
		value := outcome.Value.Transcription
		if strings.TrimSpace(value.AudioTranscription) == "" && strings.TrimSpace(value.OCRText) == "" {
			return "", false
		}
		return mediaSummaryPrompt(name, value), true
	default:
		return "", false
	}
}

func imageSummaryPrompt(filename, ocrText string) string {
	context := fmt.Sprintf("Image file: %s\n\nText visible in image:\n%s",
		filename, truncateText(ocrText, promptTextLimit))
	return fmt.Sprintf("Based on the following text extracted from an image, write a single concise paragraph (2-3 sentences) describing what this image is about. Focus on the main topic, what's being shown, and any key information (eg proper names, dates, etc).\n\n%s\n\nSummary:", context)
}

func mediaSummaryPrompt(filename string, value media.Transcription) string {
	parts := []string{fmt.Sprintf("Video file: %s", filename)}
	if audio := strings.TrimSpace(value.AudioTranscription); audio != "" {
		parts = append(parts, fmt.Sprintf("\nAudio transcription:\n%s", truncateText(audio, promptTextLimit)))
	}
	if ocr := strings.TrimSpace(value.OCRText); ocr != "" {
		parts = append(parts, fmt.Sprintf("\nText visible on screen:\n%s", truncateText(ocr, promptTextLimit)))
	}
	context := strings.Join(parts, "\n")
	return fmt.Sprintf("Based on the following video content, write a single concise paragraph (2-3 sentences) describing what this video is about. Focus on the main topic, what's being shown/discussed, and any key technical details.\n\n%s\n\nSummary:", context)
}

func truncateText(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
