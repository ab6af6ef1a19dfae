// Package whisper shells out to a transcription binary that emits a JSON
// result document and adapts its output into the transcription cache value.
// The transcription itself is entirely the external tool's concern.
package whisper

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"curator/internal/language"
	"curator/internal/media"
	"curator/internal/services"
)

// DefaultBinary is the conventional transcription executable name.
const DefaultBinary = "whisper"

// DefaultModel is used when no model is configured.
const DefaultModel = "base"

// Config captures the transcription bridge settings.
type Config struct {
	Binary string
	Model  string
}

// Service transcribes audio and video files via an external binary.
type Service struct {
	cfg           Config
	commandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)
}

// NewService creates a transcription bridge with the given configuration.
func NewService(cfg Config) *Service {
	if strings.TrimSpace(cfg.Binary) == "" {
		cfg.Binary = DefaultBinary
	}
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = DefaultModel
	}
	return &Service{cfg: cfg}
}

// WithCommandRunner sets a custom command runner (for testing).
func (s *Service) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) ([]byte, error)) {
	s.commandRunner = runner
}

// Model returns the configured model name for logging.
func (s *Service) Model() string { return s.cfg.Model }

// result mirrors the JSON document the transcription tool prints on stdout.
type result struct {
	Text     string `json:"text"`
	OCRText  string `json:"ocr_text"`
	Language string `json:"language"`
	Segments []struct {
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Text  string  `json:"text"`
	} `json:"segments"`
}

// Transcribe runs the transcription binary over the media file at path and
// adapts its JSON output. The reported language is normalized to ISO 639-1
// before it reaches the cache.
func (s *Service) Transcribe(ctx context.Context, path string) (media.Transcription, error) {
	var empty media.Transcription
	if _, err := os.Stat(path); err != nil {
		return empty, services.Wrap(services.ErrNotFound, "whisper", "transcribe", path, err)
	}

	args := []string{path, "--model", s.cfg.Model, "--output_format", "json", "--output_dir", "-"}
	output, err := s.run(ctx, s.cfg.Binary, args...)
	if err != nil {
		return empty, services.Wrap(services.ErrExternalTool, "whisper", "transcribe", path, err)
	}

	var parsed result
	if err := json.Unmarshal(output, &parsed); err != nil {
		return empty, services.Wrap(services.ErrExternalTool, "whisper", "transcribe",
			fmt.Sprintf("%s: unparseable tool output", path), err)
	}

	return media.Transcription{
		AudioTranscription: strings.TrimSpace(parsed.Text),
		OCRText:            strings.TrimSpace(parsed.OCRText),
		Language:           language.Normalize(parsed.Language),
		Segments:           len(parsed.Segments),
	}, nil
}

func (s *Service) run(ctx context.Context, name string, args ...string) ([]byte, error) {
	if s.commandRunner != nil {
		return s.commandRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	output, err := cmd.Output()
	if err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail != "" {
			return nil, fmt.Errorf("%w: %s", err, detail)
		}
		return nil, err
	}
	return output, nil
}
