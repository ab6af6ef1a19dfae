// Package tesseract shells out to an OCR binary and returns the text it
// recognizes. The recognition itself is entirely the external tool's concern.
package tesseract

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"curator/internal/services"
)

// DefaultBinary is the conventional OCR executable name.
const DefaultBinary = "tesseract"

// Config captures the OCR bridge settings.
type Config struct {
	Binary    string
	Languages string // tesseract -l value, e.g. "eng" or "eng+deu"
}

// Service recognizes text in image files via an external binary.
type Service struct {
	cfg           Config
	commandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)
}

// NewService creates an OCR bridge with the given configuration.
func NewService(cfg Config) *Service {
	if strings.TrimSpace(cfg.Binary) == "" {
		cfg.Binary = DefaultBinary
	}
	return &Service{cfg: cfg}
}

// WithCommandRunner sets a custom command runner (for testing).
func (s *Service) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) ([]byte, error)) {
	s.commandRunner = runner
}

// RecognizeText runs the OCR binary over the image at path and returns the
// recognized text, trimmed. Output on stdout is requested via the "stdout"
// output argument the tesseract CLI defines.
func (s *Service) RecognizeText(ctx context.Context, path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		return "", services.Wrap(services.ErrNotFound, "tesseract", "recognize", path, err)
	}

	args := []string{path, "stdout"}
	if lang := strings.TrimSpace(s.cfg.Languages); lang != "" {
		args = append(args, "-l", lang)
	}

	output, err := s.run(ctx, s.cfg.Binary, args...)
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, "tesseract", "recognize", path, err)
	}
	return strings.TrimSpace(string(output)), nil
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
