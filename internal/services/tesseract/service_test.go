package tesseract

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"curator/internal/services"
)

func TestRecognizeText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scan.png")
	if err := os.WriteFile(path, []byte("fake image"), 0o644); err != nil {
		t.Fatalf("write image: %v", err)
	}

	svc := NewService(Config{Languages: "eng"})
	var gotArgs []string
	svc.WithCommandRunner(func(_ context.Context, name string, args ...string) ([]byte, error) {
		if name != DefaultBinary {
			t.Errorf("binary = %q, want %q", name, DefaultBinary)
		}
		gotArgs = args
		return []byte("  RECOGNIZED TEXT \n"), nil
	})

	text, err := svc.RecognizeText(context.Background(), path)
	if err != nil {
		t.Fatalf("RecognizeText failed: %v", err)
	}
	if text != "RECOGNIZED TEXT" {
		t.Errorf("text = %q", text)
	}
	if len(gotArgs) != 4 || gotArgs[0] != path || gotArgs[1] != "stdout" || gotArgs[2] != "-l" || gotArgs[3] != "eng" {
		t.Errorf("args = %v", gotArgs)
	}
}

func TestRecognizeTextMissingFile(t *testing.T) {
	svc := NewService(Config{})
	_, err := svc.RecognizeText(context.Background(), filepath.Join(t.TempDir(), "gone.png"))
	if !errors.Is(err, services.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRecognizeTextToolFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scan.png")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("write image: %v", err)
	}

	svc := NewService(Config{})
	svc.WithCommandRunner(func(context.Context, string, ...string) ([]byte, error) {
		return nil, errors.New("exit status 1")
	})

	_, err := svc.RecognizeText(context.Background(), path)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Errorf("expected ErrExternalTool, got %v", err)
	}
}
