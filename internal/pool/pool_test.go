package pool

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"curator/internal/cache"
	"curator/internal/fingerprint"
	"curator/internal/logging"
	"curator/internal/media"
)

type ocrFunc func(ctx context.Context, path string) (string, error)

func (f ocrFunc) RecognizeText(ctx context.Context, path string) (string, error) { return f(ctx, path) }

type transcribeFunc func(ctx context.Context, path string) (media.Transcription, error)

func (f transcribeFunc) Transcribe(ctx context.Context, path string) (media.Transcription, error) {
	return f(ctx, path)
}

type summarizeFunc func(ctx context.Context, prompt string) (string, error)

func (f summarizeFunc) Summarize(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

type promptFunc func(ctx context.Context, path string) (string, error)

func (f promptFunc) BuildPrompt(ctx context.Context, path string) (string, error) {
	return f(ctx, path)
}

func staticResources(r *Resources) ResourceFactory {
	return func(ctx context.Context, workerID int) (*Resources, error) {
		return r, nil
	}
}

func openStores(t *testing.T) *cache.Stores {
	t.Helper()
	stores, err := cache.Open(filepath.Join(t.TempDir(), "cache"), logging.NewNop())
	if err != nil {
		t.Fatalf("open stores: %v", err)
	}
	return stores
}

func writeUnit(t *testing.T, dir, name, content string, category media.Category) media.Unit {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write unit file: %v", err)
	}
	return media.Unit{Path: path, Category: category}
}

func newPool(t *testing.T, workers int, stores *cache.Stores, factory ResourceFactory) *Pool {
	t.Helper()
	p, err := New(Config{Workers: workers, Stores: stores, NewResources: factory})
	if err != nil {
		t.Fatalf("new pool: %v", err)
	}
	return p
}

func TestNewRejectsBadConfig(t *testing.T) {
	stores := openStores(t)
	factory := staticResources(&Resources{})

	if _, err := New(Config{Workers: 0, Stores: stores, NewResources: factory}); err == nil {
		t.Fatal("expected error for zero workers")
	}
	if _, err := New(Config{Workers: 1, NewResources: factory}); err == nil {
		t.Fatal("expected error for missing stores")
	}
	if _, err := New(Config{Workers: 1, Stores: stores}); err == nil {
		t.Fatal("expected error for missing resource factory")
	}
}

func TestRunComputesAndCaches(t *testing.T) {
	stores := openStores(t)
	dir := t.TempDir()
	unit := writeUnit(t, dir, "scan.png", "image bytes", media.CategoryOpticalText)

	var calls atomic.Int32
	resources := &Resources{OCR: ocrFunc(func(ctx context.Context, path string) (string, error) {
		calls.Add(1)
		return "recognized text", nil
	})}
	p := newPool(t, 2, stores, staticResources(resources))

	outcomes := p.Run(context.Background(), []media.Unit{unit})
	if len(outcomes) != 1 {
		t.Fatalf("expected 1 outcome, got %d", len(outcomes))
	}
	out := outcomes[0]
	if !out.Succeeded() {
		t.Fatalf("unexpected failure: %v", out.Err)
	}
	if out.FromCache {
		t.Fatal("first run should not be served from cache")
	}
	if out.Value.Text() != "recognized text" {
		t.Fatalf("unexpected value %q", out.Value.Text())
	}
	if out.RequestID == "" {
		t.Fatal("expected a request ID")
	}
	if calls.Load() != 1 {
		t.Fatalf("expected exactly one compute call, got %d", calls.Load())
	}

	cached, ok, err := stores.OpticalText.Get(context.Background(), out.Fingerprint)
	if err != nil || !ok {
		t.Fatalf("expected cached entry, ok=%v err=%v", ok, err)
	}
	if cached != "recognized text" {
		t.Fatalf("unexpected cached value %q", cached)
	}
}

func TestRunServesCachedResults(t *testing.T) {
	stores := openStores(t)
	dir := t.TempDir()
	unit := writeUnit(t, dir, "scan.png", "image bytes", media.CategoryOpticalText)

	fp, err := fingerprint.File(unit.Path)
	if err != nil {
		t.Fatalf("fingerprint: %v", err)
	}
	if err := stores.OpticalText.Set(context.Background(), fp, "from an earlier run"); err != nil {
		t.Fatalf("seed cache: %v", err)
	}

	resources := &Resources{OCR: ocrFunc(func(ctx context.Context, path string) (string, error) {
		return "", errors.New("compute should not run on a cache hit")
	})}
	p := newPool(t, 1, stores, staticResources(resources))

	outcomes := p.Run(context.Background(), []media.Unit{unit})
	out := outcomes[0]
	if !out.Succeeded() {
		t.Fatalf("unexpected failure: %v", out.Err)
	}
	if !out.FromCache {
		t.Fatal("expected a cache hit")
	}
	if out.Value.Text() != "from an earlier run" {
		t.Fatalf("unexpected value %q", out.Value.Text())
	}
}

func TestRunKeysSummariesOnPromptText(t *testing.T) {
	stores := openStores(t)
	dir := t.TempDir()
	unit := writeUnit(t, dir, "letter.pdf", "file bytes", media.CategorySummary)

	const prompt = "Summarize this letter: hello world"
	if err := stores.Summary.Set(context.Background(), fingerprint.Text(prompt), "seeded summary"); err != nil {
		t.Fatalf("seed cache: %v", err)
	}

	resources := &Resources{
		Prompter: promptFunc(func(ctx context.Context, path string) (string, error) {
			return prompt, nil
		}),
		Summarizer: summarizeFunc(func(ctx context.Context, got string) (string, error) {
			return "", errors.New("summarizer should not run on a cache hit")
		}),
	}
	p := newPool(t, 1, stores, staticResources(resources))

	out := p.Run(context.Background(), []media.Unit{unit})[0]
	if !out.Succeeded() {
		t.Fatalf("unexpected failure: %v", out.Err)
	}
	if !out.FromCache || out.Value.Text() != "seeded summary" {
		t.Fatalf("expected seeded summary from cache, got fromCache=%v value=%q", out.FromCache, out.Value.Text())
	}
	if out.Fingerprint != fingerprint.Text(prompt) {
		t.Fatal("summary fingerprint should derive from the prompt text")
	}
}

func TestRunIsolatesFailures(t *testing.T) {
	stores := openStores(t)
	dir := t.TempDir()
	units := []media.Unit{
		writeUnit(t, dir, "good-one.png", "one", media.CategoryOpticalText),
		writeUnit(t, dir, "broken.png", "two", media.CategoryOpticalText),
		writeUnit(t, dir, "good-two.png", "three", media.CategoryOpticalText),
	}

	resources := &Resources{OCR: ocrFunc(func(ctx context.Context, path string) (string, error) {
		if strings.Contains(path, "broken") {
			return "", errors.New("engine crashed on this file")
		}
		return "ok", nil
	})}
	p := newPool(t, 2, stores, staticResources(resources))

	outcomes := p.Run(context.Background(), units)
	if len(outcomes) != len(units) {
		t.Fatalf("expected %d outcomes, got %d", len(units), len(outcomes))
	}
	var failed, succeeded int
	for _, out := range outcomes {
		if out.Succeeded() {
			succeeded++
			continue
		}
		failed++
		if !strings.Contains(out.Unit.Path, "broken") {
			t.Errorf("unexpected failing unit %s: %v", out.Unit.Path, out.Err)
		}
	}
	if failed != 1 || succeeded != 2 {
		t.Fatalf("expected 1 failure and 2 successes, got %d/%d", failed, succeeded)
	}
}

func TestRunIsolatesPanics(t *testing.T) {
	stores := openStores(t)
	dir := t.TempDir()
	units := []media.Unit{
		writeUnit(t, dir, "calm.png", "one", media.CategoryOpticalText),
		writeUnit(t, dir, "volatile.png", "two", media.CategoryOpticalText),
	}

	resources := &Resources{OCR: ocrFunc(func(ctx context.Context, path string) (string, error) {
		if strings.Contains(path, "volatile") {
			panic("collaborator blew up")
		}
		return "ok", nil
	})}
	p := newPool(t, 1, stores, staticResources(resources))

	outcomes := p.Run(context.Background(), units)
	if len(outcomes) != 2 {
		t.Fatalf("expected 2 outcomes, got %d", len(outcomes))
	}
	for _, out := range outcomes {
		volatile := strings.Contains(out.Unit.Path, "volatile")
		if volatile && out.Succeeded() {
			t.Error("panicking unit should fail")
		}
		if volatile && !strings.Contains(fmt.Sprint(out.Err), "panic") {
			t.Errorf("panic should surface in the error, got %v", out.Err)
		}
		if !volatile && !out.Succeeded() {
			t.Errorf("healthy unit should survive a sibling panic: %v", out.Err)
		}
	}
}

func TestRunBoundsConcurrency(t *testing.T) {
	stores := openStores(t)
	dir := t.TempDir()

	const workers = 3
	units := make([]media.Unit, 0, 20)
	for i := 0; i < 20; i++ {
		units = append(units, writeUnit(t, dir, fmt.Sprintf("img-%02d.png", i), fmt.Sprintf("bytes-%d", i), media.CategoryOpticalText))
	}

	var inFlight, peak atomic.Int32
	resources := &Resources{OCR: ocrFunc(func(ctx context.Context, path string) (string, error) {
		current := inFlight.Add(1)
		for {
			observed := peak.Load()
			if current <= observed || peak.CompareAndSwap(observed, current) {
				break
			}
		}
		time.Sleep(2 * time.Millisecond)
		inFlight.Add(-1)
		return "ok", nil
	})}
	p := newPool(t, workers, stores, staticResources(resources))

	outcomes := p.Run(context.Background(), units)
	if len(outcomes) != len(units) {
		t.Fatalf("expected %d outcomes, got %d", len(units), len(outcomes))
	}
	if got := peak.Load(); got > workers {
		t.Fatalf("observed %d concurrent computations with %d workers", got, workers)
	}
}

func TestResourceFactoryRunsOncePerWorker(t *testing.T) {
	stores := openStores(t)
	dir := t.TempDir()
	units := make([]media.Unit, 0, 12)
	for i := 0; i < 12; i++ {
		units = append(units, writeUnit(t, dir, fmt.Sprintf("img-%02d.png", i), fmt.Sprintf("bytes-%d", i), media.CategoryOpticalText))
	}

	const workers = 4
	var factoryCalls, closeCalls atomic.Int32
	factory := func(ctx context.Context, workerID int) (*Resources, error) {
		factoryCalls.Add(1)
		return &Resources{
			OCR: ocrFunc(func(ctx context.Context, path string) (string, error) {
				return "ok", nil
			}),
			CloseFunc: func() { closeCalls.Add(1) },
		}, nil
	}
	p := newPool(t, workers, stores, factory)

	p.Run(context.Background(), units)
	if got := factoryCalls.Load(); got != workers {
		t.Fatalf("expected %d factory calls, got %d", workers, got)
	}
	if got := closeCalls.Load(); got != workers {
		t.Fatalf("expected %d close calls, got %d", workers, got)
	}
}

func TestRunSurvivesFactoryFailure(t *testing.T) {
	stores := openStores(t)
	dir := t.TempDir()
	units := []media.Unit{
		writeUnit(t, dir, "a.png", "one", media.CategoryOpticalText),
		writeUnit(t, dir, "b.png", "two", media.CategoryOpticalText),
		writeUnit(t, dir, "c.png", "three", media.CategoryOpticalText),
	}

	factory := func(ctx context.Context, workerID int) (*Resources, error) {
		if workerID == 2 {
			return nil, errors.New("model load failed")
		}
		return &Resources{OCR: ocrFunc(func(ctx context.Context, path string) (string, error) {
			return "ok", nil
		})}, nil
	}
	p := newPool(t, 2, stores, factory)

	outcomes := p.Run(context.Background(), units)
	if len(outcomes) != len(units) {
		t.Fatalf("expected %d outcomes, got %d", len(units), len(outcomes))
	}
	for _, out := range outcomes {
		if !out.Succeeded() {
			t.Errorf("unit %s failed: %v", out.Unit.Path, out.Err)
		}
	}
}

func TestRunDrainsOnCancel(t *testing.T) {
	stores := openStores(t)
	dir := t.TempDir()
	units := make([]media.Unit, 0, 5)
	for i := 0; i < 5; i++ {
		units = append(units, writeUnit(t, dir, fmt.Sprintf("img-%d.png", i), fmt.Sprintf("bytes-%d", i), media.CategoryOpticalText))
	}

	ctx, cancel := context.WithCancel(context.Background())
	started := make(chan struct{}, 1)
	resources := &Resources{OCR: ocrFunc(func(ctx context.Context, path string) (string, error) {
		select {
		case started <- struct{}{}:
		default:
		}
		<-ctx.Done()
		return "", ctx.Err()
	})}
	p := newPool(t, 1, stores, staticResources(resources))

	go func() {
		<-started
		cancel()
	}()

	outcomes := p.Run(ctx, units)
	if len(outcomes) != len(units) {
		t.Fatalf("every unit should get an outcome, got %d of %d", len(outcomes), len(units))
	}
	canceled := 0
	for _, out := range outcomes {
		if errors.Is(out.Err, context.Canceled) {
			canceled++
		}
	}
	if canceled == 0 {
		t.Fatal("expected at least one unit to report cancellation")
	}
}

func TestRunKeepsValueWhenCacheWriteFails(t *testing.T) {
	cacheDir := filepath.Join(t.TempDir(), "cache")
	stores, err := cache.Open(cacheDir, logging.NewNop())
	if err != nil {
		t.Fatalf("open stores: %v", err)
	}
	dir := t.TempDir()
	unit := writeUnit(t, dir, "scan.png", "image bytes", media.CategoryOpticalText)

	// Replace the cache directory with a regular file so every lock acquire
	// and document write fails underneath the pool.
	if err := os.RemoveAll(cacheDir); err != nil {
		t.Fatalf("remove cache dir: %v", err)
	}
	if err := os.WriteFile(cacheDir, []byte("not a directory"), 0o644); err != nil {
		t.Fatalf("block cache dir: %v", err)
	}

	resources := &Resources{OCR: ocrFunc(func(ctx context.Context, path string) (string, error) {
		return "computed anyway", nil
	})}
	p := newPool(t, 1, stores, staticResources(resources))

	out := p.Run(context.Background(), []media.Unit{unit})[0]
	if !out.Succeeded() {
		t.Fatalf("a broken cache must not fail the unit: %v", out.Err)
	}
	if out.Value.Text() != "computed anyway" {
		t.Fatalf("unexpected value %q", out.Value.Text())
	}
	if out.FromCache {
		t.Fatal("broken cache cannot produce a hit")
	}
}

func TestRunLogsCarryUnitAnnotations(t *testing.T) {
	cacheDir := filepath.Join(t.TempDir(), "cache")
	stores, err := cache.Open(cacheDir, logging.NewNop())
	if err != nil {
		t.Fatalf("open stores: %v", err)
	}
	dir := t.TempDir()
	unit := writeUnit(t, dir, "scan.png", "image bytes", media.CategoryOpticalText)

	// Break the cache directory so the write path warns, then inspect the
	// warning for the unit annotations.
	if err := os.RemoveAll(cacheDir); err != nil {
		t.Fatalf("remove cache dir: %v", err)
	}
	if err := os.WriteFile(cacheDir, []byte("not a directory"), 0o644); err != nil {
		t.Fatalf("block cache dir: %v", err)
	}

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	resources := &Resources{OCR: ocrFunc(func(ctx context.Context, path string) (string, error) {
		return "computed", nil
	})}
	p, err := New(Config{Workers: 1, Stores: stores, NewResources: staticResources(resources), Logger: logger})
	if err != nil {
		t.Fatalf("new pool: %v", err)
	}

	out := p.Run(context.Background(), []media.Unit{unit})[0]
	if !out.Succeeded() {
		t.Fatalf("unexpected failure: %v", out.Err)
	}

	logs := buf.String()
	for _, field := range []string{
		logging.FieldUnitPath + "=",
		logging.FieldCategory + "=",
		logging.FieldWorkerID + "=",
		logging.FieldCorrelationID + "=",
	} {
		if !strings.Contains(logs, field) {
			t.Errorf("log output missing %q:\n%s", field, logs)
		}
	}
	if !strings.Contains(logs, out.RequestID) {
		t.Errorf("log output should carry the unit's correlation id %s:\n%s", out.RequestID, logs)
	}
}

func TestRunRejectsMisconfiguredResources(t *testing.T) {
	stores := openStores(t)
	dir := t.TempDir()
	unit := writeUnit(t, dir, "talk.mp3", "audio bytes", media.CategoryTranscription)

	// OCR-only bundle handed a transcription unit.
	resources := &Resources{OCR: ocrFunc(func(ctx context.Context, path string) (string, error) {
		return "ok", nil
	})}
	p := newPool(t, 1, stores, staticResources(resources))

	out := p.Run(context.Background(), []media.Unit{unit})[0]
	if out.Succeeded() {
		t.Fatal("expected a configuration failure")
	}
}
