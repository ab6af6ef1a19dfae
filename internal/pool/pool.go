package pool

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"

	"curator/internal/cache"
	"curator/internal/fingerprint"
	"curator/internal/logging"
	"curator/internal/media"
	"curator/internal/services"
)

// Config carries the pool's collaborators.
type Config struct {
	// Workers is the fixed number of concurrent workers. Must be at least 1.
	Workers int

	// Stores provides the shared result caches. Required.
	Stores *cache.Stores

	// NewResources builds one worker's private collaborator bundle. Required.
	NewResources ResourceFactory

	Logger *slog.Logger
}

// Pool runs units of work across a fixed set of workers. Each worker owns a
// private resource bundle built once at startup; the shared caches are the
// only collaborators workers touch concurrently.
type Pool struct {
	workers      int
	stores       *cache.Stores
	newResources ResourceFactory
	logger       *slog.Logger
}

// New validates cfg and builds a pool.
func New(cfg Config) (*Pool, error) {
	if cfg.Workers < 1 {
		return nil, fmt.Errorf("pool requires at least one worker, got %d", cfg.Workers)
	}
	if cfg.Stores == nil {
		return nil, errors.New("pool requires cache stores")
	}
	if cfg.NewResources == nil {
		return nil, errors.New("pool requires a resource factory")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Pool{
		workers:      cfg.Workers,
		stores:       cfg.Stores,
		newResources: cfg.NewResources,
		logger:       logging.NewComponentLogger(logger, "pool"),
	}, nil
}

// Run processes every unit and returns one outcome per unit. Units are
// distributed to whichever worker is free next; ordering of the returned
// outcomes is not the submission order. Run blocks until all workers have
// drained. When ctx is canceled, in-flight units finish their current step
// and unstarted units come back with the context error.
func (p *Pool) Run(ctx context.Context, units []media.Unit) []Outcome {
	if len(units) == 0 {
		return nil
	}

	work := make(chan media.Unit)
	results := make(chan Outcome, len(units))
	workersExited := make(chan struct{})

	var wg sync.WaitGroup
	for id := 1; id <= p.workers; id++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			p.runWorker(ctx, workerID, work, results)
		}(id)
	}
	go func() {
		wg.Wait()
		close(workersExited)
	}()

	// Feed units until every one is handed off, the context dies, or no
	// worker remains to receive. The results channel holds len(units)
	// entries, so failure outcomes for leftover units always fit.
	dispatched := 0
feed:
	for _, unit := range units {
		select {
		case work <- unit:
			dispatched++
		case <-ctx.Done():
			break feed
		case <-workersExited:
			break feed
		}
	}
	close(work)

	for _, unit := range units[dispatched:] {
		err := ctx.Err()
		if err == nil {
			err = errors.New("no workers available")
		}
		results <- Outcome{Unit: unit, Err: err}
	}

	<-workersExited
	close(results)

	outcomes := make([]Outcome, 0, len(units))
	for outcome := range results {
		outcomes = append(outcomes, outcome)
	}
	return outcomes
}

func (p *Pool) runWorker(ctx context.Context, workerID int, work <-chan media.Unit, results chan<- Outcome) {
	resources, err := p.newResources(ctx, workerID)
	if err != nil {
		// This worker never enters service; the remaining workers absorb the
		// load. Units it would have taken stay on the channel.
		logging.ErrorWithContext(p.logger, "worker startup failed", "worker_init_failed",
			logging.Error(err),
			logging.Int(logging.FieldWorkerID, workerID))
		return
	}
	defer resources.Close()

	for unit := range work {
		results <- p.processUnit(ctx, workerID, resources, unit)
	}
}

// processUnit runs the fingerprint, cache lookup, compute, and cache write
// for one unit. Panics in collaborator code are confined to the unit.
func (p *Pool) processUnit(ctx context.Context, workerID int, resources *Resources, unit media.Unit) (outcome Outcome) {
	requestID := uuid.NewString()
	start := time.Now()

	ctx = services.WithUnitPath(ctx, unit.Path)
	ctx = services.WithCategory(ctx, string(unit.Category))
	ctx = services.WithWorkerID(ctx, workerID)
	ctx = services.WithRequestID(ctx, requestID)

	// Every log line for this unit carries the path, category, worker, and
	// correlation id without the handlers repeating them.
	logger := logging.WithContext(ctx, p.logger)

	outcome = Outcome{Unit: unit, WorkerID: workerID, RequestID: requestID}
	defer func() {
		if r := recover(); r != nil {
			logger.Error("unit processing panicked",
				logging.String("stack", string(debug.Stack())))
			outcome.Err = fmt.Errorf("processing %s: panic: %v", unit.Path, r)
			outcome.Value = media.Result{}
		}
		outcome.Duration = time.Since(start)
	}()

	if err := resources.validateFor(unit.Category); err != nil {
		outcome.Err = services.Wrap(services.ErrConfiguration, "pool", "process", err.Error(), nil)
		return outcome
	}

	switch unit.Category {
	case media.CategoryOpticalText:
		p.processOpticalText(ctx, logger, resources, unit, &outcome)
	case media.CategoryTranscription:
		p.processTranscription(ctx, logger, resources, unit, &outcome)
	case media.CategorySummary:
		p.processSummary(ctx, logger, resources, unit, &outcome)
	default:
		outcome.Err = fmt.Errorf("unknown category %q for %s", unit.Category, unit.Path)
	}
	return outcome
}

func (p *Pool) processOpticalText(ctx context.Context, logger *slog.Logger, resources *Resources, unit media.Unit, outcome *Outcome) {
	fp, err := fingerprint.File(unit.Path)
	if err != nil {
		outcome.Err = fmt.Errorf("fingerprinting %s: %w", unit.Path, err)
		return
	}
	outcome.Fingerprint = fp

	if value, ok := lookup(ctx, logger, p.stores.OpticalText, fp); ok {
		outcome.Value = media.OpticalTextResult(value)
		outcome.FromCache = true
		return
	}

	text, err := resources.OCR.RecognizeText(ctx, unit.Path)
	if err != nil {
		outcome.Err = err
		return
	}
	outcome.Value = media.OpticalTextResult(text)
	persist(ctx, logger, p.stores.OpticalText, fp, text)
}

func (p *Pool) processTranscription(ctx context.Context, logger *slog.Logger, resources *Resources, unit media.Unit, outcome *Outcome) {
	fp, err := fingerprint.File(unit.Path)
	if err != nil {
		outcome.Err = fmt.Errorf("fingerprinting %s: %w", unit.Path, err)
		return
	}
	outcome.Fingerprint = fp

	if value, ok := lookup(ctx, logger, p.stores.Transcription, fp); ok {
		outcome.Value = media.TranscriptionResult(value)
		outcome.FromCache = true
		return
	}

	transcription, err := resources.Transcriber.Transcribe(ctx, unit.Path)
	if err != nil {
		outcome.Err = err
		return
	}
	outcome.Value = media.TranscriptionResult(transcription)
	persist(ctx, logger, p.stores.Transcription, fp, transcription)
}

func (p *Pool) processSummary(ctx context.Context, logger *slog.Logger, resources *Resources, unit media.Unit, outcome *Outcome) {
	prompt, err := resources.Prompter.BuildPrompt(ctx, unit.Path)
	if err != nil {
		outcome.Err = fmt.Errorf("building prompt for %s: %w", unit.Path, err)
		return
	}

	// Summary units key on the exact prompt text, not the file contents:
	// the same file under a different prompt is a different request.
	fp := fingerprint.Text(prompt)
	outcome.Fingerprint = fp

	if value, ok := lookup(ctx, logger, p.stores.Summary, fp); ok {
		outcome.Value = media.SummaryResult(value)
		outcome.FromCache = true
		return
	}

	summary, err := resources.Summarizer.Summarize(ctx, prompt)
	if err != nil {
		outcome.Err = err
		return
	}
	outcome.Value = media.SummaryResult(summary)
	persist(ctx, logger, p.stores.Summary, fp, summary)
}

// lookup reads the cache. A read failure is logged and treated as a miss so
// a sick cache degrades to recomputation instead of failing the unit.
func lookup[V any](ctx context.Context, logger *slog.Logger, store *cache.Store[V], fp string) (V, bool) {
	value, ok, err := store.Get(ctx, fp)
	if err != nil {
		logging.WarnWithContext(logger, "cache read failed, recomputing", "cache_read_failed",
			logging.Error(err),
			logging.String(logging.FieldFingerprint, fp),
			logging.String(logging.FieldImpact, "result recomputed without cache"))
		var zero V
		return zero, false
	}
	return value, ok
}

// persist writes the computed value back. A write failure is logged and
// swallowed: the unit already has its value, the cache just missed a fill.
func persist[V any](ctx context.Context, logger *slog.Logger, store *cache.Store[V], fp string, value V) {
	if err := store.Set(ctx, fp, value); err != nil {
		logging.WarnWithContext(logger, "cache write failed, result kept", "cache_write_failed",
			logging.Error(err),
			logging.String(logging.FieldFingerprint, fp),
			logging.String(logging.FieldImpact, "next run recomputes this unit"))
	}
}
