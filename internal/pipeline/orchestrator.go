package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"curator/internal/cache"
	"curator/internal/config"
	"curator/internal/lockfile"
	"curator/internal/logging"
	"curator/internal/media"
	"curator/internal/pool"
)

// Scanner produces the candidate file paths for one run. Implementations own
// discovery policy: a flat directory, a watch list, an explicit argument
// list.
type Scanner interface {
	Scan(ctx context.Context) ([]string, error)
}

// Sink receives the finished report. Implementations render it, persist it,
// or ship it elsewhere.
type Sink interface {
	Deliver(ctx context.Context, report Report) error
}

// Report aggregates everything one run produced.
type Report struct {
	Outcomes []pool.Outcome

	// Skipped lists scanned paths that never became units: housekeeping
	// files and files of no recognizable category.
	Skipped []string

	// SweptLocks counts stale lock tokens removed before the run.
	SweptLocks int

	Duration time.Duration
}

// Succeeded counts units that produced a usable value.
func (r Report) Succeeded() int {
	n := 0
	for _, out := range r.Outcomes {
		if out.Succeeded() {
			n++
		}
	}
	return n
}

// Failed counts units that ended in an error.
func (r Report) Failed() int {
	return len(r.Outcomes) - r.Succeeded()
}

// CacheHits counts units served from the result cache.
func (r Report) CacheHits() int {
	n := 0
	for _, out := range r.Outcomes {
		if out.FromCache {
			n++
		}
	}
	return n
}

// Config carries the orchestrator's collaborators.
type Config struct {
	Config       *config.Config
	Stores       *cache.Stores
	Scanner      Scanner
	NewResources pool.ResourceFactory

	// Sink is optional; a nil sink keeps the report in the return value only.
	Sink Sink

	Logger *slog.Logger
}

// Orchestrator runs the analysis pipeline end to end.
type Orchestrator struct {
	cfg     *config.Config
	stores  *cache.Stores
	scanner Scanner
	sink    Sink
	pool    *pool.Pool
	prompts *promptTable
	logger  *slog.Logger
}

// New validates cfg and builds an orchestrator.
func New(cfg Config) (*Orchestrator, error) {
	if cfg.Config == nil {
		return nil, errors.New("orchestrator requires configuration")
	}
	if cfg.Stores == nil {
		return nil, errors.New("orchestrator requires cache stores")
	}
	if cfg.Scanner == nil {
		return nil, errors.New("orchestrator requires a scanner")
	}
	if cfg.NewResources == nil {
		return nil, errors.New("orchestrator requires a resource factory")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	// Summary prompts are materialized by the orchestrator from extraction
	// results, so the prompt builder is injected here unless the factory
	// supplies its own. The table is read-only by the time workers see it.
	prompts := newPromptTable()
	factory := cfg.NewResources
	wrapped := func(ctx context.Context, workerID int) (*pool.Resources, error) {
		resources, err := factory(ctx, workerID)
		if resources != nil && resources.Prompter == nil {
			resources.Prompter = prompts
		}
		return resources, err
	}

	workPool, err := pool.New(pool.Config{
		Workers:      cfg.Config.Workers.Count,
		Stores:       cfg.Stores,
		NewResources: wrapped,
		Logger:       logger,
	})
	if err != nil {
		return nil, fmt.Errorf("build worker pool: %w", err)
	}

	return &Orchestrator{
		cfg:     cfg.Config,
		stores:  cfg.Stores,
		scanner: cfg.Scanner,
		sink:    cfg.Sink,
		pool:    workPool,
		prompts: prompts,
		logger:  logging.NewComponentLogger(logger, "pipeline"),
	}, nil
}

// Run executes one full pass: sweep stale lock tokens, scan, classify,
// extract, summarize what produced text, deliver. Scan and delivery failures
// abort the run; a failed sweep only logs, since live analysis can proceed
// over leftover tokens.
func (o *Orchestrator) Run(ctx context.Context) (Report, error) {
	start := time.Now()
	report := Report{}

	swept, err := lockfile.SweepStale(o.stores.Dir, o.logger)
	if err != nil {
		logging.WarnWithContext(o.logger, "stale lock sweep incomplete", "lock_sweep_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "leftover lock tokens may remain"))
	}
	report.SweptLocks = swept

	paths, err := o.scanner.Scan(ctx)
	if err != nil {
		return report, fmt.Errorf("scan source: %w", err)
	}

	units := make([]media.Unit, 0, len(paths))
	for _, path := range paths {
		if media.Ignored(filepath.Base(path)) {
			report.Skipped = append(report.Skipped, path)
			continue
		}
		category, ok := media.Classify(path)
		if !ok {
			report.Skipped = append(report.Skipped, path)
			continue
		}
		units = append(units, media.Unit{Path: path, Category: category})
	}

	o.logger.Info("run starting",
		logging.Int("units", len(units)),
		logging.Int("skipped", len(report.Skipped)),
		logging.Int("swept_locks", swept),
		logging.Int("workers", o.cfg.Workers.Count))

	report.Outcomes = o.pool.Run(ctx, units)

	// Every extraction that produced text chains a summary unit, keyed on
	// the exact prompt built from the file name and the extracted text.
	summaryUnits := make([]media.Unit, 0, len(report.Outcomes))
	for _, outcome := range report.Outcomes {
		if !outcome.Succeeded() {
			continue
		}
		prompt, ok := summaryPromptFor(outcome)
		if !ok {
			continue
		}
		o.prompts.set(outcome.Unit.Path, prompt)
		summaryUnits = append(summaryUnits, media.Unit{Path: outcome.Unit.Path, Category: media.CategorySummary})
	}
	if len(summaryUnits) > 0 {
		o.logger.Info("summarizing extracted text", logging.Int("units", len(summaryUnits)))
		report.Outcomes = append(report.Outcomes, o.pool.Run(ctx, summaryUnits)...)
	}

	report.Duration = time.Since(start)

	o.logger.Info("run finished",
		logging.Int("succeeded", report.Succeeded()),
		logging.Int("failed", report.Failed()),
		logging.Int("cache_hits", report.CacheHits()),
		logging.Duration("duration", report.Duration))

	if o.sink != nil {
		if err := o.sink.Deliver(ctx, report); err != nil {
			return report, fmt.Errorf("deliver report: %w", err)
		}
	}
	return report, nil
}
