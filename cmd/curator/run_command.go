package main

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"curator/internal/config"
	"curator/internal/media"
	"curator/internal/pipeline"
	"curator/internal/pool"
	"curator/internal/services/ollama"
	"curator/internal/services/tesseract"
	"curator/internal/services/whisper"
)

// timeRounding trims sub-millisecond noise from displayed durations.
const timeRounding = time.Millisecond

func newRunCommand(ctx *commandContext) *cobra.Command {
	var sourceFlag string
	var checkOnly bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Analyze the source directory, reusing cached results",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			sourceDir := strings.TrimSpace(sourceFlag)
			if sourceDir == "" {
				sourceDir = cfg.Paths.SourceDir
			}
			if sourceDir == "" {
				return fmt.Errorf("no source directory: set paths.source_dir or pass --source")
			}
			expanded, err := config.ExpandPath(sourceDir)
			if err != nil {
				return fmt.Errorf("resolve source directory: %w", err)
			}
			sourceDir = expanded

			out := cmd.OutOrStdout()
			checks := pipeline.Preflight(cmd.Context(), cfg)
			printPreflight(out, checks)
			if checkOnly {
				return nil
			}

			logger, err := ctx.newLogger()
			if err != nil {
				return err
			}
			stores, err := ctx.openStores(logger)
			if err != nil {
				return err
			}

			orch, err := pipeline.New(pipeline.Config{
				Config:       cfg,
				Stores:       stores,
				Scanner:      &directoryScanner{dir: sourceDir},
				Sink:         &tableSink{out: out},
				NewResources: newBridgeFactory(cfg),
				Logger:       logger,
			})
			if err != nil {
				return err
			}

			_, err = orch.Run(cmd.Context())
			return err
		},
	}

	cmd.Flags().StringVarP(&sourceFlag, "source", "s", "", "Directory to analyze (defaults to paths.source_dir)")
	cmd.Flags().BoolVar(&checkOnly, "check", false, "Run preflight checks and exit")
	return cmd
}

// newBridgeFactory wires the shipped collaborator bridges into a per-worker
// resource bundle. Each worker gets its own client and service instances.
func newBridgeFactory(cfg *config.Config) pool.ResourceFactory {
	return func(ctx context.Context, workerID int) (*pool.Resources, error) {
		summarizer := ollama.NewClient(ollama.Config{
			BaseURL:        cfg.Ollama.BaseURL,
			Model:          cfg.Ollama.Model,
			TimeoutSeconds: cfg.Ollama.TimeoutSeconds,
		})
		return &pool.Resources{
			OCR: tesseract.NewService(tesseract.Config{
				Binary:    cfg.OCR.Binary,
				Languages: cfg.OCR.Languages,
			}),
			Transcriber: whisper.NewService(whisper.Config{
				Binary: cfg.Transcriber.Binary,
				Model:  cfg.Transcriber.Model,
			}),
			Summarizer: summarizer,
		}, nil
	}
}

// directoryScanner walks one directory tree and reports every regular file.
// Ignore and classification decisions stay with the orchestrator.
type directoryScanner struct {
	dir string
}

func (s *directoryScanner) Scan(ctx context.Context) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(s.dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if entry.IsDir() {
			if path != s.dir && media.Ignored(entry.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", s.dir, err)
	}
	return paths, nil
}

// tableSink renders the run report as a summary line plus a per-unit table.
type tableSink struct {
	out io.Writer
}

func (s *tableSink) Deliver(ctx context.Context, report pipeline.Report) error {
	colorize := shouldColorize(s.out)
	fmt.Fprintln(s.out, renderSectionHeader("Run report", colorize))
	fmt.Fprintf(s.out, "%d analyzed, %d cached, %d failed, %d skipped, %d stale locks swept (%s)\n",
		len(report.Outcomes), report.CacheHits(), report.Failed(), len(report.Skipped), report.SweptLocks,
		report.Duration.Round(timeRounding))

	if len(report.Outcomes) == 0 {
		return nil
	}

	rows := make([][]string, 0, len(report.Outcomes))
	for _, outcome := range report.Outcomes {
		status := "ok"
		if !outcome.Succeeded() {
			status = "failed: " + outcome.Err.Error()
		}
		rows = append(rows, []string{
			filepath.Base(outcome.Unit.Path),
			string(outcome.Unit.Category),
			yesNo(outcome.FromCache),
			outcome.Duration.Round(timeRounding).String(),
			status,
		})
	}
	fmt.Fprintln(s.out, renderTable(
		[]string{"File", "Category", "Cached", "Duration", "Status"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
	))
	return nil
}

func printPreflight(out io.Writer, checks []pipeline.CheckResult) {
	rows := make([][]string, 0, len(checks))
	for _, check := range checks {
		status := "ok"
		if !check.Passed {
			status = "FAIL"
		}
		rows = append(rows, []string{check.Name, status, check.Detail})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Check", "Status", "Detail"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft},
	))
}
