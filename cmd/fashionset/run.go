package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"fashionset/internal/config"
	"fashionset/internal/fsutil"
	"fashionset/internal/logging"
	"fashionset/internal/preflight"
	"fashionset/internal/progress"
	"fashionset/internal/report"
	"fashionset/internal/runlog"
)

// pipelineRun is one invocation of a dataset pipeline.
type pipelineRun struct {
	name      string
	seed      uint64
	outputDir string
	plan      preflight.Plan
	execute   func(ctx context.Context, logger *slog.Logger, reporter progress.Reporter) (report.Summary, error)
}

// runResult is what --json prints.
type runResult struct {
	RunID     string           `json:"run_id"`
	Pipeline  string           `json:"pipeline"`
	OutputDir string           `json:"output_dir"`
	Duration  string           `json:"duration"`
	Counts    map[string]int64 `json:"counts"`
	Warnings  []string         `json:"warnings,omitempty"`
	Details   report.Summary   `json:"details"`
}

// runPipeline checks inputs, locks the output directory, runs the pipeline
// and records the outcome in the history ledger.
func runPipeline(cmd *cobra.Command, cc *commandContext, run pipelineRun, jsonOutput bool) error {
	cfg, err := cc.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := cc.ensureLogger()
	if err != nil {
		return err
	}

	runID := runlog.NewID()
	ctx := logging.WithPipeline(logging.WithRunID(cmd.Context(), runID), run.name)
	runLogger := logging.WithContext(ctx, logger)
	started := time.Now()
	entry := runlog.Run{
		ID:         runID,
		Pipeline:   run.name,
		Status:     runlog.StatusCompleted,
		Seed:       run.seed,
		OutputDir:  run.outputDir,
		ConfigPath: cc.configPath,
		StartedAt:  started,
	}
	fail := func(err error) error {
		entry.Status = runlog.StatusFailed
		entry.Error = err.Error()
		entry.FinishedAt = time.Now()
		recordHistory(ctx, cfg, entry, runLogger)
		runLogger.Error("run failed", logging.Error(err))
		return err
	}

	if err := preflight.Check(run.plan, runLogger); err != nil {
		return fail(err)
	}

	lock, err := fsutil.LockDir(run.outputDir)
	if err != nil {
		return fail(err)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			runLogger.Warn("release output lock failed", logging.Error(err))
		}
	}()

	runLogger.Info("run started",
		logging.OutputDir(run.outputDir),
		logging.Uint64("seed", run.seed),
	)
	summary, err := run.execute(ctx, logger, progress.New(cmd.ErrOrStderr(), runLogger))
	if err != nil {
		return fail(err)
	}
	entry.FinishedAt = time.Now()
	entry.Counts = report.Map(summary.Counts())
	entry.Warnings = summary.Warnings()
	recordHistory(ctx, cfg, entry, runLogger)
	elapsed := entry.Duration()
	runLogger.Info("run finished", logging.Duration("duration", elapsed))

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), runResult{
			RunID:     runID,
			Pipeline:  run.name,
			OutputDir: run.outputDir,
			Duration:  elapsed.Round(time.Millisecond).String(),
			Counts:    entry.Counts,
			Warnings:  entry.Warnings,
			Details:   summary,
		})
	}
	fmt.Fprint(cmd.OutOrStdout(), renderSummary(runID, summary, elapsed))
	return nil
}

func recordHistory(ctx context.Context, cfg *config.Config, run runlog.Run, logger *slog.Logger) {
	if !cfg.History.Enabled {
		return
	}
	store, err := runlog.Open(cfg.History.Path)
	if err != nil {
		logging.WarnWithContext(logger, "history unavailable", "history_open",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check history.path or set history.enabled = false"),
			logging.String(logging.FieldImpact, "run not recorded"),
		)
		return
	}
	defer store.Close()
	if _, err := store.Record(context.WithoutCancel(ctx), run); err != nil {
		logging.WarnWithContext(logger, "history write failed", "history_record",
			logging.Error(err),
			logging.String(logging.FieldImpact, "run not recorded"),
		)
	}
}
