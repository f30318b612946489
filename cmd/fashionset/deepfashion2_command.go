package main

import (
	"context"
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"fashionset/internal/config"
	"fashionset/internal/deepfashion2"
	"fashionset/internal/preflight"
	"fashionset/internal/progress"
	"fashionset/internal/report"
)

func newDeepFashion2Command(ctx *commandContext) *cobra.Command {
	var (
		rootDir    string
		outputDir  string
		splits     []string
		fallback   string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:     "deepfashion2",
		Aliases: []string{"df2"},
		Short:   "Convert DeepFashion2 splits into COCO annotation files",
		Long: `Merge the per-image annotation files under <root>/<split>/annos into
<split>_coco.json. Splits without a directory are skipped with a warning.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			cfg := *base
			flags := cmd.Flags()
			if flags.Changed("root") {
				cfg.DeepFashion2.RootDir = rootDir
			}
			if flags.Changed("out-dir") {
				cfg.DeepFashion2.OutputDir = outputDir
			}
			if flags.Changed("splits") {
				cfg.DeepFashion2.Splits = splits
			}
			if flags.Changed("segmentation-fallback") {
				cfg.DeepFashion2.SegmentationFallback = fallback
			}
			if err := cfg.Normalize(); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if cfg.DeepFashion2.RootDir == "" {
				return errors.New("deepfashion2 root directory not set (use --root or deepfashion2.root_dir)")
			}
			return runPipeline(cmd, ctx, deepFashion2Run(&cfg), jsonOutput)
		},
	}

	cmd.Flags().StringVar(&rootDir, "root", "", "DeepFashion2 root directory containing train/, val/, test/")
	cmd.Flags().StringVar(&outputDir, "out-dir", "", "Directory for <split>_coco.json (default: root)")
	cmd.Flags().StringSliceVar(&splits, "splits", nil, "Splits to convert")
	cmd.Flags().StringVar(&fallback, "segmentation-fallback", "", "Items without polygons: drop or bbox")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the run summary as JSON")
	return cmd
}

func deepFashion2Run(cfg *config.Config) pipelineRun {
	opts := deepfashion2.Options{
		RootDir:              cfg.DeepFashion2.RootDir,
		OutputDir:            cfg.DeepFashion2.OutputDir,
		Splits:               cfg.DeepFashion2.Splits,
		SegmentationFallback: cfg.DeepFashion2.SegmentationFallback,
		ImageExtensions:      cfg.DeepFashion2.ImageExtensions,
	}
	outputDir := opts.OutputDir
	if outputDir == "" {
		outputDir = opts.RootDir
	}

	return pipelineRun{
		name:      deepfashion2.PipelineName,
		outputDir: outputDir,
		plan: preflight.Plan{
			Dirs:   map[string]string{"deepfashion2 root": opts.RootDir},
			Output: outputDir,
		},
		execute: func(ctx context.Context, logger *slog.Logger, reporter progress.Reporter) (report.Summary, error) {
			res, err := deepfashion2.NewConverter(opts, logger, reporter).Run(ctx)
			if err != nil {
				return nil, err
			}
			return res, nil
		},
	}
}
