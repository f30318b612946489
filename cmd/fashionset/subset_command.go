package main

import (
	"context"
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"fashionset/internal/coco"
	"fashionset/internal/config"
	"fashionset/internal/preflight"
	"fashionset/internal/progress"
	"fashionset/internal/report"
)

func newSubsetCommand(ctx *commandContext) *cobra.Command {
	var (
		cocoJSON   string
		imagesDir  string
		outputDir  string
		images     int
		seed       uint64
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "subset",
		Short: "Sample a smaller dataset from a COCO annotation file",
		Long: `Sample images from a COCO annotation file, keep only their annotations and
copy the images into <out-dir>/images next to <out-dir>/annotations.json.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			cfg := *base
			flags := cmd.Flags()
			if flags.Changed("coco-json") {
				cfg.COCOSubset.COCOJSON = cocoJSON
			}
			if flags.Changed("images-dir") {
				cfg.COCOSubset.ImagesDir = imagesDir
			}
			if flags.Changed("out-dir") {
				cfg.COCOSubset.OutputDir = outputDir
			}
			if flags.Changed("n-images") {
				cfg.COCOSubset.Images = images
			}
			if flags.Changed("seed") {
				cfg.COCOSubset.Seed = seed
			}
			if err := cfg.Normalize(); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if cfg.COCOSubset.OutputDir == "" {
				return errors.New("subset output directory not set (use --out-dir or coco_subset.output_dir)")
			}
			return runPipeline(cmd, ctx, subsetRun(&cfg), jsonOutput)
		},
	}

	cmd.Flags().StringVar(&cocoJSON, "coco-json", "", "Source COCO annotation file")
	cmd.Flags().StringVar(&imagesDir, "images-dir", "", "Directory holding the images referenced by the source file")
	cmd.Flags().StringVar(&outputDir, "out-dir", "", "Output directory for images/ and annotations.json")
	cmd.Flags().IntVar(&images, "n-images", 0, "Number of images to sample")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "Sampling seed")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the run summary as JSON")
	return cmd
}

func subsetRun(cfg *config.Config) pipelineRun {
	opts := coco.SubsetOptions{
		COCOJSON:  cfg.COCOSubset.COCOJSON,
		ImagesDir: cfg.COCOSubset.ImagesDir,
		OutputDir: cfg.COCOSubset.OutputDir,
		Images:    cfg.COCOSubset.Images,
		Seed:      cfg.COCOSubset.Seed,
	}
	return pipelineRun{
		name:      coco.SubsetPipeline,
		seed:      opts.Seed,
		outputDir: opts.OutputDir,
		plan: preflight.Plan{
			Files:  map[string]string{"coco json": opts.COCOJSON},
			Dirs:   map[string]string{"images directory": opts.ImagesDir},
			Output: opts.OutputDir,
		},
		execute: func(ctx context.Context, logger *slog.Logger, reporter progress.Reporter) (report.Summary, error) {
			res, err := coco.NewSubsetter(opts, logger, reporter).Run(ctx)
			if err != nil {
				return nil, err
			}
			return res, nil
		},
	}
}
