package main

import (
	"context"
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"fashionset/internal/config"
	"fashionset/internal/polyvore"
	"fashionset/internal/preflight"
	"fashionset/internal/progress"
	"fashionset/internal/report"
)

func newPolyvoreCommand(ctx *commandContext) *cobra.Command {
	var (
		rootDir     string
		outputDir   string
		outfitFiles []string
		outfits     int
		minItems    int
		trainRatio  float64
		seed        uint64
		jsonOutput  bool
	)

	cmd := &cobra.Command{
		Use:   "polyvore",
		Short: "Extract a seeded outfit subset from the Polyvore dataset",
		Long: `Classify every Polyvore item into top, bottom, outerwear or dress, keep
outfits with enough usable items, sample them, split train/val and copy the
referenced images next to items_subset.json, outfits_train_subset.json and
outfits_val_subset.json.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			cfg := *base
			flags := cmd.Flags()
			if flags.Changed("root") {
				cfg.Polyvore.RootDir = rootDir
			}
			if flags.Changed("out") {
				cfg.Polyvore.OutputDir = outputDir
			}
			if flags.Changed("outfit-file") {
				cfg.Polyvore.OutfitFiles = outfitFiles
			}
			if flags.Changed("outfits") {
				cfg.Polyvore.Outfits = outfits
			}
			if flags.Changed("min-items") {
				cfg.Polyvore.MinItems = minItems
			}
			if flags.Changed("train-ratio") {
				cfg.Polyvore.TrainRatio = trainRatio
			}
			if flags.Changed("seed") {
				cfg.Polyvore.Seed = seed
			}
			if err := cfg.Normalize(); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if cfg.Polyvore.RootDir == "" {
				return errors.New("polyvore root directory not set (use --root or polyvore.root_dir)")
			}
			return runPipeline(cmd, ctx, polyvoreRun(&cfg), jsonOutput)
		},
	}

	cmd.Flags().StringVar(&rootDir, "root", "", "Polyvore dataset root directory")
	cmd.Flags().StringVar(&outputDir, "out", "", "Output directory (default <root>/polyvore_subset_<outfits>)")
	cmd.Flags().StringSliceVar(&outfitFiles, "outfit-file", nil, "Outfit file relative to root (repeatable)")
	cmd.Flags().IntVarP(&outfits, "outfits", "n", 0, "Number of outfits to sample")
	cmd.Flags().IntVar(&minItems, "min-items", 0, "Minimum usable items per outfit")
	cmd.Flags().Float64Var(&trainRatio, "train-ratio", 0, "Share of sampled outfits in the train split")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "Sampling seed")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the run summary as JSON")
	return cmd
}

func polyvoreRun(cfg *config.Config) pipelineRun {
	opts := polyvore.Options{
		ItemMetadata:    cfg.PolyvoreItemMetadataPath(),
		CategoriesCSV:   cfg.PolyvoreCategoriesPath(),
		ImagesDir:       cfg.PolyvoreImagesPath(),
		OutfitFiles:     cfg.PolyvoreOutfitPaths(),
		OutputDir:       cfg.PolyvoreOutputDir(),
		Outfits:         cfg.Polyvore.Outfits,
		MinItems:        cfg.Polyvore.MinItems,
		TrainRatio:      cfg.Polyvore.TrainRatio,
		Seed:            cfg.Polyvore.Seed,
		ImageExtensions: cfg.Polyvore.ImageExtensions,
	}

	files := map[string]string{
		"item metadata":  opts.ItemMetadata,
		"category table": opts.CategoriesCSV,
	}
	for _, path := range opts.OutfitFiles {
		files["outfit file "+path] = path
	}

	return pipelineRun{
		name:      polyvore.PipelineName,
		seed:      opts.Seed,
		outputDir: opts.OutputDir,
		plan: preflight.Plan{
			Files:  files,
			Dirs:   map[string]string{"images directory": opts.ImagesDir},
			Output: opts.OutputDir,
		},
		execute: func(ctx context.Context, logger *slog.Logger, reporter progress.Reporter) (report.Summary, error) {
			res, err := polyvore.NewRunner(opts, logger, reporter).Run(ctx)
			if err != nil {
				return nil, err
			}
			return res, nil
		},
	}
}
