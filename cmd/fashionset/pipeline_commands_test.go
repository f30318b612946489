package main

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"fashionset/internal/fsutil"
	"fashionset/internal/preflight"
	"fashionset/internal/runlog"
	"fashionset/internal/testsupport"
)

func TestPolyvoreCommandRecordsHistory(t *testing.T) {
	env := setupCLITestEnv(t)
	writePolyvoreFixture(t, env.cfg.Polyvore.RootDir)

	out, _, err := runCLI(t, []string{"polyvore", "--outfits", "2", "--outfit-file", "disjoint/train.json", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("polyvore: %v", err)
	}
	var result struct {
		RunID     string           `json:"run_id"`
		Pipeline  string           `json:"pipeline"`
		OutputDir string           `json:"output_dir"`
		Counts    map[string]int64 `json:"counts"`
	}
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if result.Pipeline != "polyvore" || result.Counts["sampled_outfits"] != 2 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if want := filepath.Join(env.cfg.Polyvore.RootDir, "polyvore_subset_2"); result.OutputDir != want {
		t.Fatalf("output dir = %q, want %q", result.OutputDir, want)
	}

	out, _, err = runCLI(t, []string{"history", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	var runs []runlog.Run
	if err := json.Unmarshal([]byte(out), &runs); err != nil {
		t.Fatalf("decode history: %v\n%s", err, out)
	}
	if len(runs) != 1 || runs[0].ID != result.RunID || runs[0].Status != runlog.StatusCompleted {
		t.Fatalf("unexpected history: %+v", runs)
	}
	if len(runs[0].Counts) != len(result.Counts) {
		t.Fatalf("history counts differ: %v vs %v", runs[0].Counts, result.Counts)
	}
	for k, v := range result.Counts {
		if runs[0].Counts[k] != v {
			t.Fatalf("history count %s = %d, summary printed %d", k, runs[0].Counts[k], v)
		}
	}

	out, _, err = runCLI(t, []string{"history"}, env.configPath)
	if err != nil {
		t.Fatalf("history table: %v", err)
	}
	requireContains(t, out, "polyvore")
	requireContains(t, out, result.RunID[:8])
}

func TestPolyvoreCommandTableSummary(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithHistoryDisabled())
	writePolyvoreFixture(t, env.cfg.Polyvore.RootDir)

	out, _, err := runCLI(t, []string{"polyvore", "--outfit-file", "disjoint/train.json", "-n", "10"}, env.configPath)
	if err != nil {
		t.Fatalf("polyvore: %v", err)
	}
	requireContains(t, out, "Sampled outfits")
	requireContains(t, out, "Warning: only 3 outfits available")
}

func TestPolyvoreCommandRefusesLockedOutput(t *testing.T) {
	env := setupCLITestEnv(t)
	writePolyvoreFixture(t, env.cfg.Polyvore.RootDir)
	out := filepath.Join(env.baseDir, "locked")

	lock, err := fsutil.LockDir(out)
	if err != nil {
		t.Fatalf("LockDir: %v", err)
	}
	defer lock.Unlock()

	_, _, err = runCLI(t, []string{"polyvore", "--outfit-file", "disjoint/train.json", "--out", out}, env.configPath)
	if !errors.Is(err, fsutil.ErrOutputLocked) {
		t.Fatalf("expected ErrOutputLocked, got %v", err)
	}
}

func TestSubsetCommandMissingInput(t *testing.T) {
	env := setupCLITestEnv(t)
	missing := filepath.Join(env.baseDir, "nope.json")

	_, _, err := runCLI(t, []string{"subset", "--coco-json", missing, "--images-dir", env.baseDir}, env.configPath)
	if !errors.Is(err, preflight.ErrInputMissing) {
		t.Fatalf("expected ErrInputMissing, got %v", err)
	}
}

func TestDeepFashion2ThenSubset(t *testing.T) {
	env := setupCLITestEnv(t)
	root := env.cfg.DeepFashion2.RootDir
	for _, stem := range []string{"000001", "000002", "000003"} {
		testsupport.WriteJPEG(t, filepath.Join(root, "train", "image", stem+".jpg"), 4, 4)
		testsupport.WriteText(t, filepath.Join(root, "train", "annos", stem+".json"),
			`{"item1": {"category_id": 1, "bounding_box": [0, 0, 2, 2], "segmentation": [0,0,2,0,2,2]}}`)
	}

	out, _, err := runCLI(t, []string{"deepfashion2", "--splits", "train,val"}, env.configPath)
	if err != nil {
		t.Fatalf("deepfashion2: %v", err)
	}
	requireContains(t, out, "train: images")
	requireContains(t, out, `Warning: split "val" not found`)

	subsetOut := filepath.Join(env.baseDir, "subset")
	out, _, err = runCLI(t, []string{
		"subset",
		"--coco-json", filepath.Join(root, "train_coco.json"),
		"--images-dir", filepath.Join(root, "train", "image"),
		"--out-dir", subsetOut,
		"--n-images", "2",
		"--json",
	}, env.configPath)
	if err != nil {
		t.Fatalf("subset: %v", err)
	}
	var result struct {
		Counts map[string]int64 `json:"counts"`
	}
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if result.Counts["sampled_images"] != 2 || result.Counts["sampled_annotations"] != 2 || result.Counts["images_copied"] != 2 {
		t.Fatalf("unexpected counts: %v", result.Counts)
	}
}

func TestFailedRunsAreRecorded(t *testing.T) {
	env := setupCLITestEnv(t)
	missing := filepath.Join(env.baseDir, "nope.json")

	_, _, runErr := runCLI(t, []string{"subset", "--coco-json", missing, "--images-dir", env.baseDir}, env.configPath)
	if !errors.Is(runErr, preflight.ErrInputMissing) {
		t.Fatalf("expected ErrInputMissing, got %v", runErr)
	}

	writePolyvoreFixture(t, env.cfg.Polyvore.RootDir)
	out := filepath.Join(env.baseDir, "locked")
	lock, err := fsutil.LockDir(out)
	if err != nil {
		t.Fatalf("LockDir: %v", err)
	}
	defer lock.Unlock()
	if _, _, err := runCLI(t, []string{"polyvore", "--outfit-file", "disjoint/train.json", "--out", out}, env.configPath); !errors.Is(err, fsutil.ErrOutputLocked) {
		t.Fatalf("expected ErrOutputLocked, got %v", err)
	}

	stdout, _, err := runCLI(t, []string{"history", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	var runs []runlog.Run
	if err := json.Unmarshal([]byte(stdout), &runs); err != nil {
		t.Fatalf("decode history: %v\n%s", err, stdout)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 recorded runs, got %d: %+v", len(runs), runs)
	}
	byPipeline := map[string]runlog.Run{}
	for _, r := range runs {
		if r.Status != runlog.StatusFailed || r.Error == "" {
			t.Fatalf("run %s: status=%q error=%q", r.Pipeline, r.Status, r.Error)
		}
		byPipeline[r.Pipeline] = r
	}
	if r, ok := byPipeline["subset"]; !ok || r.Error != runErr.Error() {
		t.Fatalf("subset failure not recorded with its error: %+v", byPipeline)
	}
	if r, ok := byPipeline["polyvore"]; !ok || r.OutputDir != out {
		t.Fatalf("locked polyvore run not recorded: %+v", byPipeline)
	}
}
