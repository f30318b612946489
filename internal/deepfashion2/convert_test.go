package deepfashion2_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"fashionset/internal/coco"
	"fashionset/internal/deepfashion2"
	"fashionset/internal/preflight"
	"fashionset/internal/testsupport"
)

func writeSplit(t *testing.T, root string) {
	t.Helper()
	split := filepath.Join(root, "train")
	testsupport.WriteJPEG(t, filepath.Join(split, "image", "000001.jpg"), 8, 6)
	testsupport.WritePNG(t, filepath.Join(split, "image", "000002.png"), 5, 4)

	testsupport.WriteText(t, filepath.Join(split, "annos", "000001.json"), `{
		"source": "user",
		"pair_id": 1,
		"item2": {"category_id": 7, "bounding_box": [10, 10, 10, 10], "segmentation": [[1,2,3,4,5,6]]},
		"item1": {"category_id": 1, "bounding_box": [1, 1, 5, 4], "segmentation": [[1,1,5,1,5,4]]},
		"item3": {"category_id": 9, "bounding_box": [0, 0, 2, 2], "segmentation": [1,2,3,4]}
	}`)
	testsupport.WriteText(t, filepath.Join(split, "annos", "000002.json"), `{
		"item1": {"category_id": "13", "bounding_box": [0, 0, 4, 3], "segmentation": [0,0,4,0,4,3]}
	}`)
	testsupport.WriteText(t, filepath.Join(split, "annos", "000003.json"), `{
		"item1": {"category_id": 2, "bounding_box": [0, 0, 4, 3], "segmentation": [0,0,4,0,4,3]}
	}`)
	testsupport.WriteText(t, filepath.Join(split, "annos", "notes.txt"), "ignored")
}

func TestConvertSplit(t *testing.T) {
	root := t.TempDir()
	writeSplit(t, root)

	conv := deepfashion2.NewConverter(deepfashion2.Options{RootDir: root, Splits: []string{"train", "val"}}, nil, nil)
	res, err := conv.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	val, ok := res.Split("val")
	if !ok || !val.Skipped {
		t.Fatalf("expected val to be skipped: %+v", val)
	}
	if _, err := os.Stat(filepath.Join(root, "val_coco.json")); !os.IsNotExist(err) {
		t.Fatal("skipped split must not produce output")
	}

	train, _ := res.Split("train")
	if train.AnnotationFiles != 3 || train.Images != 2 || train.MissingImages != 1 {
		t.Fatalf("unexpected image counts: %+v", train)
	}
	if train.Annotations != 2 || train.ItemsSkipped[deepfashion2.SkipEmptyBox] != 1 || train.ItemsSkipped[deepfashion2.SkipSegmentation] != 1 {
		t.Fatalf("unexpected item counts: %+v", train)
	}

	var ds coco.Dataset
	testsupport.ReadJSON(t, filepath.Join(root, "train_coco.json"), &ds)
	if len(ds.Images) != train.Images || len(ds.Annotations) != train.Annotations || len(ds.Categories) != 13 {
		t.Fatalf("output differs from summary: %d images, %d annotations, %d categories", len(ds.Images), len(ds.Annotations), len(ds.Categories))
	}
	if ds.Images[0] != (coco.Image{ID: 1, FileName: "000001.jpg", Width: 8, Height: 6}) {
		t.Fatalf("unexpected first image: %+v", ds.Images[0])
	}
	if ds.Images[1] != (coco.Image{ID: 2, FileName: "000002.png", Width: 5, Height: 4}) {
		t.Fatalf("unexpected second image: %+v", ds.Images[1])
	}

	first := ds.Annotations[0]
	if first.ID != 1 || first.ImageID != 1 || first.CategoryID != 1 || first.BBox != [4]float64{1, 1, 4, 3} || first.Area != 12 || first.IsCrowd != 0 {
		t.Fatalf("unexpected first annotation: %+v", first)
	}
	second := ds.Annotations[1]
	if second.ID != 2 || second.ImageID != 2 || second.CategoryID != 13 {
		t.Fatalf("unexpected second annotation: %+v", second)
	}
}

func TestConvertBBoxFallback(t *testing.T) {
	root := t.TempDir()
	writeSplit(t, root)
	out := filepath.Join(t.TempDir(), "coco")

	res, err := deepfashion2.NewConverter(deepfashion2.Options{
		RootDir:              root,
		OutputDir:            out,
		Splits:               []string{"train"},
		SegmentationFallback: deepfashion2.FallbackBBox,
	}, nil, nil).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	train, _ := res.Split("train")
	if train.Annotations != 3 || train.BBoxFallbacks != 1 {
		t.Fatalf("expected the segmentation-less item to be kept: %+v", train)
	}
	if _, err := os.Stat(filepath.Join(out, "train_coco.json")); err != nil {
		t.Fatalf("output not written to out dir: %v", err)
	}
}

func TestConvertRequiresAnnosAndImageDirs(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "test", "annos"), 0o755); err != nil {
		t.Fatal(err)
	}
	_, err := deepfashion2.NewConverter(deepfashion2.Options{RootDir: root, Splits: []string{"test"}}, nil, nil).Run(context.Background())
	if !errors.Is(err, preflight.ErrInputMissing) {
		t.Fatalf("expected ErrInputMissing, got %v", err)
	}
	if _, statErr := os.Stat(filepath.Join(root, "test_coco.json")); !os.IsNotExist(statErr) {
		t.Fatal("no output may be written for a failed split")
	}
}

func TestConvertRejectsMalformedAnnotation(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteJPEG(t, filepath.Join(root, "train", "image", "000001.jpg"), 2, 2)
	testsupport.WriteText(t, filepath.Join(root, "train", "annos", "000001.json"), `{"item1": `)
	if _, err := deepfashion2.NewConverter(deepfashion2.Options{RootDir: root, Splits: []string{"train"}}, nil, nil).Run(context.Background()); err == nil {
		t.Fatal("expected parse error")
	}
}
