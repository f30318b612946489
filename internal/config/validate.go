package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable. Input paths are not checked
// here; they are only required by the command that consumes them.
func (c *Config) Validate() error {
	if err := c.validatePolyvore(); err != nil {
		return err
	}
	if err := c.validateDeepFashion2(); err != nil {
		return err
	}
	return c.validateCOCOSubset()
}

func (c *Config) validatePolyvore() error {
	if err := ensurePositiveMap(map[string]int{
		"polyvore.outfits": c.Polyvore.Outfits,
	}); err != nil {
		return err
	}
	if c.Polyvore.MinItems < 0 {
		return errors.New("polyvore.min_items must be >= 0")
	}
	if c.Polyvore.TrainRatio <= 0 || c.Polyvore.TrainRatio > 1 {
		return errors.New("polyvore.train_ratio must be in (0, 1]")
	}
	return nil
}

func (c *Config) validateDeepFashion2() error {
	switch c.DeepFashion2.SegmentationFallback {
	case FallbackDrop, FallbackBBox:
	default:
		return fmt.Errorf("deepfashion2.segmentation_fallback must be %q or %q, got %q",
			FallbackDrop, FallbackBBox, c.DeepFashion2.SegmentationFallback)
	}
	return nil
}

func (c *Config) validateCOCOSubset() error {
	return ensurePositiveMap(map[string]int{
		"coco_subset.images": c.COCOSubset.Images,
	})
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
