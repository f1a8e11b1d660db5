package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateGrouping(); err != nil {
		return err
	}
	if err := c.validateActivity(); err != nil {
		return err
	}
	if err := c.validateScene(); err != nil {
		return err
	}
	if err := c.validateIngest(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateGrouping() error {
	switch c.Grouping.Profile {
	case ProfileMachine, ProfileActivity:
	default:
		return fmt.Errorf("grouping.profile must be %q or %q, got %q", ProfileMachine, ProfileActivity, c.Grouping.Profile)
	}
	if strings.TrimSpace(c.Grouping.AttachmentKeyword) == "" {
		return errors.New("grouping.attachment_keyword must be set")
	}
	if c.Grouping.SegmentGapSeconds < 0 {
		return errors.New("grouping.segment_gap_seconds must be >= 0")
	}
	return nil
}

func (c *Config) validateActivity() error {
	if c.Activity.GapMinutes < 0 {
		return errors.New("activity.gap_minutes must be >= 0")
	}
	if c.Activity.TopK < 1 {
		return errors.New("activity.top_k must be >= 1")
	}
	return nil
}

func (c *Config) validateScene() error {
	if c.Scene.BoardThreshold < 0 || c.Scene.BoardThreshold > 1 {
		return errors.New("scene.board_threshold must be between 0 and 1")
	}
	if c.Scene.MeasureThreshold < 0 || c.Scene.MeasureThreshold > 1 {
		return errors.New("scene.measure_threshold must be between 0 and 1")
	}
	return nil
}

func (c *Config) validateIngest() error {
	return ensurePositiveMap(map[string]int{
		"ingest.batch_size":  c.Ingest.BatchSize,
		"ingest.concurrency": c.Ingest.Concurrency,
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
