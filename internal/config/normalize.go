package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeGrouping()
	if err := c.normalizeActivity(); err != nil {
		return err
	}
	if err := c.normalizeScene(); err != nil {
		return err
	}
	c.normalizeIngest()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.StateDirName = strings.TrimSpace(c.Paths.StateDirName)
	if c.Paths.StateDirName == "" {
		c.Paths.StateDirName = defaultStateDirName
	}
	return nil
}

func (c *Config) normalizeGrouping() {
	c.Grouping.Profile = strings.ToLower(strings.TrimSpace(c.Grouping.Profile))
	if c.Grouping.Profile == "" {
		c.Grouping.Profile = ProfileMachine
	}
	if value, ok := os.LookupEnv(envAttachmentKeywordOverride); ok && strings.TrimSpace(value) != "" {
		c.Grouping.AttachmentKeyword = value
	}
	c.Grouping.AttachmentKeyword = strings.TrimSpace(c.Grouping.AttachmentKeyword)
	if c.Grouping.AttachmentKeyword == "" {
		c.Grouping.AttachmentKeyword = defaultAttachmentKeyword
	}
	c.Grouping.AttachmentPrefix = strings.TrimSpace(c.Grouping.AttachmentPrefix)
	if c.Grouping.AttachmentPrefix == "" {
		c.Grouping.AttachmentPrefix = c.Grouping.AttachmentKeyword
	}
	if c.Grouping.SegmentGapSeconds == 0 {
		c.Grouping.SegmentGapSeconds = defaultSegmentGapSeconds
	}
}

func (c *Config) normalizeActivity() error {
	if c.Activity.GapMinutes == 0 {
		c.Activity.GapMinutes = defaultActivityGapMinutes
	}
	if c.Activity.TopK == 0 {
		c.Activity.TopK = defaultActivityTopK
	}
	c.Activity.FallbackLabel = strings.TrimSpace(c.Activity.FallbackLabel)
	if c.Activity.FallbackLabel == "" {
		c.Activity.FallbackLabel = defaultActivityFallbackLabel
	}
	if strings.TrimSpace(c.Activity.DictionaryPath) != "" {
		var err error
		if c.Activity.DictionaryPath, err = expandPath(strings.TrimSpace(c.Activity.DictionaryPath)); err != nil {
			return fmt.Errorf("activity.dictionary_path: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizeScene() error {
	if strings.TrimSpace(c.Scene.MeasureLexiconPath) != "" {
		var err error
		if c.Scene.MeasureLexiconPath, err = expandPath(strings.TrimSpace(c.Scene.MeasureLexiconPath)); err != nil {
			return fmt.Errorf("scene.measure_lexicon_path: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizeIngest() {
	if c.Ingest.BatchSize <= 0 {
		c.Ingest.BatchSize = defaultIngestBatchSize
	}
	if c.Ingest.Concurrency <= 0 {
		c.Ingest.Concurrency = defaultIngestConcurrency
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	if value, ok := os.LookupEnv(envLogLevel); ok && strings.TrimSpace(value) != "" {
		c.Logging.Level = value
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
