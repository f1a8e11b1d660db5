package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory locations used by the CLI.
type Paths struct {
	LogDir       string `toml:"log_dir"`
	StateDirName string `toml:"state_dir_name"`
}

// Grouping contains configuration for identity normalization and temporal
// clustering.
type Grouping struct {
	// Profile selects the segment gap used by the group command: "machine"
	// uses SegmentGapSeconds, "activity" uses the activity gap.
	Profile           string `toml:"profile"`
	AttachmentKeyword string `toml:"attachment_keyword"`
	AttachmentPrefix  string `toml:"attachment_prefix"`
	SegmentGapSeconds int    `toml:"segment_gap_seconds"`
}

// Activity contains configuration for activity-folder naming.
type Activity struct {
	GapMinutes     int    `toml:"gap_minutes"`
	TopK           int    `toml:"top_k"`
	DictionaryPath string `toml:"dictionary_path"`
	FallbackLabel  string `toml:"fallback_label"`
}

// Scene contains configuration for scene-type inference from detected objects.
type Scene struct {
	BoardThreshold         float64 `toml:"board_threshold"`
	MeasureThreshold       float64 `toml:"measure_threshold"`
	IncludeElectronicBoard bool    `toml:"include_electronic_board"`
	MeasureLexiconPath     string  `toml:"measure_lexicon_path"`
}

// Ingest contains configuration for annotation import and batch dispatch.
type Ingest struct {
	BatchSize   int  `toml:"batch_size"`
	Concurrency int  `toml:"concurrency"`
	ReadEXIF    bool `toml:"read_exif"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for sitephoto.
//
// Configuration sections by subsystem:
//   - Paths: log directory and per-folder state directory name
//   - Grouping: attachment-road keyword/prefix and segment gap
//   - Activity: gap-carry window, keyword count, dictionary overrides
//   - Scene: area-ratio thresholds and measure lexicon overrides
//   - Ingest: batch sizing and EXIF capture-time lookup
//   - Logging: log format and level
type Config struct {
	Paths    Paths    `toml:"paths"`
	Grouping Grouping `toml:"grouping"`
	Activity Activity `toml:"activity"`
	Scene    Scene    `toml:"scene"`
	Ingest   Ingest   `toml:"ingest"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("sitephoto.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the log directory.
func (c *Config) EnsureDirectories() error {
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return nil
	}
	if err := os.MkdirAll(c.Paths.LogDir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", c.Paths.LogDir, err)
	}
	return nil
}

// StateDir returns the per-folder directory holding the photo database and lock.
func (c *Config) StateDir(folder string) string {
	return filepath.Join(folder, c.Paths.StateDirName)
}

// SegmentGapSeconds returns the clustering gap for the named profile. An empty
// profile uses the configured default.
func (c *Config) SegmentGapSeconds(profile string) int64 {
	profile = strings.ToLower(strings.TrimSpace(profile))
	if profile == "" {
		profile = c.Grouping.Profile
	}
	if profile == ProfileActivity {
		return int64(c.Activity.GapMinutes) * 60
	}
	return int64(c.Grouping.SegmentGapSeconds)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
