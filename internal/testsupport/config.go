package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"sitephoto/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config whose log directory lives under a per-test temp
// directory. Options are applied in order.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Logging.Level = "debug"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithProfile selects the grouping profile.
func WithProfile(profile string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Grouping.Profile = profile
	}
}

// WithAttachmentPrefix overrides the identity prefix written for attachment-road photos.
func WithAttachmentPrefix(prefix string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Grouping.AttachmentPrefix = prefix
	}
}

// WithLexicon writes terms to a lexicon file and points the scene config at it.
func WithLexicon(terms ...string) ConfigOption {
	return func(b *configBuilder) {
		path := filepath.Join(b.baseDir, "lexicon.txt")
		var data []byte
		for _, term := range terms {
			data = append(data, term...)
			data = append(data, '\n')
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			b.t.Fatalf("write lexicon: %v", err)
		}
		b.cfg.Scene.MeasureLexiconPath = path
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.LogDir)
}
