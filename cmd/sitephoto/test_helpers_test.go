package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"sitephoto/internal/annotation"
	"sitephoto/internal/ingest"
	"sitephoto/internal/testsupport"
)

type cliTestEnv struct {
	configPath string
	folder     string
	baseDir    string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("SITEPHOTO_LOG_LEVEL", "")

	configPath := filepath.Join(homeDir, ".config", "sitephoto", "config.toml")
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	writeTestConfig(t, configPath, filepath.Join(base, "logs"))

	folder := filepath.Join(base, "photos")
	if err := os.MkdirAll(folder, 0o755); err != nil {
		t.Fatalf("mkdir photos: %v", err)
	}
	return &cliTestEnv{configPath: configPath, folder: folder, baseDir: base}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path, logDir string) {
	t.Helper()
	content := fmt.Sprintf("[paths]\nlog_dir = %q\n\n[logging]\nlevel = \"error\"\n", logDir)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

// writeJournal writes photos as a JSONL journal and their placeholder images
// into env.folder.
func (env *cliTestEnv) writeJournal(t *testing.T, photos ...annotation.Photo) string {
	t.Helper()
	path := filepath.Join(env.baseDir, "annotations.jsonl")
	if err := ingest.AppendJSONL(path, photos...); err != nil {
		t.Fatalf("write journal: %v", err)
	}
	for _, p := range photos {
		testsupport.WriteImages(t, env.folder, p.File)
	}
	return path
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
