package preflight

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"sitephoto/internal/activity"
	"sitephoto/internal/config"
	"sitephoto/internal/ingest"
	"sitephoto/internal/scene"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckStateDir passes when the state directory is absent or writable.
func CheckStateDir(cfg *config.Config, folder string) Result {
	const name = "State directory"
	path := cfg.StateDir(folder)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (created on first import)", path)}
	}
	return CheckDirectoryAccess(name, path)
}

// CheckImages counts the image files directly under folder.
func CheckImages(folder string) Result {
	const name = "Images"
	paths, err := ingest.CollectImages(folder)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("scan failed (%v)", err)}
	}
	if len(paths) == 0 {
		return Result{Name: name, Detail: "no jpg/png/heic files found"}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%d files", len(paths))}
}

// CheckDictionary verifies that an activity dictionary override parses.
func CheckDictionary(path string) Result {
	const name = "Activity dictionary"
	dict, err := activity.LoadDictionary(path)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%d allowlist terms)", path, len(dict.Allowlist))}
}

// CheckLexicon verifies that a measure lexicon override has terms.
func CheckLexicon(path string) Result {
	const name = "Measure lexicon"
	terms, err := scene.LoadLexicon(path)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%d terms)", path, len(terms))}
}
