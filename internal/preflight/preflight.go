package preflight

import (
	"sitephoto/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes every check that applies to folder under cfg.
// Override files are only checked when configured.
func RunAll(cfg *config.Config, folder string) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Photo folder", folder),
		CheckStateDir(cfg, folder),
		CheckImages(folder),
	}
	if cfg.Activity.DictionaryPath != "" {
		results = append(results, CheckDictionary(cfg.Activity.DictionaryPath))
	}
	if cfg.Scene.MeasureLexiconPath != "" {
		results = append(results, CheckLexicon(cfg.Scene.MeasureLexiconPath))
	}
	return results
}

// FirstFailure returns the first failed result, if any.
func FirstFailure(results []Result) (Result, bool) {
	for _, r := range results {
		if !r.Passed {
			return r, true
		}
	}
	return Result{}, false
}
