package preflight

import (
	"time"

	"bget/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name    string
	Passed  bool
	Warning bool
	Detail  string
}

// RunAll executes the offline checks for cfg. Directories are expected to
// exist already (config.EnsureDirectories).
func RunAll(cfg *config.Config, now time.Time) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Output directory", cfg.Paths.OutputDir),
		CheckDirectoryAccess("Cache directory", cfg.Paths.CacheDir),
		CheckCookies(cfg.Paths.Cookies, now),
	}

	if cfg.Has(config.SwitchVideo) || cfg.Has(config.SwitchAudio) {
		for _, status := range CheckSystemDeps(cfg) {
			r := Result{Name: status.Name, Passed: status.Available, Detail: status.Path}
			if !status.Available {
				r.Detail = status.Detail
			}
			results = append(results, r)
		}
	}
	return results
}

// Warnings returns the results that passed with a caveat.
func Warnings(results []Result) []Result {
	var warned []Result
	for _, r := range results {
		if r.Passed && r.Warning {
			warned = append(warned, r)
		}
	}
	return warned
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}
