package preflight

import (
	"context"
	"strings"

	"assetvault/internal/config"
	"assetvault/internal/deps"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the filesystem checks for the configured library and, when
// thumbnails are enabled, the external renderer checks. Missing renderers
// are reported but do not fail the run.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Library directory", cfg.Paths.LibraryDir),
		CheckDirectoryAccess("Vault directory", cfg.Paths.VaultDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
	}
	if cfg.Thumbnails.Enabled {
		results = append(results, CheckDirectoryAccess("Thumbnail directory", cfg.Paths.ThumbnailDir))
	}
	results = append(results, CheckFreeSpace("Vault free space", cfg.Paths.VaultDir, minFreeBytes))

	if !cfg.Thumbnails.Enabled {
		return results
	}
	if ctx.Err() != nil {
		return results
	}
	statuses := CheckThumbnailTools(cfg)
	for _, status := range statuses {
		detail := status.Path
		if !status.Found {
			detail = status.Problem
		}
		results = append(results, Result{Name: status.Name, Passed: true, Detail: detail})
	}
	coverage := Result{Name: "Thumbnail coverage", Passed: true, Detail: "all kinds renderable"}
	if missing := deps.MissingKinds(statuses); len(missing) > 0 {
		coverage.Detail = "no renderer for " + strings.Join(missing, ", ")
	}
	return append(results, coverage)
}

// Failed returns the checks that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}
