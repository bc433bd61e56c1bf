package preflight

import (
	"context"

	"buildmsa/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// MinScratchBytes is the free space required in the scratch directory.
const MinScratchBytes = 1 << 30

// RunAll executes the preflight checks for cfg. The input check is skipped
// when input is empty.
func RunAll(ctx context.Context, cfg *config.Config, input string) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	if input != "" {
		results = append(results, CheckInput(input))
	}
	results = append(results,
		CheckDirectoryTarget("Output directory", cfg.Paths.OutputDir),
		CheckDirectoryTarget("Scratch directory", cfg.Paths.ScratchDir),
		CheckFreeSpace("Scratch free space", cfg.Paths.ScratchDir, MinScratchBytes),
		CheckDatabase("NR database", cfg.DatabasePath(cfg.Databases.NR)),
		CheckDatabase("Redundant database", cfg.DatabasePath(cfg.Databases.Redundant)),
	)
	for _, status := range CheckSystemDeps(ctx, cfg) {
		result := Result{Name: status.Name, Passed: status.Available, Detail: status.Detail}
		if status.Available {
			result.Detail = status.Resolved
		}
		results = append(results, result)
	}
	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.Passed {
			out = append(out, r)
		}
	}
	return out
}
