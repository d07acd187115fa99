package preflight

import (
	"sort"

	"sessionlocator/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll checks the data root, every directory an extension is mapped to,
// and the writable directories named in cfg. Unset optional paths are
// skipped.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	root, err := cfg.DataRoot()
	if err != nil {
		results = append(results, Result{Name: "Data root", Detail: err.Error()})
	} else {
		results = append(results, CheckDirectoryAccess("Data root", root, false))
	}

	exts := make([]string, 0, len(cfg.Extensions))
	for ext := range cfg.Extensions {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	for _, ext := range exts {
		name := "Scan root (." + ext + ")"
		dir, err := cfg.DirectoryForExtension(ext)
		if err != nil {
			results = append(results, Result{Name: name, Detail: err.Error()})
			continue
		}
		results = append(results, CheckDirectoryAccess(name, dir, false))
	}

	if cfg.Paths.OutputRoot != "" {
		results = append(results, CheckDirectoryAccess("Output directory", cfg.Paths.OutputRoot, true))
	}
	if cfg.Paths.CacheDir != "" {
		results = append(results, CheckDirectoryAccess("Cache directory", cfg.Paths.CacheDir, true))
	}
	if cfg.Paths.LogDir != "" {
		results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir, true))
	}
	return results
}

// AllPassed reports whether every result passed.
func AllPassed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return false
		}
	}
	return true
}
