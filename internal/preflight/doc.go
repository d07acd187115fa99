// Package preflight provides readiness checks for the filesystem paths the
// locator depends on.
//
// The CLI "check" command runs RunAll and prints one line per path. Scan
// roots only need to be readable; the output and cache directories must also
// be writable. A failing cache directory is not fatal for lookups, which fall
// back to memory-only caching.
package preflight
