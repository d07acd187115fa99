// Package sessions turns cached directory listings into dated recording
// files.
//
// A Finder asks the file cache for candidate paths, resolves the configured
// date format once per call, and keeps only files whose base name carries a
// valid calendar date. Subject lookups additionally restrict results to
// files whose name contains the subject's configured name.
package sessions
