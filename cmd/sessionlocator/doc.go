// Package main hosts the sessionlocator CLI.
//
// The Cobra command tree resolves configuration once per invocation, opens
// the file cache with the configured persisted backend, and surfaces listing,
// dated-file, and per-subject session lookups alongside cache and
// configuration maintenance. Lookup logic lives in internal packages; the
// commands here only parse flags and render results.
package main
