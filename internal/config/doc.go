// Package config loads, normalizes, and validates sessionlocator configuration.
//
// It supplies defaults, expands user paths (including tilde shortcuts), reads
// TOML files, and honours environment fallbacks such as SESSIONLOCATOR_CONFIG
// and SESSIONLOCATOR_DATA_ROOT. Values the locator cannot work without (the
// date format, the data root, the subject table) are checked where they are
// used rather than at load time, so commands that do not need them keep
// working with a partial file.
package config
