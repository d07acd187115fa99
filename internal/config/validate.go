package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"sessionlocator/internal/datefmt"
)

// Validate rejects structurally invalid values. Missing values that only some
// commands need are reported by the accessors instead.
func (c *Config) Validate() error {
	if err := c.validateDateFormat(); err != nil {
		return err
	}
	if err := c.validateExtensions(); err != nil {
		return err
	}
	if err := c.validateSubjects(); err != nil {
		return err
	}
	if err := c.validateCache(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateDateFormat() error {
	if c.DateFormatID == "" {
		return nil
	}
	if _, err := datefmt.Resolve(c.DateFormatID); err != nil {
		return fmt.Errorf("date_format: %w (supported: %s)", err, strings.Join(datefmt.Supported(), ", "))
	}
	return nil
}

func (c *Config) validateExtensions() error {
	exts := make([]string, 0, len(c.Extensions))
	for ext := range c.Extensions {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	for _, ext := range exts {
		key := c.Extensions[ext]
		if key == "" {
			return fmt.Errorf("extensions.%s must name a paths.subdirs key", ext)
		}
		if key == KeyDataRoot || key == KeyDataOutput {
			continue
		}
		if _, ok := c.Paths.Subdirs[key]; !ok {
			return fmt.Errorf("extensions.%s refers to unknown paths.subdirs key %q", ext, key)
		}
	}
	return nil
}

func (c *Config) validateSubjects() error {
	for code, name := range c.Subjects {
		if name == "" {
			return fmt.Errorf("subjects.%s must not be empty", code)
		}
	}
	return nil
}

func (c *Config) validateCache() error {
	switch c.Cache.Backend {
	case BackendFile, BackendSQLite:
		return nil
	default:
		return fmt.Errorf("cache.backend: unsupported value %q (use %q or %q)", c.Cache.Backend, BackendFile, BackendSQLite)
	}
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return errors.New("logging.level must be one of debug, info, warn, error")
	}
}
