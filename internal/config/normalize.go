package config

import (
	"fmt"
	"os"
	"strings"
)

// EnvDataRoot supplies paths.data_root when the file leaves it empty.
const EnvDataRoot = "SESSIONLOCATOR_DATA_ROOT"

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTables()
	c.normalizeCache()
	c.normalizeLogging()
	c.DateFormatID = strings.TrimSpace(c.DateFormatID)
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	c.Paths.DataRoot = strings.TrimSpace(c.Paths.DataRoot)
	if c.Paths.DataRoot == "" {
		if value, ok := os.LookupEnv(EnvDataRoot); ok {
			c.Paths.DataRoot = strings.TrimSpace(value)
		}
	}
	if c.Paths.DataRoot, err = expandPath(c.Paths.DataRoot); err != nil {
		return fmt.Errorf("paths.data_root: %w", err)
	}
	if strings.TrimSpace(c.Paths.OutputRoot) == "" {
		c.Paths.OutputRoot = defaultOutputRoot
	}
	if c.Paths.OutputRoot, err = expandPath(c.Paths.OutputRoot); err != nil {
		return fmt.Errorf("paths.output_root: %w", err)
	}
	if strings.TrimSpace(c.Paths.CacheDir) == "" {
		c.Paths.CacheDir = defaultCacheDir()
	}
	if c.Paths.CacheDir, err = expandPath(c.Paths.CacheDir); err != nil {
		return fmt.Errorf("paths.cache_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeTables() {
	subdirs := make(map[string]string, len(c.Paths.Subdirs))
	for key, dir := range c.Paths.Subdirs {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		subdirs[key] = strings.TrimSpace(dir)
	}
	c.Paths.Subdirs = subdirs

	extensions := make(map[string]string, len(c.Extensions))
	for ext, key := range c.Extensions {
		ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")
		if ext == "" {
			continue
		}
		extensions[ext] = strings.TrimSpace(key)
	}
	c.Extensions = extensions

	subjects := make(map[string]string, len(c.Subjects))
	for code, name := range c.Subjects {
		code = strings.TrimSpace(code)
		if code == "" {
			continue
		}
		subjects[code] = strings.TrimSpace(name)
	}
	c.Subjects = subjects
}

func (c *Config) normalizeCache() {
	c.Cache.Backend = strings.ToLower(strings.TrimSpace(c.Cache.Backend))
	if c.Cache.Backend == "" {
		c.Cache.Backend = defaultCacheBackend
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
