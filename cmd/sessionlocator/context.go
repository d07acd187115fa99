package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"sessionlocator/internal/config"
	"sessionlocator/internal/filecache"
	"sessionlocator/internal/logging"
	"sessionlocator/internal/scan"
	"sessionlocator/internal/sessions"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configSeen bool
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	closeLog   func() error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, exists, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
		c.configSeen = exists
	})
	return c.config, c.configErr
}

func (c *commandContext) loggerValue() *slog.Logger {
	c.loggerOnce.Do(func() {
		logger, closeLog, err := logging.NewFromConfig(c.config)
		if err != nil {
			fmt.Fprintf(os.Stderr, "logging disabled: %v\n", err)
			logger = logging.NewNop()
		}
		c.logger = logger
		c.closeLog = closeLog
	})
	return c.logger
}

// close releases the log file, if one was opened.
func (c *commandContext) close() error {
	if c.closeLog == nil {
		return nil
	}
	return c.closeLog()
}

// openCache builds a cache over the configured persisted tier. Callers must
// Close it.
func (c *commandContext) openCache() (*filecache.Cache, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger := c.loggerValue()
	return filecache.New(filecache.Options{
		Scanner: scan.New(cfg.Cache.StrictScan, logger),
		Store:   filecache.OpenStore(cfg, logger),
		Logger:  logger,
	})
}

func (c *commandContext) withFinder(fn func(*sessions.Finder) error) error {
	cache, err := c.openCache()
	if err != nil {
		return err
	}
	defer cache.Close()
	return fn(sessions.NewFinder(cache, c.config, c.loggerValue()))
}

// resolveDir returns args[0] when given, otherwise the directory configured
// for ext.
func (c *commandContext) resolveDir(ext string, args []string) (string, error) {
	if len(args) > 0 && strings.TrimSpace(args[0]) != "" {
		return config.ExpandPath(strings.TrimSpace(args[0]))
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return "", err
	}
	return cfg.DirectoryForExtension(ext)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
