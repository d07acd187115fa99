package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// EnvConfigPath names the environment variable consulted for the config file
// location when no explicit path is given.
const EnvConfigPath = "SESSIONLOCATOR_CONFIG"

// Paths contains the directory layout of the recording archive.
type Paths struct {
	DataRoot   string            `toml:"data_root"`
	OutputRoot string            `toml:"output_root"`
	CacheDir   string            `toml:"cache_dir"`
	LogDir     string            `toml:"log_dir"`
	Subdirs    map[string]string `toml:"subdirs"`
}

// Cache contains settings for the file-listing cache.
type Cache struct {
	Backend    string `toml:"backend"`
	StrictScan bool   `toml:"strict_scan"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values.
//
//   - DateFormatID: date layout embedded in session file names
//   - Paths: data root, output root, named subdirectories, cache and log dirs
//   - Extensions: file extension -> Paths.Subdirs key
//   - Subjects: subject code -> name used in file names
//   - Cache: persisted tier backend and missing-root strictness
//   - Logging: log format and level
type Config struct {
	DateFormatID string            `toml:"date_format"`
	Paths        Paths             `toml:"paths"`
	Extensions   map[string]string `toml:"extensions"`
	Subjects     map[string]string `toml:"subjects"`
	Cache        Cache             `toml:"cache"`
	Logging      Logging           `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/sessionlocator/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. A path named explicitly
// (argument or SESSIONLOCATOR_CONFIG) must exist; otherwise defaults are used
// when no file is found. Unknown keys are rejected so typos surface early.
func Load(path string) (*Config, string, bool, error) {
	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	cfg := Default()
	if exists {
		if err := decodeFile(resolvedPath, &cfg); err != nil {
			return nil, "", false, err
		}
	}
	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolvedPath, exists, nil
}

func decodeFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	err = dec.Decode(cfg)
	if err == nil {
		return nil
	}

	var strict *toml.StrictMissingError
	if errors.As(err, &strict) {
		return fmt.Errorf("config %s has unknown keys:\n%s", path, strict.String())
	}
	var decodeErr *toml.DecodeError
	if errors.As(err, &decodeErr) {
		row, col := decodeErr.Position()
		return fmt.Errorf("parse config %s:%d:%d: %w", path, row, col, err)
	}
	return fmt.Errorf("parse config %s: %w", path, err)
}

func resolveConfigPath(path string) (string, bool, error) {
	explicit := strings.TrimSpace(path)
	source := "config file"
	if explicit == "" {
		if env, ok := os.LookupEnv(EnvConfigPath); ok && strings.TrimSpace(env) != "" {
			explicit = strings.TrimSpace(env)
			source = "config file from " + EnvConfigPath
		}
	}
	if explicit != "" {
		expanded, err := expandPath(explicit)
		if err != nil {
			return "", false, err
		}
		info, err := os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return "", false, fmt.Errorf("%s not found: %s", source, expanded)
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		if info.IsDir() {
			return "", false, fmt.Errorf("%s is a directory: %s", source, expanded)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs("sessionlocator.toml")
	if err != nil {
		return "", false, err
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	return defaultPath, false, nil
}

// EnsureDirectories creates the output, cache, and log directories. The cache
// directory is best-effort: the locator falls back to memory-only caching when
// it cannot be created.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.OutputRoot, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if strings.TrimSpace(c.Paths.CacheDir) != "" {
		_ = os.MkdirAll(c.Paths.CacheDir, 0o755)
	}
	return nil
}

func expandPath(value string) (string, error) {
	if value == "" {
		return "", nil
	}
	if value == "~" || strings.HasPrefix(value, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		value = filepath.Join(home, strings.TrimPrefix(value, "~"))
	}
	absolute, err := filepath.Abs(value)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", value, err)
	}
	return absolute, nil
}

// ExpandPath resolves a leading ~ and makes value absolute.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
