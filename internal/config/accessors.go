package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Keys that ResolvedPaths() always provides in addition to paths.subdirs.
const (
	KeyDataRoot   = "data_root"
	KeyDataOutput = "data_output"
)

// ErrMissingValue is matched by every ConfigurationError.
var ErrMissingValue = errors.New("missing configuration value")

// ConfigurationError reports a required value that is absent at the point of use.
type ConfigurationError struct {
	Key  string
	Hint string
}

func (e *ConfigurationError) Error() string {
	msg := fmt.Sprintf("configuration: %s is not set", e.Key)
	if e.Hint != "" {
		msg += " (" + e.Hint + ")"
	}
	return msg
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrMissingValue
}

// DateFormat returns the configured date-format identifier.
func (c *Config) DateFormat() (string, error) {
	if c == nil || c.DateFormatID == "" {
		return "", &ConfigurationError{Key: "date_format", Hint: "e.g. date_format = \"%Y%m%d\""}
	}
	return c.DateFormatID, nil
}

// DataRoot returns the expanded data root.
func (c *Config) DataRoot() (string, error) {
	if c == nil || c.Paths.DataRoot == "" {
		return "", &ConfigurationError{Key: "paths.data_root", Hint: "or set " + EnvDataRoot}
	}
	return c.Paths.DataRoot, nil
}

// ResolvedPaths returns data_root, data_output, and every paths.subdirs entry joined
// under data_root. Absolute subdir values are kept as given.
func (c *Config) ResolvedPaths() (map[string]string, error) {
	root, err := c.DataRoot()
	if err != nil {
		return nil, err
	}
	paths := map[string]string{
		KeyDataRoot:   root,
		KeyDataOutput: c.Paths.OutputRoot,
	}
	for key, sub := range c.Paths.Subdirs {
		if filepath.IsAbs(sub) {
			paths[key] = filepath.Clean(sub)
			continue
		}
		paths[key] = filepath.Join(root, sub)
	}
	return paths, nil
}

// SubjectTable returns a copy of the subject code -> name table.
func (c *Config) SubjectTable() (map[string]string, error) {
	if c == nil || len(c.Subjects) == 0 {
		return nil, &ConfigurationError{Key: "subjects"}
	}
	out := make(map[string]string, len(c.Subjects))
	for code, name := range c.Subjects {
		out[code] = name
	}
	return out, nil
}

// SubjectName resolves a subject code to the name used in file names.
func (c *Config) SubjectName(code string) (string, error) {
	subjects, err := c.SubjectTable()
	if err != nil {
		return "", err
	}
	name, ok := subjects[strings.TrimSpace(code)]
	if !ok {
		return "", &ConfigurationError{Key: "subjects." + strings.TrimSpace(code)}
	}
	return name, nil
}

// DirectoryForExtension resolves the directory scanned for ext through the
// extensions table and paths.subdirs.
func (c *Config) DirectoryForExtension(ext string) (string, error) {
	ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")
	key, ok := c.Extensions[ext]
	if !ok {
		return "", &ConfigurationError{Key: "extensions." + ext}
	}
	paths, err := c.ResolvedPaths()
	if err != nil {
		return "", err
	}
	dir, ok := paths[key]
	if !ok {
		return "", &ConfigurationError{Key: "paths.subdirs." + key}
	}
	return dir, nil
}
