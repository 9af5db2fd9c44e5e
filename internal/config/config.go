package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

// ProjectFile is the per-project config file name, looked up in the working
// directory.
const ProjectFile = ".ccpruneconfig"

// Config holds all configurable ccprune settings.
type Config struct {
	DefaultKeep   *int   `json:"default_keep,omitempty"` // assistant messages kept by prune
	ClaudeDir     string `json:"claude_dir"`             // root of the chat client's data
	BackupDirName string `json:"backup_dir_name"`        // per-project backup directory
	DefaultFormat string `json:"default_format"`         // "text" | "json"
	LogFile       string `json:"log_file"`
}

// Keep returns the configured default keep count.
func (c Config) Keep() int {
	if c.DefaultKeep == nil {
		return *Defaults().DefaultKeep
	}
	return *c.DefaultKeep
}

// Defaults returns sensible default configuration values.
func Defaults() Config {
	keep := 10
	return Config{
		DefaultKeep:   &keep,
		ClaudeDir:     defaultClaudeDir(),
		BackupDirName: "prune-backup",
		DefaultFormat: "text",
		LogFile:       defaultLogFile(),
	}
}

func defaultClaudeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".claude"
	}
	return filepath.Join(home, ".claude")
}

// defaultLogFile returns $XDG_DATA_HOME/ccprune/ccprune.log or
// ~/.local/share/ccprune/ccprune.log.
func defaultLogFile() string {
	base := os.Getenv("XDG_DATA_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(os.TempDir(), "ccprune.log")
		}
		base = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(base, "ccprune", "ccprune.log")
}

// LoadGlobal reads ~/.config/ccprune/config.json.
// Returns defaults if the file is absent.
func LoadGlobal() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	path := filepath.Join(home, ".config", "ccprune", "config.json")
	return loadFile(path, true)
}

// LoadProject reads ProjectFile in dir.
// Returns nil (no error) if the file is absent.
func LoadProject(dir string) (*Config, error) {
	return loadFile(filepath.Join(dir, ProjectFile), false)
}

// loadFile reads and parses a JSON config file at path.
// If returnDefaults is true, returns defaults when the file is absent.
// If returnDefaults is false, returns nil when the file is absent.
func loadFile(path string, returnDefaults bool) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if returnDefaults {
				d := Defaults()
				return &d, nil
			}
			return nil, nil
		}
		return nil, err
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return &cfg, nil
}

// Merge combines global and project configs, with project taking precedence.
// Missing keys fall back to global, then defaults. CLAUDE_CONFIG_DIR, when
// set, overrides ClaudeDir from either file.
func Merge(global, project *Config) Config {
	result := Defaults()

	for _, c := range []*Config{global, project} {
		if c == nil {
			continue
		}
		if c.DefaultKeep != nil {
			keep := *c.DefaultKeep
			result.DefaultKeep = &keep
		}
		if c.ClaudeDir != "" {
			result.ClaudeDir = c.ClaudeDir
		}
		if c.BackupDirName != "" {
			result.BackupDirName = c.BackupDirName
		}
		if c.DefaultFormat != "" {
			result.DefaultFormat = c.DefaultFormat
		}
		if c.LogFile != "" {
			result.LogFile = c.LogFile
		}
	}

	if dir := os.Getenv("CLAUDE_CONFIG_DIR"); dir != "" {
		result.ClaudeDir = dir
	}
	return result
}

// ParseError is returned when a config file exists but cannot be parsed.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return "failed to parse config file " + e.Path + ": " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
