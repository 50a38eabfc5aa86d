package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// Config holds application configuration.
type Config struct {
	// FolderPath is the directory the watcher observes and where daily
	// ledger files are written. Relative paths are resolved against the
	// working directory at startup.
	FolderPath string `json:"folder_path"`

	// ExcludedFolders lists path prefixes the change tracker ignores
	// entirely. Prefixes are compared against the document identity
	// (slash-separated relative path).
	ExcludedFolders []string `json:"excluded_folders,omitempty"`

	// UpdateFrequencyMs is the flush debounce delay in milliseconds.
	// Bursts of edits inside this window collapse into a single ledger write.
	UpdateFrequencyMs int `json:"update_frequency_ms,omitempty"`

	// RolloverPollMs is the day-rollover poll interval in milliseconds.
	// Rollover staleness is bounded by this interval when no edits arrive.
	RolloverPollMs int `json:"rollover_poll_ms,omitempty"`

	// Stopwords lists words excluded from every tally, compared
	// case-insensitively after trimming.
	Stopwords []string `json:"stopwords,omitempty"`

	// WordPattern overrides the tokenizer's word-character regexp.
	// Empty means the default letters/digits/underscore class. The narrow
	// default splits on apostrophes and hyphens; widen the class here if
	// "don't" should count as one word.
	WordPattern string `json:"word_pattern,omitempty"`

	// EnableJSONExport gates the export command and MCP tool.
	EnableJSONExport bool `json:"enable_json_export,omitempty"`

	// EnableAutomaticJSONExport triggers a JSON export of the closing
	// day's tally during rollover.
	EnableAutomaticJSONExport bool `json:"enable_automatic_json_export,omitempty"`

	// JSONExportPath is the directory JSON exports are written to.
	// Empty means alongside the ledger in FolderPath.
	JSONExportPath string `json:"json_export_path,omitempty"`

	// LexiconPath points to an optional sentiment lexicon file merged over
	// the embedded default ("<word> <score>" lines).
	LexiconPath string `json:"lexicon_path,omitempty"`

	// DBMaxOpenConns limits the maximum number of open database connections.
	// If set to 1, all database access is serialized (reduces "database is
	// locked" errors). 0 means use sql.DB default.
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty"`

	// DBMaxIdleConns limits the maximum number of idle database connections.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	DisabledTools []string `json:"disabled_tools,omitempty"`
}

// Defaults.
const (
	DefaultUpdateFrequencyMs = 10000
	DefaultRolloverPollMs    = 30000
)

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		FolderPath:        ".",
		UpdateFrequencyMs: DefaultUpdateFrequencyMs,
		RolloverPollMs:    DefaultRolloverPollMs,
	}
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.wordscraper.
func Load(baseDir string) (*Config, error) {
	cfg, err := loadFileRaw(filepath.Join(baseDir, "config.json"))
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	result.FolderPath = overlay.FolderPath
	if result.FolderPath == "" {
		result.FolderPath = base.FolderPath
	}

	result.UpdateFrequencyMs = overlay.UpdateFrequencyMs
	if result.UpdateFrequencyMs == 0 {
		result.UpdateFrequencyMs = base.UpdateFrequencyMs
	}

	result.RolloverPollMs = overlay.RolloverPollMs
	if result.RolloverPollMs == 0 {
		result.RolloverPollMs = base.RolloverPollMs
	}

	result.WordPattern = overlay.WordPattern
	if result.WordPattern == "" {
		result.WordPattern = base.WordPattern
	}

	result.JSONExportPath = overlay.JSONExportPath
	if result.JSONExportPath == "" {
		result.JSONExportPath = base.JSONExportPath
	}

	result.LexiconPath = overlay.LexiconPath
	if result.LexiconPath == "" {
		result.LexiconPath = base.LexiconPath
	}

	result.DBMaxOpenConns = overlay.DBMaxOpenConns
	if result.DBMaxOpenConns == 0 {
		result.DBMaxOpenConns = base.DBMaxOpenConns
	}

	result.DBMaxIdleConns = overlay.DBMaxIdleConns
	if result.DBMaxIdleConns == 0 {
		result.DBMaxIdleConns = base.DBMaxIdleConns
	}

	// Booleans: overlay wins if true, else base
	result.EnableJSONExport = base.EnableJSONExport || overlay.EnableJSONExport
	result.EnableAutomaticJSONExport = base.EnableAutomaticJSONExport || overlay.EnableAutomaticJSONExport

	// Arrays: merge and deduplicate
	result.ExcludedFolders = mergeStringSlice(base.ExcludedFolders, overlay.ExcludedFolders)
	result.Stopwords = mergeStringSlice(base.Stopwords, overlay.Stopwords)
	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)

	return result
}

// SplitLines splits a newline-separated option value (the form the
// settings surface accepts for stopwords and excluded folders) into a
// trimmed list with blanks removed.
func SplitLines(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, "\n")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range a {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}
	for _, s := range b {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
