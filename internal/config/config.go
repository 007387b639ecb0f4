package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

// Sort keys accepted by SortKey.
const (
	SortByName   = "name"
	SortByRecent = "recent"
)

// Config holds application configuration.
type Config struct {
	// EntryTypes is the set of entry types this deployment manages.
	// One store listing is issued per type on every load.
	EntryTypes []string `json:"entry_types,omitempty" env:"TOME_ENTRY_TYPES" envSeparator:","`

	// OptionalFields enables optional entry fields. Known fields:
	// is_hidden, markdown_content, requirement, rules, spell_level, ancestry_stats.
	// A present-but-empty list disables all of them.
	OptionalFields []string `json:"optional_fields,omitempty" env:"TOME_OPTIONAL_FIELDS" envSeparator:","`

	// SortKey orders the aggregated collection: "name" or "recent".
	SortKey string `json:"sort_key,omitempty" env:"TOME_SORT_KEY"`

	// PageSize is the number of entries revealed per page.
	PageSize int `json:"page_size,omitempty" env:"TOME_PAGE_SIZE"`

	// DefaultLanguage is used when a request carries no language preference.
	DefaultLanguage string `json:"default_language,omitempty" env:"TOME_DEFAULT_LANGUAGE"`

	// AdminPassword unlocks admin mode in the web UI.
	// This is a convenience gate, not an authentication model.
	AdminPassword string `json:"admin_password,omitempty" env:"TOME_ADMIN_PASSWORD"`

	// StoreTimeoutMS bounds every store call. 0 keeps the default.
	StoreTimeoutMS int `json:"store_timeout_ms,omitempty" env:"TOME_STORE_TIMEOUT_MS"`

	// TagTablePath is an optional YAML file merged over the built-in tag
	// translations. It is watched and reloaded on change.
	TagTablePath string `json:"tag_table_path,omitempty" env:"TOME_TAG_TABLE_PATH"`

	// Bind and Port are the web server listen address.
	Bind string `json:"bind,omitempty" env:"TOME_BIND"`
	Port int    `json:"port,omitempty" env:"TOME_PORT"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `json:"log_level,omitempty" env:"TOME_LOG_LEVEL"`

	// DBMaxOpenConns limits the maximum number of open database connections.
	// 0 means use sql.DB default (unlimited).
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty" env:"TOME_DB_MAX_OPEN_CONNS"`

	// DBMaxIdleConns limits the maximum number of idle database connections.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty" env:"TOME_DB_MAX_IDLE_CONNS"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	// Unknown tool names are logged as warnings.
	DisabledTools []string `json:"disabled_tools,omitempty" env:"TOME_DISABLED_TOOLS" envSeparator:","`
}

// KnownEntryTypes lists the entry types with dedicated fields.
var KnownEntryTypes = []string{"trait", "object", "class", "ancestry", "spell", "trap", "monster"}

// KnownOptionalFields lists every optional field name.
var KnownOptionalFields = []string{
	"is_hidden", "markdown_content", "requirement", "rules", "spell_level", "ancestry_stats",
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		EntryTypes:      []string{"trait", "object", "class", "ancestry", "spell"},
		OptionalFields:  slices.Clone(KnownOptionalFields),
		SortKey:         SortByName,
		PageSize:        12,
		DefaultLanguage: "fr",
		StoreTimeoutMS:  10000,
		Bind:            "127.0.0.1",
		Port:            8080,
		LogLevel:        "info",
	}
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.tome.
func Load(baseDir string) (*Config, error) {
	return loadFile(filepath.Join(baseDir, "config.json"))
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
		return nil, fmt.Errorf("parse %s: %w", configPath, err)
	}

	return cfg, nil
}

// loadFile loads configuration from a specific file path.
// Returns default config if the file doesn't exist.
func loadFile(configPath string) (*Config, error) {
	cfg, err := loadFileRaw(configPath)
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars. EntryTypes and OptionalFields
// are replaced when the overlay sets them; DisabledTools are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	// Scalars: overlay wins if non-zero, else base
	result.SortKey = firstNonEmpty(overlay.SortKey, base.SortKey)
	result.DefaultLanguage = firstNonEmpty(overlay.DefaultLanguage, base.DefaultLanguage)
	result.AdminPassword = firstNonEmpty(overlay.AdminPassword, base.AdminPassword)
	result.TagTablePath = firstNonEmpty(overlay.TagTablePath, base.TagTablePath)
	result.Bind = firstNonEmpty(overlay.Bind, base.Bind)
	result.LogLevel = firstNonEmpty(overlay.LogLevel, base.LogLevel)

	result.PageSize = firstNonZero(overlay.PageSize, base.PageSize)
	result.StoreTimeoutMS = firstNonZero(overlay.StoreTimeoutMS, base.StoreTimeoutMS)
	result.Port = firstNonZero(overlay.Port, base.Port)
	result.DBMaxOpenConns = firstNonZero(overlay.DBMaxOpenConns, base.DBMaxOpenConns)
	result.DBMaxIdleConns = firstNonZero(overlay.DBMaxIdleConns, base.DBMaxIdleConns)

	// Sets: overlay replaces when present (nil means unset)
	result.EntryTypes = replaceStringSlice(base.EntryTypes, overlay.EntryTypes)
	result.OptionalFields = replaceStringSlice(base.OptionalFields, overlay.OptionalFields)

	// Arrays: merge and deduplicate
	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)

	return result
}

// Validate reports the first configuration problem found.
func (c *Config) Validate() error {
	if len(c.EntryTypes) == 0 {
		return errors.New("entry_types must not be empty")
	}
	if c.SortKey != SortByName && c.SortKey != SortByRecent {
		return fmt.Errorf("sort_key must be %q or %q, got %q", SortByName, SortByRecent, c.SortKey)
	}
	for _, f := range c.OptionalFields {
		if !slices.Contains(KnownOptionalFields, f) {
			return fmt.Errorf("unknown optional field %q", f)
		}
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("page_size must be positive, got %d", c.PageSize)
	}
	if c.DefaultLanguage != "en" && c.DefaultLanguage != "fr" {
		return fmt.Errorf("default_language must be en or fr, got %q", c.DefaultLanguage)
	}
	if c.StoreTimeoutMS < 0 {
		return fmt.Errorf("store_timeout_ms must not be negative, got %d", c.StoreTimeoutMS)
	}
	return nil
}

// StoreTimeout returns StoreTimeoutMS as a duration.
func (c *Config) StoreTimeout() time.Duration {
	return time.Duration(c.StoreTimeoutMS) * time.Millisecond
}

// HasField reports whether an optional field is enabled.
func (c *Config) HasField(name string) bool {
	return slices.Contains(c.OptionalFields, name)
}

// Addr returns the web listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Bind, c.Port)
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

func firstNonZero(a, b int) int {
	if a != 0 {
		return a
	}
	return b
}

// replaceStringSlice returns a cleaned copy of overlay when set, else of base.
func replaceStringSlice(base, overlay []string) []string {
	src := base
	if overlay != nil {
		src = overlay
	}
	result := mergeStringSlice(src, nil)
	if result == nil && src != nil {
		return []string{}
	}
	return result
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range slices.Concat(a, b) {
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
