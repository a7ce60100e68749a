package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config file names, in lookup order. The first one present in a directory wins.
var configFileNames = []string{"config.json", "config.toml"}

// DefaultPalette is the staple color cycle used for new and split oligos.
var DefaultPalette = []string{
	"#cc0000", "#f74308", "#f7931e", "#aaaa00", "#57bb00", "#007200",
	"#03b6a2", "#1700de", "#7300de", "#b8056c", "#333333", "#888888",
}

// Config holds application configuration.
type Config struct {
	// MinBreakLen is the default fragment length used by the break planner.
	MinBreakLen int `json:"min_break_len" toml:"min_break_len"`

	// ShortOligoLen flags oligos shorter than this in reports.
	ShortOligoLen int `json:"short_oligo_len" toml:"short_oligo_len"`

	// Palette is the color cycle assigned to new oligos and to the shorter half
	// of a split oligo. An overlay palette replaces the base one entirely.
	Palette []string `json:"palette,omitempty" toml:"palette"`

	// ScaffoldColor is the color given to the oligo named as scaffold by AutoBreak.
	ScaffoldColor string `json:"scaffold_color,omitempty" toml:"scaffold_color"`

	// VerifyInvariants re-checks the whole part after every committed command
	// and panics on violation. Useful in tests and while debugging imports.
	VerifyInvariants bool `json:"verify_invariants,omitempty" toml:"verify_invariants"`

	// AllowedPaths is an allowlist of directories for import/export operations.
	// Paths outside ~/.origami/exports require either being in this list or AllowUnsafePaths=true.
	// Paths should be absolute (relative paths are ignored).
	AllowedPaths []string `json:"allowed_paths,omitempty" toml:"allowed_paths"`

	// AllowUnsafePaths disables directory restrictions for import/export.
	AllowUnsafePaths bool `json:"allow_unsafe_paths,omitempty" toml:"allow_unsafe_paths"`

	// DBMaxOpenConns limits the maximum number of open database connections.
	// 0 means use sql.DB default (unlimited).
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty" toml:"db_max_open_conns"`

	// DBMaxIdleConns limits the maximum number of idle database connections.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty" toml:"db_max_idle_conns"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	// Unknown tool names are logged as warnings.
	DisabledTools []string `json:"disabled_tools,omitempty" toml:"disabled_tools"`

	// DisabledTypes is a list of tool groups to disable entirely
	// (e.g. "breaks" removes breaks_plan and breaks_apply).
	DisabledTypes []string `json:"disabled_types,omitempty" toml:"disabled_types"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		MinBreakLen:   35,
		ShortOligoLen: 20,
		Palette:       append([]string(nil), DefaultPalette...),
		ScaffoldColor: "#0066cc",
	}
}

// Load loads configuration from baseDir/config.json (or config.toml).
// Returns default config if neither file exists.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.origami.
func Load(baseDir string) (*Config, error) {
	return loadFile(findConfigIn(baseDir))
}

// LoadWithRepo loads configuration from both global (~/.origami) and repo (.origami) directories.
// Repo config is found by walking upward from startDir to find the nearest .origami config.
// Repo config takes precedence for scalar values; arrays are merged (deduplicated).
// Either or both configs may be missing.
func LoadWithRepo(globalDir, startDir string) (*Config, error) {
	global, err := loadFileRaw(findConfigIn(globalDir))
	if err != nil {
		return nil, err
	}

	repo, err := loadFileRaw(FindRepoConfig(startDir))
	if err != nil {
		return nil, err
	}

	return Merge(Merge(DefaultConfig(), global), repo), nil
}

// FindRepoConfig walks upward from startDir to find the nearest .origami config file.
// Returns the path if found, or empty string if not found.
func FindRepoConfig(startDir string) string {
	dir := startDir
	for {
		if path := findConfigIn(filepath.Join(dir, ".origami")); path != "" {
			return path
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// findConfigIn returns the first config file present in dir, or "".
func findConfigIn(dir string) string {
	for _, name := range configFileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the path is empty or the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	if configPath == "" {
		return &Config{}, nil
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if strings.EqualFold(filepath.Ext(configPath), ".toml") {
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
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
// Overlay values take precedence for scalars; arrays are merged and deduplicated,
// except Palette which the overlay replaces when non-empty.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	result.MinBreakLen = overlay.MinBreakLen
	if result.MinBreakLen == 0 {
		result.MinBreakLen = base.MinBreakLen
	}

	result.ShortOligoLen = overlay.ShortOligoLen
	if result.ShortOligoLen == 0 {
		result.ShortOligoLen = base.ShortOligoLen
	}

	result.ScaffoldColor = strings.TrimSpace(overlay.ScaffoldColor)
	if result.ScaffoldColor == "" {
		result.ScaffoldColor = base.ScaffoldColor
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
	result.AllowUnsafePaths = base.AllowUnsafePaths || overlay.AllowUnsafePaths
	result.VerifyInvariants = base.VerifyInvariants || overlay.VerifyInvariants

	result.Palette = mergeStringSlice(nil, overlay.Palette)
	if result.Palette == nil {
		result.Palette = mergeStringSlice(nil, base.Palette)
	}

	// Arrays: merge and deduplicate
	result.AllowedPaths = mergeStringSlice(base.AllowedPaths, overlay.AllowedPaths)
	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)
	result.DisabledTypes = mergeStringSlice(base.DisabledTypes, overlay.DisabledTypes)

	return result
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
