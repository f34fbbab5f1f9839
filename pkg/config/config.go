package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/knots-cli/knots/pkg/analyzer/aggregate"
	"github.com/knots-cli/knots/pkg/analyzer/complexity"
	"github.com/knots-cli/knots/pkg/analyzer/ratio"
	gotoml "github.com/pelletier/go-toml"
)

// ErrInvalidConfig is wrapped by every Validate failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds all configuration options for knots.
type Config struct {
	// Analysis settings
	Analysis AnalysisConfig `koanf:"analysis" toml:"analysis"`

	// Thresholds for gating and display
	Thresholds ThresholdConfig `koanf:"thresholds" toml:"thresholds"`

	// File exclusion patterns
	Exclude ExcludeConfig `koanf:"exclude" toml:"exclude"`

	// Result filters applied after analysis
	Filter FilterConfig `koanf:"filter" toml:"filter"`

	// Cache settings
	Cache CacheConfig `koanf:"cache" toml:"cache"`

	// Output settings
	Output OutputConfig `koanf:"output" toml:"output"`

	// Test/source ratio settings
	Ratio RatioConfig `koanf:"ratio" toml:"ratio"`
}

// AnalysisConfig controls the metrics engine.
type AnalysisConfig struct {
	TopK        int    `koanf:"top_k" toml:"top_k" comment:"worst functions listed in summaries"`
	BooleanRuns string `koanf:"boolean_runs" toml:"boolean_runs" comment:"operator or expression"`
	Workers     int    `koanf:"workers" toml:"workers" comment:"0 uses twice the CPU count"`
	MaxFileSize int64  `koanf:"max_file_size" toml:"max_file_size" comment:"bytes, 0 for no limit"`
}

// ThresholdConfig defines metric thresholds.
type ThresholdConfig struct {
	MaxComplexity     int `koanf:"max_complexity" toml:"max_complexity" comment:"check fails above this max(mccabe, cognitive)"`
	QuadrantMcCabe    int `koanf:"quadrant_mccabe" toml:"quadrant_mccabe"`
	QuadrantTestScore int `koanf:"quadrant_test_score" toml:"quadrant_test_score"`
}

// ExcludeConfig defines file exclusion patterns.
type ExcludeConfig struct {
	Patterns  []string `koanf:"patterns" toml:"patterns" comment:"gitignore syntax"`
	Dirs      []string `koanf:"dirs" toml:"dirs"`
	Gitignore bool     `koanf:"gitignore" toml:"gitignore"`
}

// FilterConfig narrows the reported functions.
type FilterConfig struct {
	IncludePaths  []string `koanf:"include_paths" toml:"include_paths"`
	ExcludePaths  []string `koanf:"exclude_paths" toml:"exclude_paths"`
	IncludeNames  []string `koanf:"include_names" toml:"include_names" comment:"regular expressions"`
	ExcludeNames  []string `koanf:"exclude_names" toml:"exclude_names"`
	MinComplexity int      `koanf:"min_complexity" toml:"min_complexity"`
	MaxComplexity int      `koanf:"max_complexity" toml:"max_complexity" comment:"0 for no upper bound"`
}

// CacheConfig controls caching behavior.
type CacheConfig struct {
	Enabled bool   `koanf:"enabled" toml:"enabled"`
	Dir     string `koanf:"dir" toml:"dir"`
	TTL     int    `koanf:"ttl" toml:"ttl" comment:"hours"` // TTL in hours
}

// OutputConfig controls output formatting.
type OutputConfig struct {
	Format     string `koanf:"format" toml:"format" comment:"text, json, markdown, toon or yaml"`
	Color      bool   `koanf:"color" toml:"color"`
	ReportFile string `koanf:"report_file" toml:"report_file"`
}

// RatioConfig controls knots ratio.
type RatioConfig struct {
	Threshold         float64 `koanf:"threshold" toml:"threshold"`
	BoundaryThreshold float64 `koanf:"boundary_threshold" toml:"boundary_threshold"`
	Level             string  `koanf:"level" toml:"level" comment:"warn or error"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			TopK:        aggregate.DefaultTopK,
			BooleanRuns: string(complexity.RunsPerOperator),
		},
		Thresholds: ThresholdConfig{
			MaxComplexity:     10,
			QuadrantMcCabe:    10,
			QuadrantTestScore: 10,
		},
		Exclude: ExcludeConfig{
			Patterns: []string{},
			Dirs: []string{
				".git",
				".knots",
				"build",
				"vendor",
				"third_party",
			},
			Gitignore: true,
		},
		Filter: FilterConfig{},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     ".knots/cache",
			TTL:     24,
		},
		Output: OutputConfig{
			Format:     "text",
			Color:      true,
			ReportFile: "report.txt",
		},
		Ratio: RatioConfig{
			Threshold:         0.70,
			BoundaryThreshold: 0.80,
			Level:             string(ratio.LevelWarn),
		},
	}
}

// Load loads configuration from a file.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	// Determine parser based on extension
	var parser koanf.Parser
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".toml":
		parser = toml.Parser()
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		parser = toml.Parser()
	}

	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return cfg, nil
}

// configNames are searched in order inside each of searchDirs.
var (
	configNames = []string{
		"knots.toml",
		"knots.yaml",
		"knots.yml",
		"knots.json",
		".knots.toml",
		".knots.yaml",
		".knots.yml",
		".knots.json",
	}
	searchDirs = []string{".", ".knots"}
)

// Find returns the first standard config file under root, or "".
func Find(root string) string {
	for _, dir := range searchDirs {
		for _, name := range configNames {
			path := filepath.Join(root, dir, name)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				return path
			}
		}
	}
	return ""
}

// LoadOrDefault tries to load config from standard locations or returns defaults.
func LoadOrDefault() *Config {
	if path := Find("."); path != "" {
		if cfg, err := Load(path); err == nil {
			return cfg
		}
	}
	return DefaultConfig()
}

// Resolve loads path when given; otherwise it searches the standard
// locations. It returns the file that was used ("" for defaults).
// Unlike LoadOrDefault, a config file that exists but is invalid is an error.
func Resolve(path string) (*Config, string, error) {
	if path == "" {
		path = Find(".")
	}
	if path == "" {
		return DefaultConfig(), "", nil
	}
	cfg, err := Load(path)
	if err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

var outputFormats = map[string]bool{
	"text": true, "json": true, "markdown": true, "toon": true, "yaml": true,
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	if c.Analysis.TopK < 0 {
		return fmt.Errorf("%w: analysis.top_k must not be negative", ErrInvalidConfig)
	}
	if _, err := complexity.ParseBooleanRunMode(c.Analysis.BooleanRuns); err != nil {
		return fmt.Errorf("%w: analysis.boolean_runs: %v", ErrInvalidConfig, err)
	}
	if c.Analysis.Workers < 0 || c.Analysis.MaxFileSize < 0 {
		return fmt.Errorf("%w: analysis.workers and analysis.max_file_size must not be negative", ErrInvalidConfig)
	}
	if c.Thresholds.MaxComplexity < 1 {
		return fmt.Errorf("%w: thresholds.max_complexity must be at least 1", ErrInvalidConfig)
	}
	if f := c.Filter; f.MaxComplexity > 0 && f.MinComplexity > f.MaxComplexity {
		return fmt.Errorf("%w: filter.min_complexity %d exceeds filter.max_complexity %d",
			ErrInvalidConfig, f.MinComplexity, f.MaxComplexity)
	}
	if !outputFormats[strings.ToLower(c.Output.Format)] {
		return fmt.Errorf("%w: unknown output.format %q", ErrInvalidConfig, c.Output.Format)
	}
	if err := c.RatioOptions().Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// BooleanRuns returns the parsed analysis.boolean_runs value.
func (c *Config) BooleanRuns() complexity.BooleanRunMode {
	mode, err := complexity.ParseBooleanRunMode(c.Analysis.BooleanRuns)
	if err != nil {
		return complexity.RunsPerOperator
	}
	return mode
}

// RatioOptions converts the ratio section. Boundary checking is on.
func (c *Config) RatioOptions() ratio.Options {
	return ratio.Options{
		Threshold:         c.Ratio.Threshold,
		BoundaryThreshold: c.Ratio.BoundaryThreshold,
		Level:             ratio.Level(strings.ToLower(c.Ratio.Level)),
		CheckBoundaries:   true,
	}
}

// ShouldExclude checks if a path should be excluded from analysis.
func (c *Config) ShouldExclude(path string) bool {
	// Check directory exclusions
	for _, dir := range c.Exclude.Dirs {
		if strings.Contains(path, string(filepath.Separator)+dir+string(filepath.Separator)) ||
			strings.HasPrefix(path, dir+string(filepath.Separator)) {
			return true
		}
	}

	// Check pattern exclusions
	base := filepath.Base(path)
	for _, pattern := range c.Exclude.Patterns {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
	}

	return false
}

// tomlConfig has Config's fields without its methods, so the encoder does not
// call back into MarshalTOML.
type tomlConfig Config

// MarshalTOML renders c as a commented TOML document.
func (c *Config) MarshalTOML() ([]byte, error) {
	var buf bytes.Buffer
	enc := gotoml.NewEncoder(&buf).Order(gotoml.OrderPreserve).ArraysWithOneElementPerLine(true)
	if err := enc.Encode((*tomlConfig)(c)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
