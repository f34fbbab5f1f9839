package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/knots-cli/knots/pkg/analyzer/complexity"
	"github.com/knots-cli/knots/pkg/analyzer/ratio"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg == nil {
		t.Fatal("DefaultConfig() returned nil")
	}

	if cfg.Analysis.TopK != 5 {
		t.Errorf("Analysis.TopK = %d, want 5", cfg.Analysis.TopK)
	}
	if cfg.BooleanRuns() != complexity.RunsPerOperator {
		t.Errorf("BooleanRuns() = %s, want %s", cfg.BooleanRuns(), complexity.RunsPerOperator)
	}
	if cfg.Thresholds.MaxComplexity != 10 {
		t.Errorf("Thresholds.MaxComplexity = %d, want 10", cfg.Thresholds.MaxComplexity)
	}
	if !cfg.Exclude.Gitignore {
		t.Error("Exclude.Gitignore should be true by default")
	}
	if cfg.Cache.Dir != ".knots/cache" {
		t.Errorf("Cache.Dir = %s, want .knots/cache", cfg.Cache.Dir)
	}
	if cfg.Output.ReportFile != "report.txt" {
		t.Errorf("Output.ReportFile = %s, want report.txt", cfg.Output.ReportFile)
	}
	if cfg.Ratio.Threshold != 0.70 || cfg.Ratio.BoundaryThreshold != 0.80 {
		t.Errorf("Ratio thresholds = %v/%v, want 0.70/0.80", cfg.Ratio.Threshold, cfg.Ratio.BoundaryThreshold)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadTOML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "knots.toml")

	content := `
[analysis]
top_k = 10
boolean_runs = "expression"

[thresholds]
max_complexity = 15

[exclude]
dirs = ["vendor", "generated"]
patterns = ["*_mock.c"]

[filter]
exclude_names = ["^test_"]

[cache]
enabled = false

[output]
format = "json"

[ratio]
level = "error"
`

	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Analysis.TopK != 10 {
		t.Errorf("Analysis.TopK = %d, want 10", cfg.Analysis.TopK)
	}
	if cfg.BooleanRuns() != complexity.RunsPerExpression {
		t.Errorf("BooleanRuns() = %s, want expression", cfg.BooleanRuns())
	}
	if cfg.Thresholds.MaxComplexity != 15 {
		t.Errorf("Thresholds.MaxComplexity = %d, want 15", cfg.Thresholds.MaxComplexity)
	}
	if len(cfg.Filter.ExcludeNames) != 1 || cfg.Filter.ExcludeNames[0] != "^test_" {
		t.Errorf("Filter.ExcludeNames = %v", cfg.Filter.ExcludeNames)
	}
	if cfg.Cache.Enabled {
		t.Error("Cache.Enabled should be false")
	}
	if cfg.Output.Format != "json" {
		t.Errorf("Output.Format = %s, want json", cfg.Output.Format)
	}
	if cfg.RatioOptions().Level != ratio.LevelError {
		t.Errorf("RatioOptions().Level = %s, want error", cfg.RatioOptions().Level)
	}
	// untouched keys keep their defaults
	if cfg.Ratio.Threshold != 0.70 {
		t.Errorf("Ratio.Threshold = %v, want default 0.70", cfg.Ratio.Threshold)
	}
}

func TestLoadYAMLAndJSON(t *testing.T) {
	tmpDir := t.TempDir()

	yamlPath := filepath.Join(tmpDir, "knots.yaml")
	yamlContent := "analysis:\n  workers: 4\noutput:\n  format: markdown\n"
	if err := os.WriteFile(yamlPath, []byte(yamlContent), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(yamlPath)
	if err != nil {
		t.Fatalf("Load(yaml) error: %v", err)
	}
	if cfg.Analysis.Workers != 4 || cfg.Output.Format != "markdown" {
		t.Errorf("yaml config = %+v / %+v", cfg.Analysis, cfg.Output)
	}

	jsonPath := filepath.Join(tmpDir, "knots.json")
	jsonContent := `{"filter": {"min_complexity": 5, "max_complexity": 20}}`
	if err := os.WriteFile(jsonPath, []byte(jsonContent), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err = Load(jsonPath)
	if err != nil {
		t.Fatalf("Load(json) error: %v", err)
	}
	if cfg.Filter.MinComplexity != 5 || cfg.Filter.MaxComplexity != 20 {
		t.Errorf("json filter = %+v", cfg.Filter)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad boolean runs", "[analysis]\nboolean_runs = \"sometimes\"\n"},
		{"negative top k", "[analysis]\ntop_k = -1\n"},
		{"bad format", "[output]\nformat = \"xml\"\n"},
		{"ratio threshold", "[ratio]\nthreshold = 2.5\n"},
		{"boundary threshold", "[ratio]\nboundary_threshold = 1.5\n"},
		{"ratio level", "[ratio]\nlevel = \"fatal\"\n"},
		{"inverted range", "[filter]\nmin_complexity = 9\nmax_complexity = 3\n"},
		{"zero gate", "[thresholds]\nmax_complexity = 0\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "knots.toml")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}
			_, err := Load(path)
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Load() error = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("Load() of a missing file should fail")
	}
}

func TestFind(t *testing.T) {
	root := t.TempDir()
	if got := Find(root); got != "" {
		t.Errorf("Find() on empty dir = %q, want empty", got)
	}

	nested := filepath.Join(root, ".knots", "knots.yaml")
	if err := os.MkdirAll(filepath.Dir(nested), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(nested, []byte("analysis:\n  top_k: 3\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := Find(root); got != nested {
		t.Errorf("Find() = %q, want %q", got, nested)
	}

	// the working directory wins over .knots/
	top := filepath.Join(root, ".knots.json")
	if err := os.WriteFile(top, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := Find(root); got != top {
		t.Errorf("Find() = %q, want %q", got, top)
	}
}

func TestResolveExplicitPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.toml")
	if err := os.WriteFile(path, []byte("[analysis]\ntop_k = 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, source, err := Resolve(path)
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if source != path {
		t.Errorf("Resolve() source = %q, want %q", source, path)
	}
	if cfg.Analysis.TopK != 2 {
		t.Errorf("Analysis.TopK = %d, want 2", cfg.Analysis.TopK)
	}
}

func TestShouldExclude(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Exclude.Patterns = []string{"*_gen.c"}

	tests := []struct {
		path string
		want bool
	}{
		{"src/main.c", false},
		{"vendor/lib.c", true},
		{"src/build/out.c", true},
		{"src/table_gen.c", true},
		{"src/builder.c", false},
	}
	for _, tt := range tests {
		if got := cfg.ShouldExclude(filepath.FromSlash(tt.path)); got != tt.want {
			t.Errorf("ShouldExclude(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestMarshalTOMLRoundTrip(t *testing.T) {
	data, err := DefaultConfig().MarshalTOML()
	if err != nil {
		t.Fatalf("MarshalTOML() error: %v", err)
	}
	text := string(data)
	for _, section := range []string{"[analysis]", "[thresholds]", "[exclude]", "[filter]", "[cache]", "[output]", "[ratio]"} {
		if !strings.Contains(text, section) {
			t.Errorf("MarshalTOML() output missing %s", section)
		}
	}

	path := filepath.Join(t.TempDir(), "knots.toml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() of marshaled defaults failed: %v", err)
	}
	if cfg.Analysis.TopK != 5 || cfg.Cache.Dir != ".knots/cache" {
		t.Errorf("round trip lost values: %+v %+v", cfg.Analysis, cfg.Cache)
	}
}

func TestMarshalTOMLCustomValues(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Thresholds.MaxComplexity = 25
	cfg.Filter.ExcludeNames = []string{"^test_"}
	cfg.Ratio.Level = "error"

	data, err := cfg.MarshalTOML()
	if err != nil {
		t.Fatalf("MarshalTOML() error: %v", err)
	}

	path := filepath.Join(t.TempDir(), "knots.toml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if loaded.Thresholds.MaxComplexity != 25 {
		t.Errorf("MaxComplexity = %d, want 25", loaded.Thresholds.MaxComplexity)
	}
	if len(loaded.Filter.ExcludeNames) != 1 || loaded.Filter.ExcludeNames[0] != "^test_" {
		t.Errorf("ExcludeNames = %v, want [^test_]", loaded.Filter.ExcludeNames)
	}
	if loaded.Ratio.Level != "error" {
		t.Errorf("Ratio.Level = %q, want error", loaded.Ratio.Level)
	}
}
