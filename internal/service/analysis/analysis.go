// Package analysis wires configuration, discovery, the complexity engine
// and filtering into the operations the CLI and MCP server expose.
package analysis

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/knots-cli/knots/internal/cache"
	"github.com/knots-cli/knots/internal/filter"
	"github.com/knots-cli/knots/internal/scanner"
	"github.com/knots-cli/knots/internal/vcs"
	"github.com/knots-cli/knots/pkg/analyzer"
	"github.com/knots-cli/knots/pkg/analyzer/complexity"
	"github.com/knots-cli/knots/pkg/analyzer/ratio"
	"github.com/knots-cli/knots/pkg/config"
)

// Service orchestrates code analysis operations.
type Service struct {
	config *config.Config
	opener vcs.Opener
	cache  *cache.Cache
}

// Option configures a Service.
type Option func(*Service)

// WithConfig sets the configuration.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		s.config = cfg
	}
}

// WithOpener sets the VCS opener (for testing).
func WithOpener(opener vcs.Opener) Option {
	return func(s *Service) {
		s.opener = opener
	}
}

// WithCache overrides the cache built from the configuration.
func WithCache(c *cache.Cache) Option {
	return func(s *Service) {
		s.cache = c
	}
}

// New creates a new analysis service.
func New(opts ...Option) *Service {
	s := &Service{
		config: config.LoadOrDefault(),
		opener: vcs.DefaultOpener(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Config returns the configuration in use.
func (s *Service) Config() *config.Config {
	return s.config
}

// Files expands paths into the C files to analyze.
func (s *Service) Files(paths []string, recursive bool) ([]string, error) {
	return scanner.NewScanner(s.config).ScanPaths(paths, recursive)
}

// StagedFiles lists the staged C files of the repository containing dir.
func (s *Service) StagedFiles(dir string) ([]string, error) {
	repo, err := s.opener.PlainOpenWithDetect(dir)
	if err != nil {
		return nil, fmt.Errorf("opening repository: %w", err)
	}
	files, err := repo.StagedFiles()
	if err != nil {
		return nil, err
	}
	return vcs.OnlyC(files), nil
}

// Options configures one analysis run.
type Options struct {
	// Filter overrides the configured filter section when set.
	Filter *config.FilterConfig
	// NoCache disables the result cache for this run.
	NoCache bool
	// Tracker receives per-file progress.
	Tracker *analyzer.Tracker
}

// NewAnalyzer builds a complexity analyzer from the configuration.
func (s *Service) NewAnalyzer(noCache bool) (*complexity.Analyzer, error) {
	c, err := s.resultCache(noCache)
	if err != nil {
		return nil, err
	}
	return complexity.New(
		complexity.WithBooleanRuns(s.config.BooleanRuns()),
		complexity.WithWorkers(s.config.Analysis.Workers),
		complexity.WithMaxFileSize(s.config.Analysis.MaxFileSize),
		complexity.WithCache(c),
	), nil
}

func (s *Service) resultCache(noCache bool) (*cache.Cache, error) {
	if noCache {
		return cache.Disabled(), nil
	}
	if s.cache != nil {
		return s.cache, nil
	}
	if !s.config.Cache.Enabled {
		return cache.Disabled(), nil
	}
	c, err := cache.New(s.config.Cache.Dir, s.config.Cache.TTL, true)
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}
	s.cache = c
	return c, nil
}

// Analyze measures files and applies the filter. Unreadable or unparseable
// files are listed in the result's Skipped field.
func (s *Service) Analyze(ctx context.Context, files []string, opts Options) (*complexity.Analysis, error) {
	fcfg := s.config.Filter
	if opts.Filter != nil {
		fcfg = *opts.Filter
	}
	f, err := filter.New(fcfg, "")
	if err != nil {
		return nil, err
	}

	a, err := s.NewAnalyzer(opts.NoCache)
	if err != nil {
		return nil, err
	}
	defer a.Close()

	if opts.Tracker != nil {
		ctx = analyzer.WithTracker(ctx, opts.Tracker)
	}
	an, err := a.Analyze(ctx, files)
	if err != nil {
		return nil, err
	}
	return f.Apply(an), nil
}

// Ratio compares a test file with the source file it exercises.
func (s *Service) Ratio(testPath, sourcePath string, opts ratio.Options) (*ratio.Result, error) {
	a, err := s.NewAnalyzer(true)
	if err != nil {
		return nil, err
	}
	defer a.Close()
	return ratio.AnalyzeFiles(a, testPath, sourcePath, opts)
}

// Violation is a function above the commit gate threshold.
type Violation struct {
	File          string `json:"file"`
	Name          string `json:"name"`
	Line          uint32 `json:"line"`
	MaxComplexity int    `json:"max_complexity"`
	Threshold     int    `json:"threshold"`
}

func (v Violation) String() string {
	return fmt.Sprintf("%s:%d %s: complexity %d exceeds %d", v.File, v.Line, v.Name, v.MaxComplexity, v.Threshold)
}

// Gate returns every function whose max(mccabe, cognitive) exceeds
// threshold, in file order. threshold <= 0 uses thresholds.max_complexity.
func (s *Service) Gate(an *complexity.Analysis, threshold int) []Violation {
	if threshold <= 0 {
		threshold = s.config.Thresholds.MaxComplexity
	}
	var out []Violation
	for _, fn := range an.Functions() {
		if mc := fn.MaxComplexity(); mc > threshold {
			out = append(out, Violation{
				File:          filepath.ToSlash(fn.File),
				Name:          fn.Name,
				Line:          fn.StartLine,
				MaxComplexity: mc,
				Threshold:     threshold,
			})
		}
	}
	return out
}
