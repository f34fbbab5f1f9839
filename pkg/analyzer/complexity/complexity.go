// Package complexity computes per-function complexity metrics for C sources
// and combines them with the test score and testability quadrant.
package complexity

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/knots-cli/knots/internal/cache"
	"github.com/knots-cli/knots/internal/fileproc"
	"github.com/knots-cli/knots/pkg/analyzer"
	"github.com/knots-cli/knots/pkg/analyzer/testability"
	"github.com/knots-cli/knots/pkg/analyzer/testscore"
	"github.com/knots-cli/knots/pkg/parser"
)

// Ensure Analyzer implements analyzer.FileAnalyzer.
var _ analyzer.FileAnalyzer[*Analysis] = (*Analyzer)(nil)

// resultVersion changes whenever cached FileResults would be computed differently.
const resultVersion = "1"

// Analyzer computes metrics for C functions.
type Analyzer struct {
	parser      *parser.Parser
	runs        BooleanRunMode
	composer    testscore.Composer
	maxFileSize int64
	workers     int
	cache       *cache.Cache
	// customComposer disables the cache, whose keys assume the default scorers.
	customComposer bool
}

// Option is a functional option for configuring Analyzer.
type Option func(*Analyzer)

// WithBooleanRuns selects how logical operator runs are charged.
func WithBooleanRuns(mode BooleanRunMode) Option {
	return func(a *Analyzer) {
		a.runs = mode
	}
}

// WithMaxFileSize sets the maximum file size to analyze (0 = no limit).
func WithMaxFileSize(maxSize int64) Option {
	return func(a *Analyzer) {
		a.maxFileSize = maxSize
	}
}

// WithWorkers caps the number of files analyzed concurrently (0 = 2x NumCPU).
func WithWorkers(n int) Option {
	return func(a *Analyzer) {
		a.workers = n
	}
}

// WithCache reuses results for files whose content has not changed.
func WithCache(c *cache.Cache) Option {
	return func(a *Analyzer) {
		a.cache = c
	}
}

// WithComposer replaces the test score scorers. Results computed with a
// custom composer bypass the cache, whatever the option order.
func WithComposer(c testscore.Composer) Option {
	return func(a *Analyzer) {
		a.composer = c
		a.customComposer = true
	}
}

// New creates a new complexity analyzer.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		parser:   parser.New(),
		runs:     RunsPerOperator,
		composer: testscore.DefaultComposer(),
		cache:    cache.Disabled(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.customComposer {
		a.cache = cache.Disabled()
	}
	return a
}

// Close releases analyzer resources.
func (a *Analyzer) Close() {
	a.parser.Close()
}

// Measure computes the structural metrics of one function. It reads only
// the function's subtree and source span.
func (a *Analyzer) Measure(fn *parser.FunctionRecord) Metrics {
	w := walker{runs: a.runs}
	t := w.visit(fn.Body, 0, "")

	return Metrics{
		McCabe:       1 + t.decisions,
		Cognitive:    t.cognitive,
		NestingDepth: t.nesting,
		SLOC:         spanSLOC(fn.Source, fn.StartByte, fn.EndByte),
		ABC:          NewABC(t.assignments, t.branches, t.conditions),
		Returns:      t.returns,
	}
}

// AnalyzeFunction measures fn and derives its test score, severity band and
// quadrant. globals are the file-scope names of fn's translation unit.
func (a *Analyzer) AnalyzeFunction(fn *parser.FunctionRecord, globals map[string]struct{}) FunctionResult {
	m := a.Measure(fn)
	score := a.composer.Compose(fn, m.McCabe, globals)

	return FunctionResult{
		Name:      fn.Name,
		File:      fn.File,
		StartLine: fn.StartLine,
		EndLine:   fn.EndLine,
		Metrics:   m,
		TestScore: score,
		Severity:  SeverityFor(m.MaxComplexity()),
		Quadrant:  testability.Classify(m.McCabe, score.Total),
	}
}

// AnalyzeParseResult analyzes every function in a parsed translation unit.
func (a *Analyzer) AnalyzeParseResult(result *parser.ParseResult) *FileResult {
	fr := &FileResult{
		Path:      result.Path,
		Functions: make([]FunctionResult, 0),
		Recovered: result.HasErrors(),
	}

	globals := parser.Globals(result)
	for fn := range parser.Functions(result) {
		fr.Functions = append(fr.Functions, a.AnalyzeFunction(&fn, globals))
	}

	return fr
}

// AnalyzeSource parses and analyzes in-memory source.
func (a *Analyzer) AnalyzeSource(source []byte, path string) (*FileResult, error) {
	return a.analyzeWith(a.parser, path, source)
}

// AnalyzeFile reads and analyzes a single file.
func (a *Analyzer) AnalyzeFile(path string) (*FileResult, error) {
	if parser.DetectLanguage(path) == parser.LangUnknown {
		return nil, fmt.Errorf("%w for file: %s", parser.ErrUnsupportedLanguage, path)
	}
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return a.AnalyzeSource(source, path)
}

// Analysis is the result of one run over many files.
type Analysis struct {
	// Files is sorted by path.
	Files []FileResult `json:"files"`
	// Skipped lists files that could not be read or parsed.
	Skipped []fileproc.ProcessingError `json:"-"`
}

// Functions returns every function result in file order.
func (a *Analysis) Functions() []FunctionResult {
	var all []FunctionResult
	for _, f := range a.Files {
		all = append(all, f.Functions...)
	}
	return all
}

// Analyze analyzes files in parallel. A file that cannot be read or parsed
// is skipped and listed in Analysis.Skipped; the run itself never fails
// because of one file. Progress is tracked via context using analyzer.WithTracker.
func (a *Analyzer) Analyze(ctx context.Context, files []string) (*Analysis, error) {
	results, errs := fileproc.MapFiles(ctx, files, fileproc.Options{
		Workers:     a.workers,
		MaxFileSize: a.maxFileSize,
	}, func(psr *parser.Parser, path string, content []byte) (FileResult, error) {
		fr, err := a.analyzeWith(psr, path, content)
		if err != nil {
			return FileResult{}, err
		}
		return *fr, nil
	})

	sort.Slice(results, func(i, j int) bool { return results[i].Path < results[j].Path })
	return &Analysis{Files: results, Skipped: errs.Sorted()}, nil
}

func (a *Analyzer) analyzeWith(psr *parser.Parser, path string, source []byte) (*FileResult, error) {
	hash := ""
	key := path + "@" + cache.Fingerprint(resultVersion, string(a.runs))
	if a.cache.Enabled() {
		hash = cache.HashBytes(source)
		var cached FileResult
		if a.cache.Load(key, hash, &cached) {
			return &cached, nil
		}
	}

	result, err := psr.Parse(source, path)
	if err != nil {
		return nil, err
	}
	fr := a.AnalyzeParseResult(result)

	if a.cache.Enabled() {
		_ = a.cache.Store(key, hash, fr)
	}
	return fr, nil
}
