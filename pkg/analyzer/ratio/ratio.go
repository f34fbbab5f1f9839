// Package ratio compares the complexity of a C test file against the source
// file it tests, and checks that the tests mention the source's integer
// boundary values.
package ratio

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/knots-cli/knots/pkg/analyzer/aggregate"
	"github.com/knots-cli/knots/pkg/analyzer/complexity"
)

// Level decides whether a failed check only warns or fails the run.
type Level string

const (
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// ErrInvalidOptions is returned by Options.Validate.
var ErrInvalidOptions = errors.New("invalid ratio options")

// Options configure one evaluation.
type Options struct {
	// Threshold is the minimum test/source McCabe ratio, in [0, 2].
	Threshold float64
	// BoundaryThreshold is the minimum boundary coverage fraction, in [0, 1].
	BoundaryThreshold float64
	Level             Level
	CheckBoundaries   bool
}

// DefaultOptions returns 70% ratio, 80% boundary coverage, warn level.
func DefaultOptions() Options {
	return Options{
		Threshold:         0.70,
		BoundaryThreshold: 0.80,
		Level:             LevelWarn,
		CheckBoundaries:   true,
	}
}

// Validate checks option ranges.
func (o Options) Validate() error {
	if o.Threshold < 0 || o.Threshold > 2 {
		return fmt.Errorf("%w: threshold must be between 0.0 and 2.0, got %g", ErrInvalidOptions, o.Threshold)
	}
	if o.BoundaryThreshold < 0 || o.BoundaryThreshold > 1 {
		return fmt.Errorf("%w: boundary threshold must be between 0.0 and 1.0, got %g", ErrInvalidOptions, o.BoundaryThreshold)
	}
	if o.Level != LevelWarn && o.Level != LevelError {
		return fmt.Errorf("%w: level must be %q or %q, got %q", ErrInvalidOptions, LevelWarn, LevelError, o.Level)
	}
	return nil
}

// Input is one side of the comparison: its analysis and raw text.
type Input struct {
	Result  *complexity.FileResult
	Content []byte
}

// FunctionRef points at a source function worth more tests.
type FunctionRef struct {
	Name      string `json:"name"`
	McCabe    int    `json:"mccabe"`
	StartLine uint32 `json:"line_start"`
	EndLine   uint32 `json:"line_end"`
}

// maxListed caps the functions and boundaries listed in recommendations.
const maxListed = 5

// Recommendations explain a failed evaluation.
type Recommendations struct {
	// MissingPoints is set when the ratio is below threshold: the average of
	// the McCabe and cognitive points the tests lack.
	MissingPoints int `json:"missing_points,omitempty"`
	// GapPercent is the ratio shortfall in percentage points.
	GapPercent        int           `json:"gap_percent,omitempty"`
	ComplexFunctions  []FunctionRef `json:"complex_functions,omitempty"`
	MissingBoundaries []string      `json:"missing_boundaries,omitempty"`
	// MoreBoundaries counts missing boundaries beyond those listed.
	MoreBoundaries int `json:"more_boundaries,omitempty"`
}

// Result is the verdict of one test/source comparison.
type Result struct {
	TestFile          string           `json:"test_file"`
	SourceFile        string           `json:"source_file"`
	Passed            bool             `json:"passed"`
	TestMcCabe        int              `json:"test_mccabe"`
	SourceMcCabe      int              `json:"source_mccabe"`
	TestCognitive     int              `json:"test_cognitive"`
	SourceCognitive   int              `json:"source_cognitive"`
	McCabeRatio       float64          `json:"mccabe_ratio"`
	CognitiveRatio    float64          `json:"cognitive_ratio"`
	Threshold         float64          `json:"threshold"`
	BoundaryThreshold float64          `json:"boundary_threshold"`
	Level             Level            `json:"level"`
	TestFunctions     int              `json:"test_functions"`
	SourceFunctions   int              `json:"source_functions"`
	Boundaries        *Coverage        `json:"boundaries,omitempty"`
	Recommendations   *Recommendations `json:"recommendations,omitempty"`
}

// GateFailed reports whether the result should fail the process.
func (r *Result) GateFailed() bool {
	return !r.Passed && r.Level == LevelError
}

// Ratio divides test by source; a source without complexity yields 1.
func Ratio(test, source int) float64 {
	if source <= 0 {
		return 1
	}
	return float64(test) / float64(source)
}

// Evaluate compares test against source. Only the McCabe ratio and the
// boundary coverage decide Passed; the cognitive ratio is informational.
func Evaluate(test, source Input, opts Options) *Result {
	testReport := summarize(test.Result)
	sourceReport := summarize(source.Result)

	r := &Result{
		TestFile:          pathOf(test.Result),
		SourceFile:        pathOf(source.Result),
		TestMcCabe:        testReport.McCabe,
		SourceMcCabe:      sourceReport.McCabe,
		TestCognitive:     testReport.Cognitive,
		SourceCognitive:   sourceReport.Cognitive,
		Threshold:         opts.Threshold,
		BoundaryThreshold: opts.BoundaryThreshold,
		Level:             opts.Level,
		TestFunctions:     testReport.Functions,
		SourceFunctions:   sourceReport.Functions,
	}
	r.McCabeRatio = Ratio(r.TestMcCabe, r.SourceMcCabe)
	r.CognitiveRatio = Ratio(r.TestCognitive, r.SourceCognitive)
	r.Passed = r.McCabeRatio >= opts.Threshold

	if opts.CheckBoundaries {
		r.Boundaries = BoundaryCoverage(DetectBoundaries(source.Content), test.Content)
		if r.Boundaries.Percent < opts.BoundaryThreshold*100 {
			r.Passed = false
		}
	}

	if !r.Passed {
		r.Recommendations = recommend(r, source.Result, opts)
	}
	return r
}

func summarize(fr *complexity.FileResult) aggregate.Totals {
	if fr == nil {
		return aggregate.Totals{}
	}
	agg := aggregate.New(0)
	agg.AddFile(fr)
	return agg.Report().Totals
}

func pathOf(fr *complexity.FileResult) string {
	if fr == nil {
		return ""
	}
	return fr.Path
}

func recommend(r *Result, source *complexity.FileResult, opts Options) *Recommendations {
	rec := &Recommendations{}

	if r.McCabeRatio < opts.Threshold {
		rec.GapPercent = int((opts.Threshold - r.McCabeRatio) * 100)
		missingMcCabe := max(int(float64(r.SourceMcCabe)*opts.Threshold)-r.TestMcCabe, 0)
		missingCognitive := max(int(float64(r.SourceCognitive)*opts.Threshold)-r.TestCognitive, 0)
		rec.MissingPoints = (missingMcCabe + missingCognitive) / 2
	}

	if source != nil {
		for _, fn := range source.Functions {
			if fn.McCabe > 5 {
				rec.ComplexFunctions = append(rec.ComplexFunctions, FunctionRef{
					Name:      fn.Name,
					McCabe:    fn.McCabe,
					StartLine: fn.StartLine,
					EndLine:   fn.EndLine,
				})
			}
		}
		sort.SliceStable(rec.ComplexFunctions, func(i, j int) bool {
			return rec.ComplexFunctions[i].McCabe > rec.ComplexFunctions[j].McCabe
		})
		if len(rec.ComplexFunctions) > maxListed {
			rec.ComplexFunctions = rec.ComplexFunctions[:maxListed]
		}
	}

	if b := r.Boundaries; b != nil && b.Percent < opts.BoundaryThreshold*100 {
		rec.MissingBoundaries = b.Missing
		if len(b.Missing) > maxListed {
			rec.MissingBoundaries = b.Missing[:maxListed]
			rec.MoreBoundaries = len(b.Missing) - maxListed
		}
	}

	return rec
}

// AnalyzeFiles reads and analyzes testPath and sourcePath with a, then
// evaluates them. Unlike a corpus run, a file that cannot be read or parsed
// is an error here.
func AnalyzeFiles(a *complexity.Analyzer, testPath, sourcePath string, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	test, err := load(a, testPath)
	if err != nil {
		return nil, fmt.Errorf("test file: %w", err)
	}
	source, err := load(a, sourcePath)
	if err != nil {
		return nil, fmt.Errorf("source file: %w", err)
	}
	return Evaluate(test, source, opts), nil
}

func load(a *complexity.Analyzer, path string) (Input, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Input{}, err
	}
	fr, err := a.AnalyzeSource(content, path)
	if err != nil {
		return Input{}, fmt.Errorf("%s: %w", path, err)
	}
	return Input{Result: fr, Content: content}, nil
}
