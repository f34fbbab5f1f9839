package complexity

import (
	"math"

	"github.com/knots-cli/knots/pkg/analyzer/testability"
	"github.com/knots-cli/knots/pkg/analyzer/testscore"
)

// ABC is the assignment/branch/condition vector of a function.
type ABC struct {
	Assignments int     `json:"a"`
	Branches    int     `json:"b"`
	Conditions  int     `json:"c"`
	Magnitude   float64 `json:"magnitude"`
}

// NewABC builds an ABC vector with its magnitude rounded to two decimals.
func NewABC(a, b, c int) ABC {
	return ABC{
		Assignments: a,
		Branches:    b,
		Conditions:  c,
		Magnitude:   roundTo(math.Sqrt(float64(a*a+b*b+c*c)), 2),
	}
}

func roundTo(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}

// Metrics holds the structural measurements of one function.
// McCabe is never below 1.
type Metrics struct {
	McCabe       int `json:"mccabe"`
	Cognitive    int `json:"cognitive"`
	NestingDepth int `json:"nesting_depth"`
	SLOC         int `json:"sloc"`
	ABC          ABC `json:"abc"`
	Returns      int `json:"returns"`
}

// MaxComplexity returns max(mccabe, cognitive), the ranking key used for
// severity, top-K lists and filtering.
func (m Metrics) MaxComplexity() int {
	return max(m.McCabe, m.Cognitive)
}

// Severity is a coarse bucket over MaxComplexity.
type Severity string

const (
	SeverityGood  Severity = "good"
	SeverityOkay  Severity = "okay"
	SeverityBad   Severity = "bad"
	SeverityWorst Severity = "worst"
)

// SeverityFor buckets a max complexity value: <=10 good, <=20 okay, <=49 bad.
func SeverityFor(maxComplexity int) Severity {
	switch {
	case maxComplexity <= 10:
		return SeverityGood
	case maxComplexity <= 20:
		return SeverityOkay
	case maxComplexity <= 49:
		return SeverityBad
	default:
		return SeverityWorst
	}
}

// Emoji returns the status glyph shown next to a function in text reports.
func (s Severity) Emoji() string {
	switch s {
	case SeverityGood:
		return "✅"
	case SeverityOkay:
		return "⚠️"
	case SeverityBad:
		return "❌"
	default:
		return "💀"
	}
}

// FunctionResult is the full per-function output of the engine.
type FunctionResult struct {
	Name      string `json:"name"`
	File      string `json:"file"`
	StartLine uint32 `json:"line_start"`
	EndLine   uint32 `json:"line_end"`
	Metrics
	TestScore testscore.Breakdown  `json:"test_score"`
	Severity  Severity             `json:"severity_band"`
	Quadrant  testability.Quadrant `json:"testability_quadrant"`
}

// FileResult holds every function analyzed in one file.
type FileResult struct {
	Path      string           `json:"path"`
	Functions []FunctionResult `json:"functions"`
	// Recovered is set when the parser had to recover from syntax errors.
	Recovered bool `json:"recovered,omitempty"`
}

// McCabeSum returns the sum of McCabe complexity over all functions.
func (f *FileResult) McCabeSum() int {
	sum := 0
	for _, fn := range f.Functions {
		sum += fn.McCabe
	}
	return sum
}

// CognitiveSum returns the sum of cognitive complexity over all functions.
func (f *FileResult) CognitiveSum() int {
	sum := 0
	for _, fn := range f.Functions {
		sum += fn.Cognitive
	}
	return sum
}
