// Package aggregate reduces per-function results into per-file and corpus
// totals, means and a ranked list of the worst functions.
//
// Every reduction is a sum or a bounded top-K selection, so partial
// aggregates built in any order merge into the same report.
package aggregate

import (
	"math"
	"sort"

	"github.com/knots-cli/knots/pkg/analyzer/complexity"
)

// DefaultTopK is the number of worst functions kept when none is configured.
const DefaultTopK = 5

// Totals are the integer sums of every metric field over a set of functions.
// ABC magnitude is summed in hundredths to keep the reduction exact.
type Totals struct {
	Functions      int   `json:"functions"`
	McCabe         int   `json:"mccabe"`
	Cognitive      int   `json:"cognitive"`
	NestingDepth   int   `json:"nesting_depth"`
	SLOC           int   `json:"sloc"`
	Returns        int   `json:"returns"`
	Assignments    int   `json:"abc_assignments"`
	Branches       int   `json:"abc_branches"`
	Conditions     int   `json:"abc_conditions"`
	MagnitudeCents int64 `json:"abc_magnitude_cents"`
	TestScore      int   `json:"test_score"`
}

func (t *Totals) add(fn *complexity.FunctionResult) {
	t.Functions++
	t.McCabe += fn.McCabe
	t.Cognitive += fn.Cognitive
	t.NestingDepth += fn.NestingDepth
	t.SLOC += fn.SLOC
	t.Returns += fn.Returns
	t.Assignments += fn.ABC.Assignments
	t.Branches += fn.ABC.Branches
	t.Conditions += fn.ABC.Conditions
	t.MagnitudeCents += int64(math.Round(fn.ABC.Magnitude * 100))
	t.TestScore += fn.TestScore.Total
}

func (t *Totals) merge(o Totals) {
	t.Functions += o.Functions
	t.McCabe += o.McCabe
	t.Cognitive += o.Cognitive
	t.NestingDepth += o.NestingDepth
	t.SLOC += o.SLOC
	t.Returns += o.Returns
	t.Assignments += o.Assignments
	t.Branches += o.Branches
	t.Conditions += o.Conditions
	t.MagnitudeCents += o.MagnitudeCents
	t.TestScore += o.TestScore
}

// Means are the arithmetic means of Totals. All zero when there are no functions.
type Means struct {
	McCabe       float64 `json:"mccabe"`
	Cognitive    float64 `json:"cognitive"`
	NestingDepth float64 `json:"nesting_depth"`
	SLOC         float64 `json:"sloc"`
	Returns      float64 `json:"returns"`
	Assignments  float64 `json:"abc_assignments"`
	Branches     float64 `json:"abc_branches"`
	Conditions   float64 `json:"abc_conditions"`
	Magnitude    float64 `json:"abc_magnitude"`
	TestScore    float64 `json:"test_score"`
}

// Means divides every sum by the function count.
func (t Totals) Means() Means {
	if t.Functions == 0 {
		return Means{}
	}
	n := float64(t.Functions)
	return Means{
		McCabe:       float64(t.McCabe) / n,
		Cognitive:    float64(t.Cognitive) / n,
		NestingDepth: float64(t.NestingDepth) / n,
		SLOC:         float64(t.SLOC) / n,
		Returns:      float64(t.Returns) / n,
		Assignments:  float64(t.Assignments) / n,
		Branches:     float64(t.Branches) / n,
		Conditions:   float64(t.Conditions) / n,
		Magnitude:    float64(t.MagnitudeCents) / 100 / n,
		TestScore:    float64(t.TestScore) / n,
	}
}

// Aggregate is a mergeable partial reduction.
type Aggregate struct {
	k      int
	corpus Totals
	files  map[string]*Totals
	top    []complexity.FunctionResult
}

// New creates an empty aggregate keeping the k worst functions.
// k <= 0 selects DefaultTopK.
func New(k int) *Aggregate {
	if k <= 0 {
		k = DefaultTopK
	}
	return &Aggregate{k: k, files: make(map[string]*Totals)}
}

// FromAnalysis reduces a whole analysis run.
func FromAnalysis(an *complexity.Analysis, k int) *Aggregate {
	a := New(k)
	if an == nil {
		return a
	}
	for i := range an.Files {
		a.AddFile(&an.Files[i])
	}
	return a
}

// AddFile adds every function of fr. A file without functions still counts
// as processed.
func (a *Aggregate) AddFile(fr *complexity.FileResult) {
	a.file(fr.Path)
	for i := range fr.Functions {
		a.Add(fr.Functions[i])
	}
}

// Add folds one function into the aggregate.
func (a *Aggregate) Add(fn complexity.FunctionResult) {
	a.corpus.add(&fn)
	a.file(fn.File).add(&fn)
	a.top = append(a.top, fn)
	a.trim()
}

// Merge folds o into a. The result does not depend on how functions were
// split between the two aggregates.
func (a *Aggregate) Merge(o *Aggregate) {
	if o == nil {
		return
	}
	a.k = max(a.k, o.k)
	a.corpus.merge(o.corpus)
	for path, t := range o.files {
		a.file(path).merge(*t)
	}
	a.top = append(a.top, o.top...)
	a.trim()
}

func (a *Aggregate) file(path string) *Totals {
	t, ok := a.files[path]
	if !ok {
		t = &Totals{}
		a.files[path] = t
	}
	return t
}

func (a *Aggregate) trim() {
	sort.SliceStable(a.top, func(i, j int) bool { return Worse(&a.top[i], &a.top[j]) })
	if len(a.top) > a.k {
		a.top = a.top[:a.k]
	}
}

// Worse reports whether x ranks ahead of y in the top-K list: higher
// max(mccabe, cognitive) first, then file path, function name and start line.
func Worse(x, y *complexity.FunctionResult) bool {
	if mx, my := x.MaxComplexity(), y.MaxComplexity(); mx != my {
		return mx > my
	}
	if x.File != y.File {
		return x.File < y.File
	}
	if x.Name != y.Name {
		return x.Name < y.Name
	}
	return x.StartLine < y.StartLine
}

// FileSummary is the aggregate of one file.
type FileSummary struct {
	Path   string `json:"path"`
	Totals Totals `json:"totals"`
	Means  Means  `json:"means"`
}

// Report is the immutable outcome of an aggregation.
type Report struct {
	Files  []FileSummary               `json:"files"`
	Totals Totals                      `json:"totals"`
	Means  Means                       `json:"means"`
	Top    []complexity.FunctionResult `json:"top"`
}

// Report snapshots the aggregate. Files are ordered by path.
func (a *Aggregate) Report() *Report {
	r := &Report{
		Files:  make([]FileSummary, 0, len(a.files)),
		Totals: a.corpus,
		Means:  a.corpus.Means(),
		Top:    make([]complexity.FunctionResult, len(a.top)),
	}
	copy(r.Top, a.top)
	for path, t := range a.files {
		r.Files = append(r.Files, FileSummary{Path: path, Totals: *t, Means: t.Means()})
	}
	sort.Slice(r.Files, func(i, j int) bool { return r.Files[i].Path < r.Files[j].Path })
	return r
}

// FileSum returns the sum of metric over the functions of path.
// It is the only view the ratio tool needs of a file.
func (r *Report) FileSum(path string, metric func(Totals) int) int {
	for _, f := range r.Files {
		if f.Path == path {
			return metric(f.Totals)
		}
	}
	return 0
}

// McCabe selects the McCabe sum from Totals.
func McCabe(t Totals) int { return t.McCabe }

// Cognitive selects the cognitive sum from Totals.
func Cognitive(t Totals) int { return t.Cognitive }
