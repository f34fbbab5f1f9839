package report

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/knots-cli/knots/internal/output"
	"github.com/knots-cli/knots/pkg/analyzer/aggregate"
	"github.com/knots-cli/knots/pkg/analyzer/complexity"
	"gonum.org/v1/gonum/stat"
)

// Summary renders an analysis run: every function (or the top-K in
// detailed mode), totals, averages, percentiles and processed/skipped counts.
type Summary struct {
	Analysis *complexity.Analysis
	Report   *aggregate.Report
	Meta     Metadata
	// TopOnly lists only the top-K functions instead of every function.
	TopOnly bool
	// DetailsFile, when set, is mentioned as the location of per-function details.
	DetailsFile string
}

// NewSummary aggregates an keeping the topK worst functions.
func NewSummary(an *complexity.Analysis, topK int, version string, paths []string) *Summary {
	if paths == nil {
		paths = []string{}
	}
	return &Summary{
		Analysis: an,
		Report:   aggregate.FromAnalysis(an, topK).Report(),
		Meta: Metadata{
			SchemaVersion: SchemaVersion,
			KnotsVersion:  version,
			GeneratedAt:   time.Now().UTC(),
			Paths:         paths,
		},
	}
}

// Distribution computes the P50/P90 of McCabe and cognitive complexity.
func (s *Summary) Distribution() Distribution {
	fns := s.Analysis.Functions()
	mccabe := make([]float64, len(fns))
	cognitive := make([]float64, len(fns))
	for i, fn := range fns {
		mccabe[i] = float64(fn.McCabe)
		cognitive[i] = float64(fn.Cognitive)
	}
	return Distribution{McCabe: percentiles(mccabe), Cognitive: percentiles(cognitive)}
}

func percentiles(values []float64) Percentiles {
	if len(values) == 0 {
		return Percentiles{}
	}
	slices.Sort(values)
	return Percentiles{
		P50: stat.Quantile(0.5, stat.Empirical, values, nil),
		P90: stat.Quantile(0.9, stat.Empirical, values, nil),
	}
}

// RenderData returns the AnalysisReport.
func (s *Summary) RenderData() any {
	files := s.Analysis.Files
	if files == nil {
		files = []complexity.FileResult{}
	}
	return &AnalysisReport{
		Metadata:     s.Meta,
		Files:        files,
		Totals:       s.Report.Totals,
		Means:        s.Report.Means,
		Distribution: s.Distribution(),
		Top:          s.Report.Top,
		Skipped:      Skipped(s.Analysis.Skipped),
	}
}

func (s *Summary) document(colored bool) *output.Document {
	doc := &output.Document{}
	if s.TopOnly {
		doc.Parts = append(doc.Parts, s.topTable(colored))
	} else {
		doc.Parts = append(doc.Parts, s.functionTable(colored))
	}
	doc.Parts = append(doc.Parts, s.totalsSection(), s.filesSection())
	return doc
}

func (s *Summary) RenderText(w io.Writer, colored bool) error {
	return s.document(colored).RenderText(w, colored)
}

func (s *Summary) RenderMarkdown(w io.Writer) error {
	return s.document(false).RenderMarkdown(w)
}

var functionHeaders = []string{
	"File", "Function", "Line", "McCabe", "Cognitive", "Nesting", "SLOC", "ABC", "Returns", "Test Score", "Quadrant", "Status",
}

func functionRow(fn *complexity.FunctionResult, colored bool) []string {
	status := string(fn.Severity)
	if colored {
		status = output.SeverityColor(status, fn.Severity.Emoji()+" "+status)
	} else {
		status = fn.Severity.Emoji() + " " + status
	}
	return []string{
		fn.File,
		fn.Name,
		fmt.Sprintf("%d", fn.StartLine),
		fmt.Sprintf("%d", fn.McCabe),
		fmt.Sprintf("%d", fn.Cognitive),
		fmt.Sprintf("%d", fn.NestingDepth),
		fmt.Sprintf("%d", fn.SLOC),
		fmt.Sprintf("%.2f", fn.ABC.Magnitude),
		fmt.Sprintf("%d", fn.Returns),
		fmt.Sprintf("%d (%s)", fn.TestScore.Total, fn.TestScore.Difficulty()),
		string(fn.Quadrant),
		status,
	}
}

func (s *Summary) functionTable(colored bool) *output.Table {
	fns := s.Analysis.Functions()
	rows := make([][]string, 0, len(fns))
	for i := range fns {
		rows = append(rows, functionRow(&fns[i], colored))
	}
	return output.NewTable("Function Complexity", functionHeaders, rows, nil, nil)
}

func (s *Summary) topTable(colored bool) *output.Table {
	headers := append([]string{"Rank"}, functionHeaders...)
	rows := make([][]string, 0, len(s.Report.Top))
	for i := range s.Report.Top {
		row := append([]string{fmt.Sprintf("%d", i+1)}, functionRow(&s.Report.Top[i], colored)...)
		rows = append(rows, row)
	}
	title := fmt.Sprintf("Top %d Most Complex Functions", len(s.Report.Top))
	return output.NewTable(title, headers, rows, nil, nil)
}

func (s *Summary) totalsSection() *output.Section {
	t, m, d := s.Report.Totals, s.Report.Means, s.Distribution()

	var b strings.Builder
	fmt.Fprintf(&b, "Functions:          %d\n", t.Functions)
	fmt.Fprintf(&b, "McCabe:             %d (avg %.2f, P50 %.0f, P90 %.0f)\n", t.McCabe, m.McCabe, d.McCabe.P50, d.McCabe.P90)
	fmt.Fprintf(&b, "Cognitive:          %d (avg %.2f, P50 %.0f, P90 %.0f)\n", t.Cognitive, m.Cognitive, d.Cognitive.P50, d.Cognitive.P90)
	fmt.Fprintf(&b, "Nesting Depth:      %d (avg %.2f)\n", t.NestingDepth, m.NestingDepth)
	fmt.Fprintf(&b, "SLOC:               %d (avg %.2f)\n", t.SLOC, m.SLOC)
	fmt.Fprintf(&b, "ABC Magnitude:      %.2f (avg %.2f)\n", float64(t.MagnitudeCents)/100, m.Magnitude)
	fmt.Fprintf(&b, "Returns:            %d (avg %.2f)\n", t.Returns, m.Returns)
	fmt.Fprintf(&b, "Test Score:         %d (avg %.2f)", t.TestScore, m.TestScore)

	return &output.Section{Title: "Totals & Averages", Content: b.String()}
}

func (s *Summary) filesSection() *output.Section {
	processed := len(s.Analysis.Files)
	skipped := len(s.Analysis.Skipped)

	var b strings.Builder
	fmt.Fprintf(&b, "Total files found:      %d\n", processed+skipped)
	fmt.Fprintf(&b, "Successfully processed: %d", processed)
	if skipped > 0 {
		fmt.Fprintf(&b, "\nSkipped (read/encoding/parse errors): %d", skipped)
		for _, e := range s.Analysis.Skipped {
			fmt.Fprintf(&b, "\n  - %s", e.Error())
		}
	}
	if s.DetailsFile != "" {
		fmt.Fprintf(&b, "\n\nDetailed per-function output written to %s", s.DetailsFile)
	}
	return &output.Section{Title: "Files Processed", Content: b.String()}
}
