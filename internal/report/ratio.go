package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/knots-cli/knots/internal/output"
	"github.com/knots-cli/knots/pkg/analyzer/ratio"
)

// Ratio renders a test/source complexity comparison.
type Ratio struct {
	*ratio.Result
}

func (r *Ratio) RenderData() any {
	return r.Result
}

func (r *Ratio) verdict(colored bool) string {
	v := "PASS"
	if !r.Passed {
		v = "FAIL"
		if r.Level == ratio.LevelWarn {
			v = "WARN"
		}
	}
	if colored {
		return output.SeverityColor(strings.ToLower(v), v)
	}
	return v
}

func (r *Ratio) document(colored bool) *output.Document {
	doc := &output.Document{Title: "Test Complexity Ratio"}

	rows := [][]string{
		{"McCabe", fmt.Sprintf("%d", r.TestMcCabe), fmt.Sprintf("%d", r.SourceMcCabe), fmt.Sprintf("%.2f", r.McCabeRatio)},
		{"Cognitive", fmt.Sprintf("%d", r.TestCognitive), fmt.Sprintf("%d", r.SourceCognitive), fmt.Sprintf("%.2f", r.CognitiveRatio)},
		{"Functions", fmt.Sprintf("%d", r.TestFunctions), fmt.Sprintf("%d", r.SourceFunctions), ""},
	}
	doc.Parts = append(doc.Parts, output.NewTable(
		fmt.Sprintf("%s vs %s", r.TestFile, r.SourceFile),
		[]string{"Metric", "Test", "Source", "Ratio"}, rows, nil, nil))

	var b strings.Builder
	fmt.Fprintf(&b, "Verdict: %s (threshold %.2f)", r.verdict(colored), r.Threshold)
	if r.Boundaries != nil {
		fmt.Fprintf(&b, "\nBoundary coverage: %.1f%% of %d boundaries (threshold %.0f%%)",
			r.Boundaries.Percent, len(r.Boundaries.Required), r.BoundaryThreshold*100)
	}
	doc.Parts = append(doc.Parts, &output.Section{Title: "Result", Content: b.String()})

	if rec := r.Recommendations; rec != nil {
		doc.Parts = append(doc.Parts, &output.Section{Title: "Recommendations", Content: recommendations(rec)})
	}
	return doc
}

func recommendations(rec *ratio.Recommendations) string {
	var lines []string
	if rec.GapPercent > 0 {
		lines = append(lines, fmt.Sprintf("Increase test complexity by %d%% (about %d more complexity points)",
			rec.GapPercent, rec.MissingPoints))
	}
	if len(rec.ComplexFunctions) > 0 {
		lines = append(lines, "Focus on these complex functions:")
		for _, fn := range rec.ComplexFunctions {
			lines = append(lines, fmt.Sprintf("  - %s (McCabe %d, lines %d-%d)", fn.Name, fn.McCabe, fn.StartLine, fn.EndLine))
		}
	}
	if len(rec.MissingBoundaries) > 0 {
		lines = append(lines, "Add boundary tests for:")
		for _, m := range rec.MissingBoundaries {
			lines = append(lines, "  - "+m)
		}
		if rec.MoreBoundaries > 0 {
			lines = append(lines, fmt.Sprintf("  ... and %d more", rec.MoreBoundaries))
		}
	}
	return strings.Join(lines, "\n")
}

func (r *Ratio) RenderText(w io.Writer, colored bool) error {
	return r.document(colored).RenderText(w, colored)
}

func (r *Ratio) RenderMarkdown(w io.Writer) error {
	return r.document(false).RenderMarkdown(w)
}
