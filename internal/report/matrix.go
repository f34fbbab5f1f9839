package report

import (
	"fmt"
	"io"

	"github.com/knots-cli/knots/internal/output"
	"github.com/knots-cli/knots/pkg/analyzer/complexity"
	"github.com/knots-cli/knots/pkg/analyzer/testability"
)

// Matrix renders the testability matrix with one table per quadrant.
type Matrix struct {
	*testability.Matrix
}

// NewMatrix groups every function of an by quadrant.
func NewMatrix(an *complexity.Analysis) *Matrix {
	fns := an.Functions()
	entries := make([]testability.Entry, 0, len(fns))
	for _, fn := range fns {
		entries = append(entries, testability.Entry{
			File:      fn.File,
			Name:      fn.Name,
			Line:      fn.StartLine,
			McCabe:    fn.McCabe,
			TestScore: fn.TestScore.Total,
		})
	}
	return &Matrix{testability.NewMatrix(entries)}
}

func (m *Matrix) RenderData() any {
	return m.Matrix
}

func (m *Matrix) document(colored bool) *output.Document {
	doc := &output.Document{Title: "Function Testability Matrix"}

	rows := make([][]string, 0, 4)
	for _, q := range testability.Quadrants() {
		name := string(q)
		if colored {
			name = output.SeverityColor(name, name)
		}
		rows = append(rows, []string{name, fmt.Sprintf("%d", m.Counts[q]), q.Description()})
	}
	doc.Parts = append(doc.Parts, output.NewTable("Quadrants",
		[]string{"Quadrant", "Functions", "Advice"}, rows,
		[]string{"Total", fmt.Sprintf("%d", m.Total), fmt.Sprintf("McCabe > %d or test score > %d is high",
			testability.McCabeThreshold, testability.TestScoreThreshold)},
		nil))

	for _, q := range testability.Quadrants() {
		cell := m.Cells[q]
		if len(cell) == 0 {
			continue
		}
		rows := make([][]string, 0, len(cell))
		for _, e := range cell {
			rows = append(rows, []string{e.File, e.Name, fmt.Sprintf("%d", e.Line),
				fmt.Sprintf("%d", e.McCabe), fmt.Sprintf("%d", e.TestScore)})
		}
		doc.Parts = append(doc.Parts, output.NewTable(string(q),
			[]string{"File", "Function", "Line", "McCabe", "Test Score"}, rows, nil, nil))
	}
	return doc
}

func (m *Matrix) RenderText(w io.Writer, colored bool) error {
	return m.document(colored).RenderText(w, colored)
}

func (m *Matrix) RenderMarkdown(w io.Writer) error {
	return m.document(false).RenderMarkdown(w)
}
