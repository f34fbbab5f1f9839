// Package testability places functions in a 2x2 matrix of complexity versus
// test difficulty.
package testability

import "sort"

// Quadrant is one cell of the testability matrix.
type Quadrant string

const (
	QuadrantQuickWin      Quadrant = "QuickWin"
	QuadrantInvestInTests Quadrant = "InvestInTests"
	QuadrantAddDocs       Quadrant = "AddDocs"
	QuadrantRefactor      Quadrant = "Refactor"
)

// Fixed thresholds: values at or below are "low".
const (
	McCabeThreshold    = 10
	TestScoreThreshold = 10
)

// Classify maps McCabe complexity and test score total onto a quadrant.
func Classify(mccabe, testScore int) Quadrant {
	lowComplexity := mccabe <= McCabeThreshold
	easyToTest := testScore <= TestScoreThreshold

	switch {
	case lowComplexity && easyToTest:
		return QuadrantQuickWin
	case !lowComplexity && easyToTest:
		return QuadrantInvestInTests
	case lowComplexity && !easyToTest:
		return QuadrantAddDocs
	default:
		return QuadrantRefactor
	}
}

// Quadrants lists every quadrant in display order.
func Quadrants() []Quadrant {
	return []Quadrant{QuadrantQuickWin, QuadrantInvestInTests, QuadrantAddDocs, QuadrantRefactor}
}

// Description is the one-line advice shown for a quadrant.
func (q Quadrant) Description() string {
	switch q {
	case QuadrantQuickWin:
		return "Low complexity, easy to test: generate tests first"
	case QuadrantInvestInTests:
		return "High complexity, testable: worth thorough test investment"
	case QuadrantAddDocs:
		return "Low complexity, hard to test: add documentation tags"
	default:
		return "High complexity, hard to test: refactor before testing"
	}
}

// Entry is a function placed in the matrix.
type Entry struct {
	File      string   `json:"file"`
	Name      string   `json:"name"`
	Line      uint32   `json:"line"`
	McCabe    int      `json:"mccabe"`
	TestScore int      `json:"test_score"`
	Quadrant  Quadrant `json:"quadrant"`
}

// Matrix groups entries by quadrant.
type Matrix struct {
	Cells  map[Quadrant][]Entry `json:"cells"`
	Counts map[Quadrant]int     `json:"counts"`
	Total  int                  `json:"total"`
}

// NewMatrix classifies entries and groups them. Within a cell entries are
// ordered by file, line and name.
func NewMatrix(entries []Entry) *Matrix {
	m := &Matrix{
		Cells:  make(map[Quadrant][]Entry, 4),
		Counts: make(map[Quadrant]int, 4),
	}
	for _, q := range Quadrants() {
		m.Cells[q] = []Entry{}
		m.Counts[q] = 0
	}
	for _, e := range entries {
		e.Quadrant = Classify(e.McCabe, e.TestScore)
		m.Cells[e.Quadrant] = append(m.Cells[e.Quadrant], e)
		m.Counts[e.Quadrant]++
		m.Total++
	}
	for _, cell := range m.Cells {
		sort.Slice(cell, func(i, j int) bool {
			if cell[i].File != cell[j].File {
				return cell[i].File < cell[j].File
			}
			if cell[i].Line != cell[j].Line {
				return cell[i].Line < cell[j].Line
			}
			return cell[i].Name < cell[j].Name
		})
	}
	return m
}
