package report

import (
	"bufio"
	"fmt"
	"io"

	"github.com/knots-cli/knots/pkg/analyzer/complexity"
)

// WriteDetails writes one block per function with every metric and the
// test score breakdown, followed by a blank line.
func WriteDetails(w io.Writer, an *complexity.Analysis) error {
	bw := bufio.NewWriter(w)
	for _, file := range an.Files {
		for i := range file.Functions {
			writeFunction(bw, &file.Functions[i])
		}
	}
	return bw.Flush()
}

func writeFunction(w io.Writer, fn *complexity.FunctionResult) {
	ts := fn.TestScore
	fmt.Fprintf(w, "Function: %s %s [%s:%d]\n", fn.Name, fn.Severity.Emoji(), fn.File, fn.StartLine)
	fmt.Fprintf(w, "  McCabe Complexity: %d\n", fn.McCabe)
	fmt.Fprintf(w, "  Cognitive Complexity: %d\n", fn.Cognitive)
	fmt.Fprintf(w, "  Nesting Depth: %d\n", fn.NestingDepth)
	fmt.Fprintf(w, "  SLOC: %d\n", fn.SLOC)
	fmt.Fprintf(w, "  ABC: <%d,%d,%d> magnitude %.2f\n", fn.ABC.Assignments, fn.ABC.Branches, fn.ABC.Conditions, fn.ABC.Magnitude)
	fmt.Fprintf(w, "  Return Count: %d\n", fn.Returns)
	fmt.Fprintf(w, "  Test Score: %d (%s, %s)\n", ts.Total, ts.Difficulty(), ts.Difficulty().Automation())
	fmt.Fprintf(w, "    - Signature: %d\n", ts.Signature)
	fmt.Fprintf(w, "    - Dependency: %d\n", ts.Dependency)
	fmt.Fprintf(w, "    - Observable: %d\n", ts.Observable)
	fmt.Fprintf(w, "    - Implementation: %d\n", ts.Implementation)
	fmt.Fprintf(w, "    - Documentation: %d\n", ts.Documentation)
	fmt.Fprintf(w, "  Quadrant: %s\n", fn.Quadrant)
	fmt.Fprintf(w, "  Max Complexity: %d\n\n", fn.MaxComplexity())
}
