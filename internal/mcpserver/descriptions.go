package mcpserver

// Tool descriptions with interpretation guidance for LLMs.

func describeComplexity() string {
	return `Measures McCabe, cognitive, nesting, SLOC, ABC and return-count metrics for every C function, plus a test score estimating how hard the function is to cover with generated tests.

USE WHEN:
- Deciding which C functions to refactor before writing tests
- Finding the most complex functions in a file or source tree
- Reviewing whether a change made a function harder to test

INTERPRETING RESULTS:
- max(mccabe, cognitive) <= 10 is good, <= 20 okay, <= 49 bad, 50 and above worst
- nesting_depth > 4: deeply nested, consider early returns or extraction
- test_score: lower is easier; documentation tags (@param, @return, @pre...) lower it
- test_score <= 5 trivial, <= 10 easy, <= 15 moderate, <= 25 hard, above that very hard
- top lists the worst functions by max(mccabe, cognitive)
- distribution shows P50 and P90 across all functions

METRICS RETURNED:
- Per-function: mccabe, cognitive, nesting_depth, sloc, abc{a,b,c,magnitude}, returns, test_score breakdown, severity_band, testability_quadrant
- Totals and means over all functions
- Files that could not be read or parsed`
}

func describeMatrix() string {
	return `Places every C function in a 2x2 testability matrix using McCabe complexity and test score, both split at 10.

USE WHEN:
- Planning which functions to test first
- Separating functions that need tests from functions that need documentation or refactoring

INTERPRETING RESULTS:
- QuickWin: simple and easy to test, cover these first
- InvestInTests: complex but testable, worth thorough test suites
- AddDocs: simple but hard to test, documenting contracts usually lowers the score
- Refactor: complex and hard to test, split before testing

METRICS RETURNED:
- Functions grouped by quadrant with file, line, mccabe and test score
- Count per quadrant and the thresholds used`
}

func describeRatio() string {
	return `Compares the total McCabe complexity of a C test file with that of the source file it tests, and checks that the tests mention the integer boundary values the source's parameters can take.

USE WHEN:
- Checking that a test file grew along with the code it covers
- Finding boundary values (INT_MAX, 0, -1, 255...) missing from tests

INTERPRETING RESULTS:
- mccabe_ratio = test / source; passed when at or above threshold (default 0.70)
- boundary coverage compares values found in the test file against values implied by the source's integer parameters (default 80% required)
- level warn reports a failure without failing; level error fails
- recommendations list the complexity gap and the most complex source functions

METRICS RETURNED:
- Test and source McCabe and cognitive totals with both ratios
- Boundary coverage: required values, values found, missing values
- Recommendations when the check did not pass`
}
