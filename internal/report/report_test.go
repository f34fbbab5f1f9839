package report

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/knots-cli/knots/internal/fileproc"
	"github.com/knots-cli/knots/internal/output"
	"github.com/knots-cli/knots/pkg/analyzer/complexity"
	"github.com/knots-cli/knots/pkg/analyzer/ratio"
	"github.com/knots-cli/knots/pkg/analyzer/testability"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleSource = `/**
 * @brief Adds two numbers.
 * @param a first
 * @param b second
 * @return the sum
 */
int add(int a, int b) {
    return a + b;
}

int classify(int x) {
    if (x > 10) {
        if (x > 100) {
            return 2;
        }
        return 1;
    } else if (x < 0) {
        return -1;
    }
    for (int i = 0; i < x && i < 5; i++) {
        x--;
    }
    return 0;
}
`

func sampleAnalysis(t *testing.T) *complexity.Analysis {
	t.Helper()
	a := complexity.New()
	defer a.Close()

	fr, err := a.AnalyzeSource([]byte(sampleSource), "src/sample.c")
	require.NoError(t, err)
	return &complexity.Analysis{
		Files: []complexity.FileResult{*fr},
		Skipped: []fileproc.ProcessingError{
			{Path: "src/broken.c", Err: errors.New("source is not valid UTF-8")},
		},
	}
}

func compileSchema(t *testing.T) *jsonschema.Schema {
	t.Helper()
	sch, err := jsonschema.UnmarshalJSON(strings.NewReader(Schema))
	require.NoError(t, err, "parse schema")

	compiler := jsonschema.NewCompiler()
	require.NoError(t, compiler.AddResource("schema.json", sch))
	compiled, err := compiler.Compile("schema.json")
	require.NoError(t, err, "compile schema")
	return compiled
}

func validateJSON(t *testing.T, r output.Renderable) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, output.NewWriterFormatter(output.FormatJSON, &buf, false).Output(r))

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err, "parse output")
	if err := compileSchema(t).Validate(inst); err != nil {
		t.Errorf("JSON output does not conform to schema:\n%v\n%s", err, buf.String())
	}
}

func TestSummaryJSONValidAgainstSchema(t *testing.T) {
	validateJSON(t, NewSummary(sampleAnalysis(t), 5, "test", []string{"src"}))
}

func TestEmptySummaryJSONValidAgainstSchema(t *testing.T) {
	validateJSON(t, NewSummary(&complexity.Analysis{}, 5, "test", nil))
}

func TestSummaryRenderData(t *testing.T) {
	s := NewSummary(sampleAnalysis(t), 1, "v1", []string{"src"})
	data, ok := s.RenderData().(*AnalysisReport)
	require.True(t, ok)

	assert.Equal(t, SchemaVersion, data.Metadata.SchemaVersion)
	assert.Equal(t, "v1", data.Metadata.KnotsVersion)
	assert.Equal(t, 2, data.Totals.Functions)
	require.Len(t, data.Top, 1)
	assert.Equal(t, "classify", data.Top[0].Name)
	require.Len(t, data.Skipped, 1)
	assert.Equal(t, "src/broken.c", data.Skipped[0].Path)
	assert.Equal(t, "source is not valid UTF-8", data.Skipped[0].Error)
}

func TestPercentiles(t *testing.T) {
	assert.Equal(t, Percentiles{}, percentiles(nil))
	assert.Equal(t, Percentiles{P50: 3, P90: 10}, percentiles([]float64{10, 1, 4, 3, 2}))
	assert.Equal(t, Percentiles{P50: 7, P90: 7}, percentiles([]float64{7}))
}

func TestSummaryText(t *testing.T) {
	var buf bytes.Buffer
	s := NewSummary(sampleAnalysis(t), 5, "test", nil)
	s.DetailsFile = "report.txt"
	require.NoError(t, s.RenderText(&buf, false))

	out := buf.String()
	for _, want := range []string{
		"Function Complexity",
		"add",
		"classify",
		"Totals & Averages",
		"Functions:          2",
		"Total files found:      2",
		"Skipped (read/encoding/parse errors): 1",
		"src/broken.c: source is not valid UTF-8",
		"Detailed per-function output written to report.txt",
	} {
		assert.Contains(t, out, want)
	}
}

func TestSummaryTopOnlyMarkdown(t *testing.T) {
	var buf bytes.Buffer
	s := NewSummary(sampleAnalysis(t), 1, "test", nil)
	s.TopOnly = true
	require.NoError(t, s.RenderMarkdown(&buf))

	out := buf.String()
	assert.Contains(t, out, "## Top 1 Most Complex Functions")
	assert.Contains(t, out, "| 1 | src/sample.c | classify |")
	assert.NotContains(t, out, "| add |")
}

func TestWriteDetails(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteDetails(&buf, sampleAnalysis(t)))

	out := buf.String()
	assert.Contains(t, out, "Function: add ✅ [src/sample.c:7]\n")
	assert.Contains(t, out, "  McCabe Complexity: 1\n")
	assert.Contains(t, out, "    - Documentation: -7\n")
	assert.Contains(t, out, "Function: classify")
	assert.Equal(t, 2, strings.Count(out, "Function: "))
	assert.True(t, strings.HasSuffix(out, "\n\n"))
}

func TestMatrix(t *testing.T) {
	m := NewMatrix(sampleAnalysis(t))
	assert.Equal(t, 2, m.Total)
	assert.Equal(t, 2, m.Counts[testability.QuadrantQuickWin])

	var buf bytes.Buffer
	require.NoError(t, m.RenderText(&buf, false))
	out := buf.String()
	assert.Contains(t, out, "Function Testability Matrix")
	assert.Contains(t, out, testability.QuadrantQuickWin.Description())
	assert.Contains(t, out, "classify")

	buf.Reset()
	require.NoError(t, m.RenderMarkdown(&buf))
	assert.Contains(t, buf.String(), "## QuickWin")
	assert.NotContains(t, buf.String(), "## Refactor")
}

func TestRatioRendering(t *testing.T) {
	res := &ratio.Result{
		TestFile:          "test_sensor.c",
		SourceFile:        "sensor.c",
		TestMcCabe:        2,
		SourceMcCabe:      10,
		McCabeRatio:       0.2,
		Threshold:         0.7,
		BoundaryThreshold: 0.8,
		Level:             ratio.LevelWarn,
		Boundaries:        &ratio.Coverage{Percent: 50},
		Recommendations: &ratio.Recommendations{
			GapPercent:        50,
			MissingPoints:     5,
			ComplexFunctions:  []ratio.FunctionRef{{Name: "read_sensor", McCabe: 7, StartLine: 3, EndLine: 20}},
			MissingBoundaries: []string{"level (uint8_t): missing values [256]"},
			MoreBoundaries:    2,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, (&Ratio{res}).RenderText(&buf, false))
	out := buf.String()
	for _, want := range []string{
		"test_sensor.c vs sensor.c",
		"Verdict: WARN (threshold 0.70)",
		"Boundary coverage: 50.0%",
		"Increase test complexity by 50% (about 5 more complexity points)",
		"read_sensor (McCabe 7, lines 3-20)",
		"level (uint8_t): missing values [256]",
		"... and 2 more",
	} {
		assert.Contains(t, out, want)
	}

	res.Level = ratio.LevelError
	assert.Equal(t, "FAIL", (&Ratio{res}).verdict(false))
	res.Passed = true
	assert.Equal(t, "PASS", (&Ratio{res}).verdict(false))
	assert.Same(t, res, (&Ratio{res}).RenderData())
}
