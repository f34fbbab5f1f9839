package mcpserver

import (
	"bytes"
	"context"

	"github.com/knots-cli/knots/internal/output"
	"github.com/knots-cli/knots/internal/report"
	"github.com/knots-cli/knots/internal/service/analysis"
	"github.com/knots-cli/knots/pkg/config"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// AnalyzeInput is the base input for the path-based tools.
type AnalyzeInput struct {
	Paths  []string `json:"paths,omitempty" jsonschema:"C files or directories to analyze. Directories are scanned recursively. Defaults to the current directory."`
	Format string   `json:"format,omitempty" jsonschema:"Output format: toon (default), json, or markdown."`
}

// ComplexityInput adds summary and filter options.
type ComplexityInput struct {
	AnalyzeInput
	TopK          int      `json:"top_k,omitempty" jsonschema:"Number of most complex functions to rank. Defaults to analysis.top_k (5)."`
	IncludeNames  []string `json:"include_names,omitempty" jsonschema:"Regular expressions; only functions whose name matches one are kept."`
	ExcludeNames  []string `json:"exclude_names,omitempty" jsonschema:"Regular expressions; functions whose name matches one are dropped."`
	MinComplexity int      `json:"min_complexity,omitempty" jsonschema:"Drop functions whose max(mccabe, cognitive) is below this value."`
}

// MatrixInput selects the functions placed in the testability matrix.
type MatrixInput struct {
	AnalyzeInput
}

// RatioInput names the test/source pair to compare.
type RatioInput struct {
	TestFile          string   `json:"test_file" jsonschema:"Path to the C test file."`
	SourceFile        string   `json:"source_file" jsonschema:"Path to the C source file under test."`
	Threshold         *float64 `json:"threshold,omitempty" jsonschema:"Minimum test/source McCabe ratio between 0.0 and 2.0. Default 0.70."`
	BoundaryThreshold *float64 `json:"boundary_threshold,omitempty" jsonschema:"Minimum fraction of boundary values the tests must mention, 0.0 to 1.0. Default 0.80."`
	CheckBoundaries   *bool    `json:"check_boundaries,omitempty" jsonschema:"Check integer boundary coverage. Default true."`
	Format            string   `json:"format,omitempty" jsonschema:"Output format: toon (default), json, or markdown."`
}

func getPaths(input AnalyzeInput) []string {
	if len(input.Paths) == 0 {
		return []string{"."}
	}
	return input.Paths
}

func getFormat(format string) output.Format {
	switch format {
	case "json":
		return output.FormatJSON
	case "markdown", "md":
		return output.FormatMarkdown
	default:
		return output.FormatTOON
	}
}

func formatOutput(data any, format output.Format) (string, error) {
	var buf bytes.Buffer
	if err := output.NewWriterFormatter(format, &buf, false).Output(data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func toolResult(data any, format output.Format) (*mcp.CallToolResult, any, error) {
	text, err := formatOutput(data, format)
	if err != nil {
		return nil, nil, err
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}, nil, nil
}

func toolError(msg string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: "Error: " + msg},
		},
		IsError: true,
	}, nil, nil
}

func (s *Server) handleAnalyzeComplexity(ctx context.Context, req *mcp.CallToolRequest, input ComplexityInput) (*mcp.CallToolResult, any, error) {
	paths := getPaths(input.AnalyzeInput)
	format := getFormat(input.Format)

	files, err := s.svc.Files(paths, true)
	if err != nil {
		return toolError(err.Error())
	}
	if len(files) == 0 {
		return toolError("no C source files found")
	}

	fcfg := s.svc.Config().Filter
	if len(input.IncludeNames) > 0 {
		fcfg.IncludeNames = input.IncludeNames
	}
	if len(input.ExcludeNames) > 0 {
		fcfg.ExcludeNames = input.ExcludeNames
	}
	if input.MinComplexity > 0 {
		fcfg.MinComplexity = input.MinComplexity
	}

	an, err := s.svc.Analyze(ctx, files, analysisOptions(&fcfg))
	if err != nil {
		return toolError(err.Error())
	}

	topK := input.TopK
	if topK <= 0 {
		topK = s.svc.Config().Analysis.TopK
	}
	return toolResult(report.NewSummary(an, topK, s.version, paths), format)
}

func (s *Server) handleTestabilityMatrix(ctx context.Context, req *mcp.CallToolRequest, input MatrixInput) (*mcp.CallToolResult, any, error) {
	paths := getPaths(input.AnalyzeInput)
	format := getFormat(input.Format)

	files, err := s.svc.Files(paths, true)
	if err != nil {
		return toolError(err.Error())
	}
	if len(files) == 0 {
		return toolError("no C source files found")
	}

	an, err := s.svc.Analyze(ctx, files, analysisOptions(nil))
	if err != nil {
		return toolError(err.Error())
	}
	return toolResult(report.NewMatrix(an), format)
}

func (s *Server) handleTestComplexityRatio(ctx context.Context, req *mcp.CallToolRequest, input RatioInput) (*mcp.CallToolResult, any, error) {
	if input.TestFile == "" || input.SourceFile == "" {
		return toolError("test_file and source_file are required")
	}
	format := getFormat(input.Format)

	opts := s.svc.Config().RatioOptions()
	if input.Threshold != nil {
		opts.Threshold = *input.Threshold
	}
	if input.BoundaryThreshold != nil {
		opts.BoundaryThreshold = *input.BoundaryThreshold
	}
	if input.CheckBoundaries != nil {
		opts.CheckBoundaries = *input.CheckBoundaries
	}

	result, err := s.svc.Ratio(input.TestFile, input.SourceFile, opts)
	if err != nil {
		return toolError(err.Error())
	}
	return toolResult(&report.Ratio{Result: result}, format)
}

func analysisOptions(f *config.FilterConfig) analysis.Options {
	return analysis.Options{Filter: f}
}
