package mcpserver

import (
	"context"

	"github.com/knots-cli/knots/internal/service/analysis"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server wraps the MCP server and registers the knots tools.
type Server struct {
	server  *mcp.Server
	svc     *analysis.Service
	version string
}

// NewServer creates a new MCP server with all knots tools registered.
// opts configure the analysis service the tools share.
func NewServer(version string, opts ...analysis.Option) *Server {
	if version == "" {
		version = "dev"
	}
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "knots",
			Version: version,
		},
		nil,
	)

	s := &Server{
		server:  server,
		svc:     analysis.New(opts...),
		version: version,
	}
	s.registerTools()
	// prompts are embedded at build time; a bad one is a build defect
	if err := s.registerPrompts(); err != nil {
		panic(err)
	}
	return s
}

// Run starts the MCP server over stdio transport.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "analyze_c_complexity",
		Description: describeComplexity(),
	}, s.handleAnalyzeComplexity)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "testability_matrix",
		Description: describeMatrix(),
	}, s.handleTestabilityMatrix)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "test_complexity_ratio",
		Description: describeRatio(),
	}, s.handleTestComplexityRatio)
}
