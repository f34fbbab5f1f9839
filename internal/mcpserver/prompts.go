package mcpserver

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"gopkg.in/yaml.v3"
)

//go:embed prompts/*.md
var promptFiles embed.FS

// prompt is one embedded workflow, named after its file.
type prompt struct {
	name        string
	description string
	body        string
}

// loadPrompts reads every prompts/*.md file. The YAML frontmatter carries
// the description.
func loadPrompts() ([]prompt, error) {
	files, err := fs.Glob(promptFiles, "prompts/*.md")
	if err != nil {
		return nil, err
	}

	prompts := make([]prompt, 0, len(files))
	for _, file := range files {
		content, err := promptFiles.ReadFile(file)
		if err != nil {
			return nil, err
		}
		description, body := parseFrontmatter(content)
		if description == "" {
			return nil, fmt.Errorf("prompt %s has no description", file)
		}
		prompts = append(prompts, prompt{
			name:        strings.TrimSuffix(path.Base(file), ".md"),
			description: description,
			body:        body,
		})
	}
	return prompts, nil
}

func (s *Server) registerPrompts() error {
	prompts, err := loadPrompts()
	if err != nil {
		return err
	}
	for _, p := range prompts {
		s.server.AddPrompt(&mcp.Prompt{Name: p.name, Description: p.description}, makePromptHandler(p.description, p.body))
	}
	return nil
}

// parseFrontmatter splits "---\n<yaml>\n---\n<body>" into the description
// and the body. Content without valid frontmatter is all body.
func parseFrontmatter(content []byte) (description string, body string) {
	text := string(content)
	rest, ok := strings.CutPrefix(text, "---\n")
	if !ok {
		return "", text
	}
	header, after, ok := strings.Cut(rest, "\n---\n")
	if !ok {
		return "", text
	}

	var fm struct {
		Description string `yaml:"description"`
	}
	if err := yaml.Unmarshal([]byte(header), &fm); err != nil {
		return "", text
	}
	return fm.Description, strings.TrimPrefix(after, "\n")
}

func makePromptHandler(description, body string) mcp.PromptHandler {
	return func(ctx context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		return &mcp.GetPromptResult{
			Description: description,
			Messages: []*mcp.PromptMessage{
				{Role: "user", Content: &mcp.TextContent{Text: body}},
			},
		}, nil
	}
}
