package mcpserver

import (
	"encoding/json"
)

const (
	manifestSchema = "https://static.modelcontextprotocol.io/schemas/2025-10-17/server.schema.json"
	serverName     = "io.github.knots-cli/knots"
	repositoryURL  = "https://github.com/knots-cli/knots"
	imageName      = "ghcr.io/knots-cli/knots"
)

// Manifest is the registry entry (server.json) for the knots MCP server.
type Manifest struct {
	Schema      string         `json:"$schema"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Version     string         `json:"version"`
	Repository  repository     `json:"repository"`
	Packages    []imagePackage `json:"packages"`
}

type repository struct {
	URL    string `json:"url"`
	Source string `json:"source"`
}

// imagePackage runs the container image with "mcp" as its argument over stdio.
type imagePackage struct {
	RegistryType     string       `json:"registryType"`
	Identifier       string       `json:"identifier"`
	PackageArguments []positional `json:"packageArguments"`
	Transport        struct {
		Type string `json:"type"`
	} `json:"transport"`
}

type positional struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// GenerateManifest renders the manifest for version, "0.0.0" when unset.
func GenerateManifest(version string) ([]byte, error) {
	if version == "" {
		version = "0.0.0"
	}

	pkg := imagePackage{
		RegistryType:     "oci",
		Identifier:       imageName + ":" + version,
		PackageArguments: []positional{{Type: "positional", Value: "mcp"}},
	}
	pkg.Transport.Type = "stdio"

	return json.MarshalIndent(Manifest{
		Schema:      manifestSchema,
		Name:        serverName,
		Description: "Complexity and testability metrics for C functions",
		Version:     version,
		Repository:  repository{URL: repositoryURL, Source: "github"},
		Packages:    []imagePackage{pkg},
	}, "", "  ")
}
