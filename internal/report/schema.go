package report

import (
	_ "embed"
)

// Schema is the JSON Schema (Draft 2020-12) for the JSON encoding of
// AnalysisReport.
//
//go:embed schema.json
var Schema string
