// Package report turns analysis results into renderable reports.
package report

import (
	"time"

	"github.com/knots-cli/knots/internal/fileproc"
	"github.com/knots-cli/knots/pkg/analyzer/aggregate"
	"github.com/knots-cli/knots/pkg/analyzer/complexity"
)

// SchemaVersion is the version of the JSON report layout described by Schema.
const SchemaVersion = "1.0.0"

// Metadata contains report generation metadata.
type Metadata struct {
	SchemaVersion string    `json:"schema_version" yaml:"schema_version"`
	KnotsVersion  string    `json:"knots_version" yaml:"knots_version"`
	GeneratedAt   time.Time `json:"generated_at" yaml:"generated_at"`
	Paths         []string  `json:"paths" yaml:"paths"`
}

// Percentiles holds the P50 and P90 of one metric over all functions.
type Percentiles struct {
	P50 float64 `json:"p50" yaml:"p50"`
	P90 float64 `json:"p90" yaml:"p90"`
}

// Distribution holds percentiles of the two complexity metrics.
type Distribution struct {
	McCabe    Percentiles `json:"mccabe" yaml:"mccabe"`
	Cognitive Percentiles `json:"cognitive" yaml:"cognitive"`
}

// SkippedFile is a file left out of the run.
type SkippedFile struct {
	Path  string `json:"path" yaml:"path"`
	Error string `json:"error" yaml:"error"`
}

// Skipped converts per-file processing errors for serialization.
func Skipped(errs []fileproc.ProcessingError) []SkippedFile {
	out := make([]SkippedFile, 0, len(errs))
	for _, e := range errs {
		out = append(out, SkippedFile{Path: e.Path, Error: e.Err.Error()})
	}
	return out
}

// AnalysisReport is the serialized form of one analysis run. Schema
// describes its JSON encoding.
type AnalysisReport struct {
	Metadata     Metadata                    `json:"metadata" yaml:"metadata"`
	Files        []complexity.FileResult     `json:"files" yaml:"files"`
	Totals       aggregate.Totals            `json:"totals" yaml:"totals"`
	Means        aggregate.Means             `json:"means" yaml:"means"`
	Distribution Distribution                `json:"distribution" yaml:"distribution"`
	Top          []complexity.FunctionResult `json:"top" yaml:"top"`
	Skipped      []SkippedFile               `json:"skipped" yaml:"skipped"`
}
