// Package analyzer holds the contracts shared by the knots analyzers.
package analyzer

import "context"

// FileAnalyzer analyzes a set of C files as one run.
type FileAnalyzer[T any] interface {
	// Analyze processes files and returns the run's result. Failures on
	// individual files are reported inside T, not as the returned error.
	Analyze(ctx context.Context, files []string) (T, error)

	// Close releases any resources held by the analyzer.
	Close()
}
