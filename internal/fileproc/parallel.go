// Package fileproc provides concurrent file processing utilities.
package fileproc

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"sort"
	"sync"

	"github.com/knots-cli/knots/pkg/analyzer"
	"github.com/knots-cli/knots/pkg/parser"
	"github.com/sourcegraph/conc/pool"
)

// ErrFileTooLarge is recorded for files above the configured size limit.
var ErrFileTooLarge = errors.New("file exceeds size limit")

// ProcessingError represents an error that occurred while processing a file.
type ProcessingError struct {
	Path string
	Err  error
}

func (e ProcessingError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e ProcessingError) Unwrap() error {
	return e.Err
}

// ProcessingErrors collects multiple file processing errors.
type ProcessingErrors struct {
	Errors []ProcessingError
	mu     sync.Mutex
}

// Add appends an error to the collection (thread-safe).
func (e *ProcessingErrors) Add(path string, err error) {
	e.mu.Lock()
	e.Errors = append(e.Errors, ProcessingError{Path: path, Err: err})
	e.mu.Unlock()
}

// HasErrors returns true if any errors were collected.
func (e *ProcessingErrors) HasErrors() bool {
	if e == nil {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.Errors) > 0
}

// Len returns the number of collected errors.
func (e *ProcessingErrors) Len() int {
	if e == nil {
		return 0
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.Errors)
}

// Sorted returns a copy of the errors ordered by path.
func (e *ProcessingErrors) Sorted() []ProcessingError {
	if e == nil {
		return nil
	}
	e.mu.Lock()
	out := make([]ProcessingError, len(e.Errors))
	copy(out, e.Errors)
	e.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// Error implements the error interface.
func (e *ProcessingErrors) Error() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d files failed to process (first: %v)", len(e.Errors), e.Errors[0])
}

// DefaultWorkerMultiplier is the multiplier applied to NumCPU for worker count.
// 2x is optimal for mixed I/O and CGO workloads.
const DefaultWorkerMultiplier = 2

// ErrorFunc is called when a file processing error occurs.
type ErrorFunc func(path string, err error)

// Options configures MapFiles.
type Options struct {
	// Workers caps concurrency. <= 0 means 2x NumCPU.
	Workers int
	// MaxFileSize skips larger files. 0 means no limit.
	MaxFileSize int64
	// OnError, if set, is called for each failed file in addition to collection.
	OnError ErrorFunc
}

func (o Options) workers() int {
	if o.Workers > 0 {
		return o.Workers
	}
	return runtime.NumCPU() * DefaultWorkerMultiplier
}

// MapFiles reads and processes files in parallel. Each worker borrows a
// parser that is never shared with another goroutine. A failing file is
// recorded and skipped; it never stops the other files.
// Results are returned in arbitrary order. Progress is tracked via context
// using analyzer.WithTracker.
func MapFiles[T any](
	ctx context.Context,
	files []string,
	opts Options,
	fn func(psr *parser.Parser, path string, content []byte) (T, error),
) ([]T, *ProcessingErrors) {
	if len(files) == 0 {
		return nil, nil
	}

	maxWorkers := opts.workers()
	results := make([]T, 0, len(files))
	errs := &ProcessingErrors{}
	var mu sync.Mutex

	parsers := newParserPool(maxWorkers)
	defer parsers.close()

	tracker := analyzer.TrackerFromContext(ctx)
	if tracker != nil {
		tracker.Add(len(files))
	}

	fail := func(path string, err error) {
		errs.Add(path, err)
		if opts.OnError != nil {
			opts.OnError(path, err)
		}
	}

	p := pool.New().WithMaxGoroutines(maxWorkers).WithContext(ctx)
	for _, path := range files {
		p.Go(func(ctx context.Context) error {
			defer func() {
				if tracker != nil {
					tracker.Tick(path)
				}
			}()

			select {
			case <-ctx.Done():
				fail(path, ctx.Err())
				return nil
			default:
			}

			content, err := readFile(path, opts.MaxFileSize)
			if err != nil {
				fail(path, err)
				return nil
			}

			psr := parsers.get()
			result, err := fn(psr, path, content)
			parsers.put(psr)
			if err != nil {
				fail(path, err)
				return nil
			}

			mu.Lock()
			results = append(results, result)
			mu.Unlock()
			return nil
		})
	}
	_ = p.Wait()

	if !errs.HasErrors() {
		return results, nil
	}
	return results, errs
}

func readFile(path string, maxSize int64) ([]byte, error) {
	if maxSize > 0 {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		if info.Size() > maxSize {
			return nil, fmt.Errorf("%w (%d > %d bytes)", ErrFileTooLarge, info.Size(), maxSize)
		}
	}
	return os.ReadFile(path)
}

// parserPool hands out at most one parser per worker.
type parserPool struct {
	ch chan *parser.Parser
}

func newParserPool(size int) *parserPool {
	return &parserPool{ch: make(chan *parser.Parser, size)}
}

func (pp *parserPool) get() *parser.Parser {
	select {
	case psr := <-pp.ch:
		return psr
	default:
		return parser.New()
	}
}

func (pp *parserPool) put(psr *parser.Parser) {
	select {
	case pp.ch <- psr:
	default:
		psr.Close()
	}
}

func (pp *parserPool) close() {
	close(pp.ch)
	for psr := range pp.ch {
		psr.Close()
	}
}
