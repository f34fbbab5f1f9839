// Package progress draws a terminal progress bar for an analysis run.
package progress

import (
	"fmt"
	"io"
	"os"

	"github.com/knots-cli/knots/pkg/analyzer"
	"github.com/schollz/progressbar/v3"
)

// Bar wraps a progress bar for file processing.
type Bar struct {
	bar   *progressbar.ProgressBar
	out   io.Writer
	label string
}

// New creates a bar on stderr. A negative total draws a spinner instead.
func New(label string, total int) *Bar {
	return NewWriter(os.Stderr, label, total)
}

// NewWriter creates a bar drawing to w.
func NewWriter(w io.Writer, label string, total int) *Bar {
	if total < 0 {
		bar := progressbar.NewOptions(-1,
			progressbar.OptionSetWriter(w),
			progressbar.OptionSetWidth(20),
			progressbar.OptionSetDescription(label),
			progressbar.OptionSpinnerType(14),
			progressbar.OptionClearOnFinish(),
		)
		return &Bar{bar: bar, out: w, label: label}
	}

	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionSetDescription(label),
		progressbar.OptionUseANSICodes(true),
		progressbar.OptionSetElapsedTime(false),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
	return &Bar{bar: bar, out: w, label: label}
}

// Tick advances the bar by one. Safe for concurrent use.
func (b *Bar) Tick() {
	_ = b.bar.Add(1)
}

// Tracker returns an analyzer.Tracker that advances b once per finished file.
func (b *Bar) Tracker() *analyzer.Tracker {
	return analyzer.NewTracker(func(_, _ int, _ string) { b.Tick() })
}

// Finish clears the bar.
func (b *Bar) Finish() {
	_ = b.bar.Finish()
	_ = b.bar.Clear()
}

// FinishSkipped clears the bar and prints how many files were skipped.
func (b *Bar) FinishSkipped(n int) {
	b.Finish()
	if n > 0 {
		fmt.Fprintf(b.out, "  %s: %d file(s) skipped\n", b.label, n)
	}
}
