package progress

import (
	"bytes"
	"sync"
	"testing"
)

func TestNewWriter(t *testing.T) {
	tests := []struct {
		name  string
		label string
		total int
	}{
		{"standard bar", "Analyzing", 100},
		{"zero total", "Empty", 0},
		{"spinner", "Scanning", -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			b := NewWriter(&buf, tt.label, tt.total)
			if b.bar == nil {
				t.Fatal("bar should not be nil")
			}
			if b.label != tt.label {
				t.Errorf("label = %q, want %q", b.label, tt.label)
			}
			b.Finish()
		})
	}
}

func TestTrackerTicksBar(t *testing.T) {
	var buf bytes.Buffer
	b := NewWriter(&buf, "Analyzing", 100)
	tr := b.Tracker()
	tr.Add(100)

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 10 {
				tr.Tick("a.c")
			}
		}()
	}
	wg.Wait()

	if got := tr.Done(); got != 100 {
		t.Errorf("Done() = %d, want 100", got)
	}
	if got := b.bar.State().CurrentNum; got != 100 {
		t.Errorf("bar at %d, want 100", got)
	}
	b.Finish()
}

func TestFinishSkipped(t *testing.T) {
	var buf bytes.Buffer
	b := NewWriter(&buf, "Analyzing", 2)
	b.Tick()
	b.FinishSkipped(1)
	if !bytes.Contains(buf.Bytes(), []byte("Analyzing: 1 file(s) skipped")) {
		t.Errorf("output = %q", buf.String())
	}

	buf.Reset()
	b = NewWriter(&buf, "Quiet", 1)
	b.FinishSkipped(0)
	if bytes.Contains(buf.Bytes(), []byte("skipped")) {
		t.Errorf("unexpected skip line: %q", buf.String())
	}
}
