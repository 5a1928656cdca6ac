package engine

import (
	"reflect"
	"testing"

	"github.com/fieldstream/dsv"
)

func runTSV(t *testing.T, input string, chunk int) [][]string {
	t.Helper()
	h := &recordingHandler{}
	var src dsv.Source[byte]
	if chunk > 0 {
		src = dsv.NewChunkedSliceSource([]byte(input), chunk)
	} else {
		src = dsv.NewSliceSource([]byte(input))
	}
	eng := NewTSVEngine[byte](h, src, 0)
	status, err := eng.Run()
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if status != StatusCompleted {
		t.Fatalf("Run status = %v, want StatusCompleted", status)
	}
	return h.records
}

func TestTSVEngineBasic(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  [][]string
	}{
		{"simple", "a\tb\tc\n1\t2\t3\n", [][]string{{"a", "b", "c"}, {"1", "2", "3"}}},
		{"empty input", "", nil},
		{"single field no newline", "hello", [][]string{{"hello"}}},
		{"CRLF terminated", "a\tb\r\n1\t2\r\n", [][]string{{"a", "b"}, {"1", "2"}}},
		{"bare CR terminated", "a\tb\r1\t2\r", [][]string{{"a", "b"}, {"1", "2"}}},
		{"trailing empty field", "a\tb\t\n", [][]string{{"a", "b", ""}}},
		{"no trailing newline", "a\tb\tc", [][]string{{"a", "b", "c"}}},
		{"run of bare CRs", "a\tb\r\r\r1\t2\r", [][]string{{"a", "b"}, {"1", "2"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := runTSV(t, tt.input, 0)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("records = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTSVEngineChunked(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  [][]string
	}{
		{"simple", "a\tb\tc\n1\t2\t3\n", [][]string{{"a", "b", "c"}, {"1", "2", "3"}}},
		{"run of bare CRs", "a\tb\r\r\r1\t2\r", [][]string{{"a", "b"}, {"1", "2"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := runTSV(t, tt.input, 1)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("records = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestTSVEngineRunOfBareCRsCollapsesToOneEmptyLine locks down
// tsvAfterCrs's behavior for a run of bare CRs: only the unit that
// finally breaks the run fires EmptyPhysicalLine, matching
// original_source's after_crs state, which does not re-signal on every
// repeated CR within the same run.
func TestTSVEngineRunOfBareCRsCollapsesToOneEmptyLine(t *testing.T) {
	h := &emptyLineHandler{}
	src := dsv.NewSliceSource([]byte("a\tb\r\r\r1\t2\r"))
	eng := NewTSVEngine[byte](h, src, 0)
	if _, err := eng.Run(); err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if h.emptyLines != 1 {
		t.Fatalf("emptyLines = %d, want 1", h.emptyLines)
	}
}

func TestTSVEngineAbort(t *testing.T) {
	h := &abortingHandler{abortAfter: 2}
	src := dsv.NewSliceSource([]byte("a\tb\tc\n1\t2\t3\n"))
	eng := NewTSVEngine[byte](h, src, 0)
	status, err := eng.Run()
	if err != nil {
		t.Fatalf("abort should not surface an error, got %v", err)
	}
	if status != StatusNotCompleted {
		t.Fatalf("status = %v, want StatusNotCompleted", status)
	}
	if h.finalized != 2 {
		t.Fatalf("finalized = %d, want 2", h.finalized)
	}
}
