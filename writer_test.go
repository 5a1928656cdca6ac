package dsv_test

import (
	"bytes"
	"reflect"
	"testing"

	"github.com/fieldstream/dsv"
	"github.com/fieldstream/dsv/engine"
)

func TestWriterQuotesOnlyWhenNeeded(t *testing.T) {
	var buf bytes.Buffer
	w := dsv.NewWriter(&buf)
	if err := w.WriteAll([][]string{
		{"a", "b,c", `d"e`, "f\ng"},
	}); err != nil {
		t.Fatalf("WriteAll error: %v", err)
	}
	want := "a,\"b,c\",\"d\"\"e\",\"f\ng\"\n"
	if got := buf.String(); got != want {
		t.Fatalf("output = %q, want %q", got, want)
	}
}

func TestWriterUseCRLF(t *testing.T) {
	var buf bytes.Buffer
	w := dsv.NewWriter(&buf)
	w.UseCRLF = true
	if err := w.Write([]string{"a", "b"}); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush error: %v", err)
	}
	if got := buf.String(); got != "a,b\r\n" {
		t.Fatalf("output = %q, want %q", got, "a,b\r\n")
	}
}

// recordingHandler mirrors engine's own test helper, kept local since this
// package cannot import engine's internal test file.
type recordingHandler struct {
	records [][]string
	cur     []string
	field   []byte
}

func (h *recordingHandler) StartRecord(buf []byte, at int) bool {
	h.cur = nil
	return true
}

func (h *recordingHandler) Update(buf []byte, first, last int) bool {
	h.field = append(h.field, buf[first:last]...)
	return true
}

func (h *recordingHandler) Finalize(buf []byte, first, last int) bool {
	h.field = append(h.field, buf[first:last]...)
	h.cur = append(h.cur, string(h.field))
	h.field = h.field[:0]
	return true
}

func (h *recordingHandler) EndRecord(buf []byte, at int) bool {
	h.records = append(h.records, h.cur)
	h.cur = nil
	return true
}

// TestWriterRoundTripsThroughCSVEngine locks down spec.md §8 property 1:
// writing records and parsing the result back with the CSV engine
// reproduces the original logical content.
func TestWriterRoundTripsThroughCSVEngine(t *testing.T) {
	records := [][]string{
		{"name", "bio"},
		{"alice", "likes \"Go\"\nand coffee"},
		{"bob", "plain, simple"},
	}

	var buf bytes.Buffer
	w := dsv.NewWriter(&buf)
	if err := w.WriteAll(records); err != nil {
		t.Fatalf("WriteAll error: %v", err)
	}

	h := &recordingHandler{}
	src := dsv.NewSliceSource(buf.Bytes())
	eng := engine.NewCSVEngine[byte](h, src, 0)
	if _, err := eng.Run(); err != nil {
		t.Fatalf("Run error: %v", err)
	}

	if !reflect.DeepEqual(h.records, records) {
		t.Fatalf("round trip = %v, want %v", h.records, records)
	}
}
