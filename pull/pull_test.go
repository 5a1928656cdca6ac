package pull

import (
	"testing"

	"github.com/fieldstream/dsv"
	"github.com/fieldstream/dsv/engine"
)

func newAttachedPrimitive(t *testing.T, input string, mask uint32) *Primitive[byte] {
	t.Helper()
	p := NewPrimitive[byte](mask)
	src := dsv.NewSliceSource([]byte(input))
	eng := engine.NewCSVEngine[byte](p, src, 0)
	p.Attach(eng)
	return p
}

func TestPrimitiveStepsThroughAllEvents(t *testing.T) {
	p := newAttachedPrimitive(t, "a,b\n", MaskAll)

	var states []EventState
	for {
		if err := p.Step(); err != nil {
			t.Fatalf("Step error: %v", err)
		}
		states = append(states, p.State())
		if p.State() == Eof {
			break
		}
	}

	want := []EventState{
		StartBuffer, StartRecord, Finalize, Finalize, EndRecord, EndBuffer, Eof,
	}
	if len(states) != len(want) {
		t.Fatalf("states = %v, want %v", states, want)
	}
	for i := range want {
		if states[i] != want[i] {
			t.Errorf("states[%d] = %v, want %v", i, states[i], want[i])
		}
	}
}

func TestPrimitiveMaskFiltersEvents(t *testing.T) {
	p := newAttachedPrimitive(t, "a,b\n", MaskFinalize)

	var finalizes int
	for {
		if err := p.Step(); err != nil {
			t.Fatalf("Step error: %v", err)
		}
		switch p.State() {
		case Finalize:
			finalizes++
		case Eof:
			goto done
		}
	}
done:
	if finalizes != 2 {
		t.Fatalf("finalizes = %d, want 2", finalizes)
	}
}

func TestPrimitiveEofIsSticky(t *testing.T) {
	p := newAttachedPrimitive(t, "a\n", MaskAll)
	for p.State() != Eof {
		if err := p.Step(); err != nil {
			t.Fatalf("Step error: %v", err)
		}
	}
	for i := 0; i < 3; i++ {
		if err := p.Step(); err != nil {
			t.Fatalf("Step error after eof: %v", err)
		}
		if p.State() != Eof {
			t.Fatalf("State() = %v after eof, want Eof", p.State())
		}
	}
}

func TestPrimitiveDiscardDataOmitsBuf(t *testing.T) {
	p := newAttachedPrimitive(t, "hello\n", MaskFinalize)
	p.SetDiscardData(true)
	for {
		if err := p.Step(); err != nil {
			t.Fatalf("Step error: %v", err)
		}
		if p.State() == Finalize {
			ev := p.Current()
			if ev.Buf != nil {
				t.Fatalf("Buf = %v, want nil under discard-data mode", ev.Buf)
			}
			return
		}
		if p.State() == Eof {
			t.Fatal("reached Eof without seeing Finalize")
		}
	}
}

func newAttachedField(t *testing.T, input string) *Field[byte] {
	t.Helper()
	f := NewField[byte]()
	src := dsv.NewSliceSource([]byte(input))
	eng := engine.NewCSVEngine[byte](f.prim, src, 0)
	f.Attach(eng)
	return f
}

func collectFields(t *testing.T, input string) [][]string {
	t.Helper()
	f := newAttachedField(t, input)

	var records [][]string
	var cur []string
	for {
		if err := f.Step(); err != nil {
			t.Fatalf("Step error: %v", err)
		}
		switch f.State() {
		case FieldAtField:
			cur = append(cur, string(f.Value()))
		case FieldAtRecordEnd:
			records = append(records, cur)
			cur = nil
		case FieldAtEof:
			if cur != nil {
				records = append(records, cur)
			}
			return records
		}
	}
}

func TestFieldReassemblesWholeRecords(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  [][]string
	}{
		{"simple", "a,b,c\n1,2,3\n", [][]string{{"a", "b", "c"}, {"1", "2", "3"}}},
		{"quoted with doubled quote", `"he said ""hi""",b` + "\n", [][]string{{`he said "hi"`, "b"}}},
		{"multiline quoted field", "\"hello\nworld\",b\n", [][]string{{"hello\nworld", "b"}}},
		{"no trailing newline", "a,b", [][]string{{"a", "b"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := collectFields(t, tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("records = %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if len(got[i]) != len(tt.want[i]) {
					t.Fatalf("record %d = %v, want %v", i, got[i], tt.want[i])
				}
				for j := range tt.want[i] {
					if got[i][j] != tt.want[i][j] {
						t.Errorf("record %d field %d = %q, want %q", i, j, got[i][j], tt.want[i][j])
					}
				}
			}
		})
	}
}

// TestFieldReassemblyAcrossTinyBuffers forces every quote-doubling point
// and field boundary across a separate physical buffer, exercising the
// copy-into-scratch path instead of the zero-copy single-chunk path.
func TestFieldReassemblyAcrossTinyBuffers(t *testing.T) {
	input := `"he said ""hi""",b` + "\n"
	f := NewField[byte]()
	src := dsv.NewChunkedSliceSource([]byte(input), 1)
	eng := engine.NewCSVEngine[byte](f.prim, src, 2)
	f.Attach(eng)

	var got []string
	for {
		if err := f.Step(); err != nil {
			t.Fatalf("Step error: %v", err)
		}
		switch f.State() {
		case FieldAtField:
			got = append(got, string(f.Value()))
		case FieldAtEof:
			want := []string{`he said "hi"`, "b"}
			if len(got) != len(want) {
				t.Fatalf("fields = %v, want %v", got, want)
			}
			for i := range want {
				if got[i] != want[i] {
					t.Errorf("field %d = %q, want %q", i, got[i], want[i])
				}
			}
			return
		}
	}
}

func TestFieldSkip(t *testing.T) {
	f := newAttachedField(t, "a,b\n1,2\n3,4\n")

	if err := f.Skip(1); err != nil {
		t.Fatalf("Skip error: %v", err)
	}

	var got []string
	for {
		if err := f.Step(); err != nil {
			t.Fatalf("Step error: %v", err)
		}
		switch f.State() {
		case FieldAtField:
			got = append(got, string(f.Value()))
		case FieldAtRecordEnd:
			want := []string{"1", "2"}
			if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
				t.Fatalf("got = %v, want %v", got, want)
			}
			return
		case FieldAtEof:
			t.Fatal("reached Eof before the expected record")
		}
	}
}
