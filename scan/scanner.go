// Package scan implements the typed table scanner of spec.md §4.5-4.6: a
// handler that routes each finalized field to a per-column FieldScanner,
// an optional header phase, and an optional record-end scanner.
package scan

import (
	"sort"

	"github.com/fieldstream/dsv"
)

// FieldScanner receives one column's field events for every record in the
// body phase.
type FieldScanner[C dsv.Ch] interface {
	// FieldValue is called with the field's content. reassembled reports
	// whether value is an owned copy (the field was split across engine
	// buffers) or a view into the still-writable, null-terminated engine
	// buffer.
	FieldValue(value []C, reassembled bool) bool
	// FieldSkipped is called once per record for every column that has a
	// registered scanner but received no field that record.
	FieldSkipped() bool
}

// HeaderScanner inspects header records before the body phase starts. A
// HeaderScanner that holds its own reference to the TableScanner may call
// AddFieldScanner/RemoveFieldScanner on it from within FieldValue; the
// TableScanner does not pass itself to the HeaderScanner.
type HeaderScanner[C dsv.Ch] interface {
	// FieldValue is called once per field of each header record with the
	// field's 0-based column index and content. Returning false retires
	// the header scanner — the rest of the current record's fields are
	// consumed without being delivered to it or to any column scanner (so
	// column indices stay aligned), and from the next record on the body
	// phase begins.
	FieldValue(col int, value []C) bool
}

// RecordEndScanner is notified once per record, after every column
// scanner has received its field or its FieldSkipped call.
type RecordEndScanner interface {
	RecordEnd() bool
}

type columnEntry[C dsv.Ch] struct {
	col     int
	scanner FieldScanner[C]
}

// TableScanner is an engine.Handler that dispatches finalized fields to
// per-column FieldScanners, keyed by 0-based column index in a
// sorted slice (insertion and lookup by binary search — this module
// favors a flat sorted slice over a red-black tree for the handful of
// columns a realistic schema has; see DESIGN.md for the tradeoff this
// accepts against the original's std::map).
type TableScanner[C dsv.Ch] struct {
	columns []columnEntry[C]
	visited []bool

	header                 HeaderScanner[C]
	headerRecordsRemaining int
	// headerRetiring is set once HeaderScanner.FieldValue has returned
	// false for the current record; the rest of that record's fields
	// still route through the header branch (silently, to keep column
	// indices aligned for padding) instead of jumping straight to body
	// scanners, per spec.md §4.5. EndRecord clears headerRecordsRemaining
	// to 0 once this record ends, so the body phase begins next record.
	headerRetiring bool

	recordEnd RecordEndScanner

	colIndex int

	pending      []C
	scratch      []C
	reassembling bool
}

// NewTableScanner returns a scanner with no columns registered and no
// header phase. Use SetHeaderScanner to add one (a header phase always
// has a HeaderScanner; header records cannot be skipped by count alone),
// and AddFieldScanner/RemoveFieldScanner to manage columns.
func NewTableScanner[C dsv.Ch]() *TableScanner[C] {
	return &TableScanner[C]{}
}

// SetRecordEndScanner installs or clears (pass nil) the record-end
// scanner.
func (t *TableScanner[C]) SetRecordEndScanner(r RecordEndScanner) {
	t.recordEnd = r
}

// SetHeaderScanner installs a header scanner; the header phase continues
// until it returns false from FieldValue or recordCount header records
// have ended, whichever comes first.
func (t *TableScanner[C]) SetHeaderScanner(h HeaderScanner[C], recordCount int) {
	t.header = h
	t.headerRecordsRemaining = recordCount
	t.headerRetiring = false
}

func (t *TableScanner[C]) inHeaderPhase() bool {
	return t.header != nil && t.headerRecordsRemaining > 0
}

// AddFieldScanner registers (or replaces) the scanner for col, keeping
// the column list sorted by index.
func (t *TableScanner[C]) AddFieldScanner(col int, s FieldScanner[C]) {
	i := sort.Search(len(t.columns), func(i int) bool { return t.columns[i].col >= col })
	if i < len(t.columns) && t.columns[i].col == col {
		t.columns[i].scanner = s
		return
	}
	t.columns = append(t.columns, columnEntry[C]{})
	copy(t.columns[i+1:], t.columns[i:])
	t.columns[i] = columnEntry[C]{col: col, scanner: s}
}

// RemoveFieldScanner removes the scanner for col, if any.
func (t *TableScanner[C]) RemoveFieldScanner(col int) {
	i := sort.Search(len(t.columns), func(i int) bool { return t.columns[i].col >= col })
	if i < len(t.columns) && t.columns[i].col == col {
		t.columns = append(t.columns[:i], t.columns[i+1:]...)
	}
}

// GetFieldScanner returns the scanner registered for col as a *T, and
// whether one was registered whose concrete type is exactly T. This is
// the Go rendering of spec.md §4.5's type-erased get_field_scanner<T>.
func GetFieldScanner[C dsv.Ch, T any](t *TableScanner[C], col int) (*T, bool) {
	i := sort.Search(len(t.columns), func(i int) bool { return t.columns[i].col >= col })
	if i >= len(t.columns) || t.columns[i].col != col {
		return nil, false
	}
	typed, ok := t.columns[i].scanner.(*T)
	return typed, ok
}

func (t *TableScanner[C]) findColumn(col int) (int, bool) {
	i := sort.Search(len(t.columns), func(i int) bool { return t.columns[i].col >= col })
	if i < len(t.columns) && t.columns[i].col == col {
		return i, true
	}
	return 0, false
}

// StartRecord implements engine.Handler.
func (t *TableScanner[C]) StartRecord(buf []C, at int) bool {
	t.colIndex = 0
	if cap(t.visited) < len(t.columns) {
		t.visited = make([]bool, len(t.columns))
	} else {
		t.visited = t.visited[:len(t.columns)]
		for i := range t.visited {
			t.visited[i] = false
		}
	}
	return true
}

// Update implements engine.Handler.
func (t *TableScanner[C]) Update(buf []C, first, last int) bool {
	t.appendChunk(buf[first:last])
	return true
}

// Finalize implements engine.Handler.
func (t *TableScanner[C]) Finalize(buf []C, first, last int) bool {
	t.appendChunk(buf[first:last])
	value, reassembled := t.finishField(buf, last)
	col := t.colIndex
	t.colIndex++

	if t.inHeaderPhase() {
		// Once the header scanner has retired mid-record, the rest of
		// this record's fields are dropped rather than re-offered to it
		// or routed to body scanners, so column indices stay aligned
		// and no column gets a spurious FieldSkipped for a record the
		// body phase never actually saw.
		if !t.headerRetiring {
			if !t.header.FieldValue(col, value) {
				t.headerRetiring = true
			}
		}
		return true
	}
	if i, ok := t.findColumn(col); ok {
		t.visited[i] = true
		return t.columns[i].scanner.FieldValue(value, reassembled)
	}
	return true
}

// EndRecord implements engine.Handler.
func (t *TableScanner[C]) EndRecord(buf []C, at int) bool {
	if t.header != nil && t.headerRecordsRemaining > 0 {
		if t.headerRetiring {
			// The header scanner asked to retire somewhere in this
			// record; honor that now regardless of how many header
			// records were originally configured, so the body phase
			// begins with the very next record.
			t.headerRecordsRemaining = 0
			t.headerRetiring = false
		} else {
			t.headerRecordsRemaining--
		}
		return true
	}
	for i, v := range t.visited {
		if !v {
			if !t.columns[i].scanner.FieldSkipped() {
				return false
			}
		}
	}
	if t.recordEnd != nil {
		return t.recordEnd.RecordEnd()
	}
	return true
}

func (t *TableScanner[C]) appendChunk(chunk []C) {
	if len(chunk) == 0 {
		return
	}
	if t.pending == nil && !t.reassembling {
		t.pending = chunk
		return
	}
	t.copyPendingIntoScratch()
	t.scratch = append(t.scratch, chunk...)
}

func (t *TableScanner[C]) copyPendingIntoScratch() {
	if t.reassembling || t.pending == nil {
		return
	}
	t.scratch = append(t.scratch[:0], t.pending...)
	t.reassembling = true
	t.pending = nil
}

// finishField returns the field's value and whether it was reassembled.
// For the zero-copy single-chunk case it also writes a null terminator
// into the still-live engine buffer just past the field, per spec.md
// §4.5's "null-terminated just past end" contract — safe because the
// engine has already consumed the unit at that position into its own
// local state before calling Finalize.
func (t *TableScanner[C]) finishField(buf []C, last int) (value []C, reassembled bool) {
	if t.reassembling {
		value, reassembled = t.scratch, true
	} else {
		value = t.pending
		if last < len(buf) {
			buf[last] = 0
		}
	}
	t.pending = nil
	t.scratch = nil
	t.reassembling = false
	return value, reassembled
}

// EndBuffer implements engine.BufferObserver, needed only to copy out a
// pending zero-copy chunk before the engine can reuse the buffer it
// points into.
func (t *TableScanner[C]) EndBuffer(buf []C, at int) {
	t.copyPendingIntoScratch()
}

// StartBuffer implements engine.BufferObserver as a no-op completion; the
// scanner has no per-buffer bookkeeping of its own.
func (t *TableScanner[C]) StartBuffer(buf []C) {}
