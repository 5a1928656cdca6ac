package table

import "github.com/fieldstream/dsv"

// DefaultBufferSize is the preferred arena block size a Table allocates
// through, mirroring original_source's basic_stored_table default.
const DefaultBufferSize = 8192

// Value is a view into an Arena block: a half-open range whose unit
// immediately past its end is always Ch(0), so Value.CString can hand
// out a conventionally null-terminated slice without copying. Empty
// values built by NewValue or RewriteValue view a static single-null
// block, per spec.md §3 ("Empty values point at a static single-null
// block"); the zero Value holds nil data, and its CString falls back to
// that same block.
type Value[C dsv.Ch] struct {
	data []C
}

// NewValue wraps data, which must be immediately followed in its
// backing array by a null unit — true for any value a Builder or
// RewriteValue has produced. An empty data is normalized to the shared
// static single-null block so CString never indexes past a nil slice.
func NewValue[C dsv.Ch](data []C) Value[C] {
	if len(data) == 0 {
		return Value[C]{data: emptyBlock[C]()}
	}
	return Value[C]{data: data}
}

func (v Value[C]) Len() int     { return len(v.data) }
func (v Value[C]) Empty() bool  { return len(v.data) == 0 }
func (v Value[C]) Raw() []C     { return v.data }
func (v Value[C]) At(i int) C   { return v.data[i] }

// CString returns the value's units with the arena's trailing null
// included, relying on the invariant every Value satisfies. The zero
// Value (data == nil, as from `var v Value[C]`) is handled explicitly:
// it has no backing array to extend, so it falls back to the shared
// static single-null block rather than slicing past nil.
func (v Value[C]) CString() []C {
	if len(v.data) == 0 {
		return emptyBlock[C]()[:1]
	}
	return v.data[:len(v.data)+1]
}

// emptyByteBlock and emptyRuneBlock are the static single-null blocks
// every empty Value of the corresponding Ch width views, per spec.md §3.
// Sharing one instance per width avoids allocating a fresh null-only
// block for every empty field.
var (
	emptyByteBlock = [1]byte{0}
	emptyRuneBlock = [1]rune{0}
)

// emptyBlock returns a length-0, capacity-1 slice backed by the shared
// static single-null block for C's width, so callers can safely reslice
// it to length 1 to read the trailing null.
func emptyBlock[C dsv.Ch]() []C {
	switch any(C(0)).(type) {
	case byte:
		return any(emptyByteBlock[:0:1]).([]C)
	default:
		return any(emptyRuneBlock[:0:1]).([]C)
	}
}

// String renders the value as a Go string; C is always byte or rune.
func (v Value[C]) String() string {
	switch s := any(v.data).(type) {
	case []byte:
		return string(s)
	case []rune:
		return string(s)
	default:
		return ""
	}
}

// Table is an owned, in-memory table of records of Values, with all
// field character data living in its own Arena, per spec.md §3's
// "Arena (store)" and "Table content" definitions.
type Table[C dsv.Ch] struct {
	arena      *Arena[C]
	records    [][]Value[C]
	bufferSize int
}

// NewTable returns an empty table whose builder requests blocks of
// bufferSize units from the arena (DefaultBufferSize if bufferSize<=0,
// clamped to at least 2 as the engine requires).
func NewTable[C dsv.Ch](bufferSize int) *Table[C] {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	if bufferSize < 2 {
		bufferSize = 2
	}
	return &Table[C]{arena: NewArena[C](), bufferSize: bufferSize}
}

// BufferSize is the block size new arena allocations request.
func (t *Table[C]) BufferSize() int { return t.bufferSize }

// Arena returns the table's backing arena.
func (t *Table[C]) Arena() *Arena[C] { return t.arena }

// Records returns the table's records in insertion order; each record is
// an ordered sequence of Values.
func (t *Table[C]) Records() [][]Value[C] { return t.records }

// RecordCount reports how many records the table holds.
func (t *Table[C]) RecordCount() int { return len(t.records) }

// Record returns the i'th record.
func (t *Table[C]) Record(i int) []Value[C] { return t.records[i] }

// Clear drops every record and returns every arena block to the free
// list, invalidating all previously issued Values.
func (t *Table[C]) Clear() {
	t.arena.Clear()
	t.records = nil
}

// Append transfers other's arena blocks and records into t, leaving
// other empty. Because both tables share the same implicit allocator in
// this port (spec.md's allocator plumbing is treated as out of scope;
// see DESIGN.md), this is always the zero-copy block-splice path the
// original reserves for matching allocators — there is no
// differing-allocator case to fall back to rewrite_value for.
func (t *Table[C]) Append(other *Table[C]) {
	t.arena.Merge(other.arena)
	t.records = append(t.records, other.records...)
	other.records = nil
}

// RewriteValue replaces value's content with newValue. If newValue fits
// within value's current range, it is overwritten and truncated in
// place with a fresh null terminator; otherwise fresh storage is
// secured from the arena (reusing a block's free tail, or allocating
// and committing a new block when none has room), per spec.md §4.7.
func (t *Table[C]) RewriteValue(value *Value[C], newValue []C) {
	if len(newValue) == 0 {
		// No backing array to reuse in general (value.data may be the
		// nil zero value, with no room for even the null unit), so an
		// empty result always just repoints at the shared static block.
		value.data = emptyBlock[C]()
		return
	}
	if len(newValue) <= len(value.data) {
		full := value.data[:len(value.data)+1]
		copy(full, newValue)
		full[len(newValue)] = 0
		value.data = full[:len(newValue)]
		return
	}
	need := len(newValue) + 1
	secured, ok := t.arena.SecureAny(need)
	if !ok {
		size := need
		if size < t.bufferSize {
			size = t.bufferSize
		}
		buf := t.arena.GenerateBuffer(size)
		t.arena.AddBuffer(buf)
		t.arena.SecureCurrentUpto(need)
		secured = buf[:need]
	}
	copy(secured, newValue)
	secured[len(newValue)] = 0
	value.data = secured[:len(newValue)]
}

// ImportValue secures a brand new Value holding a copy of raw, useful
// for building a table's content outside of a parse (e.g. synthesizing
// a header row).
func (t *Table[C]) ImportValue(raw []C) Value[C] {
	var v Value[C]
	t.RewriteValue(&v, raw)
	return v
}

// GuardRewrite snapshots the arena's security before calling f and, if f
// returns an error, rolls the arena back to that snapshot before
// returning the error — undoing every allocation f made, per spec.md
// §4.7's guarded rewrite.
func (t *Table[C]) GuardRewrite(f func(*Table[C]) error) error {
	security := t.arena.GetSecurity()
	if err := f(t); err != nil {
		t.arena.SetSecurity(security)
		return err
	}
	return nil
}
