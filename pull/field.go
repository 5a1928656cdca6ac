package pull

import "github.com/fieldstream/dsv"

// FieldState names what a Field is currently positioned at.
type FieldState int

const (
	FieldBeforeParse FieldState = iota
	FieldAtField
	FieldAtRecordEnd
	FieldAtEof
)

// Field is a field-granular pull iterator built on Primitive with the mask
// {EndBuffer, EndRecord, EmptyPhysicalLine, Update, Finalize} of spec.md
// §4.4: it reassembles a field that was split across one or more Update
// calls (within a buffer, across a quote-doubling point, or across a
// buffer boundary) into a single contiguous value, copying only when the
// fast zero-copy path — a field that arrives as exactly one chunk — isn't
// available.
type Field[C dsv.Ch] struct {
	prim *Primitive[C]

	state FieldState
	value []C

	// pending holds the first chunk seen for the field in progress as a
	// zero-copy view; once a second chunk arrives (or a buffer boundary
	// is crossed mid-field, after which the buffer may be overwritten),
	// reassembly switches to scratch and pending is cleared.
	pending      []C
	scratch      []C
	reassembling bool

	// EmptyLineAsRecordEnd controls whether an EmptyPhysicalLine event is
	// surfaced as an extra FieldAtRecordEnd or silently skipped.
	EmptyLineAsRecordEnd bool
}

// NewField returns a Field reading from the dialect engine it will be
// Attach-ed to.
func NewField[C dsv.Ch]() *Field[C] {
	return &Field[C]{
		prim: NewPrimitive[C](MaskEndBuffer | MaskEndRecord | MaskEmptyPhysicalLine | MaskUpdate | MaskFinalize),
	}
}

// Attach binds the engine this Field's Step will drive.
func (f *Field[C]) Attach(eng runner) {
	f.prim.Attach(eng)
}

// State returns what Step last positioned the iterator at.
func (f *Field[C]) State() FieldState {
	return f.state
}

// Value returns the current field's contents. Only meaningful when State
// is FieldAtField, and only valid until the next Step call.
func (f *Field[C]) Value() []C {
	return f.value
}

func (f *Field[C]) appendChunk(chunk []C) {
	if len(chunk) == 0 {
		return
	}
	if f.pending == nil && !f.reassembling {
		f.pending = chunk
		return
	}
	f.copyPendingIntoScratch()
	f.scratch = append(f.scratch, chunk...)
}

// copyPendingIntoScratch moves an in-flight zero-copy chunk into the owned
// scratch buffer. Called both when a second chunk for the same field
// arrives and, defensively, whenever a buffer boundary is crossed with a
// chunk still pending — the underlying arena buffer is reused on the next
// refill, so a pending view must be copied out before that happens even if
// no further chunk for this field ever arrives.
func (f *Field[C]) copyPendingIntoScratch() {
	if f.reassembling || f.pending == nil {
		return
	}
	f.scratch = append(f.scratch[:0], f.pending...)
	f.reassembling = true
	f.pending = nil
}

func (f *Field[C]) finishField() []C {
	var v []C
	if f.reassembling {
		v = f.scratch
	} else {
		v = f.pending
	}
	f.pending = nil
	f.scratch = nil
	f.reassembling = false
	return v
}

// Step advances to the next field or record boundary.
func (f *Field[C]) Step() error {
	for {
		if err := f.prim.Step(); err != nil {
			return err
		}
		ev := f.prim.Current()
		switch ev.State {
		case Eof:
			f.state = FieldAtEof
			f.value = nil
			return nil
		case Update:
			f.appendChunk(ev.Buf[ev.First:ev.Last])
		case Finalize:
			f.appendChunk(ev.Buf[ev.First:ev.Last])
			f.state = FieldAtField
			f.value = f.finishField()
			return nil
		case EndRecord:
			f.state = FieldAtRecordEnd
			f.value = nil
			return nil
		case EmptyPhysicalLine:
			if f.EmptyLineAsRecordEnd {
				f.state = FieldAtRecordEnd
				f.value = nil
				return nil
			}
		case EndBuffer:
			f.copyPendingIntoScratch()
		}
	}
}

// Skip discards the field currently in progress (if any) and the next n
// record/empty-line boundaries, using the primitive's discard-data mode so
// no field value is ever materialized while skipping.
func (f *Field[C]) Skip(n int) error {
	f.pending = nil
	f.scratch = nil
	f.reassembling = false
	f.value = nil

	f.prim.SetDiscardData(true)
	defer f.prim.SetDiscardData(false)

	remaining := n
	for remaining > 0 {
		if err := f.prim.Step(); err != nil {
			return err
		}
		switch f.prim.Current().State {
		case EndRecord, EmptyPhysicalLine:
			remaining--
		case Eof:
			f.state = FieldAtEof
			return nil
		}
	}
	return nil
}
