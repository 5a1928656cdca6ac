package table

import "github.com/fieldstream/dsv"

// arranger places each finalized value into a Table's content, letting
// Builder support more than one (record, column) layout without
// duplicating the buffer-management half of the builder.
type arranger[C dsv.Ch] interface {
	newRecord(t *Table[C])
	newValue(t *Table[C], v Value[C])
}

// arrangeAsIs is the default arranger: each new record becomes a fresh
// row, and each new value is appended to the row currently being built.
type arrangeAsIs[C dsv.Ch] struct{}

func (arrangeAsIs[C]) newRecord(t *Table[C]) {
	t.records = append(t.records, nil)
}

func (arrangeAsIs[C]) newValue(t *Table[C], v Value[C]) {
	last := len(t.records) - 1
	t.records[last] = append(t.records[last], v)
}

// Builder is a pass-through-buffer-policy handler that assembles a
// Table directly from parse events: it implements both the mandatory
// event methods and GetBuffer/ReleaseBuffer, per spec.md §4.7's
// description of the builder as "a handler used with pass-through
// buffer policy to construct the table directly from parse events."
type Builder[C dsv.Ch] struct {
	table    *Table[C]
	arranger arranger[C]

	// buf is the backing array currently aliased by the engine's buf
	// parameter; held reports whether it is still exclusively ours (not
	// yet committed into the arena's block list).
	buf  []C
	held bool

	// bufOffset translates the engine's buf-relative first/last indices
	// into buf-relative absolute ones: the most recent GetBuffer call
	// returned buf[bufOffset:], so an index i the engine reports is
	// really buf[bufOffset+i].
	bufOffset int

	// fieldBegin/fieldEnd delimit the field under construction within
	// buf; fieldBegin is -1 when there is no field in progress.
	fieldBegin, fieldEnd int
}

// NewBuilder returns a builder that appends each record as a new row of
// table.
func NewBuilder[C dsv.Ch](table *Table[C]) *Builder[C] {
	return &Builder[C]{table: table, arranger: arrangeAsIs[C]{}, fieldBegin: -1}
}

// StartRecord implements the engine handler contract.
func (b *Builder[C]) StartRecord(buf []C, at int) bool {
	b.arranger.newRecord(b.table)
	return true
}

// Update implements the engine handler contract: it moves [first,last)
// into place right after the field's current end, an overlap-safe
// memmove-equivalent since buf and b.buf share a backing array.
func (b *Builder[C]) Update(buf []C, first, last int) bool {
	af, al := b.bufOffset+first, b.bufOffset+last
	if b.fieldBegin >= 0 {
		n := al - af
		copy(b.buf[b.fieldEnd:b.fieldEnd+n], b.buf[af:al])
		b.fieldEnd += n
	} else {
		b.fieldBegin, b.fieldEnd = af, al
	}
	return true
}

// Finalize implements the engine handler contract: it completes the
// field, writes its trailing null, commits the currently held buffer to
// the arena on the first finalize to use it, and hands the finished
// value to the arranger.
func (b *Builder[C]) Finalize(buf []C, first, last int) bool {
	b.Update(buf, first, last)
	b.buf[b.fieldEnd] = 0
	if b.held {
		b.table.arena.AddBuffer(b.buf)
		b.held = false
	}
	b.arranger.newValue(b.table, Value[C]{data: b.buf[b.fieldBegin:b.fieldEnd]})
	b.table.arena.SecureCurrentUpto(b.fieldEnd + 1)
	b.fieldBegin = -1
	return true
}

// EndRecord implements the engine handler contract; the builder has
// nothing of its own to do between records.
func (b *Builder[C]) EndRecord(buf []C, at int) bool {
	return true
}

// GetBuffer implements the pass-through buffer provider contract. It
// preserves an in-flight field's bytes across the refill: reusing b.buf
// in place when it is still ours and large enough, otherwise securing a
// new block from the table's arena and copying the field across.
func (b *Builder[C]) GetBuffer() ([]C, error) {
	var length int
	if b.fieldBegin >= 0 {
		length = b.fieldEnd - b.fieldBegin
		next := b.nextBufferSize(length)
		if b.held && len(b.buf) >= next {
			copy(b.buf[0:length], b.buf[b.fieldBegin:b.fieldEnd])
		} else {
			fresh := b.table.arena.GenerateBuffer(next)
			copy(fresh[0:length], b.buf[b.fieldBegin:b.fieldEnd])
			if b.held {
				b.table.arena.ConsumeBuffer(b.buf)
			}
			b.buf = fresh
			b.held = true
		}
		b.fieldBegin, b.fieldEnd = 0, length
	} else {
		if !b.held {
			b.buf = b.table.arena.GenerateBuffer(b.table.BufferSize())
			b.held = true
		}
		length = 0
	}
	b.bufOffset = length
	return b.buf[length:], nil
}

// ReleaseBuffer implements the pass-through buffer provider contract as
// a no-op: buffer disposition is handled entirely by Finalize and
// GetBuffer, matching the original's release_buffer.
func (b *Builder[C]) ReleaseBuffer(buf []C) {}

func (b *Builder[C]) nextBufferSize(occupied int) int {
	next := b.table.BufferSize()
	for occupied >= next/2 {
		next *= 2
	}
	return next
}
