package table

import "github.com/fieldstream/dsv"

// arrangeTransposing swaps the (record, column) axes: field i of
// physical record j lands at column j of row i. A row that does not yet
// reach column j is padded with empty Values up to it, so every row
// stays aligned even when source records have ragged widths, per
// spec.md §4.7's "Transposing builder".
type arrangeTransposing[C dsv.Ch] struct {
	i    int // current physical record's 1-based column count so far
	jIdx int // row index the next value lands in
}

// newArrangeTransposing seeds i from the widest record table already
// holds, so a transposing builder appending into a non-empty table
// keeps padding consistent with what is already there.
func newArrangeTransposing[C dsv.Ch](t *Table[C]) *arrangeTransposing[C] {
	max := 0
	for _, rec := range t.records {
		if len(rec) > max {
			max = len(rec)
		}
	}
	return &arrangeTransposing[C]{i: max}
}

func (a *arrangeTransposing[C]) newRecord(t *Table[C]) {
	a.i++
	a.jIdx = 0
}

func (a *arrangeTransposing[C]) newValue(t *Table[C], v Value[C]) {
	if a.jIdx == len(t.records) {
		row := make([]Value[C], a.i)
		row[a.i-1] = v
		t.records = append(t.records, row)
	} else {
		row := t.records[a.jIdx]
		if need := a.i - len(row); need > 0 {
			row = append(row, make([]Value[C], need)...)
		}
		row[len(row)-1] = v
		t.records[a.jIdx] = row
	}
	a.jIdx++
}

// NewTransposingBuilder returns a builder that writes each physical
// record's fields into a column of table rather than a row.
func NewTransposingBuilder[C dsv.Ch](table *Table[C]) *Builder[C] {
	return &Builder[C]{table: table, arranger: newArrangeTransposing(table), fieldBegin: -1}
}
