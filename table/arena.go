// Package table implements the owned in-memory "stored table": an arena of
// character blocks that field values are carved out of, and a builder
// handler that assembles a table directly from parse events.
package table

import "github.com/fieldstream/dsv"

// block is one contiguous allocation owned by an Arena. secured is the
// block's high-water mark: the first unused index, matching
// original_source's store_buffer high-water level.
type block[C dsv.Ch] struct {
	buf     []C
	secured int
}

func (b *block[C]) size() int { return len(b.buf) }

func (b *block[C]) secure(n int) ([]C, bool) {
	if len(b.buf)-b.secured < n {
		return nil, false
	}
	s := b.secured
	b.secured += n
	return b.buf[s : s+n], true
}

func (b *block[C]) clear() { b.secured = 0 }

// Security is a snapshot of every block's high-water mark at a moment,
// in the same front-to-back order as Arena.blocks, returned by
// Arena.GetSecurity and accepted by Arena.SetSecurity to roll allocations
// back.
type Security []int

// Arena is an ordered list of character blocks that field values are
// carved from. The most recently added block is always the "current"
// block that SecureCurrentUpto targets, mirroring
// original_source/stored_table.hpp's table_store and its push-front
// singly linked list of buffers.
type Arena[C dsv.Ch] struct {
	blocks []*block[C]
	free   []*block[C]
}

// NewArena returns an empty arena.
func NewArena[C dsv.Ch]() *Arena[C] {
	return &Arena[C]{}
}

// AddBuffer takes ownership of buf as a new current block, at secured
// mark 0. Call SecureCurrentUpto afterward to record how much of it
// already holds committed field data.
func (a *Arena[C]) AddBuffer(buf []C) {
	a.blocks = append([]*block[C]{{buf: buf}}, a.blocks...)
}

// SecureCurrentUpto advances the current (most recently added) block's
// high-water mark to n, an absolute index into that block's buffer.
func (a *Arena[C]) SecureCurrentUpto(n int) {
	a.blocks[0].secured = n
}

// SecureAny scans blocks front to back for the first with at least n
// unsecured units, claims them by advancing that block's high-water
// mark, and returns the claimed slice. It reports false if no block can
// satisfy the request.
func (a *Arena[C]) SecureAny(n int) ([]C, bool) {
	for _, blk := range a.blocks {
		if s, ok := blk.secure(n); ok {
			return s, true
		}
	}
	return nil, false
}

// GenerateBuffer returns a block of at least minSize units: the first
// sufficiently large block on the free list if one exists, otherwise a
// freshly allocated one. The returned buffer is not yet owned by the
// arena — call AddBuffer (for a block the builder commits) or
// ConsumeBuffer (to return it unused) when done with it.
func (a *Arena[C]) GenerateBuffer(minSize int) []C {
	for i, blk := range a.free {
		if blk.size() >= minSize {
			a.free = append(a.free[:i], a.free[i+1:]...)
			return blk.buf
		}
	}
	return make([]C, minSize)
}

// ConsumeBuffer returns buf, which was obtained from GenerateBuffer but
// never committed via AddBuffer, to the free list for reuse.
func (a *Arena[C]) ConsumeBuffer(buf []C) {
	a.free = append(a.free, &block[C]{buf: buf})
}

// Clear empties every block's secured region and moves all blocks to
// the free list, invalidating every stored value the arena has issued.
func (a *Arena[C]) Clear() {
	for _, blk := range a.blocks {
		blk.clear()
		a.free = append(a.free, blk)
	}
	a.blocks = nil
}

// GetSecurity snapshots every block's current high-water mark, in
// front-to-back order.
func (a *Arena[C]) GetSecurity() Security {
	s := make(Security, len(a.blocks))
	for i, blk := range a.blocks {
		s[i] = blk.secured
	}
	return s
}

// SetSecurity rolls every block's high-water mark back to s: blocks
// added since the snapshot (the excess front blocks) are cleared and
// moved to the free list, and every remaining block's mark is reset to
// its snapshotted value. This undoes every allocation made since s was
// taken, per spec.md §4.7's guarded rewrite.
func (a *Arena[C]) SetSecurity(s Security) {
	for len(a.blocks) > len(s) {
		blk := a.blocks[0]
		a.blocks = a.blocks[1:]
		blk.clear()
		a.free = append(a.free, blk)
	}
	for i, blk := range a.blocks {
		blk.secured = s[i]
	}
}

// Merge absorbs other's blocks and free list into a, leaving other
// empty. a's existing blocks stay in front (so the current block for
// SecureCurrentUpto purposes is unchanged), matching
// original_source's table_store::merge.
func (a *Arena[C]) Merge(other *Arena[C]) {
	a.blocks = append(a.blocks, other.blocks...)
	a.free = append(a.free, other.free...)
	other.blocks = nil
	other.free = nil
}
