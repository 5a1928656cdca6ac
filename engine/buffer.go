package engine

import "github.com/fieldstream/dsv"

// DefaultBufferSize is the preferred block size of the arena buffer policy,
// matching the default of original_source/include/commata/buffer_size.hpp.
const DefaultBufferSize = 8192

// minBufferSize is the smallest buffer the engine will accept: at least one
// data unit plus one unit reserved for a trailing null terminator.
const minBufferSize = 2

// bufferPolicy supplies and reclaims the working buffer a parse reads into.
// Two implementations exist: arenaPolicy (engine-owned) and
// passThroughPolicy (delegates to a handler that implements BufferProvider).
// The choice between them is made once, in newCore, by inspecting the handler.
type bufferPolicy[C dsv.Ch] interface {
	getBuffer() ([]C, error)
	releaseBuffer(buf []C)
}

// arenaPolicy lazily allocates a single reusable block of Size units (or
// DefaultBufferSize if Size is zero) and hands the same backing array back
// on every getBuffer call; releaseBuffer is a no-op since the block is
// reused, not returned to any pool.
type arenaPolicy[C dsv.Ch] struct {
	Size int
	buf  []C
}

func (p *arenaPolicy[C]) getBuffer() ([]C, error) {
	if p.buf == nil {
		size := p.Size
		if size <= 0 {
			size = DefaultBufferSize
		}
		p.buf = make([]C, size)
	}
	return p.buf, nil
}

func (p *arenaPolicy[C]) releaseBuffer(buf []C) {}

// passThroughPolicy forwards buffer requests to a handler-supplied
// BufferProvider, used when the handler wants to own its own buffers (for
// instance a stored-table builder whose buffers become arena blocks).
type passThroughPolicy[C dsv.Ch] struct {
	provider BufferProvider[C]
}

func (p passThroughPolicy[C]) getBuffer() ([]C, error) {
	return p.provider.GetBuffer()
}

func (p passThroughPolicy[C]) releaseBuffer(buf []C) {
	p.provider.ReleaseBuffer(buf)
}

// selectBufferPolicy implements the static selection rule of the handler
// completion and buffer policy design: pass-through if the handler
// implements BufferProvider, arena otherwise.
func selectBufferPolicy[C dsv.Ch](h Handler[C], arenaSize int) bufferPolicy[C] {
	if provider, ok := h.(BufferProvider[C]); ok {
		return passThroughPolicy[C]{provider: provider}
	}
	return &arenaPolicy[C]{Size: arenaSize}
}
