// Package engine implements the resumable character-by-character state
// machine that drives every higher layer of this module: the pull adapters
// of package pull and the typed scanner of package scan are themselves
// handlers plugged into an Engine.
package engine

import "github.com/fieldstream/dsv"

// Handler receives the events a parse emits. The four methods below are
// mandatory; an implementation may additionally satisfy BufferObserver,
// EmptyLineObserver, Yielder, ExceptionHandler, or BufferProvider, each
// checked for via a type assertion and filled with a no-op when absent —
// the Go rendering of the static "handler completion" every layer above
// this package relies on, matching the optional-interface idiom of
// io.ReaderFrom/http.Flusher rather than a compile-time trait table.
//
// Positions (at, first, last) index into buf, which is valid only for the
// duration of the call; nothing may retain buf past it without copying.
type Handler[C dsv.Ch] interface {
	StartRecord(buf []C, at int) bool
	Update(buf []C, first, last int) bool
	Finalize(buf []C, first, last int) bool
	EndRecord(buf []C, at int) bool
}

// BufferObserver is notified of every buffer refill, paired start/end.
type BufferObserver[C dsv.Ch] interface {
	StartBuffer(buf []C)
	EndBuffer(buf []C, at int)
}

// EmptyLineObserver is told about a physical line that held no unit at all
// (a lone CR, a lone LF, or a CRLF with nothing before it).
type EmptyLineObserver[C dsv.Ch] interface {
	EmptyPhysicalLine(buf []C, at int) bool
}

// Yielder lets a handler request cooperative suspension. Yield is asked at
// three points: after every normal-character step (location 1), after
// EndBuffer (location 2), and once at end of stream (location END). When
// Yield returns true, Run returns StatusSuspended immediately; the next
// Run call resumes from exactly that point. YieldLocation reports which
// suspension point a just-resumed Run was sitting at, for handlers that
// need to distinguish them (e.g. to tell "ran dry mid-buffer" from "ran
// dry at EOF").
type Yielder interface {
	Yield(locationID int) bool
	YieldLocation() int
}

// Suspension point identifiers passed to Yield / returned by YieldLocation.
const (
	YieldAfterStep      = 1
	YieldAfterEndBuffer = 2
	YieldAtEOF          = -1
)

// ExceptionHandler is notified exactly once, before an error propagates out
// of Run, so a handler can do side-effectful bookkeeping (flush logs, etc).
type ExceptionHandler interface {
	HandleException()
}

// BufferProvider lets a handler supply and reclaim its own buffers instead
// of using the engine's arena policy. Only a handler that implements both
// methods is a BufferProvider; one that implements just one of them is not
// rejected, it simply gets the arena policy.
type BufferProvider[C dsv.Ch] interface {
	GetBuffer() ([]C, error)
	ReleaseBuffer(buf []C)
}

// completeHandler wraps a user Handler, caching which optional interfaces
// it satisfies so the hot loop never repeats a type assertion.
type completeHandler[C dsv.Ch] struct {
	h Handler[C]

	bufferObserver BufferObserver[C]
	emptyLine      EmptyLineObserver[C]
	yielder        Yielder
	exceptionH     ExceptionHandler
}

func completeFrom[C dsv.Ch](h Handler[C]) completeHandler[C] {
	ch := completeHandler[C]{h: h}
	ch.bufferObserver, _ = h.(BufferObserver[C])
	ch.emptyLine, _ = h.(EmptyLineObserver[C])
	ch.yielder, _ = h.(Yielder)
	ch.exceptionH, _ = h.(ExceptionHandler)
	return ch
}

func (c completeHandler[C]) startBuffer(buf []C) {
	if c.bufferObserver != nil {
		c.bufferObserver.StartBuffer(buf)
	}
}

func (c completeHandler[C]) endBuffer(buf []C, at int) {
	if c.bufferObserver != nil {
		c.bufferObserver.EndBuffer(buf, at)
	}
}

func (c completeHandler[C]) emptyPhysicalLine(buf []C, at int) bool {
	if c.emptyLine != nil {
		return c.emptyLine.EmptyPhysicalLine(buf, at)
	}
	return true
}

func (c completeHandler[C]) yield(locationID int) bool {
	if c.yielder != nil {
		return c.yielder.Yield(locationID)
	}
	return false
}

func (c completeHandler[C]) handleException() {
	if c.exceptionH != nil {
		c.exceptionH.HandleException()
	}
}
