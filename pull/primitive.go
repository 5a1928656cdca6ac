// Package pull implements the two pull-style adapters of spec.md §4.3-4.4:
// Primitive, which turns engine events into a steppable queue, and Field,
// built on top of it, which reassembles split fields into a field-by-field
// sequence.
package pull

import (
	"errors"

	"github.com/fieldstream/dsv"
	"github.com/fieldstream/dsv/engine"
)

// EventState names the kind of the event currently at the head of a
// Primitive's queue.
type EventState int

const (
	BeforeParse EventState = iota
	Eof
	StartBuffer
	EndBuffer
	StartRecord
	EndRecord
	Update
	Finalize
	EmptyPhysicalLine
)

// Mask bits select which event kinds a Primitive records; the rest are
// dropped at the point of emission rather than queued and filtered later.
const (
	MaskStartBuffer uint32 = 1 << iota
	MaskEndBuffer
	MaskStartRecord
	MaskEndRecord
	MaskUpdate
	MaskFinalize
	MaskEmptyPhysicalLine

	MaskAll = MaskStartBuffer | MaskEndBuffer | MaskStartRecord |
		MaskEndRecord | MaskUpdate | MaskFinalize | MaskEmptyPhysicalLine
)

func maskBit(s EventState) uint32 {
	switch s {
	case StartBuffer:
		return MaskStartBuffer
	case EndBuffer:
		return MaskEndBuffer
	case StartRecord:
		return MaskStartRecord
	case EndRecord:
		return MaskEndRecord
	case Update:
		return MaskUpdate
	case Finalize:
		return MaskFinalize
	case EmptyPhysicalLine:
		return MaskEmptyPhysicalLine
	default:
		return 0
	}
}

// Event is one queued occurrence. Buf is the engine buffer the positions
// index into; it is only valid until the next call that advances the
// underlying engine (Primitive.Step may trigger exactly that), matching
// the lifetime of the raw pointers the original C++ adapter queues.
type Event[C dsv.Ch] struct {
	State      EventState
	Buf        []C
	First, Last int
}

// DataSize reports how many positions (0, 1, or 2) are meaningful for this
// event's kind, per spec.md §4.3.
func (e Event[C]) DataSize() int {
	switch e.State {
	case StartBuffer, Update, Finalize:
		return 2
	case EndBuffer, StartRecord, EndRecord, EmptyPhysicalLine:
		return 1
	default:
		return 0
	}
}

// runner is the subset of engine.CSVEngine/engine.TSVEngine that Primitive
// needs; it lets a Primitive be attached to either dialect interchangeably.
type runner interface {
	Run() (engine.Status, error)
}

// Primitive is a handler that enqueues every event it receives (subject to
// its mask) instead of acting on them directly, and lets the caller step
// through the queue, refilling by invoking the underlying engine whenever
// it drains. It implements engine.Handler and engine.Yielder.
type Primitive[C dsv.Ch] struct {
	mask        uint32
	discardData bool

	eng runner

	events []Event[C]
	idx    int

	eofSeen  bool
	yieldLoc int
}

// NewPrimitive returns a Primitive that records only the event kinds set
// in mask. Call Attach before the first Step.
func NewPrimitive[C dsv.Ch](mask uint32) *Primitive[C] {
	return &Primitive[C]{mask: mask}
}

// Attach binds the engine this Primitive's Step will drive. Separate from
// construction because the engine itself must be constructed with this
// Primitive as its handler.
func (p *Primitive[C]) Attach(eng runner) {
	p.eng = eng
}

// SetDiscardData turns the data-suppression mode on or off: events are
// still queued (so record/field counting stays correct) but carry no
// buffer reference, for callers that want to skip without materializing
// values.
func (p *Primitive[C]) SetDiscardData(discard bool) {
	p.discardData = discard
}

func (p *Primitive[C]) enqueue(state EventState, buf []C, first, last int) {
	if p.mask&maskBit(state) == 0 {
		return
	}
	ev := Event[C]{State: state, First: first, Last: last}
	if !p.discardData {
		ev.Buf = buf
	}
	p.events = append(p.events, ev)
}

// StartRecord implements engine.Handler.
func (p *Primitive[C]) StartRecord(buf []C, at int) bool {
	p.enqueue(StartRecord, buf, at, at)
	return true
}

// Update implements engine.Handler.
func (p *Primitive[C]) Update(buf []C, first, last int) bool {
	p.enqueue(Update, buf, first, last)
	return true
}

// Finalize implements engine.Handler.
func (p *Primitive[C]) Finalize(buf []C, first, last int) bool {
	p.enqueue(Finalize, buf, first, last)
	return true
}

// EndRecord implements engine.Handler.
func (p *Primitive[C]) EndRecord(buf []C, at int) bool {
	p.enqueue(EndRecord, buf, at, at)
	return true
}

// StartBuffer implements engine.BufferObserver.
func (p *Primitive[C]) StartBuffer(buf []C) {
	p.enqueue(StartBuffer, buf, 0, len(buf))
}

// EndBuffer implements engine.BufferObserver.
func (p *Primitive[C]) EndBuffer(buf []C, at int) {
	p.enqueue(EndBuffer, buf, at, at)
}

// EmptyPhysicalLine implements engine.EmptyLineObserver.
func (p *Primitive[C]) EmptyPhysicalLine(buf []C, at int) bool {
	p.enqueue(EmptyPhysicalLine, buf, at, at)
	return true
}

// Yield implements engine.Yielder: it requests suspension whenever the
// queue holds an item the caller hasn't consumed yet, so control returns
// to Step before the engine can reuse the buffer those items reference.
func (p *Primitive[C]) Yield(locationID int) bool {
	if p.idx < len(p.events) {
		p.yieldLoc = locationID
		return true
	}
	return false
}

// YieldLocation implements engine.Yielder.
func (p *Primitive[C]) YieldLocation() int {
	return p.yieldLoc
}

// State returns the event kind currently at the head of the queue.
func (p *Primitive[C]) State() EventState {
	if p.idx < len(p.events) {
		return p.events[p.idx].State
	}
	if p.eofSeen {
		return Eof
	}
	return BeforeParse
}

// Current returns the event at the head of the queue.
func (p *Primitive[C]) Current() Event[C] {
	if p.idx < len(p.events) {
		return p.events[p.idx]
	}
	return Event[C]{State: p.State()}
}

// errNotAttached is returned by Step if Attach was never called.
var errNotAttached = errors.New("pull: primitive is not attached to an engine")

// Step advances to the next event, invoking the underlying engine to
// refill the queue whenever it drains and end of stream has not yet been
// seen. After true end of stream, State keeps returning Eof.
func (p *Primitive[C]) Step() error {
	if p.idx < len(p.events) {
		p.idx++
	}
	for p.idx >= len(p.events) {
		if p.eofSeen {
			p.events = p.events[:0]
			p.idx = 0
			return nil
		}
		if p.eng == nil {
			return errNotAttached
		}
		p.events = p.events[:0]
		p.idx = 0
		status, err := p.eng.Run()
		if err != nil {
			return err
		}
		if status != engine.StatusSuspended {
			p.eofSeen = true
		}
	}
	return nil
}
