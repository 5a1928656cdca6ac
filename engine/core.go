package engine

import (
	"errors"

	"github.com/fieldstream/dsv"
)

// Status is the outcome of a call to Run.
type Status int

const (
	// StatusCompleted means the parse reached end of stream and every
	// event for it was delivered.
	StatusCompleted Status = iota
	// StatusNotCompleted means a handler callback returned false; the
	// engine stopped immediately and no further events will fire.
	StatusNotCompleted
	// StatusSuspended means a Yielder asked to pause; calling Run again
	// resumes from exactly the point of suspension.
	StatusSuspended
)

// errAbort unwinds the call stack when a mandatory handler method returns
// false, standing in for the private parse_aborted exception of
// original_source/include/commata/parse_csv.hpp — ported, per this
// project's redesign notes, as a sentinel error threaded through ordinary
// Go returns instead of a control-flow exception.
var errAbort = errors.New("engine: handler requested abort")

// resumeStage names where a suspended Run should pick back up. It is the
// Go rendering of this project's "port labels/gotos as an explicit
// saved-state enum" redesign note.
type resumeStage int

const (
	stageFetchBuffer resumeStage = iota
	stageCharLoop
	stageUnderflow
	stageEOFStep
	stageEndBuffer
	stageYieldEnd
	stageDone
)

// stepper is implemented by each dialect's state machine (csvEngine,
// tsvEngine) and driven by core.run via the template-method pattern: the
// dialect supplies per-state transitions, the core supplies the
// buffer-refill loop, position tracking, and yield/abort protocol common
// to both.
type stepper[C dsv.Ch] interface {
	stepNormal(c C) error
	stepUnderflow() error
	stepEOF() error
}

// core holds everything about a parse session that is not specific to a
// dialect's state-transition table: buffer management, the handler, and
// physical-position bookkeeping, mirroring the non-template-specialized
// members of original_source's primitive_parser.
type core[C dsv.Ch] struct {
	h      completeHandler[C]
	src    dsv.Source[C]
	policy bufferPolicy[C]
	keys   dsv.KeyChars[C]

	recordStarted bool

	// first/last delimit the current field within buf.
	first, last int

	// buf is the buffer currently on loan from policy; p indexes the next
	// unit to consume from it, end is how much of it was actually filled.
	buf        []C
	p, end     int
	eofReached bool

	physicalLineIndex            int64 // -1 means "no line started yet"
	physicalLineOrBufferBegin    int   // offset into buf
	physicalLineCharsPassedAway  uint

	resume resumeStage
}

func newCore[C dsv.Ch](h Handler[C], src dsv.Source[C], arenaSize int) core[C] {
	return core[C]{
		h:                 completeFrom(h),
		src:               src,
		policy:            selectBufferPolicy(h, arenaSize),
		keys:              dsv.Chars[C](),
		physicalLineIndex: -1,
		resume:            stageFetchBuffer,
	}
}

// run drives self (the dialect-specific stepper) to completion, abort, or a
// yield point, resuming from wherever a previous call to run left off.
func (c *core[C]) run(self stepper[C]) (Status, error) {
	for {
		switch c.resume {
		case stageFetchBuffer:
			if err := c.fetchBuffer(); err != nil {
				c.h.handleException()
				return StatusNotCompleted, err
			}
			c.p = 0
			c.physicalLineOrBufferBegin = 0
			c.setFirstLast()
			c.h.startBuffer(c.buf[:c.end])
			c.resume = stageCharLoop

		case stageCharLoop:
			for c.p < c.end {
				if err := self.stepNormal(c.buf[c.p]); err != nil {
					return c.fail(err)
				}
				c.p++
				if c.h.yield(YieldAfterStep) {
					c.resume = stageCharLoop
					return StatusSuspended, nil
				}
			}
			c.resume = stageUnderflow

		case stageUnderflow:
			if err := self.stepUnderflow(); err != nil {
				return c.fail(err)
			}
			if c.eofReached {
				c.resume = stageEOFStep
			} else {
				c.resume = stageEndBuffer
			}

		case stageEOFStep:
			c.setFirstLast()
			if err := self.stepEOF(); err != nil {
				return c.fail(err)
			}
			if c.recordStarted {
				if err := c.endRecord(); err != nil {
					return c.fail(err)
				}
			}
			c.resume = stageEndBuffer

		case stageEndBuffer:
			c.physicalLineCharsPassedAway += uint(c.p - c.physicalLineOrBufferBegin)
			c.h.endBuffer(c.buf[:c.end], c.p)
			c.policy.releaseBuffer(c.buf)
			c.buf = nil
			if c.eofReached {
				c.resume = stageYieldEnd
				continue
			}
			if c.h.yield(YieldAfterEndBuffer) {
				c.resume = stageFetchBuffer
				return StatusSuspended, nil
			}
			c.resume = stageFetchBuffer

		case stageYieldEnd:
			c.resume = stageDone
			if c.h.yield(YieldAtEOF) {
				return StatusSuspended, nil
			}
			return StatusCompleted, nil

		case stageDone:
			return StatusCompleted, nil
		}
	}
}

// fail wraps err appropriately and unwinds via an ordinary return: an
// abort returns StatusNotCompleted with no error (by spec.md §4.1, an
// abort simply stops the engine); any other error is given its physical
// position and propagated, after one call to HandleException.
func (c *core[C]) fail(err error) (Status, error) {
	if errors.Is(err, errAbort) {
		return StatusNotCompleted, nil
	}
	c.h.handleException()
	var pe interface {
		SetPhysicalPosition(line, col uint) *dsv.TextError
	}
	if errors.As(err, &pe) {
		line := dsv.NoPos
		if c.physicalLineIndex >= 0 {
			line = uint(c.physicalLineIndex)
		}
		col := uint(c.p-c.physicalLineOrBufferBegin) + c.physicalLineCharsPassedAway
		pe.SetPhysicalPosition(line, col)
	}
	return StatusNotCompleted, err
}

func (c *core[C]) fetchBuffer() error {
	buf, err := c.policy.getBuffer()
	if err != nil {
		return err
	}
	if len(buf) < minBufferSize {
		return dsv.NewOutOfRangeError("buffer too small", dsv.SignNone)
	}
	// The last unit is reserved for a null terminator a handler may write
	// past the final field's end; only the rest is ever filled from src.
	usable := buf[:len(buf)-1]
	loaded := 0
	for loaded < len(usable) {
		n, err := c.src.Fill(usable[loaded:])
		if err != nil {
			return err
		}
		loaded += n
		if n == 0 {
			c.eofReached = true
			break
		}
	}
	c.buf = buf
	c.end = loaded
	return nil
}

// --- helpers shared by every dialect's transition table, named after
// original_source's primitive_parser private methods. ---

func (c *core[C]) newPhysicalLine() {
	if c.physicalLineIndex < 0 {
		c.physicalLineIndex = 0
	} else {
		c.physicalLineIndex++
	}
	c.physicalLineOrBufferBegin = c.p
	c.physicalLineCharsPassedAway = 0
}

func (c *core[C]) setFirstLast() {
	c.first = c.p
	c.last = c.p
}

func (c *core[C]) updateLast() {
	c.last = c.p + 1
}

func (c *core[C]) update() error {
	if !c.recordStarted {
		if !c.h.h.StartRecord(c.buf, c.first) {
			return errAbort
		}
		c.recordStarted = true
	}
	if c.first < c.last {
		if !c.h.h.Update(c.buf, c.first, c.last) {
			return errAbort
		}
	}
	return nil
}

func (c *core[C]) finalize() error {
	if !c.recordStarted {
		if !c.h.h.StartRecord(c.buf, c.first) {
			return errAbort
		}
		c.recordStarted = true
	}
	if !c.h.h.Finalize(c.buf, c.first, c.last) {
		return errAbort
	}
	return nil
}

func (c *core[C]) forceStartRecord() error {
	if !c.h.h.StartRecord(c.buf, c.p) {
		return errAbort
	}
	c.recordStarted = true
	return nil
}

func (c *core[C]) endRecord() error {
	if !c.h.h.EndRecord(c.buf, c.p) {
		return errAbort
	}
	c.recordStarted = false
	return nil
}

func (c *core[C]) emptyPhysicalLine() error {
	if !c.h.emptyPhysicalLine(c.buf, c.p) {
		return errAbort
	}
	return nil
}
