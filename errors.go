package dsv

import (
	"fmt"
	"strconv"
)

// NoPos marks an absent line or column in a TextError's physical position,
// mirroring the sentinel "npos" of the original C++ library. Exported so
// package engine, which determines physical positions as it parses, can
// report "no physical line started yet" using the same sentinel.
const NoPos = ^uint(0)

// noPos is a package-local alias kept for readability at existing call sites.
const noPos = NoPos

// Sign values carried by an OutOfRangeError, indicating which direction
// the input value overflowed.
const (
	SignNone     = 0
	SignPositive = 1
	SignNegative = -1
)

// TextError is the common wrapper for any parse failure that can be
// attributed to a source location. The zero value has no message and an
// absent physical position.
type TextError struct {
	msg  string
	line uint
	col  uint
}

// NewTextError returns a TextError carrying msg with no physical position
// attached yet; the engine attaches one as the error propagates out of the
// parse loop.
func NewTextError(msg string) *TextError {
	return &TextError{msg: msg, line: noPos, col: noPos}
}

// Error implements the error interface, rendering at base 1 (line 1 is the
// first physical line), matching the default documented in spec.md §7.
func (e *TextError) Error() string {
	return e.Format(1)
}

// SetPhysicalPosition records the 0-based line and column at which the error
// occurred. Called by the engine's outer frame as an error unwinds.
func (e *TextError) SetPhysicalPosition(line, col uint) *TextError {
	e.line = line
	e.col = col
	return e
}

// PhysicalPosition returns the stored 0-based (line, column) and whether one
// is actually present (both fields absent means "never attached").
func (e *TextError) PhysicalPosition() (line, col uint, ok bool) {
	if e.line == noPos && e.col == noPos {
		return 0, 0, false
	}
	return e.line, e.col, true
}

// Format renders the error using the wire format of spec.md §6:
//
//	"<message>; line <line+base> column <col+base>"
//
// with missing message reduced to "Text error at line L column C", and with
// both positions absent reduced to just the message. Each position prints as
// "n/a" individually if its internal sentinel is set.
func (e *TextError) Format(base uint) string {
	if e.line == noPos && e.col == noPos {
		return e.msg
	}
	l := formatPos(e.line, base)
	c := formatPos(e.col, base)
	if e.msg == "" {
		return fmt.Sprintf("Text error at line %s column %s", l, c)
	}
	return fmt.Sprintf("%s; line %s column %s", e.msg, l, c)
}

func formatPos(pos, base uint) string {
	if pos == noPos {
		return "n/a"
	}
	return strconv.FormatUint(uint64(pos+base), 10)
}

// InvalidFormatError reports a syntactic violation: a stray quote, a
// character following a closed escaped field, or a quoted field left open at
// EOF (spec.md §7).
type InvalidFormatError struct {
	*TextError
}

// NewInvalidFormatError wraps msg as an InvalidFormatError.
func NewInvalidFormatError(msg string) *InvalidFormatError {
	return &InvalidFormatError{NewTextError(msg)}
}

// OutOfRangeError reports either a numeric overflow (with a direction sign)
// or an engine-level configuration error such as a too-small buffer.
type OutOfRangeError struct {
	*TextError
	Sign int
}

// NewOutOfRangeError wraps msg as an OutOfRangeError with the given overflow
// direction (SignPositive, SignNegative, or SignNone for non-numeric causes).
func NewOutOfRangeError(msg string, sign int) *OutOfRangeError {
	return &OutOfRangeError{TextError: NewTextError(msg), Sign: sign}
}

// EmptyFieldError reports a blank field where a value was required.
type EmptyFieldError struct {
	*TextError
}

// NewEmptyFieldError wraps msg as an EmptyFieldError.
func NewEmptyFieldError(msg string) *EmptyFieldError {
	return &EmptyFieldError{NewTextError(msg)}
}

// FieldNotFoundError reports that no column matched a declared required
// field, raised by a strict skip handler or a name-based extractor.
type FieldNotFoundError struct {
	*TextError
}

// NewFieldNotFoundError wraps msg as a FieldNotFoundError.
func NewFieldNotFoundError(msg string) *FieldNotFoundError {
	return &FieldNotFoundError{NewTextError(msg)}
}
