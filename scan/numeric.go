package scan

import (
	"strconv"
	"strings"

	"github.com/fieldstream/dsv"
	"golang.org/x/exp/constraints"
)

// Numeric is the set of target types an arithmetic translator can
// produce: any sized integer or floating-point type.
type Numeric interface {
	constraints.Integer | constraints.Float
}

const cWhitespace = " \t\n\v\f\r"

// NewArithmeticTranslator returns a translator that parses a field as T
// using T's canonical base-10 representation, per spec.md §4.6: leading
// whitespace is skipped, a trailing non-whitespace character is an
// invalid format, an empty or whitespace-only field is Empty, and a
// value outside T's range is OutOfRange with a sign matching the
// overflow direction.
func NewArithmeticTranslator[C dsv.Ch, T Numeric](sink func(T)) *Translator[C, T] {
	return &Translator[C, T]{
		Sink: sink,
		Convert: func(raw []C) (T, ErrorKind, error) {
			return arithmeticConvertString[T](toString(raw))
		},
	}
}

func arithmeticConvertString[T Numeric](s string) (T, ErrorKind, error) {
	var zero T
	trimmed := strings.TrimLeft(s, cWhitespace)
	core := strings.TrimRight(trimmed, cWhitespace)
	if core == "" {
		return zero, KindEmpty, dsv.NewEmptyFieldError("field is empty")
	}
	if isFloatType(zero) {
		return parseFloatLike[T](core)
	}
	return parseIntLike[T](core)
}

func isFloatType[T Numeric](zero T) bool {
	switch any(zero).(type) {
	case float32, float64:
		return true
	default:
		return false
	}
}

func isUnsignedType[T Numeric](zero T) bool {
	switch any(zero).(type) {
	case uint, uint8, uint16, uint32, uint64, uintptr:
		return true
	default:
		return false
	}
}

func parseIntLike[T Numeric](core string) (T, ErrorKind, error) {
	var zero T
	negative := strings.HasPrefix(core, "-")
	if isUnsignedType(zero) {
		u, err := strconv.ParseUint(core, 10, 64)
		if err != nil {
			if isRangeErr(err) {
				return zero, KindOutOfRangeHigh, dsv.NewOutOfRangeError("value too large: "+core, dsv.SignPositive)
			}
			return zero, KindInvalidFormat, dsv.NewInvalidFormatError("invalid integer: " + core)
		}
		narrow := T(u)
		if uint64(narrow) != u {
			return zero, KindOutOfRangeHigh, dsv.NewOutOfRangeError("value too large for column type: "+core, dsv.SignPositive)
		}
		return narrow, KindNone, nil
	}

	i, err := strconv.ParseInt(core, 10, 64)
	if err != nil {
		if isRangeErr(err) {
			kind, sign := KindOutOfRangeHigh, dsv.SignPositive
			if negative {
				kind, sign = KindOutOfRangeLow, dsv.SignNegative
			}
			return zero, kind, dsv.NewOutOfRangeError("value out of range: "+core, sign)
		}
		return zero, KindInvalidFormat, dsv.NewInvalidFormatError("invalid integer: " + core)
	}
	narrow := T(i)
	if int64(narrow) != i {
		kind, sign := KindOutOfRangeHigh, dsv.SignPositive
		if i < 0 {
			kind, sign = KindOutOfRangeLow, dsv.SignNegative
		}
		return zero, kind, dsv.NewOutOfRangeError("value out of range for column type: "+core, sign)
	}
	return narrow, KindNone, nil
}

func parseFloatLike[T Numeric](core string) (T, ErrorKind, error) {
	var zero T
	bits := 64
	if _, ok := any(zero).(float32); ok {
		bits = 32
	}
	f, err := strconv.ParseFloat(core, bits)
	if err != nil {
		if isRangeErr(err) {
			sign, kind := dsv.SignPositive, KindOutOfRangeHigh
			if strings.HasPrefix(core, "-") {
				sign, kind = dsv.SignNegative, KindOutOfRangeLow
			}
			return zero, kind, dsv.NewOutOfRangeError("value out of range: "+core, sign)
		}
		return zero, KindInvalidFormat, dsv.NewInvalidFormatError("invalid number: " + core)
	}
	return T(f), KindNone, nil
}

func isRangeErr(err error) bool {
	numErr, ok := err.(*strconv.NumError)
	return ok && numErr.Err == strconv.ErrRange
}
