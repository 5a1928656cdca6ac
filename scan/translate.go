package scan

import "github.com/fieldstream/dsv"

// ErrorKind classifies why a Translator's Convert failed, so a
// ConversionErrorPolicy can choose a substitute per spec.md §4.6.
type ErrorKind int

const (
	KindNone ErrorKind = iota
	KindEmpty
	KindInvalidFormat
	KindOutOfRangeHigh
	KindOutOfRangeLow
)

// SkipPolicy decides what a Translator does when its column's
// FieldSkipped fires: supply a fixed value, do nothing, or fail.
type SkipPolicy[T any] func() (value T, use bool, err error)

// FailIfSkipped reports FieldNotFoundError for a missing field.
func FailIfSkipped[T any]() SkipPolicy[T] {
	return func() (T, bool, error) {
		var zero T
		return zero, false, dsv.NewFieldNotFoundError("field not found")
	}
}

// IgnoreIfSkipped leaves the sink uncalled for a missing field.
func IgnoreIfSkipped[T any]() SkipPolicy[T] {
	return func() (T, bool, error) {
		var zero T
		return zero, false, nil
	}
}

// ReplaceIfSkipped supplies v for a missing field.
func ReplaceIfSkipped[T any](v T) SkipPolicy[T] {
	return func() (T, bool, error) { return v, true, nil }
}

// ConversionErrorPolicy decides what a Translator does when Convert
// fails, given the failure kind and the raw text that failed to convert.
type ConversionErrorPolicy[T any] func(kind ErrorKind, raw string) (value T, use bool, err error)

// FailIfConversionFailed reports the error matching kind.
func FailIfConversionFailed[T any]() ConversionErrorPolicy[T] {
	return func(kind ErrorKind, raw string) (T, bool, error) {
		var zero T
		switch kind {
		case KindEmpty:
			return zero, false, dsv.NewEmptyFieldError("field is empty")
		case KindOutOfRangeHigh:
			return zero, false, dsv.NewOutOfRangeError("value out of range: "+raw, dsv.SignPositive)
		case KindOutOfRangeLow:
			return zero, false, dsv.NewOutOfRangeError("value out of range: "+raw, dsv.SignNegative)
		default:
			return zero, false, dsv.NewInvalidFormatError("invalid value: " + raw)
		}
	}
}

// IgnoreIfConversionFailed leaves the sink uncalled on a failed
// conversion.
func IgnoreIfConversionFailed[T any]() ConversionErrorPolicy[T] {
	return func(ErrorKind, string) (T, bool, error) {
		var zero T
		return zero, false, nil
	}
}

// ReplaceIfConversionFailed substitutes a fixed value per failure kind. A
// nil entry for a kind falls through to FailIfConversionFailed's
// behavior for that kind.
func ReplaceIfConversionFailed[T any](empty, invalid, upper, lower *T) ConversionErrorPolicy[T] {
	return func(kind ErrorKind, raw string) (T, bool, error) {
		var pick *T
		switch kind {
		case KindEmpty:
			pick = empty
		case KindInvalidFormat:
			pick = invalid
		case KindOutOfRangeHigh:
			pick = upper
		case KindOutOfRangeLow:
			pick = lower
		}
		if pick != nil {
			return *pick, true, nil
		}
		return FailIfConversionFailed[T]()(kind, raw)
	}
}

// Translator bundles a target type's conversion, a sink, and the skip and
// conversion-error policies of spec.md §4.6, and implements FieldScanner
// so it can be registered directly on a TableScanner. The zero value is
// not usable on its own — Convert must be set, either by hand or via one
// of NewOwnStringTranslator, NewViewTranslator, NewArithmeticTranslator,
// or NewLocaleArithmeticTranslator.
type Translator[C dsv.Ch, T any] struct {
	Sink    func(T)
	Skip    SkipPolicy[T]
	OnError ConversionErrorPolicy[T]
	Convert func(raw []C) (T, ErrorKind, error)

	err error
}

// Err returns the error that caused the most recent FieldValue or
// FieldSkipped call to abort, if any.
func (tr *Translator[C, T]) Err() error {
	return tr.err
}

// FieldValue implements FieldScanner.
func (tr *Translator[C, T]) FieldValue(value []C, reassembled bool) bool {
	v, kind, convErr := tr.Convert(value)
	if convErr == nil {
		tr.Sink(v)
		return true
	}
	if tr.OnError == nil {
		tr.err = convErr
		return false
	}
	rv, use, err := tr.OnError(kind, toString(value))
	if err != nil {
		tr.err = err
		return false
	}
	if use {
		tr.Sink(rv)
	}
	return true
}

// FieldSkipped implements FieldScanner.
func (tr *Translator[C, T]) FieldSkipped() bool {
	if tr.Skip == nil {
		return true
	}
	v, use, err := tr.Skip()
	if err != nil {
		tr.err = err
		return false
	}
	if use {
		tr.Sink(v)
	}
	return true
}

// toString renders a field value for a conversion-error message or for
// the own-string translator; C is always byte or rune, both convertible
// to string via the obvious built-in conversion.
func toString[C dsv.Ch](v []C) string {
	switch s := any(v).(type) {
	case []byte:
		return string(s)
	case []rune:
		return string(s)
	default:
		return ""
	}
}

// NewOwnStringTranslator returns a translator whose target type is an
// owned string, built fresh from the field's view (or from a reassembled
// value, which is already an owned slice).
func NewOwnStringTranslator[C dsv.Ch](sink func(string)) *Translator[C, string] {
	return &Translator[C, string]{
		Sink: sink,
		Convert: func(raw []C) (string, ErrorKind, error) {
			return toString(raw), KindNone, nil
		},
	}
}

// NewViewTranslator returns a translator whose target type is the raw
// []C view itself — zero-copy for the common single-chunk field, an
// owned slice when the field was reassembled.
func NewViewTranslator[C dsv.Ch](sink func([]C)) *Translator[C, []C] {
	return &Translator[C, []C]{
		Sink: sink,
		Convert: func(raw []C) ([]C, ErrorKind, error) {
			return raw, KindNone, nil
		},
	}
}
