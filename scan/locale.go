package scan

import (
	"strings"

	"github.com/fieldstream/dsv"
	"golang.org/x/text/language"
)

// NumberFormat names the thousands separator and decimal point a locale
// uses when writing numbers. A zero rune for either field means "none" /
// "not applicable" respectively.
type NumberFormat struct {
	ThousandsSeparator rune
	DecimalPoint       rune
}

// numberFormats holds the separators for the base languages this module
// ships defaults for; callers needing a locale outside this set build a
// NumberFormat directly instead of going through NumberFormatForLocale.
var numberFormats = map[string]NumberFormat{
	"en": {ThousandsSeparator: ',', DecimalPoint: '.'},
	"de": {ThousandsSeparator: '.', DecimalPoint: ','},
	"fr": {ThousandsSeparator: ' ', DecimalPoint: ','},
	"ch": {ThousandsSeparator: '\'', DecimalPoint: '.'},
}

// NumberFormatForLocale resolves tag's base language to a known
// NumberFormat, falling back to "en"'s if the language isn't one this
// module ships a default for.
func NumberFormatForLocale(tag language.Tag) NumberFormat {
	base, _ := tag.Base()
	if f, ok := numberFormats[base.String()]; ok {
		return f
	}
	return numberFormats["en"]
}

// NewLocaleArithmeticTranslator returns an arithmetic translator that
// first rewrites fmt's thousands separator and decimal point to the
// C-locale convention (no separator, '.' for the point) in a copy of the
// field, then delegates to the same conversion NewArithmeticTranslator's
// translators use, per spec.md §4.6's locale-based arithmetic translator.
func NewLocaleArithmeticTranslator[C dsv.Ch, T Numeric](fmt NumberFormat, sink func(T)) *Translator[C, T] {
	return &Translator[C, T]{
		Sink: sink,
		Convert: func(raw []C) (T, ErrorKind, error) {
			s := rewriteNumberFormat(toString(raw), fmt)
			return arithmeticConvertString[T](s)
		},
	}
}

func rewriteNumberFormat(s string, fmt NumberFormat) string {
	if fmt.ThousandsSeparator != 0 {
		s = strings.ReplaceAll(s, string(fmt.ThousandsSeparator), "")
	}
	if fmt.DecimalPoint != 0 && fmt.DecimalPoint != '.' {
		s = strings.ReplaceAll(s, string(fmt.DecimalPoint), ".")
	}
	return s
}
