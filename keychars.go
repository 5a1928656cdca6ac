package dsv

// Ch is the alphabet a parser operates over: either a narrow 8-bit code unit
// (byte, for ordinary text) or a wide 32-bit code unit (rune, for text that
// needs a unit wider than a byte). Both are monomorphized over by the engine
// rather than transcoded between, per spec.md §1 Non-goal (iii).
type Ch interface {
	byte | rune
}

// KeyChars resolves the handful of characters the state machine branches on
// for a given Ch, mirroring original_source/include/commata/key_chars.hpp's
// per-character-type specializations. Exported so package engine, which
// implements the state machine itself, can construct these values without
// this package exposing its FSM internals any more broadly than this.
type KeyChars[C Ch] struct {
	Comma  C
	Tab    C
	DQuote C
	CR     C
	LF     C
}

// Chars returns the key characters for C.
func Chars[C Ch]() KeyChars[C] {
	return KeyChars[C]{
		Comma:  C(','),
		Tab:    C('\t'),
		DQuote: C('"'),
		CR:     C('\r'),
		LF:     C('\n'),
	}
}
