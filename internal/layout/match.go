package layout

import "fmt"

// punctuationKey returns the non-letter key for targets that sit outside the
// letter rows.
func punctuationKey(c Character) (RawKey, bool) {
	switch c {
	case 'х':
		return KeyBracketLeft, true
	case 'ъ':
		return KeyBracketRight, true
	case 'ж':
		return KeySemicolon, true
	case 'э':
		return KeyQuote, true
	case 'б':
		return KeyComma, true
	case 'ю':
		return KeyPeriod, true
	case 'ё':
		return KeyBackquote, true
	case '.':
		return KeySlash, true
	default:
		return KeyUnknown, false
	}
}

// Lookup returns the key expected for target c.
func Lookup(c Character) (RawKey, bool) {
	if off, ok := letterOffsets[c]; ok {
		return KeyA + RawKey(off), true
	}
	return punctuationKey(c)
}

// ExpectedRawKey returns the key expected for target c. It panics when c is
// outside the alphabet.
func ExpectedRawKey(c Character) RawKey {
	k, ok := Lookup(c)
	if !ok {
		panic(fmt.Errorf("layout: %q: %w", rune(c), ErrUnknownCharacter))
	}
	return k
}

// IsMatch reports whether pressing k counts as pressing target c on either
// layout.
func IsMatch(k RawKey, c Character) bool {
	if !k.IsLetter() {
		want, ok := punctuationKey(c)
		return ok && k == want
	}
	off, ok := letterOffsets[c]
	return ok && int(k-KeyA) == off
}
