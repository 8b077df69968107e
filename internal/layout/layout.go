// Package layout maps physical keys to the characters they produce under the
// Latin and Cyrillic keyboard layouts.
package layout

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ErrUnknownCharacter is reported for symbols outside the target alphabet.
var ErrUnknownCharacter = errors.New("character is not in the alphabet")

// ErrUnknownLayout is returned by ParseLayout for unsupported names.
var ErrUnknownLayout = errors.New("unknown layout")

// RawKey identifies a physical key regardless of the OS keyboard layout.
type RawKey int

// KeyA through KeyZ are contiguous and in alphabetical order.
const (
	KeyUnknown RawKey = iota
	KeyA
	KeyB
	KeyC
	KeyD
	KeyE
	KeyF
	KeyG
	KeyH
	KeyI
	KeyJ
	KeyK
	KeyL
	KeyM
	KeyN
	KeyO
	KeyP
	KeyQ
	KeyR
	KeyS
	KeyT
	KeyU
	KeyV
	KeyW
	KeyX
	KeyY
	KeyZ
	KeyBackquote
	KeyBracketLeft
	KeyBracketRight
	KeySemicolon
	KeyQuote
	KeyComma
	KeyPeriod
	KeySlash
	KeySpace
)

var punctKeyNames = map[RawKey]string{
	KeyUnknown:      "Unknown",
	KeyBackquote:    "Backquote",
	KeyBracketLeft:  "BracketLeft",
	KeyBracketRight: "BracketRight",
	KeySemicolon:    "Semicolon",
	KeyQuote:        "Quote",
	KeyComma:        "Comma",
	KeyPeriod:       "Period",
	KeySlash:        "Slash",
	KeySpace:        "Space",
}

// IsLetter reports whether k lies in the primary letter range.
func (k RawKey) IsLetter() bool {
	return k >= KeyA && k <= KeyZ
}

func (k RawKey) String() string {
	if k.IsLetter() {
		return string(rune('A' + int(k-KeyA)))
	}
	if name, ok := punctKeyNames[k]; ok {
		return name
	}
	return fmt.Sprintf("RawKey(%d)", int(k))
}

// Character is a target symbol drawn from the fixed alphabet.
type Character rune

func (c Character) String() string {
	return string(rune(c))
}

// Upper returns the display form of the character.
func (c Character) Upper() string {
	return string(unicode.ToUpper(rune(c)))
}

// Layout selects which writing system the player's keyboard is set to.
type Layout int

const (
	Latin Layout = iota
	Cyrillic
)

func (l Layout) String() string {
	switch l {
	case Latin:
		return "latin"
	case Cyrillic:
		return "cyrillic"
	default:
		return fmt.Sprintf("layout(%d)", int(l))
	}
}

// Other returns the layout sharing this one's key geometry.
func (l Layout) Other() Layout {
	if l == Cyrillic {
		return Latin
	}
	return Cyrillic
}

// ParseLayout accepts "latin"/"en"/"qwerty" and "cyrillic"/"ru"/"jcuken".
func ParseLayout(name string) (Layout, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "latin", "en", "qwerty":
		return Latin, nil
	case "cyrillic", "ru", "jcuken", "йцукен":
		return Cyrillic, nil
	}
	return Latin, fmt.Errorf("%w: %q", ErrUnknownLayout, name)
}

// Physical key row order shared by both layouts. Index i of each array is the
// same key.
var (
	rowKeys = [...]RawKey{
		KeyBackquote,
		KeyQ, KeyW, KeyE, KeyR, KeyT, KeyY, KeyU, KeyI, KeyO, KeyP, KeyBracketLeft, KeyBracketRight,
		KeyA, KeyS, KeyD, KeyF, KeyG, KeyH, KeyJ, KeyK, KeyL, KeySemicolon, KeyQuote,
		KeyZ, KeyX, KeyC, KeyV, KeyB, KeyN, KeyM, KeyComma, KeyPeriod, KeySlash,
	}
	rowLatin = [...]rune{
		'`',
		'q', 'w', 'e', 'r', 't', 'y', 'u', 'i', 'o', 'p', '[', ']',
		'a', 's', 'd', 'f', 'g', 'h', 'j', 'k', 'l', ';', '\'',
		'z', 'x', 'c', 'v', 'b', 'n', 'm', ',', '.', '/',
	}
	rowCyrillic = [...]Character{
		'ё',
		'й', 'ц', 'у', 'к', 'е', 'н', 'г', 'ш', 'щ', 'з', 'х', 'ъ',
		'ф', 'ы', 'в', 'а', 'п', 'р', 'о', 'л', 'д', 'ж', 'э',
		'я', 'ч', 'с', 'м', 'и', 'т', 'ь', 'б', 'ю', '.',
	}
)

// alphabet is the target set in dictionary order, period last.
var alphabet = [...]Character{
	'а', 'б', 'в', 'г', 'д', 'е', 'ё', 'ж', 'з', 'и', 'й', 'к', 'л', 'м', 'н', 'о', 'п',
	'р', 'с', 'т', 'у', 'ф', 'х', 'ц', 'ч', 'ш', 'щ', 'ъ', 'ы', 'ь', 'э', 'ю', 'я', '.',
}

var (
	charIndex     map[Character]int
	keyIndex      map[RawKey]int
	latinRuneIdx  map[rune]int
	letterOffsets map[Character]int
)

func init() {
	charIndex = make(map[Character]int, len(rowCyrillic))
	keyIndex = make(map[RawKey]int, len(rowKeys))
	latinRuneIdx = make(map[rune]int, len(rowLatin))
	letterOffsets = make(map[Character]int, 26)
	for i, c := range rowCyrillic {
		if _, dup := charIndex[c]; dup {
			panic(fmt.Sprintf("layout: duplicate character %q in key row", c))
		}
		charIndex[c] = i
		keyIndex[rowKeys[i]] = i
		latinRuneIdx[rowLatin[i]] = i
		if rowKeys[i].IsLetter() {
			letterOffsets[c] = int(rowLatin[i] - 'a')
		}
	}
	if len(charIndex) != len(alphabet) || len(keyIndex) != len(rowKeys) {
		panic("layout: key table is not a bijection")
	}
	for _, c := range alphabet {
		if _, ok := charIndex[c]; !ok {
			panic(fmt.Sprintf("layout: alphabet symbol %q has no key", c))
		}
	}
}

// Alphabet returns a copy of the 34 target symbols.
func Alphabet() []Character {
	out := make([]Character, len(alphabet))
	copy(out, alphabet[:])
	return out
}

// InAlphabet reports whether c can be a target.
func InAlphabet(c Character) bool {
	_, ok := charIndex[c]
	return ok
}

// Rune returns the character printed on k under the layout.
func (l Layout) Rune(k RawKey) (rune, bool) {
	i, ok := keyIndex[k]
	if !ok {
		if k == KeySpace {
			return ' ', true
		}
		return 0, false
	}
	if l == Cyrillic {
		return rune(rowCyrillic[i]), true
	}
	return rowLatin[i], true
}

// Key returns the physical key that types r under the layout.
func (l Layout) Key(r rune) (RawKey, bool) {
	r = unicode.ToLower(r)
	if r == ' ' {
		return KeySpace, true
	}
	if l == Cyrillic {
		i, ok := charIndex[Character(r)]
		if !ok {
			return KeyUnknown, false
		}
		return rowKeys[i], true
	}
	i, ok := latinRuneIdx[r]
	if !ok {
		return KeyUnknown, false
	}
	return rowKeys[i], true
}

// Resolver turns typed runes into physical keys. A rune printed by only one
// layout switches the active layout, and runes printed by both (the full
// stop) resolve under the active one. Until then Primary is active.
type Resolver struct {
	Primary Layout

	active   Layout
	observed bool
}

// Active returns the layout ambiguous runes are resolved under.
func (r *Resolver) Active() Layout {
	if r.observed {
		return r.active
	}
	return r.Primary
}

// KeyFor returns the physical key for typed, or KeyUnknown.
func (r *Resolver) KeyFor(typed rune) RawKey {
	lk, lok := Latin.Key(typed)
	ck, cok := Cyrillic.Key(typed)
	switch {
	case lok && cok:
		if lk == ck || r.Active() == Latin {
			return lk
		}
		return ck
	case lok:
		r.active, r.observed = Latin, true
		return lk
	case cok:
		r.active, r.observed = Cyrillic, true
		return ck
	}
	return KeyUnknown
}
