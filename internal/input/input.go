package input

import (
	"unicode"

	"github.com/cbegin/vpiano-go/internal/keys"
)

// DefaultBaseOffset places the first bound character on C5 of the default table.
const DefaultBaseOffset = 36

// Binding maps a lowercase character to an offset from the mapper's base index.
type Binding map[rune]int

// DefaultBinding interleaves the home row (naturals) with the row above it
// (accidentals), starting at C.
func DefaultBinding() Binding {
	return Binding{
		'a': 0, 'w': 1, 's': 2, 'e': 3, 'd': 4, 'f': 5, 't': 6, 'g': 7, 'y': 8, 'h': 9, 'u': 10, 'j': 11,
		'k': 12, 'o': 13, 'l': 14, 'p': 15, ';': 16, '\'': 17,
	}
}

type Source int

const (
	SourcePointer Source = iota
	SourceKeyboard
)

func (s Source) String() string {
	switch s {
	case SourcePointer:
		return "pointer"
	case SourceKeyboard:
		return "keyboard"
	default:
		return "unknown"
	}
}

// Resolution is an input event resolved to a playable key.
type Resolution struct {
	Index     int
	ID        string
	Frequency float64
	Source    Source
}

type Mapper struct {
	table   *keys.Table
	binding Binding
	base    int
	reverse map[int]rune
}

// NewMapper copies binding; later changes to the caller's map have no effect.
// Characters are matched case-insensitively. When binding holds both cases of
// a letter, the lowercase entry is used.
func NewMapper(table *keys.Table, binding Binding, baseOffset int) *Mapper {
	m := &Mapper{
		table:   table,
		binding: make(Binding, len(binding)),
		base:    baseOffset,
		reverse: make(map[int]rune, len(binding)),
	}
	for r, off := range binding {
		lower := unicode.ToLower(r)
		if lower != r {
			if _, ok := binding[lower]; ok {
				// The lowercase entry wins over its uppercase twin.
				continue
			}
		}
		r = lower
		m.binding[r] = off
		idx := baseOffset + off
		if prev, ok := m.reverse[idx]; !ok || r < prev {
			m.reverse[idx] = r
		}
	}
	return m
}

// Key resolves a typed character. Unmapped characters and offsets that land
// outside the table are reported as not ok.
func (m *Mapper) Key(r rune) (Resolution, bool) {
	off, ok := m.binding[unicode.ToLower(r)]
	if !ok {
		return Resolution{}, false
	}
	idx := m.base + off
	k, ok := m.table.At(idx)
	if !ok {
		return Resolution{}, false
	}
	return Resolution{Index: idx, ID: k.ID(), Frequency: k.Frequency, Source: SourceKeyboard}, true
}

// Pointer resolves a click on a rendered key by its identifier.
func (m *Mapper) Pointer(id string) (Resolution, bool) {
	idx, ok := m.table.Index(id)
	if !ok {
		return Resolution{}, false
	}
	k, _ := m.table.At(idx)
	return Resolution{Index: idx, ID: id, Frequency: k.Frequency, Source: SourcePointer}, true
}

// CharFor returns the character bound to the key at index, if any.
func (m *Mapper) CharFor(index int) (rune, bool) {
	r, ok := m.reverse[index]
	return r, ok
}

func (m *Mapper) BaseOffset() int { return m.base }
