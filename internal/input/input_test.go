package input

import (
	"testing"

	"github.com/cbegin/vpiano-go/internal/keys"
)

func newDefaultMapper() *Mapper {
	return NewMapper(keys.Generate(keys.DefaultConfig()), DefaultBinding(), DefaultBaseOffset)
}

func TestMapperKeyResolves(t *testing.T) {
	m := newDefaultMapper()
	cases := []struct {
		r    rune
		id   string
		want bool
	}{
		{r: 'a', id: "C5", want: true},
		{r: 'A', id: "C5", want: true},
		{r: 'w', id: "C#5", want: true},
		{r: 'd', id: "E5", want: true},
		{r: 'f', id: "F5", want: true},
		{r: 'j', id: "B5", want: true},
		{r: 'k', id: "C6", want: true},
		// Offsets past the terminal C fall outside the table.
		{r: 'o', want: false},
		{r: ';', want: false},
		{r: '\'', want: false},
		{r: 'z', want: false},
		{r: '1', want: false},
	}
	for _, tc := range cases {
		t.Run(string(tc.r), func(t *testing.T) {
			res, ok := m.Key(tc.r)
			if ok != tc.want {
				t.Fatalf("Key(%q) ok = %v, want %v", tc.r, ok, tc.want)
			}
			if !ok {
				return
			}
			if res.ID != tc.id {
				t.Fatalf("Key(%q) = %s, want %s", tc.r, res.ID, tc.id)
			}
			if res.Source != SourceKeyboard {
				t.Fatalf("source = %v, want keyboard", res.Source)
			}
			if res.Frequency <= 0 {
				t.Fatalf("frequency = %f, want > 0", res.Frequency)
			}
		})
	}
}

func TestMapperLowerBaseCoversWholeBinding(t *testing.T) {
	m := NewMapper(keys.Generate(keys.DefaultConfig()), DefaultBinding(), 24)
	res, ok := m.Key('\'')
	if !ok {
		t.Fatal("expected ' to resolve with base 24")
	}
	if res.ID != "F5" || res.Index != 41 {
		t.Fatalf("Key(') = %s@%d, want F5@41", res.ID, res.Index)
	}
}

func TestMapperPointer(t *testing.T) {
	m := newDefaultMapper()
	res, ok := m.Pointer("G#3")
	if !ok {
		t.Fatal("expected G#3 to resolve")
	}
	if res.Index != 20 || res.Source != SourcePointer {
		t.Fatalf("Pointer(G#3) = %+v", res)
	}
	if _, ok := m.Pointer("E#3"); ok {
		t.Fatal("E#3 should not resolve")
	}
}

func TestMapperCopiesBinding(t *testing.T) {
	b := DefaultBinding()
	m := NewMapper(keys.Generate(keys.DefaultConfig()), b, DefaultBaseOffset)
	b['z'] = 0
	if _, ok := m.Key('z'); ok {
		t.Fatal("mapper should not observe later binding edits")
	}
}

func TestMapperCharFor(t *testing.T) {
	m := newDefaultMapper()
	if r, ok := m.CharFor(36); !ok || r != 'a' {
		t.Fatalf("CharFor(36) = %q %v, want 'a'", r, ok)
	}
	if r, ok := m.CharFor(48); !ok || r != 'k' {
		t.Fatalf("CharFor(48) = %q %v, want 'k'", r, ok)
	}
	if _, ok := m.CharFor(0); ok {
		t.Fatal("CharFor(0) should be unbound")
	}
}

func TestMapperLowercaseEntryWins(t *testing.T) {
	tbl := keys.Generate(keys.DefaultConfig())
	for i := 0; i < 20; i++ {
		m := NewMapper(tbl, Binding{'A': 5, 'a': 0, 'B': 2}, DefaultBaseOffset)
		for _, r := range []rune{'a', 'A'} {
			if res, ok := m.Key(r); !ok || res.ID != "C5" {
				t.Fatalf("Key(%q) = %+v %v, want C5", r, res, ok)
			}
		}
		if res, ok := m.Key('b'); !ok || res.ID != "D5" {
			t.Fatalf("Key('b') = %+v %v, want D5", res, ok)
		}
		if _, ok := m.CharFor(DefaultBaseOffset + 5); ok {
			t.Fatal("shadowed uppercase entry should not be bound")
		}
	}
}
