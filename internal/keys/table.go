package keys

// Table is the ordered, read-only key sequence produced by Generate.
type Table struct {
	keys  []Key
	index map[string]int
}

func newTable(ks []Key) *Table {
	t := &Table{keys: ks, index: make(map[string]int, len(ks))}
	for i, k := range ks {
		t.index[k.ID()] = i
	}
	return t
}

func (t *Table) Len() int { return len(t.keys) }

// At returns the key at position i in playback order.
func (t *Table) At(i int) (Key, bool) {
	if i < 0 || i >= len(t.keys) {
		return Key{}, false
	}
	return t.keys[i], true
}

func (t *Table) Index(id string) (int, bool) {
	i, ok := t.index[id]
	return i, ok
}

func (t *Table) Lookup(id string) (Key, bool) {
	i, ok := t.index[id]
	if !ok {
		return Key{}, false
	}
	return t.keys[i], true
}

func (t *Table) Contains(id string) bool {
	_, ok := t.index[id]
	return ok
}

// Keys returns a copy of the sequence.
func (t *Table) Keys() []Key {
	out := make([]Key, len(t.keys))
	copy(out, t.keys)
	return out
}

func (t *Table) Naturals() []Key {
	return t.filter(false)
}

func (t *Table) Accidentals() []Key {
	return t.filter(true)
}

func (t *Table) filter(accidental bool) []Key {
	var out []Key
	for _, k := range t.keys {
		if k.Accidental == accidental {
			out = append(out, k)
		}
	}
	return out
}
