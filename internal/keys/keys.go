package keys

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Natural pitch classes in scale order, and the sharp that follows each one.
// E and B have no sharp.
var (
	naturals = [7]string{"C", "D", "E", "F", "G", "A", "B"}
	sharps   = [7]string{"C#", "D#", "", "F#", "G#", "A#", ""}
)

// Note is a pitch class plus octave. Its identity is Name followed by Octave.
type Note struct {
	Name   string
	Octave int
}

// ID returns the note identifier used by input and active state, e.g. "C#4".
func (n Note) ID() string {
	return n.Name + strconv.Itoa(n.Octave)
}

func (n Note) String() string { return n.ID() }

// Key describes one playable piano key.
type Key struct {
	Note       Note
	Accidental bool
	Frequency  float64 // Hz
}

func (k Key) ID() string { return k.Note.ID() }

type Config struct {
	LowOctave         int
	HighOctave        int     // inclusive
	ReferenceOctave   int     // octave in which C sounds at BaseFrequency
	BaseFrequency     float64 // C of ReferenceOctave, Hz
	TerminalFrequency float64 // frequency of the trailing C; <= 0, or out of range for HighOctave, derives it
}

func DefaultConfig() Config {
	return Config{
		LowOctave:         2,
		HighOctave:        5,
		ReferenceOctave:   4,
		BaseFrequency:     261.63,
		TerminalFrequency: 1046.5,
	}
}

// semitoneOffset is the position of naturals[i] on the 12-tone scale.
// The half step between E and F shifts every natural from F upward by one.
func semitoneOffset(i int) int {
	off := i * 2
	if i >= 3 {
		off--
	}
	return off
}

// Generate builds the key sequence C{low}..B{high} with sharps interleaved
// after their naturals, followed by a single C one octave above high.
// It is pure: equal configs give equal tables.
func Generate(cfg Config) *Table {
	if cfg.BaseFrequency <= 0 {
		cfg.BaseFrequency = DefaultConfig().BaseFrequency
	}
	span := cfg.HighOctave - cfg.LowOctave + 1
	if span < 0 {
		span = 0
	}
	out := make([]Key, 0, span*12+1)
	for octave := cfg.LowOctave; octave <= cfg.HighOctave; octave++ {
		octaveMul := math.Pow(2, float64(octave-cfg.ReferenceOctave))
		for i, name := range naturals {
			freq := cfg.BaseFrequency * octaveMul * math.Pow(2, float64(semitoneOffset(i))/12)
			out = append(out, Key{Note: Note{Name: name, Octave: octave}, Frequency: freq})
			if sharps[i] != "" {
				out = append(out, Key{
					Note:       Note{Name: sharps[i], Octave: octave},
					Accidental: true,
					Frequency:  freq * math.Pow(2, 1.0/12),
				})
			}
		}
	}
	// A fixed terminal frequency only fits the octave range it was picked
	// for. It must sit above the last key and below a whole step over it;
	// otherwise it is derived.
	terminal := cfg.TerminalFrequency
	if n := len(out); terminal <= 0 || (n > 0 && !fitsAbove(terminal, out[n-1].Frequency)) {
		terminal = cfg.BaseFrequency * math.Pow(2, float64(cfg.HighOctave+1-cfg.ReferenceOctave))
	}
	out = append(out, Key{Note: Note{Name: naturals[0], Octave: cfg.HighOctave + 1}, Frequency: terminal})
	return newTable(out)
}

func fitsAbove(freq, last float64) bool {
	return freq > last && freq < last*math.Pow(2, 2.0/12)
}

// ParseNote parses identifiers such as "c4", "F#3" or "A-1".
func ParseNote(s string) (Note, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Note{}, fmt.Errorf("parse note: empty input")
	}
	name := strings.ToUpper(s[:1])
	rest := s[1:]
	if strings.HasPrefix(rest, "#") {
		name += "#"
		rest = rest[1:]
	}
	if !validName(name) {
		return Note{}, fmt.Errorf("parse note %q: unknown pitch class %q", s, name)
	}
	octave, err := strconv.Atoi(rest)
	if err != nil {
		return Note{}, fmt.Errorf("parse note %q: bad octave: %w", s, err)
	}
	return Note{Name: name, Octave: octave}, nil
}

func validName(name string) bool {
	for i := range naturals {
		if naturals[i] == name || (sharps[i] != "" && sharps[i] == name) {
			return true
		}
	}
	return false
}
