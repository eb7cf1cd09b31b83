package layout

import (
	"image"
	"strconv"

	"github.com/cbegin/vpiano-go/internal/keys"
)

// Metrics are key sizes in pixels. BlackOffset is the x distance from the left
// edge of a natural key to the left edge of the sharp that follows it.
type Metrics struct {
	WhiteWidth  int
	WhiteHeight int
	BlackWidth  int
	BlackHeight int
	BlackOffset int
}

func DefaultMetrics() Metrics {
	return Metrics{
		WhiteWidth:  40,
		WhiteHeight: 192,
		BlackWidth:  28,
		BlackHeight: 128,
		BlackOffset: 28,
	}
}

// KeyRect is a key placed on screen.
type KeyRect struct {
	Index  int // position in the key table
	Key    keys.Key
	Bounds image.Rectangle
}

type Layout struct {
	whites []KeyRect
	blacks []KeyRect
	bounds image.Rectangle
}

// New places every key of table with its top-left corner at origin. Naturals
// sit side by side; each sharp overlaps the natural before it.
func New(table *keys.Table, m Metrics, origin image.Point) *Layout {
	l := &Layout{}
	whiteIdx := -1
	for i, k := range table.Keys() {
		if !k.Accidental {
			whiteIdx++
			x := origin.X + whiteIdx*m.WhiteWidth
			l.whites = append(l.whites, KeyRect{
				Index:  i,
				Key:    k,
				Bounds: image.Rect(x, origin.Y, x+m.WhiteWidth, origin.Y+m.WhiteHeight),
			})
			continue
		}
		x := origin.X + max(whiteIdx, 0)*m.WhiteWidth + m.BlackOffset
		l.blacks = append(l.blacks, KeyRect{
			Index:  i,
			Key:    k,
			Bounds: image.Rect(x, origin.Y, x+m.BlackWidth, origin.Y+m.BlackHeight),
		})
	}
	l.bounds = image.Rect(origin.X, origin.Y, origin.X+(whiteIdx+1)*m.WhiteWidth, origin.Y+m.WhiteHeight)
	return l
}

func (l *Layout) Whites() []KeyRect { return l.whites }

func (l *Layout) Blacks() []KeyRect { return l.blacks }

func (l *Layout) Bounds() image.Rectangle { return l.bounds }

// HitTest returns the key under pt. Sharps are drawn on top of naturals, so
// they are tested first.
func (l *Layout) HitTest(pt image.Point) (KeyRect, bool) {
	for _, kr := range l.blacks {
		if pt.In(kr.Bounds) {
			return kr, true
		}
	}
	for _, kr := range l.whites {
		if pt.In(kr.Bounds) {
			return kr, true
		}
	}
	return KeyRect{}, false
}

// Label returns the text printed on a key: the pitch class for sharps, and
// pitch class plus octave for naturals.
func Label(k keys.Key) string {
	if k.Accidental {
		return k.Note.Name
	}
	return k.Note.Name + "\n" + strconv.Itoa(k.Note.Octave)
}
