package main

import (
	"image"
	"image/color"
	"os"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/cbegin/vpiano-go"
	"github.com/cbegin/vpiano-go/internal/cliconf"
	"github.com/cbegin/vpiano-go/internal/layout"
)

const (
	windowW = 1240
	windowH = 480

	textScale = 2
	charW     = 6 * textScale
	lineH     = 16 * textScale

	title = "Virtual Piano Studio"
	hint  = "Keyboard mapping: A-L and W-P rows"
)

var (
	bgColor        = color.RGBA{24, 24, 32, 255}
	whiteKeyColor  = color.RGBA{250, 250, 250, 255}
	blackKeyColor  = color.RGBA{20, 20, 20, 255}
	borderColor    = color.RGBA{96, 96, 96, 255}
	highlightColor = color.RGBA{75, 0, 130, 255}
	whiteTextColor = color.RGBA{40, 40, 40, 255}
	readyColor     = color.RGBA{120, 220, 120, 255}
	lockedColor    = color.RGBA{230, 200, 90, 255}
	errorColor     = color.RGBA{240, 90, 90, 255}
)

type game struct {
	piano   *vpiano.Piano
	gesture func()
	keys    *layout.Layout

	chars     []rune
	textCache map[string]*ebiten.Image
}

func newGame(p *vpiano.Piano) *game {
	m := layout.DefaultMetrics()
	// Room for three label lines below the sharps.
	m.WhiteHeight = 240
	width := 0
	for _, k := range p.Keys().Keys() {
		if !k.Accidental {
			width += m.WhiteWidth
		}
	}
	origin := image.Pt((windowW-width)/2, 140)
	return &game{
		piano:     p,
		gesture:   p.GestureHandler(),
		keys:      layout.New(p.Keys(), m, origin),
		textCache: make(map[string]*ebiten.Image, 128),
	}
}

func (g *game) Update() error {
	g.piano.Tick()

	// Audio is unlocked before the gesture's own key is handled, so the
	// first press already sounds.
	if len(inpututil.AppendJustPressedKeys(nil)) > 0 {
		g.gesture()
	}
	g.chars = ebiten.AppendInputChars(g.chars[:0])
	for _, r := range g.chars {
		g.piano.HandleKey(r)
	}

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		g.gesture()
		kr, ok := g.keys.HitTest(image.Pt(ebiten.CursorPosition()))
		if ok {
			g.piano.HandlePointer(kr.Key.ID())
		}
	}
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	screen.Fill(bgColor)

	g.drawText(screen, title, (windowW-len(title)*charW)/2, 24, color.White)
	g.drawText(screen, hint, (windowW-len(hint)*charW)/2, 64, color.White)

	for _, kr := range g.keys.Whites() {
		fill := color.Color(whiteKeyColor)
		text := color.Color(whiteTextColor)
		if g.piano.IsActive(kr.Key.ID()) {
			fill, text = highlightColor, color.White
		}
		drawKey(screen, kr.Bounds, fill)
		g.drawLabel(screen, kr, text)
	}
	for _, kr := range g.keys.Blacks() {
		fill := color.Color(blackKeyColor)
		if g.piano.IsActive(kr.Key.ID()) {
			fill = highlightColor
		}
		drawKey(screen, kr.Bounds, fill)
		g.drawLabel(screen, kr, color.White)
	}

	status, c := "Click or press a key to enable audio", color.Color(lockedColor)
	switch err := g.piano.AudioError(); {
	case err != nil:
		status, c = "Audio unavailable: "+err.Error(), errorColor
	case g.piano.AudioReady():
		status, c = "Audio ready", readyColor
	}
	g.drawText(screen, status, (windowW-len(status)*charW)/2, g.keys.Bounds().Max.Y+24, c)
}

func (g *game) Layout(int, int) (int, int) { return windowW, windowH }

// drawLabel prints the note name near the bottom of a key and, when the key
// is bound, the character that plays it just above.
func (g *game) drawLabel(screen *ebiten.Image, kr layout.KeyRect, c color.Color) {
	lines := strings.Split(layout.Label(kr.Key), "\n")
	if ch, ok := g.piano.Mapper().CharFor(kr.Index); ok {
		lines = append([]string{strings.ToUpper(string(ch))}, lines...)
	}
	y := kr.Bounds.Max.Y - len(lines)*lineH - 6
	for _, line := range lines {
		x := kr.Bounds.Min.X + (kr.Bounds.Dx()-len(line)*charW)/2
		g.drawText(screen, line, x, y, c)
		y += lineH
	}
}

func drawKey(screen *ebiten.Image, rect image.Rectangle, fill color.Color) {
	x := float64(rect.Min.X)
	y := float64(rect.Min.Y)
	w := float64(rect.Dx())
	h := float64(rect.Dy())
	ebitenutil.DrawRect(screen, x, y, w, h, borderColor)
	ebitenutil.DrawRect(screen, x+1, y, w-2, h-1, fill)
}

func (g *game) drawText(screen *ebiten.Image, msg string, x, y int, c color.Color) {
	if msg == "" {
		return
	}
	img := g.textCache[msg]
	if img == nil {
		img = ebiten.NewImage(max(1, len(msg)*charW/textScale+1), 16)
		ebitenutil.DebugPrintAt(img, msg, 0, 0)
		g.textCache[msg] = img
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(textScale, textScale)
	op.GeoM.Translate(float64(x), float64(y))
	op.ColorScale.ScaleWithColor(c)
	screen.DrawImage(img, op)
}

func run(c *cli.Context) error {
	logger := cliconf.Logger(c, os.Stderr)
	p, err := vpiano.New(cliconf.PianoOptions(c, logger)...)
	if err != nil {
		return err
	}
	defer func() {
		if err := p.Close(); err != nil {
			logger.WithError(err).Warn("close audio")
		}
	}()

	ebiten.SetWindowSize(windowW, windowH)
	ebiten.SetWindowTitle(title)
	return ebiten.RunGame(newGame(p))
}

func main() {
	app := &cli.App{
		Name:   "vpiano_ui",
		Usage:  "play a 49-key piano with the mouse or computer keyboard",
		Flags:  cliconf.PianoFlags(),
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		logrus.Fatal(err)
	}
}
