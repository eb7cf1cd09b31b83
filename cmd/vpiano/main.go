package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/cbegin/vpiano-go"
	"github.com/cbegin/vpiano-go/internal/cliconf"
	"github.com/cbegin/vpiano-go/internal/keys"
)

const (
	flagLogFile = "log-file"
	frameRate   = 16 * time.Millisecond
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FAFAFA"))
	hintStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	whiteStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#202020")).Background(lipgloss.Color("#FAFAFA"))
	blackStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FAFAFA")).Background(lipgloss.Color("#141414"))
	activeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FAFAFA")).Background(lipgloss.Color("#4B0082")).Bold(true)
	readyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#78DC78"))
	lockedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#E6C85A"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F05A5A"))
)

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(frameRate, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

type model struct {
	piano   *vpiano.Piano
	gesture func()
}

func (m model) Init() tea.Cmd { return tick() }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.piano.Tick()
		return m, tick()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyRunes:
			if len(msg.Runes) != 1 {
				return m, nil
			}
			m.gesture()
			m.piano.HandleKey(msg.Runes[0])
		}
	}
	return m, nil
}

func (m model) View() string {
	var b strings.Builder
	b.WriteString("\n  " + titleStyle.Render("Virtual Piano Studio") + "\n")
	b.WriteString("  " + hintStyle.Render("Keyboard mapping: A-L and W-P rows") + "\n\n")
	for _, line := range renderKeyboard(m.piano) {
		b.WriteString("  " + line + "\n")
	}
	b.WriteString("\n  ")
	switch err := m.piano.AudioError(); {
	case err != nil:
		b.WriteString(errorStyle.Render("Audio unavailable: " + err.Error()))
	case m.piano.AudioReady():
		b.WriteString(readyStyle.Render("Audio ready"))
	default:
		b.WriteString(lockedStyle.Render("Press a key to enable audio"))
	}
	b.WriteString("    " + hintStyle.Render("esc: quit") + "\n")
	return b.String()
}

// renderKeyboard draws three rows: sharps, natural labels, and the characters
// bound to naturals. Every natural is three columns wide; a sharp straddles
// the boundary between its natural and the next one.
func renderKeyboard(p *vpiano.Piano) []string {
	mapper := p.Mapper()
	var sharps, labels, binds strings.Builder

	bound := func(i int) string {
		if r, ok := mapper.CharFor(i); ok {
			return strings.ToUpper(string(r))
		}
		return " "
	}
	styleFor := func(k keys.Key, base lipgloss.Style) lipgloss.Style {
		if p.IsActive(k.ID()) {
			return activeStyle
		}
		return base
	}

	all := p.Keys().Keys()
	prevSharp := false
	for i, k := range all {
		if k.Accidental {
			continue
		}
		if prevSharp {
			sharps.WriteString(" ")
		} else {
			sharps.WriteString("  ")
		}
		prevSharp = i+1 < len(all) && all[i+1].Accidental
		if prevSharp {
			sharps.WriteString(styleFor(all[i+1], blackStyle).Render(bound(i+1) + " "))
		} else {
			sharps.WriteString(" ")
		}

		label := fmt.Sprintf("%s%d", k.Note.Name, k.Note.Octave)
		labels.WriteString(styleFor(k, whiteStyle).Render(label) + " ")
		binds.WriteString(" " + bound(i) + " ")
	}
	return []string{sharps.String(), labels.String(), binds.String()}
}

func run(c *cli.Context) error {
	var w io.Writer = io.Discard
	if path := c.String(flagLogFile); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		w = f
	}
	logger := cliconf.Logger(c, w)

	p, err := vpiano.New(cliconf.PianoOptions(c, logger)...)
	if err != nil {
		return err
	}
	defer func() {
		if err := p.Close(); err != nil {
			logger.WithError(err).Warn("close audio")
		}
	}()

	prog := tea.NewProgram(model{piano: p, gesture: p.GestureHandler()}, tea.WithAltScreen())
	_, err = prog.Run()
	return err
}

func main() {
	app := &cli.App{
		Name:  "vpiano",
		Usage: "play a 49-key piano from the terminal",
		Flags: append(cliconf.PianoFlags(), &cli.StringFlag{
			Name:  flagLogFile,
			Usage: "append logs to this file; the terminal is owned by the UI",
		}),
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		logrus.Fatal(err)
	}
}
