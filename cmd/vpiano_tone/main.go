package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/cbegin/vpiano-go"
	"github.com/cbegin/vpiano-go/internal/cliconf"
	"github.com/cbegin/vpiano-go/internal/keys"
)

const (
	flagNote    = "note"
	flagOut     = "out"
	flagSeconds = "seconds"
)

func run(c *cli.Context) error {
	logger := cliconf.Logger(c, os.Stderr)

	note, err := keys.ParseNote(c.String(flagNote))
	if err != nil {
		return err
	}
	key, ok := keys.Generate(keys.DefaultConfig()).Lookup(note.ID())
	if !ok {
		return fmt.Errorf("note %s is not on the keyboard", note.ID())
	}
	sampleRate := c.Int(cliconf.FlagSampleRate)
	if sampleRate <= 0 {
		return vpiano.ErrInvalidSampleRate
	}

	samples := vpiano.RenderTone(key.Frequency, sampleRate, c.Float64(flagSeconds))
	wav := vpiano.EncodeWAVFloat32LE(samples, sampleRate, 2)
	out := c.String(flagOut)
	if err := os.WriteFile(out, wav, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	logger.WithFields(logrus.Fields{
		"note":      key.ID(),
		"frequency": key.Frequency,
		"bytes":     len(wav),
		"out":       out,
	}).Info("tone rendered")
	return nil
}

func main() {
	app := &cli.App{
		Name:  "vpiano_tone",
		Usage: "render one key press to a float WAV file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: flagNote, Value: "A4", Usage: "key to render, e.g. C4 or F#3"},
			&cli.StringFlag{Name: flagOut, Value: "tone.wav", Usage: "output path"},
			&cli.Float64Flag{Name: flagSeconds, Value: 1.2, Usage: "length of the rendering"},
			&cli.IntFlag{Name: cliconf.FlagSampleRate, Value: vpiano.DefaultSampleRate, Usage: "output sample rate"},
			cliconf.DebugFlag(),
		},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		logrus.Fatal(err)
	}
}
