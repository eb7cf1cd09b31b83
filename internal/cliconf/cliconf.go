// Package cliconf holds the command-line flags shared by the vpiano commands.
package cliconf

import (
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/cbegin/vpiano-go"
	"github.com/cbegin/vpiano-go/internal/active"
	"github.com/cbegin/vpiano-go/internal/input"
)

const (
	FlagSampleRate      = "sample-rate"
	FlagVolume          = "volume"
	FlagRelease         = "release"
	FlagOffset          = "offset"
	FlagPointerDebounce = "pointer-debounce"
	FlagDebug           = "debug"
)

// PianoFlags are the flags every interactive command accepts.
func PianoFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:  FlagSampleRate,
			Value: vpiano.DefaultSampleRate,
			Usage: "output sample rate",
		},
		&cli.Float64Flag{
			Name:  FlagVolume,
			Value: 1.0,
			Usage: "master volume scalar",
		},
		&cli.DurationFlag{
			Name:  FlagRelease,
			Value: active.DefaultReleaseDelay,
			Usage: "how long a pressed key stays highlighted",
		},
		&cli.IntFlag{
			Name:  FlagOffset,
			Value: input.DefaultBaseOffset,
			Usage: "key index played by the first bound character (36 = C5)",
		},
		&cli.BoolFlag{
			Name:  FlagPointerDebounce,
			Usage: "ignore clicks on a key that is still highlighted",
		},
		DebugFlag(),
	}
}

func DebugFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:    FlagDebug,
		Aliases: []string{"d"},
		Usage:   "log debug output",
	}
}

// Logger builds the process logger. Output goes to w so full-screen commands
// can move it off the terminal.
func Logger(c *cli.Context, w io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: time.StampMilli})
	if c.Bool(FlagDebug) {
		l.SetLevel(logrus.DebugLevel)
	} else {
		l.SetLevel(logrus.InfoLevel)
	}
	return l
}

// PianoOptions translates parsed flags into piano options.
func PianoOptions(c *cli.Context, l logrus.FieldLogger) []vpiano.Option {
	return []vpiano.Option{
		vpiano.WithSampleRate(c.Int(FlagSampleRate)),
		vpiano.WithVolume(c.Float64(FlagVolume)),
		vpiano.WithReleaseDelay(c.Duration(FlagRelease)),
		vpiano.WithBaseOffset(c.Int(FlagOffset)),
		vpiano.WithPointerDebounce(c.Bool(FlagPointerDebounce)),
		vpiano.WithLogger(l),
	}
}
