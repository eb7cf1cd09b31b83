package audio

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"
	"time"

	ebitaudio "github.com/hajimehoshi/ebiten/v2/audio"
)

// SampleSource produces interleaved stereo float32 frames on demand.
type SampleSource interface {
	Process(dst []float32)
}

// StreamReader adapts a SampleSource to the little-endian float32 byte stream
// ebiten's player expects. It never reports EOF; silence is just zeros.
type StreamReader struct {
	mu     sync.Mutex
	source SampleSource
	buf    []float32
}

func NewStreamReader(source SampleSource) *StreamReader {
	return &StreamReader{source: source}
}

func (r *StreamReader) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	frames := len(p) / 8
	if frames == 0 {
		return 0, nil
	}
	n := frames * 2
	if cap(r.buf) < n {
		r.buf = make([]float32, n)
	}
	r.buf = r.buf[:n]
	for i := range r.buf {
		r.buf[i] = 0
	}
	r.source.Process(r.buf)
	for i, s := range r.buf {
		binary.LittleEndian.PutUint32(p[i*4:], math.Float32bits(s))
	}
	return frames * 8, nil
}

func (r *StreamReader) Close() error { return nil }

// bufferSize bounds the delay between a key press and its sound.
const bufferSize = 40 * time.Millisecond

var (
	contextOnce       sync.Once
	audioContext      *ebitaudio.Context
	contextSampleRate int
)

// sharedContext returns the process-wide ebiten audio context. ebiten allows
// only one, so the first caller fixes the sample rate.
func sharedContext(sampleRate int) (*ebitaudio.Context, error) {
	contextOnce.Do(func() {
		contextSampleRate = sampleRate
		audioContext = ebitaudio.NewContext(sampleRate)
	})
	if contextSampleRate != sampleRate {
		return nil, fmt.Errorf("audio context already initialized at %d Hz (requested %d Hz)", contextSampleRate, sampleRate)
	}
	return audioContext, nil
}

// Engine is the live audio output: one long-running player that pulls from a
// SampleSource for the rest of the session.
type Engine struct {
	sampleRate int
	player     *ebitaudio.Player
	reader     *StreamReader
}

// Open creates the output and starts streaming from source immediately.
func Open(sampleRate int, source SampleSource) (*Engine, error) {
	ctx, err := sharedContext(sampleRate)
	if err != nil {
		return nil, err
	}
	reader := NewStreamReader(source)
	pl, err := ctx.NewPlayerF32(reader)
	if err != nil {
		return nil, fmt.Errorf("audio player: %w", err)
	}
	pl.SetBufferSize(bufferSize)
	pl.Play()
	return &Engine{sampleRate: sampleRate, player: pl, reader: reader}, nil
}

func (e *Engine) SampleRate() int { return e.sampleRate }

func (e *Engine) IsPlaying() bool { return e.player.IsPlaying() }

// Close stops the player. The shared context stays alive, as ebiten requires.
func (e *Engine) Close() error {
	e.player.Pause()
	if err := e.player.Close(); err != nil {
		return err
	}
	return e.reader.Close()
}
