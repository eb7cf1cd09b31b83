package vpiano

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	intactive "github.com/cbegin/vpiano-go/internal/active"
	intaudio "github.com/cbegin/vpiano-go/internal/audio"
	intinput "github.com/cbegin/vpiano-go/internal/input"
	intkeys "github.com/cbegin/vpiano-go/internal/keys"
	intsynth "github.com/cbegin/vpiano-go/internal/synth"
)

const DefaultSampleRate = 48000

var (
	ErrInvalidSampleRate   = errors.New("sample rate must be positive")
	ErrInvalidReleaseDelay = errors.New("release delay must be positive")
	ErrInvalidBaseOffset   = errors.New("base offset must not be negative")
)

// Resolution is an input event resolved to a key of the piano.
type Resolution = intinput.Resolution

// Output is a live audio sink pulling samples from the piano's synthesizer.
type Output interface {
	Close() error
}

// OutputOpener creates the audio output on the first user gesture.
type OutputOpener func(sampleRate int, src intaudio.SampleSource) (Output, error)

func openAudioOutput(sampleRate int, src intaudio.SampleSource) (Output, error) {
	return intaudio.Open(sampleRate, src)
}

type Option func(*config)

type config struct {
	sampleRate      int
	keyConfig       intkeys.Config
	binding         intinput.Binding
	baseOffset      int
	releaseDelay    time.Duration
	synthParams     intsynth.Params
	volume          float64
	pointerDebounce bool
	logger          logrus.FieldLogger
	now             func() time.Time
	openOutput      OutputOpener
}

func defaultConfig() config {
	return config{
		sampleRate:   DefaultSampleRate,
		keyConfig:    intkeys.DefaultConfig(),
		binding:      intinput.DefaultBinding(),
		baseOffset:   intinput.DefaultBaseOffset,
		releaseDelay: intactive.DefaultReleaseDelay,
		synthParams:  intsynth.DefaultParams(),
		volume:       1,
		logger:       logrus.StandardLogger(),
		now:          time.Now,
		openOutput:   openAudioOutput,
	}
}

func WithSampleRate(sampleRate int) Option {
	return func(cfg *config) { cfg.sampleRate = sampleRate }
}

func WithKeyConfig(kc intkeys.Config) Option {
	return func(cfg *config) { cfg.keyConfig = kc }
}

func WithBinding(b intinput.Binding) Option {
	return func(cfg *config) { cfg.binding = b }
}

// WithBaseOffset sets the key index the first bound character plays.
func WithBaseOffset(offset int) Option {
	return func(cfg *config) { cfg.baseOffset = offset }
}

// WithReleaseDelay sets how long a pressed key stays highlighted.
func WithReleaseDelay(d time.Duration) Option {
	return func(cfg *config) { cfg.releaseDelay = d }
}

func WithSynthParams(p intsynth.Params) Option {
	return func(cfg *config) { cfg.synthParams = p }
}

func WithVolume(v float64) Option {
	return func(cfg *config) { cfg.volume = v }
}

// WithPointerDebounce makes pointer presses on an already highlighted key
// ignored, like keyboard presses. It is off by default: repeated clicks
// always retrigger the tone.
func WithPointerDebounce(enabled bool) Option {
	return func(cfg *config) { cfg.pointerDebounce = enabled }
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(cfg *config) {
		if l != nil {
			cfg.logger = l
		}
	}
}

// WithClock replaces time.Now for release scheduling.
func WithClock(now func() time.Time) Option {
	return func(cfg *config) {
		if now != nil {
			cfg.now = now
		}
	}
}

// WithOutputOpener replaces the ebiten audio backend.
func WithOutputOpener(open OutputOpener) Option {
	return func(cfg *config) {
		if open != nil {
			cfg.openOutput = open
		}
	}
}

// Piano owns the key table, input mapping, highlight state and synthesizer.
// Audio output does not exist until UnlockAudio runs; tones requested before
// then are dropped.
type Piano struct {
	log             logrus.FieldLogger
	sampleRate      int
	table           *intkeys.Table
	mapper          *intinput.Mapper
	active          *intactive.Set
	synth           *intsynth.Synth
	pointerDebounce bool
	openOutput      OutputOpener

	unlockOnce sync.Once
	unlockErr  error
	outputMu   sync.Mutex
	output     Output
	ready      atomic.Bool
}

func New(opts ...Option) (*Piano, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.sampleRate <= 0 {
		return nil, ErrInvalidSampleRate
	}
	if cfg.releaseDelay <= 0 {
		return nil, ErrInvalidReleaseDelay
	}
	if cfg.baseOffset < 0 {
		return nil, ErrInvalidBaseOffset
	}
	table := intkeys.Generate(cfg.keyConfig)
	s := intsynth.New(cfg.sampleRate, cfg.synthParams)
	if cfg.volume < 0 {
		cfg.volume = 0
	}
	s.SetMasterGain(cfg.volume)
	p := &Piano{
		log:             cfg.logger,
		sampleRate:      cfg.sampleRate,
		table:           table,
		mapper:          intinput.NewMapper(table, cfg.binding, cfg.baseOffset),
		active:          intactive.New(cfg.releaseDelay, cfg.now),
		synth:           s,
		pointerDebounce: cfg.pointerDebounce,
		openOutput:      cfg.openOutput,
	}
	p.log.WithFields(logrus.Fields{
		"function":    "Piano.New",
		"keys":        table.Len(),
		"sample_rate": cfg.sampleRate,
	}).Debug("piano ready")
	return p, nil
}

// UnlockAudio creates the audio output. Hosts call it from their first user
// gesture. Only the first call does anything; later calls return its error.
func (p *Piano) UnlockAudio() error {
	p.unlockOnce.Do(func() {
		logger := p.log.WithField("function", "Piano.UnlockAudio")
		out, err := p.openOutput(p.sampleRate, p.synth)
		if err != nil {
			p.outputMu.Lock()
			p.unlockErr = fmt.Errorf("open audio output: %w", err)
			p.outputMu.Unlock()
			logger.WithError(err).Error("audio output unavailable")
			return
		}
		p.outputMu.Lock()
		p.output = out
		p.outputMu.Unlock()
		p.ready.Store(true)
		logger.Info("audio unlocked")
	})
	return p.unlockErr
}

// GestureHandler returns a listener that unlocks audio on its first call and
// does nothing afterwards.
func (p *Piano) GestureHandler() func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			_ = p.UnlockAudio()
		})
	}
}

func (p *Piano) AudioReady() bool { return p.ready.Load() }

// AudioError returns the error that kept audio from unlocking, or nil. It does
// not attempt an unlock.
func (p *Piano) AudioError() error {
	p.outputMu.Lock()
	defer p.outputMu.Unlock()
	return p.unlockErr
}

// HandleKey plays the key bound to a typed character. Unmapped characters,
// keys outside the table and repeats of a highlighted key are ignored.
func (p *Piano) HandleKey(r rune) (Resolution, bool) {
	logger := p.log.WithFields(logrus.Fields{"function": "Piano.HandleKey", "char": string(r)})
	res, ok := p.mapper.Key(r)
	if !ok {
		logger.Debug("unmapped key ignored")
		return Resolution{}, false
	}
	if p.active.Active(res.ID) {
		logger.WithField("note", res.ID).Debug("repeat ignored")
		return res, false
	}
	p.trigger(res)
	return res, true
}

// HandlePointer plays the key a pointer landed on. Unknown ids are ignored.
func (p *Piano) HandlePointer(id string) (Resolution, bool) {
	logger := p.log.WithFields(logrus.Fields{"function": "Piano.HandlePointer", "note": id})
	res, ok := p.mapper.Pointer(id)
	if !ok {
		logger.Debug("unknown key ignored")
		return Resolution{}, false
	}
	if p.pointerDebounce && p.active.Active(res.ID) {
		logger.Debug("repeat ignored")
		return res, false
	}
	p.trigger(res)
	return res, true
}

func (p *Piano) trigger(res Resolution) {
	p.active.Press(res.ID)
	p.Synthesize(res.Frequency)
}

// Synthesize starts a tone at freq Hz. It reports false, without error, when
// audio has not been unlocked yet.
func (p *Piano) Synthesize(freq float64) bool {
	if !p.ready.Load() {
		p.log.WithFields(logrus.Fields{
			"function":  "Piano.Synthesize",
			"frequency": freq,
		}).Debug("audio locked, tone dropped")
		return false
	}
	return p.synth.NoteOn(freq) >= 0
}

// IsActive reports whether the key is highlighted.
func (p *Piano) IsActive(id string) bool { return p.active.Active(id) }

// ActiveKeys returns the highlighted key ids, sorted.
func (p *Piano) ActiveKeys() []string { return p.active.Snapshot() }

// Tick fires due releases and returns the ids that stopped being highlighted.
// Hosts call it once per frame.
func (p *Piano) Tick() []string { return p.active.Advance() }

func (p *Piano) Keys() *intkeys.Table { return p.table }

func (p *Piano) Mapper() *intinput.Mapper { return p.mapper }

func (p *Piano) SampleRate() int { return p.sampleRate }

// Voices returns the number of tones still sounding.
func (p *Piano) Voices() int { return p.synth.ActiveVoiceCount() }

// SetVolume sets the output gain. 1.0 is default; negative values clamp to 0.
func (p *Piano) SetVolume(v float64) {
	p.synth.SetMasterGain(v)
}

func (p *Piano) Volume() float64 { return p.synth.MasterGain() }

// Close releases the audio output. The piano stays usable, but silent.
func (p *Piano) Close() error {
	p.outputMu.Lock()
	out := p.output
	p.output = nil
	p.outputMu.Unlock()
	p.ready.Store(false)
	if out == nil {
		return nil
	}
	return out.Close()
}
