package synth

import (
	"math"
	"sync"
	"sync/atomic"
	"time"
)

// Params shapes every tone: a linear attack from silence to PeakGain, then an
// exponential fall toward FloorGain, cut off at Duration.
type Params struct {
	PeakGain   float64
	FloorGain  float64
	Attack     time.Duration
	Duration   time.Duration
	MasterGain float64
}

func DefaultParams() Params {
	return Params{
		PeakGain:   0.3,
		FloorGain:  0.001,
		Attack:     10 * time.Millisecond,
		Duration:   time.Second,
		MasterGain: 1,
	}
}

func (p Params) normalized() Params {
	def := DefaultParams()
	if p.PeakGain <= 0 {
		p.PeakGain = def.PeakGain
	}
	if p.FloorGain <= 0 || p.FloorGain >= p.PeakGain {
		p.FloorGain = p.PeakGain * def.FloorGain / def.PeakGain
	}
	if p.Duration <= 0 {
		p.Duration = def.Duration
	}
	if p.Attack < 0 || p.Attack >= p.Duration {
		p.Attack = p.Duration / 100
	}
	if p.MasterGain < 0 {
		p.MasterGain = 0
	}
	return p
}

// Level returns the envelope gain t seconds after note-on. It is zero at and
// after Duration.
func (p Params) Level(t float64) float64 {
	attack := p.Attack.Seconds()
	total := p.Duration.Seconds()
	switch {
	case t < 0 || t >= total:
		return 0
	case t < attack:
		return p.PeakGain * t / attack
	default:
		decay := total - attack
		return p.PeakGain * math.Pow(p.FloorGain/p.PeakGain, (t-attack)/decay)
	}
}

type voice struct {
	id    int
	freq  float64
	phase float64
	frame int
}

// Synth mixes independent one-shot triangle voices. NoteOn may be called from
// any goroutine; Process runs on the audio thread.
type Synth struct {
	mu         sync.Mutex
	sampleRate float64
	params     Params
	voices     []voice
	nextID     int
	stopFrame  int
	limit      *limiter
	masterGain uint64
}

func New(sampleRate int, params Params) *Synth {
	params = params.normalized()
	return &Synth{
		sampleRate: float64(sampleRate),
		params:     params,
		stopFrame:  int(math.Ceil(params.Duration.Seconds() * float64(sampleRate))),
		limit:      newLimiter(float64(sampleRate)),
		masterGain: math.Float64bits(params.MasterGain),
	}
}

func (s *Synth) Params() Params { return s.params }

// NoteOn starts a new voice at freq Hz and returns its id. Voices are never
// reused; each one stops itself after Params.Duration. Non-positive
// frequencies are ignored and return -1.
func (s *Synth) NoteOn(freq float64) int {
	if freq <= 0 || math.IsNaN(freq) || math.IsInf(freq, 0) {
		return -1
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.voices = append(s.voices, voice{id: id, freq: freq})
	return id
}

// Process fills dst with interleaved stereo frames. Mixes louder than a single
// voice can reach are limited before clamping.
func (s *Synth) Process(dst []float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	gain := s.masterGainValue()
	for i := 0; i+1 < len(dst); i += 2 {
		out := s.limit.process(s.renderFrame() * gain)
		sample := float32(clamp(out, -1, 1))
		dst[i] = sample
		dst[i+1] = sample
	}
	s.reap()
	if len(s.voices) == 0 {
		s.limit.reset()
	}
}

func (s *Synth) renderFrame() float64 {
	var sum float64
	for i := range s.voices {
		v := &s.voices[i]
		if v.frame >= s.stopFrame {
			continue
		}
		env := s.params.Level(float64(v.frame) / s.sampleRate)
		sum += triangle(v.phase) * env
		v.phase += v.freq / s.sampleRate
		if v.phase >= 1 {
			v.phase -= math.Floor(v.phase)
		}
		v.frame++
	}
	return sum
}

// reap drops voices that reached their stop frame.
func (s *Synth) reap() {
	kept := s.voices[:0]
	for _, v := range s.voices {
		if v.frame < s.stopFrame {
			kept = append(kept, v)
		}
	}
	for i := len(kept); i < len(s.voices); i++ {
		s.voices[i] = voice{}
	}
	s.voices = kept
}

// triangle starts at zero and rises, matching a browser oscillator's phase.
func triangle(phase float64) float64 {
	switch {
	case phase < 0.25:
		return 4 * phase
	case phase < 0.75:
		return 2 - 4*phase
	default:
		return 4*phase - 4
	}
}

func (s *Synth) ActiveVoiceCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for i := range s.voices {
		if s.voices[i].frame < s.stopFrame {
			n++
		}
	}
	return n
}

func (s *Synth) SetMasterGain(gain float64) {
	if gain < 0 {
		gain = 0
	}
	atomic.StoreUint64(&s.masterGain, math.Float64bits(gain))
}

func (s *Synth) MasterGain() float64 { return s.masterGainValue() }

func (s *Synth) masterGainValue() float64 {
	return math.Float64frombits(atomic.LoadUint64(&s.masterGain))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
