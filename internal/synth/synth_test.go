package synth

import (
	"math"
	"testing"
	"time"
)

func TestEnvelopeShape(t *testing.T) {
	p := DefaultParams()
	cases := []struct {
		name string
		t    float64
		want float64
		tol  float64
	}{
		{name: "start", t: 0, want: 0, tol: 1e-12},
		{name: "mid attack", t: 0.005, want: 0.15, tol: 1e-9},
		{name: "peak", t: 0.01, want: 0.3, tol: 1e-9},
		{name: "mid decay", t: 0.505, want: 0.3 * math.Sqrt(0.001/0.3), tol: 1e-9},
		{name: "near end", t: 0.999999, want: 0.001, tol: 1e-5},
		{name: "stopped", t: 1, want: 0, tol: 0},
		{name: "before start", t: -0.1, want: 0, tol: 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := p.Level(tc.t); math.Abs(got-tc.want) > tc.tol {
				t.Fatalf("Level(%v) = %v, want %v", tc.t, got, tc.want)
			}
		})
	}
}

func TestEnvelopeDecaysMonotonically(t *testing.T) {
	p := DefaultParams()
	prev := p.Level(0.01)
	for ms := 11; ms < 1000; ms++ {
		cur := p.Level(float64(ms) / 1000)
		if cur >= prev {
			t.Fatalf("level at %dms = %v, not below %v", ms, cur, prev)
		}
		prev = cur
	}
}

func TestNormalizedParams(t *testing.T) {
	p := Params{Attack: 2 * time.Second, Duration: 500 * time.Millisecond, MasterGain: -1}.normalized()
	if p.PeakGain != 0.3 {
		t.Fatalf("peak = %v, want 0.3", p.PeakGain)
	}
	if p.Attack != 5*time.Millisecond {
		t.Fatalf("attack = %v, want 5ms", p.Attack)
	}
	if p.MasterGain != 0 {
		t.Fatalf("master = %v, want 0", p.MasterGain)
	}
	if p.FloorGain <= 0 || p.FloorGain >= p.PeakGain {
		t.Fatalf("floor = %v out of range", p.FloorGain)
	}
}

func TestVoiceStopsAfterDuration(t *testing.T) {
	const sr = 48000
	s := New(sr, DefaultParams())
	if id := s.NoteOn(440); id != 0 {
		t.Fatalf("first voice id = %d, want 0", id)
	}
	if s.ActiveVoiceCount() != 1 {
		t.Fatalf("voices = %d, want 1", s.ActiveVoiceCount())
	}

	buf := make([]float32, sr/2*2)
	s.Process(buf)
	if s.ActiveVoiceCount() != 1 {
		t.Fatal("voice should still sound at 0.5s")
	}
	var peak float32
	for _, v := range buf {
		if v > peak {
			peak = v
		}
	}
	if peak < 0.25 || peak > 0.3001 {
		t.Fatalf("peak = %v, want close to 0.3", peak)
	}

	s.Process(buf)
	if s.ActiveVoiceCount() != 0 {
		t.Fatalf("voices = %d after 1s, want 0", s.ActiveVoiceCount())
	}
	s.Process(buf)
	for i, v := range buf {
		if v != 0 {
			t.Fatalf("sample %d = %v after stop, want silence", i, v)
		}
	}
}

func TestOverlappingVoicesAreIndependent(t *testing.T) {
	const sr = 48000
	s := New(sr, DefaultParams())
	a := s.NoteOn(261.63)

	buf := make([]float32, sr/20*2) // 50ms
	s.Process(buf)
	b := s.NoteOn(329.63)
	if a == b {
		t.Fatal("voices must get distinct ids")
	}
	if s.ActiveVoiceCount() != 2 {
		t.Fatalf("voices = %d, want 2", s.ActiveVoiceCount())
	}

	// The first voice ends 50ms before the second.
	rest := make([]float32, (sr-sr/20)*2)
	s.Process(rest)
	if s.ActiveVoiceCount() != 1 {
		t.Fatalf("voices = %d, want 1 after first voice ends", s.ActiveVoiceCount())
	}
	s.Process(buf)
	if s.ActiveVoiceCount() != 0 {
		t.Fatalf("voices = %d, want 0", s.ActiveVoiceCount())
	}
}

func TestSameFrequencyRetriggerAddsVoice(t *testing.T) {
	s := New(48000, DefaultParams())
	s.NoteOn(440)
	s.NoteOn(440)
	if s.ActiveVoiceCount() != 2 {
		t.Fatalf("voices = %d, want 2", s.ActiveVoiceCount())
	}
}

func TestNoteOnRejectsBadFrequency(t *testing.T) {
	s := New(48000, DefaultParams())
	for _, f := range []float64{0, -440, math.NaN(), math.Inf(1)} {
		if id := s.NoteOn(f); id != -1 {
			t.Fatalf("NoteOn(%v) = %d, want -1", f, id)
		}
	}
	if s.ActiveVoiceCount() != 0 {
		t.Fatal("no voice should be created")
	}
}

func TestStereoChannelsMatch(t *testing.T) {
	s := New(44100, DefaultParams())
	s.NoteOn(880)
	buf := make([]float32, 1024*2)
	s.Process(buf)
	for i := 0; i+1 < len(buf); i += 2 {
		if buf[i] != buf[i+1] {
			t.Fatalf("frame %d: l=%v r=%v", i/2, buf[i], buf[i+1])
		}
	}
}

func TestMasterGain(t *testing.T) {
	s := New(48000, DefaultParams())
	if s.MasterGain() != 1 {
		t.Fatalf("default master = %v, want 1", s.MasterGain())
	}
	s.SetMasterGain(-3)
	if s.MasterGain() != 0 {
		t.Fatalf("master = %v, want clamp to 0", s.MasterGain())
	}
	s.NoteOn(440)
	buf := make([]float32, 4800*2)
	s.Process(buf)
	for _, v := range buf {
		if v != 0 {
			t.Fatal("muted synth produced sound")
		}
	}
}

func TestTriangleShape(t *testing.T) {
	cases := []struct{ phase, want float64 }{
		{0, 0}, {0.25, 1}, {0.5, 0}, {0.75, -1}, {0.875, -0.5},
	}
	for _, tc := range cases {
		if got := triangle(tc.phase); math.Abs(got-tc.want) > 1e-12 {
			t.Errorf("triangle(%v) = %v, want %v", tc.phase, got, tc.want)
		}
	}
}

func BenchmarkSynthChord(b *testing.B) {
	buf := make([]float32, 2048*2)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s := New(48000, DefaultParams())
		s.NoteOn(261.63)
		s.NoteOn(329.63)
		s.NoteOn(392.00)
		s.Process(buf)
	}
}

func TestLimiter(t *testing.T) {
	l := newLimiter(48000)
	if got := l.process(0.3); got != 0.3 {
		t.Fatalf("quiet sample = %v, want unchanged", got)
	}
	var out float64
	for i := 0; i < 4800; i++ {
		out = l.process(2)
	}
	if out <= limitThreshold || out >= 1 {
		t.Fatalf("settled output = %v, want in (%v, 1)", out, limitThreshold)
	}
	l.reset()
	if got := l.process(0.5); got != 0.5 {
		t.Fatalf("after reset = %v, want 0.5", got)
	}
}
