package synth

import "math"

// limiter is a peak follower that pulls the mix down once it passes
// threshold. At default volume only overlapping voices get there. Both
// channels carry the same signal, so one envelope serves the frame.
type limiter struct {
	threshold float64
	ratio     float64
	attack    float64 // coefficient
	release   float64 // coefficient
	env       float64
}

const (
	limitThreshold = 0.9
	limitRatio     = 8
	limitAttackMs  = 1
	limitReleaseMs = 100
)

func newLimiter(sampleRate float64) *limiter {
	return &limiter{
		threshold: limitThreshold,
		ratio:     limitRatio,
		attack:    coefficient(limitAttackMs, sampleRate),
		release:   coefficient(limitReleaseMs, sampleRate),
	}
}

func coefficient(ms, sampleRate float64) float64 {
	return 1 - math.Exp(-1/(ms*sampleRate/1000))
}

func (l *limiter) process(x float64) float64 {
	a := math.Abs(x)
	if a > l.env {
		l.env += l.attack * (a - l.env)
	} else {
		l.env += l.release * (a - l.env)
	}
	if l.env <= l.threshold {
		return x
	}
	return x * math.Pow(l.env/l.threshold, 1/l.ratio-1)
}

func (l *limiter) reset() { l.env = 0 }
