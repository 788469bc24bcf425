package audio

import "math"

const (
	envFloor  = 0.0001
	envPeak   = 0.6
	envAttack = 0.002 // seconds to reach peak
	envDecay  = 0.060 // seconds until back at the floor
	clickLen  = 0.080 // voice length in seconds
	softGain  = 0.5
)

// ClickSamples is the length of one rendered click voice.
const ClickSamples = int(clickLen * SampleRate)

// Envelope returns the click amplitude t seconds after its start: an
// exponential ramp from the floor to the peak over 2ms, then an exponential
// decay back to the floor at 60ms, held there until the voice ends at 80ms.
// The floor keeps the exponential curves defined; the envelope only reaches
// zero once the voice has stopped.
func Envelope(t float64) float64 {
	switch {
	case t < 0:
		return 0
	case t < envAttack:
		return envFloor * math.Pow(envPeak/envFloor, t/envAttack)
	case t < envDecay:
		return envPeak * math.Pow(envFloor/envPeak, (t-envAttack)/(envDecay-envAttack))
	case t < clickLen:
		return envFloor
	}
	return 0
}

// Waveform renders a square tone burst for the tier with the click envelope
// applied, mono, at SampleRate.
func Waveform(tier Tier) []float64 {
	freq := tier.Frequency()
	out := make([]float64, ClickSamples)
	for i := range out {
		phase := float64(i) * freq / SampleRate
		v := 1.0
		if phase-math.Floor(phase) >= 0.5 {
			v = -1
		}
		out[i] = v * Envelope(float64(i)/SampleRate)
	}
	return out
}

// SoftGain is the level used for subdivision ticks of soft patterns.
func SoftGain() float64 { return softGain }
