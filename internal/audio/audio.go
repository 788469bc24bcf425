// Package audio renders metronome clicks into PCM on a sample clock.
//
// The Engine is both the time reference and the precise-scheduling
// primitive: its clock only advances as samples are rendered, and a click
// scheduled for time t starts on the sample nearest to t.
package audio

import "time"

const (
	SampleRate    = 48000
	Channels      = 2
	BitDepth      = 16
	FrameDuration = 20 * time.Millisecond
	FrameSize     = 960                  // samples per channel per 20ms frame
	FrameSamples  = FrameSize * Channels // total interleaved samples per frame
	FrameBytes    = FrameSamples * 2     // bytes per frame (int16 = 2 bytes)
)

// Tier selects the pitch of a click.
type Tier int

const (
	TierAccent Tier = iota // first beat of an accented bar
	TierBeat               // ordinary main beat
	TierSub                // subdivision tick
)

// Frequency returns the tone frequency in Hz. Accent > beat > sub.
func (t Tier) Frequency() float64 {
	switch t {
	case TierAccent:
		return 2000
	case TierSub:
		return 1200
	default:
		return 1600
	}
}

func (t Tier) String() string {
	switch t {
	case TierAccent:
		return "accent"
	case TierSub:
		return "sub"
	default:
		return "beat"
	}
}

// Click is one sound to start at an absolute time on the audio clock.
type Click struct {
	At   time.Duration
	Tier Tier
	Gain float64 // 1 = full level
}

// Device is an audio output that can be scheduled against.
type Device interface {
	Now() time.Duration
	Schedule(c Click)
	Resume() error
}

// DurationToSamples converts a clock time to the nearest sample index.
// Whole seconds and the remainder are scaled separately so days of
// rendered audio do not overflow.
func DurationToSamples(d time.Duration) int64 {
	if d < 0 {
		return -DurationToSamples(-d)
	}
	sec, rem := int64(d/time.Second), int64(d%time.Second)
	return sec*SampleRate + (rem*SampleRate+int64(time.Second)/2)/int64(time.Second)
}

// SamplesToDuration converts a sample index to clock time.
func SamplesToDuration(n int64) time.Duration {
	sec, rem := n/SampleRate, n%SampleRate
	return time.Duration(sec)*time.Second + time.Duration(rem*int64(time.Second)/SampleRate)
}
