package audio

import (
	"context"
	"sync"
	"time"
)

type voice struct {
	start int64
	wave  []float64
	gain  float64
}

// Engine mixes scheduled clicks into PCM. Its clock is the number of
// samples rendered so far, so Now only advances while something pulls audio
// out of it: the real-time Run loop, a speaker, or an offline renderer.
type Engine struct {
	frameCh chan []int16
	waves   [3][]float64

	mu     sync.Mutex
	pos    int64 // samples rendered
	voices []voice
}

// NewEngine creates an engine positioned at time zero.
func NewEngine() *Engine {
	e := &Engine{
		frameCh: make(chan []int16, 100),
	}
	for _, t := range []Tier{TierAccent, TierBeat, TierSub} {
		e.waves[t] = Waveform(t)
	}
	return e
}

// Frames returns the channel of outgoing PCM frames (20ms each) fed by Run.
func (e *Engine) Frames() <-chan []int16 {
	return e.frameCh
}

// Now returns the audio clock: the start time of the next sample to render.
func (e *Engine) Now() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return SamplesToDuration(e.pos)
}

// Schedule queues a click to start on the sample nearest c.At. A click whose
// time has already been rendered starts on the next sample. Scheduled clicks
// cannot be cancelled.
func (e *Engine) Schedule(c Click) {
	if c.Tier < TierAccent || c.Tier > TierSub {
		c.Tier = TierBeat
	}
	if c.Gain <= 0 {
		c.Gain = 1
	}
	start := DurationToSamples(c.At)

	e.mu.Lock()
	defer e.mu.Unlock()
	if start < e.pos {
		start = e.pos
	}
	e.voices = append(e.voices, voice{start: start, wave: e.waves[c.Tier], gain: c.Gain})
}

// Pending returns the number of voices not yet fully rendered.
func (e *Engine) Pending() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.voices)
}

// Resume is a no-op: the engine is always ready to render.
func (e *Engine) Resume() error { return nil }

// Render fills dst with the next len(dst) stereo samples and advances the
// clock.
func (e *Engine) Render(dst [][2]float64) {
	for i := range dst {
		dst[i] = [2]float64{}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	end := e.pos + int64(len(dst))
	kept := e.voices[:0]
	for _, v := range e.voices {
		if v.start >= end {
			kept = append(kept, v)
			continue
		}
		vEnd := v.start + int64(len(v.wave))
		from, to := max(v.start, e.pos), min(vEnd, end)
		for s := from; s < to; s++ {
			x := v.wave[s-v.start] * v.gain
			dst[s-e.pos][0] += x
			dst[s-e.pos][1] += x
		}
		if vEnd > end {
			kept = append(kept, v)
		}
	}
	for i := len(kept); i < len(e.voices); i++ {
		e.voices[i] = voice{}
	}
	e.voices = kept
	e.pos = end
}

// RenderFrame renders one 20ms frame of interleaved int16 stereo.
func (e *Engine) RenderFrame() []int16 {
	var buf [FrameSize][2]float64
	e.Render(buf[:])
	return Interleave(buf[:])
}

// Stream implements beep.Streamer so a speaker can pull audio directly.
func (e *Engine) Stream(samples [][2]float64) (int, bool) {
	e.Render(samples)
	return len(samples), true
}

// Err implements beep.Streamer.
func (e *Engine) Err() error { return nil }

// Run renders frames at real-time rate onto Frames. Blocks until ctx is
// cancelled.
func (e *Engine) Run(ctx context.Context) {
	defer close(e.frameCh)

	ticker := time.NewTicker(FrameDuration)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		frame := e.RenderFrame()
		select {
		case e.frameCh <- frame:
		case <-ctx.Done():
			return
		}
	}
}
