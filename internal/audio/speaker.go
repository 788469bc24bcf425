package audio

import (
	"fmt"
	"log"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/speaker"
)

var _ beep.Streamer = (*Engine)(nil)

// Speaker is an Engine playing on the default output device. The device
// pulls samples, so the engine clock follows the sound card.
type Speaker struct {
	*Engine
}

// OpenSpeaker initializes the output device with the given buffer length
// and starts playing e. volume is a base-2 exponent: 0 is unity, -1 half.
func OpenSpeaker(e *Engine, buffer time.Duration, volume float64) (*Speaker, error) {
	sr := beep.SampleRate(SampleRate)
	if err := speaker.Init(sr, sr.N(buffer)); err != nil {
		return nil, fmt.Errorf("speaker init: %w", err)
	}
	speaker.Play(&effects.Volume{Streamer: e, Base: 2, Volume: volume})
	log.Printf("Speaker open: %d Hz, %v buffer, volume %+.1f", SampleRate, buffer, volume)
	return &Speaker{Engine: e}, nil
}

// Close stops playback and releases the device.
func (s *Speaker) Close() {
	speaker.Clear()
	speaker.Close()
}
