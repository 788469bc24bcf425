package audio

import (
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// WriteWAV encodes interleaved stereo int16 samples as a 16-bit PCM WAV.
func WriteWAV(w io.WriteSeeker, samples []int16) error {
	enc := wav.NewEncoder(w, SampleRate, BitDepth, Channels, 1)

	data := make([]int, len(samples))
	for i, s := range samples {
		data[i] = int(s)
	}
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: Channels, SampleRate: SampleRate},
		Data:           data,
		SourceBitDepth: BitDepth,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("wav encode: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("wav close: %w", err)
	}
	return nil
}
