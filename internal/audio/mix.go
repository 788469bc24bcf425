package audio

import "encoding/binary"

// Clip16 converts a float sample in [-1,1] to int16, clipping out-of-range
// values instead of wrapping.
func Clip16(x float64) int16 {
	v := x * 32767
	if v > 32767 {
		return 32767
	} else if v < -32768 {
		return -32768
	}
	return int16(v)
}

// Interleave converts stereo float frames to interleaved int16 samples.
func Interleave(frames [][2]float64) []int16 {
	out := make([]int16, len(frames)*Channels)
	for i, f := range frames {
		out[i*2] = Clip16(f[0])
		out[i*2+1] = Clip16(f[1])
	}
	return out
}

// SamplesToBytes converts int16 samples to little-endian bytes.
func SamplesToBytes(samples []int16) []byte {
	buf := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(s))
	}
	return buf
}
